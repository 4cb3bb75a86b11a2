package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/booking-platform/internal/doctors"
	"github.com/clinicore/booking-platform/internal/identity"
	"github.com/clinicore/booking-platform/internal/scheduling"
	"github.com/clinicore/booking-platform/pkg/logging"
)

// Handler handles HTTP requests for the appointment lifecycle
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new appointments handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Book handles POST /appointments requests
func (h *Handler) Book(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req BookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode booking request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.service.Book(r.Context(), actor.ID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(appt)
}

// Cancel handles POST /appointments/{id}/cancel requests
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	appt, err := h.service.Cancel(r.Context(), id, actor)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// Complete handles POST /appointments/{id}/complete requests
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	id := chi.URLParam(r, "id")
	appt, err := h.service.Complete(r.Context(), id, actor.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// ListAppointmentsResponse is the response for appointment listings
type ListAppointmentsResponse struct {
	Appointments []*Appointment `json:"appointments"`
	Count        int            `json:"count"`
}

// ListMine handles GET /appointments requests for the authenticated patient
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	appts, err := h.service.ListForPatient(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("failed to list patient appointments", "error", err, "patient_id", actor.ID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	h.writeList(w, appts)
}

// ListForDoctor handles GET /doctor/appointments requests
func (h *Handler) ListForDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	appts, err := h.service.ListForDoctor(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("failed to list doctor appointments", "error", err, "doctor_id", actor.ID)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	h.writeList(w, appts)
}

// ListAll handles GET /admin/appointments requests
func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	limit := 100
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}

	appts, err := h.service.ListAll(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list appointments", "error", err)
		http.Error(w, "failed to list appointments", http.StatusInternalServerError)
		return
	}
	h.writeList(w, appts)
}

func (h *Handler) writeList(w http.ResponseWriter, appts []*Appointment) {
	if appts == nil {
		appts = []*Appointment{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListAppointmentsResponse{
		Appointments: appts,
		Count:        len(appts),
	})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, doctors.ErrDoctorNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrUnauthorized):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, ErrSlotUnavailable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrDoctorUnavailable), errors.Is(err, ErrInvalidState), errors.Is(err, scheduling.ErrInvalidSlotKey):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("appointment operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
