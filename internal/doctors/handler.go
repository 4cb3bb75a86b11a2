package doctors

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/booking-platform/internal/identity"
	"github.com/clinicore/booking-platform/internal/scheduling"
	"github.com/clinicore/booking-platform/pkg/logging"
)

// Handler handles HTTP requests for doctors
type Handler struct {
	repo   Repository
	slots  scheduling.SlotIndex
	logger *logging.Logger
}

// NewHandler creates a new doctors handler
func NewHandler(repo Repository, slots scheduling.SlotIndex, logger *logging.Logger) *Handler {
	return &Handler{
		repo:   repo,
		slots:  slots,
		logger: logger,
	}
}

// Create handles POST /admin/doctors requests
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode doctor request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	doc, err := h.repo.Create(r.Context(), &req)
	if err != nil {
		h.logger.Error("failed to create doctor", "error", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.logger.Info("doctor created", "id", doc.ID, "speciality", doc.Speciality)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(doc)
}

// ListDoctorsResponse is the response for listing doctors
type ListDoctorsResponse struct {
	Doctors []*Doctor `json:"doctors"`
	Count   int       `json:"count"`
}

// List handles GET /doctors requests. Public, no auth.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	docs, err := h.repo.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list doctors", "error", err)
		http.Error(w, "failed to list doctors", http.StatusInternalServerError)
		return
	}
	if docs == nil {
		docs = []*Doctor{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ListDoctorsResponse{Doctors: docs, Count: len(docs)})
}

// OccupiedSlotsResponse maps slot dates to their taken time labels.
type OccupiedSlotsResponse struct {
	DoctorID string              `json:"doctor_id"`
	Slots    map[string][]string `json:"slots"`
}

// OccupiedSlots handles GET /doctors/{id}/slots requests. Public: patients
// consult it before picking a slot, though booking itself revalidates.
func (h *Handler) OccupiedSlots(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := h.repo.GetByID(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	slots, err := h.slots.OccupiedSlots(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to load occupied slots", "error", err, "doctor_id", id)
		http.Error(w, "failed to load slots", http.StatusInternalServerError)
		return
	}
	if slots == nil {
		slots = map[string][]string{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(OccupiedSlotsResponse{DoctorID: id, Slots: slots})
}

// ChangeAvailabilityRequest toggles whether a doctor takes new bookings.
type ChangeAvailabilityRequest struct {
	Available bool `json:"available"`
}

// ChangeAvailability handles POST /doctor/availability requests
func (h *Handler) ChangeAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req ChangeAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.SetAvailability(r.Context(), actor.ID, req.Available); err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("doctor availability changed", "doctor_id", actor.ID, "available", req.Available)

	doc, err := h.repo.GetByID(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// UpdateProfile handles POST /doctor/profile requests
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateProfile(r.Context(), actor.ID, &req); err != nil {
		h.writeError(w, err)
		return
	}

	doc, err := h.repo.GetByID(r.Context(), actor.ID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrDoctorNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidEmail), errors.Is(err, ErrInvalidFee):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("doctor operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
