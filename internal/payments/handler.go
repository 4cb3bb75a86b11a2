package payments

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clinicore/booking-platform/internal/appointments"
	"github.com/clinicore/booking-platform/pkg/logging"
)

// Handler handles HTTP requests for payment orders
type Handler struct {
	gate   *Gate
	fake   *FakeProvider
	logger *logging.Logger
}

// NewHandler creates a new payments handler. fake is nil unless fake orders
// are enabled by configuration.
func NewHandler(gate *Gate, fake *FakeProvider, logger *logging.Logger) *Handler {
	return &Handler{
		gate:   gate,
		fake:   fake,
		logger: logger,
	}
}

// CreateOrderRequest names the appointment to raise an order for.
type CreateOrderRequest struct {
	AppointmentID string `json:"appointment_id"`
}

// CreateOrder handles POST /payments/orders requests
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AppointmentID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	order, err := h.gate.CreateOrder(r.Context(), req.AppointmentID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(order)
}

// ConfirmRequest names the provider order to reconcile.
type ConfirmRequest struct {
	OrderID string `json:"order_id"`
}

// Confirm handles POST /payments/confirm requests
func (h *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	var req ConfirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	appt, err := h.gate.Confirm(r.Context(), req.OrderID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

// SettleFakeOrder handles POST /payments/fake/{orderID} requests. Only wired
// when fake orders are enabled; stands in for the gateway's checkout page.
func (h *Handler) SettleFakeOrder(w http.ResponseWriter, r *http.Request) {
	if h.fake == nil {
		http.Error(w, "fake orders disabled", http.StatusNotFound)
		return
	}

	orderID := chi.URLParam(r, "orderID")
	if err := h.fake.MarkPaid(orderID); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	appt, err := h.gate.Confirm(r.Context(), orderID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(appt)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointments.ErrNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrAlreadyCancelled), errors.Is(err, ErrUnknownOrder):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPaymentNotCompleted):
		http.Error(w, err.Error(), http.StatusPaymentRequired)
	case errors.Is(err, ErrProviderUnavailable):
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		h.logger.Error("payment operation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}
