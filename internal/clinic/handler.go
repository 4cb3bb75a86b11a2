package clinic

import (
	"encoding/json"
	"net/http"

	"github.com/clinicore/booking-platform/internal/identity"
	"github.com/clinicore/booking-platform/pkg/logging"
)

// Handler handles HTTP requests for dashboard summaries
type Handler struct {
	dashboard *Dashboard
	logger    *logging.Logger
}

// NewHandler creates a new dashboard handler
func NewHandler(dashboard *Dashboard, logger *logging.Logger) *Handler {
	return &Handler{
		dashboard: dashboard,
		logger:    logger,
	}
}

// AdminDashboard handles GET /admin/dashboard requests
func (h *Handler) AdminDashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.AdminSummary(r.Context())
	if err != nil {
		h.logger.Error("failed to build admin summary", "error", err)
		http.Error(w, "failed to build summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}

// DoctorDashboard handles GET /doctor/dashboard requests
func (h *Handler) DoctorDashboard(w http.ResponseWriter, r *http.Request) {
	actor, ok := identity.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "missing identity", http.StatusUnauthorized)
		return
	}

	summary, err := h.dashboard.DoctorSummary(r.Context(), actor.ID)
	if err != nil {
		h.logger.Error("failed to build doctor summary", "error", err, "doctor_id", actor.ID)
		http.Error(w, "failed to build summary", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summary)
}
