package clinic

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking-platform/internal/identity"
	"github.com/clinicore/booking-platform/pkg/logging"
)

func TestAdminDashboardHandler(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)
	handler := NewHandler(f.dashboard, logging.Default())

	w := httptest.NewRecorder()
	handler.AdminDashboard(w, httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var out AdminSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, int64(6), out.AppointmentCount)
}

func TestDoctorDashboardHandler(t *testing.T) {
	f := newFixture(t, nil)
	f.seed(t)
	handler := NewHandler(f.dashboard, logging.Default())

	req := httptest.NewRequest(http.MethodGet, "/doctor/dashboard", nil)
	req = req.WithContext(identity.WithActor(req.Context(), identity.Actor{ID: "doc-1", Role: identity.RoleDoctor}))
	w := httptest.NewRecorder()

	handler.DoctorDashboard(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out DoctorSummary
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, int64(20000), out.EarningsCents)
}

func TestDoctorDashboardHandlerMissingIdentity(t *testing.T) {
	f := newFixture(t, nil)
	handler := NewHandler(f.dashboard, logging.Default())

	w := httptest.NewRecorder()
	handler.DoctorDashboard(w, httptest.NewRequest(http.MethodGet, "/doctor/dashboard", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
