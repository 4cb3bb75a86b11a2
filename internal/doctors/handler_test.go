package doctors

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking-platform/internal/identity"
	"github.com/clinicore/booking-platform/internal/scheduling"
	"github.com/clinicore/booking-platform/pkg/logging"
)

func newDoctorFixture(t *testing.T) (*Handler, *InMemoryRepository, *scheduling.InMemorySlotIndex) {
	t.Helper()
	repo := NewInMemoryRepository()
	slots := scheduling.NewInMemorySlotIndex()
	return NewHandler(repo, slots, logging.Default()), repo, slots
}

func seedTestDoctor(t *testing.T, repo *InMemoryRepository) *Doctor {
	t.Helper()
	doc, err := repo.Create(context.Background(), &CreateDoctorRequest{
		Name:       "Dr. Ananya Rao",
		Email:      "rao@clinic.example",
		Speciality: "pediatrics",
		FeeCents:   9000,
	})
	require.NoError(t, err)
	return doc
}

func doctorActor(req *http.Request, id string) *http.Request {
	return req.WithContext(identity.WithActor(req.Context(), identity.Actor{ID: id, Role: identity.RoleDoctor}))
}

func TestCreateDoctor(t *testing.T) {
	handler, _, _ := newDoctorFixture(t)

	body, _ := json.Marshal(CreateDoctorRequest{
		Name:       "Dr. Ananya Rao",
		Email:      "rao@clinic.example",
		Speciality: "pediatrics",
		FeeCents:   9000,
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/doctors", bytes.NewReader(body))
	w := httptest.NewRecorder()

	handler.Create(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var doc Doctor
	require.NoError(t, json.NewDecoder(w.Body).Decode(&doc))
	assert.NotEmpty(t, doc.ID)
	assert.True(t, doc.Available, "new doctors default to available")
}

func TestCreateDoctorValidation(t *testing.T) {
	handler, _, _ := newDoctorFixture(t)

	cases := []struct {
		name string
		req  CreateDoctorRequest
	}{
		{"missing name", CreateDoctorRequest{Email: "a@b.c", FeeCents: 100}},
		{"missing email", CreateDoctorRequest{Name: "Dr. X", FeeCents: 100}},
		{"zero fee", CreateDoctorRequest{Name: "Dr. X", Email: "a@b.c"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			body, _ := json.Marshal(tc.req)
			w := httptest.NewRecorder()
			handler.Create(w, httptest.NewRequest(http.MethodPost, "/admin/doctors", bytes.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestListDoctors(t *testing.T) {
	handler, repo, _ := newDoctorFixture(t)
	seedTestDoctor(t, repo)

	w := httptest.NewRecorder()
	handler.List(w, httptest.NewRequest(http.MethodGet, "/doctors", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var out ListDoctorsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, 1, out.Count)
}

func TestOccupiedSlots(t *testing.T) {
	handler, repo, slots := newDoctorFixture(t)
	doc := seedTestDoctor(t, repo)

	ctx := context.Background()
	require.NoError(t, slots.Occupy(ctx, doc.ID, "2026-09-14", "10:30 AM"))
	require.NoError(t, slots.Occupy(ctx, doc.ID, "2026-09-14", "11:00 AM"))
	require.NoError(t, slots.Occupy(ctx, doc.ID, "2026-09-15", "9:00 AM"))

	req := httptest.NewRequest(http.MethodGet, "/doctors/"+doc.ID+"/slots", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", doc.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.OccupiedSlots(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out OccupiedSlotsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Len(t, out.Slots["2026-09-14"], 2)
	assert.Len(t, out.Slots["2026-09-15"], 1)
}

func TestOccupiedSlotsUnknownDoctor(t *testing.T) {
	handler, _, _ := newDoctorFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/doctors/missing/slots", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "missing")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.OccupiedSlots(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestChangeAvailability(t *testing.T) {
	handler, repo, _ := newDoctorFixture(t)
	doc := seedTestDoctor(t, repo)

	body, _ := json.Marshal(ChangeAvailabilityRequest{Available: false})
	req := doctorActor(httptest.NewRequest(http.MethodPost, "/doctor/availability", bytes.NewReader(body)), doc.ID)
	w := httptest.NewRecorder()

	handler.ChangeAvailability(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out Doctor
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.False(t, out.Available)
}

func TestUpdateProfile(t *testing.T) {
	handler, repo, _ := newDoctorFixture(t)
	doc := seedTestDoctor(t, repo)

	body, _ := json.Marshal(UpdateProfileRequest{FeeCents: 12000, Available: true})
	req := doctorActor(httptest.NewRequest(http.MethodPost, "/doctor/profile", bytes.NewReader(body)), doc.ID)
	w := httptest.NewRecorder()

	handler.UpdateProfile(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var out Doctor
	require.NoError(t, json.NewDecoder(w.Body).Decode(&out))
	assert.Equal(t, int64(12000), out.FeeCents)
}

func TestUpdateProfileInvalidFee(t *testing.T) {
	handler, repo, _ := newDoctorFixture(t)
	doc := seedTestDoctor(t, repo)

	body, _ := json.Marshal(UpdateProfileRequest{FeeCents: 0})
	req := doctorActor(httptest.NewRequest(http.MethodPost, "/doctor/profile", bytes.NewReader(body)), doc.ID)
	w := httptest.NewRecorder()

	handler.UpdateProfile(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
