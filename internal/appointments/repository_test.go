package appointments

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCreate(t *testing.T, repo Repository, patientID, doctorID, slotTime string) *Appointment {
	t.Helper()
	appt, err := repo.Create(context.Background(), CreateParams{
		PatientID:   patientID,
		DoctorID:    doctorID,
		SlotDate:    "2026-09-14",
		SlotTime:    slotTime,
		AmountCents: 10000,
	})
	require.NoError(t, err)
	return appt
}

func TestInMemoryLedgerLifecycle(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	appt := mustCreate(t, repo, "patient-1", "doctor-1", "10:30 AM")
	assert.NotEmpty(t, appt.ID)
	assert.False(t, appt.CreatedAt.IsZero())

	fetched, err := repo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, fetched.ID)

	require.NoError(t, repo.MarkCompleted(ctx, appt.ID))
	require.NoError(t, repo.MarkPaid(ctx, appt.ID))
	fetched, err = repo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, fetched.IsCompleted)
	assert.True(t, fetched.Payment)

	// Cancelling clears completion so the two flags never coexist.
	require.NoError(t, repo.MarkCancelled(ctx, appt.ID))
	fetched, err = repo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.True(t, fetched.Cancelled)
	assert.False(t, fetched.IsCompleted)
	assert.True(t, fetched.Payment, "payment evidence survives cancellation")
}

func TestInMemoryLedgerNotFound(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.MarkCancelled(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, repo.MarkCompleted(ctx, "missing"), ErrNotFound)
	assert.ErrorIs(t, repo.MarkPaid(ctx, "missing"), ErrNotFound)
}

func TestInMemoryLedgerReturnsCopies(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	appt := mustCreate(t, repo, "patient-1", "doctor-1", "10:30 AM")
	appt.Cancelled = true

	fetched, err := repo.GetByID(ctx, appt.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Cancelled, "caller mutations must not leak into the store")
}

func TestInMemoryLedgerListings(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	mustCreate(t, repo, "patient-1", "doctor-1", "9:00 AM")
	mustCreate(t, repo, "patient-2", "doctor-1", "9:30 AM")
	b3 := mustCreate(t, repo, "patient-1", "doctor-2", "10:00 AM")

	byPatient, err := repo.ListByPatient(ctx, "patient-1")
	require.NoError(t, err)
	require.Len(t, byPatient, 2)
	assert.Equal(t, b3.ID, byPatient[0].ID, "newest first")

	byDoctor, err := repo.ListByDoctor(ctx, "doctor-1")
	require.NoError(t, err)
	assert.Len(t, byDoctor, 2)

	recent, err := repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, b3.ID, recent[0].ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}
