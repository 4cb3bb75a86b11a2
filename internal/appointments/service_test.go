package appointments

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicore/booking-platform/internal/doctors"
	"github.com/clinicore/booking-platform/internal/identity"
	"github.com/clinicore/booking-platform/internal/scheduling"
)

func newTestService(t *testing.T) (*Service, *doctors.InMemoryRepository, *InMemoryRepository, *scheduling.InMemorySlotIndex) {
	t.Helper()
	docs := doctors.NewInMemoryRepository()
	ledger := NewInMemoryRepository()
	slots := scheduling.NewInMemorySlotIndex()
	svc := NewService(ledger, slots, docs, nil, nil)
	return svc, docs, ledger, slots
}

func seedDoctor(t *testing.T, docs *doctors.InMemoryRepository, feeCents int64, available bool) *doctors.Doctor {
	t.Helper()
	doc, err := docs.Create(context.Background(), &doctors.CreateDoctorRequest{
		Name:       "Dr. Reyes",
		Email:      "reyes@clinic.example",
		Speciality: "dermatology",
		FeeCents:   feeCents,
	})
	require.NoError(t, err)
	if !available {
		require.NoError(t, docs.SetAvailability(context.Background(), doc.ID, false))
		doc.Available = false
	}
	return doc
}

func TestBookSuccess(t *testing.T) {
	svc, docs, _, slots := newTestService(t)
	doc := seedDoctor(t, docs, 12500, true)

	appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, appt.ID)
	assert.Equal(t, "patient-1", appt.PatientID)
	assert.Equal(t, doc.ID, appt.DoctorID)
	assert.Equal(t, int64(12500), appt.AmountCents)
	assert.False(t, appt.Cancelled)
	assert.False(t, appt.IsCompleted)
	assert.False(t, appt.Payment)

	occupied, err := slots.IsOccupied(context.Background(), doc.ID, "2026-09-14", "10:30 AM")
	require.NoError(t, err)
	assert.True(t, occupied)
}

func TestBookInvalidSlotKey(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	cases := []struct {
		name     string
		slotDate string
		slotTime string
	}{
		{"bad date", "14-09-2026", "10:30 AM"},
		{"bad hour", "2026-09-14", "13:30 AM"},
		{"missing meridiem", "2026-09-14", "10:30"},
		{"lowercase meridiem", "2026-09-14", "10:30 am"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Book(context.Background(), "patient-1", BookRequest{
				DoctorID: doc.ID,
				SlotDate: tc.slotDate,
				SlotTime: tc.slotTime,
			})
			assert.ErrorIs(t, err, scheduling.ErrInvalidSlotKey)
		})
	}
}

func TestBookDoctorNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	_, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: "missing",
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	assert.ErrorIs(t, err, doctors.ErrDoctorNotFound)
}

func TestBookDoctorUnavailable(t *testing.T) {
	svc, docs, _, slots := newTestService(t)
	doc := seedDoctor(t, docs, 10000, false)

	_, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	assert.ErrorIs(t, err, ErrDoctorUnavailable)

	occupied, err := slots.IsOccupied(context.Background(), doc.ID, "2026-09-14", "10:30 AM")
	require.NoError(t, err)
	assert.False(t, occupied)
}

func TestBookOccupiedSlot(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	req := BookRequest{DoctorID: doc.ID, SlotDate: "2026-09-14", SlotTime: "10:30 AM"}
	_, err := svc.Book(context.Background(), "patient-1", req)
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), "patient-2", req)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestBookSameTimeDifferentDoctors(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	docA := seedDoctor(t, docs, 10000, true)
	docB, err := docs.Create(context.Background(), &doctors.CreateDoctorRequest{
		Name:       "Dr. Okafor",
		Email:      "okafor@clinic.example",
		Speciality: "cardiology",
		FeeCents:   20000,
	})
	require.NoError(t, err)

	_, err = svc.Book(context.Background(), "patient-1", BookRequest{DoctorID: docA.ID, SlotDate: "2026-09-14", SlotTime: "10:30 AM"})
	require.NoError(t, err)
	_, err = svc.Book(context.Background(), "patient-1", BookRequest{DoctorID: docB.ID, SlotDate: "2026-09-14", SlotTime: "10:30 AM"})
	require.NoError(t, err)
}

func TestBookConcurrentSingleWinner(t *testing.T) {
	svc, docs, ledger, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	const workers = 32
	var wg sync.WaitGroup
	results := make(chan error, workers)
	start := make(chan struct{})

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			_, err := svc.Book(context.Background(), "patient", BookRequest{
				DoctorID: doc.ID,
				SlotDate: "2026-09-14",
				SlotTime: "10:30 AM",
			})
			results <- err
		}(i)
	}
	close(start)
	wg.Wait()
	close(results)

	var won, lost int
	for err := range results {
		switch {
		case err == nil:
			won++
		case errors.Is(err, ErrSlotUnavailable):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, won)
	assert.Equal(t, workers-1, lost)

	count, err := ledger.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

// failingLedger wires Create failures to exercise the compensation path.
type failingLedger struct {
	Repository
	createErr error
}

func (f *failingLedger) Create(ctx context.Context, params CreateParams) (*Appointment, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.Repository.Create(ctx, params)
}

func TestBookReleasesSlotWhenCreateFails(t *testing.T) {
	docs := doctors.NewInMemoryRepository()
	slots := scheduling.NewInMemorySlotIndex()
	boom := errors.New("ledger write failed")
	ledger := &failingLedger{Repository: NewInMemoryRepository(), createErr: boom}
	svc := NewService(ledger, slots, docs, nil, nil)
	doc := seedDoctor(t, docs, 10000, true)

	_, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	assert.ErrorIs(t, err, boom)

	occupied, err := slots.IsOccupied(context.Background(), doc.ID, "2026-09-14", "10:30 AM")
	require.NoError(t, err)
	assert.False(t, occupied, "slot must be released after a failed ledger write")

	// The slot is still bookable afterwards.
	ledger.createErr = nil
	_, err = svc.Book(context.Background(), "patient-2", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)
}

func TestBookSnapshotsFee(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)

	require.NoError(t, docs.UpdateProfile(context.Background(), doc.ID, &doctors.UpdateProfileRequest{FeeCents: 25000, Available: true}))

	fetched, err := svc.ledger.GetByID(context.Background(), appt.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), fetched.AmountCents, "booked amount must not track fee changes")

	later, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "11:00 AM",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), later.AmountCents)
}

func TestCancelByPatientFreesSlot(t *testing.T) {
	svc, docs, _, slots := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), appt.ID, identity.Actor{ID: "patient-1", Role: identity.RolePatient})
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	assert.False(t, cancelled.IsCompleted)

	occupied, err := slots.IsOccupied(context.Background(), doc.ID, "2026-09-14", "10:30 AM")
	require.NoError(t, err)
	assert.False(t, occupied)

	// Cancelled slot is immediately rebookable.
	_, err = svc.Book(context.Background(), "patient-2", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)
}

func TestCancelAuthorization(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	book := func(t *testing.T, slotTime string) *Appointment {
		appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
			DoctorID: doc.ID,
			SlotDate: "2026-09-14",
			SlotTime: slotTime,
		})
		require.NoError(t, err)
		return appt
	}

	t.Run("other patient rejected", func(t *testing.T) {
		appt := book(t, "9:00 AM")
		_, err := svc.Cancel(context.Background(), appt.ID, identity.Actor{ID: "patient-2", Role: identity.RolePatient})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("other doctor rejected", func(t *testing.T) {
		appt := book(t, "9:30 AM")
		_, err := svc.Cancel(context.Background(), appt.ID, identity.Actor{ID: "doctor-x", Role: identity.RoleDoctor})
		assert.ErrorIs(t, err, ErrUnauthorized)
	})

	t.Run("owning doctor allowed", func(t *testing.T) {
		appt := book(t, "10:00 AM")
		_, err := svc.Cancel(context.Background(), appt.ID, identity.Actor{ID: doc.ID, Role: identity.RoleDoctor})
		require.NoError(t, err)
	})

	t.Run("admin allowed", func(t *testing.T) {
		appt := book(t, "10:30 AM")
		_, err := svc.Cancel(context.Background(), appt.ID, identity.Actor{ID: "admin-1", Role: identity.RoleAdmin})
		require.NoError(t, err)
	})
}

func TestCancelIdempotent(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)

	actor := identity.Actor{ID: "patient-1", Role: identity.RolePatient}
	first, err := svc.Cancel(context.Background(), appt.ID, actor)
	require.NoError(t, err)
	assert.True(t, first.Cancelled)

	// Rebook by someone else, then retry the original cancel. The retry must
	// not free the new booking's slot.
	rebooked, err := svc.Book(context.Background(), "patient-2", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)

	second, err := svc.Cancel(context.Background(), appt.ID, actor)
	require.NoError(t, err)
	assert.True(t, second.Cancelled)

	fetched, err := svc.ledger.GetByID(context.Background(), rebooked.ID)
	require.NoError(t, err)
	assert.False(t, fetched.Cancelled)
}

func TestCancelNotFound(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	_, err := svc.Cancel(context.Background(), "missing", identity.Actor{ID: "admin-1", Role: identity.RoleAdmin})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCompleteByDoctor(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), appt.ID, doc.ID)
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	assert.False(t, done.Cancelled)

	// Completing again is a no-op.
	again, err := svc.Complete(context.Background(), appt.ID, doc.ID)
	require.NoError(t, err)
	assert.True(t, again.IsCompleted)
}

func TestCompleteWrongDoctor(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), appt.ID, "doctor-x")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCompleteCancelledAppointment(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)

	_, err = svc.Cancel(context.Background(), appt.ID, identity.Actor{ID: "patient-1", Role: identity.RolePatient})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), appt.ID, doc.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestCancelAfterCompleteResetsCompletion(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	appt, err := svc.Book(context.Background(), "patient-1", BookRequest{
		DoctorID: doc.ID,
		SlotDate: "2026-09-14",
		SlotTime: "10:30 AM",
	})
	require.NoError(t, err)

	_, err = svc.Complete(context.Background(), appt.ID, doc.ID)
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), appt.ID, identity.Actor{ID: doc.ID, Role: identity.RoleDoctor})
	require.NoError(t, err)
	assert.True(t, cancelled.Cancelled)
	assert.False(t, cancelled.IsCompleted, "cancelled and completed must never both hold")
}

func TestListings(t *testing.T) {
	svc, docs, _, _ := newTestService(t)
	doc := seedDoctor(t, docs, 10000, true)

	times := []string{"9:00 AM", "9:30 AM", "10:00 AM"}
	for i, slotTime := range times {
		patient := "patient-1"
		if i == 2 {
			patient = "patient-2"
		}
		_, err := svc.Book(context.Background(), patient, BookRequest{
			DoctorID: doc.ID,
			SlotDate: "2026-09-14",
			SlotTime: slotTime,
		})
		require.NoError(t, err)
	}

	mine, err := svc.ListForPatient(context.Background(), "patient-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.ListForDoctor(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	recent, err := svc.ListAll(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, recent, 2)
}
