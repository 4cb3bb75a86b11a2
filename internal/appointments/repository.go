package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// CreateParams carries the fields the coordinator persists at booking time.
type CreateParams struct {
	PatientID   string
	DoctorID    string
	SlotDate    string
	SlotTime    string
	AmountCents int64
}

// Repository is the appointment ledger. Lifecycle flags are only written
// through the designated mark operations; records are never deleted.
type Repository interface {
	Create(ctx context.Context, params CreateParams) (*Appointment, error)
	GetByID(ctx context.Context, id string) (*Appointment, error)
	MarkCancelled(ctx context.Context, id string) error
	MarkCompleted(ctx context.Context, id string) error
	MarkPaid(ctx context.Context, id string) error
	ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error)
	ListRecent(ctx context.Context, limit int) ([]*Appointment, error)
	Count(ctx context.Context) (int64, error)
}

// InMemoryRepository keeps the ledger in process memory.
type InMemoryRepository struct {
	mu           sync.RWMutex
	appointments map[string]*Appointment
	order        []string
}

// NewInMemoryRepository creates a new in-memory ledger
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		appointments: make(map[string]*Appointment),
	}
}

// Create appends a new appointment record.
func (r *InMemoryRepository) Create(ctx context.Context, params CreateParams) (*Appointment, error) {
	appt := &Appointment{
		ID:          uuid.New().String(),
		PatientID:   params.PatientID,
		DoctorID:    params.DoctorID,
		SlotDate:    params.SlotDate,
		SlotTime:    params.SlotTime,
		AmountCents: params.AmountCents,
		CreatedAt:   time.Now().UTC(),
	}

	r.mu.Lock()
	r.appointments[appt.ID] = appt
	r.order = append(r.order, appt.ID)
	r.mu.Unlock()

	copy := *appt
	return &copy, nil
}

// GetByID retrieves an appointment by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	appt, ok := r.appointments[id]
	if !ok {
		return nil, ErrNotFound
	}
	copy := *appt
	return &copy, nil
}

// MarkCancelled sets the cancelled flag. Idempotent.
func (r *InMemoryRepository) MarkCancelled(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	appt.Cancelled = true
	appt.IsCompleted = false
	return nil
}

// MarkCompleted sets the completed flag.
func (r *InMemoryRepository) MarkCompleted(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	appt.IsCompleted = true
	return nil
}

// MarkPaid sets the payment flag. Idempotent.
func (r *InMemoryRepository) MarkPaid(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	appt, ok := r.appointments[id]
	if !ok {
		return ErrNotFound
	}
	appt.Payment = true
	return nil
}

// ListByPatient returns the patient's appointments, newest first.
func (r *InMemoryRepository) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.PatientID == patientID }, 0), nil
}

// ListByDoctor returns the doctor's appointments, newest first.
func (r *InMemoryRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	return r.list(func(a *Appointment) bool { return a.DoctorID == doctorID }, 0), nil
}

// ListRecent returns the most recently created appointments, newest first.
func (r *InMemoryRepository) ListRecent(ctx context.Context, limit int) ([]*Appointment, error) {
	return r.list(func(*Appointment) bool { return true }, limit), nil
}

// Count returns the total number of appointment records.
func (r *InMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.appointments)), nil
}

func (r *InMemoryRepository) list(match func(*Appointment) bool, limit int) []*Appointment {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Appointment, 0)
	for i := len(r.order) - 1; i >= 0; i-- {
		appt := r.appointments[r.order[i]]
		if !match(appt) {
			continue
		}
		copy := *appt
		out = append(out, &copy)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}
