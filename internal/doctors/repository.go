package doctors

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for doctor storage
type Repository interface {
	Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error)
	GetByID(ctx context.Context, id string) (*Doctor, error)
	List(ctx context.Context) ([]*Doctor, error)
	Count(ctx context.Context) (int64, error)
	SetAvailability(ctx context.Context, id string, available bool) error
	UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) error
}

// InMemoryRepository stores doctors in memory for tests and dev.
type InMemoryRepository struct {
	mu      sync.RWMutex
	doctors map[string]*Doctor
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		doctors: make(map[string]*Doctor),
	}
}

// Create creates a new doctor record
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	doc := &Doctor{
		ID:         uuid.New().String(),
		Name:       req.Name,
		Email:      req.Email,
		Speciality: req.Speciality,
		FeeCents:   req.FeeCents,
		Available:  true,
		CreatedAt:  time.Now().UTC(),
	}

	r.mu.Lock()
	r.doctors[doc.ID] = doc
	r.mu.Unlock()

	return doc, nil
}

// GetByID retrieves a doctor by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	doc, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	copy := *doc
	return &copy, nil
}

// List returns all doctors ordered by creation time.
func (r *InMemoryRepository) List(ctx context.Context) ([]*Doctor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Doctor, 0, len(r.doctors))
	for _, doc := range r.doctors {
		copy := *doc
		out = append(out, &copy)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Count returns the number of doctors.
func (r *InMemoryRepository) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.doctors)), nil
}

// SetAvailability flips whether the doctor accepts new bookings.
func (r *InMemoryRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.doctors[id]
	if !ok {
		return ErrDoctorNotFound
	}
	doc.Available = available
	return nil
}

// UpdateProfile updates the doctor-editable fields.
func (r *InMemoryRepository) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.doctors[id]
	if !ok {
		return ErrDoctorNotFound
	}
	doc.FeeCents = req.FeeCents
	doc.Available = req.Available
	return nil
}
