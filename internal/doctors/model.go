package doctors

import (
	"strings"
	"time"
)

// Doctor represents a bookable practitioner. Slot occupancy is persisted
// separately by the scheduling package; Available gates new bookings as a
// whole, independent of per-slot occupancy.
type Doctor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Speciality string    `json:"speciality"`
	FeeCents   int64     `json:"fee_cents"`
	Available  bool      `json:"available"`
	CreatedAt  time.Time `json:"created_at"`
}

// CreateDoctorRequest carries the fields the onboarding flow provides.
type CreateDoctorRequest struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Speciality string `json:"speciality"`
	FeeCents   int64  `json:"fee_cents"`
}

// Validate validates the create doctor request
func (r *CreateDoctorRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrInvalidName
	}
	if strings.TrimSpace(r.Email) == "" {
		return ErrInvalidEmail
	}
	if r.FeeCents <= 0 {
		return ErrInvalidFee
	}
	return nil
}

// UpdateProfileRequest carries the doctor-editable profile fields.
type UpdateProfileRequest struct {
	FeeCents  int64 `json:"fee_cents"`
	Available bool  `json:"available"`
}

// Validate validates the profile update
func (r *UpdateProfileRequest) Validate() error {
	if r.FeeCents <= 0 {
		return ErrInvalidFee
	}
	return nil
}
