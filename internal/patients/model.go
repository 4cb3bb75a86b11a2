package patients

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrPatientNotFound is returned when a patient id does not resolve
	ErrPatientNotFound = errors.New("patient not found")

	// ErrInvalidPatient is returned when a registration is missing fields
	ErrInvalidPatient = errors.New("patient name and email are required")
)

// Patient is a registered account able to book appointments.
type Patient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterPatientRequest carries the signup fields.
type RegisterPatientRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate validates the registration request
func (r *RegisterPatientRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" || strings.TrimSpace(r.Email) == "" {
		return ErrInvalidPatient
	}
	return nil
}
