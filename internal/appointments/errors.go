package appointments

import "errors"

var (
	// ErrNotFound is returned when an appointment id does not resolve
	ErrNotFound = errors.New("appointment not found")

	// ErrUnauthorized is returned when the actor does not own the appointment
	ErrUnauthorized = errors.New("not authorized for this appointment")

	// ErrSlotUnavailable is returned when the requested slot is already taken
	ErrSlotUnavailable = errors.New("slot not available")

	// ErrDoctorUnavailable is returned when the doctor is not accepting bookings
	ErrDoctorUnavailable = errors.New("doctor is not available")

	// ErrInvalidState is returned when a lifecycle transition is not allowed,
	// e.g. completing a cancelled appointment
	ErrInvalidState = errors.New("appointment is in an invalid state for this operation")
)
