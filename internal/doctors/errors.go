package doctors

import "errors"

var (
	// ErrDoctorNotFound is returned when a doctor id does not resolve
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrInvalidName is returned when the name is missing
	ErrInvalidName = errors.New("name is required")

	// ErrInvalidEmail is returned when the email is missing
	ErrInvalidEmail = errors.New("email is required")

	// ErrInvalidFee is returned when the fee is not a positive amount
	ErrInvalidFee = errors.New("fee must be a positive amount")
)
