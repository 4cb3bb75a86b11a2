package appointments

import "time"

// Appointment is a ledger record. Records are soft-state only: lifecycle
// flags change, rows are never deleted.
//
// Amount is snapshotted from the doctor's fee at booking time and must not
// track later fee changes. Cancelled is monotonic through the normal flow;
// Cancelled and IsCompleted are never both true.
type Appointment struct {
	ID          string    `json:"id"`
	PatientID   string    `json:"patient_id"`
	DoctorID    string    `json:"doctor_id"`
	SlotDate    string    `json:"slot_date"`
	SlotTime    string    `json:"slot_time"`
	AmountCents int64     `json:"amount_cents"`
	Cancelled   bool      `json:"cancelled"`
	IsCompleted bool      `json:"is_completed"`
	Payment     bool      `json:"payment"`
	CreatedAt   time.Time `json:"created_at"`
}

// BookRequest is the validated booking input.
type BookRequest struct {
	DoctorID string `json:"doctor_id"`
	SlotDate string `json:"slot_date"`
	SlotTime string `json:"slot_time"`
}
