package payments

import "context"

// Order statuses reported by the provider.
const (
	StatusCreated   = "created"
	StatusAttempted = "attempted"
	StatusPaid      = "paid"
)

// Order is the provider-side order for an appointment payment. Receipt
// carries the appointment id so Confirm can find its way back.
type Order struct {
	ID          string `json:"id"`
	AmountCents int64  `json:"amount_cents"`
	Currency    string `json:"currency"`
	Receipt     string `json:"receipt"`
	Status      string `json:"status"`
}

// Provider creates orders against the payment gateway and reports their
// settlement status. The gateway owns the money movement; this service only
// reconciles the outcome.
type Provider interface {
	CreateOrder(ctx context.Context, amountCents int64, currency, receipt string) (*Order, error)
	FetchOrder(ctx context.Context, orderID string) (*Order, error)
}
