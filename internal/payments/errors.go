package payments

import "errors"

var (
	// ErrAlreadyCancelled is returned when an order is requested for a
	// cancelled appointment
	ErrAlreadyCancelled = errors.New("appointment is cancelled")

	// ErrPaymentNotCompleted is returned when the provider reports the order
	// as anything other than paid
	ErrPaymentNotCompleted = errors.New("payment not completed")

	// ErrProviderUnavailable is returned when the payment provider cannot be
	// reached or responds with an error
	ErrProviderUnavailable = errors.New("payment provider unavailable")

	// ErrUnknownOrder is returned when a provider order id carries no
	// appointment receipt
	ErrUnknownOrder = errors.New("order does not reference an appointment")
)
