package payments

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicore/booking-platform/internal/appointments"
	"github.com/clinicore/booking-platform/internal/observability/metrics"
	"github.com/clinicore/booking-platform/pkg/logging"
)

var paymentTracer = otel.Tracer("clinicore.internal.payments")

// Gate reconciles provider order status with the appointment payment flag.
// It never moves money; the provider's record is the source of truth and the
// ledger flag only ever goes from false to true.
type Gate struct {
	ledger   appointments.Repository
	provider Provider
	currency string
	metrics  *metrics.BookingMetrics
	logger   *logging.Logger
}

// NewGate constructs the payment confirmation gate.
func NewGate(ledger appointments.Repository, provider Provider, currency string, m *metrics.BookingMetrics, logger *logging.Logger) *Gate {
	if ledger == nil {
		panic("payments: ledger required")
	}
	if provider == nil {
		panic("payments: provider required")
	}
	if currency == "" {
		currency = "INR"
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Gate{
		ledger:   ledger,
		provider: provider,
		currency: currency,
		metrics:  m,
		logger:   logger,
	}
}

// CreateOrder asks the provider for an order covering the appointment's
// amount. The appointment id rides along as the receipt; nothing is mutated
// locally.
func (g *Gate) CreateOrder(ctx context.Context, appointmentID string) (*Order, error) {
	ctx, span := paymentTracer.Start(ctx, "payments.create_order")
	defer span.End()
	span.SetAttributes(attribute.String("clinicore.appointment_id", appointmentID))

	appt, err := g.ledger.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.Cancelled {
		return nil, ErrAlreadyCancelled
	}

	order, err := g.provider.CreateOrder(ctx, appt.AmountCents, g.currency, appt.ID)
	if err != nil {
		span.RecordError(err)
		g.metrics.ObservePaymentConfirmation("order_failed")
		return nil, fmt.Errorf("payments: create order: %w", err)
	}

	g.metrics.ObservePaymentConfirmation("order_created")
	g.logger.Info("payment order created",
		"order_id", order.ID,
		"appointment_id", appt.ID,
		"amount_cents", order.AmountCents,
	)
	return order, nil
}

// Confirm fetches the provider's view of the order and, if paid, flips the
// appointment's payment flag. Idempotent, and deliberately allowed on
// cancelled appointments: money that reached the provider is recorded
// regardless of scheduling state.
func (g *Gate) Confirm(ctx context.Context, providerOrderID string) (*appointments.Appointment, error) {
	ctx, span := paymentTracer.Start(ctx, "payments.confirm")
	defer span.End()
	span.SetAttributes(attribute.String("clinicore.order_id", providerOrderID))

	order, err := g.provider.FetchOrder(ctx, providerOrderID)
	if err != nil {
		span.RecordError(err)
		g.metrics.ObservePaymentConfirmation("provider_error")
		return nil, fmt.Errorf("payments: fetch order: %w", err)
	}

	if order.Status != StatusPaid {
		g.metrics.ObservePaymentConfirmation("not_completed")
		return nil, ErrPaymentNotCompleted
	}
	if order.Receipt == "" {
		return nil, ErrUnknownOrder
	}

	if err := g.ledger.MarkPaid(ctx, order.Receipt); err != nil {
		span.RecordError(err)
		return nil, err
	}

	g.metrics.ObservePaymentConfirmation("confirmed")
	g.logger.Info("payment confirmed", "order_id", order.ID, "appointment_id", order.Receipt)

	return g.ledger.GetByID(ctx, order.Receipt)
}
