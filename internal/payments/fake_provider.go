package payments

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/clinicore/booking-platform/pkg/logging"
)

// FakeProvider is a dev/demo gateway that keeps orders in memory and lets a
// test or demo flow mark them paid without real credentials.
//
// This MUST be gated by configuration (ALLOW_FAKE_ORDERS) and should never be
// enabled in production.
type FakeProvider struct {
	mu     sync.Mutex
	orders map[string]*Order
	logger *logging.Logger
}

// NewFakeProvider creates an empty in-memory provider.
func NewFakeProvider(logger *logging.Logger) *FakeProvider {
	if logger == nil {
		logger = logging.Default()
	}
	return &FakeProvider{
		orders: make(map[string]*Order),
		logger: logger,
	}
}

func (p *FakeProvider) CreateOrder(ctx context.Context, amountCents int64, currency, receipt string) (*Order, error) {
	_ = ctx
	if receipt == "" {
		return nil, fmt.Errorf("payments: fake order requires a receipt")
	}

	order := &Order{
		ID:          "fake_" + uuid.New().String(),
		AmountCents: amountCents,
		Currency:    currency,
		Receipt:     receipt,
		Status:      StatusCreated,
	}

	p.mu.Lock()
	p.orders[order.ID] = order
	p.mu.Unlock()

	p.logger.Info("fake order created", "order_id", order.ID, "receipt", receipt)

	copy := *order
	return &copy, nil
}

func (p *FakeProvider) FetchOrder(ctx context.Context, orderID string) (*Order, error) {
	_ = ctx
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[orderID]
	if !ok {
		return nil, fmt.Errorf("payments: unknown fake order %q: %w", orderID, ErrProviderUnavailable)
	}
	copy := *order
	return &copy, nil
}

// MarkPaid settles a fake order, standing in for the gateway's checkout.
func (p *FakeProvider) MarkPaid(orderID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	order, ok := p.orders[orderID]
	if !ok {
		return fmt.Errorf("payments: unknown fake order %q", orderID)
	}
	order.Status = StatusPaid
	return nil
}
