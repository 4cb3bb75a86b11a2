package notify

import "context"

type queueMessage struct {
	ID            string
	Body          string
	ReceiptHandle string
}

// Queue is the transport the notifier publishes booking events over and the
// worker consumes from.
type Queue interface {
	Send(ctx context.Context, body string) error
	Receive(ctx context.Context, maxMessages int, waitSeconds int) ([]queueMessage, error)
	Delete(ctx context.Context, receiptHandle string) error
}
