package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/clinicore/booking-platform/internal/doctors"
	"github.com/clinicore/booking-platform/internal/patients"
	"github.com/clinicore/booking-platform/pkg/logging"
)

const (
	defaultWorkerCount  = 2
	defaultWaitSeconds  = 2
	defaultBatchSize    = 5
	maxWaitSeconds      = 20
	maxReceiveBatchSize = 10
)

type workerConfig struct {
	workers          int
	receiveWaitSecs  int
	receiveBatchSize int
}

// WorkerOption customizes worker behavior.
type WorkerOption func(*workerConfig)

// WithWorkerCount sets the number of concurrent consumer goroutines.
func WithWorkerCount(count int) WorkerOption {
	return func(cfg *workerConfig) {
		if count > 0 {
			cfg.workers = count
		}
	}
}

// WithReceiveWaitSeconds sets the long-poll wait duration.
func WithReceiveWaitSeconds(seconds int) WorkerOption {
	return func(cfg *workerConfig) {
		if seconds < 0 {
			return
		}
		if seconds > maxWaitSeconds {
			seconds = maxWaitSeconds
		}
		cfg.receiveWaitSecs = seconds
	}
}

// WithReceiveBatchSize sets how many messages to fetch per poll.
func WithReceiveBatchSize(size int) WorkerOption {
	return func(cfg *workerConfig) {
		if size <= 0 {
			return
		}
		if size > maxReceiveBatchSize {
			size = maxReceiveBatchSize
		}
		cfg.receiveBatchSize = size
	}
}

// Worker consumes booking events from the queue and sends the emails.
type Worker struct {
	queue    Queue
	sender   EmailSender
	patients patients.Repository
	doctors  doctors.Repository
	logger   *logging.Logger

	cfg workerConfig
	wg  sync.WaitGroup
}

// NewWorker constructs the notification worker.
func NewWorker(queue Queue, sender EmailSender, pats patients.Repository, docs doctors.Repository, logger *logging.Logger, opts ...WorkerOption) *Worker {
	if queue == nil {
		panic("notify: queue required")
	}
	if sender == nil {
		sender = NewStubEmailSender(logger)
	}
	if logger == nil {
		logger = logging.Default()
	}

	cfg := workerConfig{
		workers:          defaultWorkerCount,
		receiveWaitSecs:  defaultWaitSeconds,
		receiveBatchSize: defaultBatchSize,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Worker{
		queue:    queue,
		sender:   sender,
		patients: pats,
		doctors:  docs,
		logger:   logger,
		cfg:      cfg,
	}
}

// Start launches the consumer goroutines. They exit when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	for i := 0; i < w.cfg.workers; i++ {
		w.wg.Add(1)
		go w.run(ctx, i+1)
	}
}

// Wait blocks until all worker goroutines exit.
func (w *Worker) Wait() {
	w.wg.Wait()
}

func (w *Worker) run(ctx context.Context, workerID int) {
	defer w.wg.Done()
	w.logger.Debug("notify worker started", "worker_id", workerID)

	backoff := time.Second

	for {
		select {
		case <-ctx.Done():
			w.logger.Debug("notify worker stopping", "worker_id", workerID)
			return
		default:
		}

		messages, err := w.queue.Receive(ctx, w.cfg.receiveBatchSize, w.cfg.receiveWaitSecs)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			w.logger.Error("failed to receive booking events", "error", err, "worker_id", workerID)
			time.Sleep(backoff)
			if backoff < 5*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		for _, msg := range messages {
			w.handleMessage(ctx, msg)
		}
	}
}

func (w *Worker) handleMessage(ctx context.Context, msg queueMessage) {
	var event BookingEvent
	if err := json.Unmarshal([]byte(msg.Body), &event); err != nil {
		w.logger.Error("failed to decode booking event", "error", err)
		w.deleteMessage(ctx, msg.ReceiptHandle)
		return
	}

	if err := w.process(ctx, event); err != nil {
		// Leave the message for redelivery.
		w.logger.Error("failed to process booking event",
			"error", err,
			"kind", event.Kind,
			"appointment_id", event.AppointmentID,
		)
		return
	}

	w.deleteMessage(ctx, msg.ReceiptHandle)
}

// deleteMessage removes a handled message from the queue. A failed delete only
// risks a duplicate email, so it is logged and not retried.
func (w *Worker) deleteMessage(ctx context.Context, receiptHandle string) {
	if err := w.queue.Delete(ctx, receiptHandle); err != nil {
		w.logger.Error("failed to delete booking event", "error", err)
	}
}

func (w *Worker) process(ctx context.Context, event BookingEvent) error {
	patient, err := w.patients.GetByID(ctx, event.PatientID)
	if err != nil {
		return fmt.Errorf("notify: load patient: %w", err)
	}

	doctorName := "your doctor"
	if w.doctors != nil {
		if doc, err := w.doctors.GetByID(ctx, event.DoctorID); err == nil {
			doctorName = doc.Name
		}
	}

	msg, err := composeEmail(event, patient.Name, patient.Email, doctorName)
	if err != nil {
		return err
	}

	if err := w.sender.Send(ctx, msg); err != nil {
		return fmt.Errorf("notify: send email: %w", err)
	}

	w.logger.Info("booking notification sent",
		"kind", event.Kind,
		"appointment_id", event.AppointmentID,
		"to", patient.Email,
	)
	return nil
}

func composeEmail(event BookingEvent, patientName, patientEmail, doctorName string) (EmailMessage, error) {
	switch event.Kind {
	case EventBookingConfirmed:
		return EmailMessage{
			To:      patientEmail,
			ToName:  patientName,
			Subject: "Your appointment is booked",
			Body: fmt.Sprintf("Hi %s,\n\nYour appointment with %s on %s at %s is confirmed.\n",
				patientName, doctorName, event.SlotDate, event.SlotTime),
		}, nil
	case EventBookingCancelled:
		return EmailMessage{
			To:      patientEmail,
			ToName:  patientName,
			Subject: "Your appointment was cancelled",
			Body: fmt.Sprintf("Hi %s,\n\nYour appointment with %s on %s at %s has been cancelled. The slot is available again.\n",
				patientName, doctorName, event.SlotDate, event.SlotTime),
		}, nil
	default:
		return EmailMessage{}, fmt.Errorf("notify: unknown event kind %q", event.Kind)
	}
}
