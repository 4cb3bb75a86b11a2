package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/clinicore/booking-platform/internal/appointments"
	"github.com/clinicore/booking-platform/pkg/logging"
)

// Booking event kinds carried over the queue.
const (
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
)

// BookingEvent is the queue payload for appointment lifecycle notifications.
type BookingEvent struct {
	Kind          string `json:"kind"`
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	DoctorID      string `json:"doctor_id"`
	SlotDate      string `json:"slot_date"`
	SlotTime      string `json:"slot_time"`
}

// Service publishes booking events for async email delivery. Publishing is
// best-effort from the caller's point of view: a booking must never fail
// because the notification queue is down, so callers log and move on.
type Service struct {
	queue  Queue
	logger *logging.Logger
}

// NewService creates the notification publisher. queue may be nil, which
// disables notifications entirely.
func NewService(queue Queue, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		queue:  queue,
		logger: logger,
	}
}

// BookingConfirmed enqueues a confirmation notification.
func (s *Service) BookingConfirmed(ctx context.Context, appt *appointments.Appointment) error {
	return s.publish(ctx, EventBookingConfirmed, appt)
}

// BookingCancelled enqueues a cancellation notification.
func (s *Service) BookingCancelled(ctx context.Context, appt *appointments.Appointment) error {
	return s.publish(ctx, EventBookingCancelled, appt)
}

func (s *Service) publish(ctx context.Context, kind string, appt *appointments.Appointment) error {
	if s == nil || s.queue == nil {
		return nil
	}
	if appt == nil {
		return fmt.Errorf("notify: nil appointment")
	}

	event := BookingEvent{
		Kind:          kind,
		AppointmentID: appt.ID,
		PatientID:     appt.PatientID,
		DoctorID:      appt.DoctorID,
		SlotDate:      appt.SlotDate,
		SlotTime:      appt.SlotTime,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("notify: encode event: %w", err)
	}

	if err := s.queue.Send(ctx, string(body)); err != nil {
		return fmt.Errorf("notify: enqueue event: %w", err)
	}

	s.logger.Debug("booking event enqueued", "kind", kind, "appointment_id", appt.ID)
	return nil
}
