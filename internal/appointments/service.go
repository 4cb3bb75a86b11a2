package appointments

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/clinicore/booking-platform/internal/doctors"
	"github.com/clinicore/booking-platform/internal/identity"
	"github.com/clinicore/booking-platform/internal/observability/metrics"
	"github.com/clinicore/booking-platform/internal/scheduling"
	"github.com/clinicore/booking-platform/pkg/logging"
)

var bookingTracer = otel.Tracer("clinicore.internal.appointments")

// Notifier publishes lifecycle events for async delivery. Failures are logged
// and swallowed: a booking never fails because the notification path is down.
type Notifier interface {
	BookingConfirmed(ctx context.Context, appt *Appointment) error
	BookingCancelled(ctx context.Context, appt *Appointment) error
}

// ServiceOption customizes the coordinator.
type ServiceOption func(*Service)

// WithNotifier wires a lifecycle event publisher.
func WithNotifier(n Notifier) ServiceOption {
	return func(s *Service) {
		s.notifier = n
	}
}

// Service is the reservation coordinator: the only path that creates
// appointments or frees slots. Check-then-occupy for a slot key runs under a
// per-key mutex so no two bookings for the same key interleave; operations on
// different keys never share a lock.
type Service struct {
	ledger   Repository
	slots    scheduling.SlotIndex
	doctors  doctors.Repository
	locks    *scheduling.KeyMutex
	metrics  *metrics.BookingMetrics
	notifier Notifier
	logger   *logging.Logger
}

// NewService constructs the reservation coordinator.
func NewService(ledger Repository, slots scheduling.SlotIndex, docs doctors.Repository, m *metrics.BookingMetrics, logger *logging.Logger, opts ...ServiceOption) *Service {
	if ledger == nil {
		panic("appointments: ledger required")
	}
	if slots == nil {
		panic("appointments: slot index required")
	}
	if docs == nil {
		panic("appointments: doctors repository required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		ledger:  ledger,
		slots:   slots,
		doctors: docs,
		locks:   scheduling.NewKeyMutex(),
		metrics: m,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Book reserves the slot and appends the appointment as one logical unit.
// The amount is snapshotted from the doctor's current fee. If persisting the
// appointment fails after the slot was occupied, the occupy step is rolled
// back before the error is surfaced: no slot may stay occupied without a live
// appointment record.
func (s *Service) Book(ctx context.Context, patientID string, req BookRequest) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.book")
	defer span.End()
	span.SetAttributes(
		attribute.String("clinicore.doctor_id", req.DoctorID),
		attribute.String("clinicore.slot_date", req.SlotDate),
		attribute.String("clinicore.slot_time", req.SlotTime),
	)
	start := time.Now()

	if err := scheduling.ValidateSlotKey(req.SlotDate, req.SlotTime); err != nil {
		s.metrics.ObserveBooking("validation_error", time.Since(start).Seconds())
		return nil, err
	}

	doc, err := s.doctors.GetByID(ctx, req.DoctorID)
	if err != nil {
		s.metrics.ObserveBooking("doctor_not_found", time.Since(start).Seconds())
		return nil, err
	}
	if !doc.Available {
		s.metrics.ObserveBooking("doctor_unavailable", time.Since(start).Seconds())
		return nil, ErrDoctorUnavailable
	}

	key := scheduling.SlotKey(req.DoctorID, req.SlotDate, req.SlotTime)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	occupied, err := s.slots.IsOccupied(ctx, req.DoctorID, req.SlotDate, req.SlotTime)
	if err != nil {
		s.metrics.ObserveBooking("error", time.Since(start).Seconds())
		return nil, err
	}
	if occupied {
		s.metrics.ObserveBooking("slot_unavailable", time.Since(start).Seconds())
		return nil, ErrSlotUnavailable
	}

	if err := s.slots.Occupy(ctx, req.DoctorID, req.SlotDate, req.SlotTime); err != nil {
		if errors.Is(err, scheduling.ErrAlreadyOccupied) {
			// The availability check just passed under the key lock, so a
			// conflict here means the exclusion region is broken.
			s.metrics.ObserveSlotConflict()
			s.logger.Error("slot conflict past availability check",
				"doctor_id", req.DoctorID,
				"slot_date", req.SlotDate,
				"slot_time", req.SlotTime,
			)
			s.metrics.ObserveBooking("slot_unavailable", time.Since(start).Seconds())
			return nil, ErrSlotUnavailable
		}
		s.metrics.ObserveBooking("error", time.Since(start).Seconds())
		return nil, err
	}

	appt, err := s.ledger.Create(ctx, CreateParams{
		PatientID:   patientID,
		DoctorID:    req.DoctorID,
		SlotDate:    req.SlotDate,
		SlotTime:    req.SlotTime,
		AmountCents: doc.FeeCents,
	})
	if err != nil {
		span.RecordError(err)
		// Compensating rollback: the slot must not stay occupied without a
		// ledger record.
		if relErr := s.slots.Release(ctx, req.DoctorID, req.SlotDate, req.SlotTime); relErr != nil {
			s.logger.Error("slot release after failed booking failed",
				"doctor_id", req.DoctorID,
				"slot_date", req.SlotDate,
				"slot_time", req.SlotTime,
				"error", relErr,
			)
		}
		s.metrics.ObserveBooking("error", time.Since(start).Seconds())
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.BookingConfirmed(ctx, appt); err != nil {
			s.logger.Error("failed to publish booking confirmation", "error", err, "appointment_id", appt.ID)
		}
	}

	s.metrics.ObserveBooking("success", time.Since(start).Seconds())
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", appt.DoctorID,
		"patient_id", appt.PatientID,
		"slot_date", appt.SlotDate,
		"slot_time", appt.SlotTime,
		"amount_cents", appt.AmountCents,
	)
	return appt, nil
}

// Cancel marks the appointment cancelled and releases its slot. The ledger is
// marked first: a cancel retried after a crash between the two steps lands in
// the idempotent already-cancelled branch, and Release itself is a no-op for
// absent slots.
func (s *Service) Cancel(ctx context.Context, appointmentID string, actor identity.Actor) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.cancel")
	defer span.End()
	span.SetAttributes(attribute.String("clinicore.appointment_id", appointmentID))

	appt, err := s.ledger.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}

	if !canModify(appt, actor) {
		return nil, ErrUnauthorized
	}

	if appt.Cancelled {
		return appt, nil
	}

	key := scheduling.SlotKey(appt.DoctorID, appt.SlotDate, appt.SlotTime)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.ledger.MarkCancelled(ctx, appointmentID); err != nil {
		span.RecordError(err)
		return nil, err
	}
	if err := s.slots.Release(ctx, appt.DoctorID, appt.SlotDate, appt.SlotTime); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.metrics.ObserveCancellation(actor.Role)
	s.logger.Info("appointment cancelled",
		"appointment_id", appointmentID,
		"actor_id", actor.ID,
		"actor_role", actor.Role,
	)

	appt.Cancelled = true
	appt.IsCompleted = false

	if s.notifier != nil {
		if err := s.notifier.BookingCancelled(ctx, appt); err != nil {
			s.logger.Error("failed to publish cancellation notice", "error", err, "appointment_id", appointmentID)
		}
	}
	return appt, nil
}

// Complete marks the appointment completed. Doctor-only; a cancelled
// appointment cannot be completed and the cancelled flag is never flipped
// back. The slot index is untouched: occupancy already reflects a consumed,
// non-cancelled slot.
func (s *Service) Complete(ctx context.Context, appointmentID, doctorID string) (*Appointment, error) {
	ctx, span := bookingTracer.Start(ctx, "appointments.complete")
	defer span.End()
	span.SetAttributes(attribute.String("clinicore.appointment_id", appointmentID))

	appt, err := s.ledger.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.DoctorID != doctorID {
		return nil, ErrUnauthorized
	}
	if appt.Cancelled {
		return nil, ErrInvalidState
	}
	if appt.IsCompleted {
		return appt, nil
	}

	if err := s.ledger.MarkCompleted(ctx, appointmentID); err != nil {
		span.RecordError(err)
		return nil, err
	}

	s.logger.Info("appointment completed", "appointment_id", appointmentID, "doctor_id", doctorID)

	appt.IsCompleted = true
	return appt, nil
}

// ListForPatient returns the patient's appointments, newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	return s.ledger.ListByPatient(ctx, patientID)
}

// ListForDoctor returns the doctor's appointments, newest first.
func (s *Service) ListForDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	return s.ledger.ListByDoctor(ctx, doctorID)
}

// ListAll returns recent appointments for the admin panel.
func (s *Service) ListAll(ctx context.Context, limit int) ([]*Appointment, error) {
	if limit <= 0 {
		limit = 100
	}
	return s.ledger.ListRecent(ctx, limit)
}

func canModify(appt *Appointment, actor identity.Actor) bool {
	switch actor.Role {
	case identity.RoleAdmin:
		return true
	case identity.RolePatient:
		return appt.PatientID == actor.ID
	case identity.RoleDoctor:
		return appt.DoctorID == actor.ID
	}
	return false
}
