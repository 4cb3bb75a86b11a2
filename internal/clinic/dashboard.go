package clinic

import (
	"context"
	"fmt"

	"github.com/clinicore/booking-platform/internal/appointments"
	"github.com/clinicore/booking-platform/internal/doctors"
	"github.com/clinicore/booking-platform/internal/patients"
	"github.com/clinicore/booking-platform/pkg/logging"
)

const latestAppointments = 5

// AdminSummary is the admin panel's read model.
type AdminSummary struct {
	DoctorCount      int64                       `json:"doctor_count"`
	AppointmentCount int64                       `json:"appointment_count"`
	PatientCount     int64                       `json:"patient_count"`
	Latest           []*appointments.Appointment `json:"latest_appointments"`
}

// DoctorSummary is the doctor panel's read model. Earnings count an
// appointment's amount once it is completed or paid.
type DoctorSummary struct {
	EarningsCents    int64                       `json:"earnings_cents"`
	AppointmentCount int64                       `json:"appointment_count"`
	PatientCount     int64                       `json:"patient_count"`
	Latest           []*appointments.Appointment `json:"latest_appointments"`
}

// Dashboard aggregates counts and listings for the admin and doctor panels.
// Pure reads over the underlying repositories; summaries are allowed to be
// slightly stale and are cached by the caller-supplied SummaryCache.
type Dashboard struct {
	ledger   appointments.Repository
	doctors  doctors.Repository
	patients patients.Repository
	cache    *SummaryCache
	logger   *logging.Logger
}

// NewDashboard constructs the aggregator. cache may be nil, in which case
// every call recomputes.
func NewDashboard(ledger appointments.Repository, docs doctors.Repository, pats patients.Repository, cache *SummaryCache, logger *logging.Logger) *Dashboard {
	if logger == nil {
		logger = logging.Default()
	}
	return &Dashboard{
		ledger:   ledger,
		doctors:  docs,
		patients: pats,
		cache:    cache,
		logger:   logger,
	}
}

// AdminSummary builds the clinic-wide summary.
func (d *Dashboard) AdminSummary(ctx context.Context) (*AdminSummary, error) {
	if cached, ok := d.cache.GetAdmin(ctx); ok {
		return cached, nil
	}

	doctorCount, err := d.doctors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("clinic: count doctors: %w", err)
	}
	appointmentCount, err := d.ledger.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("clinic: count appointments: %w", err)
	}
	patientCount, err := d.patients.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("clinic: count patients: %w", err)
	}
	latest, err := d.ledger.ListRecent(ctx, latestAppointments)
	if err != nil {
		return nil, fmt.Errorf("clinic: list recent: %w", err)
	}
	if latest == nil {
		latest = []*appointments.Appointment{}
	}

	summary := &AdminSummary{
		DoctorCount:      doctorCount,
		AppointmentCount: appointmentCount,
		PatientCount:     patientCount,
		Latest:           latest,
	}
	d.cache.SetAdmin(ctx, summary)
	return summary, nil
}

// DoctorSummary builds the per-doctor summary.
func (d *Dashboard) DoctorSummary(ctx context.Context, doctorID string) (*DoctorSummary, error) {
	if cached, ok := d.cache.GetDoctor(ctx, doctorID); ok {
		return cached, nil
	}

	appts, err := d.ledger.ListByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("clinic: list doctor appointments: %w", err)
	}

	var earnings int64
	seen := make(map[string]struct{})
	for _, appt := range appts {
		if appt.IsCompleted || appt.Payment {
			earnings += appt.AmountCents
		}
		seen[appt.PatientID] = struct{}{}
	}

	latest := appts
	if len(latest) > latestAppointments {
		latest = latest[:latestAppointments]
	}
	if latest == nil {
		latest = []*appointments.Appointment{}
	}

	summary := &DoctorSummary{
		EarningsCents:    earnings,
		AppointmentCount: int64(len(appts)),
		PatientCount:     int64(len(seen)),
		Latest:           latest,
	}
	d.cache.SetDoctor(ctx, doctorID, summary)
	return summary, nil
}
