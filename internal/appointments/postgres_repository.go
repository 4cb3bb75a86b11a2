package appointments

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ledgerDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores the appointment ledger in the relational database.
type PostgresRepository struct {
	db ledgerDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("appointments: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db ledgerDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const appointmentColumns = `id, patient_id, doctor_id, slot_date, slot_time, amount_cents, cancelled, is_completed, payment, created_at`

// Create appends a new appointment record.
func (r *PostgresRepository) Create(ctx context.Context, params CreateParams) (*Appointment, error) {
	id := uuid.New()
	query := `
		INSERT INTO appointments (id, patient_id, doctor_id, slot_date, slot_time, amount_cents)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		params.PatientID,
		params.DoctorID,
		params.SlotDate,
		params.SlotTime,
		params.AmountCents,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("appointments: insert failed: %w", err)
	}

	return &Appointment{
		ID:          id.String(),
		PatientID:   params.PatientID,
		DoctorID:    params.DoctorID,
		SlotDate:    params.SlotDate,
		SlotTime:    params.SlotTime,
		AmountCents: params.AmountCents,
		CreatedAt:   createdAt,
	}, nil
}

// GetByID fetches an appointment.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`
	appt, err := scanAppointment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("appointments: select failed: %w", err)
	}
	return appt, nil
}

// MarkCancelled sets the cancelled flag. Idempotent.
func (r *PostgresRepository) MarkCancelled(ctx context.Context, id string) error {
	return r.mark(ctx, id, `UPDATE appointments SET cancelled = TRUE, is_completed = FALSE WHERE id = $1`)
}

// MarkCompleted sets the completed flag.
func (r *PostgresRepository) MarkCompleted(ctx context.Context, id string) error {
	return r.mark(ctx, id, `UPDATE appointments SET is_completed = TRUE WHERE id = $1`)
}

// MarkPaid sets the payment flag. Idempotent.
func (r *PostgresRepository) MarkPaid(ctx context.Context, id string) error {
	return r.mark(ctx, id, `UPDATE appointments SET payment = TRUE WHERE id = $1`)
}

func (r *PostgresRepository) mark(ctx context.Context, id, query string) error {
	ct, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("appointments: update failed: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByPatient returns the patient's appointments, newest first.
func (r *PostgresRepository) ListByPatient(ctx context.Context, patientID string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE patient_id = $1 ORDER BY created_at DESC`
	return r.listQuery(ctx, query, patientID)
}

// ListByDoctor returns the doctor's appointments, newest first.
func (r *PostgresRepository) ListByDoctor(ctx context.Context, doctorID string) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments WHERE doctor_id = $1 ORDER BY created_at DESC`
	return r.listQuery(ctx, query, doctorID)
}

// ListRecent returns the most recently created appointments, newest first.
func (r *PostgresRepository) ListRecent(ctx context.Context, limit int) ([]*Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments ORDER BY created_at DESC LIMIT $1`
	return r.listQuery(ctx, query, limit)
}

// Count returns the total number of appointment records.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM appointments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("appointments: count failed: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) listQuery(ctx context.Context, query string, args ...any) ([]*Appointment, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("appointments: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("appointments: scan failed: %w", err)
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("appointments: iterate failed: %w", err)
	}
	return out, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var appt Appointment
	if err := row.Scan(
		&appt.ID,
		&appt.PatientID,
		&appt.DoctorID,
		&appt.SlotDate,
		&appt.SlotTime,
		&appt.AmountCents,
		&appt.Cancelled,
		&appt.IsCompleted,
		&appt.Payment,
		&appt.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &appt, nil
}
