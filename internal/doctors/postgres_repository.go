package doctors

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type doctorDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresRepository stores doctors in the relational database.
type PostgresRepository struct {
	db doctorDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("doctors: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db doctorDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new row.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateDoctorRequest) (*Doctor, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO doctors (id, name, email, speciality, fee_cents, available)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query,
		id,
		req.Name,
		req.Email,
		req.Speciality,
		req.FeeCents,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("doctors: insert failed: %w", err)
	}

	return &Doctor{
		ID:         id.String(),
		Name:       req.Name,
		Email:      req.Email,
		Speciality: req.Speciality,
		FeeCents:   req.FeeCents,
		Available:  true,
		CreatedAt:  createdAt,
	}, nil
}

// GetByID fetches a doctor.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Doctor, error) {
	query := `
		SELECT id, name, email, speciality, fee_cents, available, created_at
		FROM doctors
		WHERE id = $1
	`
	var doc Doctor
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&doc.ID,
		&doc.Name,
		&doc.Email,
		&doc.Speciality,
		&doc.FeeCents,
		&doc.Available,
		&doc.CreatedAt,
	); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("doctors: select failed: %w", err)
	}
	return &doc, nil
}

// List returns all doctors ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context) ([]*Doctor, error) {
	query := `
		SELECT id, name, email, speciality, fee_cents, available, created_at
		FROM doctors
		ORDER BY created_at
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("doctors: list failed: %w", err)
	}
	defer rows.Close()

	var out []*Doctor
	for rows.Next() {
		var doc Doctor
		if err := rows.Scan(
			&doc.ID,
			&doc.Name,
			&doc.Email,
			&doc.Speciality,
			&doc.FeeCents,
			&doc.Available,
			&doc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("doctors: scan failed: %w", err)
		}
		out = append(out, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("doctors: iterate failed: %w", err)
	}
	return out, nil
}

// Count returns the number of doctors.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM doctors`).Scan(&count); err != nil {
		return 0, fmt.Errorf("doctors: count failed: %w", err)
	}
	return count, nil
}

// SetAvailability flips whether the doctor accepts new bookings.
func (r *PostgresRepository) SetAvailability(ctx context.Context, id string, available bool) error {
	ct, err := r.db.Exec(ctx, `UPDATE doctors SET available = $2 WHERE id = $1`, id, available)
	if err != nil {
		return fmt.Errorf("doctors: update availability: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}

// UpdateProfile updates the doctor-editable fields.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id string, req *UpdateProfileRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	ct, err := r.db.Exec(ctx,
		`UPDATE doctors SET fee_cents = $2, available = $3 WHERE id = $1`,
		id, req.FeeCents, req.Available,
	)
	if err != nil {
		return fmt.Errorf("doctors: update profile: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}
	return nil
}
