package patients

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type patientDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores patients in the relational database.
type PostgresRepository struct {
	db patientDB
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("patients: pgx pool required")
	}
	return &PostgresRepository{db: pool}
}

func newPostgresRepositoryWithDB(db patientDB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create registers a new patient
func (r *PostgresRepository) Create(ctx context.Context, req *RegisterPatientRequest) (*Patient, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	id := uuid.New()
	query := `
		INSERT INTO patients (id, name, email)
		VALUES ($1, $2, $3)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.db.QueryRow(ctx, query, id, req.Name, req.Email).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("patients: insert failed: %w", err)
	}

	return &Patient{
		ID:        id.String(),
		Name:      req.Name,
		Email:     req.Email,
		CreatedAt: createdAt,
	}, nil
}

// GetByID retrieves a patient by ID
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Patient, error) {
	query := `SELECT id, name, email, created_at FROM patients WHERE id = $1`
	var p Patient
	if err := r.db.QueryRow(ctx, query, id).Scan(&p.ID, &p.Name, &p.Email, &p.CreatedAt); err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("patients: select failed: %w", err)
	}
	return &p, nil
}

// Count returns the total number of registered patients.
func (r *PostgresRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM patients`).Scan(&count); err != nil {
		return 0, fmt.Errorf("patients: count failed: %w", err)
	}
	return count, nil
}
