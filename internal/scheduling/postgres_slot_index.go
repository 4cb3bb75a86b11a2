package scheduling

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type slotDB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSlotIndex persists occupancy in the doctor_slots table. The unique
// (doctor_id, slot_date, slot_time) index makes Occupy a compare-and-set:
// zero rows inserted means somebody else holds the slot.
type PostgresSlotIndex struct {
	db slotDB
}

// NewPostgresSlotIndex creates a slot index backed by pgx pool.
func NewPostgresSlotIndex(pool *pgxpool.Pool) *PostgresSlotIndex {
	if pool == nil {
		panic("scheduling: pgx pool required")
	}
	return &PostgresSlotIndex{db: pool}
}

func newPostgresSlotIndexWithDB(db slotDB) *PostgresSlotIndex {
	return &PostgresSlotIndex{db: db}
}

// IsOccupied checks for an existing occupancy row.
func (s *PostgresSlotIndex) IsOccupied(ctx context.Context, doctorID, slotDate, slotTime string) (bool, error) {
	query := `SELECT 1 FROM doctor_slots WHERE doctor_id = $1 AND slot_date = $2 AND slot_time = $3`
	var exists int
	if err := s.db.QueryRow(ctx, query, doctorID, slotDate, slotTime).Scan(&exists); err != nil {
		if err == pgx.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("scheduling: check occupancy: %w", err)
	}
	return true, nil
}

// Occupy inserts the occupancy row, returning ErrAlreadyOccupied if it exists.
func (s *PostgresSlotIndex) Occupy(ctx context.Context, doctorID, slotDate, slotTime string) error {
	query := `
		INSERT INTO doctor_slots (doctor_id, slot_date, slot_time)
		VALUES ($1, $2, $3)
		ON CONFLICT DO NOTHING
	`
	ct, err := s.db.Exec(ctx, query, doctorID, slotDate, slotTime)
	if err != nil {
		return fmt.Errorf("scheduling: occupy slot: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrAlreadyOccupied
	}
	return nil
}

// Release deletes the occupancy row; deleting an absent row is a no-op.
func (s *PostgresSlotIndex) Release(ctx context.Context, doctorID, slotDate, slotTime string) error {
	query := `DELETE FROM doctor_slots WHERE doctor_id = $1 AND slot_date = $2 AND slot_time = $3`
	if _, err := s.db.Exec(ctx, query, doctorID, slotDate, slotTime); err != nil {
		return fmt.Errorf("scheduling: release slot: %w", err)
	}
	return nil
}

// OccupiedSlots loads the doctor's full occupancy mapping.
func (s *PostgresSlotIndex) OccupiedSlots(ctx context.Context, doctorID string) (map[string][]string, error) {
	query := `
		SELECT slot_date, slot_time
		FROM doctor_slots
		WHERE doctor_id = $1
		ORDER BY slot_date, slot_time
	`
	rows, err := s.db.Query(ctx, query, doctorID)
	if err != nil {
		return nil, fmt.Errorf("scheduling: load occupancy: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]string)
	for rows.Next() {
		var date, label string
		if err := rows.Scan(&date, &label); err != nil {
			return nil, fmt.Errorf("scheduling: scan occupancy: %w", err)
		}
		out[date] = append(out[date], label)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scheduling: iterate occupancy: %w", err)
	}
	return out, nil
}
