package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Adjustment is one recorded program mutation, kept for auditing and for the
// adjustment-history surfaces.
type Adjustment struct {
	ID           int64     `json:"id"`
	ProgramID    uuid.UUID `json:"program_id"`
	Exercise     string    `json:"exercise"`
	PercentDelta float64   `json:"percent_delta"`
	OldWeightKg  float64   `json:"old_weight_kg"`
	NewWeightKg  float64   `json:"new_weight_kg"`
	Rationale    string    `json:"rationale"`
	CreatedAt    time.Time `json:"created_at"`
}

// InsertAdjustment records an accepted load change.
func (db *DB) InsertAdjustment(ctx context.Context, a Adjustment) error {
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO program_adjustments
		   (program_id, exercise, percent_delta, old_weight_kg, new_weight_kg, rationale)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ProgramID, a.Exercise, a.PercentDelta, a.OldWeightKg, a.NewWeightKg, a.Rationale)
	if err != nil {
		return fmt.Errorf("inserting adjustment: %w", err)
	}
	return nil
}

// QueryAdjustments returns the most recent adjustments for a program, newest
// first. A zero programID returns adjustments across all programs.
func (db *DB) QueryAdjustments(ctx context.Context, programID uuid.UUID, limit int) ([]Adjustment, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, program_id, exercise, percent_delta, old_weight_kg, new_weight_kg, rationale, created_at
		FROM program_adjustments`
	args := []any{}
	if programID != uuid.Nil {
		query += ` WHERE program_id = $1`
		args = append(args, programID)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying adjustments: %w", err)
	}
	defer rows.Close()

	var out []Adjustment
	for rows.Next() {
		var a Adjustment
		if err := rows.Scan(&a.ID, &a.ProgramID, &a.Exercise, &a.PercentDelta,
			&a.OldWeightKg, &a.NewWeightKg, &a.Rationale, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning adjustment: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
