package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/meltforce/autoreg/internal/program"
)

// ErrProgramNotFound is returned when no stored program matches the ID.
var ErrProgramNotFound = errors.New("storage: program not found")

// LoadProgram fetches a training program by ID. The shape document is stored
// as jsonb and decoded through the tolerant program types, so any historical
// schema variant loads.
func (db *DB) LoadProgram(ctx context.Context, id uuid.UUID) (*program.Program, error) {
	var doc []byte
	err := db.Pool.QueryRow(ctx,
		`SELECT document FROM training_programs WHERE id = $1`, id,
	).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProgramNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading program: %w", err)
	}

	var p program.Program
	if err := json.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("decoding program %s: %w", id, err)
	}
	p.ID = id
	return &p, nil
}

// SaveProgram writes a program document back, bumping updated_at. The write
// replaces the whole document; the mutator already applied the change to the
// in-memory shape.
func (db *DB) SaveProgram(ctx context.Context, p *program.Program) error {
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding program %s: %w", p.ID, err)
	}

	tag, err := db.Pool.Exec(ctx,
		`UPDATE training_programs SET document = $2, updated_at = $3 WHERE id = $1`,
		p.ID, doc, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving program %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProgramNotFound
	}
	return nil
}

// InsertProgram stores a new program document.
func (db *DB) InsertProgram(ctx context.Context, p *program.Program) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding program: %w", err)
	}
	_, err = db.Pool.Exec(ctx,
		`INSERT INTO training_programs (id, name, document) VALUES ($1, $2, $3)`,
		p.ID, p.Name, doc)
	if err != nil {
		return fmt.Errorf("inserting program: %w", err)
	}
	return nil
}
