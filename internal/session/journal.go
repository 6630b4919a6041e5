package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/meltforce/autoreg/internal/models"

	_ "modernc.org/sqlite"
)

// Journal is the local SQLite write-ahead for logged sets. Every set lands
// here before anything touches the network, so a dead connection never loses
// training data.
type Journal struct {
	db *sql.DB
}

// OpenJournal opens (or creates) the journal database at dir/journal.db.
func OpenJournal(dir string) (*Journal, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating journal dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "journal.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening journal db: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS session_sets (
		session_id   TEXT NOT NULL,
		exercise     TEXT NOT NULL,
		set_number   INTEGER NOT NULL,
		reps         INTEGER NOT NULL,
		weight_kg    REAL,
		rpe          INTEGER NOT NULL,
		rpe_adjusted REAL NOT NULL,
		rir          INTEGER NOT NULL,
		pain_level   INTEGER NOT NULL DEFAULT 0,
		logged_at    TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, exercise, set_number)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session_sets table: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS synced_sessions (
		session_id TEXT PRIMARY KEY,
		synced_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating synced_sessions table: %w", err)
	}

	return &Journal{db: db}, nil
}

// AppendSet writes one logged set. Idempotent on replays of the same
// (session, exercise, set) triple.
func (j *Journal) AppendSet(sessionID uuid.UUID, exercise string, set models.CompletedSet) error {
	var weight any
	if set.WeightUsed != nil {
		weight = *set.WeightUsed
	}
	_, err := j.db.Exec(
		`INSERT OR REPLACE INTO session_sets
		   (session_id, exercise, set_number, reps, weight_kg, rpe, rpe_adjusted, rir, pain_level)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		sessionID.String(), exercise, set.SetNumber, set.RepsCompleted,
		weight, set.RPE, set.RPEAdjusted, set.RIRPerceived, set.PainLevel,
	)
	return err
}

// Sets returns the journaled sets for one exercise in a session, in set
// order. Used to rebuild ledger state after a crash.
func (j *Journal) Sets(sessionID uuid.UUID, exercise string) ([]models.CompletedSet, error) {
	rows, err := j.db.Query(
		`SELECT set_number, reps, weight_kg, rpe, rpe_adjusted, rir, pain_level
		 FROM session_sets
		 WHERE session_id = ? AND exercise = ?
		 ORDER BY set_number ASC`,
		sessionID.String(), exercise,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CompletedSet
	for rows.Next() {
		var s models.CompletedSet
		var weight sql.NullFloat64
		if err := rows.Scan(&s.SetNumber, &s.RepsCompleted, &weight,
			&s.RPE, &s.RPEAdjusted, &s.RIRPerceived, &s.PainLevel); err != nil {
			return nil, err
		}
		if weight.Valid {
			w := weight.Float64
			s.WeightUsed = &w
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// IsSynced reports whether a session's journal has been persisted remotely.
func (j *Journal) IsSynced(sessionID uuid.UUID) (bool, error) {
	var count int
	err := j.db.QueryRow(
		`SELECT COUNT(*) FROM synced_sessions WHERE session_id = ?`,
		sessionID.String(),
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkSynced records that a session's sets reached remote storage.
func (j *Journal) MarkSynced(sessionID uuid.UUID) error {
	_, err := j.db.Exec(
		`INSERT OR REPLACE INTO synced_sessions (session_id) VALUES (?)`,
		sessionID.String(),
	)
	return err
}

// Close closes the journal database.
func (j *Journal) Close() error {
	return j.db.Close()
}
