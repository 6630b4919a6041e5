package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/meltforce/autoreg/internal/models"
)

// InsertPainLogs batch-inserts the pain adaptations recorded during a session.
func (db *DB) InsertPainLogs(ctx context.Context, adaptations []models.PainAdaptation) (int64, error) {
	if len(adaptations) == 0 {
		return 0, nil
	}

	query := `INSERT INTO pain_logs (exercise, area, intensity, action,
		from_value, to_value, message, session_date) VALUES `
	args := make([]any, 0, len(adaptations)*8)
	valueStrings := make([]string, 0, len(adaptations))

	for i, a := range adaptations {
		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8,
		))
		args = append(args, a.Exercise, a.Area, a.Intensity, string(a.Action),
			a.FromValue, a.ToValue, a.Message, a.SessionDate)
	}

	query += strings.Join(valueStrings, ",")

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting pain logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryPainHistory returns the recorded pain adaptations for one exercise,
// oldest first, so recurring-pain checks can count across sessions.
func (db *DB) QueryPainHistory(ctx context.Context, exercise string, limit int) ([]models.PainAdaptation, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT exercise, area, intensity, action, from_value, to_value, message, session_date
		 FROM pain_logs
		 WHERE lower(exercise) = lower($1)
		 ORDER BY session_date ASC, id ASC
		 LIMIT $2`,
		exercise, limit)
	if err != nil {
		return nil, fmt.Errorf("querying pain history: %w", err)
	}
	defer rows.Close()

	var result []models.PainAdaptation
	for rows.Next() {
		var a models.PainAdaptation
		var action string
		if err := rows.Scan(&a.Exercise, &a.Area, &a.Intensity, &action,
			&a.FromValue, &a.ToValue, &a.Message, &a.SessionDate); err != nil {
			return nil, fmt.Errorf("scanning pain log: %w", err)
		}
		a.Action = models.PainAction(action)
		result = append(result, a)
	}
	return result, rows.Err()
}
