package storage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// WorkoutLog is the header row for one completed session.
type WorkoutLog struct {
	ID           uuid.UUID `json:"id"`
	ProgramID    uuid.UUID `json:"program_id"`
	DayName      string    `json:"day_name"`
	StartedAt    time.Time `json:"started_at"`
	EndedAt      time.Time `json:"ended_at"`
	AvgRPE       float64   `json:"avg_rpe"`
	FatigueScore float64   `json:"fatigue_score"`
	Mood         string    `json:"mood"`
	Notes        string    `json:"notes"`
}

// ExerciseLogRow is one logged set within a session.
type ExerciseLogRow struct {
	WorkoutID    uuid.UUID `json:"workout_id"`
	Exercise     string    `json:"exercise"`
	Pattern      string    `json:"pattern"`
	SetNumber    int       `json:"set_number"`
	Reps         int       `json:"reps"`
	WeightKg     float64   `json:"weight_kg"`
	RPE          float64   `json:"rpe"`
	RPEAdjusted  float64   `json:"rpe_adjusted"`
	RIRPerceived int       `json:"rir_perceived"`
	PainLevel    int       `json:"pain_level"`
	Adjusted     bool      `json:"adjusted"`
}

// InsertWorkoutLog writes the session header and returns its ID.
func (db *DB) InsertWorkoutLog(ctx context.Context, w WorkoutLog) (uuid.UUID, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	_, err := db.Pool.Exec(ctx,
		`INSERT INTO workout_logs (id, program_id, day_name, started_at, ended_at,
		   avg_rpe, fatigue_score, mood, notes)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		w.ID, w.ProgramID, w.DayName, w.StartedAt, w.EndedAt,
		w.AvgRPE, w.FatigueScore, w.Mood, w.Notes)
	if err != nil {
		return uuid.Nil, fmt.Errorf("inserting workout log: %w", err)
	}
	return w.ID, nil
}

// InsertExerciseLogs batch-inserts the per-set rows for a session. Returns
// count inserted.
func (db *DB) InsertExerciseLogs(ctx context.Context, rows []ExerciseLogRow) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}

	query := `INSERT INTO exercise_logs (workout_id, exercise, pattern, set_number,
		reps, weight_kg, rpe, rpe_adjusted, rir_perceived, pain_level, adjusted) VALUES `
	args := make([]any, 0, len(rows)*11)
	valueStrings := make([]string, 0, len(rows))

	for i, r := range rows {
		base := i * 11
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6,
			base+7, base+8, base+9, base+10, base+11,
		))
		args = append(args, r.WorkoutID, r.Exercise, r.Pattern, r.SetNumber,
			r.Reps, r.WeightKg, r.RPE, r.RPEAdjusted, r.RIRPerceived,
			r.PainLevel, r.Adjusted)
	}

	query += strings.Join(valueStrings, ",")

	tag, err := db.Pool.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting exercise logs: %w", err)
	}
	return tag.RowsAffected(), nil
}

// QueryRecentWorkouts retrieves session headers in a date range, newest first.
func (db *DB) QueryRecentWorkouts(ctx context.Context, start, end time.Time, limit int) ([]WorkoutLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT id, program_id, day_name, started_at, ended_at,
		   avg_rpe, fatigue_score, mood, notes
		 FROM workout_logs
		 WHERE started_at >= $1 AND started_at < $2
		 ORDER BY started_at DESC
		 LIMIT $3`,
		start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("querying workouts: %w", err)
	}
	defer rows.Close()

	var result []WorkoutLog
	for rows.Next() {
		var w WorkoutLog
		if err := rows.Scan(&w.ID, &w.ProgramID, &w.DayName, &w.StartedAt, &w.EndedAt,
			&w.AvgRPE, &w.FatigueScore, &w.Mood, &w.Notes); err != nil {
			return nil, fmt.Errorf("scanning workout log: %w", err)
		}
		result = append(result, w)
	}
	return result, rows.Err()
}

// QueryExerciseLogs retrieves the per-set rows for one session, in logged
// order.
func (db *DB) QueryExerciseLogs(ctx context.Context, workoutID uuid.UUID) ([]ExerciseLogRow, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT workout_id, exercise, pattern, set_number, reps, weight_kg,
		   rpe, rpe_adjusted, rir_perceived, pain_level, adjusted
		 FROM exercise_logs
		 WHERE workout_id = $1
		 ORDER BY id ASC`,
		workoutID)
	if err != nil {
		return nil, fmt.Errorf("querying exercise logs: %w", err)
	}
	defer rows.Close()

	var result []ExerciseLogRow
	for rows.Next() {
		var r ExerciseLogRow
		if err := rows.Scan(&r.WorkoutID, &r.Exercise, &r.Pattern, &r.SetNumber,
			&r.Reps, &r.WeightKg, &r.RPE, &r.RPEAdjusted, &r.RIRPerceived,
			&r.PainLevel, &r.Adjusted); err != nil {
			return nil, fmt.Errorf("scanning exercise log: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
