package mcp

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/autoreg/internal/models"
	"github.com/meltforce/autoreg/internal/storage"
)

// DataSource abstracts the data layer for MCP tools. Both *storage.DB
// (local) and HTTPClient (remote via REST API) satisfy this interface.
type DataSource interface {
	QueryRecentWorkouts(ctx context.Context, start, end time.Time, limit int) ([]storage.WorkoutLog, error)
	QueryExerciseLogs(ctx context.Context, workoutID uuid.UUID) ([]storage.ExerciseLogRow, error)
	QueryAdjustments(ctx context.Context, programID uuid.UUID, limit int) ([]storage.Adjustment, error)
	QueryPainHistory(ctx context.Context, exercise string, limit int) ([]models.PainAdaptation, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
