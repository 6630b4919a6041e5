package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/meltforce/autoreg/internal/engine"
	"github.com/meltforce/autoreg/internal/models"
)

// defaultTimeRange returns start/end defaulting to the last 30 days.
func defaultTimeRange(startStr, endStr string) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if endStr != "" {
		end, err = parseFlexTime(endStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		end = time.Now()
	}

	if startStr != "" {
		start, err = parseFlexTime(startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	} else {
		start = end.AddDate(0, 0, -30)
	}

	return start, end, nil
}

func parseFlexTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, nil
	}
	t, err = time.Parse("2006-01-02", s)
	if err == nil {
		return t, nil
	}
	return time.Time{}, err
}

// --- Tool definitions ---

var toolGetRecentWorkouts = mcp.NewTool("get_recent_workouts",
	mcp.WithDescription("Query logged training sessions. Returns per-session summaries including average RPE and the pattern-weighted fatigue score."),
	mcp.WithString("start", mcp.Description("Start date (ISO 8601 or YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (ISO 8601 or YYYY-MM-DD). Defaults to now.")),
)

var toolGetWorkoutSets = mcp.NewTool("get_workout_sets",
	mcp.WithDescription("Retrieve every logged set of one session: reps, weight, raw and context-adjusted RPE, perceived RIR, pain level, and whether an adjustment was accepted on the set."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Session UUID from get_recent_workouts")),
)

var toolGetAdjustments = mcp.NewTool("get_adjustment_history",
	mcp.WithDescription("Accepted load changes, newest first: exercise, percent delta, old and new weight, and the rationale the engine gave."),
	mcp.WithString("program_id", mcp.Description("Filter by program UUID. Omit for all programs.")),
	mcp.WithNumber("limit", mcp.Description("Maximum rows to return. Defaults to 50.")),
)

var toolGetSessionFatigue = mcp.NewTool("get_session_fatigue",
	mcp.WithDescription("Pattern-weighted fatigue breakdown for one session: per-exercise average RPE, movement-pattern multiplier, contribution, and the normalized 0-10 score. Compound-heavy sessions score hotter than the raw RPE average suggests."),
	mcp.WithString("workout_id", mcp.Required(), mcp.Description("Session UUID from get_recent_workouts")),
)

var toolGetPainHistory = mcp.NewTool("get_pain_history",
	mcp.WithDescription("Pain adaptations recorded for one exercise across sessions, oldest first. Three or more moderate reports across distinct sessions mean a recovery protocol is warranted."),
	mcp.WithString("exercise", mcp.Required(), mcp.Description("Exercise name (case-insensitive)")),
)

// --- Tool handlers ---

func (h *handlers) getRecentWorkouts(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultTimeRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	workouts, err := h.ds.QueryRecentWorkouts(ctx, start, end, 50)
	if err != nil {
		h.log.Error("mcp get_recent_workouts", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(workouts)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getWorkoutSets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout_id: " + err.Error()), nil
	}

	rows, err := h.ds.QueryExerciseLogs(ctx, workoutID)
	if err != nil {
		h.log.Error("mcp get_workout_sets", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getAdjustments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var programID uuid.UUID
	if v := req.GetString("program_id", ""); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return mcp.NewToolResultError("invalid program_id: " + err.Error()), nil
		}
		programID = id
	}
	limit := req.GetInt("limit", 50)

	rows, err := h.ds.QueryAdjustments(ctx, programID, limit)
	if err != nil {
		h.log.Error("mcp get_adjustment_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSessionFatigue(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	idStr, err := req.RequireString("workout_id")
	if err != nil {
		return mcp.NewToolResultError("workout_id parameter is required"), nil
	}
	workoutID, err := uuid.Parse(idStr)
	if err != nil {
		return mcp.NewToolResultError("invalid workout_id: " + err.Error()), nil
	}

	rows, err := h.ds.QueryExerciseLogs(ctx, workoutID)
	if err != nil {
		h.log.Error("mcp get_session_fatigue", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}
	if len(rows) == 0 {
		return mcp.NewToolResultError("no sets logged for that session"), nil
	}

	perExercise := map[string][]models.CompletedSet{}
	patterns := map[string]string{}
	for _, r := range rows {
		perExercise[r.Exercise] = append(perExercise[r.Exercise], models.CompletedSet{
			SetNumber:     r.SetNumber,
			RepsCompleted: r.Reps,
			RPE:           int(r.RPE),
			RIRPerceived:  r.RIRPerceived,
		})
		patterns[r.Exercise] = r.Pattern
	}

	result, err := mcp.NewToolResultJSON(engine.NormalizedSessionFatigue(perExercise, patterns))
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getPainHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	exercise, err := req.RequireString("exercise")
	if err != nil {
		return mcp.NewToolResultError("exercise parameter is required"), nil
	}

	rows, err := h.ds.QueryPainHistory(ctx, exercise, 100)
	if err != nil {
		h.log.Error("mcp get_pain_history", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(rows)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

// --- Resource handlers ---

func (h *handlers) adjustmentSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	rows, err := h.ds.QueryAdjustments(ctx, uuid.Nil, 500)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().AddDate(0, 0, -90)
	byExercise := map[string][]any{}
	for _, a := range rows {
		if a.CreatedAt.Before(cutoff) {
			continue
		}
		byExercise[a.Exercise] = append(byExercise[a.Exercise], a)
	}

	data, err := json.Marshal(map[string]any{
		"since":       cutoff.Format("2006-01-02"),
		"by_exercise": byExercise,
	})
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (h *handlers) recentWorkouts(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -14)

	workouts, err := h.ds.QueryRecentWorkouts(ctx, start, end, 50)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(workouts)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
