package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/autoreg/internal/models"
	"github.com/meltforce/autoreg/internal/storage"
)

// HTTPClient implements DataSource by calling the autoreg REST API. Used for
// remote MCP mode where the binary runs locally (stdio) but data lives on
// the remote server (accessed over Tailscale).
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}

	return body, nil
}

func (c *HTTPClient) QueryRecentWorkouts(ctx context.Context, start, end time.Time, limit int) ([]storage.WorkoutLog, error) {
	params := url.Values{}
	params.Set("start", start.Format(time.RFC3339))
	params.Set("end", end.Format(time.RFC3339))

	body, err := c.get(ctx, "/api/v1/history", params)
	if err != nil {
		return nil, err
	}

	var workouts []storage.WorkoutLog
	if err := json.Unmarshal(body, &workouts); err != nil {
		return nil, fmt.Errorf("httpclient: decode history: %w", err)
	}
	if limit > 0 && len(workouts) > limit {
		workouts = workouts[:limit]
	}
	return workouts, nil
}

func (c *HTTPClient) QueryExerciseLogs(ctx context.Context, workoutID uuid.UUID) ([]storage.ExerciseLogRow, error) {
	body, err := c.get(ctx, "/api/v1/history/"+workoutID.String()+"/sets", nil)
	if err != nil {
		return nil, err
	}

	var rows []storage.ExerciseLogRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode sets: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) QueryAdjustments(ctx context.Context, programID uuid.UUID, limit int) ([]storage.Adjustment, error) {
	params := url.Values{}
	if programID != uuid.Nil {
		params.Set("program_id", programID.String())
	}
	params.Set("limit", strconv.Itoa(limit))

	body, err := c.get(ctx, "/api/v1/adjustments", params)
	if err != nil {
		return nil, err
	}

	var rows []storage.Adjustment
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode adjustments: %w", err)
	}
	return rows, nil
}

func (c *HTTPClient) QueryPainHistory(ctx context.Context, exercise string, limit int) ([]models.PainAdaptation, error) {
	body, err := c.get(ctx, "/api/v1/pain/"+url.PathEscape(exercise), nil)
	if err != nil {
		return nil, err
	}

	var rows []models.PainAdaptation
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("httpclient: decode pain history: %w", err)
	}
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}
