package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Autoreg", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Training auto-regulation server. Query logged workouts, per-set details, accepted load adjustments, and pain history."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetRecentWorkouts, Handler: h.getRecentWorkouts},
		server.ServerTool{Tool: toolGetWorkoutSets, Handler: h.getWorkoutSets},
		server.ServerTool{Tool: toolGetAdjustments, Handler: h.getAdjustments},
		server.ServerTool{Tool: toolGetSessionFatigue, Handler: h.getSessionFatigue},
		server.ServerTool{Tool: toolGetPainHistory, Handler: h.getPainHistory},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resAdjustmentSummary, Handler: h.adjustmentSummary},
		server.ServerResource{Resource: resRecentWorkouts, Handler: h.recentWorkouts},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resAdjustmentSummary = mcp.NewResource(
	"autoreg://adjustment_summary",
	"Adjustment Summary",
	mcp.WithResourceDescription("Accepted load adjustments from the last 90 days, grouped by exercise"),
	mcp.WithMIMEType("application/json"),
)

var resRecentWorkouts = mcp.NewResource(
	"autoreg://recent_workouts",
	"Recent Workouts",
	mcp.WithResourceDescription("Logged sessions from the last 14 days with fatigue scores"),
	mcp.WithMIMEType("application/json"),
)
