package server

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/autoreg/internal/models"
	"github.com/meltforce/autoreg/internal/program"
	"github.com/meltforce/autoreg/internal/session"
	"github.com/meltforce/autoreg/internal/storage"
)

// Store is the storage surface the HTTP layer needs. *storage.DB satisfies
// it; handler tests substitute fakes.
type Store interface {
	session.Store
	LoadProgram(ctx context.Context, id uuid.UUID) (*program.Program, error)
	InsertProgram(ctx context.Context, p *program.Program) error
	QueryAdjustments(ctx context.Context, programID uuid.UUID, limit int) ([]storage.Adjustment, error)
	QueryRecentWorkouts(ctx context.Context, start, end time.Time, limit int) ([]storage.WorkoutLog, error)
	QueryExerciseLogs(ctx context.Context, workoutID uuid.UUID) ([]storage.ExerciseLogRow, error)
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	db      Store
	journal *session.Journal
	log     *slog.Logger
	apiKey  string
	level   string
	router  chi.Router

	mu       sync.Mutex
	sessions map[uuid.UUID]*session.Session
}

// New creates a new Server with all routes configured. level is the default
// athlete level for sessions that do not specify one.
func New(db Store, journal *session.Journal, apiKey, level string, log *slog.Logger) *Server {
	s := &Server{
		db:       db,
		journal:  journal,
		log:      log,
		apiKey:   apiKey,
		level:    level,
		router:   chi.NewRouter(),
		sessions: map[uuid.UUID]*session.Session{},
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	// Session lifecycle (API key required)
	s.router.Route("/api/v1/sessions", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleStartSession)
		r.Get("/{id}", s.handleGetSession)
		r.Post("/{id}/sets", s.handleLogSet)
		r.Post("/{id}/suggestion/accept", s.handleAcceptSuggestion)
		r.Post("/{id}/suggestion/dismiss", s.handleDismissSuggestion)
		r.Post("/{id}/pain", s.handleReportPain)
		r.Post("/{id}/end", s.handleEndSession)
	})

	s.router.Route("/api/v1/programs", func(r chi.Router) {
		r.Use(APIKeyAuth(s.apiKey))
		r.Post("/", s.handleCreateProgram)
	})

	// Read-only history endpoints (no auth, tsnet handles access)
	s.router.Get("/api/v1/programs/{id}", s.handleGetProgram)
	s.router.Get("/api/v1/adjustments", s.handleAdjustments)
	s.router.Get("/api/v1/history", s.handleHistory)
	s.router.Get("/api/v1/history/{id}/sets", s.handleHistorySets)
	s.router.Get("/api/v1/pain/{exercise}", s.handlePainHistory)
}

func (s *Server) register(sess *session.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
}

func (s *Server) lookup(id uuid.UUID) (*session.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) unregister(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// snapshot is the state view returned by GET /sessions/{id}.
type snapshot struct {
	SessionID uuid.UUID               `json:"session_id"`
	State     session.State           `json:"state"`
	DayName   string                  `json:"day_name"`
	Targets   []models.ExerciseTarget `json:"targets"`
	Pending   *models.Suggestion      `json:"pending,omitempty"`
	Warnings  []string                `json:"warnings,omitempty"`
}
