package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/meltforce/autoreg/internal/engine"
	"github.com/meltforce/autoreg/internal/models"
	"github.com/meltforce/autoreg/internal/program"
	"github.com/meltforce/autoreg/internal/session"
	"github.com/meltforce/autoreg/internal/storage"
)

type startSessionRequest struct {
	ProgramID uuid.UUID             `json:"program_id"`
	Day       string                `json:"day,omitempty"`
	Level     string                `json:"level,omitempty"`
	Context   models.SessionContext `json:"context"`
	PainAreas []models.PainReport   `json:"pain_areas,omitempty"`
}

type startSessionResponse struct {
	SessionID uuid.UUID               `json:"session_id"`
	Targets   []models.ExerciseTarget `json:"targets"`
	Warnings  []string                `json:"warnings,omitempty"`
}

func (s *Server) handleStartSession(w http.ResponseWriter, r *http.Request) {
	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	prog, err := s.db.LoadProgram(r.Context(), req.ProgramID)
	if err != nil {
		if errors.Is(err, storage.ErrProgramNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
			return
		}
		s.log.Error("program load failed", "program", req.ProgramID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	level := req.Level
	if level == "" {
		level = s.level
	}

	sess, err := session.Start(s.db, s.journal, s.log, prog, req.Day,
		req.Context, req.PainAreas, engine.Level(level))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	s.register(sess)

	writeJSON(w, http.StatusCreated, startSessionResponse{
		SessionID: sess.ID,
		Targets:   sess.Targets(),
		Warnings:  sess.Warnings(),
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, snapshot{
		SessionID: sess.ID,
		State:     sess.State(),
		DayName:   sess.DayName,
		Targets:   sess.Targets(),
		Pending:   sess.Pending(),
		Warnings:  sess.Warnings(),
	})
}

func (s *Server) handleLogSet(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	var in session.SetInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}

	result, err := sess.LogSet(r.Context(), in)
	if err != nil {
		if errors.Is(err, session.ErrWrongState) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type acceptResponse struct {
	Change   *program.WeightChange `json:"change,omitempty"`
	Warnings []string              `json:"warnings,omitempty"`
}

func (s *Server) handleAcceptSuggestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	change, warnings, err := sess.AcceptSuggestion(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrNoPendingSuggestion) {
			writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
			return
		}
		s.log.Error("accept failed", "session", sess.ID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, acceptResponse{Change: change, Warnings: warnings})
}

func (s *Server) handleDismissSuggestion(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}
	if err := sess.DismissSuggestion(); err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "dismissed"})
}

type reportPainRequest struct {
	Areas []models.PainReport `json:"areas"`
}

type reportPainResponse struct {
	Targets  []models.ExerciseTarget `json:"targets"`
	Warnings []string                `json:"warnings,omitempty"`
}

func (s *Server) handleReportPain(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	var req reportPainRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if len(req.Areas) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "areas required"})
		return
	}

	targets, warnings, err := sess.ReportPain(req.Areas)
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, reportPainResponse{Targets: targets, Warnings: warnings})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessionFromPath(w, r)
	if !ok {
		return
	}

	summary, err := sess.End(r.Context())
	if err != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
		return
	}
	s.unregister(sess.ID)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCreateProgram(w http.ResponseWriter, r *http.Request) {
	var p program.Program
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON: " + err.Error()})
		return
	}
	if p.Kind() == program.ShapeFlat && len(p.Exercises) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "program has no exercises"})
		return
	}
	if err := s.db.InsertProgram(r.Context(), &p); err != nil {
		s.log.Error("program insert failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": p.ID.String()})
}

func (s *Server) handleGetProgram(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid program ID"})
		return
	}
	prog, err := s.db.LoadProgram(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "program not found"})
		return
	}
	writeJSON(w, http.StatusOK, prog)
}

func (s *Server) handleAdjustments(w http.ResponseWriter, r *http.Request) {
	var programID uuid.UUID
	if v := r.URL.Query().Get("program_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid program_id"})
			return
		}
		programID = id
	}

	rows, err := s.db.QueryAdjustments(r.Context(), programID, 50)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	start, end, err := parseTimeRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	workouts, err := s.db.QueryRecentWorkouts(r.Context(), start, end, 20)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (s *Server) handleHistorySets(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid workout ID"})
		return
	}
	rows, err := s.db.QueryExerciseLogs(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handlePainHistory(w http.ResponseWriter, r *http.Request) {
	exercise := chi.URLParam(r, "exercise")
	rows, err := s.db.QueryPainHistory(r.Context(), exercise, 100)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) sessionFromPath(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid session ID"})
		return nil, false
	}
	sess, ok := s.lookup(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "session not found"})
		return nil, false
	}
	return sess, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func parseTimeRange(r *http.Request) (start, end time.Time, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	if startStr == "" {
		// Default: last 30 days
		end = time.Now()
		start = end.AddDate(0, 0, -30)
		return
	}

	start, err = time.Parse(time.RFC3339, startStr)
	if err != nil {
		start, err = time.Parse("2006-01-02", startStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
	}

	if endStr == "" {
		end = time.Now()
	} else {
		end, err = time.Parse(time.RFC3339, endStr)
		if err != nil {
			end, err = time.Parse("2006-01-02", endStr)
			if err != nil {
				return time.Time{}, time.Time{}, err
			}
			// End of day for date-only
			end = end.Add(24 * time.Hour)
		}
	}
	return
}
