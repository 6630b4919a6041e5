// Package session drives one live workout from check-in to summary. It owns
// the in-session state machine, feeds logged sets through the effort model
// and decision engine, and persists outcomes through the storage layer with
// the local journal as the source of truth when the network is down.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/meltforce/autoreg/internal/effort"
	"github.com/meltforce/autoreg/internal/engine"
	"github.com/meltforce/autoreg/internal/ledger"
	"github.com/meltforce/autoreg/internal/models"
	"github.com/meltforce/autoreg/internal/pain"
	"github.com/meltforce/autoreg/internal/program"
	"github.com/meltforce/autoreg/internal/storage"
)

// State is the session's position in its lifecycle.
type State string

const (
	StateAwaitingSet State = "awaiting_set"
	StateSuggesting  State = "suggesting"
	StateEnded       State = "ended"
)

// Store is the remote persistence the session needs. *storage.DB satisfies
// it; tests substitute fakes.
type Store interface {
	SaveProgram(ctx context.Context, p *program.Program) error
	InsertAdjustment(ctx context.Context, a storage.Adjustment) error
	InsertWorkoutLog(ctx context.Context, w storage.WorkoutLog) (uuid.UUID, error)
	InsertExerciseLogs(ctx context.Context, rows []storage.ExerciseLogRow) (int64, error)
	InsertPainLogs(ctx context.Context, adaptations []models.PainAdaptation) (int64, error)
	QueryPainHistory(ctx context.Context, exercise string, limit int) ([]models.PainAdaptation, error)
}

// ErrWrongState is returned when an operation does not apply to the
// session's current state.
var ErrWrongState = errors.New("session: operation not valid in current state")

// ErrNoPendingSuggestion is returned by Accept/Dismiss with nothing pending.
var ErrNoPendingSuggestion = errors.New("session: no pending suggestion")

// SetInput is one set as reported by the athlete.
type SetInput struct {
	Exercise  string   `json:"exercise"`
	Reps      int      `json:"reps"`
	WeightKg  *float64 `json:"weight_kg,omitempty"`
	RPE       int      `json:"rpe"`
	RIR       int      `json:"rir"`
	PainLevel int      `json:"pain_level,omitempty"`
}

// SetResult is what the athlete sees after logging a set.
type SetResult struct {
	Set         models.CompletedSet        `json:"set"`
	Suggestion  *models.Suggestion         `json:"suggestion,omitempty"`
	Pain        *models.PainAdaptation     `json:"pain,omitempty"`
	Escalation  *models.RecoveryEscalation `json:"escalation,omitempty"`
	StopAdvised bool                       `json:"stop_advised,omitempty"`
	Warnings    []string                   `json:"warnings,omitempty"`
}

// CloseAdjustment is a session-close load proposal for one exercise, built
// from the weighted-RIR path. It is advisory; nothing is applied unless the
// athlete accepts it next session.
type CloseAdjustment struct {
	Exercise    string                   `json:"exercise"`
	WeightedRIR float64                  `json:"weighted_rir"`
	Adjustment  engine.SessionAdjustment `json:"adjustment"`
}

// Summary is the session-end report.
type Summary struct {
	SessionID        uuid.UUID                  `json:"session_id"`
	DayName          string                     `json:"day_name"`
	StartedAt        time.Time                  `json:"started_at"`
	EndedAt          time.Time                  `json:"ended_at"`
	Exercises        []models.ExerciseSummary   `json:"exercises"`
	Fatigue          engine.SessionFatigue      `json:"fatigue"`
	Adaptations      []models.PainAdaptation    `json:"adaptations,omitempty"`
	Escalations      []models.RecoveryEscalation `json:"escalations,omitempty"`
	CloseAdjustments []CloseAdjustment          `json:"close_adjustments,omitempty"`
	Warnings         []string                   `json:"warnings,omitempty"`
}

// Session is one live workout.
type Session struct {
	ID        uuid.UUID
	DayName   string
	StartedAt time.Time

	store   Store
	journal *Journal
	log     *slog.Logger

	prog    *program.Program
	level   engine.Level
	checkin models.SessionContext
	areas   []models.PainReport

	targets  []models.ExerciseTarget
	warnings []string

	state         State
	ledger        *ledger.Ledger
	pending       *models.Suggestion
	pendingTarget *models.ExerciseTarget
	pendingSet    int
	stopped       map[string]bool
	adaptations   []models.PainAdaptation
	escalations   []models.RecoveryEscalation
}

// Start runs the check-in: loads the day's targets from the program, applies
// pre-session pain adaptations, and returns a session ready to log sets.
func Start(store Store, journal *Journal, log *slog.Logger, prog *program.Program,
	dayName string, checkin models.SessionContext, areas []models.PainReport,
	level engine.Level) (*Session, error) {

	targets := prog.DayTargets(dayName)
	if len(targets) == 0 {
		return nil, fmt.Errorf("session: program %s has no exercises for day %q", prog.ID, dayName)
	}

	targets, warnings := pain.AdaptForPain(targets, areas)

	s := &Session{
		ID:        uuid.New(),
		DayName:   dayName,
		StartedAt: time.Now().UTC(),
		store:     store,
		journal:   journal,
		log:       log,
		prog:      prog,
		level:     level,
		checkin:   checkin,
		areas:     areas,
		targets:   targets,
		warnings:  warnings,
		state:     StateAwaitingSet,
		ledger:    ledger.New(),
		stopped:   map[string]bool{},
	}
	for _, w := range warnings {
		log.Warn("check-in adaptation", "session", s.ID, "warning", w)
	}
	return s, nil
}

// Targets returns the session's (pain-adapted) exercise list.
func (s *Session) Targets() []models.ExerciseTarget {
	out := make([]models.ExerciseTarget, len(s.targets))
	copy(out, s.targets)
	return out
}

// Warnings returns check-in warnings (unmapped pain substitutions etc).
func (s *Session) Warnings() []string {
	return append([]string(nil), s.warnings...)
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Pending returns the unresolved suggestion, if any.
func (s *Session) Pending() *models.Suggestion {
	return s.pending
}

// LogSet records one completed set and evaluates it. Logging a new set while
// a suggestion is unresolved dismisses the suggestion. The set always lands
// in the ledger and journal first; evaluation failures degrade to warnings
// rather than losing the set.
func (s *Session) LogSet(ctx context.Context, in SetInput) (SetResult, error) {
	if s.state == StateEnded {
		return SetResult{}, ErrWrongState
	}
	target, err := s.findTarget(in.Exercise)
	if err != nil {
		return SetResult{}, err
	}
	if in.RPE < 1 || in.RPE > 10 {
		return SetResult{}, fmt.Errorf("session: rpe %d outside 1-10", in.RPE)
	}
	if in.RIR < 0 || in.RIR > 10 {
		return SetResult{}, fmt.Errorf("session: rir %d outside 0-10", in.RIR)
	}
	if s.stopped[target.Name] {
		return SetResult{}, fmt.Errorf("session: %s was stopped for pain this session", target.Name)
	}

	var result SetResult
	if s.pending != nil {
		s.dismissPending()
		result.Warnings = append(result.Warnings, "previous suggestion dismissed by new set")
	}

	set := models.CompletedSet{
		SetNumber:     len(s.ledger.Sets(target.Name)) + 1,
		RepsCompleted: in.Reps,
		WeightUsed:    in.WeightKg,
		RPE:           in.RPE,
		RPEAdjusted:   effort.AdjustContext(float64(in.RPE), s.checkin),
		RIRPerceived:  in.RIR,
		PainLevel:     in.PainLevel,
	}

	if err := s.ledger.Append(target.Name, set); err != nil {
		return SetResult{}, err
	}
	if err := s.journal.AppendSet(s.ID, target.Name, set); err != nil {
		s.log.Error("journal write failed", "session", s.ID, "exercise", target.Name, "error", err)
		result.Warnings = append(result.Warnings, "local journal write failed: "+err.Error())
	}
	result.Set = set

	if w := effort.ConsistencyWarning(in.RPE, in.RIR); w != "" {
		result.Warnings = append(result.Warnings, w)
	}

	if in.PainLevel > 0 {
		s.handlePain(ctx, target, in, &result)
		if result.StopAdvised {
			s.state = StateAwaitingSet
			return result, nil
		}
	}

	sugg, err := engine.Evaluate(*target, s.ledger.Sets(target.Name), set)
	var invalid *engine.InvalidTargetError
	if errors.As(err, &invalid) {
		recovered := *target
		recovered.PlannedSets = engine.DefaultPlannedSets
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("invalid planned sets for %s, assuming %d", target.Name, engine.DefaultPlannedSets))
		sugg, err = engine.Evaluate(recovered, s.ledger.Sets(target.Name), set)
	}
	if err != nil {
		return SetResult{}, err
	}

	result.Suggestion = &sugg
	if sugg.Kind != models.SuggestMaintain {
		s.pending = &sugg
		s.pendingTarget = target
		s.pendingSet = set.SetNumber
		s.state = StateSuggesting
	} else {
		s.state = StateAwaitingSet
	}
	return result, nil
}

// handlePain runs the mid-set pain path: decide an action, record actionable
// adaptations, and check for recurring pain across stored history.
func (s *Session) handlePain(ctx context.Context, target *models.ExerciseTarget, in SetInput, result *SetResult) {
	weight := 0.0
	if in.WeightKg != nil {
		weight = *in.WeightKg
	}
	adaptation := pain.Decide(in.PainLevel, weight, in.Reps, 100, s.priorFor(target.Name), s.prog.Goal)
	adaptation.Exercise = target.Name
	adaptation.SessionDate = s.StartedAt
	result.Pain = &adaptation

	if adaptation.Action == models.PainStopExercise {
		s.stopped[target.Name] = true
		result.StopAdvised = true
	}
	if in.PainLevel >= 4 {
		s.adaptations = append(s.adaptations, adaptation)
		s.ledger.MarkAdjusted(target.Name, result.Set.SetNumber, adaptation.Message)

		history, err := s.store.QueryPainHistory(ctx, target.Name, 100)
		if err != nil {
			s.log.Warn("pain history unavailable", "exercise", target.Name, "error", err)
		} else {
			history = append(history, adaptation)
			if esc := pain.CheckEscalation(target.Name, history); esc != nil {
				s.escalations = append(s.escalations, *esc)
				result.Escalation = esc
			}
		}
	}
}

func (s *Session) priorFor(exercise string) []models.PainAdaptation {
	var out []models.PainAdaptation
	for _, a := range s.adaptations {
		if a.Exercise == exercise {
			out = append(out, a)
		}
	}
	return out
}

// ReportPain adds newly reported pain areas mid-session and re-adapts the
// exercises that have not been started yet. In-progress exercises keep their
// prescription; per-set pain still flows through LogSet.
func (s *Session) ReportPain(areas []models.PainReport) ([]models.ExerciseTarget, []string, error) {
	if s.state == StateEnded {
		return nil, nil, ErrWrongState
	}
	s.dismissPending()
	s.areas = append(s.areas, areas...)

	var started, remaining []models.ExerciseTarget
	for _, t := range s.targets {
		if len(s.ledger.Sets(t.Name)) > 0 || s.stopped[t.Name] {
			started = append(started, t)
		} else {
			remaining = append(remaining, t)
		}
	}

	adapted, warnings := pain.AdaptForPain(remaining, s.areas)
	s.targets = append(started, adapted...)
	s.warnings = append(s.warnings, warnings...)
	for _, w := range warnings {
		s.log.Warn("mid-session adaptation", "session", s.ID, "warning", w)
	}
	return s.Targets(), warnings, nil
}

// AcceptSuggestion applies the pending suggestion. The ledger flag is set
// unconditionally; program persistence failures degrade to a warning since
// the decision itself already happened.
func (s *Session) AcceptSuggestion(ctx context.Context) (*program.WeightChange, []string, error) {
	if s.pending == nil {
		return nil, nil, ErrNoPendingSuggestion
	}
	pending, target, setNum := s.pending, s.pendingTarget, s.pendingSet
	s.dismissPending()

	s.ledger.MarkAdjusted(target.Name, setNum, pending.Rationale)

	if pending.LoadPercentDelta == 0 {
		return nil, nil, nil
	}

	var warnings []string
	change, err := program.ApplyWeightChange(s.prog, target.Name, pending.LoadPercentDelta)
	if err != nil {
		var notFound *program.ExerciseNotFoundError
		if errors.As(err, &notFound) {
			s.log.Warn("exercise missing from program", "exercise", target.Name)
			return nil, []string{err.Error()}, nil
		}
		return nil, nil, err
	}

	if err := s.store.SaveProgram(ctx, s.prog); err != nil {
		s.log.Error("program save failed", "session", s.ID, "error", err)
		warnings = append(warnings, "program not persisted: "+err.Error())
	}
	if err := s.store.InsertAdjustment(ctx, storage.Adjustment{
		ProgramID:    s.prog.ID,
		Exercise:     change.Exercise,
		PercentDelta: change.PercentDelta,
		OldWeightKg:  change.OldWeight,
		NewWeightKg:  change.NewWeight,
		Rationale:    pending.Rationale,
	}); err != nil {
		s.log.Error("adjustment insert failed", "session", s.ID, "error", err)
		warnings = append(warnings, "adjustment not recorded: "+err.Error())
	}
	return change, warnings, nil
}

// DismissSuggestion drops the pending suggestion without side effects.
func (s *Session) DismissSuggestion() error {
	if s.pending == nil {
		return ErrNoPendingSuggestion
	}
	s.dismissPending()
	return nil
}

func (s *Session) dismissPending() {
	s.pending = nil
	s.pendingTarget = nil
	s.pendingSet = 0
	s.state = StateAwaitingSet
}

// End closes the session: builds the summary, proposes session-close load
// changes from the weighted-RIR path, and persists logs. Persistence
// failures leave the journal unsynced and surface as warnings.
func (s *Session) End(ctx context.Context) (Summary, error) {
	if s.state == StateEnded {
		return Summary{}, ErrWrongState
	}
	s.dismissPending()
	s.state = StateEnded
	endedAt := time.Now().UTC()

	perExercise := map[string][]models.CompletedSet{}
	patterns := map[string]string{}
	for _, t := range s.targets {
		sets := s.ledger.Sets(t.Name)
		if len(sets) == 0 {
			continue
		}
		perExercise[t.Name] = sets
		patterns[t.Name] = t.Pattern
	}

	summary := Summary{
		SessionID:   s.ID,
		DayName:     s.DayName,
		StartedAt:   s.StartedAt,
		EndedAt:     endedAt,
		Exercises:   s.ledger.Summary(),
		Fatigue:     engine.NormalizedSessionFatigue(perExercise, patterns),
		Adaptations: s.adaptations,
		Escalations: s.escalations,
	}

	for _, t := range s.targets {
		sets := perExercise[t.Name]
		if len(sets) < 2 {
			continue
		}
		wrir := engine.WeightedRIR(sets)
		diff := wrir - float64(t.TargetRIR)
		conf := engine.Confirmations(sets, t.TargetRIR, diff)
		adj := engine.DampedAdjustment(diff, t.Pattern, s.level, conf)
		if adj.ShouldAdjust {
			summary.CloseAdjustments = append(summary.CloseAdjustments, CloseAdjustment{
				Exercise:    t.Name,
				WeightedRIR: wrir,
				Adjustment:  adj,
			})
		}
	}

	summary.Warnings = s.persist(ctx, &summary, endedAt)
	return summary, nil
}

func (s *Session) persist(ctx context.Context, summary *Summary, endedAt time.Time) []string {
	var warnings []string

	avgRPE := 0.0
	if len(summary.Exercises) > 0 {
		for _, e := range summary.Exercises {
			avgRPE += e.AvgRPE
		}
		avgRPE /= float64(len(summary.Exercises))
	}

	workoutID, err := s.store.InsertWorkoutLog(ctx, storage.WorkoutLog{
		ID:           s.ID,
		ProgramID:    s.prog.ID,
		DayName:      s.DayName,
		StartedAt:    s.StartedAt,
		EndedAt:      endedAt,
		AvgRPE:       avgRPE,
		FatigueScore: summary.Fatigue.Normalized,
		Mood:         s.checkin.Mood,
	})
	if err != nil {
		s.log.Error("workout log insert failed", "session", s.ID, "error", err)
		return append(warnings, "session not persisted remotely, journal retained: "+err.Error())
	}

	var rows []storage.ExerciseLogRow
	for _, t := range s.targets {
		for _, set := range s.ledger.Sets(t.Name) {
			weight := 0.0
			if set.WeightUsed != nil {
				weight = *set.WeightUsed
			}
			rows = append(rows, storage.ExerciseLogRow{
				WorkoutID:    workoutID,
				Exercise:     t.Name,
				Pattern:      t.Pattern,
				SetNumber:    set.SetNumber,
				Reps:         set.RepsCompleted,
				WeightKg:     weight,
				RPE:          float64(set.RPE),
				RPEAdjusted:  set.RPEAdjusted,
				RIRPerceived: set.RIRPerceived,
				PainLevel:    set.PainLevel,
				Adjusted:     set.Adjusted,
			})
		}
	}
	if _, err := s.store.InsertExerciseLogs(ctx, rows); err != nil {
		s.log.Error("exercise log insert failed", "session", s.ID, "error", err)
		warnings = append(warnings, "set logs not persisted remotely: "+err.Error())
	}
	if _, err := s.store.InsertPainLogs(ctx, s.adaptations); err != nil {
		s.log.Error("pain log insert failed", "session", s.ID, "error", err)
		warnings = append(warnings, "pain logs not persisted remotely: "+err.Error())
	}

	if len(warnings) == 0 {
		if err := s.journal.MarkSynced(s.ID); err != nil {
			s.log.Warn("journal sync mark failed", "session", s.ID, "error", err)
		}
	}
	return warnings
}

func (s *Session) findTarget(name string) (*models.ExerciseTarget, error) {
	for i := range s.targets {
		if s.targets[i].Name == name {
			return &s.targets[i], nil
		}
	}
	return nil, fmt.Errorf("session: exercise %q not in today's plan", name)
}
