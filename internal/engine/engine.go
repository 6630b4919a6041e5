// Package engine is the per-set auto-regulation decision engine. Evaluation
// is driven one call per completed set and is pure: nothing persists until
// the caller explicitly applies the returned suggestion.
//
// The engine only judges the FINAL set of an exercise against its target RIR.
// At constant load, reps in reserve naturally fall across a fixed set scheme,
// so intermediate sets are informative, not evaluative: they get tracked,
// with a single safety-floor advisory when fatigue arrives too early.
package engine

import (
	"fmt"

	"github.com/meltforce/autoreg/internal/models"
)

const (
	// DefaultPlannedSets is the fallback when a target carries a malformed
	// set count. Recovery happens in the caller so evaluation stays pure.
	DefaultPlannedSets = 3

	// restBumpSeconds is added to the next rest period whenever a reduce
	// suggestion is emitted, to aid recovery mid-session.
	restBumpSeconds = 30

	// loadStepPercent is the standard load change for a clear miss.
	loadStepPercent = 5.0

	// failureBonusPercent replaces the standard increase when the target
	// was a failure set (RIR 0): hitting 2+ in reserve there earns a more
	// aggressive progression.
	failureBonusPercent = 7.5
)

// InvalidTargetError reports malformed program data on the evaluated target.
// Callers recover by retrying with DefaultPlannedSets and logging a warning;
// it is never fatal to a session.
type InvalidTargetError struct {
	Exercise    string
	PlannedSets int
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("engine: %s: invalid planned sets %d", e.Exercise, e.PlannedSets)
}

// OutOfSequenceError reports an Evaluate call whose just-logged set is not
// the newest ledger entry. Programmer error in ledger usage; the prior state
// is untouched.
type OutOfSequenceError struct {
	Exercise string
	Got      int
	Newest   int
}

func (e *OutOfSequenceError) Error() string {
	return fmt.Sprintf("engine: %s: evaluated set %d is not the newest ledger entry (%d)", e.Exercise, e.Got, e.Newest)
}

// Evaluate classifies the just-logged set against the exercise target and
// returns a suggestion. sets is the full per-exercise ledger for this
// session, ending with justLogged.
func Evaluate(target models.ExerciseTarget, sets []models.CompletedSet, justLogged models.CompletedSet) (models.Suggestion, error) {
	if target.PlannedSets < 1 {
		return models.Suggestion{}, &InvalidTargetError{Exercise: target.Name, PlannedSets: target.PlannedSets}
	}
	if len(sets) == 0 || sets[len(sets)-1].SetNumber != justLogged.SetNumber {
		newest := 0
		if len(sets) > 0 {
			newest = sets[len(sets)-1].SetNumber
		}
		return models.Suggestion{}, &OutOfSequenceError{Exercise: target.Name, Got: justLogged.SetNumber, Newest: newest}
	}

	if justLogged.SetNumber < target.PlannedSets {
		return evaluateIntermediate(target, justLogged), nil
	}
	return evaluateFinal(target, justLogged), nil
}

// evaluateIntermediate tracks a non-final set. It never changes scope or
// load; the only output beyond "tracked" is a safety-floor advisory when the
// athlete is already near failure with two or more sets still to go.
func evaluateIntermediate(target models.ExerciseTarget, set models.CompletedSet) models.Suggestion {
	remaining := target.PlannedSets - set.SetNumber

	if set.RIRPerceived <= 1 && remaining >= 2 {
		return models.Suggestion{
			Kind:             models.SuggestReduce,
			LoadPercentDelta: 0, // advisory only, nothing persists
			NextRestSeconds:  target.RestSeconds + restBumpSeconds,
			Rationale: fmt.Sprintf("set %d/%d at RIR %d: early fatigue risk — consider lowering load to complete the remaining %d sets",
				set.SetNumber, target.PlannedSets, set.RIRPerceived, remaining),
		}
	}

	return models.Suggestion{
		Kind: models.SuggestMaintain,
		Rationale: fmt.Sprintf("set %d/%d at RIR %d tracked; will evaluate on final set (target RIR %d)",
			set.SetNumber, target.PlannedSets, set.RIRPerceived, target.TargetRIR),
	}
}

// evaluateFinal judges the last set of the exercise against the target RIR.
func evaluateFinal(target models.ExerciseTarget, set models.CompletedSet) models.Suggestion {
	rirDelta := set.RIRPerceived - target.TargetRIR

	switch {
	case rirDelta <= -2:
		// Went well past the intended proximity to failure.
		return models.Suggestion{
			Kind:             models.SuggestReduce,
			LoadPercentDelta: -loadStepPercent,
			NextRestSeconds:  target.RestSeconds + restBumpSeconds,
			Rationale: fmt.Sprintf("final set at RIR %d vs target %d: pushed %d past the programmed effort; reduce load 5%% next session",
				set.RIRPerceived, target.TargetRIR, -rirDelta),
		}

	case rirDelta == -1:
		if target.TargetRIR <= 1 {
			// Already programmed near failure; one under is within plan.
			return models.Suggestion{
				Kind:      models.SuggestMaintain,
				Rationale: fmt.Sprintf("final set at RIR %d: target %d reached", set.RIRPerceived, target.TargetRIR),
			}
		}
		return models.Suggestion{
			Kind:             models.SuggestMaintain,
			LoadPercentDelta: 0,
			Rationale: fmt.Sprintf("final set at RIR %d (target %d): slightly harder than planned, monitor recovery",
				set.RIRPerceived, target.TargetRIR),
		}

	case rirDelta >= 2:
		step := loadStepPercent
		if target.TargetRIR == 0 {
			step = failureBonusPercent
		}
		return models.Suggestion{
			Kind:             models.SuggestIncrease,
			LoadPercentDelta: step,
			Rationale: fmt.Sprintf("final set at RIR %d vs target %d: %d reps still in the tank; increase load %.1f%% next session",
				set.RIRPerceived, target.TargetRIR, rirDelta, step),
		}

	case rirDelta == 1:
		return models.Suggestion{
			Kind:             models.SuggestMaintain,
			LoadPercentDelta: 0,
			Rationale: fmt.Sprintf("final set at RIR %d (target %d): close — push one more rep next time",
				set.RIRPerceived, target.TargetRIR),
		}

	default: // rirDelta == 0
		return models.Suggestion{
			Kind:      models.SuggestMaintain,
			Rationale: fmt.Sprintf("final set at RIR %d: calibration perfect", set.RIRPerceived),
		}
	}
}
