package program

import (
	"fmt"
	"math"

	"github.com/meltforce/autoreg/internal/parse"
)

// ExerciseNotFoundError reports a weight change whose exercise exists in no
// recognized program shape. Recoverable: callers warn and keep the local
// ledger flag, they do not crash the session.
type ExerciseNotFoundError struct {
	Exercise string
}

func (e *ExerciseNotFoundError) Error() string {
	return fmt.Sprintf("program: exercise %q not found in any program shape", e.Exercise)
}

// WeightChange reports the result of an applied load adjustment.
type WeightChange struct {
	Exercise     string  `json:"exercise"`
	OldWeight    float64 `json:"old_weight"`
	NewWeight    float64 `json:"new_weight"`
	PercentDelta float64 `json:"percent_delta"`
}

// ApplyWeightChange applies an accepted load-percent delta to the named
// exercise for future sessions, whatever shape the program uses. The new
// weight rounds to the nearest 0.5 kg and an audit note is appended to the
// exercise's notes. Returns ExerciseNotFoundError when no shape contains the
// exercise.
func ApplyWeightChange(p *Program, exerciseName string, percentDelta float64) (*WeightChange, error) {
	for _, days := range shapeViews(p) {
		for di := range days {
			for ei := range days[di].Exercises {
				ex := &days[di].Exercises[ei]
				if ex.Name != exerciseName {
					continue
				}
				return mutate(ex, percentDelta)
			}
		}
	}
	return nil, &ExerciseNotFoundError{Exercise: exerciseName}
}

// shapeViews returns mutable day slices for every shape the program carries,
// in the order the shapes appeared historically.
func shapeViews(p *Program) [][]Day {
	var views [][]Day
	if len(p.WeeklySchedule) > 0 {
		views = append(views, p.WeeklySchedule)
	}
	if p.WeeklySplit != nil && len(p.WeeklySplit.Days) > 0 {
		views = append(views, p.WeeklySplit.Days)
	}
	if len(p.Exercises) > 0 {
		views = append(views, []Day{{Exercises: p.Exercises}})
	}
	return views
}

func mutate(ex *Exercise, percentDelta float64) (*WeightChange, error) {
	oldWeight, ok := parse.WeightKg(string(ex.Weight))
	if !ok {
		return nil, fmt.Errorf("program: exercise %q has no usable weight %q", ex.Name, ex.Weight)
	}

	newWeight := roundToHalf(oldWeight * (1 + percentDelta/100))
	ex.Weight = FlexText(fmt.Sprintf("%skg", trimFloat(newWeight)))

	audit := fmt.Sprintf("Auto-adjusted %+.1f%% (RIR feedback)", percentDelta)
	if ex.Notes != "" {
		ex.Notes += " | "
	}
	ex.Notes += audit

	return &WeightChange{
		Exercise:     ex.Name,
		OldWeight:    oldWeight,
		NewWeight:    newWeight,
		PercentDelta: percentDelta,
	}, nil
}

// roundToHalf rounds to the nearest 0.5, matching plate math.
func roundToHalf(w float64) float64 {
	return math.Round(w*2) / 2
}

// trimFloat renders a weight without trailing zeros ("84" not "84.0").
func trimFloat(w float64) string {
	if w == math.Trunc(w) {
		return fmt.Sprintf("%.0f", w)
	}
	return fmt.Sprintf("%.1f", w)
}
