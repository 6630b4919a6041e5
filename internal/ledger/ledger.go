// Package ledger keeps the ordered, append-only record of completed sets for
// one active session. It is owned exclusively by that session and discarded
// (after being summarized) at session end.
package ledger

import (
	"fmt"

	"github.com/meltforce/autoreg/internal/models"
)

// Trend classifies the within-exercise fatigue direction.
type Trend string

const (
	TrendRising  Trend = "rising"
	TrendFalling Trend = "falling"
	TrendStable  Trend = "stable"
)

// SequenceError reports an append whose set number does not follow the
// previous maximum. The ledger is left untouched.
type SequenceError struct {
	Exercise string
	Got      int
	Want     int
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("ledger: %s: set number %d out of sequence, want %d", e.Exercise, e.Got, e.Want)
}

// Ledger is the per-session set history, keyed by exercise name. Not safe
// for concurrent use; the session flow is strictly sequential.
type Ledger struct {
	sets  map[string][]models.CompletedSet
	order []string
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{sets: make(map[string][]models.CompletedSet)}
}

// Append records a completed set. The set number must be exactly one past
// the previous maximum for the exercise; anything else is a SequenceError.
func (l *Ledger) Append(exercise string, set models.CompletedSet) error {
	prev := l.sets[exercise]
	want := len(prev) + 1
	if set.SetNumber != want {
		return &SequenceError{Exercise: exercise, Got: set.SetNumber, Want: want}
	}
	if _, seen := l.sets[exercise]; !seen {
		l.order = append(l.order, exercise)
	}
	l.sets[exercise] = append(prev, set)
	return nil
}

// Sets returns a copy of the logged sets for an exercise, in order.
func (l *Ledger) Sets(exercise string) []models.CompletedSet {
	src := l.sets[exercise]
	if len(src) == 0 {
		return nil
	}
	out := make([]models.CompletedSet, len(src))
	copy(out, src)
	return out
}

// Last returns the most recently appended set for an exercise.
func (l *Ledger) Last(exercise string) (models.CompletedSet, bool) {
	src := l.sets[exercise]
	if len(src) == 0 {
		return models.CompletedSet{}, false
	}
	return src[len(src)-1], true
}

// AverageRPE is the arithmetic mean RPE over all logged sets for an exercise
// this session. Zero when nothing is logged.
func (l *Ledger) AverageRPE(exercise string) float64 {
	src := l.sets[exercise]
	if len(src) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range src {
		sum += float64(s.RPE)
	}
	return sum / float64(len(src))
}

// FatigueTrend compares mean RPE of the first half of logged sets against
// the second half. A split-half heuristic, not a regression: a delta of
// +1.5 or more reads as rising fatigue, -0.5 or less as still warming up.
func (l *Ledger) FatigueTrend(exercise string) Trend {
	src := l.sets[exercise]
	if len(src) < 2 {
		return TrendStable
	}

	mid := len(src) / 2
	mean := func(sets []models.CompletedSet) float64 {
		sum := 0.0
		for _, s := range sets {
			sum += float64(s.RPE)
		}
		return sum / float64(len(sets))
	}

	delta := mean(src[mid:]) - mean(src[:mid])
	switch {
	case delta >= 1.5:
		return TrendRising
	case delta <= -0.5:
		return TrendFalling
	default:
		return TrendStable
	}
}

// MarkAdjusted flips the adjusted flag on a logged set after its suggestion
// has been accepted. Returns false if the set is not in the ledger.
func (l *Ledger) MarkAdjusted(exercise string, setNumber int, reason string) bool {
	src := l.sets[exercise]
	for i := range src {
		if src[i].SetNumber == setNumber {
			src[i].Adjusted = true
			src[i].AdjustmentReason = reason
			return true
		}
	}
	return false
}

// Exercises returns the exercise names in first-logged order.
func (l *Ledger) Exercises() []string {
	out := make([]string, len(l.order))
	copy(out, l.order)
	return out
}

// Summary produces the session-end rows handed to the workout-logging
// collaborator.
func (l *Ledger) Summary() []models.ExerciseSummary {
	var out []models.ExerciseSummary
	for _, name := range l.order {
		src := l.sets[name]
		adjusted := 0
		for _, s := range src {
			if s.Adjusted {
				adjusted++
			}
		}
		out = append(out, models.ExerciseSummary{
			ExerciseName:  name,
			SetsCompleted: len(src),
			AvgRPE:        l.AverageRPE(name),
			AdjustedCount: adjusted,
		})
	}
	return out
}
