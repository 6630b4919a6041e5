// Package pain implements the pain-driven decision path that runs alongside
// the RPE/RIR engine: reactive in-set adaptations, proactive pre-session
// rewrites of an exercise list, and the persistence check that escalates
// recurring pain into a recovery recommendation.
package pain

import (
	"fmt"
	"math"
	"time"

	"github.com/meltforce/autoreg/internal/models"
)

const (
	// AdaptationThreshold is the pain level at which adaptations start
	// being recorded and counted toward escalation.
	AdaptationThreshold = 4

	// stopThreshold is the hard-stop level: advance to the next exercise,
	// not advisory.
	stopThreshold = 7

	weightReductionFactor = 0.8
	repsReductionFactor   = 0.7
	romReductionPoints    = 25
	minROMPercent         = 50
)

// Decide returns the reactive in-set adaptation for a reported pain level.
// The training goal picks which quantity a mid-band reduction targets: a
// strength goal keeps intensity and cuts reps, everything else cuts weight.
// A mid-band reduction is granted once per exercise; if pain at that level
// recurs after an earlier adaptation in prior, the exercise stops.
func Decide(painLevel int, currentWeight float64, currentReps int, romPercent float64, prior []models.PainAdaptation, goal models.TrainingGoal) models.PainAdaptation {
	now := time.Now()

	switch {
	case painLevel >= stopThreshold:
		return models.PainAdaptation{
			Intensity:   painLevel,
			Action:      models.PainStopExercise,
			Message:     fmt.Sprintf("pain %d/10: stop this exercise and move on; see a physiotherapist if it persists", painLevel),
			SessionDate: now,
		}

	case painLevel >= AdaptationThreshold:
		for _, p := range prior {
			if p.Intensity >= AdaptationThreshold {
				return models.PainAdaptation{
					Intensity:   painLevel,
					Action:      models.PainStopExercise,
					Message:     fmt.Sprintf("pain %d/10 persists after an earlier adjustment: stop this exercise for today", painLevel),
					SessionDate: now,
				}
			}
		}
		if goal == models.GoalStrength {
			newReps := int(math.Round(float64(currentReps) * repsReductionFactor))
			if newReps < 1 {
				newReps = 1
			}
			return models.PainAdaptation{
				Intensity:   painLevel,
				Action:      models.PainReduceReps,
				FromValue:   float64(currentReps),
				ToValue:     float64(newReps),
				Message:     fmt.Sprintf("pain %d/10: cut reps to %d, keep the load to preserve intensity", painLevel, newReps),
				SessionDate: now,
			}
		}
		newWeight := math.Round(currentWeight*weightReductionFactor*10) / 10
		return models.PainAdaptation{
			Intensity:   painLevel,
			Action:      models.PainReduceWeight,
			FromValue:   currentWeight,
			ToValue:     newWeight,
			Message:     fmt.Sprintf("pain %d/10: reduce load 20%% to %.1f kg, keep the reps", painLevel, newWeight),
			SessionDate: now,
		}

	case painLevel >= 1:
		newROM := romPercent - romReductionPoints
		if newROM < minROMPercent {
			newROM = minROMPercent
		}
		return models.PainAdaptation{
			Intensity:   painLevel,
			Action:      models.PainReduceROM,
			FromValue:   romPercent,
			ToValue:     newROM,
			Message:     fmt.Sprintf("pain %d/10: shorten the range of motion to ~%.0f%% and continue", painLevel, newROM),
			SessionDate: now,
		}

	default:
		return models.PainAdaptation{
			Action:      models.PainContinue,
			Message:     "no pain reported, continue as planned",
			SessionDate: now,
		}
	}
}

// escalation thresholds: 3+ adaptations at or above the threshold for one
// exercise, spread over 2+ distinct sessions.
const (
	escalationAdaptations = 3
	escalationSessions    = 2
)

// CheckEscalation inspects the adaptation history for one exercise and
// returns a RecoveryEscalation when pain has persisted across sessions.
// history spans sessions; records below the adaptation threshold are
// ignored. Returns nil when the trigger is not met.
func CheckEscalation(exercise string, history []models.PainAdaptation) *models.RecoveryEscalation {
	days := make(map[string]struct{})
	count := 0
	painSum := 0.0

	for _, a := range history {
		if a.Exercise != exercise || a.Intensity < AdaptationThreshold {
			continue
		}
		count++
		painSum += float64(a.Intensity)
		days[a.SessionDate.Format("2006-01-02")] = struct{}{}
	}

	if count < escalationAdaptations || len(days) < escalationSessions {
		return nil
	}

	avg := painSum / float64(count)
	return &models.RecoveryEscalation{
		Exercise: exercise,
		Sessions: len(days),
		AvgPain:  math.Round(avg*10) / 10,
		Reason: fmt.Sprintf("%d pain adaptations for %s across %d sessions (avg pain %.1f/10); recommend a dedicated recovery block",
			count, exercise, len(days), avg),
	}
}
