package engine

import (
	"fmt"
	"math"
	"sort"

	"github.com/meltforce/autoreg/internal/models"
)

// Level is the athlete's experience level. It controls how long the engine
// collects data before auto-adjusting and how aggressively it moves loads.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// levelConfig tunes the session-close adjustment path per level.
type levelConfig struct {
	learningSessions int     // sessions collected before any auto-adjust
	maxAdjustPercent float64 // per-session cap
	dampingFactor    float64 // 0-1, how much of the raw adjustment survives
	minConfirmations int     // consecutive sets confirming the pattern
}

var levelConfigs = map[Level]levelConfig{
	LevelBeginner:     {learningSessions: 6, maxAdjustPercent: 5, dampingFactor: 0.5, minConfirmations: 3},
	LevelIntermediate: {learningSessions: 3, maxAdjustPercent: 7.5, dampingFactor: 0.7, minConfirmations: 2},
	LevelAdvanced:     {learningSessions: 1, maxAdjustPercent: 10, dampingFactor: 0.9, minConfirmations: 1},
}

// fatigueMultipliers weight an exercise's systemic cost by movement pattern.
// An RPE 9 squat drains more than an RPE 9 curl.
var fatigueMultipliers = map[string]float64{
	"lower_push":      1.4,
	"lower_pull":      1.3,
	"horizontal_push": 1.1,
	"horizontal_pull": 1.1,
	"vertical_push":   1.0,
	"vertical_pull":   1.0,
	"accessory":       0.8,
	"core":            0.7,
	"corrective":      0.5,
}

// Weights for the weighted-RIR mean. The last set reflects true fatigue
// best; earlier sets still matter because a sudden collapse from RIR 5 to
// RIR 1 reads differently from steady decline.
const (
	weightLastSet       = 0.5
	weightSecondLastSet = 0.3
	weightOtherSets     = 0.2
)

// WeightedRIR computes the weighted mean RIR across an exercise's sets,
// last set weighted heaviest. Falls back to a safe default of 3 with no sets.
func WeightedRIR(sets []models.CompletedSet) float64 {
	switch len(sets) {
	case 0:
		return 3
	case 1:
		return float64(sets[0].RIRPerceived)
	}

	weights := make([]float64, len(sets))
	others := len(sets) - 2
	for i := range sets {
		switch i {
		case len(sets) - 1:
			weights[i] = weightLastSet
		case len(sets) - 2:
			weights[i] = weightSecondLastSet
		default:
			weights[i] = weightOtherSets / float64(others)
		}
	}

	total := 0.0
	for _, w := range weights {
		total += w
	}
	sum := 0.0
	for i, s := range sets {
		sum += float64(s.RIRPerceived) * weights[i] / total
	}
	return math.Round(sum*10) / 10
}

// SessionAdjustment is the damped, confidence-gated load change proposed at
// session close for one exercise.
type SessionAdjustment struct {
	ShouldAdjust bool    `json:"should_adjust"`
	Percent      float64 `json:"percent"`
	Confidence   string  `json:"confidence"` // high, medium, low
	Reason       string  `json:"reason"`
	ApplyNextSet bool    `json:"apply_next_set"` // false = next session
}

// DampedAdjustment converts a weighted RIR difference into a gradual load
// change: ~2.5% per RIR point, damped and capped per level, extra caution on
// high-fatigue compound patterns, and gated behind a minimum number of sets
// confirming the same direction.
func DampedAdjustment(rirDiff float64, pattern string, level Level, confirmations int) SessionAdjustment {
	cfg, ok := levelConfigs[level]
	if !ok {
		cfg = levelConfigs[LevelIntermediate]
	}
	mult := fatigueMultipliers[pattern]
	if mult == 0 {
		mult = 1.0
	}

	adj := rirDiff * 2.5 * cfg.dampingFactor
	adj = math.Max(-cfg.maxAdjustPercent, math.Min(cfg.maxAdjustPercent, adj))
	if adj > 0 && mult > 1.0 {
		// increases on heavy compounds stay conservative
		adj *= 0.8
	}
	adj = math.Round(adj*10) / 10

	confirmed := confirmations >= cfg.minConfirmations
	should := confirmed && math.Abs(adj) >= 2

	confidence := "medium"
	if confirmations >= 3 && math.Abs(rirDiff) >= 2 {
		confidence = "high"
	} else if confirmations < 2 {
		confidence = "low"
	}

	reason := ""
	switch {
	case !confirmed:
		reason = fmt.Sprintf("need %d more confirming sets before adjusting", cfg.minConfirmations-confirmations)
	case !should:
		reason = "difference too small to adjust"
	case adj > 0:
		reason = fmt.Sprintf("weighted RIR %+.1f vs target: load is light", rirDiff)
	default:
		reason = fmt.Sprintf("weighted RIR %.1f vs target: load is heavy", rirDiff)
	}

	return SessionAdjustment{
		ShouldAdjust: should,
		Percent:      adj,
		Confidence:   confidence,
		Reason:       reason,
		ApplyNextSet: confidence == "high",
	}
}

// Confirmations counts, from the newest set backwards, how many sets miss
// the target RIR in the same direction as the overall difference by at least
// one rep. Used to gate DampedAdjustment.
func Confirmations(sets []models.CompletedSet, targetRIR int, rirDiff float64) int {
	n := 0
	for i := len(sets) - 1; i >= 0; i-- {
		d := float64(sets[i].RIRPerceived - targetRIR)
		if math.Signbit(d) == math.Signbit(rirDiff) && math.Abs(d) >= 1 {
			n++
			continue
		}
		break
	}
	return n
}

// LearningStatus reports whether an exercise is still in its calibration
// window, during which sets are collected but never auto-adjusted.
type LearningStatus struct {
	InLearningPeriod  bool `json:"in_learning_period"`
	SessionsCompleted int  `json:"sessions_completed"`
	SessionsRemaining int  `json:"sessions_remaining"`
}

// LearningPeriod reports the calibration state for an exercise the athlete
// has trained sessionsSeen times.
func LearningPeriod(sessionsSeen int, level Level) LearningStatus {
	cfg, ok := levelConfigs[level]
	if !ok {
		cfg = levelConfigs[LevelIntermediate]
	}
	if sessionsSeen >= cfg.learningSessions {
		return LearningStatus{SessionsCompleted: sessionsSeen}
	}
	return LearningStatus{
		InLearningPeriod:  true,
		SessionsCompleted: sessionsSeen,
		SessionsRemaining: cfg.learningSessions - sessionsSeen,
	}
}

// ExerciseFatigue is one exercise's contribution to the normalized session
// fatigue score.
type ExerciseFatigue struct {
	Exercise     string  `json:"exercise"`
	Pattern      string  `json:"pattern"`
	AvgRPE       float64 `json:"avg_rpe"`
	Multiplier   float64 `json:"multiplier"`
	Contribution float64 `json:"contribution"`
}

// SessionFatigue aggregates per-exercise effort into a pattern-weighted 0-10
// fatigue score for the whole session.
type SessionFatigue struct {
	RawAvgRPE  float64           `json:"raw_avg_rpe"`
	Normalized float64           `json:"normalized"`
	Breakdown  []ExerciseFatigue `json:"breakdown"`
}

// NormalizedSessionFatigue weights each exercise's mean RPE by its set count
// and fatigue multiplier, so compound-heavy sessions score hotter than the
// raw average suggests.
func NormalizedSessionFatigue(perExercise map[string][]models.CompletedSet, patterns map[string]string) SessionFatigue {
	var out SessionFatigue
	totalRPE, weightedSum, totalWeight := 0.0, 0.0, 0.0
	counted := 0

	for name, sets := range perExercise {
		if len(sets) == 0 {
			continue
		}
		sum := 0.0
		for _, s := range sets {
			sum += float64(s.RPE)
		}
		avg := sum / float64(len(sets))
		totalRPE += avg
		counted++

		mult := fatigueMultipliers[patterns[name]]
		if mult == 0 {
			mult = 1.0
		}
		w := float64(len(sets)) * mult
		weightedSum += avg * w
		totalWeight += w

		out.Breakdown = append(out.Breakdown, ExerciseFatigue{
			Exercise:     name,
			Pattern:      patterns[name],
			AvgRPE:       math.Round(avg*10) / 10,
			Multiplier:   mult,
			Contribution: math.Round(avg*w*10) / 10,
		})
	}

	if counted == 0 {
		return out
	}
	sort.Slice(out.Breakdown, func(i, j int) bool {
		return out.Breakdown[i].Exercise < out.Breakdown[j].Exercise
	})
	out.RawAvgRPE = math.Round(totalRPE/float64(counted)*10) / 10
	if totalWeight > 0 {
		out.Normalized = math.Round(weightedSum/totalWeight*10) / 10
	} else {
		out.Normalized = out.RawAvgRPE
	}
	return out
}
