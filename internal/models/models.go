package models

import "time"

// SuggestionKind classifies the engine's verdict after a set.
type SuggestionKind string

const (
	SuggestMaintain SuggestionKind = "maintain"
	SuggestReduce   SuggestionKind = "reduce"
	SuggestIncrease SuggestionKind = "increase"
)

// Quality is a coarse self-reported rating used in the pre-workout check-in.
type Quality string

const (
	QualityGood   Quality = "good"
	QualityNormal Quality = "normal"
	QualityPoor   Quality = "poor"
)

// TrainingGoal drives goal-dependent decisions (e.g. which quantity a pain
// adaptation reduces).
type TrainingGoal string

const (
	GoalStrength    TrainingGoal = "strength"
	GoalHypertrophy TrainingGoal = "hypertrophy"
	GoalEndurance   TrainingGoal = "endurance"
	GoalGeneral     TrainingGoal = "general"
)

// ExerciseTarget is the programmed prescription for one exercise in a session.
// All free-form program fields (rep ranges, rest strings) are parsed before
// an ExerciseTarget is built, so the engine never sees raw text.
//
// TargetRIR is the reps-in-reserve intended for the LAST set of the exercise.
// Earlier sets are expected to land at higher RIR at constant load, so the
// engine must not judge intermediate sets against this value.
type ExerciseTarget struct {
	Name             string   `json:"name"`
	Pattern          string   `json:"pattern"`
	PlannedSets      int      `json:"planned_sets"`
	RepLow           int      `json:"rep_low"`
	RepHigh          int      `json:"rep_high"`
	RestSeconds      int      `json:"rest_seconds"`
	TargetRIR        int      `json:"target_rir"`
	PrescribedWeight *float64 `json:"prescribed_weight,omitempty"`
	Notes            string   `json:"notes,omitempty"`
}

// CompletedSet is one logged repetition block. Immutable after append except
// for Adjusted/AdjustmentReason, which flip once a suggestion tied to this
// set has been accepted.
type CompletedSet struct {
	SetNumber        int      `json:"set_number"`
	RepsCompleted    int      `json:"reps_completed"`
	WeightUsed       *float64 `json:"weight_used,omitempty"`
	RPE              int      `json:"rpe"`
	RPEAdjusted      float64  `json:"rpe_adjusted,omitempty"`
	RIRPerceived     int      `json:"rir_perceived"`
	PainLevel        int      `json:"pain_level"`
	Adjusted         bool     `json:"adjusted"`
	AdjustmentReason string   `json:"adjustment_reason,omitempty"`
}

// Suggestion is the engine's output after evaluating a set. It is ephemeral:
// applied or dismissed immediately, never persisted as its own entity.
type Suggestion struct {
	Kind             SuggestionKind `json:"kind"`
	ScopeSetsDelta   int            `json:"scope_sets_delta,omitempty"`
	LoadPercentDelta float64        `json:"load_percent_delta"`
	NextRestSeconds  int            `json:"next_rest_seconds,omitempty"`
	Rationale        string         `json:"rationale"`
}

// PainAction is the decided response to a reported pain level.
type PainAction string

const (
	PainContinue     PainAction = "continue"
	PainReduceWeight PainAction = "reduce_weight"
	PainReduceReps   PainAction = "reduce_reps"
	PainReduceROM    PainAction = "reduce_rom"
	PainStopExercise PainAction = "stop_exercise"
)

// PainAdaptation records a pain-triggered change on one exercise.
type PainAdaptation struct {
	Exercise    string     `json:"exercise"`
	Area        string     `json:"area,omitempty"`
	Intensity   int        `json:"intensity"`
	Action      PainAction `json:"action"`
	FromValue   float64    `json:"from_value,omitempty"`
	ToValue     float64    `json:"to_value,omitempty"`
	Message     string     `json:"message"`
	SessionDate time.Time  `json:"session_date"`
}

// PainReport is a pre-session reported pain area from the check-in screen.
type PainReport struct {
	Area      string `json:"area"`
	Intensity int    `json:"intensity"`
}

// RecoveryEscalation signals persistent pain across sessions. Downstream
// handling (a dedicated recovery protocol) lives outside this engine; only
// the trigger is decided here.
type RecoveryEscalation struct {
	Exercise string  `json:"exercise"`
	Sessions int     `json:"sessions"`
	AvgPain  float64 `json:"avg_pain"`
	Reason   string  `json:"reason"`
}

// SessionContext carries the pre-workout check-in answers. It is an explicit
// immutable value passed into the effort model, never ambient state.
type SessionContext struct {
	Mood         string  `json:"mood,omitempty"`
	StressLevel  int     `json:"stress_level"`
	SleepQuality int     `json:"sleep_quality"`
	Nutrition    Quality `json:"nutrition"`
	Hydration    Quality `json:"hydration"`
}

// ExerciseSummary is one row of the session-end summary handed to the
// workout-logging collaborator.
type ExerciseSummary struct {
	ExerciseName  string  `json:"exercise_name"`
	Pattern       string  `json:"pattern,omitempty"`
	SetsCompleted int     `json:"sets_completed"`
	AvgRPE        float64 `json:"avg_rpe"`
	AdjustedCount int     `json:"adjusted_count"`
}
