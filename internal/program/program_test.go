package program

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
)

const weeklySplitJSON = `{
	"id": "7b6a1c52-9c0f-4f1e-9a58-2d3f6f1a9e01",
	"name": "Push Pull Legs",
	"goal": "hypertrophy",
	"weekly_split": {
		"days": [
			{
				"name": "Push",
				"exercises": [
					{"name": "Bench Press", "pattern": "horizontal_push", "sets": 4, "reps": "8-10", "rest": "2-3min", "intensity": "Heavy", "weight": "82.5kg"},
					{"name": "Military Press", "pattern": "vertical_push", "sets": 3, "reps": 10, "rest": "90s", "notes": "RIR 2", "weight": 40}
				]
			},
			{
				"name": "Legs",
				"exercises": [
					{"name": "Barbell Squat", "pattern": "lower_push", "sets": 5, "reps": "5", "rest": "3-5min", "target_rir": 1, "weight": "120kg"}
				]
			}
		]
	}
}`

const flatJSON = `{
	"id": "a56af6a2-07b8-44e3-8f4e-0a6e8f6c1d02",
	"name": "Full Body",
	"exercises": [
		{"name": "Deadlift", "pattern": "lower_pull", "sets": 3, "reps": "5", "weight": 140}
	]
}`

const legacyJSON = `{
	"id": "0f5f2f1d-75a7-4f7a-97b1-6f8d2c3b4a03",
	"name": "Team Plan",
	"weekly_schedule": [
		{"name": "Day A", "exercises": [
			{"name": "Row", "pattern": "horizontal_pull", "sets": 3, "reps": "8-12", "weight": "60kg", "intensity": "Moderate"}
		]}
	]
}`

func load(t *testing.T, raw string) *Program {
	t.Helper()
	var p Program
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return &p
}

// TestKindDetection verifies the three historical shapes are recognized.
func TestKindDetection(t *testing.T) {
	if k := load(t, weeklySplitJSON).Kind(); k != ShapeWeeklySplit {
		t.Errorf("weekly split kind = %s", k)
	}
	if k := load(t, flatJSON).Kind(); k != ShapeFlat {
		t.Errorf("flat kind = %s", k)
	}
	if k := load(t, legacyJSON).Kind(); k != ShapeLegacy {
		t.Errorf("legacy kind = %s", k)
	}
}

// TestDayTargetsNormalization checks the full parse boundary: rep ranges,
// rest strings, RIR inference (explicit field > note > intensity), and both
// weight encodings.
func TestDayTargetsNormalization(t *testing.T) {
	p := load(t, weeklySplitJSON)

	push := p.DayTargets("Push")
	if len(push) != 2 {
		t.Fatalf("push targets = %d, want 2", len(push))
	}

	bench := push[0]
	if bench.RepLow != 8 || bench.RepHigh != 10 {
		t.Errorf("bench reps = %d-%d", bench.RepLow, bench.RepHigh)
	}
	if bench.RestSeconds != 120 {
		t.Errorf("bench rest = %d, want 120", bench.RestSeconds)
	}
	if bench.TargetRIR != 1 { // inferred from "Heavy"
		t.Errorf("bench target RIR = %d, want 1", bench.TargetRIR)
	}
	if bench.PrescribedWeight == nil || *bench.PrescribedWeight != 82.5 {
		t.Errorf("bench weight = %v", bench.PrescribedWeight)
	}

	press := push[1]
	if press.RepLow != 10 || press.RepHigh != 10 {
		t.Errorf("press reps = %d-%d", press.RepLow, press.RepHigh)
	}
	if press.TargetRIR != 2 { // from "RIR 2" note
		t.Errorf("press target RIR = %d, want 2", press.TargetRIR)
	}
	if press.PrescribedWeight == nil || *press.PrescribedWeight != 40 {
		t.Errorf("press weight = %v", press.PrescribedWeight)
	}

	legs := p.DayTargets("legs") // case-insensitive day match
	if len(legs) != 1 || legs[0].TargetRIR != 1 {
		t.Errorf("legs targets = %+v", legs)
	}

	if got := len(p.AllTargets()); got != 3 {
		t.Errorf("all targets = %d, want 3", got)
	}
}

// TestDayTargetsFlatIgnoresDayName: flat programs have one implicit day.
func TestDayTargetsFlatIgnoresDayName(t *testing.T) {
	p := load(t, flatJSON)
	targets := p.DayTargets("whatever")
	if len(targets) != 1 || targets[0].Name != "Deadlift" {
		t.Errorf("flat targets = %+v", targets)
	}
}

// TestApplyWeightChangeRoundTrip: +5% on 80 kg gives 84 (nearest 0.5);
// applying -5% afterward returns within 1 kg of the original. Idempotence is
// only approximate because of rounding.
func TestApplyWeightChangeRoundTrip(t *testing.T) {
	p := load(t, flatJSON)
	p.Exercises[0].Weight = "80"

	up, err := ApplyWeightChange(p, "Deadlift", 5)
	if err != nil {
		t.Fatalf("apply +5%%: %v", err)
	}
	if up.OldWeight != 80 || up.NewWeight != 84 {
		t.Errorf("up change = %+v, want 80 -> 84", up)
	}

	down, err := ApplyWeightChange(p, "Deadlift", -5)
	if err != nil {
		t.Fatalf("apply -5%%: %v", err)
	}
	if math.Abs(down.NewWeight-80) > 1 {
		t.Errorf("round trip ended at %.1f, want within 1 of 80", down.NewWeight)
	}
}

// TestApplyWeightChangeAllShapes verifies the mutator reaches exercises in
// every schema shape and writes the audit note.
func TestApplyWeightChangeAllShapes(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		exercise string
	}{
		{"weekly split", weeklySplitJSON, "Bench Press"},
		{"flat", flatJSON, "Deadlift"},
		{"legacy", legacyJSON, "Row"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := load(t, tt.raw)
			change, err := ApplyWeightChange(p, tt.exercise, 5)
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if change.NewWeight <= change.OldWeight {
				t.Errorf("weight not increased: %+v", change)
			}

			// the mutated exercise carries the audit note
			found := false
			for _, target := range p.AllTargets() {
				if target.Name == tt.exercise && strings.Contains(target.Notes, "Auto-adjusted +5.0% (RIR feedback)") {
					found = true
				}
			}
			if !found {
				t.Error("audit note missing after mutation")
			}
		})
	}
}

func TestApplyWeightChangeNotFound(t *testing.T) {
	p := load(t, weeklySplitJSON)
	_, err := ApplyWeightChange(p, "Nordic Curl", 5)
	var nfErr *ExerciseNotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("got %v, want ExerciseNotFoundError", err)
	}
	if nfErr.Exercise != "Nordic Curl" {
		t.Errorf("error exercise = %q", nfErr.Exercise)
	}
}

// TestFlexTextBothEncodings guards the tolerant JSON decoding of reps/weight.
func TestFlexTextBothEncodings(t *testing.T) {
	var ex Exercise
	if err := json.Unmarshal([]byte(`{"name":"X","sets":3,"reps":10,"weight":"50kg"}`), &ex); err != nil {
		t.Fatalf("numeric reps: %v", err)
	}
	if ex.Reps != "10" || ex.Weight != "50kg" {
		t.Errorf("decoded = reps %q weight %q", ex.Reps, ex.Weight)
	}
	if err := json.Unmarshal([]byte(`{"name":"X","sets":3,"reps":"8-10","weight":62.5}`), &ex); err != nil {
		t.Fatalf("string reps: %v", err)
	}
	if ex.Reps != "8-10" || ex.Weight != "62.5" {
		t.Errorf("decoded = reps %q weight %q", ex.Reps, ex.Weight)
	}
}
