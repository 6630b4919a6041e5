package effort

import (
	"testing"

	"github.com/meltforce/autoreg/internal/models"
)

// TestAdjustContextStacking verifies that every confounder stacks additively:
// rpe 9 with max stress, bad sleep, poor nutrition and poor hydration drops
// by exactly 3.0 and stays inside [1, 10].
func TestAdjustContextStacking(t *testing.T) {
	ctx := models.SessionContext{
		StressLevel:  9,
		SleepQuality: 2,
		Nutrition:    models.QualityPoor,
		Hydration:    models.QualityPoor,
	}
	got := AdjustContext(9, ctx)
	if got != 6.0 {
		t.Errorf("AdjustContext(9, worst case) = %.2f, want 6.00", got)
	}
}

// TestAdjustContextClamp verifies the result never leaves [1, 10] even when
// the offsets would push it out.
func TestAdjustContextClamp(t *testing.T) {
	worst := models.SessionContext{
		StressLevel:  10,
		SleepQuality: 1,
		Nutrition:    models.QualityPoor,
		Hydration:    models.QualityPoor,
	}
	if got := AdjustContext(1, worst); got != 1 {
		t.Errorf("low clamp: got %.2f, want 1", got)
	}

	best := models.SessionContext{
		StressLevel:  2,
		SleepQuality: 9,
		Nutrition:    models.QualityGood,
		Hydration:    models.QualityGood,
	}
	if got := AdjustContext(10, best); got != 10 {
		t.Errorf("high clamp: got %.2f, want 10", got)
	}
}

func TestAdjustContextBands(t *testing.T) {
	tests := []struct {
		name string
		ctx  models.SessionContext
		rpe  float64
		want float64
	}{
		{"neutral", models.SessionContext{StressLevel: 5, SleepQuality: 7, Nutrition: models.QualityNormal, Hydration: models.QualityNormal}, 7, 7},
		{"stress 7 band", models.SessionContext{StressLevel: 7, SleepQuality: 7, Nutrition: models.QualityNormal, Hydration: models.QualityNormal}, 7, 6.5},
		{"sleep 5 band", models.SessionContext{StressLevel: 5, SleepQuality: 5, Nutrition: models.QualityNormal, Hydration: models.QualityNormal}, 7, 6.5},
		{"good nutrition and hydration", models.SessionContext{StressLevel: 5, SleepQuality: 7, Nutrition: models.QualityGood, Hydration: models.QualityGood}, 7, 7.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AdjustContext(tt.rpe, tt.ctx); got != tt.want {
				t.Errorf("AdjustContext(%.1f) = %.2f, want %.2f", tt.rpe, got, tt.want)
			}
		})
	}
}

func TestExpectedRIR(t *testing.T) {
	tests := []struct{ rpe, want int }{
		{10, 0}, {9, 1}, {7, 3}, {5, 5}, {1, 9},
	}
	for _, tt := range tests {
		if got := ExpectedRIR(tt.rpe); got != tt.want {
			t.Errorf("ExpectedRIR(%d) = %d, want %d", tt.rpe, got, tt.want)
		}
	}
}

// TestConsistencyWarning verifies the warning fires only on a gap of 2+, in
// either direction.
func TestConsistencyWarning(t *testing.T) {
	if w := ConsistencyWarning(8, 2); w != "" {
		t.Errorf("consistent reading produced warning: %q", w)
	}
	if w := ConsistencyWarning(8, 3); w != "" {
		t.Errorf("gap of 1 produced warning: %q", w)
	}
	if w := ConsistencyWarning(8, 4); w == "" {
		t.Error("gap of 2 produced no warning")
	}
	if w := ConsistencyWarning(9, 5); w == "" {
		t.Error("large gap produced no warning")
	}
	if w := ConsistencyWarning(10, 2); w == "" {
		t.Error("reported RIR above expected 0 produced no warning")
	}
}
