package pain

import (
	"strings"
	"testing"

	"github.com/meltforce/autoreg/internal/models"
)

func benchTarget() models.ExerciseTarget {
	return models.ExerciseTarget{
		Name:        "Bench Press",
		Pattern:     "horizontal_push",
		PlannedSets: 4,
		RepLow:      8,
		RepHigh:     10,
		RestSeconds: 120,
		TargetRIR:   2,
	}
}

func squatTarget() models.ExerciseTarget {
	return models.ExerciseTarget{
		Name:        "Barbell Squat",
		Pattern:     "lower_push",
		PlannedSets: 3,
		RepLow:      5,
		RepHigh:     5,
		RestSeconds: 180,
		TargetRIR:   1,
	}
}

// TestAdaptForPainSubstitution: intensity 7+ on a primary joint swaps the
// exercise through the safe-alternative table.
func TestAdaptForPainSubstitution(t *testing.T) {
	out, warnings := AdaptForPain(
		[]models.ExerciseTarget{benchTarget()},
		[]models.PainReport{{Area: "shoulder", Intensity: 8}},
	)
	if len(out) != 1 {
		t.Fatalf("targets = %d, want 1", len(out))
	}
	if out[0].Name != "Knee Push-up (reduced ROM)" {
		t.Errorf("name = %q, want substitution", out[0].Name)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

// TestAdaptForPainUnmappedSubstitution: a missing table entry keeps the
// exercise and surfaces a coverage warning instead of silently ignoring it.
func TestAdaptForPainUnmappedSubstitution(t *testing.T) {
	obscure := benchTarget()
	obscure.Name = "Svend Press"

	out, warnings := AdaptForPain(
		[]models.ExerciseTarget{obscure},
		[]models.PainReport{{Area: "shoulder", Intensity: 9}},
	)
	if out[0].Name != "Svend Press" {
		t.Errorf("unmapped exercise renamed to %q", out[0].Name)
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "Svend Press") {
		t.Errorf("coverage warning missing: %v", warnings)
	}
	if !strings.Contains(out[0].Notes, "no mapped substitute") {
		t.Errorf("advisory note missing: %q", out[0].Notes)
	}
}

// TestAdaptForPainMidIntensity: 4-6 drops one set (floor 1) and relaxes the
// target RIR upward.
func TestAdaptForPainMidIntensity(t *testing.T) {
	out, _ := AdaptForPain(
		[]models.ExerciseTarget{squatTarget()},
		[]models.PainReport{{Area: "knee", Intensity: 5}},
	)
	got := out[0]
	if got.PlannedSets != 2 {
		t.Errorf("planned sets = %d, want 2", got.PlannedSets)
	}
	if got.TargetRIR != 2 {
		t.Errorf("target RIR = %d, want 2 (relaxed)", got.TargetRIR)
	}

	single := squatTarget()
	single.PlannedSets = 1
	out, _ = AdaptForPain([]models.ExerciseTarget{single}, []models.PainReport{{Area: "knee", Intensity: 5}})
	if out[0].PlannedSets != 1 {
		t.Errorf("sets floor violated: %d", out[0].PlannedSets)
	}
}

// TestAdaptForPainMildAdvisoryOnly: intensity below 4 changes no numbers.
func TestAdaptForPainMildAdvisoryOnly(t *testing.T) {
	out, _ := AdaptForPain(
		[]models.ExerciseTarget{squatTarget()},
		[]models.PainReport{{Area: "ankle", Intensity: 2}},
	)
	got := out[0]
	if got.PlannedSets != 3 || got.TargetRIR != 1 || got.Name != "Barbell Squat" {
		t.Errorf("mild pain altered prescription: %+v", got)
	}
	if got.Notes == "" {
		t.Error("mild pain left no advisory note")
	}
}

// TestAdaptForPainUninvolvedArea: pain in a joint the pattern never touches
// leaves the exercise alone.
func TestAdaptForPainUninvolvedArea(t *testing.T) {
	out, warnings := AdaptForPain(
		[]models.ExerciseTarget{benchTarget()},
		[]models.PainReport{{Area: "knee", Intensity: 9}},
	)
	if out[0].Name != "Bench Press" || out[0].Notes != "" {
		t.Errorf("uninvolved area modified exercise: %+v", out[0])
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

// TestAdaptForPainCorrectives: two or more areas at 4+ prepend corrective
// work, capped at four entries.
func TestAdaptForPainCorrectives(t *testing.T) {
	out, _ := AdaptForPain(
		[]models.ExerciseTarget{benchTarget()},
		[]models.PainReport{
			{Area: "shoulder", Intensity: 5},
			{Area: "lower_back", Intensity: 4},
		},
	)
	if len(out) != 5 { // 4 correctives + the adapted bench
		t.Fatalf("targets = %d, want 5", len(out))
	}
	for i := 0; i < 4; i++ {
		if out[i].Pattern != "corrective" {
			t.Errorf("target %d pattern = %q, want corrective", i, out[i].Pattern)
		}
	}
	if out[4].Name != "Bench Press" {
		t.Errorf("main exercise not last: %q", out[4].Name)
	}
}

// TestAdaptForPainSingleHotAreaNoCorrectives: one hot area alone does not
// prepend correctives.
func TestAdaptForPainSingleHotAreaNoCorrectives(t *testing.T) {
	out, _ := AdaptForPain(
		[]models.ExerciseTarget{benchTarget()},
		[]models.PainReport{{Area: "shoulder", Intensity: 5}},
	)
	if len(out) != 1 {
		t.Errorf("targets = %d, want 1 (no correctives)", len(out))
	}
}

func TestAdaptForPainNoAreas(t *testing.T) {
	targets := []models.ExerciseTarget{benchTarget(), squatTarget()}
	out, warnings := AdaptForPain(targets, nil)
	if len(out) != 2 || warnings != nil {
		t.Errorf("no-op adaptation changed output: %d targets, %v", len(out), warnings)
	}
	// input must stay untouched
	out[0].Name = "changed"
	if targets[0].Name != "Bench Press" {
		t.Error("AdaptForPain aliases its input")
	}
}
