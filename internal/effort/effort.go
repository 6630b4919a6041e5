// Package effort normalizes perceived-exertion readings. Self-reported RPE is
// inflated by stress, poor sleep, nutrition and hydration confounders that
// have nothing to do with mechanical effort; AdjustContext applies a bounded
// heuristic correction. The adjusted value is an estimate, not ground truth,
// and is stored alongside the raw reading rather than replacing it.
package effort

import (
	"fmt"

	"github.com/meltforce/autoreg/internal/models"
)

// consistencyGap is the |reported - expected| RIR distance that triggers a
// calibration warning.
const consistencyGap = 2

// AdjustContext corrects a raw RPE for contextual confounders. Offsets are
// additive and independent; the result is clamped to [1, 10].
func AdjustContext(rpe float64, ctx models.SessionContext) float64 {
	adj := 0.0

	// High stress inflates RPE, so subtract to normalize.
	switch {
	case ctx.StressLevel >= 8:
		adj -= 1.0
	case ctx.StressLevel >= 7:
		adj -= 0.5
	}

	switch {
	case ctx.SleepQuality <= 3:
		adj -= 1.0
	case ctx.SleepQuality <= 5:
		adj -= 0.5
	}

	switch ctx.Nutrition {
	case models.QualityPoor:
		adj -= 0.5
	case models.QualityGood:
		adj += 0.25
	}

	switch ctx.Hydration {
	case models.QualityPoor:
		adj -= 0.5
	case models.QualityGood:
		adj += 0.25
	}

	out := rpe + adj
	if out < 1 {
		out = 1
	}
	if out > 10 {
		out = 10
	}
	return out
}

// ExpectedRIR derives the reps-in-reserve implied by an RPE reading.
func ExpectedRIR(rpe int) int {
	if rir := 10 - rpe; rir > 0 {
		return rir
	}
	return 0
}

// ConsistencyWarning returns an advisory message when the reported RIR
// disagrees with the RIR implied by the RPE by 2 or more. Informational
// only: it never alters a suggestion.
func ConsistencyWarning(rpe, reportedRIR int) string {
	expected := ExpectedRIR(rpe)
	gap := reportedRIR - expected
	if gap < 0 {
		gap = -gap
	}
	if gap < consistencyGap {
		return ""
	}
	return fmt.Sprintf("RPE %d implies ~%d reps in reserve but %d was reported; load may be miscalibrated", rpe, expected, reportedRIR)
}
