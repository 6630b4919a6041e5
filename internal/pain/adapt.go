package pain

import (
	"fmt"
	"strings"

	"github.com/meltforce/autoreg/internal/models"
)

const (
	substituteThreshold = 7
	maxCorrectives      = 4
	correctiveRIR       = 4
	correctiveSets      = 2
	correctiveRestSec   = 30
)

// AdaptForPain rewrites a pre-session exercise list for already-known pain
// areas. Per exercise: a reported area hitting a primary joint at intensity
// 7+ substitutes the movement via the safe-alternative table (a missing
// mapping keeps the exercise and surfaces a coverage warning); 4-6 drops a
// set and relaxes the target RIR; anything lower attaches an advisory note.
// When two or more areas reach intensity 4+, corrective warm-up work is
// prepended. The input slice is not modified.
func AdaptForPain(targets []models.ExerciseTarget, areas []models.PainReport) ([]models.ExerciseTarget, []string) {
	if len(areas) == 0 {
		out := make([]models.ExerciseTarget, len(targets))
		copy(out, targets)
		return out, nil
	}

	var warnings []string
	adapted := make([]models.ExerciseTarget, 0, len(targets))

	for _, t := range targets {
		adapted = append(adapted, adaptOne(t, areas, &warnings))
	}

	if hot := hotAreas(areas); len(hot) >= 2 {
		adapted = append(correctivesFor(hot), adapted...)
	}
	return adapted, warnings
}

func adaptOne(t models.ExerciseTarget, areas []models.PainReport, warnings *[]string) models.ExerciseTarget {
	bio, known := patternBiomechanics[t.Pattern]
	if !known {
		return t
	}

	out := t
	var notes []string

	for _, area := range areas {
		inv := bio.involvementOf(area.Area)
		if inv == notInvolved {
			continue
		}

		switch {
		case area.Intensity >= substituteThreshold && inv == primaryJoint:
			if sub, ok := safeAlternatives[out.Name]; ok {
				notes = append(notes, fmt.Sprintf("substituted for %s (pain %d/10): was %s", area.Area, area.Intensity, out.Name))
				out.Name = sub
			} else {
				w := fmt.Sprintf("no safe substitute mapped for %q with %s pain %d/10; kept with caution", out.Name, area.Area, area.Intensity)
				*warnings = append(*warnings, w)
				notes = append(notes, "no mapped substitute; proceed carefully and stop on sharp pain")
			}

		case area.Intensity >= AdaptationThreshold:
			if out.PlannedSets > 1 {
				out.PlannedSets--
			}
			if out.TargetRIR < 5 {
				out.TargetRIR++
			}
			notes = append(notes, fmt.Sprintf("%s pain %d/10: one set dropped, effort relaxed to RIR %d", area.Area, area.Intensity, out.TargetRIR))

		default:
			notes = append(notes, fmt.Sprintf("mild %s pain %d/10: extended warm-up recommended", area.Area, area.Intensity))
		}
	}

	if len(notes) > 0 {
		if out.Notes != "" {
			out.Notes += " | "
		}
		out.Notes += strings.Join(notes, "; ")
	}
	return out
}

// hotAreas returns areas at or above the adaptation threshold.
func hotAreas(areas []models.PainReport) []models.PainReport {
	var hot []models.PainReport
	for _, a := range areas {
		if a.Intensity >= AdaptationThreshold {
			hot = append(hot, a)
		}
	}
	return hot
}

// correctivesFor builds up to maxCorrectives warm-up targets for the given
// areas, round-robin so every hurting area is represented.
func correctivesFor(hot []models.PainReport) []models.ExerciseTarget {
	var out []models.ExerciseTarget
	seen := make(map[string]struct{})

	for i := 0; len(out) < maxCorrectives; i++ {
		added := false
		for _, a := range hot {
			names := correctiveExercises[a.Area]
			if i >= len(names) {
				continue
			}
			name := names[i]
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, models.ExerciseTarget{
				Name:        name,
				Pattern:     "corrective",
				PlannedSets: correctiveSets,
				RepLow:      10,
				RepHigh:     15,
				RestSeconds: correctiveRestSec,
				TargetRIR:   correctiveRIR,
				Notes:       fmt.Sprintf("corrective for %s; quality over load", a.Area),
			})
			added = true
			if len(out) == maxCorrectives {
				break
			}
		}
		if !added {
			break
		}
	}
	return out
}
