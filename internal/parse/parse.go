// Package parse is the single validated boundary for the free-text fields
// that programs carry: rest durations ("90s", "2-3min"), rep ranges ("8-10"),
// and RIR annotations embedded in exercise notes. Every function fails closed
// to a documented default instead of propagating garbage into the engine.
package parse

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultRestSeconds is used when a rest string cannot be parsed.
	DefaultRestSeconds = 90

	// DefaultRepLow is used when a rep range cannot be parsed.
	DefaultRepLow = 8

	// DefaultTargetRIR is the common hypertrophy target, used when neither
	// notes nor intensity yield an explicit RIR.
	DefaultTargetRIR = 2
)

var (
	firstNumberRe = regexp.MustCompile(`(\d+)`)
	repRangeRe    = regexp.MustCompile(`^\s*(\d+)\s*-\s*(\d+)\s*$`)
	rirNoteRe     = regexp.MustCompile(`(?i)RIR\s*(\d)`)
)

// RestSeconds parses a rest string into seconds.
// Handles "90s", "60-90s", "2-3min", "3-5min"; ranges use the lower bound.
func RestSeconds(rest string) int {
	cleaned := strings.ToLower(strings.TrimSpace(rest))
	if cleaned == "" {
		return DefaultRestSeconds
	}

	m := firstNumberRe.FindStringSubmatch(cleaned)
	if m == nil {
		return DefaultRestSeconds
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n <= 0 {
		return DefaultRestSeconds
	}

	if strings.Contains(cleaned, "min") {
		return n * 60
	}
	return n
}

// RepRange parses a rep prescription into a low/high pair. Accepts a fixed
// count ("8") or a range ("8-10"); the lower bound is the reference target.
func RepRange(reps string) (low, high int) {
	cleaned := strings.TrimSpace(reps)
	if cleaned == "" {
		return DefaultRepLow, DefaultRepLow
	}

	if m := repRangeRe.FindStringSubmatch(cleaned); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if lo < 1 {
			lo = DefaultRepLow
		}
		if hi < lo {
			hi = lo
		}
		return lo, hi
	}

	if n, err := strconv.Atoi(cleaned); err == nil && n >= 1 {
		return n, n
	}
	return DefaultRepLow, DefaultRepLow
}

// TargetRIR extracts the base target RIR for the last set of an exercise.
// An explicit "RIR n" annotation in the notes wins; otherwise the intensity
// wording is used to infer one.
func TargetRIR(notes, intensity string) int {
	if m := rirNoteRe.FindStringSubmatch(notes); m != nil {
		n, _ := strconv.Atoi(m[1])
		if n <= 5 {
			return n
		}
	}

	switch in := strings.ToLower(intensity); {
	case strings.Contains(in, "failure"), strings.Contains(in, "max"):
		return 0
	case strings.Contains(in, "heavy"):
		return 1
	case strings.Contains(in, "moderate"):
		return 2
	case strings.Contains(in, "light"), strings.Contains(in, "volume"):
		return 3
	}
	return DefaultTargetRIR
}

// WeightKg parses a weight field that may be a bare number ("82.5") or a
// suffixed string ("82.5kg"). Returns false when no usable number is present.
func WeightKg(s string) (float64, bool) {
	cleaned := strings.ToLower(strings.TrimSpace(s))
	cleaned = strings.TrimSuffix(cleaned, "kg")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0, false
	}
	w, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || w < 0 {
		return 0, false
	}
	return w, true
}
