// Package program models the persisted training program and its historical
// schema variants. Three shapes exist in stored data: a legacy weekly
// schedule, the current weekly split, and a flat exercise list. The rest of
// the system only sees the canonical ExerciseTarget view produced here; the
// mutator walks whatever shape the program actually has.
package program

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/meltforce/autoreg/internal/models"
	"github.com/meltforce/autoreg/internal/parse"
)

// ShapeKind tags which historical schema a stored program uses.
type ShapeKind string

const (
	ShapeLegacy      ShapeKind = "legacy"       // top-level weekly_schedule array
	ShapeWeeklySplit ShapeKind = "weekly_split" // weekly_split.days
	ShapeFlat        ShapeKind = "flat"         // top-level exercises array
)

// Program is a stored training program in one of the recognized shapes.
type Program struct {
	ID             uuid.UUID           `json:"id"`
	Name           string              `json:"name"`
	Goal           models.TrainingGoal `json:"goal,omitempty"`
	WeeklySchedule []Day               `json:"weekly_schedule,omitempty"`
	WeeklySplit    *Split              `json:"weekly_split,omitempty"`
	Exercises      []Exercise          `json:"exercises,omitempty"`
}

// Split is the current-generation container of training days.
type Split struct {
	Days []Day `json:"days"`
}

// Day is one training day inside a schedule or split.
type Day struct {
	Name      string     `json:"name"`
	Exercises []Exercise `json:"exercises"`
}

// Exercise is the raw stored prescription. Reps and Weight tolerate both
// numeric and string JSON encodings; parsing into typed values happens only
// in Targets.
type Exercise struct {
	Name      string   `json:"name"`
	Pattern   string   `json:"pattern,omitempty"`
	Sets      int      `json:"sets"`
	Reps      FlexText `json:"reps"`
	Rest      string   `json:"rest,omitempty"`
	Intensity string   `json:"intensity,omitempty"`
	Weight    FlexText `json:"weight,omitempty"`
	TargetRIR *int     `json:"target_rir,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// FlexText is a string that also accepts a JSON number, preserving the
// original textual form for write-back.
type FlexText string

func (f *FlexText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexText(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("program: value %s is neither string nor number", data)
	}
	*f = FlexText(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

// Kind reports which schema shape the program carries. Shapes are checked in
// historical order; an empty program reports flat.
func (p *Program) Kind() ShapeKind {
	switch {
	case len(p.WeeklySchedule) > 0:
		return ShapeLegacy
	case p.WeeklySplit != nil && len(p.WeeklySplit.Days) > 0:
		return ShapeWeeklySplit
	default:
		return ShapeFlat
	}
}

// days returns the program's training days regardless of shape. Flat
// programs present a single unnamed day.
func (p *Program) days() []Day {
	switch p.Kind() {
	case ShapeLegacy:
		return p.WeeklySchedule
	case ShapeWeeklySplit:
		return p.WeeklySplit.Days
	default:
		if len(p.Exercises) == 0 {
			return nil
		}
		return []Day{{Exercises: p.Exercises}}
	}
}

// DayTargets normalizes one training day into canonical exercise targets.
// An empty dayName (or a flat program) yields the first day.
func (p *Program) DayTargets(dayName string) []models.ExerciseTarget {
	days := p.days()
	if len(days) == 0 {
		return nil
	}

	day := days[0]
	if dayName != "" {
		for _, d := range days {
			if strings.EqualFold(d.Name, dayName) {
				day = d
				break
			}
		}
	}

	targets := make([]models.ExerciseTarget, 0, len(day.Exercises))
	for _, ex := range day.Exercises {
		targets = append(targets, ex.target())
	}
	return targets
}

// AllTargets normalizes the whole program across every day.
func (p *Program) AllTargets() []models.ExerciseTarget {
	var targets []models.ExerciseTarget
	for _, d := range p.days() {
		for _, ex := range d.Exercises {
			targets = append(targets, ex.target())
		}
	}
	return targets
}

// target converts a raw stored exercise into the canonical view, pushing all
// free-text fields through the parse boundary.
func (ex Exercise) target() models.ExerciseTarget {
	low, high := parse.RepRange(string(ex.Reps))
	t := models.ExerciseTarget{
		Name:        ex.Name,
		Pattern:     ex.Pattern,
		PlannedSets: ex.Sets,
		RepLow:      low,
		RepHigh:     high,
		RestSeconds: parse.RestSeconds(ex.Rest),
		Notes:       ex.Notes,
	}
	if ex.TargetRIR != nil {
		t.TargetRIR = *ex.TargetRIR
	} else {
		t.TargetRIR = parse.TargetRIR(ex.Notes, ex.Intensity)
	}
	if w, ok := parse.WeightKg(string(ex.Weight)); ok {
		t.PrescribedWeight = &w
	}
	return t
}
