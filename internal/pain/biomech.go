package pain

// biomechanics describes joint involvement for a movement pattern: which
// joints take primary load, which assist, and which sit in the kinetic chain.
type biomechanics struct {
	primary   []string
	secondary []string
	chain     []string
}

// patternBiomechanics is the static biomechanical map used by the proactive
// adapter to decide whether a reported pain area touches an exercise.
var patternBiomechanics = map[string]biomechanics{
	"vertical_push": {
		primary:   []string{"shoulder"},
		secondary: []string{"elbow", "upper_back"},
		chain:     []string{"shoulder", "upper_back", "core"},
	},
	"horizontal_push": {
		primary:   []string{"shoulder", "elbow"},
		secondary: []string{"wrist", "upper_back"},
		chain:     []string{"shoulder", "upper_back", "core"},
	},
	"vertical_pull": {
		primary:   []string{"shoulder", "upper_back"},
		secondary: []string{"elbow", "neck"},
		chain:     []string{"shoulder", "upper_back", "core", "elbow"},
	},
	"horizontal_pull": {
		primary:   []string{"upper_back", "shoulder"},
		secondary: []string{"elbow", "lower_back"},
		chain:     []string{"upper_back", "shoulder", "core", "lower_back"},
	},
	"lower_push": {
		primary:   []string{"knee", "hip"},
		secondary: []string{"ankle", "lower_back"},
		chain:     []string{"ankle", "knee", "hip", "core", "lower_back"},
	},
	"lower_pull": {
		primary:   []string{"hip", "lower_back"},
		secondary: []string{"knee", "upper_back"},
		chain:     []string{"ankle", "knee", "hip", "lower_back", "core"},
	},
}

// involvement classifies how strongly an area participates in a pattern.
type involvement int

const (
	notInvolved involvement = iota
	chainOnly
	secondaryJoint
	primaryJoint
)

func (b biomechanics) involvementOf(area string) involvement {
	for _, j := range b.primary {
		if j == area {
			return primaryJoint
		}
	}
	for _, j := range b.secondary {
		if j == area {
			return secondaryJoint
		}
	}
	for _, j := range b.chain {
		if j == area {
			return chainOnly
		}
	}
	return notInvolved
}

// safeAlternatives maps an exercise name to a lower-stress substitute for
// high-intensity pain. Keyed by exact name; coverage is known to be partial,
// and a missing entry degrades to an advisory rather than a silent no-op.
var safeAlternatives = map[string]string{
	"Military Press":    "Lateral Raises (light)",
	"Dumbbell Press":    "Front Raises",
	"Bench Press":       "Knee Push-up (reduced ROM)",
	"Pull-up":           "Lat Pulldown (reduced ROM)",
	"Pike Push-up":      "Shoulder Mobility Work",
	"Barbell Squat":     "Goblet Squat (light)",
	"Romanian Deadlift": "Glute Bridge",
	"Good Morning":      "Bird Dog (isometric)",
}

// correctiveExercises maps a pain area to warm-up correctives prepended to a
// session when multiple areas hurt.
var correctiveExercises = map[string][]string{
	"shoulder":   {"Face Pulls", "Band Pull-Aparts", "Wall Slides", "Scapular Push-ups"},
	"upper_back": {"Cat-Cow", "Thoracic Rotations", "Foam Roll T-Spine"},
	"lower_back": {"Dead Bugs", "Bird Dogs", "Cat-Cow", "McGill Big 3"},
	"hip":        {"Hip 90/90 Stretch", "Clamshells", "Hip Bridges"},
	"knee":       {"Terminal Knee Extensions", "Wall Sits", "VMO Activation Drills"},
	"ankle":      {"Ankle Circles", "Calf Raises", "Ankle Dorsiflexion Stretch"},
	"elbow":      {"Wrist Curls", "Forearm Stretches", "Elbow Circles"},
	"wrist":      {"Wrist Circles", "Prayer Stretches", "Fist Pumps"},
	"neck":       {"Neck Retractions", "Chin Tucks", "Gentle Neck Rotations"},
}
