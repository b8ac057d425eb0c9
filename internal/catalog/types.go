package catalog

import "fmt"

// Gender is the profile gender used for catalog routing.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Class is the player class picked at onboarding.
type Class string

const (
	ClassWarrior Class = "warrior"
	ClassMage    Class = "mage"
)

// Environment is where the user trains.
type Environment string

const (
	EnvironmentHome Environment = "home"
	EnvironmentGym  Environment = "gym"
)

// Fallback values applied by Key.WithDefaults.
const (
	DefaultGender      = GenderMale
	DefaultClass       = ClassWarrior
	DefaultEnvironment = EnvironmentHome
	DefaultFrequency   = 3
)

// Key identifies one catalog route. Frequency is training days per week.
type Key struct {
	Gender      Gender      `json:"gender"`
	Class       Class       `json:"class"`
	Environment Environment `json:"environment"`
	Frequency   int         `json:"frequency"`
}

// WithDefaults fills empty or zero fields with the documented fallback
// values. Populated fields are left alone, so an unknown class still fails
// to resolve.
func (k Key) WithDefaults() Key {
	if k.Gender == "" {
		k.Gender = DefaultGender
	}
	if k.Class == "" {
		k.Class = DefaultClass
	}
	if k.Environment == "" {
		k.Environment = DefaultEnvironment
	}
	if k.Frequency <= 0 {
		k.Frequency = DefaultFrequency
	}
	return k
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s/%s/%d", k.Gender, k.Class, k.Environment, k.Frequency)
}

// Exercise is a single movement inside a quest. Exactly one of Reps or
// Seconds is set.
type Exercise struct {
	Name    string `json:"name"`
	Reps    int    `json:"reps,omitempty"`
	Seconds int    `json:"seconds,omitempty"`
}

// Quest is one day's unit of exercises.
type Quest struct {
	Day          int        `json:"day"`
	Title        string     `json:"title"`
	Difficulty   int        `json:"difficulty"`
	Exercises    []Exercise `json:"exercises"`
	TotalReps    int        `json:"total_reps"`
	TotalSeconds int        `json:"total_seconds"`
}

// Clone returns a deep copy so snapshots never share the catalog's slices.
func (q Quest) Clone() Quest {
	c := q
	if q.Exercises != nil {
		c.Exercises = make([]Exercise, len(q.Exercises))
		copy(c.Exercises, q.Exercises)
	}
	return c
}

// Sequence is an ordered, cyclic list of quests.
type Sequence struct {
	plan   string
	quests []Quest
}

// Plan returns the name of the plan backing this sequence.
func (s *Sequence) Plan() string { return s.plan }

// Len returns the number of distinct days in the rotation.
func (s *Sequence) Len() int { return len(s.quests) }

// At returns the quest at index modulo the sequence length. Negative and
// arbitrarily large indices are valid.
func (s *Sequence) At(index int) Quest {
	n := len(s.quests)
	i := index % n
	if i < 0 {
		i += n
	}
	return s.quests[i].Clone()
}
