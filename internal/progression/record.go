package progression

import (
	"time"

	"github.com/abhisek/dailyquest/internal/catalog"
	"github.com/abhisek/dailyquest/internal/rewards"
)

// Profile holds the onboarding answers that select a quest catalog.
// The engine reads it but never changes it.
type Profile struct {
	Gender       catalog.Gender      `json:"gender"`
	Class        catalog.Class       `json:"class"`
	Environment  catalog.Environment `json:"environment"`
	TrainingDays int                 `json:"training_days"`
}

// Key returns the catalog key for this profile.
func (p Profile) Key() catalog.Key {
	return catalog.Key{
		Gender:      p.Gender,
		Class:       p.Class,
		Environment: p.Environment,
		Frequency:   p.TrainingDays,
	}
}

// ProfileFromKey builds a profile from a catalog key.
func ProfileFromKey(k catalog.Key) Profile {
	return Profile{Gender: k.Gender, Class: k.Class, Environment: k.Environment, TrainingDays: k.Frequency}
}

// Record is a user's persisted quest progression.
type Record struct {
	UserID  string `json:"user_id"`
	Version int64  `json:"version"`

	State        State         `json:"quest_state"`
	QuestIndex   int           `json:"current_quest_index"`
	CountdownEnd time.Time     `json:"countdown_end"`
	ActiveQuest  catalog.Quest `json:"active_quest"`

	Streak     int           `json:"streak"`
	Stats      rewards.Stats `json:"stats"`
	XP         int           `json:"xp"`
	Coins      int           `json:"coins"`
	StatPoints int           `json:"stat_points"`

	Profile Profile `json:"profile"`

	LastQuestGeneratedAt time.Time `json:"last_quest_generated_at"`
	LastQuestUpdate      time.Time `json:"last_quest_update"`
	CreatedAt            time.Time `json:"created_at"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() *Record {
	c := *r
	c.ActiveQuest = r.ActiveQuest.Clone()
	c.Stats = r.Stats.Clone()
	return &c
}
