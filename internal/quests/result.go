package quests

import (
	"errors"
	"time"

	"github.com/abhisek/dailyquest/internal/catalog"
	"github.com/abhisek/dailyquest/internal/cooldown"
	"github.com/abhisek/dailyquest/internal/progression"
	"github.com/abhisek/dailyquest/internal/rewards"
	"github.com/abhisek/dailyquest/internal/store"
)

// Code classifies a failed Result.
type Code string

const (
	CodeOK                Code = ""
	CodeCatalogMissing    Code = "catalog_missing"
	CodeInvalidTransition Code = "invalid_transition"
	CodeCommitConflict    Code = "commit_conflict"
	CodeNotFound          Code = "not_found"
	CodeAlreadyExists     Code = "already_exists"
	CodeInvalidArgument   Code = "invalid_argument"
	CodeInternal          Code = "internal"
)

// ErrInvalidArgument is returned for malformed requests such as an empty
// user ID.
var ErrInvalidArgument = errors.New("invalid argument")

// Result is what every Service operation returns. Failures are reported in
// Error and Code rather than as a Go error.
type Result struct {
	Success bool      `json:"success"`
	Changed bool      `json:"changed"`
	Data    *Snapshot `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
	Code    Code      `json:"code,omitempty"`
}

// Snapshot is the client-facing view of a progression record.
type Snapshot struct {
	UserID           string              `json:"user_id"`
	State            progression.State   `json:"quest_state"`
	Quest            catalog.Quest       `json:"quest"`
	QuestIndex       int                 `json:"current_quest_index"`
	CountdownEnd     time.Time           `json:"countdown_end"`
	Remaining        time.Duration       `json:"-"`
	RemainingSeconds int64               `json:"remaining_seconds"`
	Stale            bool                `json:"stale"`
	Streak           int                 `json:"streak"`
	Stats            rewards.Stats       `json:"stats"`
	XP               int                 `json:"xp"`
	Coins            int                 `json:"coins"`
	StatPoints       int                 `json:"stat_points"`
	Profile          progression.Profile `json:"profile"`
	Version          int64               `json:"version"`

	// Outcomes lists the transitions applied by this call, oldest first.
	Outcomes []progression.Outcome `json:"outcomes,omitempty"`
}

// LastOutcome returns the most recent transition, or nil.
func (s *Snapshot) LastOutcome() *progression.Outcome {
	if s == nil || len(s.Outcomes) == 0 {
		return nil
	}
	return &s.Outcomes[len(s.Outcomes)-1]
}

func newSnapshot(rec *progression.Record, now time.Time, outcomes []progression.Outcome) *Snapshot {
	remaining := cooldown.Remaining(now, rec.CountdownEnd)
	return &Snapshot{
		UserID:           rec.UserID,
		State:            rec.State,
		Quest:            rec.ActiveQuest.Clone(),
		QuestIndex:       rec.QuestIndex,
		CountdownEnd:     rec.CountdownEnd,
		Remaining:        remaining,
		RemainingSeconds: int64(remaining / time.Second),
		Stale:            cooldown.Elapsed(now, rec.CountdownEnd),
		Streak:           rec.Streak,
		Stats:            rec.Stats.Clone(),
		XP:               rec.XP,
		Coins:            rec.Coins,
		StatPoints:       rec.StatPoints,
		Profile:          rec.Profile,
		Version:          rec.Version,
		Outcomes:         outcomes,
	}
}

func ok(snap *Snapshot, changed bool) Result {
	return Result{Success: true, Changed: changed, Data: snap}
}

func failure(err error) Result {
	return Result{Error: err.Error(), Code: CodeFor(err)}
}

// CodeFor maps an error from any layer to its result code.
func CodeFor(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, catalog.ErrCatalogMissing):
		return CodeCatalogMissing
	case errors.Is(err, progression.ErrInvalidTransition):
		return CodeInvalidTransition
	case errors.Is(err, store.ErrCommitConflict):
		return CodeCommitConflict
	case errors.Is(err, store.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return CodeAlreadyExists
	case errors.Is(err, ErrInvalidArgument),
		errors.Is(err, progression.ErrUnknownStat),
		errors.Is(err, progression.ErrInsufficientPoints),
		errors.Is(err, progression.ErrInvalidPoints):
		return CodeInvalidArgument
	default:
		return CodeInternal
	}
}
