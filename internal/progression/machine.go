package progression

import (
	"fmt"
	"time"

	"github.com/abhisek/dailyquest/internal/catalog"
	"github.com/abhisek/dailyquest/internal/cooldown"
	"github.com/abhisek/dailyquest/internal/rewards"
)

// Outcome triggers.
const (
	TriggerComplete        = "user-complete"
	TriggerFail            = "user-fail"
	TriggerExpired         = "countdown-expired"
	TriggerCooldownElapsed = "cooldown-elapsed"
	TriggerEarlyRefresh    = "early-refresh"
	TriggerCatchUp         = "catch-up"
)

// Outcome describes a state change applied to a record.
type Outcome struct {
	From     State           `json:"from"`
	To       State           `json:"to"`
	Trigger  string          `json:"trigger"`
	Reward   *rewards.Bundle `json:"reward,omitempty"`
	StatLoss rewards.Stats   `json:"stat_loss,omitempty"`
	Missed   int             `json:"missed,omitempty"`
}

// Periods configures countdown lengths.
type Periods struct {
	Active   time.Duration
	Cooldown time.Duration
}

// DefaultPeriods returns one-day active and cooldown periods.
func DefaultPeriods() Periods {
	return Periods{Active: 24 * time.Hour, Cooldown: 24 * time.Hour}
}

// Machine applies guarded transitions to progression records. It holds no
// per-user state and is safe for concurrent use.
type Machine struct {
	catalog *catalog.Catalog
	periods Periods
}

// NewMachine creates a Machine resolving quests from c.
func NewMachine(c *catalog.Catalog, p Periods) *Machine {
	return &Machine{catalog: c, periods: p}
}

// Periods returns the configured countdown lengths.
func (m *Machine) Periods() Periods { return m.periods }

// QuestAt resolves the quest a profile sees at index.
func (m *Machine) QuestAt(p Profile, index int) (catalog.Quest, error) {
	seq, err := m.catalog.Resolve(p.Key())
	if err != nil {
		return catalog.Quest{}, err
	}
	return seq.At(index), nil
}

// NewRecord builds the record created at onboarding: the first quest of the
// rotation, active for one period.
func (m *Machine) NewRecord(userID string, p Profile, now time.Time) (*Record, error) {
	q, err := m.QuestAt(p, 0)
	if err != nil {
		return nil, err
	}
	return &Record{
		UserID:               userID,
		State:                StateActive,
		QuestIndex:           0,
		CountdownEnd:         now.Add(m.periods.Active),
		ActiveQuest:          q,
		Stats:                rewards.StartingStats(),
		Profile:              p,
		LastQuestGeneratedAt: now,
		LastQuestUpdate:      now,
		CreatedAt:            now,
	}, nil
}

// IsStale reports whether the record's countdown has run out at now.
func (m *Machine) IsStale(rec *Record, now time.Time) bool {
	return cooldown.Elapsed(now, rec.CountdownEnd)
}

// Complete marks the active quest done: pays the reward for the current
// streak, extends the streak and starts a cooldown of one cooldown period.
func (m *Machine) Complete(rec *Record, now time.Time) (*Outcome, error) {
	if rec.State == StateCompleted {
		return nil, nil
	}
	if err := checkPath(rec.State, StateCompleted, StateCooldown); err != nil {
		return nil, err
	}

	bundle := rewards.Reward(rec.Streak, rec.ActiveQuest.Difficulty)
	from := rec.State

	rec.Streak++
	rec.XP += bundle.XP
	rec.Coins += bundle.Coins
	rec.StatPoints += bundle.StatPoints
	rec.State = StateCooldown
	rec.CountdownEnd = cooldown.End(now, m.periods.Cooldown, nil)

	return &Outcome{From: from, To: StateCooldown, Trigger: TriggerComplete, Reward: &bundle}, nil
}

// Fail records an explicit give-up on the active quest.
func (m *Machine) Fail(rec *Record, now time.Time) (*Outcome, error) {
	return m.miss(rec, now, StateFailed, TriggerFail)
}

// Expire records a deadline that passed without completion. It returns a
// nil outcome unless the record is active with its countdown run out.
func (m *Machine) Expire(rec *Record, now time.Time) (*Outcome, error) {
	if rec.State != StateActive || !m.IsStale(rec, now) {
		return nil, nil
	}
	return m.miss(rec, now, StateExpired, TriggerExpired)
}

// miss applies a single missed period and moves to a fresh cooldown.
func (m *Machine) miss(rec *Record, now time.Time, via State, trigger string) (*Outcome, error) {
	if rec.State == via {
		return nil, nil
	}
	// The terminal state is recorded in the outcome only; the record moves
	// straight from active into cooldown.
	if err := CanTransition(rec.State, via); err != nil {
		return nil, err
	}
	if err := CanTransition(rec.State, StateCooldown); err != nil {
		return nil, err
	}
	before := rec.Stats
	from := rec.State

	rec.Stats = rewards.Penalty(1, rec.Stats)
	rec.Streak = 0
	rec.State = StateCooldown
	rec.CountdownEnd = cooldown.End(now, m.periods.Cooldown, nil)

	return &Outcome{
		From:     from,
		To:       StateCooldown,
		Trigger:  trigger,
		StatLoss: rewards.Diff(before, rec.Stats),
		Missed:   1,
	}, nil
}

// Activate starts the next quest in the rotation. The new deadline chains
// off the previous countdown end rather than now, so repeated activations do
// not drift. Activating an already active record is a no-op.
func (m *Machine) Activate(rec *Record, now time.Time) (*Outcome, error) {
	return m.activate(rec, now, TriggerEarlyRefresh)
}

func (m *Machine) activate(rec *Record, now time.Time, trigger string) (*Outcome, error) {
	if rec.State == StateActive {
		return nil, nil
	}
	if err := CanTransition(rec.State, StateActive); err != nil {
		return nil, err
	}

	q, err := m.QuestAt(rec.Profile, rec.QuestIndex+1)
	if err != nil {
		return nil, err
	}

	from := rec.State
	rec.QuestIndex++
	rec.ActiveQuest = q
	rec.State = StateActive
	rec.CountdownEnd = rec.CountdownEnd.Add(m.periods.Active)
	rec.LastQuestGeneratedAt = now

	return &Outcome{From: from, To: StateActive, Trigger: trigger}, nil
}

// Reconcile brings a stale record up to date at now and returns nil if the
// countdown is still running.
//
// A gap of a single period is an ordinary expiry (from active) or
// activation (from any other state). Longer gaps are folded into one
// catch-up: the rotation advances by the number of elapsed periods, an
// active record is penalised once for all of them and loses its streak, and
// the new deadline is the original one shifted by whole periods.
func (m *Machine) Reconcile(rec *Record, now time.Time) (*Outcome, error) {
	if !m.IsStale(rec, now) {
		return nil, nil
	}

	count, newEnd := cooldown.ElapsedPeriods(now, rec.CountdownEnd, m.periods.Active)
	if count <= 1 {
		if rec.State == StateActive {
			return m.Expire(rec, now)
		}
		return m.activate(rec, now, TriggerCooldownElapsed)
	}

	from := rec.State
	if from == StateActive {
		if err := checkPath(StateActive, StateExpired, StateActive); err != nil {
			return nil, err
		}
	} else if err := CanTransition(from, StateActive); err != nil {
		return nil, err
	}

	q, err := m.QuestAt(rec.Profile, rec.QuestIndex+count)
	if err != nil {
		return nil, err
	}

	out := &Outcome{From: from, To: StateActive, Trigger: TriggerCatchUp, Missed: count}
	if from == StateActive {
		before := rec.Stats
		rec.Stats = rewards.Penalty(count, rec.Stats)
		rec.Streak = 0
		out.StatLoss = rewards.Diff(before, rec.Stats)
	}

	rec.QuestIndex += count
	rec.ActiveQuest = q
	rec.State = StateActive
	rec.CountdownEnd = newEnd
	rec.LastQuestGeneratedAt = now

	return out, nil
}

// Allocate moves unspent stat points into a tracked stat.
func (m *Machine) Allocate(rec *Record, stat string, points int) error {
	if !rewards.IsStat(stat) {
		return fmt.Errorf("%w: %q", ErrUnknownStat, stat)
	}
	if points <= 0 {
		return ErrInvalidPoints
	}
	if points > rec.StatPoints {
		return fmt.Errorf("%w: have %d, want %d", ErrInsufficientPoints, rec.StatPoints, points)
	}
	if rec.Stats == nil {
		rec.Stats = make(rewards.Stats)
	}
	rec.StatPoints -= points
	rec.Stats[stat] += points
	return nil
}
