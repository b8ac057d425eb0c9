package progression

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/dailyquest/internal/catalog"
	"github.com/abhisek/dailyquest/internal/rewards"
)

const day = 24 * time.Hour

var t0 = time.Date(2026, 5, 4, 7, 30, 0, 0, time.UTC)

func testMachine(t *testing.T) *Machine {
	t.Helper()
	c, err := catalog.Default()
	require.NoError(t, err)
	return NewMachine(c, DefaultPeriods())
}

func warriorProfile() Profile {
	return Profile{
		Gender:       catalog.GenderMale,
		Class:        catalog.ClassWarrior,
		Environment:  catalog.EnvironmentHome,
		TrainingDays: 3,
	}
}

func newRecord(t *testing.T, m *Machine) *Record {
	t.Helper()
	rec, err := m.NewRecord("u1", warriorProfile(), t0)
	require.NoError(t, err)
	return rec
}

func TestNewRecord(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)

	assert.Equal(t, StateActive, rec.State)
	assert.Equal(t, 0, rec.QuestIndex)
	assert.True(t, rec.CountdownEnd.Equal(t0.Add(day)))
	assert.Equal(t, "Push Foundations", rec.ActiveQuest.Title)
	assert.Equal(t, rewards.StartingStats(), rec.Stats)
	assert.Zero(t, rec.Streak)
}

func TestNewRecord_CatalogMissing(t *testing.T) {
	m := testMachine(t)
	p := warriorProfile()
	p.TrainingDays = 4

	_, err := m.NewRecord("u1", p, t0)
	assert.True(t, errors.Is(err, catalog.ErrCatalogMissing))
}

func TestComplete(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	rec.Streak = 3
	rec.ActiveQuest.Difficulty = 2
	now := t0.Add(5 * time.Hour)

	out, err := m.Complete(rec, now)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, rewards.Bundle{XP: 182, Coins: 91, StatPoints: 9}, *out.Reward)
	assert.Equal(t, StateActive, out.From)
	assert.Equal(t, StateCooldown, out.To)
	assert.Equal(t, 4, rec.Streak)
	assert.Equal(t, StateCooldown, rec.State)
	assert.True(t, rec.CountdownEnd.Equal(now.Add(day)))
	assert.Equal(t, 182, rec.XP)
	assert.Equal(t, 91, rec.Coins)
	assert.Equal(t, 9, rec.StatPoints)
}

func TestComplete_FromCooldownIsInvalid(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	_, err := m.Complete(rec, t0)
	require.NoError(t, err)

	_, err = m.Complete(rec, t0.Add(time.Minute))
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, 1, rec.Streak)
}

func TestFail(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	rec.Streak = 6
	rec.Stats = rewards.Stats{rewards.StatStrength: 3, rewards.StatVitality: 0}
	now := t0.Add(2 * time.Hour)

	out, err := m.Fail(rec, now)
	require.NoError(t, err)

	assert.Equal(t, TriggerFail, out.Trigger)
	assert.Equal(t, 1, out.Missed)
	assert.Equal(t, rewards.Stats{rewards.StatStrength: 1}, out.StatLoss)
	assert.Equal(t, 0, rec.Streak)
	assert.Equal(t, rewards.Stats{rewards.StatStrength: 2, rewards.StatVitality: 0}, rec.Stats)
	assert.Equal(t, StateCooldown, rec.State)
	assert.True(t, rec.CountdownEnd.Equal(now.Add(day)))
}

func TestExpire_RequiresElapsedCountdown(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)

	out, err := m.Expire(rec, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, StateActive, rec.State)

	now := t0.Add(day + time.Minute)
	out, err = m.Expire(rec, now)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, TriggerExpired, out.Trigger)
	assert.Equal(t, StateCooldown, rec.State)
	assert.True(t, rec.CountdownEnd.Equal(now.Add(day)))
}

func TestActivate_ChainsFromPreviousEnd(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	_, err := m.Complete(rec, t0.Add(time.Hour))
	require.NoError(t, err)
	cooldownEnd := rec.CountdownEnd

	out, err := m.Activate(rec, t0.Add(2*time.Hour))
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, TriggerEarlyRefresh, out.Trigger)
	assert.Equal(t, StateActive, rec.State)
	assert.Equal(t, 1, rec.QuestIndex)
	assert.Equal(t, "Legs and Lungs", rec.ActiveQuest.Title)
	assert.True(t, rec.CountdownEnd.Equal(cooldownEnd.Add(day)))
}

func TestActivate_ActiveIsNoop(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	before := rec.Clone()

	out, err := m.Activate(rec, t0)
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, before, rec)
}

func TestReconcile_NotStale(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	before := rec.Clone()

	out, err := m.Reconcile(rec, t0.Add(day-time.Second))
	require.NoError(t, err)
	assert.Nil(t, out)
	assert.Equal(t, before, rec)
}

func TestReconcile_SingleActivePeriodExpires(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	rec.Streak = 2
	now := t0.Add(day + 3*time.Hour)

	out, err := m.Reconcile(rec, now)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, TriggerExpired, out.Trigger)
	assert.Equal(t, StateCooldown, rec.State)
	assert.Equal(t, 0, rec.Streak)
	assert.Equal(t, 0, rec.QuestIndex)
	assert.True(t, rec.CountdownEnd.Equal(now.Add(day)))
}

func TestReconcile_CooldownElapsedActivates(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	_, err := m.Complete(rec, t0.Add(time.Hour))
	require.NoError(t, err)
	cooldownEnd := rec.CountdownEnd

	out, err := m.Reconcile(rec, cooldownEnd.Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, TriggerCooldownElapsed, out.Trigger)
	assert.Equal(t, StateActive, rec.State)
	assert.Equal(t, 1, rec.QuestIndex)
	assert.Equal(t, 1, rec.Streak)
	assert.True(t, rec.CountdownEnd.Equal(cooldownEnd.Add(day)))
}

func TestReconcile_CatchUpFromActive(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	rec.Streak = 5
	rec.Stats = rewards.Stats{
		rewards.StatStrength: 4, rewards.StatVitality: 1, rewards.StatAgility: 0,
		rewards.StatIntelligence: 2, rewards.StatSense: 9,
	}
	originalEnd := rec.CountdownEnd
	now := originalEnd.Add(2*day + 6*time.Hour)

	out, err := m.Reconcile(rec, now)
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, TriggerCatchUp, out.Trigger)
	assert.Equal(t, 3, out.Missed)
	assert.Equal(t, StateActive, rec.State)
	assert.Equal(t, 3, rec.QuestIndex)
	assert.Equal(t, 0, rec.Streak)
	// missed=3 -> multiplier 1.6 -> one point per stat.
	assert.Equal(t, rewards.Stats{
		rewards.StatStrength: 3, rewards.StatVitality: 0, rewards.StatAgility: 0,
		rewards.StatIntelligence: 1, rewards.StatSense: 8,
	}, rec.Stats)
	assert.True(t, rec.CountdownEnd.Equal(originalEnd.Add(3*day)))
	assert.True(t, rec.CountdownEnd.After(now))
	// Index 3 wraps back to the first day of a three-day rotation.
	assert.Equal(t, "Push Foundations", rec.ActiveQuest.Title)
}

func TestReconcile_CatchUpFromCooldownKeepsStreak(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	_, err := m.Complete(rec, t0.Add(time.Hour))
	require.NoError(t, err)
	stats := rec.Stats.Clone()
	end := rec.CountdownEnd

	out, err := m.Reconcile(rec, end.Add(4*day))
	require.NoError(t, err)
	require.NotNil(t, out)

	assert.Equal(t, 5, out.Missed)
	assert.Equal(t, 5, rec.QuestIndex)
	assert.Equal(t, 1, rec.Streak)
	assert.Equal(t, stats, rec.Stats)
	assert.Empty(t, out.StatLoss)
	assert.True(t, rec.CountdownEnd.Equal(end.Add(5*day)))
}

func TestReconcile_LongAbsence(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	originalEnd := rec.CountdownEnd

	out, err := m.Reconcile(rec, originalEnd.Add(365*day+time.Second))
	require.NoError(t, err)
	assert.Equal(t, 366, out.Missed)
	assert.Equal(t, 366, rec.QuestIndex)
	for _, v := range rec.Stats {
		assert.GreaterOrEqual(t, v, 0)
	}
	assert.True(t, rec.CountdownEnd.Equal(originalEnd.Add(366*day)))
}

func TestReconcile_CatalogMissingLeavesRecordUntouched(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	rec.Profile.Class = "paladin"
	before := rec.Clone()

	_, err := m.Reconcile(rec, rec.CountdownEnd.Add(3*day))
	assert.True(t, errors.Is(err, catalog.ErrCatalogMissing))
	assert.Equal(t, before, rec)
}

func TestAllocate(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	rec.StatPoints = 5

	require.NoError(t, m.Allocate(rec, rewards.StatAgility, 3))
	assert.Equal(t, 2, rec.StatPoints)
	assert.Equal(t, 4, rec.Stats[rewards.StatAgility])

	assert.ErrorIs(t, m.Allocate(rec, rewards.StatAgility, 3), ErrInsufficientPoints)
	assert.ErrorIs(t, m.Allocate(rec, "charisma", 1), ErrUnknownStat)
	assert.ErrorIs(t, m.Allocate(rec, rewards.StatAgility, 0), ErrInvalidPoints)
}

func TestRecordClone_Independent(t *testing.T) {
	m := testMachine(t)
	rec := newRecord(t, m)
	c := rec.Clone()

	c.Stats[rewards.StatStrength] = 99
	c.ActiveQuest.Exercises[0].Reps = 99
	assert.Equal(t, 1, rec.Stats[rewards.StatStrength])
	assert.NotEqual(t, 99, rec.ActiveQuest.Exercises[0].Reps)
}
