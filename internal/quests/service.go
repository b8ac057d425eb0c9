// Package quests is the entry point clients use to read and advance a user's
// daily quest progression.
package quests

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/dailyquest/internal/catalog"
	"github.com/abhisek/dailyquest/internal/cooldown"
	"github.com/abhisek/dailyquest/internal/logger"
	"github.com/abhisek/dailyquest/internal/progression"
	"github.com/abhisek/dailyquest/internal/store"
)

// Service composes the clock, state machine and store. All writes go
// through a single optimistic commit per call.
type Service struct {
	machine *progression.Machine
	store   *store.Progression
	clock   cooldown.Clock
	log     *logger.Logger
}

// NewService creates a Service. A nil clock uses the store's own clock so
// every timestamp comes from the same source; a nil logger discards output.
func NewService(m *progression.Machine, p *store.Progression, clock cooldown.Clock, log *logger.Logger) *Service {
	if clock == nil {
		clock = p
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Service{machine: m, store: p, clock: clock, log: log}
}

// OnboardRequest carries the answers collected at sign-up. Empty fields of
// Key fall back to the catalog defaults; an empty UserID gets a fresh one.
type OnboardRequest struct {
	UserID string      `json:"user_id"`
	Key    catalog.Key `json:"profile"`
}

// step is one mutation applied inside a commit.
type step func(rec *progression.Record, now time.Time) (*progression.Outcome, error)

// LoadToday returns the user's current quest, first bringing the record up
// to date if its countdown has run out. Calling it repeatedly writes at
// most once.
func (s *Service) LoadToday(ctx context.Context, userID string) Result {
	return s.run(ctx, "load_today", userID, s.reconcile)
}

// Complete marks the active quest done and pays its reward.
func (s *Service) Complete(ctx context.Context, userID string) Result {
	return s.run(ctx, "complete", userID, s.reconcile, s.whenActive(s.machine.Complete))
}

// Fail records that the user gave up on the active quest.
func (s *Service) Fail(ctx context.Context, userID string) Result {
	return s.run(ctx, "fail", userID, s.reconcile, s.whenActive(s.machine.Fail))
}

// Expire applies any deadline that has passed.
func (s *Service) Expire(ctx context.Context, userID string) Result {
	return s.run(ctx, "expire", userID, s.reconcile, s.machine.Expire)
}

// Refresh starts the next quest without waiting for the cooldown to elapse.
func (s *Service) Refresh(ctx context.Context, userID string) Result {
	return s.run(ctx, "refresh", userID, s.reconcile, s.machine.Activate)
}

// Allocate spends unallocated stat points on a stat.
func (s *Service) Allocate(ctx context.Context, userID, stat string, points int) Result {
	return s.run(ctx, "allocate", userID, func(rec *progression.Record, now time.Time) (*progression.Outcome, error) {
		if err := s.machine.Allocate(rec, stat, points); err != nil {
			return nil, err
		}
		rec.LastQuestUpdate = now
		return nil, nil
	})
}

// Snapshot reads the record without reconciling or writing.
func (s *Service) Snapshot(ctx context.Context, userID string) Result {
	if userID == "" {
		return failure(fmt.Errorf("%w: empty user id", ErrInvalidArgument))
	}
	now, err := s.clock.Now(ctx)
	if err != nil {
		return s.fail("snapshot", userID, fmt.Errorf("read clock: %w", err))
	}
	rec, err := s.store.Get(ctx, userID)
	if err != nil {
		return s.fail("snapshot", userID, err)
	}
	return ok(newSnapshot(rec, now, nil), false)
}

// Onboard creates the user's record with the first quest of their rotation.
func (s *Service) Onboard(ctx context.Context, req OnboardRequest) Result {
	userID := req.UserID
	if userID == "" {
		userID = uuid.NewString()
	}

	profile := progression.ProfileFromKey(req.Key.WithDefaults())

	now, err := s.clock.Now(ctx)
	if err != nil {
		return s.fail("onboard", userID, fmt.Errorf("read clock: %w", err))
	}

	rec, err := s.machine.NewRecord(userID, profile, now)
	if err != nil {
		return s.fail("onboard", userID, err)
	}
	if err := s.store.Create(ctx, rec); err != nil {
		return s.fail("onboard", userID, err)
	}

	s.log.Info("user onboarded", "user_id", userID, "catalog", profile.Key().String())
	return ok(newSnapshot(rec, now, nil), true)
}

func (s *Service) reconcile(rec *progression.Record, now time.Time) (*progression.Outcome, error) {
	return s.machine.Reconcile(rec, now)
}

// whenActive runs fn only while a quest is active; otherwise the step is a
// no-op.
func (s *Service) whenActive(fn step) step {
	return func(rec *progression.Record, now time.Time) (*progression.Outcome, error) {
		if rec.State != progression.StateActive {
			return nil, nil
		}
		return fn(rec, now)
	}
}

func (s *Service) run(ctx context.Context, op, userID string, steps ...step) Result {
	if userID == "" {
		return failure(fmt.Errorf("%w: empty user id", ErrInvalidArgument))
	}

	now, err := s.clock.Now(ctx)
	if err != nil {
		return s.fail(op, userID, fmt.Errorf("read clock: %w", err))
	}

	var (
		outcomes []progression.Outcome
		readAt   int64
	)
	rec, err := s.store.Commit(ctx, userID, func(rec *progression.Record) error {
		outcomes = nil
		readAt = rec.Version
		for _, st := range steps {
			out, err := st(rec, now)
			if err != nil {
				return err
			}
			if out != nil {
				outcomes = append(outcomes, *out)
			}
		}
		if len(outcomes) > 0 {
			rec.LastQuestUpdate = now
		}
		return nil
	})
	if err != nil {
		return s.fail(op, userID, err)
	}

	for _, o := range outcomes {
		s.log.Info("quest transition",
			"op", op,
			"user_id", userID,
			"from", o.From,
			"to", o.To,
			"trigger", o.Trigger,
			"missed", o.Missed,
		)
	}
	return ok(newSnapshot(rec, now, outcomes), rec.Version != readAt)
}

func (s *Service) fail(op, userID string, err error) Result {
	res := failure(err)
	switch {
	case errors.Is(err, progression.ErrInvalidTransition):
		s.log.Error("invalid transition", "op", op, "user_id", userID, "error", err)
	case res.Code == CodeInternal:
		s.log.Error("operation failed", "op", op, "user_id", userID, "error", err)
	default:
		s.log.Debug("operation rejected", "op", op, "user_id", userID, "code", string(res.Code), "error", err)
	}
	return res
}
