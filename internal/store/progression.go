package store

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/abhisek/dailyquest/internal/logger"
	"github.com/abhisek/dailyquest/internal/progression"
)

// RetryConfig bounds the optimistic-concurrency retry loop.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultRetryConfig returns the retry policy used unless configured.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 5,
		InitialWait: 10 * time.Millisecond,
		MaxWait:     250 * time.Millisecond,
		Multiplier:  2.0,
	}
}

// MutateFunc changes a record in place. It may run more than once per
// commit, each time on a fresh copy of the latest stored record, so it must
// not keep state between calls.
type MutateFunc func(rec *progression.Record) error

// Progression is the single write path for progression records.
type Progression struct {
	remote Remote
	retry  RetryConfig
	log    *logger.Logger
}

// NewProgression builds a Progression over remote.
func NewProgression(remote Remote, retry RetryConfig, log *logger.Logger) *Progression {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Progression{remote: remote, retry: retry, log: log}
}

// Now returns the remote store's clock.
func (p *Progression) Now(ctx context.Context) (time.Time, error) {
	return p.remote.Now(ctx)
}

// Get reads a record without committing anything.
func (p *Progression) Get(ctx context.Context, userID string) (*progression.Record, error) {
	return p.remote.Get(ctx, userID)
}

// Create stores a brand-new record at version 1.
func (p *Progression) Create(ctx context.Context, rec *progression.Record) error {
	rec.Version = 1
	if err := p.remote.Create(ctx, rec); err != nil {
		return err
	}
	p.log.Debug("progression created", "user_id", rec.UserID)
	return nil
}

// Commit loads the user's record, applies fn and writes the result back
// conditioned on the version it read. A conflicting write restarts the whole
// cycle after a short backoff. When fn leaves the record unchanged nothing is
// written. Errors returned by fn abort the commit without retrying.
func (p *Progression) Commit(ctx context.Context, userID string, fn MutateFunc) (*progression.Record, error) {
	for attempt := range p.retry.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		cur, err := p.remote.Get(ctx, userID)
		if err != nil {
			return nil, err
		}

		next := cur.Clone()
		if err := fn(next); err != nil {
			return nil, err
		}
		next.UserID = cur.UserID
		next.Version = cur.Version

		if recordsEqual(cur, next) {
			return next, nil
		}

		next.Version = cur.Version + 1
		err = p.remote.Update(ctx, userID, cur.Version, next)
		if err == nil {
			if attempt > 0 {
				p.log.Debug("commit succeeded after retry", "user_id", userID, "attempt", attempt+1)
			}
			return next, nil
		}
		if !errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("write record: %w", err)
		}

		p.log.Debug("commit conflict", "user_id", userID, "attempt", attempt+1, "version", cur.Version)

		// Last attempt: don't sleep, just fail.
		if attempt == p.retry.MaxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.backoff(attempt)):
		}
	}

	p.log.Warn("commit gave up", "user_id", userID, "attempts", p.retry.MaxAttempts)
	return nil, &CommitConflictError{UserID: userID, Attempts: p.retry.MaxAttempts}
}

// backoff computes the wait before the next attempt.
func (p *Progression) backoff(attempt int) time.Duration {
	wait := float64(p.retry.InitialWait) * math.Pow(p.retry.Multiplier, float64(attempt))
	if wait > float64(p.retry.MaxWait) {
		wait = float64(p.retry.MaxWait)
	}

	// Add ±20% jitter so racing sessions spread out.
	jitter := wait * 0.2 * (2*rand.Float64() - 1)
	wait += jitter

	if wait < 0 {
		wait = 0
	}
	return time.Duration(wait)
}

// recordsEqual compares records treating nil and empty collections alike and
// times by instant.
func recordsEqual(a, b *progression.Record) bool {
	return cmp.Equal(a, b, cmpopts.EquateEmpty())
}
