package cooldown

import (
	"context"
	"sync"
	"time"
)

// Clock supplies the current time. Remote stores implement it so countdown
// math runs on server time rather than the caller's wall clock.
type Clock interface {
	Now(ctx context.Context) (time.Time, error)
}

// System is a Clock backed by the local wall clock, in UTC.
type System struct{}

func (System) Now(context.Context) (time.Time, error) { return time.Now().UTC(), nil }

// Fake is a deterministic Clock for tests.
type Fake struct {
	mu sync.Mutex
	t  time.Time
}

// NewFake returns a Fake clock pinned at start.
func NewFake(start time.Time) *Fake {
	return &Fake{t: start}
}

func (c *Fake) Now(context.Context) (time.Time, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t, nil
}

// Set moves the clock to t.
func (c *Fake) Set(t time.Time) {
	c.mu.Lock()
	c.t = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}
