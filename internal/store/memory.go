package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/abhisek/dailyquest/internal/cooldown"
	"github.com/abhisek/dailyquest/internal/progression"
)

// Memory is an in-process Remote. Records are cloned on the way in and out
// so callers never share state with the store.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*progression.Record
	clock   cooldown.Clock
	writes  int
}

var (
	_ Remote = (*Memory)(nil)
	_ Lister = (*Memory)(nil)
)

// NewMemory returns an empty Memory store using clock for Now. A nil clock
// means the system clock.
func NewMemory(clock cooldown.Clock) *Memory {
	if clock == nil {
		clock = cooldown.System{}
	}
	return &Memory{
		records: make(map[string]*progression.Record),
		clock:   clock,
	}
}

func (m *Memory) Get(ctx context.Context, userID string) (*progression.Record, error) {
	_ = ctx

	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.records[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return rec.Clone(), nil
}

func (m *Memory) Update(ctx context.Context, userID string, expectedVersion int64, rec *progression.Record) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	cur, ok := m.records[userID]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != expectedVersion {
		return ErrConflict
	}
	m.records[userID] = rec.Clone()
	m.writes++
	return nil
}

func (m *Memory) Create(ctx context.Context, rec *progression.Record) error {
	_ = ctx

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[rec.UserID]; ok {
		return ErrAlreadyExists
	}
	m.records[rec.UserID] = rec.Clone()
	m.writes++
	return nil
}

func (m *Memory) Now(ctx context.Context) (time.Time, error) {
	return m.clock.Now(ctx)
}

// Writes returns the number of successful Create and Update calls.
func (m *Memory) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}

// ListUserIDs lists stored users in a stable order.
func (m *Memory) ListUserIDs(ctx context.Context) ([]string, error) {
	_ = ctx

	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]string, 0, len(m.records))
	for id := range m.records {
		out = append(out, id)
	}
	sort.Strings(out)
	return out, nil
}
