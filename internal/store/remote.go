package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/abhisek/dailyquest/internal/cooldown"
	"github.com/abhisek/dailyquest/internal/progression"
)

var (
	// ErrNotFound is returned when no record exists for a user.
	ErrNotFound = errors.New("progression record not found")

	// ErrConflict is returned by Remote.Update when the stored version no
	// longer matches the expected one.
	ErrConflict = errors.New("version conflict")

	// ErrAlreadyExists is returned by Remote.Create for an existing user.
	ErrAlreadyExists = errors.New("progression record already exists")

	// ErrCommitConflict is wrapped by CommitConflictError.
	ErrCommitConflict = errors.New("commit conflict")
)

// CommitConflictError reports a commit that kept losing races until it ran
// out of attempts.
type CommitConflictError struct {
	UserID   string
	Attempts int
}

func (e *CommitConflictError) Error() string {
	return fmt.Sprintf("commit for %s conflicted %d times", e.UserID, e.Attempts)
}

func (e *CommitConflictError) Unwrap() error { return ErrCommitConflict }

// Remote is the shared store holding progression records. Update is a
// conditional write: it must fail with ErrConflict unless the stored record
// still has expectedVersion. Now returns the store's own clock.
type Remote interface {
	cooldown.Clock

	// Get returns the record for userID or ErrNotFound.
	Get(ctx context.Context, userID string) (*progression.Record, error)

	// Update replaces the record if its stored version equals expectedVersion.
	Update(ctx context.Context, userID string, expectedVersion int64, rec *progression.Record) error

	// Create stores a new record or fails with ErrAlreadyExists.
	Create(ctx context.Context, rec *progression.Record) error
}

// Lister is implemented by remotes that can enumerate their users.
type Lister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

func encodeRecord(rec *progression.Record) ([]byte, error) {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return b, nil
}

func decodeRecord(b []byte) (*progression.Record, error) {
	var rec progression.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal record: %w", err)
	}
	return &rec, nil
}
