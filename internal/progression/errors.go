package progression

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTransition is the sentinel wrapped by InvalidTransitionError.
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrUnknownStat is returned when allocating to a stat that is not tracked.
	ErrUnknownStat = errors.New("unknown stat")

	// ErrInsufficientPoints is returned when allocating more points than are
	// available.
	ErrInsufficientPoints = errors.New("insufficient stat points")

	// ErrInvalidPoints is returned for a non-positive allocation.
	ErrInvalidPoints = errors.New("points must be positive")
)

// InvalidTransitionError reports a state change the machine does not allow.
type InvalidTransitionError struct {
	From State
	To   State
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }
