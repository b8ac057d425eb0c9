package catalog

import (
	"errors"
	"fmt"
)

// ErrCatalogMissing is returned when no route exists for a profile tuple.
var ErrCatalogMissing = errors.New("catalog missing")

// MissingError reports the key that failed to resolve.
type MissingError struct {
	Key Key
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("no quest catalog for %s", e.Key)
}

func (e *MissingError) Unwrap() error { return ErrCatalogMissing }

// InvalidError describes every problem found while loading a catalog document.
type InvalidError struct {
	Problems []string
}

func (e *InvalidError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid catalog: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid catalog: %d problems: %v", len(e.Problems), e.Problems)
}
