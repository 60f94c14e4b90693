package visualdiff

import (
	"errors"
	"fmt"
)

// ErrInvariant is wrapped by the values Diff panics with when an internal invariant is violated. It indicates a bug (or a DiffText override that breaks its
// contract), never bad input.
var ErrInvariant = errors.New("visualdiff: invariant violated")

func invariant(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}
