package state

import "errors"

var (
	// ErrNotFound is returned by operations that require an already-cached
	// entity (deletes and their kin). It is distinct from the update family's
	// nil-diff no-op, which covers the expected case of an update for an
	// entity the registry never saw.
	ErrNotFound = errors.New("entity not found")

	// ErrInvalidConfig is returned for non-positive capacities at
	// construction time. A registry that fails construction is unusable.
	ErrInvalidConfig = errors.New("invalid configuration")
)
