package types

import "errors"

// Error taxonomy for store, traversal and retrieval operations. Callers
// should match with errors.Is; all returned errors wrap one of these
// sentinels with operation context.
var (
	// ErrNotFound is returned when a referenced node or edge does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateID is returned when a create collides with an existing id.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrCorruptSnapshot is returned when a snapshot cannot be parsed or
	// fails referential integrity checks (an edge pointing at a node that
	// is absent from the same snapshot).
	ErrCorruptSnapshot = errors.New("corrupt snapshot")

	// ErrInvalidArgument is returned for malformed inputs such as a
	// negative edge weight or a negative traversal depth.
	ErrInvalidArgument = errors.New("invalid argument")
)
