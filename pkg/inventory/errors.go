package inventory

import "errors"

// Typed sentinels so HTTP handlers can tell a duplicate name from a
// missing row or a store failure. Wrap with fmt.Errorf("...: %w", err)
// to attach the directive message, match with errors.Is.
var (
	// ErrNotFound is returned when an entity is missing so handlers can respond with 404.
	ErrNotFound = errors.New("not found")

	// ErrDuplicateName is returned when an item or unit name is already taken.
	ErrDuplicateName = errors.New("name already exists")

	// ErrNoUnit is returned when a shelf assignment is attempted before a unit is set.
	ErrNoUnit = errors.New("no unit assigned")

	// ErrNoCandidates is returned when there is nothing of the requested kind to assign.
	ErrNoCandidates = errors.New("no candidates to assign")

	// ErrNoContainer is returned when removing an item from a container it is not in.
	ErrNoContainer = errors.New("item has no container")
)
