package zoo

import "github.com/cockroachdb/errors"

// Sentinel errors. Accessors wrap these with context; match with errors.Is.
var (
	// ErrNotFound is returned when a lookup by name or id has no match.
	ErrNotFound = errors.New("not found")

	// ErrOutOfRange is returned when an index does not address an element.
	ErrOutOfRange = errors.New("index out of range")

	// ErrInvalidInput is returned for values the core refuses to store
	// (non-positive capacity, negative age or amount, empty names).
	ErrInvalidInput = errors.New("invalid input")
)

func outOfRange(what string, idx, n int) error {
	return errors.Wrapf(ErrOutOfRange, "%s index %d (have %d)", what, idx, n)
}
