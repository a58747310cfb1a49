package domain

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when neither the cache layer nor the store
	// holds the requested entity.
	ErrNotFound = errors.New("not found")

	// ErrBadTimestamp is returned when an order date does not parse as
	// ISO-8601. Rejected before any store or cache mutation.
	ErrBadTimestamp = errors.New("malformed timestamp")
)

// ValidationError reports required creation/update fields that were missing
// or empty. It is raised before the store is touched.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}
