package store

import (
	"errors"
	"strings"
)

// ErrNotFound is returned when a requested record does not exist in the store.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert or update violates a uniqueness
// constraint (email, slug, topic name).
var ErrDuplicate = errors.New("duplicate record")

// isUniqueViolation reports whether err is a SQLite uniqueness error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
