package database

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when an insert violates a unique constraint.
// Upsert paths treat this as success (the row already exists).
var ErrDuplicate = errors.New("duplicate key")

// GenreReferencedError is returned when deleting a genre that is still
// referenced by movies or shows.
type GenreReferencedError struct {
	GenreID    int64
	References int
}

func (e *GenreReferencedError) Error() string {
	return fmt.Sprintf("genre %d is referenced by %d items", e.GenreID, e.References)
}

// isUniqueViolation reports whether err is a sqlite unique-constraint error.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
