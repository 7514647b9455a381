package database

import (
	"errors"
	"fmt"

	"customerbooking/internal/domain"

	"github.com/mattn/go-sqlite3"
)

func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// translateDeleteError turns a foreign key violation on delete into domain.ErrReferenced.
func translateDeleteError(err error, entity string, id int64) error {
	if isForeignKeyViolation(err) {
		return fmt.Errorf("%w: %s %d", domain.ErrReferenced, entity, id)
	}
	return fmt.Errorf("failed to delete %s: %w", entity, err)
}

// translateSaveError turns a foreign key violation on a booking write into a
// not-found for the referenced entity, which was removed after the caller checked it.
func translateSaveError(err error, entity string, id int64, op string) error {
	if isForeignKeyViolation(err) {
		return domain.NotFound(entity, id)
	}
	return fmt.Errorf("failed to %s booking: %w", op, err)
}
