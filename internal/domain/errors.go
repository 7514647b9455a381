package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound matches every ReferenceNotFoundError via errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrReferenced is returned when deleting a customer or brand that bookings still point to.
	ErrReferenced = errors.New("entity is referenced by bookings")
)

// ReferenceNotFoundError names the entity kind and id that did not resolve.
type ReferenceNotFoundError struct {
	Entity string
	ID     int64
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s not found (id=%d)", e.Entity, e.ID)
}

func (e *ReferenceNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func NotFound(entity string, id int64) error {
	return &ReferenceNotFoundError{Entity: entity, ID: id}
}

// NotFoundEntity returns the entity named by err, or "" if err is not a ReferenceNotFoundError.
func NotFoundEntity(err error) string {
	var nf *ReferenceNotFoundError
	if errors.As(err, &nf) {
		return nf.Entity
	}
	return ""
}
