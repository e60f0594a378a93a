package catalog

import (
	"errors"
	"fmt"

	"github.com/juanjparedez/mundobl/internal/models"
)

// Storage sentinels. Repositories wrap these so callers can match with errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")

	// ErrInvalidReference reports a foreign key pointing at a missing row.
	ErrInvalidReference = errors.New("referenced row does not exist")
)

// ValidationError rejects a request before any storage is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a unique-key collision, typically a reference entity
// created concurrently by another request. Retrying the request resolves it.
type ConflictError struct {
	Kind string
	Name string
	Err  error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Kind, e.Name)
}

func (e *ConflictError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrDuplicate
}

// ReferentialBlockError refuses to delete an entity still referenced by join rows.
type ReferentialBlockError struct {
	Kind       models.RefKind
	ID         int64
	References int
}

func (e *ReferentialBlockError) Error() string {
	return fmt.Sprintf("cannot delete %s %d: still linked to %d series relations", e.Kind, e.ID, e.References)
}
