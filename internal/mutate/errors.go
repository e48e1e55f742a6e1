package mutate

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

var (
	// ErrCycle is returned when a move would make an item its own ancestor.
	ErrCycle         = errors.New("move would create a cycle")
	ErrInvalidStatus = errors.New("invalid status")
	ErrEmptyName     = errors.New("name is required")
	ErrNotContainer  = errors.New("parent must be a category or folder")
	ErrNoContent     = errors.New("only articles and files carry content")
)
