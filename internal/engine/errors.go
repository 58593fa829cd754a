package engine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidURL = errors.New("invalid engine URL")
)

// Error is a non-2xx answer from the engine.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("engine returned status %d", e.Status)
	}

	return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
}
