package combat

import (
	"errors"
	"fmt"
)

// Sentinel errors for the three failure classes of the encounter engine.
// Every concrete error type below unwraps to exactly one of them, so callers
// can branch with errors.Is without caring about the detail type.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid encounter state")
	ErrNotFound     = errors.New("combatant not found")
)

// ValidationError reports malformed input to a constructor or mutator.
type ValidationError struct {
	// Field names the offending input, e.g. "current_hp" or "quantity".
	Field string
	// Reason is a short human-readable explanation.
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// InvalidStateError reports an operation invoked in a lifecycle state that forbids it.
type InvalidStateError struct {
	Op     string
	State  State
	Reason string
}

func (e *InvalidStateError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("cannot %s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("cannot %s while encounter is %s", e.Op, e.State)
}

// Unwrap returns ErrInvalidState.
func (e *InvalidStateError) Unwrap() error { return ErrInvalidState }

// NotFoundError reports a combatant id that does not exist in the encounter.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("combatant %q not found", e.ID)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }
