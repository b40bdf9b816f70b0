package scheduling

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

type EntityKind string

const (
	KindSlot        EntityKind = "slot"
	KindAppointment EntityKind = "appointment"
	KindPatient     EntityKind = "patient"
	KindProvider    EntityKind = "provider"
)

var (
	// ErrNotFound matches any NotFoundError via errors.Is.
	ErrNotFound = errors.New("not found")

	// ErrValidation matches any ValidationError via errors.Is.
	ErrValidation = errors.New("validation failed")

	// ErrConflict means a slot-level race was lost: the target slot was no
	// longer available at commit time. Callers may retry with another slot.
	ErrConflict = errors.New("slot no longer available")
)

// NotFoundError identifies which referenced entity was missing.
type NotFoundError struct {
	Kind EntityKind
	ID   uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func notFound(kind EntityKind, id uuid.UUID) error {
	return &NotFoundError{Kind: kind, ID: id}
}

// ValidationError covers illegal state transitions and malformed input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// ErrInvalidRange is returned by GenerateSlots when the window end is not
// after the window start.
var ErrInvalidRange = &ValidationError{Reason: "window end must be after window start"}
