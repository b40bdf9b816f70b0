package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SlotStore is the persistence contract for slots. TrySetStatus is the
// concurrency primitive: the status flip must be conditional on the
// stored value still matching expected, so that of N concurrent bookers
// of one slot exactly one wins.
type SlotStore interface {
	GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error)
	GetSlotsByProviderAndDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]Slot, error)
	InsertSlots(ctx context.Context, slots []Slot) error
	TrySetSlotStatus(ctx context.Context, id uuid.UUID, expected, next SlotStatus) (bool, error)
}

// AppointmentFilter narrows ListAppointments. Nil fields are ignored.
// Date filters on the bound slot's start time (UTC day).
type AppointmentFilter struct {
	ProviderID *uuid.UUID
	PatientID  *uuid.UUID
	Date       *time.Time
}

// AppointmentStore is the persistence contract for appointments.
// Appointments are never deleted, only updated.
type AppointmentStore interface {
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error)
	InsertAppointment(ctx context.Context, appt *Appointment) error
	UpdateAppointment(ctx context.Context, appt *Appointment) error
}

// Store bundles the two contracts; the pg implementation satisfies both
// against one pool.
type Store interface {
	SlotStore
	AppointmentStore
}
