package scheduling

import (
	"time"

	"github.com/google/uuid"
)

type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Slot is one reservable unit of a provider's time. The interval is
// half open: [StartTime, EndTime).
type Slot struct {
	ID         uuid.UUID
	ProviderID uuid.UUID
	StartTime  time.Time
	EndTime    time.Time
	Status     SlotStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Appointment is a patient's claim on a slot. PatientName and
// ProviderName are snapshots taken at booking (and refreshed on
// reschedule), so past appointments keep the names they were booked
// under.
type Appointment struct {
	ID           uuid.UUID
	SlotID       uuid.UUID
	PatientID    uuid.UUID
	PatientName  string
	ProviderName string
	Status       AppointmentStatus
	CancelReason string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// transitions is the single source of truth for appointment lifecycle
// legality. pending -> pending covers reschedule, which keeps the
// status and swaps the slot binding.
var transitions = map[AppointmentStatus]map[AppointmentStatus]bool{
	StatusPending: {
		StatusPending:   true,
		StatusConfirmed: true,
		StatusCancelled: true,
	},
	StatusConfirmed: {
		StatusCompleted: true,
		StatusCancelled: true,
	},
}

// CanTransition reports whether moving an appointment from one status to
// another is legal. Completed and cancelled are terminal.
func CanTransition(from, to AppointmentStatus) bool {
	return transitions[from][to]
}

// IsTerminal reports whether no further transitions are allowed from s.
func IsTerminal(s AppointmentStatus) bool {
	return len(transitions[s]) == 0
}

func ValidAppointmentStatus(s AppointmentStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}
