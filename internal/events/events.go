// Package events carries appointment lifecycle notifications out of the
// core. Downstream consumers (e.g. the notification service) subscribe to
// the Redis channel; the pg outbox keeps a durable record of everything
// handed to the publisher.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	AppointmentCreated     = "APPOINTMENT_CREATED"
	AppointmentConfirmed   = "APPOINTMENT_CONFIRMED"
	AppointmentRescheduled = "APPOINTMENT_RESCHEDULED"
	AppointmentCanceled    = "APPOINTMENT_CANCELED"
	AppointmentCompleted   = "APPOINTMENT_COMPLETED"
)

// Payload describes one committed appointment transition. OldSlotStart
// and OldSlotEnd are set only for reschedules, Reason only for
// cancellations.
type Payload struct {
	AppointmentID uuid.UUID  `json:"appointment_id"`
	PatientName   string     `json:"patient_name"`
	PatientEmail  string     `json:"patient_email"`
	ProviderName  string     `json:"provider_name"`
	SlotStart     time.Time  `json:"slot_start"`
	SlotEnd       time.Time  `json:"slot_end"`
	OldSlotStart  *time.Time `json:"old_slot_start,omitempty"`
	OldSlotEnd    *time.Time `json:"old_slot_end,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	OccurredAt    time.Time  `json:"occurred_at"`
}

// Publisher hands a lifecycle event off for delivery. The call must not
// block on downstream latency and its failure must not affect the state
// change it describes; delivery is at-least-once from the enqueue point.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload Payload)
}
