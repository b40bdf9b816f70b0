package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/medbook/clinic-scheduling/internal/scheduling"
)

type GenerateSlotsRequest struct {
	ProviderID  string    `json:"provider_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Span        string    `json:"span,omitempty"` // Go duration, e.g. "30m"
}

type BookAppointmentRequest struct {
	SlotID    string `json:"slot_id"`
	PatientID string `json:"patient_id"`
}

type RescheduleAppointmentRequest struct {
	SlotID string `json:"slot_id"`
}

type CancelAppointmentRequest struct {
	Reason string `json:"reason,omitempty"`
}

type OverrideAppointmentRequest struct {
	SlotID    string `json:"slot_id"`
	PatientID string `json:"patient_id"`
	Status    string `json:"status"`
}

type SlotResponse struct {
	ID         uuid.UUID `json:"id"`
	ProviderID uuid.UUID `json:"provider_id"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Status     string    `json:"status"`
}

type AppointmentResponse struct {
	ID           uuid.UUID `json:"id"`
	SlotID       uuid.UUID `json:"slot_id"`
	PatientID    uuid.UUID `json:"patient_id"`
	PatientName  string    `json:"patient_name"`
	ProviderName string    `json:"provider_name"`
	Status       string    `json:"status"`
	CancelReason string    `json:"cancel_reason,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toSlotResponse(s scheduling.Slot) SlotResponse {
	return SlotResponse{
		ID:         s.ID,
		ProviderID: s.ProviderID,
		StartTime:  s.StartTime,
		EndTime:    s.EndTime,
		Status:     string(s.Status),
	}
}

func toAppointmentResponse(a *scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:           a.ID,
		SlotID:       a.SlotID,
		PatientID:    a.PatientID,
		PatientName:  a.PatientName,
		ProviderName: a.ProviderName,
		Status:       string(a.Status),
		CancelReason: a.CancelReason,
	}
}
