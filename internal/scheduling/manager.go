package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/medbook/clinic-scheduling/internal/directory"
	"github.com/medbook/clinic-scheduling/internal/events"
	redisclient "github.com/medbook/clinic-scheduling/internal/redis"
)

// Manager orchestrates the appointment lifecycle. Every mutating
// operation validates against the current state, commits slot and
// appointment changes, and then hands exactly one event to the
// publisher. Publish failures never roll the commit back.
type Manager struct {
	store     Store
	providers directory.ProviderDirectory
	patients  directory.PatientDirectory
	locker    redisclient.Locker
	publisher events.Publisher
	logger    zerolog.Logger
}

func NewManager(
	store Store,
	providers directory.ProviderDirectory,
	patients directory.PatientDirectory,
	locker redisclient.Locker,
	publisher events.Publisher,
) *Manager {
	return &Manager{
		store:     store,
		providers: providers,
		patients:  patients,
		locker:    locker,
		publisher: publisher,
		logger:    log.With().Str("component", "lifecycle_manager").Logger(),
	}
}

// GenerateSlots partitions the provider's window into fixed-span slots
// and persists them.
func (m *Manager) GenerateSlots(ctx context.Context, providerID uuid.UUID, windowStart, windowEnd time.Time, span time.Duration) ([]Slot, error) {
	if _, err := m.lookupProvider(ctx, providerID); err != nil {
		return nil, err
	}

	slots, err := AllocateSlots(providerID, windowStart, windowEnd, span)
	if err != nil {
		return nil, err
	}

	if err := m.store.InsertSlots(ctx, slots); err != nil {
		return nil, fmt.Errorf("persist generated slots: %w", err)
	}
	return slots, nil
}

// ListSlots returns a provider's slots for one calendar day.
func (m *Manager) ListSlots(ctx context.Context, providerID uuid.UUID, date time.Time) ([]Slot, error) {
	return m.store.GetSlotsByProviderAndDate(ctx, providerID, date)
}

// Book claims an available slot for a patient. Of any number of
// concurrent bookers of one slot exactly one wins; the rest get
// ErrConflict.
func (m *Manager) Book(ctx context.Context, slotID, patientID uuid.UUID) (*Appointment, error) {
	slot, err := m.store.GetSlotByID(ctx, slotID)
	if err != nil {
		return nil, err
	}

	patient, err := m.lookupPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	provider, err := m.lookupProvider(ctx, slot.ProviderID)
	if err != nil {
		return nil, err
	}

	if slot.Status != SlotAvailable {
		return nil, ErrConflict
	}

	var appt *Appointment

	err = m.locker.WithSlotLock(ctx, slotID, func(lockCtx context.Context) error {
		won, err := m.store.TrySetSlotStatus(lockCtx, slotID, SlotAvailable, SlotBooked)
		if err != nil {
			return fmt.Errorf("claim slot: %w", err)
		}
		if !won {
			return ErrConflict
		}

		now := time.Now().UTC()
		appt = &Appointment{
			ID:           uuid.New(),
			SlotID:       slotID,
			PatientID:    patientID,
			PatientName:  patient.FullName(),
			ProviderName: provider.Name,
			Status:       StatusPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		if err := m.store.InsertAppointment(lockCtx, appt); err != nil {
			m.releaseSlot(ctx, slotID)
			return fmt.Errorf("insert appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrConflict
		}
		return nil, err
	}

	m.publisher.Publish(ctx, events.AppointmentCreated, payloadFor(appt, slot, patient))
	return appt, nil
}

// Get returns one appointment by id.
func (m *Manager) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return m.store.GetAppointmentByID(ctx, id)
}

// List filters appointments by provider, patient and slot day. All
// filter fields are optional.
func (m *Manager) List(ctx context.Context, filter AppointmentFilter) ([]Appointment, error) {
	return m.store.ListAppointments(ctx, filter)
}

// Confirm moves a pending appointment to confirmed.
func (m *Manager) Confirm(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return m.transition(ctx, id, StatusConfirmed, events.AppointmentConfirmed,
		"only pending appointments can be confirmed")
}

// Complete moves a confirmed appointment to completed.
func (m *Manager) Complete(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return m.transition(ctx, id, StatusCompleted, events.AppointmentCompleted,
		"only confirmed appointments can be completed")
}

func (m *Manager) transition(ctx context.Context, id uuid.UUID, to AppointmentStatus, eventType, reasonIllegal string) (*Appointment, error) {
	appt, err := m.store.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient, err := m.lookupPatient(ctx, appt.PatientID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appt.Status, to) {
		return nil, validationErrorf("%s: appointment %s is %s", reasonIllegal, id, appt.Status)
	}

	slot, err := m.store.GetSlotByID(ctx, appt.SlotID)
	if err != nil {
		return nil, err
	}

	appt.Status = to
	appt.UpdatedAt = time.Now().UTC()
	if err := m.store.UpdateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	m.publisher.Publish(ctx, eventType, payloadFor(appt, slot, patient))
	return appt, nil
}

// Cancel transitions a pending or confirmed appointment to cancelled and
// frees its slot. Cancellation is terminal; the appointment row is kept.
func (m *Manager) Cancel(ctx context.Context, id uuid.UUID, reason string) (*Appointment, error) {
	appt, err := m.store.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}

	patient, err := m.lookupPatient(ctx, appt.PatientID)
	if err != nil {
		return nil, err
	}

	if !CanTransition(appt.Status, StatusCancelled) {
		return nil, validationErrorf("cannot cancel appointment %s: already %s", id, appt.Status)
	}

	slot, err := m.store.GetSlotByID(ctx, appt.SlotID)
	if err != nil {
		return nil, err
	}

	appt.Status = StatusCancelled
	appt.CancelReason = reason
	appt.UpdatedAt = time.Now().UTC()
	if err := m.store.UpdateAppointment(ctx, appt); err != nil {
		return nil, err
	}

	freed, err := m.store.TrySetSlotStatus(ctx, appt.SlotID, SlotBooked, SlotAvailable)
	if err != nil {
		return nil, fmt.Errorf("free slot: %w", err)
	}
	if !freed {
		m.logger.Warn().
			Stringer("slot_id", appt.SlotID).
			Stringer("appointment_id", appt.ID).
			Msg("cancelled appointment's slot was not booked")
	}

	payload := payloadFor(appt, slot, patient)
	payload.Reason = reason
	m.publisher.Publish(ctx, events.AppointmentCanceled, payload)
	return appt, nil
}

// Reschedule rebinds a pending appointment to a new available slot. The
// old slot is freed, the new one booked, and the denormalized names are
// refreshed from the directories.
func (m *Manager) Reschedule(ctx context.Context, id, newSlotID uuid.UUID) (*Appointment, error) {
	appt, err := m.store.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if appt.Status != StatusPending {
		return nil, validationErrorf("only pending appointments can be rescheduled: appointment %s is %s", id, appt.Status)
	}

	newSlot, err := m.store.GetSlotByID(ctx, newSlotID)
	if err != nil {
		return nil, err
	}

	patient, err := m.lookupPatient(ctx, appt.PatientID)
	if err != nil {
		return nil, err
	}
	provider, err := m.lookupProvider(ctx, newSlot.ProviderID)
	if err != nil {
		return nil, err
	}

	if newSlot.Status != SlotAvailable {
		return nil, validationErrorf("slot %s is not available", newSlotID)
	}

	oldSlot, err := m.store.GetSlotByID(ctx, appt.SlotID)
	if err != nil {
		return nil, err
	}

	err = m.locker.WithSlotLock(ctx, newSlotID, func(lockCtx context.Context) error {
		won, err := m.store.TrySetSlotStatus(lockCtx, newSlotID, SlotAvailable, SlotBooked)
		if err != nil {
			return fmt.Errorf("claim new slot: %w", err)
		}
		if !won {
			return ErrConflict
		}

		appt.SlotID = newSlotID
		appt.PatientName = patient.FullName()
		appt.ProviderName = provider.Name
		appt.UpdatedAt = time.Now().UTC()

		if err := m.store.UpdateAppointment(lockCtx, appt); err != nil {
			m.releaseSlot(ctx, newSlotID)
			return fmt.Errorf("rebind appointment: %w", err)
		}

		freed, err := m.store.TrySetSlotStatus(lockCtx, oldSlot.ID, SlotBooked, SlotAvailable)
		if err != nil {
			return fmt.Errorf("free old slot: %w", err)
		}
		if !freed {
			m.logger.Warn().
				Stringer("slot_id", oldSlot.ID).
				Stringer("appointment_id", appt.ID).
				Msg("rescheduled appointment's old slot was not booked")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrConflict
		}
		return nil, err
	}

	payload := payloadFor(appt, newSlot, patient)
	payload.OldSlotStart = &oldSlot.StartTime
	payload.OldSlotEnd = &oldSlot.EndTime
	m.publisher.Publish(ctx, events.AppointmentRescheduled, payload)
	return appt, nil
}

// Override is the administrative correction path: it overwrites slot
// binding, patient and status as given, bypassing the transition table.
// Slot bookkeeping still mirrors the checked operations: a binding
// change frees the old slot and claims the new one, and a forced
// cancellation frees the bound slot. No event is emitted.
func (m *Manager) Override(ctx context.Context, id, slotID, patientID uuid.UUID, status AppointmentStatus) (*Appointment, error) {
	appt, err := m.store.GetAppointmentByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ValidAppointmentStatus(status) {
		return nil, validationErrorf("unknown appointment status %q", status)
	}

	prevStatus := appt.Status
	prevSlotID := appt.SlotID
	slotChanged := slotID != appt.SlotID

	// Directory lookups come before any slot mutation so a failed lookup
	// cannot leave the slots half-moved.
	if patientID != appt.PatientID {
		patient, err := m.lookupPatient(ctx, patientID)
		if err != nil {
			return nil, err
		}
		appt.PatientID = patientID
		appt.PatientName = patient.FullName()
	}

	if slotChanged {
		newSlot, err := m.store.GetSlotByID(ctx, slotID)
		if err != nil {
			return nil, err
		}
		provider, err := m.lookupProvider(ctx, newSlot.ProviderID)
		if err != nil {
			return nil, err
		}

		won, err := m.store.TrySetSlotStatus(ctx, slotID, SlotAvailable, SlotBooked)
		if err != nil {
			return nil, fmt.Errorf("claim slot: %w", err)
		}
		if !won {
			return nil, ErrConflict
		}

		appt.SlotID = slotID
		appt.ProviderName = provider.Name
	}

	appt.Status = status
	appt.UpdatedAt = time.Now().UTC()
	if err := m.store.UpdateAppointment(ctx, appt); err != nil {
		// The old slot is still booked at this point, so the failed
		// rebind only has the claimed slot to hand back.
		if slotChanged {
			m.releaseSlot(ctx, slotID)
		}
		return nil, err
	}

	if slotChanged {
		freed, err := m.store.TrySetSlotStatus(ctx, prevSlotID, SlotBooked, SlotAvailable)
		if err != nil {
			return nil, fmt.Errorf("free previous slot: %w", err)
		}
		if !freed {
			m.logger.Warn().
				Stringer("slot_id", prevSlotID).
				Stringer("appointment_id", appt.ID).
				Msg("overridden appointment's old slot was not booked")
		}
	}

	// Forcing a cancellation frees the bound slot just like the checked
	// cancel path; a forced completion keeps it booked, also matching
	// the checked path.
	if status == StatusCancelled && prevStatus != StatusCancelled {
		if _, err := m.store.TrySetSlotStatus(ctx, appt.SlotID, SlotBooked, SlotAvailable); err != nil {
			return nil, fmt.Errorf("free cancelled slot: %w", err)
		}
	}

	m.logger.Warn().
		Stringer("appointment_id", appt.ID).
		Str("previous_status", string(prevStatus)).
		Str("status", string(status)).
		Stringer("previous_slot_id", prevSlotID).
		Stringer("slot_id", appt.SlotID).
		Msg("administrative override applied")

	return appt, nil
}

// releaseSlot compensates a claimed slot after a failed commit. It runs
// detached from the caller's context so cancellation cannot strand a
// booked slot with no appointment.
func (m *Manager) releaseSlot(ctx context.Context, slotID uuid.UUID) {
	freeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if _, err := m.store.TrySetSlotStatus(freeCtx, slotID, SlotBooked, SlotAvailable); err != nil {
		m.logger.Error().Err(err).
			Stringer("slot_id", slotID).
			Msg("failed to release slot after aborted commit")
	}
}

func (m *Manager) lookupProvider(ctx context.Context, id uuid.UUID) (*directory.Provider, error) {
	provider, err := m.providers.GetProviderByID(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, notFound(KindProvider, id)
		}
		return nil, fmt.Errorf("lookup provider: %w", err)
	}
	return provider, nil
}

func (m *Manager) lookupPatient(ctx context.Context, id uuid.UUID) (*directory.Patient, error) {
	patient, err := m.patients.GetPatientByID(ctx, id)
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, notFound(KindPatient, id)
		}
		return nil, fmt.Errorf("lookup patient: %w", err)
	}
	return patient, nil
}

func payloadFor(appt *Appointment, slot *Slot, patient *directory.Patient) events.Payload {
	return events.Payload{
		AppointmentID: appt.ID,
		PatientName:   appt.PatientName,
		PatientEmail:  patient.Email,
		ProviderName:  appt.ProviderName,
		SlotStart:     slot.StartTime,
		SlotEnd:       slot.EndTime,
		OccurredAt:    time.Now().UTC(),
	}
}
