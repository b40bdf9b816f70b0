package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgStore implements Store against Postgres.
type PgStore struct {
	pool *pgxpool.Pool
}

func NewPgStore(pool *pgxpool.Pool) *PgStore {
	return &PgStore{pool: pool}
}

// Helpers

func scanSlot(row pgx.Row) (*Slot, error) {
	var s Slot
	err := row.Scan(
		&s.ID,
		&s.ProviderID,
		&s.StartTime,
		&s.EndTime,
		&s.Status,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.SlotID,
		&a.PatientID,
		&a.PatientName,
		&a.ProviderName,
		&a.Status,
		&a.CancelReason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// SlotStore

func (s *PgStore) GetSlotByID(ctx context.Context, id uuid.UUID) (*Slot, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, provider_id, start_time, end_time, status, created_at, updated_at
		FROM slots
		WHERE id = $1
	`, id)

	slot, err := scanSlot(row)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound(KindSlot, id)
	}
	return slot, err
}

func (s *PgStore) GetSlotsByProviderAndDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]Slot, error) {
	dayStart := date.UTC().Truncate(24 * time.Hour)
	dayEnd := dayStart.Add(24 * time.Hour)

	rows, err := s.pool.Query(ctx, `
		SELECT id, provider_id, start_time, end_time, status, created_at, updated_at
		FROM slots
		WHERE provider_id = $1
		  AND start_time >= $2
		  AND start_time < $3
		ORDER BY start_time
	`, providerID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *slot)
	}
	return result, rows.Err()
}

func (s *PgStore) InsertSlots(ctx context.Context, slots []Slot) error {
	if len(slots) == 0 {
		return nil
	}

	rows := make([][]any, 0, len(slots))
	for _, slot := range slots {
		rows = append(rows, []any{
			slot.ID, slot.ProviderID, slot.StartTime, slot.EndTime,
			slot.Status, slot.CreatedAt, slot.UpdatedAt,
		})
	}

	_, err := s.pool.CopyFrom(
		ctx,
		pgx.Identifier{"slots"},
		[]string{"id", "provider_id", "start_time", "end_time", "status", "created_at", "updated_at"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("insert slots: %w", err)
	}
	return nil
}

// TrySetSlotStatus performs the conditional flip. The WHERE clause on the
// current status makes the read-then-write a single atomic statement, so
// concurrent bookers of one slot cannot both see it available.
func (s *PgStore) TrySetSlotStatus(ctx context.Context, id uuid.UUID, expected, next SlotStatus) (bool, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE slots
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
	`, id, next, expected)
	if err != nil {
		return false, fmt.Errorf("set slot status: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AppointmentStore

func (s *PgStore) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, slot_id, patient_id, patient_name, provider_name, status, cancel_reason, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)

	appt, err := scanAppointment(row)
	if errors.Is(err, ErrNotFound) {
		return nil, notFound(KindAppointment, id)
	}
	return appt, err
}

func (s *PgStore) ListAppointments(ctx context.Context, filter AppointmentFilter) ([]Appointment, error) {
	query := `
		SELECT a.id, a.slot_id, a.patient_id, a.patient_name, a.provider_name, a.status, a.cancel_reason, a.created_at, a.updated_at
		FROM appointments a
		JOIN slots s ON s.id = a.slot_id
		WHERE 1=1`

	var args []any
	if filter.ProviderID != nil {
		args = append(args, *filter.ProviderID)
		query += fmt.Sprintf(" AND s.provider_id = $%d", len(args))
	}
	if filter.PatientID != nil {
		args = append(args, *filter.PatientID)
		query += fmt.Sprintf(" AND a.patient_id = $%d", len(args))
	}
	if filter.Date != nil {
		dayStart := filter.Date.UTC().Truncate(24 * time.Hour)
		args = append(args, dayStart)
		query += fmt.Sprintf(" AND s.start_time >= $%d", len(args))
		args = append(args, dayStart.Add(24*time.Hour))
		query += fmt.Sprintf(" AND s.start_time < $%d", len(args))
	}
	query += " ORDER BY s.start_time"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		appt, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *appt)
	}
	return result, rows.Err()
}

func (s *PgStore) InsertAppointment(ctx context.Context, appt *Appointment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO appointments (id, slot_id, patient_id, patient_name, provider_name, status, cancel_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, appt.ID, appt.SlotID, appt.PatientID, appt.PatientName, appt.ProviderName,
		appt.Status, appt.CancelReason, appt.CreatedAt, appt.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

func (s *PgStore) UpdateAppointment(ctx context.Context, appt *Appointment) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE appointments
		SET slot_id = $2,
		    patient_id = $3,
		    patient_name = $4,
		    provider_name = $5,
		    status = $6,
		    cancel_reason = $7,
		    updated_at = now()
		WHERE id = $1
	`, appt.ID, appt.SlotID, appt.PatientID, appt.PatientName, appt.ProviderName,
		appt.Status, appt.CancelReason)
	if err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound(KindAppointment, appt.ID)
	}
	return nil
}
