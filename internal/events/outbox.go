package events

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Outbox records every event handed to the publisher before any delivery
// attempt, so a consumer that missed the live channel can replay.
type Outbox interface {
	Append(ctx context.Context, eventType string, appointmentID uuid.UUID, payload []byte) error
}

type PgOutbox struct {
	pool *pgxpool.Pool
}

func NewPgOutbox(pool *pgxpool.Pool) *PgOutbox {
	return &PgOutbox{pool: pool}
}

func (o *PgOutbox) Append(ctx context.Context, eventType string, appointmentID uuid.UUID, payload []byte) error {
	_, err := o.pool.Exec(ctx, `
		INSERT INTO event_outbox (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, now())
	`, eventType, appointmentID, payload)
	if err != nil {
		return fmt.Errorf("append event outbox: %w", err)
	}
	return nil
}
