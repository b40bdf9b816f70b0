package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgDirectory serves both directories from the clinic's own tables.
type PgDirectory struct {
	pool *pgxpool.Pool
}

func NewPgDirectory(pool *pgxpool.Pool) *PgDirectory {
	return &PgDirectory{pool: pool}
}

func (d *PgDirectory) GetProviderByID(ctx context.Context, id uuid.UUID) (*Provider, error) {
	var p Provider
	err := d.pool.QueryRow(ctx, `
		SELECT id, name
		FROM providers
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (d *PgDirectory) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := d.pool.QueryRow(ctx, `
		SELECT id, first_name, last_name, email
		FROM patients
		WHERE id = $1
	`, id).Scan(&p.ID, &p.FirstName, &p.LastName, &p.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
