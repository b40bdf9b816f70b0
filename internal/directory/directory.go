// Package directory looks up display and contact data for the people an
// appointment references. The core treats these as external services; the
// default implementation reads the clinic's own provider and patient
// tables.
package directory

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when the directory has no record for the id.
// The caller decides which entity kind was missing.
var ErrNotFound = errors.New("directory record not found")

type Provider struct {
	ID   uuid.UUID
	Name string
}

type Patient struct {
	ID        uuid.UUID
	FirstName string
	LastName  string
	Email     string
}

// FullName is the denormalized form stored on appointments.
func (p Patient) FullName() string {
	if p.FirstName == "" {
		return p.LastName
	}
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}

type ProviderDirectory interface {
	GetProviderByID(ctx context.Context, id uuid.UUID) (*Provider, error)
}

type PatientDirectory interface {
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
}
