package triage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrAlertNotFound = errors.New("alert not found")

type AlertRepository interface {
	Create(ctx context.Context, a *Alert) error
	GetByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error)
	ListUnacknowledged(ctx context.Context, limit, offset int) ([]*Alert, int, error)
	Acknowledge(ctx context.Context, id uuid.UUID) error
}
