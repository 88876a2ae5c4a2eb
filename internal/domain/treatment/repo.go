package treatment

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrTreatmentNotFound = errors.New("treatment not found")
	// ErrNoActiveTreatment means the patient exists but has no active course.
	ErrNoActiveTreatment      = errors.New("no active treatment for patient")
	ErrSymptomHistoryNotFound = errors.New("symptom history not found")
)

type TreatmentRepository interface {
	Create(ctx context.Context, t *Treatment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error)
	GetActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Treatment, error)
	Update(ctx context.Context, t *Treatment) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Treatment, int, error)
}

type SymptomHistoryRepository interface {
	// Upsert writes the row keyed by (patient_id, symptom_term), replacing
	// any previous grade and trend.
	Upsert(ctx context.Context, h *SymptomHistory) error
	ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*SymptomHistory, error)
	GetByPatientAndSymptom(ctx context.Context, patientID uuid.UUID, symptomTerm string) (*SymptomHistory, error)
}
