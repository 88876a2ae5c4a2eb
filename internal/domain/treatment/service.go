package treatment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
)

var validStatuses = map[string]bool{
	"active": true, "paused": true, "completed": true, "discontinued": true,
}

type Service struct {
	treatments TreatmentRepository
	history    SymptomHistoryRepository
	regimens   catalog.RegimenRepository
}

func NewService(treatments TreatmentRepository, history SymptomHistoryRepository, regimens catalog.RegimenRepository) *Service {
	return &Service{treatments: treatments, history: history, regimens: regimens}
}

func (s *Service) CreateTreatment(ctx context.Context, t *Treatment) error {
	if t.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if t.RegimenCode == "" {
		return fmt.Errorf("regimen_code is required")
	}
	if _, err := s.regimens.GetByCode(ctx, t.RegimenCode); err != nil {
		return fmt.Errorf("regimen %s: %w", t.RegimenCode, err)
	}
	if t.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	if t.CurrentCycle < 1 {
		t.CurrentCycle = 1
	}
	if t.LastInfusionDate.IsZero() {
		t.LastInfusionDate = t.StartDate
	}
	if t.Status == "" {
		t.Status = "active"
	}
	if !validStatuses[t.Status] {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	return s.treatments.Create(ctx, t)
}

func (s *Service) GetTreatment(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return s.treatments.GetByID(ctx, id)
}

func (s *Service) GetActiveTreatment(ctx context.Context, patientID uuid.UUID) (*Treatment, error) {
	return s.treatments.GetActiveByPatient(ctx, patientID)
}

func (s *Service) UpdateTreatment(ctx context.Context, t *Treatment) error {
	if t.Status != "" && !validStatuses[t.Status] {
		return fmt.Errorf("invalid status: %s", t.Status)
	}
	return s.treatments.Update(ctx, t)
}

func (s *Service) DeleteTreatment(ctx context.Context, id uuid.UUID) error {
	return s.treatments.Delete(ctx, id)
}

func (s *Service) ListTreatments(ctx context.Context, limit, offset int) ([]*Treatment, int, error) {
	return s.treatments.List(ctx, limit, offset)
}

// RecordInfusion advances the treatment to its next cycle after an infusion
// is administered.
func (s *Service) RecordInfusion(ctx context.Context, id uuid.UUID, infusionDate time.Time, nextInfusion *time.Time) (*Treatment, error) {
	t, err := s.treatments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if infusionDate.Before(t.LastInfusionDate) {
		return nil, fmt.Errorf("infusion date precedes last recorded infusion")
	}
	t.LastInfusionDate = infusionDate
	t.NextInfusionDate = nextInfusion
	t.CurrentCycle++
	if err := s.treatments.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// BuildContext loads the patient's active treatment and regimen and derives
// the cycle-position snapshot at the given instant. The snapshot is computed
// fresh on every call.
func (s *Service) BuildContext(ctx context.Context, patientID uuid.UUID, at time.Time) (*TreatmentContext, error) {
	t, err := s.treatments.GetActiveByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	r, err := s.regimens.GetByCode(ctx, t.RegimenCode)
	if err != nil {
		return nil, fmt.Errorf("regimen %s: %w", t.RegimenCode, err)
	}
	return BuildTreatmentContext(t, r, at), nil
}

// AssessPatientNadir runs the nadir analysis for the patient's current
// treatment day.
func (s *Service) AssessPatientNadir(ctx context.Context, patientID uuid.UUID, at time.Time) (*NadirAssessment, error) {
	tc, err := s.BuildContext(ctx, patientID, at)
	if err != nil {
		return nil, err
	}
	assessment := AssessNadir(tc.TreatmentDay, tc.Regimen)
	return &assessment, nil
}

func (s *Service) RecordSymptomHistory(ctx context.Context, h *SymptomHistory) error {
	if h.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if h.SymptomTerm == "" {
		return fmt.Errorf("symptom_term is required")
	}
	if h.LastGrade < 0 || h.LastGrade > 4 {
		return fmt.Errorf("last_grade must be between 0 and 4")
	}
	if h.Trend == "" {
		h.Trend = TrendStable
	}
	if !h.Trend.Valid() {
		return fmt.Errorf("invalid trend: %s", h.Trend)
	}
	if h.LastReportedAt.IsZero() {
		h.LastReportedAt = time.Now()
	}
	return s.history.Upsert(ctx, h)
}

func (s *Service) GetSymptomHistory(ctx context.Context, patientID uuid.UUID) ([]*SymptomHistory, error) {
	return s.history.ListByPatient(ctx, patientID)
}
