package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	alerts AlertRepository
}

func NewService(alerts AlertRepository) *Service {
	return &Service{alerts: alerts}
}

func (s *Service) GetAlert(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return s.alerts.GetByID(ctx, id)
}

func (s *Service) ListPatientAlerts(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	return s.alerts.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListOpenAlerts(ctx context.Context, limit, offset int) ([]*Alert, int, error) {
	return s.alerts.ListUnacknowledged(ctx, limit, offset)
}

func (s *Service) AcknowledgeAlert(ctx context.Context, id uuid.UUID) error {
	return s.alerts.Acknowledge(ctx, id)
}

// RankPatients validates the summaries and builds the ranked queue with its
// aggregate statistics.
func (s *Service) RankPatients(ctx context.Context, summaries []PatientSummary, now time.Time) ([]QueueEntry, QueueStats, error) {
	for i, sum := range summaries {
		if sum.PatientID == uuid.Nil {
			return nil, QueueStats{}, fmt.Errorf("summary %d: patient_id is required", i)
		}
		if sum.RedCount < 0 || sum.YellowCount < 0 || sum.GreenCount < 0 {
			return nil, QueueStats{}, fmt.Errorf("summary %d: alert counts must not be negative", i)
		}
	}
	entries := BuildQueue(summaries, now)
	return entries, ComputeStats(entries), nil
}
