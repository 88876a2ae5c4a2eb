package treatment

import (
	"time"

	"github.com/google/uuid"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
)

// Treatment is a patient's active course on a chemotherapy regimen.
type Treatment struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	RegimenCode      string     `db:"regimen_code" json:"regimen_code"`
	StartDate        time.Time  `db:"start_date" json:"start_date"`
	LastInfusionDate time.Time  `db:"last_infusion_date" json:"last_infusion_date"`
	NextInfusionDate *time.Time `db:"next_infusion_date" json:"next_infusion_date,omitempty"`
	CurrentCycle     int        `db:"current_cycle" json:"current_cycle"`
	Status           string     `db:"status" json:"status"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Trend classifies how a symptom's grade moved since the previous report.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendWorsening Trend = "worsening"
	TrendStable    Trend = "stable"
)

func (t Trend) Valid() bool {
	return t == TrendImproving || t == TrendWorsening || t == TrendStable
}

// SymptomHistory holds the latest composite grade and trend for one symptom
// of one patient. It is read-only input to question selection and alerting.
type SymptomHistory struct {
	ID             uuid.UUID `db:"id" json:"id"`
	PatientID      uuid.UUID `db:"patient_id" json:"patient_id"`
	SymptomTerm    string    `db:"symptom_term" json:"symptom_term"`
	LastGrade      int       `db:"last_grade" json:"last_grade"`
	Trend          Trend     `db:"trend" json:"trend"`
	LastReportedAt time.Time `db:"last_reported_at" json:"last_reported_at"`
}

// TreatmentContext is a derived snapshot of where a patient sits in their
// cycle at one evaluation instant. It is rebuilt on every request and never
// persisted.
type TreatmentContext struct {
	Regimen               *catalog.Regimen   `json:"regimen"`
	CycleNumber           int                `json:"cycle_number"`
	TreatmentDay          int                `json:"treatment_day"`
	AbsoluteTreatmentDay  int                `json:"absolute_treatment_day"`
	Phase                 catalog.CyclePhase `json:"phase"`
	InNadirWindow         bool               `json:"in_nadir_window"`
	LastInfusionDate      time.Time          `json:"last_infusion_date"`
	NextInfusionDate      *time.Time         `json:"next_infusion_date,omitempty"`
	DaysUntilNextInfusion int                `json:"days_until_next_infusion"`
}
