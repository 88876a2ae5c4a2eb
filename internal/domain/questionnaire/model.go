package questionnaire

import (
	"time"

	"github.com/google/uuid"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
)

// SelectionMethod names which selector generated a questionnaire.
type SelectionMethod string

const (
	MethodRegimen    SelectionMethod = "regimen"
	MethodDrugModule SelectionMethod = "drug_module"
)

func (m SelectionMethod) Valid() bool {
	return m == MethodRegimen || m == MethodDrugModule
}

// SymptomSource records where a symptom in the drug-module union came from.
type SymptomSource struct {
	SymptomTerm       string               `json:"symptom_term"`
	ContributingDrugs []string             `json:"contributing_drugs"`
	IsSafetyProxy     bool                 `json:"is_safety_proxy"`
	PhaseRestriction  []catalog.CyclePhase `json:"phase_restriction,omitempty"`
}

// SelectedItem is one question chosen by a selector, with its history score
// and whether answering it can trigger conditional branching.
type SelectedItem struct {
	Item               *catalog.SymptomItem `json:"item"`
	Score              float64              `json:"score"`
	RequiresBranchEval bool                 `json:"requires_branch_eval"`
}

// GenerationMetadata is the audit trail attached to a generated
// questionnaire: what drugs and context drove selection and what the union
// and phase filter did.
type GenerationMetadata struct {
	Method                SelectionMethod    `json:"method"`
	RegimenCode           string             `json:"regimen_code"`
	Phase                 catalog.CyclePhase `json:"phase"`
	TreatmentDay          int                `json:"treatment_day"`
	InNadirWindow         bool               `json:"in_nadir_window"`
	ActiveDrugs           []string           `json:"active_drugs,omitempty"`
	StepName              string             `json:"step_name,omitempty"`
	Sources               []SymptomSource    `json:"sources,omitempty"`
	RawSymptomCount       int                `json:"raw_symptom_count"`
	UnionedSymptomCount   int                `json:"unioned_symptom_count"`
	PhaseFilteringApplied bool               `json:"phase_filtering_applied"`
}

// GenerationResult is a selector's full output.
type GenerationResult struct {
	Items    []SelectedItem     `json:"items"`
	Metadata GenerationMetadata `json:"metadata"`
}

// Session is one patient questionnaire run from generation to completion.
type Session struct {
	ID          uuid.UUID          `db:"id" json:"id"`
	PatientID   uuid.UUID          `db:"patient_id" json:"patient_id"`
	Method      SelectionMethod    `db:"method" json:"method"`
	Status      string             `db:"status" json:"status"`
	ItemIDs     []uuid.UUID        `db:"item_ids" json:"item_ids"`
	Position    int                `db:"position" json:"position"`
	Metadata    GenerationMetadata `db:"metadata" json:"metadata"`
	CreatedAt   time.Time          `db:"created_at" json:"created_at"`
	CompletedAt *time.Time         `db:"completed_at" json:"completed_at,omitempty"`
}

// Answer is one recorded response within a session. Re-answering the same
// item replaces the previous row.
type Answer struct {
	ID        uuid.UUID `db:"id" json:"id"`
	SessionID uuid.UUID `db:"session_id" json:"session_id"`
	ItemID    uuid.UUID `db:"item_id" json:"item_id"`
	Value     int       `db:"value" json:"value"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
