package triage

import (
	"time"

	"github.com/google/uuid"
)

// AlertSeverity is the clinical urgency band of an alert.
type AlertSeverity string

const (
	SeverityRed    AlertSeverity = "red"
	SeverityYellow AlertSeverity = "yellow"
	SeverityGreen  AlertSeverity = "green"
)

// severityRank orders bands for sorting; lower sorts first.
func severityRank(s AlertSeverity) int {
	switch s {
	case SeverityRed:
		return 0
	case SeverityYellow:
		return 1
	default:
		return 2
	}
}

// AlertType names the rule family that produced an alert.
type AlertType string

const (
	AlertEmergency       AlertType = "emergency"
	AlertUrgent          AlertType = "urgent"
	AlertRoutine         AlertType = "routine"
	AlertConcerningTrend AlertType = "concerning_trend"
)

// Alert is one actionable finding derived from a graded questionnaire.
type Alert struct {
	ID                   uuid.UUID     `db:"id" json:"id"`
	PatientID            uuid.UUID     `db:"patient_id" json:"patient_id"`
	SessionID            *uuid.UUID    `db:"session_id" json:"session_id,omitempty"`
	Severity             AlertSeverity `db:"severity" json:"severity"`
	Type                 AlertType     `db:"alert_type" json:"type"`
	SymptomTerm          string        `db:"symptom_term" json:"symptom_term"`
	Grade                int           `db:"grade" json:"grade"`
	PatientInstruction   string        `db:"patient_instruction" json:"patient_instruction"`
	ClinicianInstruction string        `db:"clinician_instruction" json:"clinician_instruction"`
	RequiresImmediate    bool          `db:"requires_immediate" json:"requires_immediate"`
	Acknowledged         bool          `db:"acknowledged" json:"acknowledged"`
	CreatedAt            time.Time     `db:"created_at" json:"created_at"`
}

// PatientSummary is the per-patient input to queue ranking: alert band
// counts from the latest completed questionnaire plus timing context.
type PatientSummary struct {
	PatientID    uuid.UUID `json:"patient_id"`
	PatientName  string    `json:"patient_name,omitempty"`
	RedCount     int       `json:"red_count"`
	YellowCount  int       `json:"yellow_count"`
	GreenCount   int       `json:"green_count"`
	CompletedAt  time.Time `json:"completed_at"`
	TreatmentDay int       `json:"treatment_day"`
}

// QueueEntry is one ranked patient in the attention queue.
type QueueEntry struct {
	PatientSummary
	Rank              int     `json:"rank"`
	PriorityScore     float64 `json:"priority_score"`
	Reason            string  `json:"reason"`
	RecommendedAction string  `json:"recommended_action"`
	ResponseTarget    string  `json:"response_target"`
}

// QueueStats aggregates the queue into band counts and an expected response
// time.
type QueueStats struct {
	TotalPatients      int     `json:"total_patients"`
	RedPatients        int     `json:"red_patients"`
	YellowPatients     int     `json:"yellow_patients"`
	RoutinePatients    int     `json:"routine_patients"`
	AvgResponseMinutes float64 `json:"avg_response_minutes"`
}
