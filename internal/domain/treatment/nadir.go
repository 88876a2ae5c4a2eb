package treatment

import (
	"math"
	"time"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
)

// NadirPhase locates a day within the nadir window.
type NadirPhase string

const (
	NadirNone  NadirPhase = "none"
	NadirEarly NadirPhase = "early"
	NadirPeak  NadirPhase = "peak"
	NadirLate  NadirPhase = "late"
)

// InfectionRisk is the guidance level attached to a nadir phase.
type InfectionRisk string

const (
	RiskLow      InfectionRisk = "low"
	RiskModerate InfectionRisk = "moderate"
	RiskHigh     InfectionRisk = "high"
	RiskVeryHigh InfectionRisk = "very_high"
)

// NadirAssessment refines the boolean nadir flag into phase-of-nadir and
// monitoring guidance.
type NadirAssessment struct {
	Phase            NadirPhase    `json:"phase"`
	InfectionRisk    InfectionRisk `json:"infection_risk"`
	PrioritySymptoms []string      `json:"priority_symptoms,omitempty"`
	DaysIntoWindow   int           `json:"days_into_window"`
	DaysRemaining    int           `json:"days_remaining"`
}

// Symptoms that blood-count suppression makes dangerous at any point in the
// window.
var nadirCoreSymptoms = []string{"infection_signs", "fever", "bleeding", "bruising"}

var nadirPhaseSymptoms = map[NadirPhase][]string{
	NadirEarly: {"fatigue", "weakness"},
	NadirPeak:  {"shortness_of_breath", "dizziness", "chills"},
	NadirLate:  {"mouth_sores", "skin_changes"},
}

var nadirPhaseRisk = map[NadirPhase]InfectionRisk{
	NadirNone:  RiskLow,
	NadirEarly: RiskModerate,
	NadirPeak:  RiskVeryHigh,
	NadirLate:  RiskHigh,
}

// AssessNadir classifies the treatment day within the regimen's nadir window.
// The window is split into thirds: the first ceil(33%) of days are early, the
// last floor(33%) are late, and everything between is peak.
func AssessNadir(treatmentDay int, r *catalog.Regimen) NadirAssessment {
	if !IsInNadirWindow(treatmentDay, r) {
		return NadirAssessment{Phase: NadirNone, InfectionRisk: RiskLow}
	}

	start, end := *r.NadirStartDay, *r.NadirEndDay
	windowLen := end - start + 1
	earlyLen := int(math.Ceil(float64(windowLen) * 0.33))
	lateLen := int(math.Floor(float64(windowLen) * 0.33))

	phase := NadirPeak
	if treatmentDay-start < earlyLen {
		phase = NadirEarly
	} else if end-treatmentDay < lateLen {
		phase = NadirLate
	}

	symptoms := make([]string, 0, len(nadirCoreSymptoms)+3)
	symptoms = append(symptoms, nadirCoreSymptoms...)
	symptoms = append(symptoms, nadirPhaseSymptoms[phase]...)

	return NadirAssessment{
		Phase:            phase,
		InfectionRisk:    nadirPhaseRisk[phase],
		PrioritySymptoms: symptoms,
		DaysIntoWindow:   treatmentDay - start + 1,
		DaysRemaining:    end - treatmentDay,
	}
}

// NadirDates projects the regimen's nadir window onto the calendar from an
// infusion date. The infusion day is treatment day 1, so day N lands N-1
// days after the infusion. Returns false if the regimen defines no window.
func NadirDates(infusionDate time.Time, r *catalog.Regimen) (start, end time.Time, ok bool) {
	if !r.HasNadirWindow() {
		return time.Time{}, time.Time{}, false
	}
	start = infusionDate.AddDate(0, 0, *r.NadirStartDay-1)
	end = infusionDate.AddDate(0, 0, *r.NadirEndDay-1)
	return start, end, true
}
