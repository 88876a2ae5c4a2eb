package catalog

import (
	"time"

	"github.com/google/uuid"
)

// Attribute identifies which aspect of a symptom a catalog item asks about.
// The attribute drives completeness and branching rules downstream, so it is
// a closed type rather than a free-form string.
type Attribute string

const (
	AttributeFrequency     Attribute = "frequency"
	AttributeSeverity      Attribute = "severity"
	AttributeInterference  Attribute = "interference"
	AttributePresentAbsent Attribute = "present_absent"
	AttributeAmount        Attribute = "amount"
)

var validAttributes = map[Attribute]bool{
	AttributeFrequency: true, AttributeSeverity: true, AttributeInterference: true,
	AttributePresentAbsent: true, AttributeAmount: true,
}

func (a Attribute) Valid() bool { return validAttributes[a] }

// IsPresenceClass reports whether the attribute establishes that a symptom
// occurred at all (as opposed to how bad it was or how much it interfered).
func (a Attribute) IsPresenceClass() bool {
	return a == AttributeFrequency || a == AttributePresentAbsent || a == AttributeAmount
}

// CyclePhase is the patient's position within a chemotherapy cycle. Exactly
// one phase holds for a given (treatment day, regimen) pair.
type CyclePhase string

const (
	PhasePreSession  CyclePhase = "pre_session"
	PhasePostSession CyclePhase = "post_session"
	PhaseRecovery    CyclePhase = "recovery"
	PhaseNadir       CyclePhase = "nadir"
	PhaseInterCycle  CyclePhase = "inter_cycle"
)

var validPhases = map[CyclePhase]bool{
	PhasePreSession: true, PhasePostSession: true, PhaseRecovery: true,
	PhaseNadir: true, PhaseInterCycle: true,
}

func (p CyclePhase) Valid() bool { return validPhases[p] }

// ScalePoint is one value→label pair on a response scale.
type ScalePoint struct {
	Value int    `json:"value"`
	Label string `json:"label"`
}

// SymptomItem maps to the symptom_item table. One item asks about one
// attribute of one symptom.
type SymptomItem struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	ItemCode      string       `db:"item_code" json:"item_code"`
	SymptomTerm   string       `db:"symptom_term" json:"symptom_term"`
	Attribute     Attribute    `db:"attribute" json:"attribute"`
	QuestionText  string       `db:"question_text" json:"question_text"`
	ResponseScale []ScalePoint `db:"response_scale" json:"response_scale"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// MaxScaleValue returns the highest value on the item's response scale.
func (i *SymptomItem) MaxScaleValue() int {
	max := 0
	for _, p := range i.ResponseScale {
		if p.Value > max {
			max = p.Value
		}
	}
	return max
}

// ToxicityProfile describes which symptoms a regimen is expected to cause,
// grouped by risk, with optional per-phase priority lists.
type ToxicityProfile struct {
	HighRisk      []string                `json:"high_risk,omitempty"`
	ModerateRisk  []string                `json:"moderate_risk,omitempty"`
	LowRisk       []string                `json:"low_risk,omitempty"`
	PhasePriority map[CyclePhase][]string `json:"phase_priority,omitempty"`
}

// CompositionStep is one ordered step of a regimen's drug-module composition.
// AllCycles true means the step applies to every cycle; otherwise Cycles
// lists the cycle numbers it covers.
type CompositionStep struct {
	Name      string   `json:"name"`
	AllCycles bool     `json:"all_cycles"`
	Cycles    []int    `json:"cycles,omitempty"`
	Drugs     []string `json:"drugs"`
}

// AppliesTo reports whether the step is active for the given cycle number.
func (s CompositionStep) AppliesTo(cycle int) bool {
	if s.AllCycles {
		return true
	}
	for _, c := range s.Cycles {
		if c == cycle {
			return true
		}
	}
	return false
}

// Regimen maps to the regimen table. Immutable reference data describing a
// named chemotherapy protocol.
type Regimen struct {
	ID              uuid.UUID         `db:"id" json:"id"`
	Code            string            `db:"code" json:"code"`
	Name            string            `db:"name" json:"name"`
	CycleLengthDays int               `db:"cycle_length_days" json:"cycle_length_days"`
	NadirStartDay   *int              `db:"nadir_start_day" json:"nadir_start_day,omitempty"`
	NadirEndDay     *int              `db:"nadir_end_day" json:"nadir_end_day,omitempty"`
	Toxicity        ToxicityProfile   `db:"toxicity" json:"toxicity"`
	Composition     []CompositionStep `db:"composition" json:"composition,omitempty"`
	DrugComponents  []string          `db:"drug_components" json:"drug_components,omitempty"`
	CreatedAt       time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time         `db:"updated_at" json:"updated_at"`
}

// HasNadirWindow reports whether the regimen defines a nadir window.
func (r *Regimen) HasNadirWindow() bool {
	return r.NadirStartDay != nil && r.NadirEndDay != nil
}

// SafetyProxy is a monitoring rule attached to a drug module: symptoms
// tracked as early-warning signs for a serious underlying toxicity.
type SafetyProxy struct {
	MonitoringType string   `json:"monitoring_type"`
	ProxySymptoms  []string `json:"proxy_symptoms"`
	Rationale      string   `json:"rationale"`
}

// DrugModule maps to the drug_module table: one drug's symptom and
// safety-monitoring contribution, composable across regimens.
type DrugModule struct {
	ID               uuid.UUID               `db:"id" json:"id"`
	DrugName         string                  `db:"drug_name" json:"drug_name"`
	DrugClass        string                  `db:"drug_class" json:"drug_class,omitempty"`
	DirectSymptoms   []string                `db:"direct_symptoms" json:"direct_symptoms"`
	SafetyProxies    []SafetyProxy           `db:"safety_proxies" json:"safety_proxies,omitempty"`
	PhaseRules       map[string][]CyclePhase `db:"phase_rules" json:"phase_rules,omitempty"`
	Myelosuppressive bool                    `db:"myelosuppressive" json:"myelosuppressive"`
	CreatedAt        time.Time               `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time               `db:"updated_at" json:"updated_at"`
}
