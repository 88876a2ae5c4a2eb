package questionnaire

import (
	"github.com/oncopulse/oncopulse/internal/domain/catalog"
	"github.com/oncopulse/oncopulse/internal/domain/treatment"
)

// Symptoms worth asking about in each phase when a regimen defines no
// phase-specific priorities of its own.
var universalPhaseSymptoms = map[catalog.CyclePhase][]string{
	catalog.PhasePostSession: {"nausea", "vomiting", "fatigue", "appetite_loss"},
	catalog.PhaseRecovery:    {"fatigue", "constipation", "diarrhea", "mouth_sores"},
	catalog.PhaseNadir:       {"infection_signs", "fever", "bleeding", "bruising", "chills"},
	catalog.PhasePreSession:  {"fatigue", "numbness_tingling", "mood", "pain"},
	catalog.PhaseInterCycle:  {"fatigue", "pain", "numbness_tingling", "insomnia"},
}

// SelectByRegimen builds a questionnaire from the regimen's toxicity profile
// alone. The candidate set narrows through the high-risk filter and the
// phase-priority filter, gets scored by history, completed per symptom
// group, and returned in full; no cap is applied because the branching
// engine bounds real completion length.
func SelectByRegimen(items []*catalog.SymptomItem, tc *treatment.TreatmentContext, history []*treatment.SymptomHistory) GenerationResult {
	idx := indexCatalog(items)
	hist := historyByTerm(history)
	r := tc.Regimen

	candidates := items
	if len(r.Toxicity.HighRisk) > 0 {
		highRisk := toSet(r.Toxicity.HighRisk)
		candidates = filterByTerm(candidates, highRisk)
	}

	phaseTerms := r.Toxicity.PhasePriority[tc.Phase]
	if len(phaseTerms) == 0 {
		phaseTerms = universalPhaseSymptoms[tc.Phase]
	}
	candidates = filterByTerm(candidates, toSet(phaseTerms))

	selected := completeSelection(candidates, idx, hist)

	return GenerationResult{
		Items: selected,
		Metadata: GenerationMetadata{
			Method:        MethodRegimen,
			RegimenCode:   r.Code,
			Phase:         tc.Phase,
			TreatmentDay:  tc.TreatmentDay,
			InNadirWindow: tc.InNadirWindow,
		},
	}
}

func toSet(terms []string) map[string]bool {
	set := make(map[string]bool, len(terms))
	for _, t := range terms {
		set[t] = true
	}
	return set
}

func filterByTerm(items []*catalog.SymptomItem, allowed map[string]bool) []*catalog.SymptomItem {
	var out []*catalog.SymptomItem
	for _, item := range items {
		if allowed[item.SymptomTerm] {
			out = append(out, item)
		}
	}
	return out
}
