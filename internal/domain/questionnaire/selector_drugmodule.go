package questionnaire

import (
	"github.com/oncopulse/oncopulse/internal/domain/catalog"
	"github.com/oncopulse/oncopulse/internal/domain/treatment"
)

// DefaultMaxItems caps a drug-module questionnaire when no explicit target
// is configured.
const DefaultMaxItems = 50

// ResolveActiveDrugs walks the regimen's composition steps in order and
// returns the drugs of the first step covering the cycle. Regimens without
// a composition fall back to their flat drug-component list with no step
// name.
func ResolveActiveDrugs(r *catalog.Regimen, cycle int) (drugs []string, stepName string) {
	for _, step := range r.Composition {
		if step.AppliesTo(cycle) {
			return step.Drugs, step.Name
		}
	}
	return r.DrugComponents, ""
}

// UnionSymptoms merges the symptom contributions of the active drug modules
// into per-symptom source records, ordered by first appearance.
//
// Safety-proxy status is sticky: once any drug contributes a symptom as a
// proxy, the record stays a proxy and carries no phase restriction, even if
// another drug lists the same symptom as a direct effect with a phase rule.
// rawCount is the number of contributions before merging.
func UnionSymptoms(modules []*catalog.DrugModule) (sources []SymptomSource, rawCount int) {
	byTerm := make(map[string]*SymptomSource)
	var order []string

	record := func(term, drug string, proxy bool, phases []catalog.CyclePhase) {
		rawCount++
		src, ok := byTerm[term]
		if !ok {
			src = &SymptomSource{SymptomTerm: term}
			byTerm[term] = src
			order = append(order, term)
		}
		if !containsString(src.ContributingDrugs, drug) {
			src.ContributingDrugs = append(src.ContributingDrugs, drug)
		}
		if proxy {
			src.IsSafetyProxy = true
			src.PhaseRestriction = nil
			return
		}
		if src.IsSafetyProxy {
			return
		}
		for _, p := range phases {
			if !containsPhase(src.PhaseRestriction, p) {
				src.PhaseRestriction = append(src.PhaseRestriction, p)
			}
		}
	}

	for _, m := range modules {
		for _, term := range m.DirectSymptoms {
			record(term, m.DrugName, false, m.PhaseRules[term])
		}
		for _, sp := range m.SafetyProxies {
			for _, term := range sp.ProxySymptoms {
				record(term, m.DrugName, true, nil)
			}
		}
	}

	sources = make([]SymptomSource, 0, len(order))
	for _, term := range order {
		sources = append(sources, *byTerm[term])
	}
	return sources, rawCount
}

// filterByPhase keeps sources askable in the current phase: safety proxies
// always survive, as does any source without a phase restriction.
func filterByPhase(sources []SymptomSource, phase catalog.CyclePhase) (kept []SymptomSource, filtered bool) {
	for _, src := range sources {
		if src.IsSafetyProxy || len(src.PhaseRestriction) == 0 || containsPhase(src.PhaseRestriction, phase) {
			kept = append(kept, src)
		} else {
			filtered = true
		}
	}
	return kept, filtered
}

// SelectByDrugModules builds a questionnaire from the drug modules active in
// the current cycle. Unlike the regimen-based selector this one enforces a
// hard cap on item count.
func SelectByDrugModules(items []*catalog.SymptomItem, modules []*catalog.DrugModule, tc *treatment.TreatmentContext, history []*treatment.SymptomHistory, maxItems int) GenerationResult {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	idx := indexCatalog(items)
	hist := historyByTerm(history)

	activeDrugs, stepName := ResolveActiveDrugs(tc.Regimen, tc.CycleNumber)

	active := make([]*catalog.DrugModule, 0, len(modules))
	for _, m := range modules {
		if containsString(activeDrugs, m.DrugName) {
			active = append(active, m)
		}
	}

	sources, rawCount := UnionSymptoms(active)
	kept, filtered := filterByPhase(sources, tc.Phase)

	allowed := make(map[string]bool, len(kept))
	for _, src := range kept {
		allowed[src.SymptomTerm] = true
	}
	candidates := filterByTerm(items, allowed)

	selected := truncateToGroups(completeSelection(candidates, idx, hist), maxItems)

	return GenerationResult{
		Items: selected,
		Metadata: GenerationMetadata{
			Method:                MethodDrugModule,
			RegimenCode:           tc.Regimen.Code,
			Phase:                 tc.Phase,
			TreatmentDay:          tc.TreatmentDay,
			InNadirWindow:         tc.InNadirWindow,
			ActiveDrugs:           activeDrugs,
			StepName:              stepName,
			Sources:               sources,
			RawSymptomCount:       rawCount,
			UnionedSymptomCount:   len(sources),
			PhaseFilteringApplied: filtered,
		},
	}
}

// truncateToGroups trims a selection to at most maxItems without splitting a
// symptom group: the cut lands on a group boundary, dropping whole
// lowest-scored groups from the tail. A presence question never survives the
// cap while its severity companion is cut.
func truncateToGroups(selected []SelectedItem, maxItems int) []SelectedItem {
	if len(selected) <= maxItems {
		return selected
	}
	cut := 0
	for i := 1; i <= len(selected); i++ {
		if i < len(selected) && selected[i].Item.SymptomTerm == selected[i-1].Item.SymptomTerm {
			continue
		}
		if i > maxItems {
			break
		}
		cut = i
	}
	return selected[:cut]
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func containsPhase(list []catalog.CyclePhase, p catalog.CyclePhase) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
