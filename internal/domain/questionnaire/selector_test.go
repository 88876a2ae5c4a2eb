package questionnaire

import (
	"fmt"
	"testing"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
	"github.com/oncopulse/oncopulse/internal/domain/treatment"
)

func nadirContext(r *catalog.Regimen, day, cycle int) *treatment.TreatmentContext {
	return &treatment.TreatmentContext{
		Regimen:       r,
		CycleNumber:   cycle,
		TreatmentDay:  day,
		Phase:         treatment.DetermineCyclePhase(day, r),
		InNadirWindow: treatment.IsInNadirWindow(day, r),
	}
}

func actRegimen() *catalog.Regimen {
	start, end := 7, 12
	return &catalog.Regimen{
		Code:            "AC-T",
		Name:            "AC followed by T",
		CycleLengthDays: 21,
		NadirStartDay:   &start,
		NadirEndDay:     &end,
		Toxicity: catalog.ToxicityProfile{
			HighRisk: []string{"fever", "chills", "infection_signs", "nausea", "fatigue"},
		},
	}
}

func TestSelectByRegimen_NadirScenario(t *testing.T) {
	items := testCatalog("fever", "chills", "infection_signs", "nausea", "fatigue", "pain")
	r := actRegimen()
	tc := nadirContext(r, 9, 1)

	if tc.Phase != catalog.PhaseNadir || !tc.InNadirWindow {
		t.Fatalf("fixture wrong: expected nadir on day 9, got %s", tc.Phase)
	}

	result := SelectByRegimen(items, tc, nil)

	terms := selectedTerms(result.Items)
	if !terms["fever"] || !terms["chills"] {
		t.Errorf("nadir selection must include fever and chills, got %v", keys(terms))
	}
	// Nausea is high-risk but not a nadir-phase symptom.
	if terms["nausea"] {
		t.Error("nausea should be filtered out by the nadir phase list")
	}
	// Pain is not in the high-risk list at all.
	if terms["pain"] {
		t.Error("pain should be filtered out by the high-risk list")
	}

	if result.Metadata.Method != MethodRegimen || result.Metadata.RegimenCode != "AC-T" {
		t.Errorf("unexpected metadata: %+v", result.Metadata)
	}
	if result.Metadata.TreatmentDay != 9 || !result.Metadata.InNadirWindow {
		t.Errorf("metadata must carry the originating context: %+v", result.Metadata)
	}
}

func TestSelectByRegimen_PhasePriorityOverridesUniversal(t *testing.T) {
	items := testCatalog("fever", "diarrhea")
	r := actRegimen()
	r.Toxicity.HighRisk = []string{"fever", "diarrhea"}
	r.Toxicity.PhasePriority = map[catalog.CyclePhase][]string{
		catalog.PhaseNadir: {"diarrhea"},
	}
	tc := nadirContext(r, 9, 1)

	result := SelectByRegimen(items, tc, nil)
	terms := selectedTerms(result.Items)
	if !terms["diarrhea"] || terms["fever"] {
		t.Errorf("regimen phase priority must override the universal table, got %v", keys(terms))
	}
}

func TestSelectByRegimen_NoCap(t *testing.T) {
	// 60 symptoms, all high-risk and all in the phase list, produce more
	// than the drug-module cap would allow.
	var terms []string
	for i := 0; i < 60; i++ {
		terms = append(terms, fmt.Sprintf("symptom_%02d", i))
	}
	items := testCatalog(terms...)
	r := actRegimen()
	r.Toxicity.HighRisk = terms
	r.Toxicity.PhasePriority = map[catalog.CyclePhase][]string{catalog.PhaseNadir: terms}
	tc := nadirContext(r, 9, 1)

	result := SelectByRegimen(items, tc, nil)
	if len(result.Items) != 180 {
		t.Errorf("regimen selector must not cap: expected 180 items, got %d", len(result.Items))
	}
}

func TestResolveActiveDrugs(t *testing.T) {
	r := actRegimen()
	r.Composition = []catalog.CompositionStep{
		{Name: "AC", Cycles: []int{1, 2, 3, 4}, Drugs: []string{"doxorubicin", "cyclophosphamide"}},
		{Name: "T", Cycles: []int{5, 6, 7, 8}, Drugs: []string{"paclitaxel"}},
	}

	drugs, step := ResolveActiveDrugs(r, 2)
	if step != "AC" || len(drugs) != 2 {
		t.Errorf("cycle 2: expected AC step, got %q %v", step, drugs)
	}

	drugs, step = ResolveActiveDrugs(r, 6)
	if step != "T" || len(drugs) != 1 || drugs[0] != "paclitaxel" {
		t.Errorf("cycle 6: expected T step, got %q %v", step, drugs)
	}

	// First matching step wins when steps overlap.
	r.Composition = []catalog.CompositionStep{
		{Name: "first", AllCycles: true, Drugs: []string{"a"}},
		{Name: "second", AllCycles: true, Drugs: []string{"b"}},
	}
	if _, step = ResolveActiveDrugs(r, 1); step != "first" {
		t.Errorf("expected first matching step, got %q", step)
	}

	// No composition falls back to the flat component list.
	r.Composition = nil
	r.DrugComponents = []string{"oxaliplatin"}
	drugs, step = ResolveActiveDrugs(r, 1)
	if step != "" || len(drugs) != 1 || drugs[0] != "oxaliplatin" {
		t.Errorf("expected fallback to drug components, got %q %v", step, drugs)
	}
}

func TestUnionSymptoms_SafetyProxyWins(t *testing.T) {
	drugA := &catalog.DrugModule{
		DrugName: "drug_a",
		SafetyProxies: []catalog.SafetyProxy{
			{MonitoringType: "neutropenia", ProxySymptoms: []string{"fever"}},
		},
	}
	drugB := &catalog.DrugModule{
		DrugName:       "drug_b",
		DirectSymptoms: []string{"fever"},
		PhaseRules: map[string][]catalog.CyclePhase{
			"fever": {catalog.PhaseNadir},
		},
	}

	for _, order := range [][]*catalog.DrugModule{{drugA, drugB}, {drugB, drugA}} {
		sources, raw := UnionSymptoms(order)
		if raw != 2 {
			t.Errorf("expected 2 raw contributions, got %d", raw)
		}
		if len(sources) != 1 {
			t.Fatalf("expected 1 unioned source, got %d", len(sources))
		}
		src := sources[0]
		if !src.IsSafetyProxy {
			t.Error("safety-proxy status must be sticky regardless of module order")
		}
		if len(src.PhaseRestriction) != 0 {
			t.Errorf("safety-proxy symptom must carry no phase restriction, got %v", src.PhaseRestriction)
		}
		if len(src.ContributingDrugs) != 2 {
			t.Errorf("expected both drugs recorded, got %v", src.ContributingDrugs)
		}
	}
}

func TestSelectByDrugModules_PhaseFilterExemptsProxies(t *testing.T) {
	items := testCatalog("fever", "cold_sensitivity", "nausea")
	r := actRegimen()
	r.Composition = []catalog.CompositionStep{
		{Name: "main", AllCycles: true, Drugs: []string{"oxaliplatin"}},
	}
	modules := []*catalog.DrugModule{{
		DrugName:       "oxaliplatin",
		DirectSymptoms: []string{"cold_sensitivity", "nausea"},
		PhaseRules: map[string][]catalog.CyclePhase{
			"cold_sensitivity": {catalog.PhasePostSession},
		},
		SafetyProxies: []catalog.SafetyProxy{
			{MonitoringType: "neutropenia", ProxySymptoms: []string{"fever"}},
		},
	}}
	tc := nadirContext(r, 9, 1)

	result := SelectByDrugModules(items, modules, tc, nil, 0)
	terms := selectedTerms(result.Items)

	if !terms["fever"] {
		t.Error("safety-proxy symptom must survive phase filtering")
	}
	if terms["cold_sensitivity"] {
		t.Error("phase-restricted symptom must be filtered outside its phases")
	}
	if !terms["nausea"] {
		t.Error("unrestricted symptom must survive")
	}
	if !result.Metadata.PhaseFilteringApplied {
		t.Error("metadata must record that phase filtering removed something")
	}
	if result.Metadata.UnionedSymptomCount != 3 {
		t.Errorf("expected 3 unioned symptoms, got %d", result.Metadata.UnionedSymptomCount)
	}
	if result.Metadata.StepName != "main" {
		t.Errorf("expected step name in metadata, got %q", result.Metadata.StepName)
	}
}

func TestSelectByDrugModules_Cap(t *testing.T) {
	var terms []string
	for i := 0; i < 40; i++ {
		terms = append(terms, fmt.Sprintf("symptom_%02d", i))
	}
	items := testCatalog(terms...)
	r := actRegimen()
	r.Composition = []catalog.CompositionStep{{Name: "main", AllCycles: true, Drugs: []string{"drug_x"}}}
	modules := []*catalog.DrugModule{{DrugName: "drug_x", DirectSymptoms: terms}}
	tc := nadirContext(r, 9, 1)

	// The cap lands on a symptom-group boundary, so three-item groups trim
	// to the largest multiple of three under the limit.
	capped := SelectByDrugModules(items, modules, tc, nil, 0)
	if len(capped.Items) != 48 {
		t.Errorf("expected 16 whole groups under the default cap of %d, got %d items", DefaultMaxItems, len(capped.Items))
	}

	custom := SelectByDrugModules(items, modules, tc, nil, 10)
	if len(custom.Items) != 9 {
		t.Errorf("expected 3 whole groups under a cap of 10, got %d items", len(custom.Items))
	}
}

func TestSelectByDrugModules_CapKeepsSymptomGroupsWhole(t *testing.T) {
	items := testCatalog("fatigue", "nausea")
	r := actRegimen()
	r.Composition = []catalog.CompositionStep{{Name: "main", AllCycles: true, Drugs: []string{"drug_x"}}}
	modules := []*catalog.DrugModule{{DrugName: "drug_x", DirectSymptoms: []string{"fatigue", "nausea"}}}
	tc := nadirContext(r, 9, 1)
	history := []*treatment.SymptomHistory{
		{SymptomTerm: "nausea", LastGrade: 3, Trend: treatment.TrendStable},
	}

	// Two 3-item groups against a cap of 4: the whole lower-scored group is
	// dropped rather than cutting the higher one mid-group.
	result := SelectByDrugModules(items, modules, tc, history, 4)
	if len(result.Items) != 3 {
		t.Fatalf("expected one whole group, got %d items", len(result.Items))
	}

	attrs := make(map[catalog.Attribute]bool)
	for _, s := range result.Items {
		if s.Item.SymptomTerm != "nausea" {
			t.Fatalf("the higher-scored group must survive, got item for %q", s.Item.SymptomTerm)
		}
		attrs[s.Item.Attribute] = true
	}
	if !attrs[catalog.AttributeFrequency] || !attrs[catalog.AttributeSeverity] {
		t.Errorf("surviving group lost its presence or severity question: %v", attrs)
	}
}

func TestTruncateToGroups(t *testing.T) {
	items := testCatalog("a", "b", "c")
	var selected []SelectedItem
	for _, item := range items {
		selected = append(selected, SelectedItem{Item: item})
	}

	cases := []struct{ max, want int }{
		{12, 9},
		{9, 9},
		{8, 6},
		{6, 6},
		{5, 3},
		{3, 3},
		{2, 0},
	}
	for _, tc := range cases {
		if got := len(truncateToGroups(selected, tc.max)); got != tc.want {
			t.Errorf("cap %d: got %d items, want %d", tc.max, got, tc.want)
		}
	}
}

func selectedTerms(items []SelectedItem) map[string]bool {
	terms := make(map[string]bool)
	for _, s := range items {
		terms[s.Item.SymptomTerm] = true
	}
	return terms
}

func keys(m map[string]bool) []string {
	var out []string
	for k := range m {
		out = append(out, k)
	}
	return out
}
