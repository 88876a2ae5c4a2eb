package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockSymptomItemRepo struct {
	items map[uuid.UUID]*SymptomItem
}

func newMockSymptomItemRepo() *mockSymptomItemRepo {
	return &mockSymptomItemRepo{items: make(map[uuid.UUID]*SymptomItem)}
}

func (m *mockSymptomItemRepo) Create(ctx context.Context, item *SymptomItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	m.items[item.ID] = item
	return nil
}

func (m *mockSymptomItemRepo) GetByID(ctx context.Context, id uuid.UUID) (*SymptomItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, ErrSymptomItemNotFound
	}
	return item, nil
}

func (m *mockSymptomItemRepo) GetByCode(ctx context.Context, code string) (*SymptomItem, error) {
	for _, item := range m.items {
		if item.ItemCode == code {
			return item, nil
		}
	}
	return nil, ErrSymptomItemNotFound
}

func (m *mockSymptomItemRepo) Update(ctx context.Context, item *SymptomItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *mockSymptomItemRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockSymptomItemRepo) List(ctx context.Context, limit, offset int) ([]*SymptomItem, int, error) {
	var out []*SymptomItem
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, len(out), nil
}

func (m *mockSymptomItemRepo) ListAll(ctx context.Context) ([]*SymptomItem, error) {
	var out []*SymptomItem
	for _, item := range m.items {
		out = append(out, item)
	}
	return out, nil
}

type mockRegimenRepo struct {
	regimens map[uuid.UUID]*Regimen
}

func newMockRegimenRepo() *mockRegimenRepo {
	return &mockRegimenRepo{regimens: make(map[uuid.UUID]*Regimen)}
}

func (m *mockRegimenRepo) Create(ctx context.Context, r *Regimen) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	m.regimens[r.ID] = r
	return nil
}

func (m *mockRegimenRepo) GetByID(ctx context.Context, id uuid.UUID) (*Regimen, error) {
	r, ok := m.regimens[id]
	if !ok {
		return nil, ErrRegimenNotFound
	}
	return r, nil
}

func (m *mockRegimenRepo) GetByCode(ctx context.Context, code string) (*Regimen, error) {
	for _, r := range m.regimens {
		if r.Code == code {
			return r, nil
		}
	}
	return nil, ErrRegimenNotFound
}

func (m *mockRegimenRepo) Update(ctx context.Context, r *Regimen) error {
	m.regimens[r.ID] = r
	return nil
}

func (m *mockRegimenRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.regimens, id)
	return nil
}

func (m *mockRegimenRepo) List(ctx context.Context, limit, offset int) ([]*Regimen, int, error) {
	var out []*Regimen
	for _, r := range m.regimens {
		out = append(out, r)
	}
	return out, len(out), nil
}

type mockDrugModuleRepo struct {
	modules map[uuid.UUID]*DrugModule
}

func newMockDrugModuleRepo() *mockDrugModuleRepo {
	return &mockDrugModuleRepo{modules: make(map[uuid.UUID]*DrugModule)}
}

func (m *mockDrugModuleRepo) Create(ctx context.Context, mod *DrugModule) error {
	if mod.ID == uuid.Nil {
		mod.ID = uuid.New()
	}
	m.modules[mod.ID] = mod
	return nil
}

func (m *mockDrugModuleRepo) GetByID(ctx context.Context, id uuid.UUID) (*DrugModule, error) {
	mod, ok := m.modules[id]
	if !ok {
		return nil, ErrDrugModuleNotFound
	}
	return mod, nil
}

func (m *mockDrugModuleRepo) GetByName(ctx context.Context, drugName string) (*DrugModule, error) {
	for _, mod := range m.modules {
		if mod.DrugName == drugName {
			return mod, nil
		}
	}
	return nil, ErrDrugModuleNotFound
}

func (m *mockDrugModuleRepo) ListByNames(ctx context.Context, drugNames []string) ([]*DrugModule, error) {
	out := make([]*DrugModule, 0, len(drugNames))
	for _, name := range drugNames {
		mod, err := m.GetByName(ctx, name)
		if err != nil {
			return nil, err
		}
		out = append(out, mod)
	}
	return out, nil
}

func (m *mockDrugModuleRepo) Update(ctx context.Context, mod *DrugModule) error {
	m.modules[mod.ID] = mod
	return nil
}

func (m *mockDrugModuleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(m.modules, id)
	return nil
}

func (m *mockDrugModuleRepo) List(ctx context.Context, limit, offset int) ([]*DrugModule, int, error) {
	var out []*DrugModule
	for _, mod := range m.modules {
		out = append(out, mod)
	}
	return out, len(out), nil
}

func newTestService() *Service {
	return NewService(newMockSymptomItemRepo(), newMockRegimenRepo(), newMockDrugModuleRepo())
}

func zeroToFourScale() []ScalePoint {
	return []ScalePoint{
		{Value: 0, Label: "Never"},
		{Value: 1, Label: "Rarely"},
		{Value: 2, Label: "Occasionally"},
		{Value: 3, Label: "Frequently"},
		{Value: 4, Label: "Almost constantly"},
	}
}

func TestService_CreateSymptomItem(t *testing.T) {
	svc := newTestService()

	item := &SymptomItem{
		ItemCode:      "nausea_frequency",
		SymptomTerm:   "nausea",
		Attribute:     AttributeFrequency,
		QuestionText:  "How often did you have nausea?",
		ResponseScale: zeroToFourScale(),
	}
	if err := svc.CreateSymptomItem(nil, item); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if item.ID == uuid.Nil {
		t.Error("expected item ID to be assigned")
	}

	got, err := svc.GetSymptomItem(nil, item.ID)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got.ItemCode != "nausea_frequency" {
		t.Errorf("expected item_code nausea_frequency, got %s", got.ItemCode)
	}
}

func TestService_CreateSymptomItemValidation(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name    string
		item    *SymptomItem
		wantErr string
	}{
		{
			name:    "missing item code",
			item:    &SymptomItem{SymptomTerm: "nausea", Attribute: AttributeFrequency, QuestionText: "q", ResponseScale: zeroToFourScale()},
			wantErr: "item_code",
		},
		{
			name:    "missing symptom term",
			item:    &SymptomItem{ItemCode: "c", Attribute: AttributeFrequency, QuestionText: "q", ResponseScale: zeroToFourScale()},
			wantErr: "symptom_term",
		},
		{
			name:    "invalid attribute",
			item:    &SymptomItem{ItemCode: "c", SymptomTerm: "nausea", Attribute: "intensity", QuestionText: "q", ResponseScale: zeroToFourScale()},
			wantErr: "invalid attribute",
		},
		{
			name:    "single point scale",
			item:    &SymptomItem{ItemCode: "c", SymptomTerm: "nausea", Attribute: AttributeFrequency, QuestionText: "q", ResponseScale: []ScalePoint{{Value: 0, Label: "No"}}},
			wantErr: "at least 2 points",
		},
		{
			name: "non ascending scale",
			item: &SymptomItem{ItemCode: "c", SymptomTerm: "nausea", Attribute: AttributeFrequency, QuestionText: "q",
				ResponseScale: []ScalePoint{{Value: 0, Label: "No"}, {Value: 2, Label: "Some"}, {Value: 1, Label: "Yes"}}},
			wantErr: "strictly ascending",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.CreateSymptomItem(nil, tc.item)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestService_CreateRegimen(t *testing.T) {
	svc := newTestService()

	start, end := 7, 12
	r := &Regimen{
		Code:            "FOLFOX",
		Name:            "FOLFOX (oxaliplatin, 5-FU, leucovorin)",
		CycleLengthDays: 14,
		NadirStartDay:   &start,
		NadirEndDay:     &end,
		Toxicity: ToxicityProfile{
			HighRisk: []string{"numbness_tingling", "diarrhea"},
			PhasePriority: map[CyclePhase][]string{
				PhaseNadir: {"infection_signs", "fever"},
			},
		},
	}
	if err := svc.CreateRegimen(nil, r); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := svc.GetRegimenByCode(nil, "FOLFOX")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !got.HasNadirWindow() {
		t.Error("expected regimen to have a nadir window")
	}
}

func TestService_CreateRegimenValidation(t *testing.T) {
	svc := newTestService()
	start := 7

	cases := []struct {
		name    string
		r       *Regimen
		wantErr string
	}{
		{
			name:    "missing code",
			r:       &Regimen{Name: "n", CycleLengthDays: 21},
			wantErr: "code is required",
		},
		{
			name:    "zero cycle length",
			r:       &Regimen{Code: "X", Name: "n", CycleLengthDays: 0},
			wantErr: "cycle_length_days",
		},
		{
			name:    "half nadir window",
			r:       &Regimen{Code: "X", Name: "n", CycleLengthDays: 21, NadirStartDay: &start},
			wantErr: "both start and end",
		},
		{
			name: "invalid priority phase",
			r: &Regimen{Code: "X", Name: "n", CycleLengthDays: 21,
				Toxicity: ToxicityProfile{PhasePriority: map[CyclePhase][]string{"mid_cycle": {"fatigue"}}}},
			wantErr: "invalid phase",
		},
		{
			name: "empty composition step",
			r: &Regimen{Code: "X", Name: "n", CycleLengthDays: 21,
				Composition: []CompositionStep{{Name: "induction", AllCycles: true}}},
			wantErr: "no drugs",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.CreateRegimen(nil, tc.r)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestService_CreateDrugModule(t *testing.T) {
	svc := newTestService()

	m := &DrugModule{
		DrugName:        "oxaliplatin",
		DrugClass:       "platinum",
		DirectSymptoms:  []string{"numbness_tingling", "cold_sensitivity"},
		Myelosuppressive: true,
		SafetyProxies: []SafetyProxy{
			{MonitoringType: "neutropenia", ProxySymptoms: []string{"fever", "infection_signs"}, Rationale: "CBC not available between visits"},
		},
		PhaseRules: map[string][]CyclePhase{
			"cold_sensitivity": {PhasePostSession, PhaseRecovery},
		},
	}
	if err := svc.CreateDrugModule(nil, m); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	got, err := svc.GetDrugModuleByName(nil, "oxaliplatin")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got.SafetyProxies) != 1 {
		t.Errorf("expected 1 safety proxy, got %d", len(got.SafetyProxies))
	}
}

func TestService_CreateDrugModuleValidation(t *testing.T) {
	svc := newTestService()

	cases := []struct {
		name    string
		m       *DrugModule
		wantErr string
	}{
		{
			name:    "missing drug name",
			m:       &DrugModule{DirectSymptoms: []string{"nausea"}},
			wantErr: "drug_name",
		},
		{
			name:    "no symptoms or proxies",
			m:       &DrugModule{DrugName: "cisplatin"},
			wantErr: "at least one symptom",
		},
		{
			name: "proxy without symptoms",
			m: &DrugModule{DrugName: "cisplatin",
				SafetyProxies: []SafetyProxy{{MonitoringType: "nephrotoxicity"}}},
			wantErr: "no proxy symptoms",
		},
		{
			name: "invalid phase rule",
			m: &DrugModule{DrugName: "cisplatin", DirectSymptoms: []string{"nausea"},
				PhaseRules: map[string][]CyclePhase{"nausea": {"acute"}}},
			wantErr: "invalid phase",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.CreateDrugModule(nil, tc.m)
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error containing %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestCompositionStep_AppliesTo(t *testing.T) {
	all := CompositionStep{Name: "backbone", AllCycles: true, Drugs: []string{"5-FU"}}
	if !all.AppliesTo(1) || !all.AppliesTo(8) {
		t.Error("all-cycles step should apply to every cycle")
	}

	limited := CompositionStep{Name: "induction", Cycles: []int{1, 2, 3, 4}, Drugs: []string{"oxaliplatin"}}
	if !limited.AppliesTo(3) {
		t.Error("step should apply to listed cycle 3")
	}
	if limited.AppliesTo(5) {
		t.Error("step should not apply to unlisted cycle 5")
	}
}
