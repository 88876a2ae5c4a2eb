package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	items    SymptomItemRepository
	regimens RegimenRepository
	modules  DrugModuleRepository
}

func NewService(items SymptomItemRepository, regimens RegimenRepository, modules DrugModuleRepository) *Service {
	return &Service{items: items, regimens: regimens, modules: modules}
}

// -- Symptom Item --

func (s *Service) CreateSymptomItem(ctx context.Context, item *SymptomItem) error {
	if item.ItemCode == "" {
		return fmt.Errorf("item_code is required")
	}
	if item.SymptomTerm == "" {
		return fmt.Errorf("symptom_term is required")
	}
	if !item.Attribute.Valid() {
		return fmt.Errorf("invalid attribute: %s", item.Attribute)
	}
	if item.QuestionText == "" {
		return fmt.Errorf("question_text is required")
	}
	if len(item.ResponseScale) < 2 {
		return fmt.Errorf("response_scale must have at least 2 points")
	}
	for i, p := range item.ResponseScale {
		if i > 0 && p.Value <= item.ResponseScale[i-1].Value {
			return fmt.Errorf("response_scale values must be strictly ascending")
		}
	}
	return s.items.Create(ctx, item)
}

func (s *Service) GetSymptomItem(ctx context.Context, id uuid.UUID) (*SymptomItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) UpdateSymptomItem(ctx context.Context, item *SymptomItem) error {
	if item.Attribute != "" && !item.Attribute.Valid() {
		return fmt.Errorf("invalid attribute: %s", item.Attribute)
	}
	return s.items.Update(ctx, item)
}

func (s *Service) DeleteSymptomItem(ctx context.Context, id uuid.UUID) error {
	return s.items.Delete(ctx, id)
}

func (s *Service) ListSymptomItems(ctx context.Context, limit, offset int) ([]*SymptomItem, int, error) {
	return s.items.List(ctx, limit, offset)
}

// -- Regimen --

func (s *Service) CreateRegimen(ctx context.Context, r *Regimen) error {
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	if r.Name == "" {
		return fmt.Errorf("name is required")
	}
	if r.CycleLengthDays <= 0 {
		return fmt.Errorf("cycle_length_days must be positive")
	}
	if (r.NadirStartDay == nil) != (r.NadirEndDay == nil) {
		return fmt.Errorf("nadir window requires both start and end days")
	}
	if r.HasNadirWindow() {
		if *r.NadirStartDay < 1 || *r.NadirEndDay > r.CycleLengthDays {
			return fmt.Errorf("nadir window [%d,%d] outside cycle of %d days",
				*r.NadirStartDay, *r.NadirEndDay, r.CycleLengthDays)
		}
		if *r.NadirStartDay > *r.NadirEndDay {
			return fmt.Errorf("nadir_start_day must not exceed nadir_end_day")
		}
	}
	for phase := range r.Toxicity.PhasePriority {
		if !phase.Valid() {
			return fmt.Errorf("invalid phase in phase_priority: %s", phase)
		}
	}
	for i, step := range r.Composition {
		if len(step.Drugs) == 0 {
			return fmt.Errorf("composition step %d has no drugs", i)
		}
		if !step.AllCycles && len(step.Cycles) == 0 {
			return fmt.Errorf("composition step %d covers no cycles", i)
		}
	}
	return s.regimens.Create(ctx, r)
}

func (s *Service) GetRegimen(ctx context.Context, id uuid.UUID) (*Regimen, error) {
	return s.regimens.GetByID(ctx, id)
}

func (s *Service) GetRegimenByCode(ctx context.Context, code string) (*Regimen, error) {
	return s.regimens.GetByCode(ctx, code)
}

func (s *Service) UpdateRegimen(ctx context.Context, r *Regimen) error {
	if r.CycleLengthDays <= 0 {
		return fmt.Errorf("cycle_length_days must be positive")
	}
	return s.regimens.Update(ctx, r)
}

func (s *Service) DeleteRegimen(ctx context.Context, id uuid.UUID) error {
	return s.regimens.Delete(ctx, id)
}

func (s *Service) ListRegimens(ctx context.Context, limit, offset int) ([]*Regimen, int, error) {
	return s.regimens.List(ctx, limit, offset)
}

// -- Drug Module --

func (s *Service) CreateDrugModule(ctx context.Context, m *DrugModule) error {
	if m.DrugName == "" {
		return fmt.Errorf("drug_name is required")
	}
	if len(m.DirectSymptoms) == 0 && len(m.SafetyProxies) == 0 {
		return fmt.Errorf("drug module must contribute at least one symptom or safety proxy")
	}
	for _, sp := range m.SafetyProxies {
		if sp.MonitoringType == "" {
			return fmt.Errorf("safety proxy monitoring_type is required")
		}
		if len(sp.ProxySymptoms) == 0 {
			return fmt.Errorf("safety proxy %s has no proxy symptoms", sp.MonitoringType)
		}
	}
	for symptom, phases := range m.PhaseRules {
		if len(phases) == 0 {
			return fmt.Errorf("phase rule for %s has no phases", symptom)
		}
		for _, p := range phases {
			if !p.Valid() {
				return fmt.Errorf("invalid phase %q in rule for %s", p, symptom)
			}
		}
	}
	return s.modules.Create(ctx, m)
}

func (s *Service) GetDrugModule(ctx context.Context, id uuid.UUID) (*DrugModule, error) {
	return s.modules.GetByID(ctx, id)
}

func (s *Service) GetDrugModuleByName(ctx context.Context, drugName string) (*DrugModule, error) {
	return s.modules.GetByName(ctx, drugName)
}

func (s *Service) UpdateDrugModule(ctx context.Context, m *DrugModule) error {
	if m.DrugName == "" {
		return fmt.Errorf("drug_name is required")
	}
	return s.modules.Update(ctx, m)
}

func (s *Service) DeleteDrugModule(ctx context.Context, id uuid.UUID) error {
	return s.modules.Delete(ctx, id)
}

func (s *Service) ListDrugModules(ctx context.Context, limit, offset int) ([]*DrugModule, int, error) {
	return s.modules.List(ctx, limit, offset)
}
