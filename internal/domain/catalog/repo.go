package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Not-found conditions are sentinel errors so callers can distinguish missing
// reference data from infrastructure failures. The engine never substitutes
// defaults for a missing regimen or item.
var (
	ErrSymptomItemNotFound = errors.New("symptom item not found")
	ErrRegimenNotFound     = errors.New("regimen not found")
	ErrDrugModuleNotFound  = errors.New("drug module not found")
)

type SymptomItemRepository interface {
	Create(ctx context.Context, item *SymptomItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*SymptomItem, error)
	GetByCode(ctx context.Context, code string) (*SymptomItem, error)
	Update(ctx context.Context, item *SymptomItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*SymptomItem, int, error)
	// ListAll returns the full catalog in stable catalog order.
	ListAll(ctx context.Context) ([]*SymptomItem, error)
}

type RegimenRepository interface {
	Create(ctx context.Context, r *Regimen) error
	GetByID(ctx context.Context, id uuid.UUID) (*Regimen, error)
	GetByCode(ctx context.Context, code string) (*Regimen, error)
	Update(ctx context.Context, r *Regimen) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*Regimen, int, error)
}

type DrugModuleRepository interface {
	Create(ctx context.Context, m *DrugModule) error
	GetByID(ctx context.Context, id uuid.UUID) (*DrugModule, error)
	GetByName(ctx context.Context, drugName string) (*DrugModule, error)
	// ListByNames resolves drug names to modules, preserving input order.
	// A name with no module is a not-found condition, not a silent skip.
	ListByNames(ctx context.Context, drugNames []string) ([]*DrugModule, error)
	Update(ctx context.Context, m *DrugModule) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*DrugModule, int, error)
}
