package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oncopulse/oncopulse/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// =========== Symptom Item Repository ===========

type symptomItemRepoPG struct{ pool *pgxpool.Pool }

func NewSymptomItemRepoPG(pool *pgxpool.Pool) SymptomItemRepository {
	return &symptomItemRepoPG{pool: pool}
}

func (r *symptomItemRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const itemCols = `id, item_code, symptom_term, attribute, question_text, response_scale, created_at, updated_at`

func (r *symptomItemRepoPG) scanItem(row pgx.Row) (*SymptomItem, error) {
	var item SymptomItem
	err := row.Scan(&item.ID, &item.ItemCode, &item.SymptomTerm, &item.Attribute,
		&item.QuestionText, &item.ResponseScale, &item.CreatedAt, &item.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSymptomItemNotFound
	}
	return &item, err
}

func (r *symptomItemRepoPG) Create(ctx context.Context, item *SymptomItem) error {
	item.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO symptom_item (id, item_code, symptom_term, attribute, question_text, response_scale)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		item.ID, item.ItemCode, item.SymptomTerm, item.Attribute, item.QuestionText, item.ResponseScale)
	return err
}

func (r *symptomItemRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*SymptomItem, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM symptom_item WHERE id = $1`, id))
}

func (r *symptomItemRepoPG) GetByCode(ctx context.Context, code string) (*SymptomItem, error) {
	return r.scanItem(r.conn(ctx).QueryRow(ctx, `SELECT `+itemCols+` FROM symptom_item WHERE item_code = $1`, code))
}

func (r *symptomItemRepoPG) Update(ctx context.Context, item *SymptomItem) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE symptom_item SET item_code=$2, symptom_term=$3, attribute=$4,
			question_text=$5, response_scale=$6, updated_at=NOW()
		WHERE id = $1`,
		item.ID, item.ItemCode, item.SymptomTerm, item.Attribute, item.QuestionText, item.ResponseScale)
	return err
}

func (r *symptomItemRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM symptom_item WHERE id = $1`, id)
	return err
}

func (r *symptomItemRepoPG) List(ctx context.Context, limit, offset int) ([]*SymptomItem, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM symptom_item`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+itemCols+` FROM symptom_item ORDER BY symptom_term, attribute LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*SymptomItem
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *symptomItemRepoPG) ListAll(ctx context.Context) ([]*SymptomItem, error) {
	// Catalog order is creation order; the selectors rely on it for stable ties.
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+itemCols+` FROM symptom_item ORDER BY created_at, item_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SymptomItem
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// =========== Regimen Repository ===========

type regimenRepoPG struct{ pool *pgxpool.Pool }

func NewRegimenRepoPG(pool *pgxpool.Pool) RegimenRepository {
	return &regimenRepoPG{pool: pool}
}

func (r *regimenRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const regimenCols = `id, code, name, cycle_length_days, nadir_start_day, nadir_end_day,
	toxicity, composition, drug_components, created_at, updated_at`

func (r *regimenRepoPG) scanRegimen(row pgx.Row) (*Regimen, error) {
	var reg Regimen
	err := row.Scan(&reg.ID, &reg.Code, &reg.Name, &reg.CycleLengthDays,
		&reg.NadirStartDay, &reg.NadirEndDay, &reg.Toxicity, &reg.Composition,
		&reg.DrugComponents, &reg.CreatedAt, &reg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrRegimenNotFound
	}
	return &reg, err
}

func (r *regimenRepoPG) Create(ctx context.Context, reg *Regimen) error {
	reg.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO regimen (id, code, name, cycle_length_days, nadir_start_day, nadir_end_day,
			toxicity, composition, drug_components)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		reg.ID, reg.Code, reg.Name, reg.CycleLengthDays, reg.NadirStartDay, reg.NadirEndDay,
		reg.Toxicity, reg.Composition, reg.DrugComponents)
	return err
}

func (r *regimenRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Regimen, error) {
	return r.scanRegimen(r.conn(ctx).QueryRow(ctx, `SELECT `+regimenCols+` FROM regimen WHERE id = $1`, id))
}

func (r *regimenRepoPG) GetByCode(ctx context.Context, code string) (*Regimen, error) {
	return r.scanRegimen(r.conn(ctx).QueryRow(ctx, `SELECT `+regimenCols+` FROM regimen WHERE code = $1`, code))
}

func (r *regimenRepoPG) Update(ctx context.Context, reg *Regimen) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE regimen SET code=$2, name=$3, cycle_length_days=$4, nadir_start_day=$5,
			nadir_end_day=$6, toxicity=$7, composition=$8, drug_components=$9, updated_at=NOW()
		WHERE id = $1`,
		reg.ID, reg.Code, reg.Name, reg.CycleLengthDays, reg.NadirStartDay, reg.NadirEndDay,
		reg.Toxicity, reg.Composition, reg.DrugComponents)
	return err
}

func (r *regimenRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM regimen WHERE id = $1`, id)
	return err
}

func (r *regimenRepoPG) List(ctx context.Context, limit, offset int) ([]*Regimen, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM regimen`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+regimenCols+` FROM regimen ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Regimen
	for rows.Next() {
		reg, err := r.scanRegimen(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, reg)
	}
	return items, total, rows.Err()
}

// =========== Drug Module Repository ===========

type drugModuleRepoPG struct{ pool *pgxpool.Pool }

func NewDrugModuleRepoPG(pool *pgxpool.Pool) DrugModuleRepository {
	return &drugModuleRepoPG{pool: pool}
}

func (r *drugModuleRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const moduleCols = `id, drug_name, drug_class, direct_symptoms, safety_proxies,
	phase_rules, myelosuppressive, created_at, updated_at`

func (r *drugModuleRepoPG) scanModule(row pgx.Row) (*DrugModule, error) {
	var m DrugModule
	err := row.Scan(&m.ID, &m.DrugName, &m.DrugClass, &m.DirectSymptoms, &m.SafetyProxies,
		&m.PhaseRules, &m.Myelosuppressive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrDrugModuleNotFound
	}
	return &m, err
}

func (r *drugModuleRepoPG) Create(ctx context.Context, m *DrugModule) error {
	m.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO drug_module (id, drug_name, drug_class, direct_symptoms, safety_proxies,
			phase_rules, myelosuppressive)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		m.ID, m.DrugName, m.DrugClass, m.DirectSymptoms, m.SafetyProxies,
		m.PhaseRules, m.Myelosuppressive)
	return err
}

func (r *drugModuleRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*DrugModule, error) {
	return r.scanModule(r.conn(ctx).QueryRow(ctx, `SELECT `+moduleCols+` FROM drug_module WHERE id = $1`, id))
}

func (r *drugModuleRepoPG) GetByName(ctx context.Context, drugName string) (*DrugModule, error) {
	return r.scanModule(r.conn(ctx).QueryRow(ctx, `SELECT `+moduleCols+` FROM drug_module WHERE drug_name = $1`, drugName))
}

func (r *drugModuleRepoPG) ListByNames(ctx context.Context, drugNames []string) ([]*DrugModule, error) {
	modules := make([]*DrugModule, 0, len(drugNames))
	for _, name := range drugNames {
		m, err := r.GetByName(ctx, name)
		if err != nil {
			if errors.Is(err, ErrDrugModuleNotFound) {
				return nil, fmt.Errorf("drug %s: %w", name, ErrDrugModuleNotFound)
			}
			return nil, err
		}
		modules = append(modules, m)
	}
	return modules, nil
}

func (r *drugModuleRepoPG) Update(ctx context.Context, m *DrugModule) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE drug_module SET drug_name=$2, drug_class=$3, direct_symptoms=$4,
			safety_proxies=$5, phase_rules=$6, myelosuppressive=$7, updated_at=NOW()
		WHERE id = $1`,
		m.ID, m.DrugName, m.DrugClass, m.DirectSymptoms, m.SafetyProxies,
		m.PhaseRules, m.Myelosuppressive)
	return err
}

func (r *drugModuleRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM drug_module WHERE id = $1`, id)
	return err
}

func (r *drugModuleRepoPG) List(ctx context.Context, limit, offset int) ([]*DrugModule, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM drug_module`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+moduleCols+` FROM drug_module ORDER BY drug_name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*DrugModule
	for rows.Next() {
		m, err := r.scanModule(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}
