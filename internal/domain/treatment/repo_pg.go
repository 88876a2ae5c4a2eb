package treatment

import (
	"context"
	"errors"

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

// =========== Treatment Repository ===========

type treatmentRepoPG struct{ pool *pgxpool.Pool }

func NewTreatmentRepoPG(pool *pgxpool.Pool) TreatmentRepository {
	return &treatmentRepoPG{pool: pool}
}

func (r *treatmentRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const treatmentCols = `id, patient_id, regimen_code, start_date, last_infusion_date,
	next_infusion_date, current_cycle, status, created_at, updated_at`

func (r *treatmentRepoPG) scanTreatment(row pgx.Row) (*Treatment, error) {
	var t Treatment
	err := row.Scan(&t.ID, &t.PatientID, &t.RegimenCode, &t.StartDate, &t.LastInfusionDate,
		&t.NextInfusionDate, &t.CurrentCycle, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTreatmentNotFound
	}
	return &t, err
}

func (r *treatmentRepoPG) Create(ctx context.Context, t *Treatment) error {
	t.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO treatment (id, patient_id, regimen_code, start_date, last_infusion_date,
			next_infusion_date, current_cycle, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		t.ID, t.PatientID, t.RegimenCode, t.StartDate, t.LastInfusionDate,
		t.NextInfusionDate, t.CurrentCycle, t.Status)
	return err
}

func (r *treatmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Treatment, error) {
	return r.scanTreatment(r.conn(ctx).QueryRow(ctx, `SELECT `+treatmentCols+` FROM treatment WHERE id = $1`, id))
}

func (r *treatmentRepoPG) GetActiveByPatient(ctx context.Context, patientID uuid.UUID) (*Treatment, error) {
	t, err := r.scanTreatment(r.conn(ctx).QueryRow(ctx, `
		SELECT `+treatmentCols+` FROM treatment
		WHERE patient_id = $1 AND status = 'active'
		ORDER BY start_date DESC LIMIT 1`, patientID))
	if errors.Is(err, ErrTreatmentNotFound) {
		return nil, ErrNoActiveTreatment
	}
	return t, err
}

func (r *treatmentRepoPG) Update(ctx context.Context, t *Treatment) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE treatment SET regimen_code=$2, start_date=$3, last_infusion_date=$4,
			next_infusion_date=$5, current_cycle=$6, status=$7, updated_at=NOW()
		WHERE id = $1`,
		t.ID, t.RegimenCode, t.StartDate, t.LastInfusionDate,
		t.NextInfusionDate, t.CurrentCycle, t.Status)
	return err
}

func (r *treatmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM treatment WHERE id = $1`, id)
	return err
}

func (r *treatmentRepoPG) List(ctx context.Context, limit, offset int) ([]*Treatment, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM treatment`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+treatmentCols+` FROM treatment ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var items []*Treatment
	for rows.Next() {
		t, err := r.scanTreatment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, t)
	}
	return items, total, rows.Err()
}

// =========== Symptom History Repository ===========

type symptomHistoryRepoPG struct{ pool *pgxpool.Pool }

func NewSymptomHistoryRepoPG(pool *pgxpool.Pool) SymptomHistoryRepository {
	return &symptomHistoryRepoPG{pool: pool}
}

func (r *symptomHistoryRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const historyCols = `id, patient_id, symptom_term, last_grade, trend, last_reported_at`

func (r *symptomHistoryRepoPG) scanHistory(row pgx.Row) (*SymptomHistory, error) {
	var h SymptomHistory
	err := row.Scan(&h.ID, &h.PatientID, &h.SymptomTerm, &h.LastGrade, &h.Trend, &h.LastReportedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSymptomHistoryNotFound
	}
	return &h, err
}

func (r *symptomHistoryRepoPG) Upsert(ctx context.Context, h *SymptomHistory) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO symptom_history (id, patient_id, symptom_term, last_grade, trend, last_reported_at)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (patient_id, symptom_term)
		DO UPDATE SET last_grade = EXCLUDED.last_grade, trend = EXCLUDED.trend,
			last_reported_at = EXCLUDED.last_reported_at`,
		h.ID, h.PatientID, h.SymptomTerm, h.LastGrade, h.Trend, h.LastReportedAt)
	return err
}

func (r *symptomHistoryRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*SymptomHistory, error) {
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+historyCols+` FROM symptom_history WHERE patient_id = $1 ORDER BY symptom_term`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []*SymptomHistory
	for rows.Next() {
		h, err := r.scanHistory(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, h)
	}
	return items, rows.Err()
}

func (r *symptomHistoryRepoPG) GetByPatientAndSymptom(ctx context.Context, patientID uuid.UUID, symptomTerm string) (*SymptomHistory, error) {
	return r.scanHistory(r.conn(ctx).QueryRow(ctx,
		`SELECT `+historyCols+` FROM symptom_history WHERE patient_id = $1 AND symptom_term = $2`,
		patientID, symptomTerm))
}
