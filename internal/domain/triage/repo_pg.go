package triage

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

type alertRepoPG struct{ pool *pgxpool.Pool }

func NewAlertRepoPG(pool *pgxpool.Pool) AlertRepository {
	return &alertRepoPG{pool: pool}
}

func (r *alertRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const alertCols = `id, patient_id, session_id, severity, alert_type, symptom_term, grade,
	patient_instruction, clinician_instruction, requires_immediate, acknowledged, created_at`

func (r *alertRepoPG) scanAlert(row pgx.Row) (*Alert, error) {
	var a Alert
	err := row.Scan(&a.ID, &a.PatientID, &a.SessionID, &a.Severity, &a.Type, &a.SymptomTerm,
		&a.Grade, &a.PatientInstruction, &a.ClinicianInstruction, &a.RequiresImmediate,
		&a.Acknowledged, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAlertNotFound
	}
	return &a, err
}

func (r *alertRepoPG) Create(ctx context.Context, a *Alert) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO triage_alert (id, patient_id, session_id, severity, alert_type, symptom_term,
			grade, patient_instruction, clinician_instruction, requires_immediate)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		a.ID, a.PatientID, a.SessionID, a.Severity, a.Type, a.SymptomTerm,
		a.Grade, a.PatientInstruction, a.ClinicianInstruction, a.RequiresImmediate)
	return err
}

func (r *alertRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	return r.scanAlert(r.conn(ctx).QueryRow(ctx, `SELECT `+alertCols+` FROM triage_alert WHERE id = $1`, id))
}

func (r *alertRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Alert, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM triage_alert WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+alertCols+` FROM triage_alert WHERE patient_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *alertRepoPG) ListUnacknowledged(ctx context.Context, limit, offset int) ([]*Alert, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM triage_alert WHERE NOT acknowledged`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+alertCols+` FROM triage_alert WHERE NOT acknowledged
		ORDER BY CASE severity WHEN 'red' THEN 0 WHEN 'yellow' THEN 1 ELSE 2 END, created_at
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *alertRepoPG) collect(rows pgx.Rows, total int) ([]*Alert, int, error) {
	var alerts []*Alert
	for rows.Next() {
		a, err := r.scanAlert(rows)
		if err != nil {
			return nil, 0, err
		}
		alerts = append(alerts, a)
	}
	return alerts, total, rows.Err()
}

func (r *alertRepoPG) Acknowledge(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE triage_alert SET acknowledged = TRUE WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAlertNotFound
	}
	return nil
}
