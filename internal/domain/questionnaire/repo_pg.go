package questionnaire

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

// =========== Session Repository ===========

type sessionRepoPG struct{ pool *pgxpool.Pool }

func NewSessionRepoPG(pool *pgxpool.Pool) SessionRepository {
	return &sessionRepoPG{pool: pool}
}

func (r *sessionRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const sessionCols = `id, patient_id, method, status, item_ids, position, metadata, created_at, completed_at`

func (r *sessionRepoPG) scanSession(row pgx.Row) (*Session, error) {
	var s Session
	err := row.Scan(&s.ID, &s.PatientID, &s.Method, &s.Status, &s.ItemIDs,
		&s.Position, &s.Metadata, &s.CreatedAt, &s.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	return &s, err
}

func (r *sessionRepoPG) Create(ctx context.Context, s *Session) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO questionnaire_session (id, patient_id, method, status, item_ids, position, metadata)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		s.ID, s.PatientID, s.Method, s.Status, s.ItemIDs, s.Position, s.Metadata)
	return err
}

func (r *sessionRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Session, error) {
	return r.scanSession(r.conn(ctx).QueryRow(ctx,
		`SELECT `+sessionCols+` FROM questionnaire_session WHERE id = $1`, id))
}

func (r *sessionRepoPG) Update(ctx context.Context, s *Session) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE questionnaire_session SET status=$2, item_ids=$3, position=$4, metadata=$5, completed_at=$6
		WHERE id = $1`,
		s.ID, s.Status, s.ItemIDs, s.Position, s.Metadata, s.CompletedAt)
	return err
}

func (r *sessionRepoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Session, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM questionnaire_session WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+sessionCols+` FROM questionnaire_session WHERE patient_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3`, patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var sessions []*Session
	for rows.Next() {
		s, err := r.scanSession(rows)
		if err != nil {
			return nil, 0, err
		}
		sessions = append(sessions, s)
	}
	return sessions, total, rows.Err()
}

// =========== Answer Repository ===========

type answerRepoPG struct{ pool *pgxpool.Pool }

func NewAnswerRepoPG(pool *pgxpool.Pool) AnswerRepository {
	return &answerRepoPG{pool: pool}
}

func (r *answerRepoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

func (r *answerRepoPG) Upsert(ctx context.Context, a *Answer) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO questionnaire_answer (id, session_id, item_id, value)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (session_id, item_id) DO UPDATE SET value = EXCLUDED.value, created_at = NOW()`,
		a.ID, a.SessionID, a.ItemID, a.Value)
	return err
}

func (r *answerRepoPG) Delete(ctx context.Context, sessionID, itemID uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx,
		`DELETE FROM questionnaire_answer WHERE session_id = $1 AND item_id = $2`, sessionID, itemID)
	return err
}

func (r *answerRepoPG) ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*Answer, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, session_id, item_id, value, created_at
		FROM questionnaire_answer WHERE session_id = $1 ORDER BY created_at`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var answers []*Answer
	for rows.Next() {
		var a Answer
		if err := rows.Scan(&a.ID, &a.SessionID, &a.ItemID, &a.Value, &a.CreatedAt); err != nil {
			return nil, err
		}
		answers = append(answers, &a)
	}
	return answers, rows.Err()
}
