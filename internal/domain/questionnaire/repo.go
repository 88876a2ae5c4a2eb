package questionnaire

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("questionnaire session not found")

type SessionRepository interface {
	Create(ctx context.Context, s *Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*Session, error)
	Update(ctx context.Context, s *Session) error
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Session, int, error)
}

type AnswerRepository interface {
	// Upsert replaces any existing answer for (session_id, item_id).
	Upsert(ctx context.Context, a *Answer) error
	Delete(ctx context.Context, sessionID, itemID uuid.UUID) error
	ListBySession(ctx context.Context, sessionID uuid.UUID) ([]*Answer, error)
}
