package questionnaire

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
	"github.com/oncopulse/oncopulse/internal/domain/grading"
	"github.com/oncopulse/oncopulse/internal/domain/treatment"
	"github.com/oncopulse/oncopulse/internal/domain/triage"
)

// CompletionResult is the full outcome of closing a session: one grading
// result per answered symptom plus the alerts they triggered.
type CompletionResult struct {
	SessionID      uuid.UUID        `json:"session_id"`
	Results        []grading.Result `json:"results"`
	Alerts         []triage.Alert   `json:"alerts"`
	ToxicityBurden float64          `json:"toxicity_burden"`
}

type Service struct {
	items      catalog.SymptomItemRepository
	modules    catalog.DrugModuleRepository
	sessions   SessionRepository
	answers    AnswerRepository
	treatments *treatment.Service
	alerts     triage.AlertRepository
	logger     zerolog.Logger
	maxItems   int

	// Answer evaluation within one session must be serialized; each
	// evaluation reads the answered-so-far state.
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func NewService(items catalog.SymptomItemRepository, modules catalog.DrugModuleRepository,
	sessions SessionRepository, answers AnswerRepository, treatments *treatment.Service,
	alerts triage.AlertRepository, logger zerolog.Logger, maxItems int) *Service {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	return &Service{
		items:      items,
		modules:    modules,
		sessions:   sessions,
		answers:    answers,
		treatments: treatments,
		alerts:     alerts,
		logger:     logger,
		maxItems:   maxItems,
		locks:      make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *Service) sessionLock(id uuid.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// Generate builds a questionnaire for the patient's current treatment
// context and opens a session around it.
func (s *Service) Generate(ctx context.Context, patientID uuid.UUID, method SelectionMethod, at time.Time) (*GenerationResult, *Session, error) {
	if !method.Valid() {
		return nil, nil, fmt.Errorf("invalid selection method: %s", method)
	}

	tc, err := s.treatments.BuildContext(ctx, patientID, at)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load symptom catalog: %w", err)
	}
	history, err := s.treatments.GetSymptomHistory(ctx, patientID)
	if err != nil {
		return nil, nil, fmt.Errorf("load symptom history: %w", err)
	}

	var result GenerationResult
	switch method {
	case MethodRegimen:
		result = SelectByRegimen(items, tc, history)
	case MethodDrugModule:
		activeDrugs, _ := ResolveActiveDrugs(tc.Regimen, tc.CycleNumber)
		modules, err := s.modules.ListByNames(ctx, activeDrugs)
		if err != nil {
			return nil, nil, fmt.Errorf("load drug modules: %w", err)
		}
		result = SelectByDrugModules(items, modules, tc, history, s.maxItems)
	}

	session := &Session{
		PatientID: patientID,
		Method:    method,
		Status:    "in_progress",
		ItemIDs:   itemIDs(result.Items),
		Metadata:  result.Metadata,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, nil, fmt.Errorf("create session: %w", err)
	}
	return &result, session, nil
}

func itemIDs(items []SelectedItem) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.Item.ID)
	}
	return ids
}

func (s *Service) GetSession(ctx context.Context, id uuid.UUID) (*Session, error) {
	return s.sessions.GetByID(ctx, id)
}

func (s *Service) ListPatientSessions(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Session, int, error) {
	return s.sessions.ListByPatient(ctx, patientID, limit, offset)
}

// rebuildQueue reconstructs live queue state from the persisted session and
// its answers.
func (s *Service) rebuildQueue(ctx context.Context, session *Session) (*QuestionQueue, []*catalog.SymptomItem, error) {
	all, err := s.items.ListAll(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load symptom catalog: %w", err)
	}
	byID := make(map[uuid.UUID]*catalog.SymptomItem, len(all))
	for _, item := range all {
		byID[item.ID] = item
	}

	selected := make([]SelectedItem, 0, len(session.ItemIDs))
	for _, id := range session.ItemIDs {
		item, ok := byID[id]
		if !ok {
			return nil, nil, fmt.Errorf("session item %s not found in catalog", id)
		}
		selected = append(selected, SelectedItem{Item: item})
	}

	q := NewQuestionQueue(selected, all)
	answers, err := s.answers.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("load answers: %w", err)
	}
	for _, a := range answers {
		q.RestoreAnswer(a.ItemID, a.Value)
	}
	return q, all, nil
}

// SubmitAnswer records one answer and applies the skip and branch rules. The
// returned outcome names newly injected questions, suppressed items, and
// invalidated prior answers.
func (s *Service) SubmitAnswer(ctx context.Context, sessionID, itemID uuid.UUID, value int) (*AnswerOutcome, error) {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != "in_progress" {
		return nil, fmt.Errorf("session %s is %s, not accepting answers", sessionID, session.Status)
	}

	q, _, err := s.rebuildQueue(ctx, session)
	if err != nil {
		return nil, err
	}

	outcome, err := q.EvaluateAnswer(itemID, value)
	if err != nil {
		return nil, err
	}

	if err := s.answers.Upsert(ctx, &Answer{SessionID: sessionID, ItemID: itemID, Value: value}); err != nil {
		return nil, fmt.Errorf("record answer: %w", err)
	}
	for _, invalidated := range outcome.InvalidatedItemIDs {
		if err := s.answers.Delete(ctx, sessionID, invalidated); err != nil {
			return nil, fmt.Errorf("delete invalidated answer: %w", err)
		}
	}

	live := q.Items()
	session.ItemIDs = make([]uuid.UUID, 0, len(live))
	for _, item := range live {
		session.ItemIDs = append(session.ItemIDs, item.ID)
	}
	session.Position++
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	return outcome, nil
}

// Complete grades the session's answers, derives alerts, persists them, and
// updates the patient's symptom history. Alert persistence failures are
// logged but never suppress the computed alerts; a stored copy is best
// effort, the returned alerts are the contract.
func (s *Service) Complete(ctx context.Context, sessionID uuid.UUID) (*CompletionResult, error) {
	l := s.sessionLock(sessionID)
	l.Lock()
	defer l.Unlock()

	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != "in_progress" {
		return nil, fmt.Errorf("session %s is already %s", sessionID, session.Status)
	}

	q, all, err := s.rebuildQueue(ctx, session)
	if err != nil {
		return nil, err
	}

	results, err := s.gradeAnswers(q, all)
	if err != nil {
		return nil, err
	}

	history, err := s.treatments.GetSymptomHistory(ctx, session.PatientID)
	if err != nil {
		return nil, fmt.Errorf("load symptom history: %w", err)
	}
	prevGrades := make(map[string]int, len(history))
	for _, h := range history {
		prevGrades[h.SymptomTerm] = h.LastGrade
	}

	trends := make(map[string]treatment.Trend, len(results))
	for _, res := range results {
		prev, known := prevGrades[res.SymptomTerm]
		if known {
			trends[res.SymptomTerm] = grading.ClassifyTrend(prev, res.Grade)
		} else {
			trends[res.SymptomTerm] = treatment.TrendStable
		}
	}

	alerts := triage.DeriveAlerts(results, triage.AlertContext{
		InNadirWindow: session.Metadata.InNadirWindow,
		Trends:        trends,
	})

	now := time.Now()
	for i := range alerts {
		alerts[i].PatientID = session.PatientID
		alerts[i].SessionID = &session.ID
		alerts[i].CreatedAt = now
		if s.alerts == nil {
			continue
		}
		if err := s.alerts.Create(ctx, &alerts[i]); err != nil {
			// The computed alert still goes back to the caller; storage is
			// not allowed to hide a detected emergency.
			s.logger.Error().Err(err).
				Str("patient_id", session.PatientID.String()).
				Str("symptom", alerts[i].SymptomTerm).
				Str("severity", string(alerts[i].Severity)).
				Msg("failed to persist triage alert")
		}
	}

	for _, res := range results {
		h := &treatment.SymptomHistory{
			PatientID:      session.PatientID,
			SymptomTerm:    res.SymptomTerm,
			LastGrade:      res.Grade,
			Trend:          trends[res.SymptomTerm],
			LastReportedAt: now,
		}
		if err := s.treatments.RecordSymptomHistory(ctx, h); err != nil {
			s.logger.Error().Err(err).
				Str("patient_id", session.PatientID.String()).
				Str("symptom", res.SymptomTerm).
				Msg("failed to update symptom history")
		}
	}

	session.Status = "completed"
	session.CompletedAt = &now
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, fmt.Errorf("complete session: %w", err)
	}

	return &CompletionResult{
		SessionID:      session.ID,
		Results:        results,
		Alerts:         alerts,
		ToxicityBurden: grading.ToxicityBurden(results),
	}, nil
}

// gradeAnswers groups the recorded answers by symptom term and grades each
// group. An answer whose item cannot be mapped back to a symptom term is a
// fatal error; silently dropping it would lose a reported symptom.
func (s *Service) gradeAnswers(q *QuestionQueue, all []*catalog.SymptomItem) ([]grading.Result, error) {
	byID := make(map[uuid.UUID]*catalog.SymptomItem, len(all))
	for _, item := range all {
		byID[item.ID] = item
	}

	grouped := make(map[string]*grading.Responses)
	var terms []string
	for itemID, value := range q.Answers() {
		if q.IsSkipped(itemID) {
			continue
		}
		item, ok := byID[itemID]
		if !ok {
			return nil, fmt.Errorf("answered item %s not found in catalog", itemID)
		}
		if strings.TrimSpace(item.SymptomTerm) == "" {
			return nil, fmt.Errorf("item %s has no symptom term, cannot grade", item.ItemCode)
		}
		r, ok := grouped[item.SymptomTerm]
		if !ok {
			r = &grading.Responses{}
			grouped[item.SymptomTerm] = r
			terms = append(terms, item.SymptomTerm)
		}
		v := value
		switch {
		case item.Attribute.IsPresenceClass():
			r.Frequency = &v
		case item.Attribute == catalog.AttributeSeverity:
			r.Severity = &v
		case item.Attribute == catalog.AttributeInterference:
			r.Interference = &v
		}
	}

	// Map iteration order is random; emit results in a stable term order.
	sort.Strings(terms)

	results := make([]grading.Result, 0, len(terms))
	for _, term := range terms {
		responses := *grouped[term]
		if violations := grading.ValidateResponses(term, responses); len(violations) > 0 {
			return nil, fmt.Errorf("invalid responses: %s", strings.Join(violations, "; "))
		}
		results = append(results, grading.CompositeGrade(term, responses))
	}
	return results, nil
}
