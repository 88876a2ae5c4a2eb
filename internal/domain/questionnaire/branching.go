package questionnaire

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
)

// branchThreshold is the answer value at or above which a frequency or
// severity question pulls in its interference companion.
const branchThreshold = 2

// AnswerOutcome reports what one submitted answer did to the live question
// list.
type AnswerOutcome struct {
	// BranchedItems were appended immediately after the answered question.
	BranchedItems []*catalog.SymptomItem `json:"branched_items,omitempty"`
	// SkippedItemIDs should be suppressed going forward.
	SkippedItemIDs []uuid.UUID `json:"skipped_item_ids,omitempty"`
	// InvalidatedItemIDs were previously answered but their answers are now
	// deleted because the new answer covers them with a skip.
	InvalidatedItemIDs []uuid.UUID `json:"invalidated_item_ids,omitempty"`
}

// QuestionQueue is the live state of one in-progress questionnaire: the
// ordered question list, recorded answers, and the skip set. Callers must
// serialize EvaluateAnswer calls for a single session; each call reads the
// answered-so-far state. Separate sessions are independent.
type QuestionQueue struct {
	items   []*catalog.SymptomItem
	inSet   map[uuid.UUID]bool
	answers map[uuid.UUID]int
	skipped map[uuid.UUID]bool
	// full catalog lookup for branch targets not in the initial selection
	catalogByTerm map[string][]*catalog.SymptomItem
}

// NewQuestionQueue builds queue state from a selector result and the full
// catalog (branch targets may live outside the initial selection).
func NewQuestionQueue(selected []SelectedItem, fullCatalog []*catalog.SymptomItem) *QuestionQueue {
	q := &QuestionQueue{
		inSet:         make(map[uuid.UUID]bool),
		answers:       make(map[uuid.UUID]int),
		skipped:       make(map[uuid.UUID]bool),
		catalogByTerm: make(map[string][]*catalog.SymptomItem),
	}
	for _, s := range selected {
		q.items = append(q.items, s.Item)
		q.inSet[s.Item.ID] = true
	}
	for _, item := range fullCatalog {
		q.catalogByTerm[item.SymptomTerm] = append(q.catalogByTerm[item.SymptomTerm], item)
	}
	return q
}

// RestoreAnswer replays a persisted answer without re-running branch or skip
// evaluation, for rebuilding queue state from storage.
func (q *QuestionQueue) RestoreAnswer(itemID uuid.UUID, value int) {
	q.answers[itemID] = value
}

// Items returns the live ordered question list.
func (q *QuestionQueue) Items() []*catalog.SymptomItem { return q.items }

// Answers returns the current answer map keyed by item ID.
func (q *QuestionQueue) Answers() map[uuid.UUID]int { return q.answers }

// IsSkipped reports whether an item is currently suppressed.
func (q *QuestionQueue) IsSkipped(itemID uuid.UUID) bool { return q.skipped[itemID] }

// EvaluateAnswer records an answer and recomputes the skip and branch
// outcomes for that symptom from scratch, using only the answers currently
// on record. Re-submitting the same answer is idempotent: branch targets are
// injected only if absent from both the question list and the answered set.
func (q *QuestionQueue) EvaluateAnswer(itemID uuid.UUID, value int) (*AnswerOutcome, error) {
	item := q.findItem(itemID)
	if item == nil {
		return nil, fmt.Errorf("item %s is not part of this questionnaire", itemID)
	}
	if value < 0 || value > item.MaxScaleValue() {
		return nil, fmt.Errorf("value %d outside response scale for %s", value, item.ItemCode)
	}
	// Skip state is derived from the recorded answers, not the cached skip
	// set, so a queue rebuilt from storage enforces it too.
	if q.termSkips(item.SymptomTerm)[itemID] {
		return nil, fmt.Errorf("item %s is suppressed by an earlier answer", item.ItemCode)
	}

	q.answers[itemID] = value
	outcome := &AnswerOutcome{}

	// Recompute the term's skip set from current answers only; an edited
	// answer fully replaces earlier outcomes.
	newSkips := q.termSkips(item.SymptomTerm)
	for _, sameTerm := range q.sameTermItems(item.SymptomTerm) {
		wasSkipped := q.skipped[sameTerm.ID]
		nowSkipped := newSkips[sameTerm.ID]
		q.skipped[sameTerm.ID] = nowSkipped
		if nowSkipped {
			outcome.SkippedItemIDs = append(outcome.SkippedItemIDs, sameTerm.ID)
			if _, answered := q.answers[sameTerm.ID]; answered && sameTerm.ID != itemID {
				delete(q.answers, sameTerm.ID)
				outcome.InvalidatedItemIDs = append(outcome.InvalidatedItemIDs, sameTerm.ID)
			}
		} else if wasSkipped {
			delete(q.skipped, sameTerm.ID)
		}
	}

	// Branch rule: a moderate or worse frequency/severity answer pulls in
	// the same symptom's interference question.
	branches := item.Attribute == catalog.AttributeFrequency || item.Attribute == catalog.AttributeSeverity
	if branches && value >= branchThreshold {
		if target := q.interferenceFor(item.SymptomTerm); target != nil {
			_, answered := q.answers[target.ID]
			if !q.inSet[target.ID] && !answered && !q.skipped[target.ID] {
				q.insertAfter(itemID, target)
				outcome.BranchedItems = append(outcome.BranchedItems, target)
			}
		}
	}

	return outcome, nil
}

// termSkips derives which of a symptom's items the current answers suppress.
// A zero on the presence-class question skips severity and interference; a
// zero on severity skips interference only.
func (q *QuestionQueue) termSkips(term string) map[uuid.UUID]bool {
	skips := make(map[uuid.UUID]bool)
	for _, item := range q.sameTermItems(term) {
		v, answered := q.answers[item.ID]
		if !answered || v != 0 {
			continue
		}
		switch item.Attribute {
		case catalog.AttributeFrequency, catalog.AttributePresentAbsent:
			q.markAttr(skips, term, catalog.AttributeSeverity)
			q.markAttr(skips, term, catalog.AttributeInterference)
		case catalog.AttributeSeverity:
			q.markAttr(skips, term, catalog.AttributeInterference)
		}
	}
	return skips
}

func (q *QuestionQueue) markAttr(skips map[uuid.UUID]bool, term string, attr catalog.Attribute) {
	for _, item := range q.sameTermItems(term) {
		if item.Attribute == attr {
			skips[item.ID] = true
		}
	}
}

// sameTermItems lists the live questions sharing a symptom term.
func (q *QuestionQueue) sameTermItems(term string) []*catalog.SymptomItem {
	var out []*catalog.SymptomItem
	for _, item := range q.items {
		if item.SymptomTerm == term {
			out = append(out, item)
		}
	}
	return out
}

func (q *QuestionQueue) findItem(itemID uuid.UUID) *catalog.SymptomItem {
	for _, item := range q.items {
		if item.ID == itemID {
			return item
		}
	}
	return nil
}

// interferenceFor finds the interference question for a term, preferring one
// already in the queue, else the full catalog.
func (q *QuestionQueue) interferenceFor(term string) *catalog.SymptomItem {
	for _, item := range q.sameTermItems(term) {
		if item.Attribute == catalog.AttributeInterference {
			return item
		}
	}
	for _, item := range q.catalogByTerm[term] {
		if item.Attribute == catalog.AttributeInterference {
			return item
		}
	}
	return nil
}

// insertAfter places a branch target directly after the question that
// triggered it, so the patient sees the follow-up next.
func (q *QuestionQueue) insertAfter(currentID uuid.UUID, target *catalog.SymptomItem) {
	pos := len(q.items)
	for i, item := range q.items {
		if item.ID == currentID {
			pos = i + 1
			break
		}
	}
	q.items = append(q.items, nil)
	copy(q.items[pos+1:], q.items[pos:])
	q.items[pos] = target
	q.inSet[target.ID] = true
}
