package questionnaire

import (
	"testing"

	"github.com/google/uuid"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
)

// queueFor builds queue state selecting only the given items out of full.
func queueFor(full []*catalog.SymptomItem, selected ...*catalog.SymptomItem) *QuestionQueue {
	var sel []SelectedItem
	for _, item := range selected {
		sel = append(sel, SelectedItem{Item: item})
	}
	return NewQuestionQueue(sel, full)
}

func findByCode(items []*catalog.SymptomItem, code string) *catalog.SymptomItem {
	for _, item := range items {
		if item.ItemCode == code {
			return item
		}
	}
	return nil
}

func TestEvaluateAnswer_BranchesToInterference(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	sev := findByCode(full, "nausea_severity")
	q := queueFor(full, freq, sev)

	outcome, err := q.EvaluateAnswer(freq.ID, 2)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(outcome.BranchedItems) != 1 {
		t.Fatalf("expected 1 branched item, got %d", len(outcome.BranchedItems))
	}
	target := outcome.BranchedItems[0]
	if target.Attribute != catalog.AttributeInterference || target.SymptomTerm != "nausea" {
		t.Errorf("expected nausea interference target, got %s", target.ItemCode)
	}

	// Injected immediately after the triggering question.
	items := q.Items()
	if items[0].ID != freq.ID || items[1].ID != target.ID {
		t.Errorf("branch target must follow the current question, got order %s, %s", items[0].ItemCode, items[1].ItemCode)
	}
}

func TestEvaluateAnswer_BelowThresholdNoBranch(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	q := queueFor(full, freq)

	outcome, err := q.EvaluateAnswer(freq.ID, 1)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(outcome.BranchedItems) != 0 {
		t.Errorf("value 1 must not branch, got %v", outcome.BranchedItems)
	}
}

func TestEvaluateAnswer_Idempotent(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	q := queueFor(full, freq)

	first, err := q.EvaluateAnswer(freq.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(first.BranchedItems) != 1 {
		t.Fatalf("expected a branch on first submission, got %d", len(first.BranchedItems))
	}

	second, err := q.EvaluateAnswer(freq.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.BranchedItems) != 0 {
		t.Error("re-submitting the same answer must not duplicate the branch target")
	}
	if len(q.Items()) != 2 {
		t.Errorf("expected 2 items after duplicate submission, got %d", len(q.Items()))
	}
}

func TestEvaluateAnswer_SkipRules(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	sev := findByCode(full, "nausea_severity")
	intf := findByCode(full, "nausea_interference")
	q := queueFor(full, freq, sev, intf)

	outcome, err := q.EvaluateAnswer(freq.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.SkippedItemIDs) != 2 {
		t.Fatalf("zero frequency must skip severity and interference, got %d skips", len(outcome.SkippedItemIDs))
	}
	if !q.IsSkipped(sev.ID) || !q.IsSkipped(intf.ID) {
		t.Error("severity and interference must be marked skipped")
	}

	// Severity zero alone skips only interference.
	q2 := queueFor(full, freq, sev, intf)
	outcome, err = q2.EvaluateAnswer(sev.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.SkippedItemIDs) != 1 || outcome.SkippedItemIDs[0] != intf.ID {
		t.Errorf("zero severity must skip interference only, got %v", outcome.SkippedItemIDs)
	}
}

func TestEvaluateAnswer_EditInvalidatesCoveredAnswers(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	sev := findByCode(full, "nausea_severity")
	q := queueFor(full, freq, sev)

	if _, err := q.EvaluateAnswer(freq.ID, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := q.EvaluateAnswer(sev.ID, 1); err != nil {
		t.Fatal(err)
	}

	// Editing frequency down to zero covers the answered severity question.
	outcome, err := q.EvaluateAnswer(freq.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.InvalidatedItemIDs) != 1 || outcome.InvalidatedItemIDs[0] != sev.ID {
		t.Fatalf("expected severity answer invalidated, got %v", outcome.InvalidatedItemIDs)
	}
	if _, answered := q.Answers()[sev.ID]; answered {
		t.Error("invalidated answer must be deleted")
	}
}

func TestEvaluateAnswer_EditReversesSkips(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	sev := findByCode(full, "nausea_severity")
	q := queueFor(full, freq, sev)

	if _, err := q.EvaluateAnswer(freq.ID, 0); err != nil {
		t.Fatal(err)
	}
	if !q.IsSkipped(sev.ID) {
		t.Fatal("severity should be skipped after zero frequency")
	}

	// Raising the answer recomputes skips from scratch and also branches.
	outcome, err := q.EvaluateAnswer(freq.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if q.IsSkipped(sev.ID) {
		t.Error("skip must be lifted when the covering answer changes")
	}
	if len(outcome.BranchedItems) != 1 {
		t.Errorf("expected interference branch after edit, got %d", len(outcome.BranchedItems))
	}
}

func TestEvaluateAnswer_RejectsSkippedItem(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	sev := findByCode(full, "nausea_severity")
	q := queueFor(full, freq, sev)

	if _, err := q.EvaluateAnswer(freq.ID, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := q.EvaluateAnswer(sev.ID, 2); err == nil {
		t.Error("expected error answering severity while its presence answer is zero")
	}
	if _, answered := q.Answers()[sev.ID]; answered {
		t.Error("rejected answer must not be recorded")
	}

	// A queue rebuilt from persisted answers enforces the same rule even
	// though the skip set was never recomputed.
	q2 := queueFor(full, freq, sev)
	q2.RestoreAnswer(freq.ID, 0)
	if _, err := q2.EvaluateAnswer(sev.ID, 2); err == nil {
		t.Error("expected error after rebuild from stored answers")
	}

	// Editing the covering answer upward lifts the rejection.
	if _, err := q.EvaluateAnswer(freq.ID, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := q.EvaluateAnswer(sev.ID, 2); err != nil {
		t.Errorf("severity must be answerable once frequency is nonzero: %v", err)
	}
}

func TestEvaluateAnswer_Validation(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	q := queueFor(full, freq)

	if _, err := q.EvaluateAnswer(uuid.New(), 1); err == nil {
		t.Error("expected error for item outside the questionnaire")
	}
	if _, err := q.EvaluateAnswer(freq.ID, 9); err == nil {
		t.Error("expected error for value outside the response scale")
	}
}

func TestEvaluateAnswer_AnsweredTargetNotReinjected(t *testing.T) {
	full := testCatalog("nausea")
	freq := findByCode(full, "nausea_frequency")
	sev := findByCode(full, "nausea_severity")
	intf := findByCode(full, "nausea_interference")
	q := queueFor(full, freq, sev, intf)

	if _, err := q.EvaluateAnswer(intf.ID, 2); err != nil {
		t.Fatal(err)
	}
	outcome, err := q.EvaluateAnswer(freq.ID, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(outcome.BranchedItems) != 0 {
		t.Error("an already-answered interference question must not be re-injected")
	}
}
