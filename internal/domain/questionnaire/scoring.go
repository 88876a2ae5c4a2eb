package questionnaire

import (
	"sort"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
	"github.com/oncopulse/oncopulse/internal/domain/treatment"
)

// HistoryScore weights a symptom by its reported history. Every symptom
// starts at 1; prior moderate or severe grades and a worsening trend push it
// up, a resolving mild symptom drops slightly below baseline.
func HistoryScore(h *treatment.SymptomHistory) float64 {
	score := 1.0
	if h == nil {
		return score
	}
	if h.LastGrade >= 2 {
		score += 2
	}
	if h.LastGrade >= 3 {
		score += 2
	}
	if h.Trend == treatment.TrendWorsening {
		score += 1
	}
	if h.Trend == treatment.TrendImproving && h.LastGrade < 2 {
		score -= 0.5
	}
	return score
}

func historyByTerm(history []*treatment.SymptomHistory) map[string]*treatment.SymptomHistory {
	m := make(map[string]*treatment.SymptomHistory, len(history))
	for _, h := range history {
		m[h.SymptomTerm] = h
	}
	return m
}

// catalogIndex positions every item within the full catalog ordering so
// score ties resolve deterministically.
type catalogIndex struct {
	items  []*catalog.SymptomItem
	byTerm map[string][]*catalog.SymptomItem
	order  map[*catalog.SymptomItem]int
}

func indexCatalog(items []*catalog.SymptomItem) *catalogIndex {
	idx := &catalogIndex{
		items:  items,
		byTerm: make(map[string][]*catalog.SymptomItem),
		order:  make(map[*catalog.SymptomItem]int, len(items)),
	}
	for i, item := range items {
		idx.byTerm[item.SymptomTerm] = append(idx.byTerm[item.SymptomTerm], item)
		idx.order[item] = i
	}
	return idx
}

// findAttribute returns the catalog item for (term, attribute), nil if none.
func (idx *catalogIndex) findAttribute(term string, attr catalog.Attribute) *catalog.SymptomItem {
	for _, item := range idx.byTerm[term] {
		if item.Attribute == attr {
			return item
		}
	}
	return nil
}

// presenceItem picks the presence-class question for a term, preferring
// present_absent, then amount, then frequency.
func (idx *catalogIndex) presenceItem(term string) *catalog.SymptomItem {
	for _, attr := range []catalog.Attribute{catalog.AttributePresentAbsent, catalog.AttributeAmount, catalog.AttributeFrequency} {
		if item := idx.findAttribute(term, attr); item != nil {
			return item
		}
	}
	return nil
}

type symptomGroup struct {
	term         string
	presence     *catalog.SymptomItem
	severity     *catalog.SymptomItem
	interference *catalog.SymptomItem
	score        float64
	catalogPos   int
}

// completeSelection runs the attribute-completeness pass over a filtered
// item set. Each symptom group is completed to hold its presence-class
// question and its severity question, pulling missing ones from the full
// catalog. Interference questions are kept only when already selected, never
// force-added. Groups emit in fixed attribute order and are sorted by
// descending history score, ties keeping catalog order.
func completeSelection(filtered []*catalog.SymptomItem, idx *catalogIndex, history map[string]*treatment.SymptomHistory) []SelectedItem {
	groups := make(map[string]*symptomGroup)
	var terms []string

	for _, item := range filtered {
		g, ok := groups[item.SymptomTerm]
		if !ok {
			g = &symptomGroup{
				term:       item.SymptomTerm,
				score:      HistoryScore(history[item.SymptomTerm]),
				catalogPos: idx.order[item],
			}
			groups[item.SymptomTerm] = g
			terms = append(terms, item.SymptomTerm)
		}
		if pos := idx.order[item]; pos < g.catalogPos {
			g.catalogPos = pos
		}
		switch {
		case item.Attribute.IsPresenceClass():
			if g.presence == nil || preferPresence(item.Attribute, g.presence.Attribute) {
				g.presence = item
			}
		case item.Attribute == catalog.AttributeSeverity:
			g.severity = item
		case item.Attribute == catalog.AttributeInterference:
			g.interference = item
		}
	}

	for _, term := range terms {
		g := groups[term]
		if g.presence == nil {
			g.presence = idx.presenceItem(term)
		}
		if g.severity == nil {
			g.severity = idx.findAttribute(term, catalog.AttributeSeverity)
		}
	}

	ordered := make([]*symptomGroup, 0, len(terms))
	for _, term := range terms {
		ordered = append(ordered, groups[term])
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].catalogPos < ordered[j].catalogPos
	})

	var out []SelectedItem
	for _, g := range ordered {
		for _, item := range []*catalog.SymptomItem{g.presence, g.severity, g.interference} {
			if item == nil {
				continue
			}
			out = append(out, SelectedItem{
				Item:               item,
				Score:              g.score,
				RequiresBranchEval: item.Attribute == catalog.AttributeFrequency || item.Attribute == catalog.AttributeSeverity,
			})
		}
	}
	return out
}

// preferPresence reports whether candidate should replace current as the
// group's presence-class question.
func preferPresence(candidate, current catalog.Attribute) bool {
	rank := func(a catalog.Attribute) int {
		switch a {
		case catalog.AttributePresentAbsent:
			return 0
		case catalog.AttributeAmount:
			return 1
		default:
			return 2
		}
	}
	return rank(candidate) < rank(current)
}
