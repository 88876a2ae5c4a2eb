package triage

import (
	"fmt"
	"sort"
	"time"
)

// Fixed response-time assumptions per band, in minutes, for queue statistics.
const (
	redResponseMinutes     = 0.5
	yellowResponseMinutes  = 12
	routineResponseMinutes = 72
)

// Treatment days where myelosuppression is typically deepest. This is a
// regimen-independent heuristic used only for queue ordering.
const (
	heuristicNadirStart = 7
	heuristicNadirEnd   = 12
)

// PriorityScore computes the queue score for one patient summary.
func PriorityScore(s PatientSummary, now time.Time) float64 {
	score := float64(100*s.RedCount + 25*s.YellowCount + 5*s.GreenCount)
	if !s.CompletedAt.IsZero() && now.Sub(s.CompletedAt) <= time.Hour {
		score += 10
	}
	if s.TreatmentDay >= heuristicNadirStart && s.TreatmentDay <= heuristicNadirEnd {
		score += 15
	}
	return score
}

// BuildQueue ranks patient summaries by priority score, highest first, and
// attaches a reason, recommended action, and response-time target to each
// entry. Ties keep the input order.
func BuildQueue(summaries []PatientSummary, now time.Time) []QueueEntry {
	entries := make([]QueueEntry, 0, len(summaries))
	for _, s := range summaries {
		e := QueueEntry{
			PatientSummary: s,
			PriorityScore:  PriorityScore(s, now),
			Reason:         priorityReason(s),
		}
		e.RecommendedAction, e.ResponseTarget = recommendedAction(s)
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PriorityScore > entries[j].PriorityScore
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

func priorityReason(s PatientSummary) string {
	switch {
	case s.RedCount > 0:
		return fmt.Sprintf("%d emergency-level symptom(s) reported", s.RedCount)
	case s.YellowCount > 0:
		return fmt.Sprintf("%d urgent symptom(s) reported", s.YellowCount)
	case s.GreenCount > 0:
		return "routine symptom report, no urgent findings"
	default:
		return "no symptoms reported"
	}
}

func recommendedAction(s PatientSummary) (action, target string) {
	switch {
	case s.RedCount > 0:
		return "contact patient immediately", "within 30 minutes"
	case s.YellowCount > 0:
		return "schedule same-day or next-day follow-up", "within 24 hours"
	default:
		return "routine follow-up", "within 3-5 days"
	}
}

// ComputeStats aggregates a ranked queue into band counts and the weighted
// average response time implied by the per-band constants.
func ComputeStats(entries []QueueEntry) QueueStats {
	stats := QueueStats{TotalPatients: len(entries)}
	if len(entries) == 0 {
		return stats
	}

	var totalMinutes float64
	for _, e := range entries {
		switch {
		case e.RedCount > 0:
			stats.RedPatients++
			totalMinutes += redResponseMinutes
		case e.YellowCount > 0:
			stats.YellowPatients++
			totalMinutes += yellowResponseMinutes
		default:
			stats.RoutinePatients++
			totalMinutes += routineResponseMinutes
		}
	}
	stats.AvgResponseMinutes = totalMinutes / float64(len(entries))
	return stats
}
