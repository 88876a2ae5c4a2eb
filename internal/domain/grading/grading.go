// Package grading converts grouped symptom responses into standardized
// composite toxicity grades with an auditable rationale trail.
package grading

import (
	"fmt"

	"github.com/oncopulse/oncopulse/internal/domain/treatment"
)

// Responses holds the per-attribute answers reported for one symptom. Nil
// means the attribute was not asked or was skipped.
type Responses struct {
	Frequency    *int `json:"frequency,omitempty"`
	Severity     *int `json:"severity,omitempty"`
	Interference *int `json:"interference,omitempty"`
}

// Result is the graded outcome for one symptom. The rationale trail records
// every step that produced the grade; clinicians audit it, so it is part of
// the contract rather than debug output.
type Result struct {
	SymptomTerm string    `json:"symptom_term"`
	Grade       int       `json:"grade"`
	Components  Responses `json:"components"`
	Rationale   []string  `json:"rationale"`
}

// ValidateResponses checks a response set before grading, reporting one
// message per violated constraint. Grading must not proceed on invalid input.
func ValidateResponses(symptomTerm string, r Responses) []string {
	var violations []string
	check := func(attr string, v *int) {
		if v != nil && (*v < 0 || *v > 4) {
			violations = append(violations, fmt.Sprintf("%s: %s value %d outside allowed range 0-4", symptomTerm, attr, *v))
		}
	}
	check("frequency", r.Frequency)
	check("severity", r.Severity)
	check("interference", r.Interference)
	if r.Frequency == nil && r.Severity == nil && r.Interference == nil {
		violations = append(violations, fmt.Sprintf("%s: no attribute values supplied", symptomTerm))
	}
	return violations
}

// CompositeGrade computes the 0-4 composite grade for one symptom.
//
// Base is the higher of frequency and severity (whichever are present). Both
// at 3 or above escalates by one. Interference at 3 or above escalates by one
// more. The result is clamped to [0, 4].
func CompositeGrade(symptomTerm string, r Responses) Result {
	res := Result{SymptomTerm: symptomTerm, Components: r}

	if r.Frequency == nil && r.Severity == nil && r.Interference == nil {
		res.Rationale = append(res.Rationale, "no symptom reported")
		return res
	}

	grade := 0
	switch {
	case r.Frequency != nil && r.Severity != nil:
		grade = *r.Frequency
		if *r.Severity > grade {
			grade = *r.Severity
		}
		res.Rationale = append(res.Rationale,
			fmt.Sprintf("base grade %d from max(frequency=%d, severity=%d)", grade, *r.Frequency, *r.Severity))
	case r.Frequency != nil:
		grade = *r.Frequency
		res.Rationale = append(res.Rationale, fmt.Sprintf("base grade %d from frequency alone", grade))
	case r.Severity != nil:
		grade = *r.Severity
		res.Rationale = append(res.Rationale, fmt.Sprintf("base grade %d from severity alone", grade))
	default:
		res.Rationale = append(res.Rationale, "base grade 0: only interference reported")
	}

	if r.Frequency != nil && r.Severity != nil && *r.Frequency >= 3 && *r.Severity >= 3 {
		grade++
		res.Rationale = append(res.Rationale,
			fmt.Sprintf("escalated to %d: frequency and severity both at 3 or above", grade))
	}
	if r.Interference != nil && *r.Interference >= 3 {
		grade++
		res.Rationale = append(res.Rationale,
			fmt.Sprintf("escalated to %d: interference %d disrupts daily function", grade, *r.Interference))
	}

	if grade > 4 {
		grade = 4
		res.Rationale = append(res.Rationale, "clamped to maximum grade 4")
	}
	if grade < 0 {
		grade = 0
	}

	res.Grade = grade
	return res
}

// HighestGrade returns the maximum grade among the results, 0 for none.
func HighestGrade(results []Result) int {
	highest := 0
	for _, r := range results {
		if r.Grade > highest {
			highest = r.Grade
		}
	}
	return highest
}

// FilterByMinGrade keeps the results at or above the given grade.
func FilterByMinGrade(results []Result, minGrade int) []Result {
	var out []Result
	for _, r := range results {
		if r.Grade >= minGrade {
			out = append(out, r)
		}
	}
	return out
}

// Per-grade weights for the burden score. Higher grades dominate so a single
// grade 4 outweighs several mild symptoms.
var burdenWeights = [5]float64{0, 3, 8, 15, 25}

// ToxicityBurden condenses a result set into a 0-100 score.
func ToxicityBurden(results []Result) float64 {
	var sum float64
	for _, r := range results {
		if r.Grade >= 0 && r.Grade <= 4 {
			sum += burdenWeights[r.Grade]
		}
	}
	score := sum / 200 * 100
	if score > 100 {
		return 100
	}
	return score
}

// ClassifyTrend compares the current grade against the previous one.
func ClassifyTrend(previousGrade, currentGrade int) treatment.Trend {
	switch {
	case currentGrade > previousGrade:
		return treatment.TrendWorsening
	case currentGrade < previousGrade:
		return treatment.TrendImproving
	default:
		return treatment.TrendStable
	}
}
