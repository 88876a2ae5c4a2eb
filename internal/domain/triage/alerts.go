package triage

import (
	"fmt"
	"sort"

	"github.com/oncopulse/oncopulse/internal/domain/grading"
	"github.com/oncopulse/oncopulse/internal/domain/treatment"
)

// Symptoms where a grade 3 already signals a potential emergency.
var emergencySymptoms = map[string]bool{
	"fever":               true,
	"infection_signs":     true,
	"bleeding":            true,
	"shortness_of_breath": true,
	"chest_pain":          true,
	"confusion":           true,
}

// AlertContext carries the treatment state the alert rules read.
type AlertContext struct {
	InNadirWindow bool
	// Trends maps symptom term to the trend recorded before this report.
	Trends map[string]treatment.Trend
}

// DeriveAlerts applies the per-symptom alert rules to a set of grading
// results. Returned alerts are ordered red, yellow, green, stable within
// each band.
func DeriveAlerts(results []grading.Result, actx AlertContext) []Alert {
	var alerts []Alert
	moderateCount := 0

	for _, res := range results {
		if res.Grade == 2 {
			moderateCount++
		}

		switch {
		case res.Grade >= 4:
			alerts = append(alerts, emergencyAlert(res))
		case res.Grade == 3:
			if emergencySymptoms[res.SymptomTerm] || (res.SymptomTerm == "fever" && actx.InNadirWindow) {
				alerts = append(alerts, emergencyAlert(res))
			} else {
				alerts = append(alerts, Alert{
					Severity:             SeverityYellow,
					Type:                 AlertUrgent,
					SymptomTerm:          res.SymptomTerm,
					Grade:                res.Grade,
					PatientInstruction:   fmt.Sprintf("Your %s is severe. Contact your care team today.", res.SymptomTerm),
					ClinicianInstruction: fmt.Sprintf("Grade 3 %s reported. Assess within 24 hours.", res.SymptomTerm),
				})
			}
		case res.Grade == 2 && actx.Trends[res.SymptomTerm] == treatment.TrendWorsening:
			alerts = append(alerts, Alert{
				Severity:             SeverityYellow,
				Type:                 AlertConcerningTrend,
				SymptomTerm:          res.SymptomTerm,
				Grade:                res.Grade,
				PatientInstruction:   fmt.Sprintf("Your %s is getting worse. Let your care team know at your next check-in.", res.SymptomTerm),
				ClinicianInstruction: fmt.Sprintf("Grade 2 %s with a worsening trend. Review recent reports.", res.SymptomTerm),
			})
		}
	}

	if moderateCount >= 3 {
		alerts = append(alerts, Alert{
			Severity:             SeverityYellow,
			Type:                 AlertConcerningTrend,
			SymptomTerm:          "multiple_symptoms",
			Grade:                2,
			PatientInstruction:   "You reported several moderate symptoms. Your care team will review them together.",
			ClinicianInstruction: fmt.Sprintf("%d moderate symptoms reported at once. Review for cumulative toxicity.", moderateCount),
		})
	}

	SortAlerts(alerts)
	return alerts
}

func emergencyAlert(res grading.Result) Alert {
	return Alert{
		Severity:             SeverityRed,
		Type:                 AlertEmergency,
		SymptomTerm:          res.SymptomTerm,
		Grade:                res.Grade,
		PatientInstruction:   fmt.Sprintf("Your %s needs urgent attention. Call your oncology team now.", res.SymptomTerm),
		ClinicianInstruction: fmt.Sprintf("Grade %d %s reported. Contact the patient immediately.", res.Grade, res.SymptomTerm),
		RequiresImmediate:    true,
	}
}

// SortAlerts orders by severity band, red first, preserving the original
// order within each band.
func SortAlerts(alerts []Alert) {
	sort.SliceStable(alerts, func(i, j int) bool {
		return severityRank(alerts[i].Severity) < severityRank(alerts[j].Severity)
	})
}
