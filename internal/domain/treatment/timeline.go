package treatment

import (
	"math"
	"time"

	"github.com/oncopulse/oncopulse/internal/domain/catalog"
)

// TreatmentDay returns the 1-based day number relative to an infusion date.
// The infusion day itself is day 1.
func TreatmentDay(infusionDate, evalDate time.Time) int {
	delta := evalDate.Sub(infusionDate).Hours() / 24
	return int(math.Floor(delta)) + 1
}

// DetermineCyclePhase resolves the cycle phase for a treatment day. Windows
// are checked in a fixed precedence order and the first match wins:
// pre-session, post-session, recovery, nadir, then inter-cycle.
func DetermineCyclePhase(treatmentDay int, r *catalog.Regimen) catalog.CyclePhase {
	if treatmentDay >= r.CycleLengthDays-1 && treatmentDay <= r.CycleLengthDays+1 {
		return catalog.PhasePreSession
	}
	if treatmentDay >= 1 && treatmentDay <= 3 {
		return catalog.PhasePostSession
	}
	if treatmentDay >= 4 && treatmentDay <= 6 {
		return catalog.PhaseRecovery
	}
	if IsInNadirWindow(treatmentDay, r) {
		return catalog.PhaseNadir
	}
	return catalog.PhaseInterCycle
}

// IsInNadirWindow reports whether the treatment day falls inside the
// regimen's nadir window. The test is independent of phase precedence, so a
// day can be in the window while its resolved phase is pre- or post-session.
func IsInNadirWindow(treatmentDay int, r *catalog.Regimen) bool {
	if !r.HasNadirWindow() {
		return false
	}
	return treatmentDay >= *r.NadirStartDay && treatmentDay <= *r.NadirEndDay
}

// BuildTreatmentContext derives the full cycle-position snapshot for a
// treatment at the given evaluation time. Pure function of its inputs.
func BuildTreatmentContext(t *Treatment, r *catalog.Regimen, evalDate time.Time) *TreatmentContext {
	day := TreatmentDay(t.LastInfusionDate, evalDate)

	daysUntilNext := r.CycleLengthDays - day
	if t.NextInfusionDate != nil {
		daysUntilNext = int(math.Floor(t.NextInfusionDate.Sub(evalDate).Hours() / 24))
	}

	return &TreatmentContext{
		Regimen:               r,
		CycleNumber:           t.CurrentCycle,
		TreatmentDay:          day,
		AbsoluteTreatmentDay:  TreatmentDay(t.StartDate, evalDate),
		Phase:                 DetermineCyclePhase(day, r),
		InNadirWindow:         IsInNadirWindow(day, r),
		LastInfusionDate:      t.LastInfusionDate,
		NextInfusionDate:      t.NextInfusionDate,
		DaysUntilNextInfusion: daysUntilNext,
	}
}
