package risk

import (
	"risksim/domain/core"
)

// ScheduleData carries the deterministic schedule baseline that risk impacts
// are layered onto. Sampled schedule impacts are expressed in days.
type ScheduleData struct {
	BaselineDurationDays float64 `json:"baseline_duration_days"`
	WorkingDaysPerWeek   int     `json:"working_days_per_week,omitempty"`
}

// Validate checks the schedule baseline invariants
func (s ScheduleData) Validate() error {
	if s.BaselineDurationDays < 0 {
		return core.NewValidationError("schedule.baseline_duration_days", "must be >= 0")
	}
	if s.WorkingDaysPerWeek < 0 || s.WorkingDaysPerWeek > 7 {
		return core.NewValidationError("schedule.working_days_per_week", "must be between 0 and 7")
	}
	return nil
}
