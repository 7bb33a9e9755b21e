package risk

import (
	"risksim/domain/core"
)

// MitigationStrategy describes a candidate action that reduces a risk's impact.
// Effectiveness is the fractional impact reduction applied when the strategy
// is active in a scenario.
type MitigationStrategy struct {
	ID                     core.StrategyID `json:"id"`
	Name                   string          `json:"name"`
	Description            string          `json:"description,omitempty"`
	Cost                   float64         `json:"cost"`
	Effectiveness          float64         `json:"effectiveness"`
	ImplementationTimeDays float64         `json:"implementation_time_days"`
}

// Validate checks the strategy invariants
func (m MitigationStrategy) Validate() error {
	if m.ID.String() == "" {
		return core.NewValidationError("mitigation.id", "must not be empty")
	}
	if m.Name == "" {
		return core.NewValidationError("mitigation.name", "must not be empty")
	}
	if m.Cost < 0 {
		return core.NewValidationError("mitigation.cost", "must be >= 0")
	}
	if m.Effectiveness <= 0 || m.Effectiveness >= 1 {
		return core.NewValidationError("mitigation.effectiveness", "must be in (0,1)")
	}
	if m.ImplementationTimeDays < 0 {
		return core.NewValidationError("mitigation.implementation_time_days", "must be >= 0")
	}
	return nil
}
