package risk

import (
	"fmt"

	"risksim/domain/core"
)

// RiskCategory classifies the source of a risk
type RiskCategory string

const (
	CategoryCost       RiskCategory = "cost"
	CategorySchedule   RiskCategory = "schedule"
	CategoryTechnical  RiskCategory = "technical"
	CategoryRegulatory RiskCategory = "regulatory"
	CategoryExternal   RiskCategory = "external"
)

// ImpactType routes sampled impacts into cost and/or schedule outcomes
type ImpactType string

const (
	ImpactCost     ImpactType = "cost"
	ImpactSchedule ImpactType = "schedule"
	ImpactBoth     ImpactType = "both"
)

// AffectsCost reports whether the impact routes into cost outcomes
func (t ImpactType) AffectsCost() bool {
	return t == ImpactCost || t == ImpactBoth
}

// AffectsSchedule reports whether the impact routes into schedule outcomes
func (t ImpactType) AffectsSchedule() bool {
	return t == ImpactSchedule || t == ImpactBoth
}

// Risk is an uncertain event with a probabilistic impact magnitude.
// BaselineImpact is a positive magnitude; direction is implied by ImpactType
// and never encoded as a sign.
type Risk struct {
	ID                      core.RiskID             `json:"id"`
	Name                    string                  `json:"name"`
	Category                RiskCategory            `json:"category"`
	ImpactType              ImpactType              `json:"impact_type"`
	Distribution            ProbabilityDistribution `json:"distribution"`
	BaselineImpact          float64                 `json:"baseline_impact"`
	CorrelationDependencies []core.RiskID           `json:"correlation_dependencies,omitempty"`
	Mitigations             []MitigationStrategy    `json:"mitigations,omitempty"`

	// AppliedMitigation is set only by scenario construction. The engine
	// scales this risk's sampled impacts by (1 - effectiveness) when set.
	AppliedMitigation *core.StrategyID `json:"applied_mitigation,omitempty"`
}

// Validate checks the risk invariants, including its distribution and strategies
func (r Risk) Validate() error {
	if r.ID.String() == "" {
		return core.NewValidationError("risk.id", "must not be empty")
	}
	if r.Name == "" {
		return core.NewValidationError(fmt.Sprintf("risk %s name", r.ID), "must not be empty")
	}
	if r.BaselineImpact <= 0 {
		return core.NewValidationError(fmt.Sprintf("risk %s baseline_impact", r.ID), "must be > 0")
	}
	switch r.ImpactType {
	case ImpactCost, ImpactSchedule, ImpactBoth:
	default:
		return core.NewValidationError(fmt.Sprintf("risk %s impact_type", r.ID), fmt.Sprintf("unknown value %q", r.ImpactType))
	}
	if err := r.Distribution.Validate(); err != nil {
		return fmt.Errorf("risk %s: %w", r.ID, err)
	}
	for _, m := range r.Mitigations {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("risk %s: %w", r.ID, err)
		}
	}
	if r.AppliedMitigation != nil {
		if _, ok := r.FindMitigation(*r.AppliedMitigation); !ok {
			return fmt.Errorf("risk %s: applied mitigation %s: %w", r.ID, *r.AppliedMitigation, core.ErrStrategyNotFound)
		}
	}
	return nil
}

// FindMitigation looks up a strategy by id on this risk
func (r Risk) FindMitigation(id core.StrategyID) (MitigationStrategy, bool) {
	for _, m := range r.Mitigations {
		if m.ID == id {
			return m, true
		}
	}
	return MitigationStrategy{}, false
}

// MitigationScale returns the multiplier applied to sampled impacts:
// (1 - effectiveness) when a mitigation is applied, otherwise 1.
func (r Risk) MitigationScale() float64 {
	if r.AppliedMitigation == nil {
		return 1
	}
	m, ok := r.FindMitigation(*r.AppliedMitigation)
	if !ok {
		return 1
	}
	return 1 - m.Effectiveness
}

// ValidateAll checks a risk set for per-risk validity and duplicate ids
func ValidateAll(risks []Risk) error {
	if len(risks) == 0 {
		return core.ErrEmptyRiskSet
	}
	seen := make(map[core.RiskID]bool, len(risks))
	for _, r := range risks {
		if err := r.Validate(); err != nil {
			return err
		}
		if seen[r.ID] {
			return fmt.Errorf("%w: %s", core.ErrDuplicateRisk, r.ID)
		}
		seen[r.ID] = true
	}
	return nil
}
