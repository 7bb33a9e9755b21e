package scenario

import (
	"fmt"

	"github.com/tiendc/go-deepcopy"

	"risksim/domain/core"
	"risksim/domain/risk"
)

// RiskModification describes how a scenario alters one risk relative to the
// base register. Kept on the scenario for provenance.
type RiskModification struct {
	ParameterOverrides map[string]float64     `json:"parameter_overrides,omitempty"`
	DistributionType   *risk.DistributionType `json:"distribution_type,omitempty"`
	MitigationApplied  *core.StrategyID       `json:"mitigation_applied,omitempty"`
}

// Scenario is the sole owning aggregate of its risks. Every nested mutable
// object (parameter maps, mitigation lists, bound pointers) is an independent
// deep copy; no two scenarios may share one.
type Scenario struct {
	ID            core.ScenarioID                  `json:"id"`
	Name          string                           `json:"name"`
	Description   string                           `json:"description,omitempty"`
	Risks         []risk.Risk                      `json:"risks"`
	Modifications map[core.RiskID]RiskModification `json:"modifications,omitempty"`
}

// Risk returns a pointer to the scenario's own copy of the given risk
func (s *Scenario) Risk(id core.RiskID) (*risk.Risk, bool) {
	for i := range s.Risks {
		if s.Risks[i].ID == id {
			return &s.Risks[i], true
		}
	}
	return nil, false
}

// CloneRisks produces fully independent deep copies of a risk set, including
// parameter maps, mitigation lists, and clamp-bound pointers
func CloneRisks(risks []risk.Risk) ([]risk.Risk, error) {
	out := make([]risk.Risk, 0, len(risks))
	if err := deepcopy.Copy(&out, risks); err != nil {
		return nil, fmt.Errorf("deep copying risks: %w", err)
	}
	return out, nil
}

// CloneModifications deep-copies a modification map for provenance storage
func CloneModifications(mods map[core.RiskID]RiskModification) (map[core.RiskID]RiskModification, error) {
	if mods == nil {
		return nil, nil
	}
	out := make(map[core.RiskID]RiskModification, len(mods))
	if err := deepcopy.Copy(&out, mods); err != nil {
		return nil, fmt.Errorf("deep copying modifications: %w", err)
	}
	return out, nil
}
