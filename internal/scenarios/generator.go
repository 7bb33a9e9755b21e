package scenarios

import (
	"fmt"

	"risksim/domain/core"
	"risksim/domain/risk"
	"risksim/domain/scenario"
)

// Generator builds isolated Scenario aggregates from a base risk register.
// Every scenario owns fully independent deep copies of its risks; the
// generator never shares a nested mutable object between two scenarios.
type Generator struct{}

// NewGenerator creates a scenario generator
func NewGenerator() *Generator {
	return &Generator{}
}

// CreateBaselineScenario deep-copies the base risks with no modifications
func (g *Generator) CreateBaselineScenario(base []risk.Risk, name string) (*scenario.Scenario, error) {
	if err := risk.ValidateAll(base); err != nil {
		return nil, err
	}
	copies, err := scenario.CloneRisks(base)
	if err != nil {
		return nil, err
	}
	return &scenario.Scenario{
		ID:    core.NewScenarioID(),
		Name:  name,
		Risks: copies,
	}, nil
}

// CreateScenario deep-copies the base risks and applies the given
// modifications: distribution parameter overrides, distribution-type
// changes, and mitigation application. Applying a mitigation folds its
// effectiveness into the risk's baseline impact and tags the risk so the
// engine scales its sampled impacts.
func (g *Generator) CreateScenario(base []risk.Risk, mods map[core.RiskID]scenario.RiskModification, name, description string) (*scenario.Scenario, error) {
	if err := risk.ValidateAll(base); err != nil {
		return nil, err
	}
	copies, err := scenario.CloneRisks(base)
	if err != nil {
		return nil, err
	}

	s := &scenario.Scenario{
		ID:          core.NewScenarioID(),
		Name:        name,
		Description: description,
		Risks:       copies,
	}
	for id, mod := range mods {
		r, ok := s.Risk(id)
		if !ok {
			return nil, fmt.Errorf("modification target %s: %w", id, core.ErrRiskNotFound)
		}
		if err := applyModification(r, mod); err != nil {
			return nil, err
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("modification of %s produced an invalid risk: %w", id, err)
		}
	}
	s.Modifications, err = scenario.CloneModifications(mods)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func applyModification(r *risk.Risk, mod scenario.RiskModification) error {
	if mod.DistributionType != nil {
		r.Distribution.Type = *mod.DistributionType
	}
	for name, value := range mod.ParameterOverrides {
		r.Distribution.Params[name] = value
	}
	if mod.MitigationApplied != nil {
		strategy, ok := r.FindMitigation(*mod.MitigationApplied)
		if !ok {
			return fmt.Errorf("risk %s has no strategy %s: %w", r.ID, *mod.MitigationApplied, core.ErrStrategyNotFound)
		}
		r.BaselineImpact *= 1 - strategy.Effectiveness
		applied := strategy.ID
		r.AppliedMitigation = &applied
	}
	return nil
}
