package scenarios

import (
	"fmt"
	"sort"

	"risksim/domain/core"
	"risksim/domain/risk"
	"risksim/domain/scenario"
	"risksim/domain/simulation"
)

// EvaluateMitigationStrategy values one strategy against one risk in the
// scenario. Zero-valued denominators (no risk reduction, free mitigation)
// are explicit errors, never implicit infinities.
func (g *Generator) EvaluateMitigationStrategy(s *scenario.Scenario, strategy risk.MitigationStrategy, riskID core.RiskID) (*simulation.MitigationAnalysis, error) {
	r, ok := s.Risk(riskID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", riskID, core.ErrRiskNotFound)
	}
	if err := strategy.Validate(); err != nil {
		return nil, err
	}

	baseline := r.BaselineImpact
	mitigated := baseline * (1 - strategy.Effectiveness)
	reduction := baseline - mitigated
	if reduction == 0 {
		return nil, fmt.Errorf("strategy %s on risk %s: %w", strategy.ID, riskID, core.ErrZeroRiskReduction)
	}
	if strategy.Cost == 0 {
		return nil, fmt.Errorf("strategy %s on risk %s: %w", strategy.ID, riskID, core.ErrZeroMitigationCost)
	}

	return &simulation.MitigationAnalysis{
		StrategyID:         strategy.ID,
		StrategyName:       strategy.Name,
		RiskID:             riskID,
		BaselineRisk:       baseline,
		MitigatedRisk:      mitigated,
		RiskReduction:      reduction,
		Cost:               strategy.Cost,
		CostBenefitRatio:   strategy.Cost / reduction,
		NetPresentValue:    reduction - strategy.Cost,
		ReturnOnInvestment: (reduction - strategy.Cost) / strategy.Cost,
	}, nil
}

// CalculateExpectedValueOfMitigation weights the risk reduction by the
// probability that the risk materializes: probability*reduction - cost
func (g *Generator) CalculateExpectedValueOfMitigation(s *scenario.Scenario, strategy risk.MitigationStrategy, riskID core.RiskID, probability float64) (float64, error) {
	if probability < 0 || probability > 1 {
		return 0, core.NewValidationError("probability", "must be in [0, 1]")
	}
	analysis, err := g.EvaluateMitigationStrategy(s, strategy, riskID)
	if err != nil {
		return 0, err
	}
	return probability*analysis.RiskReduction - strategy.Cost, nil
}

// CompareMitigationStrategies evaluates every strategy attached to the risk
// and returns the analyses sorted descending by return on investment
func (g *Generator) CompareMitigationStrategies(s *scenario.Scenario, riskID core.RiskID) ([]simulation.MitigationAnalysis, error) {
	r, ok := s.Risk(riskID)
	if !ok {
		return nil, fmt.Errorf("%s: %w", riskID, core.ErrRiskNotFound)
	}
	analyses := make([]simulation.MitigationAnalysis, 0, len(r.Mitigations))
	for _, strategy := range r.Mitigations {
		analysis, err := g.EvaluateMitigationStrategy(s, strategy, riskID)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, *analysis)
	}
	sort.SliceStable(analyses, func(i, j int) bool {
		return analyses[i].ReturnOnInvestment > analyses[j].ReturnOnInvestment
	})
	return analyses, nil
}

// CalculatePortfolioMitigationValue aggregates a mitigation plan
// (risk -> strategy) as an exact sum of the per-risk analyses
func (g *Generator) CalculatePortfolioMitigationValue(s *scenario.Scenario, plan map[core.RiskID]core.StrategyID) (*simulation.PortfolioMitigationValue, error) {
	if len(plan) == 0 {
		return nil, core.NewValidationError("plan", "must name at least one risk/strategy pair")
	}

	// Deterministic evaluation order for stable individual_analyses output
	riskIDs := make([]core.RiskID, 0, len(plan))
	for id := range plan {
		riskIDs = append(riskIDs, id)
	}
	sort.Slice(riskIDs, func(i, j int) bool { return riskIDs[i] < riskIDs[j] })

	portfolio := &simulation.PortfolioMitigationValue{
		IndividualAnalyses: make([]simulation.MitigationAnalysis, 0, len(plan)),
	}
	for _, riskID := range riskIDs {
		strategyID := plan[riskID]
		r, ok := s.Risk(riskID)
		if !ok {
			return nil, fmt.Errorf("%s: %w", riskID, core.ErrRiskNotFound)
		}
		strategy, ok := r.FindMitigation(strategyID)
		if !ok {
			return nil, fmt.Errorf("risk %s has no strategy %s: %w", riskID, strategyID, core.ErrStrategyNotFound)
		}
		analysis, err := g.EvaluateMitigationStrategy(s, strategy, riskID)
		if err != nil {
			return nil, err
		}
		portfolio.TotalCost += analysis.Cost
		portfolio.TotalRiskReduction += analysis.RiskReduction
		portfolio.IndividualAnalyses = append(portfolio.IndividualAnalyses, *analysis)
	}

	if portfolio.TotalRiskReduction == 0 {
		return nil, core.ErrZeroRiskReduction
	}
	if portfolio.TotalCost == 0 {
		return nil, core.ErrZeroMitigationCost
	}
	portfolio.PortfolioCostBenefitRatio = portfolio.TotalCost / portfolio.TotalRiskReduction
	portfolio.PortfolioNetPresentValue = portfolio.TotalRiskReduction - portfolio.TotalCost
	portfolio.PortfolioROI = (portfolio.TotalRiskReduction - portfolio.TotalCost) / portfolio.TotalCost
	return portfolio, nil
}
