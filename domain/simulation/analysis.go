package simulation

import (
	"risksim/domain/core"
	"risksim/domain/scenario"
)

// PercentileAnalysis summarizes an outcome sequence. Percentile values are
// monotone nondecreasing by construction.
type PercentileAnalysis struct {
	Mean        float64         `json:"mean"`
	StdDev      float64         `json:"std_dev"`
	Percentiles map[int]float64 `json:"percentiles"`
}

// ConfidenceInterval is a symmetric sample-quantile interval at one level
type ConfidenceInterval struct {
	Level float64 `json:"level"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Width returns the interval span
func (ci ConfidenceInterval) Width() float64 {
	return ci.Upper - ci.Lower
}

// RiskContribution ranks one risk's share of total outcome variance
type RiskContribution struct {
	RiskID                 core.RiskID `json:"risk_id"`
	RiskName               string      `json:"risk_name"`
	ContributionPercentage float64     `json:"contribution_percentage"`
}

// ScenarioComparison is a two-sample comparison of cost outcome sequences
type ScenarioComparison struct {
	CostDifference          float64 `json:"cost_difference"`
	ScheduleDifference      float64 `json:"schedule_difference"`
	StatisticalSignificance float64 `json:"statistical_significance"`
	EffectSize              float64 `json:"effect_size"`
}

// MitigationAnalysis values one strategy applied to one risk
type MitigationAnalysis struct {
	StrategyID         core.StrategyID `json:"strategy_id"`
	StrategyName       string          `json:"strategy_name"`
	RiskID             core.RiskID     `json:"risk_id"`
	BaselineRisk       float64         `json:"baseline_risk"`
	MitigatedRisk      float64         `json:"mitigated_risk"`
	RiskReduction      float64         `json:"risk_reduction"`
	Cost               float64         `json:"cost"`
	CostBenefitRatio   float64         `json:"cost_benefit_ratio"`
	NetPresentValue    float64         `json:"net_present_value"`
	ReturnOnInvestment float64         `json:"return_on_investment"`
}

// PortfolioMitigationValue is the exact sum of per-risk mitigation analyses
// for a whole mitigation plan
type PortfolioMitigationValue struct {
	TotalCost                 float64              `json:"total_cost"`
	TotalRiskReduction        float64              `json:"total_risk_reduction"`
	PortfolioCostBenefitRatio float64              `json:"portfolio_cost_benefit_ratio"`
	PortfolioNetPresentValue  float64              `json:"portfolio_net_present_value"`
	PortfolioROI              float64              `json:"portfolio_roi"`
	IndividualAnalyses        []MitigationAnalysis `json:"individual_analyses"`
}

// Impact level tags for sensitivity filtering
const (
	ImpactLevelHigh   = "high"
	ImpactLevelMedium = "medium"
)

// SensitivityResult captures the outcome swing from varying one risk's
// baseline impact by a fixed fractional range. The low/high scenarios are
// fully isolated deep copies.
type SensitivityResult struct {
	RiskID           core.RiskID        `json:"risk_id"`
	RiskName         string             `json:"risk_name"`
	BaselineValue    float64            `json:"baseline_value"`
	LowValue         float64            `json:"low_value"`
	HighValue        float64            `json:"high_value"`
	AbsoluteChange   float64            `json:"absolute_change"`
	SensitivityRatio float64            `json:"sensitivity_ratio"`
	ImpactLevel      string             `json:"impact_level,omitempty"`
	LowScenario      *scenario.Scenario `json:"low_scenario,omitempty"`
	HighScenario     *scenario.Scenario `json:"high_scenario,omitempty"`
}

// TornadoData is the ranked bar-chart structure handed to the visualization
// layer: one entry per variable, sorted by outcome range descending.
type TornadoData struct {
	Variables      []string  `json:"variables"`
	LowImpacts     []float64 `json:"low_impacts"`
	HighImpacts    []float64 `json:"high_impacts"`
	Ranges         []float64 `json:"ranges"`
	BaselineValues []float64 `json:"baseline_values"`
}
