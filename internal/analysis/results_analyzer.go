package analysis

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"risksim/domain/core"
	"risksim/domain/risk"
	"risksim/domain/simulation"
)

// reported percentile levels, ascending
var percentileLevels = []int{10, 25, 50, 75, 90, 95, 99}

// Analyzer derives decision-support statistics from completed simulation
// results. It never mutates its inputs.
type Analyzer struct{}

// NewAnalyzer creates a results analyzer
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// CalculatePercentiles summarizes the cost outcome sequence. Values are
// monotone nondecreasing across levels because they are quantiles of the
// same sorted sample.
func (a *Analyzer) CalculatePercentiles(results *simulation.SimulationResults) (*simulation.PercentileAnalysis, error) {
	if err := results.Validate(); err != nil {
		return nil, err
	}
	return summarizeOutcomes(results.CostOutcomes)
}

// CalculateSchedulePercentiles summarizes the schedule outcome sequence
func (a *Analyzer) CalculateSchedulePercentiles(results *simulation.SimulationResults) (*simulation.PercentileAnalysis, error) {
	if err := results.Validate(); err != nil {
		return nil, err
	}
	return summarizeOutcomes(results.ScheduleOutcomes)
}

func summarizeOutcomes(outcomes []float64) (*simulation.PercentileAnalysis, error) {
	mean, err := stats.Mean(outcomes)
	if err != nil {
		return nil, fmt.Errorf("computing mean: %w", err)
	}
	stdDev, err := stats.StandardDeviationSample(outcomes)
	if err != nil {
		return nil, fmt.Errorf("computing std dev: %w", err)
	}

	analysis := &simulation.PercentileAnalysis{
		Mean:        mean,
		StdDev:      stdDev,
		Percentiles: make(map[int]float64, len(percentileLevels)),
	}
	for _, level := range percentileLevels {
		value, err := stats.Percentile(outcomes, float64(level))
		if err != nil {
			return nil, fmt.Errorf("computing P%d: %w", level, err)
		}
		analysis.Percentiles[level] = value
	}
	return analysis, nil
}

// GenerateConfidenceIntervals returns symmetric sample-quantile intervals
// for each requested level. A wider level always produces an interval at
// least as wide as a narrower one, since both are quantiles of one sample.
func (a *Analyzer) GenerateConfidenceIntervals(results *simulation.SimulationResults, levels []float64) ([]simulation.ConfidenceInterval, error) {
	if err := results.Validate(); err != nil {
		return nil, err
	}
	intervals := make([]simulation.ConfidenceInterval, 0, len(levels))
	for _, level := range levels {
		if level <= 0 || level >= 1 {
			return nil, core.NewValidationError("confidence level", fmt.Sprintf("%v outside (0, 1)", level))
		}
		alpha := 1 - level
		lower, err := stats.Percentile(results.CostOutcomes, 100*alpha/2)
		if err != nil {
			return nil, fmt.Errorf("computing lower bound at %v: %w", level, err)
		}
		upper, err := stats.Percentile(results.CostOutcomes, 100*(1-alpha/2))
		if err != nil {
			return nil, fmt.Errorf("computing upper bound at %v: %w", level, err)
		}
		intervals = append(intervals, simulation.ConfidenceInterval{Level: level, Lower: lower, Upper: upper})
	}
	return intervals, nil
}

// IdentifyTopRiskContributors ranks risks by their share of total outcome
// variance: Var(contribution_i) / Var(total). Shares across all risks sum to
// about 1 for independent risks; correlation cross-terms move the sum below
// (or above) that without invalidating the ranking.
func (a *Analyzer) IdentifyTopRiskContributors(results *simulation.SimulationResults, risks []risk.Risk, topN int) ([]simulation.RiskContribution, error) {
	if err := results.Validate(); err != nil {
		return nil, err
	}
	if topN <= 0 {
		return nil, core.NewValidationError("top_n", "must be > 0")
	}

	totalVariance, err := stats.Variance(results.TotalOutcomes())
	if err != nil {
		return nil, fmt.Errorf("computing total variance: %w", err)
	}
	if totalVariance == 0 {
		return nil, fmt.Errorf("total outcome variance is zero, contributions undefined")
	}

	names := make(map[core.RiskID]string, len(risks))
	for _, r := range risks {
		names[r.ID] = r.Name
	}

	contributions := make([]simulation.RiskContribution, 0, len(results.RiskContributions))
	for id, seq := range results.RiskContributions {
		variance, err := stats.Variance(seq)
		if err != nil {
			return nil, fmt.Errorf("computing variance for %s: %w", id, err)
		}
		contributions = append(contributions, simulation.RiskContribution{
			RiskID:                 id,
			RiskName:               names[id],
			ContributionPercentage: variance / totalVariance,
		})
	}
	sort.SliceStable(contributions, func(i, j int) bool {
		if contributions[i].ContributionPercentage != contributions[j].ContributionPercentage {
			return contributions[i].ContributionPercentage > contributions[j].ContributionPercentage
		}
		return contributions[i].RiskID < contributions[j].RiskID
	})
	if topN < len(contributions) {
		contributions = contributions[:topN]
	}
	return contributions, nil
}
