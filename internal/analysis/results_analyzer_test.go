package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risksim/domain/core"
	"risksim/domain/risk"
	"risksim/domain/simulation"
	"risksim/internal/montecarlo"
)

func simulateRegister(t *testing.T, risks []risk.Risk, matrix *risk.CorrelationMatrix, iterations int, seed int64) *simulation.SimulationResults {
	t.Helper()
	engine := montecarlo.NewEngine(montecarlo.DefaultOptions())
	results, err := engine.RunSimulation(context.Background(), montecarlo.Request{
		Risks:        risks,
		Iterations:   iterations,
		Correlations: matrix,
		Seed:         seed,
	})
	require.NoError(t, err)
	return results
}

func costRisk(id core.RiskID, mean, stdDev float64) risk.Risk {
	return risk.Risk{
		ID:         id,
		Name:       string(id),
		Category:   risk.CategoryCost,
		ImpactType: risk.ImpactCost,
		Distribution: risk.ProbabilityDistribution{Type: risk.DistNormal, Params: map[string]float64{
			risk.ParamMean: mean, risk.ParamStdDev: stdDev,
		}},
		BaselineImpact: mean,
	}
}

func TestCalculatePercentiles_Monotone(t *testing.T) {
	results := simulateRegister(t, []risk.Risk{costRisk("r1", 100000, 20000)}, nil, 10000, 1)

	analyzer := NewAnalyzer()
	analysis, err := analyzer.CalculatePercentiles(results)
	require.NoError(t, err)

	levels := []int{10, 25, 50, 75, 90, 95, 99}
	for _, level := range levels {
		require.Contains(t, analysis.Percentiles, level)
	}
	for i := 1; i < len(levels); i++ {
		assert.LessOrEqual(t, analysis.Percentiles[levels[i-1]], analysis.Percentiles[levels[i]],
			"P%d must not exceed P%d", levels[i-1], levels[i])
	}
	assert.InDelta(t, 100000, analysis.Mean, 1000)
	assert.InDelta(t, 20000, analysis.StdDev, 1000)
}

func TestGenerateConfidenceIntervals_Nesting(t *testing.T) {
	results := simulateRegister(t, []risk.Risk{costRisk("r1", 100000, 20000)}, nil, 10000, 2)

	analyzer := NewAnalyzer()
	intervals, err := analyzer.GenerateConfidenceIntervals(results, []float64{0.8, 0.95})
	require.NoError(t, err)
	require.Len(t, intervals, 2)

	narrow, wide := intervals[0], intervals[1]
	assert.Equal(t, 0.8, narrow.Level)
	assert.Equal(t, 0.95, wide.Level)
	assert.GreaterOrEqual(t, wide.Width(), narrow.Width(),
		"a wider confidence level can never produce a narrower interval")
	assert.Less(t, narrow.Lower, narrow.Upper)

	_, err = analyzer.GenerateConfidenceIntervals(results, []float64{1.5})
	assert.True(t, core.IsValidationError(err))
}

func TestIdentifyTopRiskContributors(t *testing.T) {
	risks := []risk.Risk{
		costRisk("big", 100000, 30000),
		costRisk("mid", 50000, 10000),
		costRisk("small", 10000, 2000),
	}
	matrix := risk.NewCorrelationMatrix([]core.RiskID{"big", "mid", "small"})
	matrix.Set("big", "mid", 0.2)
	matrix.Set("mid", "small", 0.2)

	results := simulateRegister(t, risks, matrix, 20000, 3)

	analyzer := NewAnalyzer()
	contributors, err := analyzer.IdentifyTopRiskContributors(results, risks, 3)
	require.NoError(t, err)
	require.Len(t, contributors, 3)

	// Ranked descending, dominated by the high-variance risk
	assert.Equal(t, core.RiskID("big"), contributors[0].RiskID)
	assert.Equal(t, "big", contributors[0].RiskName)
	for i := 1; i < len(contributors); i++ {
		assert.GreaterOrEqual(t, contributors[i-1].ContributionPercentage, contributors[i].ContributionPercentage)
	}

	// Contribution conservation: individual variance shares account for most
	// of total variance; positive correlation cross-terms absorb the rest.
	var sum float64
	for _, c := range contributors {
		sum += c.ContributionPercentage
	}
	assert.GreaterOrEqual(t, sum, 0.7)
	assert.LessOrEqual(t, sum, 1.0)

	// topN truncates after ranking
	top1, err := analyzer.IdentifyTopRiskContributors(results, risks, 1)
	require.NoError(t, err)
	require.Len(t, top1, 1)
	assert.Equal(t, core.RiskID("big"), top1[0].RiskID)
}

func TestCompareScenarios(t *testing.T) {
	analyzer := NewAnalyzer()

	baseline := simulateRegister(t, []risk.Risk{costRisk("r1", 100000, 20000)}, nil, 5000, 4)
	shifted := simulateRegister(t, []risk.Risk{costRisk("r1", 110000, 20000)}, nil, 5000, 5)

	comparison, err := analyzer.CompareScenarios(baseline, shifted)
	require.NoError(t, err)

	assert.InDelta(t, 10000, comparison.CostDifference, 2000)
	assert.Less(t, comparison.StatisticalSignificance, 0.01,
		"a 10k mean shift over 5k iterations is overwhelmingly significant")
	assert.Greater(t, comparison.EffectSize, 0.3)

	// Same register, same seed: no detectable difference
	identical, err := analyzer.CompareScenarios(baseline, baseline)
	require.NoError(t, err)
	assert.Zero(t, identical.CostDifference)
	assert.InDelta(t, 1.0, identical.StatisticalSignificance, 1e-9)
}

func TestAnalyzer_RejectsBrokenResults(t *testing.T) {
	analyzer := NewAnalyzer()
	broken := &simulation.SimulationResults{
		SimulationID:   core.NewSimulationID(),
		IterationCount: 10,
		CostOutcomes:   make([]float64, 5), // violates the length invariant
	}
	_, err := analyzer.CalculatePercentiles(broken)
	assert.Error(t, err)
}
