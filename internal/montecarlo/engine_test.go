package montecarlo

import (
	"context"
	"testing"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risksim/domain/core"
	"risksim/domain/risk"
)

func normalRisk(id core.RiskID, mean, stdDev float64) risk.Risk {
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

func TestRunSimulation_EndToEndNormal(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:      []risk.Risk{normalRisk("r1", 100000, 20000)},
		Iterations: 10000,
		Seed:       1,
	})
	require.NoError(t, err)
	require.NoError(t, results.Validate())
	require.Equal(t, 10000, results.IterationCount)
	require.Len(t, results.CostOutcomes, 10000)

	mean, _ := stats.Mean(results.CostOutcomes)
	// Standard error of the mean is 20000/sqrt(10000) = 200
	assert.InDelta(t, 100000, mean, 1000, "mean should land within a few standard errors")

	median, _ := stats.Percentile(results.CostOutcomes, 50)
	assert.InDelta(t, 100000, median, 1000, "median should be within 1%% of 100000")

	// Pure cost risk routes nothing into schedule outcomes
	for _, v := range results.ScheduleOutcomes[:100] {
		assert.Zero(t, v)
	}
}

func TestRunSimulation_Deterministic(t *testing.T) {
	risks := []risk.Risk{
		normalRisk("r1", 50000, 10000),
		normalRisk("r2", 20000, 5000),
	}
	matrix := risk.NewCorrelationMatrix([]core.RiskID{"r1", "r2"})
	matrix.Set("r1", "r2", 0.5)

	run := func(workers int) *Request {
		return &Request{
			Risks:        risks,
			Iterations:   5000,
			Correlations: matrix,
			Seed:         42,
		}
	}

	serial := NewEngine(Options{MaxWorkers: 1, BatchSize: 512})
	parallel := NewEngine(Options{MaxWorkers: 8, BatchSize: 512})

	a, err := serial.RunSimulation(context.Background(), *run(1))
	require.NoError(t, err)
	b, err := parallel.RunSimulation(context.Background(), *run(8))
	require.NoError(t, err)

	assert.Equal(t, a.CostOutcomes, b.CostOutcomes, "identical seed must be bit-identical regardless of worker count")
	assert.Equal(t, a.ScheduleOutcomes, b.ScheduleOutcomes)
	assert.Equal(t, a.RiskContributions, b.RiskContributions)
}

func TestRunSimulation_CorrelationShowsInOutcomes(t *testing.T) {
	risks := []risk.Risk{
		normalRisk("r1", 1000, 200),
		normalRisk("r2", 1000, 200),
	}
	matrix := risk.NewCorrelationMatrix([]core.RiskID{"r1", "r2"})
	matrix.Set("r1", "r2", 0.8)

	engine := NewEngine(DefaultOptions())
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:        risks,
		Iterations:   20000,
		Correlations: matrix,
		Seed:         7,
	})
	require.NoError(t, err)

	c1 := results.RiskContributions["r1"]
	c2 := results.RiskContributions["r2"]
	var sampleCorr float64
	{
		m1, _ := stats.Mean(c1)
		m2, _ := stats.Mean(c2)
		s1, _ := stats.StandardDeviation(c1)
		s2, _ := stats.StandardDeviation(c2)
		var cov float64
		for i := range c1 {
			cov += (c1[i] - m1) * (c2[i] - m2)
		}
		cov /= float64(len(c1))
		sampleCorr = cov / (s1 * s2)
	}
	assert.InDelta(t, 0.8, sampleCorr, 0.05, "induced correlation should track the matrix")
}

func TestRunSimulation_MitigationScalesImpacts(t *testing.T) {
	strategy := risk.MitigationStrategy{ID: "m1", Name: "expedite", Cost: 10, Effectiveness: 0.5, ImplementationTimeDays: 5}
	applied := strategy.ID
	mitigated := risk.Risk{
		ID:         "r1",
		Name:       "rework",
		Category:   risk.CategoryCost,
		ImpactType: risk.ImpactCost,
		Distribution: risk.ProbabilityDistribution{Type: risk.DistUniform, Params: map[string]float64{
			risk.ParamMin: 100, risk.ParamMax: 200,
		}},
		BaselineImpact:    150,
		Mitigations:       []risk.MitigationStrategy{strategy},
		AppliedMitigation: &applied,
	}

	engine := NewEngine(DefaultOptions())
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:      []risk.Risk{mitigated},
		Iterations: 5000,
		Seed:       3,
	})
	require.NoError(t, err)

	mean, _ := stats.Mean(results.CostOutcomes)
	// Uniform(100,200) mean 150 scaled by (1 - 0.5)
	assert.InDelta(t, 75, mean, 2)
}

func TestRunSimulation_ImpactRouting(t *testing.T) {
	both := normalRisk("rb", 100, 10)
	both.ImpactType = risk.ImpactBoth
	schedule := normalRisk("rs", 30, 5)
	schedule.ImpactType = risk.ImpactSchedule

	engine := NewEngine(DefaultOptions())
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:        []risk.Risk{both, schedule},
		Iterations:   2000,
		Seed:         9,
		BaselineCost: 1000,
		Schedule:     &risk.ScheduleData{BaselineDurationDays: 90},
	})
	require.NoError(t, err)

	costMean, _ := stats.Mean(results.CostOutcomes)
	schedMean, _ := stats.Mean(results.ScheduleOutcomes)
	assert.InDelta(t, 1000+100, costMean, 5, "cost = baseline + BOTH impact")
	assert.InDelta(t, 90+100+30, schedMean, 5, "schedule = baseline + BOTH + SCHEDULE impacts")
}

func TestRunSimulation_ConvergesOnLargeRuns(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:      []risk.Risk{normalRisk("r1", 100000, 20000)},
		Iterations: 20000,
		Seed:       11,
	})
	require.NoError(t, err)
	assert.True(t, results.Convergence.Converged)
	assert.Less(t, results.Convergence.MeanStability, 0.01)
	assert.Contains(t, results.Convergence.PercentileStability, 95)
}

func TestRunSimulation_NonPSDMatrixWarnsAndProceeds(t *testing.T) {
	risks := []risk.Risk{
		normalRisk("a", 100, 10),
		normalRisk("b", 100, 10),
		normalRisk("c", 100, 10),
	}
	matrix := risk.NewCorrelationMatrix([]core.RiskID{"a", "b", "c"})
	matrix.Set("a", "b", 0.9)
	matrix.Set("b", "c", 0.9)
	matrix.Set("a", "c", -0.9)

	engine := NewEngine(DefaultOptions())
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:        risks,
		Iterations:   2000,
		Correlations: matrix,
		Seed:         5,
	})
	require.NoError(t, err, "non-PSD input is corrected, not rejected")
	require.NotEmpty(t, results.Warnings)
	assert.Contains(t, results.Warnings[len(results.Warnings)-1], "positive semi-definite")
}

func TestValidateSimulationParameters(t *testing.T) {
	engine := NewEngine(DefaultOptions())

	t.Run("empty risk set", func(t *testing.T) {
		report := engine.ValidateSimulationParameters(nil, nil)
		assert.False(t, report.IsValid)
		require.NotEmpty(t, report.Errors)
		assert.Contains(t, report.Errors[0], "empty")
	})

	t.Run("invalid coefficient names the pair", func(t *testing.T) {
		risks := []risk.Risk{normalRisk("ra", 100, 10), normalRisk("rb", 100, 10)}
		matrix := risk.NewCorrelationMatrix([]core.RiskID{"ra", "rb"})
		matrix.Set("ra", "rb", 1.5)

		report := engine.ValidateSimulationParameters(risks, matrix)
		assert.False(t, report.IsValid)
		require.NotEmpty(t, report.Errors)
		assert.Contains(t, report.Errors[0], "ra")
		assert.Contains(t, report.Errors[0], "rb")
	})

	t.Run("bad distribution", func(t *testing.T) {
		bad := normalRisk("rx", 100, 10)
		bad.Distribution.Params[risk.ParamStdDev] = -1
		report := engine.ValidateSimulationParameters([]risk.Risk{bad}, nil)
		assert.False(t, report.IsValid)
	})

	t.Run("valid set", func(t *testing.T) {
		report := engine.ValidateSimulationParameters([]risk.Risk{normalRisk("ra", 100, 10)}, nil)
		assert.True(t, report.IsValid)
		assert.Empty(t, report.Errors)
	})
}

func TestRunSimulation_SubMinimumIterationsWarns(t *testing.T) {
	engine := NewEngine(Options{MinIterations: 1000})
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:      []risk.Risk{normalRisk("r1", 100, 10)},
		Iterations: 200,
		Seed:       1,
	})
	require.NoError(t, err, "sub-minimum iterations is a warning, not a rejection")
	require.NotEmpty(t, results.Warnings)
	assert.Contains(t, results.Warnings[0], "below the recommended minimum")
}

func TestRunSimulation_RejectsInvalidInput(t *testing.T) {
	engine := NewEngine(DefaultOptions())
	_, err := engine.RunSimulation(context.Background(), Request{Iterations: 1000})
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestRunSimulation_Timeout(t *testing.T) {
	engine := NewEngine(Options{BatchSize: 64})
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:      []risk.Risk{normalRisk("r1", 100, 10)},
		Iterations: 200000,
		Seed:       1,
		Timeout:    time.Nanosecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSimulationTimeout)
	require.NotNil(t, results, "completed iterations must accompany the timeout error")
	assert.Less(t, results.IterationCount, 200000)
}

func TestRunSimulation_TimeoutReturnsPartialResults(t *testing.T) {
	engine := NewEngine(Options{BatchSize: 128})
	results, err := engine.RunSimulation(context.Background(), Request{
		Risks:      []risk.Risk{normalRisk("r1", 100, 10)},
		Iterations: 2000000,
		Seed:       1,
		Timeout:    5 * time.Millisecond,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrSimulationTimeout)
	require.NotNil(t, results)

	// The partial results hold the contiguous prefix of completed batches
	// and still honor the sequence-length invariant.
	assert.Less(t, results.IterationCount, 2000000)
	assert.Len(t, results.CostOutcomes, results.IterationCount)
	assert.Len(t, results.ScheduleOutcomes, results.IterationCount)
	for _, seq := range results.RiskContributions {
		assert.Len(t, seq, results.IterationCount)
	}
	if results.IterationCount > 0 {
		require.NoError(t, results.Validate())
		assert.Zero(t, results.IterationCount%128, "only whole batches survive truncation")
	}
	require.NotEmpty(t, results.Warnings)
	assert.Contains(t, results.Warnings[len(results.Warnings)-1], "timed out")
}

func TestRunSimulation_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine(DefaultOptions())
	_, err := engine.RunSimulation(ctx, Request{
		Risks:      []risk.Risk{normalRisk("r1", 100, 10)},
		Iterations: 50000,
		Seed:       1,
	})
	assert.Error(t, err)
}
