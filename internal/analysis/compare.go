package analysis

import (
	"fmt"
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"risksim/domain/simulation"
)

// CompareScenarios runs a two-sample comparison over the outcome sequences
// of two completed simulations: mean cost difference (b minus a), Welch's
// t-test p-value as statistical significance, and Cohen's d as effect size.
func (a *Analyzer) CompareScenarios(resultsA, resultsB *simulation.SimulationResults) (*simulation.ScenarioComparison, error) {
	if err := resultsA.Validate(); err != nil {
		return nil, fmt.Errorf("first results: %w", err)
	}
	if err := resultsB.Validate(); err != nil {
		return nil, fmt.Errorf("second results: %w", err)
	}

	meanA, _ := stats.Mean(resultsA.CostOutcomes)
	meanB, _ := stats.Mean(resultsB.CostOutcomes)
	schedMeanA, _ := stats.Mean(resultsA.ScheduleOutcomes)
	schedMeanB, _ := stats.Mean(resultsB.ScheduleOutcomes)

	pValue, effectSize := welchComparison(resultsA.CostOutcomes, resultsB.CostOutcomes)

	return &simulation.ScenarioComparison{
		CostDifference:          meanB - meanA,
		ScheduleDifference:      schedMeanB - schedMeanA,
		StatisticalSignificance: pValue,
		EffectSize:              effectSize,
	}, nil
}

// welchComparison computes a two-tailed Welch's t-test p-value and Cohen's d
// (pooled standard deviation) for two samples
func welchComparison(sampleA, sampleB []float64) (pValue, effectSize float64) {
	n1 := float64(len(sampleA))
	n2 := float64(len(sampleB))
	if n1 < 2 || n2 < 2 {
		return 1, 0
	}

	mean1, _ := stats.Mean(sampleA)
	mean2, _ := stats.Mean(sampleB)
	var1, _ := stats.SampleVariance(sampleA)
	var2, _ := stats.SampleVariance(sampleB)

	se := math.Sqrt(var1/n1 + var2/n2)
	if se == 0 {
		// Identical constant samples: no detectable difference
		return 1, 0
	}
	tStat := (mean2 - mean1) / se

	// Welch-Satterthwaite degrees of freedom
	df := math.Pow(var1/n1+var2/n2, 2) /
		(math.Pow(var1/n1, 2)/(n1-1) + math.Pow(var2/n2, 2)/(n2-1))

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * (1 - tDist.CDF(math.Abs(tStat)))

	pooledSD := math.Sqrt(((n1-1)*var1 + (n2-1)*var2) / (n1 + n2 - 2))
	if pooledSD > 0 {
		effectSize = (mean2 - mean1) / pooledSD
	}
	return pValue, effectSize
}
