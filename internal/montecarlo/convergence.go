package montecarlo

import (
	"math"

	"github.com/montanaflynn/stats"

	"risksim/domain/simulation"
)

// The stability check summarizes the outcome sequence twice: once without
// its final tail, once in full. tailDivisor fixes that tail at a tenth of
// the sequence.
const tailDivisor = 10

// percentiles tracked for stability scoring
var stabilityPercentiles = []int{50, 90, 95}

// computeConvergence scores how much the mean, variance, and key percentiles
// move when the final tenth of the outcome sequence is included. Failure to
// converge is reported through the metrics, never as an error.
func computeConvergence(outcomes []float64, tolerance float64) simulation.ConvergenceMetrics {
	metrics := simulation.ConvergenceMetrics{
		PercentileStability: make(map[int]float64, len(stabilityPercentiles)),
	}
	n := len(outcomes)
	if n < tailDivisor*2 {
		// Too few iterations to compare windows at all
		metrics.MeanStability = math.Inf(1)
		metrics.VarianceStability = math.Inf(1)
		for _, p := range stabilityPercentiles {
			metrics.PercentileStability[p] = math.Inf(1)
		}
		return metrics
	}

	prevEnd := (tailDivisor - 1) * n / tailDivisor
	prev := summarize(outcomes[:prevEnd])
	last := summarize(outcomes)

	metrics.MeanStability = relativeDelta(prev.mean, last.mean)
	metrics.VarianceStability = relativeDelta(prev.variance, last.variance)
	converged := metrics.MeanStability <= tolerance && metrics.VarianceStability <= tolerance
	for i, p := range stabilityPercentiles {
		delta := relativeDelta(prev.percentiles[i], last.percentiles[i])
		metrics.PercentileStability[p] = delta
		if delta > tolerance {
			converged = false
		}
	}
	metrics.Converged = converged
	return metrics
}

type windowSummary struct {
	mean        float64
	variance    float64
	percentiles []float64
}

func summarize(window []float64) windowSummary {
	mean, _ := stats.Mean(window)
	variance, _ := stats.Variance(window)
	out := windowSummary{
		mean:        mean,
		variance:    variance,
		percentiles: make([]float64, len(stabilityPercentiles)),
	}
	for i, p := range stabilityPercentiles {
		out.percentiles[i], _ = stats.Percentile(window, float64(p))
	}
	return out
}

// relativeDelta compares the two window statistics, guarding the near-zero
// denominator case
func relativeDelta(prev, curr float64) float64 {
	denom := math.Abs(prev)
	if denom < 1e-12 {
		denom = 1e-12
	}
	return math.Abs(curr-prev) / denom
}
