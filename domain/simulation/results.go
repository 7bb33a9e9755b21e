package simulation

import (
	"fmt"

	"risksim/domain/core"
)

// ConvergenceMetrics reports how stable the summary statistics were as the
// iteration sequence grew. Scores are relative deltas between the sequence
// without its final tenth and the full sequence; lower is more stable.
type ConvergenceMetrics struct {
	MeanStability       float64         `json:"mean_stability"`
	VarianceStability   float64         `json:"variance_stability"`
	PercentileStability map[int]float64 `json:"percentile_stability"`
	Converged           bool            `json:"converged"`
}

// SimulationResults is the immutable output of one engine run. All sequences
// share identical length equal to IterationCount.
type SimulationResults struct {
	SimulationID      core.SimulationID         `json:"simulation_id"`
	Timestamp         core.Timestamp            `json:"timestamp"`
	Seed              int64                     `json:"seed"`
	IterationCount    int                       `json:"iteration_count"`
	CostOutcomes      []float64                 `json:"cost_outcomes"`
	ScheduleOutcomes  []float64                 `json:"schedule_outcomes"`
	RiskContributions map[core.RiskID][]float64 `json:"risk_contributions"`
	Convergence       ConvergenceMetrics        `json:"convergence_metrics"`
	Warnings          []string                  `json:"warnings,omitempty"`
	ExecutionMs       int64                     `json:"execution_ms"`
}

// Validate checks the sequence-length invariant
func (r *SimulationResults) Validate() error {
	if r.IterationCount <= 0 {
		return core.NewValidationError("results.iteration_count", "must be > 0")
	}
	if len(r.CostOutcomes) != r.IterationCount {
		return fmt.Errorf("cost_outcomes length %d != iteration_count %d", len(r.CostOutcomes), r.IterationCount)
	}
	if len(r.ScheduleOutcomes) != r.IterationCount {
		return fmt.Errorf("schedule_outcomes length %d != iteration_count %d", len(r.ScheduleOutcomes), r.IterationCount)
	}
	for id, seq := range r.RiskContributions {
		if len(seq) != r.IterationCount {
			return fmt.Errorf("risk_contributions[%s] length %d != iteration_count %d", id, len(seq), r.IterationCount)
		}
	}
	return nil
}

// TotalOutcomes returns the per-iteration sum of cost and schedule outcomes.
// Used for variance attribution across impact types.
func (r *SimulationResults) TotalOutcomes() []float64 {
	total := make([]float64, r.IterationCount)
	for i := range total {
		total[i] = r.CostOutcomes[i] + r.ScheduleOutcomes[i]
	}
	return total
}
