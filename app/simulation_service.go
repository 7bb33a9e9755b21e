package app

import (
	"context"

	"github.com/rs/zerolog"

	"risksim/domain/risk"
	"risksim/domain/simulation"
	"risksim/internal/analysis"
	"risksim/internal/montecarlo"
)

// default confidence levels reported when the caller does not override them
var defaultConfidenceLevels = []float64{0.80, 0.90, 0.95}

// SimulationService orchestrates one request: validate, run the engine, and
// derive the standard decision-support analyses from the results.
type SimulationService struct {
	engine   *montecarlo.Engine
	analyzer *analysis.Analyzer
	log      zerolog.Logger
}

// RunRequest bundles the engine request with analysis preferences
type RunRequest struct {
	montecarlo.Request
	ConfidenceLevels []float64
	TopContributors  int
}

// RunReport is the combined output of a run: raw results plus derived
// analyses, ready for JSON transport.
type RunReport struct {
	Results             *simulation.SimulationResults   `json:"results"`
	Percentiles         *simulation.PercentileAnalysis  `json:"percentiles"`
	SchedulePercentiles *simulation.PercentileAnalysis  `json:"schedule_percentiles"`
	ConfidenceIntervals []simulation.ConfidenceInterval `json:"confidence_intervals"`
	TopContributors     []simulation.RiskContribution   `json:"top_contributors"`
}

// NewSimulationService wires the engine and analyzer together
func NewSimulationService(engine *montecarlo.Engine, analyzer *analysis.Analyzer, log zerolog.Logger) *SimulationService {
	return &SimulationService{
		engine:   engine,
		analyzer: analyzer,
		log:      log,
	}
}

// Validate checks a risk register without sampling
func (s *SimulationService) Validate(risks []risk.Risk, matrix *risk.CorrelationMatrix) simulation.ValidationReport {
	return s.engine.ValidateSimulationParameters(risks, matrix)
}

// Run executes the simulation and derives analyses from its results
func (s *SimulationService) Run(ctx context.Context, req RunRequest) (*RunReport, error) {
	s.log.Info().
		Int("risks", len(req.Risks)).
		Int("iterations", req.Iterations).
		Int64("seed", req.Seed).
		Bool("correlated", req.Correlations != nil).
		Msg("starting simulation")

	results, err := s.engine.RunSimulation(ctx, req.Request)
	if err != nil {
		s.log.Error().Err(err).Msg("simulation failed")
		return nil, err
	}
	for _, warning := range results.Warnings {
		s.log.Warn().Str("simulation_id", results.SimulationID.String()).Msg(warning)
	}
	s.log.Info().
		Str("simulation_id", results.SimulationID.String()).
		Int64("execution_ms", results.ExecutionMs).
		Bool("converged", results.Convergence.Converged).
		Msg("simulation complete")

	report := &RunReport{Results: results}
	if report.Percentiles, err = s.analyzer.CalculatePercentiles(results); err != nil {
		return nil, err
	}
	if report.SchedulePercentiles, err = s.analyzer.CalculateSchedulePercentiles(results); err != nil {
		return nil, err
	}

	levels := req.ConfidenceLevels
	if len(levels) == 0 {
		levels = defaultConfidenceLevels
	}
	if report.ConfidenceIntervals, err = s.analyzer.GenerateConfidenceIntervals(results, levels); err != nil {
		return nil, err
	}

	topN := req.TopContributors
	if topN <= 0 {
		topN = len(req.Risks)
	}
	if report.TopContributors, err = s.analyzer.IdentifyTopRiskContributors(results, req.Risks, topN); err != nil {
		return nil, err
	}
	return report, nil
}
