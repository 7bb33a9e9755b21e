package montecarlo

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"risksim/adapters/stats/correlation"
	"risksim/adapters/stats/sampling"
	"risksim/domain/core"
	"risksim/domain/risk"
	"risksim/domain/simulation"
)

// Options configures engine behavior. Zero values fall back to defaults.
type Options struct {
	MinIterations        int     // below this, validation emits a warning
	BatchSize            int     // iterations per deterministic sub-stream
	MaxWorkers           int     // 0 means GOMAXPROCS
	ConvergenceTolerance float64 // relative delta threshold between windows
}

// DefaultOptions returns the engine defaults
func DefaultOptions() Options {
	return Options{
		MinIterations:        1000,
		BatchSize:            2048,
		MaxWorkers:           0,
		ConvergenceTolerance: 0.01,
	}
}

// Request describes one simulation run. The engine holds no run-scoped
// mutable shared state: every call receives its own inputs and returns its
// own results, so concurrent calls never interfere.
type Request struct {
	Risks        []risk.Risk
	Iterations   int
	Correlations *risk.CorrelationMatrix
	Seed         int64
	BaselineCost float64
	Schedule     *risk.ScheduleData
	Timeout      time.Duration
}

// Engine runs correlated Monte Carlo sampling over a risk register.
// Identical seed and identical inputs produce bit-identical output
// sequences regardless of worker count.
type Engine struct {
	analyzer *correlation.Analyzer
	opts     Options
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	def := DefaultOptions()
	if opts.MinIterations <= 0 {
		opts.MinIterations = def.MinIterations
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = def.BatchSize
	}
	if opts.ConvergenceTolerance <= 0 {
		opts.ConvergenceTolerance = def.ConvergenceTolerance
	}
	return &Engine{
		analyzer: correlation.NewAnalyzer(),
		opts:     opts,
	}
}

// ValidateSimulationParameters checks the risk set and optional correlation
// matrix before any sampling. Distribution problems, out-of-range
// coefficients, unknown pair ids, and empty risk sets are errors.
func (e *Engine) ValidateSimulationParameters(risks []risk.Risk, matrix *risk.CorrelationMatrix) simulation.ValidationReport {
	report := simulation.NewValidationReport()

	if len(risks) == 0 {
		report.AddError(core.ErrEmptyRiskSet.Error())
		return report
	}
	seen := make(map[core.RiskID]bool, len(risks))
	for _, r := range risks {
		if err := r.Validate(); err != nil {
			report.AddError(err.Error())
			continue
		}
		if seen[r.ID] {
			report.AddError(fmt.Sprintf("%s: %s", core.ErrDuplicateRisk.Error(), r.ID))
		}
		seen[r.ID] = true
	}
	if matrix != nil {
		if err := e.analyzer.Validate(matrix, risks); err != nil {
			report.AddError(err.Error())
		}
	}
	return report
}

// validateRequest layers run-level checks on top of parameter validation
func (e *Engine) validateRequest(req Request) simulation.ValidationReport {
	report := e.ValidateSimulationParameters(req.Risks, req.Correlations)
	if req.Iterations <= 0 {
		report.AddError(fmt.Sprintf("iterations must be > 0, got %d", req.Iterations))
	} else if req.Iterations < e.opts.MinIterations {
		report.AddWarning(fmt.Sprintf("iteration count %d is below the recommended minimum %d; convergence may be poor", req.Iterations, e.opts.MinIterations))
	}
	if req.Schedule != nil {
		if err := req.Schedule.Validate(); err != nil {
			report.AddError(err.Error())
		}
	}
	if req.BaselineCost < 0 {
		report.AddError("baseline cost must be >= 0")
	}
	return report
}

// RunSimulation executes the sampling loop. Per iteration: draw one standard
// normal score per risk, correlate the scores when a matrix is supplied, map
// through the normal CDF to uniforms, inverse-transform into each marginal,
// scale by (1 - effectiveness) where a mitigation is applied, and route the
// impact into cost and/or schedule outcomes by impact type.
//
// On timeout the completed iterations are not discarded: the contiguous
// prefix of finished batches is returned as partial results alongside
// ErrSimulationTimeout, with IterationCount trimmed to match.
func (e *Engine) RunSimulation(ctx context.Context, req Request) (*simulation.SimulationResults, error) {
	start := time.Now()

	report := e.validateRequest(req)
	if !report.IsValid {
		return nil, fmt.Errorf("%w: %s", core.ErrValidation, strings.Join(report.Errors, "; "))
	}
	warnings := append([]string(nil), report.Warnings...)

	var factor *correlation.Factor
	if req.Correlations != nil {
		var err error
		factor, err = e.analyzer.Factorize(req.Correlations, req.Risks)
		if err != nil {
			return nil, err
		}
		warnings = append(warnings, factor.Warnings...)
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	n := req.Iterations
	cost := make([]float64, n)
	sched := make([]float64, n)
	contributions := make(map[core.RiskID][]float64, len(req.Risks))
	for _, r := range req.Risks {
		contributions[r.ID] = make([]float64, n)
	}
	scales := make([]float64, len(req.Risks))
	for i, r := range req.Risks {
		scales[i] = r.MitigationScale()
	}

	workers := e.opts.MaxWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	batchSize := e.opts.BatchSize
	batches := (n + batchSize - 1) / batchSize

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	completed := make([]bool, batches)
	for b := 0; b < batches; b++ {
		lo := b * batchSize
		hi := lo + batchSize
		if hi > n {
			hi = n
		}
		g.Go(func() error {
			// Cancellation is checked at batch boundaries only; a batch
			// in flight runs to completion.
			if err := gctx.Err(); err != nil {
				return err
			}
			rng := sampling.NewStream(req.Seed, b)
			scores := make([]float64, len(req.Risks))
			correlated := scores
			if factor != nil {
				correlated = make([]float64, len(req.Risks))
			}
			for i := lo; i < hi; i++ {
				for j := range req.Risks {
					scores[j] = sampling.NormalScore(rng.Float64())
				}
				if factor != nil {
					factor.Correlate(scores, correlated)
				}
				for j := range req.Risks {
					r := &req.Risks[j]
					u := sampling.NormalCDF(correlated[j])
					impact := sampling.Quantile(r.Distribution, u) * scales[j]
					if r.ImpactType.AffectsCost() {
						cost[i] += impact
					}
					if r.ImpactType.AffectsSchedule() {
						sched[i] += impact
					}
					contributions[r.ID][i] = impact
				}
			}
			completed[b] = true
			return nil
		})
	}
	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.DeadlineExceeded) {
		return nil, runErr
	}

	done := n
	if runErr != nil {
		// Keep the contiguous prefix of finished batches; later batches may
		// have finished out of order but cannot be kept without breaking the
		// sequence-length invariant.
		done = 0
		for b := 0; b < batches && completed[b]; b++ {
			done = (b + 1) * batchSize
		}
		if done > n {
			done = n
		}
		cost = cost[:done]
		sched = sched[:done]
		for id := range contributions {
			contributions[id] = contributions[id][:done]
		}
		warnings = append(warnings, fmt.Sprintf("simulation timed out after completing %d of %d iterations", done, n))
	}

	if req.BaselineCost != 0 || req.Schedule != nil {
		baseDur := 0.0
		if req.Schedule != nil {
			baseDur = req.Schedule.BaselineDurationDays
		}
		for i := range cost {
			cost[i] += req.BaselineCost
			sched[i] += baseDur
		}
	}

	results := &simulation.SimulationResults{
		SimulationID:      core.NewSimulationID(),
		Timestamp:         core.Now(),
		Seed:              req.Seed,
		IterationCount:    done,
		CostOutcomes:      cost,
		ScheduleOutcomes:  sched,
		RiskContributions: contributions,
		Warnings:          warnings,
		ExecutionMs:       time.Since(start).Milliseconds(),
	}
	results.Convergence = computeConvergence(results.TotalOutcomes(), e.opts.ConvergenceTolerance)
	if runErr != nil {
		return results, fmt.Errorf("%w after %s (%d of %d iterations completed)", core.ErrSimulationTimeout, time.Since(start).Round(time.Millisecond), done, n)
	}
	return results, nil
}
