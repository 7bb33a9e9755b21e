package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"risksim/app"
	"risksim/domain/risk"
	"risksim/domain/simulation"
	"risksim/internal/analysis"
	"risksim/internal/config"
	"risksim/internal/montecarlo"
)

// registerFile is the JSON risk register consumed by the CLI. Building these
// objects is normally the job of an external risk-register component; the
// CLI is just a driver around the core.
type registerFile struct {
	Risks        []risk.Risk             `json:"risks"`
	Correlations *risk.CorrelationMatrix `json:"correlations,omitempty"`
	BaselineCost float64                 `json:"baseline_cost,omitempty"`
	Schedule     *risk.ScheduleData      `json:"schedule,omitempty"`
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()

	rootCmd := &cobra.Command{
		Use:           "riskmc",
		Short:         "Monte Carlo risk simulation for project cost and schedule outcomes",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newRunCmd(cfg, log),
		newValidateCmd(cfg, log),
		newCompareCmd(cfg, log),
	)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func newRunCmd(cfg *config.Config, log zerolog.Logger) *cobra.Command {
	var iterations int
	var seed int64
	var levels []float64
	var topN int

	cmd := &cobra.Command{
		Use:   "run [register.json]",
		Short: "Run a simulation over a JSON risk register and print the analysis report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			register, err := loadRegister(args[0])
			if err != nil {
				return err
			}
			if iterations <= 0 {
				iterations = cfg.DefaultIterations
			}

			service := newService(cfg, log)
			report, err := service.Run(cmd.Context(), app.RunRequest{
				Request: montecarlo.Request{
					Risks:        register.Risks,
					Iterations:   iterations,
					Correlations: register.Correlations,
					Seed:         seed,
					BaselineCost: register.BaselineCost,
					Schedule:     register.Schedule,
					Timeout:      cfg.Timeout,
				},
				ConfidenceLevels: levels,
				TopContributors:  topN,
			})
			if err != nil {
				return err
			}
			return emitJSON(cmd, report)
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "iteration count (default from RISKSIM_DEFAULT_ITERATIONS)")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed for reproducible runs")
	cmd.Flags().Float64SliceVar(&levels, "levels", nil, "confidence levels, e.g. 0.8,0.95")
	cmd.Flags().IntVar(&topN, "top", 0, "number of top risk contributors to report (default all)")
	return cmd
}

func newValidateCmd(cfg *config.Config, log zerolog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [register.json]",
		Short: "Validate a risk register and correlation matrix without sampling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			register, err := loadRegister(args[0])
			if err != nil {
				return err
			}
			report := newService(cfg, log).Validate(register.Risks, register.Correlations)
			if err := emitJSON(cmd, report); err != nil {
				return err
			}
			if !report.IsValid {
				return fmt.Errorf("register is invalid (%d errors)", len(report.Errors))
			}
			return nil
		},
	}
}

func newCompareCmd(cfg *config.Config, log zerolog.Logger) *cobra.Command {
	var iterations int
	var seed int64

	cmd := &cobra.Command{
		Use:   "compare [a.json] [b.json]",
		Short: "Simulate two registers with the same seed and compare their outcomes",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if iterations <= 0 {
				iterations = cfg.DefaultIterations
			}
			engine := montecarlo.NewEngine(cfg.EngineOptions())
			analyzer := analysis.NewAnalyzer()

			resultsA, err := simulateRegister(cmd.Context(), engine, cfg, args[0], iterations, seed)
			if err != nil {
				return fmt.Errorf("simulating %s: %w", args[0], err)
			}
			resultsB, err := simulateRegister(cmd.Context(), engine, cfg, args[1], iterations, seed)
			if err != nil {
				return fmt.Errorf("simulating %s: %w", args[1], err)
			}
			comparison, err := analyzer.CompareScenarios(resultsA, resultsB)
			if err != nil {
				return err
			}
			return emitJSON(cmd, comparison)
		},
	}
	cmd.Flags().IntVarP(&iterations, "iterations", "n", 0, "iteration count per register")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed shared by both runs")
	return cmd
}

func simulateRegister(ctx context.Context, engine *montecarlo.Engine, cfg *config.Config, path string, iterations int, seed int64) (*simulation.SimulationResults, error) {
	register, err := loadRegister(path)
	if err != nil {
		return nil, err
	}
	return engine.RunSimulation(ctx, montecarlo.Request{
		Risks:        register.Risks,
		Iterations:   iterations,
		Correlations: register.Correlations,
		Seed:         seed,
		BaselineCost: register.BaselineCost,
		Schedule:     register.Schedule,
		Timeout:      cfg.Timeout,
	})
}

func newService(cfg *config.Config, log zerolog.Logger) *app.SimulationService {
	return app.NewSimulationService(montecarlo.NewEngine(cfg.EngineOptions()), analysis.NewAnalyzer(), log)
}

func loadRegister(path string) (*registerFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading register: %w", err)
	}
	register := &registerFile{}
	if err := json.Unmarshal(data, register); err != nil {
		return nil, fmt.Errorf("parsing register %s: %w", path, err)
	}
	return register, nil
}

func emitJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
