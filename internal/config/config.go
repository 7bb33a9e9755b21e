package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"risksim/internal/montecarlo"
)

// Config holds engine and runner defaults, overridable through RISKSIM_*
// environment variables.
type Config struct {
	MinIterations        int           `env:"RISKSIM_MIN_ITERATIONS" envDefault:"1000"`
	DefaultIterations    int           `env:"RISKSIM_DEFAULT_ITERATIONS" envDefault:"10000"`
	BatchSize            int           `env:"RISKSIM_BATCH_SIZE" envDefault:"2048"`
	MaxWorkers           int           `env:"RISKSIM_MAX_WORKERS" envDefault:"0"`
	ConvergenceTolerance float64       `env:"RISKSIM_CONVERGENCE_TOLERANCE" envDefault:"0.01"`
	Timeout              time.Duration `env:"RISKSIM_TIMEOUT" envDefault:"60s"`
	LogLevel             string        `env:"RISKSIM_LOG_LEVEL" envDefault:"info"`
}

// Load reads an optional .env file, then parses the environment
func Load() (*Config, error) {
	// .env is a development convenience; absence is not an error
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return cfg, nil
}

// EngineOptions maps the config onto engine options
func (c *Config) EngineOptions() montecarlo.Options {
	return montecarlo.Options{
		MinIterations:        c.MinIterations,
		BatchSize:            c.BatchSize,
		MaxWorkers:           c.MaxWorkers,
		ConvergenceTolerance: c.ConvergenceTolerance,
	}
}
