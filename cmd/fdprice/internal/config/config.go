// Package config loads fdprice settings.
//
// Precedence, lowest first: built-in defaults, the YAML file given with
// --config, a .env file in the working directory, then FDPRICE_* environment
// variables (for example FDPRICE_SOLVER_SPOT_STEPS or FDPRICE_LOGGING_LEVEL).
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/AdamDanklefsen/OptionsPricing-FD/logger"
	"github.com/AdamDanklefsen/OptionsPricing-FD/pde"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "FDPRICE"

// Config is the full CLI configuration.
type Config struct {
	Solver  pde.Config    `yaml:"solver" envconfig:"SOLVER"`
	Logging logger.Config `yaml:"logging" envconfig:"LOGGING"`

	// Workers bounds how many tasks are priced concurrently.
	Workers int `yaml:"workers" envconfig:"WORKERS" validate:"gte=1"`

	// Places is the number of decimal places prices are rounded to.
	Places int32 `yaml:"places" envconfig:"PLACES" validate:"gte=0,lte=12"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Solver:  pde.DefaultConfig,
		Logging: logger.DefaultConfig,
		Workers: 4,
		Places:  6,
	}
}

var validate = validator.New()

// Load builds the configuration. path may be empty.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config.Load: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("config.Load: %s: %w", path, err)
		}
	}

	// godotenv never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("config.Load: .env: %w", err)
	}
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	scheme, err := pde.ParseScheme(string(cfg.Solver.Scheme))
	if err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	cfg.Solver.Scheme = scheme

	if err := validate.Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}
