package pde

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidConfig is returned when solver configuration fails validation.
	ErrInvalidConfig = errors.New("invalid solver config")
	// ErrUnsupportedScheme is returned for a time-integration scheme that is
	// recognised but not implemented.
	ErrUnsupportedScheme = errors.New("unsupported time-integration scheme")
)

// Scheme selects the time-integration scheme.
type Scheme string

const (
	ImplicitEuler Scheme = "implicit-euler"
	CrankNicolson Scheme = "crank-nicolson"
)

// ParseScheme accepts the scheme names case-insensitively; "" means implicit Euler.
func ParseScheme(s string) (Scheme, error) {
	switch sc := Scheme(strings.ToLower(strings.TrimSpace(s))); sc {
	case "":
		return ImplicitEuler, nil
	case ImplicitEuler, CrankNicolson:
		return sc, nil
	default:
		return "", fmt.Errorf("ParseScheme: unknown scheme %q", s)
	}
}

// Config holds grid, time-stepping and reporting parameters for a solve.
type Config struct {
	// SpotSteps is the number of spot intervals; the grid has SpotSteps+1 points.
	SpotSteps int `json:"spot_steps" yaml:"spot_steps" envconfig:"SPOT_STEPS" validate:"gte=1"`

	// TimeSteps is the number of backward time steps.
	TimeSteps int `json:"time_steps" yaml:"time_steps" envconfig:"TIME_STEPS" validate:"gte=1"`

	// SpotMaxMultiplier sizes the grid: S_max = max(1, SpotMaxMultiplier * S0).
	SpotMaxMultiplier float64 `json:"smax_multiplier" yaml:"smax_multiplier" envconfig:"SMAX_MULTIPLIER" validate:"gt=1"`

	// Tolerance, Relaxation and MaxIterations parameterise a projected
	// iterative (PSOR) solve. The projection constraint does not read them.
	Tolerance     float64 `json:"tolerance" yaml:"tolerance" envconfig:"TOLERANCE" validate:"gt=0"`
	Relaxation    float64 `json:"relaxation" yaml:"relaxation" envconfig:"RELAXATION" validate:"gt=0,lt=2"`
	MaxIterations int     `json:"max_iterations" yaml:"max_iterations" envconfig:"MAX_ITERATIONS" validate:"gte=1"`

	Scheme Scheme `json:"scheme" yaml:"scheme" envconfig:"SCHEME" validate:"oneof=implicit-euler crank-nicolson"`

	// Verbose logs progress every tenth of the march.
	Verbose bool `json:"verbose" yaml:"verbose" envconfig:"VERBOSE"`

	// ProjectEuropean floors European values at intrinsic after every step,
	// as American contracts are. Off by default: a European put is worth
	// less than intrinsic deep in the money.
	ProjectEuropean bool `json:"project_european" yaml:"project_european" envconfig:"PROJECT_EUROPEAN"`

	// AllowStaleOnSingular keeps the previous step's values when the linear
	// system is singular instead of failing the solve. Each such step is
	// counted in ValuationCurve.StaleSteps.
	AllowStaleOnSingular bool `json:"allow_stale_on_singular" yaml:"allow_stale_on_singular" envconfig:"ALLOW_STALE_ON_SINGULAR"`
}

// DefaultConfig provides production defaults.
var DefaultConfig = Config{
	SpotSteps:         400,
	TimeSteps:         400,
	SpotMaxMultiplier: 3.0,
	Tolerance:         1e-8,
	Relaxation:        1.2,
	MaxIterations:     10000,
	Scheme:            ImplicitEuler,
}

var validate = validator.New()

// Validate checks ranges and rejects schemes the solver does not implement.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Scheme != ImplicitEuler {
		return fmt.Errorf("%w: %s", ErrUnsupportedScheme, c.Scheme)
	}
	return nil
}
