package option

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrInvalidTerms is returned when contract terms fail validation.
	ErrInvalidTerms = errors.New("invalid contract terms")
)

// Payoff enumerates the payoff kind of a vanilla option.
type Payoff string

const (
	Call Payoff = "CALL"
	Put  Payoff = "PUT"
)

// Exercise enumerates when the holder may exercise.
type Exercise string

const (
	European Exercise = "EUROPEAN"
	American Exercise = "AMERICAN"
)

// ParsePayoff accepts "call"/"put" in any case.
func ParsePayoff(s string) (Payoff, error) {
	switch p := Payoff(strings.ToUpper(strings.TrimSpace(s))); p {
	case Call, Put:
		return p, nil
	default:
		return "", fmt.Errorf("ParsePayoff: unknown payoff %q", s)
	}
}

// ParseExercise accepts "european"/"american" in any case.
func ParseExercise(s string) (Exercise, error) {
	switch e := Exercise(strings.ToUpper(strings.TrimSpace(s))); e {
	case European, American:
		return e, nil
	default:
		return "", fmt.Errorf("ParseExercise: unknown exercise style %q", s)
	}
}

// Terms describes a single-asset vanilla option under Black-Scholes dynamics.
//
// Rates, dividend yield and volatility are continuously compounded decimals
// (0.05 == 5%). Maturity is in years.
type Terms struct {
	Payoff     Payoff   `json:"payoff" yaml:"payoff" validate:"required,oneof=CALL PUT"`
	Exercise   Exercise `json:"exercise" yaml:"exercise" validate:"required,oneof=EUROPEAN AMERICAN"`
	Strike     float64  `json:"strike" yaml:"strike" validate:"gte=0"`
	Maturity   float64  `json:"maturity" yaml:"maturity" validate:"gte=0"`
	Rate       float64  `json:"rate" yaml:"rate"`
	Dividend   float64  `json:"dividend" yaml:"dividend"`
	Volatility float64  `json:"volatility" yaml:"volatility" validate:"gte=0"`
	ID         string   `json:"id,omitempty" yaml:"id,omitempty"`
}

func (t Terms) IsCall() bool     { return t.Payoff == Call }
func (t Terms) IsAmerican() bool { return t.Exercise == American }

// Intrinsic returns the immediate-exercise value at spot s.
func (t Terms) Intrinsic(s float64) float64 {
	if t.IsCall() {
		return math.Max(0, s-t.Strike)
	}
	return math.Max(0, t.Strike-s)
}

// String renders a short label such as "AMERICAN PUT K=100 T=1".
func (t Terms) String() string {
	label := fmt.Sprintf("%s %s K=%g T=%g", t.Exercise, t.Payoff, t.Strike, t.Maturity)
	if t.ID != "" {
		return t.ID + " " + label
	}
	return label
}

var validate = validator.New()

// Validate rejects terms the pricer cannot interpret: unknown payoff or
// exercise, negative strike, maturity or volatility, and non-finite numbers.
func (t Terms) Validate() error {
	if err := validate.Struct(t); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTerms, err)
	}
	for name, v := range map[string]float64{
		"strike":     t.Strike,
		"maturity":   t.Maturity,
		"rate":       t.Rate,
		"dividend":   t.Dividend,
		"volatility": t.Volatility,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidTerms, name)
		}
	}
	return nil
}
