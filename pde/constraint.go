package pde

import (
	"math"

	"github.com/AdamDanklefsen/OptionsPricing-FD/option"
)

// ExerciseConstraint enforces the early-exercise condition on a freshly
// solved time level. Implementations modify values in place.
type ExerciseConstraint interface {
	Apply(spots, values []float64)
}

// Projection floors every value at the contract's intrinsic payoff after the
// unconstrained implicit solve. It approximates the linear complementarity
// problem rather than solving it; a PSOR or penalty method would replace it
// behind the same interface.
type Projection struct {
	Terms option.Terms
}

func (p Projection) Apply(spots, values []float64) {
	for i, s := range spots {
		values[i] = math.Max(values[i], p.Terms.Intrinsic(s))
	}
}

// Unconstrained leaves values untouched (European exercise).
type Unconstrained struct{}

func (Unconstrained) Apply(spots, values []float64) {}

// constraintFor picks the projection for American contracts, and for European
// ones only when cfg.ProjectEuropean asks for it.
func constraintFor(terms option.Terms, cfg Config) ExerciseConstraint {
	if terms.IsAmerican() || cfg.ProjectEuropean {
		return Projection{Terms: terms}
	}
	return Unconstrained{}
}
