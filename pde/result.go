package pde

import "github.com/AdamDanklefsen/OptionsPricing-FD/grid"

// ValuationCurve is the option value across the spot grid at valuation time.
type ValuationCurve struct {
	Spots  []float64 `json:"spots"`
	Values []float64 `json:"values"`

	// ExerciseBoundary is reserved for a per-step free-boundary trace and is
	// currently always empty.
	ExerciseBoundary []float64 `json:"exercise_boundary"`

	// UnderResolved is set when the grid had fewer than 3 points, in which
	// case every time step left the terminal payoff unchanged.
	UnderResolved bool `json:"under_resolved,omitempty"`

	// StaleSteps counts steps whose linear system was singular and which
	// carried the previous values forward (Config.AllowStaleOnSingular).
	StaleSteps int `json:"stale_steps,omitempty"`
}

func (v *ValuationCurve) Len() int { return len(v.Spots) }

// ValueAt linearly interpolates the curve at spot s.
func (v *ValuationCurve) ValueAt(s float64) float64 {
	return grid.Interpolate(v.Spots, v.Values, s)
}
