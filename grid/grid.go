package grid

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	// ErrNotAscending is returned by New when points are not strictly increasing.
	ErrNotAscending = errors.New("grid points must be strictly ascending")
)

// SpotGrid is an ascending discretization of the spot axis.
//
// Spacing is the nominal step: exact for uniform grids, the mean step for
// grids built by New.
type SpotGrid struct {
	Points  []float64
	Spacing float64
}

// NewUniform returns n+1 points spaced evenly on [0, sMax].
//
// n must be at least 1 and sMax positive; anything else is a caller bug.
func NewUniform(sMax float64, n int) *SpotGrid {
	if n < 1 {
		panic(fmt.Sprintf("NewUniform: need at least 1 interval, got %d", n))
	}
	if !(sMax > 0) || math.IsInf(sMax, 0) {
		panic(fmt.Sprintf("NewUniform: sMax must be positive and finite, got %g", sMax))
	}

	g := &SpotGrid{
		Points:  make([]float64, n+1),
		Spacing: sMax / float64(n),
	}
	for i := range g.Points {
		g.Points[i] = float64(i) * g.Spacing
	}
	return g
}

// New wraps caller-supplied (possibly non-uniform) points. The slice is copied.
func New(points []float64) (*SpotGrid, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("grid.New: no points")
	}
	for i, s := range points {
		if math.IsNaN(s) || math.IsInf(s, 0) {
			return nil, fmt.Errorf("grid.New: point %d is not finite", i)
		}
		if i > 0 && !(s > points[i-1]) {
			return nil, fmt.Errorf("grid.New: %w (index %d: %g after %g)", ErrNotAscending, i, s, points[i-1])
		}
	}

	g := &SpotGrid{Points: append([]float64(nil), points...)}
	if n := len(points) - 1; n > 0 {
		g.Spacing = (points[n] - points[0]) / float64(n)
	}
	return g, nil
}

func (g *SpotGrid) Len() int { return len(g.Points) }

// Max returns the largest spot on the grid.
func (g *SpotGrid) Max() float64 { return g.Points[len(g.Points)-1] }

// Degenerate reports whether the grid has no interior node for a
// three-point stencil.
func (g *SpotGrid) Degenerate() bool { return len(g.Points) < 3 }

// Bracket returns indices i, i+1 with Points[i] <= s <= Points[i+1].
// Outside the grid it returns the nearest boundary pair.
func (g *SpotGrid) Bracket(s float64) (int, int) {
	return bracket(g.Points, s)
}

// Interpolate linearly interpolates values (one per point) at spot s,
// extrapolating linearly from the boundary pair outside the grid.
func (g *SpotGrid) Interpolate(values []float64, s float64) float64 {
	return Interpolate(g.Points, values, s)
}

// Interpolate is the slice form of SpotGrid.Interpolate.
func Interpolate(xs, ys []float64, x float64) float64 {
	if len(xs) != len(ys) {
		panic(fmt.Sprintf("Interpolate: %d points but %d values", len(xs), len(ys)))
	}
	switch len(xs) {
	case 0:
		return math.NaN()
	case 1:
		return ys[0]
	}

	i, j := bracket(xs, x)
	w := (x - xs[i]) / (xs[j] - xs[i])
	return ys[i] + w*(ys[j]-ys[i])
}

// bracket finds the first index with xs[idx] >= x by binary search and
// returns the surrounding pair, or the boundary pair when x is outside.
func bracket(xs []float64, x float64) (int, int) {
	if len(xs) < 2 {
		panic("bracket: need at least 2 points")
	}

	idx := sort.SearchFloat64s(xs, x)
	if idx <= 0 {
		return 0, 1
	}
	if idx >= len(xs) {
		return len(xs) - 2, len(xs) - 1
	}
	return idx - 1, idx
}
