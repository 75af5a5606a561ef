package pde

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/AdamDanklefsen/OptionsPricing-FD/grid"
	"github.com/AdamDanklefsen/OptionsPricing-FD/linalg"
	"github.com/AdamDanklefsen/OptionsPricing-FD/option"
)

var (
	// ErrInvalidSpot is returned by Solve for a non-positive or non-finite S0.
	ErrInvalidSpot = errors.New("initial spot must be positive and finite")
	// ErrGridOrigin is returned for a grid that does not start at S=0, where
	// the lower boundary value is imposed.
	ErrGridOrigin = errors.New("grid must start at zero spot")
	// ErrNonFinite is returned when a time step produces NaN or Inf values,
	// typically from overflowing inputs such as an extreme volatility.
	ErrNonFinite = errors.New("non-finite value in solution")
)

// StepObserver is called after every completed time step with the 1-based
// step index and the new time level. The slice is reused by the solver and
// must not be modified or retained.
type StepObserver func(step int, values []float64)

// Option customises a Solver.
type Option func(*Solver)

// WithLogger routes diagnostics and progress to l.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Solver) { s.log = l }
}

// WithStepObserver registers fn to see every completed time level.
func WithStepObserver(fn StepObserver) Option {
	return func(s *Solver) { s.observe = fn }
}

// WithConstraint overrides the exercise constraint chosen from the terms.
func WithConstraint(c ExerciseConstraint) Option {
	return func(s *Solver) { s.constraint = c }
}

// Solver prices one contract by marching the Black-Scholes PDE backward
// from maturity with implicit Euler steps.
type Solver struct {
	terms      option.Terms
	cfg        Config
	constraint ExerciseConstraint
	log        logrus.FieldLogger
	observe    StepObserver
}

// NewSolver validates terms and cfg and returns a solver for them.
func NewSolver(terms option.Terms, cfg Config, opts ...Option) (*Solver, error) {
	if err := terms.Validate(); err != nil {
		return nil, fmt.Errorf("NewSolver: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("NewSolver: %w", err)
	}

	s := &Solver{
		terms:      terms,
		cfg:        cfg,
		constraint: constraintFor(terms, cfg),
		log:        logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithField("contract", terms.String())
	return s, nil
}

func (s *Solver) Terms() option.Terms { return s.terms }
func (s *Solver) Config() Config      { return s.cfg }

// SpotMax returns the upper end of the grid for initial spot s0.
func (s *Solver) SpotMax(s0 float64) float64 {
	return math.Max(1, s.cfg.SpotMaxMultiplier*s0)
}

// Solve sizes a uniform grid from s0 and returns the valuation curve.
func (s *Solver) Solve(s0 float64) (*ValuationCurve, error) {
	if !(s0 > 0) || math.IsInf(s0, 0) {
		return nil, fmt.Errorf("Solve: %w: %g", ErrInvalidSpot, s0)
	}

	sMax := s.SpotMax(s0)
	if math.IsInf(sMax, 0) {
		return nil, fmt.Errorf("Solve: %w: grid end %g*%g overflows", ErrInvalidSpot, s.cfg.SpotMaxMultiplier, s0)
	}
	if s.terms.IsCall() && sMax < s.terms.Strike {
		s.log.WithFields(logrus.Fields{"smax": sMax, "strike": s.terms.Strike}).
			Warn("grid ends below strike; call upper boundary is negative")
	}
	return s.SolveOnGrid(grid.NewUniform(sMax, s.cfg.SpotSteps))
}

// SolveOnGrid runs the backward march on a caller-supplied grid, which must
// start at S=0. Config.SpotSteps and SpotMaxMultiplier are ignored.
func (s *Solver) SolveOnGrid(g *grid.SpotGrid) (*ValuationCurve, error) {
	if err := checkOrigin(g); err != nil {
		return nil, fmt.Errorf("Solve: %w", err)
	}
	n := g.Len()
	steps := s.cfg.TimeSteps
	dt := s.timeStep()

	curve := &ValuationCurve{
		Spots:            append([]float64(nil), g.Points...),
		ExerciseBoundary: []float64{},
	}
	if g.Degenerate() {
		curve.UnderResolved = true
		s.log.WithField("grid_points", n).Warn("grid has no interior nodes; values stay at terminal payoff")
	}

	old := s.terminalPayoff(g)
	next := make([]float64, n)

	// dt and the grid are fixed for the whole march.
	coef := BuildImplicitCoefficients(g.Points, s.terms.Volatility, s.terms.Rate, s.terms.Dividend, dt)

	every := steps / 10
	if every < 1 {
		every = 1
	}
	for step := 0; step < steps; step++ {
		stale, err := s.step(g, coef, old, next)
		if err != nil {
			return nil, fmt.Errorf("Solve: step %d of %d: %w", step+1, steps, err)
		}
		if stale {
			curve.StaleSteps++
		}
		old, next = next, old

		if s.observe != nil {
			s.observe(step+1, old)
		}
		if s.cfg.Verbose && step%every == 0 {
			s.log.WithFields(logrus.Fields{"step": step, "steps": steps}).Info("backward march progress")
		}
	}

	curve.Values = old
	return curve, nil
}

// StepBackward advances one implicit step of size dt from old on grid g and
// returns the new level. Degenerate grids return a copy of old.
func (s *Solver) StepBackward(g *grid.SpotGrid, old []float64, dt float64) ([]float64, error) {
	if len(old) != g.Len() {
		return nil, fmt.Errorf("StepBackward: %w: %d values on %d points", linalg.ErrDimensionMismatch, len(old), g.Len())
	}
	if err := checkOrigin(g); err != nil {
		return nil, fmt.Errorf("StepBackward: %w", err)
	}

	coef := BuildImplicitCoefficients(g.Points, s.terms.Volatility, s.terms.Rate, s.terms.Dividend, dt)
	next := make([]float64, len(old))
	if _, err := s.step(g, coef, old, next); err != nil {
		return nil, fmt.Errorf("StepBackward: %w", err)
	}
	return next, nil
}

func checkOrigin(g *grid.SpotGrid) error {
	if g.Len() > 0 && g.Points[0] != 0 {
		return fmt.Errorf("%w: first point %g", ErrGridOrigin, g.Points[0])
	}
	return nil
}

func (s *Solver) timeStep() float64 {
	if s.terms.Maturity <= 0 {
		return 0
	}
	return s.terms.Maturity / float64(s.cfg.TimeSteps)
}

func (s *Solver) terminalPayoff(g *grid.SpotGrid) []float64 {
	v := make([]float64, g.Len())
	for i, spot := range g.Points {
		v[i] = s.terms.Intrinsic(spot)
	}
	return v
}

// boundaryValues returns the Dirichlet values at S=0 and S=sMax. They are
// deliberately undiscounted.
func (s *Solver) boundaryValues(sMax float64) (lo, hi float64) {
	if s.terms.IsCall() {
		return 0, sMax - s.terms.Strike
	}
	return s.terms.Strike, 0
}

// step writes the level after one backward step from old into next.
// It reports whether the singular-system fallback was taken.
func (s *Solver) step(g *grid.SpotGrid, coef Coefficients, old, next []float64) (bool, error) {
	n := g.Len()
	if n < 3 {
		copy(next, old)
		return false, nil
	}

	lo, hi := s.boundaryValues(g.Max())
	m := coef.Len()

	rhs := next[1 : n-1]
	copy(rhs, old[1:n-1])
	rhs[0] -= coef.Sub[0] * lo
	rhs[m-1] -= coef.Super[m-1] * hi

	stale := false
	if err := linalg.SolveTridiagonal(coef.Sub[1:], coef.Diag, coef.Super[:m-1], rhs); err != nil {
		if !s.cfg.AllowStaleOnSingular || !errors.Is(err, linalg.ErrZeroPivot) {
			return false, err
		}
		s.log.WithError(err).Warn("singular system; carrying previous values forward")
		copy(next, old)
		stale = true
	}

	next[0] = lo
	next[n-1] = hi
	s.constraint.Apply(g.Points, next)

	for i, v := range next {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return stale, fmt.Errorf("%w: V(%g) = %g", ErrNonFinite, g.Points[i], v)
		}
	}
	return stale, nil
}
