package task

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/AdamDanklefsen/OptionsPricing-FD/analytic"
	"github.com/AdamDanklefsen/OptionsPricing-FD/calendar"
	"github.com/AdamDanklefsen/OptionsPricing-FD/option"
	"github.com/AdamDanklefsen/OptionsPricing-FD/pde"
	"github.com/AdamDanklefsen/OptionsPricing-FD/utils"
)

// Input defines the JSON schema of one pricing task.
//
// Conventions:
// - rate, dividend and volatility are decimals (0.05 means 5%)
// - maturity is in years; alternatively give valuation_date and expiry_date
//   (YYYY-MM-DD) with an optional day_count (default ACT/365F) and calendar
//   (NYSE rolls a holiday expiry back and counts its trading days for BUS/252)
// - spot_steps, time_steps and smax_multiplier override the solver config
type Input struct {
	TaskID   string `json:"task_id,omitempty"`
	Payoff   string `json:"payoff"`   // "call" | "put"
	Exercise string `json:"exercise"` // "european" | "american"

	Strike   float64  `json:"strike"`
	Maturity *float64 `json:"maturity,omitempty"`

	ValuationDate string `json:"valuation_date,omitempty"`
	ExpiryDate    string `json:"expiry_date,omitempty"`
	DayCount      string `json:"day_count,omitempty"`
	Calendar      string `json:"calendar,omitempty"`

	Rate       float64 `json:"rate"`
	Dividend   float64 `json:"dividend"`
	Volatility float64 `json:"volatility"`
	Spot       float64 `json:"spot"`

	SpotSteps         int     `json:"spot_steps,omitempty"`
	TimeSteps         int     `json:"time_steps,omitempty"`
	SpotMaxMultiplier float64 `json:"smax_multiplier,omitempty"`
}

// Output is the JSON result of one task. Prices are decimals rounded to the
// requested number of places.
type Output struct {
	TaskID        string           `json:"task_id,omitempty"`
	Contract      string           `json:"contract,omitempty"`
	Spot          float64          `json:"spot,omitempty"`
	Price         decimal.Decimal  `json:"price"`
	Intrinsic     decimal.Decimal  `json:"intrinsic"`
	TimeValue     decimal.Decimal  `json:"time_value"`
	Analytic      *decimal.Decimal `json:"analytic,omitempty"`
	AnalyticError *decimal.Decimal `json:"analytic_error,omitempty"`
	GridPoints    int              `json:"grid_points,omitempty"`
	TimeSteps     int              `json:"time_steps,omitempty"`
	SpotMax       float64          `json:"smax,omitempty"`
	UnderResolved bool             `json:"under_resolved,omitempty"`
	StaleSteps    int              `json:"stale_steps,omitempty"`
	Error         string           `json:"error,omitempty"`
}

// Terms converts the input to validated contract terms.
func (in Input) Terms() (option.Terms, error) {
	payoff, err := option.ParsePayoff(in.Payoff)
	if err != nil {
		return option.Terms{}, err
	}
	exercise, err := option.ParseExercise(in.Exercise)
	if err != nil {
		return option.Terms{}, err
	}

	var maturity float64
	switch {
	case in.Maturity != nil:
		maturity = *in.Maturity
	case in.ValuationDate != "" && in.ExpiryDate != "":
		dc, err := utils.ParseDayCount(in.DayCount)
		if err != nil {
			return option.Terms{}, err
		}
		if in.Calendar == "" {
			maturity, err = utils.MaturityFromDates(in.ValuationDate, in.ExpiryDate, dc)
		} else {
			var cal calendar.CalendarID
			if cal, err = calendar.ParseCalendar(in.Calendar); err != nil {
				return option.Terms{}, err
			}
			maturity, err = utils.MaturityOnCalendar(in.ValuationDate, in.ExpiryDate, dc, cal)
		}
		if err != nil {
			return option.Terms{}, err
		}
	default:
		return option.Terms{}, fmt.Errorf("maturity or valuation_date/expiry_date is required")
	}

	terms := option.Terms{
		Payoff:     payoff,
		Exercise:   exercise,
		Strike:     in.Strike,
		Maturity:   maturity,
		Rate:       in.Rate,
		Dividend:   in.Dividend,
		Volatility: in.Volatility,
		ID:         in.TaskID,
	}
	if err := terms.Validate(); err != nil {
		return option.Terms{}, err
	}
	return terms, nil
}

// SolverConfig applies the task's overrides to base.
func (in Input) SolverConfig(base pde.Config) pde.Config {
	cfg := base
	if in.SpotSteps > 0 {
		cfg.SpotSteps = in.SpotSteps
	}
	if in.TimeSteps > 0 {
		cfg.TimeSteps = in.TimeSteps
	}
	if in.SpotMaxMultiplier > 0 {
		cfg.SpotMaxMultiplier = in.SpotMaxMultiplier
	}
	return cfg
}

// WithID fills a missing task id.
func (in Input) WithID() Input {
	if strings.TrimSpace(in.TaskID) == "" {
		in.TaskID = uuid.NewString()
	}
	return in
}

// Solve builds the solver for the task and returns its valuation curve.
func Solve(in Input, base pde.Config, log logrus.FieldLogger) (*pde.Solver, *pde.ValuationCurve, error) {
	terms, err := in.Terms()
	if err != nil {
		return nil, nil, err
	}
	solver, err := pde.NewSolver(terms, in.SolverConfig(base), pde.WithLogger(log.WithField("task_id", in.TaskID)))
	if err != nil {
		return nil, nil, err
	}
	curve, err := solver.Solve(in.Spot)
	if err != nil {
		return nil, nil, err
	}
	return solver, curve, nil
}

// Price runs one task and summarises the curve at the task's spot.
func Price(in Input, base pde.Config, log logrus.FieldLogger, places int32) (*Output, error) {
	solver, curve, err := Solve(in, base, log)
	if err != nil {
		return nil, err
	}
	terms := solver.Terms()

	price := curve.ValueAt(in.Spot)
	if !finite(price) {
		return nil, fmt.Errorf("price: %w: %g at spot %g", pde.ErrNonFinite, price, in.Spot)
	}
	intrinsic := terms.Intrinsic(in.Spot)
	out := &Output{
		TaskID:        in.TaskID,
		Contract:      terms.String(),
		Spot:          in.Spot,
		Price:         round(price, places),
		Intrinsic:     round(intrinsic, places),
		TimeValue:     round(price-intrinsic, places),
		GridPoints:    curve.Len(),
		TimeSteps:     solver.Config().TimeSteps,
		SpotMax:       curve.Spots[curve.Len()-1],
		UnderResolved: curve.UnderResolved,
		StaleSteps:    curve.StaleSteps,
	}

	if !terms.IsAmerican() {
		ref, err := analytic.BlackScholes(terms, in.Spot)
		if err == nil && finite(ref) {
			a := round(ref, places)
			e := round(price-ref, places)
			out.Analytic = &a
			out.AnalyticError = &e
		}
	}
	return out, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// round expects a finite v; decimal panics on NaN and Inf.
func round(v float64, places int32) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(places)
}

// ReadInput reads from path, or from stdin when path is empty.
func ReadInput(stdin io.Reader, path string) ([]byte, error) {
	if path != "" {
		return os.ReadFile(path)
	}
	return io.ReadAll(stdin)
}

// ParseInputs accepts a single JSON object or a non-empty array of them.
// The boolean reports whether the input was an array.
func ParseInputs(raw []byte) ([]Input, bool, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, false, fmt.Errorf("empty input")
	}
	if trimmed[0] == '[' {
		var inputs []Input
		if err := json.Unmarshal(trimmed, &inputs); err != nil {
			return nil, true, err
		}
		if len(inputs) == 0 {
			return nil, true, fmt.Errorf("empty input array")
		}
		return inputs, true, nil
	}
	var input Input
	if err := json.Unmarshal(trimmed, &input); err != nil {
		return nil, false, err
	}
	return []Input{input}, false, nil
}

// IsTerminal reports whether r is an interactive terminal, in which case
// there is no piped input to read.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}
