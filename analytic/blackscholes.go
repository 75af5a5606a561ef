package analytic

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/AdamDanklefsen/OptionsPricing-FD/option"
)

// BlackScholes returns the closed-form Black-Scholes-Merton price of a
// European option at spot s with continuous dividend yield.
//
//	d1 = (ln(S/K) + (r - q + sigma^2/2) T) / (sigma sqrt(T))
//	d2 = d1 - sigma sqrt(T)
//	call = S e^{-qT} N(d1) - K e^{-rT} N(d2)
//	put  = K e^{-rT} N(-d2) - S e^{-qT} N(-d1)
//
// Degenerate inputs (T = 0 or sigma = 0) return the discounted forward
// intrinsic value. American terms are rejected: there is no closed form.
func BlackScholes(terms option.Terms, s float64) (float64, error) {
	if terms.IsAmerican() {
		return 0, fmt.Errorf("BlackScholes: no closed form for %s exercise", terms.Exercise)
	}
	if err := terms.Validate(); err != nil {
		return 0, fmt.Errorf("BlackScholes: %w", err)
	}
	if !(s > 0) {
		return 0, fmt.Errorf("BlackScholes: spot must be positive, got %g", s)
	}

	K, T, r, q, sigma := terms.Strike, terms.Maturity, terms.Rate, terms.Dividend, terms.Volatility
	fwdS := s * math.Exp(-q*T)
	discK := K * math.Exp(-r*T)

	volT := sigma * math.Sqrt(T)
	if volT == 0 || K == 0 {
		if terms.IsCall() {
			return math.Max(0, fwdS-discK), nil
		}
		return math.Max(0, discK-fwdS), nil
	}

	d1 := (math.Log(s/K) + (r-q+0.5*sigma*sigma)*T) / volT
	d2 := d1 - volT

	if terms.IsCall() {
		return fwdS*normCDF(d1) - discK*normCDF(d2), nil
	}
	return discK*normCDF(-d2) - fwdS*normCDF(-d1), nil
}

func normCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}
