package main

import (
	"fmt"
	"log"

	"github.com/AdamDanklefsen/OptionsPricing-FD/analytic"
	"github.com/AdamDanklefsen/OptionsPricing-FD/option"
	"github.com/AdamDanklefsen/OptionsPricing-FD/pde"
)

func main() {
	terms := option.Terms{
		Payoff:     option.Call,
		Exercise:   option.European,
		Strike:     100,
		Maturity:   1,
		Rate:       0.05,
		Volatility: 0.2,
	}
	const spot = 100.0

	solver, err := pde.NewSolver(terms, pde.DefaultConfig)
	if err != nil {
		log.Fatal(err)
	}
	curve, err := solver.Solve(spot)
	if err != nil {
		log.Fatal(err)
	}
	ref, err := analytic.BlackScholes(terms, spot)
	if err != nil {
		log.Fatal(err)
	}

	fd := curve.ValueAt(spot)
	fmt.Printf("%s @ S=%.2f\n", terms, spot)
	fmt.Printf("FD price: %.6f\n", fd)
	fmt.Printf("Black-Scholes: %.6f\n", ref)
	fmt.Printf("Error: %.2e\n", fd-ref)
}
