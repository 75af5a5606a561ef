package linalg

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySystem is returned for a system with no unknowns.
	ErrEmptySystem = errors.New("empty tridiagonal system")
	// ErrDimensionMismatch is returned when band or right-hand-side lengths disagree.
	ErrDimensionMismatch = errors.New("tridiagonal dimension mismatch")
	// ErrZeroPivot is returned when forward elimination meets an exactly zero pivot.
	ErrZeroPivot = errors.New("zero pivot in tridiagonal elimination")
)

// SolveTridiagonal solves the system with sub-diagonal a (n-1), diagonal b (n),
// super-diagonal c (n-1) and right-hand side d (n) by the Thomas algorithm.
// On success d holds the solution; on error d is left unchanged.
//
//	b[0]x[0] + c[0]x[1]                     = d[0]
//	a[i-1]x[i-1] + b[i]x[i] + c[i]x[i+1]   = d[i]
//	a[n-2]x[n-2] + b[n-1]x[n-1]             = d[n-1]
func SolveTridiagonal(a, b, c, d []float64) error {
	n := len(b)
	if n == 0 {
		return ErrEmptySystem
	}
	if len(d) != n {
		return fmt.Errorf("SolveTridiagonal: %w: rhs has %d rows, diagonal %d", ErrDimensionMismatch, len(d), n)
	}
	if len(a) != n-1 || len(c) != n-1 {
		return fmt.Errorf("SolveTridiagonal: %w: off-diagonals %d/%d, want %d", ErrDimensionMismatch, len(a), len(c), n-1)
	}
	if b[0] == 0 {
		return fmt.Errorf("SolveTridiagonal: %w at row 0", ErrZeroPivot)
	}
	if n == 1 {
		d[0] = d[0] / b[0]
		return nil
	}

	cp := make([]float64, n-1)
	dp := make([]float64, n)

	// forward sweep
	cp[0] = c[0] / b[0]
	dp[0] = d[0] / b[0]
	for i := 1; i < n; i++ {
		m := b[i] - a[i-1]*cp[i-1]
		if m == 0 {
			return fmt.Errorf("SolveTridiagonal: %w at row %d", ErrZeroPivot, i)
		}
		if i < n-1 {
			cp[i] = c[i] / m
		}
		dp[i] = (d[i] - a[i-1]*dp[i-1]) / m
	}

	// back substitution
	d[n-1] = dp[n-1]
	for i := n - 2; i >= 0; i-- {
		d[i] = dp[i] - cp[i]*d[i+1]
	}
	return nil
}
