package linalg_test

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamDanklefsen/OptionsPricing-FD/linalg"
)

// multiply returns the tridiagonal matrix (a, b, c) applied to x.
func multiply(a, b, c, x []float64) []float64 {
	n := len(b)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = b[i] * x[i]
		if i > 0 {
			out[i] += a[i-1] * x[i-1]
		}
		if i < n-1 {
			out[i] += c[i] * x[i+1]
		}
	}
	return out
}

func TestSolveTridiagonal_RandomDiagonallyDominant(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(20240917))
	for trial := 0; trial < 200; trial++ {
		n := 1 + rng.Intn(60)
		a := make([]float64, n-1)
		c := make([]float64, n-1)
		b := make([]float64, n)
		d := make([]float64, n)
		for i := range a {
			a[i] = rng.Float64()*2 - 1
			c[i] = rng.Float64()*2 - 1
		}
		for i := range b {
			off := 0.0
			if i > 0 {
				off += math.Abs(a[i-1])
			}
			if i < n-1 {
				off += math.Abs(c[i])
			}
			sign := 1.0
			if rng.Intn(2) == 0 {
				sign = -1
			}
			b[i] = sign * (off + 0.5 + rng.Float64())
			d[i] = rng.Float64()*200 - 100
		}
		rhs := append([]float64(nil), d...)

		require.NoError(t, linalg.SolveTridiagonal(a, b, c, d), "trial %d", trial)

		back := multiply(a, b, c, d)
		for i := range rhs {
			scale := math.Max(1, math.Abs(rhs[i]))
			require.LessOrEqual(t, math.Abs(back[i]-rhs[i])/scale, 1e-10, "trial %d row %d", trial, i)
		}
	}
}

func TestSolveTridiagonal_Known(t *testing.T) {
	t.Parallel()

	// [2 -1 0; -1 2 -1; 0 -1 2] x = [1 0 1] has solution [1 1 1].
	a := []float64{-1, -1}
	b := []float64{2, 2, 2}
	c := []float64{-1, -1}
	d := []float64{1, 0, 1}

	require.NoError(t, linalg.SolveTridiagonal(a, b, c, d))
	assert.InDeltaSlice(t, []float64{1, 1, 1}, d, 1e-14)
}

func TestSolveTridiagonal_SingleUnknown(t *testing.T) {
	t.Parallel()

	d := []float64{9}
	require.NoError(t, linalg.SolveTridiagonal(nil, []float64{4}, nil, d))
	assert.Equal(t, 2.25, d[0])
}

func TestSolveTridiagonal_Errors(t *testing.T) {
	t.Parallel()

	t.Run("empty", func(t *testing.T) {
		err := linalg.SolveTridiagonal(nil, nil, nil, nil)
		assert.True(t, errors.Is(err, linalg.ErrEmptySystem))
	})

	t.Run("rhs length", func(t *testing.T) {
		d := []float64{1, 2}
		err := linalg.SolveTridiagonal([]float64{1, 1}, []float64{3, 3, 3}, []float64{1, 1}, d)
		assert.True(t, errors.Is(err, linalg.ErrDimensionMismatch))
		assert.Equal(t, []float64{1, 2}, d)
	})

	t.Run("band length", func(t *testing.T) {
		err := linalg.SolveTridiagonal([]float64{1, 1, 1}, []float64{3, 3, 3}, []float64{1, 1}, []float64{1, 2, 3})
		assert.True(t, errors.Is(err, linalg.ErrDimensionMismatch))
	})

	t.Run("zero first pivot", func(t *testing.T) {
		d := []float64{1, 2}
		err := linalg.SolveTridiagonal([]float64{1}, []float64{0, 3}, []float64{1}, d)
		assert.True(t, errors.Is(err, linalg.ErrZeroPivot))
		assert.Equal(t, []float64{1, 2}, d)
	})

	t.Run("zero interior pivot", func(t *testing.T) {
		// m1 = b1 - a0*c0/b0 = 1 - 1*1/1 = 0
		d := []float64{1, 2, 3}
		err := linalg.SolveTridiagonal([]float64{1, 1}, []float64{1, 1, 4}, []float64{1, 1}, d)
		assert.True(t, errors.Is(err, linalg.ErrZeroPivot))
		assert.Equal(t, []float64{1, 2, 3}, d)
	})

	t.Run("zero single pivot", func(t *testing.T) {
		err := linalg.SolveTridiagonal(nil, []float64{0}, nil, []float64{1})
		assert.True(t, errors.Is(err, linalg.ErrZeroPivot))
	})
}
