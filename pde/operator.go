package pde

// Coefficients are the three bands of the implicit operator for interior
// nodes 1..n-2. Sub[k], Diag[k] and Super[k] multiply V[k], V[k+1] and
// V[k+2] in the row for node k+1, so Sub[0] and Super[len-1] couple to the
// boundary nodes.
type Coefficients struct {
	Sub   []float64
	Diag  []float64
	Super []float64
}

// Len returns the number of interior rows.
func (c Coefficients) Len() int { return len(c.Diag) }

// BuildImplicitCoefficients discretises one implicit Euler step of the
// Black-Scholes operator on an arbitrary ascending grid:
//
//	(I + dt*L) V_new = V_old
//	L V = -(1/2 sigma^2 S^2 V_SS + (r-q) S V_S - r V)
//
// With dSb = S[i]-S[i-1] and dSf = S[i+1]-S[i]:
//
//	A = sigma^2 S^2 / (dSb (dSb+dSf))
//	C = sigma^2 S^2 / (dSf (dSb+dSf))
//	B = (r-q) S / (dSb+dSf)
//	sub = -dt (A-B), diag = 1 + dt (A+C+r), super = -dt (C+B)
//
// Grids with fewer than 3 points have no interior rows and yield empty bands.
func BuildImplicitCoefficients(spots []float64, sigma, r, q, dt float64) Coefficients {
	n := len(spots)
	if n < 3 {
		return Coefficients{Sub: []float64{}, Diag: []float64{}, Super: []float64{}}
	}

	m := n - 2
	coef := Coefficients{
		Sub:   make([]float64, m),
		Diag:  make([]float64, m),
		Super: make([]float64, m),
	}

	sigma2 := sigma * sigma
	for i := 1; i < n-1; i++ {
		s := spots[i]
		dSf := spots[i+1] - s
		dSb := s - spots[i-1]
		width := dSb + dSf

		A := sigma2 * s * s / (dSb * width)
		C := sigma2 * s * s / (dSf * width)
		B := (r - q) * s / width

		coef.Sub[i-1] = -dt * (A - B)
		coef.Diag[i-1] = 1 + dt*(A+C+r)
		coef.Super[i-1] = -dt * (C + B)
	}
	return coef
}
