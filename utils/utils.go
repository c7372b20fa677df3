package utils

import (
	"gonum.org/v1/gonum/mat"
)

// Floor at zero. Every boost, seniority and waning term goes through this.
func NonNegative(x float64) float64 {
	if x < 0 {
		return 0
	}
	return x
}

// Antigenic seniority multiplier for the n-th infection (n >= 1).
func Seniority(tau, n float64) float64 {
	return NonNegative(1.0 - tau*(n-1.0))
}

// Linear waning multiplier after an elapsed time delta.
func LinearWane(wane, delta float64) float64 {
	return NonNegative(1.0 - wane*delta)
}

// Identity Matrix.
func Eye(n int) *mat.Dense {
	out := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		out.Set(i, i, 1)
	}
	return out
}
