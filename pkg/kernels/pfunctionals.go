package kernels

import (
	"math"
	"math/cmplx"
)

// PFunctional1 is the total variation of the column
func PFunctional1(column []float64) float64 {
	sum := 0.0
	for i := 0; i+1 < len(column); i++ {
		sum += math.Abs(column[i+1] - column[i])
	}
	return sum
}

// PFunctional2 is the column value at its weighted median
func PFunctional2(column []float64) float64 {
	if len(column) == 0 {
		return 0
	}
	return column[WeightedMedian(column)]
}

// PFunctional3 sums the fourth power of the magnitudes of the column's
// full discrete Fourier spectrum
func PFunctional3(column []float64) float64 {
	sum := 0.0
	for _, c := range spectrum(column) {
		mag := cmplx.Abs(c)
		sum += mag * mag * mag * mag
	}
	return sum
}

// PFunctionalHermite projects the column onto the Hermite function of the
// given order.
//
// The column is mapped onto the domain [-10, 10] with the sample at center
// landing on 0: samples before the center are spread evenly over [-10, 0],
// samples after it over (0, 10].
func PFunctionalHermite(column []float64, order uint, center int) float64 {
	n := len(column)
	sum := 0.0
	for p, v := range column {
		sum += v * HermiteFunction(order, hermiteDomain(p, n, center))
	}
	return sum
}

func hermiteDomain(p, n, center int) float64 {
	switch {
	case p < center:
		return -10 + 10*float64(p)/float64(center)
	case p == center:
		return 0
	default:
		upper := n - 1 - center
		if upper <= 0 {
			return 0
		}
		return 10 * float64(p-center) / float64(upper)
	}
}

// HermiteFunction evaluates the orthonormal Hermite function
// ψ_n(x) = H_n(x)·exp(-x²/2) / sqrt(2^n·n!·sqrt(π)), H_n the physicists'
// Hermite polynomial. The normalized three-term recurrence keeps high orders
// finite.
func HermiteFunction(order uint, x float64) float64 {
	psi0 := math.Exp(-x*x/2) / math.Sqrt(math.Sqrt(math.Pi))
	if order == 0 {
		return psi0
	}
	psi1 := math.Sqrt2 * x * psi0
	for n := uint(1); n < order; n++ {
		nf := float64(n)
		next := math.Sqrt(2/(nf+1))*x*psi1 - math.Sqrt(nf/(nf+1))*psi0
		psi0, psi1 = psi1, next
	}
	return psi1
}
