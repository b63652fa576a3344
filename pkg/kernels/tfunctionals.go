package kernels

import (
	"math"
	"math/cmplx"
)

// T-functional bodies. Each one consumes a full projection line and the
// auxiliary parameter a, which is reserved and currently ignored.

// Radon integrates the line
func Radon(line []float64, a int) float64 {
	sum := 0.0
	for _, v := range line {
		sum += v
	}
	return sum
}

// TFunctional1 integrates r*f(r), with r measured from the weighted median
func TFunctional1(line []float64, a int) float64 {
	median := WeightedMedian(line)
	integral := 0.0
	for r := 0; median+r < len(line); r++ {
		integral += float64(r) * line[median+r]
	}
	return integral
}

// TFunctional2 integrates r^2*f(r), with r measured from the weighted median
func TFunctional2(line []float64, a int) float64 {
	median := WeightedMedian(line)
	integral := 0.0
	for r := 0; median+r < len(line); r++ {
		rf := float64(r)
		integral += rf * rf * line[median+r]
	}
	return integral
}

// TFunctional3 is |∫ exp(5i·log r)·r·sqrt(f(r)) dr| from the square-root
// weighted median.
func TFunctional3(line []float64, a int) float64 {
	return logPolar(line, 5, func(r float64) float64 { return r })
}

// TFunctional4 is |∫ exp(3i·log r)·sqrt(f(r)) dr| from the square-root
// weighted median.
func TFunctional4(line []float64, a int) float64 {
	return logPolar(line, 3, func(float64) float64 { return 1 })
}

// TFunctional5 is |∫ exp(4i·log r)·sqrt(r)·sqrt(f(r)) dr| from the
// square-root weighted median.
func TFunctional5(line []float64, a int) float64 {
	return logPolar(line, 4, math.Sqrt)
}

// logPolar evaluates |Σ_{r>=1} exp(i·freq·log r)·scale(r)·sqrt(f(median+r))|.
// Negative samples contribute nothing.
func logPolar(line []float64, freq float64, scale func(float64) float64) float64 {
	median := WeightedMedianSqrt(line)
	var integral complex128
	for r := 1; median+r < len(line); r++ {
		rf := float64(r)
		v := math.Sqrt(math.Max(line[median+r], 0))
		integral += cmplx.Exp(complex(0, freq*math.Log(rf))) * complex(scale(rf)*v, 0)
	}
	return cmplx.Abs(integral)
}
