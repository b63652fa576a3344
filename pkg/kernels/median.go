// Package kernels holds the reduction bodies of the trace transform
// functionals. Each body reduces one line or column of samples to a scalar
// and is safe to call concurrently on distinct inputs.
package kernels

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// WeightedMedian returns the index of the weighted median of data.
//
// Samples are used as weights after shifting them to be non-negative: when
// the smallest sample is negative it is subtracted from every sample. The scan
// runs from index 0 upward and stops at the first index i where the
// cumulative weight satisfies 2*sum(w[0..i]) >= sum(w). A sequence whose
// weights are all zero has its median at index 0; an empty sequence returns 0.
func WeightedMedian(data []float64) int {
	return weightedMedian(data, false)
}

// WeightedMedianSqrt is WeightedMedian with the square root of each shifted
// sample as weight.
func WeightedMedianSqrt(data []float64) int {
	return weightedMedian(data, true)
}

func weightedMedian(data []float64, sqrt bool) int {
	if len(data) == 0 {
		return 0
	}

	shift := 0.0
	if lo := floats.Min(data); lo < 0 {
		shift = -lo
	}
	weight := func(v float64) float64 {
		w := v + shift
		if sqrt {
			return math.Sqrt(w)
		}
		return w
	}

	total := 0.0
	for _, v := range data {
		total += weight(v)
	}

	integral := 0.0
	for i, v := range data {
		integral += weight(v)
		if 2*integral >= total {
			return i
		}
	}
	// only reachable through rounding in the running sum
	return len(data) - 1
}
