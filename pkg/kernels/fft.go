package kernels

import (
	"gonum.org/v1/gonum/dsp/fourier"
)

// spectrum computes the full n-point discrete Fourier transform of a real
// sequence.
//
// Gonum's real FFT only returns the n/2+1 non-redundant coefficients; the
// remaining ones are rebuilt from conjugate symmetry, F(n-k) = F*(k).
//
// Parameters:
//   - data: input samples
//
// Returns:
//   - the n complex coefficients, unnormalized
func spectrum(data []float64) []complex128 {
	n := len(data)
	if n == 0 {
		return nil
	}

	fft := fourier.NewFFT(n)
	half := fft.Coefficients(nil, data)

	full := make([]complex128, n)
	copy(full, half)
	for j := len(half); j < n; j++ {
		k := n - j
		full[j] = complex(real(half[k]), -imag(half[k]))
	}
	return full
}
