// Package dsp holds the signal processing used by the scanner and the
// capture pipeline: wideband power estimation and a coarse AM/FM
// modulation classifier.
package dsp

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/roman-kulish/rc-surveillance/internal/sdr"
)

// epsilon keeps the dB conversion finite for an all-zero block.
const epsilon = 1e-20

// ErrNotEnoughSamples is returned when a sample sequence is too short
// to analyze. A transform needs at least two samples.
var ErrNotEnoughSamples = errors.New("dsp: not enough samples")

// Estimator reduces an IQ sample block to a single wideband power
// figure in dB. The FFT plan and scratch buffers are reused across
// blocks of the same length; an Estimator is not safe for concurrent
// use.
type Estimator struct {
	fft *fourier.CmplxFFT
	in  []complex128
	out []complex128
}

func NewEstimator() *Estimator {
	return &Estimator{}
}

// Power computes the mean magnitude-squared across the non-DC
// frequency bins of the block and converts it to dB. The DC bin is
// excluded: cheap tuners leave a DC spike there that would swamp the
// mean. The result is deterministic for a given block and always
// finite, including for an all-zero block.
func (e *Estimator) Power(block *sdr.SampleBlock) (float64, error) {
	if block == nil || len(block.Samples) < 2 {
		return 0, ErrNotEnoughSamples
	}

	n := len(block.Samples)
	if e.fft == nil || e.fft.Len() != n {
		e.fft = fourier.NewCmplxFFT(n)
		e.in = make([]complex128, n)
		e.out = make([]complex128, n)
	}

	copy(e.in, block.Samples)
	coeffs := e.fft.Coefficients(e.out, e.in)

	var sum float64
	for _, c := range coeffs[1:] { // skip the DC bin
		re, im := real(c), imag(c)
		sum += re*re + im*im
	}
	mean := sum / float64(n-1)

	return 10 * math.Log10(mean+epsilon), nil
}
