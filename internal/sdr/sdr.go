package sdr

import (
	"context"
	"errors"
	"time"
)

// ErrHardware marks failures of the SDR hardware or its driver process.
// Errors returned by SampleSource implementations wrap it, so callers
// can test with errors.Is and decide whether to skip or abort.
var ErrHardware = errors.New("sdr: hardware fault")

// SampleBlock is a fixed-length block of complex IQ samples read from a
// SampleSource at a single tuned frequency. A block is immutable once
// produced.
type SampleBlock struct {
	Frequency  float64      // Center frequency in Hz the source was tuned to
	SampleRate float64      // Sample rate in Hz
	Samples    []complex128 // I/Q pairs as complex numbers
}

// Duration returns the time span the block covers at its sample rate.
func (b *SampleBlock) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / b.SampleRate * float64(time.Second))
}

// SampleSource is the capability consumed by the scanner and the
// capturer: a single tunable receiver producing IQ sample blocks. An
// implementation represents one physical device and is not safe for
// concurrent use; the caller must serialize access for the duration of
// a scan or capture.
type SampleSource interface {
	// Tune retunes the source to the given center frequency in Hz.
	Tune(ctx context.Context, frequencyHz float64) error

	// ReadSamples reads exactly n IQ samples at the current frequency.
	ReadSamples(ctx context.Context, n int) (*SampleBlock, error)

	// SampleRate returns the sample rate in Hz the source produces at.
	SampleRate() float64
}
