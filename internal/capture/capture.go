// Package capture records a contiguous run of IQ samples at a single
// frequency for later classification, storage or replay.
package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/rc-surveillance/internal/sdr"
)

// DefaultBlockSize is the number of IQ samples read per block while
// accumulating a capture.
const DefaultBlockSize = 16_384

// ErrInvalidDuration is returned when the requested capture duration
// is not positive.
var ErrInvalidDuration = errors.New("capture: duration must be positive")

// Capture is a contiguous recording of IQ samples at one frequency,
// with enough metadata to reproduce the waveform.
type Capture struct {
	Frequency  float64       // Center frequency in Hz
	SampleRate float64       // Sample rate in Hz the samples were taken at
	Duration   time.Duration // Requested capture duration
	Timestamp  time.Time     // When the capture was taken, UTC
	Samples    []complex128  // len == Duration * SampleRate, rounded up
}

// Size returns the in-memory size of the raw samples in bytes.
func (c *Capture) Size() uint64 {
	return uint64(len(c.Samples)) * 16
}

// WithLogger sets the logger for the capturer.
func WithLogger(logger *slog.Logger) func(*Capturer) {
	return func(c *Capturer) {
		c.logger = logger
	}
}

// WithBlockSize sets the number of IQ samples read per block.
func WithBlockSize(n int) func(*Capturer) {
	return func(c *Capturer) {
		c.blockSize = n
	}
}

// Capturer records captures from a single SampleSource. It owns the
// source for the duration of a Capture call and must not be used
// concurrently.
type Capturer struct {
	source    sdr.SampleSource
	blockSize int

	logger *slog.Logger
}

func New(source sdr.SampleSource, options ...func(*Capturer)) *Capturer {
	c := Capturer{
		source:    source,
		blockSize: DefaultBlockSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// Capture tunes the source and accumulates sample blocks until the
// requested duration is covered, then trims the overshoot so the
// sample count matches duration * rate exactly. Unlike a sweep, any
// hardware failure aborts the whole operation: a partial recording
// cannot satisfy the duration contract.
func (c *Capturer) Capture(ctx context.Context, frequencyHz float64, duration time.Duration) (*Capture, error) {
	if duration <= 0 {
		return nil, fmt.Errorf("%w: got %s", ErrInvalidDuration, duration)
	}

	if err := c.source.Tune(ctx, frequencyHz); err != nil {
		return nil, fmt.Errorf("tuning to %s: %w", humanize.SIWithDigits(frequencyHz, 3, "Hz"), err)
	}

	rate := c.source.SampleRate()
	needed := int(math.Ceil(duration.Seconds() * rate))

	c.logger.Info("capturing signal",
		slog.String("frequency", humanize.SIWithDigits(frequencyHz, 3, "Hz")),
		slog.Duration("duration", duration),
		slog.Int("samples", needed))

	samples := make([]complex128, 0, needed+c.blockSize)
	for len(samples) < needed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		block, err := c.source.ReadSamples(ctx, c.blockSize)
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		samples = append(samples, block.Samples...)
	}

	rec := Capture{
		Frequency:  frequencyHz,
		SampleRate: rate,
		Duration:   duration,
		Timestamp:  time.Now().UTC(),
		Samples:    samples[:needed],
	}

	c.logger.Debug("capture complete", slog.String("size", humanize.IBytes(rec.Size())))
	return &rec, nil
}
