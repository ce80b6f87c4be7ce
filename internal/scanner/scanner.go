// Package scanner sweeps a frequency range with a single SDR source and
// reports the steps whose wideband power clears a threshold.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/rc-surveillance/internal/dsp"
	"github.com/roman-kulish/rc-surveillance/internal/sdr"
)

// DefaultBlockSize is the number of IQ samples read per scan step.
const DefaultBlockSize = 16_384

// ErrInvalidRange is returned when the requested sweep bounds are
// malformed. It is raised before any hardware interaction.
var ErrInvalidRange = errors.New("scanner: invalid frequency range")

// PowerEstimator reduces one sample block to a power figure in dB.
type PowerEstimator interface {
	Power(block *sdr.SampleBlock) (float64, error)
}

// Request describes a single sweep over [StartHz, EndHz] in StepHz
// increments. Steps measuring at or above ThresholdDB become
// detections.
type Request struct {
	StartHz     float64
	EndHz       float64
	StepHz      float64
	ThresholdDB float64
}

func (r Request) validate() error {
	if r.StartHz > r.EndHz {
		return fmt.Errorf("%w: start %0.f Hz above end %0.f Hz", ErrInvalidRange, r.StartHz, r.EndHz)
	}
	if r.StepHz <= 0 {
		return fmt.Errorf("%w: step must be positive, got %0.f Hz", ErrInvalidRange, r.StepHz)
	}
	return nil
}

// steps returns the number of frequencies the sweep visits. The last
// step lands on EndHz only when the range divides evenly.
func (r Request) steps() int {
	return int(math.Floor((r.EndHz-r.StartHz)/r.StepHz+1e-9)) + 1
}

// Reading is a single scan step measurement. IsValid is false when the
// hardware failed at that step and the sweep skipped over it.
type Reading struct {
	Frequency float64
	Power     float64
	IsValid   bool
	Detected  bool
}

// Detection is a reading that met the threshold.
type Detection struct {
	Frequency float64
	Power     float64
}

// Result holds every step of one sweep, in ascending frequency order.
type Result struct {
	Request    Request
	Timestamp  time.Time
	NumSamples int // IQ samples measured per step
	Readings   []Reading
}

// Detections returns the readings that met the threshold, in scan
// order. Nothing is deduplicated: adjacent steps may both see the same
// physical carrier, and interpreting that proximity is the caller's
// job.
func (r *Result) Detections() []Detection {
	var detections []Detection
	for _, reading := range r.Readings {
		if reading.Detected {
			detections = append(detections, Detection{reading.Frequency, reading.Power})
		}
	}
	return detections
}

// WithLogger sets the logger for the scanner.
func WithLogger(logger *slog.Logger) func(*Scanner) {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithBlockSize sets the number of IQ samples read per scan step.
func WithBlockSize(n int) func(*Scanner) {
	return func(s *Scanner) {
		s.blockSize = n
	}
}

// WithSettleDelay waits after each retune before sampling, giving the
// tuner PLL time to lock.
func WithSettleDelay(d time.Duration) func(*Scanner) {
	return func(s *Scanner) {
		s.settleDelay = d
	}
}

// WithAbortOnFault aborts the whole sweep on the first hardware
// failure instead of skipping the failing step.
func WithAbortOnFault() func(*Scanner) {
	return func(s *Scanner) {
		s.abortOnFault = true
	}
}

// WithEstimator replaces the default spectral power estimator.
func WithEstimator(est PowerEstimator) func(*Scanner) {
	return func(s *Scanner) {
		s.est = est
	}
}

// Scanner sweeps a frequency range one step at a time against a single
// SampleSource. It owns the source for the duration of a Scan call and
// must not be used concurrently.
type Scanner struct {
	source sdr.SampleSource
	est    PowerEstimator

	blockSize    int
	settleDelay  time.Duration
	abortOnFault bool

	logger *slog.Logger
}

func New(source sdr.SampleSource, options ...func(*Scanner)) *Scanner {
	s := Scanner{
		source:    source,
		est:       dsp.NewEstimator(),
		blockSize: DefaultBlockSize,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&s)
	}

	return &s
}

// Scan sweeps the requested range. Hardware failures at a single step
// are skipped by default so that one unreachable frequency cannot
// abort a multi-minute sweep; the step is recorded with IsValid=false.
// WithAbortOnFault reverses that policy. Cancelling the context stops
// the sweep between steps.
func (s *Scanner) Scan(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	steps := req.steps()
	result := Result{
		Request:    req,
		Timestamp:  time.Now().UTC(),
		NumSamples: s.blockSize,
		Readings:   make([]Reading, 0, steps),
	}

	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		freq := req.StartHz + float64(i)*req.StepHz

		power, err := s.measure(ctx, freq)
		if err != nil {
			if s.abortOnFault || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, fmt.Errorf("measuring %s: %w", humanize.SIWithDigits(freq, 3, "Hz"), err)
			}

			s.logger.Warn("skipping frequency",
				slog.String("frequency", humanize.SIWithDigits(freq, 3, "Hz")),
				slog.String("error", err.Error()))
			result.Readings = append(result.Readings, Reading{Frequency: freq})
			continue
		}

		detected := power >= req.ThresholdDB
		if detected {
			s.logger.Info("signal detected",
				slog.String("frequency", humanize.SIWithDigits(freq, 3, "Hz")),
				slog.String("power", fmt.Sprintf("%0.1fdB", power)))
		}

		result.Readings = append(result.Readings, Reading{
			Frequency: freq,
			Power:     power,
			IsValid:   true,
			Detected:  detected,
		})
	}

	return &result, nil
}

func (s *Scanner) measure(ctx context.Context, freq float64) (float64, error) {
	if err := s.source.Tune(ctx, freq); err != nil {
		return 0, fmt.Errorf("tuning: %w", err)
	}

	if s.settleDelay > 0 {
		timer := time.NewTimer(s.settleDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return 0, ctx.Err()
		case <-timer.C:
		}
	}

	block, err := s.source.ReadSamples(ctx, s.blockSize)
	if err != nil {
		return 0, fmt.Errorf("reading samples: %w", err)
	}

	power, err := s.est.Power(block)
	if err != nil {
		return 0, fmt.Errorf("estimating power: %w", err)
	}
	return power, nil
}
