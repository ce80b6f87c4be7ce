// Package rtl implements an sdr.SampleSource backed by an RTL-SDR
// dongle, driven through the stock `rtl_sdr` command line tool. Each
// read is a one-shot invocation capturing a fixed number of samples, so
// retuning is free: the frequency is just an argument of the next run.
package rtl

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/rc-surveillance/internal/sdr"
)

// WithLogger sets the logger for the source.
func WithLogger(logger *slog.Logger) func(*Source) {
	return func(s *Source) {
		s.logger = logger.With(slog.String("device", Device))
	}
}

// Source drives an RTL-SDR dongle through the `rtl_sdr` tool. It
// represents a single physical device and is not safe for concurrent
// use.
type Source struct {
	binPath   string
	config    *Config
	frequency float64

	logger *slog.Logger
}

// New creates a Source for the configured dongle, locating the
// `rtl_sdr` binary unless the configuration pins a path.
func New(config *Config, options ...func(*Source)) (*Source, error) {
	if config == nil {
		config = &Config{}
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	binPath := config.BinPath
	if binPath == "" {
		var err error
		if binPath, err = sdr.FindRuntime(Runtime); err != nil {
			return nil, fmt.Errorf("finding runtime: %w", err)
		}
	}

	s := Source{
		binPath: binPath,
		config:  config,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)), // nil logger
	}

	for _, option := range options {
		option(&s)
	}

	return &s, nil
}

func (s *Source) Tune(_ context.Context, frequencyHz float64) error {
	if frequencyHz <= 0 {
		return fmt.Errorf("rtl: invalid frequency: %0.f Hz", frequencyHz)
	}

	// The actual retune happens on the next read; rtl_sdr is started
	// fresh per block with the frequency on its command line.
	s.frequency = frequencyHz
	return nil
}

func (s *Source) ReadSamples(ctx context.Context, n int) (*sdr.SampleBlock, error) {
	if n <= 0 {
		return nil, fmt.Errorf("rtl: invalid sample count: %d", n)
	}
	if s.frequency <= 0 {
		return nil, fmt.Errorf("rtl: source is not tuned")
	}

	args := s.config.Args(s.frequency, n)
	s.logger.Debug("reading samples",
		slog.String("frequency", humanize.SIWithDigits(s.frequency, 3, "Hz")),
		slog.Int("count", n))

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, s.binPath, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			s.logger.Warn(fmt.Sprintf("%s >> %s", Runtime, msg))
		}
		return nil, fmt.Errorf("%w: running %s: %w", sdr.ErrHardware, Runtime, err)
	}

	raw := stdout.Bytes()
	if len(raw) < n*2 {
		return nil, fmt.Errorf("%w: short read: %d of %d bytes", sdr.ErrHardware, len(raw), n*2)
	}

	// rtl_sdr emits unsigned 8-bit I/Q pairs centered on 127.5
	samples := make([]complex128, n)
	for i := range samples {
		re := (float64(raw[2*i]) - 127.5) / 127.5
		im := (float64(raw[2*i+1]) - 127.5) / 127.5
		samples[i] = complex(re, im)
	}

	return &sdr.SampleBlock{
		Frequency:  s.frequency,
		SampleRate: s.SampleRate(),
		Samples:    samples,
	}, nil
}

func (s *Source) SampleRate() float64 {
	if s.config.SampleRate == 0 {
		return DefaultSampleRate
	}
	return float64(s.config.SampleRate)
}
