package capture

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/roman-kulish/rc-surveillance/internal/sdr"
)

// stubSource returns zero-filled blocks and can be told to fail after
// a number of successful reads.
type stubSource struct {
	sampleRate float64
	tuned      float64
	reads      int
	failAfter  int // fail on read number failAfter (1-based), 0 disables
}

func (s *stubSource) Tune(_ context.Context, frequencyHz float64) error {
	s.tuned = frequencyHz
	return nil
}

func (s *stubSource) ReadSamples(_ context.Context, n int) (*sdr.SampleBlock, error) {
	s.reads++
	if s.failAfter > 0 && s.reads >= s.failAfter {
		return nil, fmt.Errorf("%w: usb transfer failed", sdr.ErrHardware)
	}
	return &sdr.SampleBlock{
		Frequency:  s.tuned,
		SampleRate: s.sampleRate,
		Samples:    make([]complex128, n),
	}, nil
}

func (s *stubSource) SampleRate() float64 { return s.sampleRate }

func TestCapturer_DurationContract(t *testing.T) {
	const (
		sampleRate = 48_000.0
		blockSize  = 1_024
	)

	testCases := []struct {
		name     string
		duration time.Duration
	}{
		{"half second", 500 * time.Millisecond},
		{"one second", time.Second},
		{"three seconds", 3 * time.Second},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			source := &stubSource{sampleRate: sampleRate}
			c := New(source, WithBlockSize(blockSize))

			rec, err := c.Capture(context.Background(), 27_145_000, tc.duration)
			if err != nil {
				t.Fatalf("Capture() error = %v", err)
			}

			got := float64(len(rec.Samples)) / sampleRate
			want := tc.duration.Seconds()
			blockDuration := float64(blockSize) / sampleRate

			if diff := got - want; diff < 0 || diff > blockDuration {
				t.Errorf("capture covers %0.4fs, want within one block (%0.4fs) of %0.2fs",
					got, blockDuration, want)
			}

			// Trimming makes the count exact, not just within a block.
			if len(rec.Samples) != int(want*sampleRate) {
				t.Errorf("len(Samples) = %d, want exactly %d", len(rec.Samples), int(want*sampleRate))
			}
		})
	}
}

func TestCapturer_Metadata(t *testing.T) {
	source := &stubSource{sampleRate: 2_400_000}
	c := New(source, WithBlockSize(4_096))

	before := time.Now().UTC()
	rec, err := c.Capture(context.Background(), 40_680_000, time.Second)
	if err != nil {
		t.Fatalf("Capture() error = %v", err)
	}

	if rec.Frequency != 40_680_000 {
		t.Errorf("Frequency = %0.f, want 40680000", rec.Frequency)
	}
	if rec.SampleRate != 2_400_000 {
		t.Errorf("SampleRate = %0.f, want 2400000", rec.SampleRate)
	}
	if rec.Duration != time.Second {
		t.Errorf("Duration = %s, want 1s", rec.Duration)
	}
	if rec.Timestamp.Before(before) {
		t.Errorf("Timestamp = %s, want not before %s", rec.Timestamp, before)
	}
}

func TestCapturer_InvalidDuration(t *testing.T) {
	c := New(&stubSource{sampleRate: 48_000})

	for _, d := range []time.Duration{0, -time.Second} {
		if _, err := c.Capture(context.Background(), 27_145_000, d); !errors.Is(err, ErrInvalidDuration) {
			t.Errorf("Capture(duration=%s) error = %v, want ErrInvalidDuration", d, err)
		}
	}
}

func TestCapturer_AbortsOnHardwareFault(t *testing.T) {
	// A sweep skips bad steps; a capture must not hand back a partial
	// recording.
	source := &stubSource{sampleRate: 48_000, failAfter: 3}
	c := New(source, WithBlockSize(1_024))

	_, err := c.Capture(context.Background(), 27_145_000, time.Second)
	if !errors.Is(err, sdr.ErrHardware) {
		t.Errorf("Capture() error = %v, want wrapped sdr.ErrHardware", err)
	}
}

func TestCapturer_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(&stubSource{sampleRate: 48_000})

	_, err := c.Capture(ctx, 27_145_000, time.Second)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Capture() error = %v, want context.Canceled", err)
	}
}
