package scanner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/roman-kulish/rc-surveillance/internal/sdr"
)

// stubSource is an in-memory SampleSource. Reads return zero-filled
// blocks stamped with the tuned frequency; failures can be injected
// per frequency.
type stubSource struct {
	sampleRate float64
	tuned      float64
	tuneErr    map[float64]error
	readErr    map[float64]error
}

func newStubSource() *stubSource {
	return &stubSource{
		sampleRate: 2_400_000,
		tuneErr:    make(map[float64]error),
		readErr:    make(map[float64]error),
	}
}

func (s *stubSource) Tune(_ context.Context, frequencyHz float64) error {
	if err := s.tuneErr[frequencyHz]; err != nil {
		return err
	}
	s.tuned = frequencyHz
	return nil
}

func (s *stubSource) ReadSamples(_ context.Context, n int) (*sdr.SampleBlock, error) {
	if err := s.readErr[s.tuned]; err != nil {
		return nil, err
	}
	return &sdr.SampleBlock{
		Frequency:  s.tuned,
		SampleRate: s.sampleRate,
		Samples:    make([]complex128, n),
	}, nil
}

func (s *stubSource) SampleRate() float64 { return s.sampleRate }

// stubEstimator reports a fixed power per frequency and a floor
// everywhere else.
type stubEstimator struct {
	powers map[float64]float64
	floor  float64
}

func (e *stubEstimator) Power(block *sdr.SampleBlock) (float64, error) {
	if power, ok := e.powers[block.Frequency]; ok {
		return power, nil
	}
	return e.floor, nil
}

func TestScanner_SingleCarrierInBand(t *testing.T) {
	est := &stubEstimator{
		powers: map[float64]float64{27_145_000: 45},
		floor:  12,
	}
	s := New(newStubSource(), WithEstimator(est), WithBlockSize(1024))

	result, err := s.Scan(context.Background(), Request{
		StartHz:     26_995_000,
		EndHz:       27_255_000,
		StepHz:      5_000,
		ThresholdDB: 40,
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	detections := result.Detections()
	if len(detections) != 1 {
		t.Fatalf("expected exactly 1 detection, got %d", len(detections))
	}
	if detections[0].Frequency != 27_145_000 {
		t.Errorf("detection frequency = %0.f, want 27145000", detections[0].Frequency)
	}
	if detections[0].Power != 45 {
		t.Errorf("detection power = %0.1f, want 45", detections[0].Power)
	}
}

func TestScanner_ReadingsOnGridWithinBounds(t *testing.T) {
	s := New(newStubSource(), WithEstimator(&stubEstimator{floor: -80}), WithBlockSize(256))

	req := Request{StartHz: 40_660_000, EndHz: 40_700_000, StepHz: 7_000, ThresholdDB: 0}
	result, err := s.Scan(context.Background(), req)
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.Readings) == 0 {
		t.Fatal("expected at least one reading")
	}

	for i, reading := range result.Readings {
		if reading.Frequency < req.StartHz || reading.Frequency > req.EndHz {
			t.Errorf("reading %d: frequency %0.f outside [%0.f, %0.f]",
				i, reading.Frequency, req.StartHz, req.EndHz)
		}

		offset := (reading.Frequency - req.StartHz) / req.StepHz
		if math.Abs(offset-math.Round(offset)) > 1e-6 {
			t.Errorf("reading %d: frequency %0.f is off the scan grid", i, reading.Frequency)
		}

		if i > 0 && reading.Frequency <= result.Readings[i-1].Frequency {
			t.Errorf("reading %d: frequencies not strictly ascending", i)
		}
	}
}

func TestScanner_StepLandingOnEndIsIncluded(t *testing.T) {
	s := New(newStubSource(), WithEstimator(&stubEstimator{floor: 50}), WithBlockSize(256))

	result, err := s.Scan(context.Background(), Request{
		StartHz:     27_000_000,
		EndHz:       27_010_000,
		StepHz:      5_000,
		ThresholdDB: 0,
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	if len(result.Readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(result.Readings))
	}
	if last := result.Readings[2].Frequency; last != 27_010_000 {
		t.Errorf("last frequency = %0.f, want 27010000", last)
	}
}

func TestScanner_StartEqualsEnd(t *testing.T) {
	s := New(newStubSource(), WithEstimator(&stubEstimator{floor: 60}), WithBlockSize(256))

	result, err := s.Scan(context.Background(), Request{
		StartHz:     27_000_000,
		EndHz:       27_000_000,
		StepHz:      100_000,
		ThresholdDB: 40,
	})
	if err != nil {
		t.Fatalf("Scan() error = %v", err)
	}

	detections := result.Detections()
	if len(detections) != 1 {
		t.Fatalf("expected 1 detection, got %d", len(detections))
	}
	if detections[0].Frequency != 27_000_000 {
		t.Errorf("detection frequency = %0.f, want 27000000", detections[0].Frequency)
	}
}

func TestScanner_InvalidRange(t *testing.T) {
	s := New(newStubSource(), WithEstimator(&stubEstimator{}))

	testCases := []struct {
		name string
		req  Request
	}{
		{"start above end", Request{StartHz: 27_255_000, EndHz: 26_995_000, StepHz: 5_000}},
		{"zero step", Request{StartHz: 26_995_000, EndHz: 27_255_000}},
		{"negative step", Request{StartHz: 26_995_000, EndHz: 27_255_000, StepHz: -1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := s.Scan(context.Background(), tc.req); !errors.Is(err, ErrInvalidRange) {
				t.Errorf("Scan() error = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestScanner_SkipsFaultyStepByDefault(t *testing.T) {
	source := newStubSource()
	source.tuneErr[27_005_000] = fmt.Errorf("%w: tuner did not lock", sdr.ErrHardware)

	est := &stubEstimator{powers: map[float64]float64{27_010_000: 55}, floor: 10}
	s := New(source, WithEstimator(est), WithBlockSize(256))

	result, err := s.Scan(context.Background(), Request{
		StartHz:     27_000_000,
		EndHz:       27_010_000,
		StepHz:      5_000,
		ThresholdDB: 40,
	})
	if err != nil {
		t.Fatalf("Scan() error = %v, sweep should survive a single bad step", err)
	}

	if len(result.Readings) != 3 {
		t.Fatalf("expected 3 readings, got %d", len(result.Readings))
	}
	if result.Readings[1].IsValid {
		t.Error("faulty step should be recorded as invalid")
	}
	if result.Readings[1].Detected {
		t.Error("faulty step must never count as a detection")
	}

	detections := result.Detections()
	if len(detections) != 1 || detections[0].Frequency != 27_010_000 {
		t.Errorf("detections = %+v, want single detection at 27010000", detections)
	}
}

func TestScanner_AbortOnFault(t *testing.T) {
	source := newStubSource()
	source.readErr[27_005_000] = fmt.Errorf("%w: device vanished", sdr.ErrHardware)

	s := New(source, WithEstimator(&stubEstimator{floor: 10}), WithBlockSize(256), WithAbortOnFault())

	_, err := s.Scan(context.Background(), Request{
		StartHz:     27_000_000,
		EndHz:       27_010_000,
		StepHz:      5_000,
		ThresholdDB: 40,
	})
	if !errors.Is(err, sdr.ErrHardware) {
		t.Errorf("Scan() error = %v, want wrapped sdr.ErrHardware", err)
	}
}

func TestScanner_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(newStubSource(), WithEstimator(&stubEstimator{floor: 10}))

	_, err := s.Scan(ctx, Request{StartHz: 26_995_000, EndHz: 27_255_000, StepHz: 5_000})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Scan() error = %v, want context.Canceled", err)
	}
}
