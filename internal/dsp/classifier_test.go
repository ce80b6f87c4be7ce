package dsp

import (
	"errors"
	"math"
	"testing"
)

const (
	testSampleRate = 48_000.0
	testCarrierHz  = 1_000.0
	testToneHz     = 100.0
)

// amSignal builds a complex sinusoid whose envelope follows a low
// frequency tone: constant phase slope, moving amplitude.
func amSignal(n int, depth float64) []complex128 {
	samples := make([]complex128, n)
	for i := range samples {
		t := float64(i) / testSampleRate
		envelope := 1 + depth*math.Sin(2*math.Pi*testToneHz*t)
		phase := 2 * math.Pi * testCarrierHz * t
		samples[i] = complex(envelope*math.Cos(phase), envelope*math.Sin(phase))
	}
	return samples
}

// fmSignal builds a constant-envelope sinusoid whose phase wobbles with
// a low frequency tone: steady amplitude, moving frequency.
func fmSignal(n int, deviation float64) []complex128 {
	samples := make([]complex128, n)
	for i := range samples {
		t := float64(i) / testSampleRate
		phase := 2*math.Pi*testCarrierHz*t + deviation*math.Sin(2*math.Pi*testToneHz*t)
		samples[i] = complex(math.Cos(phase), math.Sin(phase))
	}
	return samples
}

func TestClassifier_AMSignal(t *testing.T) {
	cls, err := NewClassifier().Classify(amSignal(4096, 0.5))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if cls.Modulation != ModulationAM {
		t.Errorf("Classify() = %s (ampVar=%g, freqVar=%g), want %s",
			cls.Modulation, cls.AmplitudeVariance, cls.FrequencyVariance, ModulationAM)
	}
}

func TestClassifier_FMSignal(t *testing.T) {
	cls, err := NewClassifier().Classify(fmSignal(4096, 2))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if cls.Modulation != ModulationFM {
		t.Errorf("Classify() = %s (ampVar=%g, freqVar=%g), want %s",
			cls.Modulation, cls.AmplitudeVariance, cls.FrequencyVariance, ModulationFM)
	}
}

func TestClassifier_UnknownWithinMargin(t *testing.T) {
	// With an absurd margin neither variance can win.
	c := NewClassifier(WithMargin(1e9))

	cls, err := c.Classify(amSignal(4096, 0.5))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if cls.Modulation != ModulationUnknown {
		t.Errorf("Classify() = %s, want %s", cls.Modulation, ModulationUnknown)
	}
}

func TestClassifier_RejectsShortInput(t *testing.T) {
	c := NewClassifier()

	for _, samples := range [][]complex128{nil, {}, {complex(1, 0)}} {
		if _, err := c.Classify(samples); !errors.Is(err, ErrNotEnoughSamples) {
			t.Errorf("Classify(%d samples) error = %v, want ErrNotEnoughSamples", len(samples), err)
		}
	}
}

func TestClassifier_ReportsStatistics(t *testing.T) {
	cls, err := NewClassifier().Classify(amSignal(4096, 0.5))
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}

	if cls.AmplitudeVariance <= 0 {
		t.Errorf("AmplitudeVariance = %g, want > 0 for an AM signal", cls.AmplitudeVariance)
	}
	if cls.FrequencyVariance >= cls.AmplitudeVariance {
		t.Errorf("FrequencyVariance = %g, want below AmplitudeVariance %g",
			cls.FrequencyVariance, cls.AmplitudeVariance)
	}
}
