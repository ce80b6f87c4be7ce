package dsp

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/stat"
)

const (
	ModulationAM      Modulation = "AM"
	ModulationFM      Modulation = "FM"
	ModulationUnknown Modulation = "unknown"
)

// Modulation is the label the classifier assigns to a waveform.
type Modulation string

func (m Modulation) String() string {
	return string(m)
}

// DefaultMargin is the factor by which one variance must exceed the
// other before the classifier commits to a label. Below it the verdict
// is ModulationUnknown.
const DefaultMargin = 2.0

// Classification is the classifier verdict together with the
// statistics that drove it, kept for diagnostics.
type Classification struct {
	Modulation        Modulation
	AmplitudeVariance float64 // Variance of the instantaneous envelope
	FrequencyVariance float64 // Variance of the wrapped phase difference, rad²
}

// WithMargin overrides the decision margin.
func WithMargin(margin float64) func(*Classifier) {
	return func(c *Classifier) {
		c.margin = margin
	}
}

// Classifier labels a captured waveform AM or FM by comparing envelope
// variance against instantaneous frequency variance: amplitude
// modulation moves the envelope and keeps the phase slope steady,
// frequency modulation does the opposite. It is a coarse heuristic,
// not a demodulator, and makes no accuracy promise on noisy
// real-world signals.
type Classifier struct {
	margin float64
}

func NewClassifier(options ...func(*Classifier)) *Classifier {
	c := Classifier{margin: DefaultMargin}

	for _, option := range options {
		option(&c)
	}

	return &c
}

// Classify inspects the envelope and phase statistics of an IQ sample
// sequence. At least two samples are required to form a phase
// difference.
func (c *Classifier) Classify(samples []complex128) (Classification, error) {
	if len(samples) < 2 {
		return Classification{}, ErrNotEnoughSamples
	}

	envelope := make([]float64, len(samples))
	for i, s := range samples {
		envelope[i] = cmplx.Abs(s)
	}

	// The wrapped first difference of the instantaneous phase
	// approximates the frequency deviation in rad/sample.
	phaseDiff := make([]float64, len(samples)-1)
	prev := cmplx.Phase(samples[0])
	for i, s := range samples[1:] {
		phase := cmplx.Phase(s)
		d := phase - prev
		if d > math.Pi {
			d -= 2 * math.Pi
		} else if d < -math.Pi {
			d += 2 * math.Pi
		}
		phaseDiff[i] = d
		prev = phase
	}

	cls := Classification{
		Modulation:        ModulationUnknown,
		AmplitudeVariance: stat.Variance(envelope, nil),
		FrequencyVariance: stat.Variance(phaseDiff, nil),
	}

	switch {
	case cls.AmplitudeVariance > cls.FrequencyVariance*c.margin:
		cls.Modulation = ModulationAM

	case cls.FrequencyVariance > cls.AmplitudeVariance*c.margin:
		cls.Modulation = ModulationFM
	}

	return cls, nil
}
