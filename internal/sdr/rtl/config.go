package rtl

import (
	"fmt"
	"strconv"
)

const (
	Runtime = "rtl_sdr"
	Device  = "rtl-sdr"

	// DefaultSampleRate is used when the configuration leaves the rate
	// unset. 2.4 MS/s is a safe rate for every RTL2832U dongle.
	DefaultSampleRate = 2_400_000

	SampleRateMin = 225_001
	SampleRateMax = 3_200_000
)

// Config is the `rtl_sdr` tool configuration. Zero values mean the tool
// defaults: device index 0, automatic gain, no frequency correction.
// See `man rtl_sdr` for more information.
type Config struct {
	DeviceIndex int     `yaml:"deviceIndex" json:"deviceIndex"` // -d device_index (default: 0)
	SampleRate  int     `yaml:"sampleRate" json:"sampleRate"`   // -s sample_rate in Hz
	Gain        float64 `yaml:"gain" json:"gain"`               // -g tuner_gain in dB (default: automatic)
	PPMError    int     `yaml:"ppmError" json:"ppmError"`       // -p ppm_error (default: 0)

	// BinPath overrides the runtime lookup, mainly for tests and
	// non-standard installs.
	BinPath string `yaml:"binPath" json:"binPath,omitempty"`
}

func (c *Config) Validate() error {
	if c.DeviceIndex < 0 {
		return fmt.Errorf("rtl.Config: device index must not be negative: %d", c.DeviceIndex)
	}
	if c.SampleRate != 0 && (c.SampleRate < SampleRateMin || c.SampleRate > SampleRateMax) {
		return fmt.Errorf("rtl.Config: invalid sample rate: %d, must be between %d and %d Hz",
			c.SampleRate, SampleRateMin, SampleRateMax)
	}
	if c.Gain < 0 {
		return fmt.Errorf("rtl.Config: gain must not be negative: %0.1f", c.Gain)
	}
	return nil
}

// Args returns the command line arguments for a one-shot `rtl_sdr`
// invocation reading numSamples IQ pairs at the given frequency and
// dumping them to stdout.
func (c *Config) Args(frequencyHz float64, numSamples int) []string {
	rate := c.SampleRate
	if rate == 0 {
		rate = DefaultSampleRate
	}

	args := []string{
		"-d", strconv.Itoa(c.DeviceIndex),
		"-f", strconv.FormatFloat(frequencyHz, 'f', 0, 64),
		"-s", strconv.Itoa(rate),
	}

	if c.Gain > 0 {
		args = append(args, "-g", strconv.FormatFloat(c.Gain, 'f', 1, 64))
	}

	if c.PPMError != 0 {
		args = append(args, "-p", strconv.Itoa(c.PPMError))
	}

	// rtl_sdr counts bytes, one IQ pair is two bytes
	args = append(args, "-n", strconv.Itoa(numSamples*2))

	return append(args, "-") // Always dump to stdout
}
