package app

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roman-kulish/rc-surveillance/internal/sdr/rtl"
)

const (
	DeviceRTLSDR = "rtl-sdr"

	defaultStepHz      = 100_000
	defaultThresholdDB = 40.0
	defaultBlockSize   = 16_384
	defaultSettleDelay = 100 * time.Millisecond
	defaultDuration    = 2 * time.Second
)

// defaultBands are the common RC control bands the original scanner
// shipped with. The 2.4 GHz band needs hardware beyond an RTL2832U.
var defaultBands = map[string]Band{
	"27MHz":  {Start: 26_995_000, End: 27_255_000},
	"40MHz":  {Start: 40_660_000, End: 40_700_000},
	"49MHz":  {Start: 49_820_000, End: 49_900_000},
	"2.4GHz": {Start: 2_400_000_000, End: 2_483_000_000},
}

// Duration is a time.Duration that unmarshals from YAML strings such
// as "100ms" or "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("app.Duration: failed to parse: %s", err)
	}

	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// Config represents the main application configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Device   DeviceConfig  `yaml:"device"`
	Scan     ScanConfig    `yaml:"scan"`
	Capture  CaptureConfig `yaml:"capture"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level maps the configured log level name onto a slog.Level,
// defaulting to info.
func (s Settings) Level() slog.Level {
	switch strings.ToLower(s.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DeviceConfig represents the single SDR device configuration
type DeviceConfig struct {
	Name string      `yaml:"name"`
	Type string      `yaml:"type"`
	RTL  *rtl.Config `yaml:"rtl"`
}

// Band is a named frequency range in Hz.
type Band struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// ScanConfig represents sweep defaults; flags override them per run.
type ScanConfig struct {
	StepHz      float64         `yaml:"step"`
	ThresholdDB float64         `yaml:"threshold"`
	BlockSize   int             `yaml:"blockSize"`
	SettleDelay Duration        `yaml:"settleDelay"`
	Bands       map[string]Band `yaml:"bands"`
}

// CaptureConfig represents capture defaults; flags override them per run.
type CaptureConfig struct {
	Duration  Duration `yaml:"duration"`
	BlockSize int      `yaml:"blockSize"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	DataDirectory string `yaml:"dataDirectory"`
}

// LoadConfig reads the YAML configuration at path and fills in
// defaults for everything left unset. An empty path yields a default
// configuration.
func LoadConfig(path string) (*Config, error) {
	var config Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err = yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	config.applyDefaults()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Device.Type == "" {
		c.Device.Type = DeviceRTLSDR
	}
	if c.Device.Name == "" {
		c.Device.Name = c.Device.Type
	}
	if c.Device.RTL == nil {
		c.Device.RTL = &rtl.Config{}
	}

	if c.Scan.StepHz == 0 {
		c.Scan.StepHz = defaultStepHz
	}
	if c.Scan.ThresholdDB == 0 {
		c.Scan.ThresholdDB = defaultThresholdDB
	}
	if c.Scan.BlockSize == 0 {
		c.Scan.BlockSize = defaultBlockSize
	}
	if c.Scan.SettleDelay == 0 {
		c.Scan.SettleDelay = Duration(defaultSettleDelay)
	}
	if len(c.Scan.Bands) == 0 {
		c.Scan.Bands = defaultBands
	}

	if c.Capture.Duration == 0 {
		c.Capture.Duration = Duration(defaultDuration)
	}
	if c.Capture.BlockSize == 0 {
		c.Capture.BlockSize = defaultBlockSize
	}
}

func (c *Config) validate() error {
	if c.Device.Type != DeviceRTLSDR {
		return fmt.Errorf("unknown device type '%s'", c.Device.Type)
	}
	if err := c.Device.RTL.Validate(); err != nil {
		return err
	}

	for name, band := range c.Scan.Bands {
		if band.Start <= 0 || band.End <= 0 || band.Start > band.End {
			return fmt.Errorf("invalid band '%s': start=%0.f, end=%0.f", name, band.Start, band.End)
		}
	}
	return nil
}
