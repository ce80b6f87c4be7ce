package rtl

import (
	"slices"
	"testing"
)

func TestConfig_Args(t *testing.T) {
	testCases := []struct {
		name   string
		config Config
		want   []string
	}{
		{
			"defaults",
			Config{},
			[]string{"-d", "0", "-f", "27145000", "-s", "2400000", "-n", "32768", "-"},
		},
		{
			"full config",
			Config{DeviceIndex: 1, SampleRate: 1_024_000, Gain: 28.5, PPMError: -3},
			[]string{"-d", "1", "-f", "27145000", "-s", "1024000", "-g", "28.5", "-p", "-3", "-n", "32768", "-"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.config.Args(27_145_000, 16_384)
			if !slices.Equal(got, tc.want) {
				t.Errorf("Args() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"zero config", Config{}, false},
		{"valid rate", Config{SampleRate: 2_400_000}, false},
		{"rate too low", Config{SampleRate: 100_000}, true},
		{"rate too high", Config{SampleRate: 4_000_000}, true},
		{"negative device index", Config{DeviceIndex: -1}, true},
		{"negative gain", Config{Gain: -10}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}
