// Package spectrum defines the read models shared between storage and
// the rendering tools.
package spectrum

import (
	"time"

	"github.com/roman-kulish/rc-surveillance/internal/capture"
	"github.com/roman-kulish/rc-surveillance/internal/dsp"
)

// ScanSession represents a single scanning session with a specific
// device. Each session captures metadata about when and how the
// scanning was performed.
type ScanSession struct {
	ID         int64     `json:"ID"`                      // Unique identifier for the session
	StartTime  time.Time `json:"startTime"`               // When the session began
	DeviceType string    `json:"deviceType"`              // Type of SDR device used (e.g., "rtl-sdr")
	DeviceID   string    `json:"deviceID"`                // Human-readable device name or serial
	Config     *string   `json:"config,string,omitempty"` // Optional device configuration in JSON format
}

// SpectralPoint represents a single stored measurement at a specific
// frequency within a sweep.
type SpectralPoint struct {
	Frequency  float64  `json:"frequency"`       // Center frequency in Hz
	Power      *float64 `json:"power,omitempty"` // Power level in dB (nil if the step was skipped)
	Detected   bool     `json:"detected"`        // Whether the reading met the scan threshold
	NumSamples int      `json:"numSamples"`      // Number of IQ samples behind the measurement
}

// SpectralSpan represents one complete sweep of a session, ordered by
// ascending frequency.
type SpectralSpan struct {
	Sweep          int             `json:"sweep"`            // Sweep index within the session
	Timestamp      time.Time       `json:"timestamp"`        // When the sweep was taken
	FrequencyStart float64         `json:"frequencyStart"`   // Start frequency of the span in Hz
	FrequencyEnd   float64         `json:"frequencyEnd"`     // End frequency of the span in Hz
	Points         []SpectralPoint `json:"points,omitempty"` // Ordered measurements in this span
}

// StoredCapture pairs a recorded waveform with its classification, if
// one was made.
type StoredCapture struct {
	ID             int64               `json:"ID"`
	SessionID      int64               `json:"sessionID"`
	Capture        *capture.Capture    `json:"capture"`
	Classification *dsp.Classification `json:"classification,omitempty"`
}
