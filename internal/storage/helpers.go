package storage

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/roman-kulish/rc-surveillance/internal/capture"
	"github.com/roman-kulish/rc-surveillance/internal/dsp"
	"github.com/roman-kulish/rc-surveillance/internal/scanner"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if cErr := rb.Rollback(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func toReadingData(sessionID int64, sweep int, reading scanner.Reading, result *scanner.Result) *readingData {
	var power sql.NullFloat64
	if reading.IsValid {
		power.Float64 = reading.Power
		power.Valid = true
	}

	return &readingData{
		SessionID:  sessionID,
		Sweep:      sweep,
		Timestamp:  result.Timestamp.UTC(),
		Frequency:  reading.Frequency,
		Power:      power,
		NumSamples: result.NumSamples,
		Detected:   reading.Detected,
	}
}

func toCaptureData(sessionID int64, rec *capture.Capture, cls *dsp.Classification) *captureData {
	data := captureData{
		SessionID:       sessionID,
		Timestamp:       rec.Timestamp.UTC(),
		Frequency:       rec.Frequency,
		SampleRate:      rec.SampleRate,
		DurationSeconds: rec.Duration.Seconds(),
		Samples:         encodeSamples(rec.Samples),
	}

	if cls != nil {
		data.Modulation = sql.NullString{String: cls.Modulation.String(), Valid: true}
		data.AmplitudeVariance = sql.NullFloat64{Float64: cls.AmplitudeVariance, Valid: true}
		data.FrequencyVariance = sql.NullFloat64{Float64: cls.FrequencyVariance, Valid: true}
	}

	return &data
}

// encodeSamples packs IQ samples as interleaved little-endian float32
// pairs. Float32 halves the blob size and still carries far more
// resolution than the 8-bit tuner output.
func encodeSamples(samples []complex128) []byte {
	buf := make([]byte, len(samples)*8)
	for i, s := range samples {
		binary.LittleEndian.PutUint32(buf[i*8:], math.Float32bits(float32(real(s))))
		binary.LittleEndian.PutUint32(buf[i*8+4:], math.Float32bits(float32(imag(s))))
	}
	return buf
}

func decodeSamples(buf []byte) ([]complex128, error) {
	if len(buf)%8 != 0 {
		return nil, fmt.Errorf("corrupt sample blob: %d bytes", len(buf))
	}

	samples := make([]complex128, len(buf)/8)
	for i := range samples {
		re := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8:]))
		im := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*8+4:]))
		samples[i] = complex(float64(re), float64(im))
	}
	return samples, nil
}
