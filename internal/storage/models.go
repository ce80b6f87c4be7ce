package storage

import (
	"database/sql"
	"time"
)

type readingData struct {
	SessionID  int64
	Sweep      int
	Timestamp  time.Time
	Frequency  float64
	Power      sql.NullFloat64
	NumSamples int
	Detected   bool
}

type captureData struct {
	ID                int64
	SessionID         int64
	Timestamp         time.Time
	Frequency         float64
	SampleRate        float64
	DurationSeconds   float64
	Modulation        sql.NullString
	AmplitudeVariance sql.NullFloat64
	FrequencyVariance sql.NullFloat64
	Samples           []byte
}
