package storage

import (
	_ "embed"
)

//go:embed schema.sql
var initSchemaSQL string

// Indexes are created on close, once the bulk of the writes is done.
const initIndexesSQL = `
CREATE INDEX IF NOT EXISTS idx_readings_session ON readings (session_id, sweep);
CREATE INDEX IF NOT EXISTS idx_readings_frequency ON readings (frequency);
CREATE INDEX IF NOT EXISTS idx_captures_session ON captures (session_id);`

const (
	insertSessionSQL = `
INSERT INTO sessions (start_time,
                      device_type,
                      device_id,
                      config)
VALUES (CURRENT_TIMESTAMP, ?, ?, ?)`

	selectSessionSQL = `
SELECT id,
       start_time,
       device_type,
       device_id,
       config
FROM sessions
WHERE id = ?`

	selectSessionsSQL = `
SELECT id,
       start_time,
       device_type,
       device_id,
       config
FROM sessions
ORDER BY start_time`

	insertReadingSQL = `
INSERT INTO readings (session_id,
                      sweep,
                      timestamp,
                      frequency,
                      power,
                      num_samples,
                      detected)
VALUES `

	selectSpansSQL = `
SELECT sweep,
       timestamp,
       frequency,
       power,
       num_samples,
       detected
FROM readings
WHERE session_id = ?
ORDER BY sweep, frequency`

	insertCaptureSQL = `
INSERT INTO captures (session_id,
                      timestamp,
                      frequency,
                      sample_rate,
                      duration_seconds,
                      modulation,
                      amplitude_variance,
                      frequency_variance,
                      samples)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	selectCaptureSQL = `
SELECT id,
       session_id,
       timestamp,
       frequency,
       sample_rate,
       duration_seconds,
       modulation,
       amplitude_variance,
       frequency_variance,
       samples
FROM captures
WHERE id = ?`
)
