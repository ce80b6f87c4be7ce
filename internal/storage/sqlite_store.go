// Package storage persists scan sessions, sweep readings and signal
// captures in a SQLite database, one file per run.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/roman-kulish/rc-surveillance/internal/capture"
	"github.com/roman-kulish/rc-surveillance/internal/dsp"
	"github.com/roman-kulish/rc-surveillance/internal/scanner"
	"github.com/roman-kulish/rc-surveillance/internal/spectrum"
)

// SqliteStore handles database operations. Writes and reads go through
// separate connections so a long render cannot stall the write path.
type SqliteStore struct {
	dbPath string

	writeDB     *sql.DB
	writeDBOnce sync.Once
	writeDBErr  error

	readDB     *sql.DB
	readDBOnce sync.Once
	readDBErr  error

	closeOnce sync.Once
	closeErr  error
}

// New creates a new SqliteStore for the database at dbPath. Schema
// initialization is deferred until the first write.
func New(dbPath string) *SqliteStore {
	return &SqliteStore{dbPath: dbPath}
}

func runSQLCommand(db *sql.DB, sql string) error {
	_, err := db.Exec(sql)
	return err
}

func (s *SqliteStore) getWriteDB() (*sql.DB, error) {
	s.writeDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "_journal_mode=WAL&_synchronous=NORMAL"))
		if err != nil {
			s.writeDBErr = fmt.Errorf("opening write connection: %w", err)
			return
		}

		if err = runSQLCommand(db, initSchemaSQL); err != nil {
			_ = db.Close()
			s.writeDBErr = fmt.Errorf("initializing schema: %w", err)
			return
		}

		s.writeDB = db
	})

	return s.writeDB, s.writeDBErr
}

func (s *SqliteStore) getReadDB() (*sql.DB, error) {
	s.readDBOnce.Do(func() {
		db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", s.dbPath, "mode=ro"))
		if err != nil {
			s.readDBErr = fmt.Errorf("opening read connection: %w", err)
			return
		}
		s.readDB = db
	})

	return s.readDB, s.readDBErr
}

func (s *SqliteStore) CreateSession(ctx context.Context, deviceType, deviceID string, config any) (sessionID int64, err error) {
	var configData sql.NullString

	if config != nil {
		switch v := config.(type) {
		case string:
			configData.Valid = true
			configData.String = v

		case []byte:
			configData.Valid = true
			configData.String = string(v)

		default:
			var p []byte
			if p, err = json.Marshal(config); err != nil {
				err = fmt.Errorf("marshaling config: %w", err)
				return
			}

			configData.Valid = true
			configData.String = string(p)
		}
	}

	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	result, err := stmt.ExecContext(ctx, deviceType, deviceID, configData)
	if err != nil {
		err = fmt.Errorf("inserting session: %w", err)
		return
	}

	sessionID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting session ID: %w", err)
	}
	return
}

func (s *SqliteStore) Session(ctx context.Context, id int64) (session *spectrum.ScanSession, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectSessionSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var sess spectrum.ScanSession
	var config sql.NullString
	if err = stmt.QueryRowContext(ctx, id).Scan(&sess.ID, &sess.StartTime, &sess.DeviceType, &sess.DeviceID, &config); err != nil {
		err = fmt.Errorf("scanning session: %w", err)
		return
	}
	if config.Valid {
		sess.Config = &config.String
	}

	return &sess, nil
}

func (s *SqliteStore) Sessions(ctx context.Context) (sessions []*spectrum.ScanSession, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSessionsSQL)
	if err != nil {
		err = fmt.Errorf("querying sessions: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	for rows.Next() {
		var sess spectrum.ScanSession
		var config sql.NullString
		if err = rows.Scan(&sess.ID, &sess.StartTime, &sess.DeviceType, &sess.DeviceID, &config); err != nil {
			err = fmt.Errorf("scanning session: %w", err)
			return
		}
		if config.Valid {
			sess.Config = &config.String
		}
		sessions = append(sessions, &sess)
	}
	return
}

func (s *SqliteStore) StoreSweep(ctx context.Context, sessionID int64, sweep int, result *scanner.Result) (err error) {
	if result == nil || len(result.Readings) == 0 {
		return
	}

	db, err := s.getWriteDB()
	if err != nil {
		return fmt.Errorf("getting write connection: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer rollbackWithError(tx, &err)

	values := make([]interface{}, 0, len(result.Readings)*7)
	valuesPlaceholder := "(?, ?, ?, ?, ?, ?, ?)"

	var sb strings.Builder
	sb.WriteString(insertReadingSQL)

	for i, reading := range result.Readings {
		data := toReadingData(sessionID, sweep, reading, result)
		values = append(values,
			data.SessionID,
			data.Sweep,
			data.Timestamp,
			data.Frequency,
			data.Power,
			data.NumSamples,
			data.Detected,
		)

		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(valuesPlaceholder)
	}

	// Single batch insert
	if _, err = tx.ExecContext(ctx, sb.String(), values...); err != nil {
		return fmt.Errorf("batch inserting readings: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *SqliteStore) Spans(ctx context.Context, sessionID int64) (spans []*spectrum.SpectralSpan, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	rows, err := db.QueryContext(ctx, selectSpansSQL, sessionID)
	if err != nil {
		err = fmt.Errorf("querying readings: %w", err)
		return
	}
	defer closeWithError(rows, &err)

	var span *spectrum.SpectralSpan
	for rows.Next() {
		var sweep int
		var timestamp time.Time
		var frequency float64
		var power sql.NullFloat64
		var numSamples int
		var detected bool

		if err = rows.Scan(&sweep, &timestamp, &frequency, &power, &numSamples, &detected); err != nil {
			err = fmt.Errorf("scanning reading: %w", err)
			return
		}

		if span == nil || span.Sweep != sweep {
			span = &spectrum.SpectralSpan{
				Sweep:          sweep,
				Timestamp:      timestamp,
				FrequencyStart: frequency,
			}
			spans = append(spans, span)
		}

		point := spectrum.SpectralPoint{
			Frequency:  frequency,
			Detected:   detected,
			NumSamples: numSamples,
		}
		if power.Valid {
			point.Power = &power.Float64
		}

		span.FrequencyEnd = frequency
		span.Points = append(span.Points, point)
	}
	return
}

func (s *SqliteStore) StoreCapture(ctx context.Context, sessionID int64, rec *capture.Capture, cls *dsp.Classification) (captureID int64, err error) {
	db, err := s.getWriteDB()
	if err != nil {
		err = fmt.Errorf("getting write connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, insertCaptureSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	data := toCaptureData(sessionID, rec, cls)

	result, err := stmt.ExecContext(
		ctx,
		data.SessionID,
		data.Timestamp,
		data.Frequency,
		data.SampleRate,
		data.DurationSeconds,
		data.Modulation,
		data.AmplitudeVariance,
		data.FrequencyVariance,
		data.Samples,
	)
	if err != nil {
		err = fmt.Errorf("inserting capture: %w", err)
		return
	}

	captureID, err = result.LastInsertId()
	if err != nil {
		err = fmt.Errorf("getting capture ID: %w", err)
	}
	return
}

func (s *SqliteStore) Capture(ctx context.Context, id int64) (stored *spectrum.StoredCapture, err error) {
	db, err := s.getReadDB()
	if err != nil {
		err = fmt.Errorf("getting read connection: %w", err)
		return
	}

	stmt, err := db.PrepareContext(ctx, selectCaptureSQL)
	if err != nil {
		err = fmt.Errorf("preparing statement: %w", err)
		return
	}
	defer closeWithError(stmt, &err)

	var data captureData
	err = stmt.QueryRowContext(ctx, id).Scan(
		&data.ID,
		&data.SessionID,
		&data.Timestamp,
		&data.Frequency,
		&data.SampleRate,
		&data.DurationSeconds,
		&data.Modulation,
		&data.AmplitudeVariance,
		&data.FrequencyVariance,
		&data.Samples,
	)
	if err != nil {
		err = fmt.Errorf("scanning capture: %w", err)
		return
	}

	samples, err := decodeSamples(data.Samples)
	if err != nil {
		err = fmt.Errorf("decoding samples: %w", err)
		return
	}

	stored = &spectrum.StoredCapture{
		ID:        data.ID,
		SessionID: data.SessionID,
		Capture: &capture.Capture{
			Frequency:  data.Frequency,
			SampleRate: data.SampleRate,
			Duration:   time.Duration(data.DurationSeconds * float64(time.Second)),
			Timestamp:  data.Timestamp,
			Samples:    samples,
		},
	}

	if data.Modulation.Valid {
		stored.Classification = &dsp.Classification{
			Modulation:        dsp.Modulation(data.Modulation.String),
			AmplitudeVariance: data.AmplitudeVariance.Float64,
			FrequencyVariance: data.FrequencyVariance.Float64,
		}
	}

	return stored, nil
}

func (s *SqliteStore) Close() error {
	s.closeOnce.Do(func() {
		var writeErr, readErr error

		if s.writeDB != nil {
			_ = runSQLCommand(s.writeDB, initIndexesSQL)

			writeErr = s.writeDB.Close()
			s.writeDB = nil
		}

		if s.readDB != nil {
			readErr = s.readDB.Close()
			s.readDB = nil
		}

		switch {
		case writeErr != nil && readErr != nil:
			s.closeErr = errors.Join(writeErr, readErr)
		case writeErr != nil:
			s.closeErr = writeErr
		case readErr != nil:
			s.closeErr = readErr
		}
	})

	return s.closeErr
}
