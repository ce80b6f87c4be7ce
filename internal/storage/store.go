package storage

import (
	"context"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roman-kulish/rc-surveillance/internal/capture"
	"github.com/roman-kulish/rc-surveillance/internal/dsp"
	"github.com/roman-kulish/rc-surveillance/internal/scanner"
	"github.com/roman-kulish/rc-surveillance/internal/spectrum"
)

// Store provides an interface for persisting scan sessions, sweep
// readings and signal captures. All write operations are atomic.
type Store interface {
	// CreateSession initializes a new scanning session and returns its
	// unique identifier.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - deviceType: Type of SDR device (e.g., "rtl-sdr")
	//   - deviceID: Human-readable device name or serial number
	//   - config: Optional device configuration. Can be string, []byte, or JSON-serializable object
	//
	// Returns:
	//   - sessionID: Unique identifier for the created session
	//   - error: If session creation fails or context is cancelled
	CreateSession(ctx context.Context, deviceType, deviceID string, config any) (sessionID int64, err error)

	// Session retrieves a specific scanning session by its ID.
	Session(ctx context.Context, id int64) (session *spectrum.ScanSession, err error)

	// Sessions returns all scanning sessions stored in the database,
	// ordered by start time in ascending order.
	Sessions(ctx context.Context) (sessions []*spectrum.ScanSession, err error)

	// StoreSweep saves every reading of one sweep in a single atomic
	// transaction.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeouts
	//   - sessionID: ID of the session this sweep belongs to
	//   - sweep: Zero-based sweep index within the session
	//   - result: Sweep result containing frequency power readings
	StoreSweep(ctx context.Context, sessionID int64, sweep int, result *scanner.Result) error

	// Spans returns the stored sweeps of a session as spectral spans,
	// ordered by sweep index, with readings in ascending frequency
	// order within each span.
	Spans(ctx context.Context, sessionID int64) (spans []*spectrum.SpectralSpan, err error)

	// StoreCapture saves a recorded waveform together with its optional
	// classification. The raw IQ samples are stored as a binary blob.
	//
	// Returns:
	//   - captureID: Unique identifier for the stored capture
	//   - error: If storage fails or context is cancelled
	StoreCapture(ctx context.Context, sessionID int64, rec *capture.Capture, cls *dsp.Classification) (captureID int64, err error)

	// Capture retrieves a stored capture by its ID, decoding the raw
	// samples back into a capture.Capture value.
	Capture(ctx context.Context, id int64) (stored *spectrum.StoredCapture, err error)

	// Close releases all database connections and resources. After
	// Close is called, the store instance cannot be reused. It is safe
	// to call Close multiple times.
	Close() error
}
