package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/roman-kulish/rc-surveillance/internal/sdr"
	"github.com/roman-kulish/rc-surveillance/internal/sdr/rtl"
	"github.com/roman-kulish/rc-surveillance/internal/storage"
)

const storageDir = "data"

// Run dispatches to the requested subcommand. The device is created
// here and handed to exactly one operation: there is no long-lived
// ambient device handle shared across commands.
func Run(ctx context.Context, config *Config, args []string, logger *slog.Logger) error {
	if len(args) == 0 {
		return fmt.Errorf("no command specified, expected one of: scan, capture")
	}

	switch args[0] {
	case "scan":
		return runScan(ctx, config, args[1:], logger)

	case "capture":
		return runCapture(ctx, config, args[1:], logger)

	default:
		return fmt.Errorf("unknown command '%s', expected one of: scan, capture", args[0])
	}
}

func createSource(config *Config, logger *slog.Logger) (sdr.SampleSource, error) {
	switch config.Device.Type {
	case DeviceRTLSDR:
		source, err := rtl.New(config.Device.RTL, rtl.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("creating RTL-SDR source: %w", err)
		}
		return source, nil

	default:
		return nil, fmt.Errorf("creating source: unknown type '%s'", config.Device.Type)
	}
}

func createStorage(config *StorageConfig) (*storage.SqliteStore, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current working directory: %w", err)
	}

	var dbPath string
	if config.DataDirectory != "" {
		dbPath = filepath.Join(wd, config.DataDirectory)
	} else {
		dbPath = filepath.Join(wd, storageDir)
	}

	stat, err := os.Stat(dbPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("storage directory '%s' does not exist: %w", dbPath, err)
		}
		return nil, fmt.Errorf("invalid storage directory '%s': %w", dbPath, err)
	}
	if !stat.IsDir() {
		return nil, fmt.Errorf("invalid storage directory '%s'", dbPath)
	}

	dbPath = filepath.Join(dbPath, fmt.Sprintf("rc_session_%s.sqlite", time.Now().UTC().Format("20060102_150405")))
	return storage.New(dbPath), nil
}
