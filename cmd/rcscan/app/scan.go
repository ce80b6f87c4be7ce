package app

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/rc-surveillance/internal/scanner"
)

func runScan(ctx context.Context, config *Config, args []string, logger *slog.Logger) (err error) {
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	band := fs.String("band", "", "Named band to scan (e.g. 27MHz, 40MHz, 49MHz)")
	startMHz := fs.Float64("start", 0, "Start frequency in MHz")
	endMHz := fs.Float64("end", 0, "End frequency in MHz")
	stepHz := fs.Float64("step", config.Scan.StepHz, "Scan step in Hz")
	threshold := fs.Float64("threshold", config.Scan.ThresholdDB, "Detection threshold in dB")
	passes := fs.Int("passes", 1, "Number of sweep passes")
	abort := fs.Bool("abort-on-fault", false, "Abort the sweep on the first hardware fault instead of skipping")
	if err = fs.Parse(args); err != nil {
		return err
	}

	req := scanner.Request{
		StepHz:      *stepHz,
		ThresholdDB: *threshold,
	}

	switch {
	case *band != "":
		b, ok := config.Scan.Bands[*band]
		if !ok {
			return fmt.Errorf("unknown band '%s'", *band)
		}
		req.StartHz, req.EndHz = b.Start, b.End

	case *startMHz > 0 && *endMHz > 0:
		req.StartHz, req.EndHz = *startMHz*1e6, *endMHz*1e6

	default:
		return fmt.Errorf("either -band or both -start and -end are required")
	}

	if *passes < 1 {
		return fmt.Errorf("passes must be at least 1, got %d", *passes)
	}

	source, err := createSource(config, logger)
	if err != nil {
		return err
	}

	store, err := createStorage(&config.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage: %w", err)
	}
	defer func() {
		if cErr := store.Close(); cErr != nil && err == nil {
			err = cErr
		}
	}()

	sessionID, err := store.CreateSession(ctx, config.Device.Type, config.Device.Name, config.Device.RTL)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	options := []func(*scanner.Scanner){
		scanner.WithLogger(logger),
		scanner.WithBlockSize(config.Scan.BlockSize),
		scanner.WithSettleDelay(config.Scan.SettleDelay.Std()),
	}
	if *abort {
		options = append(options, scanner.WithAbortOnFault())
	}
	s := scanner.New(source, options...)

	logger.Info("starting sweep",
		slog.String("from", humanize.SIWithDigits(req.StartHz, 3, "Hz")),
		slog.String("to", humanize.SIWithDigits(req.EndHz, 3, "Hz")),
		slog.String("step", humanize.SIWithDigits(req.StepHz, 0, "Hz")),
		slog.Int("passes", *passes))

	var detections int
	for pass := 0; pass < *passes; pass++ {
		result, err := s.Scan(ctx, req)
		if err != nil {
			return fmt.Errorf("sweep pass %d: %w", pass, err)
		}

		if err = store.StoreSweep(ctx, sessionID, pass, result); err != nil {
			return fmt.Errorf("storing sweep pass %d: %w", pass, err)
		}

		detections += len(result.Detections())
	}

	logger.Info("sweep complete",
		slog.Int64("sessionID", sessionID),
		slog.Int("detections", detections))
	return nil
}
