package app

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/roman-kulish/rc-surveillance/internal/capture"
	"github.com/roman-kulish/rc-surveillance/internal/dsp"
)

func runCapture(ctx context.Context, config *Config, args []string, logger *slog.Logger) (err error) {
	fs := flag.NewFlagSet("capture", flag.ContinueOnError)
	freqMHz := fs.Float64("freq", 0, "Frequency to capture in MHz")
	duration := fs.Duration("duration", config.Capture.Duration.Std(), "Capture duration")
	classify := fs.Bool("classify", true, "Classify the modulation of the captured signal")
	if err = fs.Parse(args); err != nil {
		return err
	}

	if *freqMHz <= 0 {
		return fmt.Errorf("-freq is required")
	}
	frequencyHz := *freqMHz * 1e6

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

	c := capture.New(source,
		capture.WithLogger(logger),
		capture.WithBlockSize(config.Capture.BlockSize))

	rec, err := c.Capture(ctx, frequencyHz, *duration)
	if err != nil {
		return fmt.Errorf("capturing signal: %w", err)
	}

	var cls *dsp.Classification
	if *classify {
		verdict, err := dsp.NewClassifier().Classify(rec.Samples)
		if err != nil {
			return fmt.Errorf("classifying signal: %w", err)
		}
		cls = &verdict

		logger.Info("modulation classified",
			slog.String("modulation", verdict.Modulation.String()),
			slog.Float64("amplitudeVariance", verdict.AmplitudeVariance),
			slog.Float64("frequencyVariance", verdict.FrequencyVariance))
	}

	id, err := store.StoreCapture(ctx, sessionID, rec, cls)
	if err != nil {
		return fmt.Errorf("storing capture: %w", err)
	}

	logger.Info("capture stored",
		slog.Int64("captureID", id),
		slog.String("frequency", humanize.SIWithDigits(rec.Frequency, 3, "Hz")),
		slog.String("size", humanize.IBytes(rec.Size())))
	return nil
}
