package app

import (
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"time"

	"github.com/roman-kulish/rc-surveillance/internal/storage"
)

func Run(ctx context.Context, config *Config, logger *slog.Logger) error {
	if _, err := os.Stat(config.DBPath); err != nil && os.IsNotExist(err) {
		return fmt.Errorf("database file '%s' does not exist: %w", config.DBPath, err)
	}

	store := storage.New(config.DBPath)
	defer store.Close()

	return renderSession(ctx, store, config, logger)
}

func renderSession(ctx context.Context, store *storage.SqliteStore, config *Config, logger *slog.Logger) error {
	session, err := store.Session(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading session: %w", err)
	}

	logger.Info("rendering session",
		slog.Int64("sessionID", session.ID),
		slog.String("device", session.DeviceID),
		slog.String("started", session.StartTime.Local().Format(time.DateTime)))

	spans, err := store.Spans(ctx, config.SessionID)
	if err != nil {
		return fmt.Errorf("reading sweeps: %w", err)
	}
	if len(spans) == 0 {
		return fmt.Errorf("session %d has no sweeps to render", config.SessionID)
	}

	grid := NewSpectrumGrid()
	for _, span := range spans {
		grid.Update(span)

		if config.Verbose {
			logger.Info("sweep loaded",
				slog.Int("sweep", span.Sweep),
				slog.Int("points", len(span.Points)))
		}
	}

	bounds := estimateBounds(grid.powers)
	if config.MinPower != nil {
		bounds.Min = *config.MinPower
	}
	if config.MaxPower != nil {
		bounds.Max = *config.MaxPower
	}
	if bounds.Min >= bounds.Max {
		return fmt.Errorf("invalid power bounds: min %0.2fdB, max %0.2fdB", bounds.Min, bounds.Max)
	}

	logger.Info("finished reading data points",
		slog.Group("stats",
			slog.Int("sweeps", grid.Height),
			slog.Int("steps", grid.Width),
			slog.String("minFreq", fmt.Sprintf("%0.2fHz", grid.FrequencyMin)),
			slog.String("maxFreq", fmt.Sprintf("%0.2fHz", grid.FrequencyMax)),
			slog.String("minPower", fmt.Sprintf("%0.2fdB", bounds.Min)),
			slog.String("maxPower", fmt.Sprintf("%0.2fdB", bounds.Max)),
		))

	img := NewRenderer(config.Theme, bounds, config.Scale).Render(grid)

	switch {
	case config.NoAnnotations:
		// nothing to draw

	case config.FontPath == "":
		logger.Warn("no font provided, skipping annotations")

	default:
		ann, err := NewAnnotator(config.FontPath)
		if err != nil {
			return fmt.Errorf("creating annotator: %w", err)
		}
		if err = ann.Annotate(img, grid); err != nil {
			return fmt.Errorf("annotating image: %w", err)
		}
	}

	logger.Info("writing image",
		slog.String("destination", config.OutputFile),
		slog.String("format", string(config.Format)),
		slog.String("theme", string(config.Theme)),
		slog.Int("width", img.Bounds().Dx()),
		slog.Int("height", img.Bounds().Dy()))

	out, err := os.Create(config.OutputFile)
	if err != nil {
		return err
	}
	defer out.Close()

	switch config.Format {
	case ImageJPEG:
		err = jpeg.Encode(out, img, &jpeg.Options{Quality: 98})

	default:
		err = png.Encode(out, img)
	}
	return err
}
