package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/runnerr0/browser-timeline/internal/config"
	"github.com/runnerr0/browser-timeline/internal/timeline"
)

// resolveConfig loads the config file and overlays the command-line flags.
func resolveConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.LoadOrDefault(opts.Config)
	if err != nil {
		return nil, err
	}

	override := &config.Config{
		Acquisition: config.AcquisitionConfig{TempDir: opts.TempDir},
		Output:      config.OutputConfig{EventTypes: opts.Types},
	}
	if opts.Verbose {
		override.Logging.Level = "debug"
	}
	if err := config.Overlay(cfg, override); err != nil {
		return nil, err
	}

	// A false bool cannot be overlaid; --no-verify is applied by hand.
	if opts.NoVerify {
		cfg.Acquisition.VerifyHash = false
	}
	return cfg, nil
}

// newLogger builds the stderr logger for one run.
func newLogger(cfg config.LoggingConfig, w io.Writer, runID string) (*slog.Logger, error) {
	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}

	handlerOpts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch cfg.Format {
	case "json":
		h = slog.NewJSONHandler(w, handlerOpts)
	default:
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(h).With("run", runID), nil
}

// parseTypes converts event type names to timeline types.
func parseTypes(names []string) ([]timeline.EventType, error) {
	out := make([]timeline.EventType, 0, len(names))
	for _, n := range names {
		t, err := timeline.ParseEventType(n)
		if err != nil {
			return nil, fmt.Errorf("event type filter: %w", err)
		}
		out = append(out, t)
	}
	return out, nil
}

// formatRange renders the time span of a summary, or "" when empty.
func formatRange(s timeline.Summary) string {
	if !s.First.Valid {
		return ""
	}
	return timeline.FormatCivil(s.First.Int64) + " .. " + timeline.FormatCivil(s.Last.Int64)
}
