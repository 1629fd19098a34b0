package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/runnerr0/browser-timeline/internal/acquire"
	"github.com/runnerr0/browser-timeline/internal/sink"
	"github.com/runnerr0/browser-timeline/internal/timeline"
)

// run takes the forensic copy, extracts the timeline from it and writes
// the result. The copy is released on every return path.
func (a *app) run(ctx context.Context, opts *Options) error {
	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	logger, err := newLogger(cfg.Logging, a.stderr, runID)
	if err != nil {
		return err
	}

	types, err := parseTypes(cfg.Output.EventTypes)
	if err != nil {
		return err
	}
	branches := timeline.SelectBranches(timeline.DefaultBranches(), types)

	acq := acquire.New(a.fs, acquire.Options{
		TempDir:      cfg.Acquisition.TempDir,
		CopySidecars: cfg.Acquisition.CopySidecars,
		Verify:       cfg.Acquisition.VerifyHash,
		RunID:        runID,
	})
	snap, err := acq.Acquire(ctx, opts.History)
	if err != nil {
		return err
	}
	defer func() {
		if err := snap.Release(); err != nil {
			logger.Warn("forensic copy not removed", "dir", snap.Dir, "error", err)
		}
	}()

	logger.Info("forensic copy taken",
		"source", snap.Source,
		"copy", snap.Path,
		"size", humanize.Bytes(uint64(snap.Size)),
		"sha256", snap.SHA256,
		"sidecars", len(snap.Sidecars),
	)

	x, err := timeline.Open(ctx, snap.Path, branches)
	if err != nil {
		return err
	}
	defer x.Close()
	logger.Debug("running timeline query", "branches", len(branches), "sql", x.Query())

	events, err := x.Extract(ctx)
	if err != nil {
		return err
	}

	sum := timeline.Summarize(events)
	logger.Debug("timeline extracted",
		"events", sum.Total,
		"browsing", sum.ByType[timeline.Browsing],
		"visits", sum.ByType[timeline.Visit],
		"download_starts", sum.ByType[timeline.DownloadStart],
		"download_ends", sum.ByType[timeline.DownloadEnd],
		"range", formatRange(sum),
	)

	return a.emit(opts, cfg.Output.ConsoleSeparator, events)
}

// emit writes events to the output file when one was given, otherwise to
// stdout. The confirmation line is printed only for file output.
func (a *app) emit(opts *Options, separator string, events []timeline.Event) error {
	if opts.Output != "" {
		var w sink.Writer = sink.CSVWriter{}
		if opts.JSON {
			w = sink.JSONWriter{}
		}
		if err := sink.WriteFile(a.fs, opts.Output, w, events); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "[+] Timeline exported to %s\n", opts.Output)
		return nil
	}

	var w sink.Writer = sink.ConsoleWriter{Separator: separator}
	if opts.JSON {
		w = sink.JSONWriter{}
	}
	if err := w.Write(a.stdout, events); err != nil {
		return &timeline.Error{Kind: timeline.WriteFailure, Op: "print", Err: err}
	}
	return nil
}
