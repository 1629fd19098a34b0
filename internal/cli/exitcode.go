package cli

import (
	"context"
	"errors"

	"github.com/runnerr0/browser-timeline/internal/timeline"
)

// Process exit codes. Every error kind has its own code so scripts can
// branch on the failure.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitSourceNotFound = 2
	ExitCorruptSource  = 3
	ExitSchemaMismatch = 4
	ExitWriteFailure   = 5
	ExitUsage          = 64
	ExitInterrupted    = 130
)

// ExitCode maps an error returned by Run to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var usage *usageError
	if errors.As(err, &usage) {
		return ExitUsage
	}

	switch timeline.KindOf(err) {
	case timeline.SourceNotFound:
		return ExitSourceNotFound
	case timeline.CorruptSource:
		return ExitCorruptSource
	case timeline.SchemaMismatch:
		return ExitSchemaMismatch
	case timeline.WriteFailure:
		return ExitWriteFailure
	}

	if errors.Is(err, context.Canceled) {
		return ExitInterrupted
	}
	return ExitFailure
}
