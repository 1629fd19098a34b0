package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	goflags "github.com/jessevdk/go-flags"
	"github.com/spf13/afero"
)

// buildParser constructs the go-flags parser over a fresh Options.
func buildParser() (*goflags.Parser, *Options) {
	var opts Options

	parser := goflags.NewParser(&opts, goflags.HelpFlag|goflags.PassDoubleDash)
	parser.Name = "browser-timeline"
	parser.Usage = "-i PATH [-o PATH] [OPTIONS]"
	parser.LongDescription = "Build a forensic activity timeline (browsing, visits, downloads) from a Chrome/Edge History database."

	return parser, &opts
}

// app carries the process resources a run writes to.
type app struct {
	version string
	stdout  io.Writer
	stderr  io.Writer
	fs      afero.Fs
}

func newApp(version string) *app {
	return &app{
		version: version,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		fs:      afero.NewOsFs(),
	}
}

// Run is the main entry point for the CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and runs the
// extraction. SIGINT and SIGTERM cancel the run; the forensic copy is still
// removed before returning.
func RunWithArgs(version string, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newApp(version).main(ctx, args)
}

func (a *app) main(ctx context.Context, args []string) error {
	// Handle --version before the parser, which would otherwise insist on
	// --history.
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Fprintf(a.stdout, "browser-timeline %s\n", a.version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, opts := buildParser()

	var rest []string
	var err error
	if args != nil {
		rest, err = parser.ParseArgs(args)
	} else {
		rest, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				fmt.Fprintln(a.stdout, flagsErr.Message)
				return nil
			}
		}
		return &usageError{err: err}
	}
	if len(rest) > 0 {
		return &usageError{err: fmt.Errorf("unexpected arguments: %v", rest)}
	}

	return a.run(ctx, opts)
}

// usageError marks a command-line mistake.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }
