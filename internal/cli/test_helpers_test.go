package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// runApp runs the CLI with buffered stdout/stderr and an isolated HOME so
// no user config file is picked up.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	var stdout, stderr bytes.Buffer
	a := &app{
		version: "test",
		stdout:  &stdout,
		stderr:  &stderr,
		fs:      afero.NewOsFs(),
	}
	err := a.main(context.Background(), args)
	return stdout.String(), stderr.String(), err
}
