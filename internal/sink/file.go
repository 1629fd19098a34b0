package sink

import (
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/runnerr0/browser-timeline/internal/timeline"
)

// partialPattern names the temporary file an export is written to before it
// replaces the target. The random part keeps it clear of existing files.
const partialPattern = ".*.partial"

// WriteFile serializes events with w into path on fs. The output is written
// to a fresh temporary file next to path and renamed over path once
// complete, so path is either replaced whole or left as it was. Any
// existing file at path is overwritten. Failures are reported as
// timeline.WriteFailure.
func WriteFile(fs afero.Fs, path string, w Writer, events []timeline.Event) error {
	if fs == nil {
		fs = afero.NewOsFs()
	}

	f, err := afero.TempFile(fs, filepath.Dir(path), filepath.Base(path)+partialPattern)
	if err != nil {
		return writeFailure(path, errors.Wrap(err, "create output"))
	}
	tmp := f.Name()

	if err := w.Write(f, events); err != nil {
		f.Close()
		_ = fs.Remove(tmp)
		return writeFailure(path, err)
	}
	if err := f.Close(); err != nil {
		_ = fs.Remove(tmp)
		return writeFailure(path, errors.Wrap(err, "close output"))
	}
	_ = fs.Chmod(tmp, 0644)
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return writeFailure(path, errors.Wrap(err, "replace output"))
	}
	return nil
}

func writeFailure(path string, err error) error {
	return &timeline.Error{Kind: timeline.WriteFailure, Op: "export", Path: path, Err: err}
}
