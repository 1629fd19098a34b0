// Package acquire takes forensic copies of browser History databases so
// that extraction never reads, locks or modifies the original file.
package acquire

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/afero"

	"github.com/runnerr0/browser-timeline/internal/timeline"
)

// SnapshotName is the file name of the copied database inside the
// snapshot directory.
const SnapshotName = "History"

// sidecarSuffixes are the SQLite journal files that may hold pages not yet
// written back to the main database by a running browser.
var sidecarSuffixes = []string{"-wal", "-journal"}

// Options controls how snapshots are taken.
type Options struct {
	// TempDir is the parent of snapshot directories. Empty means the
	// system temp directory.
	TempDir string
	// CopySidecars also copies -wal and -journal files next to the source.
	CopySidecars bool
	// Verify re-reads the copy and compares its digest with the source.
	Verify bool
	// RunID names the snapshot directory. Empty means a fresh UUID.
	RunID string
}

// Acquirer takes snapshots through an afero filesystem.
type Acquirer struct {
	fs   afero.Fs
	opts Options
}

// New returns an Acquirer. A nil fs means the OS filesystem.
func New(fs afero.Fs, opts Options) *Acquirer {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	if opts.RunID == "" {
		opts.RunID = uuid.NewString()
	}
	return &Acquirer{fs: fs, opts: opts}
}

// Snapshot is a private copy of a History database. Release removes it.
type Snapshot struct {
	Dir      string
	Path     string
	Source   string
	Size     int64
	SHA256   string
	Sidecars []string

	fs       afero.Fs
	released bool
}

// Acquire copies source into a new temporary directory. A missing source,
// or one that is not a regular file, fails with timeline.SourceNotFound
// before anything is created. On any later failure the temporary directory
// is removed before returning.
func (a *Acquirer) Acquire(ctx context.Context, source string) (*Snapshot, error) {
	info, err := a.fs.Stat(source)
	if err != nil {
		return nil, &timeline.Error{Kind: timeline.SourceNotFound, Op: "acquire", Path: source, Err: err}
	}
	if !info.Mode().IsRegular() {
		return nil, timeline.Errorf(timeline.SourceNotFound, "acquire", source, "not a regular file")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dir, err := afero.TempDir(a.fs, a.opts.TempDir, "browser-timeline-"+a.opts.RunID+"-")
	if err != nil {
		return nil, errors.Wrap(err, "create snapshot directory")
	}

	snap := &Snapshot{
		Dir:    dir,
		Path:   filepath.Join(dir, SnapshotName),
		Source: source,
		fs:     a.fs,
	}

	if err := a.fill(ctx, snap, info); err != nil {
		_ = snap.Release()
		return nil, err
	}
	return snap, nil
}

func (a *Acquirer) fill(ctx context.Context, snap *Snapshot, info os.FileInfo) error {
	digest, n, err := copyFile(ctx, a.fs, snap.Source, snap.Path, info)
	if err != nil {
		return errors.Wrapf(err, "copy %s", snap.Source)
	}
	snap.Size = n
	snap.SHA256 = digest

	if a.opts.CopySidecars {
		for _, suffix := range sidecarSuffixes {
			src := snap.Source + suffix
			sideInfo, err := a.fs.Stat(src)
			if err != nil || !sideInfo.Mode().IsRegular() {
				continue
			}
			dst := snap.Path + suffix
			if _, _, err := copyFile(ctx, a.fs, src, dst, sideInfo); err != nil {
				return errors.Wrapf(err, "copy %s", src)
			}
			snap.Sidecars = append(snap.Sidecars, dst)
		}
	}

	if a.opts.Verify {
		got, err := hashFile(a.fs, snap.Path)
		if err != nil {
			return errors.Wrap(err, "verify snapshot")
		}
		if got != snap.SHA256 {
			return timeline.Errorf(timeline.CorruptSource, "verify snapshot", snap.Path,
				"digest %s does not match source digest %s", got, snap.SHA256)
		}
	}
	return nil
}

// Release removes the snapshot directory. It is safe to call more than
// once and on a nil Snapshot.
func (s *Snapshot) Release() error {
	if s == nil || s.released {
		return nil
	}
	s.released = true
	return errors.Wrap(s.fs.RemoveAll(s.Dir), "remove snapshot")
}

// copyFile copies src to dst byte for byte, keeping the source mode bits
// (plus owner read/write) and modification time. It returns the SHA-256
// of the bytes copied and their count.
func copyFile(ctx context.Context, fs afero.Fs, src, dst string, info os.FileInfo) (string, int64, error) {
	in, err := fs.Open(src)
	if err != nil {
		return "", 0, err
	}
	defer in.Close()

	out, err := fs.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", 0, err
	}

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(out, h), &ctxReader{ctx: ctx, r: in})
	if err != nil {
		out.Close()
		return "", n, err
	}
	if err := out.Sync(); err != nil {
		out.Close()
		return "", n, err
	}
	if err := out.Close(); err != nil {
		return "", n, err
	}

	_ = fs.Chmod(dst, info.Mode().Perm()|0600)
	_ = fs.Chtimes(dst, info.ModTime(), info.ModTime())

	return hexSum(h), n, nil
}

func hashFile(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hexSum(h), nil
}

func hexSum(h hash.Hash) string {
	return hex.EncodeToString(h.Sum(nil))
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
