package sink

import (
	"bytes"
	"database/sql"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/browser-timeline/internal/timeline"
)

func str(s string) sql.NullString { return sql.NullString{String: s, Valid: true} }

func sampleEvents() []timeline.Event {
	return []timeline.Event{
		{
			RawTime:   sql.NullInt64{Int64: 13310862245000000, Valid: true},
			Timestamp: str("2022-10-21 21:44:05"),
			Type:      timeline.Browsing,
			Detail1:   str("https://example.com/"),
			Detail2:   str(`Say "hi"`),
		},
		{
			RawTime:   sql.NullInt64{Int64: 13310862250000000, Valid: true},
			Timestamp: str("2022-10-21 21:44:10"),
			Type:      timeline.DownloadStart,
			Detail1:   str("/tmp/a|b.zip"),
		},
	}
}

// --- CSV ---

func TestCSVWriter_QuotesAndEscapes(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, sampleEvents()))

	want := "timestamp,event_type,detail1,detail2\n" +
		`"2022-10-21 21:44:05","BROWSING","https://example.com/","Say ""hi"""` + "\n" +
		`"2022-10-21 21:44:10","DOWNLOAD_START","/tmp/a|b.zip",""` + "\n"
	assert.Equal(t, want, buf.String())
}

func TestCSVWriter_HeaderOnlyForNoEvents(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&buf, nil))
	assert.Equal(t, "timestamp,event_type,detail1,detail2\n", buf.String())
}

func TestCSVWriter_EmptyAndNullAreEquivalent(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&a, []timeline.Event{{Type: timeline.Visit, Detail2: str("")}}))
	require.NoError(t, CSVWriter{}.Write(&b, []timeline.Event{{Type: timeline.Visit}}))
	assert.Equal(t, a.String(), b.String())
	assert.Contains(t, a.String(), `"","VISIT","",""`)
}

// --- Console ---

func TestConsoleWriter_PipeDelimited(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ConsoleWriter{}.Write(&buf, sampleEvents()))

	want := `2022-10-21 21:44:05 | BROWSING | https://example.com/ | Say "hi"` + "\n" +
		"2022-10-21 21:44:10 | DOWNLOAD_START | /tmp/a|b.zip | \n"
	assert.Equal(t, want, buf.String())
}

func TestConsoleWriter_CustomSeparator(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ConsoleWriter{Separator: "\t"}.Write(&buf, sampleEvents()[:1]))
	assert.Equal(t, "2022-10-21 21:44:05\tBROWSING\thttps://example.com/\tSay \"hi\"\n", buf.String())
}

// --- JSON ---

func TestJSONWriter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, JSONWriter{}.Write(&buf, sampleEvents()))

	out := buf.String()
	assert.Contains(t, out, `"count": 2`)
	assert.Contains(t, out, `"event_type": "DOWNLOAD_START"`)
	assert.Contains(t, out, `"detail2": null`)
	assert.Contains(t, out, `"raw_time": 13310862245000000`)
	assert.Contains(t, out, `"detail1": "/tmp/a|b.zip"`)
}

// --- Files ---

func TestWriteFile_OverwritesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeline.csv")
	require.NoError(t, os.WriteFile(path, []byte("stale content that is longer than the new one ..........................................................................................................................................................."), 0644))

	require.NoError(t, WriteFile(nil, path, CSVWriter{}, sampleEvents()))

	var want bytes.Buffer
	require.NoError(t, CSVWriter{}.Write(&want, sampleEvents()))
	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, want.String(), string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary output must not be left behind")
	assert.Equal(t, "timeline.csv", entries[0].Name())
}

func TestWriteFile_KeepsUnrelatedPartialFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "timeline.csv")
	bystander := path + ".partial"
	require.NoError(t, os.WriteFile(bystander, []byte("case notes"), 0644))

	require.NoError(t, WriteFile(nil, path, CSVWriter{}, sampleEvents()))

	data, err := os.ReadFile(bystander)
	require.NoError(t, err)
	assert.Equal(t, "case notes", string(data))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0644), info.Mode().Perm())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestWriteFile_UnwritableDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing-dir", "timeline.csv")

	err := WriteFile(nil, path, CSVWriter{}, sampleEvents())
	require.Error(t, err)
	assert.Equal(t, timeline.WriteFailure, timeline.KindOf(err))
}

type failingWriter struct{}

func (failingWriter) Write(_ io.Writer, _ []timeline.Event) error {
	return errors.New("disk full")
}

func TestWriteFile_FailureLeavesExistingFileAlone(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/out", 0755))
	require.NoError(t, afero.WriteFile(fs, "/out/timeline.csv", []byte("previous"), 0644))

	err := WriteFile(fs, "/out/timeline.csv", failingWriter{}, sampleEvents())
	require.Error(t, err)
	assert.Equal(t, timeline.WriteFailure, timeline.KindOf(err))
	assert.Contains(t, err.Error(), "disk full")

	data, err := afero.ReadFile(fs, "/out/timeline.csv")
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := afero.ReadDir(fs, "/out")
	require.NoError(t, err)
	require.Len(t, entries, 1, "temporary output must be removed")
	assert.Equal(t, "timeline.csv", entries[0].Name())
}

func TestWriteFile_MemFs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, WriteFile(fs, "/out.json", JSONWriter{}, nil))

	data, err := afero.ReadFile(fs, "/out.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), `"count": 0`)
	assert.Contains(t, string(data), `"events": []`)
}
