// Package historytest builds Chrome-shaped History databases for tests.
package historytest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// Schema is the subset of the Chromium History schema the timeline reads,
// plus a few neighbouring columns so fixtures look like the real thing.
var Schema = []string{
	`CREATE TABLE urls (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		url             LONGVARCHAR,
		title           LONGVARCHAR,
		visit_count     INTEGER DEFAULT 0 NOT NULL,
		typed_count     INTEGER DEFAULT 0 NOT NULL,
		last_visit_time INTEGER NOT NULL,
		hidden          INTEGER DEFAULT 0 NOT NULL
	)`,
	`CREATE TABLE visits (
		id         INTEGER PRIMARY KEY,
		url        INTEGER NOT NULL,
		visit_time INTEGER NOT NULL,
		from_visit INTEGER,
		transition INTEGER DEFAULT 0 NOT NULL
	)`,
	`CREATE TABLE downloads (
		id             INTEGER PRIMARY KEY,
		guid           VARCHAR NOT NULL DEFAULT '',
		current_path   LONGVARCHAR NOT NULL DEFAULT '',
		target_path    LONGVARCHAR NOT NULL DEFAULT '',
		start_time     INTEGER NOT NULL,
		received_bytes INTEGER NOT NULL DEFAULT 0,
		total_bytes    INTEGER NOT NULL DEFAULT 0,
		state          INTEGER NOT NULL DEFAULT 0,
		end_time       INTEGER
	)`,
	`CREATE TABLE downloads_url_chains (
		id          INTEGER NOT NULL,
		chain_index INTEGER NOT NULL,
		url         LONGVARCHAR NOT NULL,
		PRIMARY KEY (id, chain_index)
	)`,
}

// URL is a row of the urls table.
type URL struct {
	ID            int64
	URL           string
	Title         sql.NullString
	LastVisitTime int64
}

// Visit is a row of the visits table.
type Visit struct {
	ID        int64
	URLID     int64
	VisitTime int64
}

// Download is a row of the downloads table.
type Download struct {
	ID         int64
	TargetPath string
	StartTime  int64
	EndTime    sql.NullInt64
}

// Chain is a row of the downloads_url_chains table.
type Chain struct {
	ID         int64
	ChainIndex int64
	URL        string
}

// Fixture is the content of a test History database.
type Fixture struct {
	URLs      []URL
	Visits    []Visit
	Downloads []Download
	Chains    []Chain
}

// Title wraps s as a non-null title.
func Title(s string) sql.NullString {
	return sql.NullString{String: s, Valid: true}
}

// End wraps t as a recorded download end time.
func End(t int64) sql.NullInt64 {
	return sql.NullInt64{Int64: t, Valid: true}
}

// Create writes a History database with the given content at path.
func Create(t *testing.T, path string, f Fixture) {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range Schema {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
	Insert(t, db, f)
}

// Insert adds the fixture rows to an already created History database.
func Insert(t *testing.T, db *sql.DB, f Fixture) {
	t.Helper()
	for _, u := range f.URLs {
		_, err := db.Exec(
			"INSERT INTO urls (id, url, title, last_visit_time) VALUES (?, ?, ?, ?)",
			u.ID, u.URL, u.Title, u.LastVisitTime,
		)
		require.NoError(t, err)
	}
	for _, v := range f.Visits {
		_, err := db.Exec(
			"INSERT INTO visits (id, url, visit_time) VALUES (?, ?, ?)",
			v.ID, v.URLID, v.VisitTime,
		)
		require.NoError(t, err)
	}
	for _, d := range f.Downloads {
		_, err := db.Exec(
			"INSERT INTO downloads (id, target_path, start_time, end_time) VALUES (?, ?, ?, ?)",
			d.ID, d.TargetPath, d.StartTime, d.EndTime,
		)
		require.NoError(t, err)
	}
	for _, c := range f.Chains {
		_, err := db.Exec(
			"INSERT INTO downloads_url_chains (id, chain_index, url) VALUES (?, ?, ?)",
			c.ID, c.ChainIndex, c.URL,
		)
		require.NoError(t, err)
	}
}

// NewHistory creates a History database in a fresh temp directory and
// returns its path.
func NewHistory(t *testing.T, f Fixture) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "History")
	Create(t, path, f)
	return path
}

// Sample is a small history covering every branch, including a download
// without a URL chain and one that never finished.
func Sample() Fixture {
	return Fixture{
		URLs: []URL{
			{ID: 1, URL: "https://example.com/", Title: Title("Example Domain"), LastVisitTime: 13310862245000000},
			{ID: 2, URL: "https://go.dev/doc/", Title: Title(`The "Go" docs`), LastVisitTime: 13310862300000000},
			{ID: 3, URL: "https://never.example/", Title: Title("Never"), LastVisitTime: 0},
		},
		Visits: []Visit{
			{ID: 10, URLID: 1, VisitTime: 13310862245000000},
			{ID: 11, URLID: 2, VisitTime: 13310862300000000},
			{ID: 12, URLID: 99, VisitTime: 13310862400000000},
		},
		Downloads: []Download{
			{ID: 1, TargetPath: `C:\Users\u\Downloads\tool.zip`, StartTime: 13310862250000000, EndTime: End(13310862260000000)},
			{ID: 2, TargetPath: "/home/u/Downloads/partial.iso", StartTime: 13310862500000000},
		},
		Chains: []Chain{
			{ID: 1, ChainIndex: 0, URL: "https://example.com/tool.zip"},
		},
	}
}
