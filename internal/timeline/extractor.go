package timeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/mattn/go-sqlite3"
)

// Extractor runs the timeline query against one History database.
type Extractor struct {
	db       *sql.DB
	path     string
	branches []Branch
	query    string
}

// Open opens the database at path for querying only, verifies that it is
// a SQLite file containing the tables and columns branches read, and
// prepares the extraction query. The caller must Close the Extractor.
func Open(ctx context.Context, path string, branches []Branch) (*Extractor, error) {
	query, err := BuildQuery(branches)
	if err != nil {
		return nil, err
	}

	dsn, err := queryOnlyDSN(path)
	if err != nil {
		return nil, &Error{Kind: CorruptSource, Op: "open database", Path: path, Err: err}
	}
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, &Error{Kind: CorruptSource, Op: "open database", Path: path, Err: err}
	}
	db.SetMaxOpenConns(1)

	x := &Extractor{db: db, path: path, branches: branches, query: query}
	if err := x.probe(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if err := CheckSchema(ctx, db, branches); err != nil {
		db.Close()
		return nil, withPath(err, path)
	}
	return x, nil
}

// probe forces SQLite to read the file header. Opening a non-database file
// succeeds; the first read is what fails.
func (x *Extractor) probe(ctx context.Context) error {
	var n int
	err := x.db.QueryRowContext(ctx, "SELECT count(*) FROM sqlite_master").Scan(&n)
	if err != nil {
		return withPath(classify("read database header", err), x.path)
	}
	return nil
}

// Extract runs the query and returns every event ordered by raw time.
// The result is never nil.
func (x *Extractor) Extract(ctx context.Context) ([]Event, error) {
	rows, err := x.db.QueryContext(ctx, x.query)
	if err != nil {
		return nil, withPath(classify("query timeline", err), x.path)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var eventType string
		if err := rows.Scan(&e.RawTime, &e.Timestamp, &eventType, &e.Detail1, &e.Detail2); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.Type = EventType(eventType)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, withPath(classify("read timeline", err), x.path)
	}

	return events, nil
}

// Query returns the SQL the extractor runs.
func (x *Extractor) Query() string {
	return x.query
}

// Close releases the database handle.
func (x *Extractor) Close() error {
	return x.db.Close()
}

// ExtractFile opens path, extracts the timeline for branches and closes
// the database.
func ExtractFile(ctx context.Context, path string, branches []Branch) ([]Event, error) {
	x, err := Open(ctx, path, branches)
	if err != nil {
		return nil, err
	}
	defer x.Close()

	return x.Extract(ctx)
}

// classify maps low-level SQLite failures onto error kinds. Errors that do
// not fit a kind are wrapped with op as context.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}

	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code {
		case sqlite3.ErrNotADB, sqlite3.ErrCorrupt:
			return &Error{Kind: CorruptSource, Op: op, Err: err}
		}
	}

	msg := err.Error()
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column") {
		return &Error{Kind: SchemaMismatch, Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// queryOnlyDSN builds a file: URI for path so that characters such as '?'
// and '#' in the directory name stay part of the path.
func queryOnlyDSN(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p, RawQuery: "_query_only=true"}
	return u.String(), nil
}

func withPath(err error, path string) error {
	var e *Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}
