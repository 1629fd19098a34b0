// Package sink serializes timeline events as CSV, console text or JSON.
package sink

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"github.com/pkg/errors"

	"github.com/runnerr0/browser-timeline/internal/timeline"
)

// Header is the first line of every CSV export.
var Header = [4]string{"timestamp", "event_type", "detail1", "detail2"}

// DefaultSeparator joins fields in console output.
const DefaultSeparator = " | "

// Writer serializes a complete, ordered timeline.
type Writer interface {
	Write(w io.Writer, events []timeline.Event) error
}

// CSVWriter writes every field double-quoted, with embedded quotes doubled
// and null fields rendered as "". The header row is always written.
type CSVWriter struct{}

func (CSVWriter) Write(w io.Writer, events []timeline.Event) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(Header[:], ","))
	bw.WriteByte('\n')
	for _, e := range events {
		writeCSVRecord(bw, e.Fields())
	}
	return errors.Wrap(bw.Flush(), "write csv")
}

func writeCSVRecord(bw *bufio.Writer, fields [4]string) {
	for i, f := range fields {
		if i > 0 {
			bw.WriteByte(',')
		}
		bw.WriteByte('"')
		bw.WriteString(strings.ReplaceAll(f, `"`, `""`))
		bw.WriteByte('"')
	}
	bw.WriteByte('\n')
}

// ConsoleWriter writes one line per event with fields joined by Separator.
// Fields are not escaped.
type ConsoleWriter struct {
	Separator string
}

func (c ConsoleWriter) Write(w io.Writer, events []timeline.Event) error {
	sep := c.Separator
	if sep == "" {
		sep = DefaultSeparator
	}
	bw := bufio.NewWriter(w)
	for _, e := range events {
		f := e.Fields()
		bw.WriteString(strings.Join(f[:], sep))
		bw.WriteByte('\n')
	}
	return errors.Wrap(bw.Flush(), "write console")
}

type jsonEvent struct {
	Timestamp *string `json:"timestamp"`
	RawTime   *int64  `json:"raw_time"`
	EventType string  `json:"event_type"`
	Detail1   *string `json:"detail1"`
	Detail2   *string `json:"detail2"`
}

type jsonOutput struct {
	Count  int         `json:"count"`
	Events []jsonEvent `json:"events"`
}

// JSONWriter writes {"count":N,"events":[...]} indented by two spaces.
// Null fields are kept as JSON null.
type JSONWriter struct{}

func (JSONWriter) Write(w io.Writer, events []timeline.Event) error {
	out := jsonOutput{
		Count:  len(events),
		Events: make([]jsonEvent, len(events)),
	}
	for i, e := range events {
		je := jsonEvent{EventType: string(e.Type)}
		if e.Timestamp.Valid {
			je.Timestamp = &events[i].Timestamp.String
		}
		if e.RawTime.Valid {
			je.RawTime = &events[i].RawTime.Int64
		}
		if e.Detail1.Valid {
			je.Detail1 = &events[i].Detail1.String
		}
		if e.Detail2.Valid {
			je.Detail2 = &events[i].Detail2.String
		}
		out.Events[i] = je
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return errors.Wrap(enc.Encode(out), "write json")
}
