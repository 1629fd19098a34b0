package timeline

import (
	"database/sql"
	"fmt"
	"strings"
)

// EventType is the closed set of timeline event kinds.
type EventType string

const (
	Browsing      EventType = "BROWSING"
	Visit         EventType = "VISIT"
	DownloadStart EventType = "DOWNLOAD_START"
	DownloadEnd   EventType = "DOWNLOAD_END"
)

// EventTypes lists every event type in branch declaration order.
var EventTypes = []EventType{Browsing, Visit, DownloadStart, DownloadEnd}

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	for _, known := range EventTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ParseEventType accepts an event type name in any case.
func ParseEventType(s string) (EventType, error) {
	t := EventType(strings.ToUpper(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown event type %q", s)
	}
	return t, nil
}

// Event is one normalized timeline row.
//
// RawTime is the WebKit timestamp the row was ordered by. Timestamp is the
// UTC civil rendering of it; both are null when the source column was null.
// Detail1 holds a URL or download target path, Detail2 a page title or the
// originating URL of a download.
type Event struct {
	RawTime   sql.NullInt64
	Timestamp sql.NullString
	Type      EventType
	Detail1   sql.NullString
	Detail2   sql.NullString
}

// Fields returns the four output columns with nulls rendered as "".
func (e Event) Fields() [4]string {
	return [4]string{
		e.Timestamp.String,
		string(e.Type),
		e.Detail1.String,
		e.Detail2.String,
	}
}

// Summary holds aggregate counts over an extracted timeline.
type Summary struct {
	Total  int
	ByType map[EventType]int
	First  sql.NullInt64
	Last   sql.NullInt64
}

// Summarize counts events per type and records the smallest and largest
// non-null raw times.
func Summarize(events []Event) Summary {
	s := Summary{Total: len(events), ByType: make(map[EventType]int, len(EventTypes))}
	for _, e := range events {
		s.ByType[e.Type]++
		if !e.RawTime.Valid {
			continue
		}
		if !s.First.Valid || e.RawTime.Int64 < s.First.Int64 {
			s.First = e.RawTime
		}
		if !s.Last.Valid || e.RawTime.Int64 > s.Last.Int64 {
			s.Last = e.RawTime
		}
	}
	return s
}
