package timeline

import (
	"fmt"
	"time"
)

// webkitEpochOffset is the number of seconds between 1601-01-01 and
// 1970-01-01, both UTC.
const webkitEpochOffset = 11644473600

// CivilLayout matches the output of SQLite's datetime().
const CivilLayout = "2006-01-02 15:04:05"

// civilExpr returns the SQL expression converting a WebKit microsecond
// column to a civil UTC string. Integer division truncates sub-second
// precision the same way FromWebKit does.
func civilExpr(col string) string {
	return fmt.Sprintf("datetime(%s/1000000-%d,'unixepoch')", col, webkitEpochOffset)
}

// FromWebKit converts microseconds since 1601-01-01 UTC to a time.Time,
// truncated to whole seconds.
func FromWebKit(raw int64) time.Time {
	return time.Unix(raw/1000000-webkitEpochOffset, 0).UTC()
}

// ToWebKit is the inverse of FromWebKit for whole-second instants.
func ToWebKit(t time.Time) int64 {
	return (t.Unix() + webkitEpochOffset) * 1000000
}

// FormatCivil renders a WebKit timestamp the way the extraction query does.
func FormatCivil(raw int64) string {
	return FromWebKit(raw).Format(CivilLayout)
}
