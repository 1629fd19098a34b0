package timeline

import (
	"fmt"
	"strings"
)

// BuildQuery composes the extraction query for the given branches: each
// branch is projected onto (raw_time, event_type, detail1, detail2,
// branch_ord, row_key, sub_key), the projections are combined with
// UNION ALL, and the result is ordered by raw time. Ties are broken by
// branch declaration order, then by the branch's own row keys.
func BuildQuery(branches []Branch) (string, error) {
	if len(branches) == 0 {
		return "", fmt.Errorf("build query: no branches")
	}

	parts := make([]string, 0, len(branches))
	for i, b := range branches {
		sel, err := branchSelect(i, b)
		if err != nil {
			return "", err
		}
		parts = append(parts, sel)
	}

	var q strings.Builder
	q.WriteString("SELECT\n  raw_time,\n  ")
	q.WriteString(civilExpr("raw_time"))
	q.WriteString(" AS timestamp,\n  event_type,\n  detail1,\n  detail2\nFROM (\n")
	q.WriteString(strings.Join(parts, "\n\n  UNION ALL\n\n"))
	q.WriteString("\n)\nORDER BY raw_time, branch_ord, row_key, sub_key")
	return q.String(), nil
}

func branchSelect(ord int, b Branch) (string, error) {
	if b.Table == "" || b.Alias == "" || b.Time == "" || b.Detail1 == "" {
		return "", fmt.Errorf("branch %s: table, alias, time and detail1 are required", b.Type)
	}
	if !b.Type.Valid() {
		return "", fmt.Errorf("branch %d: unknown event type %q", ord, b.Type)
	}

	key := b.Key
	if key == "" {
		key = "0"
	}
	subKey := b.SubKey
	if subKey == "" {
		subKey = "0"
	}
	detail2 := b.Detail2
	if detail2 == "" {
		detail2 = "NULL"
	}

	var s strings.Builder
	fmt.Fprintf(&s, "  SELECT\n    %s AS raw_time,\n    '%s' AS event_type,\n    %s AS detail1,\n    %s AS detail2,\n    %d AS branch_ord,\n    %s AS row_key,\n    %s AS sub_key\n",
		b.Time, b.Type, b.Detail1, detail2, ord, key, subKey)
	fmt.Fprintf(&s, "  FROM %s %s", b.Table, b.Alias)

	if b.Join.Kind != NoJoin {
		if b.Join.Table == "" || b.Join.Alias == "" || b.Join.On == "" {
			return "", fmt.Errorf("branch %s: incomplete join", b.Type)
		}
		fmt.Fprintf(&s, "\n  %s %s %s ON %s", b.Join.Kind.keyword(), b.Join.Table, b.Join.Alias, b.Join.On)
	}
	if b.Filter != "" {
		fmt.Fprintf(&s, "\n  WHERE %s", b.Filter)
	}
	return s.String(), nil
}
