package timeline

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
)

// requiredColumns merges the per-table column requirements of branches.
func requiredColumns(branches []Branch) map[string][]string {
	sets := make(map[string]map[string]bool)
	for _, b := range branches {
		for table, cols := range b.Requires {
			if sets[table] == nil {
				sets[table] = make(map[string]bool)
			}
			for _, c := range cols {
				sets[table][c] = true
			}
		}
	}

	out := make(map[string][]string, len(sets))
	for table, set := range sets {
		cols := make([]string, 0, len(set))
		for c := range set {
			cols = append(cols, c)
		}
		sort.Strings(cols)
		out[table] = cols
	}
	return out
}

// tableColumns returns the column names of table, or an empty set when the
// table does not exist.
func tableColumns(ctx context.Context, db *sql.DB, table string) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}

// CheckSchema verifies that every table and column read by branches exists.
// A missing table or column is reported as SchemaMismatch, listing
// everything that is absent.
func CheckSchema(ctx context.Context, db *sql.DB, branches []Branch) error {
	required := requiredColumns(branches)

	tables := make([]string, 0, len(required))
	for t := range required {
		tables = append(tables, t)
	}
	sort.Strings(tables)

	var missing []string
	for _, table := range tables {
		cols, err := tableColumns(ctx, db, table)
		if err != nil {
			return classify("check schema", err)
		}
		if len(cols) == 0 {
			missing = append(missing, "table "+table)
			continue
		}
		for _, c := range required[table] {
			if !cols[strings.ToLower(c)] {
				missing = append(missing, "column "+table+"."+c)
			}
		}
	}

	if len(missing) > 0 {
		return &Error{
			Kind: SchemaMismatch,
			Op:   "check schema",
			Err:  fmt.Errorf("missing %s", strings.Join(missing, ", ")),
		}
	}
	return nil
}
