package timeline

// JoinKind selects how a branch's source table is joined to its lookup table.
type JoinKind int

const (
	NoJoin JoinKind = iota
	InnerJoin
	LeftJoin
)

func (k JoinKind) keyword() string {
	switch k {
	case InnerJoin:
		return "JOIN"
	case LeftJoin:
		return "LEFT JOIN"
	default:
		return ""
	}
}

// Join describes the optional lookup table of a branch.
type Join struct {
	Kind  JoinKind
	Table string
	Alias string
	On    string
}

// Branch is one event source of the timeline: a table, an optional join,
// a filter and the expressions that project it onto the common row shape.
//
// All expressions are SQL fragments qualified by the aliases declared in
// the branch. Key and SubKey give rows inside a branch a stable order when
// raw times tie; SubKey may be empty.
type Branch struct {
	Type    EventType
	Table   string
	Alias   string
	Join    Join
	Time    string
	Filter  string
	Detail1 string
	Detail2 string
	Key     string
	SubKey  string

	// Requires lists, per table, the columns the branch reads.
	Requires map[string][]string
}

// DefaultBranches returns the four History branches in declaration order.
// Declaration order is also the tie-break order for equal raw times.
//
// VISIT and DOWNLOAD_START carry no filter on their time column; visits
// and downloads are assumed to always be timestamped.
func DefaultBranches() []Branch {
	return []Branch{
		{
			Type:    Browsing,
			Table:   "urls",
			Alias:   "u",
			Time:    "u.last_visit_time",
			Filter:  "u.last_visit_time > 0",
			Detail1: "u.url",
			Detail2: "u.title",
			Key:     "u.id",
			Requires: map[string][]string{
				"urls": {"id", "url", "title", "last_visit_time"},
			},
		},
		{
			Type:  Visit,
			Table: "visits",
			Alias: "v",
			Join: Join{
				Kind:  InnerJoin,
				Table: "urls",
				Alias: "u",
				On:    "v.url = u.id",
			},
			Time:    "v.visit_time",
			Detail1: "u.url",
			Detail2: "u.title",
			Key:     "v.id",
			Requires: map[string][]string{
				"visits": {"id", "url", "visit_time"},
				"urls":   {"id", "url", "title"},
			},
		},
		{
			Type:  DownloadStart,
			Table: "downloads",
			Alias: "d",
			Join: Join{
				Kind:  LeftJoin,
				Table: "downloads_url_chains",
				Alias: "c",
				On:    "d.id = c.id",
			},
			Time:    "d.start_time",
			Detail1: "d.target_path",
			Detail2: "c.url",
			Key:     "d.id",
			SubKey:  "c.chain_index",
			Requires: map[string][]string{
				"downloads":            {"id", "target_path", "start_time"},
				"downloads_url_chains": {"id", "chain_index", "url"},
			},
		},
		{
			Type:  DownloadEnd,
			Table: "downloads",
			Alias: "d",
			Join: Join{
				Kind:  LeftJoin,
				Table: "downloads_url_chains",
				Alias: "c",
				On:    "d.id = c.id",
			},
			Time:    "d.end_time",
			Filter:  "d.end_time IS NOT NULL",
			Detail1: "d.target_path",
			Detail2: "c.url",
			Key:     "d.id",
			SubKey:  "c.chain_index",
			Requires: map[string][]string{
				"downloads":            {"id", "target_path", "end_time"},
				"downloads_url_chains": {"id", "chain_index", "url"},
			},
		},
	}
}

// SelectBranches keeps the branches whose type is in types, preserving
// declaration order. An empty types list keeps every branch.
func SelectBranches(branches []Branch, types []EventType) []Branch {
	if len(types) == 0 {
		return branches
	}
	want := make(map[EventType]bool, len(types))
	for _, t := range types {
		want[t] = true
	}
	var out []Branch
	for _, b := range branches {
		if want[b.Type] {
			out = append(out, b)
		}
	}
	return out
}
