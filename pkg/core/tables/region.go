// Package tables detects contiguous table regions in plain-text filings and
// fences them so their original column alignment survives output untouched.
//
// Detection runs four independent strategies (financial-header anchored,
// delimiter anchored, pipe anchored, monetary-density anchored) over the line
// sequence; overlapping candidates are resolved by confidence. The same
// detector serves both the whole-document pass and the assembly-time fencing
// pass, so the two passes cannot disagree about where a table starts.
package tables

import "strings"

// Region is one detected table: a contiguous line range plus the verbatim
// lines it covers. Regions are never mutated after creation.
type Region struct {
	StartLine   int      `json:"start_line"`
	EndLine     int      `json:"end_line"`
	Title       string   `json:"title,omitempty"`
	Type        string   `json:"table_type"` // financial, delimited, aligned, mixed
	Confidence  float64  `json:"confidence"`
	Lines       []string `json:"-"`
	RowCount    int      `json:"row_count"`
	ColumnCount int      `json:"column_count"`
	HasMonetary bool     `json:"has_monetary_data"`
	HasPercent  bool     `json:"has_percentage_data"`
}

// OriginalText returns the verbatim span the region covers.
func (r Region) OriginalText() string {
	return strings.Join(r.Lines, "\n")
}

// Overlaps reports whether two regions share any line index
// (closed-interval intersection).
func (r Region) Overlaps(other Region) bool {
	return r.StartLine <= other.EndLine && r.EndLine >= other.StartLine
}

// Contains reports whether the line index falls inside the region.
func (r Region) Contains(line int) bool {
	return line >= r.StartLine && line <= r.EndLine
}
