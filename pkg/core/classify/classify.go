// Package classify assigns a table/prose classification to individual lines.
//
// Classification is a pure function of a line plus a bounded window of its
// neighbors; it keeps no state between calls, so a single ambiguous line can
// be tested without reconstructing a whole document.
package classify

import (
	"strings"

	"mdna_extract/pkg/core/patterns"
)

// Class is the classification assigned to one line.
type Class int

const (
	Empty Class = iota
	TableDelimiter
	MonetaryData
	TableHeader
	TableContent
	TableContinuation
	PotentialTable
	RegularText
)

func (c Class) String() string {
	switch c {
	case Empty:
		return "empty"
	case TableDelimiter:
		return "table_delimiter"
	case MonetaryData:
		return "monetary_data"
	case TableHeader:
		return "table_header"
	case TableContent:
		return "table_content"
	case TableContinuation:
		return "table_continuation"
	case PotentialTable:
		return "potential_table"
	default:
		return "regular_text"
	}
}

// IsTabular reports whether the class marks a line that must be preserved
// byte-for-byte in output.
func (c Class) IsTabular() bool {
	switch c {
	case TableDelimiter, MonetaryData, TableHeader, TableContent:
		return true
	}
	return false
}

// Classifier evaluates the ordered classification rules against a line.
type Classifier struct {
	lib *patterns.Library
}

// NewClassifier creates a classifier over the given pattern library.
func NewClassifier(lib *patterns.Library) *Classifier {
	return &Classifier{lib: lib}
}

// Classify assigns a class to lines[idx]. The rules are mutually exclusive
// and evaluated in a fixed order; the first match wins. Monetary and columnar
// evidence outranks keyword-only header detection because numeric density is
// the most reliable table signal in financial text.
func (c *Classifier) Classify(line string, lines []string, idx int) Class {
	lib := c.lib
	stripped := strings.TrimSpace(line)

	// 1. Blank line.
	if stripped == "" {
		return Empty
	}

	// 2. Horizontal rule.
	if lib.IsDelimiterLine(line) {
		return TableDelimiter
	}

	// 3. Monetary value with columnar evidence.
	if lib.Monetary.MatchString(line) {
		if lib.SignificantSpaces.MatchString(line) ||
			strings.Contains(line, "\t") ||
			lib.NumericColumns.MatchString(line) {
			return MonetaryData
		}
	}

	// 4. Table header shapes (financial statement phrases, period headers,
	// multi-year headers, keyword + columnar spacing).
	if lib.IsTableHeaderLine(line) {
		return TableHeader
	}

	// 5. Pipe-structured content.
	if strings.Count(line, "|") >= 2 {
		return TableContent
	}

	// 6. Two or more monetary or percentage values anywhere on the line.
	if lib.HasMultipleMonetary(line) {
		return MonetaryData
	}

	// 7. Columnar numeric data whose neighborhood looks tabular. Lets a lone
	// number row inherit the classification of the lines around it.
	if lib.NumericColumns.MatchString(line) && c.hasTableContext(lines, idx) {
		return TableContent
	}

	// 8. Significant whitespace run with a financial keyword.
	if lib.SignificantSpaces.MatchString(line) && lib.FinancialTerms.MatchString(line) {
		return PotentialTable
	}

	// 9. Continuation rows (totals, note markers, footnotes).
	if lib.IsContinuationLine(line) {
		return TableContinuation
	}

	return RegularText
}

// hasTableContext examines up to 3 lines on each side of idx and counts how
// many show independent table evidence. Two or more neighbors qualify the
// window as tabular.
func (c *Classifier) hasTableContext(lines []string, idx int) bool {
	lib := c.lib
	start := idx - 3
	if start < 0 {
		start = 0
	}
	end := idx + 4
	if end > len(lines) {
		end = len(lines)
	}

	indicators := 0
	for i := start; i < end; i++ {
		if i == idx {
			continue
		}
		l := lines[i]
		if lib.Monetary.MatchString(l) ||
			lib.Percentage.MatchString(l) ||
			lib.SignificantSpaces.MatchString(l) ||
			lib.IsTableHeaderLine(l) {
			indicators++
			if indicators >= 2 {
				return true
			}
		}
	}
	return false
}
