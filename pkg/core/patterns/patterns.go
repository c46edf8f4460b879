// Package patterns holds the compiled regular expressions shared by the line
// classifier, the table detector, and the section locator. A Library is built
// once at startup and injected into each component; it keeps no mutable state,
// so a reduced library can be constructed directly in tests.
package patterns

import (
	"regexp"
	"strings"
)

// PatternSet selects which table-detection pattern group a Library carries.
// Basic covers the common text-filing layouts; Extended adds the looser
// SEC-specific header and column shapes.
type PatternSet int

const (
	PatternSetBasic PatternSet = iota
	PatternSetExtended
)

// ParseSet maps a config string to a PatternSet. Unknown values fall back to
// extended, which is the default in production.
func ParseSet(s string) PatternSet {
	if strings.EqualFold(strings.TrimSpace(s), "basic") {
		return PatternSetBasic
	}
	return PatternSetExtended
}

// Library is the immutable set of compiled patterns.
type Library struct {
	Set PatternSet

	// Value-level indicators
	Monetary       *regexp.Regexp // $ amounts, parenthesized negatives allowed
	Percentage     *regexp.Regexp
	NumericColumns *regexp.Regexp // two adjacent numeric columns
	AnyNumber      *regexp.Regexp

	// Structure indicators
	Delimiter         *regexp.Regexp // full line of -, =, _, +
	SignificantSpaces *regexp.Regexp
	Pipes             *regexp.Regexp

	// Header indicators
	Dates        *regexp.Regexp // "December 31, 2023"
	YearHeaders  *regexp.Regexp // three years in a row
	MultiYear    *regexp.Regexp // two years anywhere on the line
	PeriodEnded  *regexp.Regexp // "Year Ended", "Three Months Ended"
	TableHeaders []*regexp.Regexp

	// Keyword groups (lowercase substring matches)
	FinancialTerms      *regexp.Regexp
	ContinuationPhrases []string
	SectionBreaks       []string
	TitleKeywords       []string
	TitleShape          *regexp.Regexp

	// Section boundary markers, keyed by form-type family ("10-K", "10-Q")
	SectionStart  map[string][]*regexp.Regexp
	SectionEnd    map[string][]*regexp.Regexp
	Incorporation []*regexp.Regexp
}

// NewLibrary compiles the full pattern library for the given set.
func NewLibrary(set PatternSet) *Library {
	lib := &Library{
		Set: set,

		Monetary:       regexp.MustCompile(`\$\s*\(?[\d,]+(?:\.\d+)?\)?`),
		Percentage:     regexp.MustCompile(`\d+\.?\d*\s*%`),
		NumericColumns: regexp.MustCompile(`\(?[\d,]+(?:\.\d+)?\)?\s+\(?[\d,]+(?:\.\d+)?\)?`),
		AnyNumber:      regexp.MustCompile(`\d`),

		Delimiter:         regexp.MustCompile(`^[-=_+]{3,}$`),
		SignificantSpaces: regexp.MustCompile(`\s{4,}`),
		Pipes:             regexp.MustCompile(`\|.*\|`),

		Dates: regexp.MustCompile(`(?i)(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2},?\s+\d{4}`),

		YearHeaders: regexp.MustCompile(`\b\d{4}\s+\d{4}\s+\d{4}\b`),
		MultiYear:   regexp.MustCompile(`\b(?:19|20)\d{2}\b.*\b(?:19|20)\d{2}\b`),
		PeriodEnded: regexp.MustCompile(`(?i)\b(?:year|quarter|period|month)s?\s+end(?:ed|ing)?\b`),

		FinancialTerms: regexp.MustCompile(`(?i)\b(?:revenue|income|profit|loss|assets|liabilities|equity|cash|flow|expenses|costs|sales|operating|net|gross|total)\b`),

		ContinuationPhrases: []string{
			"total", "subtotal", "net", "gross", "less:", "add:", "deduct:",
			"continued", "cont.", "see note", "refer to", "as of",
		},
		SectionBreaks: []string{
			"notes to", "see note", "refer to note", "accompanying notes",
			"see accompanying", "end of table", "continued on", "see page",
		},
		TitleKeywords: []string{"table", "statement", "schedule", "summary"},
		TitleShape:    regexp.MustCompile(`^[A-Z][A-Za-z\s]+$`),
	}

	lib.TableHeaders = compileAll([]string{
		`(?i)^\s*(?:year|period|quarter|month)\s+end(?:ed|ing)`,
		`(?i)^\s*(?:for\s+the\s+)?(?:year|quarter|period)\s+ended\s+`,
		`(?i)^\s*(?:three|six|nine|twelve)\s+months?\s+ended`,
		`(?i)^\s*(?:december|june|march|september)\s+\d{1,2},?\s+20\d{2}`,
		`(?i)^\s*\$?\s*\(?(?:in\s+)?(?:thousands|millions|billions)`,
		`(?i)^\s*statements?\s+of\s+(?:operations|cash\s+flows|income)`,
		`(?i)^\s*(?:consolidated\s+)?(?:balance\s+sheets?|income\s+statement|cash\s+flows?)`,
		`(?i)^\s*(?:unaudited|audited)\s+financial\s+statements?`,
	})
	if set == PatternSetExtended {
		lib.TableHeaders = append(lib.TableHeaders, compileAll([]string{
			`(?i)^\s*(?:fiscal\s+)?(?:year|quarter)\s+\d{4}`,
			`(?i)^\s*(?:total|net|gross|operating)\s+(?:income|loss|profit)`,
			`(?i)^\s*stockholders?['\x60]?\s+equity`,
			`^\s*\d{4}\s+\d{4}`,
		})...)
	}

	// Section start markers: punctuation and spacing variants of the MD&A
	// label. 10-K filings carry it as Item 7, 10-Q filings as Item 2.
	lib.SectionStart = map[string][]*regexp.Regexp{
		"10-K": compileAll([]string{
			`(?i)(?:^|\n)\s*ITEM\s*7\.?\s*[\-:]?\s*MANAGEMENT['\x60]?S?\s*DISCUSSION\s*(?:AND|&)\s*ANALYSIS`,
			`(?i)(?:^|\n)\s*ITEM\s*7[\-:.\s]+MD\s*&?\s*A`,
			`(?i)(?:^|\n)\s*MANAGEMENT['\x60]?S?\s*DISCUSSION\s*(?:AND|&)\s*ANALYSIS\s*OF\s*FINANCIAL\s*CONDITION`,
		}),
		"10-Q": compileAll([]string{
			`(?i)(?:^|\n)\s*ITEM\s*2\.?\s*[\-:]?\s*MANAGEMENT['\x60]?S?\s*DISCUSSION\s*(?:AND|&)\s*ANALYSIS`,
			`(?i)(?:^|\n)\s*ITEM\s*2[\-:.\s]+MD\s*&?\s*A`,
			`(?i)(?:^|\n)\s*MANAGEMENT['\x60]?S?\s*DISCUSSION\s*(?:AND|&)\s*ANALYSIS\s*OF\s*FINANCIAL\s*CONDITION`,
		}),
	}
	lib.SectionEnd = map[string][]*regexp.Regexp{
		"10-K": compileAll([]string{
			`(?i)(?:^|\n)\s*ITEM\s*7A\.?\s*[\-:]?\s*(?:QUANTITATIVE|QUALITATIVE)`,
			`(?i)(?:^|\n)\s*ITEM\s*8\.?\s*[\-:]?\s*(?:FINANCIAL\s*STATEMENTS|CONSOLIDATED)`,
			`(?i)(?:^|\n)\s*ITEM\s*9\.?\s*[\-:]?\s*CHANGES\s*IN`,
		}),
		"10-Q": compileAll([]string{
			`(?i)(?:^|\n)\s*ITEM\s*3\.?\s*[\-:]?\s*(?:QUANTITATIVE|QUALITATIVE)`,
			`(?i)(?:^|\n)\s*ITEM\s*4\.?\s*[\-:]?\s*CONTROLS\s*AND\s*PROCEDURES`,
			`(?i)(?:^|\n)\s*PART\s*II\b`,
		}),
	}
	lib.Incorporation = compileAll([]string{
		`(?i)incorporated\s+(?:herein\s+)?by\s+reference\s+(?:to|from|in)?\s*(?:the\s+)?((?:Exhibit|Appendix)\s+[\dA-Z.\-]+)`,
		`(?i)incorporated\s+(?:herein\s+)?by\s+reference\s+(?:to|from|in)?\s*(?:the\s+)?((?:Annual|Quarterly|Proxy)\s+(?:Report|Statement)[^\n.]{0,80})`,
		`(?i)incorporated\s+(?:herein\s+)?by\s+reference`,
	})

	return lib
}

func compileAll(exprs []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, regexp.MustCompile(e))
	}
	return out
}

// =============================================================================
// SHARED LINE PREDICATES
// The classifier and detector both need these; keeping them on the Library
// avoids the drift that comes from per-component copies.
// =============================================================================

// IsDelimiterLine reports whether the line is a horizontal rule: nothing but
// runs of -, =, _ or + (spaces allowed), at least 3 characters long.
func (lib *Library) IsDelimiterLine(line string) bool {
	stripped := strings.TrimSpace(line)
	if len(stripped) < 3 {
		return false
	}
	return lib.Delimiter.MatchString(strings.ReplaceAll(stripped, " ", ""))
}

// HasColumnarStructure reports whether the line splits into at least two
// segments on tabs or runs of 4+ spaces.
func (lib *Library) HasColumnarStructure(line string) bool {
	if strings.Contains(line, "\t") {
		if countNonEmpty(strings.Split(line, "\t")) >= 2 {
			return true
		}
	}
	if lib.SignificantSpaces.MatchString(line) {
		if countNonEmpty(lib.SignificantSpaces.Split(strings.TrimSpace(line), -1)) >= 2 {
			return true
		}
	}
	return false
}

// HasMultipleMonetary reports whether the line carries at least two monetary
// values or at least two percentages.
func (lib *Library) HasMultipleMonetary(line string) bool {
	if len(lib.Monetary.FindAllString(line, 3)) >= 2 {
		return true
	}
	return len(lib.Percentage.FindAllString(line, 3)) >= 2
}

// IsTableHeaderLine checks the line against the header pattern group, then
// against the date/year header shapes, and finally against financial keywords
// combined with columnar spacing.
func (lib *Library) IsTableHeaderLine(line string) bool {
	for _, re := range lib.TableHeaders {
		if re.MatchString(line) {
			return true
		}
	}
	if lib.Dates.MatchString(line) || lib.YearHeaders.MatchString(line) {
		return true
	}
	if lib.PeriodEnded.MatchString(line) {
		return true
	}
	if lib.MultiYear.MatchString(line) {
		return true
	}
	if lib.FinancialTerms.MatchString(line) && lib.SignificantSpaces.MatchString(line) {
		return true
	}
	return false
}

// IsFinancialDataLine reports whether the line looks like a table data row:
// a monetary value, a percentage, a parenthesized negative, or spread-out
// numeric columns.
func (lib *Library) IsFinancialDataLine(line string) bool {
	if lib.Monetary.MatchString(line) || lib.Percentage.MatchString(line) {
		return true
	}
	if parenNegative.MatchString(line) {
		return true
	}
	nums := bareNumber.FindAllStringIndex(line, -1)
	if len(nums) >= 2 {
		// Numbers count as columns only when spread across the line.
		return nums[len(nums)-1][0]-nums[0][0] > 20
	}
	return false
}

// IsContinuationLine matches total/subtotal rows, note markers like "(a)",
// and footnote asterisks that belong to a table above them.
func (lib *Library) IsContinuationLine(line string) bool {
	lower := strings.ToLower(line)
	for _, phrase := range lib.ContinuationPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	trimmed := strings.TrimLeft(line, " \t")
	if noteMarker.MatchString(strings.ToLower(trimmed)) {
		return true
	}
	return strings.HasPrefix(trimmed, "*")
}

var (
	parenNegative = regexp.MustCompile(`\(\s*[\d,]+(?:\.\d+)?\s*\)`)
	bareNumber    = regexp.MustCompile(`\b[\d,]+(?:\.\d+)?\b`)
	noteMarker    = regexp.MustCompile(`^\([0-9a-z]\)`)
)

// IsSectionBreak reports whether the line carries one of the phrases that end
// a table region ("notes to", "end of table", ...).
func (lib *Library) IsSectionBreak(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, phrase := range lib.SectionBreaks {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

func countNonEmpty(segments []string) int {
	n := 0
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
