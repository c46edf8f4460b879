package document

import (
	"regexp"
	"strings"
)

// Normalizer cleans raw filing text before the views are derived: control
// characters, unicode punctuation, mojibake, and SEC page furniture. Table
// structure (tabs, spacing, line breaks) is never touched here.
type Normalizer struct {
	replacement string
}

// NewNormalizer creates a normalizer. replacement is substituted for control
// characters (tabs, newlines and carriage returns are preserved).
func NewNormalizer(replacement string) *Normalizer {
	return &Normalizer{replacement: replacement}
}

var (
	controlChars   = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	pageMarker     = regexp.MustCompile(`(?i)<PAGE>\s*\d*`)
	tocLine        = regexp.MustCompile(`(?im)^\s*Table\s+of\s+Contents\s*$`)
	barePageNumber = regexp.MustCompile(`(?m)^\s*\d{1,3}\s*$`)
)

// unicodeReplacements maps typographic characters to ASCII equivalents that
// keep column widths stable (em dash becomes a double dash on purpose).
var unicodeReplacements = []struct{ from, to string }{
	{"’", "'"},
	{"‘", "'"},
	{"“", `"`},
	{"”", `"`},
	{"–", "-"},
	{"—", "--"},
	{"…", "..."},
	{"\u00a0", " "}, // non-breaking space
	{"•", "*"},
	{"·", "*"},
	{"−", "-"},
}

// mojibakeFixes repairs the common UTF-8-read-as-Latin-1 sequences seen in
// older EDGAR text files (curly quotes and dashes double-encoded through
// Windows-1252).
var mojibakeFixes = []struct{ from, to string }{
	{"\u00e2\u0080\u0099", "'"},
	{"\u00e2\u0080\u009c", `"`},
	{"\u00e2\u0080\u009d", `"`},
	{"\u00e2\u0080\u0093", "-"},
	{"\u00e2\u0080\u0094", "--"},
	{"\u00c3\u00a2", ""},
	{"\u00c2", ""},
}

// Normalize applies the full cleaning pass.
func (n *Normalizer) Normalize(text string) string {
	if text == "" {
		return ""
	}
	text = pageMarker.ReplaceAllString(text, "")
	text = tocLine.ReplaceAllString(text, "")
	text = barePageNumber.ReplaceAllString(text, "")
	text = controlChars.ReplaceAllString(text, n.replacement)

	for _, r := range unicodeReplacements {
		text = strings.ReplaceAll(text, r.from, r.to)
	}
	for _, f := range mojibakeFixes {
		text = strings.ReplaceAll(text, f.from, f.to)
	}
	return text
}
