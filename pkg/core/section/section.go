// Package section locates the MD&A section inside the parsing view of a
// filing: start/end character offsets, incorporation-by-reference
// placeholders, and non-fatal boundary validation.
package section

import (
	"regexp"
	"strings"

	"mdna_extract/pkg/core/patterns"
)

// Bounds is a half-open character-offset range into the parsing view.
// Offsets found here are not valid in the preservation view; they must be
// mapped through line numbers first.
type Bounds struct {
	Start int `json:"start_offset"`
	End   int `json:"end_offset"`
}

// IncorporationRef describes an MD&A section whose content is declared to
// live in another document.
type IncorporationRef struct {
	DocumentType string `json:"document_type"`
	Locator      string `json:"locator"`
}

// Validation carries the word count and any non-fatal warnings for located
// bounds. Warnings never reject an extraction.
type Validation struct {
	WordCount int      `json:"word_count"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Sections shorter than this many words draw a warning.
const shortSectionWords = 250

// Locator finds section boundaries using the library's marker families.
type Locator struct {
	lib *patterns.Library
}

// NewLocator creates a locator over the given pattern library.
func NewLocator(lib *patterns.Library) *Locator {
	return &Locator{lib: lib}
}

// FindSection searches the parsing-view text for the MD&A start marker family
// of the given form type, then forward for the next top-level section marker
// (or end of document) to establish the end offset. When the label appears
// more than once, the last occurrence wins: earlier hits are almost always
// the table of contents.
func (l *Locator) FindSection(text, formType string) (Bounds, bool) {
	starts := l.lib.SectionStart[markerFamily(formType)]
	start := -1
	for _, re := range starts {
		for _, m := range re.FindAllStringIndex(text, -1) {
			if m[0] > start {
				start = m[0]
			}
		}
	}
	if start < 0 {
		return Bounds{}, false
	}

	end := len(text)
	searchFrom := start + 1
	for _, re := range l.lib.SectionEnd[markerFamily(formType)] {
		if m := re.FindStringIndex(text[searchFrom:]); m != nil {
			if candidate := searchFrom + m[0]; candidate < end {
				end = candidate
			}
		}
	}
	return Bounds{Start: start, End: end}, true
}

// CheckIncorporation probes the text for an incorporated-by-reference phrase
// and returns a structured reference when found. The caller hands the
// reference to the external resolver; the locator never fetches anything.
func (l *Locator) CheckIncorporation(text string) (*IncorporationRef, bool) {
	for _, re := range l.lib.Incorporation {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		ref := &IncorporationRef{DocumentType: "Annual Report"}
		if len(m) > 1 && strings.TrimSpace(m[1]) != "" {
			ref.DocumentType = strings.TrimSpace(m[1])
		}
		loc := re.FindStringIndex(text)
		ref.Locator = snippet(text, loc[0], loc[1])
		return ref, true
	}
	return nil, false
}

// Validate computes the word count for the located bounds and collects
// non-fatal warnings: suspiciously short sections and boundary markers that
// do not match the declared form type.
func (l *Locator) Validate(text string, b Bounds, formType string) Validation {
	body := slice(text, b)
	v := Validation{WordCount: len(strings.Fields(body))}

	if v.WordCount < shortSectionWords {
		v.Warnings = append(v.Warnings, "section is suspiciously short")
	}

	family := markerFamily(formType)
	other := "10-Q"
	if family == "10-Q" {
		other = "10-K"
	}
	head := body
	if len(head) > 200 {
		head = head[:200]
	}
	for _, re := range l.lib.SectionStart[other] {
		if re.MatchString("\n" + head) {
			// The same MD&A phrase matches both families; only the item
			// number distinguishes them.
			if itemNumberMismatch(head, family) {
				v.Warnings = append(v.Warnings, "boundary markers inconsistent with form type "+formType)
			}
			break
		}
	}
	return v
}

var (
	subsectionShape = regexp.MustCompile(`^(?:[A-Z][A-Za-z,'&\-]*)(?:\s+(?:of|and|the|in|to|for|[A-Z][A-Za-z,'&\-]*))*\s*:?$`)
	crossRefShape   = regexp.MustCompile(`(?i)\b(?:see|refer\s+to)\s+((?:Item|Note|Exhibit|Part)\s+[\dA-Z]+(?:\.[\d]+)?)`)
	itemNumber      = regexp.MustCompile(`(?i)item\s*(\d+)`)
)

// ExtractSubsections returns the heading-like lines inside the section text:
// short capitalized phrases on their own line, in document order.
func (l *Locator) ExtractSubsections(sectionText string) []string {
	var subs []string
	for _, raw := range strings.Split(sectionText, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || len(line) > 80 {
			continue
		}
		if l.lib.IsFinancialDataLine(line) || l.lib.IsDelimiterLine(line) {
			continue
		}
		words := strings.Fields(line)
		if len(words) < 2 || len(words) > 10 {
			continue
		}
		if subsectionShape.MatchString(line) {
			subs = append(subs, strings.TrimSuffix(line, ":"))
		}
	}
	return subs
}

// FindCrossReferences collects "see Item 8" / "refer to Note 12" style
// references, deduplicated, in order of first appearance.
func (l *Locator) FindCrossReferences(sectionText string) []string {
	seen := make(map[string]bool)
	var refs []string
	for _, m := range crossRefShape.FindAllStringSubmatch(sectionText, -1) {
		ref := normalizeRef(m[1])
		if !seen[ref] {
			seen[ref] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// markerFamily buckets form types into the two marker families. Amendments
// (10-K/A) use the parent form's markers.
func markerFamily(formType string) string {
	if strings.HasPrefix(strings.ToUpper(formType), "10-Q") {
		return "10-Q"
	}
	return "10-K"
}

func itemNumberMismatch(head, family string) bool {
	m := itemNumber.FindStringSubmatch(head)
	if m == nil {
		return false
	}
	if family == "10-Q" {
		return m[1] != "2"
	}
	return m[1] != "7"
}

func normalizeRef(ref string) string {
	return strings.Join(strings.Fields(ref), " ")
}

func snippet(text string, start, end int) string {
	if end-start < 120 && end < len(text) {
		end = min(len(text), start+120)
	}
	return strings.Join(strings.Fields(text[start:end]), " ")
}

func slice(text string, b Bounds) string {
	if b.Start < 0 || b.Start > len(text) {
		return ""
	}
	end := b.End
	if end > len(text) {
		end = len(text)
	}
	if end < b.Start {
		end = b.Start
	}
	return text[b.Start:end]
}
