// Package document derives the two working views of a raw filing and bridges
// between them.
//
// The parsing view is aggressively cleaned (tags stripped, entities decoded)
// and used only for pattern search. The preservation view keeps original
// spacing and line breaks, with HTML tables converted to tab-separated rows,
// and is what output is sliced from. Character offsets are never shared
// between the views; the only bridge is line numbers (see reconcile.go).
package document

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var (
	secHeaderBlock = regexp.MustCompile(`(?is)<SEC-HEADER>.*?</SEC-HEADER>`)
	secWrapperTags = regexp.MustCompile(`(?i)</?(?:SEC-DOCUMENT|DOCUMENT|TEXT)[^>]*>`)
	secMetaTags    = regexp.MustCompile(`(?i)<(?:TYPE|SEQUENCE|FILENAME|DESCRIPTION)>[^<\n]*`)

	brTag       = regexp.MustCompile(`(?i)<br\s*/?\s*>`)
	pCloseTag   = regexp.MustCompile(`(?i)</p>`)
	pOpenTag    = regexp.MustCompile(`(?i)<p[^>]*>`)
	trCloseTag  = regexp.MustCompile(`(?i)</tr>`)
	trOpenTag   = regexp.MustCompile(`(?i)<tr[^>]*>`)
	cellClose   = regexp.MustCompile(`(?i)</t[hd]>`)
	cellOpen    = regexp.MustCompile(`(?i)<t[hd][^>]*>`)
	anyTag      = regexp.MustCompile(`<[^>]+>`)
	htmlTable   = regexp.MustCompile(`(?is)<table[^>]*>.*?</table>`)
	nbspEntity  = regexp.MustCompile(`(?i)&nbsp;?`)
	crlf        = regexp.MustCompile(`\r\n?`)
	looksTagged = regexp.MustCompile(`(?i)<(?:html|body|p|div|table|font)[\s>]`)
)

// NewParsingView builds the view used for boundary search: SEC wrapper and
// header markup removed, block tags turned into line breaks, all remaining
// tags stripped, entities decoded.
func NewParsingView(raw string) string {
	text := stripWrapper(raw)
	text = brTag.ReplaceAllString(text, "\n")
	text = pCloseTag.ReplaceAllString(text, "\n")
	text = pOpenTag.ReplaceAllString(text, "\n")
	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = nbspEntity.ReplaceAllString(text, " ")
	return crlf.ReplaceAllString(text, "\n")
}

// NewPreservationView builds the view that output is sliced from. Only the
// document wrapper is removed; HTML tables become tab-separated rows so their
// column structure survives, stray table fragments degrade to tabs/newlines,
// and everything else keeps its original spacing.
func NewPreservationView(raw string) string {
	text := stripWrapper(raw)
	text = convertHTMLTables(text)

	text = brTag.ReplaceAllString(text, "\n")
	text = trCloseTag.ReplaceAllString(text, "\n")
	text = trOpenTag.ReplaceAllString(text, "")
	text = cellClose.ReplaceAllString(text, "\t")
	text = cellOpen.ReplaceAllString(text, "")
	text = anyTag.ReplaceAllString(text, "")
	text = html.UnescapeString(text)
	text = nbspEntity.ReplaceAllString(text, " ")
	return crlf.ReplaceAllString(text, "\n")
}

// Lines splits a view into its ordered line sequence.
func Lines(view string) []string {
	return strings.Split(view, "\n")
}

// stripWrapper removes the SEC submission wrapper: the <SEC-HEADER> block and
// the wrapper/metadata tags themselves. Wrapper content other than the header
// block is kept; deleting everything between <SEC-DOCUMENT> tags would drop
// the filing body.
func stripWrapper(raw string) string {
	text := secHeaderBlock.ReplaceAllString(raw, "")
	text = secMetaTags.ReplaceAllString(text, "")
	return secWrapperTags.ReplaceAllString(text, "")
}

// convertHTMLTables rewrites each well-formed <table> as newline-separated
// rows of tab-separated cells. goquery handles nested markup inside cells;
// tables that fail to parse are left for the fragment-level regex pass.
func convertHTMLTables(text string) string {
	if !looksTagged.MatchString(text) && !htmlTable.MatchString(text) {
		return text
	}
	return htmlTable.ReplaceAllStringFunc(text, func(tableHTML string) string {
		rows := tableToRows(tableHTML)
		if len(rows) == 0 {
			return tableHTML
		}
		return "\n" + strings.Join(rows, "\n") + "\n"
	})
}

// tableToRows parses one HTML table into tab-joined row strings.
func tableToRows(tableHTML string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(tableHTML))
	if err != nil {
		return nil
	}

	var rows []string
	doc.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, cleanCellText(cell.Text()))
		})
		if len(cells) > 0 {
			rows = append(rows, strings.Join(cells, "\t"))
		}
	})
	return rows
}

func cleanCellText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	return strings.TrimSpace(text)
}
