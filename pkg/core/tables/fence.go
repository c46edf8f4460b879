package tables

import (
	"strings"

	"mdna_extract/pkg/core/classify"
)

// Table fence markers emitted around preserved regions.
const (
	BeginMarker = "--- BEGIN TABLE ---"
	EndMarker   = "--- END TABLE ---"
)

// Fencer performs the assembly-time pass over an already-bounded section:
// detected table regions are wrapped in fence markers and copied verbatim,
// while prose lines are whitespace-collapsed. It runs the same detector as
// the whole-document pass, so both passes agree on table boundaries.
type Fencer struct {
	detector   *Detector
	classifier *classify.Classifier
}

// NewFencer creates a fencer sharing the detector's pattern library.
func NewFencer(detector *Detector) *Fencer {
	return &Fencer{
		detector:   detector,
		classifier: classify.NewClassifier(detector.lib),
	}
}

// Fence returns the output lines for the section: fenced verbatim tables,
// collapsed prose, and the regions that were fenced (informational only;
// tables remain inline).
func (f *Fencer) Fence(lines []string) ([]string, []Region) {
	regions := f.detector.Detect(lines)

	var out []string
	next := 0 // index into regions

	for i := 0; i < len(lines); i++ {
		if next < len(regions) && regions[next].StartLine == i {
			region := regions[next]
			next++

			// Blank separator before the fence.
			if len(out) > 0 && strings.TrimSpace(out[len(out)-1]) != "" {
				out = append(out, "")
			}
			out = append(out, BeginMarker)
			out = append(out, region.Lines...)
			out = append(out, EndMarker, "")

			i = region.EndLine
			continue
		}
		out = append(out, f.renderProseLine(lines, i))
	}

	return collapseBlankRuns(out), regions
}

// renderProseLine collapses a regular-text line (indentation up to 4 spaces
// preserved, internal whitespace runs collapsed to one space). Lines whose
// classification is table-like stay byte-identical even outside a fenced
// region, so a lone monetary row that failed the minimum-size test is never
// reflowed.
func (f *Fencer) renderProseLine(lines []string, idx int) string {
	line := lines[idx]
	class := f.classifier.Classify(line, lines, idx)

	switch {
	case class == classify.Empty:
		return ""
	case class.IsTabular():
		return strings.TrimRight(line, " \t")
	case class == classify.TableContinuation || class == classify.PotentialTable:
		return strings.TrimRight(line, " \t")
	default:
		return collapseWhitespace(line)
	}
}

// collapseWhitespace reflows one prose line: leading indentation is kept up
// to 4 spaces, internal runs of whitespace become a single space.
func collapseWhitespace(line string) string {
	indent := 0
	for indent < len(line) && indent < 4 && line[indent] == ' ' {
		indent++
	}
	content := strings.Join(strings.Fields(line), " ")
	if content == "" {
		return ""
	}
	return strings.Repeat(" ", indent) + content
}

// collapseBlankRuns trims runs of blank lines down to one. Lines between
// fence markers pass through untouched, so a table whose growth absorbed
// consecutive blanks keeps them.
func collapseBlankRuns(lines []string) []string {
	out := make([]string, 0, len(lines))
	blanks := 0
	fenced := false
	for _, l := range lines {
		switch l {
		case BeginMarker:
			fenced = true
		case EndMarker:
			fenced = false
		}
		if fenced {
			blanks = 0
			out = append(out, l)
			continue
		}
		if strings.TrimSpace(l) == "" {
			blanks++
			if blanks > 1 {
				continue
			}
			out = append(out, "")
			continue
		}
		blanks = 0
		out = append(out, l)
	}
	// Drop a trailing blank.
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}
