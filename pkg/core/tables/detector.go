package tables

import (
	"regexp"
	"strings"

	"mdna_extract/pkg/core/patterns"
)

var bareNumberRe = regexp.MustCompile(`[\d,]+(?:\.\d+)?`)

// Growth limits shared by the anchored strategies.
const (
	maxConsecutiveBlanks = 2
	maxRegionLines       = 50
	titleLookback        = 5
	maxTitleLength       = 200
)

// Strategy confidences. Confidence only breaks ties between overlapping
// candidates during deduplication. The monetary strategy scores below the
// financial one so a keyword-less sub-span never displaces the wider region
// that anchored on a real header or delimiter.
const (
	confidenceFinancial = 0.95
	confidenceDelimited = 0.90
	confidencePipe      = 0.95
	confidenceMonetary  = 0.90
)

// Detector finds table regions in a line sequence.
type Detector struct {
	lib     *patterns.Library
	minRows int
	minCols int
}

// NewDetector creates a detector. minRows is the minimum number of non-blank
// lines and minCols the minimum column count a candidate region needs to be
// accepted; values below 2 are raised to 2.
func NewDetector(lib *patterns.Library, minRows, minCols int) *Detector {
	if minRows < 2 {
		minRows = 2
	}
	if minCols < 2 {
		minCols = 2
	}
	return &Detector{lib: lib, minRows: minRows, minCols: minCols}
}

// Detect runs all four strategies over the lines and returns the surviving
// regions sorted by start line, with no two regions sharing a line index.
func (d *Detector) Detect(lines []string) []Region {
	var candidates []Region
	candidates = append(candidates, d.detectFinancial(lines)...)
	candidates = append(candidates, d.detectDelimited(lines)...)
	candidates = append(candidates, d.detectPipe(lines)...)
	candidates = append(candidates, d.detectMonetary(lines)...)
	return Dedupe(candidates)
}

// detectFinancial anchors on financial-statement header lines and grows the
// region forward with the shared growth rule.
func (d *Detector) detectFinancial(lines []string) []Region {
	var regions []Region
	consumed := make(map[int]bool)

	for i := 0; i < len(lines); i++ {
		if consumed[i] {
			continue
		}
		if !d.lib.IsTableHeaderLine(lines[i]) {
			continue
		}
		region, ok := d.grow(lines, i, "financial", confidenceFinancial)
		if !ok {
			continue
		}
		regions = append(regions, region)
		for n := region.StartLine; n <= region.EndLine; n++ {
			consumed[n] = true
		}
		i = region.EndLine
	}
	return regions
}

// detectDelimited anchors on a horizontal rule immediately followed by a
// data-like line. The line above the rule, when non-blank, is treated as the
// header and included in the region.
func (d *Detector) detectDelimited(lines []string) []Region {
	var regions []Region
	consumed := make(map[int]bool)

	for i := 0; i < len(lines); i++ {
		if consumed[i] || !d.lib.IsDelimiterLine(lines[i]) {
			continue
		}
		if i+1 >= len(lines) || !d.looksLikeTableData(lines[i+1]) {
			continue
		}

		start := i
		if i > 0 && strings.TrimSpace(lines[i-1]) != "" {
			start = i - 1 // header row above the rule
		}

		end, hasDigit := d.growForward(lines, i+1)
		region := d.buildRegion(lines, start, end, "delimited", confidenceDelimited)
		if !d.accept(region, hasDigit || d.lib.AnyNumber.MatchString(lines[start])) {
			continue
		}
		d.attachTitle(lines, &region)
		regions = append(regions, region)
		for n := region.StartLine; n <= region.EndLine; n++ {
			consumed[n] = true
		}
		i = region.EndLine
	}
	return regions
}

// detectPipe anchors on lines with at least two pipe characters and extends
// while the pipe structure or a continuation holds.
func (d *Detector) detectPipe(lines []string) []Region {
	var regions []Region
	consumed := make(map[int]bool)

	for i := 0; i < len(lines); i++ {
		if consumed[i] || strings.Count(lines[i], "|") < 2 {
			continue
		}

		end := i
		hasDigit := false
		for j := i; j < len(lines); j++ {
			l := lines[j]
			if strings.Count(l, "|") >= 2 {
				end = j
			} else if strings.TrimSpace(l) != "" && d.lib.IsContinuationLine(l) {
				end = j
			} else {
				break
			}
			if d.lib.AnyNumber.MatchString(l) {
				hasDigit = true
			}
		}

		region := d.buildRegion(lines, i, end, "delimited", confidencePipe)
		if !d.accept(region, hasDigit) {
			continue
		}
		region.ColumnCount = maxPipeColumns(region.Lines)
		d.attachTitle(lines, &region)
		regions = append(regions, region)
		for n := region.StartLine; n <= region.EndLine; n++ {
			consumed[n] = true
		}
		i = region.EndLine
	}
	return regions
}

// detectMonetary anchors on lines dense with monetary or percentage values,
// with no header keyword required, and reuses the financial growth rule.
func (d *Detector) detectMonetary(lines []string) []Region {
	var regions []Region
	consumed := make(map[int]bool)

	for i := 0; i < len(lines); i++ {
		if consumed[i] {
			continue
		}
		if !d.lib.HasMultipleMonetary(lines[i]) {
			continue
		}
		region, ok := d.grow(lines, i, "mixed", confidenceMonetary)
		if !ok {
			continue
		}
		regions = append(regions, region)
		for n := region.StartLine; n <= region.EndLine; n++ {
			consumed[n] = true
		}
		i = region.EndLine
	}
	return regions
}

// grow extends a region forward from an anchor line, then validates and
// decorates it. Shared by the financial and monetary strategies.
func (d *Detector) grow(lines []string, anchor int, tableType string, confidence float64) (Region, bool) {
	end, hasDigit := d.growForward(lines, anchor)
	region := d.buildRegion(lines, anchor, end, tableType, confidence)
	if !d.accept(region, hasDigit) {
		return Region{}, false
	}
	d.attachTitle(lines, &region)
	return region, true
}

// growForward absorbs lines that look like table data, headers, or
// continuations, tolerating up to maxConsecutiveBlanks blank lines, and stops
// on a section-break phrase or after maxRegionLines lines. Returns the last
// absorbed line index and whether any absorbed line carried a digit.
func (d *Detector) growForward(lines []string, anchor int) (end int, hasDigit bool) {
	end = anchor
	blanks := 0
	if d.lib.AnyNumber.MatchString(lines[anchor]) {
		hasDigit = true
	}

	for i := anchor + 1; i < len(lines); i++ {
		if i-anchor > maxRegionLines {
			break
		}
		line := lines[i]

		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > maxConsecutiveBlanks {
				break
			}
			continue
		}
		blanks = 0

		if d.lib.IsSectionBreak(line) {
			break
		}
		if d.lib.IsFinancialDataLine(line) ||
			d.lib.HasColumnarStructure(line) ||
			d.lib.IsDelimiterLine(line) ||
			d.lib.IsTableHeaderLine(line) ||
			d.lib.IsContinuationLine(line) {
			end = i
			if d.lib.AnyNumber.MatchString(line) {
				hasDigit = true
			}
			continue
		}
		break
	}
	return end, hasDigit
}

// buildRegion assembles a Region over [start, end] and computes its derived
// metrics.
func (d *Detector) buildRegion(lines []string, start, end int, tableType string, confidence float64) Region {
	span := lines[start : end+1]
	region := Region{
		StartLine:  start,
		EndLine:    end,
		Type:       tableType,
		Confidence: confidence,
		Lines:      append([]string(nil), span...),
	}
	for _, l := range span {
		if strings.TrimSpace(l) == "" {
			continue
		}
		region.RowCount++
		if cols := d.columnCount(l); cols > region.ColumnCount {
			region.ColumnCount = cols
		}
		if d.lib.Monetary.MatchString(l) {
			region.HasMonetary = true
		}
		if d.lib.Percentage.MatchString(l) {
			region.HasPercent = true
		}
	}
	return region
}

// accept applies the minimum-size invariant: enough non-blank rows, enough
// columns, and at least one digit-bearing line. Rejected anchors are
// re-examined as ordinary text by the caller.
func (d *Detector) accept(r Region, hasDigit bool) bool {
	return r.RowCount >= d.minRows && r.ColumnCount >= d.minCols && hasDigit
}

// attachTitle looks backward from the region start, over up to titleLookback
// non-blank lines, for a short line that is not itself table-like and either
// carries a title keyword or has a capitalized-phrase shape. The nearest
// match becomes the title, and the region start moves up to include it when
// it immediately precedes the table.
func (d *Detector) attachTitle(lines []string, r *Region) {
	seen := 0
	for idx := r.StartLine - 1; idx >= 0 && seen < titleLookback; idx-- {
		line := strings.TrimSpace(lines[idx])
		if line == "" {
			continue
		}
		seen++

		if len(line) >= maxTitleLength ||
			d.lib.IsFinancialDataLine(line) ||
			d.lib.HasColumnarStructure(line) ||
			d.lib.IsSectionBreak(line) ||
			isBareNumber(line) {
			continue
		}

		if containsTitleKeyword(d.lib, line) || d.lib.TitleShape.MatchString(line) {
			r.Title = line
			if idx == r.StartLine-1 {
				r.StartLine = idx
				r.Lines = append([]string{lines[idx]}, r.Lines...)
			}
			return
		}
	}
}

func (d *Detector) looksLikeTableData(line string) bool {
	if d.lib.AnyNumber.MatchString(line) {
		if len(bareNumbers(line)) >= 2 || d.lib.IsFinancialDataLine(line) {
			return true
		}
	}
	return d.lib.HasColumnarStructure(line)
}

func (d *Detector) columnCount(line string) int {
	if strings.Count(line, "|") >= 2 {
		return len(SplitPipeCells(line))
	}
	if strings.Contains(line, "\t") {
		return nonEmptyCount(strings.Split(line, "\t"))
	}
	if d.lib.SignificantSpaces.MatchString(line) {
		return nonEmptyCount(d.lib.SignificantSpaces.Split(strings.TrimSpace(line), -1))
	}
	// Data rows often separate values with fewer spaces than the columnar
	// threshold; the numbers themselves are the columns then.
	if nums := bareNumbers(line); len(nums) >= 2 {
		return len(nums)
	}
	return 1
}

// SplitPipeCells parses a pipe-delimited row into trimmed cells, dropping the
// empty boundary cells produced by leading/trailing pipes.
func SplitPipeCells(line string) []string {
	cells := strings.Split(line, "|")
	for i := range cells {
		cells[i] = strings.TrimSpace(cells[i])
	}
	if len(cells) > 0 && cells[0] == "" {
		cells = cells[1:]
	}
	if len(cells) > 0 && cells[len(cells)-1] == "" {
		cells = cells[:len(cells)-1]
	}
	return cells
}

func maxPipeColumns(lines []string) int {
	max := 0
	for _, l := range lines {
		if n := len(SplitPipeCells(l)); n > max {
			max = n
		}
	}
	return max
}

func containsTitleKeyword(lib *patterns.Library, line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range lib.TitleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isBareNumber(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func bareNumbers(line string) []string {
	return bareNumberRe.FindAllString(line, -1)
}

func nonEmptyCount(segments []string) int {
	n := 0
	for _, s := range segments {
		if strings.TrimSpace(s) != "" {
			n++
		}
	}
	return n
}
