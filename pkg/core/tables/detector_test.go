package tables

import (
	"strings"
	"testing"

	"mdna_extract/pkg/core/patterns"
)

func newTestDetector() *Detector {
	return NewDetector(patterns.NewLibrary(patterns.PatternSetExtended), 2, 2)
}

func TestDetect_HeaderDelimiterScenario(t *testing.T) {
	d := newTestDetector()
	lines := []string{
		"Revenue",
		"----",
		"$100   $200",
		"$110   $210",
	}

	regions := d.Detect(lines)
	if len(regions) != 1 {
		t.Fatalf("expected one region, got %d: %+v", len(regions), regions)
	}

	r := regions[0]
	if r.StartLine != 0 || r.EndLine != 3 {
		t.Errorf("region spans [%d,%d], want [0,3]", r.StartLine, r.EndLine)
	}
	if r.Type != "delimited" && r.Type != "financial" {
		t.Errorf("table type = %q, want delimited or financial", r.Type)
	}
	if !r.HasMonetary {
		t.Error("region should carry monetary data")
	}
}

func TestDetect_FinancialHeaderAnchor(t *testing.T) {
	d := newTestDetector()
	lines := []string{
		"The results were strong this year.",
		"Year Ended December 31, 2023",
		"Revenue\t$10,000\t$12,000",
		"Net income\t$1,500\t$2,100",
		"",
		"We expect further growth across our segments.",
	}

	regions := d.Detect(lines)
	if len(regions) != 1 {
		t.Fatalf("expected one region, got %d", len(regions))
	}
	r := regions[0]
	if r.StartLine != 1 || r.EndLine != 3 {
		t.Errorf("region spans [%d,%d], want [1,3]", r.StartLine, r.EndLine)
	}
	if r.Type != "financial" {
		t.Errorf("table type = %q, want financial", r.Type)
	}
	if r.RowCount != 3 {
		t.Errorf("row count = %d, want 3", r.RowCount)
	}
}

func TestDetect_MinRowsRejection(t *testing.T) {
	d := NewDetector(patterns.NewLibrary(patterns.PatternSetExtended), 3, 2)
	lines := []string{
		"Some prose before.",
		"$100   $200",
		"More prose after the lone row, with no further data lines.",
	}
	if regions := d.Detect(lines); len(regions) != 0 {
		t.Errorf("expected lone monetary row below minimum to be rejected, got %+v", regions)
	}
}

func TestDetect_MinColumnsRejection(t *testing.T) {
	lines := []string{
		"Revenue",
		"----",
		"$100   $200",
		"$110   $210",
	}

	if regions := newTestDetector().Detect(lines); len(regions) != 1 {
		t.Fatalf("two-column table should pass the default threshold, got %+v", regions)
	}

	wide := NewDetector(patterns.NewLibrary(patterns.PatternSetExtended), 2, 3)
	if regions := wide.Detect(lines); len(regions) != 0 {
		t.Errorf("two-column table should fail a three-column threshold, got %+v", regions)
	}
}

func TestDetect_RequiresDigitLine(t *testing.T) {
	d := newTestDetector()
	lines := []string{
		"Summary of Contents",
		"----",
		"alpha\tbeta",
		"gamma\tdelta",
	}
	if regions := d.Detect(lines); len(regions) != 0 {
		t.Errorf("expected digit-free candidate to be rejected, got %+v", regions)
	}
}

func TestDetect_PipeTable(t *testing.T) {
	d := newTestDetector()
	lines := []string{
		"Quarterly Summary Table",
		"| Segment | Q1 | Q2 |",
		"| Hardware | 100 | 120 |",
		"| Services | 80 | 95 |",
		"Prose resumes here without any pipes at all.",
	}

	regions := d.Detect(lines)
	if len(regions) != 1 {
		t.Fatalf("expected one region, got %d", len(regions))
	}
	r := regions[0]
	if r.ColumnCount != 3 {
		t.Errorf("column count = %d, want 3", r.ColumnCount)
	}
	if r.Title != "Quarterly Summary Table" {
		t.Errorf("title = %q, want the heading above the table", r.Title)
	}
	if r.StartLine != 0 {
		t.Errorf("start line = %d, want 0 (title immediately precedes)", r.StartLine)
	}
}

func TestDetect_StopsAtSectionBreak(t *testing.T) {
	d := newTestDetector()
	lines := []string{
		"Year Ended December 31, 2023",
		"Revenue\t$10,000",
		"Notes to Consolidated Financial Statements",
		"Revenue\t$99,999",
	}
	regions := d.Detect(lines)
	if len(regions) == 0 {
		t.Fatal("expected at least one region")
	}
	if regions[0].EndLine >= 2 {
		t.Errorf("region end = %d, growth should stop before the section break", regions[0].EndLine)
	}
}

func TestDetect_BlankTolerance(t *testing.T) {
	d := newTestDetector()
	base := []string{
		"Year Ended December 31, 2023",
		"Revenue\t$10,000",
	}

	twoBlanks := append(append([]string{}, base...), "", "", "Total\t$12,000")
	regions := d.Detect(twoBlanks)
	if len(regions) != 1 || regions[0].EndLine != 4 {
		t.Fatalf("two blanks should be absorbed, got %+v", regions)
	}

	threeBlanks := append(append([]string{}, base...), "", "", "", "Total\t$12,000")
	regions = d.Detect(threeBlanks)
	if len(regions) == 0 {
		t.Fatal("expected a region")
	}
	if regions[0].EndLine > 1 {
		t.Errorf("three blanks should terminate growth, region end = %d", regions[0].EndLine)
	}
}

func TestDetect_FiftyLineCap(t *testing.T) {
	d := newTestDetector()
	lines := []string{"Year Ended December 31, 2023"}
	for i := 0; i < 80; i++ {
		lines = append(lines, "Revenue\t$10,000\t$12,000")
	}

	regions := d.Detect(lines)
	if len(regions) == 0 {
		t.Fatal("expected a region")
	}
	span := regions[0].EndLine - regions[0].StartLine + 1
	if span > maxRegionLines+1 {
		t.Errorf("region spans %d lines, cap is %d", span, maxRegionLines+1)
	}
}

func TestDetect_NoSharedLines(t *testing.T) {
	d := newTestDetector()
	lines := []string{
		"Revenue",
		"----",
		"$100   $200",
		"$110   $210",
		"",
		"Prose in between the two tables sits here quietly.",
		"",
		"| Segment | Q1 |",
		"| Hardware | 100 |",
	}
	regions := d.Detect(lines)
	for i := 0; i < len(regions); i++ {
		for j := i + 1; j < len(regions); j++ {
			if regions[i].Overlaps(regions[j]) {
				t.Errorf("regions %d and %d overlap: %+v %+v", i, j, regions[i], regions[j])
			}
		}
	}
}

func TestSplitPipeCells(t *testing.T) {
	tests := []struct {
		line string
		want []string
	}{
		{"| a | b | c |", []string{"a", "b", "c"}},
		{"a | b", []string{"a", "b"}},
		{"|  100  |  200  |", []string{"100", "200"}},
	}
	for _, tt := range tests {
		got := SplitPipeCells(tt.line)
		if strings.Join(got, ",") != strings.Join(tt.want, ",") {
			t.Errorf("SplitPipeCells(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestRegionOverlaps(t *testing.T) {
	a := Region{StartLine: 10, EndLine: 20}
	tests := []struct {
		b    Region
		want bool
	}{
		{Region{StartLine: 15, EndLine: 25}, true},
		{Region{StartLine: 20, EndLine: 30}, true}, // closed interval: shared endpoint
		{Region{StartLine: 21, EndLine: 30}, false},
		{Region{StartLine: 0, EndLine: 9}, false},
		{Region{StartLine: 12, EndLine: 14}, true},
	}
	for _, tt := range tests {
		if got := a.Overlaps(tt.b); got != tt.want {
			t.Errorf("[10,20].Overlaps([%d,%d]) = %v, want %v", tt.b.StartLine, tt.b.EndLine, got, tt.want)
		}
	}
}
