package tables

import (
	"strings"
	"testing"
)

func newTestFencer() *Fencer {
	return NewFencer(newTestDetector())
}

func TestFence_WrapsDetectedTable(t *testing.T) {
	f := newTestFencer()
	lines := []string{
		"Results improved during the period.",
		"",
		"Revenue",
		"----",
		"$100   $200",
		"$110   $210",
		"",
		"Management believes the outlook is positive.",
	}

	out, regions := f.Fence(lines)
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d", len(regions))
	}

	text := strings.Join(out, "\n")
	if !strings.Contains(text, BeginMarker) || !strings.Contains(text, EndMarker) {
		t.Fatalf("output missing fence markers:\n%s", text)
	}
	begin := strings.Index(text, BeginMarker)
	end := strings.Index(text, EndMarker)
	if begin > end {
		t.Error("BEGIN marker should precede END marker")
	}

	// The fenced span is byte-identical to its input lines.
	for _, want := range []string{"Revenue", "----", "$100   $200", "$110   $210"} {
		if !strings.Contains(text[begin:end], want) {
			t.Errorf("fenced span missing verbatim line %q", want)
		}
	}
}

func TestFence_ProseCollapse(t *testing.T) {
	f := newTestFencer()
	lines := []string{"The   company   grew."}

	out, _ := f.Fence(lines)
	if len(out) != 1 {
		t.Fatalf("expected 1 output line, got %d: %v", len(out), out)
	}
	if out[0] != "The company grew." {
		t.Errorf("got %q, want %q", out[0], "The company grew.")
	}
}

func TestFence_ProseKeepsIndent(t *testing.T) {
	f := newTestFencer()
	tests := []struct {
		in   string
		want string
	}{
		{"  The   company   grew.", "  The company grew."},
		{"    The   company   grew.", "    The company grew."},
		{"        The   company   grew.", "    The company grew."}, // indent capped at 4
	}
	for _, tt := range tests {
		out, _ := f.Fence([]string{tt.in})
		if len(out) != 1 || out[0] != tt.want {
			t.Errorf("Fence(%q) = %v, want [%q]", tt.in, out, tt.want)
		}
	}
}

// A lone monetary row that fails the minimum-size test is not fenced, but it
// still must not be reflowed.
func TestFence_UnfencedMonetaryLineStaysVerbatim(t *testing.T) {
	f := newTestFencer()
	lines := []string{
		"Prose before the lone row explains the figures in detail.",
		"Revenue was strong with $1,000    $2,000 in the mix.",
		"Prose after the lone row carries on with the discussion.",
	}

	out, regions := f.Fence(lines)
	if len(regions) != 0 {
		t.Fatalf("expected no fenced regions, got %+v", regions)
	}
	found := false
	for _, l := range out {
		if l == "Revenue was strong with $1,000    $2,000 in the mix." {
			found = true
		}
	}
	if !found {
		t.Errorf("monetary line was reflowed: %v", out)
	}
}

func TestFence_CollapsesBlankRuns(t *testing.T) {
	f := newTestFencer()
	lines := []string{
		"First paragraph of the discussion.",
		"",
		"",
		"",
		"Second paragraph of the discussion.",
	}
	out, _ := f.Fence(lines)
	want := []string{
		"First paragraph of the discussion.",
		"",
		"Second paragraph of the discussion.",
	}
	if strings.Join(out, "\n") != strings.Join(want, "\n") {
		t.Errorf("got %v, want %v", out, want)
	}
}

// Growth tolerates up to two consecutive blank lines inside a table; the
// fenced copy has to keep both, while prose blanks still collapse.
func TestFence_KeepsBlankRunsInsideFence(t *testing.T) {
	f := newTestFencer()
	lines := []string{
		"Year Ended December 31, 2023",
		"Revenue\t$10,000",
		"",
		"",
		"Total\t$12,000",
	}

	out, regions := f.Fence(lines)
	if len(regions) != 1 {
		t.Fatalf("expected 1 region, got %d: %+v", len(regions), regions)
	}

	text := strings.Join(out, "\n")
	begin := strings.Index(text, BeginMarker)
	end := strings.Index(text, EndMarker)
	if begin < 0 || end < 0 {
		t.Fatalf("output missing fence markers:\n%s", text)
	}
	want := strings.Join(regions[0].Lines, "\n")
	if !strings.Contains(text[begin:end], want) {
		t.Errorf("fenced span is not byte-identical to the region lines:\ngot:\n%s\nwant:\n%s",
			text[begin:end], want)
	}
	if !strings.Contains(text[begin:end], "$10,000\n\n\nTotal") {
		t.Errorf("consecutive blank lines inside the fence were collapsed:\n%s", text[begin:end])
	}
}

func TestFence_Deterministic(t *testing.T) {
	f := newTestFencer()
	lines := []string{
		"Results improved during the period.",
		"Revenue",
		"----",
		"$100   $200",
		"$110   $210",
	}
	first, _ := f.Fence(lines)
	second, _ := f.Fence(lines)
	if strings.Join(first, "\n") != strings.Join(second, "\n") {
		t.Error("fencing the same input twice produced different output")
	}
}
