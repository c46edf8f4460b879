package section

import (
	"strings"
	"testing"

	"mdna_extract/pkg/core/patterns"
)

func newTestLocator() *Locator {
	return NewLocator(patterns.NewLibrary(patterns.PatternSetExtended))
}

func TestFindSection_TenK(t *testing.T) {
	l := newTestLocator()
	text := strings.Join([]string{
		"PART II",
		"",
		"ITEM 7. MANAGEMENT'S DISCUSSION AND ANALYSIS OF FINANCIAL CONDITION AND RESULTS OF OPERATIONS",
		"",
		"Revenue increased year over year across all segments.",
		"",
		"ITEM 8. FINANCIAL STATEMENTS AND SUPPLEMENTARY DATA",
		"",
		"Balance sheet follows.",
	}, "\n")

	bounds, found := l.FindSection(text, "10-K")
	if !found {
		t.Fatal("expected to find the section")
	}
	body := text[bounds.Start:bounds.End]
	if !strings.Contains(body, "Revenue increased") {
		t.Errorf("section body missing narrative: %q", body)
	}
	if strings.Contains(body, "Balance sheet follows") {
		t.Errorf("section body leaked past the end marker: %q", body)
	}
}

// Earlier marker hits are almost always the table of contents; the last
// occurrence wins.
func TestFindSection_SkipsTableOfContents(t *testing.T) {
	l := newTestLocator()
	text := strings.Join([]string{
		"Item 7. Management's Discussion and Analysis.....34",
		"Item 8. Financial Statements.....60",
		"",
		"ITEM 7. MANAGEMENT'S DISCUSSION AND ANALYSIS OF FINANCIAL CONDITION",
		"",
		"The real narrative begins here and continues at length.",
	}, "\n")

	bounds, found := l.FindSection(text, "10-K")
	if !found {
		t.Fatal("expected to find the section")
	}
	if !strings.Contains(text[bounds.Start:bounds.End], "real narrative") {
		t.Errorf("bounds selected the TOC entry, not the section: %q", text[bounds.Start:bounds.End])
	}
}

func TestFindSection_TenQ(t *testing.T) {
	l := newTestLocator()
	text := strings.Join([]string{
		"ITEM 2. MANAGEMENT'S DISCUSSION AND ANALYSIS OF FINANCIAL CONDITION",
		"",
		"Quarterly narrative discussion sits here.",
		"",
		"ITEM 3. QUANTITATIVE AND QUALITATIVE DISCLOSURES ABOUT MARKET RISK",
	}, "\n")

	bounds, found := l.FindSection(text, "10-Q")
	if !found {
		t.Fatal("expected to find the section")
	}
	body := text[bounds.Start:bounds.End]
	if !strings.Contains(body, "Quarterly narrative") || strings.Contains(body, "MARKET RISK") {
		t.Errorf("wrong bounds: %q", body)
	}
}

func TestFindSection_AmendmentUsesParentMarkers(t *testing.T) {
	l := newTestLocator()
	text := "ITEM 7. MANAGEMENT'S DISCUSSION AND ANALYSIS OF FINANCIAL CONDITION\n\nAmended narrative."
	if _, found := l.FindSection(text, "10-K/A"); !found {
		t.Error("10-K/A should use the 10-K marker family")
	}
}

func TestFindSection_NotFound(t *testing.T) {
	l := newTestLocator()
	if _, found := l.FindSection("This filing has no discussion section at all.", "10-K"); found {
		t.Error("expected no section")
	}
}

func TestCheckIncorporation(t *testing.T) {
	l := newTestLocator()
	text := "The information required by this item is incorporated by reference to Exhibit 13 of the Registrant's Annual Report."

	ref, ok := l.CheckIncorporation(text)
	if !ok {
		t.Fatal("expected an incorporation reference")
	}
	if ref.DocumentType != "Exhibit 13" {
		t.Errorf("document type = %q, want %q", ref.DocumentType, "Exhibit 13")
	}
	if ref.Locator == "" {
		t.Error("locator snippet should not be empty")
	}
}

func TestCheckIncorporation_Absent(t *testing.T) {
	l := newTestLocator()
	if _, ok := l.CheckIncorporation("Plain narrative text with nothing referenced elsewhere."); ok {
		t.Error("expected no incorporation reference")
	}
}

func TestValidate_ShortSectionWarning(t *testing.T) {
	l := newTestLocator()
	text := "ITEM 7. MANAGEMENT'S DISCUSSION AND ANALYSIS short body."

	v := l.Validate(text, Bounds{Start: 0, End: len(text)}, "10-K")
	if v.WordCount == 0 {
		t.Error("word count should be nonzero")
	}
	found := false
	for _, w := range v.Warnings {
		if strings.Contains(w, "short") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a short-section warning, got %v", v.Warnings)
	}
}

func TestValidate_FormMismatchWarning(t *testing.T) {
	l := newTestLocator()
	// Item 2 marker inside a section declared as coming from a 10-K.
	text := "ITEM 2. MANAGEMENT'S DISCUSSION AND ANALYSIS OF FINANCIAL CONDITION\n\nBody text."

	v := l.Validate(text, Bounds{Start: 0, End: len(text)}, "10-K")
	found := false
	for _, w := range v.Warnings {
		if strings.Contains(w, "inconsistent") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a marker-mismatch warning, got %v", v.Warnings)
	}
}

func TestExtractSubsections(t *testing.T) {
	l := newTestLocator()
	text := strings.Join([]string{
		"Results of Operations",
		"Revenue increased due to higher volumes across all product lines and regions.",
		"Liquidity and Capital Resources",
		"We held cash balances sufficient for operations.",
		"not a heading because it is lowercase",
	}, "\n")

	subs := l.ExtractSubsections(text)
	want := []string{"Results of Operations", "Liquidity and Capital Resources"}
	if len(subs) != len(want) {
		t.Fatalf("got %v, want %v", subs, want)
	}
	for i := range want {
		if subs[i] != want[i] {
			t.Errorf("subsection %d = %q, want %q", i, subs[i], want[i])
		}
	}
}

func TestFindCrossReferences(t *testing.T) {
	l := newTestLocator()
	text := "See Item 8 for financial statements. Refer to Note 12 for details. See Item 8 again."

	refs := l.FindCrossReferences(text)
	want := []string{"Item 8", "Note 12"}
	if len(refs) != len(want) {
		t.Fatalf("got %v, want %v", refs, want)
	}
	for i := range want {
		if refs[i] != want[i] {
			t.Errorf("ref %d = %q, want %q", i, refs[i], want[i])
		}
	}
}
