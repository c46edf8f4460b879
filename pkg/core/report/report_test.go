package report

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mdna_extract/pkg/core/extract"
)

func sampleStats() *extract.Stats {
	return &extract.Stats{
		RunID:     "11111111-2222-3333-4444-555555555555",
		Total:     3,
		Succeeded: 2,
		Failed:    1,
		Failures: []extract.Outcome{
			{Path: "/data/bad.txt", Status: "failed", Error: "MD&A section not found | details"},
		},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleStats())
	if !strings.Contains(md, "| 3 | 2 | 1 | 0 |") {
		t.Errorf("totals row missing:\n%s", md)
	}
	if !strings.Contains(md, "bad.txt") {
		t.Errorf("failure row missing:\n%s", md)
	}
	if !strings.Contains(md, "11111111-2222-3333-4444-555555555555") {
		t.Errorf("run ID missing:\n%s", md)
	}
	// Pipes inside error text must not break the table.
	if !strings.Contains(md, `\|`) {
		t.Errorf("error pipes not escaped:\n%s", md)
	}
}

func TestHTML(t *testing.T) {
	page, err := HTML(sampleStats())
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}
	if !strings.Contains(page, "<table>") {
		t.Errorf("totals table not rendered:\n%s", page)
	}
	if !strings.Contains(page, "<!DOCTYPE html>") {
		t.Error("expected a standalone page")
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	stats := sampleStats()
	if err := Save(stats, dir, true); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	for _, ext := range []string{".md", ".html"} {
		path := filepath.Join(dir, "run_"+stats.RunID+ext)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing report artifact %s: %v", path, err)
		}
	}
}
