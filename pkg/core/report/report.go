// Package report renders a batch run summary, markdown first with an
// optional HTML rendering for sharing.
package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"

	"mdna_extract/pkg/core/extract"
)

// Markdown builds the run summary document.
func Markdown(stats *extract.Stats) string {
	var sb strings.Builder

	sb.WriteString("# MD&A Extraction Run\n\n")
	sb.WriteString(fmt.Sprintf("- **Run ID:** `%s`\n", stats.RunID))
	sb.WriteString(fmt.Sprintf("- **Generated:** %s\n", time.Now().Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("- **Elapsed:** %s\n\n", stats.Elapsed.Round(time.Millisecond)))

	sb.WriteString("## Totals\n\n")
	sb.WriteString("| Documents | Succeeded | Failed | Filtered |\n")
	sb.WriteString("|---:|---:|---:|---:|\n")
	sb.WriteString(fmt.Sprintf("| %d | %d | %d | %d |\n\n",
		stats.Total, stats.Succeeded, stats.Failed, stats.Filtered))

	if len(stats.Failures) > 0 {
		sb.WriteString("## Failures\n\n")
		sb.WriteString("| File | Error |\n")
		sb.WriteString("|---|---|\n")
		for _, f := range stats.Failures {
			sb.WriteString(fmt.Sprintf("| %s | %s |\n",
				filepath.Base(f.Path), escapePipes(f.Error)))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// HTML renders the markdown summary as a standalone HTML page.
func HTML(stats *extract.Stats) (string, error) {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
	)
	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(stats)), &body); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}

	var page strings.Builder
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>MD&amp;A Extraction Run</title>\n")
	page.WriteString("<style>\n")
	page.WriteString("body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }\n")
	page.WriteString("table { border-collapse: collapse; }\n")
	page.WriteString("th, td { border: 1px solid #ccc; padding: 0.3em 0.8em; }\n")
	page.WriteString("</style>\n</head>\n<body>\n")
	page.WriteString(body.String())
	page.WriteString("</body>\n</html>\n")
	return page.String(), nil
}

// Save writes the markdown report next to the extraction output, plus the
// HTML rendering when requested.
func Save(stats *extract.Stats, dir string, withHTML bool) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create report dir: %w", err)
	}
	base := filepath.Join(dir, "run_"+stats.RunID)

	if err := os.WriteFile(base+".md", []byte(Markdown(stats)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if withHTML {
		page, err := HTML(stats)
		if err != nil {
			return err
		}
		if err := os.WriteFile(base+".html", []byte(page), 0644); err != nil {
			return fmt.Errorf("failed to write html report: %w", err)
		}
	}
	return nil
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}
