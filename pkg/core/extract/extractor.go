// Package extract orchestrates the per-document pipeline: raw text in, two
// views out, MD&A bounds on the parsing view, line-number bounds, a slice of
// the preservation view, and a table-fenced output artifact.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mdna_extract/pkg/config"
	"mdna_extract/pkg/core/classify"
	"mdna_extract/pkg/core/document"
	"mdna_extract/pkg/core/filing"
	"mdna_extract/pkg/core/patterns"
	"mdna_extract/pkg/core/section"
	"mdna_extract/pkg/core/tables"
)

// Per-document failure taxonomy. All are fatal for the document only; a batch
// always continues past them.
var (
	ErrSectionNotFound     = errors.New("MD&A section not found")
	ErrUnresolvedReference = errors.New("incorporation by reference could not be resolved")
)

// Resolver is the external collaborator that produces substitute text for a
// section incorporated by reference. Returning empty text means the reference
// could not be resolved.
type Resolver interface {
	Resolve(ref *section.IncorporationRef, f *filing.Filing) (string, error)
}

// Result is the final extraction artifact for one document.
type Result struct {
	Filing          *filing.Filing            `json:"filing"`
	SectionText     string                    `json:"-"`
	Bounds          section.Bounds            `json:"bounds"`
	WordCount       int                       `json:"word_count"`
	Subsections     []string                  `json:"subsections,omitempty"`
	CrossReferences []string                  `json:"cross_references,omitempty"`
	Tables          []tables.Region           `json:"tables,omitempty"` // informational; tables stay inline
	Warnings        []string                  `json:"warnings,omitempty"`
	ExtractedAt     time.Time                 `json:"extracted_at"`
	OutputPath      string                    `json:"output_path,omitempty"`
	Incorporated    *section.IncorporationRef `json:"incorporated,omitempty"`
}

// Extractor runs the pipeline. All per-document state lives inside a single
// Extract call; the extractor itself is safe for concurrent use.
type Extractor struct {
	lib        *patterns.Library
	locator    *section.Locator
	classifier *classify.Classifier
	detector   *tables.Detector
	fencer     *tables.Fencer
	normalizer *document.Normalizer
	resolver   Resolver
	outputDir  string
	log        zerolog.Logger
}

// New wires an extractor from settings. resolver may be nil, in which case
// incorporated-by-reference documents fail.
func New(cfg *config.Config, resolver Resolver, log zerolog.Logger) *Extractor {
	lib := patterns.NewLibrary(patterns.ParseSet(cfg.PatternSet))
	detector := tables.NewDetector(lib, cfg.TableMinRows, cfg.TableMinColumns)
	return &Extractor{
		lib:        lib,
		locator:    section.NewLocator(lib),
		classifier: classify.NewClassifier(lib),
		detector:   detector,
		fencer:     tables.NewFencer(detector),
		normalizer: document.NewNormalizer(cfg.ControlCharReplacement),
		resolver:   resolver,
		outputDir:  cfg.OutputDir,
		log:        log,
	}
}

// ExtractFile reads one filing from disk, runs the pipeline, and writes the
// output artifact.
func (e *Extractor) ExtractFile(path string) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	result, err := e.Extract(path, string(raw))
	if err != nil {
		return nil, err
	}

	if err := e.Write(result); err != nil {
		return nil, err
	}
	return result, nil
}

// Extract runs the pipeline over in-memory content. Separated from file I/O
// so tests and the batch driver can stage writing themselves. Any panic
// inside the pipeline is recovered and reported as that document's failure.
func (e *Extractor) Extract(path, raw string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("extraction panic on %s: %v", path, r)
		}
	}()

	log := e.log.With().Str("file", filepath.Base(path)).Logger()

	raw = e.normalizer.Normalize(raw)
	parsing := document.NewParsingView(raw)
	preservation := document.NewPreservationView(raw)

	fil, err := filing.FromDocument(path, parsing)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("cik", fil.CIK).Str("form", fil.FormType).Msg("filing identified")

	result = &Result{Filing: fil, ExtractedAt: time.Now()}

	bounds, found := e.locator.FindSection(parsing, fil.FormType)
	if !found {
		ref, incorporated := e.locator.CheckIncorporation(parsing)
		if !incorporated {
			return nil, fmt.Errorf("%w (%s)", ErrSectionNotFound, path)
		}
		log.Warn().Str("document_type", ref.DocumentType).Msg("MD&A incorporated by reference")
		result.Incorporated = ref

		substitute, err := e.resolve(ref, fil)
		if err != nil {
			return nil, err
		}
		// The substitute document is the section; bounds cover all of it.
		parsing = substitute
		preservation = substitute
		bounds = section.Bounds{Start: 0, End: len(substitute)}
	}

	// Offsets are only valid in the parsing view; cross to the preservation
	// view through line numbers.
	startLine, endLine := document.OffsetsToLines(parsing, bounds.Start, bounds.End)
	sectionLines := document.SliceLines(document.Lines(preservation), startLine, endLine)

	fenced, regions := e.fencer.Fence(sectionLines)
	result.SectionText = strings.Join(fenced, "\n")
	result.Bounds = bounds
	result.Tables = regions

	validation := e.locator.Validate(parsing, bounds, fil.FormType)
	result.WordCount = validation.WordCount
	result.Warnings = validation.Warnings
	for _, w := range validation.Warnings {
		log.Warn().Msg("validation: " + w)
	}

	parsingSection := parsing[bounds.Start:bounds.End]
	result.Subsections = e.locator.ExtractSubsections(parsingSection)
	result.CrossReferences = e.locator.FindCrossReferences(parsingSection)

	log.Info().
		Int("word_count", result.WordCount).
		Int("tables", len(regions)).
		Msg("extracted MD&A")
	return result, nil
}

func (e *Extractor) resolve(ref *section.IncorporationRef, fil *filing.Filing) (string, error) {
	if e.resolver == nil {
		return "", fmt.Errorf("%w: no resolver configured (%s)", ErrUnresolvedReference, ref.DocumentType)
	}
	substitute, err := e.resolver.Resolve(ref, fil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnresolvedReference, err)
	}
	if strings.TrimSpace(substitute) == "" {
		return "", fmt.Errorf("%w: resolver returned empty text (%s)", ErrUnresolvedReference, ref.DocumentType)
	}
	return substitute, nil
}

// Write formats and saves the output artifact, recording its path on the
// result. A blank output directory disables writing.
func (e *Extractor) Write(result *Result) error {
	if e.outputDir == "" {
		return nil
	}
	if err := os.MkdirAll(e.outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	path := filepath.Join(e.outputDir, result.Filing.OutputFilename())
	if err := os.WriteFile(path, []byte(FormatOutput(result)), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	result.OutputPath = path
	e.log.Info().Str("output", path).Msg("saved extraction")
	return nil
}

// FormatOutput renders the artifact: a fixed header block followed by the
// table-fenced section text.
func FormatOutput(result *Result) string {
	f := result.Filing
	date := ""
	if !f.FilingDate.IsZero() {
		date = f.FilingDate.Format("2006-01-02")
	}

	var sb strings.Builder
	rule := strings.Repeat("=", 80)
	sb.WriteString(rule + "\n")
	sb.WriteString("CIK: " + f.CIK + "\n")
	sb.WriteString("Company: " + f.CompanyName + "\n")
	sb.WriteString("Form Type: " + f.FormType + "\n")
	sb.WriteString("Filing Date: " + date + "\n")
	sb.WriteString("Extraction Date: " + result.ExtractedAt.Format(time.RFC3339) + "\n")
	sb.WriteString(fmt.Sprintf("Word Count: %d\n", result.WordCount))
	sb.WriteString(rule + "\n\n")
	sb.WriteString(result.SectionText)
	sb.WriteString("\n")
	return sb.String()
}
