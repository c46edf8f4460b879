package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Recorder receives per-document outcomes for the extraction index. A nil
// recorder disables indexing.
type Recorder interface {
	Record(ctx context.Context, outcome *Outcome) error
}

// Outcome is one document's batch result, success or failure.
type Outcome struct {
	RunID      string    `json:"run_id"`
	Path       string    `json:"path"`
	CIK        string    `json:"cik,omitempty"`
	FormType   string    `json:"form_type,omitempty"`
	FilingDate string    `json:"filing_date,omitempty"`
	OutputPath string    `json:"output_path,omitempty"`
	WordCount  int       `json:"word_count"`
	Tables     int       `json:"tables"`
	Status     string    `json:"status"` // succeeded, failed, filtered
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// Stats aggregates a batch run.
type Stats struct {
	RunID     string        `json:"run_id"`
	Total     int           `json:"total"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Filtered  int           `json:"filtered"`
	Elapsed   time.Duration `json:"elapsed"`

	mu       sync.Mutex
	Failures []Outcome `json:"failures,omitempty"`
}

func (s *Stats) record(o Outcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch o.Status {
	case "succeeded":
		s.Succeeded++
	case "filtered":
		s.Filtered++
	default:
		s.Failed++
		s.Failures = append(s.Failures, o)
	}
}

// Batch walks a directory of filings through the extractor with a fixed pool
// of workers. Every document failure is recorded and skipped; a batch run
// never aborts early.
type Batch struct {
	extractor *Extractor
	filter    Filter
	recorder  Recorder
	workers   int
	log       zerolog.Logger
}

func NewBatch(extractor *Extractor, filter Filter, recorder Recorder, workers int, log zerolog.Logger) *Batch {
	if filter == nil {
		filter = AllowAll{}
	}
	if workers < 1 {
		workers = 1
	}
	return &Batch{
		extractor: extractor,
		filter:    filter,
		recorder:  recorder,
		workers:   workers,
		log:       log,
	}
}

// Run processes every .txt file under dir and returns the aggregate stats.
func (b *Batch) Run(ctx context.Context, dir string) (*Stats, error) {
	paths, err := listFilings(dir)
	if err != nil {
		return nil, err
	}

	stats := &Stats{RunID: uuid.New().String(), Total: len(paths)}
	start := time.Now()
	b.log.Info().
		Str("run_id", stats.RunID).
		Int("documents", len(paths)).
		Int("workers", b.workers).
		Msg("batch started")

	jobs := make(chan string)
	var wg sync.WaitGroup
	for i := 0; i < b.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				b.processOne(ctx, stats, path)
			}
		}()
	}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return stats, ctx.Err()
		case jobs <- path:
		}
	}
	close(jobs)
	wg.Wait()

	stats.Elapsed = time.Since(start)
	b.log.Info().
		Str("run_id", stats.RunID).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Int("filtered", stats.Filtered).
		Dur("elapsed", stats.Elapsed).
		Msg("batch finished")
	return stats, nil
}

// processOne runs a single document end to end and records its outcome. The
// extractor converts pipeline panics into errors, so a worker can never take
// down the pool. Filtering happens before the artifact is written.
func (b *Batch) processOne(ctx context.Context, stats *Stats, path string) {
	outcome := Outcome{RunID: stats.RunID, Path: path}

	raw, err := os.ReadFile(path)
	var result *Result
	if err == nil {
		result, err = b.extractor.Extract(path, string(raw))
	}
	switch {
	case err != nil:
		outcome.Status = "failed"
		outcome.Error = err.Error()
		b.log.Error().Str("file", filepath.Base(path)).Err(err).Msg("extraction failed")
	case !b.filter.ShouldProcess(result.Filing):
		outcome.Status = "filtered"
		outcome.CIK = result.Filing.CIK
		outcome.FormType = result.Filing.FormType
	default:
		outcome.CIK = result.Filing.CIK
		outcome.FormType = result.Filing.FormType
		if !result.Filing.FilingDate.IsZero() {
			outcome.FilingDate = result.Filing.FilingDate.Format("2006-01-02")
		}
		outcome.WordCount = result.WordCount
		outcome.Tables = len(result.Tables)
		if err := b.extractor.Write(result); err != nil {
			outcome.Status = "failed"
			outcome.Error = err.Error()
			b.log.Error().Str("file", filepath.Base(path)).Err(err).Msg("failed to write artifact")
			break
		}
		outcome.Status = "succeeded"
		outcome.OutputPath = result.OutputPath
	}
	outcome.FinishedAt = time.Now()

	stats.record(outcome)
	if b.recorder != nil {
		if err := b.recorder.Record(ctx, &outcome); err != nil {
			b.log.Warn().Str("file", filepath.Base(path)).Err(err).Msg("failed to index outcome")
		}
	}
}

// listFilings collects the .txt documents directly under dir, sorted so runs
// are deterministic.
func listFilings(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input dir %s: %w", dir, err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".txt") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
