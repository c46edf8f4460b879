package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"

	"mdna_extract/pkg/core/extract"
)

// Index records batch outcomes. DB primary, JSONL file fallback when no pool
// is configured.
type Index struct {
	pool *pgxpool.Pool

	mu   sync.Mutex
	file *os.File
}

// NewIndex creates an extraction index. If pool is nil, outcomes append to
// <dir>/extractions.jsonl instead; if dir is also empty it defaults to a
// local .index directory.
func NewIndex(pool *pgxpool.Pool, dir string) (*Index, error) {
	if pool != nil {
		return &Index{pool: pool}, nil
	}
	if dir == "" {
		dir = ".index"
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index dir %s: %w", dir, err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "extractions.jsonl"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open index journal: %w", err)
	}
	return &Index{file: f}, nil
}

// Record persists one document outcome.
func (ix *Index) Record(ctx context.Context, o *extract.Outcome) error {
	if ix.pool != nil {
		query := `
			INSERT INTO extractions (
				run_id, path, cik, form_type, filing_date,
				output_path, word_count, tables, status, error, finished_at
			) VALUES ($1, $2, $3, $4, NULLIF($5, '')::date, $6, $7, $8, $9, $10, $11)
			ON CONFLICT (run_id, path)
			DO UPDATE SET
				output_path = EXCLUDED.output_path,
				word_count  = EXCLUDED.word_count,
				tables      = EXCLUDED.tables,
				status      = EXCLUDED.status,
				error       = EXCLUDED.error,
				finished_at = EXCLUDED.finished_at
		`
		_, err := ix.pool.Exec(ctx, query,
			o.RunID, o.Path, o.CIK, o.FormType, o.FilingDate,
			o.OutputPath, o.WordCount, o.Tables, o.Status, o.Error, o.FinishedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to index outcome: %w", err)
		}
		return nil
	}

	line, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome: %w", err)
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if _, err := ix.file.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("failed to append to index journal: %w", err)
	}
	return nil
}

// RunOutcomes returns the recorded outcomes for one batch run. Only the file
// journal supports this without a live database.
func (ix *Index) RunOutcomes(ctx context.Context, runID string) ([]extract.Outcome, error) {
	if ix.pool != nil {
		query := `
			SELECT run_id, path, COALESCE(cik, ''), COALESCE(form_type, ''),
			       COALESCE(filing_date::text, ''), COALESCE(output_path, ''),
			       word_count, tables, status, COALESCE(error, ''), finished_at
			FROM extractions
			WHERE run_id = $1
			ORDER BY path
		`
		rows, err := ix.pool.Query(ctx, query, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to query outcomes: %w", err)
		}
		defer rows.Close()

		var outcomes []extract.Outcome
		for rows.Next() {
			var o extract.Outcome
			if err := rows.Scan(&o.RunID, &o.Path, &o.CIK, &o.FormType, &o.FilingDate,
				&o.OutputPath, &o.WordCount, &o.Tables, &o.Status, &o.Error, &o.FinishedAt); err != nil {
				return nil, fmt.Errorf("failed to scan outcome: %w", err)
			}
			outcomes = append(outcomes, o)
		}
		return outcomes, rows.Err()
	}
	return nil, fmt.Errorf("run lookup requires a database index")
}

// Close releases the journal file. The pool is owned by the caller.
func (ix *Index) Close() error {
	if ix.file != nil {
		return ix.file.Close()
	}
	return nil
}
