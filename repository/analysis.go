package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/nomenaudio/corewav/classifier"
)

// classifierDefaultOptions requests the classifier's own default hit cap
// (top-50 per spec.md §3) rather than pinning a value here.
var classifierDefaultOptions = classifier.AnalyzeOptions{}

// GetAnalysis returns the cached AnalysisRecord for fileHash, if any.
func (s *Store) GetAnalysis(fileHash string) (AnalysisRecord, bool, error) {
	row := s.db.QueryRow(
		`SELECT file_hash, hits_json, caption, model_version, analyzed_at FROM analysis_cache WHERE file_hash = ?`,
		fileHash,
	)

	var rec AnalysisRecord

	var hitsJSON string

	if err := row.Scan(&rec.FileHash, &hitsJSON, &rec.Caption, &rec.ModelVersion, &rec.AnalyzedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisRecord{}, false, nil
		}

		return AnalysisRecord{}, false, fmt.Errorf("get analysis %s: %w", fileHash, err)
	}

	if err := decodeJSON(hitsJSON, &rec.Hits); err != nil {
		return AnalysisRecord{}, false, fmt.Errorf("decode analysis hits %s: %w", fileHash, err)
	}

	return rec, true, nil
}

// AnalyzeBatch analyzes every id concurrently (bounded), never stopping
// early: each file's outcome is reported independently in the returned
// slice, mirroring SaveBatch.
func (s *Store) AnalyzeBatch(ctx context.Context, ids []uuid.UUID) []AnalysisOutcome {
	outcomes := make([]AnalysisOutcome, len(ids))

	_ = runBounded(ctx, batchConcurrency, indices(len(ids)), func(analyzeCtx context.Context, i int) error {
		result, err := s.Analyze(analyzeCtx, ids[i])
		outcomes[i] = AnalysisOutcome{ID: ids[i], Record: result, Err: err}

		return nil
	})

	return outcomes
}

func (s *Store) saveAnalysis(rec AnalysisRecord) error {
	hitsJSON, err := encodeJSON(rec.Hits)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO analysis_cache (file_hash, hits_json, caption, model_version, analyzed_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(file_hash) DO UPDATE SET
			hits_json = excluded.hits_json,
			caption = excluded.caption,
			model_version = excluded.model_version,
			analyzed_at = excluded.analyzed_at
	`, rec.FileHash, hitsJSON, rec.Caption, rec.ModelVersion, rec.AnalyzedAt)

	return err
}
