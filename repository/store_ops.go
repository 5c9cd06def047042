package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nomenaudio/corewav/corerr"
	"github.com/nomenaudio/corewav/filehash"
	"github.com/nomenaudio/corewav/wav"
)

// Get returns the record with id, or a corerr.FileNotFound error.
func (s *Store) Get(id uuid.UUID) (FileRecord, error) {
	row := s.db.QueryRow(`SELECT `+fileColumns+` FROM files WHERE id = ?`, id.String())

	rec, err := scanFileRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return FileRecord{}, corerr.New(corerr.FileNotFound, "Get", fmt.Errorf("no record with id %s", id))
	}

	if err != nil {
		return FileRecord{}, fmt.Errorf("get %s: %w", id, err)
	}

	return rec, nil
}

// List returns every record matching filters, ordered by path.
func (s *Store) List(filters ListFilters) ([]FileRecord, error) {
	rows, err := s.db.Query(`SELECT ` + fileColumns + ` FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()

	var out []FileRecord

	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list scan: %w", err)
		}

		if !matchesFilters(rec, filters) {
			continue
		}

		out = append(out, rec)
	}

	return out, rows.Err()
}

func matchesFilters(rec FileRecord, f ListFilters) bool {
	if f.Status != "" && rec.Status != f.Status {
		return false
	}

	if f.Category != "" && !strings.EqualFold(rec.Metadata.Category, f.Category) {
		return false
	}

	if f.Query != "" {
		q := strings.ToLower(f.Query)
		haystacks := []string{
			rec.Filename, rec.Metadata.FXName, rec.Metadata.Description,
			rec.Metadata.Keywords, rec.Metadata.Category, rec.Metadata.Subcategory,
		}

		hit := false

		for _, h := range haystacks {
			if strings.Contains(strings.ToLower(h), q) {
				hit = true
				break
			}
		}

		if !hit {
			return false
		}
	}

	return true
}

// PartialMetadata describes an edit to apply to a subset of a record's
// metadata fields, field name keyed exactly as in spec.md §6.1's left
// column (e.g. "fx_name", "cat_id").
type PartialMetadata map[string]string

// UpdateMetadata applies a partial edit to a record, validates cat_id
// against the UCS engine (spec.md §3 invariant 2), marks the record
// modified, and persists it. Updates to the same id are serialized.
func (s *Store) UpdateMetadata(id uuid.UUID, partial PartialMetadata) (FileRecord, error) {
	var out FileRecord

	err := s.locks.withLock(id, func() error {
		rec, err := s.Get(id)
		if err != nil {
			return err
		}

		if err := applyPartial(&rec.Metadata, partial, rec.ChangedFields); err != nil {
			return err
		}

		if rec.Metadata.CatID != "" {
			if _, ok := s.engine.LookupCatID(rec.Metadata.CatID); !ok {
				return corerr.New(corerr.ValidationError, "UpdateMetadata",
					fmt.Errorf("cat_id %q not found in taxonomy", rec.Metadata.CatID))
			}
		}

		if len(rec.ChangedFields) > 0 {
			rec.Status = StatusModified
		}

		if err := s.upsert(rec); err != nil {
			return fmt.Errorf("persist %s: %w", id, err)
		}

		out = rec

		return nil
	})

	return out, err
}

func applyPartial(m *wav.ChunkMetadata, partial PartialMetadata, changed map[string]struct{}) error {
	setters := map[string]func(string){
		"category":        func(v string) { m.Category = v },
		"subcategory":     func(v string) { m.Subcategory = v },
		"cat_id":          func(v string) { m.CatID = v },
		"category_full":   func(v string) { m.CategoryFull = v },
		"user_category":   func(v string) { m.UserCategory = v },
		"fx_name":         func(v string) { m.FXName = v },
		"description":     func(v string) { m.Description = v },
		"keywords":        func(v string) { m.Keywords = v },
		"notes":           func(v string) { m.Notes = v },
		"designer":        func(v string) { m.Designer = v },
		"library":         func(v string) { m.Library = v },
		"project":         func(v string) { m.Project = v },
		"microphone":      func(v string) { m.Microphone = v },
		"mic_perspective": func(v string) { m.MicPerspective = v },
		"rec_medium":      func(v string) { m.RecMedium = v },
		"release_date":    func(v string) { m.ReleaseDate = v },
		"rating":          func(v string) { m.Rating = v },
		"is_designed":     func(v string) { m.IsDesigned = v },
		"manufacturer":    func(v string) { m.Manufacturer = v },
		"rec_type":        func(v string) { m.RecType = v },
		"creator_id":      func(v string) { m.CreatorID = v },
		"source_id":       func(v string) { m.SourceID = v },
	}

	for field, value := range partial {
		set, ok := setters[field]
		if !ok {
			return corerr.New(corerr.ValidationError, "UpdateMetadata", fmt.Errorf("unknown field %q", field))
		}

		set(value)
		changed[field] = struct{}{}
	}

	if m.Category != "" && m.Subcategory != "" {
		m.CategoryFull = fmt.Sprintf("%s-%s", m.Category, m.Subcategory)
	}

	return nil
}

// Remove deletes the records with the given ids; the backing WAV files
// are untouched.
func (s *Store) Remove(ids []uuid.UUID) error {
	for _, id := range ids {
		if err := s.locks.withLock(id, func() error {
			_, err := s.db.Exec(`DELETE FROM files WHERE id = ?`, id.String())
			return err
		}); err != nil {
			return fmt.Errorf("remove %s: %w", id, err)
		}
	}

	return nil
}

// SaveOptions configures a single Save/SaveBatch call.
type SaveOptions struct {
	Rename bool
	Copy   bool
}

// Save rewrites id's backing WAV file with its current metadata via the
// wav package's atomic rewrite protocol, then updates the record's hash
// and status. Copy, if set, writes to a sibling copy instead of the
// original path, leaving the source untouched and not updating the
// stored record's path.
func (s *Store) Save(ctx context.Context, id uuid.UUID, opts SaveOptions) error {
	return s.locks.withLock(id, func() error {
		rec, err := s.Get(id)
		if err != nil {
			return err
		}

		targetPath := rec.Path
		expectedHash := rec.FileHash

		if opts.Copy {
			targetPath, err = duplicateFile(rec.Path, rec.Directory)
			if err != nil {
				return fmt.Errorf("duplicate %s: %w", rec.Path, err)
			}

			copyHash, err := filehash.Compute(targetPath)
			if err != nil {
				return fmt.Errorf("hash copy of %s: %w", rec.Path, err)
			}

			expectedHash = copyHash
		}

		f, err := wav.Open(targetPath)
		if err != nil {
			return fmt.Errorf("reopen %s: %w", targetPath, err)
		}

		rewriteOpts := wav.RewriteOptions{ExpectedHash: expectedHash}

		if opts.Rename && rec.SuggestedFilename != "" {
			rewriteOpts.RenameTo = rec.SuggestedFilename
		}

		result, err := f.Rewrite(ctx, rec.Metadata, rewriteOpts)
		if err != nil {
			return fmt.Errorf("save %s: %w", targetPath, err)
		}

		if opts.Copy {
			// The source record is untouched; only status/changed-fields
			// bookkeeping on the original reflects that a save happened.
			rec.Status = StatusSaved
			rec.ChangedFields = map[string]struct{}{}

			if err := s.upsert(rec); err != nil {
				return fmt.Errorf("persist save %s: %w", id, err)
			}

			return nil
		}

		rec.Path = result.FinalPath
		rec.Filename = filepath.Base(result.FinalPath)
		rec.FileHash = result.NewHash
		rec.Status = StatusSaved
		rec.ChangedFields = map[string]struct{}{}

		if err := s.upsert(rec); err != nil {
			return fmt.Errorf("persist save %s: %w", id, err)
		}

		return nil
	})
}

// duplicateFile copies src into a new, non-colliding path in dir and
// returns that path, for Save's copy-on-save option.
func duplicateFile(src, dir string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", err
	}
	defer in.Close()

	ext := filepath.Ext(src)
	stem := strings.TrimSuffix(filepath.Base(src), ext)

	dst := filepath.Join(dir, fmt.Sprintf("%s_copy%s", stem, ext))

	for i := 2; ; i++ {
		if _, err := os.Stat(dst); os.IsNotExist(err) {
			break
		}

		dst = filepath.Join(dir, fmt.Sprintf("%s_copy%d%s", stem, i, ext))
	}

	out, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		os.Remove(dst)
		return "", err
	}

	return dst, nil
}

// SaveBatch saves every id concurrently (bounded), never stopping early:
// each file's outcome is reported independently in the returned slice.
func (s *Store) SaveBatch(ctx context.Context, ids []uuid.UUID, opts SaveOptions) []SaveOutcome {
	outcomes := make([]SaveOutcome, len(ids))

	_ = runBounded(ctx, batchConcurrency, indices(len(ids)), func(saveCtx context.Context, i int) error {
		err := s.Save(saveCtx, ids[i], opts)
		outcomes[i] = SaveOutcome{ID: ids[i], Err: err}

		return nil
	})

	return outcomes
}

func indices(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}

	return out
}

// Revert re-reads id's backing file from disk, discarding any unsaved
// edits, and drops status back to unmodified.
func (s *Store) Revert(id uuid.UUID) (FileRecord, error) {
	var out FileRecord

	err := s.locks.withLock(id, func() error {
		rec, err := s.Get(id)
		if err != nil {
			return err
		}

		f, err := wav.Open(rec.Path)
		if err != nil {
			return fmt.Errorf("reread %s: %w", rec.Path, err)
		}

		rec.FileHash = f.Hash()
		rec.Technical = f.Technical
		rec.Metadata = f.Metadata.Clone()
		rec.BextSnapshot = f.Metadata.Clone()
		rec.InfoSnapshot = f.Metadata.Clone()
		rec.ChangedFields = map[string]struct{}{}
		rec.Status = StatusUnmodified

		if err := s.upsert(rec); err != nil {
			return fmt.Errorf("persist revert %s: %w", id, err)
		}

		out = rec

		return nil
	})

	return out, err
}

// ApplyMetadata copies the named fields from sourceID's record onto every
// record in targetIDs, marking each target modified.
func (s *Store) ApplyMetadata(sourceID uuid.UUID, targetIDs []uuid.UUID, fields []string) error {
	source, err := s.Get(sourceID)
	if err != nil {
		return fmt.Errorf("apply_metadata source: %w", err)
	}

	partial := PartialMetadata{}

	getters := fieldGetters(source.Metadata)

	for _, field := range fields {
		get, ok := getters[field]
		if !ok {
			return corerr.New(corerr.ValidationError, "ApplyMetadata", fmt.Errorf("unknown field %q", field))
		}

		partial[field] = get()
	}

	for _, target := range targetIDs {
		if _, err := s.UpdateMetadata(target, partial); err != nil {
			return fmt.Errorf("apply_metadata to %s: %w", target, err)
		}
	}

	return nil
}

func fieldGetters(m wav.ChunkMetadata) map[string]func() string {
	return map[string]func() string{
		"category":        func() string { return m.Category },
		"subcategory":     func() string { return m.Subcategory },
		"cat_id":          func() string { return m.CatID },
		"category_full":   func() string { return m.CategoryFull },
		"user_category":   func() string { return m.UserCategory },
		"fx_name":         func() string { return m.FXName },
		"description":     func() string { return m.Description },
		"keywords":        func() string { return m.Keywords },
		"notes":           func() string { return m.Notes },
		"designer":        func() string { return m.Designer },
		"library":         func() string { return m.Library },
		"project":         func() string { return m.Project },
		"microphone":      func() string { return m.Microphone },
		"mic_perspective": func() string { return m.MicPerspective },
		"rec_medium":      func() string { return m.RecMedium },
		"release_date":    func() string { return m.ReleaseDate },
		"rating":          func() string { return m.Rating },
		"is_designed":     func() string { return m.IsDesigned },
		"manufacturer":    func() string { return m.Manufacturer },
		"rec_type":        func() string { return m.RecType },
		"creator_id":      func() string { return m.CreatorID },
		"source_id":       func() string { return m.SourceID },
	}
}

// Reset wipes both tables.
func (s *Store) Reset() error {
	_, err := s.db.Exec(`DELETE FROM files; DELETE FROM analysis_cache;`)
	return err
}

// Analyze invokes the configured classifier for id's backing file and
// caches the result under its content hash, keyed independently of the
// FileRecord so the analysis survives a rename.
func (s *Store) Analyze(ctx context.Context, id uuid.UUID) (AnalysisRecord, error) {
	rec, err := s.Get(id)
	if err != nil {
		return AnalysisRecord{}, err
	}

	if !s.analyzer.Ready() {
		return AnalysisRecord{}, corerr.New(corerr.ModelNotReady, "Analyze", nil)
	}

	result, err := s.analyzer.Analyze(ctx, rec.Path, classifierDefaultOptions)
	if err != nil {
		return AnalysisRecord{}, corerr.New(corerr.AnalysisFailed, "Analyze", err)
	}

	analysis := AnalysisRecord{
		FileHash:     rec.FileHash,
		Hits:         result.Hits,
		Caption:      result.Caption,
		ModelVersion: result.ModelVersion,
		AnalyzedAt:   time.Now(),
	}

	if err := s.saveAnalysis(analysis); err != nil {
		return AnalysisRecord{}, fmt.Errorf("cache analysis for %s: %w", rec.FileHash, err)
	}

	rec.AnalysisHash = rec.FileHash
	if err := s.upsert(rec); err != nil {
		return AnalysisRecord{}, fmt.Errorf("link analysis to %s: %w", id, err)
	}

	return analysis, nil
}
