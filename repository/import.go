package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/nomenaudio/corewav/filehash"
	"github.com/nomenaudio/corewav/wav"
)

// Import walks directory (recursively if recursive is true), reads every
// *.wav file, and upserts a FileRecord per file whose content hash hasn't
// been seen before (spec.md §4.4). Records whose backing file no longer
// exists are removed from the store in the same pass.
func (s *Store) Import(ctx context.Context, directory string, recursive bool) (*ImportResult, error) {
	paths, err := discoverWAVs(directory, recursive)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", directory, err)
	}

	result := &ImportResult{}

	var mu sync.Mutex

	err = runBounded(ctx, importConcurrency, paths, func(_ context.Context, path string) error {
		rec, importErr := s.importOne(path)

		mu.Lock()
		defer mu.Unlock()

		if importErr != nil {
			result.Skipped = append(result.Skipped, SkippedPath{Path: path, Err: importErr})
			return nil
		}

		result.Imported = append(result.Imported, rec)

		return nil
	})
	if err != nil {
		return nil, err
	}

	removed, err := s.removeMissing(directory)
	if err != nil {
		return nil, fmt.Errorf("remove stale records: %w", err)
	}

	result.Removed = removed

	return result, nil
}

func discoverWAVs(directory string, recursive bool) ([]string, error) {
	var out []string

	if !recursive {
		entries, err := filepath.Glob(filepath.Join(directory, "*.wav"))
		if err != nil {
			return nil, err
		}

		return entries, nil
	}

	err := filepath.WalkDir(directory, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return nil
		}

		if strings.EqualFold(filepath.Ext(path), ".wav") {
			out = append(out, path)
		}

		return nil
	})

	return out, err
}

// importOne computes path's hash and, if a record for that hash already
// exists, returns it unchanged; otherwise it reads full metadata via the
// wav package and upserts a new record.
func (s *Store) importOne(path string) (FileRecord, error) {
	hash, err := filehash.Compute(path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("hash %s: %w", path, err)
	}

	if existing, ok, err := s.getByHash(hash); err != nil {
		return FileRecord{}, err
	} else if ok {
		return existing, nil
	}

	f, err := wav.Open(path)
	if err != nil {
		return FileRecord{}, fmt.Errorf("read %s: %w", path, err)
	}

	rec := FileRecord{
		ID:            uuid.New(),
		Path:          path,
		Directory:     filepath.Dir(path),
		Filename:      filepath.Base(path),
		Status:        StatusUnmodified,
		FileHash:      f.Hash(),
		Technical:     f.Technical,
		Metadata:      f.Metadata.Clone(),
		BextSnapshot:  f.Metadata.Clone(),
		InfoSnapshot:  f.Metadata.Clone(),
		ChangedFields: map[string]struct{}{},
	}

	if err := s.upsert(rec); err != nil {
		return FileRecord{}, fmt.Errorf("store %s: %w", path, err)
	}

	s.logger.Debug().Str("path", path).Str("hash", hash).Msg("imported file")

	return rec, nil
}

// removeMissing drops every stored record whose backing path no longer
// exists on disk within directory, returning the removed paths.
func (s *Store) removeMissing(directory string) ([]string, error) {
	rows, err := s.db.Query(`SELECT id, path FROM files WHERE path LIKE ?`, directory+"%")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type candidate struct {
		id   uuid.UUID
		path string
	}

	var candidates []candidate

	for rows.Next() {
		var idStr, path string
		if err := rows.Scan(&idStr, &path); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(idStr)
		if err != nil {
			return nil, err
		}

		candidates = append(candidates, candidate{id: id, path: path})
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	var removed []string

	for _, c := range candidates {
		if _, err := os.Stat(c.path); err == nil {
			continue
		}

		if _, err := s.db.Exec(`DELETE FROM files WHERE id = ?`, c.id.String()); err != nil {
			return nil, err
		}

		removed = append(removed, c.path)
	}

	return removed, nil
}

func (s *Store) getByHash(hash string) (FileRecord, bool, error) {
	row := s.db.QueryRow(`SELECT `+fileColumns+` FROM files WHERE file_hash = ? LIMIT 1`, hash)

	rec, err := scanFileRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return FileRecord{}, false, nil
	}

	if err != nil {
		return FileRecord{}, false, err
	}

	return rec, true, nil
}

// encodeJSON/decodeJSON wrap the repeated marshal/unmarshal-into-TEXT-
// column pattern the pack's sqlite stores use for nested structures.
func encodeJSON(v any) (string, error) {
	buf, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	return string(buf), nil
}

func decodeJSON[T any](raw string, out *T) error {
	if raw == "" {
		return nil
	}

	return json.Unmarshal([]byte(raw), out)
}
