package repository

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"github.com/nomenaudio/corewav/classifier"
	"github.com/nomenaudio/corewav/ucs"
)

// Store is the sqlite-backed File Repository, spec.md §4.4. One Store owns
// one database file and is safe for concurrent use: reads go straight to
// sqlite, writes to an individual record are serialized by idLocker, and
// the underlying *sql.DB serializes its own connection pool.
type Store struct {
	db       *sql.DB
	logger   zerolog.Logger
	engine   *ucs.Engine
	analyzer classifier.Analyzer
	locks    *idLocker
}

// Open creates or opens the sqlite database at path, creating its schema
// if needed. engine is the shared, read-only UCS taxonomy used to validate
// cat_id values at write time (spec.md §3 invariant 2); analyzer is the ML
// collaborator invoked by Analyze — pass classifier.NoopAnalyzer{} until a
// real one is wired in.
func Open(path string, engine *ucs.Engine, analyzer classifier.Analyzer, logger zerolog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create directory for %s: %w", path, err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	s := &Store{db: db, logger: logger, engine: engine, analyzer: analyzer, locks: newIDLocker()}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

func (s *Store) initSchema() error {
	if _, err := s.db.Exec(schemaSQL); err != nil {
		return err
	}

	_, err := s.db.Exec(
		`INSERT INTO schema_meta(id, version) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version = excluded.version`,
		schemaVersion,
	)

	return err
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
