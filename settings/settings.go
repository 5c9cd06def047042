// Package settings holds the process-wide configuration the suggestion
// recomputer and filename generator read on every call, persisted as a
// single schema-versioned JSON document using the same temp-file-plus-
// rename discipline as the wav package's chunk rewrite.
package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/nomenaudio/corewav/internal/atomicfile"
)

// schemaVersion is written to every persisted document and bumped whenever
// a field is added or removed in a way that needs migration logic.
const schemaVersion = 1

// CustomField is one user-defined iXML USER-block tag the UI offers as a
// quick-entry field, distinct from the built-in field set.
type CustomField struct {
	Tag   string `json:"tag"`
	Label string `json:"label"`
}

// Settings is the process-wide configuration from spec.md §3.
type Settings struct {
	CreatorID           string        `json:"creator_id"`
	SourceID            string        `json:"source_id"`
	LibraryName         string        `json:"library_name"`
	LibraryTemplate     string        `json:"library_template"`
	RenameOnSaveDefault bool          `json:"rename_on_save_default"`
	CustomFields        []CustomField `json:"custom_fields"`
}

// Store guards a Settings document persisted at path, read once at
// construction and atomically rewritten on every Update.
type Store struct {
	mu    sync.RWMutex
	path  string
	cur   Settings
	extra map[string]json.RawMessage
}

// Open loads the document at path, or returns a Store seeded with the
// zero-value Settings if the file doesn't exist yet — the first Update
// call creates it.
func Open(path string) (*Store, error) {
	s := &Store{path: path, extra: map[string]json.RawMessage{}}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}

		return nil, fmt.Errorf("read settings %s: %w", path, err)
	}

	cur, extra, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}

	s.cur = cur
	s.extra = extra

	return s, nil
}

// Get returns the current settings snapshot.
func (s *Store) Get() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.cur
}

// Update applies fn to a copy of the current settings and persists the
// result atomically before the in-memory value is swapped in, so a failed
// write never leaves the in-memory and on-disk settings disagreeing.
func (s *Store) Update(fn func(Settings) Settings) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(s.cur)

	if err := s.writeLocked(next); err != nil {
		return Settings{}, err
	}

	s.cur = next

	return next, nil
}

func (s *Store) writeLocked(next Settings) error {
	buf, err := encode(next, s.extra)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp, err := atomicfile.New(s.path)
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}

	if _, err := tmp.Write(buf); err != nil {
		atomicfile.Abort(tmp)
		return fmt.Errorf("write temp settings file: %w", err)
	}

	if err := atomicfile.Commit(tmp, s.path); err != nil {
		return fmt.Errorf("commit settings file: %w", err)
	}

	return nil
}

// decode splits a document into its known Settings fields and every
// top-level key this version doesn't recognize.
func decode(raw []byte) (Settings, map[string]json.RawMessage, error) {
	var all map[string]json.RawMessage
	if err := json.Unmarshal(raw, &all); err != nil {
		return Settings{}, nil, err
	}

	var cur Settings
	if err := json.Unmarshal(raw, &cur); err != nil {
		return Settings{}, nil, err
	}

	extra := map[string]json.RawMessage{}

	for _, known := range knownKeys {
		delete(all, known)
	}

	delete(all, "version")

	for k, v := range all {
		extra[k] = v
	}

	return cur, extra, nil
}

var knownKeys = []string{
	"creator_id", "source_id", "library_name", "library_template",
	"rename_on_save_default", "custom_fields",
}

func encode(cur Settings, extra map[string]json.RawMessage) ([]byte, error) {
	out := map[string]json.RawMessage{}

	for k, v := range extra {
		out[k] = v
	}

	known, err := json.Marshal(cur)
	if err != nil {
		return nil, err
	}

	var knownMap map[string]json.RawMessage
	if err := json.Unmarshal(known, &knownMap); err != nil {
		return nil, err
	}

	for k, v := range knownMap {
		out[k] = v
	}

	version, err := json.Marshal(schemaVersion)
	if err != nil {
		return nil, err
	}

	out["version"] = version

	return json.MarshalIndent(out, "", "  ")
}
