// Package repository is the content-addressed store of imported WAV files
// and their cached analysis results: spec.md §4.4's File Repository. It
// owns the embedded sqlite database, serializes per-record writes, and
// drives the wav package's atomic rewrite on save.
package repository

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/nomenaudio/corewav/classifier"
	"github.com/nomenaudio/corewav/wav"
)

// Status is a FileRecord's lifecycle state, spec.md §3/§4.4.
type Status string

const (
	StatusUnmodified Status = "unmodified"
	StatusModified   Status = "modified"
	StatusSaved      Status = "saved"
	StatusFlagged    Status = "flagged"
)

// FileRecord is the canonical per-file entity, spec.md §3.
type FileRecord struct {
	ID        uuid.UUID
	Path      string
	Directory string
	Filename  string
	Status    Status

	FileHash string

	Technical wav.TechnicalInfo
	Metadata  wav.ChunkMetadata

	// BextSnapshot and InfoSnapshot are copies of the metadata Open read,
	// exposed for callers that want to show a diff. Save does not consult
	// them; Rewrite works against the live file.
	BextSnapshot wav.ChunkMetadata
	InfoSnapshot wav.ChunkMetadata

	ChangedFields map[string]struct{}

	SuggestedFilename string
	RenameOnSave      bool

	AnalysisHash string // foreign key into analysis_cache, empty if unanalyzed
}

// ChangedFieldNames returns ChangedFields as a sorted slice for
// deterministic output.
func (r *FileRecord) ChangedFieldNames() []string {
	out := make([]string, 0, len(r.ChangedFields))
	for f := range r.ChangedFields {
		out = append(out, f)
	}

	sort.Strings(out)

	return out
}

// AnalysisRecord is keyed by file_hash and survives renames of the
// backing file, spec.md §3.
type AnalysisRecord struct {
	FileHash     string
	Hits         []classifier.Hit
	Caption      string
	ModelVersion string
	AnalyzedAt   time.Time
}

// ListFilters narrows List's result set; zero value matches everything.
type ListFilters struct {
	Status   Status
	Category string
	Query    string // case-insensitive substring over filename/fx_name/description/keywords/category/subcategory
}

// ImportResult summarizes one Import call.
type ImportResult struct {
	Imported []FileRecord
	Skipped  []SkippedPath
	Removed  []string // paths of records dropped because the backing file is gone
}

// SkippedPath records a file Import couldn't read, and why.
type SkippedPath struct {
	Path string
	Err  error
}

// SaveOutcome is one file's result within a batch save.
type SaveOutcome struct {
	ID  uuid.UUID
	Err error
}

// AnalysisOutcome is one file's result within a batch analyze.
type AnalysisOutcome struct {
	ID     uuid.UUID
	Record AnalysisRecord
	Err    error
}
