package repository

// schemaSQL matches the northstar/mediascanner convention in the example
// pack: idempotent CREATE TABLE/INDEX statements executed once at Store
// construction, wrapped in foreign_keys enforcement.
const schemaSQL = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS schema_meta (
	id      INTEGER PRIMARY KEY CHECK (id = 1),
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS files (
	id                 TEXT PRIMARY KEY,
	path               TEXT NOT NULL,
	directory          TEXT NOT NULL,
	filename           TEXT NOT NULL,
	status             TEXT NOT NULL,
	file_hash          TEXT NOT NULL,
	technical_json     TEXT NOT NULL,
	metadata_json      TEXT NOT NULL,
	bext_snapshot_json TEXT NOT NULL,
	info_snapshot_json TEXT NOT NULL,
	changed_fields_json TEXT NOT NULL,
	suggested_filename TEXT NOT NULL DEFAULT '',
	rename_on_save     INTEGER NOT NULL DEFAULT 0,
	analysis_hash      TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_files_path ON files(path);
CREATE INDEX IF NOT EXISTS idx_files_status ON files(status);
CREATE INDEX IF NOT EXISTS idx_files_analysis_hash ON files(analysis_hash);

CREATE TABLE IF NOT EXISTS analysis_cache (
	file_hash     TEXT PRIMARY KEY,
	hits_json     TEXT NOT NULL,
	caption       TEXT NOT NULL DEFAULT '',
	model_version TEXT NOT NULL DEFAULT '',
	analyzed_at   DATETIME NOT NULL
);
`

// schemaVersion is recorded in schema_meta; bump it when the table shape
// changes in a way that needs a migration path.
const schemaVersion = 1
