package repository

import (
	"github.com/google/uuid"
)

// fileColumns lists the files table columns in the exact order scanFileRecord
// expects them; kept as one constant so every SELECT and scan site agrees.
const fileColumns = `id, path, directory, filename, status, file_hash, technical_json, ` +
	`metadata_json, bext_snapshot_json, info_snapshot_json, changed_fields_json, ` +
	`suggested_filename, rename_on_save, analysis_hash`

// scannable is satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanFileRecord(row scannable) (FileRecord, error) {
	var (
		rec                             FileRecord
		idStr, status                   string
		technicalJSON, metadataJSON     string
		bextJSON, infoJSON, changedJSON string
		renameOnSave                    int
	)

	if err := row.Scan(
		&idStr, &rec.Path, &rec.Directory, &rec.Filename, &status, &rec.FileHash,
		&technicalJSON, &metadataJSON, &bextJSON, &infoJSON, &changedJSON,
		&rec.SuggestedFilename, &renameOnSave, &rec.AnalysisHash,
	); err != nil {
		return FileRecord{}, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return FileRecord{}, err
	}

	rec.ID = id
	rec.Status = Status(status)
	rec.RenameOnSave = renameOnSave != 0

	if err := decodeJSON(technicalJSON, &rec.Technical); err != nil {
		return FileRecord{}, err
	}

	if err := decodeJSON(metadataJSON, &rec.Metadata); err != nil {
		return FileRecord{}, err
	}

	if err := decodeJSON(bextJSON, &rec.BextSnapshot); err != nil {
		return FileRecord{}, err
	}

	if err := decodeJSON(infoJSON, &rec.InfoSnapshot); err != nil {
		return FileRecord{}, err
	}

	var changedSlice []string
	if err := decodeJSON(changedJSON, &changedSlice); err != nil {
		return FileRecord{}, err
	}

	rec.ChangedFields = make(map[string]struct{}, len(changedSlice))
	for _, f := range changedSlice {
		rec.ChangedFields[f] = struct{}{}
	}

	return rec, nil
}
