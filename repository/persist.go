package repository

func (s *Store) upsert(rec FileRecord) error {
	technicalJSON, err := encodeJSON(rec.Technical)
	if err != nil {
		return err
	}

	metadataJSON, err := encodeJSON(rec.Metadata)
	if err != nil {
		return err
	}

	bextJSON, err := encodeJSON(rec.BextSnapshot)
	if err != nil {
		return err
	}

	infoJSON, err := encodeJSON(rec.InfoSnapshot)
	if err != nil {
		return err
	}

	changedJSON, err := encodeJSON(rec.ChangedFieldNames())
	if err != nil {
		return err
	}

	renameOnSave := 0
	if rec.RenameOnSave {
		renameOnSave = 1
	}

	_, err = s.db.Exec(`
		INSERT INTO files (
			id, path, directory, filename, status, file_hash, technical_json,
			metadata_json, bext_snapshot_json, info_snapshot_json, changed_fields_json,
			suggested_filename, rename_on_save, analysis_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			status = excluded.status,
			file_hash = excluded.file_hash,
			technical_json = excluded.technical_json,
			metadata_json = excluded.metadata_json,
			bext_snapshot_json = excluded.bext_snapshot_json,
			info_snapshot_json = excluded.info_snapshot_json,
			changed_fields_json = excluded.changed_fields_json,
			suggested_filename = excluded.suggested_filename,
			rename_on_save = excluded.rename_on_save,
			analysis_hash = excluded.analysis_hash
	`,
		rec.ID.String(), rec.Path, rec.Directory, rec.Filename, string(rec.Status), rec.FileHash,
		technicalJSON, metadataJSON, bextJSON, infoJSON, changedJSON,
		rec.SuggestedFilename, renameOnSave, rec.AnalysisHash,
	)

	return err
}
