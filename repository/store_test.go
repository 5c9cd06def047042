package repository_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nomenaudio/corewav/classifier"
	"github.com/nomenaudio/corewav/corerr"
	"github.com/nomenaudio/corewav/repository"
	"github.com/nomenaudio/corewav/ucs"

	"github.com/rs/zerolog"
)

func newTestStore(t *testing.T, analyzer classifier.Analyzer) *repository.Store {
	t.Helper()

	engine, err := ucs.New()
	require.NoError(t, err)

	if analyzer == nil {
		analyzer = classifier.NoopAnalyzer{}
	}

	s, err := repository.Open(filepath.Join(t.TempDir(), "store.db"), engine, analyzer, zerolog.Nop())
	require.NoError(t, err)

	t.Cleanup(func() { _ = s.Close() })

	return s
}

func TestImportDiscoversAndSkipsReimport(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")
	writeMinimalWAV(t, dir, "two.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)
	require.Len(t, result.Imported, 2)
	require.Empty(t, result.Skipped)

	second, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)
	require.Len(t, second.Imported, 2)

	list, err := s.List(repository.ListFilters{})
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestImportRemovesRecordsForDeletedFiles(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	path := writeMinimalWAV(t, dir, "gone.wav")

	_, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	require.NoError(t, os.Remove(path))

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)
	require.Contains(t, result.Removed, path)

	list, err := s.List(repository.ListFilters{})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestUpdateMetadataValidatesCatID(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)
	require.Len(t, result.Imported, 1)

	id := result.Imported[0].ID

	_, err = s.UpdateMetadata(id, repository.PartialMetadata{"cat_id": "NOPE9999"})
	require.Error(t, err)

	var cerr *corerr.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, corerr.ValidationError, cerr.Code)

	updated, err := s.UpdateMetadata(id, repository.PartialMetadata{
		"cat_id":   "AIRJet",
		"fx_name":  "Jet Flyby",
		"category": "AIRCRAFT",
	})
	require.NoError(t, err)
	require.Equal(t, repository.StatusModified, updated.Status)
	require.Equal(t, "AIRJet", updated.Metadata.CatID)
	require.Contains(t, updated.ChangedFieldNames(), "cat_id")
}

func TestUpdateMetadataRejectsUnknownField(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	_, err = s.UpdateMetadata(result.Imported[0].ID, repository.PartialMetadata{"bogus_field": "x"})
	require.Error(t, err)
}

func TestSaveRewritesFileAndClearsChangedFields(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	id := result.Imported[0].ID

	_, err = s.UpdateMetadata(id, repository.PartialMetadata{"description": "a jet flyby"})
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), id, repository.SaveOptions{}))

	saved, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, repository.StatusSaved, saved.Status)
	require.Empty(t, saved.ChangedFieldNames())
	require.Equal(t, "a jet flyby", saved.Metadata.Description)
}

func TestSaveWithCopyLeavesOriginalUntouched(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	id := result.Imported[0].ID
	originalPath := result.Imported[0].Path

	_, err = s.UpdateMetadata(id, repository.PartialMetadata{"description": "copied"})
	require.NoError(t, err)

	require.NoError(t, s.Save(context.Background(), id, repository.SaveOptions{Copy: true}))

	saved, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, originalPath, saved.Path)
	require.Equal(t, repository.StatusSaved, saved.Status)

	entries, err := filepath.Glob(filepath.Join(dir, "*.wav"))
	require.NoError(t, err)
	require.Len(t, entries, 2)
}

func TestSaveBatchReportsPerFileOutcomes(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")
	writeMinimalWAV(t, dir, "two.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	ids := make([]uuid.UUID, len(result.Imported))
	for i, rec := range result.Imported {
		ids[i] = rec.ID
	}

	outcomes := s.SaveBatch(context.Background(), ids, repository.SaveOptions{})
	require.Len(t, outcomes, 2)

	for _, o := range outcomes {
		require.NoError(t, o.Err)
	}
}

func TestRevertDropsUnsavedEdits(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	id := result.Imported[0].ID

	_, err = s.UpdateMetadata(id, repository.PartialMetadata{"description": "scratch"})
	require.NoError(t, err)

	reverted, err := s.Revert(id)
	require.NoError(t, err)
	require.Equal(t, repository.StatusUnmodified, reverted.Status)
	require.Empty(t, reverted.Metadata.Description)
}

func TestApplyMetadataCopiesFieldsAcrossRecords(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")
	writeMinimalWAV(t, dir, "two.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)
	require.Len(t, result.Imported, 2)

	source := result.Imported[0].ID
	target := result.Imported[1].ID

	_, err = s.UpdateMetadata(source, repository.PartialMetadata{
		"category":    "AIRCRAFT",
		"subcategory": "Jet",
		"cat_id":      "AIRJet",
	})
	require.NoError(t, err)

	require.NoError(t, s.ApplyMetadata(source, []uuid.UUID{target}, []string{"category", "subcategory", "cat_id"}))

	applied, err := s.Get(target)
	require.NoError(t, err)
	require.Equal(t, "AIRJet", applied.Metadata.CatID)
	require.Equal(t, repository.StatusModified, applied.Status)
}

func TestResetWipesBothTables(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")

	_, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	require.NoError(t, s.Reset())

	list, err := s.List(repository.ListFilters{})
	require.NoError(t, err)
	require.Empty(t, list)
}

func TestAnalyzeReturnsModelNotReadyForNoopAnalyzer(t *testing.T) {
	s := newTestStore(t, classifier.NoopAnalyzer{})

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	_, err = s.Analyze(context.Background(), result.Imported[0].ID)
	require.Error(t, err)

	var cerr *corerr.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, corerr.ModelNotReady, cerr.Code)
}

func TestAnalyzeCachesByHashAndSurvivesSave(t *testing.T) {
	analyzer := classifier.StaticAnalyzer{
		Result: classifier.Result{
			Hits:         []classifier.Hit{{CatID: "AIRJet", Confidence: 0.9}},
			Caption:      "a jet flying past",
			ModelVersion: "test-model",
		},
	}

	s := newTestStore(t, analyzer)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	id := result.Imported[0].ID
	hash := result.Imported[0].FileHash

	analysis, err := s.Analyze(context.Background(), id)
	require.NoError(t, err)
	require.Equal(t, "test-model", analysis.ModelVersion)

	rec, err := s.Get(id)
	require.NoError(t, err)
	require.Equal(t, hash, rec.AnalysisHash)

	require.NoError(t, s.Save(context.Background(), id, repository.SaveOptions{Rename: true}))

	cached, ok, err := s.GetAnalysis(hash)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "a jet flying past", cached.Caption)
}

func TestAnalyzeBatchReportsPerFileOutcomes(t *testing.T) {
	analyzer := classifier.StaticAnalyzer{
		Result: classifier.Result{
			Hits: []classifier.Hit{{CatID: "AIRJet", Confidence: 0.5}},
		},
	}

	s := newTestStore(t, analyzer)

	dir := t.TempDir()
	writeMinimalWAV(t, dir, "one.wav")
	writeMinimalWAV(t, dir, "two.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	ids := make([]uuid.UUID, len(result.Imported))
	for i, rec := range result.Imported {
		ids[i] = rec.ID
	}

	outcomes := s.AnalyzeBatch(context.Background(), ids)
	require.Len(t, outcomes, 2)

	for _, o := range outcomes {
		require.NoError(t, o.Err)
	}
}

func TestGetUnknownIDReturnsFileNotFound(t *testing.T) {
	s := newTestStore(t, nil)

	_, err := s.Get(uuid.New())
	require.Error(t, err)

	var cerr *corerr.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, corerr.FileNotFound, cerr.Code)
}

func TestRemoveDeletesRecordNotFile(t *testing.T) {
	s := newTestStore(t, nil)

	dir := t.TempDir()
	path := writeMinimalWAV(t, dir, "one.wav")

	result, err := s.Import(context.Background(), dir, false)
	require.NoError(t, err)

	require.NoError(t, s.Remove([]uuid.UUID{result.Imported[0].ID}))

	_, err = s.Get(result.Imported[0].ID)
	require.Error(t, err)

	require.FileExists(t, path)
}
