package wav

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/nomenaudio/corewav/corerr"
)

// TestRewriteBareWAVFreshTag grounds spec scenario 1: a bare fmt /data WAV
// gains new bext, iXML, and LIST-INFO chunks on first save.
func TestRewriteBareWAVFreshTag(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "bare.wav")

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	meta := ChunkMetadata{FXName: "Door Slam", CatID: "DOORWood", Category: "DOORS", Subcategory: "WOOD", Designer: "Field Recordist"}

	result, err := f.Rewrite(context.Background(), meta, RewriteOptions{ExpectedHash: f.Hash()})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	got, err := Open(result.FinalPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	if got.Metadata.FXName != "Door Slam" {
		t.Fatalf("FXName=%q, want %q", got.Metadata.FXName, "Door Slam")
	}

	if got.Metadata.Category != "DOORS" {
		t.Fatalf("Category=%q, want %q", got.Metadata.Category, "DOORS")
	}

	if got.bext == nil || got.bext.Version != 1 {
		t.Fatalf("expected a new bext chunk with Version=1, got %+v", got.bext)
	}

	if got.ixmlRoot == nil || got.ixmlRoot.child("USER") == nil || got.ixmlRoot.child("ASWG") == nil {
		t.Fatalf("expected a new iXML chunk with both USER and ASWG blocks")
	}

	byMarker := make(map[[4]byte]string, len(got.listInfo))
	for _, e := range got.listInfo {
		byMarker[e.Marker] = e.Value
	}

	if byMarker[markerINAM] != "Door Slam" {
		t.Fatalf("INAM=%q, want %q", byMarker[markerINAM], "Door Slam")
	}

	if byMarker[markerIGNR] != "DOORS" {
		t.Fatalf("IGNR=%q, want %q", byMarker[markerIGNR], "DOORS")
	}
}

// TestRewritePreservesUnrelatedChunkByteForByte grounds spec scenario 4: an
// odd-sized chunk this package doesn't interpret survives a save at the
// same relative position with an unchanged payload and pad byte.
func TestRewritePreservesUnrelatedChunkByteForByte(t *testing.T) {
	dir := t.TempDir()

	smedPayload := make([]byte, 17)
	for i := range smedPayload {
		smedPayload[i] = byte(i + 1)
	}

	path := writeTestWAV(t, dir, "smed.wav", rawChunk{id: "SMED", payload: smedPayload})

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if len(f.RawChunks) != 1 {
		t.Fatalf("expected one raw chunk captured on Open, got %d", len(f.RawChunks))
	}

	result, err := f.Rewrite(context.Background(), ChunkMetadata{FXName: "x"}, RewriteOptions{ExpectedHash: f.Hash()})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	got, err := Open(result.FinalPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	if len(got.RawChunks) != 1 {
		t.Fatalf("expected one raw chunk preserved after rewrite, got %d", len(got.RawChunks))
	}

	rc := got.RawChunks[0]
	if rc.ID != ([4]byte{'S', 'M', 'E', 'D'}) {
		t.Fatalf("ID=%q, want SMED", rc.ID)
	}

	if string(rc.Data) != string(smedPayload) {
		t.Fatalf("SMED payload mismatch: got %v, want %v", rc.Data, smedPayload)
	}

	if !rc.BeforeData {
		t.Fatalf("SMED chunk should still be recorded as appearing before data")
	}
}

// TestRewriteExternalModificationReturnsFileChanged grounds spec scenario 6.
func TestRewriteExternalModificationReturnsFileChanged(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "changed.wav")

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	// Simulate an external process rewriting a byte within the hashed
	// prefix after import but before save.
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	raw[20] ^= 0xFF

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatalf("rewrite fixture: %v", err)
	}

	_, err = f.Rewrite(context.Background(), ChunkMetadata{FXName: "x"}, RewriteOptions{ExpectedHash: f.Hash()})

	var ce *corerr.Error
	if !errors.As(err, &ce) || ce.Code != corerr.FileChanged {
		t.Fatalf("Rewrite error = %v, want corerr.FileChanged", err)
	}

	stillOriginal, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read fixture after failed rewrite: %v", err)
	}

	if string(stillOriginal) != string(raw) {
		t.Fatalf("file on disk was touched despite the aborted rewrite")
	}
}

// TestRewriteRenameConflictReturnsRenameConflict grounds spec scenario 5.
func TestRewriteRenameConflictReturnsRenameConflict(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "old.wav")
	writeTestWAV(t, dir, "new.wav")

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	_, err = f.Rewrite(context.Background(), ChunkMetadata{FXName: "x"}, RewriteOptions{
		ExpectedHash: f.Hash(),
		RenameTo:     "new.wav",
	})

	var ce *corerr.Error
	if !errors.As(err, &ce) || ce.Code != corerr.RenameConflict {
		t.Fatalf("Rewrite error = %v, want corerr.RenameConflict", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}

	for _, e := range entries {
		if e.Name() != "old.wav" && e.Name() != "new.wav" {
			t.Fatalf("unexpected leftover temp file %q after rejected rename", e.Name())
		}
	}

	if _, err := os.Stat(filepath.Join(dir, "old.wav")); err != nil {
		t.Fatalf("original file missing after rejected rename: %v", err)
	}
}

// TestRewriteUserWinsOverASWGOnSave grounds spec scenario 2: USER is the
// source of truth at write time, so the writer re-synchronizes both blocks
// to the USER-derived merged value even when they started out disagreeing.
func TestRewriteUserWinsOverASWGOnSave(t *testing.T) {
	dir := t.TempDir()

	root := newIXMLRoot()
	root.childOrCreate("ASWG").setText("category", "WIND")
	root.childOrCreate("USER").setText("CATEGORY", "DOORS")

	payload, err := encodeIXML(root)
	if err != nil {
		t.Fatalf("encodeIXML: %v", err)
	}

	path := writeTestWAV(t, dir, "precedence.wav", rawChunk{id: "iXML", payload: payload})

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	if f.Metadata.Category != "DOORS" {
		t.Fatalf("Category=%q on read, want %q", f.Metadata.Category, "DOORS")
	}

	result, err := f.Rewrite(context.Background(), f.Metadata, RewriteOptions{ExpectedHash: f.Hash()})
	if err != nil {
		t.Fatalf("Rewrite: %v", err)
	}

	got, err := Open(result.FinalPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	if got.ixmlRoot.child("USER").text("CATEGORY") != "DOORS" {
		t.Fatalf("<USER><CATEGORY>=%q, want %q", got.ixmlRoot.child("USER").text("CATEGORY"), "DOORS")
	}

	if got.ixmlRoot.child("ASWG").text("category") != "DOORS" {
		t.Fatalf("<ASWG><category>=%q, want %q (writer must resync ASWG to the USER value)", got.ixmlRoot.child("ASWG").text("category"), "DOORS")
	}
}

func TestRewriteRejectsCanceledContext(t *testing.T) {
	dir := t.TempDir()
	path := writeTestWAV(t, dir, "ctx.wav")

	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.Rewrite(ctx, ChunkMetadata{FXName: "x"}, RewriteOptions{ExpectedHash: f.Hash()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Rewrite error = %v, want context.Canceled", err)
	}
}
