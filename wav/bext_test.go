package wav

import "testing"

func TestBextEncodeDecodeRoundTrip(t *testing.T) {
	want := &BroadcastExtension{
		Description:         "Door slam, wood, heavy",
		Originator:          "NomenAudio",
		OriginatorReference: "NA_0001",
		OriginationDate:     "2026-07-31",
		OriginationTime:     "12:00:00",
		TimeReference:       123456789,
		Version:             2,
		LoudnessValue:       -23,
		LoudnessRange:       7,
		CodingHistory:       "A=PCM,F=48000,W=16,M=mono",
	}

	got := decodeBext(encodeBext(want))

	if got.Description != want.Description || got.Originator != want.Originator ||
		got.OriginatorReference != want.OriginatorReference || got.OriginationDate != want.OriginationDate ||
		got.OriginationTime != want.OriginationTime || got.TimeReference != want.TimeReference ||
		got.Version != want.Version || got.LoudnessValue != want.LoudnessValue ||
		got.LoudnessRange != want.LoudnessRange || got.CodingHistory != want.CodingHistory {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestEncodeBextNilSynthesizesVersion1(t *testing.T) {
	got := decodeBext(encodeBext(nil))

	if got.Version != 1 {
		t.Fatalf("Version=%d, want 1", got.Version)
	}

	if got.Description != "" || got.CodingHistory != "" {
		t.Fatalf("expected empty Description/CodingHistory on synthesized chunk, got %+v", got)
	}
}

func TestMergeBextSyncsDescriptionAndOriginatorUnconditionally(t *testing.T) {
	existing := &BroadcastExtension{Description: "old", Originator: "old-designer", Version: 1}

	got := mergeBext(existing, ChunkMetadata{Description: "new description", Designer: "new designer"})

	if got.Description != "new description" {
		t.Fatalf("Description=%q, want %q", got.Description, "new description")
	}

	if got.Originator != "new designer" {
		t.Fatalf("Originator=%q, want %q", got.Originator, "new designer")
	}
}

func TestMergeBextLeavesFieldsUntouchedWhenMetaEmpty(t *testing.T) {
	existing := &BroadcastExtension{Description: "kept", Originator: "kept-designer", Version: 1}

	got := mergeBext(existing, ChunkMetadata{})

	if got.Description != "kept" || got.Originator != "kept-designer" {
		t.Fatalf("expected untouched fields, got %+v", got)
	}

	// mergeBext must not alias the caller's existing chunk.
	existing.Description = "mutated after merge"
	if got.Description == "mutated after merge" {
		t.Fatalf("mergeBext result aliases the existing chunk")
	}
}

func TestMergeBextNilExisting(t *testing.T) {
	got := mergeBext(nil, ChunkMetadata{Description: "fresh"})

	if got.Version != 1 {
		t.Fatalf("Version=%d, want 1", got.Version)
	}

	if got.Description != "fresh" {
		t.Fatalf("Description=%q, want %q", got.Description, "fresh")
	}
}

func TestApplyBextFallbackOnlyFillsEmptyFields(t *testing.T) {
	meta := &ChunkMetadata{Description: "from iXML already"}

	applyBextFallback(meta, &BroadcastExtension{Description: "from bext", Originator: "bext designer"})

	if meta.Description != "from iXML already" {
		t.Fatalf("Description=%q, want unchanged %q", meta.Description, "from iXML already")
	}

	if meta.Designer != "bext designer" {
		t.Fatalf("Designer=%q, want %q", meta.Designer, "bext designer")
	}
}

func TestApplyBextFallbackNilChunkIsNoop(t *testing.T) {
	meta := &ChunkMetadata{}

	applyBextFallback(meta, nil)

	if meta.Description != "" || meta.Designer != "" {
		t.Fatalf("expected meta untouched, got %+v", meta)
	}
}
