package wav

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// rawChunk is one chunk to splice into a test fixture: id must be exactly 4
// bytes, payload is written as-is (the helper handles padding).
type rawChunk struct {
	id      string
	payload []byte
}

// writeTestWAV assembles a RIFF/WAVE file from a fixed fmt /data pair plus
// whatever extra chunks the caller supplies, in order, and writes it to
// dir/name. It returns the full path.
func writeTestWAV(t *testing.T, dir, name string, extra ...rawChunk) string {
	t.Helper()

	fmtPayload := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtPayload[0:2], 1) // PCM
	binary.LittleEndian.PutUint16(fmtPayload[2:4], 1) // mono
	binary.LittleEndian.PutUint32(fmtPayload[4:8], 48000)
	binary.LittleEndian.PutUint32(fmtPayload[8:12], 48000*2)
	binary.LittleEndian.PutUint16(fmtPayload[12:14], 2)
	binary.LittleEndian.PutUint16(fmtPayload[14:16], 16)

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	var body []byte

	appendChunk := func(id string, payload []byte) {
		hdr := make([]byte, 8)
		copy(hdr[0:4], id)
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
		body = append(body, hdr...)
		body = append(body, payload...)

		if len(payload)%2 == 1 {
			body = append(body, 0)
		}
	}

	appendChunk("fmt ", fmtPayload)

	for _, c := range extra {
		appendChunk(c.id, c.payload)
	}

	appendChunk("data", data)

	riffHdr := make([]byte, 12)
	copy(riffHdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(riffHdr[4:8], uint32(4+len(body)))
	copy(riffHdr[8:12], "WAVE")

	buf := append(riffHdr, body...)

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		t.Fatalf("write fixture %s: %v", path, err)
	}

	return path
}
