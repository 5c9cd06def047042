package repository_test

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeMinimalWAV writes a tiny valid PCM WAV file (fmt + data, no bext/
// iXML/LIST chunks) to dir/name and returns its full path.
func writeMinimalWAV(t *testing.T, dir, name string) string {
	t.Helper()

	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}

	fmtPayload := make([]byte, 16)
	binary.LittleEndian.PutUint16(fmtPayload[0:2], 1)  // PCM
	binary.LittleEndian.PutUint16(fmtPayload[2:4], 1)  // mono
	binary.LittleEndian.PutUint32(fmtPayload[4:8], 44100)
	binary.LittleEndian.PutUint32(fmtPayload[8:12], 44100*2)
	binary.LittleEndian.PutUint16(fmtPayload[12:14], 2)
	binary.LittleEndian.PutUint16(fmtPayload[14:16], 16)

	var body []byte

	appendBody := func(id string, payload []byte) {
		hdr := make([]byte, 8)
		copy(hdr[0:4], id)
		binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))
		body = append(body, hdr...)
		body = append(body, payload...)

		if len(payload)%2 == 1 {
			body = append(body, 0)
		}
	}

	appendBody("fmt ", fmtPayload)
	appendBody("data", data)

	riffHdr := make([]byte, 12)
	copy(riffHdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(riffHdr[4:8], uint32(4+len(body)))
	copy(riffHdr[8:12], "WAVE")

	buf := append(riffHdr, body...)

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf, 0o644))

	return path
}
