package wav

import (
	"bytes"
	"encoding/binary"
	"io"
)

// RIFF-INFO sub-chunk markers this package maps to metadata fields. See
// http://bwfmetaedit.sourceforge.net/listinfo.html
var (
	markerIART = [4]byte{'I', 'A', 'R', 'T'}
	markerINAM = [4]byte{'I', 'N', 'A', 'M'}
	markerIGNR = [4]byte{'I', 'G', 'N', 'R'}
	markerIPRD = [4]byte{'I', 'P', 'R', 'D'}
	markerICMT = [4]byte{'I', 'C', 'M', 'T'}
	markerIKEY = [4]byte{'I', 'K', 'E', 'Y'}
)

// infoEntry is one RIFF-INFO sub-chunk: a 4-byte marker and its
// null-terminated string payload.
type infoEntry struct {
	Marker [4]byte
	Value  string
}

// decodeListInfo parses the payload of a LIST chunk already known to carry
// the INFO form (the caller has matched the first 4 bytes against cidInfo).
// Every sub-chunk is returned, mapped or not, so Rewrite re-encodes
// unmapped INFO entries along with the mapped ones. LIST chunks of any
// other form (such as adtl) never reach this function; atomic.go copies
// them through verbatim.
func decodeListInfo(payload []byte) []infoEntry {
	if len(payload) < 4 {
		return nil
	}

	r := bytes.NewReader(payload[4:])

	var entries []infoEntry

	for r.Len() > 1 {
		var id [4]byte
		if _, err := io.ReadFull(r, id[:]); err != nil {
			break
		}

		var size uint32
		if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
			break
		}

		scratch := make([]byte, size)
		if _, err := io.ReadFull(r, scratch); err != nil {
			break
		}

		if size%2 == 1 && r.Len() > 0 {
			r.Seek(1, io.SeekCurrent)
		}

		entries = append(entries, infoEntry{Marker: id, Value: nullTermStr(scratch)})
	}

	return entries
}

// encodeListInfo serializes LIST-INFO sub-chunk entries, including the
// leading "INFO" form tag.
func encodeListInfo(entries []infoEntry) []byte {
	buf := bytes.NewBuffer(cidInfo[:])

	for _, e := range entries {
		if e.Value == "" {
			continue
		}

		buf.Write(e.Marker[:])

		padded := append([]byte(e.Value), 0x00)
		binary.Write(buf, binary.LittleEndian, uint32(len(padded)))
		buf.Write(padded)

		if len(padded)%2 == 1 {
			buf.WriteByte(0x00)
		}
	}

	return buf.Bytes()
}

// mergeListInfo applies the LIST-INFO fill-gaps-only write policy from
// spec §4.3.3: an existing, non-empty sub-chunk value is never replaced.
// Fields without an InfoTag mapping are ignored.
func mergeListInfo(existing []infoEntry, meta ChunkMetadata) []infoEntry {
	byMarker := make(map[[4]byte]int, len(existing))

	out := make([]infoEntry, len(existing))
	copy(out, existing)

	for i, e := range out {
		byMarker[e.Marker] = i
	}

	for _, slot := range fieldSlots {
		if slot.InfoTag == ([4]byte{}) {
			continue
		}

		value := slot.Get(&meta)
		if value == "" {
			continue
		}

		if idx, ok := byMarker[slot.InfoTag]; ok {
			if out[idx].Value != "" {
				continue
			}

			out[idx].Value = value

			continue
		}

		byMarker[slot.InfoTag] = len(out)
		out = append(out, infoEntry{Marker: slot.InfoTag, Value: value})
	}

	return out
}

// applyListInfoFallback copies non-empty LIST-INFO values into meta for any
// mapped field still empty, per the read-side fallback in spec §4.3.5. BEXT
// takes precedence over INFO, so Open runs this after applyBextFallback and
// fields BEXT already filled are left alone.
func applyListInfoFallback(meta *ChunkMetadata, entries []infoEntry) {
	byMarker := make(map[[4]byte]string, len(entries))
	for _, e := range entries {
		if e.Value != "" {
			byMarker[e.Marker] = e.Value
		}
	}

	for _, slot := range fieldSlots {
		if slot.InfoTag == ([4]byte{}) {
			continue
		}

		if slot.Get(meta) != "" {
			continue
		}

		if v, ok := byMarker[slot.InfoTag]; ok {
			slot.Set(meta, v)
		}
	}
}
