package wav

import (
	"fmt"
	"io"
	"os"

	"github.com/nomenaudio/corewav/filehash"
)

// File is a parsed snapshot of a WAV file's structural and descriptive
// metadata, produced by Open. It holds no audio payload.
type File struct {
	Path string

	Technical TechnicalInfo
	Metadata  ChunkMetadata

	// RawChunks lists every chunk this package doesn't interpret (cue ,
	// smpl, axml, vendor blocks, and the like), in file order, for
	// inspection tooling. fmt , data, bext, iXML, and LIST-INFO are
	// omitted here since they're already represented above. Payloads
	// larger than rawChunkCaptureLimit are recorded with nil Data: they're
	// still preserved byte-for-byte by Rewrite, just not loaded for
	// inspection.
	RawChunks []RawChunk

	hash     string
	bext     *BroadcastExtension
	ixmlRoot *ixmlNode
	listInfo []infoEntry
}

// Hash is the stable fingerprint of the file as it was when Open read it.
// Rewrite re-checks this before writing, so a concurrent external edit is
// caught instead of silently overwritten.
func (f *File) Hash() string {
	return f.hash
}

// Open parses path into a File. It validates the RIFF/WAVE structure
// (spec §4.3's declared-size rule) and reads every bext, iXML, and
// LIST-INFO chunk payload into memory; fmt  is read for technical metadata.
// The data chunk is only located, never read. Any other chunk is read into
// RawChunks when its payload is at most rawChunkCaptureLimit bytes.
func Open(path string) (*File, error) {
	src, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	declared, err := readOuterHeader(src)
	if err != nil {
		return nil, err
	}

	if err := validateDeclaredSize(path, declared); err != nil {
		return nil, err
	}

	result := &File{Path: path, Metadata: ChunkMetadata{CustomFields: map[string]string{}}}

	var (
		fmtChunk    *FmtChunk
		dataSize    int64
		bext        *BroadcastExtension
		ixmlRoot    *ixmlNode
		listEntries []infoEntry
		sawData     bool
	)

	walkErr := walkChunks(src, 12, func(desc ChunkDescriptor, payload io.Reader) error {
		switch desc.FourCC {
		case cidFmt:
			buf := make([]byte, desc.PayloadSize)
			if _, err := io.ReadFull(payload, buf); err != nil {
				return fmt.Errorf("read fmt chunk: %w", err)
			}

			fmtChunk = decodeFmtChunk(buf)

		case cidData:
			dataSize = int64(desc.PayloadSize)
			sawData = true

		case cidBext:
			buf := make([]byte, desc.PayloadSize)
			if _, err := io.ReadFull(payload, buf); err != nil {
				return fmt.Errorf("read bext chunk: %w", err)
			}

			bext = decodeBext(buf)

		case cidIXML:
			buf := make([]byte, desc.PayloadSize)
			if _, err := io.ReadFull(payload, buf); err != nil {
				return fmt.Errorf("read iXML chunk: %w", err)
			}

			root, meta, err := readIXML(buf)
			if err != nil {
				return fmt.Errorf("parse iXML chunk: %w", err)
			}

			ixmlRoot = root
			result.Metadata = meta

		case cidList:
			if desc.PayloadSize < 4 {
				return nil
			}

			buf := make([]byte, desc.PayloadSize)
			if _, err := io.ReadFull(payload, buf); err != nil {
				return fmt.Errorf("read LIST chunk: %w", err)
			}

			if [4]byte(buf[0:4]) == cidInfo {
				listEntries = decodeListInfo(buf)
				return nil
			}

			result.RawChunks = append(result.RawChunks, captureRawChunk(desc, payload, len(result.RawChunks), !sawData))

		default:
			result.RawChunks = append(result.RawChunks, captureRawChunk(desc, payload, len(result.RawChunks), !sawData))
		}

		return nil
	})
	if walkErr != nil {
		return nil, walkErr
	}

	if result.Metadata.CustomFields == nil {
		result.Metadata.CustomFields = map[string]string{}
	}

	// Read-side fallback per spec §4.3.5: BEXT takes precedence over
	// LIST-INFO, so BEXT fills empty fields first and INFO only fills what
	// is still empty after that.
	applyBextFallback(&result.Metadata, bext)
	applyListInfoFallback(&result.Metadata, listEntries)

	result.bext = bext
	result.ixmlRoot = ixmlRoot
	result.listInfo = listEntries

	if fmtChunk != nil {
		result.Technical = TechnicalInfo{
			SampleRate: fmtChunk.SampleRate,
			BitDepth:   fmtChunk.BitsPerSample,
			Channels:   fmtChunk.NumChannels,
			FormatCode: fmtChunk.EffectiveFormatTag(),
		}

		if fmtChunk.BlockAlign > 0 {
			result.Technical.FrameCount = dataSize / int64(fmtChunk.BlockAlign)
		}

		result.Technical.Duration = frameDuration(result.Technical.FrameCount, fmtChunk.SampleRate)
	}

	if info, statErr := os.Stat(path); statErr == nil {
		result.Technical.ByteSize = info.Size()
	}

	hash, err := filehash.Compute(path)
	if err != nil {
		return nil, fmt.Errorf("hash %s: %w", path, err)
	}

	result.hash = hash

	return result, nil
}

// rawChunkCaptureLimit bounds how large an uninterpreted chunk's payload
// this package will buffer for File.RawChunks; larger ones are still
// located and preserved by Rewrite, just not read into memory here.
const rawChunkCaptureLimit = 1 << 20 // 1MiB

func captureRawChunk(desc ChunkDescriptor, payload io.Reader, order int, beforeData bool) RawChunk {
	chunk := RawChunk{ID: desc.FourCC, Size: desc.PayloadSize, Order: order, BeforeData: beforeData}

	if desc.PayloadSize > rawChunkCaptureLimit {
		return chunk
	}

	buf := make([]byte, desc.PayloadSize)
	if _, err := io.ReadFull(payload, buf); err == nil {
		chunk.Data = buf
	}

	return chunk
}
