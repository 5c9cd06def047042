package wav

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// ChunkDescriptor identifies one RIFF chunk within a file: its four-byte id,
// the byte offset of its 8-byte header within the file, and the size of its
// payload as declared in that header (excluding any pad byte).
type ChunkDescriptor struct {
	FourCC      [4]byte
	FileOffset  int64
	PayloadSize uint32
}

// Padded reports whether a single zero pad byte follows this chunk's
// payload, per RIFF's word-alignment rule.
func (c ChunkDescriptor) Padded() bool {
	return c.PayloadSize%2 == 1
}

// PaddedSize is the number of bytes this chunk occupies on disk after its
// 8-byte header: PayloadSize plus one byte if Padded.
func (c ChunkDescriptor) PaddedSize() int64 {
	if c.Padded() {
		return int64(c.PayloadSize) + 1
	}

	return int64(c.PayloadSize)
}

// readOuterHeader validates and consumes the 12-byte RIFF/WAVE header,
// returning the declared RIFF size (the byte count that follows this field,
// i.e. excluding the 4-byte "RIFF" id and the 4-byte size field itself).
func readOuterHeader(r io.Reader) (uint32, error) {
	var buf [12]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: read outer header: %v", ErrInvalidWAV, err)
	}

	if [4]byte(buf[0:4]) != cidRIFF || [4]byte(buf[8:12]) != cidWAVE {
		return 0, fmt.Errorf("%w: missing RIFF/WAVE signature", ErrInvalidWAV)
	}

	return binary.LittleEndian.Uint32(buf[4:8]), nil
}

// validateDeclaredSize enforces spec §4.3's one hard structural rule: the
// declared RIFF size, plus the 8 bytes of the id+size field it excludes,
// must not exceed the file's actual size; a declared size that overruns the
// file is rejected. Bytes past the declared size are not rejected here, but
// walkChunks reads to the physical end of the file, so they are walked as
// further chunks and a trailer too short for a chunk header fails the walk.
func validateDeclaredSize(path string, declaredSize uint32) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	if int64(declaredSize)+8 > info.Size() {
		return fmt.Errorf("%w: declared size %d exceeds file size %d", ErrInvalidWAV, declaredSize, info.Size())
	}

	return nil
}

// chunkVisitor is called once per chunk found after the 12-byte outer
// header. payload is bounded to exactly desc.PayloadSize bytes; the walker
// drains any unread remainder after the visitor returns, so a visitor may
// read as little or as much of it as it needs. Returning an error stops
// the walk.
type chunkVisitor func(desc ChunkDescriptor, payload io.Reader) error

// walkChunks reads sequential RIFF chunks from r, starting at file offset
// offset (the position r is already at), until EOF or an error.
func walkChunks(r io.Reader, offset int64, visit chunkVisitor) error {
	for {
		var hdr [8]byte

		if _, err := io.ReadFull(r, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("read chunk header at offset %d: %w", offset, err)
		}

		id := [4]byte(hdr[0:4])
		size := binary.LittleEndian.Uint32(hdr[4:8])
		desc := ChunkDescriptor{FourCC: id, FileOffset: offset, PayloadSize: size}

		lr := io.LimitReader(r, int64(size))
		if err := visit(desc, lr); err != nil {
			return err
		}

		if _, err := io.Copy(io.Discard, lr); err != nil {
			return fmt.Errorf("drain chunk %q: %w", id, err)
		}

		offset += 8 + int64(size)

		if desc.Padded() {
			var pad [1]byte

			if _, err := io.ReadFull(r, pad[:]); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}

				return fmt.Errorf("read pad byte for %q: %w", id, err)
			}

			offset++
		}
	}
}
