package wav

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"github.com/nomenaudio/corewav/corerr"
	"github.com/nomenaudio/corewav/filehash"
	"github.com/nomenaudio/corewav/internal/atomicfile"
)

// streamBufferSize bounds every chunk copy so rewriting a multi-gigabyte
// WAV file never holds more than this much of its audio payload in memory
// at once (spec §4.3.4).
const streamBufferSize = 1 << 20 // 1MiB

// RewriteOptions configures a single Rewrite call.
type RewriteOptions struct {
	// ExpectedHash is the fingerprint the caller last observed for this
	// file (normally FileRecord.file_hash). If the file on disk no longer
	// matches, Rewrite aborts with corerr.FileChanged before touching
	// anything.
	ExpectedHash string

	// RenameTo, if non-empty, is the new base filename (no directory
	// component) to rename the file to after a successful write. Empty
	// means no rename.
	RenameTo string
}

// RewriteResult reports what Rewrite actually did.
type RewriteResult struct {
	FinalPath string
	NewHash   string
	// RenameErr is set when the content write succeeded but the trailing
	// rename (RewriteOptions.RenameTo) failed; the file is already saved
	// at its original path.
	RenameErr error
}

// Rewrite atomically applies meta to the WAV file at f.Path, preserving
// every chunk this package doesn't understand byte-for-byte, per the
// protocol in spec §4.3.4:
//
//  1. Re-check the file's fingerprint against opts.ExpectedHash.
//  2. If renaming, check the destination name doesn't already exist.
//  3. Stream the source into a temp file in the same directory, patching
//     only bext, iXML, and LIST-INFO payloads; everything else is copied
//     in bounded chunks without ever buffering the whole file.
//  4. fsync and rename the temp file into place.
//  5. Optionally rename to the new target name.
//  6. Re-read the result and verify every field that was supposed to be
//     written actually was.
//
// ctx is checked once, before any of this begins; once the write starts it
// runs to completion or failure without a mid-write cancellation point,
// since a half-written WAV file is worse than a slow one.
func (f *File) Rewrite(ctx context.Context, meta ChunkMetadata, opts RewriteOptions) (*RewriteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	currentHash, err := filehash.Compute(f.Path)
	if err != nil {
		return nil, corerr.New(corerr.FileNotFound, "rewrite", err)
	}

	if currentHash != opts.ExpectedHash {
		return nil, corerr.New(corerr.FileChanged, "rewrite", nil)
	}

	var targetPath string

	if opts.RenameTo != "" && opts.RenameTo != filepath.Base(f.Path) {
		targetPath = filepath.Join(filepath.Dir(f.Path), opts.RenameTo)

		if _, statErr := os.Stat(targetPath); statErr == nil {
			return nil, corerr.New(corerr.RenameConflict, "rewrite", nil)
		} else if !errors.Is(statErr, fs.ErrNotExist) {
			return nil, corerr.New(corerr.WriteFailed, "rewrite", statErr)
		}
	}

	tmp, err := atomicfile.New(f.Path)
	if err != nil {
		return nil, mapWriteError("rewrite", err)
	}

	if writeErr := f.streamRewrite(tmp, meta); writeErr != nil {
		atomicfile.Abort(tmp)
		return nil, mapWriteError("rewrite", writeErr)
	}

	if err := atomicfile.Commit(tmp, f.Path); err != nil {
		return nil, mapWriteError("rewrite", err)
	}

	result := &RewriteResult{FinalPath: f.Path}

	if targetPath != "" {
		if err := os.Rename(f.Path, targetPath); err != nil {
			result.RenameErr = err
		} else {
			result.FinalPath = targetPath
		}
	}

	verifyErr := verifyWrite(result.FinalPath, meta)
	if verifyErr != nil {
		return nil, corerr.New(corerr.WriteFailed, "rewrite", verifyErr)
	}

	newHash, err := filehash.Compute(result.FinalPath)
	if err != nil {
		return nil, corerr.New(corerr.WriteFailed, "rewrite", err)
	}

	result.NewHash = newHash

	return result, nil
}

// streamRewrite performs the single-pass walk-and-copy step of Rewrite,
// writing into tmp. It never touches f.Path or renames anything.
func (f *File) streamRewrite(tmp *os.File, meta ChunkMetadata) error {
	src, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	declared, err := readOuterHeader(src)
	if err != nil {
		return err
	}

	if err := validateDeclaredSize(f.Path, declared); err != nil {
		return err
	}

	// Placeholder outer header; patched once the final size is known.
	if _, err := tmp.Write(append(append([]byte{}, cidRIFF[:]...), 0, 0, 0, 0)); err != nil {
		return fmt.Errorf("write outer header: %w", err)
	}

	if _, err := tmp.Write(cidWAVE[:]); err != nil {
		return fmt.Errorf("write WAVE form: %w", err)
	}

	var (
		written      int64
		sawBext      bool
		sawIXML      bool
		sawListInfo  bool
		streamBuffer = make([]byte, streamBufferSize)
	)

	walkErr := walkChunks(src, 12, func(desc ChunkDescriptor, payload io.Reader) error {
		switch desc.FourCC {
		case cidBext:
			sawBext = true

			buf := make([]byte, desc.PayloadSize)
			if _, err := io.ReadFull(payload, buf); err != nil {
				return fmt.Errorf("read bext chunk: %w", err)
			}

			merged := mergeBext(decodeBext(buf), meta)
			n, err := writeChunk(tmp, cidBext, encodeBext(merged))
			written += n

			return err

		case cidIXML:
			sawIXML = true

			buf := make([]byte, desc.PayloadSize)
			if _, err := io.ReadFull(payload, buf); err != nil {
				return fmt.Errorf("read iXML chunk: %w", err)
			}

			root, _, parseErr := readIXML(buf)
			if parseErr != nil {
				// Not a document this package can merge into; preserve it
				// byte-for-byte rather than fail the whole rewrite.
				n, err := writeChunk(tmp, cidIXML, buf)
				written += n

				return err
			}

			newPayload, encErr := writeIXML(root, meta)
			if encErr != nil {
				return fmt.Errorf("encode iXML chunk: %w", encErr)
			}

			n, err := writeChunk(tmp, cidIXML, newPayload)
			written += n

			return err

		case cidList:
			if desc.PayloadSize < 4 {
				n, err := streamChunk(tmp, streamBuffer, desc, payload)
				written += n

				return err
			}

			buf := make([]byte, desc.PayloadSize)
			if _, err := io.ReadFull(payload, buf); err != nil {
				return fmt.Errorf("read LIST chunk: %w", err)
			}

			if [4]byte(buf[0:4]) != cidInfo {
				n, err := writeChunk(tmp, cidList, buf)
				written += n

				return err
			}

			sawListInfo = true

			merged := mergeListInfo(decodeListInfo(buf), meta)
			n, err := writeChunk(tmp, cidList, encodeListInfo(merged))
			written += n

			return err

		default:
			n, err := streamChunk(tmp, streamBuffer, desc, payload)
			written += n

			return err
		}
	})
	if walkErr != nil {
		return walkErr
	}

	if !sawBext && (meta.Description != "" || meta.Designer != "") {
		n, err := writeChunk(tmp, cidBext, encodeBext(mergeBext(nil, meta)))
		written += n

		if err != nil {
			return err
		}
	}

	if !sawIXML && hasAnyMetadata(meta) {
		payload, err := writeIXML(nil, meta)
		if err != nil {
			return fmt.Errorf("encode iXML chunk: %w", err)
		}

		n, err := writeChunk(tmp, cidIXML, payload)
		written += n

		if err != nil {
			return err
		}
	}

	if !sawListInfo && hasInfoMappedMetadata(meta) {
		n, err := writeChunk(tmp, cidList, encodeListInfo(mergeListInfo(nil, meta)))
		written += n

		if err != nil {
			return err
		}
	}

	// Patch the RIFF size: everything after the 8-byte id+size field,
	// which is the WAVE form tag (4 bytes) plus every chunk written.
	var sizeField [4]byte
	binary.LittleEndian.PutUint32(sizeField[:], uint32(4+written))

	if _, err := tmp.WriteAt(sizeField[:], 4); err != nil {
		return fmt.Errorf("patch RIFF size: %w", err)
	}

	return nil
}

func hasAnyMetadata(meta ChunkMetadata) bool {
	for _, slot := range fieldSlots {
		if slot.Get(&meta) != "" {
			return true
		}
	}

	return len(meta.CustomFields) > 0
}

func hasInfoMappedMetadata(meta ChunkMetadata) bool {
	for _, slot := range fieldSlots {
		if slot.InfoTag != ([4]byte{}) && slot.Get(&meta) != "" {
			return true
		}
	}

	return false
}

// writeChunk writes a complete chunk (header, payload, pad byte) from an
// in-memory payload and returns the number of bytes written after the
// 12-byte outer header, i.e. the contribution to the RIFF size field.
func writeChunk(w io.Writer, id [4]byte, payload []byte) (int64, error) {
	var hdr [8]byte
	copy(hdr[0:4], id[:])
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(len(payload)))

	if _, err := w.Write(hdr[:]); err != nil {
		return 0, fmt.Errorf("write %q header: %w", id, err)
	}

	if _, err := w.Write(payload); err != nil {
		return 0, fmt.Errorf("write %q payload: %w", id, err)
	}

	total := int64(8 + len(payload))

	if len(payload)%2 == 1 {
		if _, err := w.Write([]byte{0}); err != nil {
			return 0, fmt.Errorf("write %q pad byte: %w", id, err)
		}

		total++
	}

	return total, nil
}

// streamChunk copies a chunk's header, payload, and pad byte from a
// bounded reader without buffering the whole payload in memory.
func streamChunk(w io.Writer, buf []byte, desc ChunkDescriptor, payload io.Reader) (int64, error) {
	var hdr [8]byte
	copy(hdr[0:4], desc.FourCC[:])
	binary.LittleEndian.PutUint32(hdr[4:8], desc.PayloadSize)

	if _, err := w.Write(hdr[:]); err != nil {
		return 0, fmt.Errorf("write %q header: %w", desc.FourCC, err)
	}

	n, err := io.CopyBuffer(w, payload, buf)
	if err != nil {
		return 0, fmt.Errorf("copy %q payload: %w", desc.FourCC, err)
	}

	total := int64(8) + n

	if desc.Padded() {
		if _, err := w.Write([]byte{0}); err != nil {
			return 0, fmt.Errorf("write %q pad byte: %w", desc.FourCC, err)
		}

		total++
	}

	return total, nil
}

// verifyWrite re-opens path and confirms the fields Rewrite was asked to
// set actually landed, per spec §4.3.4's post-write verification step.
func verifyWrite(path string, meta ChunkMetadata) error {
	got, err := Open(path)
	if err != nil {
		return fmt.Errorf("reopen for verification: %w", err)
	}

	for _, slot := range fieldSlots {
		want := slot.Get(&meta)
		if want == "" {
			continue
		}

		if got := slot.Get(&got.Metadata); got != want {
			return fmt.Errorf("field %s: wrote %q, read back %q", slot.Name, want, got)
		}
	}

	for k, want := range meta.CustomFields {
		if got.Metadata.CustomFields[k] != want {
			return fmt.Errorf("custom field %s: wrote %q, read back %q", k, want, got.Metadata.CustomFields[k])
		}
	}

	return nil
}

// mapWriteError classifies an I/O failure into the closed error-code set.
func mapWriteError(op string, err error) error {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return corerr.New(corerr.FileReadOnly, op, err)
	case errors.Is(err, fs.ErrNotExist):
		return corerr.New(corerr.FileNotFound, op, err)
	case errors.Is(err, syscall.ENOSPC):
		return corerr.New(corerr.DiskFull, op, err)
	default:
		var ce *corerr.Error
		if errors.As(err, &ce) {
			return ce
		}

		return corerr.New(corerr.WriteFailed, op, err)
	}
}
