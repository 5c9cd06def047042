// Package atomicfile provides the "write to a temp file beside the target,
// fsync, then rename" discipline shared by the wav package's chunk rewrite
// and the settings package's JSON persistence. Renaming within the same
// directory is atomic on every filesystem this module targets, so a reader
// never observes a partially written file.
package atomicfile

import (
	"fmt"
	"os"
	"path/filepath"
)

// New creates a temp file in the same directory as finalPath, so the later
// rename is guaranteed to stay on one filesystem.
func New(finalPath string) (*os.File, error) {
	dir := filepath.Dir(finalPath)
	base := filepath.Base(finalPath)

	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return nil, fmt.Errorf("create temp file in %s: %w", dir, err)
	}

	return f, nil
}

// Commit fsyncs and closes tmp, then renames it onto finalPath. On any
// failure the temp file is removed and finalPath is left untouched.
func Commit(tmp *os.File, finalPath string) error {
	name := tmp.Name()

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(name)

		return fmt.Errorf("sync %s: %w", name, err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(name)
		return fmt.Errorf("close %s: %w", name, err)
	}

	if err := os.Rename(name, finalPath); err != nil {
		os.Remove(name)
		return fmt.Errorf("rename %s to %s: %w", name, finalPath, err)
	}

	return nil
}

// Abort closes and removes tmp without committing it.
func Abort(tmp *os.File) {
	name := tmp.Name()
	tmp.Close()
	os.Remove(name)
}
