// Package fsutil provides file system utilities for safe and atomic file operations.
package fsutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// AtomicWrite streams a file into place atomically.
// write is handed a temporary file created next to path. Once it returns
// without error the temp file is synced, closed and renamed over path, so
// readers observe either the previous content or the new one, never a mix.
//
// Steps:
// 1. Create the parent directory with dirPerm if missing, then {dir}/.{base}.*.tmp
// 2. Let write fill it
// 3. Sync, chmod and close
// 4. Rename to {path}
// 5. Sync parent directory
func AtomicWrite(path string, dirPerm, perm os.FileMode, write func(w io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(dir, dirPerm); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	// Unique name so concurrent writers of different paths never share a temp file
	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := f.Name()

	fail := func(format string, err error) error {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf(format, err)
	}

	if err := write(f); err != nil {
		return fail("failed to write to temp file: %w", err)
	}

	if err := f.Sync(); err != nil {
		return fail("failed to sync temp file: %w", err)
	}

	if err := f.Chmod(perm); err != nil {
		return fail("failed to set temp file mode: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := SafeRename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	// Best effort: the file is already in place
	_ = syncDir(dir)

	return nil
}

// SafeRename renames a file safely.
// On Unix systems, os.Rename is atomic if src and dst are on the same filesystem.
func SafeRename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

// syncDir syncs a directory to disk.
// This ensures that directory metadata (like new file entries) is persisted.
func syncDir(dir string) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()

	return f.Sync()
}
