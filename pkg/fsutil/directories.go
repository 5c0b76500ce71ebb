// Package fsutil provides shared filesystem helpers: permission constants,
// directory creation and file hashing.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnsureDir creates the directory path (and parents) if it does not exist.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, DirModeDefault); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// EnsureFileDir creates the parent directory of filePath if it does not exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}
