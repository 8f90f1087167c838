// Package storage performs the filesystem side of filing: serializing a
// message into its configured representation, writing it under the path the
// filing core decided, and deploying the folder-structure template when a
// new client folder is created.
package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

var (
	// ErrFileWriteFailed indicates file write operation failed
	ErrFileWriteFailed = errors.New("failed to write file")
	// ErrFolderCreateFailed indicates directory creation failed
	ErrFolderCreateFailed = errors.New("failed to create folder")
	// ErrEmptyFolderName indicates a client folder name sanitized to nothing
	ErrEmptyFolderName = errors.New("empty client folder name")
)

// ResolveUnderRoot turns a chosen folder path into an absolute one. Absolute
// paths pass through untouched; relative paths are anchored under root.
// Returns "" when the path is relative and no root is configured.
func ResolveUnderRoot(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if root == "" {
		return ""
	}
	return filepath.Join(root, filepath.FromSlash(path))
}

// Writer writes filed messages to disk.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// WriteFile writes data to absPath, creating intermediate directories as
// needed. The content goes through a temp file in the target directory and
// is renamed into place, so a crash never leaves a partial file under the
// final name.
func (w *Writer) WriteFile(absPath string, data []byte) error {
	dir := filepath.Dir(absPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("%w: %s", ErrFileWriteFailed, err.Error())
	}

	tmp, err := os.CreateTemp(dir, ".classeur-*")
	if err != nil {
		return fmt.Errorf("%w: %s", ErrFileWriteFailed, err.Error())
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s", ErrFileWriteFailed, err.Error())
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s", ErrFileWriteFailed, err.Error())
	}

	if err := os.Rename(tmpName, absPath); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: %s", ErrFileWriteFailed, err.Error())
	}
	return nil
}
