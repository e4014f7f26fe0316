package fsutil

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/moby/sys/atomicwriter"
)

// FS is the set of filesystem primitives synthesis relies on.
// Each call either fully succeeds or returns an error; WriteFile and CopyFile never
// leave a partially written destination behind.
type FS interface {
	// CopyFile copies src to dst, creating parent directories of dst
	CopyFile(src, dst string) error

	// RemoveAll removes path and everything below it; a missing path is not an error
	RemoveAll(path string) error

	// ReadFile returns the contents of path
	ReadFile(path string) ([]byte, error)

	// WriteFile atomically replaces path with data, creating parent directories
	WriteFile(path string, data []byte) error

	// Exists reports whether path exists
	Exists(path string) (bool, error)
}

// OSFS implements FS on the local filesystem
type OSFS struct{}

// NewOSFS creates a local filesystem adapter
func NewOSFS() *OSFS {
	return &OSFS{}
}

// CopyFile copies src to dst, replacing dst atomically and keeping src's permissions
func (OSFS) CopyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &MissingSourceError{Path: src}
		}
		return newIOError("open", src, err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return newIOError("stat", src, err)
	}
	if info.IsDir() {
		return newIOError("copy", src, errors.New("source is a directory"))
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return newIOError("read", src, err)
	}
	return writeAtomic(dst, data, info.Mode().Perm())
}

// RemoveAll removes path recursively
func (OSFS) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return newIOError("remove", path, err)
	}
	return nil
}

// ReadFile reads a whole file
func (OSFS) ReadFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, newIOError("read", path, err)
	}
	return data, nil
}

// WriteFile atomically replaces path with data
func (OSFS) WriteFile(path string, data []byte) error {
	return writeAtomic(path, data, 0644)
}


// Exists reports whether path exists
func (OSFS) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, fs.ErrNotExist):
		return false, nil
	default:
		return false, newIOError("stat", path, err)
	}
}

// writeAtomic creates the parent directories, then replaces path through a
// temporary file in the same directory
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return newIOError("mkdir", dir, err)
	}
	if err := atomicwriter.WriteFile(path, data, perm); err != nil {
		return newIOError("write", path, err)
	}
	return nil
}
