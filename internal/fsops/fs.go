// Package fsops provides filesystem operations for stratum.
//
// All filesystem access in stratum goes through the FS interface. The
// production implementation is backed by the operating system through afero;
// tests use an in-memory afero filesystem with the same semantics.
//
// Key features:
//   - Directory listings are always sorted by name
//   - Append-only copies: file contents are never truncated
//   - Identifier validation for profile names
package fsops

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"
)

// FS provides an abstraction for filesystem operations.
// All filesystem access in stratum must go through this interface.
type FS interface {
	// Stat returns file info, following symlinks.
	Stat(path string) (os.FileInfo, error)

	// Lstat returns file info without following a final symlink.
	Lstat(path string) (os.FileInfo, error)

	// ReadDir lists a directory. Entries are sorted by name regardless of
	// the order the underlying filesystem returns them in.
	ReadDir(path string) ([]os.FileInfo, error)

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string, perm os.FileMode) error

	// AppendCopy appends the contents of src onto the end of dst,
	// creating dst with perm if it does not exist.
	AppendCopy(src, dst string, perm os.FileMode) error

	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// Exists checks if a path exists.
	Exists(path string) (bool, error)

	// IsDir reports whether path exists and is a directory.
	IsDir(path string) (bool, error)

	// TempDir creates a new temporary directory under dir (the system
	// default when empty) and returns its path.
	TempDir(dir, prefix string) (string, error)

	// RemoveAll removes a path and all its contents.
	RemoveAll(path string) error

	// ValidateIdentifier validates an identifier for safety.
	ValidateIdentifier(id string) error
}

// RealFS implements FS on top of an afero filesystem.
type RealFS struct {
	fs afero.Fs
}

// NewRealFS creates a RealFS backed by the operating system.
func NewRealFS() *RealFS {
	return &RealFS{fs: afero.NewOsFs()}
}

// NewMemFS creates a RealFS backed by memory. Used by tests.
func NewMemFS() *RealFS {
	return &RealFS{fs: afero.NewMemMapFs()}
}

// New wraps an arbitrary afero filesystem.
func New(fs afero.Fs) *RealFS {
	return &RealFS{fs: fs}
}

// Stat returns file info, following symlinks.
func (r *RealFS) Stat(path string) (os.FileInfo, error) {
	return r.fs.Stat(path)
}

// Lstat returns file info without following a final symlink. Filesystems
// without symlinks fall back to Stat.
func (r *RealFS) Lstat(path string) (os.FileInfo, error) {
	if l, ok := r.fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(path)
		return info, err
	}
	return r.fs.Stat(path)
}

// ReadDir lists a directory sorted by name.
func (r *RealFS) ReadDir(path string) ([]os.FileInfo, error) {
	entries, err := afero.ReadDir(r.fs, path)
	if err != nil {
		return nil, err
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Name() < entries[j].Name()
	})
	return entries, nil
}

// MkdirAll creates a directory and all parent directories.
func (r *RealFS) MkdirAll(path string, perm os.FileMode) error {
	return r.fs.MkdirAll(path, perm)
}

// AppendCopy appends the contents of src onto the end of dst.
func (r *RealFS) AppendCopy(src, dst string, perm os.FileMode) error {
	srcFile, err := r.fs.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open source: %w", err)
	}
	defer func() {
		_ = srcFile.Close()
	}()

	// O_APPEND without O_TRUNC: earlier contributions stay in place.
	dstFile, err := r.fs.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_APPEND, perm)
	if err != nil {
		return fmt.Errorf("failed to open destination: %w", err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return fmt.Errorf("failed to append file contents: %w", err)
	}

	return dstFile.Close()
}

// ReadFile reads the entire contents of a file.
func (r *RealFS) ReadFile(path string) ([]byte, error) {
	return afero.ReadFile(r.fs, path)
}

// Exists checks if a path exists.
func (r *RealFS) Exists(path string) (bool, error) {
	return afero.Exists(r.fs, path)
}

// IsDir reports whether path exists and is a directory.
func (r *RealFS) IsDir(path string) (bool, error) {
	return afero.DirExists(r.fs, path)
}

// TempDir creates a new temporary directory.
func (r *RealFS) TempDir(dir, prefix string) (string, error) {
	return afero.TempDir(r.fs, dir, prefix)
}

// RemoveAll removes a path and all its contents.
func (r *RealFS) RemoveAll(path string) error {
	return r.fs.RemoveAll(path)
}

// ValidateIdentifier validates an identifier (e.g., a profile name) for safety.
// Returns an error if the identifier contains invalid characters or path traversal attempts.
func (r *RealFS) ValidateIdentifier(id string) error {
	if id == "" {
		return fmt.Errorf("invalid identifier: empty")
	}

	if strings.Contains(id, string(filepath.Separator)) || strings.Contains(id, "/") || strings.Contains(id, "\\") {
		return fmt.Errorf("invalid identifier: must not contain path separators")
	}

	if id == "." || id == ".." || (strings.HasPrefix(id, ".") && len(id) > 1 && id[1] == '.') {
		return fmt.Errorf("invalid identifier: path traversal not allowed")
	}

	if strings.TrimSpace(id) != id {
		return fmt.Errorf("invalid identifier: leading or trailing whitespace")
	}

	return nil
}
