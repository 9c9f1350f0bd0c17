// Package hash computes content digests of staged files.
//
// stratum reports a SHA-256 digest per staged path when a craft runs in
// dry-run mode, so two crafts can be compared byte for byte without
// committing either of them.
package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"path/filepath"

	"github.com/danieljhkim/stratum/internal/fsops"
)

// Hasher provides an abstraction for file hashing operations.
type Hasher interface {
	// HashFile computes the hash of the file at the given path.
	HashFile(path string) (string, error)
}

// SHA256Hasher implements Hasher using SHA-256.
type SHA256Hasher struct {
	fs fsops.FS
}

// NewSHA256Hasher creates a new SHA256Hasher reading through fs.
func NewSHA256Hasher(fs fsops.FS) *SHA256Hasher {
	return &SHA256Hasher{fs: fs}
}

// HashFile computes the SHA-256 hash of the file at the given path.
func (h *SHA256Hasher) HashFile(path string) (string, error) {
	data, err := h.fs.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file: %w", err)
	}
	return HashBytes(data), nil
}

// HashBytes returns the hex SHA-256 of data.
func HashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Entry is one file in a manifest.
type Entry struct {
	// Path is slash-separated and relative to the manifest root.
	Path string `json:"path"`
	Size int64  `json:"size"`
	Hash string `json:"sha256"`
}

// Manifest hashes every file under root, in sorted path order.
func Manifest(fs fsops.FS, h Hasher, root string) ([]Entry, error) {
	entries := []Entry{}
	if err := manifest(fs, h, root, "", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func manifest(fs fsops.FS, h Hasher, root, rel string, out *[]Entry) error {
	infos, err := fs.ReadDir(filepath.Join(root, rel))
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Join(root, rel), err)
	}

	for _, info := range infos {
		entryRel := filepath.Join(rel, info.Name())
		if info.IsDir() {
			if err := manifest(fs, h, root, entryRel, out); err != nil {
				return err
			}
			continue
		}

		sum, err := h.HashFile(filepath.Join(root, entryRel))
		if err != nil {
			return err
		}
		*out = append(*out, Entry{
			Path: filepath.ToSlash(entryRel),
			Size: info.Size(),
			Hash: sum,
		})
	}
	return nil
}

// Write renders a manifest as "<sha256>  <path>" lines, like sha256sum.
func Write(w io.Writer, entries []Entry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s  %s\n", e.Hash, e.Path); err != nil {
			return err
		}
	}
	return nil
}

// FakeHasher implements Hasher with deterministic hashes for testing.
type FakeHasher struct {
	hashes map[string]string
}

// NewFakeHasher creates a new FakeHasher.
func NewFakeHasher() *FakeHasher {
	return &FakeHasher{
		hashes: make(map[string]string),
	}
}

// SetHash sets the hash for a specific path (for testing).
func (h *FakeHasher) SetHash(path, hash string) {
	h.hashes[path] = hash
}

// HashFile returns the predetermined hash for the given path.
func (h *FakeHasher) HashFile(path string) (string, error) {
	if hash, ok := h.hashes[path]; ok {
		return hash, nil
	}
	return "fakehash", nil
}
