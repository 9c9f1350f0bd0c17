// Package profiles reads profile directories and their sidecar files.
//
// A profile is a directory of configuration files living in a profiles root.
// Next to it, outside the directory itself, may live:
//   - <name>.parents: one parent profile name per line
//   - <name>.end: an end tree applied after all main layers
//
// Profiles are read-only inputs; nothing in this package writes to them.
package profiles

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/danieljhkim/stratum/internal/fsops"
)

const (
	// ParentsSuffix names the sidecar file listing a profile's parents.
	ParentsSuffix = ".parents"

	// EndSuffix names the end-overlay directory of a profile.
	EndSuffix = ".end"
)

// ErrProfileNotFound indicates a requested profile or ancestor is missing on disk.
var ErrProfileNotFound = errors.New("profile not found")

// Repo provides read access to the profiles root.
type Repo interface {
	// Exists checks if a profile directory with the given name exists.
	Exists(name string) (bool, error)

	// Parents returns the declared parents of a profile, sorted and deduplicated.
	Parents(name string) ([]string, error)

	// Root returns the path to the profile's main tree.
	Root(name string) string

	// EndRoot returns the path to the profile's end tree.
	EndRoot(name string) string

	// HasEnd reports whether the profile has an end tree.
	HasEnd(name string) (bool, error)

	// List returns all profile names in the profiles root, sorted.
	List() ([]string, error)
}

// FileRepo implements Repo using a directory on disk.
type FileRepo struct {
	fs   fsops.FS
	root string
}

// NewFileRepo creates a new FileRepo rooted at dir.
func NewFileRepo(fs fsops.FS, dir string) *FileRepo {
	return &FileRepo{
		fs:   fs,
		root: dir,
	}
}

// Root returns the path to the profile's main tree.
func (r *FileRepo) Root(name string) string {
	return filepath.Join(r.root, name)
}

// EndRoot returns the path to the profile's end tree.
func (r *FileRepo) EndRoot(name string) string {
	return filepath.Join(r.root, name+EndSuffix)
}

func (r *FileRepo) parentsPath(name string) string {
	return filepath.Join(r.root, name+ParentsSuffix)
}

// Exists checks if a profile directory with the given name exists.
func (r *FileRepo) Exists(name string) (bool, error) {
	if err := r.fs.ValidateIdentifier(name); err != nil {
		return false, fmt.Errorf("invalid profile name %q: %w", name, err)
	}
	return r.fs.IsDir(r.Root(name))
}

// Parents returns the declared parents of a profile.
// A profile without a sidecar has no parents.
func (r *FileRepo) Parents(name string) ([]string, error) {
	exists, err := r.Exists(name)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}

	path := r.parentsPath(name)
	ok, err := r.fs.Exists(path)
	if err != nil {
		return nil, fmt.Errorf("failed to check parents of %s: %w", name, err)
	}
	if !ok {
		return []string{}, nil
	}

	data, err := r.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parents of %s: %w", name, err)
	}

	return ParseParents(string(data)), nil
}

// ParseParents parses the contents of a parents sidecar.
func ParseParents(content string) []string {
	seen := make(map[string]bool)
	parents := []string{}
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || seen[line] {
			continue
		}
		seen[line] = true
		parents = append(parents, line)
	}
	sort.Strings(parents)
	return parents
}

// HasEnd reports whether the profile has an end tree.
// An end path that exists but is not a directory is an error.
func (r *FileRepo) HasEnd(name string) (bool, error) {
	path := r.EndRoot(name)
	exists, err := r.fs.Exists(path)
	if err != nil {
		return false, fmt.Errorf("failed to check end tree of %s: %w", name, err)
	}
	if !exists {
		return false, nil
	}

	isDir, err := r.fs.IsDir(path)
	if err != nil {
		return false, fmt.Errorf("failed to check end tree of %s: %w", name, err)
	}
	if !isDir {
		return false, fmt.Errorf("end tree %s is not a directory", path)
	}
	return true, nil
}

// List returns all profile names in the profiles root.
// Hidden directories and end trees are not profiles.
func (r *FileRepo) List() ([]string, error) {
	entries, err := r.fs.ReadDir(r.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	names := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() || strings.HasPrefix(name, ".") || strings.HasSuffix(name, EndSuffix) {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}
