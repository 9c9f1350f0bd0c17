package storage

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/danieljhkim/stratum/internal/fsops"
)

// Commit is a commit recorded by FakeStore.
type Commit struct {
	Location string
	Message  string
	Author   *Author

	// Files maps staged paths (slash-separated, relative to the tree) to content.
	Files map[string]string
}

// FakeStore implements Store in memory for testing.
// StageAndCommit snapshots the tree, since callers remove it afterwards.
type FakeStore struct {
	fs        fsops.FS
	Commits   []Commit
	Checkouts []string
	RawCalls  [][]string
	err       error
}

// NewFakeStore creates a FakeStore that reads trees through fs.
func NewFakeStore(fs fsops.FS) *FakeStore {
	return &FakeStore{fs: fs}
}

// SetError sets an error to be returned by all methods.
func (f *FakeStore) SetError(err error) {
	f.err = err
}

// Init records a new store and creates its directory.
func (f *FakeStore) Init(ctx context.Context, location string) error {
	if f.err != nil {
		return f.err
	}
	exists, err := f.fs.Exists(location)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrStorageExists, location)
	}
	return f.fs.MkdirAll(location, 0755)
}

// StageAndCommit snapshots tree into a new Commit.
func (f *FakeStore) StageAndCommit(ctx context.Context, location, tree, message string, author *Author) error {
	if f.err != nil {
		return f.err
	}

	files := make(map[string]string)
	if err := f.snapshot(tree, "", files); err != nil {
		return err
	}

	f.Commits = append(f.Commits, Commit{
		Location: location,
		Message:  message,
		Author:   author,
		Files:    files,
	})
	return nil
}

func (f *FakeStore) snapshot(root, rel string, files map[string]string) error {
	entries, err := f.fs.ReadDir(filepath.Join(root, rel))
	if err != nil {
		return err
	}
	for _, e := range entries {
		entryRel := filepath.Join(rel, e.Name())
		if e.IsDir() {
			if err := f.snapshot(root, entryRel, files); err != nil {
				return err
			}
			continue
		}
		data, err := f.fs.ReadFile(filepath.Join(root, entryRel))
		if err != nil {
			return err
		}
		files[filepath.ToSlash(entryRel)] = string(data)
	}
	return nil
}

// CheckoutInteractive records the destination.
func (f *FakeStore) CheckoutInteractive(ctx context.Context, location, destination string) error {
	if f.err != nil {
		return f.err
	}
	f.Checkouts = append(f.Checkouts, destination)
	return nil
}

// Raw records the arguments.
func (f *FakeStore) Raw(ctx context.Context, location, tree string, args ...string) error {
	if f.err != nil {
		return f.err
	}
	f.RawCalls = append(f.RawCalls, append([]string{location, tree}, args...))
	return nil
}

// LastCommit returns the most recent commit or nil.
func (f *FakeStore) LastCommit() *Commit {
	if len(f.Commits) == 0 {
		return nil
	}
	return &f.Commits[len(f.Commits)-1]
}

var _ Store = (*FakeStore)(nil)
var _ Store = (*GitStore)(nil)
