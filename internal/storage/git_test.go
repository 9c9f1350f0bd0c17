package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danieljhkim/stratum/internal/fsops"
)

// requireGit skips the test when git is not installed.
func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// gitOutput runs a read-only git command against a bare store.
func gitOutput(t *testing.T, location string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", append([]string{"--git-dir=" + location}, args...)...)
	out, err := cmd.Output()
	if err != nil {
		t.Fatalf("git %v failed: %v", args, err)
	}
	return strings.TrimSpace(string(out))
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
}

func newQuietStore() *GitStore {
	g := NewGitStore(fsops.NewRealFS())
	g.Stdin = strings.NewReader("")
	g.Stdout = &bytes.Buffer{}
	g.Stderr = &bytes.Buffer{}
	return g
}

func TestGitStore_Init(t *testing.T) {
	requireGit(t)
	store := newQuietStore()
	ctx := context.Background()

	t.Run("creates bare repository", func(t *testing.T) {
		location := filepath.Join(t.TempDir(), "dotfiles.git")
		if err := store.Init(ctx, location); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		if got := gitOutput(t, location, "rev-parse", "--is-bare-repository"); got != "true" {
			t.Errorf("is-bare-repository = %q, want true", got)
		}
	})

	t.Run("refuses existing directory", func(t *testing.T) {
		location := t.TempDir()
		err := store.Init(ctx, location)
		if !errors.Is(err, ErrStorageExists) {
			t.Errorf("expected ErrStorageExists, got %v", err)
		}
	})

	t.Run("refuses existing file", func(t *testing.T) {
		location := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(location, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		err := store.Init(ctx, location)
		if !errors.Is(err, ErrStorageExists) {
			t.Errorf("expected ErrStorageExists, got %v", err)
		}
	})

	t.Run("refuses dangling symlink", func(t *testing.T) {
		dir := t.TempDir()
		location := filepath.Join(dir, "dotfiles.git")
		if err := os.Symlink(filepath.Join(dir, "missing"), location); err != nil {
			t.Skipf("symlinks not supported: %v", err)
		}
		err := store.Init(ctx, location)
		if !errors.Is(err, ErrStorageExists) {
			t.Errorf("expected ErrStorageExists, got %v", err)
		}
	})
}

func TestGitStore_InitChecksThroughFS(t *testing.T) {
	fs := fsops.NewMemFS()
	if err := fs.MkdirAll("/home/me/.dotfiles.git", 0755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}

	// The location exists only in memory, so git is never reached.
	store := NewGitStore(fs)
	store.Binary = "/nonexistent/git"

	err := store.Init(context.Background(), "/home/me/.dotfiles.git")
	if !errors.Is(err, ErrStorageExists) {
		t.Errorf("expected ErrStorageExists, got %v", err)
	}
}

func TestGitStore_StageAndCommit(t *testing.T) {
	requireGit(t)
	store := newQuietStore()
	ctx := context.Background()

	location := filepath.Join(t.TempDir(), "dotfiles.git")
	if err := store.Init(ctx, location); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	first := t.TempDir()
	writeTree(t, first, map[string]string{
		".bashrc":            "base\nchild\n",
		".config/git/config": "[user]\n",
	})

	if err := store.StageAndCommit(ctx, location, first, "crafted from child", &DefaultAuthor); err != nil {
		t.Fatalf("StageAndCommit failed: %v", err)
	}

	if got := gitOutput(t, location, "log", "-1", "--format=%an <%ae>|%s"); got != "stratum <stratum@localhost>|crafted from child" {
		t.Errorf("commit = %q", got)
	}
	if got := gitOutput(t, location, "show", "HEAD:.bashrc"); got != "base\nchild" {
		t.Errorf(".bashrc = %q", got)
	}

	t.Run("records deletions", func(t *testing.T) {
		second := t.TempDir()
		writeTree(t, second, map[string]string{".bashrc": "base\n"})

		if err := store.StageAndCommit(ctx, location, second, "crafted from base", &DefaultAuthor); err != nil {
			t.Fatalf("StageAndCommit failed: %v", err)
		}
		if got := gitOutput(t, location, "ls-tree", "-r", "--name-only", "HEAD"); got != ".bashrc" {
			t.Errorf("tree = %q, want only .bashrc", got)
		}

		t.Run("allows empty commits", func(t *testing.T) {
			if err := store.StageAndCommit(ctx, location, second, "crafted from base", &DefaultAuthor); err != nil {
				t.Fatalf("StageAndCommit failed: %v", err)
			}
			if got := gitOutput(t, location, "rev-list", "--count", "HEAD"); got != "3" {
				t.Errorf("commit count = %q, want 3", got)
			}
		})
	})
}

func TestGitStore_StageAndCommitMissingStore(t *testing.T) {
	requireGit(t)
	store := newQuietStore()

	err := store.StageAndCommit(context.Background(), filepath.Join(t.TempDir(), "missing.git"), t.TempDir(), "msg", &DefaultAuthor)
	if err == nil {
		t.Fatal("expected error for missing store")
	}

	var cmdErr *CommandError
	if !errors.As(err, &cmdErr) {
		t.Errorf("expected CommandError, got %T: %v", err, err)
	}
}

func TestGitStore_Raw(t *testing.T) {
	requireGit(t)
	store := newQuietStore()
	ctx := context.Background()

	location := filepath.Join(t.TempDir(), "dotfiles.git")
	if err := store.Init(ctx, location); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	tree := t.TempDir()
	writeTree(t, tree, map[string]string{"rc": "x\n"})
	if err := store.StageAndCommit(ctx, location, tree, "first", &DefaultAuthor); err != nil {
		t.Fatalf("StageAndCommit failed: %v", err)
	}

	var out bytes.Buffer
	store.Stdout = &out
	if err := store.Raw(ctx, location, tree, "log", "--format=%s"); err != nil {
		t.Fatalf("Raw failed: %v", err)
	}
	if got := strings.TrimSpace(out.String()); got != "first" {
		t.Errorf("Raw output = %q, want %q", got, "first")
	}
}

func TestCommandError(t *testing.T) {
	inner := errors.New("exit status 128")
	err := &CommandError{Args: []string{"commit"}, Stderr: "fatal: nope", Err: inner}

	if !errors.Is(err, inner) {
		t.Error("CommandError should unwrap to the process error")
	}
	if !strings.Contains(err.Error(), "fatal: nope") {
		t.Errorf("Error() = %q, want stderr included", err.Error())
	}
}
