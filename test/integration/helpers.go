// Package integration exercises the engine end to end against the real
// filesystem and a real git binary.
package integration

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/danieljhkim/stratum/internal/config"
	"github.com/danieljhkim/stratum/internal/engine"
	"github.com/danieljhkim/stratum/internal/fsops"
	"github.com/danieljhkim/stratum/internal/hash"
	"github.com/danieljhkim/stratum/internal/profiles"
	"github.com/danieljhkim/stratum/internal/storage"
)

// testEnv holds the directories of one end-to-end run.
type testEnv struct {
	root     string
	profiles string
	storage  string
	staging  string
	eng      *engine.Engine
}

// setupTestEngine writes files (slash paths relative to the profiles
// directory) and wires an engine with real implementations around them.
func setupTestEngine(t *testing.T, files map[string]string) *testEnv {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	root := t.TempDir()
	env := &testEnv{
		root:     root,
		profiles: filepath.Join(root, "profiles"),
		storage:  filepath.Join(root, "store.git"),
		staging:  filepath.Join(root, "tmp"),
	}

	for rel, content := range files {
		path := filepath.Join(env.profiles, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("failed to create dir: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
	}
	if err := os.MkdirAll(env.staging, 0755); err != nil {
		t.Fatalf("failed to create staging parent: %v", err)
	}

	fs := fsops.NewRealFS()
	paths := config.Paths{
		Storage:     env.storage,
		Destination: filepath.Join(root, "home"),
		Profiles:    env.profiles,
	}
	env.eng = engine.New(
		fs,
		profiles.NewFileRepo(fs, env.profiles),
		storage.NewGitStore(fs),
		hash.NewSHA256Hasher(fs),
		paths,
		&storage.DefaultAuthor,
	)
	env.eng.SetStagingParent(env.staging)

	return env
}

// show returns the content of path in the store's HEAD commit.
func (e *testEnv) show(t *testing.T, path string) string {
	t.Helper()

	out, err := exec.Command("git", "--git-dir", e.storage, "show", "HEAD:"+path).Output()
	if err != nil {
		t.Fatalf("git show HEAD:%s error = %v", path, err)
	}
	return string(out)
}

// commitCount returns the number of commits reachable from HEAD.
func (e *testEnv) commitCount(t *testing.T) int {
	t.Helper()

	out, err := exec.Command("git", "--git-dir", e.storage, "rev-list", "--count", "HEAD").Output()
	if err != nil {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(out)))
	if err != nil {
		t.Fatalf("unexpected rev-list output %q", out)
	}
	return n
}

// assertStagingClean fails if any staging tree was left behind.
func (e *testEnv) assertStagingClean(t *testing.T) {
	t.Helper()

	entries, err := os.ReadDir(e.staging)
	if err != nil {
		t.Fatalf("failed to read staging parent: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no staging trees, found %d", len(entries))
	}
}
