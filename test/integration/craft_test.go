package integration

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/danieljhkim/stratum/internal/compositor"
	"github.com/danieljhkim/stratum/internal/engine"
	"github.com/danieljhkim/stratum/internal/graph"
	"github.com/danieljhkim/stratum/internal/storage"
)

func TestCraft_FullCycle(t *testing.T) {
	env := setupTestEngine(t, map[string]string{
		"base/.gitconfig":      "[user]\n",
		"base/.bashrc":         "export EDITOR=vi\n",
		"base/.git/HEAD":       "ref: refs/heads/main\n",
		"work/.gitconfig":      "  email = me@work\n",
		"work/.config/app.ini": "mode=work\n",
		"work.parents":         "base\n",
	})
	ctx := context.Background()

	if _, err := env.eng.Init(ctx, &engine.InitRequest{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	result, err := env.eng.Craft(ctx, &engine.CraftRequest{Profile: "work"})
	if err != nil {
		t.Fatalf("Craft() error = %v", err)
	}
	if !result.Committed {
		t.Fatal("expected commit")
	}
	if result.Message != "crafted from work" {
		t.Errorf("message = %q", result.Message)
	}

	if got := env.show(t, ".gitconfig"); got != "[user]\n  email = me@work\n" {
		t.Errorf(".gitconfig = %q", got)
	}
	if got := env.show(t, ".bashrc"); got != "export EDITOR=vi\n" {
		t.Errorf(".bashrc = %q", got)
	}
	if got := env.show(t, ".config/app.ini"); got != "mode=work\n" {
		t.Errorf(".config/app.ini = %q", got)
	}

	out, _ := exec.Command("git", "--git-dir", env.storage, "ls-tree", "-r", "--name-only", "HEAD").Output()
	if strings.Contains(string(out), ".git/") {
		t.Errorf("expected .git entries to be skipped, tree = %q", out)
	}

	env.assertStagingClean(t)
}

func TestCraft_EndOverlaysAndDiamond(t *testing.T) {
	env := setupTestEngine(t, map[string]string{
		"root/f":        "root\n",
		"root.end/f":    "root-end\n",
		"left/f":        "left\n",
		"right/f":       "right\n",
		"top/f":         "top\n",
		"top.end/f":     "top-end\n",
		"left.parents":  "root\n",
		"right.parents": "root\n",
		"top.parents":   "right\nleft\n",
	})
	ctx := context.Background()

	if _, err := env.eng.Init(ctx, &engine.InitRequest{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if _, err := env.eng.Craft(ctx, &engine.CraftRequest{Profile: "top"}); err != nil {
		t.Fatalf("Craft() error = %v", err)
	}

	want := "root\nleft\nright\ntop\ntop-end\nroot-end\n"
	if got := env.show(t, "f"); got != want {
		t.Errorf("f = %q, want %q", got, want)
	}
}

func TestCraft_RecraftAddsCommit(t *testing.T) {
	env := setupTestEngine(t, map[string]string{
		"base/.vimrc": "set nu\n",
	})
	ctx := context.Background()

	if _, err := env.eng.Init(ctx, &engine.InitRequest{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := env.eng.Craft(ctx, &engine.CraftRequest{Profile: "base"}); err != nil {
			t.Fatalf("Craft() #%d error = %v", i+1, err)
		}
	}

	if n := env.commitCount(t); n != 2 {
		t.Errorf("commit count = %d, want 2", n)
	}
	if got := env.show(t, ".vimrc"); got != "set nu\n" {
		t.Errorf(".vimrc = %q", got)
	}
}

func TestCraft_CycleCommitsNothing(t *testing.T) {
	env := setupTestEngine(t, map[string]string{
		"a/x":       "a\n",
		"b/x":       "b\n",
		"a.parents": "b\n",
		"b.parents": "a\n",
	})
	ctx := context.Background()

	if _, err := env.eng.Init(ctx, &engine.InitRequest{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, err := env.eng.Craft(ctx, &engine.CraftRequest{Profile: "a"})
	var cycErr *graph.CyclicGraphError
	if !errors.As(err, &cycErr) {
		t.Fatalf("expected CyclicGraphError, got %v", err)
	}
	if got := strings.Join(cycErr.Cycle, " "); got != "a b a" {
		t.Errorf("cycle = %q, want %q", got, "a b a")
	}
	if n := env.commitCount(t); n != 0 {
		t.Errorf("commit count = %d, want 0", n)
	}
	env.assertStagingClean(t)
}

func TestCraft_PathConflictCleansUp(t *testing.T) {
	env := setupTestEngine(t, map[string]string{
		"base/.config":     "not a dir\n",
		"work/.config/app": "x\n",
		"work.parents":     "base\n",
	})
	ctx := context.Background()

	if _, err := env.eng.Init(ctx, &engine.InitRequest{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	_, err := env.eng.Craft(ctx, &engine.CraftRequest{Profile: "work"})
	if !errors.Is(err, compositor.ErrPathConflict) {
		t.Fatalf("expected path conflict, got %v", err)
	}
	if n := env.commitCount(t); n != 0 {
		t.Errorf("commit count = %d, want 0", n)
	}
	env.assertStagingClean(t)
}

func TestInit_ExistingLocation(t *testing.T) {
	env := setupTestEngine(t, map[string]string{"base/f": "x\n"})
	ctx := context.Background()

	if _, err := env.eng.Init(ctx, &engine.InitRequest{}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	_, err := env.eng.Init(ctx, &engine.InitRequest{})
	if !errors.Is(err, storage.ErrStorageExists) {
		t.Errorf("expected ErrStorageExists, got %v", err)
	}
}
