// Package storage is the version-controlled store that receives crafted trees.
//
// The store is a bare git repository. Crafted staging trees are committed to
// it with the tree as a temporary work tree; applying checks the latest
// commit out into a destination (normally the home directory) one hunk at a
// time. Nothing here coordinates concurrent invocations against the same
// store: git's own index lock is the only guard.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/danieljhkim/stratum/internal/fsops"
)

// ErrStorageExists indicates init was requested where something already exists.
var ErrStorageExists = errors.New("storage already exists")

// Author is the identity recorded on tool-generated commits.
type Author struct {
	Name  string
	Email string
}

// DefaultAuthor distinguishes crafted commits from manual ones.
var DefaultAuthor = Author{Name: "stratum", Email: "stratum@localhost"}

// Store provides operations on the version-controlled store.
type Store interface {
	// Init creates a fresh, empty store at location.
	// Fails with ErrStorageExists if anything is already there.
	Init(ctx context.Context, location string) error

	// StageAndCommit records tree as the store's new state and commits it,
	// even when nothing changed. A nil author uses git's configured identity.
	StageAndCommit(ctx context.Context, location, tree, message string, author *Author) error

	// CheckoutInteractive applies the store's latest commit onto destination,
	// prompting per hunk.
	CheckoutInteractive(ctx context.Context, location, destination string) error

	// Raw runs an arbitrary git command scoped to location and tree.
	Raw(ctx context.Context, location, tree string, args ...string) error
}

// CommandError is a failed git invocation.
type CommandError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += "\nstderr: " + e.Stderr
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// GitStore implements Store by running the git binary.
type GitStore struct {
	// Binary is the git executable (default "git").
	Binary string

	// Stdin, Stdout and Stderr are attached to interactive commands.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	fs fsops.FS
}

// NewGitStore creates a GitStore attached to the process's standard streams.
func NewGitStore(fs fsops.FS) *GitStore {
	return &GitStore{
		Binary: "git",
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		fs:     fs,
	}
}

func scope(location, tree string) []string {
	args := []string{"--git-dir=" + location}
	if tree != "" {
		args = append(args, "--work-tree="+tree)
	}
	return args
}

// run executes git and captures its output.
func (g *GitStore) run(ctx context.Context, args ...string) (string, error) {
	slog.Debug("running git", "args", args)

	cmd := exec.CommandContext(ctx, g.Binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &CommandError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}

	return strings.TrimSpace(stdout.String()), nil
}

// runAttached executes git with the configured streams, for interactive use.
func (g *GitStore) runAttached(ctx context.Context, args ...string) error {
	slog.Debug("running git (interactive)", "args", args)

	cmd := exec.CommandContext(ctx, g.Binary, args...)
	cmd.Stdin = g.Stdin
	cmd.Stdout = g.Stdout
	cmd.Stderr = g.Stderr

	if err := cmd.Run(); err != nil {
		return &CommandError{Args: args, Err: err}
	}
	return nil
}

// Init creates a bare repository at location.
func (g *GitStore) Init(ctx context.Context, location string) error {
	if _, err := g.fs.Lstat(location); err == nil {
		return fmt.Errorf("%w: %s", ErrStorageExists, location)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to check storage location: %w", err)
	}

	if _, err := g.run(ctx, append(scope(location, ""), "init", "--bare")...); err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	return nil
}

// StageAndCommit stages every change in tree and commits it.
func (g *GitStore) StageAndCommit(ctx context.Context, location, tree, message string, author *Author) error {
	if _, err := g.run(ctx, append(scope(location, tree), "add", "-A")...); err != nil {
		return fmt.Errorf("failed to stage tree: %w", err)
	}

	args := scope(location, tree)
	if author != nil {
		args = append(args,
			"-c", "user.name="+author.Name,
			"-c", "user.email="+author.Email,
		)
	}
	args = append(args, "commit", "--allow-empty", "-m", message)

	if _, err := g.run(ctx, args...); err != nil {
		return fmt.Errorf("failed to commit tree: %w", err)
	}
	return nil
}

// CheckoutInteractive runs `git checkout -p` against destination.
func (g *GitStore) CheckoutInteractive(ctx context.Context, location, destination string) error {
	return g.runAttached(ctx, append(scope(location, destination), "checkout", "-p")...)
}

// Raw runs args as a git command scoped to location and tree.
func (g *GitStore) Raw(ctx context.Context, location, tree string, args ...string) error {
	return g.runAttached(ctx, append(scope(location, tree), args...)...)
}
