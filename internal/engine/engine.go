// Package engine provides the core operations of stratum.
//
// The engine is the orchestration layer between CLI commands and the
// lower-level packages. It resolves profile graphs, composes staging trees
// and hands them to the storage backend.
//
// Key operations:
//   - Init: create the store
//   - Resolve: compute a profile's layering order
//   - Craft: compose a profile and commit it to the store
//   - Apply / Git: interact with the store against the destination
//   - Graph: list every profile with its parents
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/danieljhkim/stratum/internal/compositor"
	"github.com/danieljhkim/stratum/internal/config"
	"github.com/danieljhkim/stratum/internal/fsops"
	"github.com/danieljhkim/stratum/internal/graph"
	"github.com/danieljhkim/stratum/internal/hash"
	"github.com/danieljhkim/stratum/internal/profiles"
	"github.com/danieljhkim/stratum/internal/storage"
)

// Engine orchestrates all stratum operations.
// It is the main API surface called by the CLI.
type Engine struct {
	fs         fsops.FS
	profiles   profiles.Repo
	compositor *compositor.Compositor
	store      storage.Store
	hasher     hash.Hasher
	paths      config.Paths
	author     *storage.Author

	// stagingParent is where staging trees are created ("" = system temp dir).
	stagingParent string
}

// New creates a new Engine with the given dependencies.
func New(
	fs fsops.FS,
	profileRepo profiles.Repo,
	store storage.Store,
	hasher hash.Hasher,
	paths config.Paths,
	author *storage.Author,
) *Engine {
	return &Engine{
		fs:         fs,
		profiles:   profileRepo,
		compositor: compositor.New(fs),
		store:      store,
		hasher:     hasher,
		paths:      paths,
		author:     author,
	}
}

// SetStagingParent sets the directory staging trees are created under.
func (e *Engine) SetStagingParent(dir string) {
	e.stagingParent = dir
}

// Init creates the store at the configured location.
func (e *Engine) Init(ctx context.Context, req *InitRequest) (*InitResult, error) {
	if err := e.store.Init(ctx, e.paths.Storage); err != nil {
		return nil, err
	}
	return &InitResult{Location: e.paths.Storage}, nil
}

// Resolve computes the layering order of a profile.
func (e *Engine) Resolve(ctx context.Context, req *ResolveRequest) (*ResolveResult, error) {
	if req.Profile == "" {
		return nil, fmt.Errorf("%w: profile name is required", ErrValidation)
	}

	exists, err := e.profiles.Exists(req.Profile)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if !exists {
		return nil, fmt.Errorf("%w: %w: %s", ErrNotFound, profiles.ErrProfileNotFound, req.Profile)
	}

	order, err := graph.Resolve(req.Profile, e.profiles.Parents)
	if err != nil {
		if errors.Is(err, profiles.ErrProfileNotFound) {
			return nil, fmt.Errorf("%w: %w", ErrNotFound, err)
		}
		return nil, err
	}

	layers, err := compositor.BuildLayers(order, e.profiles)
	if err != nil {
		return nil, fmt.Errorf("failed to build layers: %w", err)
	}

	return &ResolveResult{
		Profile: req.Profile,
		Order:   order,
		Layers:  layers,
	}, nil
}

// Apply checks the store's latest commit out into the destination, one hunk at a time.
func (e *Engine) Apply(ctx context.Context, req *ApplyRequest) error {
	if err := e.requireStorage(); err != nil {
		return err
	}
	return e.store.CheckoutInteractive(ctx, e.paths.Storage, e.paths.Destination)
}

// Git runs a git command scoped to the store and the destination.
func (e *Engine) Git(ctx context.Context, req *GitRequest) error {
	return e.store.Raw(ctx, e.paths.Storage, e.paths.Destination, req.Args...)
}

// Graph lists every profile in the profiles root with its declared parents.
func (e *Engine) Graph(ctx context.Context, req *GraphRequest) (*GraphResult, error) {
	names, err := e.profiles.List()
	if err != nil {
		return nil, err
	}

	nodes := make([]graph.Node, 0, len(names))
	for _, name := range names {
		parents, err := e.profiles.Parents(name)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, graph.Node{Name: name, Parents: parents})
	}

	return &GraphResult{Nodes: nodes}, nil
}

func (e *Engine) requireStorage() error {
	exists, err := e.fs.Exists(e.paths.Storage)
	if err != nil {
		return fmt.Errorf("failed to check storage: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s (run 'stratum init' first)", ErrStorageMissing, e.paths.Storage)
	}
	return nil
}
