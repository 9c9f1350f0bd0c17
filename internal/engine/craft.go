package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/danieljhkim/stratum/internal/hash"
)

// Craft composes a profile into a fresh staging tree and commits it to the store.
//
// The staging tree is removed on every exit path. On failure nothing is
// committed and the partial tree is discarded.
func (e *Engine) Craft(ctx context.Context, req *CraftRequest) (*CraftResult, error) {
	resolved, err := e.Resolve(ctx, &ResolveRequest{Profile: req.Profile})
	if err != nil {
		return nil, err
	}
	slog.Debug("resolved profile", "profile", req.Profile, "order", resolved.Order)

	if !req.DryRun {
		if err := e.requireStorage(); err != nil {
			return nil, err
		}
	}

	staging, err := e.fs.TempDir(e.stagingParent, "stratum-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging tree: %w", err)
	}
	defer func() {
		if rmErr := e.fs.RemoveAll(staging); rmErr != nil {
			slog.Warn("failed to remove staging tree", "path", staging, "error", rmErr)
		}
	}()

	if err := e.compositor.Compose(staging, resolved.Layers); err != nil {
		return nil, fmt.Errorf("failed to craft %s: %w", req.Profile, err)
	}

	result := &CraftResult{ResolveResult: *resolved}

	if req.DryRun {
		files, err := hash.Manifest(e.fs, e.hasher, staging)
		if err != nil {
			return nil, fmt.Errorf("failed to list staging tree: %w", err)
		}
		result.Files = files
		return result, nil
	}

	result.Message = "crafted from " + req.Profile
	if err := e.store.StageAndCommit(ctx, e.paths.Storage, staging, result.Message, e.author); err != nil {
		return nil, err
	}
	result.Committed = true

	slog.Debug("crafted profile", "profile", req.Profile, "layers", len(resolved.Layers))
	return result, nil
}
