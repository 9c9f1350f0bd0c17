// Package compositor merges profile trees into a staging tree.
//
// Layers are applied in sequence. Directories merge transparently; files
// accumulate: each layer's bytes are appended after whatever earlier layers
// wrote at the same path. A path that is a file in one layer and a directory
// in another is a PathConflictError and aborts the composition, leaving the
// staging tree in a partial state the caller must discard.
//
// Symlinks inside a layer are not walked through: a link to a file
// contributes the file's content, a link to a directory only creates the
// directory.
package compositor

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/danieljhkim/stratum/internal/fsops"
)

// SkipName is the version-control directory ignored at any depth.
const SkipName = ".git"

// Compositor applies layers onto a staging tree.
type Compositor struct {
	fs fsops.FS
}

// New creates a Compositor.
func New(fs fsops.FS) *Compositor {
	return &Compositor{fs: fs}
}

// Compose applies every layer in order.
func (c *Compositor) Compose(staging string, layers []Layer) error {
	for _, layer := range layers {
		if err := c.ApplyLayer(staging, layer); err != nil {
			return err
		}
	}
	return nil
}

// ApplyLayer merges one layer's tree into staging.
func (c *Compositor) ApplyLayer(staging string, layer Layer) error {
	slog.Debug("applying layer", "layer", layer.String(), "root", layer.Root)

	info, err := c.fs.Stat(layer.Root)
	if err != nil {
		return fmt.Errorf("failed to stat layer %s: %w", layer, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("layer %s: %s is not a directory", layer, layer.Root)
	}

	return c.walk(staging, layer, "")
}

// walk merges the directory at rel (relative to the layer root).
func (c *Compositor) walk(staging string, layer Layer, rel string) error {
	entries, err := c.fs.ReadDir(filepath.Join(layer.Root, rel))
	if err != nil {
		return fmt.Errorf("failed to read %s in layer %s: %w", rel, layer, err)
	}

	for _, entry := range entries {
		if entry.Name() == SkipName {
			continue
		}

		entryRel := filepath.Join(rel, entry.Name())
		src := filepath.Join(layer.Root, entryRel)

		info, err := c.fs.Lstat(src)
		if err != nil {
			return fmt.Errorf("failed to stat %s in layer %s: %w", entryRel, layer, err)
		}

		// A linked file contributes its target's bytes. A linked directory
		// becomes a directory in staging but is never descended into.
		if info.Mode()&os.ModeSymlink != 0 {
			target, err := c.fs.Stat(src)
			if err != nil {
				return fmt.Errorf("failed to resolve link %s in layer %s: %w", entryRel, layer, err)
			}
			if target.IsDir() {
				if err := c.mergeDir(staging, layer, entryRel, target.Mode().Perm()); err != nil {
					return err
				}
				continue
			}
			info = target
		}

		if info.IsDir() {
			if err := c.mergeDir(staging, layer, entryRel, info.Mode().Perm()); err != nil {
				return err
			}
			if err := c.walk(staging, layer, entryRel); err != nil {
				return err
			}
			continue
		}

		if err := c.appendFile(staging, layer, entryRel, src, info.Mode().Perm()); err != nil {
			return err
		}
	}

	return nil
}

func (c *Compositor) mergeDir(staging string, layer Layer, rel string, perm os.FileMode) error {
	target := filepath.Join(staging, rel)

	existing, err := c.fs.Stat(target)
	switch {
	case err == nil && existing.IsDir():
		return nil
	case err == nil:
		return &PathConflictError{Profile: layer.String(), Path: rel, Expected: "directory", Found: "file"}
	case !os.IsNotExist(err):
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	if err := c.fs.MkdirAll(target, perm|0700); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", target, err)
	}
	return nil
}

func (c *Compositor) appendFile(staging string, layer Layer, rel, src string, perm os.FileMode) error {
	target := filepath.Join(staging, rel)

	existing, err := c.fs.Stat(target)
	if err == nil && existing.IsDir() {
		return &PathConflictError{Profile: layer.String(), Path: rel, Expected: "file", Found: "directory"}
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", target, err)
	}

	// Staged files stay owner-writable so later layers can append.
	if err := c.fs.AppendCopy(src, target, perm|0200); err != nil {
		return fmt.Errorf("failed to stage %s from layer %s: %w", rel, layer, err)
	}
	return nil
}
