// Package config manages stratum configuration and filesystem paths.
//
// Settings come, in increasing priority, from built-in defaults, an optional
// YAML config file (~/.stratum.yaml), STRATUM_* environment variables and
// command-line flags. The defaults commit to ~/.dotfiles.git, apply into the
// home directory and read profiles from the current directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// DefaultStorageName is the store directory under the home directory.
	DefaultStorageName = ".dotfiles.git"

	// DefaultConfigName is the config file name under the home directory.
	DefaultConfigName = ".stratum.yaml"
)

// Paths contains all the filesystem paths used by stratum.
type Paths struct {
	// Storage is the bare git store receiving crafted trees (default: ~/.dotfiles.git)
	Storage string

	// Destination is where apply checks the store out (default: ~)
	Destination string

	// Profiles is the directory containing profiles and their sidecars (default: .)
	Profiles string

	// Config is the path to the config file
	Config string
}

// DefaultPaths returns the default paths for stratum.
func DefaultPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}

	return &Paths{
		Storage:     filepath.Join(home, DefaultStorageName),
		Destination: home,
		Profiles:    ".",
		Config:      filepath.Join(home, DefaultConfigName),
	}, nil
}

// Normalize expands a leading ~ and makes every path absolute.
func (p *Paths) Normalize() error {
	for _, field := range []*string{&p.Storage, &p.Destination, &p.Profiles} {
		expanded, err := ExpandHome(*field)
		if err != nil {
			return err
		}
		abs, err := filepath.Abs(expanded)
		if err != nil {
			return fmt.Errorf("failed to resolve path %s: %w", expanded, err)
		}
		*field = abs
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
