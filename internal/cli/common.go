package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/danieljhkim/stratum/internal/config"
	"github.com/danieljhkim/stratum/internal/engine"
	"github.com/danieljhkim/stratum/internal/fsops"
	"github.com/danieljhkim/stratum/internal/hash"
	"github.com/danieljhkim/stratum/internal/profiles"
	"github.com/danieljhkim/stratum/internal/storage"
)

// loadSettings resolves settings from defaults, config file, environment and flags.
func loadSettings() (*config.Settings, error) {
	v, err := config.NewViper(cfgFile)
	if err != nil {
		return nil, err
	}

	if err := bindFlags(v, rootCmd.PersistentFlags()); err != nil {
		return nil, err
	}

	return config.Load(v)
}

// bindFlags binds every flag in fs that names a settings key, so an
// explicitly set flag overrides the environment and the config file.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		switch f.Name {
		case config.KeyStorage, config.KeyDestination, config.KeyProfiles, config.KeyVerbose:
			if bindErr := v.BindPFlag(f.Name, f); bindErr != nil {
				err = fmt.Errorf("failed to bind flag %s: %w", f.Name, bindErr)
			}
		}
	})
	return err
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine() (*engine.Engine, error) {
	settings, err := loadSettings()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if settings.Verbose {
		setupLogging(true)
	}
	slog.Debug("loaded settings", "storage", settings.Paths.Storage, "destination", settings.Paths.Destination, "profiles", settings.Paths.Profiles, "config", settings.Paths.Config)

	fs := fsops.NewRealFS()
	profileRepo := profiles.NewFileRepo(fs, settings.Paths.Profiles)
	store := storage.NewGitStore(fs)
	hasher := hash.NewSHA256Hasher(fs)
	author := &storage.Author{Name: settings.AuthorName, Email: settings.AuthorEmail}

	return engine.New(fs, profileRepo, store, hasher, settings.Paths, author), nil
}

// outputJSON writes a value as JSON to w.
func outputJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
