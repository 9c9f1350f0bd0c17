package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// Keys used in the config file, environment (STRATUM_<KEY>) and flags.
const (
	KeyStorage     = "storage"
	KeyDestination = "destination"
	KeyProfiles    = "profiles"
	KeyAuthorName  = "author.name"
	KeyAuthorEmail = "author.email"
	KeyVerbose     = "verbose"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "STRATUM"

// Settings is the resolved configuration for one invocation.
type Settings struct {
	Paths Paths

	// AuthorName and AuthorEmail identify crafted commits.
	AuthorName  string
	AuthorEmail string

	Verbose bool
}

// NewViper returns a viper instance with stratum's defaults and
// environment binding. The config file is read when configFile is set, or
// when the default file exists.
func NewViper(configFile string) (*viper.Viper, error) {
	defaults, err := DefaultPaths()
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(KeyStorage, defaults.Storage)
	v.SetDefault(KeyDestination, defaults.Destination)
	v.SetDefault(KeyProfiles, defaults.Profiles)
	v.SetDefault(KeyAuthorName, "stratum")
	v.SetDefault(KeyAuthorEmail, "stratum@localhost")
	v.SetDefault(KeyVerbose, false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		return v, nil
	}

	v.SetConfigFile(defaults.Config)
	if err := v.ReadInConfig(); err != nil {
		// An explicit SetConfigFile reports a missing file as a plain
		// filesystem error rather than ConfigFileNotFoundError.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config file %s: %w", defaults.Config, err)
		}
	}
	return v, nil
}

// Load resolves Settings from v.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		Paths: Paths{
			Storage:     v.GetString(KeyStorage),
			Destination: v.GetString(KeyDestination),
			Profiles:    v.GetString(KeyProfiles),
			Config:      v.ConfigFileUsed(),
		},
		AuthorName:  v.GetString(KeyAuthorName),
		AuthorEmail: v.GetString(KeyAuthorEmail),
		Verbose:     v.GetBool(KeyVerbose),
	}

	if s.Paths.Storage == "" {
		return nil, fmt.Errorf("storage location must not be empty")
	}
	if s.Paths.Destination == "" {
		return nil, fmt.Errorf("destination must not be empty")
	}
	if s.Paths.Profiles == "" {
		s.Paths.Profiles = "."
	}

	if err := s.Paths.Normalize(); err != nil {
		return nil, err
	}
	return s, nil
}
