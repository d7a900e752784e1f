// Package config loads process settings from the environment and an optional
// YAML config file using Viper.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is prepended to every environment variable, e.g. CLIMETLAB_MIRROR.
	EnvPrefix = "CLIMETLAB"
	// ConfigFileEnv names the variable pointing at a config file.
	ConfigFileEnv = EnvPrefix + "_CONFIG"
)

// Settings are the process-wide knobs.
type Settings struct {
	// Mirror is a mirror directory, or the legacy "origin-prefix path" pair.
	Mirror string `mapstructure:"mirror"`
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level"`
	// Progress reports availability building at info level. On by default.
	Progress bool `mapstructure:"progress"`
	// AvailabilityDir holds precomputed availability resources.
	AvailabilityDir string `mapstructure:"availability_dir"`
}

// LoadOptions controls where settings come from.
type LoadOptions struct {
	// ConfigFilePath, when set, must exist. Otherwise $CLIMETLAB_CONFIG is
	// used if set.
	ConfigFilePath string
	// Env overrides os.LookupEnv, mainly for tests.
	Env func(string) (string, bool)
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{LogLevel: "info", Progress: true}
}

// Load resolves settings from defaults, the config file, then the
// environment, in increasing precedence.
func Load(ctx context.Context, opts LoadOptions) (*Settings, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	lookup := opts.Env
	if lookup == nil {
		lookup = os.LookupEnv
	}

	v := viper.New()
	defaults := DefaultSettings()
	v.SetDefault("mirror", defaults.Mirror)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("progress", defaults.Progress)
	v.SetDefault("availability_dir", defaults.AvailabilityDir)

	path := opts.ConfigFilePath
	if path == "" {
		path, _ = lookup(ConfigFileEnv)
	}
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, platformerrors.WithContext(
				platformerrors.Wrap(err, platformerrors.CodeNotFound, "config file not found"),
				"path", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, platformerrors.WithContext(
				platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "read config file"),
				"path", path)
		}
	}

	for _, key := range v.AllKeys() {
		if val, ok := lookup(EnvPrefix + "_" + strings.ToUpper(key)); ok {
			v.Set(key, val)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "parse config")
	}
	if _, err := log.ParseLevel(s.LogLevel); err != nil {
		return nil, platformerrors.WithContext(
			platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "invalid log level"),
			"log_level", s.LogLevel)
	}
	return &s, nil
}

// Level returns the parsed log level, falling back to info.
func (s *Settings) Level() log.Level {
	l, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return log.InfoLevel
	}
	return l
}
