package main

import (
	"context"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"
	"github.com/spf13/cobra"

	"github.com/Spritan/climetlab/fieldset"
	"github.com/Spritan/climetlab/internal/config"
	"github.com/Spritan/climetlab/mirror"
	"github.com/Spritan/climetlab/sources"
)

// app is the state shared by subcommands once settings are loaded.
type app struct {
	cfgFile  string
	logLevel string

	settings *config.Settings
	fs       core.FS
	mirrors  *mirror.Mirrors
	registry *sources.Registry
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "climetlab",
		Short:         "Inspect meteorological field availabilities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default $"+config.ConfigFileEnv+")")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override the configured log level")

	root.AddCommand(
		newAvailabilityCommand(a),
		newHypercubeCommand(a),
		newMirrorCommand(a),
		newLoadCommand(a),
	)
	return root
}

func (a *app) init(ctx context.Context) error {
	s, err := config.Load(ctx, config.LoadOptions{ConfigFilePath: a.cfgFile})
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		s.LogLevel = a.logLevel
	}
	log.SetLevel(s.Level())
	a.settings = s

	if a.fs == nil {
		a.fs = billy.NewLocal()
	}
	a.mirrors, err = mirror.FromEnv(s.Mirror, mirror.WithFS(a.fs))
	if err != nil {
		return err
	}
	opts := []sources.Option{sources.WithFS(a.fs), sources.WithAvailabilityDir(s.AvailabilityDir)}
	if !s.Progress {
		opts = append(opts, sources.WithFieldSetOptions(fieldset.WithProgress(func(int64, int64) {})))
	}
	a.registry = sources.NewRegistry(opts...)
	return nil
}

// context returns ctx carrying the session mirrors.
func (a *app) context(ctx context.Context) context.Context {
	return mirror.WithMirrors(ctx, a.mirrors)
}

// abs resolves p against the working directory; the local filesystem is
// rooted at /.
func abs(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	return filepath.Abs(p)
}
