package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	s, err := Load(context.Background(), LoadOptions{Env: env(nil)})
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings(), *s)
	assert.True(t, s.Progress)
	assert.Equal(t, log.InfoLevel, s.Level())
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "climetlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte("mirror: /data/mirror\nlog_level: warn\nprogress: false\n"), 0o644))

	s, err := Load(context.Background(), LoadOptions{
		ConfigFilePath: path,
		Env:            env(map[string]string{"CLIMETLAB_LOG_LEVEL": "debug"}),
	})
	require.NoError(t, err)
	assert.Equal(t, "/data/mirror", s.Mirror)
	assert.False(t, s.Progress)
	assert.Equal(t, log.DebugLevel, s.Level())
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("availability_dir: /srv/avail\n"), 0o644))

	s, err := Load(context.Background(), LoadOptions{Env: env(map[string]string{
		ConfigFileEnv:      path,
		"CLIMETLAB_MIRROR": "https://example.org /data/mirror",
	})})
	require.NoError(t, err)
	assert.Equal(t, "/srv/avail", s.AvailabilityDir)
	assert.Equal(t, "https://example.org /data/mirror", s.Mirror)
}

func TestLoad_Errors(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), LoadOptions{ConfigFilePath: "/nonexistent/climetlab.yaml", Env: env(nil)})
	assert.Equal(t, platformerrors.CodeNotFound, platformerrors.GetCode(err))

	_, err = Load(context.Background(), LoadOptions{Env: env(map[string]string{"CLIMETLAB_LOG_LEVEL": "loud"})})
	assert.Equal(t, platformerrors.CodeInvalidConfig, platformerrors.GetCode(err))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Load(ctx, LoadOptions{Env: env(nil)})
	assert.ErrorIs(t, err, context.Canceled)
}
