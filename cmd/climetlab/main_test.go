package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const records = `[
  {"date": 20210101, "levelist": 500, "param": "t"},
  {"date": 20210101, "levelist": 850, "param": "t"},
  {"date": 20210102, "levelist": 500, "param": "t"},
  {"date": 20210102, "levelist": 850, "param": "t"}
]`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, dir string) string {
	t.Helper()
	p := filepath.Join(dir, "climetlab.yaml")
	require.NoError(t, os.WriteFile(p, []byte("log_level: error\n"), 0o644))
	return p
}

func TestAvailabilityCommands(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	recs := filepath.Join(dir, "t.json")
	require.NoError(t, os.WriteFile(recs, []byte(records), 0o644))
	avail := filepath.Join(dir, "t.availability.json")

	out, err := run(t, "--config", cfg, "availability", "build", recs, "-o", avail)
	require.NoError(t, err)
	assert.Contains(t, out, avail)

	out, err = run(t, "--config", cfg, "availability", "show", avail)
	require.NoError(t, err)
	assert.Contains(t, out, `"records": 4`)

	out, err = run(t, "--config", cfg, "availability", "check", avail, "levelist=500,850", "date=20210102")
	require.NoError(t, err)
	assert.Equal(t, "ok\n", out)

	out, err = run(t, "--config", cfg, "availability", "check", avail, "levelist=1000")
	require.Error(t, err)
	assert.Contains(t, out, "invalid_value levelist")
}

func TestHypercubeCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	recs := filepath.Join(dir, "t.json")
	require.NoError(t, os.WriteFile(recs, []byte(records), 0o644))

	out, err := run(t, "--config", cfg, "hypercube", recs)
	require.NoError(t, err)
	assert.Contains(t, out, "dimensions: [date levelist]")
	assert.Contains(t, out, "full: true")
}

func TestLoadCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeConfig(t, dir)
	recs := filepath.Join(dir, "t.json")
	require.NoError(t, os.WriteFile(recs, []byte(records), 0o644))
	loader := filepath.Join(dir, "load.yaml")
	require.NoError(t, os.WriteFile(loader, []byte("source:\n  name: url\n  url: file://"+recs+"\n"), 0o644))

	out, err := run(t, "--config", cfg, "load", loader)
	require.NoError(t, err)
	assert.Contains(t, out, "FieldSet(4 fields)")
}

func TestParseRequest(t *testing.T) {
	req, err := parseRequest([]string{"levelist=500,850", "param=t", "step=\"6\""})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"levelist": []any{500, 850}, "param": "t", "step": "6"}, req)

	_, err = parseRequest([]string{"oops"})
	assert.Error(t, err)
}
