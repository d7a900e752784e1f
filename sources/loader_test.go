package sources_test

import (
	"context"
	"testing"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spritan/climetlab/fieldset"
	"github.com/Spritan/climetlab/sources"
)

func TestLoader_SourcesInOrder(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(t)
	doc := []byte(`
source:
  - {name: file, path: /data/z.yaml}
  - {name: file, path: /data/t.json}
`)
	fs, err := sources.NewLoader(r).Load(context.Background(), doc)
	require.NoError(t, err)
	require.Equal(t, 6, fs.Len())
	assert.Equal(t, "z", fs.At(0).Metadata()["param"])
	assert.Equal(t, "t", fs.At(5).Metadata()["param"])
}

func TestLoader_InheritMergesPreviousParameters(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(t)
	var seen []map[string]any
	require.NoError(t, r.RegisterDataset("echo", func(_ context.Context, _ *sources.Registry, p map[string]any) (*fieldset.FieldSet, error) {
		seen = append(seen, p)
		return fieldset.FromRecords([]map[string]any{p}), nil
	}))

	doc := []byte(`
inherit: true
dataset:
  - {name: echo, date: 20210101, param: t}
  - {date: 20210102}
`)
	fs, err := sources.NewLoader(r).Load(context.Background(), doc)
	require.NoError(t, err)
	assert.Equal(t, 2, fs.Len())
	require.Len(t, seen, 2)
	assert.Equal(t, map[string]any{"date": int64(20210102), "param": "t"}, seen[1])
}

func TestLoader_Constants(t *testing.T) {
	t.Parallel()

	r, _ := newRegistry(t)
	doc := []byte(`{"source": {"name": "file", "path": "/data/t.json"}, "constants": ["lsm", "z"]}`)
	fs, err := sources.NewLoader(r).Load(context.Background(), doc)
	require.NoError(t, err)
	// 4 fields plus 2 dates x 2 constants.
	require.Equal(t, 8, fs.Len())
	assert.Equal(t, "lsm", fs.At(4).Metadata()["param"])
}

func TestLoader_Errors(t *testing.T) {
	t.Parallel()

	r, mem := newRegistry(t)
	require.NoError(t, mem.WriteFile("/data/empty.json", []byte(`[]`), 0o644))

	cases := map[string]struct {
		doc  string
		code platformerrors.ErrorCode
	}{
		"unknown action":    {doc: "download: {name: x}", code: platformerrors.CodeInvalidConfig},
		"not a mapping":     {doc: "- source", code: platformerrors.CodeInvalidInput},
		"no data":           {doc: "inherit: false", code: platformerrors.CodeInvalidInput},
		"empty source":      {doc: "source: {name: file, path: /data/empty.json}", code: platformerrors.CodeNotFound},
		"constants first":   {doc: "constants: [lsm]", code: platformerrors.CodeInvalidConfig},
		"missing name":      {doc: "source: {path: /data/t.json}", code: platformerrors.CodeInvalidConfig},
		"bad inherit value": {doc: "inherit: maybe", code: platformerrors.CodeInvalidConfig},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := sources.NewLoader(r).Load(context.Background(), []byte(tc.doc))
			assert.Equal(t, tc.code, platformerrors.GetCode(err))
		})
	}
}

func TestLoaderSource(t *testing.T) {
	t.Parallel()

	r, mem := newRegistry(t)
	require.NoError(t, mem.WriteFile("/data/load.yaml", []byte("source: {name: file, path: /data/t.json}\n"), 0o644))
	fs, err := r.LoadSource(context.Background(), "loader", map[string]any{"config": "/data/load.yaml"})
	require.NoError(t, err)
	assert.Equal(t, 4, fs.Len())
}
