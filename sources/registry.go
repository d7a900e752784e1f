// Package sources is the loading boundary: it turns a source kind or dataset
// name plus parameters into a field set.
//
// Built-in source kinds:
//
//	memory     records given inline ("records")
//	file       a JSON or YAML records file ("path")
//	url        a file:// URL ("url"), replaced by a mirror copy when one exists
//	multi      the merge of several sources ("sources")
//	constants  constant fields laid over another set ("source_or_dataset", "param")
//	loader     a loader document ("config"), see Loader
//
// Mirrors are taken from the context (mirror.FromContext).
package sources

import (
	"context"
	"maps"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"

	"github.com/Spritan/climetlab/args"
	"github.com/Spritan/climetlab/fieldset"
)

// Factory builds a field set from parameters.
type Factory func(ctx context.Context, r *Registry, params map[string]any) (*fieldset.FieldSet, error)

// FromFunc adapts a wrapped function so its rule chain normalizes and checks
// the parameters before it runs.
func FromFunc(f *args.Func[*fieldset.FieldSet]) Factory {
	return func(_ context.Context, _ *Registry, params map[string]any) (*fieldset.FieldSet, error) {
		return f.Call(nil, params)
	}
}

// Option configures a Registry.
type Option func(*Registry)

// WithFS sets the filesystem file sources read from. The default is the local
// filesystem.
func WithFS(fsys core.FS) Option {
	return func(r *Registry) { r.fs = fsys }
}

// WithLogger overrides the package logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithFieldSetOptions are passed to every field set built by file sources.
func WithFieldSetOptions(opts ...fieldset.Option) Option {
	return func(r *Registry) { r.fsOpts = append(r.fsOpts, opts...) }
}

// WithAvailabilityDir makes file sources look for precomputed availability
// resources in dir instead of next to the records file.
func WithAvailabilityDir(dir string) Option {
	return func(r *Registry) { r.availDir = dir }
}

// Registry maps source kinds and dataset names to factories.
type Registry struct {
	mu       sync.RWMutex
	sources  map[string]Factory
	datasets map[string]Factory

	fs       core.FS
	fsOpts   []fieldset.Option
	availDir string
	logger   *log.Logger
}

// AvailabilityPath returns where the precomputed availability of the records
// file p lives: <dir>/<base>.availability.json, with dir defaulting to the
// directory of p.
func AvailabilityPath(dir, p string) string {
	base := strings.TrimSuffix(path.Base(p), path.Ext(p)) + ".availability.json"
	if dir == "" {
		dir = path.Dir(p)
	}
	return path.Join(dir, base)
}

// NewRegistry returns a registry holding the built-in source kinds.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		sources:  map[string]Factory{},
		datasets: map[string]Factory{},
		logger:   log.Default().WithPrefix("sources"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.fs == nil {
		r.fs = billy.NewLocal()
	}
	for name, f := range builtins() {
		r.sources[name] = f
	}
	return r
}

// FS returns the filesystem the registry reads from.
func (r *Registry) FS() core.FS { return r.fs }

// RegisterSource adds a source kind. Names are unique.
func (r *Registry) RegisterSource(name string, f Factory) error {
	return r.register(r.sources, "source", name, f)
}

// RegisterDataset adds a dataset. Names are unique.
func (r *Registry) RegisterDataset(name string, f Factory) error {
	return r.register(r.datasets, "dataset", name, f)
}

func (r *Registry) register(into map[string]Factory, what, name string, f Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := into[name]; ok {
		return platformerrors.WithContext(
			platformerrors.Newf(platformerrors.CodeAlreadyExists, "%s already registered", what),
			"name", name)
	}
	into[name] = f
	return nil
}

// Sources lists the registered source kinds, sorted.
func (r *Registry) Sources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.sources))
}

// Datasets lists the registered dataset names, sorted.
func (r *Registry) Datasets() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.datasets))
}

// LoadSource builds the source kind with params.
func (r *Registry) LoadSource(ctx context.Context, kind string, params map[string]any) (*fieldset.FieldSet, error) {
	return r.load(ctx, r.sources, "source", kind, params)
}

// LoadDataset builds the named dataset with params.
func (r *Registry) LoadDataset(ctx context.Context, name string, params map[string]any) (*fieldset.FieldSet, error) {
	return r.load(ctx, r.datasets, "dataset", name, params)
}

func (r *Registry) load(ctx context.Context, from map[string]Factory, what, name string, params map[string]any) (*fieldset.FieldSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	f, ok := from[name]
	r.mu.RUnlock()
	if !ok {
		return nil, platformerrors.WithContext(
			platformerrors.Newf(platformerrors.CodeNotFound, "unknown %s", what),
			"name", name)
	}
	r.logger.Debug("loading", what, name, "params", params)
	if params == nil {
		params = map[string]any{}
	}
	return f(ctx, r, params)
}
