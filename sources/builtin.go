package sources

import (
	"context"
	"net/url"
	"slices"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"

	"github.com/Spritan/climetlab/availability"
	"github.com/Spritan/climetlab/fieldset"
	"github.com/Spritan/climetlab/internal/value"
	"github.com/Spritan/climetlab/mirror"
)

func builtins() map[string]Factory {
	return map[string]Factory{
		"memory":    loadMemory,
		"file":      loadFile,
		"url":       loadURL,
		"multi":     loadMulti,
		"constants": loadConstants,
		"loader":    loadLoader,
	}
}

func stringParam(params map[string]any, key string) (string, error) {
	s, ok := params[key].(string)
	if !ok || s == "" {
		return "", platformerrors.WithContext(
			platformerrors.New(platformerrors.CodeInvalidInput, "missing string parameter"),
			"param", key)
	}
	return s, nil
}

func loadMemory(_ context.Context, r *Registry, params map[string]any) (*fieldset.FieldSet, error) {
	items, ok := value.AsList(params["records"])
	if !ok {
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.CodeInvalidInput, "records must be a list"),
			"param", "records")
	}
	records := make([]map[string]any, 0, len(items))
	for i, it := range items {
		rec := value.Record(it)
		if rec == nil {
			return nil, platformerrors.WithContext(
				platformerrors.New(platformerrors.CodeInvalidInput, "record is not an object"),
				"index", i)
		}
		records = append(records, rec)
	}
	return fieldset.FromRecords(records, r.fsOpts...), nil
}

// loadFile reads a records file. Each field remembers its origin in _path.
func loadFile(_ context.Context, r *Registry, params map[string]any) (*fieldset.FieldSet, error) {
	p, err := stringParam(params, "path")
	if err != nil {
		return nil, err
	}
	return r.readRecords(p)
}

func (r *Registry) readRecords(p string) (*fieldset.FieldSet, error) {
	ok, err := r.fs.Exists(p)
	if err != nil {
		return nil, platformerrors.Wrapf(err, platformerrors.CodeInternal, "stat %s", p)
	}
	if !ok {
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.CodeNotFound, "file not found"),
			"path", p)
	}
	data, err := r.fs.ReadFile(p)
	if err != nil {
		return nil, platformerrors.Wrapf(err, platformerrors.CodeInternal, "read %s", p)
	}
	records, err := availability.DecodeRecords(data, availability.FormatFromPath(p))
	if err != nil {
		return nil, platformerrors.WithContext(err, "path", p)
	}
	for i, rec := range records {
		rec["_path"] = p
		rec["_offset"] = int64(i)
	}
	r.logger.Debug("read records", "path", p, "records", len(records))
	opts := append(slices.Clone(r.fsOpts), fieldset.WithAvailabilityResource(r.fs, AvailabilityPath(r.availDir, p)))
	return fieldset.FromRecords(records, opts...), nil
}

type urlSource struct{ url, path string }

func (s urlSource) URL() string  { return s.url }
func (s urlSource) Path() string { return s.path }

// loadURL resolves a URL through the active mirrors, then reads file:// URLs
// directly and copies them into prefetching mirrors. Other schemes are not
// fetched. A mirror's own copy is read as is, without another mirror pass.
func loadURL(ctx context.Context, r *Registry, params map[string]any) (*fieldset.FieldSet, error) {
	raw, err := stringParam(params, "url")
	if err != nil {
		return nil, err
	}
	ms := mirror.FromContext(ctx)
	sub, ok, err := ms.Mutator(urlSource{url: raw})
	if err != nil {
		return nil, err
	}
	if ok {
		r.logger.Info("using mirror", "url", raw, "substitute", sub.Args)
		next := map[string]any{}
		if len(sub.Args) > 0 {
			next["url"] = sub.Args[0]
		}
		if target, isString := next["url"].(string); sub.Kind == "url" && isString {
			fs, _, err := r.readURL(target)
			return fs, err
		}
		return r.LoadSource(ctx, sub.Kind, next)
	}

	fs, p, err := r.readURL(raw)
	if err != nil {
		return nil, err
	}
	if err := ms.Prefetch(urlSource{url: raw, path: p}); err != nil {
		return nil, err
	}
	return fs, nil
}

// readURL reads a file:// URL and returns the local path it pointed at.
func (r *Registry) readURL(raw string) (*fieldset.FieldSet, string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", platformerrors.WithContext(
			platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "invalid url"),
			"url", raw)
	}
	if u.Scheme != "file" {
		return nil, "", platformerrors.WithContext(
			platformerrors.Newf(platformerrors.CodeNotImplemented, "cannot download %s urls", u.Scheme),
			"url", raw)
	}
	fs, err := r.readRecords(u.Path)
	if err != nil {
		return nil, "", err
	}
	return fs, u.Path, nil
}

// loadMulti merges the sources listed as {"name": kind, ...params}.
func loadMulti(ctx context.Context, r *Registry, params map[string]any) (*fieldset.FieldSet, error) {
	items, ok := value.AsList(params["sources"])
	if !ok || len(items) == 0 {
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.CodeInvalidInput, "sources must be a non-empty list"),
			"param", "sources")
	}
	var sets []*fieldset.FieldSet
	for _, it := range items {
		spec := value.StringMap(it)
		name, err := stringParam(spec, "name")
		if err != nil {
			return nil, err
		}
		delete(spec, "name")
		fs, err := r.LoadSource(ctx, name, spec)
		if err != nil {
			return nil, err
		}
		sets = append(sets, fs)
	}
	return sets[0].Merge(sets[1:]...), nil
}

// loadConstants emits one field per constant parameter for every distinct
// combination of the base set's metadata, ignoring param and level keys.
func loadConstants(_ context.Context, r *Registry, params map[string]any) (*fieldset.FieldSet, error) {
	base, ok := params["source_or_dataset"].(*fieldset.FieldSet)
	if !ok {
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.CodeInvalidInput, "constants need a field set"),
			"param", "source_or_dataset")
	}
	names, ok := value.AsList(params["param"])
	if !ok {
		names = []any{params["param"]}
	}
	a := base.CustomAvailability(func(k string) bool {
		return !fieldset.IsReserved(k) && !strings.HasPrefix(k, "param") && !strings.HasPrefix(k, "level")
	})
	seen := map[string]struct{}{}
	var records []map[string]any
	for _, rec := range a.Records() {
		id := value.Key(rec)
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		for _, n := range names {
			out := make(map[string]any, len(rec)+1)
			for k, v := range rec {
				out[k] = v
			}
			out["param"] = n
			records = append(records, out)
		}
	}
	return fieldset.FromRecords(records, r.fsOpts...), nil
}

func loadLoader(ctx context.Context, r *Registry, params map[string]any) (*fieldset.FieldSet, error) {
	p, err := stringParam(params, "config")
	if err != nil {
		return nil, err
	}
	data, err := r.fs.ReadFile(p)
	if err != nil {
		return nil, platformerrors.WithContext(
			platformerrors.Wrap(err, platformerrors.CodeNotFound, "read loader config"),
			"path", p)
	}
	return NewLoader(r).Load(ctx, data)
}
