package fieldset

import (
	"slices"

	"github.com/Spritan/climetlab/args"
	"github.com/Spritan/climetlab/internal/value"
)

// gribKeywords renames the usual alternative spellings of GRIB keys.
var gribKeywords = args.NewManager().MustAppend(
	args.Alias("levelist", "level"),
	args.Alias("param", "variable", "parameter"),
	args.Alias("number", "realization", "realisation"),
	args.Alias("class", "klass"),
)

// NormalizeSelection applies the GRIB keyword aliases to kwargs.
func NormalizeSelection(kwargs map[string]any) (map[string]any, error) {
	c, err := gribKeywords.Apply(args.Call{Kwargs: kwargs})
	if err != nil {
		return nil, err
	}
	return c.Kwargs, nil
}

func canonicalKeys(keys []string) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k
		c, err := gribKeywords.Apply(args.Call{Kwargs: map[string]any{k: true}})
		if err != nil {
			continue
		}
		for ck := range c.Kwargs {
			out[i] = ck
		}
	}
	return out
}

// Coords returns, for each key, its distinct values in order of first
// appearance. Fields lacking a key contribute a nil value.
func (fs *FieldSet) Coords(keys ...string) map[string][]any {
	out := make(map[string][]any, len(keys))
	seen := make(map[string]map[string]struct{}, len(keys))
	for _, k := range keys {
		seen[k] = map[string]struct{}{}
		out[k] = []any{}
	}
	for _, f := range fs.fields {
		md := f.Metadata()
		for _, k := range keys {
			v := value.Canonical(md[k])
			id := value.Key(v)
			if _, ok := seen[k][id]; ok {
				continue
			}
			seen[k][id] = struct{}{}
			out[k] = append(out[k], v)
		}
	}
	return out
}

// Sel returns the fields whose metadata matches every keyword. A list value
// matches any of its members. Keywords go through the GRIB aliases first, so
// level=500 selects on levelist.
func (fs *FieldSet) Sel(kwargs map[string]any) (*FieldSet, error) {
	kwargs, err := NormalizeSelection(kwargs)
	if err != nil {
		return nil, err
	}
	want := make(map[string]map[string]struct{}, len(kwargs))
	for k, v := range kwargs {
		vals, ok := value.AsList(v)
		if !ok {
			vals = []any{v}
		}
		set := make(map[string]struct{}, len(vals))
		for _, x := range vals {
			set[value.Key(x)] = struct{}{}
		}
		want[k] = set
	}
	var out []Field
	for _, f := range fs.fields {
		md := f.Metadata()
		match := true
		for k, set := range want {
			v, ok := md[k]
			if !ok {
				match = false
				break
			}
			if _, ok := set[value.Key(v)]; !ok {
				match = false
				break
			}
		}
		if match {
			out = append(out, f)
		}
	}
	return fs.derive(out), nil
}

// OrderBy returns the fields stably sorted by keys, each key ordering its
// values by first appearance in fs. Keys go through the GRIB aliases.
func (fs *FieldSet) OrderBy(keys ...string) *FieldSet {
	keys = canonicalKeys(keys)
	coords := fs.Coords(keys...)
	rank := make(map[string]map[string]int, len(keys))
	for _, k := range keys {
		r := make(map[string]int, len(coords[k]))
		for i, v := range coords[k] {
			r[value.Key(v)] = i
		}
		rank[k] = r
	}
	fields := slices.Clone(fs.fields)
	slices.SortStableFunc(fields, func(a, b Field) int {
		ma, mb := a.Metadata(), b.Metadata()
		for _, k := range keys {
			ra, rb := rank[k][value.Key(ma[k])], rank[k][value.Key(mb[k])]
			if ra != rb {
				return ra - rb
			}
		}
		return 0
	})
	return fs.derive(fields)
}
