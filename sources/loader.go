package sources

import (
	"context"
	"maps"

	platformerrors "github.com/jmgilman/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/Spritan/climetlab/fieldset"
	"github.com/Spritan/climetlab/internal/value"
)

// Loader runs a loader document: a YAML (or JSON) mapping whose keys are
// actions executed in document order.
//
//	inherit: true          later loads start from the previous parameters
//	source: {name: file, path: a.json}
//	dataset: [{name: era5, date: 20210101}, {date: 20210102}]
//	constants: [lsm, z]    constant fields over the first loaded set
//
// Every loaded set must be non-empty; the result is their concatenation.
type Loader struct {
	r *Registry
}

// NewLoader returns a loader resolving names through r.
func NewLoader(r *Registry) *Loader { return &Loader{r: r} }

type loadState struct {
	data     []*fieldset.FieldSet
	last     map[string]any
	lastName string
	inherit  bool
}

type loadFunc func(context.Context, string, map[string]any) (*fieldset.FieldSet, error)

type action func(l *Loader, ctx context.Context, node *yaml.Node, st *loadState) error

var actions = map[string]action{
	"inherit": (*Loader).inherit,
	"source": func(l *Loader, ctx context.Context, node *yaml.Node, st *loadState) error {
		return l.loadAll(ctx, node, st, l.r.LoadSource)
	},
	"dataset": func(l *Loader, ctx context.Context, node *yaml.Node, st *loadState) error {
		return l.loadAll(ctx, node, st, l.r.LoadDataset)
	},
	"constants": (*Loader).constants,
}

// Load parses doc and executes its actions.
func (l *Loader) Load(ctx context.Context, doc []byte) (*fieldset.FieldSet, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(doc, &root); err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "parse loader document")
	}
	body := &root
	if body.Kind == yaml.DocumentNode && len(body.Content) == 1 {
		body = body.Content[0]
	}
	if body.Kind != yaml.MappingNode {
		return nil, platformerrors.New(platformerrors.CodeInvalidInput, "loader document must be a mapping")
	}

	st := &loadState{last: map[string]any{}}
	for i := 0; i+1 < len(body.Content); i += 2 {
		key := body.Content[i].Value
		act, ok := actions[key]
		if !ok {
			return nil, platformerrors.WithContext(
				platformerrors.New(platformerrors.CodeInvalidConfig, "unknown loader action"),
				"action", key)
		}
		if err := act(l, ctx, body.Content[i+1], st); err != nil {
			return nil, err
		}
	}
	if len(st.data) == 0 {
		return nil, platformerrors.New(platformerrors.CodeInvalidInput, "loader document loads no data")
	}
	return st.data[0].Merge(st.data[1:]...), nil
}

func (l *Loader) inherit(_ context.Context, node *yaml.Node, st *loadState) error {
	var on bool
	if err := node.Decode(&on); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "inherit must be a boolean")
	}
	st.inherit = on
	return nil
}

func (l *Loader) loadAll(ctx context.Context, node *yaml.Node, st *loadState, load loadFunc) error {
	var raw any
	if err := node.Decode(&raw); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "decode load action")
	}
	items, ok := value.AsList(raw)
	if !ok {
		items = []any{raw}
	}
	specs := make([]map[string]any, 0, len(items))
	for _, it := range items {
		spec := value.StringMap(it)
		if spec == nil {
			return platformerrors.New(platformerrors.CodeInvalidConfig, "load action entries must be mappings")
		}
		specs = append(specs, spec)
	}
	return l.execute(ctx, load, specs, st)
}

// execute loads each spec. With inherit, a spec only lists what changes
// since the previous load, name included.
func (l *Loader) execute(ctx context.Context, load loadFunc, specs []map[string]any, st *loadState) error {
	for _, spec := range specs {
		name, _ := spec["name"].(string)
		delete(spec, "name")
		if st.inherit {
			maps.Copy(st.last, spec)
			spec = maps.Clone(st.last)
			if name == "" {
				name = st.lastName
			}
		}
		if name == "" {
			return platformerrors.New(platformerrors.CodeInvalidConfig, "load action entry without a name")
		}
		st.lastName = name
		l.r.logger.Info("using data", "name", name, "params", spec)
		fs, err := load(ctx, name, spec)
		if err != nil {
			return err
		}
		if fs.Len() == 0 {
			return platformerrors.WithContext(
				platformerrors.New(platformerrors.CodeNotFound, "no data"),
				"name", name)
		}
		st.data = append(st.data, fs)
	}
	return nil
}

func (l *Loader) constants(ctx context.Context, node *yaml.Node, st *loadState) error {
	if len(st.data) == 0 {
		return platformerrors.New(platformerrors.CodeInvalidConfig, "constants need a previously loaded source")
	}
	var params any
	if err := node.Decode(&params); err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInvalidConfig, "decode constants")
	}
	spec := map[string]any{"name": "constants", "source_or_dataset": st.data[0], "param": params}
	return l.execute(ctx, l.r.LoadSource, []map[string]any{spec}, st)
}
