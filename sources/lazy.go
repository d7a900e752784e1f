package sources

import (
	"context"
	"maps"

	"github.com/Spritan/climetlab/fieldset"
)

// Lazy is a deferred LoadSource call. Each Load runs the source again.
type Lazy struct {
	r      *Registry
	kind   string
	params map[string]any
}

// Lazy captures kind and params for a later load.
func (r *Registry) Lazy(kind string, params map[string]any) *Lazy {
	return &Lazy{r: r, kind: kind, params: maps.Clone(params)}
}

// Load runs the deferred call.
func (l *Lazy) Load(ctx context.Context) (*fieldset.FieldSet, error) {
	return l.r.LoadSource(ctx, l.kind, maps.Clone(l.params))
}

func (l *Lazy) String() string { return "Lazy(" + l.kind + ")" }
