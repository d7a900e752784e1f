package args

import (
	"fmt"
	"maps"
	"strings"

	"github.com/Spritan/climetlab"
	"github.com/Spritan/climetlab/internal/value"
	"github.com/Spritan/climetlab/normalize"
)

// Kind is the closed set of rule variants known to the consistency table.
type Kind int

const (
	KindNormalizer Kind = iota
	KindAvailability
	KindAlias
)

func (k Kind) String() string {
	switch k {
	case KindNormalizer:
		return "normalizer"
	case KindAvailability:
		return "availability"
	case KindAlias:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Call is the positional and keyword argument pair flowing through a chain.
type Call struct {
	Args   []any
	Kwargs map[string]any
}

func (c Call) clone() Call {
	out := Call{Args: append([]any(nil), c.Args...), Kwargs: maps.Clone(c.Kwargs)}
	if out.Kwargs == nil {
		out.Kwargs = map[string]any{}
	}
	return out
}

// Rule transforms or validates a Call.
type Rule interface {
	Kind() Kind
	Apply(Call) (Call, error)
	String() string
}

// Checker is what an availability rule validates against.
// *availability.Availability satisfies it.
type Checker interface {
	Check(kwargs map[string]any) error
	UniqueValues() map[string][]any
}

// NormalizerRule rewrites the value of one keyword.
type NormalizerRule struct {
	key string
	fn  normalize.Func
}

// Normalizer returns a rule applying fn to kwargs[key] when present.
func Normalizer(key string, fn normalize.Func) *NormalizerRule {
	return &NormalizerRule{key: key, fn: fn}
}

func (r *NormalizerRule) Kind() Kind  { return KindNormalizer }
func (r *NormalizerRule) Key() string { return r.key }

func (r *NormalizerRule) Apply(c Call) (Call, error) {
	v, ok := c.Kwargs[r.key]
	if !ok {
		return c, nil
	}
	n, err := r.fn(v)
	if err != nil {
		it := climetlab.IssueKV(r.key, climetlab.CodeInvalidValue, "value", value.Format(v))
		it.Cause = err
		it.Hint = err.Error()
		it.Rule = r.String()
		return c, climetlab.Issues{it}
	}
	c.Kwargs[r.key] = n
	return c, nil
}

func (r *NormalizerRule) String() string { return "Normalizer(" + r.key + ")" }

// AvailabilityRule validates every keyword against a Checker.
type AvailabilityRule struct {
	checker Checker
}

// AvailabilityCheck returns a rule validating calls with c.
func AvailabilityCheck(c Checker) *AvailabilityRule {
	return &AvailabilityRule{checker: c}
}

func (r *AvailabilityRule) Kind() Kind       { return KindAvailability }
func (r *AvailabilityRule) Checker() Checker { return r.checker }

// Apply returns the checker's error unmodified.
func (r *AvailabilityRule) Apply(c Call) (Call, error) {
	if err := r.checker.Check(c.Kwargs); err != nil {
		return c, err
	}
	return c, nil
}

func (r *AvailabilityRule) String() string {
	if s, ok := r.checker.(fmt.Stringer); ok {
		return "Availability(" + s.String() + ")"
	}
	return "Availability"
}

// AliasRule moves alternative keyword names to a canonical key.
type AliasRule struct {
	key   string
	names []string
}

// Alias returns a rule renaming any of names to key.
func Alias(key string, names ...string) *AliasRule {
	return &AliasRule{key: key, names: append([]string(nil), names...)}
}

func (r *AliasRule) Kind() Kind      { return KindAlias }
func (r *AliasRule) Key() string     { return r.key }
func (r *AliasRule) Names() []string { return append([]string(nil), r.names...) }

// Apply fails with a conflict issue when the canonical key and an alternative
// name carry different values.
func (r *AliasRule) Apply(c Call) (Call, error) {
	for _, name := range r.names {
		v, ok := c.Kwargs[name]
		if !ok {
			continue
		}
		delete(c.Kwargs, name)
		if prev, exists := c.Kwargs[r.key]; exists && !value.Equal(prev, v) {
			it := climetlab.IssueKV(r.key, climetlab.CodeConflict,
				"key", r.key, "alias", name)
			it.Hint = fmt.Sprintf("%s=%s, %s=%s", r.key, value.Format(prev), name, value.Format(v))
			it.Rule = r.String()
			return c, climetlab.Issues{it}
		}
		c.Kwargs[r.key] = v
	}
	return c, nil
}

func (r *AliasRule) String() string {
	return "Alias(" + r.key + " <- " + strings.Join(r.names, ", ") + ")"
}
