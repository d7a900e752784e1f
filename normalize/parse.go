package normalize

import (
	"strings"

	platformerrors "github.com/jmgilman/go/errors"
)

// Option configures Parse.
type Option func(*parseOptions)

type parseOptions struct {
	aliases map[string]any
}

// WithAliases maps string inputs to replacement values (or lists of values)
// before normalization.
func WithAliases(table map[string]any) Option {
	return func(o *parseOptions) { o.aliases = table }
}

// Parse builds a Func from a spec string:
//
//	int, float, str, date, date(FMT), enum(a,b,...)
//
// Each of them accepts a "-list" suffix (for example "date-list(YYYYMMDD)"),
// which accepts scalars or lists and always returns a list; date lists also
// expand "start/to/end[/by/N]" ranges. Unknown specs are configuration
// errors.
func Parse(spec string, opts ...Option) (Func, error) {
	var o parseOptions
	for _, opt := range opts {
		opt(&o)
	}
	name, arg, err := splitSpec(spec)
	if err != nil {
		return nil, err
	}
	list := strings.HasSuffix(name, "-list")
	name = strings.TrimSuffix(name, "-list")

	var f Func
	switch name {
	case "int":
		f = Int()
	case "float":
		f = Float()
	case "str":
		f = String()
	case "date":
		if list {
			f = DateRange(arg)
		} else {
			f = Date(arg)
		}
	case "enum":
		if arg == "" {
			return nil, badSpec(spec, "enum needs at least one value")
		}
		var members []any
		for _, m := range strings.Split(arg, ",") {
			members = append(members, strings.TrimSpace(m))
		}
		f = Enum(members...)
	default:
		return nil, badSpec(spec, "unknown normalizer")
	}
	f = Aliases(o.aliases, f)
	if list {
		f = Multiple(f)
	}
	return f, nil
}

// MustParse is like Parse but panics on error. It is meant for package-level
// rule registration.
func MustParse(spec string, opts ...Option) Func {
	f, err := Parse(spec, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

func splitSpec(spec string) (name, arg string, err error) {
	spec = strings.TrimSpace(spec)
	open := strings.IndexByte(spec, '(')
	if open < 0 {
		return spec, "", nil
	}
	if !strings.HasSuffix(spec, ")") {
		return "", "", badSpec(spec, "missing closing parenthesis")
	}
	return spec[:open], spec[open+1 : len(spec)-1], nil
}

func badSpec(spec, msg string) error {
	return platformerrors.WithContext(
		platformerrors.New(platformerrors.CodeInvalidConfig, msg),
		"spec", spec)
}
