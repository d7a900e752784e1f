package normalize

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Spritan/climetlab/internal/value"
)

// Func canonicalizes a single keyword value.
type Func func(v any) (any, error)

// ErrInvalid is wrapped by every error returned from a Func.
var ErrInvalid = errors.New("normalize: invalid value")

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

// Identity returns values unchanged.
func Identity() Func { return func(v any) (any, error) { return v, nil } }

// Int converts numbers and numeric strings to int64.
func Int() Func {
	return func(v any) (any, error) {
		switch t := value.Canonical(v).(type) {
		case int64:
			return t, nil
		case float64:
			if t != math.Trunc(t) {
				return nil, invalid("%v is not an integer", t)
			}
			return int64(t), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(t), 10, 64)
			if err != nil {
				return nil, invalid("%q is not an integer", t)
			}
			return i, nil
		default:
			return nil, invalid("cannot convert %T to int", v)
		}
	}
}

// Float converts numbers and numeric strings to float64.
func Float() Func {
	return func(v any) (any, error) {
		switch t := value.Canonical(v).(type) {
		case int64:
			return float64(t), nil
		case float64:
			return t, nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
			if err != nil {
				return nil, invalid("%q is not a number", t)
			}
			return f, nil
		default:
			return nil, invalid("cannot convert %T to float", v)
		}
	}
}

// String renders scalars with fmt; lists are rejected.
func String() Func {
	return func(v any) (any, error) {
		if _, ok := value.AsList(v); ok {
			return nil, invalid("expected a scalar, got a list")
		}
		if s, ok := v.(string); ok {
			return s, nil
		}
		return fmt.Sprint(value.Canonical(v)), nil
	}
}

// Enum accepts only the given values and returns the matching member. String
// members match case-insensitively.
func Enum(values ...any) Func {
	return func(v any) (any, error) {
		for _, want := range values {
			if value.Equal(v, want) {
				return want, nil
			}
			ws, ok1 := want.(string)
			vs, ok2 := v.(string)
			if ok1 && ok2 && strings.EqualFold(ws, vs) {
				return want, nil
			}
		}
		return nil, invalid("%s is not one of %s", value.Format(v), value.Format(values))
	}
}

// Multiple applies f to each element of a list, or to a scalar, and always
// returns a list.
func Multiple(f Func) Func {
	return func(v any) (any, error) {
		items, ok := value.AsList(v)
		if !ok {
			items = []any{v}
		}
		out := make([]any, 0, len(items))
		for _, it := range items {
			n, err := f(it)
			if err != nil {
				return nil, err
			}
			if sub, ok := value.AsList(n); ok {
				out = append(out, sub...)
				continue
			}
			out = append(out, n)
		}
		return out, nil
	}
}

// Aliases replaces string values found in table before calling f. An alias
// may expand to a list, in which case f is applied to each element.
func Aliases(table map[string]any, f Func) Func {
	if len(table) == 0 {
		return f
	}
	return func(v any) (any, error) {
		s, ok := v.(string)
		if !ok {
			return f(v)
		}
		target, ok := table[s]
		if !ok {
			return f(v)
		}
		if items, isList := value.AsList(target); isList {
			out := make([]any, 0, len(items))
			for _, it := range items {
				n, err := f(it)
				if err != nil {
					return nil, err
				}
				if sub, ok := value.AsList(n); ok {
					out = append(out, sub...)
					continue
				}
				out = append(out, n)
			}
			return out, nil
		}
		return f(target)
	}
}
