package args

import "github.com/Spritan/climetlab/normalize"

// Func wraps a function with its own rule chain, the way decorators attach
// normalizers and availability checks to a source constructor.
//
//	open := args.Wrap(func(c args.Call) (*fieldset.FieldSet, error) { ... }).
//		Alias("levelist", "level").
//		Normalize("levelist", normalize.Int()).
//		Availability(avail)
type Func[R any] struct {
	fn      func(Call) (R, error)
	manager *Manager
}

// Wrap returns fn with an empty chain.
func Wrap[R any](fn func(Call) (R, error)) *Func[R] {
	return &Func[R]{fn: fn, manager: NewManager()}
}

// Inherit wraps fn reusing inner's chain. With disable, inner stops applying
// the rules so they run only once when fn calls inner.
func Inherit[R, S any](fn func(Call) (R, error), inner *Func[S], disable bool) *Func[R] {
	var src *Manager
	if inner != nil {
		src = inner.manager
	}
	return &Func[R]{fn: fn, manager: FromExisting(src, disable)}
}

// Normalize attaches a normalizer for key. It panics on a configuration
// error.
func (f *Func[R]) Normalize(key string, fn normalize.Func) *Func[R] {
	f.manager.MustAppend(Normalizer(key, fn))
	return f
}

// Availability attaches an availability check. It panics on a configuration
// error.
func (f *Func[R]) Availability(c Checker) *Func[R] {
	f.manager.MustAppend(AvailabilityCheck(c))
	return f
}

// Alias attaches an alias rule. It panics on a configuration error.
func (f *Func[R]) Alias(key string, names ...string) *Func[R] {
	f.manager.MustAppend(Alias(key, names...))
	return f
}

// Manager exposes the chain for inspection.
func (f *Func[R]) Manager() *Manager { return f.manager }

// Call applies the chain to the arguments, then invokes the wrapped function.
// Validation errors from the chain are returned unmodified.
func (f *Func[R]) Call(args []any, kwargs map[string]any) (R, error) {
	c, err := f.manager.Apply(Call{Args: args, Kwargs: kwargs})
	if err != nil {
		var zero R
		return zero, err
	}
	return f.fn(c)
}
