package mirror

import (
	"context"
	"reflect"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	platformerrors "github.com/jmgilman/go/errors"
)

// Source is a load request a mirror may hold a copy of.
type Source interface {
	URL() string
}

// LocalSource is a Source whose content is already available at Path.
type LocalSource interface {
	Source
	Path() string
}

// Substitute is the load request to run in place of the original source.
type Substitute struct {
	Kind string
	Args []any
}

// Mirror holds copies of sources.
type Mirror interface {
	Contains(src Source) bool
	// Mutator returns the replacement for src, or false when src should be
	// loaded as is.
	Mutator(src Source) (Substitute, bool)
	// BuildCopy stores a copy of src in the mirror.
	BuildCopy(src LocalSource) error
	String() string
}

// owner is implemented by mirrors that can tell whether a local path is one
// of their own copies. Prefetch never copies such a path into the mirror.
type owner interface {
	Owns(localPath string) bool
}

type entry struct {
	mirror   Mirror
	prefetch bool
}

// Mirrors is the ordered set of active mirrors.
type Mirrors struct {
	mu      sync.RWMutex
	entries []entry
	logger  *log.Logger
}

// New returns an empty set.
func New() *Mirrors {
	return &Mirrors{logger: log.Default().WithPrefix("mirror")}
}

// Activate appends m. With prefetch, sources loaded while m is active are
// copied into it.
func (ms *Mirrors) Activate(m Mirror, prefetch bool) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.entries = append(ms.entries, entry{mirror: m, prefetch: prefetch})
}

// Deactivate removes the first occurrence of m and reports whether it was
// active. Mirrors are matched with ==; a mirror whose dynamic value is not
// comparable never matches, so implementations should be pointer types.
func (ms *Mirrors) Deactivate(m Mirror) bool {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	i := slices.IndexFunc(ms.entries, func(e entry) bool { return same(e.mirror, m) })
	if i < 0 {
		return false
	}
	ms.entries = slices.Delete(ms.entries, i, i+1)
	return true
}

func same(a, b Mirror) bool {
	if reflect.TypeOf(a) != reflect.TypeOf(b) || !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}

// Use activates m, runs fn and deactivates m.
func (ms *Mirrors) Use(m Mirror, prefetch bool, fn func() error) error {
	ms.Activate(m, prefetch)
	defer ms.Deactivate(m)
	return fn()
}

// Len returns the number of active mirrors.
func (ms *Mirrors) Len() int {
	if ms == nil {
		return 0
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	return len(ms.entries)
}

// List returns the active mirrors. Prefetching is only supported with a
// single active mirror.
func (ms *Mirrors) List() ([]Mirror, error) {
	if ms == nil {
		return nil, nil
	}
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if err := ms.checkPrefetch(); err != nil {
		return nil, err
	}
	out := make([]Mirror, len(ms.entries))
	for i, e := range ms.entries {
		out[i] = e.mirror
	}
	return out, nil
}

func (ms *Mirrors) checkPrefetch() error {
	if len(ms.entries) <= 1 {
		return nil
	}
	for _, e := range ms.entries {
		if e.prefetch {
			ms.logger.Error("using prefetch with multiple mirrors is not supported")
			return platformerrors.WithContext(
				platformerrors.New(platformerrors.CodeInvalidConfig, "using prefetch with multiple mirrors is not supported"),
				"mirrors", len(ms.entries))
		}
	}
	return nil
}

// Mutator returns the substitute offered by the first active mirror that
// contains src.
func (ms *Mirrors) Mutator(src Source) (Substitute, bool, error) {
	mirrors, err := ms.List()
	if err != nil {
		return Substitute{}, false, err
	}
	for _, m := range mirrors {
		if !m.Contains(src) {
			continue
		}
		if sub, ok := m.Mutator(src); ok {
			ms.logger.Debug("using mirror", "mirror", m, "url", src.URL())
			return sub, true, nil
		}
	}
	return Substitute{}, false, nil
}

// Prefetch copies src into every active prefetching mirror that does not
// hold it yet.
func (ms *Mirrors) Prefetch(src LocalSource) error {
	if ms == nil {
		return nil
	}
	ms.mu.RLock()
	if err := ms.checkPrefetch(); err != nil {
		ms.mu.RUnlock()
		return err
	}
	entries := slices.Clone(ms.entries)
	ms.mu.RUnlock()

	for _, e := range entries {
		if !e.prefetch {
			ms.logger.Debug("not building copy, prefetch is off", "mirror", e.mirror, "url", src.URL())
			continue
		}
		if o, ok := e.mirror.(owner); ok && o.Owns(src.Path()) {
			ms.logger.Debug("source is a mirror copy", "mirror", e.mirror, "path", src.Path())
			continue
		}
		if e.mirror.Contains(src) {
			ms.logger.Debug("mirror already holds a copy", "mirror", e.mirror, "url", src.URL())
			continue
		}
		if err := e.mirror.BuildCopy(src); err != nil {
			return err
		}
	}
	return nil
}

type mirrorsKey struct{}

// WithMirrors returns a context carrying ms.
func WithMirrors(ctx context.Context, ms *Mirrors) context.Context {
	return context.WithValue(ctx, mirrorsKey{}, ms)
}

// FromContext returns the Mirrors stored in ctx, or nil.
func FromContext(ctx context.Context) *Mirrors {
	ms, _ := ctx.Value(mirrorsKey{}).(*Mirrors)
	return ms
}
