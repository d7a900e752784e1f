package availability

import (
	"iter"
	"sort"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/Spritan/climetlab/internal/value"
)

// Option configures how an Availability is built.
type Option func(*options)

type options struct {
	filter   func(key string) bool
	ignore   map[string]struct{}
	progress func(current, total int64)
	total    int64
	logger   *log.Logger
}

// WithFilter keeps only the keys for which keep returns true.
func WithFilter(keep func(key string) bool) Option {
	return func(o *options) { o.filter = keep }
}

// WithIgnore drops the given keys regardless of the filter.
func WithIgnore(keys ...string) Option {
	return func(o *options) {
		if o.ignore == nil {
			o.ignore = make(map[string]struct{}, len(keys))
		}
		for _, k := range keys {
			o.ignore[k] = struct{}{}
		}
	}
}

// WithProgress registers a callback invoked after each record is indexed.
// total is the value given to WithTotal, or -1 when unknown.
func WithProgress(fn func(current, total int64)) Option {
	return func(o *options) { o.progress = fn }
}

// WithTotal announces the number of records the sequence will yield.
func WithTotal(n int64) Option {
	return func(o *options) { o.total = n }
}

// WithLogger overrides the package logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func defaultOptions() options {
	return options{total: -1, logger: log.Default().WithPrefix("availability")}
}

// Availability is the set of metadata combinations observed in a dataset.
type Availability struct {
	keys     []string
	records  []map[string]any
	unique   map[string][]any
	seen     map[string]map[string]struct{}
	postings map[string]map[string][]int
	tuples   map[string]int
	logger   *log.Logger
}

// Build indexes every record yielded by seq. Nil values are dropped, then
// filtered and ignored keys are removed. Records are consumed once.
func Build(seq iter.Seq[map[string]any], opts ...Option) *Availability {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	a := empty(o.logger)
	var n int64
	for rec := range seq {
		a.add(clean(rec, o))
		n++
		if o.progress != nil {
			o.progress(n, o.total)
		}
	}
	a.logger.Debug("built availability", "records", len(a.records), "keys", len(a.keys))
	return a
}

// New builds an Availability from an in-memory slice of records.
func New(records []map[string]any, opts ...Option) *Availability {
	return Build(func(yield func(map[string]any) bool) {
		for _, r := range records {
			if !yield(r) {
				return
			}
		}
	}, append([]Option{WithTotal(int64(len(records)))}, opts...)...)
}

func empty(logger *log.Logger) *Availability {
	return &Availability{
		unique:   map[string][]any{},
		seen:     map[string]map[string]struct{}{},
		postings: map[string]map[string][]int{},
		tuples:   map[string]int{},
		logger:   logger,
	}
}

func clean(rec map[string]any, o options) map[string]any {
	out := make(map[string]any, len(rec))
	for k, v := range rec {
		if v == nil {
			continue
		}
		if o.filter != nil && !o.filter(k) {
			continue
		}
		if _, skip := o.ignore[k]; skip {
			continue
		}
		out[k] = value.Canonical(v)
	}
	return out
}

func (a *Availability) add(rec map[string]any) {
	idx := len(a.records)
	a.records = append(a.records, rec)
	for _, k := range sortedKeys(rec) {
		v := rec[k]
		vk := value.Key(v)
		set, ok := a.seen[k]
		if !ok {
			set = map[string]struct{}{}
			a.seen[k] = set
			a.keys = append(a.keys, k)
			a.postings[k] = map[string][]int{}
		}
		if _, dup := set[vk]; !dup {
			set[vk] = struct{}{}
			a.unique[k] = append(a.unique[k], v)
		}
		a.postings[k][vk] = append(a.postings[k][vk], idx)
	}
	a.tuples[tupleKey(rec)]++
}

// Len returns the number of records indexed, duplicates included.
func (a *Availability) Len() int { return len(a.records) }

// Keys returns the metadata keys in order of first appearance.
func (a *Availability) Keys() []string { return append([]string(nil), a.keys...) }

// UniqueValues returns, for every key, its distinct values in order of first
// appearance. The returned map is a copy.
func (a *Availability) UniqueValues() map[string][]any {
	out := make(map[string][]any, len(a.unique))
	for k, vs := range a.unique {
		out[k] = append([]any(nil), vs...)
	}
	return out
}

// Values returns the distinct values of one key.
func (a *Availability) Values(key string) ([]any, bool) {
	vs, ok := a.unique[key]
	if !ok {
		return nil, false
	}
	return append([]any(nil), vs...), true
}

// Records returns shallow copies of the indexed records.
func (a *Availability) Records() []map[string]any {
	out := make([]map[string]any, len(a.records))
	for i, r := range a.records {
		cp := make(map[string]any, len(r))
		for k, v := range r {
			cp[k] = v
		}
		out[i] = cp
	}
	return out
}

// Contains reports whether a record with exactly this metadata tuple exists.
func (a *Availability) Contains(rec map[string]any) bool {
	cleaned := clean(rec, options{})
	return a.tuples[tupleKey(cleaned)] > 0
}

// String summarizes the availability as "Availability(key:n, ... (N records))".
func (a *Availability) String() string {
	b := &strings.Builder{}
	b.WriteString("Availability(")
	for i, k := range a.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteString(":")
		b.WriteString(strconv.Itoa(len(a.unique[k])))
	}
	if len(a.keys) > 0 {
		b.WriteString(" ")
	}
	b.WriteString("(")
	b.WriteString(strconv.Itoa(len(a.records)))
	b.WriteString(" records))")
	return b.String()
}

func tupleKey(rec map[string]any) string {
	b := &strings.Builder{}
	for _, k := range sortedKeys(rec) {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(value.Key(rec[k]))
		b.WriteByte(0)
	}
	return b.String()
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
