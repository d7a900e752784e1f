// Package fieldset indexes collections of fields by their metadata.
//
// A FieldSet lazily builds its availability the first time it is asked for
// and keeps it for its whole lifetime; fields added to a derived set never
// invalidate the parent's availability.
package fieldset

import (
	"fmt"
	"iter"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/jmgilman/go/fs/core"

	"github.com/Spritan/climetlab/availability"
)

// Field is one unit of data, seen only through its metadata.
type Field interface {
	Metadata() map[string]any
}

// Record is a Field backed by a plain map.
type Record map[string]any

func (r Record) Metadata() map[string]any { return r }

// Option configures a FieldSet.
type Option func(*options)

type options struct {
	fsys     core.ReadFS
	path     string
	progress func(current, total int64)
	logger   *log.Logger
}

// WithAvailabilityResource makes the first call to Availability load path from
// fsys when the file exists, instead of scanning every field.
func WithAvailabilityResource(fsys core.ReadFS, path string) Option {
	return func(o *options) { o.fsys, o.path = fsys, path }
}

// WithProgress reports availability building progress.
func WithProgress(fn func(current, total int64)) Option {
	return func(o *options) { o.progress = fn }
}

// WithLogger overrides the package logger.
func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// FieldSet is an indexable collection of fields with a memoized availability.
type FieldSet struct {
	fields []Field
	opts   options

	once     sync.Once
	avail    *availability.Availability
	availErr error
}

// New returns a FieldSet over fields. The slice is not copied.
func New(fields []Field, opts ...Option) *FieldSet {
	o := options{logger: log.Default().WithPrefix("fieldset")}
	for _, opt := range opts {
		opt(&o)
	}
	return &FieldSet{fields: fields, opts: o}
}

// FromRecords wraps plain metadata maps as Records.
func FromRecords(records []map[string]any, opts ...Option) *FieldSet {
	fields := make([]Field, len(records))
	for i, r := range records {
		fields[i] = Record(r)
	}
	return New(fields, opts...)
}

// derive builds a set sharing fs's options but not its availability resource.
func (fs *FieldSet) derive(fields []Field) *FieldSet {
	o := fs.opts
	o.fsys, o.path = nil, ""
	return &FieldSet{fields: fields, opts: o}
}

func (fs *FieldSet) Len() int { return len(fs.fields) }

// At returns the i-th field.
func (fs *FieldSet) At(i int) Field { return fs.fields[i] }

// All iterates over the fields in order.
func (fs *FieldSet) All() iter.Seq2[int, Field] {
	return func(yield func(int, Field) bool) {
		for i, f := range fs.fields {
			if !yield(i, f) {
				return
			}
		}
	}
}

// Metadata returns the metadata of every field.
func (fs *FieldSet) Metadata() iter.Seq[map[string]any] {
	return func(yield func(map[string]any) bool) {
		for _, f := range fs.fields {
			if !yield(f.Metadata()) {
				return
			}
		}
	}
}

// Merge concatenates fs with others into a new set.
func (fs *FieldSet) Merge(others ...*FieldSet) *FieldSet {
	n := len(fs.fields)
	for _, o := range others {
		n += o.Len()
	}
	fields := make([]Field, 0, n)
	fields = append(fields, fs.fields...)
	for _, o := range others {
		fields = append(fields, o.fields...)
	}
	return fs.derive(fields)
}

func (fs *FieldSet) String() string {
	return fmt.Sprintf("FieldSet(%d fields)", len(fs.fields))
}
