package fieldset

import (
	"strings"

	platformerrors "github.com/jmgilman/go/errors"

	"github.com/Spritan/climetlab/availability"
)

var reservedKeys = map[string]struct{}{
	// file parts
	"_path": {}, "_offset": {}, "_length": {},
	// statistics
	"mean": {}, "std": {}, "min": {}, "max": {},
	// auxiliary
	"param_level": {}, "md5GridSection": {},
}

// IsReserved reports whether key is excluded from a field set's availability.
func IsReserved(key string) bool {
	if strings.HasPrefix(key, "_") {
		return true
	}
	_, ok := reservedKeys[key]
	return ok
}

// Availability returns the availability of the set, computing it on first
// use. The result, or the error, is kept for the lifetime of fs; concurrent
// first callers wait for a single computation.
func (fs *FieldSet) Availability() (*availability.Availability, error) {
	fs.once.Do(func() {
		fs.avail, fs.availErr = fs.loadOrBuild()
	})
	return fs.avail, fs.availErr
}

func (fs *FieldSet) loadOrBuild() (*availability.Availability, error) {
	if fs.opts.fsys != nil && fs.opts.path != "" {
		ok, err := fs.opts.fsys.Exists(fs.opts.path)
		if err != nil {
			return nil, platformerrors.Wrapf(err, platformerrors.CodeInternal, "stat %s", fs.opts.path)
		}
		if ok {
			fs.opts.logger.Debug("loading availability", "path", fs.opts.path)
			return availability.Load(fs.opts.fsys, fs.opts.path, availability.WithLogger(fs.opts.logger))
		}
	}
	fs.opts.logger.Debug("building availability", "fields", len(fs.fields))
	return fs.CustomAvailability(func(k string) bool { return !IsReserved(k) }), nil
}

// CustomAvailability builds an availability over the fields, keeping only the
// keys accepted by filter (all keys when nil) and not listed in ignore. The
// result is not cached.
func (fs *FieldSet) CustomAvailability(filter func(key string) bool, ignore ...string) *availability.Availability {
	total := int64(len(fs.fields))
	progress := fs.opts.progress
	if progress == nil {
		progress = fs.logProgress()
	}
	opts := []availability.Option{
		availability.WithTotal(total),
		availability.WithProgress(progress),
		availability.WithIgnore(ignore...),
		availability.WithLogger(fs.opts.logger),
	}
	if filter != nil {
		opts = append(opts, availability.WithFilter(filter))
	}
	return availability.Build(fs.Metadata(), opts...)
}

// logProgress logs every tenth of the way at info level.
func (fs *FieldSet) logProgress() func(current, total int64) {
	last := int64(-1)
	return func(current, total int64) {
		if total <= 0 {
			return
		}
		step := current * 10 / total
		if step == last {
			return
		}
		last = step
		fs.opts.logger.Info("building availability", "done", current, "total", total)
	}
}

// IsFullHypercube compares the number of fields with the product of the
// value counts of the varying dimensions. Only the count is compared: a sparse
// set whose size happens to equal the product is reported as full.
func (fs *FieldSet) IsFullHypercube() (bool, error) {
	a, err := fs.Availability()
	if err != nil {
		return false, err
	}
	return availability.IsFullHypercube(a, fs.Len()), nil
}
