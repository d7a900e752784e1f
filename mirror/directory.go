package mirror

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/charmbracelet/log"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/billy"
	"github.com/jmgilman/go/fs/core"

	"github.com/Spritan/climetlab/internal/config"
)

// DirectoryOption configures a DirectoryMirror.
type DirectoryOption func(*DirectoryMirror)

// WithOriginPrefix restricts the mirror to URLs starting with prefix and
// stores them under the remainder of the URL.
func WithOriginPrefix(prefix string) DirectoryOption {
	return func(m *DirectoryMirror) { m.prefix = prefix }
}

// WithFS sets the filesystem the mirror lives on. The default is the local
// filesystem.
func WithFS(fsys core.FS) DirectoryOption {
	return func(m *DirectoryMirror) { m.fs = fsys }
}

// WithLogger overrides the package logger.
func WithLogger(l *log.Logger) DirectoryOption {
	return func(m *DirectoryMirror) { m.logger = l }
}

// DirectoryMirror keeps copies of URL sources under a root directory.
type DirectoryMirror struct {
	root   string
	prefix string
	fs     core.FS
	logger *log.Logger
}

// NewDirectory returns a mirror rooted at root.
func NewDirectory(root string, opts ...DirectoryOption) *DirectoryMirror {
	m := &DirectoryMirror{root: root}
	for _, opt := range opts {
		opt(m)
	}
	if m.fs == nil {
		m.fs = billy.NewLocal()
	}
	if m.logger == nil {
		m.logger = log.Default().WithPrefix("mirror")
	}
	return m
}

func (m *DirectoryMirror) Root() string         { return m.root }
func (m *DirectoryMirror) OriginPrefix() string { return m.prefix }

func (m *DirectoryMirror) String() string { return "DirectoryMirror(" + m.root + ")" }

// keys derives the path elements below root for rawURL.
func (m *DirectoryMirror) keys(rawURL string) []string {
	if m.prefix != "" {
		rest := strings.TrimPrefix(rawURL, m.prefix)
		return []string{"url", strings.TrimPrefix(rest, "/")}
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return []string{"url", rawURL}
	}
	return []string{"url", u.Scheme, u.Host, u.Path}
}

// RealPath returns where the copy of src lives.
func (m *DirectoryMirror) RealPath(src Source) string {
	return path.Join(append([]string{m.root}, m.keys(src.URL())...)...)
}

// Contains reports whether the copy of src exists.
func (m *DirectoryMirror) Contains(src Source) bool {
	if !strings.HasPrefix(src.URL(), m.prefix) {
		return false
	}
	ok, err := m.fs.Exists(m.RealPath(src))
	if err != nil {
		m.logger.Warn("cannot stat mirror copy", "path", m.RealPath(src), "err", err)
		return false
	}
	return ok
}

// Owns reports whether localPath lies under the mirror root.
func (m *DirectoryMirror) Owns(localPath string) bool {
	root := path.Clean(m.root)
	p := path.Clean(localPath)
	return p == root || strings.HasPrefix(p, strings.TrimSuffix(root, "/")+"/")
}

// Mutator redirects src to its local copy.
func (m *DirectoryMirror) Mutator(src Source) (Substitute, bool) {
	target := "file://" + m.RealPath(src)
	if target == src.URL() {
		return Substitute{}, false
	}
	m.logger.Debug("found mirrored file", "url", src.URL(), "copy", target)
	return Substitute{Kind: "url", Args: []any{target}}, true
}

// BuildCopy copies the local content of src into the mirror.
func (m *DirectoryMirror) BuildCopy(src LocalSource) error {
	target := m.RealPath(src)
	m.logger.Info("building mirror", "url", src.URL(), "from", src.Path(), "to", target)
	data, err := m.fs.ReadFile(src.Path())
	if err != nil {
		return platformerrors.WithContext(
			platformerrors.Wrap(err, platformerrors.CodeNotFound, "read source for mirror"),
			"path", src.Path())
	}
	if err := m.fs.MkdirAll(path.Dir(target), 0o755); err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInternal, "create mirror directory for %s", target)
	}
	if err := m.fs.WriteFile(target, data, 0o644); err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInternal, "write mirror copy %s", target)
	}
	return nil
}

// FromEnv builds the mirror set described by a CLIMETLAB_MIRROR value. An
// empty value yields an empty set.
func FromEnv(val string, opts ...DirectoryOption) (*Mirrors, error) {
	ms := New()
	fields := strings.Fields(val)
	switch len(fields) {
	case 0:
		return ms, nil
	case 1:
		ms.Activate(NewDirectory(strings.TrimPrefix(fields[0], "file://"), opts...), false)
	case 2:
		ms.logger.Warn("deprecated: defining a mirror as \"origin-prefix path\" in " + config.EnvPrefix + "_MIRROR")
		opts = append(opts, WithOriginPrefix(fields[0]))
		ms.Activate(NewDirectory(strings.TrimPrefix(fields[1], "file://"), opts...), false)
	default:
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.CodeInvalidConfig, "cannot parse mirror definition"),
			"value", val)
	}
	return ms, nil
}

// Default builds the mirror set from the process settings.
func Default(ctx context.Context) (*Mirrors, error) {
	s, err := config.Load(ctx, config.LoadOptions{})
	if err != nil {
		return nil, err
	}
	return FromEnv(s.Mirror)
}
