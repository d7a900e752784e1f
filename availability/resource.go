package availability

import (
	"bytes"
	"path"
	"strings"

	json "github.com/goccy/go-json"
	platformerrors "github.com/jmgilman/go/errors"
	"github.com/jmgilman/go/fs/core"
	"gopkg.in/yaml.v3"

	"github.com/Spritan/climetlab/internal/value"
)

// Format identifies an availability resource encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFromPath picks the encoding from the file extension; anything that is
// not .yaml or .yml is treated as JSON.
func FormatFromPath(p string) Format {
	switch strings.ToLower(path.Ext(p)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// document is the on-disk layout. A bare list of records is also accepted.
type document struct {
	Version int              `json:"version" yaml:"version"`
	Records []map[string]any `json:"records" yaml:"records"`
}

const documentVersion = 1

// Load reads a precomputed availability resource from fsys.
func Load(fsys core.ReadFS, p string, opts ...Option) (*Availability, error) {
	ok, err := fsys.Exists(p)
	if err != nil {
		return nil, platformerrors.Wrapf(err, platformerrors.CodeInternal, "stat availability %s", p)
	}
	if !ok {
		return nil, platformerrors.WithContext(
			platformerrors.New(platformerrors.CodeNotFound, "availability resource not found"),
			"path", p)
	}
	data, err := fsys.ReadFile(p)
	if err != nil {
		return nil, platformerrors.Wrapf(err, platformerrors.CodeInternal, "read availability %s", p)
	}
	a, err := Decode(data, FormatFromPath(p), opts...)
	if err != nil {
		return nil, platformerrors.WithContext(err, "path", p)
	}
	return a, nil
}

// Decode parses an availability resource.
func Decode(data []byte, f Format, opts ...Option) (*Availability, error) {
	records, err := DecodeRecords(data, f)
	if err != nil {
		return nil, err
	}
	return New(records, opts...), nil
}

// DecodeRecords parses the records of a resource without indexing them. Nil
// values are dropped and numbers canonicalized.
func DecodeRecords(data []byte, f Format) ([]map[string]any, error) {
	raw, err := decodeRaw(data, f)
	if err != nil {
		return nil, platformerrors.Wrap(err, platformerrors.CodeInvalidInput, "decode availability resource")
	}
	return recordsOf(raw)
}

func decodeRaw(data []byte, f Format) (any, error) {
	var raw any
	switch f {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, err
		}
	}
	return raw, nil
}

func recordsOf(raw any) ([]map[string]any, error) {
	var items []any
	switch t := raw.(type) {
	case []any:
		items = t
	case nil:
		return nil, nil
	default:
		m := value.StringMap(t)
		if m == nil {
			return nil, platformerrors.New(platformerrors.CodeInvalidInput, "availability resource must be a list or an object")
		}
		if v, ok := m["version"]; ok && !value.Equal(v, documentVersion) {
			return nil, platformerrors.WithContext(
				platformerrors.New(platformerrors.CodeInvalidInput, "unsupported availability resource version"),
				"version", v)
		}
		items, _ = m["records"].([]any)
	}
	out := make([]map[string]any, 0, len(items))
	for i, it := range items {
		rec := value.Record(it)
		if rec == nil {
			return nil, platformerrors.WithContext(
				platformerrors.New(platformerrors.CodeInvalidInput, "availability record is not an object"),
				"index", i)
		}
		out = append(out, rec)
	}
	return out, nil
}

// Encode renders the availability in the given format.
func (a *Availability) Encode(f Format) ([]byte, error) {
	doc := document{Version: documentVersion, Records: a.Records()}
	switch f {
	case FormatYAML:
		return yaml.Marshal(doc)
	default:
		return json.MarshalIndent(doc, "", "  ")
	}
}

// Save writes the availability to fsys, creating parent directories.
func (a *Availability) Save(fsys core.WriteFS, p string) error {
	data, err := a.Encode(FormatFromPath(p))
	if err != nil {
		return platformerrors.Wrap(err, platformerrors.CodeInternal, "encode availability")
	}
	if dir := path.Dir(p); dir != "." && dir != "" {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return platformerrors.Wrapf(err, platformerrors.CodeInternal, "create %s", dir)
		}
	}
	if err := fsys.WriteFile(p, data, 0o644); err != nil {
		return platformerrors.Wrapf(err, platformerrors.CodeInternal, "write availability %s", p)
	}
	a.logger.Info("saved availability", "path", p, "records", a.Len())
	return nil
}
