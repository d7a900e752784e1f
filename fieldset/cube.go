package fieldset

import (
	"fmt"
	"strings"

	platformerrors "github.com/jmgilman/go/errors"

	"github.com/Spritan/climetlab"
	"github.com/Spritan/climetlab/availability"
	"github.com/Spritan/climetlab/internal/value"
)

// Cube is a dense view of a field set along named dimensions.
type Cube struct {
	source *FieldSet
	keys   []string
	coords map[string][]any
	shape  []int
}

// Cube orders fs by keys and checks that the product of the distinct-value
// counts equals the number of fields. A mismatch is reported as a
// shape_mismatch issue.
func (fs *FieldSet) Cube(keys ...string) (*Cube, error) {
	if fs.Len() == 0 {
		return nil, platformerrors.New(platformerrors.CodeInvalidInput, "no fields to build a cube from")
	}
	keys = canonicalKeys(keys)
	coords := fs.Coords(keys...)
	shape := make([]int, len(keys))
	for i, k := range keys {
		shape[i] = len(coords[k])
	}
	if size := availability.Volume(shape); size != fs.Len() {
		return nil, climetlab.Issues{climetlab.IssueKV("", climetlab.CodeShapeMismatch,
			"shape", fmt.Sprint(shape), "size", size, "fields", fs.Len())}
	}
	return &Cube{source: fs.OrderBy(keys...), keys: keys, coords: coords, shape: shape}, nil
}

// Shape returns the number of values along each dimension.
func (c *Cube) Shape() []int { return append([]int(nil), c.shape...) }

// Keys returns the dimension names.
func (c *Cube) Keys() []string { return append([]string(nil), c.keys...) }

// Coords returns the values along one dimension.
func (c *Cube) Coords(key string) []any { return append([]any(nil), c.coords[key]...) }

// FieldSet returns the ordered fields backing the cube.
func (c *Cube) FieldSet() *FieldSet { return c.source }

// At returns the field at the given position, one index per dimension.
func (c *Cube) At(coords ...int) (Field, error) {
	if len(coords) != len(c.shape) {
		return nil, platformerrors.Newf(platformerrors.CodeInvalidInput,
			"expected %d coordinates, got %d", len(c.shape), len(coords))
	}
	for i, x := range coords {
		if x < 0 || x >= c.shape[i] {
			return nil, platformerrors.WithContext(
				platformerrors.Newf(platformerrors.CodeInvalidInput, "coordinate %d out of range [0, %d)", x, c.shape[i]),
				"dimension", c.keys[i])
		}
	}
	return c.source.At(CoordsToIndex(coords, c.shape)), nil
}

func (c *Cube) String() string {
	parts := make([]string, len(c.keys))
	for i, k := range c.keys {
		parts[i] = fmt.Sprintf("%s:%d", k, c.shape[i])
	}
	return fmt.Sprintf("Cube(%s (%d fields))", strings.Join(parts, ", "), c.source.Len())
}

// Describe lists each dimension with its values.
func (c *Cube) Describe() string {
	b := &strings.Builder{}
	for _, k := range c.keys {
		fmt.Fprintf(b, "%s: %s\n", k, value.Format(c.coords[k]))
	}
	return b.String()
}

// CoordsToIndex maps row-major coordinates to a flat index.
func CoordsToIndex(coords, shape []int) int {
	idx, n := 0, 1
	for i := len(coords) - 1; i >= 0; i-- {
		idx += coords[i] * n
		n *= shape[i]
	}
	return idx
}

// IndexToCoords is the inverse of CoordsToIndex.
func IndexToCoords(index int, shape []int) []int {
	out := make([]int, len(shape))
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = index % shape[i]
		index /= shape[i]
	}
	return out
}
