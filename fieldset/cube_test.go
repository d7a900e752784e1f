package fieldset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spritan/climetlab"
	"github.com/Spritan/climetlab/fieldset"
)

func TestCube(t *testing.T) {
	t.Parallel()

	c, err := fieldset.FromRecords(sample()).Cube("level", "date")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 3}, c.Shape())
	assert.Equal(t, []string{"levelist", "date"}, c.Keys())
	assert.Equal(t, "Cube(levelist:2, date:3 (6 fields))", c.String())

	f, err := c.At(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 850, f.Metadata()["levelist"])
	assert.Equal(t, 20210103, f.Metadata()["date"])

	_, err = c.At(2, 0)
	assert.Error(t, err)
	_, err = c.At(0)
	assert.Error(t, err)
}

func TestCube_ShapeMismatch(t *testing.T) {
	t.Parallel()

	_, err := fieldset.FromRecords(sample()[:5]).Cube("levelist", "date")
	iss, ok := climetlab.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(climetlab.CodeShapeMismatch))

	_, err = fieldset.FromRecords(nil).Cube("date")
	assert.Error(t, err)
}

func TestCoordsIndexRoundTrip(t *testing.T) {
	t.Parallel()

	shape := []int{2, 3, 4}
	for i := 0; i < 24; i++ {
		assert.Equal(t, i, fieldset.CoordsToIndex(fieldset.IndexToCoords(i, shape), shape))
	}
	assert.Equal(t, 23, fieldset.CoordsToIndex([]int{1, 2, 3}, shape))
}
