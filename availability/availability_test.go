package availability_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spritan/climetlab"
	"github.com/Spritan/climetlab/availability"
)

func grid(dates []string, levels []int, params []string) []map[string]any {
	var out []map[string]any
	for _, d := range dates {
		for _, l := range levels {
			for _, p := range params {
				out = append(out, map[string]any{"date": d, "levelist": l, "param": p})
			}
		}
	}
	return out
}

func TestBuild_UniqueValuesKeepFirstAppearanceOrder(t *testing.T) {
	t.Parallel()

	av := availability.New([]map[string]any{
		{"param": "z", "levelist": 850},
		{"param": "t", "levelist": 500},
		{"param": "z", "levelist": 500},
	})

	uv := av.UniqueValues()
	assert.Equal(t, []any{"z", "t"}, uv["param"])
	assert.Equal(t, []any{int64(850), int64(500)}, uv["levelist"])
	assert.Equal(t, 3, av.Len())
}

func TestBuild_DropsNilFilteredAndIgnoredKeys(t *testing.T) {
	t.Parallel()

	av := availability.New(
		[]map[string]any{{"param": "t", "step": nil, "_path": "a.grib", "mean": 1.5, "md5": "x"}},
		availability.WithFilter(func(k string) bool { return k != "md5" }),
		availability.WithIgnore("_path", "mean"),
	)

	assert.Equal(t, []string{"param"}, av.Keys())
	assert.True(t, av.Contains(map[string]any{"param": "t"}))
}

func TestBuild_ReportsProgress(t *testing.T) {
	t.Parallel()

	var calls []int64
	var total int64
	availability.New(grid([]string{"20210101"}, []int{500, 850}, []string{"t"}),
		availability.WithProgress(func(cur, tot int64) {
			calls = append(calls, cur)
			total = tot
		}))

	assert.Equal(t, []int64{1, 2}, calls)
	assert.Equal(t, int64(2), total)
}

func TestContains_ExactTupleOnly(t *testing.T) {
	t.Parallel()

	av := availability.New([]map[string]any{
		{"param": "t", "levelist": 500},
		{"param": "z", "levelist": 850},
	})

	assert.True(t, av.Contains(map[string]any{"param": "t", "levelist": 500}))
	assert.False(t, av.Contains(map[string]any{"param": "t", "levelist": 850}))
	assert.False(t, av.Contains(map[string]any{"param": "t"}))
}

func TestCheck(t *testing.T) {
	t.Parallel()

	av := availability.New([]map[string]any{
		{"param": "t", "levelist": 500},
		{"param": "z", "levelist": 850},
	})

	tests := []struct {
		name   string
		kwargs map[string]any
		code   string
	}{
		{name: "existing combination", kwargs: map[string]any{"param": "t", "levelist": 500}},
		{name: "single key", kwargs: map[string]any{"param": []any{"t", "z"}}},
		{name: "empty request", kwargs: map[string]any{}},
		{name: "unknown key", kwargs: map[string]any{"area": "europe"}, code: climetlab.CodeUnknownKey},
		{name: "unknown value", kwargs: map[string]any{"levelist": 1000}, code: climetlab.CodeInvalidValue},
		{name: "value of wrong type", kwargs: map[string]any{"levelist": "500"}, code: climetlab.CodeInvalidValue},
		{name: "mapping value", kwargs: map[string]any{"levelist": map[string]any{"from": 500}}, code: climetlab.CodeInvalidType},
		{name: "sparse combination", kwargs: map[string]any{"param": "t", "levelist": 850}, code: climetlab.CodeNoSuchCombination},
		{name: "list expands to missing combination", kwargs: map[string]any{"param": "t", "levelist": []int{500, 850}}, code: climetlab.CodeNoSuchCombination},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := av.Check(tt.kwargs)
			if tt.code == "" {
				require.NoError(t, err)
				return
			}
			iss, ok := climetlab.AsIssues(err)
			require.True(t, ok, "expected Issues, got %v", err)
			assert.True(t, iss.HasCode(tt.code), "codes: %v", iss)
		})
	}
}

func TestCheck_InvalidValueCarriesHint(t *testing.T) {
	t.Parallel()

	av := availability.New([]map[string]any{{"levelist": 500}, {"levelist": 850}})
	iss, ok := climetlab.AsIssues(av.Check(map[string]any{"levelist": 1000}))
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "levelist", iss[0].Key)
	assert.Equal(t, "available: [500, 850]", iss[0].Hint)
}

func TestHypercube_DenseGrid(t *testing.T) {
	t.Parallel()

	// 3 dates x 2 levels x 1 param: param does not vary and is not a dimension.
	av := availability.New(grid([]string{"20210101", "20210102", "20210103"}, []int{500, 850}, []string{"t"}))

	assert.Equal(t, []string{"date", "levelist"}, av.Dimensions())
	assert.Equal(t, 6, av.HypercubeSize())
	assert.True(t, av.IsFullHypercube())
}

func TestHypercube_MissingRecord(t *testing.T) {
	t.Parallel()

	records := grid([]string{"20210101", "20210102", "20210103"}, []int{500, 850}, []string{"t"})
	av := availability.New(records[:5])

	assert.False(t, av.IsFullHypercube())
	assert.False(t, availability.IsFullHypercube(av, 4))
}

func TestHypercube_CountHeuristicAcceptsSparseSet(t *testing.T) {
	t.Parallel()

	// 2x2 product has 4 cells; this set has 4 records but misses (b, 2).
	av := availability.New([]map[string]any{
		{"x": "a", "y": 1},
		{"x": "a", "y": 2},
		{"x": "b", "y": 1},
		{"x": "a", "y": 1},
	})

	assert.True(t, av.IsFullHypercube())
}

func TestHypercube_NoDimensions(t *testing.T) {
	t.Parallel()

	av := availability.New([]map[string]any{{"param": "t"}})
	assert.Empty(t, av.Dimensions())
	assert.True(t, av.IsFullHypercube())
}

func TestVolume_Saturates(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, availability.Volume(nil))
	assert.Equal(t, 6, availability.Volume([]int{2, 3}))
	assert.Equal(t, 0, availability.Volume([]int{math.MaxInt, 0}))
	assert.Equal(t, math.MaxInt, availability.Volume([]int{math.MaxInt / 2, 3}))
	assert.Equal(t, math.MaxInt, availability.Volume([]int{1 << 40, 1 << 40, 2}))
}

func TestString(t *testing.T) {
	t.Parallel()

	av := availability.New([]map[string]any{{"param": "t"}, {"param": "z"}})
	assert.Equal(t, "Availability(param:2 (2 records))", av.String())
}
