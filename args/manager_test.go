package args_test

import (
	"testing"

	platformerrors "github.com/jmgilman/go/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Spritan/climetlab"
	"github.com/Spritan/climetlab/args"
	"github.com/Spritan/climetlab/availability"
	"github.com/Spritan/climetlab/normalize"
)

func levels(vals ...any) *availability.Availability {
	recs := make([]map[string]any, 0, len(vals))
	for _, v := range vals {
		recs = append(recs, map[string]any{"level": v, "param": "t"})
	}
	return availability.New(recs)
}

func TestAppend_MismatchInEitherOrder(t *testing.T) {
	t.Parallel()

	strLevels := levels("500", "850")

	m := args.NewManager()
	require.NoError(t, m.Append(args.Normalizer("level", normalize.Int())))
	err := m.Append(args.AvailabilityCheck(strLevels))
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeInvalidConfig, platformerrors.GetCode(err))
	assert.True(t, args.IsConfigError(err))
	assert.Equal(t, 1, m.Len(), "failing rule must not be inserted")

	m = args.NewManager()
	require.NoError(t, m.Append(args.AvailabilityCheck(strLevels)))
	err = m.Append(args.Normalizer("level", normalize.Int()))
	assert.Equal(t, platformerrors.CodeInvalidConfig, platformerrors.GetCode(err))
	assert.Equal(t, 1, m.Len())
}

func TestAppend_MatchingRepresentations(t *testing.T) {
	t.Parallel()

	m := args.NewManager()
	require.NoError(t, m.Append(
		args.AvailabilityCheck(levels("500", "850")),
		args.Normalizer("level", normalize.String()),
	))

	m = args.NewManager()
	require.NoError(t, m.Append(
		args.Normalizer("level", normalize.Multiple(normalize.Int())),
		args.AvailabilityCheck(levels(500, 850)),
	))
	assert.Equal(t, 2, m.Len())
}

func TestAppend_NormalizerKeyAbsentFromAvailability(t *testing.T) {
	t.Parallel()

	m := args.NewManager()
	require.NoError(t, m.Append(
		args.AvailabilityCheck(levels(500)),
		args.Normalizer("date", normalize.Date("YYYYMMDD")),
	))
}

func TestAppend_MultipleAvailabilities(t *testing.T) {
	t.Parallel()

	m := args.NewManager()
	require.NoError(t, m.Append(args.AvailabilityCheck(levels(500))))
	err := m.Append(args.AvailabilityCheck(levels(850)))
	require.Error(t, err)
	assert.Equal(t, platformerrors.CodeNotImplemented, platformerrors.GetCode(err))
	assert.Contains(t, err.Error(), "multiple availabilities")
	assert.Equal(t, 1, m.Len())
}

func TestAppend_MultipleNormalizersSameKey(t *testing.T) {
	t.Parallel()

	m := args.NewManager()
	require.NoError(t, m.Append(
		args.Normalizer("level", normalize.Int()),
		args.Normalizer("param", normalize.String()),
	))
	err := m.Append(args.Normalizer("level", normalize.Float()))
	assert.Equal(t, platformerrors.CodeNotImplemented, platformerrors.GetCode(err))
	assert.Equal(t, 2, m.Len())
}

func TestAppend_BatchIsNotAtomic(t *testing.T) {
	t.Parallel()

	m := args.NewManager()
	err := m.Append(
		args.Normalizer("a", normalize.Int()),
		args.Normalizer("b", normalize.Int()),
		args.Normalizer("a", normalize.Float()),
		args.Normalizer("c", normalize.Int()),
	)
	require.Error(t, err)
	require.Equal(t, 2, m.Len())
	assert.Equal(t, "Normalizer(a)", m.Rules()[0].String())
	assert.Equal(t, "Normalizer(b)", m.Rules()[1].String())
}

func TestAppend_AliasConflicts(t *testing.T) {
	t.Parallel()

	m := args.NewManager()
	require.NoError(t, m.Append(args.Alias("levelist", "level")))

	err := m.Append(args.Alias("param", "level"))
	assert.Equal(t, platformerrors.CodeInvalidConfig, platformerrors.GetCode(err))

	err = m.Append(args.Alias("number", "levelist"))
	assert.Equal(t, platformerrors.CodeInvalidConfig, platformerrors.GetCode(err))

	err = m.Append(args.Normalizer("level", normalize.Int()))
	assert.Equal(t, platformerrors.CodeInvalidConfig, platformerrors.GetCode(err))

	require.NoError(t, m.Append(args.Normalizer("levelist", normalize.Int())))
	assert.Equal(t, 2, m.Len())
}

func TestMustAppend_Panics(t *testing.T) {
	t.Parallel()

	m := args.NewManager().MustAppend(args.AvailabilityCheck(levels(500)))
	assert.Panics(t, func() { m.MustAppend(args.AvailabilityCheck(levels(500))) })
}

func TestApply_OrderMatters(t *testing.T) {
	t.Parallel()

	avail := levels(500, 850)
	kwargs := map[string]any{"level": "500"}

	normalizeFirst := args.NewManager().MustAppend(
		args.Normalizer("level", normalize.Int()),
		args.AvailabilityCheck(avail),
	)
	call, err := normalizeFirst.Apply(args.Call{Kwargs: kwargs})
	require.NoError(t, err)
	assert.Equal(t, int64(500), call.Kwargs["level"])
	assert.Equal(t, "500", kwargs["level"], "caller kwargs untouched")

	checkFirst := args.NewManager().MustAppend(
		args.AvailabilityCheck(avail),
		args.Normalizer("level", normalize.Int()),
	)
	_, err = checkFirst.Apply(args.Call{Kwargs: kwargs})
	iss, ok := climetlab.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(climetlab.CodeInvalidValue))
}

func TestApply_CommutativeNormalizers(t *testing.T) {
	t.Parallel()

	kwargs := map[string]any{"level": "500", "param": 2}
	ab := args.NewManager().MustAppend(
		args.Normalizer("level", normalize.Int()),
		args.Normalizer("param", normalize.String()),
	)
	ba := args.NewManager().MustAppend(
		args.Normalizer("param", normalize.String()),
		args.Normalizer("level", normalize.Int()),
	)
	c1, err := ab.Apply(args.Call{Kwargs: kwargs})
	require.NoError(t, err)
	c2, err := ba.Apply(args.Call{Kwargs: kwargs})
	require.NoError(t, err)
	assert.Equal(t, c1.Kwargs, c2.Kwargs)
}

func TestApply_NormalizerErrorBecomesIssue(t *testing.T) {
	t.Parallel()

	m := args.NewManager().MustAppend(args.Normalizer("level", normalize.Int()))
	_, err := m.Apply(args.Call{Kwargs: map[string]any{"level": "high"}})
	iss, ok := climetlab.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	assert.Equal(t, "level", iss[0].Key)
	assert.Equal(t, "Normalizer(level)", iss[0].Rule)
	assert.ErrorIs(t, err, normalize.ErrInvalid)
}

func TestApply_Alias(t *testing.T) {
	t.Parallel()

	m := args.NewManager().MustAppend(
		args.Alias("levelist", "level"),
		args.Normalizer("levelist", normalize.Int()),
	)
	call, err := m.Apply(args.Call{Kwargs: map[string]any{"level": "850"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"levelist": int64(850)}, call.Kwargs)

	_, err = m.Apply(args.Call{Kwargs: map[string]any{"level": 850, "levelist": 850}})
	require.NoError(t, err)

	_, err = m.Apply(args.Call{Kwargs: map[string]any{"level": 500, "levelist": 850}})
	iss, ok := climetlab.AsIssues(err)
	require.True(t, ok)
	assert.True(t, iss.HasCode(climetlab.CodeConflict))
}

func TestFromExisting(t *testing.T) {
	t.Parallel()

	src := args.NewManager().MustAppend(args.Normalizer("level", normalize.Int()))
	shared := args.FromExisting(src, false)
	shared.MustAppend(args.Normalizer("param", normalize.String()))
	assert.Equal(t, 2, src.Len(), "appends are visible through both managers")

	moved := args.FromExisting(src, true)
	assert.Equal(t, 0, src.Len())
	assert.Equal(t, 2, moved.Len())

	assert.Equal(t, 0, args.FromExisting(nil, true).Len())
}

func TestString(t *testing.T) {
	t.Parallel()

	m := args.NewManager().MustAppend(
		args.Alias("param", "variable", "parameter"),
		args.Normalizer("param", normalize.String()),
	)
	assert.Equal(t, "ArgsManager\n  0: Alias(param <- variable, parameter)\n  1: Normalizer(param)\n", m.String())
}
