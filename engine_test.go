package streamvamana_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sv "github.com/hupe1980/streamvamana"
)

func TestNewValidatesDim(t *testing.T) {
	_, err := sv.New[float32](sv.L2, 0, 10, sv.DefaultParams())
	assert.ErrorIs(t, err, sv.ErrBadArg)
}

func TestNewValidatesCapacity(t *testing.T) {
	_, err := sv.New[float32](sv.L2, 4, 0, sv.DefaultParams())
	assert.ErrorIs(t, err, sv.ErrBadArg)
}

func TestNewValidatesParams(t *testing.T) {
	bad := sv.DefaultParams()
	bad.Alpha = 0.5
	_, err := sv.New[float32](sv.L2, 4, 10, bad)
	assert.ErrorIs(t, err, sv.ErrBadArg)
}

func TestSetStartPointsRandomRejectsSecondCall(t *testing.T) {
	eng, err := sv.New[float32](sv.L2, 4, 10, sv.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, eng.SetStartPointsRandom(1.0))

	err = eng.SetStartPointsRandom(1.0)
	assert.ErrorIs(t, err, sv.ErrInvariantViolation)
}

func TestSetStartPointsRandomRejectsNonPositiveNorm(t *testing.T) {
	eng, err := sv.New[float32](sv.L2, 4, 10, sv.DefaultParams())
	require.NoError(t, err)

	err = eng.SetStartPointsRandom(0)
	assert.ErrorIs(t, err, sv.ErrBadArg)
}

func TestFrozenPointsSeedAutomaticallyAtConstruction(t *testing.T) {
	params := sv.DefaultParams()
	params.NumFrozenPoints = 3

	eng, err := sv.New[float32](sv.L2, 4, 10, params)
	require.NoError(t, err)

	// A subsequent SetStartPointsRandom call should now be rejected: the
	// engine already has entry points from automatic frozen-point seeding.
	err = eng.SetStartPointsRandom(1.0)
	assert.ErrorIs(t, err, sv.ErrInvariantViolation)

	// The frozen points should be searchable-through even though they
	// never surface as results (they carry no tag).
	ctx := context.Background()
	require.NoError(t, eng.InsertPoint(ctx, []float32{1, 0, 0, 0}, sv.Tag(1)))

	results, err := eng.Search(ctx, []float32{1, 0, 0, 0}, 5, 32, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sv.Tag(1), results[0].Tag)
}
