package streamvamana_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sv "github.com/hupe1980/streamvamana"
	"github.com/hupe1980/streamvamana/internal/labels"
)

func TestSearchRejectsBadK(t *testing.T) {
	eng := newTestEngine(t, 10)
	_, err := eng.Search(context.Background(), []float32{1, 1}, 0, 32, nil)
	assert.ErrorIs(t, err, sv.ErrBadArg)
}

func TestSearchRejectsDimensionMismatch(t *testing.T) {
	eng := newTestEngine(t, 10)
	_, err := eng.Search(context.Background(), []float32{1, 1, 1}, 1, 32, nil)
	assert.ErrorIs(t, err, sv.ErrBadArg)
}

func TestSearchFilterExcludesUnlabeledPoints(t *testing.T) {
	eng := newTestEngine(t, 100)
	ctx := context.Background()

	require.NoError(t, eng.InsertPoint(ctx, []float32{1, 1}, sv.Tag(1), labels.Label(7)))
	require.NoError(t, eng.InsertPoint(ctx, []float32{1.01, 1.01}, sv.Tag(2)))

	results, err := eng.Search(ctx, []float32{1, 1}, 5, 32, labels.NewFilter(7))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sv.Tag(1), results[0].Tag)
}

func TestSearchFilterUniversalLabelAlwaysMatches(t *testing.T) {
	eng, err := sv.New[float32](sv.L2, 2, 10, sv.DefaultParams(), sv.WithUniversalLabel(labels.Label(99)))
	require.NoError(t, err)
	require.NoError(t, eng.SetStartPointsRandom(1.0))

	ctx := context.Background()
	require.NoError(t, eng.InsertPoint(ctx, []float32{1, 1}, sv.Tag(1), labels.Label(99)))

	results, err := eng.Search(ctx, []float32{1, 1}, 5, 32, labels.NewFilter(42))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sv.Tag(1), results[0].Tag)
}

func TestSearchWithNoEntryPointsReturnsEmpty(t *testing.T) {
	eng, err := sv.New[float32](sv.L2, 2, 10, sv.DefaultParams())
	require.NoError(t, err)

	// no SetStartPointsRandom, no inserts: no entry points exist yet.
	results, err := eng.Search(context.Background(), []float32{1, 1}, 5, 32, nil)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchResultsOrderedByAscendingDistance(t *testing.T) {
	eng := newTestEngine(t, 100)
	ctx := context.Background()

	require.NoError(t, eng.InsertPoint(ctx, []float32{0, 5}, sv.Tag(1)))
	require.NoError(t, eng.InsertPoint(ctx, []float32{0, 1}, sv.Tag(2)))
	require.NoError(t, eng.InsertPoint(ctx, []float32{0, 3}, sv.Tag(3)))

	results, err := eng.Search(ctx, []float32{0, 0}, 3, 32, nil)
	require.NoError(t, err)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i].Distance, results[i-1].Distance)
	}
}
