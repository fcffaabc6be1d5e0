package streamvamana_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sv "github.com/hupe1980/streamvamana"
	"github.com/hupe1980/streamvamana/internal/labels"
)

func TestLazyDeleteThenSearchExcludesTombstoned(t *testing.T) {
	eng := newTestEngine(t, 100)
	ctx := context.Background()

	require.NoError(t, eng.InsertPoint(ctx, []float32{1, 1}, sv.Tag(1)))
	require.NoError(t, eng.InsertPoint(ctx, []float32{2, 2}, sv.Tag(2)))

	require.NoError(t, eng.LazyDelete(sv.Tag(1)))

	results, err := eng.Search(ctx, []float32{1, 1}, 5, 32, nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, sv.Tag(1), r.Tag, "search returned a tombstoned tag")
	}
}

func TestLazyDeleteUnknownTag(t *testing.T) {
	eng := newTestEngine(t, 10)
	err := eng.LazyDelete(sv.Tag(999))
	assert.ErrorIs(t, err, sv.ErrUnknownTag)
}

func TestLazyDeleteRejectsLabeledPoint(t *testing.T) {
	eng := newTestEngine(t, 10)
	ctx := context.Background()
	require.NoError(t, eng.InsertPoint(ctx, []float32{1, 1}, sv.Tag(1), labels.Label(5)))

	err := eng.LazyDelete(sv.Tag(1))
	assert.ErrorIs(t, err, sv.ErrUnsupported)
}

func TestLazyDeleteAllowsUniversalLabeledPoint(t *testing.T) {
	eng, err := sv.New[float32](sv.L2, 2, 10, sv.DefaultParams(), sv.WithUniversalLabel(labels.Label(1)))
	require.NoError(t, err)
	require.NoError(t, eng.SetStartPointsRandom(1.0))

	ctx := context.Background()
	require.NoError(t, eng.InsertPoint(ctx, []float32{1, 1}, sv.Tag(1), labels.Label(1)))
	assert.NoError(t, eng.LazyDelete(sv.Tag(1)))
}

func TestConsolidateDeletesFreesTombstonedSlots(t *testing.T) {
	eng := newTestEngine(t, 100)
	ctx := context.Background()

	for i := sv.Tag(1); i <= 5; i++ {
		require.NoError(t, eng.InsertPoint(ctx, []float32{float32(i), float32(i)}, i))
	}
	require.NoError(t, eng.LazyDelete(sv.Tag(2)))
	require.NoError(t, eng.LazyDelete(sv.Tag(3)))

	report, err := eng.ConsolidateDeletes(ctx, sv.ConsolidateParams{})
	require.NoError(t, err)
	assert.Equal(t, sv.ConsolidateSuccess, report.Status)
	assert.EqualValues(t, 2, report.SlotsReleased)

	// freed tags should be reusable.
	require.NoError(t, eng.InsertPoint(ctx, []float32{9, 9}, sv.Tag(2)))

	results, err := eng.Search(ctx, []float32{3, 3}, 10, 32, nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, sv.Tag(3), r.Tag, "search returned a consolidated-away tag")
	}
}

func TestSlideWindowEvictsTrailingTagAndConsolidatesOnInterval(t *testing.T) {
	eng := newTestEngine(t, 100)
	ctx := context.Background()

	const window = 3
	for i := sv.Tag(0); i < 6; i++ {
		require.NoError(t, eng.InsertPoint(ctx, []float32{float32(i), float32(i)}, i))
		require.NoError(t, eng.SlideWindow(ctx, window, 2, i))
	}

	// tags older than the trailing edge (nextTag - window) should have
	// been lazily deleted, then physically freed by the periodic
	// consolidation pass.
	results, err := eng.Search(ctx, []float32{0, 0}, 10, 32, nil)
	require.NoError(t, err)
	for _, r := range results {
		assert.NotEqual(t, sv.Tag(0), r.Tag, "tag 0 should have slid out of the window")
	}
}
