package streamvamana_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sv "github.com/hupe1980/streamvamana"
)

func TestBasicMetricsCollectorTracksOperations(t *testing.T) {
	mc := &sv.BasicMetricsCollector{}
	eng, err := sv.New[float32](sv.L2, 2, 100, sv.DefaultParams(), sv.WithMetricsCollector(mc))
	require.NoError(t, err)
	require.NoError(t, eng.SetStartPointsRandom(1.0))

	ctx := context.Background()
	require.NoError(t, eng.InsertPoint(ctx, []float32{1, 1}, sv.Tag(1)))
	assert.Error(t, eng.InsertPoint(ctx, []float32{1, 1}, sv.Tag(1)), "duplicate insert should fail")

	_, err = eng.Search(ctx, []float32{1, 1}, 1, 32, nil)
	require.NoError(t, err)
	require.NoError(t, eng.LazyDelete(sv.Tag(1)))
	_, err = eng.ConsolidateDeletes(ctx, sv.ConsolidateParams{})
	require.NoError(t, err)

	stats := mc.GetStats()
	assert.EqualValues(t, 2, stats.InsertCount)
	assert.EqualValues(t, 1, stats.InsertErrors)
	assert.EqualValues(t, 1, stats.SearchCount)
	assert.EqualValues(t, 1, stats.LazyDeleteCount)
	assert.EqualValues(t, 1, stats.ConsolidateCount)
	assert.EqualValues(t, 1, stats.ConsolidateReclaimed)
}
