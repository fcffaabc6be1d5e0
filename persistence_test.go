package streamvamana_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sv "github.com/hupe1980/streamvamana"
)

func TestSaveLoadRoundTripPreservesSearchResults(t *testing.T) {
	eng := newTestEngine(t, 100)
	ctx := context.Background()

	points := map[sv.Tag][]float32{
		1: {0, 0},
		2: {10, 10},
		3: {10.5, 10.5},
		4: {-10, -10},
	}
	for tag, vec := range points {
		require.NoError(t, eng.InsertPoint(ctx, vec, tag))
	}
	require.NoError(t, eng.LazyDelete(sv.Tag(4)))
	_, err := eng.ConsolidateDeletes(ctx, sv.ConsolidateParams{})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "snapshot")
	require.NoError(t, eng.Save(path, false))

	loaded, err := sv.Load[float32](path)
	require.NoError(t, err)

	results, err := loaded.Search(ctx, []float32{10.2, 10.2}, 2, 32, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)

	found := map[sv.Tag]bool{}
	for _, r := range results {
		found[r.Tag] = true
	}
	assert.True(t, found[2] && found[3], "want tags 2 and 3, got %v", results)

	// tag 4 was lazily deleted and consolidated away before Save; it must
	// not exist in the loaded engine at all.
	err = loaded.LazyDelete(sv.Tag(4))
	assert.Error(t, err, "tag 4 was never persisted")

	// the loaded engine must still accept new inserts under fresh tags.
	assert.NoError(t, loaded.InsertPoint(ctx, []float32{5, 5}, sv.Tag(5)))
}

func TestSaveLoadRoundTripCompressed(t *testing.T) {
	eng := newTestEngine(t, 100)
	ctx := context.Background()

	for i := sv.Tag(1); i <= 10; i++ {
		require.NoError(t, eng.InsertPoint(ctx, []float32{float32(i), float32(i) * 2}, i))
	}

	path := filepath.Join(t.TempDir(), "snapshot")
	require.NoError(t, eng.Save(path, true))

	loaded, err := sv.Load[float32](path)
	require.NoError(t, err)

	results, err := loaded.Search(ctx, []float32{5, 10}, 1, 32, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, sv.Tag(5), results[0].Tag)
}

func TestLoadRejectsMissingFile(t *testing.T) {
	_, err := sv.Load[float32](filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}
