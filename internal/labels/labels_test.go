package labels

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndLabels(t *testing.T) {
	idx := New()
	idx.Set(0, []Label{3, 1, 2})
	assert.Equal(t, []Label{1, 2, 3}, idx.Labels(0))
}

func TestSetReplacesPriorLabels(t *testing.T) {
	idx := New()
	idx.Set(0, []Label{1, 2})
	idx.Set(0, []Label{5})
	assert.Equal(t, []Label{5}, idx.Labels(0))
	assert.Empty(t, idx.Slots(1), "slot 1's postings should be dropped after replace")
}

func TestSetEmptyClearsSlot(t *testing.T) {
	idx := New()
	idx.Set(0, []Label{1})
	idx.Set(0, nil)
	assert.Empty(t, idx.Labels(0))
}

func TestRemoveClearsPostingsAndMedoid(t *testing.T) {
	idx := New()
	idx.Set(5, []Label{1})
	idx.SetMedoid(1, 5)
	idx.Remove(5)

	assert.Empty(t, idx.Labels(5))
	_, ok := idx.Medoid(1)
	assert.False(t, ok, "Medoid(1) should be cleared after Remove(5)")
}

func TestUniversalLabel(t *testing.T) {
	idx := New()
	_, ok := idx.Universal()
	assert.False(t, ok, "Universal() should report false before SetUniversal")

	idx.SetUniversal(7)
	got, ok := idx.Universal()
	require.True(t, ok)
	assert.Equal(t, Label(7), got)
	assert.True(t, idx.IsUniversal(7))
	assert.False(t, idx.IsUniversal(8))
}

func TestSatisfiesNilOrEmptyFilterAlwaysTrue(t *testing.T) {
	idx := New()
	idx.Set(0, []Label{1})
	assert.True(t, idx.Satisfies(0, nil))
	assert.True(t, idx.Satisfies(0, &Filter{}))
}

func TestSatisfiesMatchesAnyRequestedLabel(t *testing.T) {
	idx := New()
	idx.Set(0, []Label{2})
	assert.True(t, idx.Satisfies(0, NewFilter(1, 2, 3)))
	assert.False(t, idx.Satisfies(0, NewFilter(1, 3)))
}

func TestSatisfiesUniversalOverridesFilter(t *testing.T) {
	idx := New()
	idx.SetUniversal(9)
	idx.Set(0, []Label{9})
	assert.True(t, idx.Satisfies(0, NewFilter(1, 2)), "a slot carrying the universal label must satisfy every filter")
}

func TestEntryPointsResolvesRecordedMedoids(t *testing.T) {
	idx := New()
	idx.SetMedoid(1, 10)
	idx.SetMedoid(2, 20)

	got := idx.EntryPoints(NewFilter(1, 2))
	require.Len(t, got, 2)
	seen := map[uint32]bool{}
	for _, s := range got {
		seen[s] = true
	}
	assert.True(t, seen[10] && seen[20])
}

func TestEntryPointsNilForEmptyOrUnresolvedFilter(t *testing.T) {
	idx := New()
	assert.Nil(t, idx.EntryPoints(nil))
	assert.Nil(t, idx.EntryPoints(NewFilter(1)))
}

func TestSlotsReturnsPostingList(t *testing.T) {
	idx := New()
	idx.Set(1, []Label{4})
	idx.Set(2, []Label{4})
	assert.Len(t, idx.Slots(4), 2)
}
