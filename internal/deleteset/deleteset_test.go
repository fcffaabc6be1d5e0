package deleteset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAddContainsLen(t *testing.T) {
	s := New(16)
	assert.False(t, s.Contains(3), "fresh set should not contain slot 3")
	s.Add(3)
	s.Add(7)
	assert.True(t, s.Contains(3))
	assert.True(t, s.Contains(7))
	assert.Equal(t, 2, s.Len())
}

func TestAddIsIdempotent(t *testing.T) {
	s := New(8)
	s.Add(1)
	s.Add(1)
	assert.Equal(t, 1, s.Len())
}

func TestSnapshotAndClear(t *testing.T) {
	s := New(8)
	s.Add(1)
	s.Add(4)

	got := s.SnapshotAndClear()
	assert.Len(t, got, 2)
	assert.Zero(t, s.Len())
	assert.False(t, s.Contains(1))
	assert.False(t, s.Contains(4))
}

func TestSnapshotAndClearReturnsAscendingOrder(t *testing.T) {
	s := New(16)
	s.Add(9)
	s.Add(2)
	s.Add(5)

	got := s.SnapshotAndClear()
	assert.IsIncreasing(t, got)
}
