package vamana

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertSortedOrdersByDistanceThenSlot(t *testing.T) {
	var list []Candidate
	list = insertSorted(list, Candidate{Slot: 3, Dist: 5}, 10)
	list = insertSorted(list, Candidate{Slot: 1, Dist: 2}, 10)
	list = insertSorted(list, Candidate{Slot: 2, Dist: 2}, 10)

	want := []Candidate{{Slot: 1, Dist: 2}, {Slot: 2, Dist: 2}, {Slot: 3, Dist: 5}}
	assert.Equal(t, want, list)
}

func TestInsertSortedTruncatesToMaxSize(t *testing.T) {
	var list []Candidate
	list = insertSorted(list, Candidate{Slot: 1, Dist: 1}, 2)
	list = insertSorted(list, Candidate{Slot: 2, Dist: 2}, 2)
	list = insertSorted(list, Candidate{Slot: 3, Dist: 3}, 2)

	assert.Len(t, list, 2)
	assert.Equal(t, uint32(1), list[0].Slot)
	assert.Equal(t, uint32(2), list[1].Slot)
}

func TestInsertSortedRejectsWorseThanMax(t *testing.T) {
	var list []Candidate
	list = insertSorted(list, Candidate{Slot: 1, Dist: 1}, 1)
	list = insertSorted(list, Candidate{Slot: 2, Dist: 5}, 1)

	a := assert.New(t)
	a.Len(list, 1)
	a.Equal(uint32(1), list[0].Slot)
}
