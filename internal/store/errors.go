package store

import "errors"

var (
	// ErrDuplicateTag is returned by Allocate when tag already names a live slot.
	ErrDuplicateTag = errors.New("store: duplicate tag")
	// ErrCapacityExhausted is returned when no FREE slot remains.
	ErrCapacityExhausted = errors.New("store: capacity exhausted")
	// ErrUnknownTag is returned for state transitions attempted on a slot
	// not in the expected prior state.
	ErrUnknownTag = errors.New("store: unknown tag or slot")
	// ErrDimensionMismatch is returned when a vector's length does not match Dim().
	ErrDimensionMismatch = errors.New("store: vector dimension mismatch")
)
