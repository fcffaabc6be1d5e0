package streamvamana

import (
	"errors"
	"fmt"

	"github.com/hupe1980/streamvamana/internal/gate"
	"github.com/hupe1980/streamvamana/internal/store"
)

// Sentinel errors for the engine's error kinds. Use errors.Is to test
// for a kind; detail-carrying wrappers below satisfy Is/Unwrap against
// these.
var (
	ErrBadArg             = errors.New("streamvamana: invalid argument")
	ErrDuplicateTag       = errors.New("streamvamana: duplicate tag")
	ErrUnknownTag         = errors.New("streamvamana: unknown tag")
	ErrCapacityExhausted  = errors.New("streamvamana: capacity exhausted")
	ErrLockTimeout        = errors.New("streamvamana: lock timeout")
	ErrInvariantViolation = errors.New("streamvamana: invariant violation")
	ErrIO                 = errors.New("streamvamana: io error")
	ErrUnsupported        = errors.New("streamvamana: unsupported operation")
)

// CapacityExhaustedError wraps ErrCapacityExhausted with the configured
// capacity for diagnostics.
type CapacityExhaustedError struct {
	Capacity int
}

func (e *CapacityExhaustedError) Error() string {
	return fmt.Sprintf("streamvamana: capacity exhausted (cap=%d)", e.Capacity)
}
func (e *CapacityExhaustedError) Is(target error) bool { return target == ErrCapacityExhausted }
func (e *CapacityExhaustedError) Unwrap() error        { return ErrCapacityExhausted }

// InvariantViolationError wraps ErrInvariantViolation with the condition
// that failed. It represents a fatal, unrecoverable state; this library
// never calls os.Exit itself, it logs at Error level and returns the
// error, leaving the abort decision to the caller.
type InvariantViolationError struct {
	Condition string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("streamvamana: invariant violation: %s", e.Condition)
}
func (e *InvariantViolationError) Is(target error) bool { return target == ErrInvariantViolation }
func (e *InvariantViolationError) Unwrap() error        { return ErrInvariantViolation }

// UnsupportedError wraps ErrUnsupported with the reason, e.g. attempting
// to lazily delete a labeled point.
type UnsupportedError struct {
	Reason string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("streamvamana: unsupported: %s", e.Reason)
}
func (e *UnsupportedError) Is(target error) bool { return target == ErrUnsupported }
func (e *UnsupportedError) Unwrap() error        { return ErrUnsupported }

// BadArgError wraps ErrBadArg with the offending field.
type BadArgError struct {
	Field  string
	Reason string
}

func (e *BadArgError) Error() string {
	return fmt.Sprintf("streamvamana: bad argument %s: %s", e.Field, e.Reason)
}
func (e *BadArgError) Is(target error) bool { return target == ErrBadArg }
func (e *BadArgError) Unwrap() error        { return ErrBadArg }

// translateStoreErr maps internal/store's sentinel errors onto this
// package's error taxonomy so callers only ever need to errors.Is against
// the top-level sentinels.
func translateStoreErr(err error, capacity int) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrDuplicateTag):
		return ErrDuplicateTag
	case errors.Is(err, store.ErrCapacityExhausted):
		return &CapacityExhaustedError{Capacity: capacity}
	case errors.Is(err, store.ErrUnknownTag):
		return ErrUnknownTag
	case errors.Is(err, store.ErrDimensionMismatch):
		return &BadArgError{Field: "vec", Reason: "dimension mismatch"}
	default:
		return err
	}
}

// translateGateErr maps internal/gate's timeout sentinel onto ErrLockTimeout.
func translateGateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gate.ErrTimeout) {
		return ErrLockTimeout
	}
	return err
}
