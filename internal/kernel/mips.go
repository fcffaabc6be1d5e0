package kernel

import "math"

// Augment appends the extra coordinate needed to reduce a MIPS query over
// base vectors to an L2 nearest-neighbor query, per the standard asymmetric
// lift: base vectors get an extra coordinate so every augmented vector has
// norm exactly M, the max norm observed among points inserted so far. When
// ||v|| exceeds M, v itself is rescaled by M/||v|| before the extra
// coordinate is computed, so the augmented vector's norm is exactly M
// rather than merely having a correctly-clamped extra coordinate; the
// reduction to L2 nearest-neighbor search only holds when every stored
// vector shares this one fixed norm. Returns the augmented copy and
// whether clamping was necessary.
func Augment[T Numeric](v []T, m float64) ([]T, bool) {
	norm := Norm(v)
	clamped := false

	out := make([]T, len(v)+1)
	if norm > m {
		clamped = true
		scale := m / norm
		for i, x := range v {
			out[i] = FromFloat[T](float64(x) * scale)
		}
		norm = m
	} else {
		copy(out, v)
	}

	extra := math.Sqrt(math.Max(0, m*m-norm*norm))
	out[len(v)] = FromFloat[T](extra)
	return out, clamped
}

// AugmentQuery appends the zero coordinate MIPS queries use: since the
// lift only needs the base side to sit on a common-norm hypersphere, the
// query's extra coordinate contributes nothing to the L2 comparison.
func AugmentQuery[T Numeric](v []T) []T {
	out := make([]T, len(v)+1)
	copy(out, v)
	return out
}

// FromFloat narrows f into T, saturating at T's representable range for
// integer element types.
func FromFloat[T Numeric](f float64) T {
	var zero T
	switch any(zero).(type) {
	case int8:
		if f > 127 {
			f = 127
		}
		if f < -128 {
			f = -128
		}
		return T(int8(math.Round(f)))
	case uint8:
		if f > 255 {
			f = 255
		}
		if f < 0 {
			f = 0
		}
		return T(uint8(math.Round(f)))
	default:
		return T(f)
	}
}
