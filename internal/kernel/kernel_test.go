package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSquaredL2(t *testing.T) {
	a := []float32{1, 2, 3}
	b := []float32{4, 6, 3}
	assert.Equal(t, float32(9+16+0), SquaredL2(a, b))
}

func TestSquaredL2Identical(t *testing.T) {
	a := []float32{1, 2, 3, 4}
	assert.Zero(t, SquaredL2(a, a))
}

func TestProviderUnsupportedMetric(t *testing.T) {
	_, err := Provider[float32](Metric(99))
	assert.ErrorIs(t, err, ErrUnsupportedMetric)
}

func TestProviderKnownMetrics(t *testing.T) {
	for _, m := range []Metric{L2, MIPS} {
		fn, err := Provider[float32](m)
		require.NoError(t, err)
		assert.NotNil(t, fn)
	}
}

func TestMetricString(t *testing.T) {
	cases := map[Metric]string{L2: "L2", MIPS: "MIPS", Metric(99): "Unknown"}
	for m, want := range cases {
		assert.Equal(t, want, m.String())
	}
}

func TestNorm(t *testing.T) {
	v := []float32{3, 4}
	assert.InDelta(t, 5.0, Norm(v), 1e-9)
}

func TestFromFloatSaturatesInt8(t *testing.T) {
	assert.EqualValues(t, 127, FromFloat[int8](200))
	assert.EqualValues(t, -128, FromFloat[int8](-200))
}

func TestFromFloatSaturatesUint8(t *testing.T) {
	assert.EqualValues(t, 255, FromFloat[uint8](300))
	assert.EqualValues(t, 0, FromFloat[uint8](-5))
}

func TestFromFloatFloat32Passthrough(t *testing.T) {
	assert.Equal(t, float32(3.5), FromFloat[float32](3.5))
}
