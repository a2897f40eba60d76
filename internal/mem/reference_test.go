package mem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimera-ml/chimera/internal/resource"
)

func TestRefLoadStoreHost(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	b, err := FromSlice(res, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Host)
	require.NoError(t, err)
	defer b.Release()

	r, err := b.Ref(1, 2)
	require.NoError(t, err)
	assert.Equal(t, Host, r.Placement())

	got, err := Load[float32](r)
	require.NoError(t, err)
	assert.Equal(t, float32(6), got)

	require.NoError(t, Store(r, float32(-9)))
	got, err = Load[float32](r)
	require.NoError(t, err)
	assert.Equal(t, float32(-9), got)
}

func TestRefCrossTypeConversion(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	b, err := New(res, Shape{3}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer b.Release()

	r, err := b.Ref(1)
	require.NoError(t, err)

	// Store as float64, buffer holds float32, read back as int32.
	require.NoError(t, Store(r, 2.0))
	asInt, err := Load[int32](r)
	require.NoError(t, err)
	assert.Equal(t, int32(2), asInt)

	require.NoError(t, Store(r, int64(7)))
	asFloat, err := Load[float32](r)
	require.NoError(t, err)
	assert.Equal(t, float32(7), asFloat)
}

func TestRefSameTypeExactRoundTrip(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	b, err := New(res, Shape{1}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer b.Release()

	r, err := b.Ref(0)
	require.NoError(t, err)

	// A NaN with a specific payload must survive a same-type round trip
	// bit for bit.
	nan := math.Float32frombits(0x7fc00abc)
	require.NoError(t, Store(r, nan))
	got, err := Load[float32](r)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x7fc00abc), math.Float32bits(got))
}

func TestRefBool(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	b, err := FromSlice(res, []bool{false, true}, Shape{2}, Host)
	require.NoError(t, err)
	defer b.Release()

	r0, err := b.Ref(0)
	require.NoError(t, err)
	r1, err := b.Ref(1)
	require.NoError(t, err)

	v0, err := Load[bool](r0)
	require.NoError(t, err)
	assert.False(t, v0)

	// Nonzero numerics convert to true.
	require.NoError(t, Store(r0, float32(3.5)))
	v0, err = Load[bool](r0)
	require.NoError(t, err)
	assert.True(t, v0)

	asInt, err := Load[int32](r1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), asInt)
}

func TestRefOutOfBoundsPanics(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	b, err := New(res, Shape{2, 3}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer b.Release()

	assert.Panics(t, func() { _, _ = b.Ref(2, 0) })
	assert.Panics(t, func() { _, _ = b.Ref(0) })
}
