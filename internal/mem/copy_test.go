package mem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chimera-ml/chimera/internal/backend/webgpu"
	"github.com/chimera-ml/chimera/internal/resource"
)

func newAccelResource(t *testing.T) *resource.Resource {
	t.Helper()
	if !webgpu.IsAvailable() {
		t.Skip("no accelerator available")
	}
	res := resource.New()
	if !res.HasAccelerator() {
		t.Skip("no accelerator available")
	}
	t.Cleanup(res.Release)
	return res
}

func TestCopyRangeWindow(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := FromSlice(res, []float32{1, 2, 3, 4, 5}, Shape{5}, Host)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{5}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, CopyRange(res, dst, src, 1, 2, 3))

	got, err := ToSlice[float32](res, dst)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 3, 4, 5, 0}, got)
}

func TestCopyRangeOutOfBounds(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := FromSlice(res, []float32{1, 2, 3, 4, 5}, Shape{5}, Host)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{5}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	err = CopyRange(res, dst, src, 1, 2, 4)
	assert.ErrorIs(t, err, ErrOutOfBounds)

	// Bounds failures leave the destination untouched.
	got, err := ToSlice[float32](res, dst)
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0, 0}, got)

	err = CopyRange(res, dst, src, 3, 0, 3)
	assert.ErrorIs(t, err, ErrOutOfBounds)
	err = CopyRange(res, dst, src, 0, -1, 2)
	assert.ErrorIs(t, err, ErrOutOfBounds)
}

func TestCopyRangeZeroLength(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := FromSlice(res, []float32{1, 2}, Shape{2}, Host)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{2}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, CopyRange(res, dst, src, 0, 0, 0))
}

func TestCopyLayoutMismatchHost(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := FromSlice(res, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Host)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{2, 3}, Float32, ColMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, Copy(res, dst, src))

	// Physical order of a column-major [[1 2 3] [4 5 6]].
	dv, err := dst.View()
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, dv.AsFloat32())

	// Logical contents are unchanged regardless of layout.
	got, err := ToSlice[float32](res, dst)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got)
}

func TestCopyConversionHost(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := FromSlice(res, []float32{1.9, -2.1, 3}, Shape{3}, Host)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{3}, Int32, RowMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, Copy(res, dst, src))

	got, err := ToSlice[int32](res, dst)
	require.NoError(t, err)
	assert.Equal(t, []int32{1, -2, 3}, got)
}

func TestCopyConversionAndLayoutChange(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := FromSlice(res, []int32{1, 2, 3, 4}, Shape{2, 2}, Host)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{2, 2}, Float64, ColMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, Copy(res, dst, src))

	dv, err := dst.View()
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 3, 2, 4}, dv.AsFloat64())
}

func TestCopyStridedSource(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	// A transposed walk over row-major [[1 2 3] [4 5 6]] storage.
	base, err := FromSlice(res, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Host)
	require.NoError(t, err)
	defer base.Release()

	raw, err := base.Bytes()
	require.NoError(t, err)
	sv, err := NewStridedView(raw, Shape{3, 2}, []int{1, 3}, Float32)
	require.NoError(t, err)
	src := FromView(sv)

	dst, err := New(res, Shape{3, 2}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, Copy(res, dst, src))

	got, err := ToSlice[float32](res, dst)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, got)
}

func TestCopyRangeAcrossLayouts(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := New(res, Shape{2, 2}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{2, 2}, Float32, ColMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	err = CopyRange(res, dst, src, 0, 0, 4)
	assert.ErrorIs(t, err, ErrUnsupportedCopy)
}

func TestCopyShapeMismatch(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := New(res, Shape{2, 3}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{3, 2}, Float32, RowMajor, Host)
	require.NoError(t, err)
	defer dst.Release()

	assert.Error(t, Copy(res, dst, src))
}

func TestCopyToDeviceWithoutAccelerator(t *testing.T) {
	res := resource.NewHostOnly()
	defer res.Release()

	src, err := FromSlice(res, []float32{1, 2}, Shape{2}, Host)
	require.NoError(t, err)
	defer src.Release()

	_, err = Convert(res, src, Device)
	assert.ErrorIs(t, err, ErrNoAcceleratorSupport)
}

func TestCopyDeviceRoundTrip(t *testing.T) {
	res := newAccelResource(t)

	src, err := FromSlice(res, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Host)
	require.NoError(t, err)
	defer src.Release()

	dev, err := Convert(res, src, Device)
	require.NoError(t, err)
	defer dev.Release()
	assert.Equal(t, Device, dev.Placement())

	got, err := ToSlice[float32](res, dev)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got)
}

func TestCopyDeviceTranspose(t *testing.T) {
	res := newAccelResource(t)

	host, err := FromSlice(res, []float32{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Host)
	require.NoError(t, err)
	defer host.Release()

	src, err := Convert(res, host, Device)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{2, 3}, Float32, ColMajor, Device)
	require.NoError(t, err)
	defer dst.Release()

	require.NoError(t, Copy(res, dst, src))
	require.NoError(t, res.Synchronize())

	got, err := ToSlice[float32](res, dst)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, got)

	dv, err := dst.View()
	require.NoError(t, err)
	raw := make([]byte, dst.ByteSize())
	require.NoError(t, res.Stream().Download(raw, dv.DeviceBuffer(), 0))
	phys, err := NewView(raw, Shape{6}, Float32, RowMajor)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, phys.AsFloat32())
}

func TestCopyDeviceConversionUnsupported(t *testing.T) {
	res := newAccelResource(t)

	src, err := New(res, Shape{4}, Float32, RowMajor, Device)
	require.NoError(t, err)
	defer src.Release()

	dst, err := New(res, Shape{4}, Int32, RowMajor, Device)
	require.NoError(t, err)
	defer dst.Release()

	assert.ErrorIs(t, Copy(res, dst, src), ErrUnsupportedCopy)
}

func TestCopyHostToManaged(t *testing.T) {
	res := newAccelResource(t)

	src, err := FromSlice(res, []int32{10, 20, 30, 40}, Shape{4}, Host)
	require.NoError(t, err)
	defer src.Release()

	man, err := Convert(res, src, Managed)
	require.NoError(t, err)
	defer man.Release()

	data, err := man.Bytes()
	require.NoError(t, err)
	mv, err := NewView(data, Shape{4}, Int32, RowMajor)
	require.NoError(t, err)
	assert.Equal(t, []int32{10, 20, 30, 40}, mv.AsInt32())
}
