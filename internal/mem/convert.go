package mem

import (
	"fmt"
	"unsafe"

	"github.com/chimera-ml/chimera/internal/parallel"
)

// Element type conversion. Same-type paths reinterpret bytes and round-trip
// exactly, including NaN payloads. Cross-type paths convert through float64,
// which holds every supported type without loss except the upper range of
// int64. Bool converts as 0/1; nonzero numerics convert to true.

var castCfg = parallel.DefaultConfig()

// decodeAs reads one element of runtime type dt from b as T.
func decodeAs[T DType](dt DataType, b []byte) T {
	var out T
	if inferDataType(out) == dt {
		return *(*T)(unsafe.Pointer(&b[0]))
	}
	return fromFloat64[T](scalarFloat64(dt, b))
}

// encodeAs writes v into b as one element of runtime type dt.
func encodeAs[T DType](dt DataType, b []byte, v T) {
	if inferDataType(v) == dt {
		*(*T)(unsafe.Pointer(&b[0])) = v
		return
	}
	storeFloat64(dt, b, toFloat64(v))
}

func scalarFloat64(dt DataType, b []byte) float64 {
	switch dt {
	case Float32:
		return float64(*(*float32)(unsafe.Pointer(&b[0])))
	case Float64:
		return *(*float64)(unsafe.Pointer(&b[0]))
	case Int32:
		return float64(*(*int32)(unsafe.Pointer(&b[0])))
	case Int64:
		return float64(*(*int64)(unsafe.Pointer(&b[0])))
	case Uint8:
		return float64(b[0])
	case Bool:
		if b[0] != 0 {
			return 1
		}
		return 0
	default:
		panic(fmt.Sprintf("mem: unknown data type %d", dt))
	}
}

func storeFloat64(dt DataType, b []byte, f float64) {
	switch dt {
	case Float32:
		*(*float32)(unsafe.Pointer(&b[0])) = float32(f)
	case Float64:
		*(*float64)(unsafe.Pointer(&b[0])) = f
	case Int32:
		*(*int32)(unsafe.Pointer(&b[0])) = int32(f)
	case Int64:
		*(*int64)(unsafe.Pointer(&b[0])) = int64(f)
	case Uint8:
		b[0] = uint8(f)
	case Bool:
		if f != 0 {
			b[0] = 1
		} else {
			b[0] = 0
		}
	default:
		panic(fmt.Sprintf("mem: unknown data type %d", dt))
	}
}

func fromFloat64[T DType](f float64) T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(float32(f)).(T)
	case float64:
		return any(f).(T)
	case int32:
		return any(int32(f)).(T)
	case int64:
		return any(int64(f)).(T)
	case uint8:
		return any(uint8(f)).(T)
	case bool:
		return any(f != 0).(T)
	default:
		panic("mem: unsupported type")
	}
}

func toFloat64[T DType](v T) float64 {
	switch val := any(v).(type) {
	case float32:
		return float64(val)
	case float64:
		return val
	case int32:
		return float64(val)
	case int64:
		return float64(val)
	case uint8:
		return float64(val)
	case bool:
		if val {
			return 1
		}
		return 0
	default:
		panic("mem: unsupported type")
	}
}

// castCopy converts n elements starting at srcOff in src into dst starting
// at dstOff. Both views must be host-accessible and contiguous; the caller
// guarantees bounds.
func castCopy(dst View, dstOff int, src View, srcOff, n int) {
	switch src.dtype {
	case Float32:
		castFrom(dst, dstOff, src.AsFloat32()[srcOff:srcOff+n])
	case Float64:
		castFrom(dst, dstOff, src.AsFloat64()[srcOff:srcOff+n])
	case Int32:
		castFrom(dst, dstOff, src.AsInt32()[srcOff:srcOff+n])
	case Int64:
		castFrom(dst, dstOff, src.AsInt64()[srcOff:srcOff+n])
	case Uint8:
		castFrom(dst, dstOff, src.AsUint8()[srcOff:srcOff+n])
	case Bool:
		castFromBool(dst, dstOff, src.AsBool()[srcOff:srcOff+n])
	default:
		panic(fmt.Sprintf("mem: unknown data type %d", src.dtype))
	}
}

func castFrom[S numeric](dst View, dstOff int, src []S) {
	n := len(src)
	switch dst.dtype {
	case Float32:
		convertSlice(dst.AsFloat32()[dstOff:dstOff+n], src)
	case Float64:
		convertSlice(dst.AsFloat64()[dstOff:dstOff+n], src)
	case Int32:
		convertSlice(dst.AsInt32()[dstOff:dstOff+n], src)
	case Int64:
		convertSlice(dst.AsInt64()[dstOff:dstOff+n], src)
	case Uint8:
		convertSlice(dst.AsUint8()[dstOff:dstOff+n], src)
	case Bool:
		numToBool(dst.AsBool()[dstOff:dstOff+n], src)
	default:
		panic(fmt.Sprintf("mem: unknown data type %d", dst.dtype))
	}
}

func castFromBool(dst View, dstOff int, src []bool) {
	n := len(src)
	switch dst.dtype {
	case Float32:
		boolToNum(dst.AsFloat32()[dstOff:dstOff+n], src)
	case Float64:
		boolToNum(dst.AsFloat64()[dstOff:dstOff+n], src)
	case Int32:
		boolToNum(dst.AsInt32()[dstOff:dstOff+n], src)
	case Int64:
		boolToNum(dst.AsInt64()[dstOff:dstOff+n], src)
	case Uint8:
		boolToNum(dst.AsUint8()[dstOff:dstOff+n], src)
	case Bool:
		copy(dst.AsBool()[dstOff:dstOff+n], src)
	default:
		panic(fmt.Sprintf("mem: unknown data type %d", dst.dtype))
	}
}

func convertSlice[D, S numeric](dst []D, src []S) {
	parallel.ForChunks(len(src), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = D(src[i])
		}
	}, castCfg)
}

func numToBool[S numeric](dst []bool, src []S) {
	parallel.ForChunks(len(src), func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = src[i] != 0
		}
	}, castCfg)
}

func boolToNum[D numeric](dst []D, src []bool) {
	parallel.ForChunks(len(src), func(start, end int) {
		for i := start; i < end; i++ {
			if src[i] {
				dst[i] = 1
			} else {
				dst[i] = 0
			}
		}
	}, castCfg)
}
