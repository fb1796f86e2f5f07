// Package quantization provides the int8 affine codec shared by the stores.
package quantization

import (
	"encoding/binary"
	"math"
)

const (
	// QMin and QMax bound the signed 8-bit code range.
	QMin = -128
	QMax = 127

	// ParamsSize is the encoded size of Params in bytes (f32 scale + i32 zero point).
	ParamsSize = 8

	// degenerateRange is the min/max spread below which a vector is treated as constant.
	degenerateRange = 1e-6
)

// Params holds per-vector affine quantization parameters.
//
//	q = round(x/Scale) + ZeroPoint
//	x ≈ (q - ZeroPoint) * Scale
type Params struct {
	Scale     float32
	ZeroPoint int32
}

// Neutral is returned for empty or constant vectors.
var Neutral = Params{Scale: 1, ZeroPoint: 0}

// MaxError returns the worst-case round-trip error for a value inside the
// range the params were calculated from.
func (p Params) MaxError() float32 {
	return p.Scale / 2
}

// AppendBinary appends the little-endian encoding of p to b.
func (p Params) AppendBinary(b []byte) []byte {
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(p.Scale))
	return binary.LittleEndian.AppendUint32(b, uint32(p.ZeroPoint))
}

// ParamsFromBytes decodes Params from the first ParamsSize bytes of b.
// The caller guarantees len(b) >= ParamsSize.
func ParamsFromBytes(b []byte) Params {
	_ = b[ParamsSize-1] // bounds check hint
	return Params{
		Scale:     math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		ZeroPoint: int32(binary.LittleEndian.Uint32(b[4:8])),
	}
}

// CalculateParams maps the [min, max] range of v onto [-128, 127].
// NaN elements are ignored; an empty, all-NaN or constant vector yields Neutral.
func CalculateParams(v []float32) Params {
	minVal, maxVal, ok := bounds(v)
	if !ok || float64(maxVal-minVal) < degenerateRange {
		return Neutral
	}

	scale := (maxVal - minVal) / float32(QMax-QMin)
	zp := math.Round(float64(float32(QMin) - minVal/scale))

	return Params{Scale: scale, ZeroPoint: int32(clamp(zp))}
}

func bounds(v []float32) (minVal, maxVal float32, ok bool) {
	for _, x := range v {
		if x != x { // NaN
			continue
		}
		if !ok {
			minVal, maxVal, ok = x, x, true
			continue
		}
		if x < minVal {
			minVal = x
		}
		if x > maxVal {
			maxVal = x
		}
	}
	return minVal, maxVal, ok
}

// Quantize encodes v with p. Out-of-range values saturate to -128/127.
func Quantize(v []float32, p Params) []int8 {
	q := make([]int8, len(v))
	QuantizeInto(q, v, p)
	return q
}

// QuantizeInto encodes v into dst, which must be at least len(v) long.
func QuantizeInto(dst []int8, v []float32, p Params) {
	dst = dst[:len(v)]
	for i, x := range v {
		dst[i] = QuantizeScalar(x, p)
	}
}

// QuantizeScalar encodes a single value. NaN encodes to the zero point.
func QuantizeScalar(x float32, p Params) int8 {
	if x != x {
		return int8(clamp(float64(p.ZeroPoint)))
	}
	// Saturate in the float domain so huge values never overflow an integer.
	return int8(clamp(math.Round(float64(x/p.Scale)) + float64(p.ZeroPoint)))
}

// Dequantize decodes q with p.
func Dequantize(q []int8, p Params) []float32 {
	v := make([]float32, len(q))
	DequantizeInto(v, q, p)
	return v
}

// DequantizeInto decodes q into dst, which must be at least len(q) long.
// It does not allocate, so search loops can reuse one scratch row.
func DequantizeInto(dst []float32, q []int8, p Params) {
	dst = dst[:len(q)]
	for i, c := range q {
		dst[i] = float32(int32(c)-p.ZeroPoint) * p.Scale
	}
}

// DequantizeScalar decodes a single code.
func DequantizeScalar(c int8, p Params) float32 {
	return float32(int32(c)-p.ZeroPoint) * p.Scale
}

func clamp(v float64) float64 {
	if v < QMin {
		return QMin
	}
	if v > QMax {
		return QMax
	}
	return v
}
