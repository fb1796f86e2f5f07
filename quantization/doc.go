// Package quantization implements per-vector asymmetric int8 quantization.
//
// Each vector gets its own Params, derived from its min/max so that the
// vector's range maps onto the full signed 8-bit range:
//
//	p := quantization.CalculateParams(vec)    // Scale = (max-min)/255
//	codes := quantization.Quantize(vec, p)    // 4x smaller than float32
//	approx := quantization.Dequantize(codes, p)
//
// # Error Bound
//
// When the vector's range contains zero, every element survives the round
// trip within p.MaxError() (Scale/2). The zero point is clamped to [-128, 127],
// so for vectors whose values all share one sign the clamp shifts the grid and
// the far end of the range saturates. Values outside the calibrated range
// always saturate to -128 or 127 instead of wrapping.
//
// # Wire Format
//
// Params encode as 8 little-endian bytes: float32 scale followed by int32
// zero point (see AppendBinary and ParamsFromBytes). Both persisted store
// formats use this layout.
package quantization
