package format

import "github.com/hupe1980/pocketvec/quantization"

// Record is one stored vector. Exactly one of Vector or Codes is set,
// depending on the store mode; Params is meaningful only with Codes.
type Record struct {
	ID     string
	Vector []float32
	Codes  []int8
	Params quantization.Params
}

// Quantized reports whether the record carries int8 codes.
func (r *Record) Quantized() bool {
	return r.Codes != nil
}

// Dim returns the number of elements in the record.
func (r *Record) Dim() int {
	if r.Codes != nil {
		return len(r.Codes)
	}

	return len(r.Vector)
}
