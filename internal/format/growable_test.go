package format

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pocketvec/quantization"
)

func floatRecords() []Record {
	return []Record{
		{ID: "a", Vector: []float32{1, 0}},
		{ID: "bb", Vector: []float32{-0.5, 2.25}},
	}
}

func quantRecords() []Record {
	out := make([]Record, 0, 2)
	for _, r := range floatRecords() {
		p := quantization.CalculateParams(r.Vector)
		out = append(out, Record{ID: r.ID, Codes: quantization.Quantize(r.Vector, p), Params: p})
	}
	return out
}

func encode(t *testing.T, quantized bool, dim int, records []Record) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, EncodeGrowable(&buf, quantized, dim, records))
	return buf.Bytes()
}

func TestEncodeGrowable_Layout(t *testing.T) {
	data := encode(t, false, 2, floatRecords())

	var want []byte
	want = append(want, "MVS1"...)
	want = append(want, 0)
	want = binary.LittleEndian.AppendUint32(want, 2)
	want = binary.LittleEndian.AppendUint64(want, 2)
	want = binary.LittleEndian.AppendUint32(want, 1)
	want = append(want, 'a')
	want = binary.LittleEndian.AppendUint32(want, math.Float32bits(1))
	want = binary.LittleEndian.AppendUint32(want, math.Float32bits(0))
	want = binary.LittleEndian.AppendUint32(want, 2)
	want = append(want, "bb"...)
	want = binary.LittleEndian.AppendUint32(want, math.Float32bits(-0.5))
	want = binary.LittleEndian.AppendUint32(want, math.Float32bits(2.25))

	assert.Equal(t, want, data)
}

func TestEncodeGrowable_QuantizedLayout(t *testing.T) {
	recs := quantRecords()
	data := encode(t, true, 2, recs)

	assert.Equal(t, byte(FlagQuantized), data[4])
	// header + 2 x (len + id + params + codes)
	assert.Len(t, data, GrowableHeaderSize+(4+1+8+2)+(4+2+8+2))

	p := quantization.ParamsFromBytes(data[GrowableHeaderSize+5:])
	assert.Equal(t, recs[0].Params, p)
}

func TestEncodeGrowable_RejectsMismatchedRecord(t *testing.T) {
	var buf bytes.Buffer
	err := EncodeGrowable(&buf, true, 2, floatRecords())
	assert.ErrorIs(t, err, ErrCorrupt)

	err = EncodeGrowable(&buf, false, 3, floatRecords())
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestGrowable_RoundTrip(t *testing.T) {
	t.Run("float", func(t *testing.T) {
		g, err := DecodeGrowable(encode(t, false, 2, floatRecords()))
		require.NoError(t, err)

		assert.Equal(t, GrowableHeader{Quantized: false, Dim: 2, Count: 2}, g.Header)
		assert.Equal(t, floatRecords(), g.Records)
		assert.Equal(t, map[string]int{"a": 0, "bb": 1}, g.Index)
	})

	t.Run("quantized", func(t *testing.T) {
		g, err := DecodeGrowable(encode(t, true, 2, quantRecords()))
		require.NoError(t, err)

		assert.True(t, g.Header.Quantized)
		assert.Equal(t, quantRecords(), g.Records)
	})

	t.Run("empty", func(t *testing.T) {
		g, err := DecodeGrowable(encode(t, false, 0, nil))
		require.NoError(t, err)
		assert.Equal(t, 0, g.Header.Count)
		assert.Empty(t, g.Records)
	})
}

func TestDecodeGrowable_SharedBacking(t *testing.T) {
	g, err := DecodeGrowable(encode(t, false, 2, floatRecords()))
	require.NoError(t, err)

	// Appending to one row must not clobber the next.
	row := append(g.Records[0].Vector, 99)
	assert.Len(t, row, 3)
	assert.Equal(t, []float32{-0.5, 2.25}, g.Records[1].Vector)
}

func TestDecodeGrowable_Errors(t *testing.T) {
	valid := encode(t, false, 2, floatRecords())

	t.Run("bad magic", func(t *testing.T) {
		data := bytes.Clone(valid)
		copy(data, "XXXX")
		_, err := DecodeGrowable(data)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("encrypted magic", func(t *testing.T) {
		data := bytes.Clone(valid)
		copy(data, MagicEncrypted)
		_, err := DecodeGrowable(data)
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("trailing bytes", func(t *testing.T) {
		_, err := DecodeGrowable(append(bytes.Clone(valid), 0))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("duplicate id", func(t *testing.T) {
		recs := floatRecords()
		recs[1].ID = "a"
		_, err := DecodeGrowable(encode(t, false, 2, recs))
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("zero dim with records", func(t *testing.T) {
		data := bytes.Clone(valid)
		binary.LittleEndian.PutUint32(data[5:], 0)
		_, err := DecodeGrowable(data)
		assert.ErrorIs(t, err, ErrCorrupt)
	})

	t.Run("implausible count", func(t *testing.T) {
		data := bytes.Clone(valid)
		binary.LittleEndian.PutUint64(data[9:], math.MaxUint64)
		_, err := DecodeGrowable(data)
		assert.ErrorIs(t, err, ErrCorrupt)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("huge id length", func(t *testing.T) {
		data := bytes.Clone(valid)
		binary.LittleEndian.PutUint32(data[GrowableHeaderSize:], math.MaxUint32)
		_, err := DecodeGrowable(data)
		assert.ErrorIs(t, err, ErrCorrupt)
	})
}

func TestDecodeGrowable_TruncationSweep(t *testing.T) {
	for _, quantized := range []bool{false, true} {
		recs := floatRecords()
		if quantized {
			recs = quantRecords()
		}

		valid := encode(t, quantized, 2, recs)
		for n := 0; n < len(valid); n++ {
			_, err := DecodeGrowable(valid[:n])
			require.Errorf(t, err, "quantized=%v prefix=%d", quantized, n)
			assert.ErrorIs(t, err, ErrCorrupt)
		}
	}
}
