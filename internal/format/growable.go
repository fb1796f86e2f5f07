package format

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/hupe1980/pocketvec/internal/conv"
	"github.com/hupe1980/pocketvec/quantization"
)

const (
	// MagicPlain starts an unencrypted growable stream.
	MagicPlain = "MVS1"
	// MagicEncrypted starts a file whose remainder is an encrypted MVS1 stream.
	MagicEncrypted = "MVE1"
	// MagicSize is the length of every magic in bytes.
	MagicSize = 4

	// FlagQuantized marks quantized records in both formats.
	FlagQuantized = 1

	// GrowableHeaderSize is magic + flags + dim + count.
	GrowableHeaderSize = MagicSize + 1 + 4 + 8
)

// GrowableHeader describes a growable stream.
type GrowableHeader struct {
	Quantized bool
	Dim       int
	Count     int
}

// Growable is a fully decoded growable stream.
type Growable struct {
	Header  GrowableHeader
	Records []Record
	Index   map[string]int
}

// EncodeGrowable writes a plain MVS1 stream for records. Every record must
// match quantized and have dim elements.
func EncodeGrowable(w io.Writer, quantized bool, dim int, records []Record) error {
	dim32, err := conv.IntToUint32(dim)
	if err != nil {
		return fmt.Errorf("dimension: %w", err)
	}

	bw := bufio.NewWriter(w)

	hdr := make([]byte, 0, GrowableHeaderSize)
	hdr = append(hdr, MagicPlain...)
	if quantized {
		hdr = append(hdr, FlagQuantized)
	} else {
		hdr = append(hdr, 0)
	}
	hdr = binary.LittleEndian.AppendUint32(hdr, dim32)
	hdr = binary.LittleEndian.AppendUint64(hdr, uint64(len(records)))

	if _, err := bw.Write(hdr); err != nil {
		return err
	}

	elem := 4
	if quantized {
		elem = 1
	}

	buf := make([]byte, 0, 4+quantization.ParamsSize+dim*elem)

	for i := range records {
		r := &records[i]
		if r.Quantized() != quantized || r.Dim() != dim {
			return fmt.Errorf("%w: record %q does not match store layout", ErrCorrupt, r.ID)
		}

		idLen, err := conv.IntToUint32(len(r.ID))
		if err != nil {
			return fmt.Errorf("%w: id too long", ErrInvalidID)
		}

		buf = binary.LittleEndian.AppendUint32(buf[:0], idLen)
		if _, err := bw.Write(buf); err != nil {
			return err
		}
		if _, err := bw.WriteString(r.ID); err != nil {
			return err
		}

		buf = buf[:0]
		if quantized {
			buf = r.Params.AppendBinary(buf)
			for _, c := range r.Codes {
				buf = append(buf, byte(c))
			}
		} else {
			for _, v := range r.Vector {
				buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
			}
		}

		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// ReadMagic returns the leading magic of data.
func ReadMagic(data []byte) (string, error) {
	if len(data) < MagicSize {
		return "", fmt.Errorf("%w: %w: %d bytes", ErrCorrupt, ErrTruncated, len(data))
	}

	return string(data[:MagicSize]), nil
}

// DecodeGrowable decodes a complete plain MVS1 stream. The stream must end
// exactly after the last record and ids must be unique. Vectors of each mode
// share one backing array.
func DecodeGrowable(data []byte) (*Growable, error) {
	magic, err := ReadMagic(data)
	if err != nil {
		return nil, err
	}
	if magic != MagicPlain {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, magic)
	}

	c := cursor{buf: data, off: MagicSize}

	hdr, err := c.header()
	if err != nil {
		return nil, err
	}

	g := &Growable{
		Header:  hdr,
		Records: make([]Record, hdr.Count),
		Index:   make(map[string]int, hdr.Count),
	}

	var (
		floats []float32
		codes  []int8
	)

	if hdr.Quantized {
		codes = make([]int8, hdr.Count*hdr.Dim)
	} else {
		floats = make([]float32, hdr.Count*hdr.Dim)
	}

	for i := 0; i < hdr.Count; i++ {
		r := &g.Records[i]

		if r.ID, err = c.id(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		if _, dup := g.Index[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %q", ErrCorrupt, r.ID)
		}

		g.Index[r.ID] = i

		lo, hi := i*hdr.Dim, (i+1)*hdr.Dim

		if hdr.Quantized {
			p, err := c.next(quantization.ParamsSize)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}

			r.Params = quantization.ParamsFromBytes(p)

			row, err := c.next(hdr.Dim)
			if err != nil {
				return nil, fmt.Errorf("record %d: %w", i, err)
			}

			r.Codes = codes[lo:hi:hi]
			for j, b := range row {
				r.Codes[j] = int8(b)
			}

			continue
		}

		row, err := c.next(hdr.Dim * 4)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		r.Vector = floats[lo:hi:hi]
		for j := range r.Vector {
			r.Vector[j] = math.Float32frombits(binary.LittleEndian.Uint32(row[j*4:]))
		}
	}

	if c.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorrupt, c.remaining())
	}

	return g, nil
}

type cursor struct {
	buf []byte
	off int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.off
}

func (c *cursor) next(n int) ([]byte, error) {
	if n < 0 || n > c.remaining() {
		return nil, fmt.Errorf("%w: %w: need %d bytes at offset %d", ErrCorrupt, ErrTruncated, n, c.off)
	}

	b := c.buf[c.off : c.off+n]
	c.off += n

	return b, nil
}

func (c *cursor) header() (GrowableHeader, error) {
	b, err := c.next(GrowableHeaderSize - MagicSize)
	if err != nil {
		return GrowableHeader{}, err
	}

	dim, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(b[1:5]))
	if err != nil {
		return GrowableHeader{}, fmt.Errorf("%w: dimension: %w", ErrCorrupt, err)
	}

	count64 := binary.LittleEndian.Uint64(b[5:13])

	hdr := GrowableHeader{
		Quantized: b[0]&FlagQuantized != 0,
		Dim:       dim,
	}

	if count64 == 0 {
		return hdr, nil
	}

	if dim == 0 {
		return GrowableHeader{}, fmt.Errorf("%w: zero dimension with %d records", ErrCorrupt, count64)
	}

	// Smallest possible record: empty id plus payload.
	minRecord := uint64(4)
	if hdr.Quantized {
		minRecord += quantization.ParamsSize + uint64(dim)
	} else {
		minRecord += 4 * uint64(dim)
	}

	need, err := conv.MulUint64(count64, minRecord)
	if err != nil || need > uint64(c.remaining()) {
		return GrowableHeader{}, fmt.Errorf("%w: %w: %d records do not fit in %d bytes", ErrCorrupt, ErrTruncated, count64, c.remaining())
	}

	// need fits in the buffer, so count and count*dim fit in int.
	hdr.Count = int(count64)

	return hdr, nil
}

func (c *cursor) id() (string, error) {
	b, err := c.next(4)
	if err != nil {
		return "", err
	}

	n, err := conv.Uint32ToInt(binary.LittleEndian.Uint32(b))
	if err != nil {
		return "", fmt.Errorf("%w: id length: %w", ErrCorrupt, err)
	}

	idb, err := c.next(n)
	if err != nil {
		return "", err
	}

	return string(idb), nil
}
