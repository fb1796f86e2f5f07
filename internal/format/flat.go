package format

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/hupe1980/pocketvec/internal/conv"
	"github.com/hupe1980/pocketvec/internal/hash"
	"github.com/hupe1980/pocketvec/quantization"
)

const (
	// FlatMagic starts every flat file.
	FlatMagic = "MFVS"
	// FlatVersion is the only supported flat layout version.
	FlatVersion = 1
	// FlatHeaderSize is the fixed header length; the vector section follows it.
	FlatHeaderSize = 64

	flatAlign      = 4
	idEntrySize    = 8
	checksumOffset = 48
	markerOffset   = 52
	checksumMarker = "CK"
)

// FlatHeader is the decoded 64-byte flat header.
type FlatHeader struct {
	Version      uint32
	Dim          uint32
	Flags        uint32
	Count        uint64
	VecOffset    uint64
	ParamsOffset uint64
	IDOffset     uint64

	// Checksum is valid only when HasChecksum is set.
	Checksum    uint32
	HasChecksum bool
}

// Quantized reports whether the vector section holds int8 codes.
func (h *FlatHeader) Quantized() bool {
	return h.Flags&FlagQuantized != 0
}

// Encode returns the 64-byte header.
func (h *FlatHeader) Encode() []byte {
	buf := make([]byte, FlatHeaderSize)
	copy(buf[0:4], FlatMagic)
	binary.LittleEndian.PutUint32(buf[4:], h.Version)
	binary.LittleEndian.PutUint32(buf[8:], h.Dim)
	binary.LittleEndian.PutUint32(buf[12:], h.Flags)
	binary.LittleEndian.PutUint64(buf[16:], h.Count)
	binary.LittleEndian.PutUint64(buf[24:], h.VecOffset)
	binary.LittleEndian.PutUint64(buf[32:], h.ParamsOffset)
	binary.LittleEndian.PutUint64(buf[40:], h.IDOffset)
	if h.HasChecksum {
		binary.LittleEndian.PutUint32(buf[checksumOffset:], h.Checksum)
		copy(buf[markerOffset:], checksumMarker)
	}
	// Reserved [54:64)
	return buf
}

// DecodeFlatHeader decodes and checks the magic and version of a flat header.
func DecodeFlatHeader(buf []byte) (*FlatHeader, error) {
	if len(buf) < FlatHeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrTruncated, len(buf), FlatHeaderSize)
	}

	if string(buf[0:4]) != FlatMagic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, buf[0:4])
	}

	h := &FlatHeader{}
	h.Version = binary.LittleEndian.Uint32(buf[4:])
	if h.Version != FlatVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, h.Version)
	}
	h.Dim = binary.LittleEndian.Uint32(buf[8:])
	h.Flags = binary.LittleEndian.Uint32(buf[12:])
	h.Count = binary.LittleEndian.Uint64(buf[16:])
	h.VecOffset = binary.LittleEndian.Uint64(buf[24:])
	h.ParamsOffset = binary.LittleEndian.Uint64(buf[32:])
	h.IDOffset = binary.LittleEndian.Uint64(buf[40:])
	if string(buf[markerOffset:markerOffset+2]) == checksumMarker {
		h.HasChecksum = true
		h.Checksum = binary.LittleEndian.Uint32(buf[checksumOffset:])
	}

	return h, nil
}

// FlatLayout holds validated section bounds of a flat file. Every range it
// describes lies inside the data it was parsed from.
type FlatLayout struct {
	Header    *FlatHeader
	Dim       int
	Count     int
	Quantized bool

	// RowSize is the byte length of one vector row.
	RowSize int

	VecOffset    int
	ParamsOffset int
	IDOffset     int
	IDLen        int
}

// ParseFlat validates a complete flat file held in data and returns its
// layout. It checks the header, every section extent and every id table
// entry, so the accessors below never read outside data.
func ParseFlat(data []byte) (*FlatLayout, error) {
	h, err := DecodeFlatHeader(data)
	if err != nil {
		return nil, err
	}

	size := uint64(len(data))
	quantized := h.Quantized()

	if h.VecOffset >= size {
		return nil, fmt.Errorf("%w: vector offset %d, file size %d", ErrOffsetOutOfRange, h.VecOffset, size)
	}
	if h.IDOffset >= size {
		return nil, fmt.Errorf("%w: id offset %d, file size %d", ErrOffsetOutOfRange, h.IDOffset, size)
	}
	if quantized && h.ParamsOffset >= size {
		return nil, fmt.Errorf("%w: params offset %d, file size %d", ErrOffsetOutOfRange, h.ParamsOffset, size)
	}

	if h.VecOffset < FlatHeaderSize || h.IDOffset < FlatHeaderSize || (quantized && h.ParamsOffset < FlatHeaderSize) {
		return nil, fmt.Errorf("%w: section overlaps header", ErrOffsetOutOfRange)
	}

	if h.Dim == 0 && h.Count > 0 {
		return nil, fmt.Errorf("%w: zero dimension with %d records", ErrCorrupt, h.Count)
	}

	elem := uint64(4)
	if quantized {
		elem = 1
	}

	rowSize := uint64(h.Dim) * elem

	// Readers size scratch rows from dim, so even an empty file must hold one.
	if rowSize > size-h.VecOffset {
		return nil, fmt.Errorf("%w: row of %d bytes exceeds vector section at %d in file of %d bytes",
			ErrOffsetOutOfRange, rowSize, h.VecOffset, size)
	}

	if err := fits("vector", h.VecOffset, h.Count, rowSize, size); err != nil {
		return nil, err
	}
	if quantized {
		if err := fits("params", h.ParamsOffset, h.Count, quantization.ParamsSize, size); err != nil {
			return nil, err
		}
	}
	if err := fits("id table", h.IDOffset, h.Count, idEntrySize, size); err != nil {
		return nil, err
	}

	// All extents fit in len(data), so the conversions below cannot overflow int.
	l := &FlatLayout{
		Header:       h,
		Dim:          int(h.Dim),
		Count:        int(h.Count),
		Quantized:    quantized,
		RowSize:      int(rowSize),
		VecOffset:    int(h.VecOffset),
		ParamsOffset: int(h.ParamsOffset),
		IDOffset:     int(h.IDOffset),
		IDLen:        int(size - h.IDOffset),
	}

	if !quantized {
		l.ParamsOffset = 0
	}

	section := l.idSection(data)
	for i := 0; i < l.Count; i++ {
		off := binary.LittleEndian.Uint64(section[i*idEntrySize:])
		if off >= uint64(l.IDLen) {
			return nil, fmt.Errorf("%w: id %d offset %d outside id section of %d bytes", ErrOffsetOutOfRange, i, off, l.IDLen)
		}
	}

	return l, nil
}

func fits(name string, off, count, width, size uint64) error {
	n, err := conv.MulUint64(count, width)
	if err != nil {
		return fmt.Errorf("%w: %s section size: %w", ErrOffsetOutOfRange, name, err)
	}

	end, err := conv.AddUint64(off, n)
	if err != nil {
		return fmt.Errorf("%w: %s section end: %w", ErrOffsetOutOfRange, name, err)
	}

	if end > size {
		return fmt.Errorf("%w: %s section [%d, %d) exceeds file size %d", ErrOffsetOutOfRange, name, off, end, size)
	}

	return nil
}

func (l *FlatLayout) idSection(data []byte) []byte {
	return data[l.IDOffset : l.IDOffset+l.IDLen]
}

// Row returns the raw bytes of vector row i.
func (l *FlatLayout) Row(data []byte, i int) []byte {
	start := l.VecOffset + i*l.RowSize
	return data[start : start+l.RowSize : start+l.RowSize]
}

// Vectors returns the whole vector section.
func (l *FlatLayout) Vectors(data []byte) []byte {
	end := l.VecOffset + l.Count*l.RowSize
	return data[l.VecOffset:end:end]
}

// Params returns the quantization parameters of row i.
func (l *FlatLayout) Params(data []byte, i int) quantization.Params {
	start := l.ParamsOffset + i*quantization.ParamsSize
	return quantization.ParamsFromBytes(data[start : start+quantization.ParamsSize])
}

// ID returns a copy of the id of row i.
func (l *FlatLayout) ID(data []byte, i int) (string, error) {
	if i < 0 || i >= l.Count {
		return "", fmt.Errorf("%w: index %d of %d", ErrOffsetOutOfRange, i, l.Count)
	}

	section := l.idSection(data)
	off := int(binary.LittleEndian.Uint64(section[i*idEntrySize:]))

	s := section[off:]
	end := bytes.IndexByte(s, 0)
	if end < 0 {
		return "", fmt.Errorf("%w: id %d is not NUL-terminated", ErrCorrupt, i)
	}

	return string(s[:end]), nil
}

// VerifyChecksum checks the stored CRC32C, if any, against the body of data.
// Files without a checksum marker pass.
func (l *FlatLayout) VerifyChecksum(data []byte) error {
	if !l.Header.HasChecksum {
		return nil
	}

	if got := hash.CRC32C(data[FlatHeaderSize:]); got != l.Header.Checksum {
		return fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksumMismatch, l.Header.Checksum, got)
	}

	return nil
}

// FlatOptions controls WriteFlat.
type FlatOptions struct {
	// Checksum stores a CRC32C of the body in the header. The writer must
	// implement io.WriteSeeker.
	Checksum bool
}

// WriteFlat writes records as a flat file. Records must already be in
// ascending id order and share one mode and dimension.
func WriteFlat(w io.Writer, quantized bool, dim int, records []Record, opts FlatOptions) error {
	dim32, err := conv.IntToUint32(dim)
	if err != nil {
		return fmt.Errorf("dimension: %w", err)
	}

	var seeker io.WriteSeeker
	if opts.Checksum {
		s, ok := w.(io.WriteSeeker)
		if !ok {
			return errors.New("format: checksum requires an io.WriteSeeker")
		}
		seeker = s
	}

	for i := range records {
		r := &records[i]
		if r.Quantized() != quantized || r.Dim() != dim {
			return fmt.Errorf("%w: record %q does not match store layout", ErrCorrupt, r.ID)
		}
		if strings.IndexByte(r.ID, 0) >= 0 {
			return fmt.Errorf("%w: %q contains NUL", ErrInvalidID, r.ID)
		}
	}

	count := uint64(len(records))

	elem := uint64(4)
	if quantized {
		elem = 1
	}

	h := &FlatHeader{
		Version:   FlatVersion,
		Dim:       dim32,
		Count:     count,
		VecOffset: FlatHeaderSize,
	}

	vecSize := count * uint64(dim) * elem
	pad := uint64(0)
	h.IDOffset = h.VecOffset + vecSize

	if quantized {
		h.Flags = FlagQuantized
		pad = (flatAlign - (h.VecOffset+vecSize)%flatAlign) % flatAlign
		h.ParamsOffset = h.VecOffset + vecSize + pad
		h.IDOffset = h.ParamsOffset + count*quantization.ParamsSize
	}

	if _, err := w.Write(h.Encode()); err != nil {
		return err
	}

	bw := bufio.NewWriter(w)

	var crc io.Writer = bw
	sum := hash.NewCRC32C()
	if opts.Checksum {
		crc = io.MultiWriter(bw, sum)
	}

	if err := writeFlatBody(crc, quantized, dim, records, pad); err != nil {
		return err
	}

	if err := bw.Flush(); err != nil {
		return err
	}

	if seeker == nil {
		return nil
	}

	h.Checksum = sum.Sum32()
	h.HasChecksum = true

	if _, err := seeker.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := seeker.Write(h.Encode()); err != nil {
		return err
	}
	_, err = seeker.Seek(0, io.SeekEnd)

	return err
}

func writeFlatBody(w io.Writer, quantized bool, dim int, records []Record, pad uint64) error {
	// 1. Vectors
	row := make([]byte, 0, dim*4)
	for i := range records {
		row = row[:0]
		if quantized {
			for _, c := range records[i].Codes {
				row = append(row, byte(c))
			}
		} else {
			for _, v := range records[i].Vector {
				row = binary.LittleEndian.AppendUint32(row, math.Float32bits(v))
			}
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}

	// 2. Params
	if quantized {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return err
		}

		buf := make([]byte, 0, quantization.ParamsSize)
		for i := range records {
			if _, err := w.Write(records[i].Params.AppendBinary(buf[:0])); err != nil {
				return err
			}
		}
	}

	// 3. IDs: offset table, then NUL-terminated strings
	next := uint64(len(records)) * idEntrySize
	buf := make([]byte, 0, idEntrySize)
	for i := range records {
		if _, err := w.Write(binary.LittleEndian.AppendUint64(buf[:0], next)); err != nil {
			return err
		}
		next += uint64(len(records[i].ID)) + 1
	}

	for i := range records {
		if _, err := io.WriteString(w, records[i].ID); err != nil {
			return err
		}
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}

	return nil
}
