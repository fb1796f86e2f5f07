// Package archive writes and restores compressed backups of store files.
//
// An archive is a 24-byte header followed by one compressed stream:
//
//	[4] magic "PVA1"
//	[1] codec (1 = lz4 frame, 2 = zstd frame)
//	[3] reserved
//	[8] uncompressed size u64
//	[4] CRC32C of the uncompressed bytes
//	[4] reserved
//
// Restore verifies both size and checksum before the destination is replaced.
package archive

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/pocketvec/internal/fs"
	"github.com/hupe1980/pocketvec/internal/hash"
)

const (
	magic      = "PVA1"
	headerSize = 24
)

var (
	// ErrInvalidArchive is returned for data that is not a readable archive.
	ErrInvalidArchive = errors.New("invalid archive")
	// ErrChecksumMismatch is returned when restored bytes do not match the header.
	ErrChecksumMismatch = errors.New("archive checksum mismatch")
)

// Codec selects the compression algorithm.
type Codec uint8

const (
	// CodecLZ4 is fast with a moderate ratio.
	CodecLZ4 Codec = 1
	// CodecZSTD has a better ratio and is the default.
	CodecZSTD Codec = 2
)

// ParseCodec returns the codec for "zstd" or "lz4". The empty name means zstd.
func ParseCodec(name string) (Codec, error) {
	switch name {
	case "", "zstd":
		return CodecZSTD, nil
	case "lz4":
		return CodecLZ4, nil
	default:
		return 0, fmt.Errorf("unknown codec %q", name)
	}
}

func (c Codec) String() string {
	switch c {
	case CodecLZ4:
		return "lz4"
	case CodecZSTD:
		return "zstd"
	default:
		return fmt.Sprintf("codec(%d)", uint8(c))
	}
}

// Stats describes one backup or restore.
type Stats struct {
	Codec            Codec
	UncompressedSize int64
	CompressedSize   int64
	Checksum         uint32
}

// Compress writes an archive of data to w.
func Compress(w io.Writer, data []byte, codec Codec) (Stats, error) {
	st := Stats{
		Codec:            codec,
		UncompressedSize: int64(len(data)),
		Checksum:         hash.CRC32C(data),
	}

	hdr := make([]byte, headerSize)
	copy(hdr, magic)
	hdr[4] = byte(codec)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(data)))
	binary.LittleEndian.PutUint32(hdr[16:], st.Checksum)

	cw := &countingWriter{w: w}
	if _, err := cw.Write(hdr); err != nil {
		return Stats{}, err
	}

	zw, err := newWriter(cw, codec)
	if err != nil {
		return Stats{}, err
	}
	if _, err := zw.Write(data); err != nil {
		_ = zw.Close()
		return Stats{}, err
	}
	if err := zw.Close(); err != nil {
		return Stats{}, err
	}

	st.CompressedSize = cw.n

	return st, nil
}

// Decompress reads a complete archive and returns the verified content.
func Decompress(archive []byte) ([]byte, Stats, error) {
	if len(archive) < headerSize || string(archive[:4]) != magic {
		return nil, Stats{}, fmt.Errorf("%w: missing header", ErrInvalidArchive)
	}

	st := Stats{
		Codec:          Codec(archive[4]),
		CompressedSize: int64(len(archive)),
		Checksum:       binary.LittleEndian.Uint32(archive[16:]),
	}

	size := binary.LittleEndian.Uint64(archive[8:])

	zr, closeFn, err := newReader(bytes.NewReader(archive[headerSize:]), st.Codec)
	if err != nil {
		return nil, Stats{}, err
	}
	defer closeFn()

	// Read at most one byte past the declared size so a lying header cannot
	// make us inflate without bound.
	var out bytes.Buffer
	n, err := io.Copy(&out, io.LimitReader(zr, int64(min(size, 1<<62))+1))
	if err != nil {
		return nil, Stats{}, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
	}
	if uint64(n) != size {
		return nil, Stats{}, fmt.Errorf("%w: size %d, header says %d", ErrInvalidArchive, n, size)
	}

	if got := hash.CRC32C(out.Bytes()); got != st.Checksum {
		return nil, Stats{}, fmt.Errorf("%w: stored %08x, computed %08x", ErrChecksumMismatch, st.Checksum, got)
	}

	st.UncompressedSize = n

	return out.Bytes(), st, nil
}

// Backup compresses the file at src into a new archive at dst.
func Backup(fsys fs.FileSystem, src, dst string, codec Codec) (Stats, error) {
	if fsys == nil {
		fsys = fs.Default
	}

	data, err := fsys.ReadFile(src)
	if err != nil {
		return Stats{}, err
	}

	var st Stats
	err = fs.WriteFileAtomic(fsys, dst, func(f fs.File) error {
		var werr error
		st, werr = Compress(f, data, codec)
		return werr
	})

	return st, err
}

// Restore verifies the archive at src and writes its content to dst.
// dst is only replaced when the archive is intact.
func Restore(fsys fs.FileSystem, src, dst string) (Stats, error) {
	if fsys == nil {
		fsys = fs.Default
	}

	archive, err := fsys.ReadFile(src)
	if err != nil {
		return Stats{}, err
	}

	data, st, err := Decompress(archive)
	if err != nil {
		return Stats{}, err
	}

	err = fs.WriteFileAtomic(fsys, dst, func(f fs.File) error {
		_, werr := f.Write(data)
		return werr
	})

	return st, err
}

func newWriter(w io.Writer, codec Codec) (io.WriteCloser, error) {
	switch codec {
	case CodecZSTD:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault), zstd.WithZeroFrames(true))
	case CodecLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown codec %d", uint8(codec))
	}
}

func newReader(r io.Reader, codec Codec) (io.Reader, func(), error) {
	switch codec {
	case CodecZSTD:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidArchive, err)
		}
		return dec, dec.Close, nil
	case CodecLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown codec %d", ErrInvalidArchive, uint8(codec))
	}
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
