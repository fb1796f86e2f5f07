package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample() []byte {
	return bytes.Repeat([]byte("MVS1 pocketvec sample payload "), 200)
}

func TestCompressDecompress(t *testing.T) {
	for _, codec := range []Codec{CodecZSTD, CodecLZ4} {
		t.Run(codec.String(), func(t *testing.T) {
			var buf bytes.Buffer
			st, err := Compress(&buf, sample(), codec)
			require.NoError(t, err)

			assert.Equal(t, int64(len(sample())), st.UncompressedSize)
			assert.Equal(t, int64(buf.Len()), st.CompressedSize)
			assert.Less(t, st.CompressedSize, st.UncompressedSize)

			data, rst, err := Decompress(buf.Bytes())
			require.NoError(t, err)
			assert.Equal(t, sample(), data)
			assert.Equal(t, codec, rst.Codec)
			assert.Equal(t, st.Checksum, rst.Checksum)
		})
	}
}

func TestDecompress_Empty(t *testing.T) {
	var buf bytes.Buffer
	_, err := Compress(&buf, nil, CodecZSTD)
	require.NoError(t, err)

	data, _, err := Decompress(buf.Bytes())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestDecompress_Rejects(t *testing.T) {
	var buf bytes.Buffer
	_, err := Compress(&buf, sample(), CodecZSTD)
	require.NoError(t, err)
	valid := buf.Bytes()

	t.Run("short", func(t *testing.T) {
		_, _, err := Decompress(valid[:10])
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("magic", func(t *testing.T) {
		b := bytes.Clone(valid)
		copy(b, "XXXX")
		_, _, err := Decompress(b)
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("codec", func(t *testing.T) {
		b := bytes.Clone(valid)
		b[4] = 9
		_, _, err := Decompress(b)
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("size", func(t *testing.T) {
		b := bytes.Clone(valid)
		b[8]++
		_, _, err := Decompress(b)
		assert.ErrorIs(t, err, ErrInvalidArchive)
	})

	t.Run("checksum", func(t *testing.T) {
		b := bytes.Clone(valid)
		b[16] ^= 0xFF
		_, _, err := Decompress(b)
		assert.ErrorIs(t, err, ErrChecksumMismatch)
	})

	t.Run("truncated stream", func(t *testing.T) {
		_, _, err := Decompress(valid[:len(valid)-4])
		assert.Error(t, err)
	})
}

func TestBackupRestore(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "store.mvs")
	arc := filepath.Join(dir, "store.mvs.zst")
	dst := filepath.Join(dir, "restored.mvs")

	require.NoError(t, os.WriteFile(src, sample(), 0o644))

	st, err := Backup(nil, src, arc, CodecLZ4)
	require.NoError(t, err)
	assert.Equal(t, CodecLZ4, st.Codec)

	_, err = Restore(nil, arc, dst)
	require.NoError(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, sample(), got)
}

func TestRestore_CorruptArchiveKeepsDestination(t *testing.T) {
	dir := t.TempDir()
	arc := filepath.Join(dir, "bad.zst")
	dst := filepath.Join(dir, "store.mvs")

	require.NoError(t, os.WriteFile(arc, []byte("PVA1 definitely not an archive"), 0o644))
	require.NoError(t, os.WriteFile(dst, []byte("keep"), 0o644))

	_, err := Restore(nil, arc, dst)
	assert.Error(t, err)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(got))
}

func TestParseCodec(t *testing.T) {
	c, err := ParseCodec("")
	require.NoError(t, err)
	assert.Equal(t, CodecZSTD, c)

	c, err = ParseCodec("lz4")
	require.NoError(t, err)
	assert.Equal(t, CodecLZ4, c)

	_, err = ParseCodec("gzip")
	assert.Error(t, err)
}
