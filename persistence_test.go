package pocketvec

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/pocketvec/cipher"
	"github.com/hupe1980/pocketvec/internal/fs"
	"github.com/hupe1980/pocketvec/testutil"
)

func TestHeapStore_SaveLoadRoundTrip(t *testing.T) {
	for _, quantized := range []bool{false, true} {
		dir := t.TempDir()
		path := filepath.Join(dir, "store.mvs")

		s := NewHeapStore(WithQuantization(quantized))
		fillStore(t, s, 120, 24, 5)
		require.NoError(t, s.Save(path, ""))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "MVS1", string(data[:4]))

		loaded := NewHeapStore(WithQuantization(quantized))
		info, err := loaded.Load(path, "")
		require.NoError(t, err)
		assert.Equal(t, LoadInfo{Quantized: quantized, PreviousQuantized: quantized, Dim: 24, Count: 120}, info)

		queries := testutil.NewRNG(99).UniformRangeVectors(5, 24)
		for _, q := range queries {
			want, err := s.Search(q, 10)
			require.NoError(t, err)
			got, err := loaded.Search(q, 10)
			require.NoError(t, err)
			assert.Equal(t, want, got, "quantized=%v", quantized)
		}
	}
}

func TestHeapStore_SaveIsSortedAndDeterministic(t *testing.T) {
	dir := t.TempDir()

	a := NewHeapStore()
	require.NoError(t, a.Add("b", []float32{1, 2}))
	require.NoError(t, a.Add("a", []float32{3, 4}))

	b := NewHeapStore()
	require.NoError(t, b.Add("a", []float32{3, 4}))
	require.NoError(t, b.Add("b", []float32{1, 2}))

	pa, pb := filepath.Join(dir, "a.mvs"), filepath.Join(dir, "b.mvs")
	require.NoError(t, a.Save(pa, ""))
	require.NoError(t, b.Save(pb, ""))

	da, err := os.ReadFile(pa)
	require.NoError(t, err)
	db, err := os.ReadFile(pb)
	require.NoError(t, err)
	assert.Equal(t, da, db)
}

func TestHeapStore_LoadAdoptsFileMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "q.mvs")

	q := NewHeapStore(WithQuantization(true))
	require.NoError(t, q.Add("a", []float32{0.5, -0.5}))
	require.NoError(t, q.Save(path, ""))

	var logs bytes.Buffer
	f := NewHeapStore(WithQuantization(false), WithLogger(NewLogger(slog.NewJSONHandler(&logs, nil))))
	info, err := f.Load(path, "")
	require.NoError(t, err)

	assert.True(t, info.ModeChanged)
	assert.False(t, info.PreviousQuantized)
	assert.True(t, info.Quantized)
	assert.True(t, f.Quantized())
	assert.Contains(t, logs.String(), "quantization mode changed by load")
}

func TestHeapStore_EncryptedPersistence(t *testing.T) {
	ciphers := []cipher.Cipher{cipher.XOR{}, cipher.AEAD{}}

	for _, c := range ciphers {
		t.Run(c.Name(), func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "enc.mvs")

			s := NewHeapStore(WithCipher(c))
			fillStore(t, s, 20, 8, 1)
			require.NoError(t, s.Save(path, "alpha-secret"))

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "MVE1", string(data[:4]))

			t.Run("no key", func(t *testing.T) {
				_, err := NewHeapStore(WithCipher(c)).Load(path, "")
				assert.ErrorIs(t, err, ErrKeyRequired)
			})

			t.Run("wrong key", func(t *testing.T) {
				r := NewHeapStore(WithCipher(c))
				_, err := r.Load(path, "bravo-secret")
				assert.ErrorIs(t, err, ErrDecrypt)
				assert.Equal(t, 0, r.Len())
			})

			t.Run("right key", func(t *testing.T) {
				r := NewHeapStore(WithCipher(c))
				_, err := r.Load(path, "alpha-secret")
				require.NoError(t, err)
				assert.Equal(t, s.IDs(), r.IDs())

				for _, id := range s.IDs() {
					want, _ := s.Get(id)
					got, _ := r.Get(id)
					assert.Equal(t, want, got)
				}
			})
		})
	}
}

func TestHeapStore_XORIsWireCompatible(t *testing.T) {
	dir := t.TempDir()
	plainPath := filepath.Join(dir, "plain.mvs")
	encPath := filepath.Join(dir, "enc.mvs")

	s := NewHeapStore()
	require.NoError(t, s.Add("a", []float32{1, 2, 3}))
	require.NoError(t, s.Save(plainPath, ""))
	require.NoError(t, s.Save(encPath, "k"))

	plain, err := os.ReadFile(plainPath)
	require.NoError(t, err)
	enc, err := os.ReadFile(encPath)
	require.NoError(t, err)

	require.Len(t, enc, len(plain)+4)
	for i := range plain {
		assert.Equal(t, plain[i]^'k', enc[4+i])
	}
}

func TestHeapStore_LoadFailuresKeepState(t *testing.T) {
	dir := t.TempDir()

	s := NewHeapStore()
	require.NoError(t, s.Add("keep", []float32{1, 2}))

	valid := filepath.Join(dir, "valid.mvs")
	other := NewHeapStore()
	require.NoError(t, other.Add("x", []float32{1, 2, 3}))
	require.NoError(t, other.Save(valid, ""))
	data, err := os.ReadFile(valid)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", append([]byte("NOPE"), data[4:]...), ErrInvalidMagic},
		{"short", data[:2], ErrCorrupt},
		{"truncated", data[:len(data)-1], ErrCorrupt},
		{"trailing", append(bytes.Clone(data), 1, 2, 3), ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			require.NoError(t, os.WriteFile(path, tt.data, 0o644))

			_, err := s.Load(path, "")
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, []string{"keep"}, s.IDs())
			assert.Equal(t, 2, s.Dim())
		})
	}

	_, err = s.Load(filepath.Join(dir, "missing"), "")
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, 1, s.Len())
}

func TestHeapStore_LoadEmptyStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.mvs")
	require.NoError(t, NewHeapStore().Save(path, ""))

	s := NewHeapStore()
	require.NoError(t, s.Add("a", []float32{1}))

	info, err := s.Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Count)
	assert.Equal(t, 0, s.Len())
	assert.Equal(t, 0, s.Dim())
}

func TestHeapStore_FailedSaveKeepsExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "store.mvs")
	require.NoError(t, os.WriteFile(path, []byte("previous"), 0o644))

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule(".tmp-", fs.Fault{FailAfterBytes: 10})

	s := NewHeapStore(withFileSystem(ffs))
	fillStore(t, s, 10, 4, 2)

	assert.ErrorIs(t, s.Save(path, ""), fs.ErrInjected)
	assert.ErrorIs(t, s.SaveFlat(path), fs.ErrInjected)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "previous", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHeapStore_LoadReadFailure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "store.mvs")
	require.NoError(t, NewHeapStore().Save(path, ""))

	ffs := fs.NewFaultyFS(nil)
	ffs.AddRule("store.mvs", fs.Fault{FailAfterBytes: -1, FailOnRead: true})

	m := &BasicMetricsCollector{}
	_, err := NewHeapStore(withFileSystem(ffs), WithMetricsCollector(m)).Load(path, "")
	assert.ErrorIs(t, err, fs.ErrInjected)
	assert.Equal(t, int64(1), m.GetStats().LoadErrors)
}
