package fs

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBytes(data []byte) func(f File) error {
	return func(f File) error {
		_, err := f.Write(data)
		return err
	}
}

func TestLocalFS(t *testing.T) {
	tmp := t.TempDir()
	lfs := LocalFS{}

	fpath := filepath.Join(tmp, "test.txt")
	f, err := lfs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	_, err = f.Write([]byte("hello"))
	assert.NoError(t, err)
	assert.NoError(t, f.Sync())

	info, err := f.Stat()
	assert.NoError(t, err)
	assert.Equal(t, int64(5), info.Size())
	assert.NoError(t, f.Close())

	data, err := lfs.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	newPath := filepath.Join(tmp, "renamed.txt")
	assert.NoError(t, lfs.Rename(fpath, newPath))

	assert.NoError(t, lfs.Remove(newPath))
	_, err = lfs.Stat(newPath)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteFileAtomic(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "store.bin")

	require.NoError(t, WriteFileAtomic(nil, path, writeBytes([]byte("v1"))))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "v1", string(data))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file must not survive")
}

func TestWriteFileAtomic_FileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not enforced on windows")
	}

	tmp := t.TempDir()

	fresh := filepath.Join(tmp, "fresh.bin")
	require.NoError(t, WriteFileAtomic(nil, fresh, writeBytes([]byte("v1"))))

	info, err := os.Stat(fresh)
	require.NoError(t, err)
	assert.Equal(t, FilePerm, info.Mode().Perm())

	private := filepath.Join(tmp, "private.bin")
	require.NoError(t, os.WriteFile(private, []byte("old"), 0o600))
	require.NoError(t, os.Chmod(private, 0o600))
	require.NoError(t, WriteFileAtomic(nil, private, writeBytes([]byte("new"))))

	info, err = os.Stat(private)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), "replaced file keeps its mode")
}

func TestWriteFileAtomic_CallbackError(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "store.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	boom := errors.New("boom")
	err := WriteFileAtomic(Default, path, func(f File) error { return boom })
	require.ErrorIs(t, err, boom)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))

	entries, err := os.ReadDir(tmp)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFaultyFS(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "store.bin")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o644))

	tests := []struct {
		name  string
		fault Fault
	}{
		{"short write", Fault{FailAfterBytes: 5}},
		{"sync", Fault{FailAfterBytes: -1, FailOnSync: true}},
		{"close", Fault{FailAfterBytes: -1, FailOnClose: true}},
		{"rename", Fault{FailAfterBytes: -1, FailOnRename: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ffs := NewFaultyFS(LocalFS{})
			ffs.AddRule(".tmp-", tt.fault)

			err := WriteFileAtomic(ffs, path, writeBytes([]byte("0123456789")))
			require.ErrorIs(t, err, ErrInjected)

			data, err := os.ReadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "old", string(data))

			entries, err := os.ReadDir(tmp)
			require.NoError(t, err)
			assert.Len(t, entries, 1)
		})
	}
}

func TestFaultyFS_Delegation(t *testing.T) {
	tmp := t.TempDir()
	ffs := NewFaultyFS(nil)

	fpath := filepath.Join(tmp, "test.txt")
	f, err := ffs.OpenFile(fpath, os.O_CREATE|os.O_RDWR, 0o644)
	require.NoError(t, err)

	n, err := f.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	require.NoError(t, f.Close())
	assert.Equal(t, int64(5), ffs.Written())

	data, err := ffs.ReadFile(fpath)
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	ffs.AddRule("test.txt", Fault{FailAfterBytes: -1, FailOnRead: true})
	_, err = ffs.ReadFile(fpath)
	assert.ErrorIs(t, err, ErrInjected)

	assert.NoError(t, ffs.Rename(fpath, fpath+".renamed"))
	_, err = ffs.Stat(fpath + ".renamed")
	assert.NoError(t, err)
	assert.NoError(t, ffs.Remove(fpath+".renamed"))
}
