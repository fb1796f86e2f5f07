package fs

import (
	"io"
	"os"
	"path/filepath"
)

// File represents an open file.
type File interface {
	io.ReadWriteCloser
	io.Seeker
	Sync() error
	Chmod(mode os.FileMode) error
	Stat() (os.FileInfo, error)
	Name() string
}

// FileSystem abstracts the file operations the stores perform.
type FileSystem interface {
	OpenFile(name string, flag int, perm os.FileMode) (File, error)
	CreateTemp(dir, pattern string) (File, error)
	ReadFile(name string) ([]byte, error)
	Remove(name string) error
	Rename(oldpath, newpath string) error
	Stat(name string) (os.FileInfo, error)
}

// LocalFS implements FileSystem using the local os package.
type LocalFS struct{}

func (LocalFS) OpenFile(name string, flag int, perm os.FileMode) (File, error) {
	return os.OpenFile(name, flag, perm)
}

func (LocalFS) CreateTemp(dir, pattern string) (File, error) {
	return os.CreateTemp(dir, pattern)
}

func (LocalFS) ReadFile(name string) ([]byte, error)  { return os.ReadFile(name) }
func (LocalFS) Remove(name string) error              { return os.Remove(name) }
func (LocalFS) Rename(oldpath, newpath string) error  { return os.Rename(oldpath, newpath) }
func (LocalFS) Stat(name string) (os.FileInfo, error) { return os.Stat(name) }

// FilePerm is the mode WriteFileAtomic gives a file it creates.
const FilePerm os.FileMode = 0o644

// Default is the default local file system.
var Default FileSystem = LocalFS{}

// WriteFileAtomic writes the output of fn to a temporary sibling of path,
// syncs it and renames it over path. A replaced file keeps its permission
// bits; a new file gets FilePerm. On any failure the temporary file is
// removed and path is left untouched.
func WriteFileAtomic(fsys FileSystem, path string, fn func(f File) error) (err error) {
	if fsys == nil {
		fsys = Default
	}

	f, err := fsys.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}

	tmp := f.Name()

	defer func() {
		if err != nil {
			_ = fsys.Remove(tmp)
		}
	}()

	perm := FilePerm
	if fi, serr := fsys.Stat(path); serr == nil {
		perm = fi.Mode().Perm()
	}

	if err = f.Chmod(perm); err != nil {
		_ = f.Close()
		return err
	}

	if err = fn(f); err != nil {
		_ = f.Close()
		return err
	}

	if err = f.Sync(); err != nil {
		_ = f.Close()
		return err
	}

	if err = f.Close(); err != nil {
		return err
	}

	return fsys.Rename(tmp, path)
}
