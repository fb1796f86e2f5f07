package mmap

import (
	"io"
	"math"
	"os"
)

// Mapping represents a read-only memory-mapped file.
// It owns the underlying byte slice and is responsible for unmapping it.
//
// A Mapping must not be copied; use Move to hand ownership to another owner.
type Mapping struct {
	_ noCopy

	data []byte
	// unmap is the platform-specific function to unmap the memory.
	unmap func([]byte) error
}

// Open maps the file at path into memory as read-only.
func Open(path string) (*Mapping, error) {
	m := &Mapping{}
	if err := m.Map(path); err != nil {
		return nil, err
	}
	return m, nil
}

// Map maps the file at path, releasing any mapping m currently holds.
// On failure m is left unmapped.
func (m *Mapping) Map(path string) error {
	if err := m.Close(); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	// The mapping keeps its own reference to the file pages.
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}

	size := fi.Size()
	if size == 0 {
		return ErrEmptyFile
	}
	if size < 0 || size > math.MaxInt {
		return ErrInvalidSize
	}

	// Platform-specific mapping
	data, unmapFunc, err := osMap(f, int(size))
	if err != nil {
		return err
	}

	m.data = data
	m.unmap = unmapFunc
	return nil
}

// Close unmaps the memory. It is idempotent.
func (m *Mapping) Close() error {
	if m == nil || m.data == nil {
		return nil
	}
	data, unmap := m.data, m.unmap
	m.data = nil
	m.unmap = nil
	if unmap != nil {
		return unmap(data)
	}
	return nil
}

// Move transfers ownership of the mapping to a new Mapping and leaves m unmapped.
func (m *Mapping) Move() *Mapping {
	moved := &Mapping{data: m.data, unmap: m.unmap}
	m.data = nil
	m.unmap = nil
	return moved
}

// Bytes returns the underlying byte slice, or nil when unmapped.
// Warning: The slice is valid only until Close() is called.
// Accessing the slice after Close() results in undefined behavior (likely a crash).
func (m *Mapping) Bytes() []byte {
	return m.data
}

// Size returns the size of the mapping in bytes, or 0 when unmapped.
func (m *Mapping) Size() int {
	return len(m.data)
}

// IsMapped reports whether m currently holds a mapping.
func (m *Mapping) IsMapped() bool {
	return m.data != nil
}

// Advise provides hints to the kernel about how the memory will be accessed.
func (m *Mapping) Advise(pattern AccessPattern) error {
	if m.data == nil {
		return ErrClosed
	}
	return osAdvise(m.data, pattern)
}

// ReadAt implements io.ReaderAt.
func (m *Mapping) ReadAt(p []byte, off int64) (n int, err error) {
	if m.data == nil {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, ErrInvalidOffset
	}
	if off >= int64(len(m.data)) {
		return 0, io.EOF
	}
	n = copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
