package mmap

import "os"

// Region represents a subsection of a memory mapping.
// It does not own the memory; the parent Mapping does.
type Region struct {
	parent *Mapping
	offset int
	size   int
}

// Region creates a new bounds-checked view into the mapping.
func (m *Mapping) Region(offset, size int) (*Region, error) {
	if m.data == nil {
		return nil, ErrClosed
	}
	if offset < 0 || size < 0 || offset > len(m.data) || size > len(m.data)-offset {
		return nil, ErrOutOfBounds
	}
	return &Region{
		parent: m,
		offset: offset,
		size:   size,
	}, nil
}

// Offset returns the start of the region within the mapping.
func (r *Region) Offset() int { return r.offset }

// Len returns the length of the region in bytes.
func (r *Region) Len() int { return r.size }

// Bytes returns the byte slice for this region, or nil once the parent is unmapped.
func (r *Region) Bytes() []byte {
	data := r.parent.data
	if data == nil || r.offset+r.size > len(data) {
		return nil
	}
	return data[r.offset : r.offset+r.size : r.offset+r.size]
}

// Advise provides hints to the kernel about how this region will be accessed.
// The advised range starts at the page containing the region's first byte.
func (r *Region) Advise(pattern AccessPattern) error {
	data := r.pageBytes()
	if data == nil {
		return ErrClosed
	}
	return osAdvise(data, pattern)
}

// pageBytes returns the region extended down to a page boundary. The mapping
// itself starts on a page, so offsets within it align like addresses.
func (r *Region) pageBytes() []byte {
	data := r.parent.data
	end := r.offset + r.size
	if data == nil || end > len(data) {
		return nil
	}
	start := r.offset &^ (os.Getpagesize() - 1)
	return data[start:end:end]
}
