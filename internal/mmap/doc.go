// Package mmap provides read-only memory-mapped file access for zero-copy I/O.
//
// # Usage
//
//	m, err := mmap.Open("store.mfvs")
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes()                 // zero-copy view of the whole file
//	region, _ := m.Region(64, 1024)   // bounds-checked sub-view
//	_ = m.Advise(mmap.AccessSequential)
//
// # Lifetime
//
// The slice returned by Bytes (and by Region.Bytes) is valid from a successful
// Open/Map until the next Close or Map. Zero-length files are rejected with
// ErrEmptyFile. Close is idempotent. A Mapping must not be copied; Move hands
// ownership to a new value and leaves the source unmapped, so exactly one
// owner ever unmaps the pages.
//
// # Platform Support
//
//   - Unix (Linux, Android, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile (Advise is a no-op)
//
// # Thread Safety
//
// A Mapping performs no locking. Concurrent reads of Bytes are fine; Map, Move
// and Close must be serialized by the caller.
package mmap
