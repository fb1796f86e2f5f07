package pocketvec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/hupe1980/pocketvec/distance"
	"github.com/hupe1980/pocketvec/internal/format"
	"github.com/hupe1980/pocketvec/internal/mmap"
	"github.com/hupe1980/pocketvec/quantization"
)

// FlatStore is a read-only store over a memory-mapped flat file. Vectors are
// scored straight from the mapping and never copied into the heap as a whole.
//
// A FlatStore is not safe for concurrent use. Close releases the mapping;
// results returned earlier stay valid.
type FlatStore struct {
	opts   options
	logger *Logger

	m      *mmap.Mapping
	data   []byte
	layout *format.FlatLayout

	// floatView is set when float rows can be viewed in place.
	floatView bool
	scratch   []float32
}

// NewFlatStore creates an unloaded store. Call Load before searching.
func NewFlatStore(optFns ...Option) *FlatStore {
	o := applyOptions(optFns)
	return &FlatStore{
		opts:   o,
		logger: o.logger.WithStore("flat"),
	}
}

// OpenFlat creates a FlatStore and loads path into it.
func OpenFlat(path string, optFns ...Option) (*FlatStore, error) {
	s := NewFlatStore(optFns...)
	if err := s.Load(path); err != nil {
		return nil, err
	}
	return s, nil
}

// Load maps path and validates its header and section bounds. Any previous
// mapping is released first; on failure the store is left unloaded.
func (s *FlatStore) Load(path string) (err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordLoad(time.Since(start), err)
		s.logger.LogMap(path, s.Dim(), s.Len(), s.Quantized(), err)
	}()

	if err := s.Close(); err != nil {
		return err
	}

	m, err := mmap.Open(path)
	if err != nil {
		if errors.Is(err, mmap.ErrEmptyFile) {
			return fmt.Errorf("%w: %w", ErrTruncated, err)
		}
		return err
	}

	data := m.Bytes()

	layout, err := format.ParseFlat(data)
	if err == nil && s.opts.verifyChecksum {
		err = layout.VerifyChecksum(data)
	}
	if err != nil {
		_ = m.Close()
		return err
	}

	// Search reads the vector section front to back.
	if r, rerr := m.Region(layout.VecOffset, layout.Count*layout.RowSize); rerr == nil {
		if aerr := r.Advise(mmap.AccessSequential); aerr != nil {
			s.logger.Debug("madvise failed", "path", path, "error", aerr)
		}
	}

	s.m = m
	s.data = data
	s.layout = layout
	s.floatView = !layout.Quantized && canViewFloats(data[layout.VecOffset:])
	if layout.Count > 0 {
		s.scratch = make([]float32, layout.Dim)
	}

	return nil
}

// Close unmaps the file. It is safe to call on an unloaded store.
func (s *FlatStore) Close() error {
	var err error
	if s.m != nil {
		err = s.m.Close()
	}

	s.m = nil
	s.data = nil
	s.layout = nil
	s.floatView = false
	s.scratch = nil

	return err
}

// Loaded reports whether a file is mapped.
func (s *FlatStore) Loaded() bool { return s.layout != nil }

// Len returns the number of records, or 0 when unloaded.
func (s *FlatStore) Len() int {
	if s.layout == nil {
		return 0
	}
	return s.layout.Count
}

// Dim returns the record dimension, or 0 when unloaded.
func (s *FlatStore) Dim() int {
	if s.layout == nil {
		return 0
	}
	return s.layout.Dim
}

// Quantized reports whether the mapped file holds int8 codes.
func (s *FlatStore) Quantized() bool {
	return s.layout != nil && s.layout.Quantized
}

// ID returns the id of record i, which is also its rank in id order.
func (s *FlatStore) ID(i int) (string, error) {
	if s.layout == nil {
		return "", ErrNotLoaded
	}
	return s.layout.ID(s.data, i)
}

// Search scores every mapped record against query and returns the best limit
// results, ranked exactly like HeapStore.Search.
func (s *FlatStore) Search(query []float32, limit int) (results []SearchResult, err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordSearch(limit, time.Since(start), err)
		s.logger.LogSearch(limit, len(results), err)
	}()

	if s.layout == nil {
		return nil, ErrNotLoaded
	}

	l := s.layout
	if l.Count == 0 {
		return nil, nil
	}
	if len(query) != l.Dim {
		return nil, &ErrDimensionMismatch{Expected: l.Dim, Actual: len(query)}
	}
	if limit <= 0 {
		return nil, nil
	}

	qNorm := distance.Norm(query)
	hits := make([]hit, l.Count)

	for i := range hits {
		hits[i] = hit{
			index: i,
			score: distance.CosineSimilarityWithNorm(query, s.row(i), qNorm),
		}
	}

	top := topHits(hits, limit, hitBeforeByIndex)

	results = make([]SearchResult, len(top))
	for i, h := range top {
		id, err := l.ID(s.data, h.index)
		if err != nil {
			return nil, err
		}
		results[i] = SearchResult{ID: id, Score: h.score}
	}

	return results, nil
}

// row returns record i as floats, either viewed in place or decoded into the
// scratch row.
func (s *FlatStore) row(i int) []float32 {
	l := s.layout
	raw := l.Row(s.data, i)

	if l.Quantized {
		quantization.DequantizeInto(s.scratch, int8View(raw), l.Params(s.data, i))
		return s.scratch
	}

	if s.floatView {
		return float32View(raw)
	}

	for j := range s.scratch {
		s.scratch[j] = math.Float32frombits(binary.LittleEndian.Uint32(raw[j*4:]))
	}

	return s.scratch
}
