package pocketvec

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hupe1980/pocketvec/cipher"
	"github.com/hupe1980/pocketvec/distance"
	"github.com/hupe1980/pocketvec/internal/format"
	"github.com/hupe1980/pocketvec/internal/fs"
	"github.com/hupe1980/pocketvec/quantization"
)

// HeapStore is a mutable, keyed vector store held in memory.
//
// The first accepted vector fixes the dimension; Clear resets it. In
// quantized mode only the int8 codes and their parameters are kept.
//
// A HeapStore is not safe for concurrent use.
type HeapStore struct {
	opts      options
	logger    *Logger
	quantized bool
	dim       int
	records   []format.Record
	index     map[string]int
	scratch   []float32
}

// NewHeapStore creates an empty store.
func NewHeapStore(optFns ...Option) *HeapStore {
	o := applyOptions(optFns)
	return &HeapStore{
		opts:      o,
		logger:    o.logger.WithStore("heap"),
		quantized: o.quantized,
		index:     make(map[string]int),
	}
}

// Add stores v under id. It rejects an empty vector, an id that is already
// present and a vector whose length differs from the store dimension.
func (s *HeapStore) Add(id string, v []float32) (err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordAdd(time.Since(start), err)
		s.logger.LogAdd(id, len(v), err)
	}()

	if len(v) == 0 {
		return ErrEmptyVector
	}
	if _, ok := s.index[id]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}
	if s.dim != 0 && len(v) != s.dim {
		return &ErrDimensionMismatch{Expected: s.dim, Actual: len(v)}
	}

	rec := format.Record{ID: id}
	if s.quantized {
		rec.Params = quantization.CalculateParams(v)
		rec.Codes = quantization.Quantize(v, rec.Params)
	} else {
		rec.Vector = slices.Clone(v)
	}

	if s.dim == 0 {
		s.dim = len(v)
	}

	s.index[id] = len(s.records)
	s.records = append(s.records, rec)

	return nil
}

// Search scores every stored vector against query and returns the best limit
// results. It returns no results for an empty store or a non-positive limit,
// and ErrDimensionMismatch when the query length differs from the dimension.
func (s *HeapStore) Search(query []float32, limit int) (results []SearchResult, err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordSearch(limit, time.Since(start), err)
		s.logger.LogSearch(limit, len(results), err)
	}()

	if len(s.records) == 0 {
		return nil, nil
	}
	if len(query) != s.dim {
		return nil, &ErrDimensionMismatch{Expected: s.dim, Actual: len(query)}
	}
	if limit <= 0 {
		return nil, nil
	}

	qNorm := distance.Norm(query)
	hits := make([]hit, len(s.records))

	for i := range s.records {
		hits[i] = hit{
			id:    s.records[i].ID,
			index: i,
			score: distance.CosineSimilarityWithNorm(query, s.vector(i), qNorm),
		}
	}

	top := topHits(hits, limit, hitBeforeByID)

	results = make([]SearchResult, len(top))
	for i, h := range top {
		results[i] = SearchResult{ID: h.id, Score: h.score}
	}

	return results, nil
}

// vector returns record i as floats. Quantized records are dequantized into
// a scratch buffer that is overwritten by the next call.
func (s *HeapStore) vector(i int) []float32 {
	r := &s.records[i]
	if !r.Quantized() {
		return r.Vector
	}

	if cap(s.scratch) < s.dim {
		s.scratch = make([]float32, s.dim)
	}
	s.scratch = s.scratch[:s.dim]
	quantization.DequantizeInto(s.scratch, r.Codes, r.Params)

	return s.scratch
}

// Len returns the number of stored vectors.
func (s *HeapStore) Len() int { return len(s.records) }

// Dim returns the store dimension, or 0 while the store is empty.
func (s *HeapStore) Dim() int { return s.dim }

// Quantized reports whether the store holds int8 codes.
func (s *HeapStore) Quantized() bool { return s.quantized }

// Clear removes every vector and resets the dimension. The mode is kept.
func (s *HeapStore) Clear() {
	s.records = nil
	s.index = make(map[string]int)
	s.dim = 0
	s.scratch = nil
}

// Contains reports whether id is stored.
func (s *HeapStore) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// Get returns a copy of the vector stored under id. Quantized vectors are
// returned dequantized.
func (s *HeapStore) Get(id string) ([]float32, bool) {
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}

	r := &s.records[i]
	if r.Quantized() {
		return quantization.Dequantize(r.Codes, r.Params), true
	}

	return slices.Clone(r.Vector), true
}

// IDs returns the stored ids in ascending order.
func (s *HeapStore) IDs() []string {
	ids := make([]string, len(s.records))
	for i := range s.records {
		ids[i] = s.records[i].ID
	}
	slices.Sort(ids)
	return ids
}

// sortedRecords returns the records in ascending id order, the order both
// file formats are written in.
func (s *HeapStore) sortedRecords() []format.Record {
	out := slices.Clone(s.records)
	slices.SortFunc(out, func(a, b format.Record) int {
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// Save writes the store in the growable format. A non-empty key encrypts the
// stream with the configured cipher under the "MVE1" magic. The file is
// replaced atomically, so a failed save leaves an existing file intact. A
// replaced file keeps its permission bits; a new one is created 0644.
func (s *HeapStore) Save(path, key string) (err error) {
	start := time.Now()
	kind := "growable"
	if key != "" {
		kind = "encrypted"
	}
	defer func() {
		s.opts.metricsCollector.RecordSave(time.Since(start), err)
		s.logger.LogSave(path, kind, len(s.records), err)
	}()

	records := s.sortedRecords()

	return fs.WriteFileAtomic(s.opts.fs, path, func(f fs.File) error {
		if key == "" {
			return format.EncodeGrowable(f, s.quantized, s.dim, records)
		}

		var buf bytes.Buffer
		if err := format.EncodeGrowable(&buf, s.quantized, s.dim, records); err != nil {
			return err
		}

		sealed, err := s.opts.cipher.Encrypt(buf.Bytes(), key)
		if err != nil {
			return fmt.Errorf("encrypt: %w", err)
		}

		if _, err := f.Write([]byte(format.MagicEncrypted)); err != nil {
			return err
		}
		_, err = f.Write(sealed)

		return err
	})
}

// Load replaces the store contents with the growable file at path. The file
// is decoded completely before any state changes, so a failed load leaves
// the store untouched. On success the store adopts the file's quantization
// mode; the returned LoadInfo reports whether it changed.
func (s *HeapStore) Load(path, key string) (info LoadInfo, err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordLoad(time.Since(start), err)
		s.logger.LogLoad(path, info, err)
	}()

	data, err := s.opts.fs.ReadFile(path)
	if err != nil {
		return LoadInfo{}, err
	}

	g, err := decodeGrowable(data, key, s.opts.cipher)
	if err != nil {
		return LoadInfo{}, err
	}

	info = LoadInfo{
		Quantized:         g.Header.Quantized,
		PreviousQuantized: s.quantized,
		ModeChanged:       g.Header.Quantized != s.quantized,
		Count:             len(g.Records),
	}

	s.quantized = g.Header.Quantized
	s.records = g.Records
	s.index = g.Index
	s.scratch = nil
	s.dim = 0
	if len(g.Records) > 0 {
		s.dim = g.Header.Dim
	}
	info.Dim = s.dim

	return info, nil
}

func decodeGrowable(data []byte, key string, c cipher.Cipher) (*format.Growable, error) {
	magic, err := format.ReadMagic(data)
	if err != nil {
		return nil, err
	}

	switch magic {
	case format.MagicPlain:
		return format.DecodeGrowable(data)
	case format.MagicEncrypted:
		if key == "" {
			return nil, ErrKeyRequired
		}

		plain, err := c.Decrypt(data[format.MagicSize:], key)
		if err != nil {
			if errors.Is(err, ErrDecrypt) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %w", ErrDecrypt, err)
		}

		if inner, err := format.ReadMagic(plain); err != nil || inner != format.MagicPlain {
			return nil, fmt.Errorf("%w: decrypted stream has no %s header", ErrDecrypt, format.MagicPlain)
		}

		return format.DecodeGrowable(plain)
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, magic)
	}
}

// SaveFlat writes the store in the flat format for FlatStore. Records are
// written in ascending id order. Ids containing NUL fail with ErrInvalidID.
// The file is replaced atomically with the same mode rules as Save.
func (s *HeapStore) SaveFlat(path string) (err error) {
	start := time.Now()
	defer func() {
		s.opts.metricsCollector.RecordSave(time.Since(start), err)
		s.logger.LogSave(path, "flat", len(s.records), err)
	}()

	records := s.sortedRecords()

	return fs.WriteFileAtomic(s.opts.fs, path, func(f fs.File) error {
		return format.WriteFlat(f, s.quantized, s.dim, records, format.FlatOptions{Checksum: s.opts.checksum})
	})
}
