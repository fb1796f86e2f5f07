package pocketvec

import (
	"math"

	"github.com/hupe1980/pocketvec/internal/queue"
)

// SearchResult is one ranked match.
type SearchResult struct {
	ID    string  `json:"id"`
	Score float32 `json:"score"`
}

// Store is the query contract shared by HeapStore and FlatStore.
type Store interface {
	// Search returns up to limit results ranked by cosine similarity.
	Search(query []float32, limit int) ([]SearchResult, error)
	// Len returns the number of stored vectors.
	Len() int
	// Dim returns the fixed dimension, or 0 before the first vector.
	Dim() int
	// Quantized reports whether vectors are held as int8 codes.
	Quantized() bool
}

var (
	_ Store = (*HeapStore)(nil)
	_ Store = (*FlatStore)(nil)
)

// LoadInfo describes the state a HeapStore adopted from a loaded file.
type LoadInfo struct {
	Quantized         bool
	PreviousQuantized bool
	ModeChanged       bool
	Dim               int
	Count             int
}

// hit is a scored record. Heap stores rank by id, flat stores by row index.
type hit struct {
	id    string
	index int
	score float32
}

// compareScores orders a before b when it scores higher. NaN ranks last.
func compareScores(a, b float32) int {
	an, bn := math.IsNaN(float64(a)), math.IsNaN(float64(b))
	switch {
	case an && bn:
		return 0
	case an:
		return 1
	case bn:
		return -1
	case a > b:
		return -1
	case a < b:
		return 1
	}
	return 0
}

func hitBeforeByID(a, b hit) bool {
	if c := compareScores(a.score, b.score); c != 0 {
		return c < 0
	}
	return a.id < b.id
}

func hitBeforeByIndex(a, b hit) bool {
	if c := compareScores(a.score, b.score); c != 0 {
		return c < 0
	}
	return a.index < b.index
}

// topHits keeps the best limit hits, best first.
func topHits(hits []hit, limit int, before func(a, b hit) bool) []hit {
	return queue.TopK(hits, limit, before)
}

func resultBefore(a, b SearchResult) bool {
	if c := compareScores(a.Score, b.Score); c != 0 {
		return c < 0
	}
	return a.ID < b.ID
}

// MergeResults combines rankings from several stores into one ranking of at
// most limit results, ordered like Store.Search. The input slices are not
// modified.
func MergeResults(limit int, lists ...[]SearchResult) []SearchResult {
	n := 0
	for _, l := range lists {
		n += len(l)
	}

	all := make([]SearchResult, 0, n)
	for _, l := range lists {
		all = append(all, l...)
	}

	return queue.TopK(all, limit, resultBefore)
}
