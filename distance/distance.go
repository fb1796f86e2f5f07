// Package distance provides the similarity function used by both stores.
package distance

import (
	"github.com/viant/vec/search"
)

// minNorm is the norm below which a vector is treated as zero.
const minNorm = 1e-9

// Norm returns the L2 norm of v.
func Norm(v []float32) float32 {
	if len(v) == 0 {
		return 0
	}
	return search.Float32s(v).Magnitude()
}

// CosineSimilarity returns dot(a,b)/(|a||b|) clamped into [-1, 1].
// It returns 0 when either vector has a (near) zero norm.
//
// Assumes len(a) == len(b) (caller's responsibility).
func CosineSimilarity(a, b []float32) float32 {
	return CosineSimilarityWithNorm(a, b, Norm(a))
}

// CosineSimilarityWithNorm is CosineSimilarity with the norm of a precomputed,
// which lets a linear scan compute the query norm once.
func CosineSimilarityWithNorm(a, b []float32, normA float32) float32 {
	normB := Norm(b)
	if normA < minNorm || normB < minNorm {
		return 0
	}
	sim := Dot(a, b) / (normA * normB)
	switch {
	case sim > 1:
		return 1
	case sim < -1:
		return -1
	}
	return sim
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}
	return ret
}
