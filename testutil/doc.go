// Package testutil provides testing utilities for pocketvec.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random vectors and ids, and for
// computing exact cosine top-k results as ground truth.
//
//	rng := testutil.NewRNG(seed)
//	vecs := rng.MixedSignVectors(100, 64)
//	ids := testutil.IDs(len(vecs))
//	want := testutil.BruteForceSearch(ids, vecs, query, 10)
package testutil
