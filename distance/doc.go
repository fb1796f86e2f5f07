// Package distance provides the cosine similarity used to score stored vectors.
//
// Norms are delegated to github.com/viant/vec, which ships vectorized float32
// kernels on arm64 and a portable loop elsewhere. CosineSimilarity returns a
// score in [-1, 1] (higher is more similar) and 0 for zero vectors.
//
//	sim := distance.CosineSimilarity(query, vec)
//
//	// Scanning many vectors: compute the query norm once.
//	qn := distance.Norm(query)
//	for _, v := range vecs {
//	    _ = distance.CosineSimilarityWithNorm(query, v, qn)
//	}
package distance
