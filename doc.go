// Package pocketvec provides an on-device embedding store with brute-force
// cosine search.
//
// Two store variants share one query contract ([Store]):
//
//   - [HeapStore]: a mutable, keyed collection of float32 or int8-quantized
//     vectors. It persists to a growable record stream ("MVS1"), optionally
//     encrypted ("MVE1"), and exports the flat format for mapping.
//   - [FlatStore]: a read-only store that memory-maps a flat ("MFVS") file
//     and scores records directly from the mapped bytes.
//
// # Quick Start
//
//	s := pocketvec.NewHeapStore(pocketvec.WithQuantization(true))
//	_ = s.Add("doc-1", []float32{0.1, 0.9, 0.3})
//	_ = s.Add("doc-2", []float32{0.8, 0.1, 0.4})
//
//	results, _ := s.Search([]float32{0.2, 0.8, 0.3}, 5)
//	for _, r := range results {
//	    fmt.Println(r.ID, r.Score)
//	}
//
// # Persistence
//
//	_ = s.Save("store.mvs", key)    // growable; encrypted when key != ""
//	_ = s.SaveFlat("store.mfvs")    // flat, ascending id order
//
//	fs, _ := pocketvec.OpenFlat("store.mfvs")
//	defer fs.Close()
//	results, _ = fs.Search(query, 5)
//
// Loading a growable file adopts the quantization mode recorded in the file.
// [HeapStore.Load] reports the transition in [LoadInfo].
//
// # Ranking
//
// Both stores score every record, keep the best limit results by score
// descending and order equal scores by id ascending. NaN scores rank last.
// A flat file stores records in ascending id order, so both variants return
// the same ranking for the same data.
//
// # Concurrency
//
// Stores are not safe for concurrent use. Callers serialize access to a
// store; independent stores may be used from different goroutines.
package pocketvec
