// Package testutil provides testing utilities for schtree.
//
// This package is intended for use in tests and benchmarks only.
// It provides helpers for generating random point sets and computing exact
// nearest neighbors by sorting every distance.
//
// # Random Point Generation
//
//	rng := testutil.NewRNG(seed)
//	pts := rng.UniformVectors(1000, 13)         // uniform [0, 1)
//	pts = rng.ClusteredVectors(1000, 13, 8, 0.05) // gaussian blobs
//
// # Exact Search (Ground Truth)
//
//	want := testutil.BruteForceSearch(points, query, k)
//	if err := testutil.CompareResults(want, got); err != nil {
//	    t.Fatal(err)
//	}
package testutil
