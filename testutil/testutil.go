package testutil

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"

	"github.com/hupe1980/schtree/internal/vecmath"
	"github.com/hupe1980/schtree/knn"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float32 in a loop).
func (r *RNG) FillUniform(dst []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float32()
	}
}

// FillUniformRange fills dst with random values in range [minVal, maxVal).
func (r *RNG) FillUniformRange(dst []float32, minVal, maxVal float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	span := maxVal - minVal
	for i := range dst {
		dst[i] = minVal + r.rand.Float32()*span
	}
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float32 {
	return r.UniformRangeVectors(num, dimensions, 0, 1)
}

// UniformRangeVectors generates random vectors with values in range [minVal, maxVal).
func (r *RNG) UniformRangeVectors(num int, dimensions int, minVal, maxVal float32) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)
	span := maxVal - minVal

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = minVal + r.rand.Float32()*span
		}
		vectors[i] = vec
	}

	return vectors
}

// GaussianVectors generates random vectors with values from a standard normal distribution.
func (r *RNG) GaussianVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = float32(r.rand.NormFloat64())
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVectors generates L2-normalized random vectors (on the hypersphere).
func (r *RNG) UnitVectors(num int, dimensions int) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dimensions)
	vectors := make([][]float32, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions : (i+1)*dimensions]
		var norm float64
		for j := range vec {
			v := r.rand.NormFloat64()
			vec[j] = float32(v)
			norm += v * v
		}

		if norm == 0 {
			norm = 1
		}

		vecmath.ScaleInPlace(vec, float32(1.0/math.Sqrt(norm)))
		vectors[i] = vec
	}

	return vectors
}

// ClusteredVectors generates vectors clustered around random unit centroids.
// Tight clusters stress the splitting heuristic far more than uniform data.
func (r *RNG) ClusteredVectors(num, dim, clusters int, spread float32) [][]float32 {
	centroids := r.UnitVectors(clusters, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float32, num*dim)
	vectors := make([][]float32, num)

	for i := range num {
		centroid := centroids[i%clusters]
		vec := data[i*dim : (i+1)*dim : (i+1)*dim]
		for j := range dim {
			vec[j] = centroid[j] + float32(r.rand.NormFloat64())*spread
		}
		vectors[i] = vec
	}

	return vectors
}

// DuplicateVectors generates num vectors drawn from only distinct different
// uniform points. The copies are separate slices.
func (r *RNG) DuplicateVectors(num, dim, distinct int) [][]float32 {
	base := r.UniformVectors(distinct, dim)

	r.mu.Lock()
	defer r.mu.Unlock()

	vectors := make([][]float32, num)
	for i := range num {
		src := base[r.rand.Intn(distinct)]
		vectors[i] = append([]float32(nil), src...)
	}
	return vectors
}

// ToFloat64 converts a float32 point set to float64.
func ToFloat64(vectors [][]float32) [][]float64 {
	out := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, len(v))
		for j, x := range v {
			row[j] = float64(x)
		}
		out[i] = row
	}
	return out
}

// BruteForceSearch computes the exact k nearest neighbors by sorting all
// distances by (distance, index). The returned result is sorted.
func BruteForceSearch[T vecmath.Float](vectors [][]T, query []T, k int) *knn.Result[T] {
	all := make([]knn.Neighbor[T], len(vectors))
	for i, v := range vectors {
		all[i] = knn.Neighbor[T]{Index: i, Distance: vecmath.Euclidean(query, v)}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Less(all[j]) })

	res := knn.New[T](k)
	for _, n := range all[:min(k, len(all))] {
		res.Insert(n.Index, n.Distance)
	}
	res.Sort()
	return res
}

// CompareResults returns a descriptive error if got does not hold exactly
// the neighbors of want.
func CompareResults[T vecmath.Float](want, got *knn.Result[T]) error {
	if want.Equal(got) {
		return nil
	}
	w := sortedNeighbors(want)
	g := sortedNeighbors(got)
	if len(w) != len(g) {
		return fmt.Errorf("result size %d, want %d", len(g), len(w))
	}
	for i := range w {
		if w[i] != g[i] {
			return fmt.Errorf("rank %d: got %d@%v, want %d@%v", i, g[i].Index, g[i].Distance, w[i].Index, w[i].Distance)
		}
	}
	return fmt.Errorf("results differ")
}

func sortedNeighbors[T vecmath.Float](r *knn.Result[T]) []knn.Neighbor[T] {
	out := append([]knn.Neighbor[T](nil), r.Neighbors()...)
	sort.Slice(out, func(i, j int) bool { return out[i].Less(out[j]) })
	return out
}
