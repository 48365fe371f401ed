// Package util provides helpers for generating test and benchmark
// datasets.
package util

import "math/rand"

// RNG struct encapsulates the random number generator and seed.
type RNG struct {
	rand *rand.Rand
	seed int64
}

// NewRNG creates a new RNG instance with the specified seed.
// The same seed always yields the same datasets, which keeps the
// sequential-vs-parallel comparison tests deterministic.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)), // nolint gosec
		seed: seed,
	}
}

// Seed returns the seed the RNG was created with.
func (r *RNG) Seed() int64 { return r.seed }

// GenerateRandomVectors generates a dataset of num rows with the given
// dimensionality, elements uniform in [0, 1).
func (r *RNG) GenerateRandomVectors(num int, dimensions int) [][]float32 {
	rows := make([][]float32, num)
	for i := range rows {
		rows[i] = make([]float32, dimensions)
		for j := range rows[i] {
			rows[i][j] = r.rand.Float32()
		}
	}

	return rows
}
