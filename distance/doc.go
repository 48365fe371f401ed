// Package distance provides the public API for vector distance
// calculations over float32 slices.
//
// All functions assume equal-length inputs unless a Checked variant is
// used; the matrix builders in the root package validate the whole
// dataset up front so the per-pair kernels can skip bounds checks.
package distance
