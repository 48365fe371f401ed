package distmat

import (
	"fmt"

	"github.com/veslink/distmat/distance"
)

// Matrix is a dense symmetric pairwise distance matrix.
//
// Storage is a flat row-major float32 slice: cell (i, j) lives at
// data[i*n+j]. The diagonal is zero and At(i, j) == At(j, i) for every
// matrix produced by Compute. A Matrix is created fresh per computation
// and is fully owned by the caller; the library keeps no reference to it.
type Matrix struct {
	n      int
	dim    int
	metric distance.Metric
	data   []float32
}

// NewMatrix allocates a zeroed n×n matrix. dim records the
// dimensionality of the vectors the distances were computed over.
func NewMatrix(n, dim int, metric distance.Metric) *Matrix {
	return &Matrix{
		n:      n,
		dim:    dim,
		metric: metric,
		data:   make([]float32, n*n),
	}
}

// RestoreMatrix reconstructs a matrix from its flat row-major backing,
// as produced by Data. It is used when loading snapshots.
func RestoreMatrix(n, dim int, metric distance.Metric, data []float32) (*Matrix, error) {
	if n < 0 || len(data) != n*n {
		return nil, fmt.Errorf("matrix data length %d does not match %d rows", len(data), n)
	}
	return &Matrix{n: n, dim: dim, metric: metric, data: data}, nil
}

// Rows returns the number of rows (and columns) of the matrix.
func (m *Matrix) Rows() int { return m.n }

// Dimension returns the dimensionality of the source vectors.
func (m *Matrix) Dimension() int { return m.dim }

// Metric returns the distance metric the matrix was computed with.
func (m *Matrix) Metric() distance.Metric { return m.metric }

// At returns the distance between rows i and j.
func (m *Matrix) At(i, j int) float32 {
	return m.data[i*m.n+j]
}

// Row returns row i of the matrix as a subslice of the backing storage.
// Mutating the returned slice mutates the matrix.
func (m *Matrix) Row(i int) []float32 {
	return m.data[i*m.n : (i+1)*m.n]
}

// Data returns the flat row-major backing slice.
// Mutating the returned slice mutates the matrix.
func (m *Matrix) Data() []float32 { return m.data }

// Clone returns a deep copy of the matrix.
func (m *Matrix) Clone() *Matrix {
	data := make([]float32, len(m.data))
	copy(data, m.data)
	return &Matrix{n: m.n, dim: m.dim, metric: m.metric, data: data}
}

// Equal reports whether two matrices have identical shape, metric and
// cell values. Comparison is exact, not within a tolerance.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil || m.n != other.n || m.metric != other.metric {
		return false
	}
	for i := range m.data {
		if m.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// set writes the mirrored pair (i, j) and (j, i).
func (m *Matrix) set(i, j int, v float32) {
	m.data[i*m.n+j] = v
	m.data[j*m.n+i] = v
}
