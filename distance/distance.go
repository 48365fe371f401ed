package distance

import (
	"fmt"

	"github.com/veslink/distmat/internal/math32"
)

// Euclidean calculates the L2 (Euclidean) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Euclidean(a, b []float32) float32 {
	return math32.Sqrt(math32.SquaredL2(a, b))
}

// SquaredL2 calculates the squared L2 distance between two vectors.
// It skips the final square root, which preserves ordering and is cheaper
// when only relative distances matter.
// Assumes vectors are the same length (caller's responsibility).
func SquaredL2(a, b []float32) float32 {
	return math32.SquaredL2(a, b)
}

// Manhattan calculates the L1 (city-block) distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Manhattan(a, b []float32) float32 {
	return math32.Manhattan(a, b)
}

// Chebyshev calculates the L-infinity distance between two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Chebyshev(a, b []float32) float32 {
	return math32.Chebyshev(a, b)
}

// Cosine calculates the cosine distance (1 - cosine similarity) between
// two vectors. Two zero vectors have distance 0.
// Assumes vectors are the same length (caller's responsibility).
func Cosine(a, b []float32) float32 {
	dot := math32.Dot(a, b)
	normA := math32.Sqrt(math32.Dot(a, a))
	normB := math32.Sqrt(math32.Dot(b, b))

	if normA == 0 || normB == 0 {
		return 0
	}

	return 1 - dot/(normA*normB)
}

// EuclideanChecked is Euclidean with an explicit length check.
// It returns an error instead of producing undefined results when the
// vector lengths differ.
func EuclideanChecked(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d != %d", len(a), len(b))
	}
	return Euclidean(a, b), nil
}

// Metric represents the distance metric used for vector comparison.
type Metric int

const (
	MetricEuclidean Metric = iota
	MetricSquaredL2
	MetricManhattan
	MetricChebyshev
	MetricCosine
)

func (m Metric) String() string {
	switch m {
	case MetricEuclidean:
		return "Euclidean"
	case MetricSquaredL2:
		return "SquaredL2"
	case MetricManhattan:
		return "Manhattan"
	case MetricChebyshev:
		return "Chebyshev"
	case MetricCosine:
		return "Cosine"
	default:
		return fmt.Sprintf("Unknown(%d)", m)
	}
}

// ParseMetric converts a metric name produced by String back into a
// Metric. It is used when restoring persisted matrices.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "Euclidean":
		return MetricEuclidean, nil
	case "SquaredL2":
		return MetricSquaredL2, nil
	case "Manhattan":
		return MetricManhattan, nil
	case "Chebyshev":
		return MetricChebyshev, nil
	case "Cosine":
		return MetricCosine, nil
	default:
		return 0, fmt.Errorf("unknown metric: %q", s)
	}
}

// Func is a function type for distance calculation.
type Func func(a, b []float32) float32

// Provider returns the distance function for the given metric.
func Provider(m Metric) (Func, error) {
	switch m {
	case MetricEuclidean:
		return Euclidean, nil
	case MetricSquaredL2:
		return SquaredL2, nil
	case MetricManhattan:
		return Manhattan, nil
	case MetricChebyshev:
		return Chebyshev, nil
	case MetricCosine:
		return Cosine, nil
	default:
		return nil, fmt.Errorf("unsupported metric: %v", m)
	}
}
