// Package math32 provides float32 vector kernels used by the distance
// package. This is an internal package - external users should use the
// distance package.
package math32

import "math"

var (
	dotImpl       = dotGeneric
	squaredL2Impl = squaredL2Generic
	manhattanImpl = manhattanGeneric
	chebyshevImpl = chebyshevGeneric
)

// Dot calculates the dot product of two vectors.
//
// SAFETY: This function assumes len(a) == len(b).
// It does NOT perform bounds checks for performance reasons.
// Callers MUST ensure lengths match.
func Dot(a, b []float32) float32 {
	return dotImpl(a, b)
}

// SquaredL2 calculates the squared L2 (Euclidean) distance.
//
// SAFETY: This function assumes len(a) == len(b).
func SquaredL2(a, b []float32) float32 {
	return squaredL2Impl(a, b)
}

// Manhattan calculates the L1 (city-block) distance.
//
// SAFETY: This function assumes len(a) == len(b).
func Manhattan(a, b []float32) float32 {
	return manhattanImpl(a, b)
}

// Chebyshev calculates the L-infinity distance.
//
// SAFETY: This function assumes len(a) == len(b).
func Chebyshev(a, b []float32) float32 {
	return chebyshevImpl(a, b)
}

// Sqrt returns the square root of x.
func Sqrt(x float32) float32 {
	return float32(math.Sqrt(float64(x)))
}

// Abs returns the absolute value of x.
func Abs(x float32) float32 {
	return math.Float32frombits(math.Float32bits(x) &^ (1 << 31))
}

func dotGeneric(a, b []float32) float32 {
	var ret float32
	for i := range a {
		ret += a[i] * b[i]
	}

	return ret
}

func squaredL2Generic(a, b []float32) float32 {
	var distance float32
	for i := range a {
		distance += (a[i] - b[i]) * (a[i] - b[i])
	}

	return distance
}

func manhattanGeneric(a, b []float32) float32 {
	var distance float32
	for i := range a {
		distance += Abs(a[i] - b[i])
	}

	return distance
}

func chebyshevGeneric(a, b []float32) float32 {
	var maxVal float32
	for i := range a {
		if v := Abs(a[i] - b[i]); v > maxVal {
			maxVal = v
		}
	}

	return maxVal
}
