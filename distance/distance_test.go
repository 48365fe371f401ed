package distance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Pythagorean", []float32{0, 0}, []float32{3, 4}, 5},
		{"Identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 0},
		{"Unit", []float32{0}, []float32{1}, 1},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Euclidean(tt.a, tt.b)
			assert.InDelta(t, tt.expected, got, 1e-5)
			// Distance is symmetric in its arguments.
			assert.Equal(t, got, Euclidean(tt.b, tt.a))
		})
	}
}

func TestSquaredL2(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 27},
		{"Mixed", []float32{1, -1}, []float32{-1, 1}, 8},
		{"Empty", []float32{}, []float32{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, SquaredL2(tt.a, tt.b), 1e-5)
		})
	}
}

func TestManhattan(t *testing.T) {
	assert.InDelta(t, float32(7), Manhattan([]float32{0, 0}, []float32{3, 4}), 1e-5)
	assert.InDelta(t, float32(0), Manhattan([]float32{1, 1}, []float32{1, 1}), 1e-5)
}

func TestChebyshev(t *testing.T) {
	assert.InDelta(t, float32(4), Chebyshev([]float32{0, 0}, []float32{3, 4}), 1e-5)
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Parallel", []float32{1, 0}, []float32{2, 0}, 0},
		{"Orthogonal", []float32{1, 0}, []float32{0, 1}, 1},
		{"Opposite", []float32{1, 0}, []float32{-1, 0}, 2},
		{"ZeroVector", []float32{0, 0}, []float32{1, 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cosine(tt.a, tt.b), 1e-5)
		})
	}
}

func TestEuclideanChecked(t *testing.T) {
	t.Run("Match", func(t *testing.T) {
		d, err := EuclideanChecked([]float32{0, 0}, []float32{3, 4})
		require.NoError(t, err)
		assert.InDelta(t, float32(5), d, 1e-5)
	})

	t.Run("Mismatch", func(t *testing.T) {
		_, err := EuclideanChecked([]float32{1, 2}, []float32{1, 2, 3})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "length mismatch")
	})
}

func TestMetricString(t *testing.T) {
	assert.Equal(t, "Euclidean", MetricEuclidean.String())
	assert.Equal(t, "SquaredL2", MetricSquaredL2.String())
	assert.Equal(t, "Manhattan", MetricManhattan.String())
	assert.Equal(t, "Chebyshev", MetricChebyshev.String())
	assert.Equal(t, "Cosine", MetricCosine.String())
	assert.Equal(t, "Unknown(42)", Metric(42).String())
}

func TestParseMetric(t *testing.T) {
	for _, m := range []Metric{MetricEuclidean, MetricSquaredL2, MetricManhattan, MetricChebyshev, MetricCosine} {
		parsed, err := ParseMetric(m.String())
		require.NoError(t, err, m.String())
		assert.Equal(t, m, parsed)
	}

	_, err := ParseMetric("Hamming")
	require.Error(t, err)
}

func TestProvider(t *testing.T) {
	for _, m := range []Metric{MetricEuclidean, MetricSquaredL2, MetricManhattan, MetricChebyshev, MetricCosine} {
		fn, err := Provider(m)
		require.NoError(t, err, m.String())
		require.NotNil(t, fn)
	}

	_, err := Provider(Metric(42))
	require.Error(t, err)
}
