package distmat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veslink/distmat/distance"
	"github.com/veslink/distmat/resource"
	"github.com/veslink/distmat/util"
)

func TestComputeKnownValues(t *testing.T) {
	t.Run("Pythagorean", func(t *testing.T) {
		m, err := Compute(context.Background(), [][]float32{{0, 0}, {3, 4}})
		require.NoError(t, err)

		assert.Equal(t, 2, m.Rows())
		assert.Equal(t, float32(0), m.At(0, 0))
		assert.Equal(t, float32(0), m.At(1, 1))
		assert.InDelta(t, float32(5), m.At(0, 1), 1e-5)
		assert.InDelta(t, float32(5), m.At(1, 0), 1e-5)
	})

	t.Run("SingleRow", func(t *testing.T) {
		m, err := Compute(context.Background(), [][]float32{{1, 1, 1}})
		require.NoError(t, err)

		assert.Equal(t, 1, m.Rows())
		assert.Equal(t, 3, m.Dimension())
		assert.Equal(t, float32(0), m.At(0, 0))
	})
}

func TestComputeInvariants(t *testing.T) {
	rows := util.NewRNG(42).GenerateRandomVectors(37, 8)

	m, err := Compute(context.Background(), rows)
	require.NoError(t, err)

	for i := 0; i < m.Rows(); i++ {
		assert.Equal(t, float32(0), m.At(i, i), "diagonal must be zero")
		for j := i + 1; j < m.Rows(); j++ {
			assert.Equal(t, m.At(i, j), m.At(j, i), "matrix must be symmetric")
			assert.InDelta(t, distance.Euclidean(rows[i], rows[j]), m.At(i, j), 1e-5)
		}
	}
}

func TestComputeParallelMatchesSequential(t *testing.T) {
	rng := util.NewRNG(7)

	for _, n := range []int{1, 2, 5, 16, 33} {
		rows := rng.GenerateRandomVectors(n, 6)

		sequential, err := Compute(context.Background(), rows, WithWorkers(1))
		require.NoError(t, err)

		// Divisor, non-divisor, and degenerate worker counts all reduce
		// to the sequential result.
		for _, workers := range []int{0, 1, 2, 3, n, n + 5} {
			parallel, err := Compute(context.Background(), rows, WithWorkers(workers))
			require.NoError(t, err, "n=%d workers=%d", n, workers)
			assert.True(t, sequential.Equal(parallel), "n=%d workers=%d", n, workers)
		}
	}
}

func TestComputeMetrics(t *testing.T) {
	rows := [][]float32{{0, 0}, {3, 4}}

	tests := []struct {
		metric   distance.Metric
		expected float32
	}{
		{distance.MetricEuclidean, 5},
		{distance.MetricSquaredL2, 25},
		{distance.MetricManhattan, 7},
		{distance.MetricChebyshev, 4},
	}

	for _, tt := range tests {
		t.Run(tt.metric.String(), func(t *testing.T) {
			m, err := Compute(context.Background(), rows, WithMetric(tt.metric))
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, m.At(0, 1), 1e-5)
			assert.Equal(t, tt.metric, m.Metric())
		})
	}
}

func TestComputeCustomDistanceFunc(t *testing.T) {
	rows := [][]float32{{1}, {2}, {4}}

	m, err := Compute(context.Background(), rows, WithDistanceFunc(func(a, b []float32) float32 {
		return b[0] - a[0] // asymmetric on purpose; builder mirrors i<j
	}))
	require.NoError(t, err)

	assert.Equal(t, float32(1), m.At(0, 1))
	assert.Equal(t, float32(1), m.At(1, 0))
	assert.Equal(t, float32(3), m.At(0, 2))
}

func TestComputeErrors(t *testing.T) {
	t.Run("EmptyDataset", func(t *testing.T) {
		_, err := Compute(context.Background(), nil)
		require.ErrorIs(t, err, ErrEmptyDataset)
	})

	t.Run("RaggedRows", func(t *testing.T) {
		_, err := Compute(context.Background(), [][]float32{{1, 2}, {1, 2, 3}})
		require.Error(t, err)

		var dm *ErrDimensionMismatch
		require.True(t, errors.As(err, &dm))
		assert.Equal(t, 1, dm.Row)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
	})

	t.Run("NegativeWorkers", func(t *testing.T) {
		_, err := Compute(context.Background(), [][]float32{{1}}, WithWorkers(-1))
		require.ErrorIs(t, err, ErrInvalidWorkers)
	})

	t.Run("UnknownMetric", func(t *testing.T) {
		_, err := Compute(context.Background(), [][]float32{{1}}, WithMetric(distance.Metric(42)))
		require.Error(t, err)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		rows := util.NewRNG(1).GenerateRandomVectors(64, 4)
		_, err := Compute(ctx, rows, WithWorkers(4))
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestComputeSubset(t *testing.T) {
	rows := [][]float32{{0, 0}, {1, 1}, {3, 4}, {6, 8}}

	t.Run("Selected", func(t *testing.T) {
		sel := roaring.BitmapOf(0, 2)

		m, indices, err := ComputeSubset(context.Background(), rows, sel)
		require.NoError(t, err)

		assert.Equal(t, []uint32{0, 2}, indices)
		assert.Equal(t, 2, m.Rows())
		assert.InDelta(t, float32(5), m.At(0, 1), 1e-5)
	})

	t.Run("EmptySelection", func(t *testing.T) {
		_, _, err := ComputeSubset(context.Background(), rows, roaring.New())
		require.ErrorIs(t, err, ErrEmptySelection)

		_, _, err = ComputeSubset(context.Background(), rows, nil)
		require.ErrorIs(t, err, ErrEmptySelection)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, _, err := ComputeSubset(context.Background(), rows, roaring.BitmapOf(1, 9))
		require.Error(t, err)

		var oor *ErrSelectionOutOfRange
		require.True(t, errors.As(err, &oor))
		assert.Equal(t, 9, oor.Index)
		assert.Equal(t, 4, oor.Rows)
	})
}

func TestComputeWithController(t *testing.T) {
	c := resource.NewController(resource.Config{MaxConcurrentJobs: 1})
	rows := util.NewRNG(3).GenerateRandomVectors(10, 4)

	m, err := Compute(context.Background(), rows, WithController(c), WithWorkers(4))
	require.NoError(t, err)
	assert.Equal(t, 10, m.Rows())
	assert.Equal(t, int64(0), c.ActiveJobs())
}

func TestComputeWithCollector(t *testing.T) {
	collector := &BasicMetricsCollector{}
	rows := util.NewRNG(9).GenerateRandomVectors(8, 4)

	_, err := Compute(context.Background(), rows, WithMetricsCollector(collector))
	require.NoError(t, err)

	_, err = Compute(context.Background(), nil, WithMetricsCollector(collector))
	require.Error(t, err)

	assert.Equal(t, int64(1), collector.ComputeCount.Load())
	assert.Equal(t, int64(8), collector.RowsProcessed.Load())
	assert.GreaterOrEqual(t, collector.AverageComputeTime(), time.Duration(0))
}

func BenchmarkCompute(b *testing.B) {
	rows := util.NewRNG(42).GenerateRandomVectors(256, 64)

	b.Run("Sequential", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := Compute(context.Background(), rows, WithWorkers(1)); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Parallel", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := Compute(context.Background(), rows); err != nil {
				b.Fatal(err)
			}
		}
	})
}
