package distmat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veslink/distmat/distance"
)

func TestMatrixAccessors(t *testing.T) {
	m := NewMatrix(3, 2, distance.MetricEuclidean)
	m.set(0, 1, 5)
	m.set(1, 2, 7)

	assert.Equal(t, 3, m.Rows())
	assert.Equal(t, 2, m.Dimension())
	assert.Equal(t, distance.MetricEuclidean, m.Metric())

	assert.Equal(t, float32(5), m.At(0, 1))
	assert.Equal(t, float32(5), m.At(1, 0))
	assert.Equal(t, float32(7), m.At(2, 1))
	assert.Equal(t, float32(0), m.At(0, 0))

	assert.Equal(t, []float32{5, 0, 7}, m.Row(1))
	assert.Len(t, m.Data(), 9)
}

func TestMatrixClone(t *testing.T) {
	m := NewMatrix(2, 1, distance.MetricManhattan)
	m.set(0, 1, 3)

	c := m.Clone()
	require.True(t, m.Equal(c))

	c.set(0, 1, 4)
	assert.False(t, m.Equal(c))
	assert.Equal(t, float32(3), m.At(0, 1))
}

func TestMatrixEqual(t *testing.T) {
	a := NewMatrix(2, 1, distance.MetricEuclidean)
	b := NewMatrix(2, 1, distance.MetricEuclidean)
	assert.True(t, a.Equal(b))

	assert.False(t, a.Equal(nil))
	assert.False(t, a.Equal(NewMatrix(3, 1, distance.MetricEuclidean)))
	assert.False(t, a.Equal(NewMatrix(2, 1, distance.MetricManhattan)))

	b.set(0, 1, 1)
	assert.False(t, a.Equal(b))
}

func TestRestoreMatrix(t *testing.T) {
	t.Run("Valid", func(t *testing.T) {
		data := []float32{0, 5, 5, 0}
		m, err := RestoreMatrix(2, 2, distance.MetricEuclidean, data)
		require.NoError(t, err)
		assert.Equal(t, float32(5), m.At(0, 1))
	})

	t.Run("LengthMismatch", func(t *testing.T) {
		_, err := RestoreMatrix(2, 2, distance.MetricEuclidean, []float32{0, 5, 5})
		require.Error(t, err)
	})

	t.Run("NegativeRows", func(t *testing.T) {
		_, err := RestoreMatrix(-1, 2, distance.MetricEuclidean, nil)
		require.Error(t, err)
	})
}
