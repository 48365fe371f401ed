package distmat

import (
	"context"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"golang.org/x/sync/errgroup"

	"github.com/veslink/distmat/distance"
	"github.com/veslink/distmat/internal/partition"
)

// Compute builds the pairwise distance matrix for the given dataset.
//
// rows is an ordered sequence of equal-length vectors; it is treated as
// immutable input and is never modified. The returned matrix has a zero
// diagonal, is symmetric, and At(i, j) equals the configured distance
// between rows i and j.
//
// With WithWorkers(k), the row range is split into k contiguous
// partitions computed by one goroutine each and joined before Compute
// returns. Every worker owns a disjoint set of cells, so the result is
// identical to the sequential one for any worker count. WithWorkers(0)
// (the default) derives the partition count from runtime.GOMAXPROCS.
func Compute(ctx context.Context, rows [][]float32, optFns ...Option) (*Matrix, error) {
	o := defaultOptions()
	for _, fn := range optFns {
		fn(&o)
	}

	if o.workers < 0 {
		return nil, ErrInvalidWorkers
	}

	dim, err := validate(rows)
	if err != nil {
		return nil, err
	}

	fn := o.fn
	if fn == nil {
		fn, err = distance.Provider(o.metric)
		if err != nil {
			return nil, err
		}
	}

	workers := partition.Workers(len(rows), o.workers)

	start := time.Now()
	m, err := build(ctx, rows, dim, fn, workers, o)
	o.collector.RecordCompute(len(rows), workers, time.Since(start), err)
	o.logger.LogCompute(ctx, len(rows), dim, workers, err)

	return m, err
}

// ComputeSubset builds the pairwise distance matrix over the rows whose
// indices are set in selection. The k×k result is ordered by ascending
// original index; the second return value maps result rows back to
// dataset indices.
func ComputeSubset(ctx context.Context, rows [][]float32, selection *roaring.Bitmap, optFns ...Option) (*Matrix, []uint32, error) {
	if selection == nil || selection.IsEmpty() {
		return nil, nil, ErrEmptySelection
	}

	indices := selection.ToArray()
	if max := indices[len(indices)-1]; int(max) >= len(rows) {
		return nil, nil, &ErrSelectionOutOfRange{Index: int(max), Rows: len(rows)}
	}

	subset := make([][]float32, len(indices))
	for i, idx := range indices {
		subset[i] = rows[idx]
	}

	m, err := Compute(ctx, subset, optFns...)
	if err != nil {
		return nil, nil, err
	}

	return m, indices, nil
}

// validate checks the dataset shape and returns the common row length.
func validate(rows [][]float32) (int, error) {
	if len(rows) == 0 {
		return 0, ErrEmptyDataset
	}

	dim := len(rows[0])
	for i, row := range rows {
		if len(row) != dim {
			return 0, &ErrDimensionMismatch{Row: i, Expected: dim, Actual: len(row)}
		}
	}

	return dim, nil
}

func build(ctx context.Context, rows [][]float32, dim int, fn distance.Func, workers int, o options) (*Matrix, error) {
	if o.controller != nil {
		if err := o.controller.AcquireJob(ctx); err != nil {
			return nil, err
		}
		defer o.controller.ReleaseJob()
	}

	m := NewMatrix(len(rows), dim, o.metric)

	if workers == 1 {
		if err := fillRange(ctx, m, rows, fn, partition.Range{Low: 0, High: len(rows)}); err != nil {
			return nil, err
		}
		return m, nil
	}

	// Fork-join over contiguous row partitions. Worker p owns all cells
	// (i, j) and their mirrors (j, i) with i in its partition and j > i,
	// so no two workers ever write the same cell and no locking is
	// needed; g.Wait is the only synchronization point.
	g, gctx := errgroup.WithContext(ctx)
	for _, r := range partition.Split(len(rows), workers) {
		g.Go(func() error {
			return fillRange(gctx, m, rows, fn, r)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return m, nil
}

// fillRange computes all pairs (i, j) with i in [r.Low, r.High) and
// j > i, mirroring each value into both cells.
func fillRange(ctx context.Context, m *Matrix, rows [][]float32, fn distance.Func, r partition.Range) error {
	n := len(rows)
	for i := r.Low; i < r.High; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		for j := i + 1; j < n; j++ {
			m.set(i, j, fn(rows[i], rows[j]))
		}
	}
	return nil
}
