// Package distmat computes pairwise distance matrices over datasets of
// equal-length float32 vectors.
//
// The all-pairs computation is embarrassingly parallel: every cell of the
// result depends only on two input rows. Compute exploits this by
// splitting the row range into contiguous partitions, computing each
// partition in its own goroutine, and joining before returning. The
// parallel result is identical to the sequential one for any worker
// count.
//
// # Quick start
//
//	rows := [][]float32{{0, 0}, {3, 4}, {6, 8}}
//
//	m, err := distmat.Compute(context.Background(), rows)
//	if err != nil {
//	    panic(err)
//	}
//	fmt.Println(m.At(0, 1)) // 5
//
// Worker count, metric, logging, metrics collection, and resource limits
// are configured with functional options:
//
//	m, err := distmat.Compute(ctx, rows,
//	    distmat.WithWorkers(8),
//	    distmat.WithMetric(distance.MetricManhattan),
//	    distmat.WithLogger(distmat.NewTextLogger(slog.LevelDebug)),
//	)
//
// # Persistence
//
// The persistence package serializes matrices to a self-describing
// binary snapshot format (optionally lz4- or zstd-compressed) and the
// blobstore package provides local, in-memory, S3, and MinIO backends
// for storing snapshots.
package distmat
