package persistence

import (
	"bytes"
	"context"

	"github.com/veslink/distmat"
	"github.com/veslink/distmat/blobstore"
)

// SaveToStore writes a snapshot as a named blob. Stores with atomic
// semantics (local rename, S3 multipart completion) only publish the
// blob once the writable blob is closed successfully.
func SaveToStore(ctx context.Context, store blobstore.BlobStore, name string, m *distmat.Matrix, opts SnapshotOptions) (err error) {
	defer func() { opts.logSnapshot(ctx, name, err) }()

	w, err := store.Create(ctx, name)
	if err != nil {
		return err
	}
	if err := Save(ctx, w, m, opts); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Sync(); err != nil {
		_ = w.Close()
		return err
	}
	return w.Close()
}

// LoadFromStore reads a snapshot blob written by SaveToStore.
func LoadFromStore(ctx context.Context, store blobstore.BlobStore, name string, opts SnapshotOptions) (m *distmat.Matrix, err error) {
	defer func() { opts.logSnapshot(ctx, name, err) }()

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer blob.Close()

	data, err := blobstore.ReadAll(ctx, blob)
	if err != nil {
		return nil, err
	}
	return Load(bytes.NewReader(data))
}
