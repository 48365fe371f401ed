// Package blobstore abstracts where matrix snapshots are stored.
//
// The BlobStore interface has four implementations:
//
//   - MemoryStore: in-memory, for tests
//   - LocalStore: local filesystem with mmap reads and atomic renames
//   - s3.Store: Amazon S3 (ranged reads, streaming multipart uploads)
//   - minio.Store: MinIO and other S3-compatible object stores
//
// The s3 package additionally provides a CommitStore that pairs S3 with
// DynamoDB conditional writes for an atomically-updated CURRENT snapshot
// pointer.
package blobstore
