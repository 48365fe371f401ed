// Package persistence serializes distance matrices to a compact,
// self-describing binary format with optional lz4 or zstd compression
// and CRC32 integrity verification.
//
// Snapshots can be written to plain files (atomically, via temp file
// and rename) or to any blobstore.BlobStore implementation.
package persistence
