// Package s3 provides an S3-backed blob store for matrix snapshots.
//
// Reads use ranged GETs so partial loads never fetch the whole object;
// writes stream through a multipart upload. CommitStore adds a
// versioned CURRENT pointer in DynamoDB so concurrent writers can
// publish snapshots without clobbering each other.
package s3
