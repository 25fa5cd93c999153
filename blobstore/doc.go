// Package blobstore mirrors checkpoints to object storage.
//
// A BlobStore holds named, immutable blobs. Checkpoints are small and are
// always replaced as a whole, so the interface is Put/Open rather than a
// streaming writer. Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: a directory on the local file system
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 (multipart uploads through the SDK upload manager)
//   - minio.Store: MinIO and other S3-compatible services
package blobstore
