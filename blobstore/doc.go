// Package blobstore abstracts storage of sky-map datasets and run artifacts.
//
// Store is the interface for reading and writing named blobs (map files,
// reports). Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem with mmap reads and atomic writes
//   - MemoryStore: in-memory store for tests
//   - s3.Store: Amazon S3 with range reads and streaming uploads
//   - minio.Store: MinIO and other S3-compatible endpoints
//
// Fetch copies a remote dataset to local disk so the reader can mmap it.
package blobstore
