// Package s3 provides an Amazon S3 implementation of blobstore.Store plus a
// DynamoDB-backed ledger of completed analysis runs.
//
// Reads use ranged GetObject so a header probe does not pull the whole map.
// Writes stream through the upload manager, so large datasets upload in
// parallel parts without buffering in memory.
//
// RunLedger uses DynamoDB conditional writes to assign run numbers, so
// concurrent analyzers of the same dataset never collide.
package s3
