// Package blobstore provides read-only access to the files datasets are
// loaded from.
//
// A BlobStore resolves a name to a Blob. Blobs support positional reads, so
// remote backends only transfer the ranges a caller asks for.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem, memory-mapped
//   - MemoryStore: in-process map, for tests
//   - s3.Store: Amazon S3 with range reads and parallel whole-object downloads
//   - minio.Store: any S3-compatible server through the MinIO client
//
// # Reading a whole blob
//
// Decoders usually want every byte. ReadAll picks the cheapest path a blob
// offers: mapped bytes, a backend download, or a single positional read.
//
//	blob, err := store.Open(ctx, "points.fvecs")
//	if err != nil { ... }
//	defer blob.Close()
//	data, err := blobstore.ReadAll(ctx, blob)
package blobstore
