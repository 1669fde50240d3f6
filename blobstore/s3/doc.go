// Package s3 provides an Amazon S3 implementation of blobstore.BlobStore.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("datasets/"),
//	    s3.WithRegion("eu-central-1"),
//	)
//
//	ds, err := dataset.Load(ctx, store, "sift_base.fvecs.zst", 0)
//
// # Features
//
//   - Range reads for partial fetches
//   - Parallel multi-part downloads for whole-object reads
//   - Custom endpoints for S3-compatible services
package s3
