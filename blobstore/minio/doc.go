// Package minio provides a blobstore.BlobStore backed by the MinIO client.
//
// It works with MinIO and other S3-compatible servers such as Ceph or Garage
// and does not pull in the AWS SDK.
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	store := minioblob.NewStore(client, "datasets", "bench/")
//	ds, err := dataset.Load(ctx, store, "points.csv.gz", 0)
package minio
