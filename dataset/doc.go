// Package dataset loads point sets for building and validating trees.
//
// Supported inputs:
//
//   - CSV: an optional header row, D numeric coordinate columns, and any
//     remaining columns joined into the point's label.
//   - fvecs: repeated records of a little-endian int32 dimension followed by
//     that many little-endian float32 values.
//   - SQLite: one float32 little-endian BLOB per row, with an optional
//     label column.
//
// CSV and fvecs files may be compressed; Load recognizes the .gz, .zst and
// .lz4 suffixes.
//
//	store := blobstore.NewLocalStore("testdata")
//	ds, err := dataset.Load(ctx, store, "wine.csv.gz", 0)
//	if err != nil { ... }
//	tree, err := schtree.Build(ds.Points)
package dataset
