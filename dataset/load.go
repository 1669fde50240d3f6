package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/schtree/blobstore"
)

// Load opens name in store and decodes it according to its extension.
// dims is forwarded to ReadCSV and must match the record dimension for fvecs
// when non-zero.
func Load(ctx context.Context, store blobstore.BlobStore, name string, dims int) (*Dataset, error) {
	format, comp, err := Detect(name)
	if err != nil {
		return nil, err
	}

	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("dataset: open %s: %w", name, err)
	}
	defer b.Close()

	data, err := blobstore.ReadAll(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("dataset: read %s: %w", name, err)
	}

	ds, err := Decode(bytes.NewReader(data), format, comp, dims)
	if err != nil {
		return nil, fmt.Errorf("dataset: decode %s: %w", name, err)
	}
	return ds, nil
}

// Decode reads a dataset of the given format from r.
func Decode(r io.Reader, format Format, comp Compression, dims int) (*Dataset, error) {
	rc, err := Decompress(r, comp)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	switch format {
	case FormatCSV:
		return ReadCSV(rc, dims)
	case FormatFvecs:
		ds, err := ReadFvecs(rc)
		if err != nil {
			return nil, err
		}
		if dims != 0 && ds.Dim != dims {
			return nil, malformed("dimension %d, want %d", ds.Dim, dims)
		}
		return ds, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

// Encode writes ds to w in the given format and compression.
func Encode(w io.Writer, ds *Dataset, format Format, comp Compression) error {
	wc, err := Compress(w, comp)
	if err != nil {
		return err
	}

	switch format {
	case FormatCSV:
		err = WriteCSV(wc, ds)
	case FormatFvecs:
		err = WriteFvecs(wc, ds.Points)
	default:
		err = fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	if cerr := wc.Close(); err == nil {
		err = cerr
	}
	return err
}
