package blobstore

import (
	"context"
	"fmt"
	"io"
	"os"
)

// ErrNotFound is returned by Open when the named blob does not exist.
var ErrNotFound = os.ErrNotExist

// BlobStore opens named blobs for reading. Implementations are safe for concurrent use.
type BlobStore interface {
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is an open, immutable blob.
type Blob interface {
	io.Closer

	// ReadAt reads len(p) bytes starting at off. It follows io.ReaderAt
	// semantics: a short read returns io.EOF.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// Size returns the blob length in bytes.
	Size() int64
}

// Mappable is implemented by blobs whose contents are already addressable in
// memory. The returned slice must not be modified and is only valid until Close.
type Mappable interface {
	Bytes() ([]byte, error)
}

// Downloader is implemented by blobs that can fetch their full contents
// more efficiently than a single ReadAt, e.g. with parallel ranged requests.
type Downloader interface {
	Download(ctx context.Context) ([]byte, error)
}

// ReadAll returns the full contents of b.
func ReadAll(ctx context.Context, b Blob) ([]byte, error) {
	if m, ok := b.(Mappable); ok {
		return m.Bytes()
	}
	if d, ok := b.(Downloader); ok {
		return d.Download(ctx)
	}

	size := b.Size()
	if size == 0 {
		return []byte{}, nil
	}

	buf := make([]byte, size)
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && (err != io.EOF || int64(n) != size) {
		return nil, fmt.Errorf("blobstore: read %d of %d bytes: %w", n, size, err)
	}
	return buf, nil
}

// NewReader returns a sequential reader over b. Every Read is served by a
// positional read bound to ctx.
func NewReader(ctx context.Context, b Blob) io.Reader {
	return io.NewSectionReader(ctxReaderAt{ctx: ctx, b: b}, 0, b.Size())
}

type ctxReaderAt struct {
	ctx context.Context
	b   Blob
}

func (r ctxReaderAt) ReadAt(p []byte, off int64) (int, error) {
	return r.b.ReadAt(r.ctx, p, off)
}

// readAtBytes implements ReadAt for blobs held as a byte slice.
func readAtBytes(ctx context.Context, data []byte, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("blobstore: negative offset %d", off)
	}
	if off >= int64(len(data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}
