package dataset

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Format identifies a point encoding.
type Format int

const (
	// FormatCSV is comma-separated text.
	FormatCSV Format = iota + 1
	// FormatFvecs is the binary fvecs layout.
	FormatFvecs
)

func (f Format) String() string {
	switch f {
	case FormatCSV:
		return "csv"
	case FormatFvecs:
		return "fvecs"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Compression identifies a stream compression wrapper.
type Compression int

const (
	// CompressionNone reads the stream as-is.
	CompressionNone Compression = iota
	// CompressionGzip is gzip (.gz).
	CompressionGzip
	// CompressionZstd is Zstandard (.zst).
	CompressionZstd
	// CompressionLZ4 is the LZ4 frame format (.lz4).
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", int(c))
	}
}

var compressionSuffixes = map[string]Compression{
	".gz":  CompressionGzip,
	".zst": CompressionZstd,
	".lz4": CompressionLZ4,
}

// Detect derives format and compression from a file name such as
// "points.fvecs.zst".
func Detect(name string) (Format, Compression, error) {
	base := strings.ToLower(path.Base(name))

	comp := CompressionNone
	if c, ok := compressionSuffixes[path.Ext(base)]; ok {
		comp = c
		base = strings.TrimSuffix(base, path.Ext(base))
	}

	switch path.Ext(base) {
	case ".csv":
		return FormatCSV, comp, nil
	case ".fvecs":
		return FormatFvecs, comp, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// Decompress wraps r in a decoder for c. The caller must close the result.
func Decompress(r io.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, malformed("gzip: %v", err)
		}
		return zr, nil
	case CompressionZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, malformed("zstd: %v", err)
		}
		return zr.IOReadCloser(), nil
	case CompressionLZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnknownFormat, c)
	}
}

// Compress wraps w in an encoder for c. Closing the result flushes the
// encoder but leaves w open.
func Compress(w io.Writer, c Compression) (io.WriteCloser, error) {
	switch c {
	case CompressionNone:
		return nopWriteCloser{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, err
		}
		return zw, nil
	case CompressionLZ4:
		return lz4.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: compression %s", ErrUnknownFormat, c)
	}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
