package dataset

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hupe1980/schtree/blobstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const wine = `alcohol,malic_acid,class,name
14.23,1.71,1,first
13.2,1.78,1,second
12.37,0.94,2,third
`

func sample() *Dataset {
	return &Dataset{
		Points: [][]float32{{1, 2, 3}, {-4.5, 0, 1e-3}, {7, 8, 9}},
		Labels: []string{"a", "b,c", ""},
		Dim:    3,
	}
}

func TestReadCSV(t *testing.T) {
	t.Run("InferDim", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader(wine), 0)
		require.NoError(t, err)
		assert.Equal(t, 3, ds.Dim)
		assert.Equal(t, 3, ds.Len())
		assert.Equal(t, []float32{14.23, 1.71, 1}, ds.Points[0])
		assert.Equal(t, []string{"first", "second", "third"}, ds.Labels)
	})

	t.Run("ExplicitDim", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader(wine), 2)
		require.NoError(t, err)
		assert.Equal(t, 2, ds.Dim)
		assert.Equal(t, []float32{12.37, 0.94}, ds.Points[2])
		assert.Equal(t, "2,third", ds.Label(2))
	})

	t.Run("NoHeader", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("1, 2\n3, 4\n"), 0)
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 2}, {3, 4}}, ds.Points)
		assert.Equal(t, []string{"", ""}, ds.Labels)
	})

	t.Run("ShortRow", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("1,2,3\n4,5\n"), 0)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("BadNumber", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("1,2\n3,x\n"), 2)
		assert.ErrorIs(t, err, ErrMalformed)
		assert.Contains(t, err.Error(), "line 2")
	})

	t.Run("HeaderOnly", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("x,y\n"), 0)
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("InferDimAfterHeader", func(t *testing.T) {
		ds, err := ReadCSV(strings.NewReader("x0,x1,label\n0,1,\n2,3,b\n"), 0)
		require.NoError(t, err)
		assert.Equal(t, 2, ds.Dim)
		assert.Equal(t, [][]float32{{0, 1}, {2, 3}}, ds.Points)
		assert.Equal(t, []string{"", "b"}, ds.Labels)
	})

	t.Run("NoNumericColumnsAfterHeader", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("x,y\na,b\n"), 0)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("NonNumericRow", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader("1,2\na,b\n"), 0)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("NegativeDim", func(t *testing.T) {
		_, err := ReadCSV(strings.NewReader(wine), -1)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestWriteCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()))
	assert.True(t, strings.HasPrefix(buf.String(), "x0,x1,x2,label\n"))

	ds, err := ReadCSV(&buf, 3)
	require.NoError(t, err)
	assert.Equal(t, sample(), ds)
}

func TestFvecs(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteFvecs(&buf, sample().Points))
	assert.Equal(t, 3*(4+3*4), buf.Len())

	ds, err := ReadFvecs(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 3, ds.Dim)
	assert.Equal(t, sample().Points, ds.Points)
	assert.Nil(t, ds.Labels)

	t.Run("Truncated", func(t *testing.T) {
		_, err := ReadFvecs(bytes.NewReader(buf.Bytes()[:buf.Len()-2]))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("MixedDims", func(t *testing.T) {
		var mixed bytes.Buffer
		require.NoError(t, WriteFvecs(&mixed, [][]float32{{1, 2}, {1, 2, 3}}))
		_, err := ReadFvecs(&mixed)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("BadDim", func(t *testing.T) {
		_, err := ReadFvecs(bytes.NewReader([]byte{0, 0, 0, 0}))
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("Empty", func(t *testing.T) {
		_, err := ReadFvecs(bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrEmpty)
	})
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		comp   Compression
	}{
		{"points.csv", FormatCSV, CompressionNone},
		{"dir/POINTS.CSV", FormatCSV, CompressionNone},
		{"points.csv.gz", FormatCSV, CompressionGzip},
		{"sift.fvecs", FormatFvecs, CompressionNone},
		{"sift.fvecs.zst", FormatFvecs, CompressionZstd},
		{"sift.fvecs.lz4", FormatFvecs, CompressionLZ4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, c, err := Detect(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.format, f)
			assert.Equal(t, tt.comp, c)
		})
	}

	for _, name := range []string{"points.txt", "points.gz", "points"} {
		_, _, err := Detect(name)
		assert.ErrorIs(t, err, ErrUnknownFormat, name)
	}
}

func TestLoad(t *testing.T) {
	ctx := context.Background()
	store := blobstore.NewMemoryStore()

	for _, comp := range []Compression{CompressionNone, CompressionGzip, CompressionZstd, CompressionLZ4} {
		for _, format := range []Format{FormatCSV, FormatFvecs} {
			name := "points." + format.String()
			if ext := map[Compression]string{CompressionGzip: ".gz", CompressionZstd: ".zst", CompressionLZ4: ".lz4"}[comp]; ext != "" {
				name += ext
			}

			t.Run(name, func(t *testing.T) {
				var buf bytes.Buffer
				require.NoError(t, Encode(&buf, sample(), format, comp))
				store.Put(name, buf.Bytes())

				ds, err := Load(ctx, store, name, 0)
				require.NoError(t, err)
				assert.Equal(t, sample().Points, ds.Points)
				if format == FormatCSV {
					assert.Equal(t, sample().Labels, ds.Labels)
				}
			})
		}
	}

	t.Run("DimMismatch", func(t *testing.T) {
		_, err := Load(ctx, store, "points.fvecs", 4)
		assert.ErrorIs(t, err, ErrMalformed)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := Load(ctx, store, "missing.csv", 0)
		assert.ErrorIs(t, err, blobstore.ErrNotFound)
	})

	t.Run("UnknownFormat", func(t *testing.T) {
		_, err := Load(ctx, store, "points.bin", 0)
		assert.ErrorIs(t, err, ErrUnknownFormat)
	})

	t.Run("CorruptGzip", func(t *testing.T) {
		store.Put("bad.csv.gz", []byte("not gzip"))
		_, err := Load(ctx, store, "bad.csv.gz", 0)
		assert.ErrorIs(t, err, ErrMalformed)
	})
}

func TestLoad_LocalStore(t *testing.T) {
	dir := t.TempDir()
	store := blobstore.NewLocalStore(dir)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sample(), FormatFvecs, CompressionZstd))
	require.NoError(t, writeFile(filepath.Join(dir, "s.fvecs.zst"), buf.Bytes()))

	ds, err := Load(context.Background(), store, "s.fvecs.zst", 3)
	require.NoError(t, err)
	assert.Equal(t, sample().Points, ds.Points)
}

func TestSQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "points.db")

	require.NoError(t, SaveSQLite(ctx, path, "points", "embedding", sample()))

	ds, err := LoadSQLite(ctx, path, "points", "embedding")
	require.NoError(t, err)
	assert.Equal(t, sample(), ds)

	t.Run("InvalidIdent", func(t *testing.T) {
		_, err := LoadSQLite(ctx, path, "points; DROP TABLE points", "embedding")
		assert.Error(t, err)
		assert.Error(t, SaveSQLite(ctx, path, "points", "bad column", sample()))
	})

	t.Run("MissingTable", func(t *testing.T) {
		_, err := LoadSQLite(ctx, path, "nope", "embedding")
		assert.Error(t, err)
	})

	t.Run("NoLabels", func(t *testing.T) {
		unlabeled := &Dataset{Points: sample().Points, Dim: 3}
		require.NoError(t, SaveSQLite(ctx, path, "plain", "v", unlabeled))

		ds, err := LoadSQLite(ctx, path, "plain", "v")
		require.NoError(t, err)
		assert.Equal(t, sample().Points, ds.Points)
		// The table has a label column holding NULLs.
		assert.Equal(t, []string{"", "", ""}, ds.Labels)
	})
}

func TestBounds(t *testing.T) {
	lo, hi := sample().Bounds()
	assert.Equal(t, []float32{-4.5, 0, 1e-3}, lo)
	assert.Equal(t, []float32{7, 8, 9}, hi)

	lo, hi = (&Dataset{}).Bounds()
	assert.Nil(t, lo)
	assert.Nil(t, hi)
}
