package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/schtree"
	"github.com/hupe1980/schtree/dataset"
	"github.com/hupe1980/schtree/testutil"
)

func writeDataset(t *testing.T, n, dim int) (string, *dataset.Dataset) {
	t.Helper()

	rng := testutil.NewRNG(7)
	ds := &dataset.Dataset{Points: rng.UniformRangeVectors(n, dim, 0, 100), Dim: dim}
	ds.Labels = make([]string, n)
	for i := range ds.Labels {
		ds.Labels[i] = "p" + string(rune('a'+i%26))
	}

	path := filepath.Join(t.TempDir(), "points.csv.gz")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, dataset.Encode(f, ds, dataset.FormatCSV, dataset.CompressionGzip))
	require.NoError(t, f.Close())

	return path, ds
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out, logs bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&logs)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestQuery(t *testing.T) {
	path, _ := writeDataset(t, 300, 4)

	t.Run("Index", func(t *testing.T) {
		out, err := run(t, "query", "--data", path, "-k", "5", "--index", "3")
		require.NoError(t, err)
		assert.Contains(t, out, "RANK")
		assert.Contains(t, out, "0.0000")
		assert.Contains(t, out, "points scanned")
	})

	t.Run("Point", func(t *testing.T) {
		out, err := run(t, "query", "--data", path, "-k", "3", "--point", "50, 50, 50, 50")
		require.NoError(t, err)
		rows := 0
		for _, line := range strings.Split(out, "\n") {
			if strings.HasPrefix(line, "│") {
				rows++
			}
		}
		// Header plus one row per neighbor.
		assert.Equal(t, 4, rows, out)
	})

	t.Run("NeitherOrBoth", func(t *testing.T) {
		_, err := run(t, "query", "--data", path)
		assert.Error(t, err)
		_, err = run(t, "query", "--data", path, "--index", "1", "--point", "1,2,3,4")
		assert.Error(t, err)
	})

	t.Run("IndexOutOfRange", func(t *testing.T) {
		_, err := run(t, "query", "--data", path, "--index", "300")
		assert.Error(t, err)
	})

	t.Run("WrongDimension", func(t *testing.T) {
		_, err := run(t, "query", "--data", path, "--point", "1,2")
		var dimErr *schtree.ErrDimensionMismatch
		assert.True(t, errors.As(err, &dimErr), "got %v", err)
	})

	t.Run("BadPoint", func(t *testing.T) {
		_, err := run(t, "query", "--data", path, "--point", "1,x,3,4")
		assert.Error(t, err)
	})

	t.Run("MissingData", func(t *testing.T) {
		_, err := run(t, "query", "--index", "0")
		assert.Error(t, err)
	})
}

func TestValidate(t *testing.T) {
	path, _ := writeDataset(t, 400, 3)

	out, err := run(t, "validate", "--data", path, "-k", "20", "--random", "100", "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "mismatches: 0")
	assert.Contains(t, out, "dataset queries: 400")
	assert.Contains(t, out, "random queries: 100")
	assert.Contains(t, out, "OK")
}

func TestValidate_IntegerGrid(t *testing.T) {
	ds := &dataset.Dataset{Dim: 2}
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			ds.Points = append(ds.Points, []float32{float32(x), float32(y)})
		}
	}

	path := filepath.Join(t.TempDir(), "grid.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, dataset.Encode(f, ds, dataset.FormatCSV, dataset.CompressionNone))
	require.NoError(t, f.Close())

	for _, k := range []string{"1", "2", "5"} {
		out, err := run(t, "validate", "--data", path, "-k", k, "--random", "50")
		require.NoError(t, err, "k=%s", k)
		assert.Contains(t, out, "mismatches: 0")
	}
}

func TestBench(t *testing.T) {
	path, _ := writeDataset(t, 200, 3)

	out, err := run(t, "bench", "--data", path, "-k", "5", "--queries", "25", "--baseline")
	require.NoError(t, err)
	assert.Contains(t, out, "tree")
	assert.Contains(t, out, "flat")
	assert.Contains(t, out, "avg points scanned")
}

func TestSQLiteSource(t *testing.T) {
	_, ds := writeDataset(t, 150, 2)
	dir := t.TempDir()
	db := filepath.Join(dir, "points.db")
	require.NoError(t, dataset.SaveSQLite(context.Background(), db, "vectors", "v", ds))

	cfg := filepath.Join(dir, "schtree.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("source:\n  kind: sqlite\n  table: vectors\n  column: v\nbuild:\n  leaf_size: 8\n  copy: true\n"), 0o600))

	out, err := run(t, "--config", cfg, "validate", "--data", db, "-k", "7", "--random", "20")
	require.NoError(t, err)
	assert.Contains(t, out, "leaf size: 8")
	assert.Contains(t, out, "copied points")
}

func TestConfigErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("source:\n  kind: ftp\n"), 0o600))

	_, err := run(t, "--config", bad, "version")
	assert.Error(t, err)

	_, err = run(t, "--log-level", "loud", "version")
	assert.Error(t, err)

	_, err = run(t, "--workers", "-1", "version")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "schtree ")
	assert.Contains(t, out, "Distance kernel:")
	assert.Contains(t, out, "(cpu: ")
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 1.5, -2 ,3e2")
	require.NoError(t, err)
	assert.Equal(t, []float32{1.5, -2, 300}, p)

	_, err = parsePoint("1,,2")
	assert.Error(t, err)
}

func TestRandomInBounds(t *testing.T) {
	ds := &dataset.Dataset{Points: [][]float32{{0, 10}, {5, 20}, {2, 15}}, Dim: 2}

	qs := randomInBounds(ds, 200, 42)
	require.Len(t, qs, 200)
	for _, q := range qs {
		assert.GreaterOrEqual(t, q[0], float32(0))
		assert.LessOrEqual(t, q[0], float32(5))
		assert.GreaterOrEqual(t, q[1], float32(10))
		assert.LessOrEqual(t, q[1], float32(20))
	}

	assert.Equal(t, qs, randomInBounds(ds, 200, 42))
	assert.NotEqual(t, qs, randomInBounds(ds, 200, 43))
	assert.Nil(t, randomInBounds(ds, 0, 1))
}

func TestSummarize(t *testing.T) {
	lat := make([]time.Duration, 100)
	for i := range lat {
		lat[len(lat)-1-i] = time.Duration(i+1) * time.Millisecond
	}

	r := summarize(lat, time.Second)
	assert.Equal(t, 100, r.Queries)
	assert.InDelta(t, 100, r.Throughput, 1e-9)
	assert.Equal(t, 50*time.Millisecond, r.P50)
	assert.Equal(t, 95*time.Millisecond, r.P95)
	assert.Equal(t, 99*time.Millisecond, r.P99)
	assert.Equal(t, 100*time.Millisecond, r.Max)
	assert.Equal(t, 50500*time.Microsecond, r.Mean)

	assert.Equal(t, benchResult{}, summarize(nil, 0))
}
