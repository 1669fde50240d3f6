package main

import (
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/hupe1980/schtree"
	"github.com/hupe1980/schtree/flat"
)

type benchResult struct {
	Queries    int
	Throughput float64 // queries per second
	Mean       time.Duration
	P50        time.Duration
	P95        time.Duration
	P99        time.Duration
	Max        time.Duration
}

func newBenchCmd(a *app) *cobra.Command {
	var (
		data     string
		k        int
		queries  int
		seed     uint64
		baseline bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure query throughput and latency",
		Long: `bench samples --queries dataset points as queries, runs them once through
BulkSearch to measure throughput and once as individual searches to collect
the latency distribution. With --baseline the exhaustive scan is timed too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			ds, err := a.load(ctx, data)
			if err != nil {
				return err
			}

			buildStart := time.Now()
			tree, err := a.build(ds)
			if err != nil {
				return err
			}
			defer tree.Close()
			buildTime := time.Since(buildStart)

			rng := rand.New(rand.NewPCG(seed, seed+1))
			qs := make([][]float32, queries)
			for i := range qs {
				qs[i] = ds.Points[rng.IntN(ds.Len())]
			}

			var stats schtree.SearchStats
			start := time.Now()
			if _, err := tree.BulkSearch(ctx, qs, k, schtree.WithSearchStats(&stats)); err != nil {
				return err
			}
			bulk := time.Since(start)

			latencies := make([]time.Duration, len(qs))
			g, gctx := errgroup.WithContext(ctx)
			workers := a.cfg.Search.Workers
			if workers <= 0 {
				workers = runtime.GOMAXPROCS(0)
			}
			g.SetLimit(workers)
			for i, q := range qs {
				g.Go(func() error {
					t0 := time.Now()
					_, err := tree.Search(gctx, q, k)
					latencies[i] = time.Since(t0)
					return err
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			res := summarize(latencies, bulk)

			out := cmd.OutOrStdout()
			printTreeStats(out, tree.Stats(), tree.MemoryUsage())
			printField(out, "build", buildTime.Round(time.Microsecond))
			printField(out, "k", k)

			t := newTable("MODE", "QUERIES", "QPS", "MEAN", "P50", "P95", "P99", "MAX")
			t.Row(benchRow("tree", res)...)

			if baseline {
				start := time.Now()
				if _, err := flat.BulkSearch(ctx, ds.Points, qs, k, a.cfg.Search.Workers); err != nil {
					return err
				}
				fb := time.Since(start)
				t.Row("flat", fmt.Sprint(len(qs)), fmt.Sprintf("%.0f", float64(len(qs))/fb.Seconds()), "-", "-", "-", "-", "-")
			}
			fmt.Fprintln(out, t)

			if stats.Queries > 0 {
				printField(out, "avg leaves visited", fmt.Sprintf("%.1f", float64(stats.LeavesVisited)/float64(stats.Queries)))
				printField(out, "avg points scanned", fmt.Sprintf("%.1f of %d", float64(stats.PointsScanned)/float64(stats.Queries), ds.Len()))
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&data, "data", "", "dataset name (file, object key or SQLite path)")
	f.IntVarP(&k, "k", "k", 10, "number of neighbors")
	f.IntVar(&queries, "queries", 1000, "number of sampled queries")
	f.Uint64Var(&seed, "seed", 1, "seed for query sampling")
	f.BoolVar(&baseline, "baseline", false, "also time exhaustive search")

	return cmd
}

// summarize computes throughput from the bulk run and quantiles from the
// individual latencies.
func summarize(latencies []time.Duration, bulk time.Duration) benchResult {
	res := benchResult{Queries: len(latencies)}
	if len(latencies) == 0 {
		return res
	}
	if bulk > 0 {
		res.Throughput = float64(len(latencies)) / bulk.Seconds()
	}

	xs := make([]float64, len(latencies))
	for i, d := range latencies {
		xs[i] = float64(d)
	}
	slices.Sort(xs)

	q := func(p float64) time.Duration {
		return time.Duration(stat.Quantile(p, stat.Empirical, xs, nil))
	}
	res.Mean = time.Duration(stat.Mean(xs, nil))
	res.P50 = q(0.50)
	res.P95 = q(0.95)
	res.P99 = q(0.99)
	res.Max = time.Duration(xs[len(xs)-1])
	return res
}

func benchRow(mode string, r benchResult) []string {
	d := func(v time.Duration) string { return v.Round(time.Microsecond).String() }
	return []string{
		mode,
		fmt.Sprint(r.Queries),
		fmt.Sprintf("%.0f", r.Throughput),
		d(r.Mean), d(r.P50), d(r.P95), d(r.P99), d(r.Max),
	}
}
