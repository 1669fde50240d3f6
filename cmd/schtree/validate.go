package main

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hupe1980/schtree"
	"github.com/hupe1980/schtree/dataset"
	"github.com/hupe1980/schtree/flat"
)

// errMismatch makes the command exit non-zero after the report is printed.
var errMismatch = errors.New("tree results differ from exhaustive search")

type validateReport struct {
	RunID      string
	DataChecks int
	RandChecks int
	Mismatches int
	First      string
}

func newValidateCmd(a *app) *cobra.Command {
	var (
		data   string
		k      int
		random int
		seed   uint64
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check tree invariants and compare every answer with exhaustive search",
		Long: `validate builds a tree, verifies its structural invariants and then
compares tree and exhaustive k-nearest-neighbor results for every dataset
point and for --random points drawn uniformly from the dataset's bounding box.
It exits non-zero on the first class of mismatch found.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			runID := uuid.NewString()
			logger := a.logger.With(slog.String("run_id", runID))

			ds, err := a.load(ctx, data)
			if err != nil {
				return err
			}

			tree, err := a.build(ds)
			if err != nil {
				return err
			}
			defer tree.Close()

			if err := tree.Verify(); err != nil {
				return err
			}

			report := validateReport{RunID: runID}
			start := time.Now()

			if err := compare(cmd, a, tree, ds.Points, ds.Points, k, "point", &report); err != nil {
				return err
			}
			report.DataChecks = ds.Len()

			queries := randomInBounds(ds, random, seed)
			if err := compare(cmd, a, tree, ds.Points, queries, k, "random", &report); err != nil {
				return err
			}
			report.RandChecks = len(queries)

			logger.InfoContext(ctx, "validation finished",
				slog.Int("mismatches", report.Mismatches),
				slog.Duration("duration", time.Since(start)),
			)

			out := cmd.OutOrStdout()
			printField(out, "run", report.RunID)
			printTreeStats(out, tree.Stats(), tree.MemoryUsage())
			printField(out, "k", k)
			printField(out, "dataset queries", report.DataChecks)
			printField(out, "random queries", report.RandChecks)
			printField(out, "mismatches", report.Mismatches)
			fmt.Fprintln(out, verdict(report.Mismatches == 0))

			if report.Mismatches > 0 {
				return fmt.Errorf("%w: %d mismatches, first at %s", errMismatch, report.Mismatches, report.First)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&data, "data", "", "dataset name (file, object key or SQLite path)")
	f.IntVarP(&k, "k", "k", 100, "number of neighbors")
	f.IntVar(&random, "random", 1000, "number of random queries")
	f.Uint64Var(&seed, "seed", 1, "seed for random queries")

	return cmd
}

func compare(cmd *cobra.Command, a *app, tree *schtree.Tree[float32], points, queries [][]float32, k int, kind string, report *validateReport) error {
	if len(queries) == 0 {
		return nil
	}
	ctx := cmd.Context()
	workers := a.cfg.Search.Workers

	got, err := tree.BulkSearch(ctx, queries, k, schtree.WithSorted())
	if err != nil {
		return err
	}
	want, err := flat.BulkSearch(ctx, points, queries, k, workers)
	if err != nil {
		return err
	}

	for i := range queries {
		// Both sides evaluate the same distance kernel, so distances agree bit for bit.
		if !want[i].Equal(got[i]) {
			if report.Mismatches == 0 {
				report.First = fmt.Sprintf("%s %d", kind, i)
			}
			report.Mismatches++
			a.logger.WarnContext(ctx, "result mismatch",
				slog.String("kind", kind),
				slog.Int("query", i),
				slog.Any("want", want[i].Indices()),
				slog.Any("got", got[i].Indices()),
			)
		}
	}
	return nil
}

// randomInBounds draws n points uniformly from the axis-aligned bounding box of ds.
func randomInBounds(ds *dataset.Dataset, n int, seed uint64) [][]float32 {
	if n <= 0 {
		return nil
	}
	lo, hi := ds.Bounds()
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

	out := make([][]float32, n)
	for i := range out {
		p := make([]float32, ds.Dim)
		for j := range p {
			p[j] = lo[j] + rng.Float32()*(hi[j]-lo[j])
		}
		out[i] = p
	}
	return out
}
