package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hupe1980/schtree"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		data  string
		k     int
		index int
		point string
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print the k nearest neighbors of a dataset point or an explicit point",
		Example: `  schtree query --data wine.csv -k 5 --index 12
  schtree query --data wine.csv -k 5 --point "13.2,1.78,2.14"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			hasIndex := cmd.Flags().Changed("index")
			if hasIndex == (point != "") {
				return fmt.Errorf("exactly one of --index or --point is required")
			}

			ds, err := a.load(ctx, data)
			if err != nil {
				return err
			}

			tree, err := a.build(ds)
			if err != nil {
				return err
			}
			defer tree.Close()

			var q []float32
			if hasIndex {
				if index < 0 || index >= ds.Len() {
					return fmt.Errorf("--index %d out of range [0, %d)", index, ds.Len())
				}
				q = ds.Points[index]
			} else {
				q, err = parsePoint(point)
				if err != nil {
					return err
				}
			}

			var stats schtree.SearchStats
			res, err := tree.Search(ctx, q, k, schtree.WithSorted(), schtree.WithSearchStats(&stats))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printNeighbors(out, ds, res)
			printField(out, "leaves visited", fmt.Sprintf("%d of %d", stats.LeavesVisited, tree.Stats().Leaves))
			printField(out, "points scanned", stats.PointsScanned)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&data, "data", "", "dataset name (file, object key or SQLite path)")
	f.IntVarP(&k, "k", "k", 10, "number of neighbors")
	f.IntVar(&index, "index", 0, "use the dataset point at this index as query")
	f.StringVar(&point, "point", "", "comma-separated query coordinates")

	return cmd
}

func parsePoint(s string) ([]float32, error) {
	fields := strings.Split(s, ",")
	p := make([]float32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return nil, fmt.Errorf("--point coordinate %d: %w", i+1, err)
		}
		p[i] = float32(v)
	}
	return p, nil
}
