package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/hupe1980/schtree"
	"github.com/hupe1980/schtree/dataset"
	"github.com/hupe1980/schtree/knn"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	keyStyle    = lipgloss.NewStyle().Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
)

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func printNeighbors(w io.Writer, ds *dataset.Dataset, res *knn.Result[float32]) {
	t := newTable("RANK", "INDEX", "DISTANCE", "LABEL")
	for rank, n := range res.Sort() {
		t.Row(
			strconv.Itoa(rank+1),
			strconv.Itoa(n.Index),
			strconv.FormatFloat(float64(n.Distance), 'f', 4, 32),
			ds.Label(n.Index),
		)
	}
	fmt.Fprintln(w, t)
}

func printField(w io.Writer, key string, value any) {
	fmt.Fprintf(w, "%s %v\n", keyStyle.Render(key+":"), value)
}

func printTreeStats(w io.Writer, s schtree.Stats, memory int64) {
	printField(w, "points", s.Points)
	printField(w, "dimension", s.Dimension)
	printField(w, "leaf size", s.LeafSize)
	printField(w, "leaves", fmt.Sprintf("%d (%d forced)", s.Leaves, s.ForcedLeaves))
	printField(w, "depth", s.Depth)
	printField(w, "leaf points", fmt.Sprintf("min %d, max %d, mean %.1f", s.MinLeafPoints, s.MaxLeafPoints, s.MeanLeafPoints))
	printField(w, "kernel", s.Kernel)
	printField(w, "cpu", s.CPU)
	if memory > 0 {
		printField(w, "copied points", humanize.IBytes(uint64(memory)))
	}
}

func verdict(ok bool) string {
	if ok {
		return okStyle.Render("OK")
	}
	return failStyle.Render("FAIL")
}
