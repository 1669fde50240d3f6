package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/schtree/distance"
	"github.com/hupe1980/schtree/internal/version"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "schtree %s\n", version.Full())
			if version.BuildDate != "unknown" {
				fmt.Fprintf(out, "Build date: %s\n", version.BuildDate)
			}
			fmt.Fprintf(out, "Go version: %s\n", version.GoVersion())
			fmt.Fprintf(out, "Distance kernel: %s (cpu: %s)\n", distance.Kernel(), distance.CPU())
			return nil
		},
	}
}
