package main

import (
	"github.com/spf13/cobra"

	"github.com/hupe1980/schtree/internal/config"
	"github.com/hupe1980/schtree/internal/version"
)

type globalFlags struct {
	configFile string
	logLevel   string
	jsonLogs   bool
	workers    int
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "schtree",
		Short: "Exact k-nearest-neighbor search over semi-convex-hull trees",
		Long: `schtree partitions a point set into a tree of convex cells and answers
exact k-nearest-neighbor queries with best-first leaf ranking.

Datasets are CSV or fvecs files (optionally .gz, .zst or .lz4 compressed)
read from the local filesystem, S3 or MinIO, or float32 BLOBs in SQLite.`,
		Version:       version.Full(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(flags.configFile)
			if err != nil {
				return err
			}

			pf := cmd.Flags()
			if pf.Changed("log-level") {
				cfg.Log.Level = flags.logLevel
			}
			if pf.Changed("json-logs") {
				cfg.Log.JSON = flags.jsonLogs
			}
			if pf.Changed("workers") {
				cfg.Search.Workers = flags.workers
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return a.init(cfg, cmd.ErrOrStderr())
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "YAML config file")
	pf.StringVar(&flags.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	pf.BoolVar(&flags.jsonLogs, "json-logs", false, "emit logs as JSON")
	pf.IntVar(&flags.workers, "workers", 0, "parallel queries (0 = GOMAXPROCS)")

	rootCmd.AddCommand(
		newQueryCmd(a),
		newValidateCmd(a),
		newBenchCmd(a),
		newVersionCmd(),
	)

	return rootCmd
}
