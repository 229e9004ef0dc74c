package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror/internal/cli"
	"github.com/aretw0/panmirror/pkg/adapters/loam"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		opts  cli.BatchOptions
		watch bool
	)

	cmd := &cobra.Command{
		Use:   "batch <dir>",
		Short: "Convert every markdown note of a directory",
		Long: `Converts every .md file below <dir>. Front matter may set "format" per note
and "skip: true" to leave a note out. Results are printed as NDJSON unless
--out is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nb, err := loam.Open(args[0])
			if err != nil {
				return err
			}
			st, err := a.stack(cmd, false)
			if err != nil {
				return err
			}
			defer st.Close()

			if opts.Concurrency == 0 {
				opts.Concurrency = a.cfg.Concurrency
			}
			if watch {
				return cli.WatchBatch(cmd.Context(), st.Converter, nb, opts, cmd.OutOrStdout(), a.logger)
			}
			return cli.RunBatch(cmd.Context(), st.Converter, nb, opts, cmd.OutOrStdout(), a.logger)
		},
	}

	cmd.Flags().StringVarP(&opts.OutDir, "out", "o", "", "Write <name>.json files to this directory")
	cmd.Flags().IntVarP(&opts.Concurrency, "jobs", "j", 0, "Simultaneous conversions (default: config concurrency or GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "Stop at the first failed document")
	cmd.Flags().BoolVar(&opts.Pretty, "pretty", false, "Indent files written with --out")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Convert again whenever a note changes")
	return cmd
}
