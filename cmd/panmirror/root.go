package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror"
	"github.com/aretw0/panmirror/internal/cli"
	"github.com/aretw0/panmirror/internal/config"
	"github.com/aretw0/panmirror/internal/logging"
)

// app carries what every command needs once flags are parsed.
type app struct {
	cfgFile string
	noCache bool

	cfg    *config.Config
	logger *slog.Logger
	stdin  *os.File
	stderr io.Writer
}

// stack wires a converter from the loaded configuration.
func (a *app) stack(cmd *cobra.Command, metrics bool) (*cli.Stack, error) {
	return cli.NewStack(cmd.Context(), a.cfg, a.logger, cli.StackOptions{
		Metrics: metrics,
		NoCache: a.noCache,
	})
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	a := &app{stdin: os.Stdin, stderr: os.Stderr}

	rootCmd := &cobra.Command{
		Use:   "panmirror",
		Short: "panmirror converts pandoc documents into schema-checked editor trees",
		Long: `panmirror reads a pandoc JSON AST (or markdown, through pandoc) and builds a
document tree that satisfies a ProseMirror-style schema.`,
		Version:       panmirror.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			cfg, err := config.Load(a.cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.ForCLI(cfg.Debug)
			a.stderr = cmd.ErrOrStderr()
			if cfg.File != "" {
				a.logger.Debug("Using config file", "path", cfg.File)
			}
			return nil
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default: ./panmirror.yaml)")
	pf.Bool("debug", false, "Log debug output to stderr")
	pf.StringP("format", "f", "commonmark", "Pandoc reader for markdown input")
	pf.String("mismatch-policy", "fail", "What to do with nodes the schema rejects: fail or drop")
	pf.String("schema", "", "YAML schema definition (default: built-in basic schema)")
	pf.String("pandoc", "pandoc", "Pandoc executable")
	pf.String("pandoc-url", "", "Remote panmirror server providing /pandoc/ast")
	pf.Duration("pandoc-timeout", 0, "Timeout for one pandoc invocation")
	pf.String("redis-addr", "", "Cache converted documents in Redis")
	pf.String("cache-dir", "", "Cache converted documents in a directory")
	pf.BoolVar(&a.noCache, "no-cache", false, "Ignore configured caches")

	rootCmd.AddCommand(
		newConvertCmd(a),
		newASTCmd(a),
		newInspectCmd(a),
		newValidateCmd(a),
		newSchemaCmd(a),
		newFormatsCmd(a),
		newServeCmd(a),
		newMCPCmd(a),
		newBatchCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}
