package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror/internal/cli"
)

func newASTCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ast [file|-]",
		Short: "Print the pandoc JSON AST for markdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := cli.ReadInput(firstArg(args), a.stdin)
			if err != nil {
				return err
			}
			st, err := a.stack(cmd, false)
			if err != nil {
				return err
			}
			defer st.Close()

			ast, err := st.Converter.FetchAST(cmd.Context(), a.cfg.Format, string(data))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\n", ast)
			return err
		},
	}
}
