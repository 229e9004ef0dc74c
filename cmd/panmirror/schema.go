package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror/internal/cli"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the active schema as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := cli.LoadSchema(a.cfg.SchemaFile)
			if err != nil {
				return err
			}
			return cli.WriteJSON(cmd.OutOrStdout(), s, true)
		},
	}
}
