package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror/internal/cli"
	"github.com/aretw0/panmirror/internal/validator"
	"github.com/aretw0/panmirror/pkg/schema"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [doc.json|-]",
		Short: "Check a document JSON against the schema",
		Long:  `Reports every node of a document JSON that the schema rejects, with its path.`,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := cli.ReadInput(firstArg(args), a.stdin)
			if err != nil {
				return err
			}
			s, err := cli.LoadSchema(a.cfg.SchemaFile)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if err := validator.ValidateJSON(s, data); err != nil {
				if errs := schema.ValidationErrors(err); errs != nil {
					for _, e := range errs {
						fmt.Fprintf(out, "- %v\n", e)
					}
					return fmt.Errorf("document is invalid: %d problem(s)", len(errs))
				}
				return err
			}
			fmt.Fprintln(out, "Document is valid! ✅")
			return nil
		},
	}
}
