package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror/internal/cli"
	"github.com/aretw0/panmirror/pkg/schema"
)

func newConvertCmd(a *app) *cobra.Command {
	var (
		astInput bool
		pretty   bool
	)

	cmd := &cobra.Command{
		Use:   "convert [file|-]",
		Short: "Convert markdown or a pandoc JSON AST into a document",
		Long: `Reads markdown (converted through pandoc) or, with --ast, a pandoc JSON AST
and prints the resulting document as JSON.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.convertInput(cmd, args, astInput)
			if err != nil {
				return err
			}
			return cli.WriteJSON(cmd.OutOrStdout(), doc, pretty)
		},
	}

	cmd.Flags().BoolVar(&astInput, "ast", false, "Input is pandoc JSON instead of markdown")
	cmd.Flags().BoolVarP(&pretty, "pretty", "p", false, "Indent the output")
	return cmd
}

// convertInput reads the input named by args and converts it.
func (a *app) convertInput(cmd *cobra.Command, args []string, astInput bool) (*schema.Node, error) {
	data, err := cli.ReadInput(firstArg(args), a.stdin)
	if err != nil {
		return nil, err
	}

	st, err := a.stack(cmd, false)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	if astInput {
		return st.Converter.ConvertJSON(cmd.Context(), data)
	}
	return st.Converter.ConvertMarkdown(cmd.Context(), string(data))
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
