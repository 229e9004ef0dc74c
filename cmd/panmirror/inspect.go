package main

import (
	"fmt"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror/internal/cli"
	"github.com/aretw0/panmirror/internal/presentation/tui"
	"github.com/aretw0/panmirror/pkg/schema"
)

func newInspectCmd(a *app) *cobra.Command {
	var (
		astInput bool
		preview  bool
		plain    bool
		width    int
	)

	cmd := &cobra.Command{
		Use:   "inspect [file|-]",
		Short: "Show the converted document as a tree",
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

			out := cmd.OutOrStdout()
			if preview && !astInput {
				render, err := tui.NewRenderer(width)
				if err != nil {
					return err
				}
				rendered, err := render(string(data))
				if err != nil {
					return err
				}
				fmt.Fprintln(out, rendered)
			}

			var root *schema.Node
			if astInput {
				root, err = st.Converter.ConvertJSON(cmd.Context(), data)
			} else {
				root, err = st.Converter.ConvertMarkdown(cmd.Context(), string(data))
			}
			if err != nil {
				return err
			}

			var opts []tui.TreeOption
			if plain || !cli.IsTerminal(out) {
				opts = append(opts, tui.WithProfile(termenv.Ascii))
			}
			return tui.NewTreeRenderer(out, opts...).Render(root)
		},
	}

	cmd.Flags().BoolVar(&astInput, "ast", false, "Input is pandoc JSON instead of markdown")
	cmd.Flags().BoolVar(&preview, "preview", false, "Render the markdown source above the tree")
	cmd.Flags().BoolVar(&plain, "plain", false, "Disable colors")
	cmd.Flags().IntVar(&width, "width", 0, "Wrap width for --preview")
	return cmd
}
