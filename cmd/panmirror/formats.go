package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror/pkg/adapters/process"
)

func newFormatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the input formats the local pandoc accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.stack(cmd, false)
			if err != nil {
				return err
			}
			defer st.Close()

			src, ok := st.Source.(*process.Source)
			if !ok {
				return errors.New("formats needs a local pandoc, not --pandoc-url")
			}
			formats, err := src.InputFormats(cmd.Context())
			if err != nil {
				return err
			}
			for _, f := range formats {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			return nil
		},
	}
}
