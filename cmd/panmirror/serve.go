package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/panmirror"
	"github.com/aretw0/panmirror/internal/presentation/tui"
	httpAdapter "github.com/aretw0/panmirror/pkg/adapters/http"
)

func newServeCmd(a *app) *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Exposes POST /convert, POST /pandoc/ast, GET /schema and GET /healthz.
With --metrics, Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.stack(cmd, a.cfg.Server.Metrics)
			if err != nil {
				return err
			}
			defer st.Close()

			opts := []httpAdapter.Option{httpAdapter.WithLogger(a.logger)}
			if st.Registry != nil {
				opts = append(opts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(st.Registry, promhttp.HandlerOpts{})))
			}
			handler := httpAdapter.NewHandler(st.Converter, opts...)

			addr := fmt.Sprintf(":%d", a.cfg.Server.Port)
			if !quiet {
				tui.PrintBanner(cmd.ErrOrStderr(), panmirror.Version)
				fmt.Fprintf(cmd.ErrOrStderr(), "Starting panmirror server on %s\n", addr)
			}
			return httpAdapter.Serve(cmd.Context(), addr, handler, a.logger)
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().Bool("metrics", false, "Serve Prometheus metrics on /metrics")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not print the banner")
	return cmd
}
