package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/tradebridge/tradebridge/config"
	"github.com/tradebridge/tradebridge/internal/kernel"
	"github.com/tradebridge/tradebridge/internal/server"
	"github.com/tradebridge/tradebridge/pkg/logger"
)

// tradebridge serve: start the HTTP server.
func newServeCmd() *cobra.Command {
	var memory bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := kernel.Boot(ctx, cfg, kernel.Options{Memory: memory})
			if err != nil {
				return err
			}
			defer func() {
				closeCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := app.Close(closeCtx); err != nil {
					logger.Error("shutdown: close failed", "error", err)
				}
			}()

			return server.Start(ctx, ":"+cfg.App.Port, kernel.Handler(app.Deps))
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "keep records in process instead of MongoDB")
	return cmd
}

// tradebridge route:list: print all registered routes.
func newRouteListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "route:list",
		Short: "List all registered routes",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos := kernel.Router(kernel.Deps{}).Routes()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "METHOD\tPATH\tNAME")
			fmt.Fprintln(w, "------\t----\t----")
			for _, ri := range infos {
				fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
			}
			return w.Flush()
		},
	}
}
