package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/km-arc/branch/framework/app"
)

func serveCmd(boot func() (*app.Application, error)) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server on APP_PORT (default 8000).

Examples:
  branch serve
  branch serve --port 9000`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if port > 0 {
				if err := os.Setenv("APP_PORT", strconv.Itoa(port)); err != nil {
					return err
				}
			}
			a, err := boot()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.Run(ctx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (overrides APP_PORT)")
	return cmd
}
