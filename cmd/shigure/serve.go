package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/eringen/shigure"
)

func newServeCmd() *cobra.Command {
	var static string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the blog and keep the mirror in sync",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			app := shigure.New(e.cfg.Site, shigure.WithLogger(e.log), shigure.WithStaticDir(static))
			defer app.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() { errc <- app.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			e.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				e.log.Error("shutdown", zap.Error(err))
			}
			return <-errc
		},
	}
	cmd.Flags().StringVar(&static, "static", "public", "directory with stylesheets, fonts and scripts")
	return cmd
}
