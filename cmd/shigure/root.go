package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/shigure/internal/config"
	"github.com/eringen/shigure/internal/logging"
)

type ctxKey string

const envKey ctxKey = "env"

// env is what every subcommand needs after configuration is resolved.
type env struct {
	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:           "shigure",
		Short:         "shigure - a blog served from GitHub issues",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			v := viper.New()
			if cfgPath != "" {
				v.SetConfigFile(cfgPath)
			}
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.LogLevel, cfg.LogFile)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), envKey, &env{cfg: cfg, log: log}))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e, ok := cmd.Context().Value(envKey).(*env); ok {
				_ = e.log.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file (yaml|toml|json)")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newSyncCmd())
	cmd.AddCommand(newRenderCmd())
	cmd.AddCommand(newVersionCmd())

	cmd.Run = func(cmd *cobra.Command, args []string) { _ = cmd.Help() }
	return cmd
}

func getEnv(cmd *cobra.Command) *env {
	return cmd.Context().Value(envKey).(*env)
}
