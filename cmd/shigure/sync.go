package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eringen/shigure"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Mirror the issue tracker into the local database once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e := getEnv(cmd)
			app := shigure.New(e.cfg.Site, shigure.WithLogger(e.log), shigure.WithoutScheduler())
			if err := app.Init(); err != nil {
				return err
			}
			defer app.Close()
			res, err := app.Syncer.Sync(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %d posts, removed %d, cached %d covers\n", res.Saved, res.Deleted, res.Covers)
			return nil
		},
	}
}
