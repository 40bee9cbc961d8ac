package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newSyncCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one ERP sync pass and exit",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.sync.Reload(ctx); err != nil {
				return err
			}
			added, err := a.sync.Sync(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "synced: %d new, %d total\n", added, a.store.Len())
			return nil
		},
	}
}
