package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newPruneCommand(ctx *commandContext) *cobra.Command {
	var olderThan time.Duration

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete staged and cleaned files older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}

			files, err := ctx.storage()
			if err != nil {
				return err
			}

			removed, err := files.CleanupOldFiles(cmd.Context(), olderThan)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d files older than %s from %s\n", removed, olderThan, files.BasePath())
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 7*24*time.Hour, "Minimum file age")
	return cmd
}
