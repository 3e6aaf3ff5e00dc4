package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/alejandroruanova/text-refinery/internal/infrastructure/cache"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/database"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check the run database and redis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checkCtx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()

			out := cmd.OutOrStdout()
			healthy := true

			fmt.Fprintln(out, "Database")
			if err := ctx.config.ValidateDatabase(); err != nil {
				healthy = false
				fmt.Fprintln(out, renderMap(map[string]interface{}{"status": "down", "error": err.Error()}))
			} else if db, err := database.NewPostgresDB(&ctx.config.Database, ctx.logger); err != nil {
				healthy = false
				fmt.Fprintln(out, renderMap(map[string]interface{}{"status": "down", "error": err.Error()}))
			} else {
				fmt.Fprintln(out, renderMap(db.Health(checkCtx)))
				db.Close()
			}

			fmt.Fprintln(out, "Redis")
			if redisCache, err := cache.NewRedisCache(&ctx.config.Cache, ctx.logger); err != nil {
				healthy = false
				fmt.Fprintln(out, renderMap(map[string]interface{}{"status": "down", "error": err.Error()}))
			} else {
				fmt.Fprintln(out, renderMap(redisCache.Health(checkCtx)))
				redisCache.Close()
			}

			if !healthy {
				return fmt.Errorf("one or more dependencies are down")
			}
			return nil
		},
	}
}
