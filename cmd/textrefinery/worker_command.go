package main

import (
	"github.com/spf13/cobra"

	"github.com/alejandroruanova/text-refinery/internal/core/services/cleaning"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/cache"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/database/repositories"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/queue"
	"github.com/alejandroruanova/text-refinery/internal/pkg/logger"
)

func newWorkerCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Process queued cleaning tasks until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			files, err := ctx.storage()
			if err != nil {
				return err
			}

			log := logger.NewServiceLogger("worker")

			return ctx.withRuns(func(runs *repositories.CleanRunRepository) error {
				return ctx.withLocker(func(locker *cache.RedisLocker) error {
					service, err := cleaning.NewService(ctx.cleaningConfig(), cleaning.Dependencies{
						Pipeline: pipeline,
						Parser:   ctx.parserFactory(),
						Files:    files,
						Runs:     runs,
						Locker:   locker,
					}, log)
					if err != nil {
						return err
					}

					server, err := queue.NewAsynqServer(&ctx.config.Queue, log)
					if err != nil {
						return err
					}
					server.Use(queue.LoggingMiddleware(log))
					server.HandleFunc(queue.TaskTypeCleanDataset, queue.NewCleanDatasetHandler(service, log).ProcessTask)

					return server.Run(cmd.Context())
				})
			})
		},
	}
}
