package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alejandroruanova/text-refinery/internal/core/domain"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/database/repositories"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/queue"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/storage"
)

func newEnqueueCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "enqueue <file>",
		Short: "Stage a dataset and queue it for cleaning by a worker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if !ctx.parserFactory().IsSupported(filepath.Ext(path)) {
				return fmt.Errorf("unsupported file extension %q", filepath.Ext(path))
			}

			files, err := ctx.storage()
			if err != nil {
				return err
			}

			client, err := queue.NewAsynqClient(&ctx.config.Queue, ctx.logger)
			if err != nil {
				return err
			}
			defer client.Close()

			return ctx.withRuns(func(runs *repositories.CleanRunRepository) error {
				run, err := enqueueFile(cmd.Context(), ctx, files, runs, client, path)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %s as run %s\n", filepath.Base(path), run.ID)
				return nil
			})
		},
	}
}

// enqueueFile copies the dataset into storage, records a queued run and
// enqueues the clean task. A run whose task cannot be enqueued is marked failed.
func enqueueFile(ctx context.Context, cc *commandContext, files *storage.LocalStorage, runs *repositories.CleanRunRepository, client *queue.AsynqClient, path string) (*domain.CleanRun, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()

	runID := uuid.New()
	meta, err := files.SaveSource(ctx, runID.String(), filepath.Base(path), f)
	if err != nil {
		return nil, err
	}

	run := &domain.CleanRun{
		ID:              runID,
		SourceFile:      meta.StoredPath,
		FileHash:        meta.Hash,
		Status:          domain.RunStatusQueued,
		RefineryVersion: cc.config.Refinery.Version,
		TextColumn:      cc.config.Refinery.TextColumn,
		OutputColumn:    cc.config.Refinery.OutputColumn,
	}
	if err := runs.Create(ctx, run); err != nil {
		return nil, err
	}

	task, err := queue.NewCleanDatasetTask(queue.CleanDatasetPayload{
		RunID:    run.ID,
		FilePath: meta.StoredPath,
	}, cc.config.Queue.MaxRetries)
	if err == nil {
		_, err = client.EnqueueContext(ctx, task)
	}
	if err != nil {
		if markErr := runs.MarkFailed(context.WithoutCancel(ctx), run.ID, err.Error()); markErr != nil {
			cc.logger.Error("failed to record failed run",
				slog.String("run_id", run.ID.String()),
				slog.Any("error", markErr))
		}
		return nil, err
	}

	return run, nil
}
