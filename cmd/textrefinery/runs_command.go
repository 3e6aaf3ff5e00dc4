package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/alejandroruanova/text-refinery/internal/core/domain"
	"github.com/alejandroruanova/text-refinery/internal/infrastructure/database/repositories"
)

func newRunsCommand(ctx *commandContext) *cobra.Command {
	var (
		status string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "runs [id]",
		Short: "Show recorded cleaning runs",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if status != "" && !domain.IsValidRunStatus(status) {
				return fmt.Errorf("invalid status %q (valid: %s)", status, strings.Join(domain.ValidRunStatuses(), ", "))
			}

			var id uuid.UUID
			if len(args) == 1 {
				parsed, err := uuid.Parse(args[0])
				if err != nil {
					return fmt.Errorf("invalid run id %q: %w", args[0], err)
				}
				id = parsed
			}

			return ctx.withRuns(func(runs *repositories.CleanRunRepository) error {
				out := cmd.OutOrStdout()

				if id != uuid.Nil {
					run, err := runs.Get(cmd.Context(), id)
					if err != nil {
						return err
					}
					fmt.Fprintln(out, renderFields(runFields(run)))
					return printRunOutputs(cmd, ctx, run.ID.String())
				}

				list, err := runs.List(cmd.Context(), repositories.ListOptions{Status: status, Limit: limit})
				if err != nil {
					return err
				}
				if len(list) == 0 {
					fmt.Fprintln(out, "No runs recorded")
					return nil
				}

				rows := make([][]string, 0, len(list))
				for i := range list {
					rows = append(rows, runRow(&list[i]))
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Status", "Source", "Rows", "Refinery", "Created", "Duration"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft, alignLeft, alignRight}))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Only show runs with this status")
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to show (0 for all)")

	return cmd
}

func runRow(run *domain.CleanRun) []string {
	return []string{
		run.ID.String(),
		run.Status,
		filepath.Base(run.SourceFile),
		strconv.Itoa(run.TotalRows),
		run.RefineryVersion,
		run.CreatedAt.Local().Format(time.DateTime),
		formatDuration(run),
	}
}

func runFields(run *domain.CleanRun) [][2]string {
	fields := [][2]string{
		{"ID", run.ID.String()},
		{"Status", run.Status},
		{"Source", run.SourceFile},
		{"File hash", run.FileHash},
		{"Refinery", run.RefineryVersion},
		{"Columns", run.TextColumn + " -> " + run.OutputColumn},
		{"Rows", strconv.Itoa(run.TotalRows)},
		{"Skipped", strconv.Itoa(run.SkippedRows)},
		{"Output", run.OutputPath},
		{"Created", run.CreatedAt.Local().Format(time.DateTime)},
		{"Duration", formatDuration(run)},
	}
	if run.Error != "" {
		fields = append(fields, [2]string{"Error", run.Error})
	}
	return fields
}

func formatDuration(run *domain.CleanRun) string {
	if !run.IsFinished() {
		return "-"
	}
	return run.Duration().Round(time.Millisecond).String()
}

func printRunOutputs(cmd *cobra.Command, ctx *commandContext, runID string) error {
	files, err := ctx.storage()
	if err != nil {
		return err
	}

	outputs, err := files.ListProcessedFiles(cmd.Context(), runID)
	if err != nil {
		return err
	}
	if len(outputs) == 0 {
		return nil
	}

	var rows [][]string
	for kind, names := range outputs {
		for _, name := range names {
			rows = append(rows, []string{kind, name})
		}
	}
	sortRows(rows)
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Kind", "File"}, rows, nil))
	return nil
}
