package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/alejandroruanova/text-refinery/internal/core/services/cleaning"
)

func newTransformCommand(ctx *commandContext) *cobra.Command {
	var (
		output       string
		column       string
		outputColumn string
		workers      int
		dropDups     bool
		asJSON       bool
	)

	cmd := &cobra.Command{
		Use:   "transform <file>",
		Short: "Clean the text column of a CSV, JSON, JSONL or XLSX dataset",
		Long: "Clean the text column of a dataset file and write it back out as CSV with the\n" +
			"cleaned column appended. Runs locally; no database or redis is needed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("resolve path: %w", err)
			}

			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}
			files, err := ctx.storage()
			if err != nil {
				return err
			}

			config := ctx.cleaningConfig()
			if column != "" {
				config.TextColumn = column
			}
			if outputColumn != "" {
				config.OutputColumn = outputColumn
			}
			if workers > 0 {
				config.Workers = workers
			}
			if dropDups {
				config.DropDuplicates = true
			}

			service, err := cleaning.NewService(config, cleaning.Dependencies{
				Pipeline: pipeline,
				Parser:   ctx.parserFactory(),
				Files:    files,
			}, ctx.logger)
			if err != nil {
				return err
			}

			result, err := service.CleanFile(cmd.Context(), cleaning.Request{
				FilePath:   path,
				OutputPath: output,
			})
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderFields(resultFields(result)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output CSV path (default: storage directory)")
	cmd.Flags().StringVar(&column, "column", "", "Text column to clean")
	cmd.Flags().StringVar(&outputColumn, "output-column", "", "Column the cleaned text is written to")
	cmd.Flags().IntVar(&workers, "workers", 0, "Rows cleaned in parallel")
	cmd.Flags().BoolVar(&dropDups, "drop-duplicates", false, "Leave out rows whose cleaned text repeats an earlier row")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")

	return cmd
}

func resultFields(r *cleaning.Result) [][2]string {
	return [][2]string{
		{"Run", r.RunID.String()},
		{"Format", r.Format},
		{"Refinery", r.RefineryVersion},
		{"Rows", strconv.Itoa(r.TotalRows)},
		{"Skipped", strconv.Itoa(r.SkippedRows)},
		{"Empty outputs", strconv.Itoa(r.EmptyOutputs)},
		{"Duplicates", strconv.Itoa(r.DuplicateRows)},
		{"Dropped", strconv.Itoa(r.DroppedRows)},
		{"Output", r.OutputPath},
		{"Duration", r.Duration.Round(time.Millisecond).String()},
	}
}
