package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const maxLineBytes = 1024 * 1024

func newCleanCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "clean [text...]",
		Short: "Clean text given as arguments, or each line read from stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline, err := ctx.pipeline()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(args) > 0 {
				fmt.Fprintln(out, pipeline.CleanText(strings.Join(args, " ")))
				return nil
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
			for scanner.Scan() {
				if err := cmd.Context().Err(); err != nil {
					return err
				}
				fmt.Fprintln(out, pipeline.CleanText(scanner.Text()))
			}
			return scanner.Err()
		},
	}
}
