package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alejandroruanova/text-refinery/internal/core/services/refinery"
)

func newRefineriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "refineries",
		Short: "List registered refineries and their processing steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resources, err := ctx.resources()
			if err != nil {
				return err
			}

			available := refinery.ListAvailableWithMetadata(resources)
			versions := make([]string, 0, len(available))
			for version := range available {
				versions = append(versions, version)
			}
			sort.Strings(versions)

			rows := make([][]string, 0, len(versions))
			for _, version := range versions {
				meta := available[version]
				aliases, _ := meta["aliases"].([]string)
				steps, _ := meta["steps"].([]string)
				rows = append(rows, []string{
					version,
					fmt.Sprint(meta["name"]),
					strings.Join(aliases, ", "),
					strings.Join(steps, " > "),
				})
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Version", "Name", "Aliases", "Steps"}, rows, nil))
			return nil
		},
	}
}
