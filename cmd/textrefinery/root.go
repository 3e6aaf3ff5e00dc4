package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "textrefinery",
		Short:         "Clean short English messages for text classification",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig(cmd)
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("refinery", "", "Refinery version or alias (default v1)")
	flags.String("stopwords", "", "Stop-word list: nltk or snowball")

	// Flags override environment variables of the same setting
	_ = viper.BindPFlag("LOG_LEVEL", flags.Lookup("log-level"))
	_ = viper.BindPFlag("REFINERY_VERSION", flags.Lookup("refinery"))
	_ = viper.BindPFlag("STOPWORDS_SOURCE", flags.Lookup("stopwords"))

	rootCmd.AddCommand(newCleanCommand(ctx))
	rootCmd.AddCommand(newTransformCommand(ctx))
	rootCmd.AddCommand(newEnqueueCommand(ctx))
	rootCmd.AddCommand(newWorkerCommand(ctx))
	rootCmd.AddCommand(newRefineriesCommand(ctx))
	rootCmd.AddCommand(newRunsCommand(ctx))
	rootCmd.AddCommand(newPruneCommand(ctx))
	rootCmd.AddCommand(newHealthCommand(ctx))

	return rootCmd
}
