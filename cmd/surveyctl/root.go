package main

import (
	"github.com/spf13/cobra"

	appconfig "github.com/wolfman30/survey-assistant/internal/config"
	"github.com/wolfman30/survey-assistant/pkg/logging"
)

var rootCmd = &cobra.Command{
	Use:           "surveyctl",
	Short:         "Operate the survey assistant from a terminal",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(bookingsCmd)
}

// loadConfig reads the environment and applies flags that override it.
func loadConfig(cmd *cobra.Command) (*appconfig.Config, *logging.Logger) {
	cfg := appconfig.Load()
	level, _ := cmd.Flags().GetString("log-level")
	logger := logging.NewWithFormat(level, "text", cmd.ErrOrStderr())
	return cfg, logger
}
