package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	rootConfig   string
	rootDataRoot string
	rootLogLevel string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&rootConfig, "config", "", "Path to config YAML (default $TASKGATE_CONFIG or ~/.taskgate/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&rootDataRoot, "data-root", "", "Override the data root")
	rootCmd.PersistentFlags().StringVar(&rootLogLevel, "log-level", "", "Override the log level (debug|info|warn|error)")
}

var rootCmd = &cobra.Command{
	Use:   "taskgate",
	Short: "Sandboxed plain-English file task runner",
	Long: "Maps plain-English instructions onto a fixed set of file operations\n" +
		"and runs them inside a single data root. Instructions that mention\n" +
		"paths outside the root or destructive intent are rejected before\n" +
		"anything runs.",
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
