package main

import (
	"github.com/spf13/cobra"

	"tserr/internal/version"
)

var (
	// rootFlag is the CLI --root flag value
	rootFlag string
	// logLevelFlag is the CLI --log-level flag value
	logLevelFlag string
	// logFormatFlag is the CLI --log-format flag value
	logFormatFlag string
)

var rootCmd = &cobra.Command{
	Use:   "tserr",
	Short: "tserr - TypeScript diagnostics analyzer",
	Long: `tserr runs the TypeScript compiler over a project and turns its raw
diagnostics into structured analysis: classified errors, recurring patterns,
likely root causes, a suggested fix order, and preventative risk findings
for constructs the compiler has not flagged yet.`,
	Version: version.Short(),
}

func init() {
	rootCmd.SetVersionTemplate("tserr version {{.Version}}\n")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "",
		"Project root directory (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, error (default: from config)")
	rootCmd.PersistentFlags().StringVar(&logFormatFlag, "log-format", "",
		"Log format: text or json (default: from config)")
}
