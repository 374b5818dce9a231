package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tserr/internal/report"
)

var (
	scanDeep      bool
	scanFormat    string
	scanExport    string
	scanNoRisk    bool
	scanVerbose   bool
	scanMaxFixes  int
	scanMaxGroups int
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run the compiler and analyze its diagnostics",
	Long: `Run the TypeScript compiler and analyze every diagnostic it reports.

Incremental scans (the default) compare against the project history and
report which errors are new. Deep scans re-process everything.

Examples:
  tserr scan
  tserr scan --deep
  tserr scan --format=json
  tserr scan --export=analysis.json.zst`,
	Args: cobra.NoArgs,
	Run:  runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanDeep, "deep", false, "Re-process all diagnostics regardless of history")
	scanCmd.Flags().StringVar(&scanFormat, "format", "text", "Output format (text, json)")
	scanCmd.Flags().StringVar(&scanExport, "export", "", "Also write the full analysis to a file (.zst compresses)")
	scanCmd.Flags().BoolVar(&scanNoRisk, "no-risk", false, "Skip the preventative risk scan")
	scanCmd.Flags().BoolVar(&scanVerbose, "verbose", false, "Include source context in the text report")
	scanCmd.Flags().IntVar(&scanMaxFixes, "max-fix-order", 20, "Limit the fix order section (0 for all)")
	scanCmd.Flags().IntVar(&scanMaxGroups, "max-patterns", 0, "Limit the pattern section (0 for all)")
	rootCmd.AddCommand(scanCmd)
}

func runScan(cmd *cobra.Command, args []string) {
	rootDir := mustGetRootDir()
	cfg := mustLoadConfig(rootDir)
	if scanNoRisk {
		cfg.Risk.Enabled = false
	}
	logger := newLogger(cfg)

	engine, closeStore, err := buildEngine(rootDir, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, cancel := signalContext()
	defer cancel()

	analysis, err := engine.Run(ctx, scanDeep)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if scanExport != "" {
		if err := report.Export(scanExport, analysis); err != nil {
			fmt.Fprintf(os.Stderr, "Error exporting analysis: %v\n", err)
			os.Exit(1)
		}
		logger.Info("analysis exported", "path", scanExport)
	}

	switch scanFormat {
	case "json":
		err = report.RenderJSON(os.Stdout, analysis, true)
	default:
		err = report.RenderText(os.Stdout, analysis, report.Options{
			MaxFixOrder: scanMaxFixes,
			MaxPatterns: scanMaxGroups,
			Verbose:     scanVerbose,
		})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		os.Exit(1)
	}

	// non-zero exit when errors remain, for CI use
	if analysis.Result.Total > 0 {
		os.Exit(2)
	}
}
