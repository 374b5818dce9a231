package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tserr/internal/report"
	"tserr/internal/scan"
)

var (
	reportInput   string
	reportFormat  string
	reportVerbose bool
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the last stored scan, or a previously exported analysis",
	Long: `Render a scan report.

Without flags, renders the most recent scan recorded in project storage
(summary and patterns; per-diagnostic detail lives in exports). With
--input, re-renders an analysis exported by 'tserr scan --export';
compressed exports (.zst) are decompressed transparently.

Examples:
  tserr report
  tserr report --input=analysis.json
  tserr report --input=analysis.json.zst --format=json`,
	Args: cobra.NoArgs,
	Run:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportInput, "input", "", "Exported analysis file (default: last stored scan)")
	reportCmd.Flags().StringVar(&reportFormat, "format", "text", "Output format (text, json)")
	reportCmd.Flags().BoolVar(&reportVerbose, "verbose", false, "Include source context in the text report")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) {
	var analysis *scan.Analysis
	var err error
	if reportInput != "" {
		analysis, err = report.ReadExport(reportInput)
	} else {
		analysis, err = loadStoredAnalysis()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	switch reportFormat {
	case "json":
		err = report.RenderJSON(os.Stdout, analysis, true)
	default:
		err = report.RenderText(os.Stdout, analysis, report.Options{Verbose: reportVerbose})
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
		os.Exit(1)
	}
}

// loadStoredAnalysis reassembles a renderable analysis from the most recent
// stored scan plus the pattern table.
func loadStoredAnalysis() (*scan.Analysis, error) {
	rootDir := mustGetRootDir()
	cfg := mustLoadConfig(rootDir)

	db := openStore(rootDir, cfg, newLogger(cfg))
	if db == nil {
		return nil, fmt.Errorf("project storage is unavailable; pass --input to render an export")
	}
	defer db.Close()

	history, err := db.History(1)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, fmt.Errorf("no stored scans yet; run 'tserr scan' first")
	}

	patterns, err := db.Patterns()
	if err != nil {
		return nil, err
	}
	return &scan.Analysis{Result: history[0], Patterns: patterns}, nil
}
