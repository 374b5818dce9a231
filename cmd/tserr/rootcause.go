package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootcauseFormat string
	rootcauseLimit  int
)

var rootcauseCmd = &cobra.Command{
	Use:   "rootcause",
	Short: "Identify the diagnostics most likely causing error cascades",
	Long: `Run a scan and report only the likely root causes: diagnostics in
files that many other failing files depend on, ranked by severity and
dependent count.

Examples:
  tserr rootcause
  tserr rootcause --limit=5 --format=json`,
	Args: cobra.NoArgs,
	Run:  runRootcause,
}

func init() {
	rootcauseCmd.Flags().StringVar(&rootcauseFormat, "format", "text", "Output format (text, json)")
	rootcauseCmd.Flags().IntVar(&rootcauseLimit, "limit", 0, "Override the configured candidate limit")
	rootCmd.AddCommand(rootcauseCmd)
}

func runRootcause(cmd *cobra.Command, args []string) {
	rootDir := mustGetRootDir()
	cfg := mustLoadConfig(rootDir)
	cfg.Risk.Enabled = false // not needed for this view
	if rootcauseLimit > 0 {
		cfg.Scan.RootCauseLimit = rootcauseLimit
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

	analysis, err := engine.Run(ctx, false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if rootcauseFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(analysis.RootCauses); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(analysis.RootCauses) == 0 {
		fmt.Println("No root cause candidates found.")
		return
	}
	for i, c := range analysis.RootCauses {
		d := c.Diagnostic
		fmt.Printf("%d. %s:%d:%d TS%s (%s, %d dependent file(s))\n",
			i+1, d.File, d.Line, d.Column, d.Code, d.Severity, c.Dependents)
		fmt.Printf("   %s\n", d.Message)
	}
}
