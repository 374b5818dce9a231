package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	fixorderFormat string
	fixorderLimit  int
)

var fixorderCmd = &cobra.Command{
	Use:   "fixorder",
	Short: "Show the suggested order for fixing current errors",
	Long: `Run a scan and print only the prioritized fix order. Higher scores
mean fixing the error unblocks more of the codebase.

Examples:
  tserr fixorder
  tserr fixorder --limit=10`,
	Args: cobra.NoArgs,
	Run:  runFixorder,
}

func init() {
	fixorderCmd.Flags().StringVar(&fixorderFormat, "format", "text", "Output format (text, json)")
	fixorderCmd.Flags().IntVar(&fixorderLimit, "limit", 0, "Limit entries shown (0 for all)")
	rootCmd.AddCommand(fixorderCmd)
}

func runFixorder(cmd *cobra.Command, args []string) {
	rootDir := mustGetRootDir()
	cfg := mustLoadConfig(rootDir)
	cfg.Risk.Enabled = false
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

	ranked := analysis.FixOrder
	if fixorderLimit > 0 && len(ranked) > fixorderLimit {
		ranked = ranked[:fixorderLimit]
	}

	if fixorderFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(ranked); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(ranked) == 0 {
		fmt.Println("No errors to fix.")
		return
	}
	for i, f := range ranked {
		d := f.Diagnostic
		fmt.Printf("%d. [%3d] %s:%d:%d TS%s %s\n",
			i+1, f.Score, d.File, d.Line, d.Column, d.Code, d.Message)
	}
}
