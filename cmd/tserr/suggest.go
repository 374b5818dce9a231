package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tserr/internal/scan"
)

var suggestLimit int

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Emit fix-suggestion payloads for the highest-priority errors",
	Long: `Run a scan and print JSON payloads (diagnostic plus source context)
for the highest-priority errors, ready to hand to an external
fix-suggestion service. tserr prepares the payloads but never calls such
a service itself.

Examples:
  tserr suggest
  tserr suggest --limit=3`,
	Args: cobra.NoArgs,
	Run:  runSuggest,
}

func init() {
	suggestCmd.Flags().IntVar(&suggestLimit, "limit", 5, "Number of payloads to emit")
	rootCmd.AddCommand(suggestCmd)
}

func runSuggest(cmd *cobra.Command, args []string) {
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
	if suggestLimit > 0 && len(ranked) > suggestLimit {
		ranked = ranked[:suggestLimit]
	}

	requests := make([]scan.SuggestionRequest, 0, len(ranked))
	for _, f := range ranked {
		requests = append(requests, scan.BuildSuggestionRequest(f.Diagnostic))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(requests); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
