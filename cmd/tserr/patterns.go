package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tserr/internal/storage"
)

var patternsFormat string

var patternsCmd = &cobra.Command{
	Use:   "patterns",
	Short: "List recurring error patterns from the project history",
	Long: `List every recurring error pattern recorded across past scans,
ordered by occurrence count.

Examples:
  tserr patterns
  tserr patterns --format=json`,
	Args: cobra.NoArgs,
	Run:  runPatterns,
}

func init() {
	patternsCmd.Flags().StringVar(&patternsFormat, "format", "text", "Output format (text, json)")
	rootCmd.AddCommand(patternsCmd)
}

func runPatterns(cmd *cobra.Command, args []string) {
	rootDir := mustGetRootDir()
	cfg := mustLoadConfig(rootDir)
	logger := newLogger(cfg)

	db, err := storage.Open(rootDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	patterns, err := db.Patterns()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if patternsFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(patterns); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(patterns) == 0 {
		fmt.Println("No patterns recorded yet. Run 'tserr scan' first.")
		return
	}
	for _, p := range patterns {
		fmt.Printf("%-20s TS%-6s x%-4d in %d file(s)  [%s/%s]\n",
			p.Name, p.Code, p.Occurrences, len(p.AffectedFiles), p.Category, p.Severity)
		if p.SuggestedFix != "" {
			fmt.Printf("  fix: %s\n", p.SuggestedFix)
		}
	}
}
