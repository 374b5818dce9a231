package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tserr/internal/storage"
)

var (
	historyFormat string
	historyLimit  int
	historyPrune  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past scan results",
	Long: `Show the project's scan history, newest first.

With --prune, scans older than the configured retention window are deleted
first.

Examples:
  tserr history
  tserr history --limit=5
  tserr history --prune`,
	Args: cobra.NoArgs,
	Run:  runHistory,
}

func init() {
	historyCmd.Flags().StringVar(&historyFormat, "format", "text", "Output format (text, json)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of scans to show")
	historyCmd.Flags().BoolVar(&historyPrune, "prune", false, "Delete scans past the retention window first")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	rootDir := mustGetRootDir()
	cfg := mustLoadConfig(rootDir)
	logger := newLogger(cfg)

	db, err := storage.Open(rootDir, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if historyPrune {
		retention := time.Duration(cfg.Storage.RetentionDays) * 24 * time.Hour
		pruned, err := db.PruneScans(retention)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error pruning: %v\n", err)
			os.Exit(1)
		}
		logger.Info("pruned old scans", "removed", pruned)
	}

	results, err := db.History(historyLimit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if historyFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(results) == 0 {
		fmt.Println("No scans recorded yet. Run 'tserr scan' first.")
		return
	}
	for _, r := range results {
		mode := "incremental"
		if r.Deep {
			mode = "deep"
		}
		fmt.Printf("%s  %s  %-11s total=%-4d new=%-4d recurring=%-4d (crit=%d high=%d med=%d low=%d)\n",
			r.StartedAt.Local().Format("2006-01-02 15:04:05"), shortID(r.ID), mode,
			r.Total, r.New, r.Recurring, r.Critical, r.High, r.Medium, r.Low)
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
