package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tserr/internal/config"
	"tserr/internal/logging"
	"tserr/internal/report"
	"tserr/internal/scan"
	"tserr/internal/watcher"
)

var watchDeepFirst bool

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the project and re-analyze on change",
	Long: `Watch the project's TypeScript sources and run an incremental scan
after each batch of changes. Saves that do not change file content are
ignored.

Stops on Ctrl-C.

Examples:
  tserr watch
  tserr watch --deep-first`,
	Args: cobra.NoArgs,
	Run:  runWatch,
}

func init() {
	watchCmd.Flags().BoolVar(&watchDeepFirst, "deep-first", false, "Run an initial deep scan before watching")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) {
	rootDir := mustGetRootDir()
	cfg := mustLoadConfig(rootDir)

	// watch mode is long-running; keep stdout for reports and send logs
	// to .tserr/logs instead
	logger, logCloser, err := logging.FileLogger(rootDir, logging.Options{
		Level:  cfg.Logging.Level,
		Format: logging.Format(cfg.Logging.Format),
	})
	if err != nil {
		logger = newLogger(cfg)
	} else {
		defer logCloser.Close()
	}

	project, err := config.LoadProject(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	engine, closeStore, err := buildEngine(rootDir, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer closeStore()

	ctx, cancel := signalContext()
	defer cancel()

	rescan := make(chan struct{}, 1)
	hashes := scan.NewHashCache()

	w, err := watcher.New(rootDir, cfg.Watch, project, logger, func(events []watcher.Event) {
		changed := 0
		for _, e := range events {
			if e.Op == "remove" || e.Op == "rename" {
				hashes.Forget(e.Path)
				changed++
				continue
			}
			if hashes.Changed(e.Path) {
				changed++
			}
		}
		if changed == 0 {
			logger.Debug("all changes were content-identical, skipping rescan")
			return
		}
		select {
		case rescan <- struct{}{}:
		default: // a rescan is already queued
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	runOnce := func(deep bool) {
		analysis, err := engine.Run(ctx, deep)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error("scan failed", "error", err)
			return
		}
		if err := report.RenderText(os.Stdout, analysis, report.Options{MaxFixOrder: 10}); err != nil {
			logger.Error("render failed", "error", err)
		}
	}

	runOnce(watchDeepFirst)

	watchDone := make(chan error, 1)
	go func() {
		watchDone <- w.Start(ctx)
	}()

	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(os.Stderr, "Stopping.")
			return
		case err := <-watchDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				fmt.Fprintf(os.Stderr, "Watcher stopped: %v\n", err)
				os.Exit(1)
			}
			return
		case <-rescan:
			runOnce(false)
		}
	}
}
