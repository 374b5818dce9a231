package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"tserr/internal/compiler"
	"tserr/internal/config"
	"tserr/internal/logging"
	"tserr/internal/scan"
	"tserr/internal/storage"
)

// mustGetRootDir resolves the project root from --root or the working
// directory, or exits.
func mustGetRootDir() string {
	if rootFlag != "" {
		return rootFlag
	}
	dir, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return dir
}

// mustLoadConfig loads config for the root or exits on invalid config.
// A missing config file is fine; defaults apply.
func mustLoadConfig(rootDir string) *config.Config {
	cfg, err := config.LoadConfig(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

// newLogger builds the command logger from config with flag overrides
func newLogger(cfg *config.Config) *slog.Logger {
	level := cfg.Logging.Level
	if logLevelFlag != "" {
		level = logLevelFlag
	}
	format := logging.Format(cfg.Logging.Format)
	if logFormatFlag != "" {
		format = logging.Format(logFormatFlag)
	}
	return logging.New(logging.Options{Level: level, Format: format})
}

// openStore opens the project database. Failures degrade to nil: scans run
// without history and the report notes that persistence was skipped.
func openStore(rootDir string, cfg *config.Config, logger *slog.Logger) *storage.DB {
	if !cfg.Storage.Enabled {
		return nil
	}
	db, err := storage.Open(rootDir, logger)
	if err != nil {
		logger.Warn("storage unavailable, continuing without history", "error", err)
		return nil
	}
	return db
}

// buildEngine wires a scan engine from config. The returned close function
// releases the store if one was opened.
func buildEngine(rootDir string, cfg *config.Config, logger *slog.Logger) (*scan.Engine, func(), error) {
	runner := compiler.NewRunner(cfg.Compiler.Command, cfg.Compiler.Args, rootDir, logger)

	db := openStore(rootDir, cfg, logger)
	var store scan.Store
	closeStore := func() {}
	if db != nil {
		store = db
		closeStore = func() { db.Close() }
	}

	engine, err := scan.NewEngine(scan.Options{
		PatternThreshold:    cfg.Patterns.MinOccurrences,
		MaxExamples:         cfg.Patterns.MaxExamples,
		SimilarityThreshold: cfg.Patterns.SimilarityThreshold,
		RootCauseLimit:      cfg.Scan.RootCauseLimit,
		ContextLines:        cfg.Scan.ContextLines,
		Parallelism:         cfg.Scan.Parallelism,
		RiskEnabled:         cfg.Risk.Enabled,
		RiskCatalogPath:     cfg.Risk.CatalogPath,
	}, runner, store, logger)
	if err != nil {
		closeStore()
		return nil, nil, err
	}
	return engine, closeStore, nil
}

// signalContext returns a context cancelled by SIGINT/SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
