package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"tserr/internal/config"
	"tserr/internal/risk"
	"tserr/internal/tsast"
)

var (
	riskFormat   string
	riskMinLevel string
)

var riskCmd = &cobra.Command{
	Use:   "risk [paths...]",
	Short: "Scan source files for risky constructs before they become errors",
	Long: `Scan TypeScript files for constructs that tend to turn into compiler
errors: explicit any, suppression comments, non-null assertions, unsafe
casts, unguarded property access.

This does not run the compiler. Paths default to the project root.

Examples:
  tserr risk
  tserr risk src/
  tserr risk src/api/client.ts --min-level=high`,
	Run: runRisk,
}

func init() {
	riskCmd.Flags().StringVar(&riskFormat, "format", "text", "Output format (text, json)")
	riskCmd.Flags().StringVar(&riskMinLevel, "min-level", "", "Only show findings at this level or above (low, medium, high)")
	rootCmd.AddCommand(riskCmd)
}

func runRisk(cmd *cobra.Command, args []string) {
	rootDir := mustGetRootDir()
	cfg := mustLoadConfig(rootDir)
	logger := newLogger(cfg)

	project, err := config.LoadProject(rootDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	catalog, warnings, err := risk.LoadCatalog(cfg.Risk.CatalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	for _, w := range warnings {
		logger.Warn("catalog warning", "code", w.Code, "message", w.Message)
	}

	files, err := collectFiles(rootDir, args, project)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Println("No TypeScript files found.")
		return
	}

	db := openStore(rootDir, cfg, logger)
	var history risk.HistoryProvider
	if db != nil {
		history = db
		defer db.Close()
	}

	ctx, cancel := signalContext()
	defer cancel()

	scanner := risk.NewScanner(catalog, history, logger)
	var reports []risk.FileReport
	for _, file := range files {
		if ctx.Err() != nil {
			fmt.Fprintln(os.Stderr, "Interrupted.")
			os.Exit(1)
		}
		fileReport, fileWarnings := scanner.Report(ctx, file)
		for _, w := range fileWarnings {
			logger.Warn("risk warning", "path", w.Path, "message", w.Message)
		}
		fileReport.Findings = filterLevel(fileReport.Findings, riskMinLevel)
		if len(fileReport.Findings) > 0 {
			fileReport.RiskScore = risk.Score(fileReport.Findings)
			reports = append(reports, fileReport)
		}
	}

	if riskFormat == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if len(reports) == 0 {
		fmt.Println("No risk findings.")
		return
	}
	for _, r := range reports {
		fmt.Printf("%s (score %.2f)\n", r.File, r.RiskScore)
		for _, f := range r.Findings {
			fmt.Printf("  %d:%d %s [%s, confidence %.2f]\n",
				f.Line, f.Column, f.Pattern, f.Level, f.Confidence)
			if f.SuggestedFix != "" {
				fmt.Printf("    fix: %s\n", f.SuggestedFix)
			}
		}
	}
}

// collectFiles expands the path arguments into supported TypeScript files
// within the project declaration.
func collectFiles(rootDir string, args []string, project *config.Project) ([]string, error) {
	if len(args) == 0 {
		args = []string{rootDir}
	}

	var files []string
	for _, arg := range args {
		path := arg
		if !filepath.IsAbs(path) {
			path = filepath.Join(rootDir, arg)
		}

		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if tsast.SupportedFile(path) {
				files = append(files, path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil // skip unreadable entries
			}
			if d.IsDir() {
				base := filepath.Base(p)
				if base == "node_modules" || base == ".git" || base == "dist" || base == ".tserr" {
					return fs.SkipDir
				}
				return nil
			}
			if !tsast.SupportedFile(p) {
				return nil
			}
			rel, err := filepath.Rel(rootDir, p)
			if err == nil && !project.Matches(rel) {
				return nil
			}
			files = append(files, p)
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func filterLevel(findings []risk.Finding, minLevel string) []risk.Finding {
	if minLevel == "" {
		return findings
	}
	threshold := risk.Level(minLevel).Weight()
	var kept []risk.Finding
	for _, f := range findings {
		if f.Level.Weight() >= threshold {
			kept = append(kept, f)
		}
	}
	return kept
}
