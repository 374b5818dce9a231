package config

import (
	"os"
	"path/filepath"
	"testing"

	tserrors "tserr/internal/errors"
)

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Compiler.Command != "npx" {
		t.Errorf("compiler.command = %q, want npx", cfg.Compiler.Command)
	}
	if cfg.Scan.Parallelism != 4 {
		t.Errorf("scan.parallelism = %d, want 4", cfg.Scan.Parallelism)
	}
	if !cfg.Risk.Enabled {
		t.Error("risk should be enabled by default")
	}
}

func TestLoadConfigReadsFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".tserr"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `
version = 1

[scan]
parallelism = 8
contextLines = 5

[patterns]
minOccurrences = 3
`
	if err := os.WriteFile(filepath.Join(dir, ".tserr", "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Scan.Parallelism != 8 {
		t.Errorf("scan.parallelism = %d, want 8", cfg.Scan.Parallelism)
	}
	if cfg.Scan.ContextLines != 5 {
		t.Errorf("scan.contextLines = %d, want 5", cfg.Scan.ContextLines)
	}
	if cfg.Patterns.MinOccurrences != 3 {
		t.Errorf("patterns.minOccurrences = %d, want 3", cfg.Patterns.MinOccurrences)
	}
	// untouched keys keep defaults
	if cfg.Compiler.Command != "npx" {
		t.Errorf("compiler.command = %q, want default", cfg.Compiler.Command)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, ".tserr"), 0755); err != nil {
		t.Fatal(err)
	}
	content := `
version = 1

[patterns]
minOccurrences = 1
`
	if err := os.WriteFile(filepath.Join(dir, ".tserr", "config.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadConfig(dir)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !tserrors.HasCode(err, tserrors.ConfigInvalid) {
		t.Errorf("unexpected error code: %v", err)
	}
}

func TestWriteDefaultRoundTrips(t *testing.T) {
	dir := t.TempDir()

	path, err := WriteDefault(dir)
	if err != nil {
		t.Fatalf("WriteDefault failed: %v", err)
	}
	if filepath.Base(path) != "config.toml" {
		t.Errorf("unexpected path %q", path)
	}

	cfg, err := LoadConfig(dir)
	if err != nil {
		t.Fatalf("LoadConfig after WriteDefault failed: %v", err)
	}
	if cfg.Scan.Parallelism != DefaultConfig().Scan.Parallelism {
		t.Error("written defaults do not round trip")
	}

	if _, err := WriteDefault(dir); err == nil {
		t.Error("second WriteDefault should refuse to overwrite")
	}
}

func TestProjectMatches(t *testing.T) {
	p := &Project{
		Include: []string{"src/**/*.ts", "src/**/*.tsx"},
		Exclude: []string{"**/*.test.ts", "**/node_modules/**"},
	}

	tests := []struct {
		path string
		want bool
	}{
		{"src/app.ts", true},
		{"src/deep/nested/widget.tsx", true},
		{"src/app.test.ts", false},
		{"src/node_modules/lib/index.ts", false},
		{"scripts/build.mjs", false},
	}
	for _, tt := range tests {
		if got := p.Matches(tt.path); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestProjectMissingFileAllowsEverything(t *testing.T) {
	p, err := LoadProject(t.TempDir())
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if !p.Matches("anything/at/all.ts") {
		t.Error("empty project should match every path")
	}
	if p.Name == "" {
		t.Error("project name should default to the directory name")
	}
}

func TestLoadProjectReadsDeclaration(t *testing.T) {
	dir := t.TempDir()
	content := `
name = "webapp"
tsconfig = "tsconfig.build.json"
include = ["src/**/*.ts"]
`
	if err := os.WriteFile(filepath.Join(dir, "tserr.toml"), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadProject(dir)
	if err != nil {
		t.Fatalf("LoadProject failed: %v", err)
	}
	if p.Name != "webapp" || p.TSConfig != "tsconfig.build.json" {
		t.Errorf("unexpected project: %+v", p)
	}
	if !p.Matches("src/a.ts") || p.Matches("lib/b.ts") {
		t.Error("include patterns not applied")
	}
}
