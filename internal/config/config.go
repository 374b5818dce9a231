// Package config loads tool configuration from .tserr/config.toml with
// TSERR_-prefixed environment overrides.
package config

import (
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	tserrors "tserr/internal/errors"
)

// Config represents the complete tserr configuration
type Config struct {
	Version int `json:"version" mapstructure:"version" toml:"version"`

	Compiler CompilerConfig `json:"compiler" mapstructure:"compiler" toml:"compiler"`
	Scan     ScanConfig     `json:"scan" mapstructure:"scan" toml:"scan"`
	Patterns PatternsConfig `json:"patterns" mapstructure:"patterns" toml:"patterns"`
	Risk     RiskConfig     `json:"risk" mapstructure:"risk" toml:"risk"`
	Storage  StorageConfig  `json:"storage" mapstructure:"storage" toml:"storage"`
	Watch    WatchConfig    `json:"watch" mapstructure:"watch" toml:"watch"`
	Logging  LoggingConfig  `json:"logging" mapstructure:"logging" toml:"logging"`
}

// CompilerConfig controls how the TypeScript compiler is invoked
type CompilerConfig struct {
	Command string   `json:"command" mapstructure:"command" toml:"command"`
	Args    []string `json:"args" mapstructure:"args" toml:"args"`
}

// ScanConfig controls the analysis pipeline
type ScanConfig struct {
	ContextLines   int `json:"contextLines" mapstructure:"contextLines" toml:"contextLines"`
	Parallelism    int `json:"parallelism" mapstructure:"parallelism" toml:"parallelism"`
	RootCauseLimit int `json:"rootCauseLimit" mapstructure:"rootCauseLimit" toml:"rootCauseLimit"`
}

// PatternsConfig controls clustering
type PatternsConfig struct {
	MinOccurrences      int     `json:"minOccurrences" mapstructure:"minOccurrences" toml:"minOccurrences"`
	MaxExamples         int     `json:"maxExamples" mapstructure:"maxExamples" toml:"maxExamples"`
	SimilarityThreshold float64 `json:"similarityThreshold" mapstructure:"similarityThreshold" toml:"similarityThreshold"`
}

// RiskConfig controls the preventative scanner
type RiskConfig struct {
	Enabled     bool   `json:"enabled" mapstructure:"enabled" toml:"enabled"`
	CatalogPath string `json:"catalogPath" mapstructure:"catalogPath" toml:"catalogPath"`
}

// StorageConfig controls persistence
type StorageConfig struct {
	Enabled       bool `json:"enabled" mapstructure:"enabled" toml:"enabled"`
	RetentionDays int  `json:"retentionDays" mapstructure:"retentionDays" toml:"retentionDays"`
}

// WatchConfig controls the file watcher
type WatchConfig struct {
	DebounceMs int      `json:"debounceMs" mapstructure:"debounceMs" toml:"debounceMs"`
	Include    []string `json:"include" mapstructure:"include" toml:"include"`
	Exclude    []string `json:"exclude" mapstructure:"exclude" toml:"exclude"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level" toml:"level"`
	Format string `json:"format" mapstructure:"format" toml:"format"`
}

const currentConfigVersion = 1

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Version: currentConfigVersion,
		Compiler: CompilerConfig{
			Command: "npx",
			Args:    []string{"tsc", "--noEmit", "--pretty", "false"},
		},
		Scan: ScanConfig{
			ContextLines:   2,
			Parallelism:    4,
			RootCauseLimit: 10,
		},
		Patterns: PatternsConfig{
			MinOccurrences: 2,
			MaxExamples:    3,
		},
		Risk: RiskConfig{
			Enabled: true,
		},
		Storage: StorageConfig{
			Enabled:       true,
			RetentionDays: 90,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
			Include:    []string{"**/*.ts", "**/*.tsx", "**/*.mts", "**/*.cts"},
			Exclude:    []string{"**/node_modules/**", "**/dist/**", "**/*.d.ts"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from <rootDir>/.tserr/config.toml. A
// missing file yields the defaults; environment variables with the TSERR_
// prefix override individual keys (e.g. TSERR_SCAN_PARALLELISM=8).
func LoadConfig(rootDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(filepath.Join(rootDir, ".tserr"))

	v.SetEnvPrefix("TSERR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, tserrors.New(tserrors.ConfigInvalid, "reading config file", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, tserrors.New(tserrors.ConfigInvalid, "parsing config", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := DefaultConfig()
	v.SetDefault("version", def.Version)
	v.SetDefault("compiler.command", def.Compiler.Command)
	v.SetDefault("compiler.args", def.Compiler.Args)
	v.SetDefault("scan.contextLines", def.Scan.ContextLines)
	v.SetDefault("scan.parallelism", def.Scan.Parallelism)
	v.SetDefault("scan.rootCauseLimit", def.Scan.RootCauseLimit)
	v.SetDefault("patterns.minOccurrences", def.Patterns.MinOccurrences)
	v.SetDefault("patterns.maxExamples", def.Patterns.MaxExamples)
	v.SetDefault("patterns.similarityThreshold", def.Patterns.SimilarityThreshold)
	v.SetDefault("risk.enabled", def.Risk.Enabled)
	v.SetDefault("risk.catalogPath", def.Risk.CatalogPath)
	v.SetDefault("storage.enabled", def.Storage.Enabled)
	v.SetDefault("storage.retentionDays", def.Storage.RetentionDays)
	v.SetDefault("watch.debounceMs", def.Watch.DebounceMs)
	v.SetDefault("watch.include", def.Watch.Include)
	v.SetDefault("watch.exclude", def.Watch.Exclude)
	v.SetDefault("logging.level", def.Logging.Level)
	v.SetDefault("logging.format", def.Logging.Format)
}

// Validate checks the configuration for values the tool cannot run with
func (c *Config) Validate() error {
	if c.Version != currentConfigVersion {
		return tserrors.Newf(tserrors.ConfigInvalid, "unsupported config version %d", c.Version)
	}
	if c.Compiler.Command == "" {
		return tserrors.Newf(tserrors.ConfigInvalid, "compiler.command must not be empty")
	}
	if c.Scan.ContextLines < 0 {
		return tserrors.Newf(tserrors.ConfigInvalid, "scan.contextLines must be >= 0")
	}
	if c.Scan.Parallelism < 1 {
		return tserrors.Newf(tserrors.ConfigInvalid, "scan.parallelism must be >= 1")
	}
	if c.Patterns.MinOccurrences < 2 {
		return tserrors.Newf(tserrors.ConfigInvalid, "patterns.minOccurrences must be >= 2")
	}
	if c.Patterns.SimilarityThreshold < 0 || c.Patterns.SimilarityThreshold > 1 {
		return tserrors.Newf(tserrors.ConfigInvalid, "patterns.similarityThreshold must be in [0,1]")
	}
	return nil
}
