package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	tserrors "tserr/internal/errors"
)

// WriteDefault materializes the default configuration at
// <rootDir>/.tserr/config.toml. It refuses to overwrite an existing file.
func WriteDefault(rootDir string) (string, error) {
	dir := filepath.Join(rootDir, ".tserr")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", tserrors.New(tserrors.ConfigInvalid, "creating .tserr directory", err)
	}

	path := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return "", tserrors.Newf(tserrors.ConfigInvalid, "config already exists at %s", path)
	}

	data, err := toml.Marshal(DefaultConfig())
	if err != nil {
		return "", tserrors.New(tserrors.ConfigInvalid, "encoding default config", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", tserrors.New(tserrors.ConfigInvalid, "writing config file", err)
	}
	return path, nil
}
