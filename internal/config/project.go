package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"

	tserrors "tserr/internal/errors"
)

// Project is the optional per-repository declaration read from tserr.toml
// at the project root. It narrows which files the watcher and risk scanner
// consider part of the project.
type Project struct {
	Name     string   `toml:"name"`
	TSConfig string   `toml:"tsconfig"`
	Include  []string `toml:"include"`
	Exclude  []string `toml:"exclude"`
}

// LoadProject reads <rootDir>/tserr.toml. A missing file returns a Project
// with no restrictions.
func LoadProject(rootDir string) (*Project, error) {
	path := filepath.Join(rootDir, "tserr.toml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Project{Name: filepath.Base(rootDir)}, nil
		}
		return nil, tserrors.New(tserrors.ConfigInvalid, "reading tserr.toml", err)
	}

	var p Project
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, tserrors.New(tserrors.ConfigInvalid, "parsing tserr.toml", err)
	}
	if p.Name == "" {
		p.Name = filepath.Base(rootDir)
	}
	return &p, nil
}

// Matches reports whether a path (relative to the project root) is part of
// the project. Exclude patterns win over include patterns; an empty include
// list means every path is included.
func (p *Project) Matches(path string) bool {
	path = filepath.ToSlash(strings.TrimPrefix(path, "./"))

	for _, pattern := range p.Exclude {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return false
		}
	}
	if len(p.Include) == 0 {
		return true
	}
	for _, pattern := range p.Include {
		if ok, _ := doublestar.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
