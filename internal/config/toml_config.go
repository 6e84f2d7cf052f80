package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlDoc mirrors parseKDL's node schema (project/include/exclude/
// preprocessor) in TOML's table shape.
type tomlDoc struct {
	Project struct {
		Root string `toml:"root"`
	} `toml:"project"`
	Include struct {
		Global  []string `toml:"global"`
		Project []string `toml:"project"`
	} `toml:"include"`
	Exclude struct {
		Patterns []string `toml:"patterns"`
	} `toml:"exclude"`
	Preprocessor struct {
		MacroExpansionDepth int `toml:"macro_expansion_depth"`
	} `toml:"preprocessor"`
}

// LoadTOML attempts to load `.spproject.toml` from projectRoot, the TOML
// sibling of LoadKDL's `.spproject.kdl`. Returns (nil, nil) when the file
// does not exist — Load tries LoadKDL before this and falls back to
// Default() after it. Grounded
// on the teacher's own pelletier/go-toml/v2 usage in
// internal/config/build_artifact_detector.go (toml.Unmarshal into a typed
// struct for Cargo.toml/pyproject.toml), applied here to this core's own
// config schema instead of a third-party build file's.
func LoadTOML(projectRoot string) (*Config, error) {
	tomlPath := filepath.Join(projectRoot, ".spproject.toml")

	content, err := os.ReadFile(tomlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read .spproject.toml: %w", err)
	}

	var doc tomlDoc
	if err := toml.Unmarshal(content, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	cfg := Default()
	cfg.Roots = nil // the TOML document is authoritative on roots; Default()'s cwd is just a fallback
	cfg.Exclude = nil

	if doc.Project.Root != "" {
		cfg.Roots = append(cfg.Roots, doc.Project.Root)
	}
	cfg.GlobalIncludeDirs = append(cfg.GlobalIncludeDirs, doc.Include.Global...)
	cfg.ProjectIncludeDirs = append(cfg.ProjectIncludeDirs, doc.Include.Project...)
	cfg.Exclude = append(cfg.Exclude, doc.Exclude.Patterns...)
	if doc.Preprocessor.MacroExpansionDepth > 0 {
		cfg.MacroExpansionDepth = doc.Preprocessor.MacroExpansionDepth
	}

	resolved := make([]string, 0, len(cfg.Roots))
	for _, r := range cfg.Roots {
		if filepath.IsAbs(r) {
			resolved = append(resolved, filepath.Clean(r))
		} else {
			resolved = append(resolved, filepath.Clean(filepath.Join(projectRoot, r)))
		}
	}
	if len(resolved) == 0 {
		resolved = []string{filepath.Clean(projectRoot)}
	}
	cfg.Roots = resolved

	cfg.GlobalIncludeDirs = resolveAll(projectRoot, cfg.GlobalIncludeDirs)
	cfg.ProjectIncludeDirs = resolveAll(projectRoot, cfg.ProjectIncludeDirs)

	if len(cfg.Exclude) == 0 {
		cfg.Exclude = defaultExclusions()
	}

	return cfg, nil
}
