// Package config loads the workspace configuration the analysis core
// needs before it can resolve a single #include: project roots, the
// global ("SourceMod") include directory, per-project include
// directories, and exclude globs. It is the one piece of "CLI/config
// parsing" spec.md §1 allows into the core, because without it the
// include resolver (internal/query's includeResolver) has nothing to search.
package config

import "path/filepath"

// Config is the resolved, defaulted configuration for one workspace.
type Config struct {
	// Roots are the workspace's source roots; each is scanned by the VFS
	// loader and partitioned into projects by internal/includegraph.
	Roots []string

	// GlobalIncludeDirs is searched for chevron-form includes
	// (`#include <foo>`) after ProjectIncludeDirs, matching the
	// original's "SourceMod include root searched last" order
	// (crates/sourcepawn-studio/src/config.rs in original_source/).
	GlobalIncludeDirs []string

	// ProjectIncludeDirs is searched first for chevron-form includes.
	// Quote-form includes (`#include "foo"`) always try the including
	// file's own directory before either list.
	ProjectIncludeDirs []string

	// Exclude holds doublestar glob patterns; matching paths are never
	// loaded into the VFS at all (spec.md's VFS ingress is the only
	// ingestion point, so exclusion happens here, not downstream).
	Exclude []string

	// MacroExpansionDepth bounds the preprocessor's recursive macro
	// expansion context stack (spec.md §4.1 calls this cap "6" and
	// flags it an Open Question whether it's a guard or a bug; kept
	// configurable per that note).
	MacroExpansionDepth int
}

// Default returns the zero-config fallback: the current directory as the
// sole root, no extra include directories, no exclusions. The core must
// never require a config file to operate, mirroring config.Config's
// built-in defaults in the teacher.
func Default() *Config {
	cwd, err := filepath.Abs(".")
	if err != nil {
		cwd = "."
	}
	return &Config{
		Roots:               []string{cwd},
		GlobalIncludeDirs:   nil,
		ProjectIncludeDirs:  nil,
		Exclude:             defaultExclusions(),
		MacroExpansionDepth: 6,
	}
}

func defaultExclusions() []string {
	return []string{
		"**/.git/**",
		"**/node_modules/**",
		"**/.spcache/**",
	}
}

// WithRoot returns a copy of cfg with an additional absolute project root
// and its conventional `include/` subdirectory added to ProjectIncludeDirs,
// matching the SourceMod plugin layout (`scripting/*.sp` next to
// `scripting/include/*.inc`).
func (c *Config) WithRoot(root string) *Config {
	clone := *c
	abs, err := filepath.Abs(root)
	if err != nil {
		abs = root
	}
	clone.Roots = append(append([]string{}, c.Roots...), abs)
	clone.ProjectIncludeDirs = append(append([]string{}, c.ProjectIncludeDirs...), filepath.Join(abs, "include"))
	return &clone
}
