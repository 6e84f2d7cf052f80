// Package pathutil provides utilities for converting between absolute and
// relative paths.
//
// Architecture Pattern:
// The analysis core keys every file by absolute path internally (VFS entries,
// interned FileIDs) for consistency and to avoid ambiguity across include
// directories. User-facing output — diagnostics, document symbols, the CLI's
// human-readable dump — should use workspace-relative paths for readability.
// This package is the conversion layer between those two representations.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to relative based on a root directory.
// Falls back to the original path if conversion fails or path is already relative.
//
// Examples:
//   - ToRelative("/home/user/project/src/main.sp", "/home/user/project") → "src/main.sp"
//   - ToRelative("/other/location/file.sp", "/home/user/project") → "/other/location/file.sp" (outside root)
//   - ToRelative("src/main.sp", "/home/user/project") → "src/main.sp" (already relative)
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}

	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		return absPath
	}

	if strings.HasPrefix(relPath, "..") {
		return absPath
	}

	return relPath
}

// ToRelativeAll converts every path in paths against rootDir, returning a new
// slice (the input is never mutated). Used at CLI output boundaries — e.g.
// dumping an include graph or a diagnostics list — where every File path
// needs the same rootDir applied.
func ToRelativeAll(paths []string, rootDir string) []string {
	if len(paths) == 0 {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = ToRelative(p, rootDir)
	}
	return out
}
