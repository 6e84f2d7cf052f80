package config

import (
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
)

// Excluder matches a path against Config.Exclude's doublestar patterns.
// Grounded on the teacher's use of bmatcuk/doublestar/v4 for watcher-side
// include/exclude matching (internal/indexing/watcher.go).
type Excluder struct {
	patterns []string
}

func NewExcluder(cfg *Config) *Excluder {
	return &Excluder{patterns: cfg.Exclude}
}

// Match reports whether path (any separator style) should be skipped by
// the VFS loader. Both the path as given and its slash-normalized form are
// tried, since doublestar patterns are always slash-separated.
func (e *Excluder) Match(path string) bool {
	slashed := filepath.ToSlash(path)
	for _, pat := range e.patterns {
		if ok, _ := doublestar.Match(pat, slashed); ok {
			return true
		}
	}
	return false
}
