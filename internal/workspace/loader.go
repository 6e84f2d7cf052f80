// Package workspace is the disk-facing half of the VFS ingress spec.md
// §5 leaves unspecified: walking a project's source roots, filtering
// them through config.Excluder, and feeding the results through
// vfs.VFS.SetFileText/DeleteFile (spec.md §5's own ingress methods,
// unchanged). Grounded on the teacher's internal/indexing.FileScanner
// for the walk-and-filter shape, and on its FileWatcher for the
// fsnotify-driven follow-up in watcher.go.
package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/config"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/splog"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/vfs"
)

// sourceExtensions are the only file kinds the analysis core parses;
// anything else found under a root is skipped during the walk, the same
// restriction the teacher's FileScanner applies through its own
// extension allowlist (internal/indexing/pipeline_scanner.go).
var sourceExtensions = map[string]bool{
	".sp":  true,
	".inc": true,
}

// Load walks every root in cfg.Roots, skips paths cfg.Exclude matches,
// and loads every remaining .sp/.inc file's text into v. It returns the
// loaded file count.
func Load(ctx context.Context, v *vfs.VFS, cfg *config.Config) (int, error) {
	excluder := config.NewExcluder(cfg)
	loaded := 0

	for _, root := range cfg.Roots {
		err := filepath.WalkDir(root, func(path string, d os.DirEntry, walkErr error) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if walkErr != nil {
				splog.VFS("skip %s: %v", path, walkErr)
				return nil
			}
			if d.IsDir() {
				if excluder.Match(path) {
					return filepath.SkipDir
				}
				return nil
			}
			if !sourceExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if excluder.Match(path) {
				return nil
			}

			text, err := os.ReadFile(path)
			if err != nil {
				splog.VFS("read %s: %v", path, err)
				return nil
			}
			abs, err := filepath.Abs(path)
			if err != nil {
				abs = path
			}
			v.SetFileText(abs, string(text))
			loaded++
			return nil
		})
		if err != nil {
			return loaded, fmt.Errorf("walking root %s: %w", root, err)
		}
	}

	absRoots := make([]string, len(cfg.Roots))
	for i, r := range cfg.Roots {
		abs, err := filepath.Abs(r)
		if err != nil {
			abs = r
		}
		absRoots[i] = abs
	}
	v.SetRoots(absRoots)
	return loaded, nil
}
