package query

import (
	"path/filepath"
	"strings"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/preprocessor"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/vfs"
)

// includeResolver implements preprocessor.IncludeResolver against one VFS
// snapshot and the Database's configured include directories, grounded on
// the teacher's internal/indexing/include_resolver.go: quote form tries
// the including file's own directory, then ProjectIncludeDirs, then
// GlobalIncludeDirs; chevron form tries ProjectIncludeDirs, then
// GlobalIncludeDirs, then the including file's own directory. A name
// without a `.inc` or `.sp` suffix is tried bare, then with `.inc`, then
// with `.sp` appended (SourcePawn convention allows `#include <foo>` to
// mean `foo.inc`).
type includeResolver struct {
	db   *Database
	snap *vfs.Snapshot
}

func (r *includeResolver) Resolve(fromDir, name string, chevron bool) (preprocessor.FileInput, bool) {
	var dirs []string
	if !chevron {
		dirs = append(dirs, fromDir)
	}
	dirs = append(dirs, r.db.Config.ProjectIncludeDirs...)
	dirs = append(dirs, r.db.Config.GlobalIncludeDirs...)
	if chevron {
		dirs = append(dirs, fromDir)
	}

	candidates := []string{name}
	if !strings.HasSuffix(name, ".inc") && !strings.HasSuffix(name, ".sp") {
		candidates = append(candidates, name+".inc", name+".sp")
	}

	for _, dir := range dirs {
		for _, cand := range candidates {
			path := filepath.Join(dir, cand)
			if id, ok := r.snap.FileByPath(path); ok {
				rec, ok := r.snap.File(id)
				if !ok {
					continue
				}
				return preprocessor.FileInput{ID: id, Path: rec.Path, Text: rec.Text}, true
			}
		}
	}
	return preprocessor.FileInput{}, false
}
