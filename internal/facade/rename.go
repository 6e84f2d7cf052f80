package facade

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
)

// TextEdit replaces whatever text Location covers with NewText.
type TextEdit struct {
	Location Location
	NewText  string
}

// WorkspaceEdit is the set of edits a rename produces, possibly spanning
// several files in the include closure.
type WorkspaceEdit struct {
	Edits []TextEdit
}

// RenameAt answers a rename request at pos in file (spec.md §6's rename
// facade): it is references.go's result turned into replacement text,
// with no resolution logic of its own.
func RenameAt(db *query.Database, file ids.FileID, pos Position, newName string) (*WorkspaceEdit, error) {
	locs, err := ReferencesAt(db, file, pos)
	if err != nil {
		return nil, err
	}
	if len(locs) == 0 {
		return nil, nil
	}
	edits := make([]TextEdit, len(locs))
	for i, loc := range locs {
		edits[i] = TextEdit{Location: loc, NewText: newName}
	}
	return &WorkspaceEdit{Edits: edits}, nil
}
