package query

import "errors"

var (
	// ErrUnknownFile is returned when a FileID has no corresponding VFS
	// record (e.g. it was interned by a caller that never opened the
	// file, or the file was since deleted).
	ErrUnknownFile = errors.New("query: unknown file")

	// ErrUnknownID is returned when an item ID resolves to a Loc via the
	// interner but the owning file's current item tree has no item at
	// that ID (stale ID from before an edit, or a bug upstream).
	ErrUnknownID = errors.New("query: unknown item id")

	// ErrAmbiguousProject is returned by ProjectSubgraph when the include
	// graph reports no single project root for the file: a .sp file
	// included by more than one other .sp file belongs to several projects.
	ErrAmbiguousProject = errors.New("query: file does not belong to a project")
)
