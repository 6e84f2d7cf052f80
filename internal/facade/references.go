package facade

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/body"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
)

// ReferencesAt answers a find-references request at pos in file (spec.md
// §6's references facade): resolves whatever is under the cursor, then
// scans every function body in the project's include closure for
// identifiers that resolve to the same declaration.
func ReferencesAt(db *query.Database, file ids.FileID, pos Position) ([]Location, error) {
	target, ok, err := resolveAt(db, file, pos)
	if err != nil || !ok {
		return nil, err
	}

	out, err := locationsForResolution(db, target)
	if err != nil {
		return nil, err
	}

	sub, err := db.ProjectSubgraph(file)
	if err != nil {
		return nil, err
	}

	res, err := db.Resolver()
	if err != nil {
		return nil, err
	}

	for _, f := range sub.Files {
		tree, ok := db.ItemTree(f)
		if !ok {
			continue
		}
		for _, fn := range tree.Functions {
			if fn.Body == nil {
				continue
			}
			b, sm, blocks, err := loweredBody(db, f, fn)
			if err != nil {
				continue
			}
			eb := exprBlocks(b)
			for i := range b.Exprs {
				exprID := ids.ExprID(i + 1)
				e := b.Expr(exprID)
				if e.Kind != body.ExprIdent {
					continue
				}
				scope := scopeAt(f, fn, blocks, eb[exprID])
				candidate, ok := res.ResolveIdent(scope, e.Ident)
				if !ok || !sameResolution(candidate, target) {
					continue
				}
				if r, ok := sm.Ranges[exprID]; ok {
					out = append(out, locationOf(db, f, r))
				}
			}
		}
	}
	return out, nil
}

// resolveAt resolves whatever is under the cursor, whether it sits inside
// a function body (an identifier expression) or names a top-level
// declaration directly.
func resolveAt(db *query.Database, file ids.FileID, pos Position) (resolver.Resolution, bool, error) {
	offset, ok := offsetAt(db, file, pos)
	if !ok {
		return resolver.Resolution{}, false, query.ErrUnknownFile
	}
	tree, ok := db.ItemTree(file)
	if !ok {
		return resolver.Resolution{}, false, query.ErrUnknownFile
	}

	if fn, ok := enclosingFunction(tree, offset); ok {
		b, sm, blocks, err := loweredBody(db, file, fn)
		if err != nil {
			return resolver.Resolution{}, false, err
		}
		exprID, ok := exprAt(b, sm, offset)
		if !ok {
			return resolver.Resolution{}, false, nil
		}
		e := b.Expr(exprID)
		if e.Kind != body.ExprIdent {
			return resolver.Resolution{}, false, nil
		}
		eb := exprBlocks(b)
		res, err := db.Resolver()
		if err != nil {
			return resolver.Resolution{}, false, err
		}
		scope := scopeAt(file, fn, blocks, eb[exprID])
		resolution, ok := res.ResolveIdent(scope, e.Ident)
		return resolution, ok, nil
	}

	for _, item := range tree.TopLevel {
		r, ok := declRange(item, tree)
		if !ok || offset < r.Start || offset > r.End {
			continue
		}
		if resolution, ok := resolutionForItem(item); ok {
			return resolution, true, nil
		}
	}
	return resolver.Resolution{}, false, nil
}

// resolutionForItem builds the resolver.Resolution that a top-level item
// would produce if some other identifier resolved to it, the inverse of
// locationsForResolution.
func resolutionForItem(item itemtree.FileItem) (resolver.Resolution, bool) {
	switch item.Kind {
	case itemtree.ItemFunction:
		return resolver.Resolution{Kind: resolver.KindFunction, Functions: []ids.FunctionID{item.Function}}, true
	case itemtree.ItemVariable:
		return resolver.Resolution{Kind: resolver.KindGlobal, Global: item.Variable}, true
	case itemtree.ItemMethodmap:
		return resolver.Resolution{Kind: resolver.KindMethodmap, Methodmap: item.Methodmap}, true
	case itemtree.ItemEnumStruct:
		return resolver.Resolution{Kind: resolver.KindEnumStruct, EnumStruct: item.EnumStruct}, true
	case itemtree.ItemEnum:
		return resolver.Resolution{Kind: resolver.KindEnum, Enum: item.Enum}, true
	}
	return resolver.Resolution{}, false
}

// sameResolution reports whether a and b name the same declaration.
// KindFunction compares by overlap rather than exact slice equality,
// since a's Functions may be a single overload while b's names the whole
// overload set (see Resolution's own doc comment on overloads).
func sameResolution(a, b resolver.Resolution) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case resolver.KindFunction:
		for _, x := range a.Functions {
			for _, y := range b.Functions {
				if x == y {
					return true
				}
			}
		}
		return false
	case resolver.KindGlobal:
		return a.Global == b.Global
	case resolver.KindMacro:
		return a.Macro == b.Macro
	case resolver.KindMethodmap:
		return a.Methodmap == b.Methodmap
	case resolver.KindEnumStruct:
		return a.EnumStruct == b.EnumStruct
	case resolver.KindEnum:
		return a.Enum == b.Enum
	case resolver.KindVariant:
		return a.Variant == b.Variant
	case resolver.KindTypedef:
		return a.Typedef == b.Typedef
	case resolver.KindTypeset:
		return a.Typeset == b.Typeset
	case resolver.KindFunctag:
		return a.Functag == b.Functag
	case resolver.KindFuncenum:
		return a.Funcenum == b.Funcenum
	}
	return false
}
