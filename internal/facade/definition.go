package facade

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/body"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
)

// DefinitionAt answers a goto-definition request at pos in file (spec.md
// §6's goto-definition facade): resolves the expression under the cursor
// inside a function body and returns its declaration site, wherever it
// lives in the include closure. A position outside every function body
// returns nil.
func DefinitionAt(db *query.Database, file ids.FileID, pos Position) ([]Location, error) {
	offset, ok := offsetAt(db, file, pos)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	tree, ok := db.ItemTree(file)
	if !ok {
		return nil, query.ErrUnknownFile
	}

	if fn, ok := enclosingFunction(tree, offset); ok {
		return definitionInBody(db, file, tree, fn, offset)
	}
	return nil, nil
}

func definitionInBody(db *query.Database, file ids.FileID, tree *itemtree.ItemTree, fn *itemtree.Function, offset int) ([]Location, error) {
	b, sm, blocks, err := loweredBody(db, file, fn)
	if err != nil {
		return nil, err
	}
	exprID, ok := exprAt(b, sm, offset)
	if !ok {
		return nil, nil
	}
	e := b.Expr(exprID)

	switch e.Kind {
	case body.ExprIdent:
		eb := exprBlocks(b)
		res, err := db.Resolver()
		if err != nil {
			return nil, err
		}
		scope := scopeAt(file, fn, blocks, eb[exprID])
		resolution, ok := res.ResolveIdent(scope, e.Ident)
		if !ok {
			return nil, nil
		}
		return locationsForResolution(db, resolution)
	case body.ExprFieldAccess, body.ExprMethodCall, body.ExprNew:
		inferred, err := db.Infer(fn.ID)
		if err != nil {
			return nil, err
		}
		if methodID, ok := inferred.MethodResolutions[exprID]; ok {
			return locationForFunction(db, methodID)
		}
		// Attribute resolutions (field/property) address a
		// LocalFieldID/PropertyID arena-local to their owning
		// methodmap/enum-struct, not a globally interned Loc, so there is
		// no cross-file declaration site to resolve independently of the
		// container already named in the field access itself.
		return nil, nil
	}
	return nil, nil
}

func locationForFunction(db *query.Database, id ids.FunctionID) ([]Location, error) {
	loc, ok := db.Interner.FunctionLoc(id)
	if !ok {
		return nil, query.ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	fn := tree.Functions[id]
	if fn == nil {
		return nil, query.ErrUnknownID
	}
	return []Location{locationOf(db, loc.Container.File, fn.Head)}, nil
}

func locationForVariable(db *query.Database, id ids.VariableID) ([]Location, error) {
	loc, ok := db.Interner.VariableLoc(id)
	if !ok {
		return nil, query.ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	v := tree.Variables[id]
	if v == nil {
		return nil, query.ErrUnknownID
	}
	return []Location{locationOf(db, loc.Container.File, v.Range)}, nil
}

func locationForMethodmap(db *query.Database, id ids.MethodmapID) ([]Location, error) {
	loc, ok := db.Interner.MethodmapLoc(id)
	if !ok {
		return nil, query.ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	mm := tree.Methodmaps[id]
	if mm == nil {
		return nil, query.ErrUnknownID
	}
	return []Location{locationOf(db, loc.Container.File, mm.Range)}, nil
}

func locationForEnumStruct(db *query.Database, id ids.EnumStructID) ([]Location, error) {
	loc, ok := db.Interner.EnumStructLoc(id)
	if !ok {
		return nil, query.ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	es := tree.EnumStructs[id]
	if es == nil {
		return nil, query.ErrUnknownID
	}
	return []Location{locationOf(db, loc.Container.File, es.Range)}, nil
}

func locationForEnum(db *query.Database, id ids.EnumID) ([]Location, error) {
	loc, ok := db.Interner.EnumLoc(id)
	if !ok {
		return nil, query.ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	e := tree.Enums[id]
	if e == nil {
		return nil, query.ErrUnknownID
	}
	return []Location{locationOf(db, loc.Container.File, e.Range)}, nil
}

func locationsForResolution(db *query.Database, res resolver.Resolution) ([]Location, error) {
	switch res.Kind {
	case resolver.KindFunction:
		var out []Location
		for _, fid := range res.Functions {
			locs, err := locationForFunction(db, fid)
			if err != nil {
				return nil, err
			}
			out = append(out, locs...)
		}
		return out, nil
	case resolver.KindGlobal:
		return locationForVariable(db, res.Global)
	case resolver.KindMethodmap:
		return locationForMethodmap(db, res.Methodmap)
	case resolver.KindEnumStruct:
		return locationForEnumStruct(db, res.EnumStruct)
	case resolver.KindEnum:
		return locationForEnum(db, res.Enum)
	}
	return nil, nil
}
