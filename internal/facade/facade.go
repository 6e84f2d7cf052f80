// Package facade holds the LSP-facing compositions over internal/query's
// Database: completions, hover, goto-definition, references, rename,
// semantic tokens, document symbols, and call hierarchy (spec.md §6). It
// formats query results into position/range data an external LSP layer
// would serialize; it never speaks JSON-RPC or any wire protocol itself.
// Grounded on the teacher's internal/core/symbol_location_index.go for
// the Position/Range naming, and on internal/mcp/symbol_type_resolver.go
// for the "resolve an identifier, then describe it in prose" shape hover
// and completions both reuse.
package facade

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/body"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
)

// Position is a line/column coordinate, 0-based in both fields (matching
// LSP's own convention, which every facade consumer eventually targets).
type Position struct {
	Line   int
	Column int
}

// Range is a half-open [Start, End) span expressed as Positions.
type Range struct {
	Start Position
	End   Position
}

// Location pins a Range to the file it occurs in.
type Location struct {
	File  ids.FileID
	Range Range
}

// rangeOf converts a byte-offset lexer.Range into a facade.Range by
// looking up each endpoint's line/column in the owning file's snapshot.
func rangeOf(db *query.Database, file ids.FileID, r lexer.Range) Range {
	snap := db.VFS.Snapshot()
	rec, ok := snap.File(file)
	if !ok {
		return Range{}
	}
	sl, sc := rec.LineCol(r.Start)
	el, ec := rec.LineCol(r.End)
	return Range{Start: Position{Line: sl, Column: sc}, End: Position{Line: el, Column: ec}}
}

func locationOf(db *query.Database, file ids.FileID, r lexer.Range) Location {
	return Location{File: file, Range: rangeOf(db, file, r)}
}

// offsetAt turns a Position back into a byte offset, the inverse of
// rangeOf's per-endpoint lookup; every facade entry point that accepts a
// cursor position calls this first.
func offsetAt(db *query.Database, file ids.FileID, pos Position) (int, bool) {
	snap := db.VFS.Snapshot()
	rec, ok := snap.File(file)
	if !ok || pos.Line < 0 || pos.Line >= len(rec.LineOffsets) {
		return 0, false
	}
	return int(rec.LineOffsets[pos.Line]) + pos.Column, true
}

// prefixAt returns the partial identifier immediately before offset in
// file's text, e.g. "Get" in "int x = Get|Client" (cursor at |). Used by
// completion.go to rank candidates against what the user has actually
// typed so far; returns "" when offset sits at a word boundary.
func prefixAt(db *query.Database, file ids.FileID, offset int) string {
	snap := db.VFS.Snapshot()
	rec, ok := snap.File(file)
	if !ok || offset < 0 || offset > len(rec.Text) {
		return ""
	}
	start := offset
	for start > 0 {
		c := rec.Text[start-1]
		if c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') {
			start--
			continue
		}
		break
	}
	return rec.Text[start:offset]
}

// declRange returns the best range to report for a top-level item: its
// name-only Head range when the item tracks one (functions), its full
// Range otherwise.
func declRange(item itemtree.FileItem, tree *itemtree.ItemTree) (lexer.Range, bool) {
	switch item.Kind {
	case itemtree.ItemFunction:
		if fn := tree.Functions[item.Function]; fn != nil {
			return fn.Head, true
		}
	case itemtree.ItemVariable:
		if v := tree.Variables[item.Variable]; v != nil {
			return v.Range, true
		}
	case itemtree.ItemEnumStruct:
		if es := tree.EnumStructs[item.EnumStruct]; es != nil {
			return es.Range, true
		}
	case itemtree.ItemEnum:
		if e := tree.Enums[item.Enum]; e != nil {
			return e.Range, true
		}
	case itemtree.ItemVariant:
		if v := tree.Variants[item.Variant]; v != nil {
			return v.Range, true
		}
	case itemtree.ItemMethodmap:
		if mm := tree.Methodmaps[item.Methodmap]; mm != nil {
			return mm.Range, true
		}
	case itemtree.ItemProperty:
		if p := tree.Properties[item.Property]; p != nil {
			return p.Range, true
		}
	case itemtree.ItemTypedef:
		if td := tree.Typedefs[item.Typedef]; td != nil {
			return td.Range, true
		}
	case itemtree.ItemTypeset:
		if ts := tree.Typesets[item.Typeset]; ts != nil {
			return ts.Range, true
		}
	case itemtree.ItemFunctag:
		if ft := tree.Functags[item.Functag]; ft != nil {
			return ft.Range, true
		}
	case itemtree.ItemFuncenum:
		if fe := tree.Funcenums[item.Funcenum]; fe != nil {
			return fe.Range, true
		}
	case itemtree.ItemStruct:
		if st := tree.Structs[item.Struct]; st != nil {
			return st.Range, true
		}
	}
	return lexer.Range{}, false
}

// enclosingFunction finds the function in tree whose body byte range
// contains offset, if any. Every body-relative facade operation
// (completions, hover/definition inside a block, call hierarchy) needs
// this to know which Body/SourceMap to lower and search.
func enclosingFunction(tree *itemtree.ItemTree, offset int) (*itemtree.Function, bool) {
	for _, fn := range tree.Functions {
		if fn.Body == nil {
			continue
		}
		if offset >= fn.Body.Start && offset <= fn.Body.End {
			return fn, true
		}
	}
	return nil, false
}

// loweredBody preprocesses file and lowers fn's body, the same two steps
// internal/query.Database.Infer performs internally; exposed here because
// completions and hover both need the block map Infer doesn't return.
func loweredBody(db *query.Database, file ids.FileID, fn *itemtree.Function) (*body.Body, *body.SourceMap, map[ids.BlockID]*defmap.BlockDefMap, error) {
	pre, err := db.PreprocessFile(file)
	if err != nil {
		return nil, nil, nil, err
	}
	b, sm, blocks := body.Lower(fn, pre.Text)
	return b, sm, blocks, nil
}

// exprAt finds the innermost expression in b whose source range contains
// offset, walking every arena entry once (an expression arena has no
// containment index; spec.md's Body is write-once-per-body and small
// enough that a linear scan is the right tradeoff, the same choice
// internal/itemtree/builder.go makes for lowering itself: one top-to-
// bottom walk, no interval tree).
func exprAt(b *body.Body, sm *body.SourceMap, offset int) (ids.ExprID, bool) {
	var best ids.ExprID
	bestLen := -1
	for i := range b.Exprs {
		id := ids.ExprID(i + 1)
		r, ok := sm.Ranges[id]
		if !ok || offset < r.Start || offset > r.End {
			continue
		}
		length := r.End - r.Start
		if bestLen < 0 || length < bestLen {
			best = id
			bestLen = length
		}
	}
	return best, best != 0
}

// blockChain walks a block's Parent links innermost-first, the same walk
// internal/body/infer.go's own blockChain performs during inference.
func blockChain(blocks map[ids.BlockID]*defmap.BlockDefMap, block ids.BlockID) []*defmap.BlockDefMap {
	var chain []*defmap.BlockDefMap
	for b, ok := blocks[block], true; ok; b, ok = blocks[b.Parent], blocks[b.Parent] != nil {
		if b == nil {
			break
		}
		chain = append(chain, b)
		if b.Parent == 0 {
			break
		}
	}
	return chain
}

// exprBlocks maps every expression in b to the block it lexically sits
// in, by walking the arena once from its root (mirroring the recursion
// internal/body/infer.go's own inference walk performs, but collecting
// block membership instead of a type). Needed because Expr only carries
// a Block id on its own ExprBlock entries; every other kind inherits its
// enclosing block from whichever statement contains it.
func exprBlocks(b *body.Body) map[ids.ExprID]ids.BlockID {
	out := map[ids.ExprID]ids.BlockID{}
	var walk func(id ids.ExprID, block ids.BlockID)
	walk = func(id ids.ExprID, block ids.BlockID) {
		if id == 0 {
			return
		}
		e := b.Expr(id)
		switch e.Kind {
		case body.ExprBlock:
			out[id] = block
			for _, s := range e.Statements {
				walk(s, e.Block)
			}
			return
		default:
			out[id] = block
		}
		switch e.Kind {
		case body.ExprComma:
			for _, it := range e.Items {
				walk(it, block)
			}
		case body.ExprNew:
			for _, a := range e.Args {
				walk(a, block)
			}
		case body.ExprFieldAccess, body.ExprScopeAccess:
			walk(e.Target, block)
		case body.ExprMethodCall:
			walk(e.Target, block)
			for _, a := range e.Args {
				walk(a, block)
			}
		case body.ExprUnaryOp:
			walk(e.Operand, block)
		case body.ExprBinaryOp:
			walk(e.Left, block)
			walk(e.Right, block)
		case body.ExprTernaryOp:
			walk(e.Cond, block)
			walk(e.Then, block)
			walk(e.Else, block)
		case body.ExprViewAs:
			walk(e.Inner, block)
		case body.ExprCall:
			walk(e.Callee, block)
			for _, a := range e.Args {
				walk(a, block)
			}
		case body.ExprBinding:
			if e.HasInit {
				walk(e.Init, block)
			}
		}
	}
	walk(b.Root, 0)
	return out
}

// scopeAt builds the resolver.Scope visible at block inside fn, excluding
// methodmap/enum-struct member lookup (the facade resolves `this`-scoped
// access through inference's AttributeResolutions/MethodResolutions
// instead, see hover.go and definition.go).
func scopeAt(file ids.FileID, fn *itemtree.Function, blocks map[ids.BlockID]*defmap.BlockDefMap, block ids.BlockID) resolver.Scope {
	return resolver.Scope{File: file, Blocks: blockChain(blocks, block), Params: fn.Params}
}
