// Package defmap is component C6: per-file (and per-block) name → def
// lookup tables built directly from an itemtree.ItemTree's top level.
// Grounded on spec.md §4.3 and on the teacher's internal/indexing name
// index (a plain map rebuilt from a flat record list, later entry wins on
// collision) — the same "no interval tree, no symbol table with scoping
// rules beyond last-write-wins" simplicity this layer needs, since
// diagnostics about redeclaration are explicitly out of scope here.
package defmap

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
)

// FileDefMap maps a file-level name to the item it resolves to. On a name
// collision (two top-level declarations sharing a name) the later
// declaration in source order wins, per spec.md §4.3 — this layer does not
// itself report the collision as a diagnostic.
type FileDefMap struct {
	File   ids.FileID
	ByName map[string]itemtree.FileItem
}

// Build walks tree.TopLevel in source order, so later entries naturally
// overwrite earlier ones in ByName.
func Build(tree *itemtree.ItemTree) *FileDefMap {
	dm := &FileDefMap{File: tree.File, ByName: make(map[string]itemtree.FileItem, len(tree.TopLevel))}
	for _, item := range tree.TopLevel {
		name := nameOf(tree, item)
		if name == "" {
			continue
		}
		dm.ByName[name] = item
		if item.Kind == itemtree.ItemEnum {
			registerVariants(tree, dm, item.Enum)
		}
	}
	return dm
}

// registerVariants makes every variant of enum directly resolvable by
// name, the same as a global (spec.md §4.6: VariantId is a ValueNs on its
// own footing, not reached only through its enum).
func registerVariants(tree *itemtree.ItemTree, dm *FileDefMap, enum ids.EnumID) {
	e := tree.Enums[enum]
	if e == nil {
		return
	}
	for _, vid := range e.Variants {
		v := tree.Variants[vid]
		if v == nil || v.Name == "" {
			continue
		}
		dm.ByName[v.Name] = itemtree.FileItem{Kind: itemtree.ItemVariant, Variant: vid}
	}
}

// Lookup returns the item bound to name, or ok=false if no top-level
// declaration in this file defines it.
func (dm *FileDefMap) Lookup(name string) (itemtree.FileItem, bool) {
	item, ok := dm.ByName[name]
	return item, ok
}

func nameOf(tree *itemtree.ItemTree, item itemtree.FileItem) string {
	switch item.Kind {
	case itemtree.ItemFunction:
		if fn := tree.Functions[item.Function]; fn != nil {
			return fn.Name
		}
	case itemtree.ItemVariable:
		if v := tree.Variables[item.Variable]; v != nil {
			return v.Name
		}
	case itemtree.ItemEnumStruct:
		if es := tree.EnumStructs[item.EnumStruct]; es != nil {
			return es.Name
		}
	case itemtree.ItemEnum:
		if e := tree.Enums[item.Enum]; e != nil {
			return e.Name
		}
	case itemtree.ItemMethodmap:
		if mm := tree.Methodmaps[item.Methodmap]; mm != nil {
			return mm.Name
		}
	case itemtree.ItemProperty:
		if p := tree.Properties[item.Property]; p != nil {
			return p.Name
		}
	case itemtree.ItemTypedef:
		if td := tree.Typedefs[item.Typedef]; td != nil {
			return td.Name
		}
	case itemtree.ItemTypeset:
		if ts := tree.Typesets[item.Typeset]; ts != nil {
			return ts.Name
		}
	case itemtree.ItemFunctag:
		if ft := tree.Functags[item.Functag]; ft != nil {
			return ft.Name
		}
	case itemtree.ItemFuncenum:
		if fe := tree.Funcenums[item.Funcenum]; fe != nil {
			return fe.Name
		}
	case itemtree.ItemStruct:
		if st := tree.Structs[item.Struct]; st != nil {
			return st.Name
		}
	case itemtree.ItemMacro:
		if m := tree.Macros[item.Macro]; m != nil {
			return m.Name
		}
	}
	return ""
}

// LocalRef names one local binding inside a block: a function parameter or
// a `declare`d block-local variable, addressed by internal/body's own
// expression-arena-relative id once a body is lowered.
type LocalRef struct {
	Name string
	Expr ids.ExprID // the declaring statement/expression in the owning body
}

// BlockDefMap is one block scope's local name table (spec.md §4.3: "Block
// scopes... get their own DefMap with only local variables"). Populated by
// internal/body while lowering a function body; kept here, not in
// internal/body, so internal/resolver can depend on the def-map shape
// without depending on body-lowering internals.
type BlockDefMap struct {
	Block  ids.BlockID
	Parent ids.BlockID // zero means "function's top-level block"
	ByName map[string]LocalRef
}

// Lookup returns the local bound to name in this block only (the caller's
// scope-stack walk handles falling through to Parent).
func (bm *BlockDefMap) Lookup(name string) (LocalRef, bool) {
	ref, ok := bm.ByName[name]
	return ref, ok
}
