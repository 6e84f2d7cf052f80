package facade

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
)

// SymbolKind classifies a Symbol for a client's outline/icon rendering.
type SymbolKind uint8

const (
	SymbolFunction SymbolKind = iota
	SymbolVariable
	SymbolMethodmap
	SymbolEnumStruct
	SymbolEnum
	SymbolVariant
	SymbolProperty
	SymbolField
	SymbolTypedef
	SymbolTypeset
	SymbolFunctag
	SymbolFuncenum
	SymbolStruct
)

// Symbol is one entry in a file's document-symbol outline; Children holds
// a methodmap's methods and properties, an enum struct's fields and
// methods, or an enum's variants.
type Symbol struct {
	Name     string
	Kind     SymbolKind
	Range    Range
	Children []Symbol
}

// DocumentSymbols answers a document-symbols request for file (spec.md
// §6's document-symbols facade), walking only file's own top-level items
// (no include closure, no inherited methodmap/enum-struct members: those
// belong to the file that declares them).
func DocumentSymbols(db *query.Database, file ids.FileID) ([]Symbol, error) {
	tree, ok := db.ItemTree(file)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	var out []Symbol
	for _, item := range tree.TopLevel {
		if sym, ok := symbolForItem(db, file, item, tree); ok {
			out = append(out, sym)
		}
	}
	return out, nil
}

func symbolForItem(db *query.Database, file ids.FileID, item itemtree.FileItem, tree *itemtree.ItemTree) (Symbol, bool) {
	switch item.Kind {
	case itemtree.ItemFunction:
		fn := tree.Functions[item.Function]
		if fn == nil {
			return Symbol{}, false
		}
		return Symbol{Name: fn.Name, Kind: SymbolFunction, Range: rangeOf(db, file, fn.Range)}, true
	case itemtree.ItemVariable:
		v := tree.Variables[item.Variable]
		if v == nil {
			return Symbol{}, false
		}
		return Symbol{Name: v.Name, Kind: SymbolVariable, Range: rangeOf(db, file, v.Range)}, true
	case itemtree.ItemMethodmap:
		mm := tree.Methodmaps[item.Methodmap]
		if mm == nil {
			return Symbol{}, false
		}
		sym := Symbol{Name: mm.Name, Kind: SymbolMethodmap, Range: rangeOf(db, file, mm.Range)}
		for _, fid := range mm.Methods {
			if fn := tree.Functions[fid]; fn != nil {
				sym.Children = append(sym.Children, Symbol{Name: fn.Name, Kind: SymbolFunction, Range: rangeOf(db, file, fn.Range)})
			}
		}
		for _, pid := range mm.Properties {
			if p := tree.Properties[pid]; p != nil {
				sym.Children = append(sym.Children, Symbol{Name: p.Name, Kind: SymbolProperty, Range: rangeOf(db, file, p.Range)})
			}
		}
		return sym, true
	case itemtree.ItemEnumStruct:
		es := tree.EnumStructs[item.EnumStruct]
		if es == nil {
			return Symbol{}, false
		}
		sym := Symbol{Name: es.Name, Kind: SymbolEnumStruct, Range: rangeOf(db, file, es.Range)}
		for _, f := range es.Fields {
			sym.Children = append(sym.Children, Symbol{Name: f.Name, Kind: SymbolField, Range: rangeOf(db, file, f.Range)})
		}
		for _, fid := range es.Methods {
			if fn := tree.Functions[fid]; fn != nil {
				sym.Children = append(sym.Children, Symbol{Name: fn.Name, Kind: SymbolFunction, Range: rangeOf(db, file, fn.Range)})
			}
		}
		return sym, true
	case itemtree.ItemEnum:
		e := tree.Enums[item.Enum]
		if e == nil {
			return Symbol{}, false
		}
		sym := Symbol{Name: e.Name, Kind: SymbolEnum, Range: rangeOf(db, file, e.Range)}
		for _, vid := range e.Variants {
			if v := tree.Variants[vid]; v != nil {
				sym.Children = append(sym.Children, Symbol{Name: v.Name, Kind: SymbolVariant, Range: rangeOf(db, file, v.Range)})
			}
		}
		return sym, true
	case itemtree.ItemTypedef:
		if td := tree.Typedefs[item.Typedef]; td != nil {
			return Symbol{Name: td.Name, Kind: SymbolTypedef, Range: rangeOf(db, file, td.Range)}, true
		}
	case itemtree.ItemTypeset:
		if ts := tree.Typesets[item.Typeset]; ts != nil {
			return Symbol{Name: ts.Name, Kind: SymbolTypeset, Range: rangeOf(db, file, ts.Range)}, true
		}
	case itemtree.ItemFunctag:
		if ft := tree.Functags[item.Functag]; ft != nil {
			return Symbol{Name: ft.Name, Kind: SymbolFunctag, Range: rangeOf(db, file, ft.Range)}, true
		}
	case itemtree.ItemFuncenum:
		if fe := tree.Funcenums[item.Funcenum]; fe != nil {
			return Symbol{Name: fe.Name, Kind: SymbolFuncenum, Range: rangeOf(db, file, fe.Range)}, true
		}
	case itemtree.ItemStruct:
		st := tree.Structs[item.Struct]
		if st == nil {
			return Symbol{}, false
		}
		sym := Symbol{Name: st.Name, Kind: SymbolStruct, Range: rangeOf(db, file, st.Range)}
		for _, f := range st.Fields {
			sym.Children = append(sym.Children, Symbol{Name: f.Name, Kind: SymbolField, Range: rangeOf(db, file, f.Range)})
		}
		return sym, true
	}
	return Symbol{}, false
}
