package itemtree

import (
	"fmt"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
)

// MacroInput is the minimal view of a preprocessor.Macro the item tree
// needs to mint a Macro item and a MacroId for the resolver's value
// namespace; kept untyped relative to internal/preprocessor so this
// package doesn't import macro-expansion internals it never touches.
type MacroInput struct {
	Name         string
	IsFunctional bool
}

// Build lowers a parsed file (cst) plus the macros it defines into an
// ItemTree, interning every declaration's stable ID through interner.
// Declaration order in cst.Decls becomes TopLevel order (spec.md §4.2).
func Build(file ids.FileID, cst *syntax.File, macros []MacroInput, interner *ids.Interner) *ItemTree {
	b := &builder{tree: newItemTree(file), file: file, interner: interner}
	for _, d := range cst.Decls {
		b.addTopLevel(d)
	}
	for i, m := range macros {
		loc := ids.Loc{Container: ids.FileContainer(file), Index: uint32(i)}
		id := interner.InternMacro(loc)
		b.tree.Macros[id] = &Macro{ID: id, Name: m.Name, IsFunctional: m.IsFunctional}
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemMacro, Macro: id})
	}
	return b.tree
}

type builder struct {
	tree     *ItemTree
	file     ids.FileID
	interner *ids.Interner

	funcIdx int
	varIdx  int
	esIdx   int
	enumIdx int
	mmIdx   int
	tdIdx   int
	tsIdx   int
	ftIdx   int
	feIdx   int
	stIdx   int
}

func (b *builder) containerLoc(idx uint32) ids.Loc {
	return ids.Loc{Container: ids.FileContainer(b.file), Index: idx}
}

func (b *builder) addTopLevel(d syntax.Decl) {
	switch d.Kind {
	case syntax.DeclFunction:
		id := b.lowerFunction(d, 0)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemFunction, Function: id})
	case syntax.DeclVariable:
		id := b.lowerVariable(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemVariable, Variable: id})
	case syntax.DeclEnumStruct:
		id := b.lowerEnumStruct(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemEnumStruct, EnumStruct: id})
	case syntax.DeclEnum:
		id := b.lowerEnum(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemEnum, Enum: id})
	case syntax.DeclMethodmap:
		id := b.lowerMethodmap(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemMethodmap, Methodmap: id})
	case syntax.DeclTypedef:
		id := b.lowerTypedef(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemTypedef, Typedef: id})
	case syntax.DeclTypeset:
		id := b.lowerTypeset(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemTypeset, Typeset: id})
	case syntax.DeclFunctag:
		id := b.lowerFunctag(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemFunctag, Functag: id})
	case syntax.DeclFuncenum:
		id := b.lowerFuncenum(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemFuncenum, Funcenum: id})
	case syntax.DeclStruct:
		id := b.lowerStruct(d)
		b.tree.TopLevel = append(b.tree.TopLevel, FileItem{Kind: ItemStruct, Struct: id})
	}
}

func (b *builder) lowerFunction(d syntax.Decl, owner ids.MethodmapID) ids.FunctionID {
	loc := b.containerLoc(uint32(b.funcIdx))
	b.funcIdx++
	id := b.interner.InternFunction(loc)
	b.tree.Functions[id] = &Function{
		ID: id, Name: d.Name, Range: d.Range, Head: d.Head,
		ReturnType: d.ReturnType, Params: paramsFrom(d.Params),
		Kind: d.FuncKind, Visibility: d.Visibility, Special: d.Special,
		HasBody: d.Body != nil, Body: d.Body, OwnerMethodmap: owner,
		Deprecated: d.Deprecated, DeprecatedText: d.DeprecatedText,
	}
	return id
}

func (b *builder) lowerVariable(d syntax.Decl) ids.VariableID {
	loc := b.containerLoc(uint32(b.varIdx))
	b.varIdx++
	id := b.interner.InternVariable(loc)
	b.tree.Variables[id] = &Variable{
		ID: id, Name: d.Name, Range: d.Range, TypeRef: d.TypeRef,
		IsConst: d.IsConst, Dimensions: d.Dimensions,
		Deprecated: d.Deprecated, DeprecatedText: d.DeprecatedText,
	}
	return id
}

func (b *builder) lowerEnumStruct(d syntax.Decl) ids.EnumStructID {
	loc := b.containerLoc(uint32(b.esIdx))
	b.esIdx++
	id := b.interner.InternEnumStruct(loc)
	es := &EnumStruct{ID: id, Name: d.Name, Range: d.Range}
	fieldIdx := uint32(0)
	for _, child := range d.Children {
		switch child.Kind {
		case syntax.DeclEnumStructField:
			es.Fields = append(es.Fields, EnumStructField{
				ID: ids.LocalFieldID(fieldIdx), Name: child.Name, Range: child.Range,
				TypeRef: child.TypeRef, Dimensions: child.Dimensions,
			})
			fieldIdx++
		case syntax.DeclFunction:
			fnID := b.lowerFunction(child, 0)
			es.Methods = append(es.Methods, fnID)
		}
	}
	b.tree.EnumStructs[id] = es
	return id
}

func (b *builder) lowerEnum(d syntax.Decl) ids.EnumID {
	loc := b.containerLoc(uint32(b.enumIdx))
	b.enumIdx++
	id := b.interner.InternEnum(loc)
	name := d.Name
	if d.IsUnnamed {
		// spec.md §4.2: "an unnamed enum becomes unnamed_enum_<ast_id>".
		// The declaration's own byte offset stands in for an AST node id:
		// stable within one parse of this file, unique per declaration.
		name = fmt.Sprintf("unnamed_enum_%d", d.Range.Start)
	}
	e := &Enum{ID: id, Name: name, IsUnnamed: d.IsUnnamed, Range: d.Range}
	for vi, child := range d.Children {
		vloc := ids.Loc{Container: ids.ContainerID{Kind: ids.ContainerEnum, Enum: id}, Index: uint32(vi)}
		vid := b.interner.InternVariant(vloc)
		b.tree.Variants[vid] = &Variant{ID: vid, Name: child.Name, Range: child.Range}
		e.Variants = append(e.Variants, vid)
	}
	b.tree.Enums[id] = e
	return id
}

func (b *builder) lowerMethodmap(d syntax.Decl) ids.MethodmapID {
	loc := b.containerLoc(uint32(b.mmIdx))
	b.mmIdx++
	id := b.interner.InternMethodmap(loc)
	mm := &Methodmap{ID: id, Name: d.Name, Range: d.Range, Inherits: d.Inherits}
	for _, child := range d.Children {
		switch child.Kind {
		case syntax.DeclFunction:
			fnID := b.lowerFunction(child, id)
			mm.Methods = append(mm.Methods, fnID)
		case syntax.DeclProperty:
			propID := b.lowerProperty(child, id)
			mm.Properties = append(mm.Properties, propID)
		}
	}
	b.tree.Methodmaps[id] = mm
	return id
}

func (b *builder) lowerProperty(d syntax.Decl, owner ids.MethodmapID) ids.PropertyID {
	ploc := ids.Loc{Container: ids.ContainerID{Kind: ids.ContainerMethodmap, Methodmap: owner}, Index: uint32(len(b.tree.Properties))}
	id := b.interner.InternProperty(ploc)
	prop := &Property{ID: id, Name: d.Name, Range: d.Range, PropertyType: d.PropertyType}
	for _, acc := range d.Children {
		// Getters/setters become synthetic Function items named "get"/
		// "set", owned by the property's methodmap (spec.md §4.2).
		fnID := b.lowerFunction(acc, owner)
		switch acc.Name {
		case "get":
			prop.Getter = &fnID
		case "set":
			prop.Setter = &fnID
		}
	}
	b.tree.Properties[id] = prop
	return id
}

func (b *builder) lowerTypedef(d syntax.Decl) ids.TypedefID {
	loc := b.containerLoc(uint32(b.tdIdx))
	b.tdIdx++
	id := b.interner.InternTypedef(loc)
	b.tree.Typedefs[id] = &Typedef{ID: id, Name: d.Name, Range: d.Range, ReturnType: d.ReturnType, Params: paramsFrom(d.Params)}
	return id
}

func (b *builder) lowerTypeset(d syntax.Decl) ids.TypesetID {
	loc := b.containerLoc(uint32(b.tsIdx))
	b.tsIdx++
	id := b.interner.InternTypeset(loc)
	ts := &Typeset{ID: id, Name: d.Name, Range: d.Range}
	for _, child := range d.Children {
		ts.Members = append(ts.Members, TypesetMember{ReturnType: child.ReturnType, Params: paramsFrom(child.Params), Range: child.Range})
	}
	b.tree.Typesets[id] = ts
	return id
}

func (b *builder) lowerFunctag(d syntax.Decl) ids.FunctagID {
	loc := b.containerLoc(uint32(b.ftIdx))
	b.ftIdx++
	id := b.interner.InternFunctag(loc)
	b.tree.Functags[id] = &Functag{ID: id, Name: d.Name, Range: d.Range, ReturnType: d.ReturnType, Params: paramsFrom(d.Params)}
	return id
}

func (b *builder) lowerFuncenum(d syntax.Decl) ids.FuncenumID {
	loc := b.containerLoc(uint32(b.feIdx))
	b.feIdx++
	id := b.interner.InternFuncenum(loc)
	fe := &Funcenum{ID: id, Name: d.Name, Range: d.Range}
	for _, child := range d.Children {
		fe.Members = append(fe.Members, FuncenumMember{Name: child.Name, ReturnType: child.ReturnType, Params: paramsFrom(child.Params), Range: child.Range})
	}
	b.tree.Funcenums[id] = fe
	return id
}

func (b *builder) lowerStruct(d syntax.Decl) ids.StructID {
	loc := b.containerLoc(uint32(b.stIdx))
	b.stIdx++
	id := b.interner.InternStruct(loc)
	st := &Struct{ID: id, Name: d.Name, Range: d.Range}
	for fi, child := range d.Children {
		st.Fields = append(st.Fields, StructField{
			ID: ids.LocalStructFieldID(fi), Name: child.Name, Range: child.Range,
			TypeRef: child.TypeRef, Dimensions: child.Dimensions,
		})
	}
	b.tree.Structs[id] = st
	return id
}
