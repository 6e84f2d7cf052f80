// Package dataqueries is component C7: per-item semantic data computed
// from item-tree entries, memoized on the item's own ID (spec.md §4.4).
// Grounded on original_source/crates/hir-def/src/data.rs for the exact
// per-kind data shape and the methodmap inheritance-merge algorithm, and
// on the teacher's internal/cache.MetricsCache for the memoization idiom:
// one sync.Map per cached kind, lock-free reads, compute-once-on-miss.
package dataqueries

import (
	"sync"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
)

// ParamData mirrors itemtree.Param; kept as a distinct type so this
// package's public surface doesn't leak itemtree's internal Range field
// to every query consumer that only wants signature shape.
type ParamData struct {
	Name       string
	TypeRef    string
	HasDefault bool
	IsRest     bool
	IsConst    bool
}

func paramData(in []itemtree.Param) []ParamData {
	out := make([]ParamData, len(in))
	for i, p := range in {
		out[i] = ParamData{Name: p.Name, TypeRef: p.TypeRef, HasDefault: p.HasDefault, IsRest: p.IsRest, IsConst: p.IsConst}
	}
	return out
}

// FunctionData is one function/forward/native's computed semantic data
// (spec.md §4.4: "Collect ParamData, return type, kind, visibility flags,
// special, deprecated").
type FunctionData struct {
	ID             ids.FunctionID
	Name           string
	Params         []ParamData
	ReturnType     string
	Kind           syntax.FuncKind
	Visibility     syntax.Visibility
	Special        syntax.Special
	OwnerMethodmap ids.MethodmapID
	Deprecated     bool
	DeprecatedText string
}

// DeprecationReason reports the free-text #pragma deprecated message, if
// any (SPEC_FULL.md §3.1).
func (f *FunctionData) DeprecationReason() (string, bool) {
	if !f.Deprecated {
		return "", false
	}
	return f.DeprecatedText, true
}

// UnresolvedInherit is emitted on a MethodmapData whose `inherits` name
// didn't resolve to a methodmap at all (Exists: false) or resolved to a
// non-methodmap item (Exists: true) — spec.md §4.4.
type UnresolvedInherit struct {
	Exists bool
}

// MemberKind discriminates one MethodmapItem.
type MemberKind uint8

const (
	MemberFunction MemberKind = iota
	MemberProperty
)

// MethodmapItem is one entry of a MethodmapData's flattened member arena,
// tagged IsLocal to distinguish a member declared directly on this
// methodmap from one copied down from an ancestor.
type MethodmapItem struct {
	Kind     MemberKind
	Name     string
	IsLocal  bool
	Function *itemtree.Function
	Property *itemtree.Property
}

// MethodmapData is one methodmap's computed semantic data: its own and
// inherited members flattened into one arena, name-indexed with local
// members overriding inherited ones (spec.md §4.4).
type MethodmapData struct {
	ID                ids.MethodmapID
	Name              string
	Inherits          string
	InheritsResolved  ids.MethodmapID // zero if unresolved
	UnresolvedInherit *UnresolvedInherit
	Items             []MethodmapItem
	ItemsMap          map[string]int // name -> index into Items
}

// EnumStructData lifts an EnumStruct one-to-one from the item tree
// (spec.md §4.4).
type EnumStructData struct {
	ID      ids.EnumStructID
	Name    string
	Fields  []itemtree.EnumStructField
	Methods []ids.FunctionID
}

// EnumData lifts an Enum one-to-one.
type EnumData struct {
	ID        ids.EnumID
	Name      string
	IsUnnamed bool
	Variants  []ids.VariantID
}

// VariantData lifts a Variant one-to-one.
type VariantData struct {
	ID   ids.VariantID
	Name string
}

// TypesetData lifts a Typeset one-to-one; each member is a full signature
// (SPEC_FULL.md §3.1), not a bare name.
type TypesetData struct {
	ID      ids.TypesetID
	Name    string
	Members []itemtree.TypesetMember
}

// FuncenumData lifts a Funcenum one-to-one.
type FuncenumData struct {
	ID      ids.FuncenumID
	Name    string
	Members []itemtree.FuncenumMember
}

// StructData lifts a Struct one-to-one.
type StructData struct {
	ID     ids.StructID
	Name   string
	Fields []itemtree.StructField
}

// TypedefData lifts a Typedef one-to-one.
type TypedefData struct {
	ID         ids.TypedefID
	Name       string
	ReturnType string
	Params     []ParamData
}

// FunctagData lifts a Functag one-to-one.
type FunctagData struct {
	ID         ids.FunctagID
	Name       string
	ReturnType string
	Params     []ParamData
}

// PropertyData lifts a Property one-to-one, exposing its accessor
// FunctionIDs rather than the itemtree.Property struct directly.
type PropertyData struct {
	ID           ids.PropertyID
	Name         string
	PropertyType string
	Getter       *ids.FunctionID
	Setter       *ids.FunctionID
}

// GlobalData wraps a file-scope Variable behind ids.GlobalID, the
// separate namespace spec.md's resolver ValueNs names distinctly from
// VariableID (see DESIGN.md's Open Question note on this split).
type GlobalData struct {
	ID             ids.GlobalID
	Variable       ids.VariableID
	Name           string
	TypeRef        string
	IsConst        bool
	Dimensions     []int
	Deprecated     bool
	DeprecatedText string
}

// Files gives dataqueries read access to another file's item tree, needed
// only for methodmap inheritance (the base may live in an included file).
// Reuses resolver.FileProvider's shape rather than declaring a duplicate
// interface.
type Files = resolver.FileProvider

// Store memoizes every data query on the item's own ID (spec.md §4.4),
// one sync.Map per kind, grounded on the teacher's MetricsCache
// lock-free-read/compute-once-on-miss idiom. A Store is cheap to discard
// and rebuild wholesale when a file's item tree is recomputed — the
// query engine (C11) owns that lifetime decision, this package only
// provides the caching primitive.
type Store struct {
	Files    Files
	Interner *ids.Interner
	Resolver *resolver.Resolver

	functions   sync.Map // ids.FunctionID -> *FunctionData
	methodmaps  sync.Map // ids.MethodmapID -> *MethodmapData
	enumStructs sync.Map
	enums       sync.Map
	variants    sync.Map
	typesets    sync.Map
	funcenums   sync.Map
	structs     sync.Map
	typedefs    sync.Map
	functags    sync.Map
	properties  sync.Map
	globals     sync.Map
}

// NewStore builds a Store backed by files (for cross-file methodmap
// inheritance), interner (to locate a methodmap's owning file) and a
// resolver (to resolve `inherits` names).
func NewStore(files Files, interner *ids.Interner, r *resolver.Resolver) *Store {
	return &Store{Files: files, Interner: interner, Resolver: r}
}

// FunctionData returns fn's memoized semantic data.
func (s *Store) FunctionData(fn *itemtree.Function) *FunctionData {
	if v, ok := s.functions.Load(fn.ID); ok {
		return v.(*FunctionData)
	}
	data := &FunctionData{
		ID: fn.ID, Name: fn.Name, Params: paramData(fn.Params), ReturnType: fn.ReturnType,
		Kind: fn.Kind, Visibility: fn.Visibility, Special: fn.Special, OwnerMethodmap: fn.OwnerMethodmap,
		Deprecated: fn.Deprecated, DeprecatedText: fn.DeprecatedText,
	}
	actual, _ := s.functions.LoadOrStore(fn.ID, data)
	return actual.(*FunctionData)
}

// MethodmapData returns mm's memoized semantic data, resolving its
// `inherits` name (if any) through s.Resolver and flattening the
// ancestor's members (excluding constructor/destructor) ahead of mm's own
// local members.
func (s *Store) MethodmapData(file ids.FileID, tree *itemtree.ItemTree, mm *itemtree.Methodmap) *MethodmapData {
	if v, ok := s.methodmaps.Load(mm.ID); ok {
		return v.(*MethodmapData)
	}
	data := s.computeMethodmapData(file, tree, mm, map[ids.MethodmapID]bool{})
	actual, _ := s.methodmaps.LoadOrStore(mm.ID, data)
	return actual.(*MethodmapData)
}

func (s *Store) computeMethodmapData(file ids.FileID, tree *itemtree.ItemTree, mm *itemtree.Methodmap, visiting map[ids.MethodmapID]bool) *MethodmapData {
	data := &MethodmapData{ID: mm.ID, Name: mm.Name, Inherits: mm.Inherits}
	visiting[mm.ID] = true

	var items []MethodmapItem
	if mm.Inherits != "" && s.Resolver != nil {
		res, ok := s.Resolver.ResolveIdent(resolver.Scope{File: file}, mm.Inherits)
		switch {
		case !ok:
			data.UnresolvedInherit = &UnresolvedInherit{Exists: false}
		case res.Kind != resolver.KindMethodmap:
			data.UnresolvedInherit = &UnresolvedInherit{Exists: true}
		case visiting[res.Methodmap]:
			// Inheritance cycle: treat as unresolved rather than recursing
			// forever. Not named in spec.md; original_source's resolver
			// has the same "can't inherit from yourself" guard implicitly
			// via its own memoization.
			data.UnresolvedInherit = &UnresolvedInherit{Exists: true}
		default:
			if baseItems, ok := s.inheritedItems(res.Methodmap, visiting); ok {
				data.InheritsResolved = res.Methodmap
				items = append(items, baseItems...)
			} else {
				data.UnresolvedInherit = &UnresolvedInherit{Exists: true}
			}
		}
	}

	for _, fid := range mm.Methods {
		fn := tree.Functions[fid]
		if fn == nil {
			continue
		}
		items = append(items, MethodmapItem{Kind: MemberFunction, Name: fn.Name, IsLocal: true, Function: fn})
	}
	for _, pid := range mm.Properties {
		p := tree.Properties[pid]
		if p == nil {
			continue
		}
		items = append(items, MethodmapItem{Kind: MemberProperty, Name: p.Name, IsLocal: true, Property: p})
	}

	data.Items = items
	data.ItemsMap = make(map[string]int, len(items))
	for i, it := range items {
		data.ItemsMap[it.Name] = i
	}
	return data
}

// inheritedItems resolves baseID's own member arena (recursively flattened
// with its own ancestors) and returns the subset a derived methodmap
// copies down: everything except constructor/destructor.
func (s *Store) inheritedItems(baseID ids.MethodmapID, visiting map[ids.MethodmapID]bool) ([]MethodmapItem, bool) {
	loc, ok := s.Interner.MethodmapLoc(baseID)
	if !ok {
		return nil, false
	}
	baseTree, ok := s.Files.ItemTree(loc.Container.File)
	if !ok {
		return nil, false
	}
	baseMM := baseTree.Methodmaps[baseID]
	if baseMM == nil {
		return nil, false
	}

	var baseData *MethodmapData
	if v, ok := s.methodmaps.Load(baseID); ok {
		baseData = v.(*MethodmapData)
	} else {
		baseData = s.computeMethodmapData(loc.Container.File, baseTree, baseMM, visiting)
		s.methodmaps.LoadOrStore(baseID, baseData)
	}

	out := make([]MethodmapItem, 0, len(baseData.Items))
	for _, it := range baseData.Items {
		if it.Kind == MemberFunction && (it.Function.Special == syntax.SpecialConstructor || it.Function.Special == syntax.SpecialDestructor) {
			continue
		}
		it.IsLocal = false
		out = append(out, it)
	}
	return out, true
}

// EnumStructData returns es's memoized semantic data.
func (s *Store) EnumStructData(es *itemtree.EnumStruct) *EnumStructData {
	if v, ok := s.enumStructs.Load(es.ID); ok {
		return v.(*EnumStructData)
	}
	data := &EnumStructData{ID: es.ID, Name: es.Name, Fields: es.Fields, Methods: es.Methods}
	actual, _ := s.enumStructs.LoadOrStore(es.ID, data)
	return actual.(*EnumStructData)
}

// EnumData returns e's memoized semantic data.
func (s *Store) EnumData(e *itemtree.Enum) *EnumData {
	if v, ok := s.enums.Load(e.ID); ok {
		return v.(*EnumData)
	}
	data := &EnumData{ID: e.ID, Name: e.Name, IsUnnamed: e.IsUnnamed, Variants: e.Variants}
	actual, _ := s.enums.LoadOrStore(e.ID, data)
	return actual.(*EnumData)
}

// VariantData returns v's memoized semantic data.
func (s *Store) VariantData(v *itemtree.Variant) *VariantData {
	if cached, ok := s.variants.Load(v.ID); ok {
		return cached.(*VariantData)
	}
	data := &VariantData{ID: v.ID, Name: v.Name}
	actual, _ := s.variants.LoadOrStore(v.ID, data)
	return actual.(*VariantData)
}

// TypesetData returns ts's memoized semantic data.
func (s *Store) TypesetData(ts *itemtree.Typeset) *TypesetData {
	if v, ok := s.typesets.Load(ts.ID); ok {
		return v.(*TypesetData)
	}
	data := &TypesetData{ID: ts.ID, Name: ts.Name, Members: ts.Members}
	actual, _ := s.typesets.LoadOrStore(ts.ID, data)
	return actual.(*TypesetData)
}

// FuncenumData returns fe's memoized semantic data.
func (s *Store) FuncenumData(fe *itemtree.Funcenum) *FuncenumData {
	if v, ok := s.funcenums.Load(fe.ID); ok {
		return v.(*FuncenumData)
	}
	data := &FuncenumData{ID: fe.ID, Name: fe.Name, Members: fe.Members}
	actual, _ := s.funcenums.LoadOrStore(fe.ID, data)
	return actual.(*FuncenumData)
}

// StructData returns st's memoized semantic data.
func (s *Store) StructData(st *itemtree.Struct) *StructData {
	if v, ok := s.structs.Load(st.ID); ok {
		return v.(*StructData)
	}
	data := &StructData{ID: st.ID, Name: st.Name, Fields: st.Fields}
	actual, _ := s.structs.LoadOrStore(st.ID, data)
	return actual.(*StructData)
}

// TypedefData returns td's memoized semantic data.
func (s *Store) TypedefData(td *itemtree.Typedef) *TypedefData {
	if v, ok := s.typedefs.Load(td.ID); ok {
		return v.(*TypedefData)
	}
	data := &TypedefData{ID: td.ID, Name: td.Name, ReturnType: td.ReturnType, Params: paramData(td.Params)}
	actual, _ := s.typedefs.LoadOrStore(td.ID, data)
	return actual.(*TypedefData)
}

// FunctagData returns ft's memoized semantic data.
func (s *Store) FunctagData(ft *itemtree.Functag) *FunctagData {
	if v, ok := s.functags.Load(ft.ID); ok {
		return v.(*FunctagData)
	}
	data := &FunctagData{ID: ft.ID, Name: ft.Name, ReturnType: ft.ReturnType, Params: paramData(ft.Params)}
	actual, _ := s.functags.LoadOrStore(ft.ID, data)
	return actual.(*FunctagData)
}

// PropertyData returns p's memoized semantic data.
func (s *Store) PropertyData(p *itemtree.Property) *PropertyData {
	if v, ok := s.properties.Load(p.ID); ok {
		return v.(*PropertyData)
	}
	data := &PropertyData{ID: p.ID, Name: p.Name, PropertyType: p.PropertyType, Getter: p.Getter, Setter: p.Setter}
	actual, _ := s.properties.LoadOrStore(p.ID, data)
	return actual.(*PropertyData)
}

// GlobalData returns the memoized GlobalData for a file-scope variable,
// interning its GlobalID from the same Loc the variable itself was
// interned from so the two ID spaces stay in lockstep without a second
// arena to keep synchronized.
func (s *Store) GlobalData(v *itemtree.Variable) *GlobalData {
	loc, ok := s.Interner.VariableLoc(v.ID)
	if !ok {
		loc = ids.Loc{}
	}
	id := s.Interner.InternGlobal(loc)
	if cached, ok := s.globals.Load(id); ok {
		return cached.(*GlobalData)
	}
	data := &GlobalData{
		ID: id, Variable: v.ID, Name: v.Name, TypeRef: v.TypeRef, IsConst: v.IsConst,
		Dimensions: v.Dimensions, Deprecated: v.Deprecated, DeprecatedText: v.DeprecatedText,
	}
	actual, _ := s.globals.LoadOrStore(id, data)
	return actual.(*GlobalData)
}
