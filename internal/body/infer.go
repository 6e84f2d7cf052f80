// Inference is the second half of component C10 (spec.md §4.7): one
// recursive traversal of a lowered Body that resolves `a.b` / `a.b()` /
// `new T(...)` against the methodmap/enum-struct member tables
// internal/dataqueries computes, recording the winning FieldId/PropertyId
// or FunctionId on the expressions that used them and collecting a
// diagnostic everywhere resolution fails. Grounded on
// original_source/crates/hir-ty/src/infer.rs for the resolution rules
// (no unification, no fixed point — a single top-down walk) and on
// internal/resolver's existing scope-stack walk for how an identifier
// turns into a ValueNs.
package body

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/dataqueries"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/sperrors"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/syntax"
)

// TypeKind discriminates an InferredType the way spec.md §3's TypeRef
// does: either a builtin primitive or a named methodmap/enum-struct/
// typedef-ish reference.
type TypeKind uint8

const (
	TypeUnknown TypeKind = iota
	TypeVoid
	TypeInt
	TypeBool
	TypeFloat
	TypeChar
	TypeString
	TypeName // a user-defined type; Name holds the identifier
)

// InferredType is the per-expression type spec.md §4.7 propagates.
type InferredType struct {
	Kind TypeKind
	Name string // populated only for TypeName
}

func primitiveType(name string) (InferredType, bool) {
	switch name {
	case "int":
		return InferredType{Kind: TypeInt}, true
	case "bool":
		return InferredType{Kind: TypeBool}, true
	case "float":
		return InferredType{Kind: TypeFloat}, true
	case "char":
		return InferredType{Kind: TypeChar}, true
	case "String", "const String":
		return InferredType{Kind: TypeString}, true
	case "void", "":
		return InferredType{Kind: TypeVoid}, true
	}
	return InferredType{}, false
}

func typeFromRef(ref string) InferredType {
	if t, ok := primitiveType(ref); ok {
		return t
	}
	return InferredType{Kind: TypeName, Name: ref}
}

// AttrKind discriminates an AttributeResolution.
type AttrKind uint8

const (
	AttrField AttrKind = iota
	AttrStructField
	AttrProperty
)

// AttributeResolution is what attribute_resolutions maps an ExprId to
// (spec.md §3: "FieldId|PropertyId").
type AttributeResolution struct {
	Kind         AttrKind
	Field        ids.LocalFieldID
	StructField  ids.LocalStructFieldID
	Property     ids.PropertyID
}

// InferenceResult is spec.md §3's InferenceResult: the two resolution
// maps plus collected diagnostics.
type InferenceResult struct {
	Function              ids.FunctionID
	AttributeResolutions  map[ids.ExprID]AttributeResolution
	MethodResolutions     map[ids.ExprID]ids.FunctionID
	Diagnostics           []error
}

// Files gives the inferrer read access to another file's item tree, the
// same narrow interface internal/resolver and internal/dataqueries both
// depend on rather than internal/query's Database directly.
type Files = resolver.FileProvider

// Inferrer runs one function body's inference pass (spec.md §4.7).
type Inferrer struct {
	File     ids.FileID
	Tree     *itemtree.ItemTree // the file's own item tree, for enum-struct method names
	Fn       *itemtree.Function
	Body     *Body
	Blocks   map[ids.BlockID]*defmap.BlockDefMap
	Resolver *resolver.Resolver
	Data     *dataqueries.Store

	result  *InferenceResult
	members func(name string) (resolver.MemberRef, bool)
}

// Infer runs the inference pass described in spec.md §4.7 over b and
// returns the populated InferenceResult.
func Infer(file ids.FileID, tree *itemtree.ItemTree, fn *itemtree.Function, b *Body, blocks map[ids.BlockID]*defmap.BlockDefMap, r *resolver.Resolver, data *dataqueries.Store) *InferenceResult {
	inf := &Inferrer{
		File: file, Tree: tree, Fn: fn, Body: b, Blocks: blocks, Resolver: r, Data: data,
		result: &InferenceResult{
			Function:             fn.ID,
			AttributeResolutions: map[ids.ExprID]AttributeResolution{},
			MethodResolutions:    map[ids.ExprID]ids.FunctionID{},
		},
	}
	inf.members = inf.buildMembers()
	if b.Root != 0 {
		inf.infer(b.Root, 0)
	}
	return inf.result
}

// buildMembers returns the `this`-scope member lookup for fn's owner, if
// any: a methodmap (fn.OwnerMethodmap) or an enum struct (found by
// scanning Tree.EnumStructs for one whose Methods lists fn.ID — the item
// tree has no back-reference the other direction, spec.md §4.2 never
// asked for one).
func (inf *Inferrer) buildMembers() func(name string) (resolver.MemberRef, bool) {
	if inf.Fn.OwnerMethodmap != 0 {
		mm := inf.Tree.Methodmaps[inf.Fn.OwnerMethodmap]
		if mm != nil {
			data := inf.Data.MethodmapData(inf.File, inf.Tree, mm)
			return func(name string) (resolver.MemberRef, bool) {
				idx, ok := data.ItemsMap[name]
				if !ok {
					return resolver.MemberRef{}, false
				}
				item := data.Items[idx]
				if item.Kind == dataqueries.MemberFunction {
					return resolver.MemberRef{IsFunction: true, Function: item.Function.ID}, true
				}
				return resolver.MemberRef{Property: item.Property.ID}, true
			}
		}
	}
	for _, es := range inf.Tree.EnumStructs {
		for _, mid := range es.Methods {
			if mid == inf.Fn.ID {
				esID := es.ID
				return func(name string) (resolver.MemberRef, bool) {
					cur := inf.Tree.EnumStructs[esID]
					for _, f := range cur.Fields {
						if f.Name == name {
							return resolver.MemberRef{Field: f.ID}, true
						}
					}
					for _, mid := range cur.Methods {
						if m := inf.Tree.Functions[mid]; m != nil && m.Name == name {
							return resolver.MemberRef{IsFunction: true, Function: mid}, true
						}
					}
					return resolver.MemberRef{}, false
				}
			}
		}
	}
	return nil
}

// blockChain walks a block's Parent links outward, innermost first, the
// shape resolver.Scope.Blocks expects.
func (inf *Inferrer) blockChain(block ids.BlockID) []*defmap.BlockDefMap {
	var chain []*defmap.BlockDefMap
	for block != 0 {
		bm, ok := inf.Blocks[block]
		if !ok {
			break
		}
		chain = append(chain, bm)
		block = bm.Parent
	}
	return chain
}

func (inf *Inferrer) scopeAt(block ids.BlockID) resolver.Scope {
	return resolver.Scope{File: inf.File, Blocks: inf.blockChain(block), Params: inf.Fn.Params, Members: inf.members}
}

// globalScope resolves a type name (as written in a type position, a
// `new T(...)` target, or a FieldAccess's container type) through file +
// include scope only, bypassing locals — SourcePawn type names are never
// shadowed by a block-local variable of the same name.
func (inf *Inferrer) globalScope() resolver.Scope {
	return resolver.Scope{File: inf.File}
}

func (inf *Inferrer) diag(err error) { inf.result.Diagnostics = append(inf.result.Diagnostics, err) }

// infer walks one expression, recording attribute/method resolutions and
// diagnostics, and returns its inferred type. block is the BlockID of the
// nearest enclosing ExprBlock, used to build the resolver scope for any
// Ident found directly inside it.
func (inf *Inferrer) infer(id ids.ExprID, block ids.BlockID) InferredType {
	e := inf.Body.Expr(id)
	switch e.Kind {
	case ExprMissing, ExprDecl:
		return InferredType{Kind: TypeUnknown}

	case ExprBlock:
		for _, s := range e.Statements {
			inf.infer(s, e.Block)
		}
		return InferredType{Kind: TypeVoid}

	case ExprComma:
		var last InferredType
		for _, it := range e.Items {
			last = inf.infer(it, block)
		}
		return last

	case ExprBinding:
		if e.HasInit {
			inf.infer(e.Init, block)
		}
		return typeFromRef(e.TypeRef)

	case ExprLiteral:
		switch e.LitKind {
		case LitInt:
			return InferredType{Kind: TypeInt}
		case LitBool:
			return InferredType{Kind: TypeBool}
		case LitFloat:
			return InferredType{Kind: TypeFloat}
		case LitChar:
			return InferredType{Kind: TypeChar}
		case LitString:
			return InferredType{Kind: TypeString}
		case LitNull:
			return InferredType{Kind: TypeVoid}
		}
		return InferredType{Kind: TypeUnknown}

	case ExprIdent:
		return inf.inferIdent(e.Ident, block)

	case ExprUnaryOp:
		return inf.infer(e.Operand, block)

	case ExprBinaryOp:
		left := inf.infer(e.Left, block)
		inf.infer(e.Right, block)
		return left

	case ExprTernaryOp:
		inf.infer(e.Cond, block)
		then := inf.infer(e.Then, block)
		inf.infer(e.Else, block)
		return then

	case ExprScopeAccess:
		inf.infer(e.Target, block)
		return InferredType{Kind: TypeUnknown}

	case ExprViewAs:
		inf.infer(e.Inner, block)
		return typeFromRef(e.TypeRef)

	case ExprCall:
		inf.infer(e.Callee, block)
		for _, a := range e.Args {
			inf.infer(a, block)
		}
		if callee := inf.Body.Expr(e.Callee); callee.Kind == ExprIdent {
			if res, ok := inf.Resolver.ResolveIdent(inf.scopeAt(block), callee.Ident); ok && res.Kind == resolver.KindFunction && len(res.Functions) > 0 {
				if fd := inf.functionData(res.Functions[0]); fd != nil {
					return typeFromRef(fd.ReturnType)
				}
			}
		}
		return InferredType{Kind: TypeUnknown}

	case ExprFieldAccess:
		return inf.inferFieldAccess(id, e, block)

	case ExprMethodCall:
		return inf.inferMethodCall(id, e, block)

	case ExprNew:
		return inf.inferNew(id, e, block)
	}
	return InferredType{Kind: TypeUnknown}
}

func (inf *Inferrer) inferIdent(name string, block ids.BlockID) InferredType {
	res, ok := inf.Resolver.ResolveIdent(inf.scopeAt(block), name)
	if !ok {
		return InferredType{Kind: TypeUnknown}
	}
	switch res.Kind {
	case resolver.KindFunction:
		if len(res.Functions) > 0 {
			if fd := inf.functionData(res.Functions[0]); fd != nil {
				return typeFromRef(fd.ReturnType)
			}
		}
	case resolver.KindGlobal:
		if gd := inf.globalData(res.Global); gd != nil {
			return typeFromRef(gd.TypeRef)
		}
	case resolver.KindMethodmap, resolver.KindEnumStruct, resolver.KindEnum, resolver.KindTypedef,
		resolver.KindTypeset, resolver.KindFunctag, resolver.KindFuncenum:
		return InferredType{Kind: TypeName, Name: name}
	case resolver.KindLocal:
		if res.LocalExpr != 0 {
			bound := inf.Body.Expr(res.LocalExpr)
			if bound.Kind == ExprBinding {
				return typeFromRef(bound.TypeRef)
			}
		}
		if res.LocalTypeRef != "" {
			return typeFromRef(res.LocalTypeRef)
		}
	}
	return InferredType{Kind: TypeUnknown}
}

func (inf *Inferrer) inferFieldAccess(id ids.ExprID, e Expr, block ids.BlockID) InferredType {
	targetType := inf.infer(e.Target, block)
	if targetType.Kind != TypeName {
		return InferredType{Kind: TypeUnknown}
	}
	container, ok := inf.resolveContainer(targetType.Name)
	if !ok {
		return InferredType{Kind: TypeUnknown}
	}
	switch c := container.(type) {
	case *dataqueries.MethodmapData:
		idx, ok := c.ItemsMap[e.Name]
		if !ok {
			inf.diag(sperrors.NewUnresolvedFieldError(id, e.Name, sperrors.ExistsNone))
			return InferredType{Kind: TypeUnknown}
		}
		item := c.Items[idx]
		if item.Kind != dataqueries.MemberProperty {
			inf.diag(sperrors.NewUnresolvedFieldError(id, e.Name, sperrors.ExistsMethodWithSameName))
			return InferredType{Kind: TypeUnknown}
		}
		inf.result.AttributeResolutions[id] = AttributeResolution{Kind: AttrProperty, Property: item.Property.ID}
		return typeFromRef(item.Property.PropertyType)
	case *enumStructContainer:
		for _, f := range c.data.Fields {
			if f.Name == e.Name {
				inf.result.AttributeResolutions[id] = AttributeResolution{Kind: AttrField, Field: f.ID}
				return typeFromRef(f.TypeRef)
			}
		}
		for _, mid := range c.data.Methods {
			if m := c.tree.Functions[mid]; m != nil && m.Name == e.Name {
				inf.diag(sperrors.NewUnresolvedFieldError(id, e.Name, sperrors.ExistsMethodWithSameName))
				return InferredType{Kind: TypeUnknown}
			}
		}
		inf.diag(sperrors.NewUnresolvedFieldError(id, e.Name, sperrors.ExistsNone))
	}
	return InferredType{Kind: TypeUnknown}
}

func (inf *Inferrer) inferMethodCall(id ids.ExprID, e Expr, block ids.BlockID) InferredType {
	targetType := inf.infer(e.Target, block)
	for _, a := range e.Args {
		inf.infer(a, block)
	}
	if targetType.Kind != TypeName {
		return InferredType{Kind: TypeUnknown}
	}
	container, ok := inf.resolveContainer(targetType.Name)
	if !ok {
		return InferredType{Kind: TypeUnknown}
	}
	switch c := container.(type) {
	case *dataqueries.MethodmapData:
		idx, ok := c.ItemsMap[e.Name]
		if !ok {
			inf.diag(sperrors.NewUnresolvedMethodCallError(id, e.Name, sperrors.ExistsNone))
			return InferredType{Kind: TypeUnknown}
		}
		item := c.Items[idx]
		if item.Kind != dataqueries.MemberFunction {
			inf.diag(sperrors.NewUnresolvedMethodCallError(id, e.Name, sperrors.ExistsMethodWithSameName))
			return InferredType{Kind: TypeUnknown}
		}
		inf.result.MethodResolutions[id] = item.Function.ID
		return typeFromRef(item.Function.ReturnType)
	case *enumStructContainer:
		for _, mid := range c.data.Methods {
			if m := c.tree.Functions[mid]; m != nil && m.Name == e.Name {
				inf.result.MethodResolutions[id] = mid
				return typeFromRef(m.ReturnType)
			}
		}
		for _, f := range c.data.Fields {
			if f.Name == e.Name {
				inf.diag(sperrors.NewUnresolvedMethodCallError(id, e.Name, sperrors.ExistsMethodWithSameName))
				return InferredType{Kind: TypeUnknown}
			}
		}
		inf.diag(sperrors.NewUnresolvedMethodCallError(id, e.Name, sperrors.ExistsNone))
	}
	return InferredType{Kind: TypeUnknown}
}

// inferNew resolves `new T(args)` (spec.md §4.7): T must be a methodmap
// with a local (never inherited) constructor, recorded in
// MethodResolutions; every other outcome is a diagnostic.
func (inf *Inferrer) inferNew(id ids.ExprID, e Expr, block ids.BlockID) InferredType {
	for _, a := range e.Args {
		inf.infer(a, block)
	}
	res, ok := inf.Resolver.ResolveIdent(inf.globalScope(), e.NewName)
	if !ok {
		inf.diag(sperrors.NewUnresolvedConstructorError(id, e.NewName, sperrors.ExistsNone))
		return InferredType{Kind: TypeUnknown}
	}
	switch res.Kind {
	case resolver.KindMethodmap:
		mm := inf.Tree.Methodmaps[res.Methodmap]
		file := inf.File
		tree := inf.Tree
		if mm == nil {
			if loc, ok := inf.Data.Interner.MethodmapLoc(res.Methodmap); ok {
				file = loc.Container.File
				if t, ok := inf.Data.Files.ItemTree(file); ok {
					tree = t
					mm = t.Methodmaps[res.Methodmap]
				}
			}
		}
		if mm == nil {
			inf.diag(sperrors.NewUnresolvedConstructorError(id, e.NewName, sperrors.ExistsMethodmap))
			return InferredType{Kind: TypeUnknown}
		}
		data := inf.Data.MethodmapData(file, tree, mm)
		for _, item := range data.Items {
			if item.Kind == dataqueries.MemberFunction && item.IsLocal && item.Function.Special == syntax.SpecialConstructor {
				inf.result.MethodResolutions[id] = item.Function.ID
				return InferredType{Kind: TypeName, Name: e.NewName}
			}
		}
		inf.diag(sperrors.NewUnresolvedConstructorError(id, e.NewName, sperrors.ExistsMethodmap))
	case resolver.KindEnumStruct:
		inf.diag(sperrors.NewUnresolvedConstructorError(id, e.NewName, sperrors.ExistsEnumStruct))
	default:
		inf.diag(sperrors.NewUnresolvedConstructorError(id, e.NewName, sperrors.ExistsNone))
	}
	return InferredType{Kind: TypeUnknown}
}

// enumStructContainer bundles an EnumStructData with the tree it was
// lifted from, since field/method lookups by name need the original
// itemtree.Function/EnumStructField entries dataqueries.EnumStructData
// only references by ID.
type enumStructContainer struct {
	data *dataqueries.EnumStructData
	tree *itemtree.ItemTree
}

// resolveContainer resolves a type name written in a type position (a
// FieldAccess/MethodCall target's inferred TypeName, or a `new T`'s T) to
// either a *dataqueries.MethodmapData or an *enumStructContainer.
func (inf *Inferrer) resolveContainer(name string) (any, bool) {
	res, ok := inf.Resolver.ResolveIdent(inf.globalScope(), name)
	if !ok {
		return nil, false
	}
	switch res.Kind {
	case resolver.KindMethodmap:
		loc, ok := inf.Data.Interner.MethodmapLoc(res.Methodmap)
		if !ok {
			return nil, false
		}
		tree, ok := inf.Data.Files.ItemTree(loc.Container.File)
		if !ok {
			return nil, false
		}
		mm := tree.Methodmaps[res.Methodmap]
		if mm == nil {
			return nil, false
		}
		return inf.Data.MethodmapData(loc.Container.File, tree, mm), true
	case resolver.KindEnumStruct:
		loc, ok := inf.Data.Interner.EnumStructLoc(res.EnumStruct)
		if !ok {
			return nil, false
		}
		tree, ok := inf.Data.Files.ItemTree(loc.Container.File)
		if !ok {
			return nil, false
		}
		es := tree.EnumStructs[res.EnumStruct]
		if es == nil {
			return nil, false
		}
		return &enumStructContainer{data: inf.Data.EnumStructData(es), tree: tree}, true
	}
	return nil, false
}

func (inf *Inferrer) functionData(id ids.FunctionID) *dataqueries.FunctionData {
	loc, ok := inf.Data.Interner.FunctionLoc(id)
	if !ok {
		return nil
	}
	tree := inf.Tree
	if loc.Container.File != inf.File {
		t, ok := inf.Data.Files.ItemTree(loc.Container.File)
		if !ok {
			return nil
		}
		tree = t
	}
	fn := tree.Functions[id]
	if fn == nil {
		return nil
	}
	return inf.Data.FunctionData(fn)
}

func (inf *Inferrer) globalData(id ids.VariableID) *dataqueries.GlobalData {
	loc, ok := inf.Data.Interner.VariableLoc(id)
	if !ok {
		return nil
	}
	tree := inf.Tree
	if loc.Container.File != inf.File {
		t, ok := inf.Data.Files.ItemTree(loc.Container.File)
		if !ok {
			return nil
		}
		tree = t
	}
	v := tree.Variables[id]
	if v == nil {
		return nil
	}
	return inf.Data.GlobalData(v)
}
