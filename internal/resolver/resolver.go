// Package resolver is component C9: identifier resolution through the
// lexical scope stack described in spec.md §4.6. Grounded on
// original_source/crates/hir-def/src/resolver.rs for the exact scope
// order and the "functions merge into an overload set, everything else
// is first-hit-wins" rule, and on the teacher's internal/indexing symbol
// lookup (a chain of maps walked outside-in, case-sensitive, no fuzzy
// matching) for the Go shape of the walk itself.
package resolver

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/includegraph"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
)

// Kind discriminates the tagged union spec.md §4.6 calls ValueNs.
type Kind uint8

const (
	KindNone Kind = iota
	KindFunction
	KindGlobal
	KindMacro
	KindMethodmap
	KindEnumStruct
	KindEnum
	KindVariant
	KindTypedef
	KindTypeset
	KindFunctag
	KindFuncenum
	KindLocal
)

// Resolution is the result of a successful ResolveIdent: exactly the
// field matching Kind is populated, except KindFunction which may carry
// more than one id (SourcePawn allows overloads by declaration site,
// spec.md §4.6 bullet 5).
type Resolution struct {
	Kind       Kind
	Functions  []ids.FunctionID
	Global     ids.VariableID
	Macro      ids.MacroID
	Methodmap  ids.MethodmapID
	EnumStruct ids.EnumStructID
	Enum       ids.EnumID
	Variant    ids.VariantID
	Typedef    ids.TypedefID
	Typeset    ids.TypesetID
	Functag    ids.FunctagID
	Funcenum   ids.FuncenumID

	LocalExpr ids.ExprID
	LocalName string
	// LocalTypeRef is populated only when the local came from
	// scope.Params (a block-local's type instead comes from its Binding
	// expr, reachable through LocalExpr — see internal/body's inference
	// pass).
	LocalTypeRef string
}

// MemberRef is one methodmap/enum-struct member, resolved through whatever
// owns the inherited-vs-local merge for that container. internal/resolver
// never computes this itself (that is internal/dataqueries' job, see
// MethodmapData/EnumStructData's items_map); a Scope carries a lookup
// function so this package has no dependency on internal/dataqueries and
// no import cycle results from dataqueries depending on resolver for
// inherits resolution.
type MemberRef struct {
	IsFunction bool
	Function   ids.FunctionID
	Field      ids.LocalFieldID
	Property   ids.PropertyID
}

// FileProvider gives the resolver read access to a file's def map and
// item tree without depending on internal/query's Database type (kept as
// an interface for the same reason internal/preprocessor takes an
// IncludeResolver interface rather than importing internal/vfs).
type FileProvider interface {
	DefMap(file ids.FileID) (*defmap.FileDefMap, bool)
	ItemTree(file ids.FileID) (*itemtree.ItemTree, bool)
}

// Scope is the full context ResolveIdent needs to walk spec.md §4.6's
// scope stack for one identifier occurrence. Blocks lists the enclosing
// block chain innermost-first (Blocks[0] is the block containing the
// identifier, the last entry is the function's top-level block).
type Scope struct {
	File    ids.FileID
	Blocks  []*defmap.BlockDefMap
	Params  []itemtree.Param
	Members func(name string) (MemberRef, bool)
}

// Resolver resolves identifiers against a FileProvider and the workspace
// include graph.
type Resolver struct {
	Files FileProvider
	Graph *includegraph.Graph
}

// New returns a Resolver backed by files and graph.
func New(files FileProvider, graph *includegraph.Graph) *Resolver {
	return &Resolver{Files: files, Graph: graph}
}

// ResolveIdent walks the scope stack from innermost to outermost,
// returning the first scope that produces a hit (spec.md §4.6: "the first
// scope producing a hit wins"). Resolution is case-sensitive; an
// unresolved name returns ok=false.
func (r *Resolver) ResolveIdent(scope Scope, name string) (Resolution, bool) {
	for _, block := range scope.Blocks {
		if block == nil {
			continue
		}
		if ref, ok := block.Lookup(name); ok {
			return Resolution{Kind: KindLocal, LocalExpr: ref.Expr, LocalName: ref.Name}, true
		}
	}

	for _, p := range scope.Params {
		if p.Name == name {
			return Resolution{Kind: KindLocal, LocalName: name, LocalTypeRef: p.TypeRef}, true
		}
	}

	if scope.Members != nil {
		if m, ok := scope.Members(name); ok {
			if m.IsFunction {
				return Resolution{Kind: KindFunction, Functions: []ids.FunctionID{m.Function}}, true
			}
			// Field/property members resolve through attribute_resolutions
			// elsewhere (spec.md §4.7); here they just need to count as a
			// hit so a bare `Ammo` inside a method body doesn't fall
			// through to the file scope.
			return Resolution{Kind: KindGlobal}, true
		}
	}

	if dm, ok := r.Files.DefMap(scope.File); ok {
		if item, ok := dm.Lookup(name); ok {
			if res, ok := resolutionFromItem(item); ok {
				return res, true
			}
		}
	}

	if r.Graph != nil {
		if res, ok := r.resolveInIncludes(scope.File, name); ok {
			return res, true
		}
	}

	return Resolution{}, false
}

// resolveInIncludes walks the files transitively included from file (not
// file itself), merging every function with the matching name into one
// overload set and taking the first non-function hit encountered in
// traversal order (spec.md §4.6 bullet 5: "duplicates collapsed;
// functions merge into a set").
func (r *Resolver) resolveInIncludes(file ids.FileID, name string) (Resolution, bool) {
	visited := map[ids.FileID]bool{file: true}
	queue := []ids.FileID{file}

	var functions []ids.FunctionID
	var nonFunc Resolution
	haveNonFunc := false

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, edge := range r.Graph.Out(cur) {
			if visited[edge.Target] {
				continue
			}
			visited[edge.Target] = true
			queue = append(queue, edge.Target)

			dm, ok := r.Files.DefMap(edge.Target)
			if !ok {
				continue
			}
			item, ok := dm.Lookup(name)
			if !ok {
				continue
			}
			res, ok := resolutionFromItem(item)
			if !ok {
				continue
			}
			if res.Kind == KindFunction {
				functions = append(functions, res.Functions...)
				continue
			}
			if !haveNonFunc {
				nonFunc = res
				haveNonFunc = true
			}
		}
	}

	if len(functions) > 0 {
		return Resolution{Kind: KindFunction, Functions: functions}, true
	}
	if haveNonFunc {
		return nonFunc, true
	}
	return Resolution{}, false
}

// resolutionFromItem converts a defmap.FileDefMap hit into a Resolution.
// FileItem already carries the matching per-kind ID, so no ItemTree
// lookup is needed here.
func resolutionFromItem(item itemtree.FileItem) (Resolution, bool) {
	switch item.Kind {
	case itemtree.ItemFunction:
		return Resolution{Kind: KindFunction, Functions: []ids.FunctionID{item.Function}}, true
	case itemtree.ItemVariable:
		return Resolution{Kind: KindGlobal, Global: item.Variable}, true
	case itemtree.ItemMacro:
		return Resolution{Kind: KindMacro, Macro: item.Macro}, true
	case itemtree.ItemMethodmap:
		return Resolution{Kind: KindMethodmap, Methodmap: item.Methodmap}, true
	case itemtree.ItemEnumStruct:
		return Resolution{Kind: KindEnumStruct, EnumStruct: item.EnumStruct}, true
	case itemtree.ItemEnum:
		return Resolution{Kind: KindEnum, Enum: item.Enum}, true
	case itemtree.ItemTypedef:
		return Resolution{Kind: KindTypedef, Typedef: item.Typedef}, true
	case itemtree.ItemTypeset:
		return Resolution{Kind: KindTypeset, Typeset: item.Typeset}, true
	case itemtree.ItemFunctag:
		return Resolution{Kind: KindFunctag, Functag: item.Functag}, true
	case itemtree.ItemFuncenum:
		return Resolution{Kind: KindFuncenum, Funcenum: item.Funcenum}, true
	case itemtree.ItemVariant:
		return Resolution{Kind: KindVariant, Variant: item.Variant}, true
	}
	return Resolution{}, false
}
