package facade

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/body"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
)

// CallHierarchyItem names one function for a call-hierarchy node.
type CallHierarchyItem struct {
	Function ids.FunctionID
	Name     string
	Location Location
}

// OutgoingCalls answers a call-hierarchy "outgoing calls" request for fn
// (spec.md §6's call-hierarchy facade): every Call/MethodCall expression
// in fn's lowered body that inference or plain name resolution ties to
// another function.
func OutgoingCalls(db *query.Database, id ids.FunctionID) ([]CallHierarchyItem, error) {
	loc, ok := db.Interner.FunctionLoc(id)
	if !ok {
		return nil, query.ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	fn := tree.Functions[id]
	if fn == nil || fn.Body == nil {
		return nil, nil
	}

	b, sm, blocks, err := loweredBody(db, loc.Container.File, fn)
	if err != nil {
		return nil, err
	}
	eb := exprBlocks(b)
	res, err := db.Resolver()
	if err != nil {
		return nil, err
	}
	inferred, err := db.Infer(id)
	if err != nil {
		return nil, err
	}

	seen := map[ids.FunctionID]bool{}
	var out []CallHierarchyItem
	addCallee := func(calleeID ids.FunctionID) {
		if seen[calleeID] {
			return
		}
		seen[calleeID] = true
		item, err := callHierarchyItem(db, calleeID)
		if err == nil {
			out = append(out, item)
		}
	}

	for i := range b.Exprs {
		exprID := ids.ExprID(i + 1)
		e := b.Expr(exprID)
		switch e.Kind {
		case body.ExprCall:
			callee := b.Expr(e.Callee)
			if callee.Kind != body.ExprIdent {
				continue
			}
			scope := scopeAt(loc.Container.File, fn, blocks, eb[e.Callee])
			resolution, ok := res.ResolveIdent(scope, callee.Ident)
			if !ok || resolution.Kind != resolver.KindFunction {
				continue
			}
			for _, fid := range resolution.Functions {
				addCallee(fid)
			}
		case body.ExprMethodCall:
			if methodID, ok := inferred.MethodResolutions[exprID]; ok {
				addCallee(methodID)
			}
		}
	}
	return out, nil
}

// IncomingCalls answers a call-hierarchy "incoming calls" request for fn:
// every function in the project's include closure whose body resolves a
// call to id.
func IncomingCalls(db *query.Database, id ids.FunctionID) ([]CallHierarchyItem, error) {
	loc, ok := db.Interner.FunctionLoc(id)
	if !ok {
		return nil, query.ErrUnknownID
	}
	sub, err := db.ProjectSubgraph(loc.Container.File)
	if err != nil {
		return nil, err
	}

	var out []CallHierarchyItem
	for _, f := range sub.Files {
		tree, ok := db.ItemTree(f)
		if !ok {
			continue
		}
		for _, fn := range tree.Functions {
			if fn.Body == nil {
				continue
			}
			calls, err := OutgoingCalls(db, fn.ID)
			if err != nil {
				continue
			}
			for _, c := range calls {
				if c.Function == id {
					item, err := callHierarchyItem(db, fn.ID)
					if err == nil {
						out = append(out, item)
					}
					break
				}
			}
		}
	}
	return out, nil
}

func callHierarchyItem(db *query.Database, id ids.FunctionID) (CallHierarchyItem, error) {
	loc, ok := db.Interner.FunctionLoc(id)
	if !ok {
		return CallHierarchyItem{}, query.ErrUnknownID
	}
	tree, ok := db.ItemTree(loc.Container.File)
	if !ok {
		return CallHierarchyItem{}, query.ErrUnknownFile
	}
	fn := tree.Functions[id]
	if fn == nil {
		return CallHierarchyItem{}, query.ErrUnknownID
	}
	return CallHierarchyItem{
		Function: id,
		Name:     fn.Name,
		Location: locationOf(db, loc.Container.File, fn.Head),
	}, nil
}
