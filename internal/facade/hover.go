package facade

import (
	"fmt"
	"strings"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/body"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/dataqueries"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
)

// Hover is the formatted description shown for the identifier under the
// cursor, plus the range it covers.
type Hover struct {
	Text  string
	Range Range
}

// HoverAt answers a hover request at pos in file (spec.md §6's hover
// facade): resolves whatever is under the cursor, inside or outside a
// function body, and renders a short signature line.
func HoverAt(db *query.Database, file ids.FileID, pos Position) (*Hover, error) {
	offset, ok := offsetAt(db, file, pos)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	tree, ok := db.ItemTree(file)
	if !ok {
		return nil, query.ErrUnknownFile
	}

	if fn, ok := enclosingFunction(tree, offset); ok {
		return hoverInBody(db, file, tree, fn, offset)
	}
	return hoverTopLevel(db, file, tree, offset)
}

func hoverTopLevel(db *query.Database, file ids.FileID, tree *itemtree.ItemTree, offset int) (*Hover, error) {
	for _, item := range tree.TopLevel {
		r, ok := declRange(item, tree)
		if !ok || offset < r.Start || offset > r.End {
			continue
		}
		text, err := describeItem(db, item, tree)
		if err != nil {
			return nil, err
		}
		return &Hover{Text: text, Range: rangeOf(db, file, r)}, nil
	}
	return nil, nil
}

func hoverInBody(db *query.Database, file ids.FileID, tree *itemtree.ItemTree, fn *itemtree.Function, offset int) (*Hover, error) {
	b, sm, blocks, err := loweredBody(db, file, fn)
	if err != nil {
		return nil, err
	}
	exprID, ok := exprAt(b, sm, offset)
	if !ok {
		return nil, nil
	}
	r := sm.Ranges[exprID]
	e := b.Expr(exprID)

	switch e.Kind {
	case body.ExprIdent:
		eb := exprBlocks(b)
		return hoverIdent(db, file, tree, fn, blocks, eb[exprID], e.Ident, r)
	case body.ExprFieldAccess, body.ExprMethodCall, body.ExprNew:
		return hoverInferred(db, file, tree, fn, blocks, exprID, r)
	default:
		return nil, nil
	}
}

func hoverIdent(db *query.Database, file ids.FileID, tree *itemtree.ItemTree, fn *itemtree.Function, blocks map[ids.BlockID]*defmap.BlockDefMap, block ids.BlockID, name string, r lexer.Range) (*Hover, error) {
	res, err := db.Resolver()
	if err != nil {
		return nil, err
	}
	scope := scopeAt(file, fn, blocks, block)
	resolution, ok := res.ResolveIdent(scope, name)
	if !ok {
		return nil, nil
	}
	text, err := describeResolution(db, resolution, tree)
	if err != nil || text == "" {
		return nil, err
	}
	return &Hover{Text: text, Range: rangeOf(db, file, r)}, nil
}

func hoverInferred(db *query.Database, file ids.FileID, tree *itemtree.ItemTree, fn *itemtree.Function, blocks map[ids.BlockID]*defmap.BlockDefMap, exprID ids.ExprID, r lexer.Range) (*Hover, error) {
	inferred, err := db.Infer(fn.ID)
	if err != nil {
		return nil, err
	}
	if attr, ok := inferred.AttributeResolutions[exprID]; ok {
		text := describeAttribute(attr, db)
		return &Hover{Text: text, Range: rangeOf(db, file, r)}, nil
	}
	if methodID, ok := inferred.MethodResolutions[exprID]; ok {
		data, err := db.FunctionData(methodID)
		if err != nil {
			return nil, err
		}
		return &Hover{Text: functionSignature(data), Range: rangeOf(db, file, r)}, nil
	}
	return nil, nil
}

func describeAttribute(attr body.AttributeResolution, db *query.Database) string {
	switch attr.Kind {
	case body.AttrProperty:
		return fmt.Sprintf("property (id %d)", attr.Property)
	case body.AttrField:
		return fmt.Sprintf("enum struct field (id %d)", attr.Field)
	case body.AttrStructField:
		return fmt.Sprintf("struct field (id %d)", attr.StructField)
	}
	return ""
}

func describeResolution(db *query.Database, res resolver.Resolution, tree *itemtree.ItemTree) (string, error) {
	switch res.Kind {
	case resolver.KindFunction:
		if len(res.Functions) == 0 {
			return "", nil
		}
		data, err := db.FunctionData(res.Functions[0])
		if err != nil {
			return "", err
		}
		return functionSignature(data), nil
	case resolver.KindGlobal:
		store, err := db.Store()
		if err != nil {
			return "", err
		}
		if v := tree.Variables[res.Global]; v != nil {
			data := store.GlobalData(v)
			return fmt.Sprintf("%s %s", data.TypeRef, data.Name), nil
		}
		return "", nil
	case resolver.KindMethodmap:
		return fmt.Sprintf("methodmap %s", methodmapName(tree, res.Methodmap)), nil
	case resolver.KindEnumStruct:
		if es := tree.EnumStructs[res.EnumStruct]; es != nil {
			return fmt.Sprintf("enum struct %s", es.Name), nil
		}
	case resolver.KindEnum:
		if e := tree.Enums[res.Enum]; e != nil {
			return fmt.Sprintf("enum %s", e.Name), nil
		}
	case resolver.KindLocal:
		if res.LocalTypeRef != "" {
			return fmt.Sprintf("%s %s", res.LocalTypeRef, res.LocalName), nil
		}
		return res.LocalName, nil
	}
	return "", nil
}

func methodmapName(tree *itemtree.ItemTree, id ids.MethodmapID) string {
	if mm := tree.Methodmaps[id]; mm != nil {
		return mm.Name
	}
	return ""
}

func functionSignature(data *dataqueries.FunctionData) string {
	var params []string
	for _, p := range data.Params {
		params = append(params, fmt.Sprintf("%s %s", p.TypeRef, p.Name))
	}
	sig := fmt.Sprintf("%s %s(%s)", data.ReturnType, data.Name, strings.Join(params, ", "))
	if data.Deprecated {
		sig += " [deprecated: " + data.DeprecatedText + "]"
	}
	return sig
}

func describeItem(db *query.Database, item itemtree.FileItem, tree *itemtree.ItemTree) (string, error) {
	switch item.Kind {
	case itemtree.ItemFunction:
		data, err := db.FunctionData(item.Function)
		if err != nil {
			return "", err
		}
		return functionSignature(data), nil
	case itemtree.ItemVariable:
		store, err := db.Store()
		if err != nil {
			return "", err
		}
		if v := tree.Variables[item.Variable]; v != nil {
			data := store.GlobalData(v)
			return fmt.Sprintf("%s %s", data.TypeRef, data.Name), nil
		}
	case itemtree.ItemMethodmap:
		data, err := db.MethodmapData(item.Methodmap)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("methodmap %s < %s", data.Name, data.Inherits), nil
	case itemtree.ItemEnumStruct:
		if es := tree.EnumStructs[item.EnumStruct]; es != nil {
			return fmt.Sprintf("enum struct %s", es.Name), nil
		}
	case itemtree.ItemEnum:
		if e := tree.Enums[item.Enum]; e != nil {
			return fmt.Sprintf("enum %s", e.Name), nil
		}
	case itemtree.ItemTypedef:
		if td := tree.Typedefs[item.Typedef]; td != nil {
			return fmt.Sprintf("typedef %s", td.Name), nil
		}
	case itemtree.ItemTypeset:
		if ts := tree.Typesets[item.Typeset]; ts != nil {
			return fmt.Sprintf("typeset %s", ts.Name), nil
		}
	}
	return "", nil
}
