package facade

import (
	"sort"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
)

// CompletionItem is one name offered at a cursor position.
type CompletionItem struct {
	Name string
	Kind SymbolKind
}

// CompletionsAt answers a completion request at pos in file (spec.md §6's
// completions facade): every name visible at pos under the same scope-
// stack order internal/resolver.ResolveIdent walks, deduplicated
// innermost-wins, plus every file-scope declaration reachable from
// file's include closure.
func CompletionsAt(db *query.Database, file ids.FileID, pos Position) ([]CompletionItem, error) {
	offset, ok := offsetAt(db, file, pos)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	tree, ok := db.ItemTree(file)
	if !ok {
		return nil, query.ErrUnknownFile
	}

	seen := map[string]bool{}
	var out []CompletionItem
	add := func(name string, kind SymbolKind) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, CompletionItem{Name: name, Kind: kind})
	}

	if fn, ok := enclosingFunction(tree, offset); ok {
		b, sm, blocks, err := loweredBody(db, file, fn)
		if err != nil {
			return nil, err
		}
		var block ids.BlockID
		if exprID, ok := exprAt(b, sm, offset); ok {
			block = exprBlocks(b)[exprID]
		}
		for _, chain := range blockChain(blocks, block) {
			for name := range chain.ByName {
				add(name, SymbolVariable)
			}
		}
		for _, p := range fn.Params {
			add(p.Name, SymbolVariable)
		}
	}

	addFileScope(tree, add)

	sub, err := db.ProjectSubgraph(file)
	if err != nil {
		return nil, err
	}
	for _, f := range sub.Files {
		if f == file {
			continue
		}
		if t, ok := db.ItemTree(f); ok {
			addFileScope(t, add)
		}
	}

	rankByPrefix(out, prefixAt(db, file, offset))
	return out, nil
}

// rankByPrefix sorts items by Jaro-Winkler similarity to prefix, highest
// first, leaving the original (scope-then-file-declaration) order as a
// stable tiebreak. When prefix is empty — the cursor sits at a word
// boundary with nothing typed yet — ranking against "" is meaningless, so
// the scope order is left untouched. Grounded on the teacher's
// internal/semantic/fuzzy_matcher.go, whose FuzzyMatcher.jaroWinkler calls
// edlib.StringsSimilarity(a, b, edlib.JaroWinkler) the same way.
func rankByPrefix(items []CompletionItem, prefix string) {
	if prefix == "" || len(items) < 2 {
		return
	}
	score := make([]float32, len(items))
	for i, it := range items {
		s, err := edlib.StringsSimilarity(prefix, it.Name, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		score[i] = s
	}
	sort.SliceStable(items, func(i, j int) bool {
		return score[i] > score[j]
	})
}

func addFileScope(tree *itemtree.ItemTree, add func(name string, kind SymbolKind)) {
	for _, item := range tree.TopLevel {
		switch item.Kind {
		case itemtree.ItemFunction:
			if fn := tree.Functions[item.Function]; fn != nil {
				add(fn.Name, SymbolFunction)
			}
		case itemtree.ItemVariable:
			if v := tree.Variables[item.Variable]; v != nil {
				add(v.Name, SymbolVariable)
			}
		case itemtree.ItemMethodmap:
			if mm := tree.Methodmaps[item.Methodmap]; mm != nil {
				add(mm.Name, SymbolMethodmap)
			}
		case itemtree.ItemEnumStruct:
			if es := tree.EnumStructs[item.EnumStruct]; es != nil {
				add(es.Name, SymbolEnumStruct)
			}
		case itemtree.ItemEnum:
			if e := tree.Enums[item.Enum]; e != nil {
				add(e.Name, SymbolEnum)
				for _, vid := range e.Variants {
					if v := tree.Variants[vid]; v != nil {
						add(v.Name, SymbolVariant)
					}
				}
			}
		case itemtree.ItemTypedef:
			if td := tree.Typedefs[item.Typedef]; td != nil {
				add(td.Name, SymbolTypedef)
			}
		case itemtree.ItemTypeset:
			if ts := tree.Typesets[item.Typeset]; ts != nil {
				add(ts.Name, SymbolTypeset)
			}
		}
	}
}
