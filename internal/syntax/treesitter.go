package syntax

import (
	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	tree_sitter_sourcepawn "github.com/Sarrus1/tree-sitter-sourcepawn/bindings/go"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
)

// topLevelDeclKinds lists the grammar node kinds that open a new top-level
// declaration, per the upstream project's own AST shape
// (original_source/crates/syntax/src/ast/generated/nodes.rs: Function,
// GlobalVariableDeclaration, OldGlobalVariableDeclaration, Enum,
// EnumStruct, Methodmap, Typedef, Typeset, Functag, Funcenum,
// StructDeclaration), translated to the snake_case node-kind vocabulary
// tree-sitter grammars generated from a ungrammar/ast-codegen pipeline use
// (the same PascalCase-wrapper/snake_case-kind convention the teacher's
// own internal/parser queries rely on, e.g. (function_declaration name:
// (identifier))).
var topLevelDeclKinds = map[string]bool{
	"function_declaration":               true,
	"function_definition":                true,
	"global_variable_declaration":        true,
	"old_global_variable_declaration":    true,
	"variable_declaration_statement":     true,
	"old_variable_declaration_statement": true,
	"enum":                               true,
	"enum_struct":                        true,
	"methodmap":                          true,
	"typedef":                            true,
	"typeset":                            true,
	"functag":                            true,
	"funcenum":                           true,
	"struct_declaration":                 true,
}

// tsSpan is a byte-offset span tree-sitter found for one top-level
// declaration candidate.
type tsSpan struct {
	start, end int
}

// topLevelSpans parses text with the tree_sitter_sourcepawn grammar and
// returns the byte span of every direct child of the root node whose kind
// is a recognized top-level declaration form. It returns nil whenever the
// grammar can't be loaded or fails to produce a tree, so callers fall back
// to the free-running scan entirely rather than trusting a partial result.
//
// This only drives *segmentation*: where each top-level declaration starts
// and ends. The existing hand-written recognizers in parser.go and
// decls.go still do all field-level extraction — the upstream grammar's
// exact node-field accessors aren't available in this pack (only
// nodes.rs's generated struct *names* are, not their field-access
// bodies), so inventing them here would be guessing at grammar internals
// this module can't verify. Segmentation, by contrast, only needs child
// node kinds, which nodes.rs's struct list grounds directly.
func topLevelSpans(text string) []tsSpan {
	parser := tree_sitter.NewParser()
	defer parser.Close()

	lang := tree_sitter.NewLanguage(tree_sitter_sourcepawn.Language())
	if err := parser.SetLanguage(lang); err != nil {
		return nil
	}

	tree := parser.Parse([]byte(text), nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil
	}

	var spans []tsSpan
	count := root.ChildCount()
	for i := uint(0); i < count; i++ {
		child := root.Child(i)
		if child == nil {
			continue
		}
		if !topLevelDeclKinds[child.Kind()] {
			continue
		}
		spans = append(spans, tsSpan{start: int(child.StartByte()), end: int(child.EndByte())})
	}
	return spans
}

// tokenIndexAtOrAfter returns the index of the first token in toks whose
// Range.Start is >= offset, or len(toks) if none qualifies. toks is sorted
// by Range.Start (tokenize's output order), so a binary search applies.
func tokenIndexAtOrAfter(toks []lexer.Symbol, offset int) int {
	lo, hi := 0, len(toks)
	for lo < hi {
		mid := (lo + hi) / 2
		if toks[mid].Range.Start < offset {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
