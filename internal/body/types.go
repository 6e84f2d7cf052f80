// Package body is component C10: lowering a function's CST body into an
// expression arena plus a source map, and the inference pass that walks
// it to resolve field/method access and constructor calls. Grounded on
// spec.md §4.7 and original_source/crates/hir-def/src/body/lower.rs for
// the variant shape and the resolution rules, and on the teacher's own
// recursive-descent style in internal/parser/parser.go for how the
// lowering walk itself is written (hand-rolled precedence climbing, no
// parser generator).
package body

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
)

// ExprKind discriminates one arena entry. Matches the variant list in
// spec.md §3 verbatim; array indexing and assignment are not separate
// variants there, so they are realized as BinaryOp with Op "[]" and "="
// respectively (see DESIGN.md's C10 entry).
type ExprKind uint8

const (
	ExprMissing ExprKind = iota
	ExprBlock
	ExprComma
	ExprNew
	ExprFieldAccess
	ExprUnaryOp
	ExprBinaryOp
	ExprTernaryOp
	ExprScopeAccess
	ExprViewAs
	ExprLiteral
	ExprIdent
	ExprMethodCall
	ExprCall
	ExprBinding
	ExprDecl
)

// LiteralKind tags a Literal expression's payload type.
type LiteralKind uint8

const (
	LitInt LiteralKind = iota
	LitBool
	LitFloat
	LitChar
	LitString
	LitNull
)

// Expr is one arena entry, tagged by Kind with only the fields matching
// that kind populated — the same tagged-union shape
// internal/itemtree.FileItem established.
type Expr struct {
	Kind ExprKind

	// ExprBlock
	Statements []ids.ExprID
	Block      ids.BlockID // the scope this block introduced, for inference's local lookups

	// ExprComma
	Items []ids.ExprID

	// ExprNew
	NewName string
	Args    []ids.ExprID

	// ExprFieldAccess / ExprScopeAccess / ExprMethodCall
	Target ids.ExprID
	Name   string

	// ExprUnaryOp
	Op      string
	Operand ids.ExprID

	// ExprBinaryOp
	Left  ids.ExprID
	Right ids.ExprID

	// ExprTernaryOp
	Cond ids.ExprID
	Then ids.ExprID
	Else ids.ExprID

	// ExprViewAs
	TypeRef string
	Inner   ids.ExprID

	// ExprLiteral
	LitKind LiteralKind
	LitText string

	// ExprIdent
	Ident string

	// ExprCall / ExprMethodCall (Args shared with ExprNew's field above)
	Callee ids.ExprID

	// ExprBinding
	BindingName string
	HasInit     bool
	Init        ids.ExprID

	// ExprDecl: a local declaration kept as raw text. lower.go does not
	// produce this kind; a multi-declarator line such as "int a, b;"
	// lowers to an ExprBlock holding one Binding per declarator.
	DeclText string
}

// Body is one function's lowered form: an arena plus the root block.
type Body struct {
	Function ids.FunctionID
	Exprs    []Expr // index i holds the Expr for ids.ExprID(i+1); 0 is invalid
	Root     ids.ExprID
}

// Expr returns the arena entry for id, or the zero Expr if id is out of
// range (id 0 is always invalid, matching every other per-kind ID in
// internal/ids).
func (b *Body) Expr(id ids.ExprID) Expr {
	i := int(id)
	if i <= 0 || i > len(b.Exprs) {
		return Expr{}
	}
	return b.Exprs[i-1]
}

// SourceMap maps each ExprId back to the source byte range it was lowered
// from (spec.md §3: "a source map ExprId ↔ NodePtr"; a lexer.Range stands
// in for NodePtr since internal/syntax has no separate AST-node-id
// concept, the same substitution internal/itemtree makes for unnamed
// enums' ast_id).
type SourceMap struct {
	Ranges map[ids.ExprID]lexer.Range
}
