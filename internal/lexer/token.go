// Package lexer is component C2: a lazy token stream over raw SourcePawn
// text, tagged with positional deltas so the preprocessor can reproduce
// original whitespace without rescanning it. Grounded on the lazy,
// delta-tracking design of the original's sourcepawn_lexer crate
// (original_source/src/lexer.rs) and on the teacher's own tokenizing style
// in internal/parser/parser.go (a hand-maintained scanner state machine,
// since SourcePawn has no tree-sitter-grammar Go binding in this module's
// dependency set — see DESIGN.md).
package lexer

// Kind discriminates a token's lexical class.
type Kind uint8

const (
	KindEOF Kind = iota
	KindIdent
	KindIntLit
	KindFloatLit
	KindCharLit
	KindStringLit
	KindOp         // operators and punctuation, Text holds the exact spelling
	KindNewline    // emitted once per physical newline
	KindLineComment
	KindBlockComment
	KindHash          // a '#' starting a preprocessor directive (first non-ws token on a line)
	KindDirectiveWord // the directive name following '#' (e.g. "define", "include")
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindEOF:
		return "EOF"
	case KindIdent:
		return "Ident"
	case KindIntLit:
		return "IntLit"
	case KindFloatLit:
		return "FloatLit"
	case KindCharLit:
		return "CharLit"
	case KindStringLit:
		return "StringLit"
	case KindOp:
		return "Op"
	case KindNewline:
		return "Newline"
	case KindLineComment:
		return "LineComment"
	case KindBlockComment:
		return "BlockComment"
	case KindHash:
		return "Hash"
	case KindDirectiveWord:
		return "DirectiveWord"
	default:
		return "Unknown"
	}
}

// Range is a half-open byte-offset span [Start, End) into the source text.
type Range struct {
	Start int
	End   int
}

func (r Range) Len() int { return r.End - r.Start }

// Delta records how much whitespace preceded a token: how many newlines
// were consumed since the previously emitted token (Line) and, on the
// resulting line, how many columns of horizontal whitespace preceded the
// token (Col). Each newline is emitted as its own KindNewline token with
// Line 1, and a block comment or string literal carries the newlines
// inside it; other tokens have Line 0, so a running line number is the
// sum of Line over the token stream (as internal/syntax's tokenize
// computes it). Col is exactly the
// "delta.col == 0 means '(' immediately follows the name" signal spec.md
// §4.1 uses to distinguish function-like macros from object-like ones
// followed by a parenthesized expression.
type Delta struct {
	Line int
	Col  int
}

// Symbol is one lexical token plus its preceding whitespace delta.
type Symbol struct {
	Kind  Kind
	Text  string
	Range Range
	Delta Delta
}
