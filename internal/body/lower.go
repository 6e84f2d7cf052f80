package body

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/defmap"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/itemtree"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
)

// Lower re-tokenizes fn's opaque body range out of text and parses it into
// an expression arena. internal/syntax's parser only records a function
// body as a byte range (skipBalancedBraces in parser.go never descends
// into it), so there is no existing CST to walk here; this is a second,
// self-contained recursive-descent parser over just that range, the same
// hand-rolled-scanner idiom internal/syntax itself uses rather than a
// parser generator.
//
// Blocks returns every nested block scope created while lowering, keyed
// by BlockID, for the caller to thread into resolver.Scope.Blocks.
func Lower(fn *itemtree.Function, text string) (*Body, *SourceMap, map[ids.BlockID]*defmap.BlockDefMap) {
	b := &builder{
		body:   &Body{Function: fn.ID},
		srcMap: &SourceMap{Ranges: map[ids.ExprID]lexer.Range{}},
		blocks: map[ids.BlockID]*defmap.BlockDefMap{},
	}
	if fn.Body == nil {
		return b.body, b.srcMap, b.blocks
	}
	b.base = fn.Body.Start
	b.toks = tokenize(text[fn.Body.Start:fn.Body.End])
	b.body.Root = b.parseBlock(0)
	return b.body, b.srcMap, b.blocks
}

// tokenize strips whitespace-only tokens (newlines, comments), since body
// lowering needs no line-delta bookkeeping the way the preprocessor does.
func tokenize(text string) []lexer.Symbol {
	lx := lexer.New(text)
	var toks []lexer.Symbol
	for {
		sym := lx.Next()
		switch sym.Kind {
		case lexer.KindNewline, lexer.KindLineComment, lexer.KindBlockComment:
			continue
		}
		toks = append(toks, sym)
		if sym.Kind == lexer.KindEOF {
			return toks
		}
	}
}

type builder struct {
	toks     []lexer.Symbol
	pos      int
	base     int // fn.Body.Start: added to every token offset for SourceMap ranges
	body     *Body
	srcMap   *SourceMap
	blockIdx ids.BlockID
	blocks   map[ids.BlockID]*defmap.BlockDefMap
}

func (b *builder) peek() lexer.Symbol  { return b.peekAt(0) }
func (b *builder) atEOF() bool         { return b.peek().Kind == lexer.KindEOF }
func (b *builder) peekAt(n int) lexer.Symbol {
	i := b.pos + n
	if i >= len(b.toks) {
		return lexer.Symbol{Kind: lexer.KindEOF}
	}
	return b.toks[i]
}
func (b *builder) next() lexer.Symbol {
	t := b.peek()
	if t.Kind != lexer.KindEOF {
		b.pos++
	}
	return t
}
func (b *builder) isOp(s string) bool {
	t := b.peek()
	return t.Kind == lexer.KindOp && t.Text == s
}
func (b *builder) isIdent(s string) bool {
	t := b.peek()
	return t.Kind == lexer.KindIdent && t.Text == s
}
func (b *builder) prevEnd() int {
	if b.pos == 0 {
		return 0
	}
	return b.toks[b.pos-1].Range.End
}
func (b *builder) skipToSemicolon() {
	for !b.atEOF() && !b.isOp(";") && !b.isOp("}") {
		b.next()
	}
	if b.isOp(";") {
		b.next()
	}
}

func (b *builder) alloc(e Expr, start, end int) ids.ExprID {
	b.body.Exprs = append(b.body.Exprs, e)
	id := ids.ExprID(len(b.body.Exprs))
	b.srcMap.Ranges[id] = lexer.Range{Start: b.base + start, End: b.base + end}
	return id
}

func (b *builder) newBlock(parent ids.BlockID) (ids.BlockID, *defmap.BlockDefMap) {
	b.blockIdx++
	id := b.blockIdx
	bm := &defmap.BlockDefMap{Block: id, Parent: parent, ByName: map[string]defmap.LocalRef{}}
	b.blocks[id] = bm
	return id, bm
}

// parseBlock consumes a `{ ... }` (or, for a missing brace, whatever
// statements follow to EOF) and returns one ExprBlock entry. Each call
// opens its own BlockDefMap scope so nested `{}` shadow outer locals.
func (b *builder) parseBlock(parent ids.BlockID) ids.ExprID {
	start := b.peek().Range.Start
	blockID, bm := b.newBlock(parent)
	if b.isOp("{") {
		b.next()
	}
	var stmts []ids.ExprID
	for !b.atEOF() && !b.isOp("}") {
		before := b.pos
		if id := b.parseStatement(blockID, bm); id != 0 {
			stmts = append(stmts, id)
		}
		if b.pos == before {
			b.next() // guarantee forward progress on unrecognized input
		}
	}
	end := b.prevEnd()
	if b.isOp("}") {
		end = b.peek().Range.End
		b.next()
	}
	return b.alloc(Expr{Kind: ExprBlock, Statements: stmts, Block: blockID}, start, end)
}

func (b *builder) parseStatement(curBlock ids.BlockID, bm *defmap.BlockDefMap) ids.ExprID {
	if b.atEOF() {
		return 0
	}
	if b.isOp(";") {
		b.next()
		return 0
	}
	if b.isOp("{") {
		return b.parseBlock(curBlock)
	}
	if b.isIdent("if") {
		return b.parseIf(curBlock)
	}
	if b.isIdent("while") {
		return b.parseWhile(curBlock)
	}
	if b.isIdent("do") {
		return b.parseDoWhile(curBlock)
	}
	if b.isIdent("for") {
		return b.parseFor(curBlock)
	}
	if b.isIdent("return") {
		return b.parseReturn()
	}
	if b.isIdent("break") || b.isIdent("continue") {
		b.next()
		b.skipToSemicolon()
		return 0
	}
	if id, ok := b.tryParseDecl(bm); ok {
		return id
	}
	e := b.parseExpr()
	b.skipToSemicolon()
	return e
}

// wrapGroup packages a condition plus one or more nested bodies into a
// single ExprBlock "statements" entry, since spec.md's Expr variant list
// has no dedicated if/while/for node (see DESIGN.md's C10 entry): the
// control-flow structure itself carries no semantic weight this layer
// needs, only the sub-expressions and nested scopes it contains do.
func (b *builder) wrapGroup(parent ids.BlockID, start int, parts ...ids.ExprID) ids.ExprID {
	var stmts []ids.ExprID
	for _, p := range parts {
		if p != 0 {
			stmts = append(stmts, p)
		}
	}
	return b.alloc(Expr{Kind: ExprBlock, Statements: stmts, Block: parent}, start, b.prevEnd())
}

func (b *builder) parseIf(parent ids.BlockID) ids.ExprID {
	start := b.peek().Range.Start
	b.next() // "if"
	cond := b.parseParenExpr()
	then := b.parseStatement(parent, b.blocks[parent])
	var els ids.ExprID
	if b.isIdent("else") {
		b.next()
		els = b.parseStatement(parent, b.blocks[parent])
	}
	return b.wrapGroup(parent, start, cond, then, els)
}

func (b *builder) parseWhile(parent ids.BlockID) ids.ExprID {
	start := b.peek().Range.Start
	b.next() // "while"
	cond := b.parseParenExpr()
	stmt := b.parseStatement(parent, b.blocks[parent])
	return b.wrapGroup(parent, start, cond, stmt)
}

func (b *builder) parseDoWhile(parent ids.BlockID) ids.ExprID {
	start := b.peek().Range.Start
	b.next() // "do"
	stmt := b.parseStatement(parent, b.blocks[parent])
	if b.isIdent("while") {
		b.next()
	}
	cond := b.parseParenExpr()
	b.skipToSemicolon()
	return b.wrapGroup(parent, start, stmt, cond)
}

func (b *builder) parseFor(parent ids.BlockID) ids.ExprID {
	start := b.peek().Range.Start
	b.next() // "for"
	blockID, bm := b.newBlock(parent)
	if b.isOp("(") {
		b.next()
	}
	initID, _ := b.tryParseDecl(bm)
	if initID == 0 && !b.isOp(";") {
		initID = b.parseExpr()
	}
	if b.isOp(";") {
		b.next()
	}
	var cond ids.ExprID
	if !b.isOp(";") {
		cond = b.parseExpr()
	}
	if b.isOp(";") {
		b.next()
	}
	var post ids.ExprID
	if !b.isOp(")") {
		post = b.parseExpr()
	}
	if b.isOp(")") {
		b.next()
	}
	body := b.parseStatement(blockID, bm)
	return b.wrapGroup(parent, start, initID, cond, post, body)
}

func (b *builder) parseReturn() ids.ExprID {
	b.next() // "return"
	if b.isOp(";") {
		b.next()
		return 0
	}
	e := b.parseExpr()
	b.skipToSemicolon()
	return e
}

func (b *builder) parseParenExpr() ids.ExprID {
	if b.isOp("(") {
		b.next()
	}
	e := b.parseExpr()
	if b.isOp(")") {
		b.next()
	}
	return e
}

var declModifiers = map[string]bool{"static": true, "const": true, "new": true, "decl": true}

// tryParseDecl recognizes a local variable declaration by the same
// lookahead syntax.Parser.scanNameAndType uses at file scope: a type
// token followed by an identifier immediately followed by one of `= ; [ ,`.
// Not a declaration, it rewinds and returns false so the caller falls
// through to parseExpr.
func (b *builder) tryParseDecl(bm *defmap.BlockDefMap) (ids.ExprID, bool) {
	save := b.pos
	start := b.peek().Range.Start
	for b.peek().Kind == lexer.KindIdent && declModifiers[b.peek().Text] {
		b.next()
	}
	if b.peek().Kind != lexer.KindIdent {
		b.pos = save
		return 0, false
	}
	typeText := b.peek().Text
	b.next()
	for b.isOp("[") {
		b.next()
		for !b.atEOF() && !b.isOp("]") {
			b.next()
		}
		if b.isOp("]") {
			b.next()
		}
	}
	if b.peek().Kind != lexer.KindIdent {
		b.pos = save
		return 0, false
	}
	nxt := b.peekAt(1)
	if !(nxt.Kind == lexer.KindOp && (nxt.Text == "=" || nxt.Text == ";" || nxt.Text == "[" || nxt.Text == ",")) {
		b.pos = save
		return 0, false
	}

	var declIDs []ids.ExprID
	for {
		name := b.peek().Text
		b.next()
		for b.isOp("[") {
			b.next()
			for !b.atEOF() && !b.isOp("]") {
				b.next()
			}
			if b.isOp("]") {
				b.next()
			}
		}
		var initID ids.ExprID
		hasInit := false
		if b.isOp("=") {
			b.next()
			hasInit = true
			initID = b.parseAssign()
		}
		bindID := b.alloc(Expr{Kind: ExprBinding, BindingName: name, TypeRef: typeText, HasInit: hasInit, Init: initID}, start, b.prevEnd())
		bm.ByName[name] = defmap.LocalRef{Name: name, Expr: bindID}
		declIDs = append(declIDs, bindID)
		if b.isOp(",") {
			b.next()
			continue
		}
		break
	}
	b.skipToSemicolon()
	if len(declIDs) == 1 {
		return declIDs[0], true
	}
	return b.alloc(Expr{Kind: ExprBlock, Statements: declIDs}, start, b.prevEnd()), true
}

// --- expressions, precedence climbing ---

func (b *builder) parseExpr() ids.ExprID { return b.parseComma() }

func (b *builder) parseComma() ids.ExprID {
	start := b.peek().Range.Start
	first := b.parseAssign()
	if !b.isOp(",") {
		return first
	}
	items := []ids.ExprID{first}
	for b.isOp(",") {
		b.next()
		items = append(items, b.parseAssign())
	}
	return b.alloc(Expr{Kind: ExprComma, Items: items}, start, b.prevEnd())
}

var assignOps = map[string]bool{
	"=": true, "+=": true, "-=": true, "*=": true, "/=": true, "%=": true,
	"&=": true, "|=": true, "^=": true, "<<=": true, ">>=": true,
}

func (b *builder) parseAssign() ids.ExprID {
	start := b.peek().Range.Start
	left := b.parseTernary()
	if b.peek().Kind == lexer.KindOp && assignOps[b.peek().Text] {
		op := b.peek().Text
		b.next()
		right := b.parseAssign() // right-associative
		return b.alloc(Expr{Kind: ExprBinaryOp, Op: op, Left: left, Right: right}, start, b.prevEnd())
	}
	return left
}

func (b *builder) parseTernary() ids.ExprID {
	start := b.peek().Range.Start
	cond := b.parseBinary(0)
	if !b.isOp("?") {
		return cond
	}
	b.next()
	then := b.parseAssign()
	if b.isOp(":") {
		b.next()
	}
	els := b.parseAssign()
	return b.alloc(Expr{Kind: ExprTernaryOp, Cond: cond, Then: then, Else: els}, start, b.prevEnd())
}

// binaryPrecedence: lower binds looser. Matches SourcePawn's C-family
// operator precedence (logical-or loosest, multiplicative tightest before
// unary/postfix).
var binaryPrecedence = []map[string]bool{
	{"||": true},
	{"&&": true},
	{"|": true},
	{"^": true},
	{"&": true},
	{"==": true, "!=": true},
	{"<": true, "<=": true, ">": true, ">=": true},
	{"<<": true, ">>": true},
	{"+": true, "-": true},
	{"*": true, "/": true, "%": true},
}

func (b *builder) parseBinary(level int) ids.ExprID {
	if level >= len(binaryPrecedence) {
		return b.parseUnary()
	}
	start := b.peek().Range.Start
	left := b.parseBinary(level + 1)
	for b.peek().Kind == lexer.KindOp && binaryPrecedence[level][b.peek().Text] {
		op := b.peek().Text
		b.next()
		right := b.parseBinary(level + 1)
		left = b.alloc(Expr{Kind: ExprBinaryOp, Op: op, Left: left, Right: right}, start, b.prevEnd())
	}
	return left
}

var unaryOps = map[string]bool{"!": true, "-": true, "+": true, "~": true, "++": true, "--": true}

func (b *builder) parseUnary() ids.ExprID {
	start := b.peek().Range.Start
	if b.peek().Kind == lexer.KindOp && unaryOps[b.peek().Text] {
		op := b.peek().Text
		b.next()
		operand := b.parseUnary()
		return b.alloc(Expr{Kind: ExprUnaryOp, Op: op, Operand: operand}, start, b.prevEnd())
	}
	return b.parsePostfix()
}

func (b *builder) parsePostfix() ids.ExprID {
	start := b.peek().Range.Start
	e := b.parsePrimary()
	for {
		switch {
		case b.isOp("."):
			b.next()
			name := b.peek().Text
			if b.peek().Kind == lexer.KindIdent {
				b.next()
			}
			if b.isOp("(") {
				b.next()
				args := b.parseArgs()
				if b.isOp(")") {
					b.next()
				}
				e = b.alloc(Expr{Kind: ExprMethodCall, Target: e, Name: name, Args: args}, start, b.prevEnd())
			} else {
				e = b.alloc(Expr{Kind: ExprFieldAccess, Target: e, Name: name}, start, b.prevEnd())
			}
		case b.isOp("::"):
			b.next()
			name := b.peek().Text
			if b.peek().Kind == lexer.KindIdent {
				b.next()
			}
			e = b.alloc(Expr{Kind: ExprScopeAccess, Target: e, Name: name}, start, b.prevEnd())
		case b.isOp("("):
			b.next()
			args := b.parseArgs()
			if b.isOp(")") {
				b.next()
			}
			e = b.alloc(Expr{Kind: ExprCall, Callee: e, Args: args}, start, b.prevEnd())
		case b.isOp("["):
			b.next()
			idx := b.parseExpr()
			if b.isOp("]") {
				b.next()
			}
			e = b.alloc(Expr{Kind: ExprBinaryOp, Op: "[]", Left: e, Right: idx}, start, b.prevEnd())
		case b.isOp("++") || b.isOp("--"):
			op := b.peek().Text
			b.next()
			e = b.alloc(Expr{Kind: ExprUnaryOp, Op: "post" + op, Operand: e}, start, b.prevEnd())
		default:
			return e
		}
	}
}

func (b *builder) parseArgs() []ids.ExprID {
	var args []ids.ExprID
	for !b.atEOF() && !b.isOp(")") {
		args = append(args, b.parseAssign())
		if b.isOp(",") {
			b.next()
			continue
		}
		break
	}
	return args
}

func (b *builder) parsePrimary() ids.ExprID {
	t := b.peek()
	start := t.Range.Start
	switch t.Kind {
	case lexer.KindIntLit:
		b.next()
		return b.alloc(Expr{Kind: ExprLiteral, LitKind: LitInt, LitText: t.Text}, start, b.prevEnd())
	case lexer.KindFloatLit:
		b.next()
		return b.alloc(Expr{Kind: ExprLiteral, LitKind: LitFloat, LitText: t.Text}, start, b.prevEnd())
	case lexer.KindCharLit:
		b.next()
		return b.alloc(Expr{Kind: ExprLiteral, LitKind: LitChar, LitText: t.Text}, start, b.prevEnd())
	case lexer.KindStringLit:
		b.next()
		return b.alloc(Expr{Kind: ExprLiteral, LitKind: LitString, LitText: t.Text}, start, b.prevEnd())
	case lexer.KindIdent:
		switch t.Text {
		case "true", "false":
			b.next()
			return b.alloc(Expr{Kind: ExprLiteral, LitKind: LitBool, LitText: t.Text}, start, b.prevEnd())
		case "null", "INVALID_HANDLE":
			b.next()
			return b.alloc(Expr{Kind: ExprLiteral, LitKind: LitNull, LitText: t.Text}, start, b.prevEnd())
		case "new":
			return b.parseNew()
		case "view_as":
			return b.parseViewAs()
		}
		b.next()
		return b.alloc(Expr{Kind: ExprIdent, Ident: t.Text}, start, b.prevEnd())
	case lexer.KindOp:
		if t.Text == "(" {
			b.next()
			inner := b.parseExpr()
			if b.isOp(")") {
				b.next()
			}
			return inner
		}
	}
	// Unrecognized token: consume it so the caller always makes progress.
	b.next()
	return b.alloc(Expr{Kind: ExprMissing}, start, b.prevEnd())
}

func (b *builder) parseNew() ids.ExprID {
	start := b.peek().Range.Start
	b.next() // "new"
	name := ""
	if b.peek().Kind == lexer.KindIdent {
		name = b.peek().Text
		b.next()
	}
	var args []ids.ExprID
	if b.isOp("(") {
		b.next()
		args = b.parseArgs()
		if b.isOp(")") {
			b.next()
		}
	}
	return b.alloc(Expr{Kind: ExprNew, NewName: name, Args: args}, start, b.prevEnd())
}

func (b *builder) parseViewAs() ids.ExprID {
	start := b.peek().Range.Start
	b.next() // "view_as"
	typeText := ""
	if b.isOp("<") {
		b.next()
		var parts []string
		for !b.atEOF() && !b.isOp(">") {
			parts = append(parts, b.peek().Text)
			b.next()
		}
		if b.isOp(">") {
			b.next()
		}
		typeText = joinParts(parts)
	}
	var inner ids.ExprID
	if b.isOp("(") {
		b.next()
		inner = b.parseExpr()
		if b.isOp(")") {
			b.next()
		}
	}
	return b.alloc(Expr{Kind: ExprViewAs, TypeRef: typeText, Inner: inner}, start, b.prevEnd())
}

func joinParts(parts []string) string {
	out := ""
	for _, p := range parts {
		out += p
	}
	return out
}
