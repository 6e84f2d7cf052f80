package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(src string) []Symbol {
	lx := New(src)
	var out []Symbol
	for {
		s := lx.Next()
		out = append(out, s)
		if s.Kind == KindEOF {
			return out
		}
	}
}

func TestLexer_HashOnlyAtLineStart(t *testing.T) {
	toks := collect("#define N 10\nint a = x #y;")

	require.NotEmpty(t, toks)
	assert.Equal(t, KindHash, toks[0].Kind)

	// The '#' on the second physical line, mid-expression, is not a
	// directive marker — it must lex as a plain operator.
	var midLineHash *Symbol
	for i := range toks {
		if toks[i].Kind == KindOp && toks[i].Text == "#" {
			s := toks[i]
			midLineHash = &s
		}
	}
	require.NotNil(t, midLineHash, "expected a plain '#' operator token")
}

func TestLexer_IdentAndIntLit(t *testing.T) {
	toks := collect("foo123 42 0xFF")
	require.Len(t, toks, 4) // ident, intlit, intlit, eof
	assert.Equal(t, KindIdent, toks[0].Kind)
	assert.Equal(t, "foo123", toks[0].Text)
	assert.Equal(t, KindIntLit, toks[1].Kind)
	assert.Equal(t, "42", toks[1].Text)
	assert.Equal(t, KindIntLit, toks[2].Kind)
	assert.Equal(t, "0xFF", toks[2].Text)
}

func TestLexer_FloatLit(t *testing.T) {
	toks := collect("3.14 2e10")
	assert.Equal(t, KindFloatLit, toks[0].Kind)
	assert.Equal(t, KindFloatLit, toks[1].Kind)
}

func TestLexer_StringAndCharLit(t *testing.T) {
	toks := collect(`"hello\"world" 'a'`)
	assert.Equal(t, KindStringLit, toks[0].Kind)
	assert.Equal(t, `"hello\"world"`, toks[0].Text)
	assert.Equal(t, KindCharLit, toks[1].Kind)
	assert.Equal(t, `'a'`, toks[1].Text)
}

func TestLexer_MultiCharOperatorsLongestMatchFirst(t *testing.T) {
	toks := collect("a <<= b")
	var ops []string
	for _, tok := range toks {
		if tok.Kind == KindOp {
			ops = append(ops, tok.Text)
		}
	}
	require.Len(t, ops, 1)
	assert.Equal(t, "<<=", ops[0])
}

func TestLexer_DeltaTracksWhitespace(t *testing.T) {
	toks := collect("a   b")
	require.Len(t, toks, 3) // a, b, eof
	assert.Equal(t, 0, toks[0].Delta.Col)
	assert.Equal(t, 3, toks[1].Delta.Col)
}

func TestLexer_DeltaTracksNewlines(t *testing.T) {
	toks := collect("a\n\nb")
	// Each newline is its own token carrying Delta.Line 1, so the line of
	// "b" is the sum of Delta.Line over the stream up to and including it.
	line := 0
	var bTok Symbol
	for _, tok := range toks {
		line += tok.Delta.Line
		if tok.Kind == KindIdent && tok.Text == "b" {
			bTok = tok
			break
		}
	}
	assert.Equal(t, 2, line)
	assert.Equal(t, 0, bTok.Delta.Line)
}

func TestLexer_BlockCommentSpansNewlines(t *testing.T) {
	toks := collect("/* line1\nline2 */ x")
	var commentTok, xTok Symbol
	for _, tok := range toks {
		switch tok.Kind {
		case KindBlockComment:
			commentTok = tok
		case KindIdent:
			xTok = tok
		}
	}
	// The comment token carries the newline it spans; "x" follows it on
	// the comment's last line.
	assert.Equal(t, 1, commentTok.Delta.Line)
	assert.Equal(t, 0, xTok.Delta.Line)
}

func TestLexer_FunctionLikeMacroParenAdjacency(t *testing.T) {
	// delta.col == 0 on the '(' immediately after a macro name is the
	// signal the preprocessor uses to detect function-like macros.
	toks := collect("NAME(x)")
	require.True(t, len(toks) >= 2)
	assert.Equal(t, KindIdent, toks[0].Kind)
	assert.Equal(t, KindOp, toks[1].Kind)
	assert.Equal(t, "(", toks[1].Text)
	assert.Equal(t, 0, toks[1].Delta.Col)
	assert.Equal(t, 0, toks[1].Delta.Line)
}

func TestLexer_SeekResetsPendingDeltas(t *testing.T) {
	lx := New("a    b")
	first := lx.Next()
	require.Equal(t, "a", first.Text)
	lx.Seek(first.Range.End)
	second := lx.Next()
	assert.Equal(t, "b", second.Text)
	assert.Equal(t, 4, second.Delta.Col)
}
