package preprocessor

import (
	"strconv"
	"strings"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
)

func toRangeless(s lexer.Symbol) RangelessSymbol {
	r := RangelessSymbol{Kind: int(s.Kind), Text: s.Text}
	r.Delta.Line = s.Delta.Line
	r.Delta.Col = s.Delta.Col
	return r
}

// parseDefine parses the token stream following `#define` into a *Macro.
// name has already been scanned; lx is positioned right after it.
//
// Params are present iff '(' immediately follows the name with zero
// intervening whitespace (Delta.Col == 0 on the '(' token) — spec.md
// §4.1's rule for distinguishing `#define F(x) ...` (function-like) from
// `#define F (x)` (object-like, body is `(x) ...`).
func parseDefine(lx *lexer.Lexer, name string) *Macro {
	m := &Macro{Name: name}

	first := lx.Next()
	if first.Kind == lexer.KindOp && first.Text == "(" && first.Delta.Col == 0 && first.Delta.Line == 0 {
		params, bodyStart := parseMacroParams(lx)
		m.Params = params
		m.Body = scanMacroBody(lx, bodyStart)
		return m
	}

	// first token is the start of the (object-like) body.
	m.Body = scanMacroBody(lx, &first)
	return m
}

// parseMacroParams scans `%1, %0, %2)` style position lists up to the
// closing paren and builds the placeholder -> argument-index table.
// Unlabeled commas (plain `(...)`")  still count argument slots even when
// no `%N` placeholders are given for them (a macro may ignore an
// argument entirely).
func parseMacroParams(lx *lexer.Lexer) (*MacroParams, *lexer.Symbol) {
	params := &MacroParams{}
	argIdx := 0
	for i := range params.Slots {
		params.Slots[i] = i // identity default: %i -> argument i
	}

	for {
		tok := lx.Next()
		switch {
		case tok.Kind == lexer.KindOp && tok.Text == ")":
			params.NumArgs = argIdx + 1
			return params, nil
		case tok.Kind == lexer.KindOp && tok.Text == ",":
			argIdx++
		case tok.Kind == lexer.KindOp && tok.Text == "%":
			numTok := lx.Next()
			if numTok.Kind == lexer.KindIntLit {
				if d, err := strconv.Atoi(numTok.Text); err == nil && d >= 0 && d <= 9 {
					params.Slots[d] = argIdx
				}
			}
		case tok.Kind == lexer.KindEOF:
			params.NumArgs = argIdx + 1
			return params, nil
		}
	}
}

func scanMacroBody(lx *lexer.Lexer, first *lexer.Symbol) []RangelessSymbol {
	var body []RangelessSymbol
	if first != nil && first.Kind != lexer.KindEOF && first.Kind != lexer.KindNewline {
		body = append(body, toRangeless(*first))
	}
	for {
		tok := lx.Next()
		if tok.Kind == lexer.KindEOF || tok.Kind == lexer.KindNewline {
			break
		}
		if tok.Kind == lexer.KindBlockComment || tok.Kind == lexer.KindLineComment {
			continue
		}
		// A line continuation ("\" at end of line) is not joined: the
		// preprocessor splits its input on '\n', so this function only
		// ever sees one physical #define line.
		body = append(body, toRangeless(tok))
	}
	return body
}

// substituteArgs performs %N splice, #%N stringize, and %% escape
// substitution of a function-like macro's body against the literal text
// of each call-site argument (spec.md §4.1 step 3).
func substituteArgs(m *Macro, args []string) []RangelessSymbol {
	var out []RangelessSymbol
	body := m.Body
	for i := 0; i < len(body); i++ {
		tok := body[i]
		if tok.Kind == int(lexer_KindOp) && tok.Text == "#" && i+1 < len(body) {
			next := body[i+1]
			if next.Kind == int(lexer_KindOp) && next.Text == "%" && i+2 < len(body) {
				digitTok := body[i+2]
				if d, err := strconv.Atoi(digitTok.Text); err == nil && d >= 0 && d <= 9 && m.Params != nil {
					argIdx := m.Params.Slots[d]
					str := stringizeArg(args, argIdx)
					out = append(out, RangelessSymbol{Kind: int(lexer_KindStringLit), Text: str})
					i += 2
					continue
				}
			}
		}
		if tok.Kind == int(lexer_KindOp) && tok.Text == "%" && i+1 < len(body) {
			next := body[i+1]
			if next.Kind == int(lexer_KindOp) && next.Text == "%" {
				out = append(out, RangelessSymbol{Kind: int(lexer_KindOp), Text: "%"})
				i++
				continue
			}
			if next.Kind == int(lexer_KindIntLit) {
				if d, err := strconv.Atoi(next.Text); err == nil && d >= 0 && d <= 9 && m.Params != nil {
					argIdx := m.Params.Slots[d]
					if argIdx >= 0 && argIdx < len(args) {
						out = append(out, RangelessSymbol{Kind: int(lexer_KindIdent), Text: args[argIdx]})
					}
					i++
					continue
				}
			}
		}
		out = append(out, tok)
	}
	return out
}

func stringizeArg(args []string, idx int) string {
	if idx < 0 || idx >= len(args) {
		return `""`
	}
	// Collapse internal whitespace runs to a single space, matching
	// spec.md's "stringization ... concatenated with intervening space".
	fields := strings.Fields(args[idx])
	return `"` + strings.Join(fields, " ") + `"`
}

// Kind aliases avoiding an import cycle-free but verbose qualification;
// these mirror lexer.Kind's numeric values exactly (see toRangeless).
const (
	lexer_KindOp       = int(lexer.KindOp)
	lexer_KindStringLit = int(lexer.KindStringLit)
	lexer_KindIntLit    = int(lexer.KindIntLit)
	lexer_KindIdent     = int(lexer.KindIdent)
)
