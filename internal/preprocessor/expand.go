package preprocessor

import (
	"strings"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
)

// expandLine performs macro expansion over one physical, already-active
// (not preprocessor-directive, not conditionally-skipped) line of source
// text, returning the expanded text plus one Offset per macro call site
// expanded on this line (spec.md §4.1, "For each expansion, record an
// Offset").
//
// Macro invocations are resolved entirely within a single line: SourcePawn
// macro bodies and call arguments cannot themselves embed a raw newline
// (only a backslash-continued #define line can, which this preprocessor
// does not join — see DESIGN.md), so per-line scanning loses no generality
// spec.md's examples or invariants depend on.
func expandLine(lineText string, macros MacroMap, maxDepth int) (string, []Offset, []error) {
	return expandLineAt(lineText, macros, maxDepth, 0)
}

func expandLineAt(lineText string, macros MacroMap, maxDepth, currentDepth int) (string, []Offset, []error) {
	if currentDepth >= maxDepth {
		return lineText, nil, nil
	}

	toks := tokenizeLine(lineText)
	var out strings.Builder
	var offsets []Offset
	var errs []error

	i := 0
	lastEnd := 0
	for i < len(toks) {
		tok := toks[i]
		if tok.Kind != lexer.KindIdent {
			i++
			continue
		}
		m, ok := macros[tok.Text]
		if !ok {
			i++
			continue
		}

		callStart := tok.Range.Start
		var callEnd int
		var expandedBody string

		if m.Params == nil {
			callEnd = tok.Range.End
			expandedBody = bodyToText(m.Body, nil)
		} else {
			// Function-like: the next non-comment token must be "(" on
			// this same line, or the macro does not expand at all
			// (spec.md §4.1 step 3).
			j := i + 1
			for j < len(toks) && (toks[j].Kind == lexer.KindBlockComment || toks[j].Kind == lexer.KindLineComment) {
				j++
			}
			if j >= len(toks) || toks[j].Kind != lexer.KindOp || toks[j].Text != "(" {
				i++
				continue
			}
			args, closeIdx, ok := collectArgs(toks, j, lineText, m.Params.NumArgs)
			if !ok {
				errs = append(errs, errUnterminatedCall(m.Name))
				i++
				continue
			}
			callEnd = toks[closeIdx].Range.End
			expandedBody = bodyToText(m.Body, substituteArgsText(m, args))
			i = closeIdx // advance to the call's ')'; the i++ at the bottom of the loop steps past it
		}

		// recursively expand the substituted body (handles macro-calling-macro)
		nested, nestedOffsets, nestedErrs := expandLineAt(expandedBody, macros, maxDepth, currentDepth+1)
		errs = append(errs, nestedErrs...)

		out.WriteString(lineText[lastEnd:callStart])
		preStart := out.Len()
		out.WriteString(nested)
		preEnd := out.Len()

		offsets = append(offsets, Offset{
			Idx:         len(offsets),
			SourceRange: [2]int{callStart, callEnd},
			PreRange:    [2]int{preStart, preEnd},
			Diff:        (preEnd - preStart) - (callEnd - callStart),
		})
		_ = nestedOffsets // nested offsets are already folded into the outer span; original-source back-mapping re-walks from SourceRange

		lastEnd = callEnd
		i++
	}
	out.WriteString(lineText[lastEnd:])
	return out.String(), offsets, errs
}

// tokenizeLine lexes one line (no embedded '\n') into its full token
// sequence including comments, since comment tokens must still be
// skippable when peeking for a macro call's '('.
func tokenizeLine(line string) []lexer.Symbol {
	lx := lexer.New(line)
	var toks []lexer.Symbol
	for {
		s := lx.Next()
		if s.Kind == lexer.KindEOF {
			break
		}
		toks = append(toks, s)
	}
	return toks
}

// collectArgs splits a function-like macro call's argument list starting
// at the "(" token index openIdx. maxArgs, when positive, bounds how many
// top-level commas are treated as separators: once maxArgs-1 arguments
// have been split off, the trailing argument absorbs any further commas
// verbatim (spec.md §4.1's overflow-comma rule). maxArgs<=0 means split on
// every top-level comma (arg count unknown to the caller).
func collectArgs(toks []lexer.Symbol, openIdx int, lineText string, maxArgs int) ([]string, int, bool) {
	depth := 0
	argStart := -1
	var args []string
	for k := openIdx; k < len(toks); k++ {
		t := toks[k]
		switch {
		case t.Kind == lexer.KindOp && t.Text == "(":
			depth++
			if depth == 1 {
				argStart = t.Range.End
			}
		case t.Kind == lexer.KindOp && t.Text == ")":
			depth--
			if depth == 0 {
				args = append(args, strings.TrimSpace(lineText[argStart:t.Range.Start]))
				return args, k, true
			}
		case t.Kind == lexer.KindOp && t.Text == "," && depth == 1:
			if maxArgs > 0 && len(args) >= maxArgs-1 {
				continue // overflow comma: folded into the trailing argument
			}
			args = append(args, strings.TrimSpace(lineText[argStart:t.Range.Start]))
			argStart = t.Range.End
		}
	}
	return nil, 0, false
}

type errUnterminatedCallT struct{ name string }

func (e errUnterminatedCallT) Error() string { return "unterminated macro call: " + e.name }
func errUnterminatedCall(name string) error  { return errUnterminatedCallT{name} }

// bodyToText renders a macro body to text, applying %N/#%N/%% argument
// substitution first (via subst, which may be nil for object-like
// macros). Adjacent tokens get a single joining space whenever the
// original body recorded any intervening whitespace, so e.g. `a + b`
// does not collapse to `a+b`.
func bodyToText(body []RangelessSymbol, subst func(RangelessSymbol, int) (string, bool)) string {
	var sb strings.Builder
	for idx := 0; idx < len(body); idx++ {
		tok := body[idx]
		if idx > 0 && (tok.Delta.Line > 0 || tok.Delta.Col > 0) {
			sb.WriteByte(' ')
		}
		if subst != nil {
			if text, consumed := subst(tok, idx); consumed {
				sb.WriteString(text)
			} else {
				sb.WriteString(tok.Text)
			}
		} else {
			sb.WriteString(tok.Text)
		}
	}
	return sb.String()
}

// substituteArgsText returns a per-index substitution function implementing
// %N splice, #%N stringize, and %% escape over m's body, consuming the
// extra tokens each form needs (the digit token after '%', or '%'+digit
// after '#') by tracking a skip-until index in the returned closure.
func substituteArgsText(m *Macro, args []string) func(RangelessSymbol, int) (string, bool) {
	skipUntil := -1
	return func(tok RangelessSymbol, idx int) (string, bool) {
		if idx <= skipUntil {
			return "", true // suppressed: already folded into an earlier substitution
		}
		if tok.Kind == int(lexer.KindOp) && tok.Text == "#" && idx+2 < len(m.Body) {
			if m.Body[idx+1].Kind == int(lexer.KindOp) && m.Body[idx+1].Text == "%" && m.Body[idx+2].Kind == int(lexer.KindIntLit) {
				d := digitOf(m.Body[idx+2].Text)
				if d >= 0 && m.Params != nil {
					skipUntil = idx + 2
					return stringizeArg(args, m.Params.Slots[d]), true
				}
			}
		}
		if tok.Kind == int(lexer.KindOp) && tok.Text == "%" && idx+1 < len(m.Body) {
			next := m.Body[idx+1]
			if next.Kind == int(lexer.KindOp) && next.Text == "%" {
				skipUntil = idx + 1
				return "%", true
			}
			if next.Kind == int(lexer.KindIntLit) {
				d := digitOf(next.Text)
				if d >= 0 && m.Params != nil {
					skipUntil = idx + 1
					argIdx := m.Params.Slots[d]
					if argIdx >= 0 && argIdx < len(args) {
						return args[argIdx], true
					}
					return "", true
				}
			}
		}
		return "", false
	}
}

func digitOf(s string) int {
	if len(s) != 1 || s[0] < '0' || s[0] > '9' {
		return -1
	}
	return int(s[0] - '0')
}
