package preprocessor

import (
	"strings"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/sperrors"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/splog"
)

// DefaultMacroExpansionDepth bounds recursive macro-calling-macro expansion
// (spec.md §4.1: "a macro expanding to itself, directly or transitively,
// must not loop forever"). Overridable via Options.MaxExpansionDepth.
const DefaultMacroExpansionDepth = 6

// Options configures one PreprocessFile call.
type Options struct {
	MaxExpansionDepth int
	Resolver          IncludeResolver
	// Seed carries macros already visible at the start of the file (e.g.
	// from a prior #include of a shared header during include-closure
	// collection); nil means "start empty".
	Seed MacroMap
	// CollectMacros recursively preprocesses a resolved #include target
	// and returns its surviving macros, merged into this file's macro
	// map at the include site (spec.md §4.1). Nil means includes never
	// contribute macros (every #include still resolves to an edge for
	// internal/includegraph; only cross-file macro visibility is
	// skipped), matching the resolver-less case already handled below.
	CollectMacros MacroCollector
}

type condFrame struct {
	// parentActive is whether every enclosing frame is currently active;
	// an #if nested inside a false branch must never itself activate,
	// however its own condition evaluates.
	parentActive  bool
	active        bool
	everActivated bool
	sawElse       bool
}

// active reports whether code directly inside this frame is emitted.
func (f condFrame) active() bool { return f.parentActive && f.active }

// PreprocessFile runs the full conditional-compilation / macro-expansion /
// include-resolution pass over one file and returns its PreprocessingResult.
// Mirrors the original's `preprocess_file` + `collect_macros` (see
// original_source/crates/preprocessor/src/lib.rs): a single top-to-bottom
// walk threading one MacroMap and one condition-frame stack.
func PreprocessFile(file FileInput, opts Options) *Result {
	maxDepth := opts.MaxExpansionDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMacroExpansionDepth
	}

	macros := MacroMap{}
	for k, v := range opts.Seed {
		macros[k] = v
	}

	res := &Result{
		File:    file,
		Offsets: map[int][]Offset{},
		ArgsMap: map[int][]ArgSpan{},
	}

	lines := splitLinesKeepingCount(file.Text)
	lineStarts := lineByteStarts(lines)
	var stack []condFrame
	macroIdx := 0
	inactiveStart := -1

	isActive := func() bool {
		for _, f := range stack {
			if !f.active() {
				return false
			}
		}
		return true
	}
	// parentActiveForTop is whether everything enclosing the innermost
	// frame (not the innermost frame's own condition) is active — used
	// when deciding whether a brand new #if/#elif condition should even
	// be evaluated.
	parentActiveForTop := func() bool {
		for _, f := range stack[:max0(len(stack)-1)] {
			if !f.active() {
				return false
			}
		}
		return true
	}

	var out strings.Builder
	flushInactive := func(endExclusive int) {
		if inactiveStart >= 0 {
			res.InactiveRanges = append(res.InactiveRanges, LineRange{Start: inactiveStart, End: endExclusive - 1})
			inactiveStart = -1
		}
	}

	for idx, line := range lines {
		active := isActive()

		trimmed := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(trimmed, "#") {
			word, rest := scanDirective(trimmed[1:])
			switch word {
			case "if":
				cond := active && evalActive(rest, macros, res, lineRangeAt(lineStarts, line, idx), file.ID)
				stack = append(stack, condFrame{parentActive: active, active: cond, everActivated: cond})
			case "elif":
				if len(stack) == 0 {
					break
				}
				top := &stack[len(stack)-1]
				parentOK := parentActiveForTop()
				if top.everActivated || !parentOK {
					top.active = false
				} else {
					top.active = evalActive(rest, macros, res, lineRangeAt(lineStarts, line, idx), file.ID)
					top.everActivated = top.active
				}
			case "else":
				if len(stack) == 0 {
					break
				}
				top := &stack[len(stack)-1]
				top.sawElse = true
				top.active = !top.everActivated
				top.everActivated = true
			case "endif":
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
			case "define":
				if active {
					handleDefine(rest, file.ID, &macroIdx, macros)
				}
			case "undef":
				if active {
					delete(macros, strings.TrimSpace(rest))
				}
			case "include", "tryinclude":
				if active {
					handleInclude(word == "tryinclude", rest, file, opts.Resolver, opts.CollectMacros, macros, res, idx, lineRangeAt(lineStarts, line, idx))
				}
			case "pragma":
				if active {
					handlePragma(rest, res, idx)
				}
			default:
				splog.Preprocessor("unrecognized directive %q at %s:%d", word, file.Path, idx)
			}
			out.WriteString("\n")
			// Directive lines are control points, never skipped content:
			// they always close an in-progress inactive run (even one
			// that continues immediately after, e.g. back-to-back #endif
			// #if) rather than extending it.
			flushInactive(idx)
			continue
		}

		if !active {
			if inactiveStart < 0 {
				inactiveStart = idx
			}
			out.WriteString("\n")
			continue
		}
		flushInactive(idx)

		expanded, offsets, errs := expandLine(line, macros, maxDepth)
		out.WriteString(expanded)
		out.WriteString("\n")
		if len(offsets) > 0 {
			res.Offsets[idx] = offsets
		}
		for _, e := range errs {
			res.Errors = append(res.Errors, e)
		}
	}
	flushInactive(len(lines))

	res.Text = strings.TrimSuffix(out.String(), "\n")
	res.Macros = macros
	return res
}

func max0(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// lineByteStarts returns, for each line, its byte offset in the
// (CRLF-normalized) joined text, for translating a line-based directive
// into the byte Range sperrors expects.
func lineByteStarts(lines []string) []int {
	starts := make([]int, len(lines))
	pos := 0
	for i, l := range lines {
		starts[i] = pos
		pos += len(l) + 1 // +1 for the '\n' splitLinesKeepingCount consumed
	}
	return starts
}

func lineRangeAt(starts []int, line string, idx int) sperrors.Range {
	start := starts[idx]
	return sperrors.Range{Start: start, End: start + len(line)}
}

// splitLinesKeepingCount splits on '\n' without the trailing empty element
// strings.Split would leave for a file ending in a newline, matching the
// invariant that preprocessed line count equals raw line count.
func splitLinesKeepingCount(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	return lines
}

func scanDirective(afterHash string) (word, rest string) {
	i := 0
	for i < len(afterHash) && (afterHash[i] == ' ' || afterHash[i] == '\t') {
		i++
	}
	j := i
	for j < len(afterHash) && isIdentPartByte(afterHash[j]) {
		j++
	}
	return afterHash[i:j], strings.TrimLeft(afterHash[j:], " \t")
}

func evalActive(expr string, macros MacroMap, res *Result, lineRange sperrors.Range, file ids.FileID) bool {
	v, err := evalCondition(expr, macros)
	if err != nil {
		res.Errors = append(res.Errors, sperrors.NewPreprocessorEvaluationError(file, lineRange, expr, err))
		return false
	}
	return v
}

func handleDefine(rest string, file ids.FileID, macroIdx *int, macros MacroMap) {
	lx := lexer.New(rest)
	nameTok := lx.Next()
	if nameTok.Kind != lexer.KindIdent {
		return
	}
	m := parseDefine(lx, nameTok.Text)
	m.File = file
	m.Idx = *macroIdx
	*macroIdx++
	macros[m.Name] = m
}

func handleInclude(isTry bool, rest string, file FileInput, resolver IncludeResolver, collect MacroCollector, macros MacroMap, res *Result, idx int, lineRange sperrors.Range) {
	name, chevron, ok := parseIncludeTarget(rest)
	if !ok {
		return
	}
	if resolver == nil {
		if !isTry {
			res.Errors = append(res.Errors, sperrors.NewUnresolvedIncludeError(file.ID, lineRange, name, isTry))
		}
		return
	}
	fromDir := dirOf(file.Path)
	target, found := resolver.Resolve(fromDir, name, chevron)
	if !found {
		if !isTry {
			res.Errors = append(res.Errors, sperrors.NewUnresolvedIncludeError(file.ID, lineRange, name, isTry))
		}
		return
	}
	res.Includes = append(res.Includes, IncludeEdge{
		Line: idx, Target: target.ID, TargetPath: target.Path,
		TryInclude: isTry, ChevronForm: chevron,
	})
	if collect != nil {
		for name, m := range collect(target) {
			macros[name] = m
		}
	}
}

// parseIncludeTarget parses `<foo/bar>` or `"foo/bar"` (with or without a
// trailing `.inc`/`.sp`, left to the resolver to try both).
func parseIncludeTarget(rest string) (name string, chevron bool, ok bool) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return "", false, false
	}
	switch rest[0] {
	case '<':
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return "", false, false
		}
		return rest[1:end], true, true
	case '"':
		end := strings.IndexByte(rest[1:], '"')
		if end < 0 {
			return "", false, false
		}
		return rest[1 : 1+end], false, true
	default:
		return rest, false, true
	}
}

func dirOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return "."
}

// handlePragma handles `#pragma deprecated <message>`, `#pragma semicolon
// 0|1`, and `#pragma newdecls required|optional` (SPEC_FULL.md §3.1); any
// other pragma is ignored, matching the original's permissive handling of
// unrecognized pragmas.
func handlePragma(rest string, res *Result, line int) {
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "semicolon":
		if len(fields) > 1 {
			res.Pragmas.SemicolonRequired = fields[1] != "0"
		}
	case "newdecls":
		if len(fields) > 1 {
			res.Pragmas.NewdeclsRequired = fields[1] == "required"
		}
	case "deprecated":
		msg := strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
		if res.DeprecatedAt == nil {
			res.DeprecatedAt = map[int]string{}
		}
		res.DeprecatedAt[line] = msg
	}
}
