// Package preprocessor is component C3: conditional compilation, macro
// storage + expansion, and include resolution, producing a
// PreprocessingResult (preprocessed text, an offset map back to source
// positions, and collected diagnostics). Grounded on
// original_source/crates/preprocessor/src/lib.rs and
// original_source/crates/preprocessor/src/macros.rs (the Rust original this
// spec was distilled from) for exact semantics where spec.md is silent,
// and on the teacher's internal/indexing/include_resolver.go for the
// include-path resolution idiom (quote form relative-first, chevron form
// searches configured directories).
package preprocessor

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
)

// MacroParams holds a function-like macro's parameter indirection table.
// SourcePawn macros are written with positional placeholders `%0`..`%9`
// in the body, and PARAMS declares, via integer literals separated by
// commas, which *argument* slot each placeholder index maps to — this
// lets a macro reorder or repeat arguments. Index i of Slots gives the
// argument index substituted for placeholder `%i`.
type MacroParams struct {
	Slots    [10]int // Slots[placeholderIndex] = argument index
	NumArgs  int      // number of comma-separated argument slots expected
}

// Macro is one #define entry, either object-like (Params == nil) or
// function-like.
type Macro struct {
	File   ids.FileID
	Idx    int // position among this file's macros, for MacroID interning
	Name   string
	Params *MacroParams
	Body   []RangelessSymbol
}

// RangelessSymbol is a lexer Symbol stripped of its source Range: macro
// bodies are stored once and re-expanded at many call sites, so their
// tokens carry only Kind/Text/Delta — the Range is meaningless until an
// expansion site gives it one.
type RangelessSymbol struct {
	Kind  int // mirrors lexer.Kind without importing it, to keep this struct trivially comparable
	Text  string
	Delta struct{ Line, Col int }
}

// MacroMap is the set of #defines visible at a point in a file, keyed by
// name. Built recursively: collect_macros(file) merges every transitively
// included file's surviving macros (spec.md §4.1).
type MacroMap map[string]*Macro

// Offset maps a span of preprocessed text back to the original source
// span it was expanded from, with the cumulative length delta the
// expansion introduced (diff = len(expansion) - len(original)). Keyed by
// preprocessed line number in PreprocessingResult.Offsets.
type Offset struct {
	Idx          int // index of this offset within its line's slice, for stable ordering
	File         ids.FileID
	SourceRange  [2]int // [start,end) in the ORIGINAL source text
	PreRange     [2]int // [start,end) in the PREPROCESSED text
	Diff         int
}

// ArgSpan records one function-like macro argument's source span and the
// span it was expanded to, used by args_map for per-argument navigation.
type ArgSpan struct {
	SourceRange [2]int
	ExpandedRange [2]int
}

// LineRange is an inclusive [Start, End] line range, 0-based.
type LineRange struct {
	Start int
	End   int
}

// PragmaFlags carries the per-file pragmas the original tracks beyond
// `deprecated` (see SPEC_FULL.md §3.1).
type PragmaFlags struct {
	SemicolonRequired bool // #pragma semicolon 1 (default true in modern SourcePawn)
	NewdeclsRequired  bool // #pragma newdecls required
}

// Result is the per-file PreprocessingResult of spec.md §3.
type Result struct {
	File FileInput

	Text string

	Macros MacroMap

	// Offsets maps preprocessed line number -> the offsets recorded for
	// macro expansions that occurred on that line, in emission order.
	Offsets map[int][]Offset

	// ArgsMap is keyed by preprocessed line number and holds per-argument
	// spans for function-like macro calls on that line. PreprocessFile
	// allocates it empty and records no spans into it.
	ArgsMap map[int][]ArgSpan

	InactiveRanges []LineRange

	Errors []error

	Pragmas PragmaFlags

	// DeprecatedAt maps the preprocessed line index of a `#pragma
	// deprecated <message>` directive to its message text. Since
	// directive lines are always blanked from Text, internal/syntax's
	// parser looks up line-1 (the pragma's own line) relative to the
	// declaration it is building to find an attached message (spec.md
	// §4.2: "#pragma deprecated on the line immediately preceding an
	// item marks the item deprecated").
	DeprecatedAt map[int]string

	// Includes lists every #include/#tryinclude successfully resolved
	// from this file, in source order; internal/includegraph consumes
	// this to build edges without re-scanning the raw text.
	Includes []IncludeEdge
}

// FileInput is the minimal view of a file the preprocessor needs: its
// FileID and text. Kept separate from vfs.FileRecord so this package
// doesn't import vfs (avoids an import cycle with internal/query, which
// imports both).
type FileInput struct {
	ID   ids.FileID
	Path string
	Text string
}

// IncludeEdge is one resolved #include/#tryinclude.
type IncludeEdge struct {
	Line       int
	Target     ids.FileID
	TargetPath string
	TryInclude bool
	ChevronForm bool
}

// IncludeResolver resolves an #include/#tryinclude path to a file, given
// the including file's own directory. Implemented by internal/query using
// the current VFS snapshot + internal/config's include directories; kept
// as an interface here so the preprocessor has no VFS dependency (and so
// tests can resolve from an in-memory map).
type IncludeResolver interface {
	// Resolve returns the resolved file's FileInput and ok=true, or
	// ok=false if nothing matched. chevron selects search order: quote
	// form tries fromDir first, chevron form tries the configured include
	// directories first (internal/query's resolver then falls back to
	// fromDir).
	Resolve(fromDir, includeName string, chevron bool) (FileInput, bool)
}

// MacroCollector recursively preprocesses a resolved include target and
// returns the MacroMap that survives to the end of it (spec.md §4.1:
// "collect_macros... recursively collected from included files"),
// merged into the including file's own macro map at the `#include` site.
// Implemented by internal/query.Database, which memoizes per file and
// guards against an include cycle by tracking the files currently being
// preprocessed on the current call stack (spec.md §8 scenario 6).
type MacroCollector func(target FileInput) MacroMap
