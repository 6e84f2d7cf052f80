// Package sperrors defines the typed error values collected alongside query
// results (spec.md §7). Errors never cross a query boundary as panics or
// naked Go errors; they are values stored on the owning result, exactly as
// internal/errors/errors.go does for the teacher's indexing pipeline.
package sperrors

import (
	"fmt"
	"time"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
)

// Kind enumerates the taxonomy from spec.md §7.
type Kind string

const (
	KindEvaluation         Kind = "preprocessor_evaluation"
	KindUnresolvedInclude  Kind = "unresolved_include"
	KindMacroNotFound      Kind = "macro_not_found"
	KindUnresolvedInherit  Kind = "unresolved_inherit"
	KindUnresolvedField    Kind = "unresolved_field"
	KindUnresolvedMethod   Kind = "unresolved_method_call"
	KindUnresolvedCtor     Kind = "unresolved_constructor"
	KindInactiveCode       Kind = "inactive_code"
	KindCancelled          Kind = "cancelled"
)

// Range is a half-open [Start, End) span over a file's text, in byte
// offsets. The preprocessor's errors carry one of these so a caller can map
// it back to an LSP range without the core depending on an LSP type; the
// inference diagnostics below carry an ExprID instead, and
// UnresolvedInheritError a MethodmapID.
type Range struct {
	Start int
	End   int
}

// PreprocessorEvaluationError is produced by the conditional evaluator
// when a #if/#elif expression fails to parse or evaluate; the branch is
// then treated as false (spec.md §4.1).
type PreprocessorEvaluationError struct {
	File      ids.FileID
	Range     Range
	Text      string
	Underlying error
	Timestamp time.Time
}

func NewPreprocessorEvaluationError(file ids.FileID, r Range, text string, err error) *PreprocessorEvaluationError {
	return &PreprocessorEvaluationError{File: file, Range: r, Text: text, Underlying: err, Timestamp: time.Now()}
}

func (e *PreprocessorEvaluationError) Error() string {
	return fmt.Sprintf("preprocessor evaluation failed for %q: %v", e.Text, e.Underlying)
}
func (e *PreprocessorEvaluationError) Unwrap() error { return e.Underlying }
func (e *PreprocessorEvaluationError) Kind() Kind     { return KindEvaluation }

// UnresolvedIncludeError is produced when an #include/#tryinclude path
// cannot be found on any configured include directory.
type UnresolvedIncludeError struct {
	File      ids.FileID
	Range     Range
	Path      string
	TryInclude bool
	Timestamp time.Time
}

func NewUnresolvedIncludeError(file ids.FileID, r Range, path string, tryInclude bool) *UnresolvedIncludeError {
	return &UnresolvedIncludeError{File: file, Range: r, Path: path, TryInclude: tryInclude, Timestamp: time.Now()}
}

func (e *UnresolvedIncludeError) Error() string {
	return fmt.Sprintf("unresolved include %q", e.Path)
}
func (e *UnresolvedIncludeError) Kind() Kind { return KindUnresolvedInclude }

// MacroNotFoundError reports a macro name that could not be found during
// expansion. Nothing in internal/preprocessor constructs one: an
// identifier that is not a defined macro is left in the output as text.
type MacroNotFoundError struct {
	File      ids.FileID
	Range     Range
	Name      string
	Timestamp time.Time
}

func NewMacroNotFoundError(file ids.FileID, r Range, name string) *MacroNotFoundError {
	return &MacroNotFoundError{File: file, Range: r, Name: name, Timestamp: time.Now()}
}

func (e *MacroNotFoundError) Error() string { return fmt.Sprintf("macro not found: %s", e.Name) }
func (e *MacroNotFoundError) Kind() Kind     { return KindMacroNotFound }

// UnresolvedInheritError is attached to a methodmap's data when its
// `inherits` name either does not resolve at all (Exists=false) or
// resolves to a non-methodmap item (Exists=true).
type UnresolvedInheritError struct {
	Methodmap ids.MethodmapID
	Inherit   string
	Exists    bool
	Timestamp time.Time
}

func NewUnresolvedInheritError(mm ids.MethodmapID, name string, exists bool) *UnresolvedInheritError {
	return &UnresolvedInheritError{Methodmap: mm, Inherit: name, Exists: exists, Timestamp: time.Now()}
}

func (e *UnresolvedInheritError) Error() string {
	return fmt.Sprintf("unresolved inherit %q (exists=%v)", e.Inherit, e.Exists)
}
func (e *UnresolvedInheritError) Kind() Kind { return KindUnresolvedInherit }

// FieldExistsKind records what a failed member lookup actually found, for
// UnresolvedFieldError / UnresolvedMethodCallError / UnresolvedConstructorError.
type FieldExistsKind uint8

const (
	ExistsNone FieldExistsKind = iota
	ExistsMethodWithSameName
	ExistsEnumStruct
	ExistsMethodmap
)

// UnresolvedFieldError: `a.b` where `b` is not a field or property of a's
// type; Exists records what was found under that name instead
// (ExistsNone when nothing was).
type UnresolvedFieldError struct {
	Expr      ids.ExprID
	Name      string
	Exists    FieldExistsKind
	Timestamp time.Time
}

func NewUnresolvedFieldError(expr ids.ExprID, name string, exists FieldExistsKind) *UnresolvedFieldError {
	return &UnresolvedFieldError{Expr: expr, Name: name, Exists: exists, Timestamp: time.Now()}
}
func (e *UnresolvedFieldError) Error() string { return fmt.Sprintf("unresolved field %q", e.Name) }
func (e *UnresolvedFieldError) Kind() Kind     { return KindUnresolvedField }

// UnresolvedMethodCallError: `a.b()` where `b` is not a method of a's
// type; Exists records what was found under that name instead
// (ExistsNone when nothing was).
type UnresolvedMethodCallError struct {
	Expr      ids.ExprID
	Name      string
	Exists    FieldExistsKind
	Timestamp time.Time
}

func NewUnresolvedMethodCallError(expr ids.ExprID, name string, exists FieldExistsKind) *UnresolvedMethodCallError {
	return &UnresolvedMethodCallError{Expr: expr, Name: name, Exists: exists, Timestamp: time.Now()}
}
func (e *UnresolvedMethodCallError) Error() string {
	return fmt.Sprintf("unresolved method call %q", e.Name)
}
func (e *UnresolvedMethodCallError) Kind() Kind { return KindUnresolvedMethod }

// UnresolvedConstructorError: `new T(...)` where T is not a methodmap with
// a constructor (spec.md §4.7).
type UnresolvedConstructorError struct {
	Expr      ids.ExprID
	Name      string
	Exists    FieldExistsKind
	Timestamp time.Time
}

func NewUnresolvedConstructorError(expr ids.ExprID, name string, exists FieldExistsKind) *UnresolvedConstructorError {
	return &UnresolvedConstructorError{Expr: expr, Name: name, Exists: exists, Timestamp: time.Now()}
}
func (e *UnresolvedConstructorError) Error() string {
	return fmt.Sprintf("unresolved constructor %q", e.Name)
}
func (e *UnresolvedConstructorError) Kind() Kind { return KindUnresolvedCtor }

// Cancelled is the sentinel value for a cancelled query. No query in this
// module returns it: queries carry no cancellation flag and always run to
// completion.
var Cancelled = &cancelledError{}

type cancelledError struct{}

func (*cancelledError) Error() string { return "query cancelled" }
func (*cancelledError) Kind() Kind     { return KindCancelled }

// MultiError aggregates a batch of diagnostics (e.g. every error produced
// while preprocessing one file, or every inference diagnostic for one
// body). Mirrors internal/errors.MultiError in the teacher.
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no errors"
	case 1:
		return e.Errors[0].Error()
	default:
		return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
	}
}

func (e *MultiError) Unwrap() []error { return e.Errors }
