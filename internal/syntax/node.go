// Package syntax is component C4: a declaration-level CST over a file's
// *preprocessed* text, built the way spec.md §2 specifies — a tree-sitter
// grammar consumer, not a hand-rolled scanner. treesitter.go parses the
// text with the tree_sitter_sourcepawn grammar (github.com/tree-sitter/
// go-tree-sitter + github.com/Sarrus1/tree-sitter-sourcepawn/bindings/go,
// the same grammar original_source/crates/hir-def/src/item_tree/lower.rs
// depends on directly) to find each top-level declaration's span; parser.go
// and decls.go then extract that declaration's fields from the token
// stream within the span the grammar found, in the same recursive style
// the teacher's own internal/parser/parser.go uses once past its own
// tree-sitter tree walk. If the grammar can't be loaded, Parse falls back
// to a free-running token scan with the original project's parser.rs
// recovery discipline (see DESIGN.md).
//
// Scope: this CST is declaration-level, not full-expression-level. A
// function/method/getter/setter body is captured as an opaque brace-matched
// Range, not walked into statements/expressions here — internal/body does
// that lowering directly from the token stream when a specific body is
// requested, the same "parse lazily, on demand" discipline the rest of this
// core applies to every other per-item query.
package syntax

import "github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"

// DeclKind discriminates a top-level or nested declaration form.
type DeclKind uint8

const (
	DeclFunction DeclKind = iota
	DeclVariable
	DeclEnum
	DeclVariant
	DeclEnumStruct
	DeclMethodmap
	DeclProperty
	DeclPropertyAccessor // synthetic "get"/"set" function inside a Property
	DeclTypedef
	DeclTypeset
	DeclTypesetMember // one function-signature alternative inside a typeset
	DeclFunctag
	DeclFuncenum
	DeclFuncenumMember
	DeclStruct
	DeclStructField
	DeclEnumStructField
)

func (k DeclKind) String() string {
	switch k {
	case DeclFunction:
		return "Function"
	case DeclVariable:
		return "Variable"
	case DeclEnum:
		return "Enum"
	case DeclVariant:
		return "Variant"
	case DeclEnumStruct:
		return "EnumStruct"
	case DeclMethodmap:
		return "Methodmap"
	case DeclProperty:
		return "Property"
	case DeclPropertyAccessor:
		return "PropertyAccessor"
	case DeclTypedef:
		return "Typedef"
	case DeclTypeset:
		return "Typeset"
	case DeclTypesetMember:
		return "TypesetMember"
	case DeclFunctag:
		return "Functag"
	case DeclFuncenum:
		return "Funcenum"
	case DeclFuncenumMember:
		return "FuncenumMember"
	case DeclStruct:
		return "Struct"
	case DeclStructField:
		return "StructField"
	case DeclEnumStructField:
		return "EnumStructField"
	default:
		return "Unknown"
	}
}

// FuncKind mirrors spec.md §4.4's Function.kind.
type FuncKind uint8

const (
	FuncDef FuncKind = iota
	FuncForward
	FuncNative
)

// Visibility is a bitset: PUBLIC|STATIC|STOCK|NONE.
type Visibility uint8

const (
	VisNone   Visibility = 0
	VisPublic Visibility = 1 << iota
	VisStatic
	VisStock
)

// Special marks a function as a methodmap constructor/destructor.
type Special uint8

const (
	SpecialNone Special = iota
	SpecialConstructor
	SpecialDestructor
)

// Param is one function/method parameter.
type Param struct {
	Name       string
	TypeRef    string
	HasDefault bool
	IsRest     bool
	IsConst    bool
	Range      lexer.Range
}

// Decl is one declaration node. Not every field is meaningful for every
// Kind; see the per-kind comment groups below. Nested declarations (a
// methodmap's methods/properties, an enum's variants, a struct's fields,
// an enum struct's fields/methods) live in Children.
type Decl struct {
	Kind  DeclKind
	Name  string
	Range lexer.Range // full declaration span, including any body
	Head  lexer.Range // the declared name's span; set by parseFunctionTail (functions and methods), zero for other kinds

	// Function / Typedef / Functag / PropertyAccessor
	ReturnType string
	Params     []Param
	FuncKind   FuncKind
	Visibility Visibility
	Special    Special
	Body       *lexer.Range // nil if forward/native/prototype

	// Variable / StructField / EnumStructField
	TypeRef     string
	IsConst     bool
	Dimensions  []int // array dimensions, e.g. int[4][4] -> [4,4]

	// Methodmap
	Inherits string

	// Property
	PropertyType string

	// Enum
	IsUnnamed bool // "enum { ... }" with no name

	Deprecated     bool
	DeprecatedText string

	Children []Decl
}

// File is the parsed form of one preprocessed file: its top-level
// declarations in source order, mirroring item-tree's `top_level`
// ordering requirement one layer below the semantic lowering.
type File struct {
	Decls []Decl
}
