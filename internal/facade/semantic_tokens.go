package facade

import (
	"github.com/standardbeagle/sourcepawn-studio-go/internal/body"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/ids"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/query"
	"github.com/standardbeagle/sourcepawn-studio-go/internal/resolver"
)

// TokenKind classifies a semantic token for a client's highlighter.
type TokenKind uint8

const (
	TokenFunction TokenKind = iota
	TokenVariable
	TokenParameter
	TokenLocal
	TokenMethodmap
	TokenEnumStruct
	TokenEnum
	TokenEnumMember
	TokenProperty
	TokenField
	TokenMethod
	TokenTypedef
	TokenTypeset
	TokenFunctag
	TokenFuncenum
	TokenStruct
	TokenMacro
)

// Token is one highlighted span.
type Token struct {
	Range Range
	Kind  TokenKind
}

var symbolToToken = map[SymbolKind]TokenKind{
	SymbolFunction:   TokenFunction,
	SymbolVariable:   TokenVariable,
	SymbolMethodmap:  TokenMethodmap,
	SymbolEnumStruct: TokenEnumStruct,
	SymbolEnum:       TokenEnum,
	SymbolVariant:    TokenEnumMember,
	SymbolProperty:   TokenProperty,
	SymbolField:      TokenField,
	SymbolTypedef:    TokenTypedef,
	SymbolTypeset:    TokenTypeset,
	SymbolFunctag:    TokenFunctag,
	SymbolFuncenum:   TokenFuncenum,
	SymbolStruct:     TokenStruct,
}

// SemanticTokens answers a semantic-tokens request for file (spec.md §6's
// semantic-tokens facade): declaration tokens come straight from
// DocumentSymbols, body tokens from walking each function's lowered
// expressions and classifying every identifier/attribute/method
// reference the same way hover.go and definition.go already do.
func SemanticTokens(db *query.Database, file ids.FileID) ([]Token, error) {
	symbols, err := DocumentSymbols(db, file)
	if err != nil {
		return nil, err
	}
	var out []Token
	var flatten func(s Symbol)
	flatten = func(s Symbol) {
		if kind, ok := symbolToToken[s.Kind]; ok {
			out = append(out, Token{Range: s.Range, Kind: kind})
		}
		for _, child := range s.Children {
			flatten(child)
		}
	}
	for _, s := range symbols {
		flatten(s)
	}

	tree, ok := db.ItemTree(file)
	if !ok {
		return nil, query.ErrUnknownFile
	}
	res, err := db.Resolver()
	if err != nil {
		return nil, err
	}
	for _, fn := range tree.Functions {
		if fn.Body == nil {
			continue
		}
		for _, p := range fn.Params {
			out = append(out, Token{Range: rangeOf(db, file, p.Range), Kind: TokenParameter})
		}
		b, sm, blocks, err := loweredBody(db, file, fn)
		if err != nil {
			return nil, err
		}
		eb := exprBlocks(b)
		inferred, err := db.Infer(fn.ID)
		if err != nil {
			return nil, err
		}
		for i := range b.Exprs {
			exprID := ids.ExprID(i + 1)
			e := b.Expr(exprID)
			r, ok := sm.Ranges[exprID]
			if !ok {
				continue
			}
			switch e.Kind {
			case body.ExprIdent:
				scope := scopeAt(file, fn, blocks, eb[exprID])
				resolution, ok := res.ResolveIdent(scope, e.Ident)
				if !ok {
					continue
				}
				out = append(out, Token{Range: rangeOf(db, file, r), Kind: tokenForResolution(resolution)})
			case body.ExprFieldAccess, body.ExprMethodCall, body.ExprNew:
				if attr, ok := inferred.AttributeResolutions[exprID]; ok {
					out = append(out, Token{Range: rangeOf(db, file, r), Kind: tokenForAttribute(attr)})
				} else if _, ok := inferred.MethodResolutions[exprID]; ok {
					out = append(out, Token{Range: rangeOf(db, file, r), Kind: TokenMethod})
				}
			}
		}
	}
	return out, nil
}

func tokenForResolution(res resolver.Resolution) TokenKind {
	switch res.Kind {
	case resolver.KindFunction:
		return TokenFunction
	case resolver.KindGlobal:
		return TokenVariable
	case resolver.KindMacro:
		return TokenMacro
	case resolver.KindMethodmap:
		return TokenMethodmap
	case resolver.KindEnumStruct:
		return TokenEnumStruct
	case resolver.KindEnum:
		return TokenEnum
	case resolver.KindVariant:
		return TokenEnumMember
	case resolver.KindTypedef:
		return TokenTypedef
	case resolver.KindTypeset:
		return TokenTypeset
	case resolver.KindFunctag:
		return TokenFunctag
	case resolver.KindFuncenum:
		return TokenFuncenum
	default:
		return TokenLocal
	}
}

func tokenForAttribute(attr body.AttributeResolution) TokenKind {
	switch attr.Kind {
	case body.AttrProperty:
		return TokenProperty
	default:
		return TokenField
	}
}
