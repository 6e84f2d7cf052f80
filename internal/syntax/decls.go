package syntax

import (
	"strings"

	"github.com/standardbeagle/sourcepawn-studio-go/internal/lexer"
)

// parseMethodmap parses `methodmap Name [< Base] { ... }` (spec.md §4.1),
// collecting properties and methods (including constructor/destructor
// special-casing against the methodmap's own name) as Children.
func (p *Parser) parseMethodmap() Decl {
	p.next() // "methodmap"
	d := Decl{Kind: DeclMethodmap}
	if p.peek().Kind == lexer.KindIdent {
		d.Name = p.next().Text
	}
	if p.isOp("<") {
		p.next()
		if p.peek().Kind == lexer.KindIdent {
			d.Inherits = p.next().Text
		}
	}
	if !p.isOp("{") {
		p.skipToSemicolonOrBrace()
		return d
	}
	p.next() // "{"
	for !p.atEOF() && !p.isOp("}") {
		p.skipStray()
		if p.isOp("}") {
			break
		}
		child := p.parseMethodmapMember(d.Name)
		d.Children = append(d.Children, child)
	}
	if p.isOp("}") {
		p.next()
	}
	return d
}

func (p *Parser) parseMethodmapMember(methodmapName string) Decl {
	start := p.peek().Range.Start

	if p.isIdent("property") {
		return p.parseProperty(start)
	}

	vis, fkind := p.parseModifiers()
	typeText, name := p.scanNameAndType()
	if name == "" {
		p.skipToSemicolonOrBrace()
		return Decl{Kind: DeclFunction, Range: lexer.Range{Start: start, End: p.prevEnd()}}
	}
	d := p.parseFunctionTail(name, typeText, vis, fkind)
	d.Range = lexer.Range{Start: start, End: p.prevEnd()}
	switch {
	case name == methodmapName:
		d.Special = SpecialConstructor
	case strings.HasPrefix(name, "~"):
		d.Special = SpecialDestructor
	}
	return d
}

// parseProperty parses `property Type Name { public get() {...} public
// set(Type value) {...} }`.
func (p *Parser) parseProperty(start int) Decl {
	p.next() // "property"
	d := Decl{Kind: DeclProperty}
	typeParts := []string{}
	for p.peek().Kind == lexer.KindIdent {
		nxt := p.peekAt(1)
		if nxt.Kind == lexer.KindIdent {
			typeParts = append(typeParts, p.next().Text)
			continue
		}
		break
	}
	if p.peek().Kind == lexer.KindIdent {
		d.Name = p.next().Text
	}
	d.PropertyType = strings.Join(typeParts, " ")
	if !p.isOp("{") {
		p.skipToSemicolonOrBrace()
		d.Range = lexer.Range{Start: start, End: p.prevEnd()}
		return d
	}
	p.next()
	for !p.atEOF() && !p.isOp("}") {
		p.skipStray()
		if p.isOp("}") {
			break
		}
		accStart := p.peek().Range.Start
		vis, _ := p.parseModifiers()
		if p.isIdent("get") || p.isIdent("set") {
			accName := p.next().Text
			acc := Decl{Kind: DeclPropertyAccessor, Name: accName, Visibility: vis}
			acc.Params = p.parseParamList()
			if p.isOp("{") {
				body := p.skipBalancedBraces()
				acc.Body = &body
			} else if p.isOp(";") {
				p.next()
			}
			acc.Range = lexer.Range{Start: accStart, End: p.prevEnd()}
			d.Children = append(d.Children, acc)
			continue
		}
		p.skipToSemicolonOrBrace()
	}
	if p.isOp("}") {
		p.next()
	}
	d.Range = lexer.Range{Start: start, End: p.prevEnd()}
	return d
}

// parseEnum parses `enum [Name] { variant [= expr], ... }` (spec.md §4.1);
// an absent Name marks IsUnnamed so item-tree can synthesize
// `unnamed_enum_<ast_id>`.
func (p *Parser) parseEnum() Decl {
	p.next() // "enum"
	d := Decl{Kind: DeclEnum}
	if p.peek().Kind == lexer.KindIdent {
		d.Name = p.next().Text
	}
	d.IsUnnamed = d.Name == ""
	if !p.isOp("{") {
		p.skipToSemicolonOrBrace()
		return d
	}
	p.next()
	for !p.atEOF() && !p.isOp("}") {
		if p.isOp(",") {
			p.next()
			continue
		}
		vStart := p.peek().Range.Start
		if p.peek().Kind != lexer.KindIdent {
			p.next()
			continue
		}
		name := p.next().Text
		variant := Decl{Kind: DeclVariant, Name: name}
		if p.isOp("=") {
			p.next()
			p.skipExprUntil(",", "}")
		}
		variant.Range = lexer.Range{Start: vStart, End: p.prevEnd()}
		d.Children = append(d.Children, variant)
	}
	if p.isOp("}") {
		p.next()
	}
	if p.isOp(";") {
		p.next()
	}
	return d
}

// parseEnumStruct parses `enum struct Name { field; method() {...} ... }`
// (spec.md §4.1).
func (p *Parser) parseEnumStruct() Decl {
	p.next() // "enum"
	p.next() // "struct"
	d := Decl{Kind: DeclEnumStruct}
	if p.peek().Kind == lexer.KindIdent {
		d.Name = p.next().Text
	}
	if !p.isOp("{") {
		p.skipToSemicolonOrBrace()
		return d
	}
	p.next()
	for !p.atEOF() && !p.isOp("}") {
		p.skipStray()
		if p.isOp("}") {
			break
		}
		memberStart := p.peek().Range.Start
		vis, fkind := p.parseModifiers()
		typeText, name := p.scanNameAndType()
		if name == "" {
			p.skipToSemicolonOrBrace()
			continue
		}
		if p.isOp("(") {
			fn := p.parseFunctionTail(name, typeText, vis, fkind)
			fn.Range = lexer.Range{Start: memberStart, End: p.prevEnd()}
			d.Children = append(d.Children, fn)
			continue
		}
		field := Decl{Kind: DeclEnumStructField, Name: name, TypeRef: typeText, Visibility: vis}
		field.Dimensions = p.parseDimensions()
		if p.isOp(";") {
			p.next()
		}
		field.Range = lexer.Range{Start: memberStart, End: p.prevEnd()}
		d.Children = append(d.Children, field)
	}
	if p.isOp("}") {
		p.next()
	}
	if p.isOp(";") {
		p.next()
	}
	return d
}

// parseStruct parses the old-style `struct Name { public Type field; ... }`
// value-aggregate form (distinct from enum struct).
func (p *Parser) parseStruct() Decl {
	p.next() // "struct"
	d := Decl{Kind: DeclStruct}
	if p.peek().Kind == lexer.KindIdent {
		d.Name = p.next().Text
	}
	if !p.isOp("{") {
		p.skipToSemicolonOrBrace()
		return d
	}
	p.next()
	for !p.atEOF() && !p.isOp("}") {
		p.skipStray()
		if p.isOp("}") {
			break
		}
		fieldStart := p.peek().Range.Start
		vis, _ := p.parseModifiers()
		typeText, name := p.scanNameAndType()
		if name == "" {
			p.skipToSemicolonOrBrace()
			continue
		}
		field := Decl{Kind: DeclStructField, Name: name, TypeRef: typeText, Visibility: vis}
		field.Dimensions = p.parseDimensions()
		if p.isOp(";") {
			p.next()
		}
		field.Range = lexer.Range{Start: fieldStart, End: p.prevEnd()}
		d.Children = append(d.Children, field)
	}
	if p.isOp("}") {
		p.next()
	}
	if p.isOp(";") {
		p.next()
	}
	return d
}

// parseTypedef parses `typedef Name = function ReturnType (params);`.
func (p *Parser) parseTypedef() Decl {
	p.next() // "typedef"
	d := Decl{Kind: DeclTypedef}
	if p.peek().Kind == lexer.KindIdent {
		d.Name = p.next().Text
	}
	if p.isOp("=") {
		p.next()
	}
	if p.isIdent("function") {
		p.next()
	}
	d.ReturnType = strings.Join(p.collectTypeTokensBeforeParen(), " ")
	d.Params = p.parseParamList()
	if p.isOp(";") {
		p.next()
	}
	return d
}

// collectTypeTokensBeforeParen consumes identifier tokens up to (not
// including) the '(' that opens an anonymous function signature's
// parameter list — used by typedef/typeset bodies, which name no function
// of their own.
func (p *Parser) collectTypeTokensBeforeParen() []string {
	var parts []string
	for p.peek().Kind == lexer.KindIdent {
		parts = append(parts, p.next().Text)
	}
	return parts
}

// parseTypeset parses `typeset Name { function Ret (params); ... }`, one
// member per alternative function signature.
func (p *Parser) parseTypeset() Decl {
	p.next() // "typeset"
	d := Decl{Kind: DeclTypeset}
	if p.peek().Kind == lexer.KindIdent {
		d.Name = p.next().Text
	}
	if !p.isOp("{") {
		p.skipToSemicolonOrBrace()
		return d
	}
	p.next()
	for !p.atEOF() && !p.isOp("}") {
		p.skipStray()
		if p.isOp("}") {
			break
		}
		memberStart := p.peek().Range.Start
		if p.isIdent("function") {
			p.next()
		}
		member := Decl{Kind: DeclTypesetMember, ReturnType: strings.Join(p.collectTypeTokensBeforeParen(), " ")}
		member.Params = p.parseParamList()
		if p.isOp(";") {
			p.next()
		}
		member.Range = lexer.Range{Start: memberStart, End: p.prevEnd()}
		d.Children = append(d.Children, member)
	}
	if p.isOp("}") {
		p.next()
	}
	if p.isOp(";") {
		p.next()
	}
	return d
}

// parseFunctag parses the legacy single-signature `functag [Ret] Name
// (params);` / `functag public Ret Name(params);` form.
func (p *Parser) parseFunctag() Decl {
	p.next() // "functag"
	d := Decl{Kind: DeclFunctag}
	_, _ = p.parseModifiers()
	typeParts := []string{}
	var name string
	for !p.atEOF() {
		t := p.peek()
		if t.Kind == lexer.KindIdent {
			nxt := p.peekAt(1)
			if nxt.Kind == lexer.KindOp && nxt.Text == "(" {
				name = t.Text
				p.next()
				break
			}
		}
		if t.Kind == lexer.KindOp && (t.Text == ";" || t.Text == "(") {
			break
		}
		typeParts = append(typeParts, t.Text)
		p.next()
	}
	d.Name = name
	d.ReturnType = strings.Join(typeParts, " ")
	d.Params = p.parseParamList()
	if p.isOp(";") {
		p.next()
	}
	return d
}

// parseFuncenum parses the legacy multi-signature `funcenum Name { Ret1
// Name1(params); Ret2 Name2(params); ... }` form.
func (p *Parser) parseFuncenum() Decl {
	p.next() // "funcenum"
	d := Decl{Kind: DeclFuncenum}
	if p.peek().Kind == lexer.KindIdent {
		d.Name = p.next().Text
	}
	if !p.isOp("{") {
		p.skipToSemicolonOrBrace()
		return d
	}
	p.next()
	for !p.atEOF() && !p.isOp("}") {
		p.skipStray()
		if p.isOp("}") {
			break
		}
		memberStart := p.peek().Range.Start
		typeParts := []string{}
		var name string
		for !p.atEOF() {
			t := p.peek()
			if t.Kind == lexer.KindIdent {
				nxt := p.peekAt(1)
				if nxt.Kind == lexer.KindOp && nxt.Text == "(" {
					name = t.Text
					p.next()
					break
				}
			}
			if t.Kind == lexer.KindOp && (t.Text == ";" || t.Text == "}") {
				break
			}
			typeParts = append(typeParts, t.Text)
			p.next()
		}
		member := Decl{Kind: DeclFuncenumMember, Name: name, ReturnType: strings.Join(typeParts, " ")}
		member.Params = p.parseParamList()
		if p.isOp(";") {
			p.next()
		}
		member.Range = lexer.Range{Start: memberStart, End: p.prevEnd()}
		d.Children = append(d.Children, member)
	}
	if p.isOp("}") {
		p.next()
	}
	if p.isOp(";") {
		p.next()
	}
	return d
}
