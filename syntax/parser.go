// Package syntax parses the restricted Rust-like item grammar accepted by the translator.
//
// The grammar covers enums, structs, free functions and impl blocks, together with the
// statement, expression, pattern and type forms that may appear inside them. Items outside
// that set (use, trait, mod, const, static, type aliases and macro invocations) are
// recognised and returned as *OtherItem so that the translator can report them with a
// precise position. Parsing stops at the first syntax error.
package syntax

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/broady/typ"
)

// MaxRecursionDepth bounds expression and type nesting.
const MaxRecursionDepth = 512

// Parser is a recursive-descent parser over a token slice.
type Parser struct {
	toks  []Token
	pos   int
	depth int
}

// bailout carries the first syntax error up to the entry point.
type bailout struct {
	err *typ.Error
}

// ParseFile parses a whole source file.
func ParseFile(filename, src string) (f *File, err error) {
	toks, err := NewLexer(filename, src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	defer p.recover(&err)
	return p.parseFile(filename), nil
}

// ParseExpr parses a single expression. It is mainly useful in tests.
func ParseExpr(src string) (x Expr, err error) {
	toks, err := NewLexer("", src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	defer p.recover(&err)
	x = p.parseExpr()
	p.expect(EOF)
	return x, nil
}

// ParseType parses a single type.
func ParseType(src string) (t Type, err error) {
	toks, err := NewLexer("", src).Tokenize()
	if err != nil {
		return nil, err
	}
	p := &Parser{toks: toks}
	defer p.recover(&err)
	t = p.parseType()
	p.expect(EOF)
	return t, nil
}

func (p *Parser) recover(err *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*err = b.err
	}
}

// ---------------------------------------------------------------------------
// Token helpers

func (p *Parser) cur() Token { return p.toks[p.pos] }

func (p *Parser) peek(n int) Token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *Parser) at(k Kind) bool { return p.cur().Kind == k }

func (p *Parser) next() Token {
	tok := p.cur()
	if tok.Kind != EOF {
		p.pos++
	}
	return tok
}

func (p *Parser) accept(k Kind) bool {
	if p.at(k) {
		p.next()
		return true
	}
	return false
}

func (p *Parser) expect(k Kind) Token {
	if !p.at(k) {
		p.errorf(p.cur().Pos, "expected %q, found %s", k.String(), p.cur())
	}
	return p.next()
}

func (p *Parser) expectIdent() Token {
	if !p.at(IDENT) {
		p.errorf(p.cur().Pos, "expected identifier, found %s", p.cur())
	}
	return p.next()
}

func (p *Parser) errorf(pos token.Position, format string, args ...any) {
	panic(bailout{typ.Errorf(typ.CodeSyntaxError, pos, format, args...)})
}

func (p *Parser) enter() {
	p.depth++
	if p.depth > MaxRecursionDepth {
		p.errorf(p.cur().Pos, "expression too complex: recursion depth limit exceeded")
	}
}

func (p *Parser) leave() { p.depth-- }

// skipTokenTree skips a single token, or a whole delimited group.
func (p *Parser) skipTokenTree() {
	open := p.cur()
	var closeKind Kind
	switch open.Kind {
	case LPAREN:
		closeKind = RPAREN
	case LBRACKET:
		closeKind = RBRACKET
	case LBRACE:
		closeKind = RBRACE
	case EOF:
		p.errorf(open.Pos, "unexpected end of file")
	default:
		p.next()
		return
	}
	p.next()
	for !p.at(closeKind) {
		if p.at(EOF) {
			p.errorf(open.Pos, "unclosed %q", open.Kind.String())
		}
		p.skipTokenTree()
	}
	p.next()
}

// skipPastSemicolon skips token trees up to and including the next top-level ';'.
func (p *Parser) skipPastSemicolon() {
	for !p.accept(SEMICOLON) {
		if p.at(EOF) {
			p.errorf(p.cur().Pos, "expected \";\", found end of file")
		}
		p.skipTokenTree()
	}
}

// skipItemBody skips up to a top-level ';' or through the first top-level brace group.
func (p *Parser) skipItemBody() {
	for {
		switch p.cur().Kind {
		case SEMICOLON:
			p.next()
			return
		case LBRACE:
			p.skipTokenTree()
			return
		case EOF:
			p.errorf(p.cur().Pos, "unexpected end of file")
		}
		p.skipTokenTree()
	}
}

// ---------------------------------------------------------------------------
// Items

func (p *Parser) parseFile(filename string) *File {
	f := &File{Filename: filename}
	for p.at(HASH) && p.peek(1).Kind == BANG {
		f.Attrs = append(f.Attrs, p.parseAttribute())
	}
	for !p.at(EOF) {
		f.Items = append(f.Items, p.parseItem())
	}
	return f
}

func (p *Parser) parseOuterAttrs() []*Attribute {
	var attrs []*Attribute
	for p.at(HASH) && p.peek(1).Kind == LBRACKET {
		attrs = append(attrs, p.parseAttribute())
	}
	return attrs
}

func (p *Parser) parseAttribute() *Attribute {
	attr := &Attribute{node: node{p.expect(HASH).Pos}}
	attr.Inner = p.accept(BANG)
	p.expect(LBRACKET)
	attr.Path = p.parseSimplePath()

	switch {
	case p.accept(LPAREN):
		attr.Args = p.parseAttrArgs()
	case p.accept(ASSIGN):
		tok := p.next()
		attr.Args = []AttrArg{{Value: tok.Lit, Pos: tok.Pos}}
	}
	p.expect(RBRACKET)
	return attr
}

func (p *Parser) parseAttrArgs() []AttrArg {
	var args []AttrArg
	for !p.accept(RPAREN) {
		tok := p.cur()
		isKey := tok.Kind == IDENT || tok.Kind.IsKeyword()
		switch {
		case isKey && p.peek(1).Kind == ASSIGN:
			p.next()
			p.next()
			val := p.next()
			switch val.Kind {
			case STRING, INT, IDENT, TRUE, FALSE:
			default:
				p.errorf(val.Pos, "expected literal attribute value, found %s", val)
			}
			args = append(args, AttrArg{Key: tok.Lit, Value: val.Lit, Pos: tok.Pos})
		case isKey && (p.peek(1).Kind == COMMA || p.peek(1).Kind == RPAREN):
			p.next()
			args = append(args, AttrArg{Key: tok.Lit, Value: "true", Pos: tok.Pos})
		default:
			p.skipTokenTree()
		}
		if !p.at(RPAREN) {
			p.expect(COMMA)
		}
	}
	return args
}

func (p *Parser) parseVisibility() string {
	if !p.accept(PUB) {
		return ""
	}
	if !p.at(LPAREN) {
		return "pub"
	}
	start := p.pos
	p.skipTokenTree()
	var b strings.Builder
	b.WriteString("pub")
	for _, tok := range p.toks[start:p.pos] {
		b.WriteString(tok.Lit)
	}
	return b.String()
}

func (p *Parser) parseItem() Item {
	attrs := p.parseOuterAttrs()
	pos := p.cur().Pos
	vis := p.parseVisibility()

	switch p.cur().Kind {
	case ENUM:
		return p.parseEnum(pos, attrs, vis)
	case STRUCT:
		return p.parseStruct(pos, attrs, vis)
	case FN:
		return p.parseFn(pos, attrs, vis)
	case IMPL:
		return p.parseImpl(pos, attrs)
	case CONST:
		if p.peek(1).Kind == FN {
			p.next()
			return p.parseFn(pos, attrs, vis)
		}
		return p.parseOtherItem(pos, "const", p.skipPastSemicolon)
	case USE:
		return p.parseOtherItem(pos, "use", p.skipPastSemicolon)
	case STATIC:
		return p.parseOtherItem(pos, "static", p.skipPastSemicolon)
	case TYPE:
		return p.parseOtherItem(pos, "type", p.skipPastSemicolon)
	case TRAIT:
		return p.parseOtherItem(pos, "trait", p.skipItemBody)
	case MOD:
		return p.parseOtherItem(pos, "mod", p.skipItemBody)
	case MACRO:
		return p.parseOtherItem(pos, "macro", p.skipItemBody)
	case IDENT:
		if p.peek(1).Kind == BANG {
			return p.parseOtherItem(pos, "macro", p.skipItemBody)
		}
	}
	p.errorf(p.cur().Pos, "expected item, found %s", p.cur())
	return nil
}

func (p *Parser) parseOtherItem(pos token.Position, kind string, skip func()) Item {
	item := &OtherItem{node: node{pos}, Kind: kind}
	p.next()
	if kind == "macro" {
		item.Name = p.toks[p.pos-1].Lit
		p.accept(BANG)
		if p.at(IDENT) {
			p.next()
		}
	} else if p.at(IDENT) {
		item.Name = p.cur().Lit
	}
	skip()
	return item
}

func (p *Parser) parseEnum(pos token.Position, attrs []*Attribute, vis string) *EnumItem {
	p.expect(ENUM)
	item := &EnumItem{node: node{pos}, Attrs: attrs, Vis: vis}
	item.Name = p.expectIdent().Lit
	item.Generics.Params = p.parseGenericParams()
	item.Generics.Where = p.parseWhereClause()

	p.expect(LBRACE)
	for !p.accept(RBRACE) {
		p.parseOuterAttrs()
		name := p.expectIdent()
		v := &Variant{node: node{name.Pos}, Name: name.Lit}
		v.Fields = p.parseFields()
		if p.accept(ASSIGN) {
			p.parseExpr()
		}
		item.Variants = append(item.Variants, v)
		if !p.at(RBRACE) {
			p.expect(COMMA)
		}
	}
	return item
}

func (p *Parser) parseFields() Fields {
	switch {
	case p.accept(LPAREN):
		fields := Fields{Style: TupleFields}
		for !p.accept(RPAREN) {
			p.parseOuterAttrs()
			pos := p.cur().Pos
			vis := p.parseVisibility()
			fields.List = append(fields.List, &Field{node: node{pos}, Vis: vis, Type: p.parseType()})
			if !p.at(RPAREN) {
				p.expect(COMMA)
			}
		}
		return fields
	case p.accept(LBRACE):
		fields := Fields{Style: NamedFields}
		for !p.accept(RBRACE) {
			p.parseOuterAttrs()
			pos := p.cur().Pos
			vis := p.parseVisibility()
			name := p.expectIdent().Lit
			p.expect(COLON)
			fields.List = append(fields.List, &Field{node: node{pos}, Vis: vis, Name: name, Type: p.parseType()})
			if !p.at(RBRACE) {
				p.expect(COMMA)
			}
		}
		return fields
	}
	return Fields{Style: UnitFields}
}

func (p *Parser) parseStruct(pos token.Position, attrs []*Attribute, vis string) *StructItem {
	p.expect(STRUCT)
	item := &StructItem{node: node{pos}, Attrs: attrs, Vis: vis}
	item.Name = p.expectIdent().Lit
	item.Generics.Params = p.parseGenericParams()

	switch {
	case p.at(LPAREN):
		item.Fields = p.parseFields()
		item.Generics.Where = p.parseWhereClause()
		p.expect(SEMICOLON)
	default:
		item.Generics.Where = p.parseWhereClause()
		if p.accept(SEMICOLON) {
			item.Fields = Fields{Style: UnitFields}
			break
		}
		if !p.at(LBRACE) {
			p.errorf(p.cur().Pos, "expected struct body, found %s", p.cur())
		}
		item.Fields = p.parseFields()
	}
	return item
}

func (p *Parser) parseFn(pos token.Position, attrs []*Attribute, vis string) *FnItem {
	sigPos := p.expect(FN).Pos
	sig := &Signature{node: node{sigPos}}
	sig.Name = p.expectIdent().Lit
	sig.Generics.Params = p.parseGenericParams()

	p.expect(LPAREN)
	for !p.accept(RPAREN) {
		p.parseOuterAttrs()
		sig.Params = append(sig.Params, p.parseParam())
		if !p.at(RPAREN) {
			p.expect(COMMA)
		}
	}
	if p.accept(ARROW) {
		sig.Output = p.parseType()
	}
	sig.Generics.Where = p.parseWhereClause()

	if !p.at(LBRACE) {
		p.errorf(p.cur().Pos, "expected function body, found %s", p.cur())
	}
	return &FnItem{node: node{pos}, Attrs: attrs, Vis: vis, Sig: sig, Body: p.parseBlock()}
}

func (p *Parser) isReceiver() bool {
	i := 0
	if p.peek(i).Kind == AND {
		i++
		if p.peek(i).Kind == LIFETIME {
			i++
		}
	}
	if p.peek(i).Kind == MUT {
		i++
	}
	return p.peek(i).Kind == SELF_VALUE && p.peek(i+1).Kind != PATHSEP
}

func (p *Parser) parseParam() *Param {
	pos := p.cur().Pos
	if p.isReceiver() {
		recv := &Receiver{node: node{pos}}
		if p.accept(AND) {
			recv.Ref = true
			if p.at(LIFETIME) {
				recv.Lifetime = p.next().Lit
			}
		}
		recv.Mut = p.accept(MUT)
		p.expect(SELF_VALUE)
		if p.accept(COLON) {
			recv.Type = p.parseType()
		}
		return &Param{node: node{pos}, Receiver: recv}
	}

	pat := p.parsePattern()
	p.expect(COLON)
	return &Param{node: node{pos}, Pat: pat, Type: p.parseType()}
}

func (p *Parser) parseImpl(pos token.Position, attrs []*Attribute) *ImplItem {
	p.expect(IMPL)
	item := &ImplItem{node: node{pos}, Attrs: attrs}
	if p.at(LT) {
		item.Generics.Params = p.parseGenericParams()
	}

	first := p.parseType()
	if p.accept(FOR) {
		pt, ok := first.(*PathType)
		if !ok {
			p.errorf(first.Pos(), "expected trait path before \"for\"")
		}
		item.Trait = pt.Path
		item.SelfType = p.parseType()
	} else {
		item.SelfType = first
	}
	item.Generics.Where = p.parseWhereClause()

	p.expect(LBRACE)
	for !p.accept(RBRACE) {
		attrs := p.parseOuterAttrs()
		mpos := p.cur().Pos
		vis := p.parseVisibility()
		switch p.cur().Kind {
		case FN:
			item.Members = append(item.Members, p.parseFn(mpos, attrs, vis))
		case TYPE:
			item.Members = append(item.Members, p.parseAssocType(mpos))
		case CONST:
			if p.peek(1).Kind == FN {
				p.next()
				item.Members = append(item.Members, p.parseFn(mpos, attrs, vis))
				continue
			}
			item.Members = append(item.Members, p.parseOtherItem(mpos, "const", p.skipPastSemicolon))
		case IDENT:
			if p.peek(1).Kind == BANG {
				item.Members = append(item.Members, p.parseOtherItem(mpos, "macro", p.skipItemBody))
				continue
			}
			fallthrough
		default:
			p.errorf(p.cur().Pos, "expected impl member, found %s", p.cur())
		}
	}
	return item
}

func (p *Parser) parseAssocType(pos token.Position) *AssocTypeItem {
	p.expect(TYPE)
	item := &AssocTypeItem{node: node{pos}}
	item.Name = p.expectIdent().Lit
	item.Generics.Params = p.parseGenericParams()
	p.expect(ASSIGN)
	item.Type = p.parseType()
	p.expect(SEMICOLON)
	return item
}

// ---------------------------------------------------------------------------
// Generics and bounds

func (p *Parser) parseGenericParams() []*GenericParam {
	if !p.accept(LT) {
		return nil
	}
	var params []*GenericParam
	for !p.accept(GT) {
		p.parseOuterAttrs()
		tok := p.cur()
		param := &GenericParam{node: node{tok.Pos}}
		switch tok.Kind {
		case LIFETIME:
			p.next()
			param.Kind = GenericLifetime
			param.Name = tok.Lit
			if p.accept(COLON) {
				param.Bounds = p.parseBounds()
			}
		case CONST:
			p.next()
			param.Kind = GenericConst
			param.Name = p.expectIdent().Lit
			p.expect(COLON)
			param.Type = p.parseType()
			if p.accept(ASSIGN) {
				p.skipTokenTree()
			}
		case IDENT:
			p.next()
			param.Kind = GenericType
			param.Name = tok.Lit
			if p.accept(COLON) {
				param.Bounds = p.parseBounds()
			}
			if p.accept(ASSIGN) {
				p.parseType()
			}
		default:
			p.errorf(tok.Pos, "expected generic parameter, found %s", tok)
		}
		params = append(params, param)
		if !p.at(GT) {
			p.expect(COMMA)
		}
	}
	return params
}

func (p *Parser) parseWhereClause() []*WherePredicate {
	if !p.accept(WHERE) {
		return nil
	}
	var preds []*WherePredicate
	for !p.at(LBRACE) && !p.at(SEMICOLON) && !p.at(EOF) {
		pos := p.cur().Pos
		var ty Type
		if p.at(LIFETIME) {
			p.next()
		} else {
			ty = p.parseTypeNoBounds()
		}
		p.expect(COLON)
		preds = append(preds, &WherePredicate{node: node{pos}, Type: ty, Bounds: p.parseBounds()})
		if !p.accept(COMMA) {
			break
		}
	}
	return preds
}

// parseBounds parses "A + B<C> + 'a".
func (p *Parser) parseBounds() []*TypeBound {
	var bounds []*TypeBound
	for {
		tok := p.cur()
		switch tok.Kind {
		case LIFETIME:
			p.next()
			bounds = append(bounds, &TypeBound{node: node{tok.Pos}, Lifetime: tok.Lit})
		case LPAREN:
			p.next()
			bounds = append(bounds, &TypeBound{node: node{tok.Pos}, Path: p.parsePath(false)})
			p.expect(RPAREN)
		case QUESTION:
			p.errorf(tok.Pos, "relaxed bounds are not supported")
		default:
			bounds = append(bounds, &TypeBound{node: node{tok.Pos}, Path: p.parsePath(false)})
		}
		if !p.accept(PLUS) {
			return bounds
		}
	}
}

// ---------------------------------------------------------------------------
// Paths

func isPathStart(k Kind) bool {
	switch k {
	case IDENT, SELF_VALUE, SELF_TYPE, CRATE, SUPER, PATHSEP:
		return true
	}
	return false
}

// parseSimplePath parses a path without generic arguments, as used by attributes.
func (p *Parser) parseSimplePath() *Path {
	path := &Path{node: node{p.cur().Pos}}
	for {
		path.Segments = append(path.Segments, &PathSegment{Name: p.expectIdent().Lit})
		if !p.accept(PATHSEP) {
			return path
		}
	}
}

// parsePath parses a path. In expression position generic arguments require a
// turbofish (a::<T>); in type position they follow the segment directly.
func (p *Parser) parsePath(exprMode bool) *Path {
	path := &Path{node: node{p.cur().Pos}}
	path.Global = p.accept(PATHSEP)
	for {
		tok := p.cur()
		switch tok.Kind {
		case IDENT, SELF_VALUE, SELF_TYPE, CRATE, SUPER:
			p.next()
		default:
			p.errorf(tok.Pos, "expected path segment, found %s", tok)
		}
		seg := &PathSegment{Name: tok.Lit}
		path.Segments = append(path.Segments, seg)

		if p.at(PATHSEP) && p.peek(1).Kind == LT {
			p.next()
			seg.Args = p.parseGenericArgs()
		} else if !exprMode && p.at(LT) {
			seg.Args = p.parseGenericArgs()
		}

		if p.at(PATHSEP) && p.peek(1).Kind != LT {
			p.next()
			continue
		}
		return path
	}
}

func (p *Parser) parseGenericArgs() []Type {
	p.expect(LT)
	var args []Type
	for !p.accept(GT) {
		switch {
		case p.at(LIFETIME):
			p.next()
		case p.at(IDENT) && p.peek(1).Kind == ASSIGN:
			p.errorf(p.cur().Pos, "associated type bindings are not supported")
		default:
			args = append(args, p.parseType())
		}
		if !p.at(GT) {
			p.expect(COMMA)
		}
	}
	return args
}

// ---------------------------------------------------------------------------
// Types

// parseType parses a type; a trailing "+ Bound" turns a path into a bound union.
func (p *Parser) parseType() Type {
	t := p.parseTypeNoBounds()
	if pt, ok := t.(*PathType); ok && p.at(PLUS) {
		p.next()
		bounds := append([]*TypeBound{{node: pt.node, Path: pt.Path}}, p.parseBounds()...)
		return &TraitObjectType{node: pt.node, Bounds: bounds}
	}
	return t
}

func (p *Parser) parseTypeNoBounds() Type {
	p.enter()
	defer p.leave()

	tok := p.cur()
	switch tok.Kind {
	case UNDERSCORE:
		p.next()
		return &InferType{node: node{tok.Pos}}
	case AND, ANDAND:
		p.next()
		ref := &RefType{node: node{tok.Pos}}
		if p.at(LIFETIME) {
			ref.Lifetime = p.next().Lit
		}
		ref.Mut = p.accept(MUT)
		ref.Elem = p.parseTypeNoBounds()
		if tok.Kind == ANDAND {
			return &RefType{node: node{tok.Pos}, Elem: ref}
		}
		return ref
	case LPAREN:
		p.next()
		var elems []Type
		trailingComma := false
		for !p.accept(RPAREN) {
			elems = append(elems, p.parseType())
			trailingComma = false
			if !p.at(RPAREN) {
				p.expect(COMMA)
				trailingComma = true
			}
		}
		if len(elems) == 1 && !trailingComma {
			return elems[0]
		}
		return &TupleType{node: node{tok.Pos}, Elems: elems}
	case LBRACKET:
		p.next()
		arr := &ArrayType{node: node{tok.Pos}, Elem: p.parseType()}
		if p.accept(SEMICOLON) {
			arr.Len = p.parseExpr()
		}
		p.expect(RBRACKET)
		return arr
	case DYN, IMPL:
		p.next()
		return &TraitObjectType{node: node{tok.Pos}, Dyn: tok.Kind == DYN, Bounds: p.parseBounds()}
	}
	if isPathStart(tok.Kind) {
		return &PathType{node: node{tok.Pos}, Path: p.parsePath(false)}
	}
	p.errorf(tok.Pos, "expected type, found %s", tok)
	return nil
}

// ---------------------------------------------------------------------------
// Statements

func (p *Parser) parseBlock() *BlockExpr {
	block := &BlockExpr{node: node{p.expect(LBRACE).Pos}}
	for !p.accept(RBRACE) {
		if p.accept(SEMICOLON) {
			continue
		}
		if p.at(EOF) {
			p.errorf(block.pos, "unclosed block")
		}
		if p.at(LET) {
			block.Stmts = append(block.Stmts, p.parseLet())
			continue
		}
		if p.isItemStart() {
			item := p.parseItem()
			block.Stmts = append(block.Stmts, &ItemStmt{node: node{item.Pos()}, Item: item})
			continue
		}

		x := p.parseStmtExpr()
		switch {
		case p.accept(SEMICOLON):
			block.Stmts = append(block.Stmts, &ExprStmt{node: node{x.Pos()}, X: x, Semi: true})
		case p.at(RBRACE):
			block.Tail = x
		case isBlockLike(x):
			block.Stmts = append(block.Stmts, &ExprStmt{node: node{x.Pos()}, X: x})
		default:
			p.errorf(p.cur().Pos, "expected \";\" or \"}\", found %s", p.cur())
		}
	}
	return block
}

func (p *Parser) isItemStart() bool {
	switch p.cur().Kind {
	case FN, ENUM, STRUCT, IMPL, USE, TRAIT, MOD, STATIC, PUB, MACRO, TYPE:
		return true
	case HASH:
		return p.peek(1).Kind == LBRACKET
	case CONST:
		return p.peek(1).Kind == IDENT || p.peek(1).Kind == FN
	case IDENT:
		return p.peek(1).Kind == BANG
	}
	return false
}

// parseStmtExpr parses an expression in statement position. Block-like
// expressions end the statement at their closing brace, as in Rust.
func (p *Parser) parseStmtExpr() Expr {
	switch p.cur().Kind {
	case IF, MATCH, LBRACE:
		x := p.parsePrimary()
		if p.at(DOT) || p.at(QUESTION) {
			return p.parsePostfix(x)
		}
		return x
	}
	return p.parseExpr()
}

func isBlockLike(x Expr) bool {
	switch x.(type) {
	case *BlockExpr, *IfExpr, *MatchExpr:
		return true
	}
	return false
}

func (p *Parser) parseLet() *LetStmt {
	stmt := &LetStmt{node: node{p.expect(LET).Pos}}
	pat := p.parsePattern()
	if p.accept(COLON) {
		pat = &TypedPat{node: node{pat.Pos()}, Pat: pat, Type: p.parseType()}
	}
	stmt.Pat = pat
	if p.accept(ASSIGN) {
		stmt.Init = p.parseExpr()
	}
	p.expect(SEMICOLON)
	return stmt
}

// ---------------------------------------------------------------------------
// Expressions

const (
	_ int = iota
	LOWEST
	OROR_PREC
	ANDAND_PREC
	COMPARE_PREC
	BITOR_PREC
	BITXOR_PREC
	BITAND_PREC
	SUM_PREC
	PRODUCT_PREC
)

var precedences = map[Kind]int{
	OROR:    OROR_PREC,
	ANDAND:  ANDAND_PREC,
	EQ:      COMPARE_PREC,
	NOT_EQ:  COMPARE_PREC,
	LT:      COMPARE_PREC,
	GT:      COMPARE_PREC,
	LE:      COMPARE_PREC,
	GE:      COMPARE_PREC,
	OR:      BITOR_PREC,
	CARET:   BITXOR_PREC,
	AND:     BITAND_PREC,
	PLUS:    SUM_PREC,
	MINUS:   SUM_PREC,
	STAR:    PRODUCT_PREC,
	SLASH:   PRODUCT_PREC,
	PERCENT: PRODUCT_PREC,
}

func (p *Parser) parseExpr() Expr {
	return p.parseExpression(LOWEST)
}

func (p *Parser) parseExpression(precedence int) Expr {
	p.enter()
	defer p.leave()

	left := p.parseUnary()
	for {
		op := p.cur()
		prec := precedences[op.Kind]
		if prec == 0 || prec <= precedence {
			return left
		}
		p.next()
		right := p.parseExpression(prec)
		left = &BinaryExpr{node: node{left.Pos()}, Op: op.Kind, X: left, Y: right}
	}
}

func (p *Parser) parseUnary() Expr {
	tok := p.cur()
	switch tok.Kind {
	case MINUS, BANG, STAR:
		p.next()
		return &UnaryExpr{node: node{tok.Pos}, Op: tok.Kind.String(), X: p.parseUnary()}
	case AND, ANDAND:
		p.next()
		op := "&"
		if p.accept(MUT) {
			op = "&mut"
		}
		x := Expr(&UnaryExpr{node: node{tok.Pos}, Op: op, X: p.parseUnary()})
		if tok.Kind == ANDAND {
			x = &UnaryExpr{node: node{tok.Pos}, Op: "&", X: x}
		}
		return x
	}
	return p.parsePostfix(p.parsePrimary())
}

func (p *Parser) parsePostfix(x Expr) Expr {
	for {
		tok := p.cur()
		switch tok.Kind {
		case LPAREN:
			x = &CallExpr{node: node{x.Pos()}, Fun: x, Args: p.parseCallArgs()}
		case DOT:
			p.next()
			name := p.cur()
			if name.Kind != IDENT && name.Kind != INT {
				p.errorf(name.Pos, "expected field or method name, found %s", name)
			}
			p.next()
			if p.at(LPAREN) {
				x = &MethodCallExpr{node: node{x.Pos()}, Recv: x, Name: name.Lit, Args: p.parseCallArgs()}
			} else {
				x = &FieldExpr{node: node{x.Pos()}, X: x, Name: name.Lit}
			}
		case QUESTION:
			p.next()
			x = &UnaryExpr{node: node{tok.Pos}, Op: "?", X: x}
		default:
			return x
		}
	}
}

func (p *Parser) parseCallArgs() []Expr {
	p.expect(LPAREN)
	var args []Expr
	for !p.accept(RPAREN) {
		args = append(args, p.parseExpr())
		if !p.at(RPAREN) {
			p.expect(COMMA)
		}
	}
	return args
}

func (p *Parser) parsePrimary() Expr {
	tok := p.cur()
	switch tok.Kind {
	case INT:
		p.next()
		return &LitExpr{node: node{tok.Pos}, Kind: LitInt, Value: tok.Lit}
	case STRING:
		p.next()
		return &LitExpr{node: node{tok.Pos}, Kind: LitString, Value: tok.Lit}
	case CHAR:
		p.next()
		return &LitExpr{node: node{tok.Pos}, Kind: LitChar, Value: tok.Lit}
	case TRUE, FALSE:
		p.next()
		return &LitExpr{node: node{tok.Pos}, Kind: LitBool, Value: tok.Lit}
	case LPAREN:
		return p.parseParenOrTuple()
	case LBRACE:
		return p.parseBlock()
	case IF:
		return p.parseIf()
	case MATCH:
		return p.parseMatch()
	case RETURN:
		p.next()
		ret := &ReturnExpr{node: node{tok.Pos}}
		switch p.cur().Kind {
		case SEMICOLON, RBRACE, COMMA, RPAREN, EOF:
		default:
			ret.X = p.parseExpr()
		}
		return ret
	case OR, OROR:
		p.errorf(tok.Pos, "closures are not supported")
	}
	if isPathStart(tok.Kind) {
		path := p.parsePath(true)
		if p.at(BANG) {
			p.errorf(p.cur().Pos, "macro invocations are not supported in expressions")
		}
		return &PathExpr{node: node{tok.Pos}, Path: path}
	}
	p.errorf(tok.Pos, "expected expression, found %s", tok)
	return nil
}

func (p *Parser) parseParenOrTuple() Expr {
	pos := p.expect(LPAREN).Pos
	if p.accept(RPAREN) {
		return &TupleExpr{node: node{pos}}
	}
	first := p.parseExpr()
	if p.accept(RPAREN) {
		return &ParenExpr{node: node{pos}, X: first}
	}
	tuple := &TupleExpr{node: node{pos}, Elems: []Expr{first}}
	for p.accept(COMMA) && !p.at(RPAREN) {
		tuple.Elems = append(tuple.Elems, p.parseExpr())
	}
	p.expect(RPAREN)
	return tuple
}

func (p *Parser) parseIf() *IfExpr {
	x := &IfExpr{node: node{p.expect(IF).Pos}}
	if p.at(LET) {
		p.errorf(p.cur().Pos, "\"if let\" is not supported")
	}
	x.Cond = p.parseExpr()
	x.Then = p.parseBlock()
	if p.accept(ELSE) {
		if p.at(IF) {
			x.Else = p.parseIf()
		} else {
			x.Else = p.parseBlock()
		}
	}
	return x
}

func (p *Parser) parseMatch() *MatchExpr {
	x := &MatchExpr{node: node{p.expect(MATCH).Pos}}
	x.X = p.parseExpr()
	p.expect(LBRACE)
	for !p.accept(RBRACE) {
		p.parseOuterAttrs()
		arm := &Arm{node: node{p.cur().Pos}}
		p.accept(OR)
		arm.Pat = p.parsePattern()
		if p.at(OR) {
			p.errorf(p.cur().Pos, "or-patterns are not supported")
		}
		if p.accept(IF) {
			arm.Guard = p.parseExpr()
		}
		p.expect(FAT_ARROW)
		arm.Body = p.parseExpr()
		x.Arms = append(x.Arms, arm)

		if p.accept(COMMA) {
			continue
		}
		if !p.at(RBRACE) && !isBlockLike(arm.Body) {
			p.errorf(p.cur().Pos, "expected \",\" after match arm, found %s", p.cur())
		}
	}
	return x
}

// ---------------------------------------------------------------------------
// Patterns

func (p *Parser) parsePattern() Pat {
	p.enter()
	defer p.leave()

	tok := p.cur()
	switch tok.Kind {
	case UNDERSCORE:
		p.next()
		return &WildcardPat{node: node{tok.Pos}}
	case REF, MUT:
		return p.parseIdentPat()
	case INT, STRING, CHAR, TRUE, FALSE:
		lit := p.parsePrimary().(*LitExpr)
		return &LitPat{node: node{tok.Pos}, Lit: lit}
	case MINUS:
		p.next()
		num := p.expect(INT)
		return &LitPat{node: node{tok.Pos}, Lit: &LitExpr{node: node{tok.Pos}, Kind: LitInt, Value: "-" + num.Lit}}
	case LPAREN:
		p.next()
		var elems []Pat
		trailingComma := false
		for !p.accept(RPAREN) {
			elems = append(elems, p.parsePattern())
			trailingComma = false
			if !p.at(RPAREN) {
				p.expect(COMMA)
				trailingComma = true
			}
		}
		if len(elems) == 1 && !trailingComma {
			return elems[0]
		}
		return &TuplePat{node: node{tok.Pos}, Elems: elems}
	case IDENT, SELF_VALUE:
		next := p.peek(1).Kind
		if next != PATHSEP && next != LPAREN && next != LBRACE {
			return p.parseIdentPat()
		}
	}

	if !isPathStart(tok.Kind) {
		p.errorf(tok.Pos, "expected pattern, found %s", tok)
	}
	path := p.parsePath(true)
	switch {
	case p.at(LPAREN):
		p.next()
		pat := &TupleStructPat{node: node{tok.Pos}, Path: path}
		for !p.accept(RPAREN) {
			pat.Elems = append(pat.Elems, p.parsePattern())
			if !p.at(RPAREN) {
				p.expect(COMMA)
			}
		}
		return pat
	case p.at(LBRACE):
		p.errorf(p.cur().Pos, "struct patterns are not supported")
	}
	return &PathPat{node: node{tok.Pos}, Path: path}
}

func (p *Parser) parseIdentPat() Pat {
	pat := &IdentPat{node: node{p.cur().Pos}}
	pat.Ref = p.accept(REF)
	pat.Mut = p.accept(MUT)
	tok := p.cur()
	if tok.Kind != IDENT && tok.Kind != SELF_VALUE {
		p.errorf(tok.Pos, "expected identifier, found %s", tok)
	}
	p.next()
	pat.Name = tok.Lit
	if p.accept(AT) {
		pat.Sub = p.parsePattern()
	}
	return pat
}

// Describe renders a short description of an item for logs and diagnostics.
func Describe(item Item) string {
	switch it := item.(type) {
	case *EnumItem:
		return "enum " + it.Name
	case *StructItem:
		return "struct " + it.Name
	case *FnItem:
		return "fn " + it.Sig.Name
	case *ImplItem:
		if pt, ok := it.SelfType.(*PathType); ok {
			return "impl " + pt.Path.String()
		}
		return "impl"
	case *AssocTypeItem:
		return "type " + it.Name
	case *OtherItem:
		if it.Name != "" {
			return fmt.Sprintf("%s %s", it.Kind, it.Name)
		}
		return it.Kind
	}
	return fmt.Sprintf("%T", item)
}
