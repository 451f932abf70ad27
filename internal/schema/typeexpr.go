package schema

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Expr is a parsed type expression. Exactly one of Name and Func is set.
type Expr struct {
	Name string
	Args []*Expr
	Func *FuncExpr
}

// FuncExpr is the arrow form of a type expression.
type FuncExpr struct {
	Fuzzy      bool
	Positional []*Expr
	Optional   []*Expr
	Named      []NamedParam
	Return     *Expr
}

// NamedParam is one {name: Type} entry.
type NamedParam struct {
	Name string
	Type *Expr
}

func (e *Expr) String() string {
	var b strings.Builder
	e.write(&b)
	return b.String()
}

func (e *Expr) write(b *strings.Builder) {
	if e.Func == nil {
		b.WriteString(e.Name)
		if len(e.Args) > 0 {
			b.WriteByte('<')
			writeList(b, e.Args)
			b.WriteByte('>')
		}
		return
	}
	f := e.Func
	if f.Fuzzy {
		b.WriteByte('~')
	}
	b.WriteByte('(')
	writeList(b, f.Positional)
	sep := len(f.Positional) > 0
	if len(f.Optional) > 0 {
		if sep {
			b.WriteString(", ")
		}
		b.WriteByte('[')
		writeList(b, f.Optional)
		b.WriteByte(']')
	}
	if len(f.Named) > 0 {
		if sep {
			b.WriteString(", ")
		}
		b.WriteByte('{')
		for i, p := range f.Named {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(p.Name)
			b.WriteString(": ")
			p.Type.write(b)
		}
		b.WriteByte('}')
	}
	b.WriteString(") -> ")
	f.Return.write(b)
}

func writeList(b *strings.Builder, list []*Expr) {
	for i, e := range list {
		if i > 0 {
			b.WriteString(", ")
		}
		e.write(b)
	}
}

// walk calls visit for every named reference in e, outermost first.
func (e *Expr) walk(visit func(*Expr)) {
	if e.Func == nil {
		visit(e)
		for _, a := range e.Args {
			a.walk(visit)
		}
		return
	}
	for _, p := range e.Func.Positional {
		p.walk(visit)
	}
	for _, p := range e.Func.Optional {
		p.walk(visit)
	}
	for _, p := range e.Func.Named {
		p.Type.walk(visit)
	}
	e.Func.Return.walk(visit)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokLT
	tokGT
	tokComma
	tokLParen
	tokRParen
	tokLBrack
	tokRBrack
	tokLBrace
	tokRBrace
	tokColon
	tokArrow
	tokTilde
	tokIllegal
)

var tokenNames = map[tokenKind]string{
	tokEOF:     "end of input",
	tokIdent:   "name",
	tokLT:      "'<'",
	tokGT:      "'>'",
	tokComma:   "','",
	tokLParen:  "'('",
	tokRParen:  "')'",
	tokLBrack:  "'['",
	tokRBrack:  "']'",
	tokLBrace:  "'{'",
	tokRBrace:  "'}'",
	tokColon:   "':'",
	tokArrow:   "'->'",
	tokTilde:   "'~'",
	tokIllegal: "illegal character",
}

type lexToken struct {
	kind   tokenKind
	text   string
	offset int
}

// lexer splits a type expression into tokens one rune at a time.
type lexer struct {
	input   string
	pos     int
	readPos int
	ch      rune
}

func newLexer(input string) *lexer {
	l := &lexer{input: input}
	l.readChar()
	return l
}

func (l *lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0
		l.pos = l.readPos
		return
	}
	r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	l.ch = r
	l.pos = l.readPos
	l.readPos += w
}

func (l *lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

func (l *lexer) next() lexToken {
	for unicode.IsSpace(l.ch) {
		l.readChar()
	}
	start := l.pos
	single := func(k tokenKind) lexToken {
		l.readChar()
		return lexToken{kind: k, text: l.input[start:l.pos], offset: start}
	}
	switch l.ch {
	case 0:
		return lexToken{kind: tokEOF, offset: start}
	case '<':
		return single(tokLT)
	case '>':
		return single(tokGT)
	case ',':
		return single(tokComma)
	case '(':
		return single(tokLParen)
	case ')':
		return single(tokRParen)
	case '[':
		return single(tokLBrack)
	case ']':
		return single(tokRBrack)
	case '{':
		return single(tokLBrace)
	case '}':
		return single(tokRBrace)
	case ':':
		return single(tokColon)
	case '~':
		return single(tokTilde)
	case '-':
		if l.peekChar() == '>' {
			l.readChar()
			return single(tokArrow)
		}
		return single(tokIllegal)
	}
	if isIdentRune(l.ch) {
		for isIdentRune(l.ch) {
			l.readChar()
		}
		return lexToken{kind: tokIdent, text: l.input[start:l.pos], offset: start}
	}
	return single(tokIllegal)
}

func isIdentRune(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

type parser struct {
	lex   *lexer
	input string
	tok   lexToken
}

// ParseType parses a type expression.
func ParseType(input string) (*Expr, error) {
	p := &parser{lex: newLexer(input), input: input}
	p.advance()
	e, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.unexpected("end of input")
	}
	return e, nil
}

func (p *parser) advance() { p.tok = p.lex.next() }

func (p *parser) unexpected(want string) error {
	got := tokenNames[p.tok.kind]
	if p.tok.kind == tokIdent {
		got = "name " + p.tok.text
	}
	return &SyntaxError{Input: p.input, Offset: p.tok.offset, Message: "expected " + want + ", found " + got}
}

func (p *parser) expect(k tokenKind) error {
	if p.tok.kind != k {
		return p.unexpected(tokenNames[k])
	}
	p.advance()
	return nil
}

func (p *parser) parseType() (*Expr, error) {
	switch p.tok.kind {
	case tokTilde:
		p.advance()
		if p.tok.kind != tokLParen {
			return nil, p.unexpected("'(' after '~'")
		}
		return p.parseFunc(true)
	case tokLParen:
		return p.parseFunc(false)
	case tokIdent:
		e := &Expr{Name: p.tok.text}
		p.advance()
		if p.tok.kind != tokLT {
			return e, nil
		}
		p.advance()
		args, err := p.parseList(tokGT)
		if err != nil {
			return nil, err
		}
		if len(args) == 0 {
			return nil, p.unexpected("type argument")
		}
		e.Args = args
		return e, nil
	}
	return nil, p.unexpected("type")
}

// parseList parses comma separated types up to and including end.
func (p *parser) parseList(end tokenKind) ([]*Expr, error) {
	var list []*Expr
	if p.tok.kind == end {
		p.advance()
		return list, nil
	}
	for {
		e, err := p.parseType()
		if err != nil {
			return nil, err
		}
		list = append(list, e)
		if p.tok.kind == tokComma {
			p.advance()
			continue
		}
		if err := p.expect(end); err != nil {
			return nil, err
		}
		return list, nil
	}
}

func (p *parser) parseFunc(fuzzy bool) (*Expr, error) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	f := &FuncExpr{Fuzzy: fuzzy}
params:
	for p.tok.kind != tokRParen {
		switch p.tok.kind {
		case tokLBrack:
			p.advance()
			opt, err := p.parseList(tokRBrack)
			if err != nil {
				return nil, err
			}
			f.Optional = opt
			break params
		case tokLBrace:
			p.advance()
			named, err := p.parseNamed()
			if err != nil {
				return nil, err
			}
			f.Named = named
			break params
		}
		e, err := p.parseType()
		if err != nil {
			return nil, err
		}
		f.Positional = append(f.Positional, e)
		if p.tok.kind != tokComma {
			break
		}
		p.advance()
	}
	if err := p.expect(tokRParen); err != nil {
		return nil, err
	}
	if err := p.expect(tokArrow); err != nil {
		return nil, err
	}
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	f.Return = ret
	return &Expr{Func: f}, nil
}

func (p *parser) parseNamed() ([]NamedParam, error) {
	var named []NamedParam
	seen := make(map[string]bool)
	for {
		if p.tok.kind != tokIdent {
			return nil, p.unexpected("parameter name")
		}
		name, at := p.tok.text, p.tok.offset
		if seen[name] {
			return nil, &SyntaxError{Input: p.input, Offset: at, Message: "duplicate named parameter " + name}
		}
		seen[name] = true
		p.advance()
		if err := p.expect(tokColon); err != nil {
			return nil, err
		}
		t, err := p.parseType()
		if err != nil {
			return nil, err
		}
		named = append(named, NamedParam{Name: name, Type: t})
		if p.tok.kind == tokComma {
			p.advance()
			continue
		}
		if err := p.expect(tokRBrace); err != nil {
			return nil, err
		}
		return named, nil
	}
}
