package parser

import (
	"github.com/declbyte/declbyte/compiler/internal/ast"
	"github.com/declbyte/declbyte/compiler/internal/macro"
	"github.com/declbyte/declbyte/compiler/internal/token"
	"github.com/declbyte/declbyte/errors"
)

// Config carries the target options the parser needs: pointer width and
// the packing mode applied to structs without an explicit marker.
type Config struct {
	WordSize      int
	DefaultPacked bool
}

type Parser struct {
	toks    []token.Token
	table   *macro.Table
	structs map[string]*ast.StructDecl
	enums   map[string]bool
	unit    *ast.Unit
	cfg     Config
	pos     int
}

func New(toks []token.Token, table *macro.Table, cfg Config) *Parser {
	if cfg.WordSize == 0 {
		cfg.WordSize = 8
	}
	return &Parser{
		toks:    toks,
		table:   table,
		structs: make(map[string]*ast.StructDecl),
		enums:   make(map[string]bool),
		unit:    &ast.Unit{},
		cfg:     cfg,
	}
}

// Parse consumes the whole token stream in a single forward pass and
// returns the declaration tree. Macro definitions are recorded into the
// table as they appear.
func (p *Parser) Parse() (*ast.Unit, error) {
	for {
		t := p.peek()
		if t == nil {
			return p.unit, nil
		}

		switch {
		case t.Type == token.Directive:
			if err := p.parseDirective(); err != nil {
				return nil, err
			}
		case t.Type == token.Ident && t.Value == "typedef":
			if err := p.parseTypedef(); err != nil {
				return nil, err
			}
		case t.Type == token.Ident && t.Value == "struct":
			p.next()
			if err := p.parseStruct(t, false); err != nil {
				return nil, err
			}
		case t.Type == token.Ident && t.Value == "enum":
			p.next()
			if err := p.parseEnum(t, false); err != nil {
				return nil, err
			}
		case t.Type == token.Ident && t.Value == "union":
			return nil, errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
				"unions with overlapping reinterpretation")
		case t.Type == token.Semi:
			p.next()
		default:
			return nil, p.errUnexpected(t, "declaration")
		}
	}
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.toks) {
		return nil
	}
	return &p.toks[p.pos]
}

func (p *Parser) next() *token.Token {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

func (p *Parser) expect(typ token.Type) (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, errors.New(errors.PhaseParse, errors.KindBadToken).
			Detail("unexpected end of input, expected %s", typ).
			Build()
	}
	if t.Type != typ {
		return nil, errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(t.Line, t.Col).
			Detail("expected %s, got %q", typ, t.Value).
			Build()
	}
	return t, nil
}

func (p *Parser) errUnexpected(t *token.Token, where string) error {
	return errors.New(errors.PhaseParse, errors.KindBadToken).
		Pos(t.Line, t.Col).
		Detail("unexpected %q in %s", t.Value, where).
		Build()
}

// parseDirective handles '#define NAME expr'. Every other directive is
// an unmodeled preprocessor feature and is rejected outright.
func (p *Parser) parseDirective() error {
	d := p.next()
	if d.Value != "define" {
		return errors.Unsupported(errors.PhaseParse, d.Line, d.Col,
			"preprocessor directive #"+d.Value)
	}

	name := p.peek()
	if name == nil || name.Type != token.Ident || name.Line != d.Line {
		return errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(d.Line, d.Col).
			Detail("#define requires a name").
			Build()
	}
	p.next()

	// The replacement expression extends to the end of the line.
	start := p.pos
	for p.pos < len(p.toks) && p.toks[p.pos].Line == d.Line {
		p.pos++
	}
	exprToks := p.toks[start:p.pos]
	if len(exprToks) == 0 {
		return errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(name.Line, name.Col).
			Detail("#define %s has no expression", name.Value).
			Build()
	}

	expr, err := macro.Parse(exprToks)
	if err != nil {
		return err
	}
	// Constants, enumerators, struct names and tags share one
	// namespace; the table only guards against other constants.
	if _, ok := p.structs[name.Value]; ok || p.enums[name.Value] {
		return errors.DuplicateSymbol(name.Line, name.Col, name.Value)
	}
	return p.table.Define(name.Value, expr, name.Line, name.Col)
}

func (p *Parser) parseTypedef() error {
	kw := p.next() // typedef
	t := p.next()
	if t == nil {
		return errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(kw.Line, kw.Col).
			Detail("unexpected end of input after typedef").
			Build()
	}
	switch {
	case t.Type == token.Ident && t.Value == "struct":
		return p.parseStruct(t, true)
	case t.Type == token.Ident && t.Value == "enum":
		return p.parseEnum(t, true)
	case t.Type == token.Ident && t.Value == "union":
		return errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
			"unions with overlapping reinterpretation")
	default:
		return errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
			"typedef of non-struct type")
	}
}

// parseStruct parses 'struct [attributes] [tag] { fields } [name];' with
// the leading 'struct' keyword already consumed.
func (p *Parser) parseStruct(kw *token.Token, typedef bool) error {
	packed := p.cfg.DefaultPacked

	if t := p.peek(); t != nil && t.Type == token.Ident && t.Value == "__attribute__" {
		attrPacked, err := p.parseAttribute()
		if err != nil {
			return err
		}
		packed = packed || attrPacked
	}

	var tag *token.Token
	if t := p.peek(); t != nil && t.Type == token.Ident {
		tag = p.next()
	}

	if t := p.peek(); t == nil || t.Type != token.LBrace {
		return errors.Unsupported(errors.PhaseParse, kw.Line, kw.Col,
			"struct declaration without body (forward declarations)")
	}
	p.next() // {

	s := &ast.StructDecl{Packed: packed, Line: kw.Line, Col: kw.Col}
	for {
		t := p.peek()
		if t == nil {
			return errors.New(errors.PhaseParse, errors.KindBadToken).
				Pos(kw.Line, kw.Col).
				Detail("unterminated struct body").
				Build()
		}
		if t.Type == token.RBrace {
			p.next()
			break
		}
		if err := p.parseFieldDecl(s); err != nil {
			return err
		}
	}

	var name *token.Token
	if t := p.peek(); t != nil && t.Type == token.Ident {
		name = p.next()
	}
	if _, err := p.expect(token.Semi); err != nil {
		return err
	}

	switch {
	case name != nil:
		s.Name = name.Value
	case tag != nil:
		s.Name = tag.Value
	default:
		return errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(kw.Line, kw.Col).
			Detail("struct has neither tag nor name").
			Build()
	}
	if typedef && name == nil {
		return errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(kw.Line, kw.Col).
			Detail("typedef struct requires a name").
			Build()
	}

	// Register after the body is complete: a field referencing the
	// struct being defined never resolves, which is exactly the
	// no-self-reference-by-value rule.
	if name != nil {
		if err := p.register(name, s); err != nil {
			return err
		}
	}
	if tag != nil && (name == nil || tag.Value != name.Value) {
		if err := p.register(tag, s); err != nil {
			return err
		}
	}
	p.unit.Structs = append(p.unit.Structs, s)
	return nil
}

func (p *Parser) register(at *token.Token, s *ast.StructDecl) error {
	if _, ok := p.structs[at.Value]; ok || p.enums[at.Value] || p.table.Defined(at.Value) {
		return errors.DuplicateSymbol(at.Line, at.Col, at.Value)
	}
	p.structs[at.Value] = s
	return nil
}

// parseAttribute accepts '__attribute__((packed))'. Anything else inside
// the double parens, including aligned(n), is rejected.
func (p *Parser) parseAttribute() (packed bool, err error) {
	p.next() // __attribute__
	if _, err := p.expect(token.LParen); err != nil {
		return false, err
	}
	if _, err := p.expect(token.LParen); err != nil {
		return false, err
	}
	for {
		t, err := p.expect(token.Ident)
		if err != nil {
			return false, err
		}
		if t.Value != "packed" {
			return false, errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
				"struct attribute "+t.Value)
		}
		packed = true

		n := p.next()
		if n == nil {
			return false, errors.New(errors.PhaseParse, errors.KindBadToken).
				Pos(t.Line, t.Col).
				Detail("unterminated attribute list").
				Build()
		}
		if n.Type == token.Comma {
			continue
		}
		if n.Type == token.RParen {
			break
		}
		return false, p.errUnexpected(n, "attribute list")
	}
	if _, err := p.expect(token.RParen); err != nil {
		return false, err
	}
	return packed, nil
}

// parseEnum parses 'enum [tag] { NAME [= expr], ... } [name];' with the
// 'enum' keyword already consumed. Enumerators enter the constant table;
// the type itself maps to a 32-bit unsigned scalar.
func (p *Parser) parseEnum(kw *token.Token, typedef bool) error {
	var tag *token.Token
	if t := p.peek(); t != nil && t.Type == token.Ident {
		tag = p.next()
	}

	if _, err := p.expect(token.LBrace); err != nil {
		return err
	}

	nextVal := int64(0)
	for {
		t := p.peek()
		if t == nil {
			return errors.New(errors.PhaseParse, errors.KindBadToken).
				Pos(kw.Line, kw.Col).
				Detail("unterminated enum body").
				Build()
		}
		if t.Type == token.RBrace {
			p.next()
			break
		}

		name, err := p.expect(token.Ident)
		if err != nil {
			return err
		}

		val := nextVal
		if eq := p.peek(); eq != nil && eq.Type == token.Assign {
			p.next()
			exprToks, err := p.collectEnumExpr()
			if err != nil {
				return err
			}
			expr, err := macro.Parse(exprToks)
			if err != nil {
				return err
			}
			val, err = p.table.Eval(expr)
			if err != nil {
				return err
			}
		}
		if _, ok := p.structs[name.Value]; ok || p.enums[name.Value] {
			return errors.DuplicateSymbol(name.Line, name.Col, name.Value)
		}
		if err := p.table.DefineValue(name.Value, val, name.Line, name.Col); err != nil {
			return err
		}
		nextVal = val + 1

		sep := p.peek()
		if sep != nil && sep.Type == token.Comma {
			p.next()
		}
	}

	var name *token.Token
	if t := p.peek(); t != nil && t.Type == token.Ident {
		name = p.next()
	}
	if _, err := p.expect(token.Semi); err != nil {
		return err
	}
	if typedef && name == nil {
		return errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(kw.Line, kw.Col).
			Detail("typedef enum requires a name").
			Build()
	}

	if tag != nil && name != nil && tag.Value == name.Value {
		tag = nil
	}
	for _, t := range []*token.Token{name, tag} {
		if t == nil {
			continue
		}
		if _, ok := p.structs[t.Value]; ok || p.enums[t.Value] || p.table.Defined(t.Value) {
			return errors.DuplicateSymbol(t.Line, t.Col, t.Value)
		}
		p.enums[t.Value] = true
	}
	return nil
}

// collectEnumExpr gathers tokens up to the enumerator separator (',' or
// '}' at paren depth zero).
func (p *Parser) collectEnumExpr() ([]token.Token, error) {
	start := p.pos
	depth := 0
	for p.pos < len(p.toks) {
		switch p.toks[p.pos].Type {
		case token.LParen:
			depth++
		case token.RParen:
			depth--
		case token.Comma, token.RBrace:
			if depth == 0 {
				return p.toks[start:p.pos], nil
			}
		}
		p.pos++
	}
	return nil, errors.New(errors.PhaseParse, errors.KindBadToken).
		Detail("unterminated enumerator expression").
		Build()
}
