package parser

import (
	"strconv"
	"strings"

	"github.com/declbyte/declbyte/compiler/internal/ast"
	"github.com/declbyte/declbyte/compiler/internal/ctype"
	"github.com/declbyte/declbyte/compiler/internal/macro"
	"github.com/declbyte/declbyte/compiler/internal/token"
	"github.com/declbyte/declbyte/errors"
)

// baseType is the resolved left-hand side of a field declaration, shared
// by every declarator in 'uint32_t a, b;'.
type baseType struct {
	structRef *ast.StructDecl
	name      string
	desc      ctype.Desc
	isEnum    bool
}

// parseFieldDecl consumes one field declaration (possibly declaring
// several comma-separated fields) and appends the fields to s in source
// order.
func (p *Parser) parseFieldDecl(s *ast.StructDecl) error {
	base, err := p.parseBaseType()
	if err != nil {
		return err
	}

	for {
		f, err := p.parseDeclarator(s, base)
		if err != nil {
			return err
		}
		s.Fields = append(s.Fields, *f)

		sep := p.next()
		if sep == nil {
			return errors.New(errors.PhaseParse, errors.KindBadToken).
				Detail("unexpected end of input in field declaration").
				Build()
		}
		if sep.Type == token.Comma {
			continue
		}
		if sep.Type == token.Semi {
			return nil
		}
		return p.errUnexpected(sep, "field declaration")
	}
}

func (p *Parser) parseBaseType() (*baseType, error) {
	t, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	switch t.Value {
	case "union":
		return nil, errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
			"unions with overlapping reinterpretation")
	case "struct":
		if n := p.peek(); n != nil && n.Type == token.LBrace {
			return nil, errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
				"anonymous nested struct")
		}
		tag, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		sd, ok := p.structs[tag.Value]
		if !ok {
			return nil, errors.Unsupported(errors.PhaseParse, tag.Line, tag.Col,
				"reference to struct "+tag.Value+" before its definition")
		}
		return &baseType{structRef: sd, name: tag.Value}, nil
	}

	if ctype.Multiword(t.Value) {
		words := []string{t.Value}
		for {
			n := p.peek()
			if n == nil || n.Type != token.Ident || !ctype.Multiword(n.Value) {
				break
			}
			// Stop when the next word would not extend a known
			// type name; it is the field name ('int int;' is not
			// worth distinguishing here).
			if _, ok := ctype.Lookup(strings.Join(append(words, n.Value), " ")); !ok {
				break
			}
			words = append(words, n.Value)
			p.next()
		}
		joined := strings.Join(words, " ")
		desc, ok := ctype.Lookup(joined)
		if !ok {
			return nil, errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
				"unknown type keyword "+joined)
		}
		return &baseType{name: joined, desc: desc}, nil
	}

	if desc, ok := ctype.Lookup(t.Value); ok {
		return &baseType{name: t.Value, desc: desc}, nil
	}
	if sd, ok := p.structs[t.Value]; ok {
		return &baseType{structRef: sd, name: t.Value}, nil
	}
	if p.enums[t.Value] {
		return &baseType{name: t.Value, desc: ctype.Enum(), isEnum: true}, nil
	}
	return nil, errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
		"unknown type keyword "+t.Value)
}

func (p *Parser) parseDeclarator(s *ast.StructDecl, base *baseType) (*ast.FieldDecl, error) {
	pointers := 0
	for {
		t := p.peek()
		if t == nil || t.Type != token.Star {
			break
		}
		p.next()
		pointers++
	}

	if t := p.peek(); t != nil && t.Type == token.LParen {
		return nil, errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
			"function pointer field")
	}

	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}

	ts := ast.TypeSpec{Name: base.name}
	switch {
	case pointers > 0:
		// Pointers are opaque address-sized values regardless of
		// what they point at.
		ts.Desc = ctype.Pointer(p.cfg.WordSize)
		ts.Pointers = pointers
	case base.structRef != nil:
		ts.Struct = base.structRef
	default:
		ts.Desc = base.desc
	}

	f := &ast.FieldDecl{
		Name:  name.Value,
		Index: len(s.Fields),
		Line:  name.Line,
		Col:   name.Col,
	}

	suffix := p.peek()
	switch {
	case suffix != nil && suffix.Type == token.LBracket:
		p.next()
		if err := p.parseArraySuffix(&ts, name); err != nil {
			return nil, err
		}
		if t := p.peek(); t != nil && t.Type == token.LBracket {
			return nil, errors.Unsupported(errors.PhaseParse, t.Line, t.Col,
				"multi-dimensional array field")
		}

	case suffix != nil && suffix.Type == token.Colon:
		p.next()
		width, err := p.parseBitfieldSuffix(&ts, base, name)
		if err != nil {
			return nil, err
		}
		f.BitWidth = width
	}

	f.Type = ts
	return f, nil
}

// parseArraySuffix resolves '[expr]' through the constant table. The
// opening bracket is already consumed.
func (p *Parser) parseArraySuffix(ts *ast.TypeSpec, name *token.Token) error {
	start := p.pos
	for p.pos < len(p.toks) && p.toks[p.pos].Type != token.RBracket {
		p.pos++
	}
	if p.pos >= len(p.toks) {
		return errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(name.Line, name.Col).
			Detail("unterminated array suffix").
			Build()
	}
	exprToks := p.toks[start:p.pos]
	p.pos++ // ]

	if len(exprToks) == 0 {
		return errors.Unsupported(errors.PhaseParse, name.Line, name.Col,
			"variable-length array field "+name.Value)
	}

	expr, err := macro.Parse(exprToks)
	if err != nil {
		return err
	}
	n, err := p.table.Eval(expr)
	if err != nil {
		return err
	}
	if n <= 0 {
		return errors.New(errors.PhaseLayout, errors.KindLayoutConflict).
			Pos(name.Line, name.Col).
			Symbol(name.Value).
			Detail("array length %d is not positive", n).
			Build()
	}

	ts.IsArray = true
	ts.ArrayLen = n
	return nil
}

// parseBitfieldSuffix validates ': width'. Bitfields are accepted only
// on integer base types and the width must fit the base type.
func (p *Parser) parseBitfieldSuffix(ts *ast.TypeSpec, base *baseType, name *token.Token) (int, error) {
	w, err := p.expect(token.Number)
	if err != nil {
		return 0, err
	}
	width, err := strconv.Atoi(strings.TrimRight(w.Value, "uUlL"))
	if err != nil {
		return 0, errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(w.Line, w.Col).
			Detail("bad bitfield width %q", w.Value).
			Build()
	}

	switch {
	case ts.Pointers > 0:
		return 0, errors.Unsupported(errors.PhaseParse, name.Line, name.Col,
			"bitfield on pointer type")
	case ts.Struct != nil:
		return 0, errors.Unsupported(errors.PhaseParse, name.Line, name.Col,
			"bitfield on struct type")
	case base.isEnum:
		return 0, errors.Unsupported(errors.PhaseParse, name.Line, name.Col,
			"bitfield on enum type")
	case ts.Desc.Float:
		return 0, errors.Unsupported(errors.PhaseParse, name.Line, name.Col,
			"bitfield on non-integer type "+base.name)
	case width <= 0:
		return 0, errors.Unsupported(errors.PhaseParse, w.Line, w.Col,
			"zero-width bitfield")
	case uint32(width) > ts.Desc.Width*8:
		return 0, errors.Unsupported(errors.PhaseParse, w.Line, w.Col,
			"bitfield wider than its base type")
	}
	return width, nil
}
