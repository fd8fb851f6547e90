package macro

import (
	"strconv"
	"strings"

	"github.com/declbyte/declbyte/compiler/internal/token"
	"github.com/declbyte/declbyte/errors"
)

// Expr is an operator tree over integer literals and macro references.
type Expr interface {
	exprNode()
}

type Literal struct {
	Value int64
	Line  int
	Col   int
}

type Ref struct {
	Name string
	Line int
	Col  int
}

type Unary struct {
	X    Expr
	Op   token.Type
	Line int
	Col  int
}

type Binary struct {
	L    Expr
	R    Expr
	Op   token.Type
	Line int
	Col  int
}

func (*Literal) exprNode() {}
func (*Ref) exprNode()     {}
func (*Unary) exprNode()   {}
func (*Binary) exprNode()  {}

// Parse builds an expression tree from a token slice. The whole slice
// must be consumed; trailing tokens are a syntax error. Standard
// precedence: '*' and '/' bind tighter than '+' and '-', equal
// precedence associates left to right.
func Parse(toks []token.Token) (Expr, error) {
	p := &exprParser{toks: toks}
	e, err := p.parseSum()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.toks) {
		t := p.toks[p.pos]
		return nil, errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(t.Line, t.Col).
			Detail("unexpected %s in constant expression", t.Type).
			Build()
	}
	return e, nil
}

type exprParser struct {
	toks []token.Token
	pos  int
}

func (p *exprParser) peek() *token.Token {
	if p.pos >= len(p.toks) {
		return nil
	}
	return &p.toks[p.pos]
}

func (p *exprParser) next() *token.Token {
	t := p.peek()
	if t != nil {
		p.pos++
	}
	return t
}

func (p *exprParser) parseSum() (Expr, error) {
	left, err := p.parseProduct()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || (t.Type != token.Plus && t.Type != token.Minus) {
			return left, nil
		}
		p.next()
		right, err := p.parseProduct()
		if err != nil {
			return nil, err
		}
		left = &Binary{L: left, R: right, Op: t.Type, Line: t.Line, Col: t.Col}
	}
}

func (p *exprParser) parseProduct() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.peek()
		if t == nil || (t.Type != token.Star && t.Type != token.Slash) {
			return left, nil
		}
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &Binary{L: left, R: right, Op: t.Type, Line: t.Line, Col: t.Col}
	}
}

func (p *exprParser) parseUnary() (Expr, error) {
	t := p.peek()
	if t != nil && (t.Type == token.Minus || t.Type == token.Plus) {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		if t.Type == token.Plus {
			return x, nil
		}
		return &Unary{X: x, Op: t.Type, Line: t.Line, Col: t.Col}, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (Expr, error) {
	t := p.next()
	if t == nil {
		return nil, errors.New(errors.PhaseParse, errors.KindBadToken).
			Detail("unexpected end of constant expression").
			Build()
	}
	switch t.Type {
	case token.Number:
		v, err := parseLiteral(t.Value)
		if err != nil {
			return nil, errors.New(errors.PhaseParse, errors.KindBadToken).
				Pos(t.Line, t.Col).
				Detail("bad integer literal %q", t.Value).
				Build()
		}
		return &Literal{Value: v, Line: t.Line, Col: t.Col}, nil
	case token.Ident:
		return &Ref{Name: t.Value, Line: t.Line, Col: t.Col}, nil
	case token.LParen:
		e, err := p.parseSum()
		if err != nil {
			return nil, err
		}
		c := p.next()
		if c == nil || c.Type != token.RParen {
			return nil, errors.New(errors.PhaseParse, errors.KindBadToken).
				Pos(t.Line, t.Col).
				Detail("unclosed parenthesis in constant expression").
				Build()
		}
		return e, nil
	default:
		return nil, errors.New(errors.PhaseParse, errors.KindBadToken).
			Pos(t.Line, t.Col).
			Detail("unexpected %s in constant expression", t.Type).
			Build()
	}
}

// parseLiteral strips C integer suffixes (U, L, UL, LL, ...) and parses
// decimal or 0x hex.
func parseLiteral(s string) (int64, error) {
	s = strings.TrimRight(s, "uUlL")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := strconv.ParseUint(s[2:], 16, 64)
		return int64(v), err
	}
	return strconv.ParseInt(s, 10, 64)
}
