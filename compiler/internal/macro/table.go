package macro

import (
	"github.com/declbyte/declbyte/compiler/internal/token"
	"github.com/declbyte/declbyte/errors"
)

type definition struct {
	expr      Expr
	name      string
	index     int
	line, col int
	value     int64
	resolved  bool
	resolving bool
}

// Table is the symbol table of named integer constants owned by one
// compilation context. Definitions are recorded in source order; values
// are resolved on first use and memoized.
type Table struct {
	defs  map[string]*definition
	order []string
}

func NewTable() *Table {
	return &Table{defs: make(map[string]*definition)}
}

// Define records a constant defined by an expression over earlier
// constants. The value is not computed until first resolution.
func (t *Table) Define(name string, expr Expr, line, col int) error {
	if _, ok := t.defs[name]; ok {
		return errors.DuplicateSymbol(line, col, name)
	}
	t.defs[name] = &definition{
		expr:  expr,
		name:  name,
		index: len(t.order),
		line:  line,
		col:   col,
	}
	t.order = append(t.order, name)
	return nil
}

// DefineValue records an already-resolved constant (enumerators).
func (t *Table) DefineValue(name string, value int64, line, col int) error {
	if _, ok := t.defs[name]; ok {
		return errors.DuplicateSymbol(line, col, name)
	}
	t.defs[name] = &definition{
		name:     name,
		index:    len(t.order),
		line:     line,
		col:      col,
		value:    value,
		resolved: true,
	}
	t.order = append(t.order, name)
	return nil
}

// Defined reports whether a name is already taken in the table.
func (t *Table) Defined(name string) bool {
	_, ok := t.defs[name]
	return ok
}

// Names returns all defined names in definition order.
func (t *Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Value returns the memoized value of an already-resolved constant.
func (t *Table) Value(name string) (int64, bool) {
	d, ok := t.defs[name]
	if !ok || !d.resolved {
		return 0, false
	}
	return d.value, true
}

// Resolve computes the value of a named constant at a use site (an
// array length, a size expression). Every name defined so far counts
// as an earlier definition.
func (t *Table) Resolve(name string, line, col int) (int64, error) {
	d, ok := t.defs[name]
	if !ok {
		return 0, errors.UndefinedSymbol(line, col, name)
	}
	return t.resolve(d, len(t.order))
}

// Eval evaluates a free-standing expression against the table, as if it
// appeared after every definition recorded so far.
func (t *Table) Eval(expr Expr) (int64, error) {
	return t.eval(expr, len(t.order))
}

// ResolveAll resolves every definition in source order. Called once
// after parsing so that errors in unused constants still abort the
// compilation unit.
func (t *Table) ResolveAll() error {
	for _, name := range t.order {
		if _, err := t.resolve(t.defs[name], len(t.order)); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) resolve(d *definition, referrer int) (int64, error) {
	if d.resolved {
		return d.value, nil
	}
	if d.resolving {
		return 0, errors.CyclicDefinition(d.line, d.col, d.name)
	}
	d.resolving = true
	v, err := t.eval(d.expr, d.index)
	d.resolving = false
	if err != nil {
		return 0, err
	}
	d.value = v
	d.resolved = true
	return v, nil
}

func (t *Table) eval(e Expr, referrer int) (int64, error) {
	switch x := e.(type) {
	case *Literal:
		return x.Value, nil

	case *Ref:
		d, ok := t.defs[x.Name]
		if !ok {
			return 0, errors.UndefinedSymbol(x.Line, x.Col, x.Name)
		}
		if d.resolving {
			return 0, errors.CyclicDefinition(x.Line, x.Col, x.Name)
		}
		v, err := t.resolve(d, referrer)
		if err != nil {
			return 0, err
		}
		// Cycles are detected above; anything else defined later in
		// the source is a forward reference and stays undefined for
		// this referrer.
		if d.index >= referrer {
			return 0, errors.UndefinedSymbol(x.Line, x.Col, x.Name)
		}
		return v, nil

	case *Unary:
		v, err := t.eval(x.X, referrer)
		if err != nil {
			return 0, err
		}
		return -v, nil

	case *Binary:
		l, err := t.eval(x.L, referrer)
		if err != nil {
			return 0, err
		}
		r, err := t.eval(x.R, referrer)
		if err != nil {
			return 0, err
		}
		switch x.Op {
		case token.Plus:
			return l + r, nil
		case token.Minus:
			return l - r, nil
		case token.Star:
			return l * r, nil
		case token.Slash:
			if r == 0 {
				return 0, errors.DivideByZero(x.Line, x.Col, "")
			}
			return l / r, nil
		}
		return 0, errors.New(errors.PhaseMacro, errors.KindBadToken).
			Pos(x.Line, x.Col).
			Detail("unknown operator").
			Build()

	default:
		return 0, errors.New(errors.PhaseMacro, errors.KindBadToken).
			Detail("unknown expression node").
			Build()
	}
}
