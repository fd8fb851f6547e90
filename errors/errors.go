package errors

import (
	"fmt"
	"strings"
)

// Phase indicates which compilation stage produced the error
type Phase string

const (
	PhaseLex      Phase = "lex"      // tokenization
	PhaseMacro    Phase = "macro"    // constant expression resolution
	PhaseParse    Phase = "parse"    // struct/field parsing
	PhaseLayout   Phase = "layout"   // offset/padding computation
	PhaseGenerate Phase = "generate" // descriptor emission
)

// Kind categorizes the error
type Kind string

const (
	KindBadToken         Kind = "bad_token"
	KindUndefinedSymbol  Kind = "undefined_symbol"
	KindCyclicDefinition Kind = "cyclic_definition"
	KindDivideByZero     Kind = "divide_by_zero"
	KindDuplicateSymbol  Kind = "duplicate_symbol"
	KindUnsupported      Kind = "unsupported_construct"
	KindLayoutConflict   Kind = "layout_conflict"
)

// Error is the structured error type used throughout the compiler
type Error struct {
	Cause  error
	Phase  Phase
	Kind   Kind
	Symbol string
	Detail string
	Line   int
	Col    int
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if e.Line > 0 {
		fmt.Fprintf(&b, " at %d:%d", e.Line, e.Col)
	}

	if e.Symbol != "" {
		b.WriteString(": ")
		b.WriteString(e.Symbol)
	}

	if e.Detail != "" {
		if e.Symbol != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Pos sets the offending token's source position
func (b *Builder) Pos(line, col int) *Builder {
	b.err.Line = line
	b.err.Col = col
	return b
}

// Symbol sets the offending symbol name
func (b *Builder) Symbol(name string) *Builder {
	b.err.Symbol = name
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// BadToken creates a tokenization error
func BadToken(line, col int, detail string) *Error {
	return &Error{
		Phase:  PhaseLex,
		Kind:   KindBadToken,
		Line:   line,
		Col:    col,
		Detail: detail,
	}
}

// UndefinedSymbol creates an unresolved-reference error
func UndefinedSymbol(line, col int, name string) *Error {
	return &Error{
		Phase:  PhaseMacro,
		Kind:   KindUndefinedSymbol,
		Line:   line,
		Col:    col,
		Symbol: name,
		Detail: "referenced before definition",
	}
}

// CyclicDefinition creates a macro cycle error
func CyclicDefinition(line, col int, name string) *Error {
	return &Error{
		Phase:  PhaseMacro,
		Kind:   KindCyclicDefinition,
		Line:   line,
		Col:    col,
		Symbol: name,
		Detail: "definition references itself",
	}
}

// DivideByZero creates a zero-divisor error
func DivideByZero(line, col int, name string) *Error {
	return &Error{
		Phase:  PhaseMacro,
		Kind:   KindDivideByZero,
		Line:   line,
		Col:    col,
		Symbol: name,
		Detail: "division by zero-valued subexpression",
	}
}

// DuplicateSymbol creates a redefinition error
func DuplicateSymbol(line, col int, name string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindDuplicateSymbol,
		Line:   line,
		Col:    col,
		Symbol: name,
		Detail: "already defined",
	}
}

// Unsupported creates an unmodeled-construct error
func Unsupported(phase Phase, line, col int, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupported,
		Line:   line,
		Col:    col,
		Detail: what,
	}
}

// LayoutConflict creates a layout invariant violation error
func LayoutConflict(line, col int, detail string) *Error {
	return &Error{
		Phase:  PhaseLayout,
		Kind:   KindLayoutConflict,
		Line:   line,
		Col:    col,
		Detail: detail,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
