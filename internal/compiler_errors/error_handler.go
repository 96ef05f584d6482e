package compiler_errors

import (
	"fmt"

	"github.com/kievzenit/izc/internal/source"
)

type CompilerError interface {
	GetMessage() string
}

// LocatedError is a CompilerError that points into a source unit.
type LocatedError interface {
	CompilerError
	GetUnit() *source.Unit
	GetSpan() source.Span
}

type ErrorKind int

const (
	Redefinition ErrorKind = iota
	UndeclaredIdentifier
	IncompatibleType
	ReturnTypeMismatch
	MissingReturn
	SyntaxError
)

func (k ErrorKind) String() string {
	switch k {
	case Redefinition:
		return "redefinition of"
	case UndeclaredIdentifier:
		return "undeclared identifier"
	case IncompatibleType:
		return "incompatible type"
	case ReturnTypeMismatch:
		return "return type mismatch"
	case MissingReturn:
		return "missing return statement"
	case SyntaxError:
		return "syntax error"
	}

	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Diagnostic is a (unit, span, kind) triple produced by the semantic checks.
type Diagnostic struct {
	Unit *source.Unit
	Span source.Span
	Kind ErrorKind
}

func (d *Diagnostic) GetMessage() string {
	return fmt.Sprintf("%s '%s'", d.Kind, d.Unit.Text(d.Span))
}

func (d *Diagnostic) GetUnit() *source.Unit { return d.Unit }
func (d *Diagnostic) GetSpan() source.Span  { return d.Span }

type ErrorHandler interface {
	AddError(err CompilerError)
	Count() int
	Errors() []CompilerError
}

type CompilerErrorHandler struct {
	errors []CompilerError
}

func NewErrorHandler() ErrorHandler {
	return &CompilerErrorHandler{
		errors: make([]CompilerError, 0),
	}
}

func (eh *CompilerErrorHandler) AddError(err CompilerError) {
	eh.errors = append(eh.errors, err)
}

func (eh *CompilerErrorHandler) Count() int {
	return len(eh.errors)
}

func (eh *CompilerErrorHandler) Errors() []CompilerError {
	return eh.errors
}

// Diagnostics returns the semantic diagnostics recorded in eh, in report order.
func Diagnostics(eh ErrorHandler) []*Diagnostic {
	diagnostics := make([]*Diagnostic, 0)
	for _, err := range eh.Errors() {
		if d, ok := err.(*Diagnostic); ok {
			diagnostics = append(diagnostics, d)
		}
	}

	return diagnostics
}

// Kinds is a shorthand for the kinds of Diagnostics(eh).
func Kinds(eh ErrorHandler) []ErrorKind {
	kinds := make([]ErrorKind, 0)
	for _, d := range Diagnostics(eh) {
		kinds = append(kinds, d.Kind)
	}

	return kinds
}
