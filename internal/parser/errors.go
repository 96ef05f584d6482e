package parser

import (
	"errors"
	"fmt"

	"github.com/kievzenit/izc/internal/lexer"
	"github.com/kievzenit/izc/internal/source"
)

var ErrSyntax = errors.New("syntax error")

type UnexpectedExpectedError struct {
	Unexpected lexer.TokenKind
	Expected   lexer.TokenKind

	Unit *source.Unit
	Span source.Span
}

func (e *UnexpectedExpectedError) GetMessage() string {
	return fmt.Sprintf("unexpected token: '%s', expected: '%s'", e.Unexpected.String(), e.Expected.String())
}

func (e *UnexpectedExpectedError) GetUnit() *source.Unit { return e.Unit }
func (e *UnexpectedExpectedError) GetSpan() source.Span  { return e.Span }

type UnexpectedError struct {
	Unexpected lexer.TokenKind

	Unit *source.Unit
	Span source.Span
}

func (e *UnexpectedError) GetMessage() string {
	return fmt.Sprintf("unexpected token: '%s'", e.Unexpected.String())
}

func (e *UnexpectedError) GetUnit() *source.Unit { return e.Unit }
func (e *UnexpectedError) GetSpan() source.Span  { return e.Span }

// InvalidError covers well-formed tokens the grammar cannot accept, e.g. an
// assignment to something that is not a name.
type InvalidError struct {
	Message string

	Unit *source.Unit
	Span source.Span
}

func (e *InvalidError) GetMessage() string    { return e.Message }
func (e *InvalidError) GetUnit() *source.Unit { return e.Unit }
func (e *InvalidError) GetSpan() source.Span  { return e.Span }
