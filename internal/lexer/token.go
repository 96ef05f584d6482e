package lexer

import (
	"fmt"

	"github.com/kievzenit/izc/internal/source"
)

type TokenKind int

const (
	EOF TokenKind = iota

	INT
	BOOL

	IDENT

	PLUS     // +
	MINUS    // -
	ASTERISK // *
	SLASH    // /
	PERCENT  // %

	ASSIGN // =

	LAND // &&
	LOR  // ||

	EQ  // ==
	NEQ // !=
	LT  // <
	LEQ // <=
	GT  // >
	GEQ // >=

	LPAREN // (
	LBRACE // {
	RPAREN // )
	RBRACE // }

	SEMICOLON // ;
	COMMA     // ,

	BOOL_TYPE
	INT_TYPE
	IF
	ELSE
	RETURN
)

var tokenKindNames = map[TokenKind]string{
	EOF:       "EOF",
	INT:       "INT",
	BOOL:      "BOOL",
	IDENT:     "IDENT",
	PLUS:      "PLUS",
	MINUS:     "MINUS",
	ASTERISK:  "ASTERISK",
	SLASH:     "SLASH",
	PERCENT:   "PERCENT",
	ASSIGN:    "ASSIGN",
	LAND:      "LAND",
	LOR:       "LOR",
	EQ:        "EQ",
	NEQ:       "NEQ",
	LT:        "LT",
	LEQ:       "LEQ",
	GT:        "GT",
	GEQ:       "GEQ",
	LPAREN:    "LPAREN",
	LBRACE:    "LBRACE",
	RPAREN:    "RPAREN",
	RBRACE:    "RBRACE",
	SEMICOLON: "SEMICOLON",
	COMMA:     "COMMA",
	BOOL_TYPE: "BOOL_TYPE",
	INT_TYPE:  "INT_TYPE",
	IF:        "IF",
	ELSE:      "ELSE",
	RETURN:    "RETURN",
}

func (tk TokenKind) String() string {
	if name, ok := tokenKindNames[tk]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(tk))
}

var keywords = map[string]TokenKind{
	"bool":   BOOL_TYPE,
	"int":    INT_TYPE,
	"if":     IF,
	"else":   ELSE,
	"return": RETURN,
	"true":   BOOL,
	"false":  BOOL,
}

type Token struct {
	Kind  TokenKind
	Value string
	Span  source.Span
}

func (t *Token) hasActualValue() bool {
	switch t.Kind {
	case INT, BOOL, IDENT:
		return true
	}

	return false
}

func (t *Token) String() string {
	if !t.hasActualValue() {
		return fmt.Sprintf("%s()", t.Kind)
	}

	return fmt.Sprintf("%s(%s)", t.Kind, t.Value)
}
