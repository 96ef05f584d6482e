package lexer

import (
	"fmt"

	"github.com/kievzenit/izc/internal/compiler_errors"
	"github.com/kievzenit/izc/internal/source"
)

type LexerError struct {
	Message string

	Unit *source.Unit
	Span source.Span
}

func newUnexpectedError(unexpected byte, unit *source.Unit, offset int) *LexerError {
	return &LexerError{
		Message: fmt.Sprintf("unexpected character: '%s'", string(unexpected)),

		Unit: unit,
		Span: source.Span{Offset: offset, Length: 1},
	}
}

func (e *LexerError) GetMessage() string    { return e.Message }
func (e *LexerError) GetUnit() *source.Unit { return e.Unit }
func (e *LexerError) GetSpan() source.Span  { return e.Span }

type Lexer struct {
	unit *source.Unit
	buf  []byte
	pos  int

	eh compiler_errors.ErrorHandler
}

func NewLexer(unit *source.Unit, eh compiler_errors.ErrorHandler) *Lexer {
	return &Lexer{
		unit: unit,
		buf:  unit.Data,
		pos:  0,

		eh: eh,
	}
}

// Tokenize scans the whole unit. Unknown characters are reported and skipped.
func (l *Lexer) Tokenize() []Token {
	tokens := make([]Token, 0)

	for l.hasChars() {
		start := l.pos

		switch {
		case l.isCurrSkippable():

		case l.isCurrComment():
			l.skipOneLineComment()

		case l.isCurrDigit():
			tokens = append(tokens, l.finish(l.processNumber(), start))

		case l.isCurrIdentifier():
			tokens = append(tokens, l.finish(l.processIdentifier(), start))

		case l.isCurrPunctuation():
			token, ok := l.processPunctuation()
			if !ok {
				l.eh.AddError(newUnexpectedError(l.read(), l.unit, start))
				break
			}
			tokens = append(tokens, l.finish(token, start))

		default:
			l.eh.AddError(newUnexpectedError(l.read(), l.unit, start))
		}

		l.advance()
	}

	tokens = append(tokens, Token{
		Kind:  EOF,
		Value: EOF.String(),
		Span:  source.Span{Offset: len(l.buf)},
	})

	return tokens
}

// finish stamps the span of a token whose last byte is at the current position.
func (l *Lexer) finish(token Token, start int) Token {
	token.Span = source.Span{
		Offset: start,
		Length: l.pos - start + 1,
	}
	return token
}

func (l *Lexer) isCurrIdentifier() bool {
	return (l.read() >= 'a' && l.read() <= 'z') || (l.read() >= 'A' && l.read() <= 'Z') || l.read() == '_'
}

func (l *Lexer) isCurrDigit() bool {
	return l.read() >= '0' && l.read() <= '9'
}

func (l *Lexer) isCurrPunctuation() bool {
	switch l.read() {
	case '+', '-', '*', '/', '%', '=', '!', '<', '>', '&', '|', '(', ')', '{', '}', ';', ',':
		return true
	}
	return false
}

func (l *Lexer) isCurrSkippable() bool {
	switch l.read() {
	case ' ', '\t', '\n', '\r':
		return true
	}

	return false
}

func (l *Lexer) isCurrComment() bool {
	return l.read() == '/' && l.hasNext() && l.next() == '/'
}

func (l *Lexer) skipOneLineComment() {
	for l.hasNext() && l.next() != '\n' {
		l.advance()
	}
}

func (l *Lexer) processIdentifier() Token {
	start := l.pos
	for l.hasNext() && isIdentifierByte(l.next()) {
		l.advance()
	}
	identifier := string(l.buf[start : l.pos+1])

	if kind, ok := keywords[identifier]; ok {
		return Token{
			Kind:  kind,
			Value: identifier,
		}
	}

	return Token{
		Kind:  IDENT,
		Value: identifier,
	}
}

func isIdentifierByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9') || b == '_'
}

func (l *Lexer) processNumber() Token {
	start := l.pos
	for l.hasNext() && l.next() >= '0' && l.next() <= '9' {
		l.advance()
	}

	return Token{
		Kind:  INT,
		Value: string(l.buf[start : l.pos+1]),
	}
}

// processPunctuation reports false for a lone '!', '&' or '|', which the
// language does not have.
func (l *Lexer) processPunctuation() (Token, bool) {
	switch l.read() {
	case '+':
		return Token{Kind: PLUS, Value: "+"}, true
	case '-':
		return Token{Kind: MINUS, Value: "-"}, true
	case '*':
		return Token{Kind: ASTERISK, Value: "*"}, true
	case '/':
		return Token{Kind: SLASH, Value: "/"}, true
	case '%':
		return Token{Kind: PERCENT, Value: "%"}, true
	case '=':
		if l.matchNext('=') {
			return Token{Kind: EQ, Value: "=="}, true
		}
		return Token{Kind: ASSIGN, Value: "="}, true
	case '!':
		if l.matchNext('=') {
			return Token{Kind: NEQ, Value: "!="}, true
		}
		return Token{}, false
	case '<':
		if l.matchNext('=') {
			return Token{Kind: LEQ, Value: "<="}, true
		}
		return Token{Kind: LT, Value: "<"}, true
	case '>':
		if l.matchNext('=') {
			return Token{Kind: GEQ, Value: ">="}, true
		}
		return Token{Kind: GT, Value: ">"}, true
	case '&':
		if l.matchNext('&') {
			return Token{Kind: LAND, Value: "&&"}, true
		}
		return Token{}, false
	case '|':
		if l.matchNext('|') {
			return Token{Kind: LOR, Value: "||"}, true
		}
		return Token{}, false
	case '(':
		return Token{Kind: LPAREN, Value: "("}, true
	case ')':
		return Token{Kind: RPAREN, Value: ")"}, true
	case '{':
		return Token{Kind: LBRACE, Value: "{"}, true
	case '}':
		return Token{Kind: RBRACE, Value: "}"}, true
	case ';':
		return Token{Kind: SEMICOLON, Value: ";"}, true
	case ',':
		return Token{Kind: COMMA, Value: ","}, true
	}

	panic("unreachable")
}

// matchNext consumes the next byte when it equals b.
func (l *Lexer) matchNext(b byte) bool {
	if l.hasNext() && l.next() == b {
		l.advance()
		return true
	}
	return false
}

func (l *Lexer) hasChars() bool {
	return l.pos < len(l.buf)
}

func (l *Lexer) hasNext() bool {
	return l.pos+1 < len(l.buf)
}

func (l *Lexer) advance()   { l.pos++ }
func (l *Lexer) next() byte { return l.buf[l.pos+1] }
func (l *Lexer) read() byte { return l.buf[l.pos] }
