package lexer

type TokenScanner interface {
	Read() *Token
}

type SimpleTokenScanner struct {
	tokens []Token

	pos int
}

// NewTokenScanner expects tokens to end with an EOF token; reading past it keeps
// returning EOF.
func NewTokenScanner(tokens []Token) TokenScanner {
	return &SimpleTokenScanner{
		tokens: tokens,
	}
}

func (s *SimpleTokenScanner) Read() *Token {
	token := &s.tokens[s.pos]
	if s.pos < len(s.tokens)-1 {
		s.pos++
	}

	return token
}
