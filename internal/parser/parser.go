package parser

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/kievzenit/izc/internal/ast"
	"github.com/kievzenit/izc/internal/compiler_errors"
	"github.com/kievzenit/izc/internal/lexer"
	"github.com/kievzenit/izc/internal/source"
	"github.com/kievzenit/izc/internal/types"
)

type Parser struct {
	unit *source.Unit

	scanner lexer.TokenScanner
	eh      compiler_errors.ErrorHandler

	curr *lexer.Token
	prev *lexer.Token
}

// bailout unwinds the parser after the first syntax error.
type bailout struct {
	err compiler_errors.CompilerError
}

var bindingPowerLookup = map[lexer.TokenKind]int{
	lexer.LOR:      10,
	lexer.LAND:     15,
	lexer.EQ:       20,
	lexer.NEQ:      20,
	lexer.LT:       25,
	lexer.LEQ:      25,
	lexer.GT:       25,
	lexer.GEQ:      25,
	lexer.PLUS:     30,
	lexer.MINUS:    30,
	lexer.ASTERISK: 40,
	lexer.SLASH:    40,
	lexer.PERCENT:  40,
}

var binaryOpLookup = map[lexer.TokenKind]ast.BinaryOp{
	lexer.EQ:       ast.BinaryEq,
	lexer.NEQ:      ast.BinaryNe,
	lexer.LT:       ast.BinaryLt,
	lexer.LEQ:      ast.BinaryLe,
	lexer.GT:       ast.BinaryGt,
	lexer.GEQ:      ast.BinaryGe,
	lexer.PLUS:     ast.BinaryAdd,
	lexer.MINUS:    ast.BinarySub,
	lexer.ASTERISK: ast.BinaryMul,
	lexer.SLASH:    ast.BinaryDiv,
	lexer.PERCENT:  ast.BinaryRem,
}

func NewParser(unit *source.Unit, scanner lexer.TokenScanner, eh compiler_errors.ErrorHandler) *Parser {
	return &Parser{
		unit:    unit,
		scanner: scanner,
		eh:      eh,
		curr:    scanner.Read(),
	}
}

// ParseSource tokenizes and parses unit. Every lexical or syntax error is
// recorded in eh; a non-nil error means no tree was produced.
func ParseSource(unit *source.Unit, eh compiler_errors.ErrorHandler) (*ast.Unit, error) {
	before := eh.Count()
	tokens := lexer.NewLexer(unit, eh).Tokenize()
	if eh.Count() != before {
		return nil, fmt.Errorf("%w in %s", ErrSyntax, unit.Path)
	}

	return NewParser(unit, lexer.NewTokenScanner(tokens), eh).Parse()
}

func (p *Parser) Parse() (unit *ast.Unit, err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}

		unit = nil
		err = fmt.Errorf("%w: %s", ErrSyntax, b.err.GetMessage())
	}()

	decls := make([]ast.Decl, 0)
	for p.curr.Kind != lexer.EOF {
		decls = append(decls, p.parseFunctionDecl())
	}

	return &ast.Unit{
		Source: p.unit,
		Decls:  decls,
	}, nil
}

func (p *Parser) parseFunctionDecl() *ast.FunctionDecl {
	returnType := p.parseType()

	p.expect(lexer.IDENT)
	nameToken := p.curr
	p.read()

	p.expect(lexer.LPAREN)
	p.read()

	args := make([]*ast.ArgumentDecl, 0)
	for p.curr.Kind != lexer.RPAREN && p.curr.Kind != lexer.EOF {
		argType := p.parseType()

		p.expect(lexer.IDENT)
		args = append(args, &ast.ArgumentDecl{
			NameSpan: p.curr.Span,

			Name: p.curr.Value,
			Type: argType,
		})
		p.read()

		if p.curr.Kind != lexer.COMMA {
			break
		}
		p.read()
	}

	p.expect(lexer.RPAREN)
	p.read()

	body := p.parseStmt()

	return ast.NewFunctionDecl(nameToken.Value, nameToken.Span, returnType, args, body)
}

func (p *Parser) parseType() types.Type {
	p.expectAny(lexer.BOOL_TYPE, lexer.INT_TYPE)
	t, _ := types.Lookup(p.curr.Value)
	p.read()

	return t
}

func (p *Parser) parseStmt() ast.Stmt {
	switch p.curr.Kind {
	case lexer.LBRACE:
		return p.parseBlockStmt()
	case lexer.RETURN:
		return p.parseReturnStmt()
	case lexer.IF:
		return p.parseIfStmt()
	case lexer.BOOL_TYPE, lexer.INT_TYPE:
		return p.parseVarStmt()
	}

	return p.parseActStmt()
}

func (p *Parser) parseBlockStmt() *ast.BlockStmt {
	p.expect(lexer.LBRACE)
	startToken := p.curr
	p.read()

	stmts := make([]ast.Stmt, 0)
	for p.curr.Kind != lexer.RBRACE && p.curr.Kind != lexer.EOF {
		stmts = append(stmts, p.parseStmt())
	}

	p.expect(lexer.RBRACE)
	p.read()

	return &ast.BlockStmt{
		Location: p.spanFrom(startToken),

		Stmts: stmts,
	}
}

func (p *Parser) parseReturnStmt() *ast.ReturnStmt {
	p.expect(lexer.RETURN)
	startToken := p.curr
	p.read()

	expr := p.parseExpr()
	p.expect(lexer.SEMICOLON)
	p.read()

	return &ast.ReturnStmt{
		Location: p.spanFrom(startToken),

		Expr: expr,
	}
}

func (p *Parser) parseIfStmt() *ast.IfStmt {
	p.expect(lexer.IF)
	startToken := p.curr
	p.read()

	p.expect(lexer.LPAREN)
	p.read()
	cond := p.parseExpr()
	p.expect(lexer.RPAREN)
	p.read()

	then := p.parseStmt()

	if p.curr.Kind != lexer.ELSE {
		return &ast.IfStmt{
			Location: p.spanFrom(startToken),

			Cond: cond,
			Then: then,
		}
	}

	p.read()
	elseStmt := p.parseStmt()

	return &ast.IfStmt{
		Location: p.spanFrom(startToken),

		Cond: cond,
		Then: then,
		Else: elseStmt,
	}
}

func (p *Parser) parseVarStmt() *ast.VarStmt {
	startToken := p.curr
	varType := p.parseType()

	vars := make([]*ast.VariableDecl, 0)
	for {
		p.expect(lexer.IDENT)
		variable := &ast.VariableDecl{
			NameSpan: p.curr.Span,

			Name: p.curr.Value,
			Type: varType,
		}
		p.read()

		if p.curr.Kind == lexer.ASSIGN {
			p.read()
			variable.Initializer = p.parseExpr()
		}
		vars = append(vars, variable)

		if p.curr.Kind != lexer.COMMA {
			break
		}
		p.read()
	}

	p.expect(lexer.SEMICOLON)
	p.read()

	return &ast.VarStmt{
		Location: p.spanFrom(startToken),

		Vars: vars,
	}
}

func (p *Parser) parseActStmt() *ast.ActStmt {
	startToken := p.curr

	exprs := []ast.Expr{p.parseExpr()}
	for p.curr.Kind == lexer.COMMA {
		p.read()
		exprs = append(exprs, p.parseExpr())
	}

	p.expect(lexer.SEMICOLON)
	p.read()

	return &ast.ActStmt{
		Location: p.spanFrom(startToken),

		Exprs: exprs,
	}
}

func (p *Parser) parseExpr() ast.Expr {
	return p.parseAssignExpr()
}

// parseAssignExpr is right associative: a = b = 1 assigns b first.
func (p *Parser) parseAssignExpr() ast.Expr {
	left := p.parseBinaryExpr(0)
	if p.curr.Kind != lexer.ASSIGN {
		return left
	}

	if _, ok := left.(*ast.IdentifierExpr); !ok {
		p.fail(&InvalidError{
			Message: "left side of an assignment must be a name",

			Unit: p.unit,
			Span: left.Span(),
		})
	}
	p.read()

	right := p.parseAssignExpr()

	return &ast.AssignmentExpr{
		Lvalue: left,
		Rvalue: right,
	}
}

func (p *Parser) parseBinaryExpr(minBindingPower int) ast.Expr {
	left := p.parseCallExpr()

	for {
		op := p.curr
		bindingPower, ok := bindingPowerLookup[op.Kind]
		if !ok || bindingPower < minBindingPower {
			return left
		}
		p.read()

		right := p.parseBinaryExpr(bindingPower + 1)

		switch op.Kind {
		case lexer.LAND:
			left = &ast.ConditionalExpr{Op: ast.ConditionalAnd, Left: left, Right: right}
		case lexer.LOR:
			left = &ast.ConditionalExpr{Op: ast.ConditionalOr, Left: left, Right: right}
		default:
			left = &ast.BinaryExpr{Op: binaryOpLookup[op.Kind], Left: left, Right: right}
		}
	}
}

func (p *Parser) parseCallExpr() ast.Expr {
	expr := p.parsePrimaryExpr()

	for p.curr.Kind == lexer.LPAREN {
		p.read()

		args := make([]ast.Expr, 0)
		for p.curr.Kind != lexer.RPAREN && p.curr.Kind != lexer.EOF {
			args = append(args, p.parseExpr())
			if p.curr.Kind != lexer.COMMA {
				break
			}
			p.read()
		}

		p.expect(lexer.RPAREN)
		p.read()

		expr = &ast.CallExpr{
			Location: source.Span{
				Offset: expr.Span().Offset,
				Length: p.prev.Span.End() - expr.Span().Offset,
			},

			Callee: expr,
			Args:   args,
		}
	}

	return expr
}

func (p *Parser) parsePrimaryExpr() ast.Expr {
	switch p.curr.Kind {
	case lexer.LPAREN:
		p.read()
		expr := p.parseExpr()
		p.expect(lexer.RPAREN)
		p.read()
		return expr
	case lexer.IDENT:
		return p.parseIdentExpr()
	case lexer.INT:
		return p.parseIntegerExpr()
	case lexer.BOOL:
		return p.parseBoolExpr()
	}

	p.unexpected(p.curr)
	panic("unreachable")
}

func (p *Parser) parseIdentExpr() *ast.IdentifierExpr {
	p.expect(lexer.IDENT)
	ident := p.curr
	p.read()

	return &ast.IdentifierExpr{
		NameSpan: ident.Span,

		Name: ident.Value,
	}
}

func (p *Parser) parseIntegerExpr() *ast.ConstantExpr {
	p.expect(lexer.INT)
	token := p.curr

	value, err := strconv.ParseUint(token.Value, 10, 64)
	if err != nil {
		p.fail(&InvalidError{
			Message: fmt.Sprintf("integer constant %s is out of range", token.Value),

			Unit: p.unit,
			Span: token.Span,
		})
	}
	p.read()

	return &ast.ConstantExpr{
		Location: token.Span,

		Kind: ast.ConstantU64,
		U64:  value,
	}
}

func (p *Parser) parseBoolExpr() *ast.ConstantExpr {
	p.expect(lexer.BOOL)
	token := p.curr
	p.read()

	return &ast.ConstantExpr{
		Location: token.Span,

		Kind: ast.ConstantBool,
		Bool: token.Value == "true",
	}
}

func (p *Parser) read() *lexer.Token {
	p.prev = p.curr
	p.curr = p.scanner.Read()
	return p.curr
}

// spanFrom covers startToken through the last consumed token.
func (p *Parser) spanFrom(startToken *lexer.Token) source.Span {
	return source.Span{
		Offset: startToken.Span.Offset,
		Length: p.prev.Span.End() - startToken.Span.Offset,
	}
}

func (p *Parser) fail(err compiler_errors.CompilerError) {
	p.eh.AddError(err)
	panic(bailout{err: err})
}

func (p *Parser) expect(kind lexer.TokenKind) {
	if p.curr.Kind != kind {
		p.fail(&UnexpectedExpectedError{
			Unexpected: p.curr.Kind,
			Expected:   kind,

			Unit: p.unit,
			Span: p.curr.Span,
		})
	}
}

func (p *Parser) expectAny(kinds ...lexer.TokenKind) {
	if p.isCurrAny(kinds...) {
		return
	}

	p.unexpected(p.curr)
}

func (p *Parser) isCurrAny(kinds ...lexer.TokenKind) bool {
	return slices.Contains(kinds, p.curr.Kind)
}

func (p *Parser) unexpected(token *lexer.Token) {
	p.fail(&UnexpectedError{
		Unexpected: token.Kind,

		Unit: p.unit,
		Span: token.Span,
	})
}
