package ast

import (
	"github.com/kievzenit/izc/internal/source"
	"github.com/kievzenit/izc/internal/types"
)

type ConstantKind int

const (
	ConstantBool ConstantKind = iota
	ConstantU64
)

type ConstantExpr struct {
	Location source.Span

	Kind ConstantKind
	Bool bool
	U64  uint64
}

type IdentifierExpr struct {
	NameSpan source.Span

	Name string
	// Decl is set once by the semantic analyzer.
	Decl Decl
}

type BinaryOp int

const (
	BinaryEq BinaryOp = iota
	BinaryNe
	BinaryLt
	BinaryLe
	BinaryGt
	BinaryGe
	BinaryAdd
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryRem
)

func (op BinaryOp) IsComparison() bool {
	return op <= BinaryGe
}

func (op BinaryOp) String() string {
	switch op {
	case BinaryEq:
		return "=="
	case BinaryNe:
		return "!="
	case BinaryLt:
		return "<"
	case BinaryLe:
		return "<="
	case BinaryGt:
		return ">"
	case BinaryGe:
		return ">="
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryRem:
		return "%"
	}

	panic("unreachable")
}

type BinaryExpr struct {
	Op    BinaryOp
	Left  Expr
	Right Expr
}

type CallExpr struct {
	Location source.Span

	Callee Expr
	Args   []Expr
}

type AssignmentExpr struct {
	Lvalue Expr
	Rvalue Expr
}

type ImplicitCastKind int

const (
	LvalueToRvalue ImplicitCastKind = iota
)

type ImplicitCastExpr struct {
	Kind ImplicitCastKind
	Expr Expr
}

type ConditionalOp int

const (
	ConditionalAnd ConditionalOp = iota
	ConditionalOr
)

func (op ConditionalOp) String() string {
	if op == ConditionalAnd {
		return "&&"
	}
	return "||"
}

type ConditionalExpr struct {
	Op    ConditionalOp
	Left  Expr
	Right Expr
}

func (e *ConstantExpr) AstNode()          {}
func (e *ConstantExpr) ExprNode()         {}
func (e *ConstantExpr) Span() source.Span { return e.Location }
func (e *ConstantExpr) ExprType() types.Type {
	if e.Kind == ConstantBool {
		return types.Bool
	}
	return types.Int
}

func (e *IdentifierExpr) AstNode()          {}
func (e *IdentifierExpr) ExprNode()         {}
func (e *IdentifierExpr) Span() source.Span { return e.NameSpan }
func (e *IdentifierExpr) ExprType() types.Type {
	if e.Decl == nil {
		return nil
	}
	return e.Decl.DeclType()
}

func (e *BinaryExpr) AstNode()          {}
func (e *BinaryExpr) ExprNode()         {}
func (e *BinaryExpr) Span() source.Span { return join(e.Left.Span(), e.Right.Span()) }
func (e *BinaryExpr) ExprType() types.Type {
	if e.Op.IsComparison() {
		return types.Bool
	}
	return e.Left.ExprType()
}

func (e *CallExpr) AstNode()          {}
func (e *CallExpr) ExprNode()         {}
func (e *CallExpr) Span() source.Span { return e.Location }
func (e *CallExpr) ExprType() types.Type {
	callable, ok := e.Callee.ExprType().(*types.CallableType)
	if !ok {
		return nil
	}
	return callable.Return
}

func (e *AssignmentExpr) AstNode()             {}
func (e *AssignmentExpr) ExprNode()            {}
func (e *AssignmentExpr) Span() source.Span    { return join(e.Lvalue.Span(), e.Rvalue.Span()) }
func (e *AssignmentExpr) ExprType() types.Type { return e.Lvalue.ExprType() }

func (e *ImplicitCastExpr) AstNode()             {}
func (e *ImplicitCastExpr) ExprNode()            {}
func (e *ImplicitCastExpr) Span() source.Span    { return e.Expr.Span() }
func (e *ImplicitCastExpr) ExprType() types.Type { return e.Expr.ExprType() }

func (e *ConditionalExpr) AstNode()             {}
func (e *ConditionalExpr) ExprNode()            {}
func (e *ConditionalExpr) Span() source.Span    { return join(e.Left.Span(), e.Right.Span()) }
func (e *ConditionalExpr) ExprType() types.Type { return types.Bool }
