package ast

import (
	"github.com/kievzenit/izc/internal/source"
	"github.com/kievzenit/izc/internal/types"
)

type AstNode interface {
	AstNode()
	Span() source.Span
}

// Unit is the tree of one source file.
type Unit struct {
	Source *source.Unit
	Decls  []Decl
}

type Decl interface {
	AstNode
	DeclNode()
	DeclName() string
	DeclType() types.Type
}

type Stmt interface {
	AstNode
	StmtNode()
}

type Expr interface {
	AstNode
	ExprNode()
	ExprType() types.Type
}

func join(first, last source.Span) source.Span {
	return source.Span{
		Offset: first.Offset,
		Length: last.End() - first.Offset,
	}
}

// Functions returns the function declarations of u in source order.
func (u *Unit) Functions() []*FunctionDecl {
	functions := make([]*FunctionDecl, 0, len(u.Decls))
	for _, decl := range u.Decls {
		if function, ok := decl.(*FunctionDecl); ok {
			functions = append(functions, function)
		}
	}

	return functions
}
