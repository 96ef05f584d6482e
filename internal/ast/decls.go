package ast

import (
	"github.com/kievzenit/izc/internal/source"
	"github.com/kievzenit/izc/internal/types"
)

type FunctionDecl struct {
	NameSpan source.Span

	Name       string
	ReturnType types.Type
	Args       []*ArgumentDecl
	Body       Stmt

	// Type is synthesized from ReturnType and the argument types.
	Type *types.CallableType
}

func NewFunctionDecl(
	name string,
	nameSpan source.Span,
	returnType types.Type,
	args []*ArgumentDecl,
	body Stmt,
) *FunctionDecl {
	params := make([]types.Type, len(args))
	for i, arg := range args {
		params[i] = arg.Type
	}

	return &FunctionDecl{
		NameSpan: nameSpan,

		Name:       name,
		ReturnType: returnType,
		Args:       args,
		Body:       body,

		Type: types.NewCallable(returnType, params...),
	}
}

type ArgumentDecl struct {
	NameSpan source.Span

	Name string
	Type types.Type
}

type VariableDecl struct {
	NameSpan source.Span

	Name        string
	Type        types.Type
	Initializer Expr
}

func (f *FunctionDecl) AstNode()             {}
func (f *FunctionDecl) DeclNode()            {}
func (f *FunctionDecl) Span() source.Span    { return f.NameSpan }
func (f *FunctionDecl) DeclName() string     { return f.Name }
func (f *FunctionDecl) DeclType() types.Type { return f.Type }
func (a *ArgumentDecl) AstNode()             {}
func (a *ArgumentDecl) DeclNode()            {}
func (a *ArgumentDecl) Span() source.Span    { return a.NameSpan }
func (a *ArgumentDecl) DeclName() string     { return a.Name }
func (a *ArgumentDecl) DeclType() types.Type { return a.Type }
func (v *VariableDecl) AstNode()             {}
func (v *VariableDecl) DeclNode()            {}
func (v *VariableDecl) Span() source.Span    { return v.NameSpan }
func (v *VariableDecl) DeclName() string     { return v.Name }
func (v *VariableDecl) DeclType() types.Type { return v.Type }
