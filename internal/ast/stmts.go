package ast

import "github.com/kievzenit/izc/internal/source"

type BlockStmt struct {
	Location source.Span

	Stmts []Stmt
}

type ReturnStmt struct {
	Location source.Span

	Expr Expr
}

type IfStmt struct {
	Location source.Span

	Cond Expr
	Then Stmt
	// Else is nil for an if without else.
	Else Stmt
}

type VarStmt struct {
	Location source.Span

	Vars []*VariableDecl
}

// ActStmt evaluates its expressions for their side effects only.
type ActStmt struct {
	Location source.Span

	Exprs []Expr
}

func (s *BlockStmt) AstNode()          {}
func (s *BlockStmt) StmtNode()         {}
func (s *BlockStmt) Span() source.Span { return s.Location }

func (s *ReturnStmt) AstNode()          {}
func (s *ReturnStmt) StmtNode()         {}
func (s *ReturnStmt) Span() source.Span { return s.Location }

func (s *IfStmt) AstNode()          {}
func (s *IfStmt) StmtNode()         {}
func (s *IfStmt) Span() source.Span { return s.Location }

func (s *VarStmt) AstNode()          {}
func (s *VarStmt) StmtNode()         {}
func (s *VarStmt) Span() source.Span { return s.Location }

func (s *ActStmt) AstNode()          {}
func (s *ActStmt) StmtNode()         {}
func (s *ActStmt) Span() source.Span { return s.Location }
