package semantic_analyzer

import "github.com/kievzenit/izc/internal/ast"

// AllPathsReturn reports whether stmt returns on every path. A block counts as
// returning when any of its statements does, wherever it sits in the block.
func AllPathsReturn(stmt ast.Stmt) bool {
	switch stmt := stmt.(type) {
	case *ast.ReturnStmt:
		return true
	case *ast.BlockStmt:
		for _, child := range stmt.Stmts {
			if AllPathsReturn(child) {
				return true
			}
		}
		return false
	case *ast.IfStmt:
		return stmt.Else != nil && AllPathsReturn(stmt.Then) && AllPathsReturn(stmt.Else)
	case *ast.VarStmt, *ast.ActStmt:
		return false
	}

	panic("unreachable")
}
