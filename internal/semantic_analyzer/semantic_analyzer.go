package semantic_analyzer

import (
	"github.com/kievzenit/izc/internal/ast"
	"github.com/kievzenit/izc/internal/compiler_errors"
	"github.com/kievzenit/izc/internal/scope"
	"github.com/kievzenit/izc/internal/source"
	"github.com/kievzenit/izc/internal/types"
)

// SemanticAnalyzer resolves names, checks types and inserts implicit casts in
// place. It keeps going after an error so a single run reports as much as it can.
type SemanticAnalyzer struct {
	eh    compiler_errors.ErrorHandler
	units []*ast.Unit

	scope *scope.Scope

	unit     *ast.Unit
	function *ast.FunctionDecl

	errors int
}

func NewSemanticAnalyzer(eh compiler_errors.ErrorHandler, units []*ast.Unit) *SemanticAnalyzer {
	return &SemanticAnalyzer{
		eh:    eh,
		units: units,

		scope: scope.New(nil),
	}
}

// Analyze runs both passes and returns the number of errors found.
func (sa *SemanticAnalyzer) Analyze() int {
	for _, unit := range sa.units {
		sa.unit = unit
		sa.declareUnit(unit)
	}

	for _, unit := range sa.units {
		sa.unit = unit
		sa.analyzeUnit(unit)
	}
	sa.unit = nil

	return sa.errors
}

// Global is the scope holding every top-level declaration.
func (sa *SemanticAnalyzer) Global() *scope.Scope {
	return sa.scope
}

func (sa *SemanticAnalyzer) enterScope() {
	sa.scope = scope.New(sa.scope)
}

func (sa *SemanticAnalyzer) exitScope() {
	sa.scope = sa.scope.Parent()
}

func (sa *SemanticAnalyzer) addError(kind compiler_errors.ErrorKind, span source.Span) {
	sa.eh.AddError(&compiler_errors.Diagnostic{
		Unit: sa.unit.Source,
		Span: span,
		Kind: kind,
	})
	sa.errors++
}

func (sa *SemanticAnalyzer) declare(decl ast.Decl) {
	if !sa.scope.Add(decl) {
		sa.addError(compiler_errors.Redefinition, decl.Span())
	}
}

func (sa *SemanticAnalyzer) declareUnit(unit *ast.Unit) {
	for _, decl := range unit.Decls {
		sa.declare(decl)
	}
}

func (sa *SemanticAnalyzer) analyzeUnit(unit *ast.Unit) {
	for _, function := range unit.Functions() {
		sa.function = function
		sa.analyzeFunctionDecl(function)
		sa.function = nil
	}
}

func (sa *SemanticAnalyzer) analyzeFunctionDecl(function *ast.FunctionDecl) {
	sa.enterScope()
	defer sa.exitScope()

	// Makes the function callable by name from its own body.
	sa.scope.Add(function)

	for _, arg := range function.Args {
		sa.declare(arg)
	}

	// The body block shares the scope of the arguments.
	if block, ok := function.Body.(*ast.BlockStmt); ok {
		sa.analyzeStmts(block.Stmts)
	} else {
		sa.analyzeStmt(function.Body)
	}

	if !AllPathsReturn(function.Body) {
		sa.addError(compiler_errors.MissingReturn, function.NameSpan)
	}
}

func (sa *SemanticAnalyzer) analyzeStmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		sa.analyzeStmt(stmt)
	}
}

func (sa *SemanticAnalyzer) analyzeStmt(stmt ast.Stmt) {
	switch stmt := stmt.(type) {
	case *ast.BlockStmt:
		sa.analyzeBlockStmt(stmt)
	case *ast.ReturnStmt:
		sa.analyzeReturnStmt(stmt)
	case *ast.IfStmt:
		sa.analyzeIfStmt(stmt)
	case *ast.VarStmt:
		sa.analyzeVarStmt(stmt)
	case *ast.ActStmt:
		sa.analyzeActStmt(stmt)
	default:
		panic("unreachable")
	}
}

func (sa *SemanticAnalyzer) analyzeBlockStmt(block *ast.BlockStmt) {
	sa.enterScope()
	defer sa.exitScope()

	sa.analyzeStmts(block.Stmts)
}

func (sa *SemanticAnalyzer) analyzeReturnStmt(ret *ast.ReturnStmt) {
	sa.analyzeExpr(ret.Expr)

	expected := sa.function.ReturnType
	actual := ret.Expr.ExprType()
	if actual == nil {
		// Whatever broke the expression is already reported.
		return
	}
	if !types.Equal(expected, actual) {
		sa.addError(compiler_errors.ReturnTypeMismatch, sa.function.NameSpan)
		return
	}

	ret.Expr = sa.implicitCast(ret.Expr, expected)
}

func (sa *SemanticAnalyzer) analyzeIfStmt(ifStmt *ast.IfStmt) {
	sa.analyzeExpr(ifStmt.Cond)
	ifStmt.Cond = sa.implicitCast(ifStmt.Cond, types.Bool)

	sa.analyzeStmt(ifStmt.Then)
	if ifStmt.Else != nil {
		sa.analyzeStmt(ifStmt.Else)
	}
}

func (sa *SemanticAnalyzer) analyzeVarStmt(varStmt *ast.VarStmt) {
	for _, variable := range varStmt.Vars {
		sa.declare(variable)

		if variable.Initializer != nil {
			sa.analyzeExpr(variable.Initializer)
			variable.Initializer = sa.implicitCast(variable.Initializer, variable.Type)
		}
	}
}

func (sa *SemanticAnalyzer) analyzeActStmt(act *ast.ActStmt) {
	for _, expr := range act.Exprs {
		sa.analyzeExpr(expr)
	}
}

func (sa *SemanticAnalyzer) analyzeExpr(expr ast.Expr) {
	switch expr := expr.(type) {
	case *ast.ConstantExpr:
	case *ast.IdentifierExpr:
		sa.resolveIdentifier(expr)
	case *ast.BinaryExpr:
		sa.analyzeBinaryExpr(expr)
	case *ast.CallExpr:
		sa.analyzeCallExpr(expr)
	case *ast.AssignmentExpr:
		sa.analyzeAssignmentExpr(expr)
	case *ast.ConditionalExpr:
		sa.analyzeConditionalExpr(expr)
	case *ast.ImplicitCastExpr:
	default:
		panic("unreachable")
	}
}

func (sa *SemanticAnalyzer) resolveIdentifier(ident *ast.IdentifierExpr) {
	decl, ok := sa.scope.Find(ident.Name)
	if !ok {
		sa.addError(compiler_errors.UndeclaredIdentifier, ident.NameSpan)
		return
	}

	ident.Decl = decl
}

// Arithmetic operands must be int. Comparison operands must agree with the
// left operand.
func (sa *SemanticAnalyzer) analyzeBinaryExpr(binary *ast.BinaryExpr) {
	sa.analyzeExpr(binary.Left)
	sa.analyzeExpr(binary.Right)

	expected := types.Type(types.Int)
	if binary.Op.IsComparison() {
		expected = binary.Left.ExprType()
	}

	binary.Left = sa.implicitCast(binary.Left, expected)
	binary.Right = sa.implicitCast(binary.Right, expected)
}

func (sa *SemanticAnalyzer) analyzeCallExpr(call *ast.CallExpr) {
	sa.analyzeExpr(call.Callee)

	calleeType := call.Callee.ExprType()
	callable, isCallable := calleeType.(*types.CallableType)
	if calleeType != nil && !isCallable {
		sa.addError(compiler_errors.IncompatibleType, call.Callee.Span())
	}
	if isCallable && len(call.Args) != len(callable.Params) {
		sa.addError(compiler_errors.IncompatibleType, call.Location)
	}

	for i, arg := range call.Args {
		sa.analyzeExpr(arg)

		expected := arg.ExprType()
		if isCallable && i < len(callable.Params) {
			expected = callable.Params[i]
		}
		call.Args[i] = sa.implicitCast(arg, expected)
	}
}

func (sa *SemanticAnalyzer) analyzeAssignmentExpr(assignment *ast.AssignmentExpr) {
	sa.analyzeExpr(assignment.Lvalue)

	var expected types.Type
	ident, ok := assignment.Lvalue.(*ast.IdentifierExpr)
	switch {
	case !ok:
		// Only names have slots to store into.
		sa.addError(compiler_errors.IncompatibleType, assignment.Lvalue.Span())
	case isFunction(ident.Decl):
		sa.addError(compiler_errors.IncompatibleType, ident.NameSpan)
	default:
		expected = ident.ExprType()
	}

	sa.analyzeExpr(assignment.Rvalue)
	if expected == nil {
		expected = assignment.Rvalue.ExprType()
	}
	assignment.Rvalue = sa.implicitCast(assignment.Rvalue, expected)
}

func (sa *SemanticAnalyzer) analyzeConditionalExpr(conditional *ast.ConditionalExpr) {
	sa.analyzeExpr(conditional.Left)
	conditional.Left = sa.implicitCast(conditional.Left, types.Bool)

	sa.analyzeExpr(conditional.Right)
	conditional.Right = sa.implicitCast(conditional.Right, types.Bool)
}

// implicitCast checks expr where its value is needed and turns a resolved name
// into a load of that name. A nil expected type means the context is already
// broken and nothing more is reported.
func (sa *SemanticAnalyzer) implicitCast(expr ast.Expr, expected types.Type) ast.Expr {
	ident, ok := expr.(*ast.IdentifierExpr)
	if !ok {
		actual := expr.ExprType()
		if expected != nil && actual != nil && !types.Equal(expected, actual) {
			sa.addError(compiler_errors.IncompatibleType, expr.Span())
		}
		return expr
	}

	if ident.Decl == nil {
		return expr
	}

	// There are no function values, only calls.
	if isFunction(ident.Decl) || (expected != nil && !types.Equal(expected, ident.Decl.DeclType())) {
		sa.addError(compiler_errors.IncompatibleType, ident.NameSpan)
		return expr
	}

	return &ast.ImplicitCastExpr{
		Kind: ast.LvalueToRvalue,
		Expr: expr,
	}
}

func isFunction(decl ast.Decl) bool {
	_, ok := decl.(*ast.FunctionDecl)
	return ok
}
