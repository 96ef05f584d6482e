package semantic_analyzer

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kievzenit/izc/internal/ast"
	"github.com/kievzenit/izc/internal/compiler_errors"
	"github.com/kievzenit/izc/internal/parser"
	"github.com/kievzenit/izc/internal/source"
	"github.com/kievzenit/izc/internal/types"
)

type analysis struct {
	units    []*ast.Unit
	eh       compiler_errors.ErrorHandler
	analyzer *SemanticAnalyzer
	errors   int
}

func analyze(t *testing.T, codes ...string) *analysis {
	t.Helper()

	eh := compiler_errors.NewErrorHandler()
	units := make([]*ast.Unit, 0, len(codes))
	for i, code := range codes {
		unit, err := parser.ParseSource(source.Inline(code, fmt.Sprintf("unit%d.iz", i)), eh)
		if err != nil {
			t.Fatalf("ParseSource(unit %d) error = %v", i, err)
		}
		units = append(units, unit)
	}

	analyzer := NewSemanticAnalyzer(eh, units)
	errors := analyzer.Analyze()

	return &analysis{
		units:    units,
		eh:       eh,
		analyzer: analyzer,
		errors:   errors,
	}
}

func expectNoErrors(t *testing.T, a *analysis) {
	t.Helper()

	if a.errors != 0 {
		t.Fatalf("Analyze() = %d errors, want 0: %v", a.errors, compiler_errors.Kinds(a.eh))
	}
}

func expectKinds(t *testing.T, a *analysis, want ...compiler_errors.ErrorKind) {
	t.Helper()

	if a.errors != len(want) {
		t.Errorf("Analyze() = %d errors, want %d", a.errors, len(want))
	}
	if diff := cmp.Diff(want, compiler_errors.Kinds(a.eh)); diff != "" {
		t.Errorf("error kinds mismatch (-want +got):\n%s", diff)
	}
}

func body(a *analysis, unit, function int) []ast.Stmt {
	fn := a.units[unit].Functions()[function]
	if block, ok := fn.Body.(*ast.BlockStmt); ok {
		return block.Stmts
	}
	return []ast.Stmt{fn.Body}
}

func TestOriginalFailureCorpus(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []compiler_errors.ErrorKind
	}{
		{
			name: "duplicate function",
			code: "int num(int n)\n    return n;\nint num(int n)\n    return n;\n",
			want: []compiler_errors.ErrorKind{compiler_errors.Redefinition},
		},
		{
			name: "undeclared identifier",
			code: "int num(int n)\n    return not_exist;\n",
			want: []compiler_errors.ErrorKind{compiler_errors.UndeclaredIdentifier},
		},
		{
			name: "duplicate argument",
			code: "int num(int n, int n)\n    return n;\n",
			want: []compiler_errors.ErrorKind{compiler_errors.Redefinition},
		},
		{
			name: "argument named like its function",
			code: "int num(int num)\n    return num;\n",
			want: []compiler_errors.ErrorKind{compiler_errors.Redefinition, compiler_errors.ReturnTypeMismatch},
		},
		{
			name: "bool function returning int",
			code: "bool one()\n    return 1;\n",
			want: []compiler_errors.ErrorKind{compiler_errors.ReturnTypeMismatch},
		},
		{
			name: "calling a non callable",
			code: "int num(int n)\n    return n();\n",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "missing return",
			code: "int int_lt(int lhs, int rhs)\n{\n    if (lhs < rhs)\n    {\n    }\n    else\n    {\n    }\n}\n",
			want: []compiler_errors.ErrorKind{compiler_errors.MissingReturn},
		},
		{
			name: "duplicate local",
			code: "int num(int n)\n{\n    int a;\n    int a;\n    return n;\n}\n",
			want: []compiler_errors.ErrorKind{compiler_errors.Redefinition},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectKinds(t, analyze(t, tt.code), tt.want...)
		})
	}
}

func TestRedefinitionKeepsFirstDeclaration(t *testing.T) {
	a := analyze(t, "int f() return 1;\nbool f() return true;\n")
	expectKinds(t, a, compiler_errors.Redefinition)

	first := a.units[0].Functions()[0]
	got, ok := a.analyzer.Global().Find("f")
	if !ok || got != first {
		t.Errorf("Find(f) = %v, want the first declaration", got)
	}

	d := compiler_errors.Diagnostics(a.eh)[0]
	if pos := d.Unit.Position(d.Span.Offset); pos.Line != 2 {
		t.Errorf("redefinition reported on line %d, want 2", pos.Line)
	}
}

func TestForwardReference(t *testing.T) {
	a := analyze(t, "int a(int x) return b(x);\nint b(int y) return y;\n")
	expectNoErrors(t, a)

	ret := body(a, 0, 0)[0].(*ast.ReturnStmt)
	call := ret.Expr.(*ast.CallExpr)
	callee := call.Callee.(*ast.IdentifierExpr)
	if callee.Decl != a.units[0].Functions()[1] {
		t.Errorf("callee resolved to %v, want function b", callee.Decl)
	}
}

func TestForwardReferenceAcrossUnits(t *testing.T) {
	a := analyze(t,
		"int main() return twice(21);\n",
		"int twice(int n) return n + n;\n",
	)
	expectNoErrors(t, a)
}

func TestRedefinitionAcrossUnits(t *testing.T) {
	a := analyze(t, "int f() return 1;\n", "int f() return 2;\n")
	expectKinds(t, a, compiler_errors.Redefinition)

	if got := compiler_errors.Diagnostics(a.eh)[0].Unit.Path; got != "unit1.iz" {
		t.Errorf("redefinition reported in %s, want unit1.iz", got)
	}
}

func TestRecursion(t *testing.T) {
	a := analyze(t, `
int fact(int n)
{
    if (n <= 1)
        return 1;
    return n * fact(n - 1);
}
`)
	expectNoErrors(t, a)
}

func TestShadowing(t *testing.T) {
	a := analyze(t, `
int n() return 0;
int f(int n) return n;
int g() return n;
`)
	expectKinds(t, a, compiler_errors.ReturnTypeMismatch)

	f := a.units[0].Functions()[1]
	ret := body(a, 0, 1)[0].(*ast.ReturnStmt)
	cast, ok := ret.Expr.(*ast.ImplicitCastExpr)
	if !ok {
		t.Fatalf("return expression is %T, want *ast.ImplicitCastExpr", ret.Expr)
	}
	if got := cast.Expr.(*ast.IdentifierExpr).Decl; got != f.Args[0] {
		t.Errorf("n resolved to %v, want the argument", got)
	}

	// Inside g, n is the global function, not an int.
	g := body(a, 0, 2)[0].(*ast.ReturnStmt)
	if got := g.Expr.(*ast.IdentifierExpr).Decl; got != a.units[0].Functions()[0] {
		t.Errorf("n in g resolved to %v, want the global function", got)
	}
}

func TestArgumentNotVisibleOutsideItsFunction(t *testing.T) {
	a := analyze(t, "int f(int n) return n;\nint g() return n;\n")
	expectKinds(t, a, compiler_errors.UndeclaredIdentifier)

	ret := body(a, 0, 1)[0].(*ast.ReturnStmt)
	if ident := ret.Expr.(*ast.IdentifierExpr); ident.Decl != nil {
		t.Errorf("n outside f resolved to %v", ident.Decl)
	}
}

func TestNestedBlockScopes(t *testing.T) {
	a := analyze(t, `
int f(int n)
{
    {
        bool n = true;
        if (n) return 1;
    }
    return n;
}
`)
	expectNoErrors(t, a)

	a = analyze(t, "int f(int n) { int n; return n; }")
	expectKinds(t, a, compiler_errors.Redefinition)
}

func TestImplicitCastInsertion(t *testing.T) {
	a := analyze(t, `
int f(int a, int b)
{
    int c = a;
    c = b;
    return a + c;
}
`)
	expectNoErrors(t, a)

	stmts := body(a, 0, 0)

	variable := stmts[0].(*ast.VarStmt).Vars[0]
	if _, ok := variable.Initializer.(*ast.ImplicitCastExpr); !ok {
		t.Errorf("initializer is %T, want *ast.ImplicitCastExpr", variable.Initializer)
	}

	assignment := stmts[1].(*ast.ActStmt).Exprs[0].(*ast.AssignmentExpr)
	if _, ok := assignment.Lvalue.(*ast.IdentifierExpr); !ok {
		t.Errorf("lvalue is %T, want a bare identifier", assignment.Lvalue)
	}
	if _, ok := assignment.Rvalue.(*ast.ImplicitCastExpr); !ok {
		t.Errorf("rvalue is %T, want *ast.ImplicitCastExpr", assignment.Rvalue)
	}
	if !types.Equal(assignment.ExprType(), types.Int) {
		t.Errorf("assignment type = %v, want int", assignment.ExprType())
	}

	sum := stmts[2].(*ast.ReturnStmt).Expr.(*ast.BinaryExpr)
	for _, operand := range []ast.Expr{sum.Left, sum.Right} {
		cast, ok := operand.(*ast.ImplicitCastExpr)
		if !ok || cast.Kind != ast.LvalueToRvalue {
			t.Errorf("operand is %T, want an lvalue-to-rvalue cast", operand)
		}
	}
}

func TestIncompatibleTypes(t *testing.T) {
	tests := []struct {
		name string
		code string
		want []compiler_errors.ErrorKind
	}{
		{
			name: "bool operand in arithmetic",
			code: "int f(int a, bool b) return a + b;",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "int operand in conditional",
			code: "bool f(bool a, int b) return a && b;",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "int condition",
			code: "int f(int a) { if (a) return 1; return 0; }",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "bool argument for int parameter",
			code: "int g(int x) return x;\nint f(bool b) return g(b);",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "wrong argument count",
			code: "int g(int x) return x;\nint f() return g(1, 2);",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "bool stored into int",
			code: "int f(bool b) { int x; x = b; return x; }",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "constant initializer of the wrong type",
			code: "int f() { bool b = 1; return 0; }",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "function used as a value",
			code: "int g() return 1;\nint f() { int x = g; return x; }",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "assignment to a function",
			code: "int g() return 1;\nint f() { g = 1; return 0; }",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
		{
			name: "comparison of mismatched operands",
			code: "bool f(int a, bool b) return a == b;",
			want: []compiler_errors.ErrorKind{compiler_errors.IncompatibleType},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectKinds(t, analyze(t, tt.code), tt.want...)
		})
	}
}

func TestErrorsAccumulate(t *testing.T) {
	a := analyze(t, `
int f(int a)
{
    x = 1;
    y = 2;
    if (a < 1) return 1;
}
bool g() return 1;
`)

	expectKinds(t, a,
		compiler_errors.UndeclaredIdentifier,
		compiler_errors.UndeclaredIdentifier,
		compiler_errors.MissingReturn,
		compiler_errors.ReturnTypeMismatch,
	)
}

func TestExpressionTypes(t *testing.T) {
	a := analyze(t, `
int g(int x) return x;
bool f(int a, bool b)
{
    int sum = a + 1;
    bool less = a < sum;
    int call = g(a);
    return b || less;
}
`)
	expectNoErrors(t, a)

	stmts := body(a, 0, 1)
	want := []types.Type{types.Int, types.Bool, types.Int}
	for i, w := range want {
		init := stmts[i].(*ast.VarStmt).Vars[0].Initializer
		if !types.Equal(init.ExprType(), w) {
			t.Errorf("statement %d initializer type = %v, want %v", i, init.ExprType(), w)
		}
	}

	if got := stmts[3].(*ast.ReturnStmt).Expr.ExprType(); !types.Equal(got, types.Bool) {
		t.Errorf("conditional type = %v, want bool", got)
	}
}

func TestAssignmentToNonName(t *testing.T) {
	constant := func(v uint64) *ast.ConstantExpr {
		return &ast.ConstantExpr{Kind: ast.ConstantU64, U64: v}
	}
	call := &ast.CallExpr{Callee: &ast.IdentifierExpr{Name: "f"}}

	for _, lvalue := range []ast.Expr{constant(1), call} {
		// The parser never produces these, so the tree is built directly.
		block := &ast.BlockStmt{Stmts: []ast.Stmt{
			&ast.ActStmt{Exprs: []ast.Expr{&ast.AssignmentExpr{Lvalue: lvalue, Rvalue: constant(2)}}},
			&ast.ReturnStmt{Expr: constant(0)},
		}}
		unit := &ast.Unit{
			Source: source.Inline("int f() {}", "hand.iz"),
			Decls:  []ast.Decl{ast.NewFunctionDecl("f", source.Span{Offset: 4, Length: 1}, types.Int, nil, block)},
		}

		eh := compiler_errors.NewErrorHandler()
		if errors := NewSemanticAnalyzer(eh, []*ast.Unit{unit}).Analyze(); errors != 1 {
			t.Errorf("Analyze(%T lvalue) = %d errors, want 1", lvalue, errors)
		}
		if diff := cmp.Diff([]compiler_errors.ErrorKind{compiler_errors.IncompatibleType}, compiler_errors.Kinds(eh)); diff != "" {
			t.Errorf("error kinds mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestUnresolvedReturnCountsOnce(t *testing.T) {
	a := analyze(t, "bool f() return missing;\nint g() return missing();\n")
	expectKinds(t, a, compiler_errors.UndeclaredIdentifier, compiler_errors.UndeclaredIdentifier)
}
