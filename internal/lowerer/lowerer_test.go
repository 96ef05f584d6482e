package lowerer

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/kievzenit/izc/internal/ast"
	"github.com/kievzenit/izc/internal/compiler_errors"
	"github.com/kievzenit/izc/internal/ir"
	"github.com/kievzenit/izc/internal/parser"
	"github.com/kievzenit/izc/internal/semantic_analyzer"
	"github.com/kievzenit/izc/internal/source"
)

func lower(t *testing.T, codes ...string) *ir.Program {
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

	if errors := semantic_analyzer.NewSemanticAnalyzer(eh, units).Analyze(); errors != 0 {
		t.Fatalf("Analyze() = %d errors, want 0: %v", errors, compiler_errors.Kinds(eh))
	}

	return NewLowerer(units).Lower()
}

func lowerFunc(t *testing.T, code string) *ir.Func {
	t.Helper()

	program := lower(t, code)
	return program.Modules[0].Funcs[0]
}

func expectFunc(t *testing.T, fn *ir.Func, want string) {
	t.Helper()

	if diff := cmp.Diff(want, fn.String()); diff != "" {
		t.Errorf("%s mismatch (-want +got):\n%s", fn.Name, diff)
	}
}

func labels(fn *ir.Func) []string {
	labels := make([]string, len(fn.Blocks))
	for i, block := range fn.Blocks {
		labels[i] = block.Label
	}
	return labels
}

func TestConstantReturn(t *testing.T) {
	fn := lowerFunc(t, "int main() { return 42; }")

	if len(fn.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(fn.Blocks))
	}
	ret, ok := fn.Blocks[0].Term.(*ir.Ret)
	if !ok {
		t.Fatalf("Term = %T, want *ir.Ret", fn.Blocks[0].Term)
	}
	constant, ok := ret.Value.(*ir.Const)
	if !ok || constant.Value != 42 || constant.Typ != ir.TypeI32 {
		t.Errorf("Ret.Value = %v, want i32 42", ret.Value)
	}
	if len(fn.Blocks[0].Instructions) != 0 {
		t.Errorf("len(Instructions) = %d, want 0", len(fn.Blocks[0].Instructions))
	}
}

func TestPrologue(t *testing.T) {
	fn := lowerFunc(t, "int id(int n) { return n; }")

	expectFunc(t, fn, `func i32 @id(i32 %n) {
entry:
  %n.addr = alloca i32
  store i32 %n, ptr %n.addr
  %t0 = load i32, ptr %n.addr
  ret i32 %t0
}
`)
}

func TestAssignmentStoresThenLoads(t *testing.T) {
	fn := lowerFunc(t, "int f() { int x; x = 5; return x; }")

	expectFunc(t, fn, `func i32 @f() {
entry:
  %x.addr = alloca i32
  store i32 5, ptr %x.addr
  %t0 = load i32, ptr %x.addr
  %t1 = load i32, ptr %x.addr
  ret i32 %t1
}
`)
}

func TestVarInitializer(t *testing.T) {
	fn := lowerFunc(t, "int f(int a) { int x = a + 1, y; return x; }")

	expectFunc(t, fn, `func i32 @f(i32 %a) {
entry:
  %a.addr = alloca i32
  %x.addr = alloca i32
  %y.addr = alloca i32
  store i32 %a, ptr %a.addr
  %t0 = load i32, ptr %a.addr
  %t1 = add i32 %t0, 1
  store i32 %t1, ptr %x.addr
  %t2 = load i32, ptr %x.addr
  ret i32 %t2
}
`)
}

func TestShortCircuitAnd(t *testing.T) {
	fn := lowerFunc(t, "bool f(bool a, bool b) { return a && b; }")

	expectFunc(t, fn, `func i1 @f(i1 %a, i1 %b) {
entry:
  %a.addr = alloca i1
  %b.addr = alloca i1
  %cond.addr = alloca i1
  store i1 %a, ptr %a.addr
  store i1 %b, ptr %b.addr
  %t0 = load i1, ptr %a.addr
  store i1 %t0, ptr %cond.addr
  br i1 %t0, label %cond.rhs, label %cond.merge
cond.rhs:
  %t1 = load i1, ptr %b.addr
  store i1 %t1, ptr %cond.addr
  br label %cond.merge
cond.merge:
  %t2 = load i1, ptr %cond.addr
  ret i1 %t2
}
`)

	for _, block := range fn.Blocks {
		for _, instr := range block.Instructions {
			if instr.Op != ir.OpLoad {
				continue
			}
			if slot := instr.Args[0].(*ir.Slot); slot.Name == "b.addr" && block.Label != "cond.rhs" {
				t.Errorf("b loaded in block %q, want only in cond.rhs", block.Label)
			}
		}
	}
}

func TestShortCircuitOr(t *testing.T) {
	fn := lowerFunc(t, "bool f(bool a, bool b) { return a || b; }")

	condBr, ok := fn.Blocks[0].Term.(*ir.CondBr)
	if !ok {
		t.Fatalf("entry Term = %T, want *ir.CondBr", fn.Blocks[0].Term)
	}
	if condBr.Then.Label != "cond.merge" || condBr.Else.Label != "cond.rhs" {
		t.Errorf("CondBr targets = %s, %s, want cond.merge, cond.rhs", condBr.Then.Label, condBr.Else.Label)
	}
}

func TestIfBothBranchesReturn(t *testing.T) {
	fn := lowerFunc(t, "int max(int a, int b) { if (a > b) return a; else return b; }")

	if diff := cmp.Diff([]string{"entry", "if.then", "if.else"}, labels(fn)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
	for _, block := range fn.Blocks {
		if !block.Terminated() {
			t.Errorf("block %q has no terminator", block.Label)
		}
	}
}

func TestIfWithoutElseJoins(t *testing.T) {
	fn := lowerFunc(t, "int f(int a) { if (a > 0) a = 0; return a; }")

	if diff := cmp.Diff([]string{"entry", "if.then", "if.else", "if.join"}, labels(fn)); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}

	join := fn.Block("if.join")
	for _, label := range []string{"if.then", "if.else"} {
		br, ok := fn.Block(label).Term.(*ir.Br)
		if !ok || br.Target != join {
			t.Errorf("%s Term = %v, want br to if.join", label, fn.Block(label).Term)
		}
	}
	if _, ok := join.Term.(*ir.Ret); !ok {
		t.Errorf("if.join Term = %T, want *ir.Ret", join.Term)
	}
}

func TestIfOneBranchReturns(t *testing.T) {
	fn := lowerFunc(t, "int f(int a) { if (a > 0) return 1; else a = 2; return a; }")

	if diff := cmp.Diff([]string{"entry", "if.then", "if.else", "if.join"}, labels(fn)); diff != "" {
		t.Fatalf("labels mismatch (-want +got):\n%s", diff)
	}
	if _, ok := fn.Block("if.then").Term.(*ir.Ret); !ok {
		t.Errorf("if.then Term = %T, want *ir.Ret", fn.Block("if.then").Term)
	}
	if br, ok := fn.Block("if.else").Term.(*ir.Br); !ok || br.Target.Label != "if.join" {
		t.Errorf("if.else Term = %v, want br to if.join", fn.Block("if.else").Term)
	}
}

func TestLabelsAreUnique(t *testing.T) {
	fn := lowerFunc(t, "int f(bool c) { if (c) c = false; if (c) c = true; return 0; }")

	want := []string{"entry", "if.then", "if.else", "if.join", "if.then.1", "if.else.1", "if.join.1"}
	if diff := cmp.Diff(want, labels(fn)); diff != "" {
		t.Errorf("labels mismatch (-want +got):\n%s", diff)
	}
}

func TestNothingAfterReturn(t *testing.T) {
	fn := lowerFunc(t, "int f() { return 1; int x = 2; return x; }")

	if len(fn.Blocks) != 1 {
		t.Fatalf("len(Blocks) = %d, want 1", len(fn.Blocks))
	}
	if got := fn.Blocks[0].Term.String(); got != "ret i32 1" {
		t.Errorf("Term = %q, want %q", got, "ret i32 1")
	}
	if len(fn.Blocks[0].Instructions) != 0 {
		t.Errorf("len(Instructions) = %d, want 0", len(fn.Blocks[0].Instructions))
	}
}

func TestCallAcrossUnits(t *testing.T) {
	program := lower(t,
		"int main() { return twice(2); }",
		"int twice(int n) { return n * 2; }",
	)

	if len(program.Modules) != 2 {
		t.Fatalf("len(Modules) = %d, want 2", len(program.Modules))
	}
	if program.Modules[0].Name != "unit0.iz" || program.Modules[1].Name != "unit1.iz" {
		t.Errorf("module names = %q, %q", program.Modules[0].Name, program.Modules[1].Name)
	}

	main := program.Modules[0].Func("main")
	call := main.Blocks[0].Instructions[0]
	if got := call.String(); got != "%t0 = call i32 @twice(i32 2)" {
		t.Errorf("call = %q", got)
	}
	if callee := call.Args[0].(*ir.FuncRef).Func; callee != program.Modules[1].Func("twice") {
		t.Errorf("callee is not the lowered twice")
	}
}

func TestRecursion(t *testing.T) {
	fn := lowerFunc(t, "int fact(int n) { if (n <= 1) return 1; return n * fact(n - 1); }")

	var calls int
	for _, block := range fn.Blocks {
		for _, instr := range block.Instructions {
			if instr.Op == ir.OpCall {
				calls++
				if instr.Args[0].(*ir.FuncRef).Func != fn {
					t.Errorf("call target is not fact itself")
				}
			}
		}
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if !strings.Contains(fn.String(), "icmp sle i32") {
		t.Errorf("missing signed comparison in:\n%s", fn)
	}
}

func TestFingerprintIsStable(t *testing.T) {
	code := "int f(int a, int b) { if (a < b && b != 0) return a % b; return a / 2; }"

	if lower(t, code).Fingerprint() != lower(t, code).Fingerprint() {
		t.Errorf("lowering the same code twice gave different fingerprints")
	}
}

func TestSlotsAreAllocatedInEntry(t *testing.T) {
	// x is declared in one branch and used in the other and after the if.
	fn := lowerFunc(t, "int f(bool c) { if (c) int x = 1; else x = 2; if (c && c) return x; return 0; }")

	var slots []string
	for _, block := range fn.Blocks {
		for i, instr := range block.Instructions {
			if instr.Op != ir.OpAlloca {
				continue
			}
			if block.Label != "entry" {
				t.Errorf("alloca of %s in block %q, want entry", instr.Result, block.Label)
			}
			if i != len(slots) {
				t.Errorf("alloca of %s at index %d, want %d", instr.Result, i, len(slots))
			}
			slots = append(slots, instr.Result.(*ir.Slot).Name)
		}
	}

	want := []string{"c.addr", "x.addr", "cond.addr"}
	if diff := cmp.Diff(want, slots); diff != "" {
		t.Errorf("slots mismatch (-want +got):\n%s", diff)
	}

	store := fn.Block("if.else").Instructions[0]
	if got := store.String(); got != "store i32 2, ptr %x.addr" {
		t.Errorf("if.else starts with %q, want the store into x", got)
	}
}
