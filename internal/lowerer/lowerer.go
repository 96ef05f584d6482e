// Package lowerer turns analyzed trees into the control-flow graph of package ir.
// It expects trees that passed semantic analysis without errors.
package lowerer

import (
	"fmt"
	"slices"

	"github.com/kievzenit/izc/internal/ast"
	"github.com/kievzenit/izc/internal/ir"
	"github.com/kievzenit/izc/internal/semantic_analyzer"
	"github.com/kievzenit/izc/internal/types"
)

type Lowerer struct {
	units []*ast.Unit

	funcsMap map[*ast.FunctionDecl]*ir.Func
	slotsMap map[ast.Decl]*ir.Slot

	currentFunc  *ir.Func
	currentBlock *ir.BasicBlock
	slotNames    map[string]int

	// Every slot is allocated at the top of the entry block, so it dominates
	// all of its uses whatever block declared it.
	allocaBlock *ir.BasicBlock
	allocas     int
}

func NewLowerer(units []*ast.Unit) *Lowerer {
	return &Lowerer{
		units: units,

		funcsMap: make(map[*ast.FunctionDecl]*ir.Func),
	}
}

// Lower produces one module per unit. Every prototype is known before the
// first body is lowered, so calls may refer to functions declared later or in
// other units.
func (l *Lowerer) Lower() *ir.Program {
	l.declareFuncPrototypes()

	program := &ir.Program{
		Modules: make([]*ir.Module, 0, len(l.units)),
	}
	for _, unit := range l.units {
		module := &ir.Module{
			Name: unit.Source.Path,
		}
		for _, function := range unit.Functions() {
			module.Funcs = append(module.Funcs, l.LowerFunction(function))
		}
		program.Modules = append(program.Modules, module)
	}

	return program
}

func (l *Lowerer) declareFuncPrototypes() {
	for _, unit := range l.units {
		for _, function := range unit.Functions() {
			l.prototype(function)
		}
	}
}

func (l *Lowerer) prototype(function *ast.FunctionDecl) *ir.Func {
	if fn, ok := l.funcsMap[function]; ok {
		return fn
	}

	params := make([]*ir.Param, len(function.Args))
	for i, arg := range function.Args {
		params[i] = &ir.Param{
			Name:  arg.Name,
			Index: i,
			Typ:   irType(arg.Type),
		}
	}

	fn := ir.NewFunc(function.Name, irType(function.ReturnType), params...)
	l.funcsMap[function] = fn
	return fn
}

// LowerFunction lowers the body of function into its prototype.
func (l *Lowerer) LowerFunction(function *ast.FunctionDecl) *ir.Func {
	fn := l.prototype(function)

	l.currentFunc = fn
	l.slotsMap = make(map[ast.Decl]*ir.Slot)
	l.slotNames = make(map[string]int)
	defer func() {
		l.currentFunc = nil
		l.currentBlock = nil
		l.allocaBlock = nil
	}()

	l.currentBlock = fn.NewBlock("entry")
	l.allocaBlock = l.currentBlock
	l.allocas = 0
	for i, arg := range function.Args {
		slot := l.alloca(arg.Name, fn.Params[i].Typ)
		l.store(fn.Params[i], slot)
		l.slotsMap[arg] = slot
	}

	l.lowerStmt(function.Body)

	return fn
}

func (l *Lowerer) lowerStmt(stmt ast.Stmt) {
	// Whatever follows a return in the same block is unreachable.
	if l.currentBlock == nil {
		return
	}

	switch stmt := stmt.(type) {
	case *ast.BlockStmt:
		for _, child := range stmt.Stmts {
			l.lowerStmt(child)
		}
	case *ast.ReturnStmt:
		l.lowerReturnStmt(stmt)
	case *ast.IfStmt:
		l.lowerIfStmt(stmt)
	case *ast.VarStmt:
		l.lowerVarStmt(stmt)
	case *ast.ActStmt:
		for _, expr := range stmt.Exprs {
			l.lowerExpr(expr)
		}
	default:
		panic("unreachable")
	}
}

func (l *Lowerer) lowerReturnStmt(returnStmt *ast.ReturnStmt) {
	value := l.lowerExpr(returnStmt.Expr)
	l.terminate(&ir.Ret{Value: value})
}

func (l *Lowerer) lowerIfStmt(ifStmt *ast.IfStmt) {
	cond := l.lowerExpr(ifStmt.Cond)

	thenBlock := l.currentFunc.NewBlock("if.then")
	elseBlock := l.currentFunc.NewBlock("if.else")
	l.terminate(&ir.CondBr{Cond: cond, Then: thenBlock, Else: elseBlock})

	l.currentBlock = thenBlock
	l.lowerStmt(ifStmt.Then)
	thenEnd := l.currentBlock

	l.currentBlock = elseBlock
	if ifStmt.Else != nil {
		l.lowerStmt(ifStmt.Else)
	}
	elseEnd := l.currentBlock

	if semantic_analyzer.AllPathsReturn(ifStmt) {
		l.currentBlock = nil
		return
	}

	joinBlock := l.currentFunc.NewBlock("if.join")
	for _, end := range []*ir.BasicBlock{thenEnd, elseEnd} {
		if end != nil && !end.Terminated() {
			end.Term = &ir.Br{Target: joinBlock}
		}
	}
	l.currentBlock = joinBlock
}

func (l *Lowerer) lowerVarStmt(varStmt *ast.VarStmt) {
	for _, variable := range varStmt.Vars {
		slot := l.alloca(variable.Name, irType(variable.Type))
		l.slotsMap[variable] = slot

		if variable.Initializer != nil {
			l.store(l.lowerExpr(variable.Initializer), slot)
		}
	}
}

func (l *Lowerer) lowerExpr(expr ast.Expr) ir.Value {
	switch expr := expr.(type) {
	case *ast.ConstantExpr:
		return l.lowerConstantExpr(expr)
	case *ast.IdentifierExpr:
		return l.lowerIdentifierExpr(expr)
	case *ast.ImplicitCastExpr:
		slot, ok := l.lowerExpr(expr.Expr).(*ir.Slot)
		if !ok {
			panic("implicit cast of a value that is not a slot")
		}
		return l.load(slot)
	case *ast.BinaryExpr:
		return l.lowerBinaryExpr(expr)
	case *ast.CallExpr:
		return l.lowerCallExpr(expr)
	case *ast.AssignmentExpr:
		return l.lowerAssignmentExpr(expr)
	case *ast.ConditionalExpr:
		return l.lowerConditionalExpr(expr)
	}

	panic("unreachable")
}

func (l *Lowerer) lowerConstantExpr(constant *ast.ConstantExpr) ir.Value {
	if constant.Kind == ast.ConstantBool {
		value := uint64(0)
		if constant.Bool {
			value = 1
		}
		return &ir.Const{Typ: ir.TypeI1, Value: value}
	}

	return &ir.Const{Typ: ir.TypeI32, Value: constant.U64}
}

func (l *Lowerer) lowerIdentifierExpr(ident *ast.IdentifierExpr) ir.Value {
	if function, ok := ident.Decl.(*ast.FunctionDecl); ok {
		return &ir.FuncRef{Func: l.prototype(function)}
	}

	slot, ok := l.slotsMap[ident.Decl]
	if !ok {
		panic(fmt.Sprintf("no slot for '%s'", ident.Name))
	}
	return slot
}

var binaryOps = map[ast.BinaryOp]ir.Op{
	ast.BinaryEq:  ir.OpICmpEq,
	ast.BinaryNe:  ir.OpICmpNe,
	ast.BinaryLt:  ir.OpICmpSlt,
	ast.BinaryLe:  ir.OpICmpSle,
	ast.BinaryGt:  ir.OpICmpSgt,
	ast.BinaryGe:  ir.OpICmpSge,
	ast.BinaryAdd: ir.OpAdd,
	ast.BinarySub: ir.OpSub,
	ast.BinaryMul: ir.OpMul,
	ast.BinaryDiv: ir.OpSDiv,
	ast.BinaryRem: ir.OpSRem,
}

func (l *Lowerer) lowerBinaryExpr(binary *ast.BinaryExpr) ir.Value {
	left := l.lowerExpr(binary.Left)
	right := l.lowerExpr(binary.Right)

	resultType := ir.TypeI32
	if binary.Op.IsComparison() {
		resultType = ir.TypeI1
	}

	return l.emit(binaryOps[binary.Op], resultType, left, right)
}

func (l *Lowerer) lowerCallExpr(call *ast.CallExpr) ir.Value {
	callee, ok := l.lowerExpr(call.Callee).(*ir.FuncRef)
	if !ok {
		panic("call of a value that is not a function")
	}

	args := make([]ir.Value, 0, len(call.Args)+1)
	args = append(args, callee)
	for _, arg := range call.Args {
		args = append(args, l.lowerExpr(arg))
	}

	return l.emit(ir.OpCall, callee.Func.ReturnType, args...)
}

func (l *Lowerer) lowerAssignmentExpr(assignment *ast.AssignmentExpr) ir.Value {
	slot, ok := l.lowerExpr(assignment.Lvalue).(*ir.Slot)
	if !ok {
		panic("assignment to a value that is not a slot")
	}

	l.store(l.lowerExpr(assignment.Rvalue), slot)
	return l.load(slot)
}

// lowerConditionalExpr evaluates the right side only when the left side does
// not decide the result. The result travels through a stack slot.
func (l *Lowerer) lowerConditionalExpr(conditional *ast.ConditionalExpr) ir.Value {
	result := l.alloca("cond", ir.TypeI1)
	left := l.lowerExpr(conditional.Left)
	l.store(left, result)

	rhsBlock := l.currentFunc.NewBlock("cond.rhs")
	mergeBlock := l.currentFunc.NewBlock("cond.merge")
	switch conditional.Op {
	case ast.ConditionalAnd:
		l.terminate(&ir.CondBr{Cond: left, Then: rhsBlock, Else: mergeBlock})
	case ast.ConditionalOr:
		l.terminate(&ir.CondBr{Cond: left, Then: mergeBlock, Else: rhsBlock})
	default:
		panic("unreachable")
	}

	l.currentBlock = rhsBlock
	l.store(l.lowerExpr(conditional.Right), result)
	l.terminate(&ir.Br{Target: mergeBlock})

	l.currentBlock = mergeBlock
	return l.load(result)
}

func (l *Lowerer) alloca(name string, elem ir.Type) *ir.Slot {
	n := l.slotNames[name]
	l.slotNames[name] = n + 1
	if n > 0 {
		name = fmt.Sprintf("%s.%d", name, n)
	}

	slot := &ir.Slot{Name: name + ".addr", Elem: elem}
	l.allocaBlock.Instructions = slices.Insert(
		l.allocaBlock.Instructions,
		l.allocas,
		&ir.Instruction{Op: ir.OpAlloca, Typ: elem, Result: slot},
	)
	l.allocas++
	return slot
}

func (l *Lowerer) store(value ir.Value, slot *ir.Slot) {
	l.add(&ir.Instruction{Op: ir.OpStore, Typ: slot.Elem, Args: []ir.Value{value, slot}})
}

func (l *Lowerer) load(slot *ir.Slot) ir.Value {
	return l.emit(ir.OpLoad, slot.Elem, slot)
}

func (l *Lowerer) emit(op ir.Op, resultType ir.Type, args ...ir.Value) ir.Value {
	result := l.currentFunc.NewTemp(resultType)
	l.add(&ir.Instruction{Op: op, Typ: resultType, Result: result, Args: args})
	return result
}

func (l *Lowerer) add(instr *ir.Instruction) {
	l.currentBlock.Instructions = append(l.currentBlock.Instructions, instr)
}

// terminate closes the current block.
func (l *Lowerer) terminate(term ir.Terminator) {
	l.currentBlock.Term = term
	l.currentBlock = nil
}

func irType(t types.Type) ir.Type {
	switch t.Kind() {
	case types.KindBool:
		return ir.TypeI1
	case types.KindInt:
		return ir.TypeI32
	case types.KindCallable:
		return ir.TypePtr
	}

	panic("unreachable")
}
