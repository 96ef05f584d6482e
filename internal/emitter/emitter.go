package emitter

import (
	"tinygo.org/x/go-llvm"

	"github.com/kievzenit/izc/internal/ir"
)

// Emitter builds an LLVM module from one lowered module. Functions defined in
// other modules are declared on first call.
type Emitter struct {
	module *ir.Module

	typesMap  map[ir.Type]llvm.Type
	funcsMap  map[*ir.Func]llvm.Value
	blocksMap map[*ir.BasicBlock]llvm.BasicBlock
	valuesMap map[ir.Value]llvm.Value

	context    llvm.Context
	llvmModule llvm.Module
	builder    llvm.Builder

	currentFunc llvm.Value
}

func NewEmitter(module *ir.Module) *Emitter {
	context := llvm.NewContext()
	return &Emitter{
		module: module,

		typesMap: make(map[ir.Type]llvm.Type),
		funcsMap: make(map[*ir.Func]llvm.Value),

		context:    context,
		llvmModule: context.NewModule(module.Name),
		builder:    context.NewBuilder(),
	}
}

func (e *Emitter) Emit() llvm.Module {
	e.declareTypes()
	e.declareFuncPrototypes()

	for _, fn := range e.module.Funcs {
		e.emitForFunc(fn)
	}

	return e.llvmModule
}

// Dispose releases the module and the context it was built in.
func (e *Emitter) Dispose() {
	e.builder.Dispose()
	e.llvmModule.Dispose()
	e.context.Dispose()
}

func (e *Emitter) declareTypes() {
	e.typesMap[ir.TypeI1] = e.context.Int1Type()
	e.typesMap[ir.TypeI32] = e.context.Int32Type()
	e.typesMap[ir.TypePtr] = llvm.PointerType(e.context.Int8Type(), 0)
}

func (e *Emitter) getLlvmType(t ir.Type) llvm.Type {
	if llvmType, ok := e.typesMap[t]; ok {
		return llvmType
	}

	panic("type not found")
}

func (e *Emitter) declareFuncPrototypes() {
	for _, fn := range e.module.Funcs {
		e.declareFunc(fn)
	}
}

func (e *Emitter) declareFunc(fn *ir.Func) llvm.Value {
	if funcValue, ok := e.funcsMap[fn]; ok {
		return funcValue
	}

	argsTypes := make([]llvm.Type, 0, len(fn.Params))
	for _, param := range fn.Params {
		argsTypes = append(argsTypes, e.getLlvmType(param.Typ))
	}
	funcType := llvm.FunctionType(e.getLlvmType(fn.ReturnType), argsTypes, false)
	funcValue := llvm.AddFunction(e.llvmModule, fn.Name, funcType)
	for i, param := range fn.Params {
		funcValue.Param(i).SetName(param.Name)
	}
	e.funcsMap[fn] = funcValue

	framePointerAttr := e.context.CreateStringAttribute("frame-pointer", "all")
	noTrappingMathAttr := e.context.CreateStringAttribute("no-trapping-math", "true")
	funcValue.AddFunctionAttr(framePointerAttr)
	funcValue.AddFunctionAttr(noTrappingMathAttr)

	return funcValue
}

func (e *Emitter) emitForFunc(fn *ir.Func) {
	e.currentFunc = e.funcsMap[fn]
	e.blocksMap = make(map[*ir.BasicBlock]llvm.BasicBlock, len(fn.Blocks))
	e.valuesMap = make(map[ir.Value]llvm.Value)

	// Branches may point forward, so every block exists before any is filled.
	for _, block := range fn.Blocks {
		e.blocksMap[block] = e.context.AddBasicBlock(e.currentFunc, block.Label)
	}

	for _, block := range fn.Blocks {
		e.builder.SetInsertPointAtEnd(e.blocksMap[block])
		for _, instr := range block.Instructions {
			e.emitForInstruction(instr)
		}
		e.emitForTerminator(block.Term)
	}

	e.currentFunc = llvm.Value{}
}

func (e *Emitter) emitForInstruction(instr *ir.Instruction) {
	var result llvm.Value
	name := ""
	if instr.Result != nil {
		name = instr.Result.String()[1:]
	}

	switch {
	case instr.Op == ir.OpAlloca:
		result = e.builder.CreateAlloca(e.getLlvmType(instr.Typ), name)
	case instr.Op == ir.OpLoad:
		result = e.builder.CreateLoad(e.getLlvmType(instr.Typ), e.value(instr.Args[0]), name)
	case instr.Op == ir.OpStore:
		e.builder.CreateStore(e.value(instr.Args[0]), e.value(instr.Args[1]))
		return
	case instr.Op.IsArithmetic():
		result = e.emitForArithmetic(instr.Op, e.value(instr.Args[0]), e.value(instr.Args[1]), name)
	case instr.Op.IsCompare():
		result = e.builder.CreateICmp(intPredicates[instr.Op], e.value(instr.Args[0]), e.value(instr.Args[1]), name)
	case instr.Op == ir.OpCall:
		funcValue := e.declareFunc(instr.Args[0].(*ir.FuncRef).Func)
		args := make([]llvm.Value, 0, len(instr.Args)-1)
		for _, arg := range instr.Args[1:] {
			args = append(args, e.value(arg))
		}
		result = e.builder.CreateCall(funcValue.GlobalValueType(), funcValue, args, name)
	default:
		panic("unreachable")
	}

	e.valuesMap[instr.Result] = result
}

func (e *Emitter) emitForArithmetic(op ir.Op, left, right llvm.Value, name string) llvm.Value {
	switch op {
	case ir.OpAdd:
		return e.builder.CreateAdd(left, right, name)
	case ir.OpSub:
		return e.builder.CreateSub(left, right, name)
	case ir.OpMul:
		return e.builder.CreateMul(left, right, name)
	case ir.OpSDiv:
		return e.builder.CreateSDiv(left, right, name)
	case ir.OpSRem:
		return e.builder.CreateSRem(left, right, name)
	}

	panic("unreachable")
}

var intPredicates = map[ir.Op]llvm.IntPredicate{
	ir.OpICmpEq:  llvm.IntEQ,
	ir.OpICmpNe:  llvm.IntNE,
	ir.OpICmpSlt: llvm.IntSLT,
	ir.OpICmpSle: llvm.IntSLE,
	ir.OpICmpSgt: llvm.IntSGT,
	ir.OpICmpSge: llvm.IntSGE,
}

func (e *Emitter) emitForTerminator(term ir.Terminator) {
	switch term := term.(type) {
	case *ir.Br:
		e.builder.CreateBr(e.blocksMap[term.Target])
	case *ir.CondBr:
		e.builder.CreateCondBr(e.value(term.Cond), e.blocksMap[term.Then], e.blocksMap[term.Else])
	case *ir.Ret:
		e.builder.CreateRet(e.value(term.Value))
	case nil:
		e.builder.CreateUnreachable()
	default:
		panic("unreachable")
	}
}

func (e *Emitter) value(v ir.Value) llvm.Value {
	switch v := v.(type) {
	case *ir.Const:
		return llvm.ConstInt(e.getLlvmType(v.Typ), v.Value, v.Typ == ir.TypeI32)
	case *ir.Param:
		return e.currentFunc.Param(v.Index)
	case *ir.FuncRef:
		return e.declareFunc(v.Func)
	}

	if value, ok := e.valuesMap[v]; ok {
		return value
	}
	panic("value used before definition")
}
