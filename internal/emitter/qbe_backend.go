package emitter

import (
	"bytes"
	"fmt"
	"strings"

	"modernc.org/libqbe"

	"github.com/kievzenit/izc/internal/config"
	"github.com/kievzenit/izc/internal/ir"
)

type qbeBackend struct {
	out      *strings.Builder
	wordType string
}

func NewQBEBackend() Backend { return &qbeBackend{} }

// Generate compiles module to assembly for cfg.QbeTarget. The QBE IL goes
// into the error when libqbe rejects it.
func (b *qbeBackend) Generate(module *ir.Module, cfg *config.Config) (Artifacts, error) {
	artifacts := make(Artifacts)
	if !cfg.Emits(config.ArtifactAsm) {
		return artifacts, nil
	}

	qbeIR := b.GenerateIL(module, cfg.WordType)

	var asmBuf bytes.Buffer
	err := libqbe.Main(cfg.QbeTarget, module.Name+".ssa", strings.NewReader(qbeIR), &asmBuf, nil)
	if err != nil {
		return nil, fmt.Errorf("qbe compilation of %s failed: %w\n--- generated IL ---\n%s", module.Name, err, qbeIR)
	}

	artifacts[config.ArtifactAsm] = &asmBuf
	return artifacts, nil
}

// GenerateIL renders module as QBE IL. wordType is the QBE base type of a
// pointer on the target, "l" or "w".
func (b *qbeBackend) GenerateIL(module *ir.Module, wordType string) string {
	var qbeIRBuilder strings.Builder
	b.out = &qbeIRBuilder
	b.wordType = wordType
	if b.wordType == "" {
		b.wordType = "l"
	}

	for _, fn := range module.Funcs {
		b.genFunc(fn)
	}

	return qbeIRBuilder.String()
}

func (b *qbeBackend) genFunc(fn *ir.Func) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = fmt.Sprintf("%s %s", b.formatType(param.Typ), b.formatValue(param))
	}

	fmt.Fprintf(b.out, "export function %s $%s(%s) {\n", b.formatType(fn.ReturnType), fn.Name, strings.Join(params, ", "))
	for _, block := range fn.Blocks {
		b.genBlock(block)
	}
	b.out.WriteString("}\n")
}

func (b *qbeBackend) genBlock(block *ir.BasicBlock) {
	fmt.Fprintf(b.out, "@%s\n", block.Label)
	for _, instr := range block.Instructions {
		b.out.WriteString("\t")
		b.genInstr(instr)
		b.out.WriteString("\n")
	}

	switch term := block.Term.(type) {
	case *ir.Br:
		fmt.Fprintf(b.out, "\tjmp @%s\n", term.Target.Label)
	case *ir.CondBr:
		fmt.Fprintf(b.out, "\tjnz %s, @%s, @%s\n", b.formatValue(term.Cond), term.Then.Label, term.Else.Label)
	case *ir.Ret:
		fmt.Fprintf(b.out, "\tret %s\n", b.formatValue(term.Value))
	}
}

var qbeOps = map[ir.Op]string{
	ir.OpAdd:     "add",
	ir.OpSub:     "sub",
	ir.OpMul:     "mul",
	ir.OpSDiv:    "div",
	ir.OpSRem:    "rem",
	ir.OpICmpEq:  "ceqw",
	ir.OpICmpNe:  "cnew",
	ir.OpICmpSlt: "csltw",
	ir.OpICmpSle: "cslew",
	ir.OpICmpSgt: "csgtw",
	ir.OpICmpSge: "csgew",
}

func (b *qbeBackend) genInstr(instr *ir.Instruction) {
	switch {
	case instr.Op == ir.OpAlloca:
		// i1 and i32 both live in a 32-bit word.
		fmt.Fprintf(b.out, "%s =%s alloc4 4", b.formatValue(instr.Result), b.wordType)
	case instr.Op == ir.OpLoad:
		fmt.Fprintf(b.out, "%s =w loadw %s", b.formatValue(instr.Result), b.formatValue(instr.Args[0]))
	case instr.Op == ir.OpStore:
		fmt.Fprintf(b.out, "storew %s, %s", b.formatValue(instr.Args[0]), b.formatValue(instr.Args[1]))
	case instr.Op == ir.OpCall:
		args := make([]string, 0, len(instr.Args)-1)
		for _, arg := range instr.Args[1:] {
			args = append(args, fmt.Sprintf("%s %s", b.formatType(arg.ValueType()), b.formatValue(arg)))
		}
		fmt.Fprintf(b.out, "%s =%s call %s(%s)",
			b.formatValue(instr.Result), b.formatType(instr.Typ), b.formatValue(instr.Args[0]), strings.Join(args, ", "))
	default:
		fmt.Fprintf(b.out, "%s =w %s %s, %s",
			b.formatValue(instr.Result), qbeOps[instr.Op], b.formatValue(instr.Args[0]), b.formatValue(instr.Args[1]))
	}
}

func (b *qbeBackend) formatValue(v ir.Value) string {
	switch val := v.(type) {
	case *ir.Const:
		if val.Typ == ir.TypeI1 {
			return fmt.Sprintf("%d", val.Value)
		}
		return fmt.Sprintf("%d", int32(val.Value))
	case *ir.FuncRef:
		return "$" + val.Func.Name
	}
	return v.String()
}

func (b *qbeBackend) formatType(t ir.Type) string {
	if t == ir.TypePtr {
		return b.wordType
	}
	return "w"
}
