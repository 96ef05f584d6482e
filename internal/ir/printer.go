package ir

import (
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
)

func (i *Instruction) String() string {
	var sb strings.Builder
	if i.Result != nil {
		fmt.Fprintf(&sb, "%s = ", i.Result)
	}

	switch {
	case i.Op == OpAlloca:
		fmt.Fprintf(&sb, "alloca %s", i.Typ)
	case i.Op == OpLoad:
		fmt.Fprintf(&sb, "load %s, ptr %s", i.Typ, i.Args[0])
	case i.Op == OpStore:
		fmt.Fprintf(&sb, "store %s %s, ptr %s", i.Typ, i.Args[0], i.Args[1])
	case i.Op.IsArithmetic():
		fmt.Fprintf(&sb, "%s %s %s, %s", i.Op, i.Typ, i.Args[0], i.Args[1])
	case i.Op.IsCompare():
		fmt.Fprintf(&sb, "icmp %s %s %s, %s", i.Op, i.Args[0].ValueType(), i.Args[0], i.Args[1])
	case i.Op == OpCall:
		args := make([]string, 0, len(i.Args)-1)
		for _, arg := range i.Args[1:] {
			args = append(args, fmt.Sprintf("%s %s", arg.ValueType(), arg))
		}
		fmt.Fprintf(&sb, "call %s %s(%s)", i.Typ, i.Args[0], strings.Join(args, ", "))
	default:
		fmt.Fprintf(&sb, "%s", i.Op)
	}

	return sb.String()
}

func (b *Br) String() string {
	return fmt.Sprintf("br label %%%s", b.Target.Label)
}

func (b *CondBr) String() string {
	return fmt.Sprintf("br i1 %s, label %%%s, label %%%s", b.Cond, b.Then.Label, b.Else.Label)
}

func (r *Ret) String() string {
	return fmt.Sprintf("ret %s %s", r.Value.ValueType(), r.Value)
}

func (b *BasicBlock) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", b.Label)
	for _, instr := range b.Instructions {
		fmt.Fprintf(&sb, "  %s\n", instr)
	}
	if b.Term != nil {
		fmt.Fprintf(&sb, "  %s\n", b.Term)
	}
	return sb.String()
}

func (f *Func) String() string {
	params := make([]string, len(f.Params))
	for i, param := range f.Params {
		params[i] = fmt.Sprintf("%s %s", param.Typ, param)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "func %s @%s(%s) {\n", f.ReturnType, f.Name, strings.Join(params, ", "))
	for _, block := range f.Blocks {
		sb.WriteString(block.String())
	}
	sb.WriteString("}\n")
	return sb.String()
}

func (m *Module) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "; module %s\n", m.Name)
	for _, fn := range m.Funcs {
		sb.WriteString("\n")
		sb.WriteString(fn.String())
	}
	return sb.String()
}

func (p *Program) String() string {
	parts := make([]string, len(p.Modules))
	for i, module := range p.Modules {
		parts[i] = module.String()
	}
	return strings.Join(parts, "\n")
}

// Fingerprint hashes the textual form, so equal programs hash equally.
func (p *Program) Fingerprint() uint64 {
	return xxhash.Sum64String(p.String())
}
