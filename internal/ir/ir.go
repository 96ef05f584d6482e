// Package ir is the control-flow-graph form handed to the code generators.
// A function is a list of basic blocks; each finished block ends in exactly one
// terminator.
package ir

import "fmt"

type Type int

const (
	TypeNone Type = iota
	TypeI1
	TypeI32
	TypePtr
)

func (t Type) String() string {
	switch t {
	case TypeI1:
		return "i1"
	case TypeI32:
		return "i32"
	case TypePtr:
		return "ptr"
	}
	return "none"
}

type Op int

const (
	OpAlloca Op = iota
	OpLoad
	OpStore

	OpAdd
	OpSub
	OpMul
	OpSDiv
	OpSRem

	OpICmpEq
	OpICmpNe
	OpICmpSlt
	OpICmpSle
	OpICmpSgt
	OpICmpSge

	OpCall
)

var opNames = map[Op]string{
	OpAlloca:  "alloca",
	OpLoad:    "load",
	OpStore:   "store",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpSDiv:    "sdiv",
	OpSRem:    "srem",
	OpICmpEq:  "eq",
	OpICmpNe:  "ne",
	OpICmpSlt: "slt",
	OpICmpSle: "sle",
	OpICmpSgt: "sgt",
	OpICmpSge: "sge",
	OpCall:    "call",
}

func (op Op) String() string {
	if name, ok := opNames[op]; ok {
		return name
	}
	return fmt.Sprintf("Op(%d)", int(op))
}

func (op Op) IsCompare() bool {
	return op >= OpICmpEq && op <= OpICmpSge
}

func (op Op) IsArithmetic() bool {
	return op >= OpAdd && op <= OpSRem
}

type Value interface {
	ValueType() Type
	String() string
}

type Const struct {
	Typ   Type
	Value uint64
}

// Temp is the result of an instruction.
type Temp struct {
	ID  int
	Typ Type
}

// Slot is a stack allocation holding a value of type Elem.
type Slot struct {
	Name string
	Elem Type
}

// Param is an incoming argument of the enclosing function.
type Param struct {
	Name  string
	Index int
	Typ   Type
}

type FuncRef struct {
	Func *Func
}

func (c *Const) ValueType() Type   { return c.Typ }
func (t *Temp) ValueType() Type    { return t.Typ }
func (s *Slot) ValueType() Type    { return TypePtr }
func (p *Param) ValueType() Type   { return p.Typ }
func (f *FuncRef) ValueType() Type { return TypePtr }

func (c *Const) String() string {
	if c.Typ == TypeI1 {
		if c.Value != 0 {
			return "true"
		}
		return "false"
	}
	return fmt.Sprintf("%d", int32(c.Value))
}

func (t *Temp) String() string    { return fmt.Sprintf("%%t%d", t.ID) }
func (s *Slot) String() string    { return "%" + s.Name }
func (p *Param) String() string   { return "%" + p.Name }
func (f *FuncRef) String() string { return "@" + f.Func.Name }

type Instruction struct {
	Op Op
	// Typ is the allocated type for alloca, the loaded or stored type for
	// memory operations and the result type otherwise.
	Typ    Type
	Result Value
	Args   []Value
}

type Terminator interface {
	terminator()
	String() string
}

type Br struct {
	Target *BasicBlock
}

type CondBr struct {
	Cond Value
	Then *BasicBlock
	Else *BasicBlock
}

type Ret struct {
	Value Value
}

func (b *Br) terminator()     {}
func (b *CondBr) terminator() {}
func (r *Ret) terminator()    {}

type BasicBlock struct {
	Label        string
	Instructions []*Instruction
	Term         Terminator
}

func (b *BasicBlock) Terminated() bool {
	return b.Term != nil
}

type Func struct {
	Name       string
	Params     []*Param
	ReturnType Type
	Blocks     []*BasicBlock

	temps  int
	labels map[string]int
}

func NewFunc(name string, returnType Type, params ...*Param) *Func {
	return &Func{
		Name:       name,
		Params:     params,
		ReturnType: returnType,
		labels:     make(map[string]int),
	}
}

// NewBlock appends an empty block. Reused labels get a ".N" suffix.
func (f *Func) NewBlock(label string) *BasicBlock {
	n := f.labels[label]
	f.labels[label] = n + 1
	if n > 0 {
		label = fmt.Sprintf("%s.%d", label, n)
	}

	block := &BasicBlock{
		Label: label,
	}
	f.Blocks = append(f.Blocks, block)
	return block
}

func (f *Func) NewTemp(typ Type) *Temp {
	temp := &Temp{ID: f.temps, Typ: typ}
	f.temps++
	return temp
}

// Block returns the block labeled label, or nil.
func (f *Func) Block(label string) *BasicBlock {
	for _, block := range f.Blocks {
		if block.Label == label {
			return block
		}
	}
	return nil
}

// Module holds the functions lowered from one source unit.
type Module struct {
	Name  string
	Funcs []*Func
}

func (m *Module) Func(name string) *Func {
	for _, fn := range m.Funcs {
		if fn.Name == name {
			return fn
		}
	}
	return nil
}

type Program struct {
	Modules []*Module
}
