package types

import "strings"

type Kind int

const (
	KindBool Kind = iota
	KindInt
	KindCallable
)

type Type interface {
	Kind() Kind
	String() string
}

type BoolType struct{}

func (BoolType) Kind() Kind     { return KindBool }
func (BoolType) String() string { return "bool" }

// IntType is the 32-bit signed integer.
type IntType struct{}

func (IntType) Kind() Kind     { return KindInt }
func (IntType) String() string { return "int" }

var (
	Bool Type = BoolType{}
	Int  Type = IntType{}
)

type CallableType struct {
	Return Type
	Params []Type
}

func NewCallable(ret Type, params ...Type) *CallableType {
	return &CallableType{
		Return: ret,
		Params: params,
	}
}

func (*CallableType) Kind() Kind { return KindCallable }

func (c *CallableType) String() string {
	params := make([]string, len(c.Params))
	for i, param := range c.Params {
		params[i] = typeString(param)
	}
	return typeString(c.Return) + "(" + strings.Join(params, ", ") + ")"
}

func typeString(t Type) string {
	if t == nil {
		return "<none>"
	}
	return t.String()
}

// Equal reports structural equality. A missing type equals nothing.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return false
	}

	if a.Kind() != b.Kind() {
		return false
	}

	if a.Kind() != KindCallable {
		return true
	}

	ca, ok := a.(*CallableType)
	if !ok {
		return false
	}
	cb, ok := b.(*CallableType)
	if !ok {
		return false
	}

	if !Equal(ca.Return, cb.Return) || len(ca.Params) != len(cb.Params) {
		return false
	}
	for i := range ca.Params {
		if !Equal(ca.Params[i], cb.Params[i]) {
			return false
		}
	}

	return true
}

// Lookup resolves a type keyword of the source language.
func Lookup(name string) (Type, bool) {
	switch name {
	case "bool":
		return Bool, true
	case "int":
		return Int, true
	}

	return nil, false
}
