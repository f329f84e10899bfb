package types

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	ext "github.com/c0depwn/stacklang/pkg/slices"
	"strings"
)

// Uint is the unsigned word type "u".
type Uint struct{}

func NewUint() Uint { return Uint{} }

func (Uint) String() string { return "u" }

func (Uint) Equals(some ast.Type) bool {
	_, ok := some.(Uint)
	return ok
}

func (u Uint) Underlying() ast.Type { return u }

// Int is the signed word type "i".
type Int struct{}

func NewInt() Int { return Int{} }

func (i Int) String() string {
	return "i"
}

func (i Int) Equals(some ast.Type) bool {
	_, ok := some.(Int)
	return ok
}

func (i Int) Underlying() ast.Type {
	return i
}

type Bool struct{}

func NewBool() Bool {
	return Bool{}
}

func (b Bool) String() string {
	return "bool"
}

func (b Bool) Equals(some ast.Type) bool {
	_, ok := some.(Bool)
	return ok
}

func (b Bool) Underlying() ast.Type {
	return b
}

// String is a pointer to a length-prefixed byte sequence.
type String struct{}

func NewString() String {
	return String{}
}

func (s String) String() string {
	return "str"
}

func (s String) Equals(some ast.Type) bool {
	_, ok := some.(String)
	return ok
}

func (s String) Underlying() ast.Type {
	return s
}

type Array struct {
	Element ast.Type
	Length  uint64
}

func NewArray(len uint64, elem ast.Type) Array {
	return Array{Element: elem, Length: len}
}

func (a Array) String() string {
	return fmt.Sprintf("[%s; %d]", a.Element.String(), a.Length)
}

func (a Array) Equals(some ast.Type) bool {
	other, ok := some.(Array)
	if !ok {
		return false
	}
	if a.Length != other.Length {
		return false
	}
	return other.Element.Equals(a.Element)
}

func (a Array) Underlying() ast.Type {
	return a
}

type Tuple struct {
	Elements []ast.Type
}

func NewTuple(elems ...ast.Type) Tuple {
	return Tuple{Elements: elems}
}

func (t Tuple) String() string {
	str := ext.Map(t.Elements, func(e ast.Type) string { return e.String() })
	return fmt.Sprintf("(%s)", strings.Join(str, ", "))
}

func (t Tuple) Equals(some ast.Type) bool {
	other, ok := some.(Tuple)
	if !ok || len(other.Elements) != len(t.Elements) {
		return false
	}
	for i := range t.Elements {
		if !t.Elements[i].Equals(other.Elements[i]) {
			return false
		}
	}
	return true
}

func (t Tuple) Underlying() ast.Type {
	return t
}

// Field of a Struct.
type Field struct {
	Name     string
	T        ast.Type
	Optional bool
}

// Struct is a named record type. Struct types are compared by identity,
// every declaration creates exactly one *Struct.
type Struct struct {
	Name   string
	Fields []Field

	// Declared is set once the fields have been resolved.
	Declared bool
}

func NewStruct(name string, fields ...Field) *Struct {
	return &Struct{Name: name, Fields: fields, Declared: true}
}

func (s *Struct) String() string {
	return s.Name
}

func (s *Struct) Equals(some ast.Type) bool {
	other, ok := some.(*Struct)
	return ok && other == s
}

func (s *Struct) Underlying() ast.Type {
	return s
}

// Field returns the named field and its position, -1 if it does not exist.
func (s *Struct) Field(name string) (Field, int) {
	for i, f := range s.Fields {
		if f.Name == name {
			return f, i
		}
	}
	return Field{}, -1
}

type Function struct {
	Params []ast.Type
	Result ast.Type
}

func NewFunction(res ast.Type, params []ast.Type) Function {
	return Function{Params: params, Result: res}
}

func (f Function) String() string {
	str := ext.Map(f.Params, func(p ast.Type) string { return p.String() })
	if IsUnit(f.Result) {
		return fmt.Sprintf("fn(%s)", strings.Join(str, ", "))
	}
	return fmt.Sprintf("fn(%s) -> %s", strings.Join(str, ", "), f.Result.String())
}

func (f Function) Equals(some ast.Type) bool {
	other, ok := some.(Function)
	if !ok {
		return false
	}
	return other.String() == f.String()
}

func (f Function) Underlying() ast.Type {
	return f
}

// Unit is an [ast.Type] which represents the absence of a value.
type Unit struct{}

func NewUnit() Unit {
	return Unit{}
}

func (v Unit) String() string {
	return "()"
}

func (v Unit) Equals(some ast.Type) bool {
	_, ok := some.(Unit)
	return ok
}

func (v Unit) Underlying() ast.Type {
	return v
}

func IsUnit(t ast.Type) bool {
	_, ok := t.(Unit)
	return ok
}

// IsInteger reports whether t is u or i.
func IsInteger(t ast.Type) bool {
	switch t.(type) {
	case Uint, Int:
		return true
	}
	return false
}

// IsSigned reports whether t is i.
func IsSigned(t ast.Type) bool {
	_, ok := t.(Int)
	return ok
}

// IsAggregate reports whether values of t occupy more than
// a single word-sized scalar, i.e. structs, tuples and arrays.
func IsAggregate(t ast.Type) bool {
	switch t.(type) {
	case *Struct, Tuple, Array:
		return true
	}
	return false
}

func As[T ast.Type](t ast.Type) T {
	assertedT, ok := t.(T)
	if !ok {
		panic(fmt.Errorf("expected %T, got %T", *new(T), t))
	}
	return assertedT
}
