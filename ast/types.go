package ast

import (
	"fmt"
	"github.com/c0depwn/stacklang/pkg/slices"
	"strings"
)

// Type represents a type within the language.
// All types must implement the Type interface.
type Type interface {
	// String provides a string representation of a type.
	String() string

	// Equals must return true if the supplied Type
	// matches the callee. Additionally, equality
	// requires having the same Underlying Type.
	// Other constraints can be imposed by the
	// specific Type.
	Equals(Type) bool

	// Underlying returns the wrapped Type.
	// If there is no underlying Type the Type itself
	// must be returned.
	Underlying() Type
}

// TypeIdentifier = TypeName | TupleType | ArrayType
type TypeIdentifier interface {
	Node
	aTypeIdentifier()
}

type typeIdentifier struct {
	node
}

func (typeIdentifier) aTypeIdentifier() {}

// TypeName = "u" | "i" | "bool" | "str" | StructName
type TypeName struct {
	typeIdentifier
	Name string
}

func (tn *TypeName) String() string {
	return tn.Name
}

// TupleType = "(" [ TypeIdentifier { "," TypeIdentifier } ] ")"
type TupleType struct {
	typeIdentifier
	Elements []TypeIdentifier
}

func (t *TupleType) String() string {
	strs := slices.Map(t.Elements, func(e TypeIdentifier) string {
		return e.String()
	})
	return fmt.Sprintf("(%s)", strings.Join(strs, ", "))
}

// ArrayType = "[" ElementType ";" Len "]"
type ArrayType struct {
	typeIdentifier
	Len         uint64
	ElementType TypeIdentifier
}

func (t *ArrayType) String() string {
	return fmt.Sprintf("[%s; %d]", t.ElementType, t.Len)
}
