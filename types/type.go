package types

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/constant"
	"github.com/c0depwn/stacklang/token"
)

// FromBasic creates an [ast.Type] from the supplied [*ast.TypeName]
// if it names one of u, i, bool or str.
func FromBasic(identifier *ast.TypeName) (ast.Type, bool) {
	switch identifier.Name {
	case token.Uint:
		return NewUint(), true
	case token.Int:
		return NewInt(), true
	case token.Bool:
		return NewBool(), true
	case token.String:
		return NewString(), true
	default:
		return nil, false
	}
}

// FromTypeIdentifier converts an [ast.TypeIdentifier] to a specific [ast.Type].
// Struct names are looked up in structs. A nil identifier is the unit type.
func FromTypeIdentifier(id ast.TypeIdentifier, structs map[string]*Struct) (ast.Type, error) {
	if id == nil {
		return NewUnit(), nil
	}

	switch t := id.(type) {
	case *ast.TypeName:
		if basic, ok := FromBasic(t); ok {
			return basic, nil
		}
		if s, ok := structs[t.Name]; ok {
			return s, nil
		}
		return nil, newTypeError(fmt.Sprintf("unknown type '%s'", t.Name)).at(t.Position())
	case *ast.TupleType:
		if len(t.Elements) == 0 {
			return NewUnit(), nil
		}
		elems := make([]ast.Type, len(t.Elements))
		for i, e := range t.Elements {
			elemT, err := FromTypeIdentifier(e, structs)
			if err != nil {
				return nil, err
			}
			elems[i] = elemT
		}
		return NewTuple(elems...), nil
	case *ast.ArrayType:
		elemT, err := FromTypeIdentifier(t.ElementType, structs)
		if err != nil {
			return nil, err
		}
		if t.Len == 0 {
			return nil, newTypeError("zero length array").at(t.Position())
		}
		return NewArray(t.Len, elemT), nil
	default:
		panic(fmt.Sprintf("unknown type identifier: %+v", id))
	}
}

// FromConstant returns the natural type of a literal, non-negative
// integers are u, negative integers are i.
func FromConstant(c constant.Value) ast.Type {
	switch c.Type() {
	case constant.Int:
		if constant.IsNegative(c) {
			return NewInt()
		}
		return NewUint()
	case constant.Bool:
		return NewBool()
	case constant.String:
		return NewString()
	default:
		panic(fmt.Sprintf("unknown constant value type: %+v", c))
	}
}
