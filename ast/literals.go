package ast

import (
	"fmt"
	"github.com/c0depwn/stacklang/constant"
	"github.com/c0depwn/stacklang/pkg/slices"
	"strings"
)

type BasicLiteral struct {
	expression
	V constant.Value
}

func (l *BasicLiteral) Value() constant.Value {
	return l.V
}

func (l *BasicLiteral) String() string {
	return l.V.String()
}

type ArrayLiteral struct {
	expression
	Elements []Expression
}

func (l *ArrayLiteral) String() string {
	return fmt.Sprintf("[%s]", joinExpressions(l.Elements))
}

// TupleLiteral "()" is the unit value.
type TupleLiteral struct {
	expression
	Elements []Expression
}

func (l *TupleLiteral) String() string {
	if len(l.Elements) == 1 {
		return fmt.Sprintf("(%s,)", l.Elements[0])
	}
	return fmt.Sprintf("(%s)", joinExpressions(l.Elements))
}

type StructLiteral struct {
	expression
	Identifier *Identifier
	Fields     []*FieldValue
}

func (l *StructLiteral) String() string {
	strs := slices.Map(l.Fields, func(f *FieldValue) string {
		return f.String()
	})
	return fmt.Sprintf("%s { %s }", l.Identifier, strings.Join(strs, ", "))
}

// Lookup returns the value given for the named field, nil if omitted.
func (l *StructLiteral) Lookup(name string) Expression {
	for _, f := range l.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return nil
}

type FieldValue struct {
	node
	Name  string
	Value Expression
}

func (f *FieldValue) String() string {
	return fmt.Sprintf("%s: %s", f.Name, f.Value)
}

func joinExpressions(exprs []Expression) string {
	strs := slices.Map(exprs, func(e Expression) string {
		return e.String()
	})
	return strings.Join(strs, ", ")
}
