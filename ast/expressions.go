package ast

import (
	"fmt"
	"github.com/c0depwn/stacklang/pkg/slices"
	"strings"
)

type Expression interface {
	Node
	Type() Type
	// SetType attaches the type information, called by the type checker.
	SetType(Type)
	aExpression()
}

type expression struct {
	node

	// The Type information is available after the type checking pass.
	T Type
}

func (e *expression) Type() Type     { return e.T }
func (e *expression) SetType(t Type) { e.T = t }
func (*expression) aExpression()     {}

// Identifier [a-zA-Z_].+[a-zA-Z0-9_].*
type Identifier struct {
	expression
	Name string
}

func (i *Identifier) String() string {
	return i.Name
}

// InfixExpression = Left Operator Right
type InfixExpression struct {
	expression
	Operator    string
	Left, Right Expression
}

func (ie *InfixExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", ie.Left, ie.Operator, ie.Right)
}

// PrefixExpression = Operator(Right)
type PrefixExpression struct {
	expression
	Operator string
	Right    Expression
}

func (pe *PrefixExpression) String() string {
	return fmt.Sprintf("%s(%s)", pe.Operator, pe.Right)
}

// PostfixExpression = Left ("++" | "--")
type PostfixExpression struct {
	expression
	Operator string
	Left     Expression
}

func (pe *PostfixExpression) String() string {
	return fmt.Sprintf("%s%s", pe.Left, pe.Operator)
}

// Assignment = Left ("=" | "+=" | ...) Value
// Assignments are expressions of the unit type.
type Assignment struct {
	expression
	Operator string
	Left     Expression
	Value    Expression
}

func (a *Assignment) String() string {
	return fmt.Sprintf("%s %s %s", a.Left, a.Operator, a.Value)
}

// IndexExpression = Left[Index]
type IndexExpression struct {
	expression
	Left  Expression
	Index Expression
}

func (ie *IndexExpression) String() string {
	return fmt.Sprintf("%s[%s]", ie.Left, ie.Index)
}

// PropertyExpression = Left "." Property
// Property is a field name or a tuple index.
type PropertyExpression struct {
	expression
	Left     Expression
	Property string
}

func (pe *PropertyExpression) String() string {
	return fmt.Sprintf("%s.%s", pe.Left, pe.Property)
}

// CallExpression = Function(Arguments...)
type CallExpression struct {
	expression
	Function  Expression
	Arguments []Expression
}

func (ce *CallExpression) String() string {
	strs := slices.Map(ce.Arguments, func(e Expression) string {
		return e.String()
	})
	return fmt.Sprintf(
		"%s(%s)",
		ce.Function,
		strings.Join(strs, ", "),
	)
}
