package ast

import (
	"fmt"
	"github.com/c0depwn/stacklang/pkg/slices"
	"strings"
)

type Declaration interface {
	Node
	Name() string
	Type() Type
}

type declaration struct {
}

// LetDeclaration = "let" Identifier [ ":" TypeID ] "=" Expression
type LetDeclaration struct {
	statement
	declaration
	Identifier *Identifier
	TypeID     TypeIdentifier // optional
	Expression Expression

	// The Type information is available after the type checking pass.
	T Type
}

func (d *LetDeclaration) Name() string {
	return d.Identifier.Name
}

func (d *LetDeclaration) String() string {
	if d.TypeID == nil {
		return fmt.Sprintf("let %s = %s", d.Identifier, d.Expression)
	}
	return fmt.Sprintf("let %s: %s = %s", d.Identifier, d.TypeID, d.Expression)
}

func (d *LetDeclaration) Type() Type {
	return d.T
}

type FuncDeclaration struct {
	statement
	declaration
	Identifier *Identifier
	Parameters []*Param
	Result     TypeIdentifier // nil for unit functions
	Body       *Block

	T Type
}

func (d *FuncDeclaration) Name() string {
	return d.Identifier.Name
}

func (d *FuncDeclaration) String() string {
	sb := &strings.Builder{}

	params := slices.Map(d.Parameters, func(p *Param) string {
		return p.String()
	})

	sb.WriteString(fmt.Sprintf("fn %s(%s) ", d.Identifier, strings.Join(params, ", ")))
	if d.Result != nil {
		sb.WriteString(fmt.Sprintf("-> %s ", d.Result))
	}
	sb.WriteString(d.Body.String())

	return sb.String()
}

func (d *FuncDeclaration) Type() Type {
	return d.T
}

type Param struct {
	node
	declaration
	Identifier *Identifier
	TypeID     TypeIdentifier

	T Type
}

func (d *Param) Name() string {
	return d.Identifier.Name
}

func (d *Param) String() string {
	return fmt.Sprintf("%s: %s", d.Identifier, d.TypeID)
}

func (d *Param) Type() Type {
	return d.T
}

// StructDeclaration = "struct" Identifier "{" Field { "," Field } "}"
type StructDeclaration struct {
	statement
	declaration
	Identifier *Identifier
	Fields     []*Field

	T Type
}

func (d *StructDeclaration) Name() string {
	return d.Identifier.Name
}

func (d *StructDeclaration) String() string {
	fields := slices.Map(d.Fields, func(f *Field) string {
		return f.String()
	})
	return fmt.Sprintf("struct %s { %s }", d.Identifier, strings.Join(fields, ", "))
}

func (d *StructDeclaration) Type() Type {
	return d.T
}

// Field of a StructDeclaration, optional fields may be
// omitted in literals.
type Field struct {
	node
	Name     string
	TypeID   TypeIdentifier
	Optional bool
}

func (f *Field) String() string {
	if f.Optional {
		return fmt.Sprintf("%s?: %s", f.Name, f.TypeID)
	}
	return fmt.Sprintf("%s: %s", f.Name, f.TypeID)
}
