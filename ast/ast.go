package ast

import (
	"github.com/c0depwn/stacklang/pkg/slices"
	"github.com/c0depwn/stacklang/token"
	"strings"
)

type Node interface {
	// Position returns the position of the first token
	// of the Node.
	Position() token.Position
	String() string

	// prevent external implementations
	aNode()
}

type node struct {
	p token.Position
}

func (n *node) SetPosition(p token.Position) { n.p = p }
func (n *node) Position() token.Position     { return n.p }
func (*node) aNode()                         {}

// File is the root of a program. Its statements are executed
// in order, struct and function definitions are hoisted by the
// symbol pass only as far as declare-before-use allows.
type File struct {
	node
	Name       string
	Statements []Statement

	// Simplified is set once the simplify pass rewrote the tree.
	Simplified bool
	// Checked is set once the tree is fully annotated with types.
	Checked bool
}

func (file *File) String() string {
	str := slices.Map(file.Statements, func(s Statement) string {
		return terminate(s)
	})
	return strings.Join(str, "\n")
}

// terminate appends the ';' for statements which require it.
func terminate(s Statement) string {
	switch s.(type) {
	case *Block, *FuncDeclaration, *StructDeclaration, *IfStatement, *WhileStatement:
		return s.String()
	default:
		return s.String() + ";"
	}
}
