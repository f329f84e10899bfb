package symbols

import (
	"github.com/c0depwn/stacklang/ast"
)

// DefID is a stable identifier of a declaration, assigned in
// registration order starting at 1.
type DefID int

type Info struct {
	// Contexts maps any context opening [ast.Node] to its *Context.
	//
	// The following nodes define their own Context:
	// 	- *ast.File
	//	- *ast.FuncDeclaration (parameters)
	//	- *ast.Block (includes if and while bodies)
	Contexts map[ast.Node]*Context

	// Uses maps every referencing identifier to its declaration.
	Uses map[*ast.Identifier]ast.Declaration

	// Owners maps every declaration to the Context it is registered in.
	Owners map[ast.Declaration]*Context

	// IDs maps every declaration to its DefID.
	IDs map[ast.Declaration]DefID

	// Structs contains all struct declarations by name.
	Structs map[string]*ast.StructDeclaration

	Root *Context
}

// DefinedBy returns the context defined by the supplied [ast.Node] or
// nil if the [ast.Node] does not define a new Context.
func (i Info) DefinedBy(n ast.Node) *Context {
	c, ok := i.Contexts[n]
	if !ok {
		return nil
	}
	return c
}

// Lookup returns the declaration referenced by identifier, nil if
// the identifier is not a resolved reference.
func (i Info) Lookup(identifier *ast.Identifier) ast.Declaration {
	return i.Uses[identifier]
}

// OwnerOf returns the Context the declaration belongs to.
func (i Info) OwnerOf(decl ast.Declaration) *Context {
	return i.Owners[decl]
}

// ID returns the DefID of decl, 0 if decl is unknown.
func (i Info) ID(decl ast.Declaration) DefID {
	return i.IDs[decl]
}

// EnclosingFunc returns the nearest function whose body encloses ctx.
// nil is returned for contexts of the program itself.
func (i Info) EnclosingFunc(ctx *Context) *ast.FuncDeclaration {
	for current := ctx; current != nil; current = current.parent {
		if f, ok := current.node.(*ast.FuncDeclaration); ok {
			return f
		}
	}
	return nil
}

// FuncOf returns the function owning decl, nil for program-level declarations.
// A function declaration is owned by its enclosing function, not by itself.
func (i Info) FuncOf(decl ast.Declaration) *ast.FuncDeclaration {
	return i.EnclosingFunc(i.Owners[decl])
}
