package symbols

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
)

// IsGlobal reports whether the supplied Context
// is the outermost Context.
func IsGlobal(ctx *Context) bool {
	return ctx.parent == nil
}

// Context represents a lexical scope. Any [ast.Node] implementing [ast.Declaration]
// is registered into the appropriate Context while traversing the AST.
// Members are kept in registration order.
type Context struct {
	id           int
	node         ast.Node
	parent       *Context
	children     []*Context
	members      []ast.Declaration
	declarations map[string]ast.Declaration
}

func newContext(id int, node ast.Node, parent *Context) *Context {
	c := new(Context)
	c.id = id
	c.node = node
	c.declarations = make(map[string]ast.Declaration)
	c.parent = parent

	if parent != nil {
		parent.children = append(parent.children, c)
	}

	return c
}

func (c *Context) ID() int              { return c.id }
func (c *Context) Parent() *Context     { return c.parent }
func (c *Context) Children() []*Context { return c.children }

// Node returns the node which opened the Context, one of
// *ast.File, *ast.FuncDeclaration or *ast.Block.
func (c *Context) Node() ast.Node { return c.node }

// Get returns the [ast.Declaration] with the supplied name.
// If no [ast.Declaration] is found in the current Context or
// any of its ancestors, nil is returned.
func (c *Context) Get(name string) (*Context, ast.Declaration) {
	return c.lookupClimb(name)
}

// MustGet wraps Get and panics if no [ast.Declaration] is found.
func (c *Context) MustGet(name string) (*Context, ast.Declaration) {
	if ctx, decl := c.Get(name); decl != nil {
		return ctx, decl
	}
	panic(fmt.Errorf("missing entity for name %s", name))
}

// Declarations retrieves all [ast.Declaration] of the Context
// in the order they were registered.
func (c *Context) Declarations() []ast.Declaration {
	declarations := make([]ast.Declaration, len(c.members))
	copy(declarations, c.members)
	return declarations
}

// AllDeclarations retrieves all [ast.Declaration] in the current Context and
// all of its children, depth first.
func (c *Context) AllDeclarations() []ast.Declaration {
	decls := c.Declarations()
	for _, child := range c.children {
		decls = append(decls, child.AllDeclarations()...)
	}
	return decls
}

// lookup checks if the name is defined in the current Context.
// If the name is not found, nil is returned.
func (c *Context) lookup(name string) ast.Declaration {
	if decl, ok := c.declarations[name]; ok {
		return decl
	}
	return nil
}

// lookupClimb checks if the supplied name is defined in the current Context
// or any of its ancestors.
func (c *Context) lookupClimb(name string) (*Context, ast.Declaration) {
	current := c
	for current != nil {
		if decl := current.lookup(name); decl != nil {
			return current, decl
		}
		current = current.parent
	}
	return nil, nil
}

// register the given declaration in the current Context.
// If the name already exists within this or any parent Context,
// the existing declaration is returned.
func (c *Context) register(decl ast.Declaration) ast.Declaration {
	if _, existingDecl := c.lookupClimb(decl.Name()); existingDecl != nil {
		return existingDecl
	}
	c.declarations[decl.Name()] = decl
	c.members = append(c.members, decl)
	return nil
}
