package symbols

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/token"
)

const (
	lookupErrFmt   = "could not resolve identifier '%s'"
	registerErrFmt = "'%s' redeclared"
	reservedErrFmt = "'%s' is a reserved keyword"
)

type symbolPass struct {
	info    *Info
	current *Context

	nextContext int
	nextID      DefID
}

func newSymbolPass() *symbolPass {
	return &symbolPass{
		info: &Info{
			Contexts: make(map[ast.Node]*Context),
			Uses:     make(map[*ast.Identifier]ast.Declaration),
			Owners:   make(map[ast.Declaration]*Context),
			IDs:      make(map[ast.Declaration]DefID),
			Structs:  make(map[string]*ast.StructDeclaration),
		},
		current: nil,
	}
}

func (s *symbolPass) lookup(id *ast.Identifier) error {
	if token.IsReservedKeyword(id.Name) {
		return newSymbolErrorF(reservedErrFmt, id.Name).at(id.Position())
	}
	_, decl := s.current.lookupClimb(id.Name)
	if decl == nil {
		return newSymbolErrorF(lookupErrFmt, id.Name).at(id.Position())
	}
	s.info.Uses[id] = decl
	return nil
}

func (s *symbolPass) register(decl ast.Declaration) error {
	if token.IsReservedKeyword(decl.Name()) {
		return newSymbolErrorF(reservedErrFmt, decl.Name()).at(decl.Position())
	}
	if existing := s.current.register(decl); existing != nil {
		return newSymbolErrorF(registerErrFmt, decl.Name()).at(decl.Position())
	}
	s.nextID++
	s.info.IDs[decl] = s.nextID
	s.info.Owners[decl] = s.current
	return nil
}

func (s *symbolPass) startContext(node ast.Node) {
	// assert pre-condition
	if node == nil {
		panic("logic error: symbolPass: node cannot be nil")
	}

	ctx := newContext(s.nextContext, node, s.current)
	s.nextContext++
	s.info.Contexts[node] = ctx
	if s.current == nil {
		s.info.Root = ctx
	}
	s.current = ctx
}

func (s *symbolPass) endContext() {
	// assert pre-condition
	if s.current == nil {
		panic("logic error: endContext called before startContext")
	}

	s.current = s.current.parent
}
