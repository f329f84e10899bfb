package semantics

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/symbols"
	"github.com/c0depwn/stacklang/token"
	"github.com/c0depwn/stacklang/types"
)

// Error is returned when a well-typed program violates a semantic rule.
type Error struct {
	Pos token.Position
	Msg string
}

func (e *Error) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
	}
	return e.Msg
}

const (
	errMissingReturnFmt = "missing return in function '%s'"
	errReturnOutside    = "return outside of function"
	errRecursiveFmt     = "struct '%s' contains itself"
)

// Analyze ensures that the program adheres to the following rules:
//   - all non-unit functions return on every path
//   - return statements only appear within functions
//   - structs do not contain themselves by value
//
// The file must be type checked.
func Analyze(f *ast.File, info symbols.Info) error {
	for _, stmt := range f.Statements {
		if decl, ok := stmt.(*ast.StructDeclaration); ok {
			if err := ensureNotRecursive(decl); err != nil {
				return err
			}
		}
	}

	var (
		funcs []*ast.FuncDeclaration
		stack []ast.Node
		err   error
	)

	ast.Inspect(f, func(n ast.Node) bool {
		if err != nil {
			return false
		}
		if n == nil {
			// pop
			popped := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if _, ok := popped.(*ast.FuncDeclaration); ok {
				funcs = funcs[:len(funcs)-1]
			}
			return true
		}

		// push
		stack = append(stack, n)

		switch node := n.(type) {
		case *ast.FuncDeclaration:
			funcs = append(funcs, node)
			err = ensureReturns(node)
		case *ast.ReturnStatement:
			if len(funcs) == 0 {
				err = &Error{Pos: node.Position(), Msg: errReturnOutside}
			}
		}

		return true
	})

	return err
}

func ensureReturns(fDecl *ast.FuncDeclaration) error {
	funcType, ok := fDecl.Type().(types.Function)
	if !ok {
		panic("not a function")
	}

	// dont care about unit funcs
	if types.IsUnit(funcType.Result) {
		return nil
	}

	if returns(fDecl.Body) {
		return nil
	}
	return &Error{Pos: fDecl.Position(), Msg: fmt.Sprintf(errMissingReturnFmt, fDecl.Name())}
}

// returns reports whether every path through stmt ends in a return.
func returns(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.Block:
		for _, inner := range s.Statements {
			if returns(inner) {
				return true
			}
		}
		return false
	case *ast.IfStatement:
		if s.Alternative == nil {
			return false
		}
		return returns(s.Consequence) && returns(s.Alternative)
	default:
		// loops may not execute at all
		return false
	}
}

func ensureNotRecursive(decl *ast.StructDeclaration) error {
	root, ok := decl.T.(*types.Struct)
	if !ok {
		panic("struct declaration without type")
	}

	var visit func(t ast.Type, path map[*types.Struct]bool) bool
	visit = func(t ast.Type, path map[*types.Struct]bool) bool {
		switch tt := t.(type) {
		case *types.Struct:
			if path[tt] {
				return tt == root
			}
			path[tt] = true
			defer delete(path, tt)
			for _, field := range tt.Fields {
				if visit(field.T, path) {
					return true
				}
			}
		case types.Tuple:
			for _, e := range tt.Elements {
				if visit(e, path) {
					return true
				}
			}
		case types.Array:
			return visit(tt.Element, path)
		}
		return false
	}

	if visit(root, map[*types.Struct]bool{}) {
		return &Error{Pos: decl.Position(), Msg: fmt.Sprintf(errRecursiveFmt, decl.Name())}
	}
	return nil
}
