package symbols

import (
	"github.com/c0depwn/stacklang/ast"
)

// Analyze all symbols contained within the [*ast.File].
// The returned Info contains all declarations enclosed within
// their Context and the resolution of every referencing identifier.
//
// Analyze will terminate on the first error it encounters.
//
// Names must be declared before they are used. Struct declarations
// are the only exception, they are registered before anything else.
// A function's name is registered before its parameters and body are
// resolved, which allows recursion. A let declaration is registered
// after its expression, e.g. let x = x; is illegal.
func Analyze(f *ast.File) (Info, error) {

	// initialize pass
	pass := newSymbolPass()

	// program context
	pass.startContext(f)
	defer pass.endContext()

	if err := registerStructs(pass, f); err != nil {
		return Info{}, err
	}

	if err := resolve(pass, f); err != nil {
		return Info{}, err
	}

	return *pass.info, nil
}

func registerStructs(pass *symbolPass, file *ast.File) error {
	for _, stmt := range file.Statements {
		decl, ok := stmt.(*ast.StructDeclaration)
		if !ok {
			continue
		}
		if err := pass.register(decl); err != nil {
			return err
		}
		pass.info.Structs[decl.Name()] = decl
	}
	return nil
}

func resolve(pass *symbolPass, file *ast.File) error {
	var (
		nodeStack []ast.Node
		err       error
	)

	ast.Inspect(file, func(n ast.Node) bool {
		// signal early termination on error
		if err != nil {
			return false
		}

		// post-traversal
		if n == nil {
			poppedNode := nodeStack[len(nodeStack)-1]
			nodeStack = nodeStack[:len(nodeStack)-1]

			switch node := poppedNode.(type) {
			case *ast.LetDeclaration:
				err = pass.register(node)
			case *ast.Block, *ast.FuncDeclaration:
				pass.endContext()
			}
			return true
		}

		// add to traversal stack
		nodeStack = append(nodeStack, n)

		switch node := n.(type) {
		case *ast.FuncDeclaration:
			// registered in the enclosing context
			if err = pass.register(node); err != nil {
				return false
			}
			pass.startContext(node)
		case *ast.Block:
			pass.startContext(node)
		case *ast.Param:
			err = pass.register(node)
		case *ast.Identifier:
			// Try to resolve encountered identifiers.
			// This ensures that no unknown identifiers are used
			err = pass.lookup(node)
		}

		return true
	})

	return err
}
