package symbols

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/constant"
	"github.com/c0depwn/stacklang/token"
)

func newFile(stmts ...ast.Statement) *ast.File {
	return &ast.File{Statements: stmts}
}

func newBasicT(id string) *ast.TypeName {
	return &ast.TypeName{Name: id}
}

func newIdent(name string) *ast.Identifier {
	return &ast.Identifier{Name: name}
}

func newLit(v any) *ast.BasicLiteral {
	return &ast.BasicLiteral{V: constant.Make(v)}
}

func newLet(id string, expr ast.Expression) *ast.LetDeclaration {
	return &ast.LetDeclaration{
		Identifier: newIdent(id),
		Expression: expr,
	}
}

func newDebug(expr ast.Expression) *ast.DebugStatement {
	return &ast.DebugStatement{Expression: expr}
}

func newBlock(stmts ...ast.Statement) *ast.Block {
	return &ast.Block{Statements: stmts}
}

func withStatements(stmts ...ast.Statement) fOpt {
	return func(decl *ast.FuncDeclaration) {
		decl.Body.Statements = stmts
	}
}

func withParam(id string, t ast.TypeIdentifier) fOpt {
	return func(decl *ast.FuncDeclaration) {
		decl.Parameters = append(decl.Parameters, &ast.Param{
			Identifier: newIdent(id),
			TypeID:     t,
		})
	}
}

type fOpt func(*ast.FuncDeclaration)

func newFunc(id string, opts ...fOpt) *ast.FuncDeclaration {
	f := &ast.FuncDeclaration{
		Identifier: newIdent(id),
		Parameters: make([]*ast.Param, 0),
		Body:       &ast.Block{},
	}
	for _, o := range opts {
		o(f)
	}
	return f
}

func newCall(f string, args ...ast.Expression) *ast.CallExpression {
	return &ast.CallExpression{Function: newIdent(f), Arguments: args}
}

var uintT = newBasicT(token.Uint)
