package amd64

import (
	"github.com/c0depwn/stacklang/ast"
)

func (g *generator) statement(statement ast.Statement) {
	switch s := statement.(type) {
	case *ast.LetDeclaration:
		g.letDeclaration(s)
	case *ast.FuncDeclaration:
		g.funcDeclaration(s)
	case *ast.StructDeclaration:
		// layouts are computed on demand
	case *ast.Block:
		g.block(s)
	case *ast.IfStatement:
		g.ifStatement(s)
	case *ast.WhileStatement:
		g.whileStatement(s)
	case *ast.ReturnStatement:
		g.returnStatement(s)
	case *ast.DebugStatement:
		g.debugStatement(s)
	case *ast.ExpressionStatement:
		// expression statements simply ignore the result of the expression
		v := g.one(g.lower(s.Expression), s.Expression.Type())
		g.discard(v)(g.e)
	default:
		compilerError(statement, "unsupported statement %T", statement)
	}
}

// block releases the slots of all definitions within the block at its end.
func (g *generator) block(block *ast.Block) {
	entry := g.e.global
	for _, statement := range block.Statements {
		g.statement(statement)
	}
	g.e.drop(g.e.global - entry)
}

// letDeclaration pushes the value of the initializer, the pushed slots
// become the storage of the variable.
func (g *generator) letDeclaration(decl *ast.LetDeclaration) {
	g.trace.enter("let %s: depth %d", decl.Name(), g.e.local)
	defer g.trace.leave()

	if decl.Type() == nil {
		compilerError(decl, "missing type of '%s'", decl.Name())
	}

	v := g.one(g.lower(decl.Expression), decl.Type())
	g.materialize(v)(g.e)

	size := g.layout.Size(decl.Type())
	g.define(decl, g.e.global-size+1, g.frames.Top())
}

// ifStatement lowers the chain if-else if-else. Every condition
// jumps to the next branch if it is not met.
func (g *generator) ifStatement(stmt *ast.IfStatement) {
	end := g.e.newLabel()

	var current ast.Statement = stmt
	for current != nil {
		switch branch := current.(type) {
		case *ast.IfStatement:
			next := end
			if branch.Alternative != nil {
				next = g.e.newLabel()
			}
			g.condition(branch.Condition, next)
			g.block(branch.Consequence)
			if branch.Alternative != nil {
				g.e.jump(end)
				g.e.insert(next)
			}
			current = branch.Alternative
		case *ast.Block:
			g.block(branch)
			current = nil
		default:
			compilerError(current, "unexpected alternative %T", current)
		}
	}

	g.e.insert(end)
}

// whileStatement re-evaluates the condition before every iteration.
func (g *generator) whileStatement(stmt *ast.WhileStatement) {
	top := g.e.newLabel()
	end := g.e.newLabel()

	g.e.insert(top)
	g.condition(stmt.Condition, end)
	g.block(stmt.Body)
	g.e.jump(top)
	g.e.insert(end)
}
