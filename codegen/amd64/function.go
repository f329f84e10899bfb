package amd64

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/types"
)

func (g *generator) funcType(fDecl *ast.FuncDeclaration) types.Function {
	funcT, ok := fDecl.Type().(types.Function)
	if !ok {
		compilerError(fDecl, "missing type of function '%s'", fDecl.Name())
	}
	return funcT
}

func (g *generator) resultSlots(funcT types.Function) int {
	if types.IsAggregate(funcT.Result) {
		return g.layout.Size(funcT.Result)
	}
	return 0
}

// funcDeclaration compiles the function into its own procedure.
// Compilation of the enclosing frame resumes afterward.
func (g *generator) funcDeclaration(fDecl *ast.FuncDeclaration) {
	funcT := g.funcType(fDecl)
	enclosing := g.frames.Top()

	args := 0
	for _, p := range funcT.Params {
		args += g.layout.Size(p)
	}

	label := fmt.Sprintf("fn_%s_%d", fDecl.Name(), g.info.ID(fDecl))
	f := newFrame(fDecl, label, enclosing, g.e.global, g.resultSlots(funcT), args)
	g.funcs[g.info.ID(fDecl)] = f

	g.trace.enter("function %s: base %d, args %d, result %d, drift %t", fDecl.Name(), f.base, f.args, f.result, f.drift)
	defer g.trace.leave()

	// arguments are pushed right-to-left, the last one lands at the top
	next := f.defined + f.result + f.driftSlots() + 1
	for i := len(fDecl.Parameters) - 1; i >= 0; i-- {
		g.define(fDecl.Parameters[i], next, f)
		next += g.layout.Size(fDecl.Parameters[i].Type())
	}

	// prologue
	f.savedProc = g.e.begin(label)
	f.savedLocal, f.savedG = g.e.local, g.e.global
	g.frames.Push(f)

	g.e.push("rbp")
	g.e.mov("rbp", "rsp")
	g.e.local, g.e.global = 0, f.base

	g.block(fDecl.Body)

	// epilogue
	g.e.insert(f.ret)
	g.e.mov("rsp", "rbp")
	g.e.pop("rbp")
	g.e.ret()

	g.frames.Pop()
	g.e.resume(f.savedProc)
	g.e.local, g.e.global = f.savedLocal, f.savedG
}

// returnStatement leaves scalar results in rax and copies aggregate
// results into the return area of the frame.
func (g *generator) returnStatement(stmt *ast.ReturnStatement) {
	f := g.frames.Top()
	if f.fn == nil {
		compilerError(stmt, "return outside of function")
	}
	funcT := g.funcType(f.fn)

	if stmt.Expression != nil {
		if !funcT.Result.Equals(stmt.Expression.Type()) {
			compilerError(stmt, "cannot return %s from function returning %s", stmt.Expression.Type(), funcT.Result)
		}

		v := g.one(g.lower(stmt.Expression), funcT.Result)
		switch {
		case types.IsUnit(funcT.Result):
			g.discard(v)(g.e)
		case types.IsAggregate(funcT.Result):
			g.materialize(v)(g.e)
			first := f.resultSlot()
			for k := f.result - 1; k >= 0; k-- {
				g.e.pop("rcx")
				g.e.mov(slot("rbp", first+k), "rcx")
			}
		default:
			g.load(v)(g.e)
		}
	} else if !types.IsUnit(funcT.Result) {
		compilerError(stmt, "missing return value of type %s", funcT.Result)
	}

	g.e.jump(f.ret)
}

// call lowers a call of a user function:
//
//	reserve the return area
//	push the drift word
//	push the arguments right-to-left
//	call and remove drift and arguments
func (g *generator) call(expr *ast.CallExpression) []Value {
	ident, ok := expr.Function.(*ast.Identifier)
	if !ok {
		notImplemented(expr, "call of %s", expr.Function)
	}
	fDecl, ok := g.info.Lookup(ident).(*ast.FuncDeclaration)
	if !ok {
		compilerError(expr, "'%s' is not a function", ident.Name)
	}
	callee, ok := g.funcs[g.info.ID(fDecl)]
	if !ok {
		compilerError(expr, "function '%s' called before its definition", ident.Name)
	}
	funcT := g.funcType(fDecl)
	if len(funcT.Params) != len(expr.Arguments) {
		compilerError(expr, "incorrect number of arguments")
	}

	args := make([]Value, len(expr.Arguments))
	for i, arg := range expr.Arguments {
		args[i] = g.one(g.lower(arg), funcT.Params[i])
	}

	var drift func(c int) Code
	if callee.drift {
		drift = func(c int) Code { return g.drift(callee, c, expr) }
	}

	setup := func(e *emitter) {
		c := e.global
		e.reserve(callee.result)
		if drift != nil {
			drift(c)(e)
		}
		for i := len(args) - 1; i >= 0; i-- {
			g.materialize(args[i])(e)
		}
		e.callUser(callee.label, callee.args+callee.driftSlots())
	}

	switch {
	case types.IsUnit(funcT.Result):
		return []Value{{Setup: setup, Loc: None{}, T: funcT.Result}}
	case types.IsAggregate(funcT.Result):
		return []Value{{Setup: setup, Loc: Stack{Slots: callee.result}, T: funcT.Result}}
	default:
		return []Value{{Setup: setup, Loc: Acc{}, T: funcT.Result}}
	}
}
