package symbols

import (
	"errors"
	"github.com/c0depwn/stacklang/ast"
	"testing"
)

func TestAnalyze(t *testing.T) {
	cases := []struct {
		name   string
		f      *ast.File
		expect error
	}{
		{
			// let x = 1;
			// let x = 2;
			name:   "redeclared",
			f:      newFile(newLet("x", newLit(1)), newLet("x", newLit(2))),
			expect: newSymbolErrorF(registerErrFmt, "x"),
		},
		{
			// debug y;
			name:   "undefined",
			f:      newFile(newDebug(newIdent("y"))),
			expect: newSymbolErrorF(lookupErrFmt, "y"),
		},
		{
			// debug x;
			// let x = 1;
			name:   "use before declaration",
			f:      newFile(newDebug(newIdent("x")), newLet("x", newLit(1))),
			expect: newSymbolErrorF(lookupErrFmt, "x"),
		},
		{
			// let x = x;
			name:   "self reference",
			f:      newFile(newLet("x", newIdent("x"))),
			expect: newSymbolErrorF(lookupErrFmt, "x"),
		},
		{
			// let while = 1;
			name:   "reserved",
			f:      newFile(newLet("while", newLit(1))),
			expect: newSymbolErrorF(reservedErrFmt, "while"),
		},
		{
			// { let x = 1; }
			// debug x;
			name:   "block scoped",
			f:      newFile(newBlock(newLet("x", newLit(1))), newDebug(newIdent("x"))),
			expect: newSymbolErrorF(lookupErrFmt, "x"),
		},
		{
			// fn f(a: u) { debug f(a); }
			name: "recursion",
			f: newFile(newFunc("f",
				withParam("a", uintT),
				withStatements(newDebug(newCall("f", newIdent("a")))),
			)),
		},
		{
			// fn f(a: u) {} fn g(a: u) {}
			name: "sibling parameters",
			f: newFile(
				newFunc("f", withParam("a", uintT)),
				newFunc("g", withParam("a", uintT)),
			),
		},
	}

	for _, c := range cases {
		_, err := Analyze(c.f)
		if c.expect == nil {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", c.name, err)
			}
			continue
		}
		if !errors.Is(err, c.expect) {
			t.Errorf("%s: expected '%v', got '%v'", c.name, c.expect, err)
		}
	}
}

func TestAnalyze_Info(t *testing.T) {
	// let x = 1;
	// fn f(a: u) {
	//     let y = a;
	//     fn g() { debug x + y; }
	// }
	x := newLet("x", newLit(1))
	aRef := newIdent("a")
	y := newLet("y", aRef)
	xRef, yRef := newIdent("x"), newIdent("y")
	g := newFunc("g", withStatements(newDebug(&ast.InfixExpression{Operator: "+", Left: xRef, Right: yRef})))
	f := newFunc("f", withParam("a", uintT), withStatements(y, g))
	file := newFile(x, f)

	info, err := Analyze(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.Lookup(xRef) != x || info.Lookup(yRef) != y || info.Lookup(aRef) != f.Parameters[0] {
		t.Fatalf("identifiers resolved to the wrong declarations")
	}

	if info.FuncOf(x) != nil {
		t.Errorf("x must be program-level")
	}
	if info.FuncOf(f) != nil {
		t.Errorf("f must be owned by the program")
	}
	if info.FuncOf(y) != f || info.FuncOf(f.Parameters[0]) != f {
		t.Errorf("y and a must be owned by f")
	}
	if info.FuncOf(g) != f {
		t.Errorf("g must be owned by f")
	}
	if info.EnclosingFunc(info.DefinedBy(g.Body)) != g {
		t.Errorf("g body must be enclosed by g")
	}

	// ids follow registration order
	if !(info.ID(x) < info.ID(f) && info.ID(f) < info.ID(f.Parameters[0]) && info.ID(y) < info.ID(g)) {
		t.Errorf("unexpected id order x=%d f=%d a=%d y=%d g=%d",
			info.ID(x), info.ID(f), info.ID(f.Parameters[0]), info.ID(y), info.ID(g))
	}

	seen := map[int]bool{}
	for _, ctx := range info.Contexts {
		if seen[ctx.ID()] {
			t.Fatalf("duplicate context id %d", ctx.ID())
		}
		seen[ctx.ID()] = true
	}
	if info.Root != info.DefinedBy(file) {
		t.Errorf("root context must belong to the file")
	}
}
