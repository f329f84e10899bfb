package symbols

import (
	"github.com/c0depwn/stacklang/ast"
	"testing"
)

func TestContext_Declarations(t *testing.T) {
	foo := newLet("foo", newLit(1))
	bar := newLet("bar", newLit(1))
	baz := newLet("baz", newLit(1))

	// root <- parent <- child
	//			 |			|
	//		  foo, baz	   bar
	root := newContext(0, nil, nil)
	parent := newContext(1, nil, root)
	parent.register(foo)
	parent.register(baz)
	child := newContext(2, nil, parent)
	child.register(bar)

	createAssertDeclarations()(t, root.Declarations())
	createAssertDeclarations(foo, baz)(t, parent.Declarations())
	createAssertDeclarations(bar)(t, child.Declarations())
}

func TestContext_AllDeclarations(t *testing.T) {
	foo := newLet("foo", newLit(1))
	bar := newLet("bar", newLit(1))

	root := newContext(0, nil, nil)
	parent := newContext(1, nil, root)
	parent.register(foo)
	child := newContext(2, nil, parent)
	child.register(bar)

	createAssertDeclarations(foo, bar)(t, root.AllDeclarations())
	createAssertDeclarations(foo, bar)(t, parent.AllDeclarations())
	createAssertDeclarations(bar)(t, child.AllDeclarations())
}

func TestContext_Get(t *testing.T) {
	foo := newLet("foo", newLit(1))
	bar := newLet("bar", newLit(1))

	root := newContext(0, nil, nil)
	parent := newContext(1, nil, root)
	parent.register(foo)
	child := newContext(2, nil, parent)
	child.register(bar)

	// ensure found in correct context
	createAssertGetResult(t, parent, foo)(child.Get(foo.Name()))
	createAssertGetResult(t, child, bar)(child.Get(bar.Name()))

	// ensure don't exist in root
	createAssertGetResult(t, nil, nil)(root.Get(foo.Name()))
	createAssertGetResult(t, nil, nil)(root.Get(bar.Name()))
}

func TestContext_RegisterShadowing(t *testing.T) {
	root := newContext(0, nil, nil)
	child := newContext(1, nil, root)

	if existing := root.register(newLet("x", newLit(1))); existing != nil {
		t.Fatalf("unexpected existing declaration %v", existing)
	}
	if existing := child.register(newLet("x", newLit(2))); existing == nil {
		t.Fatalf("expected shadowing to be rejected")
	}
}

func createAssertGetResult(
	t *testing.T,
	expectedContext *Context,
	expectedDecl ast.Declaration,
) func(*Context, ast.Declaration) {
	return func(ctx *Context, declaration ast.Declaration) {
		if expectedContext != ctx {
			t.Fatalf("context: expected '%v', got '%v'", expectedContext, ctx)
		}
		if expectedDecl != declaration {
			t.Fatalf("declaration: expected '%v', got '%v'", expectedDecl, declaration)
		}
	}
}

func createAssertDeclarations(expected ...ast.Declaration) func(*testing.T, []ast.Declaration) {
	return func(t *testing.T, actual []ast.Declaration) {
		if len(expected) != len(actual) {
			t.Fatalf("unexpected number of declarations in context: expected %d, got %d", len(expected), len(actual))
		}

		// members keep their registration order
		for i := range expected {
			if actual[i] != expected[i] {
				t.Fatalf(
					"declaration %d: '%s' does not match expected declaration: %v",
					i, actual[i], expected[i],
				)
			}
		}
	}
}
