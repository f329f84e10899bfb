package simplify

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/constant"
	"github.com/c0depwn/stacklang/syntax"
	"testing"
)

func parse(t *testing.T, src string) *ast.File {
	t.Helper()
	f, err := syntax.ParseString("test.sl", src)
	if err != nil {
		t.Fatalf("unexpected parser error: %v", err)
	}
	return f
}

func TestFile(t *testing.T) {
	tests := []struct {
		src    string
		expect string
	}{
		{src: `x += 1;`, expect: `x = (x + 1);`},
		{src: `a.b[i] *= 2;`, expect: `a.b[i] = (a.b[i] * 2);`},
		{src: `let x = -5;`, expect: `let x = -5;`},
		{src: `let x = -(1 + 2);`, expect: `let x = -((1 + 2));`},
		{src: "if a { } else { if b { } }", expect: "if a {\n} else if b {\n}"},
		{src: "if a { } else { if b { } debug 1; }", expect: "if a {\n} else {\nif b {\n}\ndebug 1;\n}"},
	}

	for _, test := range tests {
		f := parse(t, test.src)
		if _, err := File(f); err != nil {
			t.Fatalf("%s: unexpected error: %v", test.src, err)
		}
		if !f.Simplified {
			t.Errorf("%s: expected file to be simplified", test.src)
		}
		if f.String() != test.expect {
			t.Errorf("%s: expected %q, got %q", test.src, test.expect, f.String())
		}
	}
}

func TestFoldLiteral(t *testing.T) {
	f := parse(t, `let x = -5;`)
	if _, err := File(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	let := f.Statements[0].(*ast.LetDeclaration)
	lit, ok := let.Expression.(*ast.BasicLiteral)
	if !ok {
		t.Fatalf("expected *ast.BasicLiteral, got %T", let.Expression)
	}
	v, err := constant.AsInt(lit.Value())
	if err != nil || v != -5 {
		t.Fatalf("expected -5, got %v (%v)", v, err)
	}
}

func TestIdempotent(t *testing.T) {
	f := parse(t, `let x = -1; x -= 2; if true { } else { if false { } }`)
	changed, err := File(f)
	if err != nil || !changed {
		t.Fatalf("expected first run to change the tree, err: %v", err)
	}
	first := f.String()

	f.Checked = true
	changed, err = File(f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if changed {
		t.Errorf("expected second run to be a no-op")
	}
	if !f.Checked {
		t.Errorf("expected checked flag to remain set")
	}
	if f.String() != first {
		t.Errorf("expected %q, got %q", first, f.String())
	}
}

func TestCloneSeparatesIdentifiers(t *testing.T) {
	f := parse(t, `x += 1;`)
	if _, err := File(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	assignment := f.Statements[0].(*ast.ExpressionStatement).Expression.(*ast.Assignment)
	right := assignment.Value.(*ast.InfixExpression)
	if assignment.Left == right.Left {
		t.Fatalf("expected the target to be copied")
	}
}
