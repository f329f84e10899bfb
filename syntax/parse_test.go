package syntax

import (
	"errors"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/constant"
	"strings"
	"testing"
)

func mustParse(t *testing.T, src string) *ast.File {
	t.Helper()
	file, err := ParseString("test.sl", src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return file
}

func TestParseLet(t *testing.T) {
	file := mustParse(t, `let x = 2; let y: i = 3;`)
	if len(file.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(file.Statements))
	}

	let, ok := file.Statements[1].(*ast.LetDeclaration)
	if !ok {
		t.Fatalf("expected *ast.LetDeclaration, got %T", file.Statements[1])
	}
	if let.Name() != "y" {
		t.Errorf("expected name y, got %s", let.Name())
	}
	if let.TypeID.String() != "i" {
		t.Errorf("expected type i, got %s", let.TypeID)
	}
	if let.Position().Row != 1 || let.Position().Col != 12 {
		t.Errorf("unexpected position %s", let.Position())
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{src: `debug 1 + 2 * 3;`, expected: `debug (1 + (2 * 3));`},
		{src: `debug 1 - 2 - 3;`, expected: `debug ((1 - 2) - 3);`},
		{src: `debug a < b && c || d;`, expected: `debug (((a < b) && c) || d);`},
		{src: `debug -x + !y;`, expected: `debug (-(x) + !(y));`},
		{src: `debug (1 + 2) * 3;`, expected: `debug ((1 + 2) * 3);`},
		{src: `debug p.a.b[i].0;`, expected: `debug p.a.b[i].0;`},
		{src: `debug f(1, g(2));`, expected: `debug f(1, g(2));`},
		{src: `x++;`, expected: `x++;`},
		{src: `x += 1;`, expected: `x += 1;`},
	}

	for _, test := range tests {
		file := mustParse(t, test.src)
		if file.String() != test.expected {
			t.Errorf("%s: expected %s, got %s", test.src, test.expected, file.String())
		}
	}
}

func TestParseLiterals(t *testing.T) {
	file := mustParse(t, `debug ((), (1,), (1, "a"), [1, 2, 3], Point { x: 1, y: 2 });`)

	dbg := file.Statements[0].(*ast.DebugStatement)
	tuple, ok := dbg.Expression.(*ast.TupleLiteral)
	if !ok {
		t.Fatalf("expected *ast.TupleLiteral, got %T", dbg.Expression)
	}
	if len(tuple.Elements) != 5 {
		t.Fatalf("expected 5 elements, got %d", len(tuple.Elements))
	}
	if unit := tuple.Elements[0].(*ast.TupleLiteral); len(unit.Elements) != 0 {
		t.Errorf("expected unit tuple")
	}
	if single := tuple.Elements[1].(*ast.TupleLiteral); len(single.Elements) != 1 {
		t.Errorf("expected 1-tuple")
	}
	pair := tuple.Elements[2].(*ast.TupleLiteral)
	str, err := constant.AsString(pair.Elements[1].(*ast.BasicLiteral).Value())
	if err != nil || str != "a" {
		t.Errorf("expected unquoted string a, got %q (%v)", str, err)
	}
	if arr := tuple.Elements[3].(*ast.ArrayLiteral); len(arr.Elements) != 3 {
		t.Errorf("expected 3 array elements")
	}
	lit := tuple.Elements[4].(*ast.StructLiteral)
	if lit.Identifier.Name != "Point" || lit.Lookup("y") == nil {
		t.Errorf("unexpected struct literal %s", lit)
	}
}

func TestParseDeclarations(t *testing.T) {
	src := `
struct Inner { x: u, y?: u }
struct Outer { a: u, b: Inner, c: (u, bool), d: [u; 3], }

fn add(a: u, b: u) -> u {
	return a + b;
}

fn nothing() {
	return;
}
`
	file := mustParse(t, src)
	if len(file.Statements) != 4 {
		t.Fatalf("expected 4 statements, got %d", len(file.Statements))
	}

	inner := file.Statements[0].(*ast.StructDeclaration)
	if !inner.Fields[1].Optional {
		t.Errorf("expected y to be optional")
	}
	outer := file.Statements[1].(*ast.StructDeclaration)
	if outer.Fields[2].TypeID.String() != "(u, bool)" {
		t.Errorf("unexpected tuple type %s", outer.Fields[2].TypeID)
	}
	if outer.Fields[3].TypeID.String() != "[u; 3]" {
		t.Errorf("unexpected array type %s", outer.Fields[3].TypeID)
	}

	add := file.Statements[2].(*ast.FuncDeclaration)
	if len(add.Parameters) != 2 || add.Result == nil {
		t.Errorf("unexpected function %s", add)
	}
	nothing := file.Statements[3].(*ast.FuncDeclaration)
	if nothing.Result != nil {
		t.Errorf("expected unit function")
	}
}

func TestParseControlFlow(t *testing.T) {
	src := `
let x = 0;
while x < 3 do {
	debug x;
	x = x + 1;
}
if x == 3 {
	debug 1;
} else if x == 4 {
	debug 2;
} else {
	debug 3;
}
`
	file := mustParse(t, src)
	loop := file.Statements[1].(*ast.WhileStatement)
	if loop.Condition.String() != "(x < 3)" {
		t.Errorf("unexpected loop condition %s", loop.Condition)
	}
	if len(loop.Body.Statements) != 2 {
		t.Errorf("expected 2 loop statements")
	}

	cond := file.Statements[2].(*ast.IfStatement)
	elseIf, ok := cond.Alternative.(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected else if, got %T", cond.Alternative)
	}
	if _, ok := elseIf.Alternative.(*ast.Block); !ok {
		t.Fatalf("expected else block, got %T", elseIf.Alternative)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []string{
		`let x 1;`,
		`debug 1 +;`,
		`fn f( { }`,
		`let x = 99999999999999999999999;`,
	}

	for _, src := range tests {
		_, err := ParseString("bad.sl", src)
		if err == nil {
			t.Errorf("%s: expected error", src)
			continue
		}
		var pErr *ParserError
		if !errors.As(err, &pErr) {
			t.Errorf("%s: expected *ParserError, got %T", src, err)
		}
	}
}

func TestTokens(t *testing.T) {
	tokens, err := Tokens("test.sl", strings.NewReader("let x = 1; // comment\nx += 2;"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := []string{"let", "x", "=", "1", ";", "x", "+=", "2", ";"}
	if len(tokens) != len(expected) {
		t.Fatalf("expected %d tokens, got %d", len(expected), len(tokens))
	}
	for i, tok := range tokens {
		if tok.Literal != expected[i] {
			t.Errorf("token %d: expected %s, got %s", i, expected[i], tok.Literal)
		}
	}
	if tokens[5].Position.Row != 2 {
		t.Errorf("expected second line, got %d", tokens[5].Position.Row)
	}
}
