package amd64

import (
	"errors"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/pkg/ext"
	"github.com/c0depwn/stacklang/semantics"
	"github.com/c0depwn/stacklang/simplify"
	"github.com/c0depwn/stacklang/symbols"
	"github.com/c0depwn/stacklang/syntax"
	"github.com/c0depwn/stacklang/types"
	"testing"
)

// prepare runs the front end and returns a generator ready for lowering.
func prepare(t *testing.T, src string) (*generator, *ast.File) {
	t.Helper()
	file, err := syntax.ParseString("test.sl", src)
	if err != nil {
		t.Fatalf("unexpected parser error: %v", err)
	}
	if _, err := simplify.File(file); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := symbols.Analyze(file)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := types.Analyze(file, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := semantics.Analyze(file, info); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	g := newGenerator(WithInfo(info))
	g.ready = true
	return g, file
}

func assertCompilerError(t *testing.T, f func()) {
	t.Helper()
	err := ext.CatchPanic(f)
	var cErr *CompilerError
	if !errors.As(err, &cErr) {
		t.Errorf("expected *CompilerError, got %v", err)
	}
}

func TestProgramOffsets(t *testing.T) {
	g, file := prepare(t, `let a = 1; let b = (1, 2); let c = 3;`)
	g.program(file)

	expected := []int{1, 2, 4}
	for i, global := range expected {
		decl := file.Statements[i].(*ast.LetDeclaration)
		s, ok := g.SlotOf(decl)
		if !ok {
			t.Fatalf("no offsets for %s", decl.Name())
		}
		if s.Global != global || s.Local != global || s.Depth != 0 {
			t.Errorf("%s: unexpected offsets %+v", decl.Name(), *s)
		}
	}
}

func TestFunctionOffsets(t *testing.T) {
	g, file := prepare(t, `fn f(a: u, b: (u, u)) -> (u, u) { let x = a; return b; }`)
	g.program(file)

	fDecl := file.Statements[0].(*ast.FuncDeclaration)
	f := g.funcs[g.info.ID(fDecl)]
	if f.base != 7 || f.result != 2 || f.args != 3 || f.drift {
		t.Fatalf("unexpected frame %+v", *f)
	}
	if f.resultSlot() != -6 {
		t.Errorf("expected result slot -6, got %d", f.resultSlot())
	}

	a, _ := g.SlotOf(fDecl.Parameters[0])
	b, _ := g.SlotOf(fDecl.Parameters[1])
	if a.Global != 5 || a.Local != -2 {
		t.Errorf("a: unexpected offsets %+v", *a)
	}
	if b.Global != 3 || b.Local != -4 {
		t.Errorf("b: unexpected offsets %+v", *b)
	}

	x, _ := g.SlotOf(fDecl.Body.Statements[0].(*ast.LetDeclaration))
	if x.Local != 1 || x.Depth != 1 {
		t.Errorf("x: unexpected offsets %+v", *x)
	}
}

func TestNestedFrame(t *testing.T) {
	g, file := prepare(t, `fn outer(n: u) { let k = n; fn inner() { debug k; } inner(); }`)
	g.program(file)

	outer := g.funcs[g.info.ID(file.Statements[0].(*ast.FuncDeclaration))]
	var inner *frame
	for _, f := range g.funcs {
		if f.parent == outer {
			inner = f
		}
	}
	if inner == nil || !inner.drift || inner.depth != 2 {
		t.Fatalf("unexpected inner frame %+v", inner)
	}
	// defined after n and k: 1 drift slot, return address and rbp
	if inner.defined != outer.base+1 || inner.base != inner.defined+3 {
		t.Errorf("unexpected inner frame %+v", *inner)
	}
	if inner.driftSlot() != -2 {
		t.Errorf("expected drift slot -2, got %d", inner.driftSlot())
	}

	k := file.Statements[0].(*ast.FuncDeclaration).Body.Statements[0].(*ast.LetDeclaration)
	g.frames.Push(outer)
	own := g.resolve(k, k)
	g.frames.Push(inner)
	captured := g.resolve(k, k)
	g.frames.Pop()
	g.frames.Pop()
	if own.Anchor != nil || own.Slot != 1 {
		t.Errorf("unexpected ref in defining frame %+v", own)
	}
	if captured.Anchor == nil {
		t.Fatalf("expected captured ref to walk the frame chain")
	}

	e := newEmitter()
	e.begin("own")
	e.mov("rax", slot(own.base(e, 0), own.Slot))
	e.begin("captured")
	e.mov("rax", slot(captured.base(e, 0), captured.Slot))

	expected := "own:\n" +
		"    mov rax, [rbp - 8]\n" +
		"captured:\n" +
		"    mov r9, [rbp + 16]\n" +
		"    lea r11, [rbp + r9*8 + 32]\n" +
		"    mov rax, [r11 - 8]\n"
	if e.text() != expected {
		t.Errorf("unexpected text:\n%s", e.text())
	}
}

func TestReturnTypeMismatch(t *testing.T) {
	g, file := prepare(t, `fn f() -> u { return 1; }`)

	fDecl := file.Statements[0].(*ast.FuncDeclaration)
	ret := fDecl.Body.Statements[0].(*ast.ReturnStatement)
	ret.Expression.SetType(types.NewBool())

	assertCompilerError(t, func() { g.program(file) })
}

func TestResolve(t *testing.T) {
	g, file := prepare(t, `let a = 1; fn f(p: u) { debug a + p; }`)
	g.program(file)

	a := file.Statements[0].(*ast.LetDeclaration)
	fDecl := file.Statements[1].(*ast.FuncDeclaration)
	p := fDecl.Parameters[0]

	sa, _ := g.SlotOf(a)
	g.frames.Push(sa.frame)
	first, second := g.resolve(a, a), g.resolve(a, a)
	if first.Anchor != nil || second.Anchor != nil || first.Slot != second.Slot || first.Slot != 1 {
		t.Errorf("unexpected program refs %+v, %+v", first, second)
	}
	g.frames.Pop()

	g.frames.Push(g.funcs[g.info.ID(fDecl)])
	global := g.resolve(a, a)
	if global.Anchor == nil || global.Slot != 1 {
		t.Errorf("expected anchored ref, got %+v", global)
	}
	local := g.resolve(p, p)
	if local.Anchor != nil || local.Slot != -2 {
		t.Errorf("unexpected param ref %+v", local)
	}
	g.frames.Pop()
}

func TestOffsetsAssignedOnce(t *testing.T) {
	g, file := prepare(t, `let a = 1;`)
	g.program(file)

	a := file.Statements[0].(*ast.LetDeclaration)
	assertCompilerError(t, func() { g.define(a, 1, programFrame()) })

	g.ready = false
	g.frames.Push(programFrame())
	assertCompilerError(t, func() { g.resolve(a, a) })
}

func TestEmitterCounters(t *testing.T) {
	e := newEmitter()
	e.begin("_start")

	for i := 0; i < 5; i++ {
		e.push("rax")
	}
	e.reserve(3)
	if e.global != 8 || e.local != 8 {
		t.Fatalf("unexpected counters %d, %d", e.global, e.local)
	}
	e.drop(3)
	for i := 0; i < 5; i++ {
		e.pop("rax")
	}
	if e.global != 0 || e.local != 0 {
		t.Fatalf("unexpected counters %d, %d", e.global, e.local)
	}

	e.pushImmediate(1)
	e.pushImmediate(2)
	e.callUser("fn_f_1", 2)
	e.callRuntime(PrintNewline)
	if e.global != 0 {
		t.Errorf("expected arguments to be released, got %d", e.global)
	}
	e.movImmediate("rdi", 0)

	expected := "_start:\n" +
		"    push rax\n    push rax\n    push rax\n    push rax\n    push rax\n" +
		"    sub rsp, 24\n    add rsp, 24\n" +
		"    pop rax\n    pop rax\n    pop rax\n    pop rax\n    pop rax\n" +
		"    push qword 1\n    push qword 2\n" +
		"    call fn_f_1\n    add rsp, 16\n" +
		"    call print_newline\n" +
		"    xor rdi, rdi\n"
	if e.text() != expected {
		t.Errorf("unexpected text:\n%s", e.text())
	}
}

func TestOperands(t *testing.T) {
	tests := []struct {
		actual   string
		expected string
	}{
		{actual: mem("rbp", 16), expected: "[rbp + 16]"},
		{actual: mem("rsp", 0), expected: "[rsp]"},
		{actual: slot("rbp", 2), expected: "[rbp - 16]"},
		{actual: slot("rbp", -3), expected: "[rbp + 24]"},
		{actual: fmtIndexed("r11", "r9", -8), expected: "[r11 + r9*8 - 8]"},
		{actual: rel("stack_base"), expected: "[rel stack_base]"},
		{actual: qword("[rsp]"), expected: "qword [rsp]"},
	}
	for _, test := range tests {
		if test.actual != test.expected {
			t.Errorf("expected %s, got %s", test.expected, test.actual)
		}
	}
}
