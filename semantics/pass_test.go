package semantics

import (
	"errors"
	"github.com/c0depwn/stacklang/symbols"
	"github.com/c0depwn/stacklang/syntax"
	"github.com/c0depwn/stacklang/types"
	"strings"
	"testing"
)

func analyze(t *testing.T, src string) error {
	t.Helper()
	f, err := syntax.ParseString("test.sl", src)
	if err != nil {
		t.Fatalf("unexpected parser error: %v", err)
	}
	info, err := symbols.Analyze(f)
	if err != nil {
		t.Fatalf("unexpected symbol error: %v", err)
	}
	if err := types.Analyze(f, info); err != nil {
		t.Fatalf("unexpected type error: %v", err)
	}
	return Analyze(f, info)
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		src    string
		expect string
	}{
		{src: `fn f() -> u { return 1; }`},
		{src: `fn f(x: u) -> u { if x < 1 { return 0; } else { return 1; } }`},
		{src: `fn f(x: u) -> u { if x < 1 { return 0; } else if x < 2 { return 1; } else { return 2; } }`},
		{src: `fn f(x: u) { if x < 1 { return; } }`},
		{src: `fn f(x: u) -> u { { return x; } }`},
		{src: `fn f(x: u) -> u { if x < 1 { return 0; } }`, expect: "missing return in function 'f'"},
		{src: `fn f(x: u) -> u { while x < 1 do { return 0; } }`, expect: "missing return in function 'f'"},
		{src: `fn f() -> u { fn g() -> u { debug 1; } return 1; }`, expect: "missing return in function 'g'"},
		{src: `struct A { b: B } struct B { a: A }`, expect: "contains itself"},
		{src: `struct A { t: (u, [A; 2]) }`, expect: "contains itself"},
	}

	for _, test := range tests {
		err := analyze(t, test.src)
		if test.expect == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", test.src, err)
			}
			continue
		}
		var sErr *Error
		if !errors.As(err, &sErr) {
			t.Errorf("%s: expected *Error, got %v", test.src, err)
			continue
		}
		if !strings.Contains(sErr.Msg, test.expect) {
			t.Errorf("%s: expected %q, got %q", test.src, test.expect, sErr.Msg)
		}
	}
}
