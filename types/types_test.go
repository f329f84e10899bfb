package types

import (
	"github.com/c0depwn/stacklang/ast"
	"testing"
)

func TestEquals(t *testing.T) {
	p := NewStruct("P", Field{Name: "x", T: NewUint()})
	q := NewStruct("P", Field{Name: "x", T: NewUint()})

	tests := []struct {
		a, b     ast.Type
		expected bool
	}{
		{NewUint(), NewUint(), true},
		{NewUint(), NewInt(), false},
		{NewTuple(NewUint(), NewBool()), NewTuple(NewUint(), NewBool()), true},
		{NewTuple(NewUint()), NewTuple(NewUint(), NewBool()), false},
		{NewArray(3, NewUint()), NewArray(3, NewUint()), true},
		{NewArray(3, NewUint()), NewArray(2, NewUint()), false},
		{p, p, true},
		// structs are nominal
		{p, q, false},
		{NewFunction(NewUnit(), []ast.Type{NewUint()}), NewFunction(NewUnit(), []ast.Type{NewUint()}), true},
	}

	for _, test := range tests {
		if actual := test.a.Equals(test.b); actual != test.expected {
			t.Errorf("%s == %s: expected %v, got %v", test.a, test.b, test.expected, actual)
		}
	}
}

func TestString(t *testing.T) {
	f := NewFunction(NewUint(), []ast.Type{NewInt(), NewArray(2, NewBool())})
	if f.String() != "fn(i, [bool; 2]) -> u" {
		t.Errorf("unexpected function string %s", f)
	}
	if NewTuple(NewUint(), NewString()).String() != "(u, str)" {
		t.Errorf("unexpected tuple string")
	}
}
