package amd64

import (
	"github.com/c0depwn/stacklang/types"
	"testing"
)

func TestLayout(t *testing.T) {
	u := types.NewUint()
	b := types.NewStruct("B", types.Field{Name: "x", T: u}, types.Field{Name: "y", T: u})
	s := types.NewStruct("T",
		types.Field{Name: "a", T: u},
		types.Field{Name: "b", T: b},
		types.Field{Name: "c", T: u},
	)
	l := newLayout()

	if size := l.Size(s); size != 4 {
		t.Errorf("expected size 4, got %d", size)
	}
	for i, expected := range []int{0, 1, 3} {
		if offset := l.FieldOffset(s, i); offset != expected {
			t.Errorf("field %d: expected offset %d, got %d", i, expected, offset)
		}
	}
	if offset := l.Offset(s, "c"); offset != l.Size(u)+l.Size(b) {
		t.Errorf("expected offset of c to follow a and b, got %d", offset)
	}
	if offset := l.Offset(s, "b", "y"); offset != 2 {
		t.Errorf("expected offset 2 of b.y, got %d", offset)
	}

	tuple := types.NewTuple(u, b, types.NewBool())
	if size := l.Size(tuple); size != 4 {
		t.Errorf("expected tuple size 4, got %d", size)
	}
	if offset := l.ElementOffset(tuple, 2); offset != 3 {
		t.Errorf("expected element offset 3, got %d", offset)
	}
	if size := l.Size(types.NewArray(3, b)); size != 6 {
		t.Errorf("expected array size 6, got %d", size)
	}
	if size := l.Size(types.NewUnit()); size != 0 {
		t.Errorf("expected unit size 0, got %d", size)
	}
}

func TestLayoutErrors(t *testing.T) {
	self := &types.Struct{Name: "S", Declared: true}
	self.Fields = []types.Field{{Name: "s", T: self}}
	assertCompilerError(t, func() { newLayout().Size(self) })

	undeclared := &types.Struct{Name: "U"}
	assertCompilerError(t, func() { newLayout().Size(undeclared) })

	assertCompilerError(t, func() { newLayout().Size(nil) })
	assertCompilerError(t, func() { newLayout().Size(types.NewFunction(types.NewUnit(), nil)) })
}
