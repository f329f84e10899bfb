package constant

import "testing"

func TestFromLiteral(t *testing.T) {
	v, err := FromLiteral(Int, "0x10")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := AsUint(v)
	if err != nil || u != 16 {
		t.Fatalf("expected 16, got %d (%v)", u, err)
	}

	if _, err := FromLiteral(Int, "18446744073709551616"); err == nil {
		t.Fatalf("expected overflow error")
	}

	b, err := FromLiteral(Bool, "true")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok, _ := AsBool(b); !ok {
		t.Fatalf("expected true")
	}
}

func TestNegate(t *testing.T) {
	v, err := Negate(MakeUint(5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !IsNegative(v) {
		t.Fatalf("expected negative value")
	}
	w, err := AsWord(v)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if int64(w) != -5 {
		t.Fatalf("expected -5, got %d", int64(w))
	}

	if _, err := Negate(MakeBool(true)); err == nil {
		t.Fatalf("expected error when negating bool")
	}
}

func TestString(t *testing.T) {
	if s := MakeString("a\"b").String(); s != `"a\"b"` {
		t.Fatalf("unexpected quoted string %s", s)
	}
}
