package amd64

import (
	"testing"
)

func TestPool(t *testing.T) {
	p := newPool()
	first := p.Add("hello")
	second := p.Add("world")
	if again := p.Add("hello"); again != first {
		t.Errorf("expected %s, got %s", first, again)
	}
	if first == second || p.Len() != 2 {
		t.Errorf("expected two distinct records, got %s, %s", first, second)
	}

	expected := "str_0: dq 5\n    db \"hello\"\nstr_1: dq 5\n    db \"world\"\n"
	if p.records() != expected {
		t.Errorf("unexpected records:\n%s", p.records())
	}
}

func TestRecord(t *testing.T) {
	tests := []struct {
		text     string
		expected string
	}{
		{text: "", expected: "s: dq 0\n"},
		{text: "a;b", expected: "s: dq 3\n    db \"a;b\"\n"},
		{text: "say \"hi\"\n", expected: "s: dq 9\n    db \"say \", 34, \"hi\", 34, 10\n"},
		{text: "\x00", expected: "s: dq 1\n    db 0\n"},
	}
	for _, test := range tests {
		if actual := record("s", test.text); actual != test.expected {
			t.Errorf("%q: expected %q, got %q", test.text, test.expected, actual)
		}
	}
}
