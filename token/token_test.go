package token

import "testing"

func TestBaseOperator(t *testing.T) {
	tests := map[string]string{
		AssignAdd: Sum,
		AssignSub: Sub,
		AssignMul: Mul,
		AssignDiv: Div,
		AssignMod: Mod,
		Equal:     Equal,
	}

	for op, expected := range tests {
		if actual := BaseOperator(op); actual != expected {
			t.Errorf("BaseOperator(%q) = %q, expected %q", op, actual, expected)
		}
	}

	if IsCompoundAssign(Assign) {
		t.Errorf("plain assignment is not compound")
	}
}

func TestPosition(t *testing.T) {
	p := Position{Filename: "main.sl", Row: 3, Col: 7}
	if p.String() != "main.sl:3:7" {
		t.Fatalf("unexpected position string %q", p.String())
	}
	if (Position{}).IsValid() {
		t.Fatalf("zero position must be invalid")
	}
}
