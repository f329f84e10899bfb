package token

import (
	"fmt"
)

const (
	// Assignments & Operators

	Assign    = "="
	AssignMul = "*="
	AssignDiv = "/="
	AssignMod = "%="
	AssignAdd = "+="
	AssignSub = "-="

	Mul        = "*"
	Div        = "/"
	Mod        = "%"
	Sum        = "+"
	Sub        = "-"
	LogicalOr  = "||"
	LogicalAnd = "&&"
	Increment  = "++"
	Decrement  = "--"
	Arrow      = "->"

	Excl = "!"

	LessThan         = "<"
	GreaterThan      = ">"
	Equal            = "=="
	NotEqual         = "!="
	LessThanEqual    = "<="
	GreaterThanEqual = ">="

	// Keywords

	Let      = "let"
	Function = "fn"
	Struct   = "struct"
	True     = "true"
	False    = "false"
	If       = "if"
	Else     = "else"
	While    = "while"
	Do       = "do"
	Return   = "return"
	Debug    = "debug"

	// reserved type names

	Uint   = "u"
	Int    = "i"
	Bool   = "bool"
	String = "str"
)

var keywords = map[string]struct{}{
	Let:      {},
	Function: {},
	Struct:   {},
	True:     {},
	False:    {},
	If:       {},
	Else:     {},
	While:    {},
	Do:       {},
	Return:   {},
	Debug:    {},
	Uint:     {},
	Int:      {},
	Bool:     {},
	String:   {},
}

// Position of a token within a source file.
// Row and Col are 1-based, the zero value means unknown.
type Position struct {
	Filename string
	Row, Col int
}

func (p Position) IsValid() bool {
	return p.Row > 0
}

func (p Position) String() string {
	if p.Filename == "" {
		return fmt.Sprintf("%d:%d", p.Row, p.Col)
	}
	return fmt.Sprintf("%s:%d:%d", p.Filename, p.Row, p.Col)
}

func IsReservedKeyword(identifier string) bool {
	_, ok := keywords[identifier]
	return ok
}

var (
	CompoundAssignmentOp = map[string]string{
		AssignMul: Mul,
		AssignDiv: Div,
		AssignMod: Mod,
		AssignAdd: Sum,
		AssignSub: Sub,
	}

	relational = map[string]struct{}{
		LessThan:         {},
		GreaterThan:      {},
		Equal:            {},
		NotEqual:         {},
		LessThanEqual:    {},
		GreaterThanEqual: {},
	}
)

// IsCompoundAssign reports whether op is one of "+=", "-=", ...
func IsCompoundAssign(op string) bool {
	_, ok := CompoundAssignmentOp[op]
	return ok
}

// BaseOperator returns the arithmetic operator of a compound assignment,
// e.g. "+" for "+=". Other operators are returned unchanged.
func BaseOperator(op string) string {
	if base, ok := CompoundAssignmentOp[op]; ok {
		return base
	}
	return op
}

func IsRelational(op string) bool {
	_, ok := relational[op]
	return ok
}

func IsLogical(op string) bool {
	return op == LogicalAnd || op == LogicalOr
}
