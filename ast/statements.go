package ast

import (
	"fmt"
	"github.com/c0depwn/stacklang/pkg/slices"
	"strings"
)

type Statement interface {
	Node
	// Prevent external implementation
	aStatement()
}

type statement struct{ node }

func (statement) aStatement() {}

type Block struct {
	statement
	Statements []Statement
}

func (b *Block) String() string {
	sb := &strings.Builder{}

	strs := slices.Map(b.Statements, func(s Statement) string {
		return terminate(s)
	})

	sb.WriteString("{\n")
	sb.WriteString(strings.Join(strs, "\n"))
	if len(strs) > 0 {
		sb.WriteString("\n")
	}
	sb.WriteString("}")

	return sb.String()
}

type IfStatement struct {
	statement
	Condition   Expression
	Consequence *Block
	// Alternative is either nil, a *Block or an *IfStatement.
	Alternative Statement
}

func (i *IfStatement) String() string {
	if i.Alternative == nil {
		return fmt.Sprintf("if %s %s", i.Condition, i.Consequence)
	}
	return fmt.Sprintf("if %s %s else %s", i.Condition, i.Consequence, i.Alternative)
}

type WhileStatement struct {
	statement
	Condition Expression
	Body      *Block
}

func (w *WhileStatement) String() string {
	return fmt.Sprintf("while %s do %s", w.Condition, w.Body)
}

type ReturnStatement struct {
	statement
	Expression Expression // nil for unit returns
}

func (r *ReturnStatement) String() string {
	if r.Expression == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Expression)
}

// DebugStatement prints the value of its expression.
type DebugStatement struct {
	statement
	Expression Expression
}

func (d *DebugStatement) String() string {
	return fmt.Sprintf("debug %s", d.Expression)
}

type ExpressionStatement struct {
	statement
	Expression Expression
}

func (e *ExpressionStatement) String() string {
	return e.Expression.String()
}
