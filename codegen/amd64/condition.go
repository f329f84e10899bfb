package amd64

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/token"
	"github.com/c0depwn/stacklang/types"
)

// inverse condition codes, taken when the comparison does not hold
var (
	failSigned = map[string]string{
		token.Equal: "ne", token.NotEqual: "e",
		token.LessThan: "ge", token.LessThanEqual: "g",
		token.GreaterThan: "le", token.GreaterThanEqual: "l",
	}
	failUnsigned = map[string]string{
		token.Equal: "ne", token.NotEqual: "e",
		token.LessThan: "ae", token.LessThanEqual: "a",
		token.GreaterThan: "be", token.GreaterThanEqual: "b",
	}
)

// condition emits code jumping to fail if cond does not hold.
// Only a single comparison, a boolean value or its negation is supported.
func (g *generator) condition(cond ast.Expression, fail string) {
	switch c := cond.(type) {
	case *ast.InfixExpression:
		if token.IsLogical(c.Operator) {
			notImplemented(c, "operator %s in condition", c.Operator)
		}
		if token.IsRelational(c.Operator) {
			g.comparison(c, fail)
			return
		}
	case *ast.PrefixExpression:
		if c.Operator == token.Excl {
			if nested(c.Right) {
				notImplemented(c, "operator %s on comparison in condition", c.Operator)
			}
			v := g.load(g.operand(c, c.Right))
			v(g.e)
			g.e.instr("test", "rax", "rax")
			g.e.branch("nz", fail)
			return
		}
	}

	v := g.load(g.operand(cond, cond))
	v(g.e)
	g.e.instr("test", "rax", "rax")
	g.e.branch("z", fail)
}

func (g *generator) comparison(c *ast.InfixExpression, fail string) {
	operandT := c.Left.Type()
	switch operandT.(type) {
	case types.Uint, types.Int, types.Bool:
	default:
		notImplemented(c, "comparison of %s in condition", operandT)
	}
	for _, operand := range []ast.Expression{c.Left, c.Right} {
		if nested(operand) {
			notImplemented(operand, "nested comparison in condition")
		}
	}

	cc, ok := failUnsigned[c.Operator]
	if types.IsSigned(operandT) {
		cc, ok = failSigned[c.Operator]
	}
	if !ok {
		compilerError(c, "operator %s is no comparison", c.Operator)
	}

	left := g.load(g.operand(c, c.Left))
	right := g.load(g.operand(c, c.Right))

	left(g.e)
	g.e.push("rax")
	right(g.e)
	g.e.mov("rcx", "rax")
	g.e.pop("rax")
	g.e.instr("cmp", "rax", "rcx")
	g.e.branch(cc, fail)
}

// nested reports whether expr contains a comparison or logical operator.
func nested(expr ast.Expression) bool {
	found := false
	ast.Inspect(expr, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.InfixExpression:
			if token.IsRelational(node.Operator) || token.IsLogical(node.Operator) {
				found = true
			}
		case *ast.PrefixExpression:
			if node.Operator == token.Excl {
				found = true
			}
		case *ast.CallExpression:
			// arguments are evaluated independently
			return false
		}
		return !found
	})
	return found
}
