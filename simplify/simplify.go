// Package simplify rewrites a parsed program into the reduced form
// expected by the analysis passes and code generation.
package simplify

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/constant"
	"github.com/c0depwn/stacklang/pkg/ext"
	"github.com/c0depwn/stacklang/pkg/slices"
	"github.com/c0depwn/stacklang/token"
)

// File applies the following rewrites in place:
//   - compound assignments `a op= b` become `a = a op b`
//   - a unary minus applied to an integer literal is folded into the literal
//   - `else { if ... }` with the if as the only statement becomes `else if ...`
//
// The reported bool is true if the tree changed, in which case
// f.Checked is reset since annotations of new nodes are missing.
// Applying File to a simplified tree is a no-op.
func File(f *ast.File) (bool, error) {
	s := &simplifier{}
	if err := s.run(f); err != nil {
		return false, err
	}
	f.Simplified = true
	if s.changed {
		f.Checked = false
	}
	return s.changed, nil
}

type simplifier struct {
	changed bool
}

func (s *simplifier) run(f *ast.File) error {
	return ext.CatchPanic(func() {
		f.Statements = slices.Map(f.Statements, s.stmt)
	})
}

func (s *simplifier) stmt(stmt ast.Statement) ast.Statement {
	switch n := stmt.(type) {
	case *ast.Block:
		n.Statements = slices.Map(n.Statements, s.stmt)
	case *ast.LetDeclaration:
		n.Expression = s.expr(n.Expression)
	case *ast.FuncDeclaration:
		s.stmt(n.Body)
	case *ast.IfStatement:
		n.Condition = s.expr(n.Condition)
		s.stmt(n.Consequence)
		if n.Alternative != nil {
			n.Alternative = s.flatten(s.stmt(n.Alternative))
		}
	case *ast.WhileStatement:
		n.Condition = s.expr(n.Condition)
		s.stmt(n.Body)
	case *ast.ReturnStatement:
		if n.Expression != nil {
			n.Expression = s.expr(n.Expression)
		}
	case *ast.DebugStatement:
		n.Expression = s.expr(n.Expression)
	case *ast.ExpressionStatement:
		n.Expression = s.expr(n.Expression)
	}
	return stmt
}

// flatten replaces a block holding a single if statement with the if.
func (s *simplifier) flatten(alt ast.Statement) ast.Statement {
	block, ok := alt.(*ast.Block)
	if !ok || len(block.Statements) != 1 {
		return alt
	}
	inner, ok := block.Statements[0].(*ast.IfStatement)
	if !ok {
		return alt
	}
	s.changed = true
	return inner
}

func (s *simplifier) expr(expr ast.Expression) ast.Expression {
	switch n := expr.(type) {
	case *ast.InfixExpression:
		n.Left = s.expr(n.Left)
		n.Right = s.expr(n.Right)
	case *ast.PrefixExpression:
		n.Right = s.expr(n.Right)
		if folded := s.fold(n); folded != nil {
			return folded
		}
	case *ast.PostfixExpression:
		n.Left = s.expr(n.Left)
	case *ast.Assignment:
		n.Left = s.expr(n.Left)
		n.Value = s.expr(n.Value)
		if token.IsCompoundAssign(n.Operator) {
			value := &ast.InfixExpression{
				Operator: token.BaseOperator(n.Operator),
				Left:     clone(n.Left),
				Right:    n.Value,
			}
			value.SetPosition(n.Position())
			n.Operator = token.Assign
			n.Value = value
			s.changed = true
		}
	case *ast.IndexExpression:
		n.Left = s.expr(n.Left)
		n.Index = s.expr(n.Index)
	case *ast.PropertyExpression:
		n.Left = s.expr(n.Left)
	case *ast.CallExpression:
		n.Function = s.expr(n.Function)
		n.Arguments = slices.Map(n.Arguments, s.expr)
	case *ast.ArrayLiteral:
		n.Elements = slices.Map(n.Elements, s.expr)
	case *ast.TupleLiteral:
		n.Elements = slices.Map(n.Elements, s.expr)
	case *ast.StructLiteral:
		for _, field := range n.Fields {
			field.Value = s.expr(field.Value)
		}
	}
	return expr
}

// fold returns the literal -x for -(x), nil if the operand is not
// a non-negative integer literal.
func (s *simplifier) fold(prefix *ast.PrefixExpression) ast.Expression {
	if prefix.Operator != token.Sub {
		return nil
	}
	lit, ok := prefix.Right.(*ast.BasicLiteral)
	if !ok || lit.V.Type() != constant.Int || constant.IsNegative(lit.V) {
		return nil
	}
	v, err := constant.Negate(lit.V)
	if err != nil {
		panic(fmt.Errorf("%s: %w", prefix.Position(), err))
	}
	folded := &ast.BasicLiteral{V: v}
	folded.SetPosition(prefix.Position())
	s.changed = true
	return folded
}

// clone copies an assignment target so it can appear on both sides.
func clone(expr ast.Expression) ast.Expression {
	var c ast.Expression
	switch n := expr.(type) {
	case *ast.Identifier:
		c = &ast.Identifier{Name: n.Name}
	case *ast.BasicLiteral:
		c = &ast.BasicLiteral{V: n.V}
	case *ast.PropertyExpression:
		c = &ast.PropertyExpression{Left: clone(n.Left), Property: n.Property}
	case *ast.IndexExpression:
		c = &ast.IndexExpression{Left: clone(n.Left), Index: clone(n.Index)}
	case *ast.InfixExpression:
		c = &ast.InfixExpression{Operator: n.Operator, Left: clone(n.Left), Right: clone(n.Right)}
	case *ast.PrefixExpression:
		c = &ast.PrefixExpression{Operator: n.Operator, Right: clone(n.Right)}
	case *ast.CallExpression:
		c = &ast.CallExpression{Function: clone(n.Function), Arguments: slices.Map(n.Arguments, clone)}
	default:
		panic(fmt.Errorf("%s: cannot duplicate expression %s", expr.Position(), expr))
	}
	c.(interface{ SetPosition(token.Position) }).SetPosition(expr.Position())
	return c
}
