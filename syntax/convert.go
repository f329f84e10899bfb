package syntax

import (
	"fmt"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/constant"
	"github.com/c0depwn/stacklang/token"
	"strconv"
)

// converter turns the participle parse tree into an ast.File.
// Conversion errors are raised with panic and recovered by Parse.
type converter struct{}

func pos(p lexer.Position) token.Position {
	return token.Position{Filename: p.Filename, Row: p.Line, Col: p.Column}
}

func identifier(p lexer.Position, name string) *ast.Identifier {
	ident := &ast.Identifier{Name: name}
	ident.SetPosition(pos(p))
	return ident
}

func (c converter) file(name string, prog *program) *ast.File {
	file := &ast.File{Name: name}
	file.SetPosition(pos(prog.Pos))
	for _, it := range prog.Items {
		if it.Struct != nil {
			file.Statements = append(file.Statements, c.structDef(it.Struct))
			continue
		}
		file.Statements = append(file.Statements, c.stmt(it.Stmt))
	}
	return file
}

func (c converter) structDef(s *structDef) *ast.StructDeclaration {
	decl := &ast.StructDeclaration{Identifier: identifier(s.Pos, s.Name)}
	decl.SetPosition(pos(s.Pos))
	for _, f := range s.Fields {
		field := &ast.Field{Name: f.Name, TypeID: c.typeExpr(f.Type), Optional: f.Optional}
		field.SetPosition(pos(f.Pos))
		decl.Fields = append(decl.Fields, field)
	}
	return decl
}

func (c converter) stmt(s *stmt) ast.Statement {
	switch {
	case s.Let != nil:
		decl := &ast.LetDeclaration{
			Identifier: identifier(s.Let.Pos, s.Let.Name),
			Expression: c.expr(s.Let.Value),
		}
		if s.Let.Type != nil {
			decl.TypeID = c.typeExpr(s.Let.Type)
		}
		decl.SetPosition(pos(s.Let.Pos))
		return decl
	case s.Fn != nil:
		return c.fnDef(s.Fn)
	case s.If != nil:
		return c.ifStmt(s.If)
	case s.While != nil:
		loop := &ast.WhileStatement{
			Condition: c.expr(s.While.Cond),
			Body:      c.block(s.While.Body),
		}
		loop.SetPosition(pos(s.While.Pos))
		return loop
	case s.Return != nil:
		ret := &ast.ReturnStatement{}
		if s.Return.Value != nil {
			ret.Expression = c.expr(s.Return.Value)
		}
		ret.SetPosition(pos(s.Return.Pos))
		return ret
	case s.Debug != nil:
		dbg := &ast.DebugStatement{Expression: c.expr(s.Debug.Value)}
		dbg.SetPosition(pos(s.Debug.Pos))
		return dbg
	case s.Block != nil:
		return c.block(s.Block)
	case s.Expr != nil:
		return c.exprStmt(s.Expr)
	default:
		panic(newParserError(pos(s.Pos), "empty statement"))
	}
}

func (c converter) fnDef(f *fnDef) *ast.FuncDeclaration {
	decl := &ast.FuncDeclaration{
		Identifier: identifier(f.Pos, f.Name),
		Body:       c.block(f.Body),
	}
	decl.SetPosition(pos(f.Pos))
	for _, p := range f.Params {
		param := &ast.Param{Identifier: identifier(p.Pos, p.Name), TypeID: c.typeExpr(p.Type)}
		param.SetPosition(pos(p.Pos))
		decl.Parameters = append(decl.Parameters, param)
	}
	if f.Result != nil {
		decl.Result = c.typeExpr(f.Result)
	}
	return decl
}

func (c converter) ifStmt(i *ifStmt) *ast.IfStatement {
	stmt := &ast.IfStatement{
		Condition:   c.expr(i.Cond),
		Consequence: c.block(i.Then),
	}
	stmt.SetPosition(pos(i.Pos))
	switch {
	case i.ElseIf != nil:
		stmt.Alternative = c.ifStmt(i.ElseIf)
	case i.Else != nil:
		stmt.Alternative = c.block(i.Else)
	}
	return stmt
}

func (c converter) block(b *block) *ast.Block {
	blk := &ast.Block{}
	blk.SetPosition(pos(b.Pos))
	for _, s := range b.Stmts {
		blk.Statements = append(blk.Statements, c.stmt(s))
	}
	return blk
}

func (c converter) exprStmt(s *exprStmt) ast.Statement {
	var e ast.Expression = c.expr(s.Left)
	if s.Op != "" {
		assignment := &ast.Assignment{Operator: s.Op, Left: e, Value: c.expr(s.Right)}
		assignment.SetPosition(pos(s.Pos))
		e = assignment
	}
	stmt := &ast.ExpressionStatement{Expression: e}
	stmt.SetPosition(pos(s.Pos))
	return stmt
}

func (c converter) typeExpr(t *typeExpr) ast.TypeIdentifier {
	switch {
	case t.Tuple != nil:
		tuple := &ast.TupleType{}
		tuple.SetPosition(pos(t.Pos))
		for _, e := range t.Tuple.Elements {
			tuple.Elements = append(tuple.Elements, c.typeExpr(e))
		}
		return tuple
	case t.Array != nil:
		n, err := strconv.ParseUint(t.Array.Len, 0, 64)
		if err != nil {
			panic(newParserError(pos(t.Pos), fmt.Sprintf("invalid array length %s", t.Array.Len)))
		}
		arr := &ast.ArrayType{Len: n, ElementType: c.typeExpr(t.Array.Element)}
		arr.SetPosition(pos(t.Pos))
		return arr
	default:
		name := &ast.TypeName{Name: t.Name}
		name.SetPosition(pos(t.Pos))
		return name
	}
}

// binary folds a left-associative operator chain.
func binary(p lexer.Position, left ast.Expression, op string, right ast.Expression) ast.Expression {
	infix := &ast.InfixExpression{Operator: op, Left: left, Right: right}
	infix.SetPosition(pos(p))
	return infix
}

func (c converter) expr(e *expr) ast.Expression {
	result := c.logicAnd(e.Left)
	for _, r := range e.Rest {
		result = binary(e.Pos, result, r.Op, c.logicAnd(r.Right))
	}
	return result
}

func (c converter) logicAnd(e *logicAnd) ast.Expression {
	result := c.comparison(e.Left)
	for _, r := range e.Rest {
		result = binary(e.Pos, result, r.Op, c.comparison(r.Right))
	}
	return result
}

func (c converter) comparison(e *comparison) ast.Expression {
	left := c.additive(e.Left)
	if e.Op == "" {
		return left
	}
	return binary(e.Pos, left, e.Op, c.additive(e.Right))
}

func (c converter) additive(e *additive) ast.Expression {
	result := c.multiplicative(e.Left)
	for _, r := range e.Rest {
		result = binary(e.Pos, result, r.Op, c.multiplicative(r.Right))
	}
	return result
}

func (c converter) multiplicative(e *multiplicative) ast.Expression {
	result := c.unary(e.Left)
	for _, r := range e.Rest {
		result = binary(e.Pos, result, r.Op, c.unary(r.Right))
	}
	return result
}

func (c converter) unary(u *unary) ast.Expression {
	if u.Postfix != nil {
		return c.postfix(u.Postfix)
	}
	prefix := &ast.PrefixExpression{Operator: u.Op, Right: c.unary(u.Operand)}
	prefix.SetPosition(pos(u.Pos))
	return prefix
}

func (c converter) postfix(p *postfix) ast.Expression {
	result := c.primary(p.Primary)
	for _, s := range p.Suffixes {
		switch {
		case s.Field != nil:
			prop := &ast.PropertyExpression{Left: result, Property: *s.Field}
			prop.SetPosition(pos(s.Pos))
			result = prop
		case s.Index != nil:
			index := &ast.IndexExpression{Left: result, Index: c.expr(s.Index)}
			index.SetPosition(pos(s.Pos))
			result = index
		case s.Call != nil:
			call := &ast.CallExpression{Function: result}
			call.SetPosition(pos(p.Pos))
			for _, a := range s.Call.Args {
				call.Arguments = append(call.Arguments, c.expr(a))
			}
			result = call
		}
	}
	if p.Step != "" {
		step := &ast.PostfixExpression{Operator: p.Step, Left: result}
		step.SetPosition(pos(p.Pos))
		result = step
	}
	return result
}

func (c converter) primary(p *primary) ast.Expression {
	switch {
	case p.Int != nil:
		return c.literal(p.Pos, constant.Int, *p.Int)
	case p.String != nil:
		return c.literal(p.Pos, constant.String, *p.String)
	case p.Bool != nil:
		return c.literal(p.Pos, constant.Bool, *p.Bool)
	case p.Struct != nil:
		lit := &ast.StructLiteral{Identifier: identifier(p.Struct.Pos, p.Struct.Name)}
		lit.SetPosition(pos(p.Struct.Pos))
		for _, f := range p.Struct.Fields {
			fv := &ast.FieldValue{Name: f.Name, Value: c.expr(f.Value)}
			fv.SetPosition(pos(f.Pos))
			lit.Fields = append(lit.Fields, fv)
		}
		return lit
	case p.Ident != nil:
		return identifier(p.Pos, *p.Ident)
	case p.Group != nil:
		if len(p.Group.Elements) == 1 && !p.Group.Trailing {
			return c.expr(p.Group.Elements[0])
		}
		tuple := &ast.TupleLiteral{}
		tuple.SetPosition(pos(p.Group.Pos))
		for _, e := range p.Group.Elements {
			tuple.Elements = append(tuple.Elements, c.expr(e))
		}
		return tuple
	case p.Array != nil:
		arr := &ast.ArrayLiteral{}
		arr.SetPosition(pos(p.Array.Pos))
		for _, e := range p.Array.Elements {
			arr.Elements = append(arr.Elements, c.expr(e))
		}
		return arr
	default:
		panic(newParserError(pos(p.Pos), "empty expression"))
	}
}

func (c converter) literal(p lexer.Position, kind constant.Type, text string) *ast.BasicLiteral {
	v, err := constant.FromLiteral(kind, text)
	if err != nil {
		panic(newParserError(pos(p), err.Error()))
	}
	lit := &ast.BasicLiteral{V: v}
	lit.SetPosition(pos(p))
	return lit
}
