package amd64

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/constant"
	"github.com/c0depwn/stacklang/token"
	"github.com/c0depwn/stacklang/types"
	"strconv"
)

// lower translates expr into one value per component. Only tuple
// literals produce more than one component.
func (g *generator) lower(expr ast.Expression) []Value {
	if expr.Type() == nil {
		compilerError(expr, "missing type of expression %s", expr)
	}

	switch e := expr.(type) {
	case *ast.BasicLiteral:
		return []Value{g.literal(e)}
	case *ast.Identifier:
		return []Value{g.identifier(e)}
	case *ast.TupleLiteral:
		values := make([]Value, len(e.Elements))
		for i, elem := range e.Elements {
			values[i] = g.one(g.lower(elem), elem.Type())
		}
		if len(values) == 1 {
			return []Value{g.one(values, e.Type())}
		}
		return values
	case *ast.ArrayLiteral:
		return []Value{g.arrayLiteral(e)}
	case *ast.StructLiteral:
		return []Value{g.structLiteral(e)}
	case *ast.InfixExpression:
		return []Value{g.infix(e)}
	case *ast.PrefixExpression:
		return []Value{g.prefix(e)}
	case *ast.PostfixExpression:
		return []Value{g.postfix(e)}
	case *ast.Assignment:
		return []Value{g.assignment(e)}
	case *ast.IndexExpression:
		return []Value{g.index(e)}
	case *ast.PropertyExpression:
		return []Value{g.property(e)}
	case *ast.CallExpression:
		return g.call(e)
	default:
		compilerError(expr, "unsupported expression %T", expr)
	}
	return nil
}

func (g *generator) literal(lit *ast.BasicLiteral) Value {
	v := lit.Value()
	switch v.Type() {
	case constant.Int:
		w, err := constant.AsWord(v)
		if err != nil {
			compilerError(lit, "%v", err)
		}
		return Value{Loc: Immediate{V: int64(w)}, T: lit.Type()}
	case constant.Bool:
		b, _ := constant.AsBool(v)
		if b {
			return Value{Loc: Immediate{V: 1}, T: lit.Type()}
		}
		return Value{Loc: Immediate{V: 0}, T: lit.Type()}
	case constant.String:
		s, _ := constant.AsString(v)
		return Value{Loc: Data{Label: g.pool.Add(s)}, T: lit.Type()}
	default:
		compilerError(lit, "invalid literal %s", lit)
	}
	return Value{}
}

func (g *generator) identifier(ident *ast.Identifier) Value {
	decl := g.info.Lookup(ident)
	switch decl.(type) {
	case *ast.LetDeclaration, *ast.Param:
	case *ast.FuncDeclaration:
		notImplemented(ident, "function '%s' used as value", ident.Name)
	default:
		compilerError(ident, "'%s' does not refer to a variable", ident.Name)
	}

	r := g.resolve(decl, ident)
	return Value{Loc: r, T: ident.Type(), Writeback: g.storeTo(r, ident.Type())}
}

func (g *generator) arrayLiteral(lit *ast.ArrayLiteral) Value {
	arrT := types.As[types.Array](lit.Type())
	codes := make([]Code, len(lit.Elements))
	for i, elem := range lit.Elements {
		codes[i] = g.materialize(g.one(g.lower(elem), arrT.Element))
	}
	return Value{Setup: Seq(codes...), Loc: Stack{Slots: g.layout.Size(arrT)}, T: arrT}
}

// structLiteral pushes the fields in declaration order, omitted
// optional fields are zero.
func (g *generator) structLiteral(lit *ast.StructLiteral) Value {
	s, ok := lit.Type().(*types.Struct)
	if !ok {
		compilerError(lit, "struct literal of type %s", lit.Type())
	}

	codes := make([]Code, len(s.Fields))
	for i, field := range s.Fields {
		expr := lit.Lookup(field.Name)
		if expr == nil {
			if !field.Optional {
				compilerError(lit, "missing field '%s'", field.Name)
			}
			codes[i] = g.zero(field.T)
			continue
		}
		codes[i] = g.materialize(g.one(g.lower(expr), field.T))
	}
	return Value{Setup: Seq(codes...), Loc: Stack{Slots: g.layout.Size(s)}, T: s}
}

// zero returns code pushing the zero value of t. Strings are empty
// rather than null.
func (g *generator) zero(t ast.Type) Code {
	switch tt := t.(type) {
	case types.String:
		return g.materialize(Value{Loc: Data{Label: g.pool.Add("")}, T: tt})
	case types.Array:
		codes := make([]Code, tt.Length)
		for i := range codes {
			codes[i] = g.zero(tt.Element)
		}
		return Seq(codes...)
	case types.Tuple:
		codes := make([]Code, len(tt.Elements))
		for i, elem := range tt.Elements {
			codes[i] = g.zero(elem)
		}
		return Seq(codes...)
	case *types.Struct:
		codes := make([]Code, len(tt.Fields))
		for i, field := range tt.Fields {
			codes[i] = g.zero(field.T)
		}
		return Seq(codes...)
	}
	size := g.layout.Size(t)
	return func(e *emitter) {
		for k := 0; k < size; k++ {
			e.pushImmediate(0)
		}
	}
}

// operands lowers a single valued operand of an operator.
func (g *generator) operand(op ast.Node, expr ast.Expression) Value {
	values := g.lower(expr)
	if len(values) > 1 {
		notImplemented(op, "operator on tuple values")
	}
	return g.one(values, expr.Type())
}

var (
	setSigned = map[string]string{
		token.Equal: "e", token.NotEqual: "ne",
		token.LessThan: "l", token.LessThanEqual: "le",
		token.GreaterThan: "g", token.GreaterThanEqual: "ge",
	}
	setUnsigned = map[string]string{
		token.Equal: "e", token.NotEqual: "ne",
		token.LessThan: "b", token.LessThanEqual: "be",
		token.GreaterThan: "a", token.GreaterThanEqual: "ae",
	}
)

// infix evaluates left then right. The left operand is kept on the
// stack while the right one is computed, the right operand ends up in
// rcx and the result in rax.
func (g *generator) infix(expr *ast.InfixExpression) Value {
	if token.IsLogical(expr.Operator) {
		return g.logical(expr)
	}

	operandT := expr.Left.Type()
	switch operandT.(type) {
	case types.Uint, types.Int, types.Bool:
	case types.String:
		if expr.Operator != token.Sum {
			notImplemented(expr, "operator %s on str", expr.Operator)
		}
	case types.Tuple:
		notImplemented(expr, "operator %s on tuple values", expr.Operator)
	default:
		notImplemented(expr, "operator %s on %s", expr.Operator, operandT)
	}

	left := g.load(g.operand(expr, expr.Left))
	right := g.load(g.operand(expr, expr.Right))

	if _, ok := operandT.(types.String); ok {
		setup := func(e *emitter) {
			left(e)
			e.push("rax")
			right(e)
			e.mov("rsi", "rax")
			e.pop("rdi")
			e.callRuntime(StrConcat)
		}
		return Value{Setup: setup, Loc: Acc{}, T: expr.Type()}
	}

	signed := types.IsSigned(operandT)
	op := g.arithmetic(expr, signed)

	setup := func(e *emitter) {
		left(e)
		e.push("rax")
		right(e)
		e.mov("rcx", "rax")
		e.pop("rax")
		op(e)
	}
	return Value{Setup: setup, Loc: Acc{}, T: expr.Type()}
}

// arithmetic returns the code computing rax op rcx into rax.
func (g *generator) arithmetic(expr *ast.InfixExpression, signed bool) Code {
	switch expr.Operator {
	case token.Sum:
		return func(e *emitter) { e.instr("add", "rax", "rcx") }
	case token.Sub:
		return func(e *emitter) { e.instr("sub", "rax", "rcx") }
	case token.Mul:
		return func(e *emitter) { e.instr("imul", "rax", "rcx") }
	case token.Div, token.Mod:
		return func(e *emitter) {
			if signed {
				e.instr("cqo")
				e.instr("idiv", "rcx")
			} else {
				e.instr("xor", "rdx", "rdx")
				e.instr("div", "rcx")
			}
			if expr.Operator == token.Mod {
				e.mov("rax", "rdx")
			}
		}
	}

	cc, ok := setUnsigned[expr.Operator]
	if signed {
		cc, ok = setSigned[expr.Operator]
	}
	if !ok {
		notImplemented(expr, "operator %s", expr.Operator)
	}
	return func(e *emitter) {
		e.instr("cmp", "rax", "rcx")
		e.instr("set"+cc, "al")
		e.instr("movzx", "rax", "al")
	}
}

// logical short-circuits && and ||, booleans are 0 or 1.
func (g *generator) logical(expr *ast.InfixExpression) Value {
	left := g.load(g.operand(expr, expr.Left))
	right := g.load(g.operand(expr, expr.Right))

	cc := "z"
	if expr.Operator == token.LogicalOr {
		cc = "nz"
	}

	setup := func(e *emitter) {
		end := e.newLabel()
		left(e)
		e.instr("test", "rax", "rax")
		e.branch(cc, end)
		right(e)
		e.insert(end)
	}
	return Value{Setup: setup, Loc: Acc{}, T: expr.Type()}
}

func (g *generator) prefix(expr *ast.PrefixExpression) Value {
	right := g.load(g.operand(expr, expr.Right))

	var op Code
	switch expr.Operator {
	case token.Sub:
		if !types.IsSigned(expr.Right.Type()) {
			notImplemented(expr, "negation of %s", expr.Right.Type())
		}
		op = func(e *emitter) { e.instr("neg", "rax") }
	case token.Excl:
		op = func(e *emitter) { e.instr("xor", "rax", "1") }
	default:
		notImplemented(expr, "prefix operator %s", expr.Operator)
	}
	return Value{Setup: Seq(right, op), Loc: Acc{}, T: expr.Type()}
}

// postfix increments or decrements a variable and yields its previous value.
func (g *generator) postfix(expr *ast.PostfixExpression) Value {
	if _, ok := expr.Left.(*ast.Identifier); !ok {
		notImplemented(expr, "%s on %s", expr.Operator, expr.Left)
	}
	target := g.operand(expr, expr.Left)
	if target.Writeback == nil {
		compilerError(expr, "%s is not assignable", expr.Left)
	}

	op := "add"
	if expr.Operator == token.Decrement {
		op = "sub"
	}

	setup := func(e *emitter) {
		g.load(target)(e)
		e.push("rax")
		e.instr(op, "rax", "1")
		target.Writeback(e)
		e.pop("rax")
	}
	return Value{Setup: setup, Loc: Acc{}, T: expr.Type()}
}

// assignment evaluates the value first and the target afterward. The
// value is kept on the stack, a dynamic offset of the target ends up
// on top of it.
func (g *generator) assignment(expr *ast.Assignment) Value {
	if token.IsCompoundAssign(expr.Operator) {
		compilerError(expr, "compound assignment in simplified tree")
	}

	value := g.one(g.lower(expr.Value), expr.Left.Type())
	target := g.operand(expr, expr.Left)
	r, ok := target.Loc.(Ref)
	if !ok || target.Writeback == nil {
		compilerError(expr, "%s is not assignable", expr.Left)
	}
	size := g.layout.Size(target.T)

	setup := func(e *emitter) {
		g.materialize(value)(e)
		run(e, target.Setup)
		base := r.base(e, 0)
		for k := size - 1; k >= 0; k-- {
			e.pop("rcx")
			e.mov(slot(base, r.Slot+k), "rcx")
		}
	}
	return Value{Setup: setup, Loc: None{}, T: expr.Type()}
}

// index requires an unsigned index. Literal indices are folded into
// the slot of the element.
func (g *generator) index(expr *ast.IndexExpression) Value {
	arrT, ok := expr.Left.Type().(types.Array)
	if !ok {
		notImplemented(expr, "indexing %s", expr.Left.Type())
	}
	if _, ok := expr.Index.Type().(types.Uint); !ok {
		notImplemented(expr.Index, "index of type %s", expr.Index.Type())
	}
	elemSize := g.layout.Size(arrT.Element)

	left := g.operand(expr, expr.Left)

	if lit, ok := expr.Index.(*ast.BasicLiteral); ok {
		i, err := constant.AsUint(lit.Value())
		if err != nil {
			compilerError(lit, "%v", err)
		}
		return g.project(left, int(i)*elemSize, arrT.Element)
	}

	index := g.load(g.operand(expr, expr.Index))

	switch loc := left.Loc.(type) {
	case Ref:
		dynamic := loc.Dynamic
		setup := func(e *emitter) {
			run(e, left.Setup)
			index(e)
			e.instr("imul", "rax", "rax", imm(int64(elemSize*Word)))
			if dynamic {
				e.instr("add", qword(mem("rsp", 0)), "rax")
			} else {
				e.push("rax")
			}
		}
		r := loc
		r.Dynamic = true
		return Value{Setup: setup, Loc: r, T: arrT.Element, Writeback: g.storeTo(r, arrT.Element)}
	case Stack:
		return g.scalar(g.extractDynamic(left, index, arrT.Element))
	default:
		compilerError(expr, "indexing value without storage")
	}
	return Value{}
}

// property accumulates the offset of struct fields and tuple elements,
// chains of properties address the final field directly.
func (g *generator) property(expr *ast.PropertyExpression) Value {
	left := g.operand(expr, expr.Left)

	switch t := expr.Left.Type().(type) {
	case *types.Struct:
		_, idx := t.Field(expr.Property)
		if idx < 0 {
			compilerError(expr, "unknown field '%s'", expr.Property)
		}
		return g.project(left, g.layout.FieldOffset(t, idx), expr.Type())
	case types.Tuple:
		idx, err := strconv.Atoi(expr.Property)
		if err != nil || idx < 0 || idx >= len(t.Elements) {
			compilerError(expr, "unknown element '%s'", expr.Property)
		}
		return g.project(left, g.layout.ElementOffset(t, idx), expr.Type())
	default:
		compilerError(expr, "property of %s", expr.Left.Type())
	}
	return Value{}
}

// project returns the part of v of type t at the static offset.
func (g *generator) project(v Value, offset int, t ast.Type) Value {
	switch loc := v.Loc.(type) {
	case Ref:
		r := loc.offset(offset)
		return Value{Setup: v.Setup, Loc: r, T: t, Writeback: g.storeTo(r, t)}
	case Stack:
		return g.scalar(g.extract(v, offset, t))
	default:
		compilerError(nil, "projection of value without storage")
	}
	return Value{}
}

// scalar moves single slot stack values into rax.
func (g *generator) scalar(v Value) Value {
	if types.IsAggregate(v.T) {
		return v
	}
	return Value{Setup: g.load(v), Loc: Acc{}, T: v.T}
}
