package types

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/constant"
	"github.com/c0depwn/stacklang/pkg/ext"
	ext2 "github.com/c0depwn/stacklang/pkg/slices"
	"github.com/c0depwn/stacklang/symbols"
	"github.com/c0depwn/stacklang/token"
	"io"
	"strconv"
)

type AnalyzeOption func(*Options)

func WithTraversalTrace(out io.Writer) AnalyzeOption {
	return func(o *Options) { o.tracer = newTracer(out) }
}

type Options struct {
	tracer trace
}

func NewOptions() *Options {
	return &Options{
		tracer: dummyTracer{},
	}
}

func (opt *Options) Apply(options ...AnalyzeOption) *Options {
	for _, o := range options {
		o(opt)
	}
	return opt
}

// Analyze type related semantics. If no error is returned all relevant AST nodes will
// be annotated with their type information (the nodes T field will not be nil) and
// f.Checked is set.
//
// The checker accepts every same-typed arithmetic and equality, including
// aggregates. Code generation may reject pairings it cannot lower.
func Analyze(f *ast.File, info symbols.Info, opts ...AnalyzeOption) error {
	options := NewOptions().Apply(opts...)

	c := &checker{
		info:    info,
		structs: make(map[string]*Struct),
		untyped: make(map[ast.Expression]bool),
		tracer:  options.tracer,
	}

	// Struct types are collected first so they can reference each other
	// regardless of declaration order.
	options.tracer.info("> collect struct declarations")
	if err := c.declareStructs(f); err != nil {
		return err
	}

	options.tracer.info("> check statements")
	if err := c.check(f); err != nil {
		return err
	}

	f.Checked = true
	return nil
}

type checker struct {
	info    symbols.Info
	structs map[string]*Struct
	funcs   ext.Stack[*ast.FuncDeclaration]

	// untyped contains integer literal expressions which still
	// adapt to the type expected by their context.
	untyped map[ast.Expression]bool

	tracer trace
}

func (c *checker) declareStructs(f *ast.File) error {
	var decls []*ast.StructDeclaration
	for _, stmt := range f.Statements {
		if decl, ok := stmt.(*ast.StructDeclaration); ok {
			s := &Struct{Name: decl.Name()}
			c.structs[decl.Name()] = s
			decl.T = s
			decls = append(decls, decl)
		}
	}

	for _, decl := range decls {
		s := decl.T.(*Struct)
		seen := make(map[string]bool)
		for _, field := range decl.Fields {
			if seen[field.Name] {
				return newTypeError(fmt.Sprintf("duplicate field '%s'", field.Name)).at(field.Position())
			}
			seen[field.Name] = true

			t, err := FromTypeIdentifier(field.TypeID, c.structs)
			if err != nil {
				return err
			}
			if IsUnit(t) {
				return newTypeError(fmt.Sprintf("field '%s' has unit type", field.Name)).at(field.Position())
			}
			s.Fields = append(s.Fields, Field{Name: field.Name, T: t, Optional: field.Optional})
		}
		s.Declared = true
	}
	return nil
}

func (c *checker) check(f *ast.File) error {
	var (
		nodeStack []ast.Node
		err       error
	)

	ast.Inspect(f, func(n ast.Node) bool {
		if err != nil {
			return false
		}

		// post-traversal, all children carry their types
		if n == nil {
			popped := nodeStack[len(nodeStack)-1]
			nodeStack = nodeStack[:len(nodeStack)-1]

			err = c.checkDispatch(popped)
			if _, ok := popped.(*ast.FuncDeclaration); ok {
				c.funcs.Pop()
			}
			c.tracer.post(popped)
			return true
		}

		c.tracer.pre(n)
		nodeStack = append(nodeStack, n)

		// Function signatures are resolved before the body,
		// recursive calls rely on it.
		if fDecl, ok := n.(*ast.FuncDeclaration); ok {
			if err = c.declareFunc(fDecl); err != nil {
				return false
			}
			c.funcs.Push(fDecl)
		}
		return true
	})

	return err
}

func (c *checker) declareFunc(fDecl *ast.FuncDeclaration) error {
	params := make([]ast.Type, len(fDecl.Parameters))
	for i, param := range fDecl.Parameters {
		t, err := FromTypeIdentifier(param.TypeID, c.structs)
		if err != nil {
			return err
		}
		if IsUnit(t) {
			return newTypeError(fmt.Sprintf("parameter '%s' has unit type", param.Name())).at(param.Position())
		}
		param.T = t
		params[i] = t
	}

	result, err := FromTypeIdentifier(fDecl.Result, c.structs)
	if err != nil {
		return err
	}

	// annotate the node with type information
	fDecl.T = NewFunction(result, params)
	return nil
}

// checkDispatch dynamically calls the type checking function
// depending on the [ast.Node]'s type.
// Any type checking relevant [ast.Node] has its own check
// function, so it can provide more specific errors.
func (c *checker) checkDispatch(n ast.Node) error {
	var err error
	switch node := n.(type) {
	case *ast.LetDeclaration:
		err = c.checkLet(node)
	case *ast.IfStatement:
		err = c.checkCondition(node.Condition, ifStmtErrInvalidCondition)
	case *ast.WhileStatement:
		err = c.checkCondition(node.Condition, whileStmtErrInvalidCondition)
	case *ast.ReturnStatement:
		err = c.checkReturn(node)
	case *ast.DebugStatement:
		err = c.checkDebug(node)
	case *ast.Identifier:
		err = c.checkIdentifier(node)
	case *ast.BasicLiteral:
		node.SetType(FromConstant(node.Value()))
		if node.Value().Type() == constant.Int && !constant.IsNegative(node.Value()) {
			c.untyped[node] = true
		}
	case *ast.ArrayLiteral:
		err = c.checkArrayLiteral(node)
	case *ast.TupleLiteral:
		err = c.checkTupleLiteral(node)
	case *ast.StructLiteral:
		err = c.checkStructLiteral(node)
	case *ast.Assignment:
		err = c.checkAssignment(node)
	case *ast.PrefixExpression:
		err = c.checkPrefixExpression(node)
	case *ast.PostfixExpression:
		err = c.checkPostfixExpression(node)
	case *ast.InfixExpression:
		err = c.checkInfixExpression(node)
	case *ast.IndexExpression:
		err = c.checkIndexExpression(node)
	case *ast.PropertyExpression:
		err = c.checkPropertyExpression(node)
	case *ast.CallExpression:
		err = c.checkCallExpression(node)
	}
	return err
}

// coerce adapts untyped integer expressions to the integer type want.
func (c *checker) coerce(expr ast.Expression, want ast.Type) {
	if !c.untyped[expr] || !IsInteger(want) {
		return
	}
	delete(c.untyped, expr)
	expr.SetType(want)
	if infix, ok := expr.(*ast.InfixExpression); ok {
		c.coerce(infix.Left, want)
		c.coerce(infix.Right, want)
	}
}

// coerceBoth adapts an untyped operand to the type of the other.
func (c *checker) coerceBoth(left, right ast.Expression) {
	switch {
	case c.untyped[left] && !c.untyped[right]:
		c.coerce(left, right.Type())
	case c.untyped[right] && !c.untyped[left]:
		c.coerce(right, left.Type())
	}
}

const checkErrMissingType = "expression has no type"

func (c *checker) typeOf(expr ast.Expression) (ast.Type, error) {
	t := expr.Type()
	if t == nil {
		return nil, newTypeError(checkErrMissingType).at(expr.Position())
	}
	return t, nil
}

const (
	identErrNotValue = "not a value"
)

func (c *checker) checkIdentifier(ident *ast.Identifier) error {
	decl := c.info.Lookup(ident)
	if decl == nil {
		// panic because the symbol must be resolvable at this point
		panic(fmt.Errorf("declaration for name '%s' nil", ident.Name))
	}
	if _, ok := decl.(*ast.StructDeclaration); ok {
		return newTypeError(identErrNotValue).at(ident.Position())
	}
	if decl.Type() == nil {
		panic(fmt.Errorf("declaration type for name '%s' nil", ident.Name))
	}
	ident.SetType(decl.Type())
	return nil
}

const (
	letErrInvalidInit = "let type does not match expression"
	letErrUnit        = "cannot bind a unit value"
)

func (c *checker) checkLet(decl *ast.LetDeclaration) error {
	exprT, err := c.typeOf(decl.Expression)
	if err != nil {
		return err
	}

	if decl.TypeID != nil {
		declT, err := FromTypeIdentifier(decl.TypeID, c.structs)
		if err != nil {
			return err
		}
		c.coerce(decl.Expression, declT)
		exprT = decl.Expression.Type()
		if !declT.Equals(exprT) {
			return newTypeError(letErrInvalidInit).
				at(decl.Position()).
				WithExpect(declT).
				WithActual(exprT)
		}
	}

	if IsUnit(exprT) {
		return newTypeError(letErrUnit).at(decl.Position())
	}
	if _, ok := exprT.(Function); ok {
		return newTypeError(identErrNotValue).at(decl.Expression.Position())
	}

	// literals bound without annotation settle on their default
	delete(c.untyped, decl.Expression)
	decl.T = exprT
	return nil
}

const (
	assignmentErrIncompatible = "incompatible assignment"
	assignmentErrTarget       = "cannot assign to expression"
)

// assignable reports whether expr denotes a storage location.
func (c *checker) assignable(expr ast.Expression) bool {
	switch e := expr.(type) {
	case *ast.Identifier:
		switch c.info.Lookup(e).(type) {
		case *ast.LetDeclaration, *ast.Param:
			return true
		}
		return false
	case *ast.PropertyExpression:
		return c.assignable(e.Left)
	case *ast.IndexExpression:
		return c.assignable(e.Left)
	default:
		return false
	}
}

func (c *checker) checkAssignment(assignment *ast.Assignment) error {
	if !c.assignable(assignment.Left) {
		return newTypeError(assignmentErrTarget).at(assignment.Position())
	}

	leftT, err := c.typeOf(assignment.Left)
	if err != nil {
		return err
	}
	c.coerce(assignment.Value, leftT)
	valueT, err := c.typeOf(assignment.Value)
	if err != nil {
		return err
	}

	if !valueT.Equals(leftT) {
		return newTypeError(assignmentErrIncompatible).
			at(assignment.Position()).
			WithExpect(leftT).
			WithActual(valueT)
	}
	if token.IsCompoundAssign(assignment.Operator) && !hasArithmetic(leftT) {
		return newTypeError(infixErrOperatorIncompatible).at(assignment.Position())
	}

	assignment.SetType(NewUnit())
	return nil
}

const (
	ifStmtErrInvalidCondition    = "invalid if condition"
	whileStmtErrInvalidCondition = "invalid loop condition"
)

func (c *checker) checkCondition(cond ast.Expression, msg string) error {
	condT, err := c.typeOf(cond)
	if err != nil {
		return err
	}

	// ensure the expression result is a bool
	if condT.Equals(NewBool()) {
		return nil
	}

	return newTypeError(msg).
		at(cond.Position()).
		WithExpect(NewBool()).
		WithActual(condT)
}

const (
	retStmtErrIncompatible = "incompatible return value"
	retStmtErrOutside      = "return outside of function"
)

func (c *checker) checkReturn(statement *ast.ReturnStatement) error {
	if len(c.funcs) == 0 {
		return newTypeError(retStmtErrOutside).at(statement.Position())
	}
	fDecl := c.funcs.Top()
	resultT := fDecl.Type().(Function).Result

	var exprT ast.Type = NewUnit()
	if statement.Expression != nil {
		c.coerce(statement.Expression, resultT)
		exprT = statement.Expression.Type()
	}

	if !resultT.Equals(exprT) {
		return newTypeError(retStmtErrIncompatible).
			at(statement.Position()).
			WithExpect(resultT).
			WithActual(exprT)
	}

	return nil
}

const debugErrInvalid = "value cannot be printed"

func (c *checker) checkDebug(statement *ast.DebugStatement) error {
	t, err := c.typeOf(statement.Expression)
	if err != nil {
		return err
	}
	if !printable(t) {
		return newTypeError(debugErrInvalid).at(statement.Position()).WithActual(t)
	}
	return nil
}

func printable(t ast.Type) bool {
	switch tt := t.(type) {
	case Unit, Function:
		return false
	case Tuple:
		for _, e := range tt.Elements {
			if !printable(e) {
				return false
			}
		}
	}
	return true
}

const (
	arrayLitErrEmpty                   = "array literal must not be empty"
	arrayLitErrIncorrectElementTypeFmt = "incorrect array element type at index %d"
)

func (c *checker) checkArrayLiteral(array *ast.ArrayLiteral) error {
	if len(array.Elements) == 0 {
		return newTypeError(arrayLitErrEmpty).at(array.Position())
	}

	// an explicitly typed element fixes the type of untyped ones
	var elemT ast.Type
	for _, element := range array.Elements {
		if !c.untyped[element] {
			elemT = element.Type()
			break
		}
	}
	if elemT == nil {
		elemT = array.Elements[0].Type()
	}

	// Ensure that the array literals elements match.
	for i, element := range array.Elements {
		c.coerce(element, elemT)
		delete(c.untyped, element)
		if !element.Type().Equals(elemT) {
			return newTypeError(fmt.Sprintf(arrayLitErrIncorrectElementTypeFmt, i)).
				at(element.Position()).
				WithExpect(elemT).
				WithActual(element.Type())
		}
	}
	if IsUnit(elemT) {
		return newTypeError(letErrUnit).at(array.Position())
	}

	array.SetType(NewArray(uint64(len(array.Elements)), elemT))
	return nil
}

func (c *checker) checkTupleLiteral(tuple *ast.TupleLiteral) error {
	if len(tuple.Elements) == 0 {
		tuple.SetType(NewUnit())
		return nil
	}
	elems := ext2.Map(tuple.Elements, func(e ast.Expression) ast.Type {
		delete(c.untyped, e)
		return e.Type()
	})
	for i, e := range elems {
		if IsUnit(e) {
			return newTypeError(letErrUnit).at(tuple.Elements[i].Position())
		}
	}
	tuple.SetType(NewTuple(elems...))
	return nil
}

const (
	structLitErrUnknown      = "unknown struct"
	structLitErrFieldFmt     = "unknown field '%s'"
	structLitErrDuplicateFmt = "duplicate field '%s'"
	structLitErrMissingFmt   = "missing field '%s'"
	structLitErrFieldTypeFmt = "incorrect type of field '%s'"
)

func (c *checker) checkStructLiteral(lit *ast.StructLiteral) error {
	s, ok := c.structs[lit.Identifier.Name]
	if !ok {
		return newTypeError(structLitErrUnknown).at(lit.Position())
	}

	given := make(map[string]bool)
	for _, fv := range lit.Fields {
		field, idx := s.Field(fv.Name)
		if idx < 0 {
			return newTypeError(fmt.Sprintf(structLitErrFieldFmt, fv.Name)).at(fv.Position())
		}
		if given[fv.Name] {
			return newTypeError(fmt.Sprintf(structLitErrDuplicateFmt, fv.Name)).at(fv.Position())
		}
		given[fv.Name] = true

		c.coerce(fv.Value, field.T)
		if !fv.Value.Type().Equals(field.T) {
			return newTypeError(fmt.Sprintf(structLitErrFieldTypeFmt, fv.Name)).
				at(fv.Position()).
				WithExpect(field.T).
				WithActual(fv.Value.Type())
		}
	}

	for _, field := range s.Fields {
		if !field.Optional && !given[field.Name] {
			return newTypeError(fmt.Sprintf(structLitErrMissingFmt, field.Name)).at(lit.Position())
		}
	}

	lit.SetType(s)
	return nil
}

const prefixErrOperatorIncompatible = "incompatible prefix operator"

func (c *checker) checkPrefixExpression(expr *ast.PrefixExpression) error {
	switch expr.Operator {
	case token.Sub:
		c.coerce(expr.Right, NewInt())
		if IsSigned(expr.Right.Type()) {
			expr.SetType(NewInt())
			return nil
		}
	case token.Excl:
		if expr.Right.Type().Equals(NewBool()) {
			expr.SetType(NewBool())
			return nil
		}
	}

	return newTypeError(prefixErrOperatorIncompatible).
		at(expr.Position()).
		WithActual(expr.Right.Type())
}

const postfixErrOperand = "increment requires an integer variable"

func (c *checker) checkPostfixExpression(expr *ast.PostfixExpression) error {
	if !c.assignable(expr.Left) || !IsInteger(expr.Left.Type()) {
		return newTypeError(postfixErrOperand).at(expr.Position())
	}
	expr.SetType(expr.Left.Type())
	return nil
}

const (
	infixErrOperandMismatch      = "type of operands must match"
	infixErrOperatorIncompatible = "incompatible infix operator"
)

// hasArithmetic reports whether + - * / % are accepted on t.
// Only function and unit values are excluded.
func hasArithmetic(t ast.Type) bool {
	switch t.(type) {
	case Unit, Function, Bool:
		return false
	}
	return true
}

func (c *checker) checkInfixExpression(expr *ast.InfixExpression) error {
	c.coerceBoth(expr.Left, expr.Right)
	leftT := expr.Left.Type().Underlying()
	rightT := expr.Right.Type().Underlying()

	// left and right type must match
	if !rightT.Equals(leftT) {
		return newTypeError(infixErrOperandMismatch).
			at(expr.Position()).
			WithExpect(leftT).
			WithActual(rightT)
	}

	switch {
	case token.IsLogical(expr.Operator):
		if !leftT.Equals(NewBool()) {
			return newTypeError(infixErrOperatorIncompatible).at(expr.Position()).WithActual(leftT)
		}
		expr.SetType(NewBool())
	case expr.Operator == token.Equal || expr.Operator == token.NotEqual:
		if IsUnit(leftT) {
			return newTypeError(infixErrOperatorIncompatible).at(expr.Position()).WithActual(leftT)
		}
		c.settle(expr.Left, expr.Right)
		expr.SetType(NewBool())
	case token.IsRelational(expr.Operator):
		if !IsInteger(leftT) {
			return newTypeError(infixErrOperatorIncompatible).at(expr.Position()).WithActual(leftT)
		}
		c.settle(expr.Left, expr.Right)
		expr.SetType(NewBool())
	default:
		if !hasArithmetic(leftT) {
			return newTypeError(infixErrOperatorIncompatible).at(expr.Position()).WithActual(leftT)
		}
		expr.SetType(leftT)
		if c.untyped[expr.Left] && c.untyped[expr.Right] {
			c.untyped[expr] = true
		}
	}
	return nil
}

// settle fixes untyped operands on their default type.
func (c *checker) settle(exprs ...ast.Expression) {
	for _, e := range exprs {
		delete(c.untyped, e)
	}
}

const (
	indexExprErrNotArray     = "indexing not supported on type"
	indexExprErrInvalidIndex = "bad index expression"
)

func (c *checker) checkIndexExpression(expr *ast.IndexExpression) error {
	// The result of the left expression must always be an array.
	arrT, ok := expr.Left.Type().(Array)
	if !ok {
		return newTypeError(indexExprErrNotArray).
			at(expr.Left.Position()).
			WithActual(expr.Left.Type())
	}

	c.settle(expr.Index)
	indexT := expr.Index.Type()
	if !IsInteger(indexT) {
		return newTypeError(indexExprErrInvalidIndex).
			at(expr.Index.Position()).
			WithExpect(NewUint()).
			WithActual(indexT)
	}

	expr.SetType(arrT.Element)
	return nil
}

const (
	propertyErrUnknownFmt = "unknown property '%s'"
	propertyErrNoFields   = "type has no properties"
)

func (c *checker) checkPropertyExpression(expr *ast.PropertyExpression) error {
	switch t := expr.Left.Type().(type) {
	case *Struct:
		field, idx := t.Field(expr.Property)
		if idx < 0 {
			return newTypeError(fmt.Sprintf(propertyErrUnknownFmt, expr.Property)).at(expr.Position())
		}
		expr.SetType(field.T)
	case Tuple:
		idx, err := strconv.Atoi(expr.Property)
		if err != nil || idx < 0 || idx >= len(t.Elements) {
			return newTypeError(fmt.Sprintf(propertyErrUnknownFmt, expr.Property)).at(expr.Position())
		}
		expr.SetType(t.Elements[idx])
	default:
		return newTypeError(propertyErrNoFields).at(expr.Position()).WithActual(expr.Left.Type())
	}
	return nil
}

const (
	callExprErrNotFunction          = "called value is not a function"
	callExprErrInvalidNumOfArgument = "incorrect number of arguments"
	callExprErrInvalidArgumentFmt   = "incorrect type of argument %d"
)

func (c *checker) checkCallExpression(expr *ast.CallExpression) error {
	funcT, ok := expr.Function.Type().(Function)
	if !ok {
		return newTypeError(callExprErrNotFunction).at(expr.Position())
	}

	// ensure number of arguments is correct
	if len(funcT.Params) != len(expr.Arguments) {
		return newTypeError(callExprErrInvalidNumOfArgument).at(expr.Position())
	}

	// ensure the arguments match the function signature
	for i, expectT := range funcT.Params {
		argExpr := expr.Arguments[i]
		c.coerce(argExpr, expectT)
		if !argExpr.Type().Equals(expectT) {
			return newTypeError(fmt.Sprintf(callExprErrInvalidArgumentFmt, i+1)).
				at(argExpr.Position()).
				WithExpect(expectT).
				WithActual(argExpr.Type())
		}
	}

	// the expressions type is the result type of the function
	expr.SetType(funcT.Result)
	return nil
}
