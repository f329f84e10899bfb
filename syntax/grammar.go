package syntax

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Rule order matters, the first matching rule wins.
var definition = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Int", Pattern: `0[xX][0-9a-fA-F]+|\d+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Operator", Pattern: `->|\+\+|--|==|!=|<=|>=|&&|\|\||[-+*/%]=?|[<>!=]`},
	{Name: "Punct", Pattern: `[(){}\[\],;:.?]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var parser = participle.MustBuild[program](
	participle.Lexer(definition),
	participle.Elide("Comment", "Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(8),
)

type program struct {
	Pos   lexer.Position
	Items []*item `@@*`
}

type item struct {
	Struct *structDef `  @@`
	Stmt   *stmt      `| @@`
}

type structDef struct {
	Pos    lexer.Position
	Name   string      `"struct" @Ident "{"`
	Fields []*fieldDef `( @@ ( "," @@ )* ","? )? "}"`
}

type fieldDef struct {
	Pos      lexer.Position
	Name     string    `@Ident`
	Optional bool      `@"?"?`
	Type     *typeExpr `":" @@`
}

type stmt struct {
	Pos    lexer.Position
	Let    *letStmt    `  @@`
	Fn     *fnDef      `| @@`
	If     *ifStmt     `| @@`
	While  *whileStmt  `| @@`
	Return *returnStmt `| @@`
	Debug  *debugStmt  `| @@`
	Block  *block      `| @@`
	Expr   *exprStmt   `| @@`
}

type letStmt struct {
	Pos   lexer.Position
	Name  string    `"let" @Ident`
	Type  *typeExpr `( ":" @@ )?`
	Value *expr     `"=" @@ ";"`
}

type fnDef struct {
	Pos    lexer.Position
	Name   string    `"fn" @Ident "("`
	Params []*param  `( @@ ( "," @@ )* )? ")"`
	Result *typeExpr `( "->" @@ )?`
	Body   *block    `@@`
}

type param struct {
	Pos  lexer.Position
	Name string    `@Ident ":"`
	Type *typeExpr `@@`
}

type ifStmt struct {
	Pos    lexer.Position
	Cond   *expr   `"if" @@`
	Then   *block  `@@`
	ElseIf *ifStmt `( "else" ( @@`
	Else   *block  `| @@ ) )?`
}

type whileStmt struct {
	Pos  lexer.Position
	Cond *expr  `"while" @@ "do"`
	Body *block `@@`
}

type returnStmt struct {
	Pos   lexer.Position
	Value *expr `"return" @@? ";"`
}

type debugStmt struct {
	Pos   lexer.Position
	Value *expr `"debug" @@ ";"`
}

type block struct {
	Pos   lexer.Position
	Stmts []*stmt `"{" @@* "}"`
}

type exprStmt struct {
	Pos   lexer.Position
	Left  *expr  `@@`
	Op    string `( @("=" | "+=" | "-=" | "*=" | "/=" | "%=")`
	Right *expr  `@@ )? ";"`
}

type typeExpr struct {
	Pos   lexer.Position
	Tuple *tupleType `  @@`
	Array *arrayType `| @@`
	Name  string     `| @Ident`
}

type tupleType struct {
	Elements []*typeExpr `"(" ( @@ ( "," @@ )* )? ")"`
}

type arrayType struct {
	Element *typeExpr `"[" @@ ";"`
	Len     string    `@Int "]"`
}

// Expressions, one level per precedence.

type expr struct {
	Pos  lexer.Position
	Left *logicAnd `@@`
	Rest []*orRest `@@*`
}

type orRest struct {
	Pos   lexer.Position
	Op    string    `@"||"`
	Right *logicAnd `@@`
}

type logicAnd struct {
	Pos  lexer.Position
	Left *comparison `@@`
	Rest []*andRest  `@@*`
}

type andRest struct {
	Pos   lexer.Position
	Op    string      `@"&&"`
	Right *comparison `@@`
}

type comparison struct {
	Pos   lexer.Position
	Left  *additive `@@`
	Op    string    `( @("==" | "!=" | "<=" | ">=" | "<" | ">")`
	Right *additive `@@ )?`
}

type additive struct {
	Pos  lexer.Position
	Left *multiplicative `@@`
	Rest []*additiveRest `@@*`
}

type additiveRest struct {
	Pos   lexer.Position
	Op    string          `@("+" | "-")`
	Right *multiplicative `@@`
}

type multiplicative struct {
	Pos  lexer.Position
	Left *unary               `@@`
	Rest []*multiplicativeRest `@@*`
}

type multiplicativeRest struct {
	Pos   lexer.Position
	Op    string `@("*" | "/" | "%")`
	Right *unary `@@`
}

type unary struct {
	Pos     lexer.Position
	Op      string   `( @("-" | "!")`
	Operand *unary   `@@ )`
	Postfix *postfix `| @@`
}

type postfix struct {
	Pos      lexer.Position
	Primary  *primary  `@@`
	Suffixes []*suffix `@@*`
	Step     string    `@("++" | "--")?`
}

type suffix struct {
	Pos   lexer.Position
	Field *string   `  "." @(Ident | Int)`
	Index *expr     `| "[" @@ "]"`
	Call  *callArgs `| @@`
}

type callArgs struct {
	Args []*expr `"(" ( @@ ( "," @@ )* )? ")"`
}

type primary struct {
	Pos    lexer.Position
	Int    *string    `  @Int`
	String *string    `| @String`
	Bool   *string    `| @("true" | "false")`
	Struct *structLit `| @@`
	Ident  *string    `| @Ident`
	Group  *group     `| @@`
	Array  *arrayLit  `| @@`
}

type structLit struct {
	Pos    lexer.Position
	Name   string       `@Ident "{"`
	Fields []*fieldInit `@@ ( "," @@ )* ","? "}"`
}

type fieldInit struct {
	Pos   lexer.Position
	Name  string `@Ident ":"`
	Value *expr  `@@`
}

// group is a parenthesized expression or a tuple literal,
// "(e)" groups while "()", "(e,)" and "(a, b)" are tuples.
type group struct {
	Pos      lexer.Position
	Elements []*expr `"(" ( @@ ( "," @@ )*`
	Trailing bool    `@","? )? ")"`
}

type arrayLit struct {
	Pos      lexer.Position
	Elements []*expr `"[" @@ ( "," @@ )* ","? "]"`
}
