package syntax

import (
	"errors"
	"fmt"
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/pkg/ext"
	"github.com/c0depwn/stacklang/token"
	"io"
	"strings"
)

// ParserError is returned for all syntactically invalid input.
type ParserError struct {
	Pos token.Position
	Msg string
}

func newParserError(p token.Position, msg string) *ParserError {
	return &ParserError{Pos: p, Msg: msg}
}

func (e *ParserError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Msg)
}

// Parse reads a complete program from r.
func Parse(filename string, r io.Reader) (*ast.File, error) {
	prog, err := parser.Parse(filename, r)
	if err != nil {
		return nil, wrap(err)
	}

	var file *ast.File
	if err := ext.CatchPanic(func() {
		file = converter{}.file(filename, prog)
	}); err != nil {
		return nil, err
	}
	return file, nil
}

// ParseString is a convenience wrapper around Parse.
func ParseString(filename, src string) (*ast.File, error) {
	return Parse(filename, strings.NewReader(src))
}

func wrap(err error) error {
	var pErr participle.Error
	if errors.As(err, &pErr) {
		return newParserError(pos(pErr.Position()), pErr.Message())
	}
	return &ParserError{Msg: err.Error()}
}

// Token as produced by the lexer, whitespace and comments excluded.
type Token struct {
	Kind     string
	Literal  string
	Position token.Position
}

func (t Token) String() string {
	return fmt.Sprintf(
		"Kind='%s', Literal='%s', Row='%d' Col='%d'",
		t.Kind, t.Literal, t.Position.Row, t.Position.Col,
	)
}

// Tokens lexes r without parsing.
func Tokens(filename string, r io.Reader) ([]Token, error) {
	names := lexer.SymbolsByRune(definition)

	lex, err := definition.Lex(filename, r)
	if err != nil {
		return nil, wrap(err)
	}

	var tokens []Token
	for {
		t, err := lex.Next()
		if err != nil {
			return nil, wrap(err)
		}
		if t.EOF() {
			return tokens, nil
		}
		kind := names[t.Type]
		if kind == "Whitespace" || kind == "Comment" {
			continue
		}
		tokens = append(tokens, Token{Kind: kind, Literal: t.Value, Position: pos(t.Pos)})
	}
}
