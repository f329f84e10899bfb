package amd64

import (
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/token"
)

// CompilerError signals a violated invariant of the backend, e.g. missing
// type information or a definition without offsets. The front end is
// expected to rule these out.
type CompilerError struct {
	Pos token.Position
	Msg string
}

func (e *CompilerError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: compiler error: %s", e.Pos, e.Msg)
	}
	return fmt.Sprintf("compiler error: %s", e.Msg)
}

// NotImplementedError is returned for valid programs using a construct
// the backend does not lower.
type NotImplementedError struct {
	Pos  token.Position
	What string
}

func (e *NotImplementedError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: not implemented: %s", e.Pos, e.What)
	}
	return fmt.Sprintf("not implemented: %s", e.What)
}

func position(n ast.Node) token.Position {
	if n == nil {
		return token.Position{}
	}
	return n.Position()
}

// compilerError aborts code generation, see Generate.
func compilerError(n ast.Node, format string, args ...any) {
	panic(&CompilerError{Pos: position(n), Msg: fmt.Sprintf(format, args...)})
}

func notImplemented(n ast.Node, format string, args ...any) {
	panic(&NotImplementedError{Pos: position(n), What: fmt.Sprintf(format, args...)})
}
