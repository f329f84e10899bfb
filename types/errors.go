package types

import (
	"errors"
	"fmt"
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/token"
	"strings"
)

// TypeCheckError is returned for ill-typed programs.
type TypeCheckError struct {
	Pos   token.Position
	msg   string
	parts []string
}

func newTypeError(msg string) *TypeCheckError {
	return &TypeCheckError{
		msg: fmt.Sprintf("type error: %s", msg),
	}
}

func (e *TypeCheckError) at(p token.Position) *TypeCheckError {
	e.Pos = p
	return e
}

func (e *TypeCheckError) WithExpect(expected ast.Type) *TypeCheckError {
	return &TypeCheckError{
		Pos:   e.Pos,
		msg:   e.msg,
		parts: append(e.parts, fmt.Sprintf("expected '%s'", expected)),
	}
}

func (e *TypeCheckError) WithActual(actual ast.Type) *TypeCheckError {
	return &TypeCheckError{
		Pos:   e.Pos,
		msg:   e.msg,
		parts: append(e.parts, fmt.Sprintf("got '%s'", actual)),
	}
}

// Is compares message and details, the position is ignored.
func (e *TypeCheckError) Is(err error) bool {
	var other *TypeCheckError
	ok := errors.As(err, &other)
	if !ok {
		return false
	}

	if other.msg != e.msg {
		return false
	}
	if len(other.parts) != len(e.parts) {
		return false
	}

	for idx := range other.parts {
		if other.parts[idx] != e.parts[idx] {
			return false
		}
	}

	return true
}

func (e *TypeCheckError) Error() string {
	msg := e.msg
	if len(e.parts) > 0 {
		msg = fmt.Sprintf("%s: %s", e.msg, strings.Join(e.parts, ", "))
	}
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s", e.Pos, msg)
	}
	return msg
}
