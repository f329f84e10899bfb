package symbols

import (
	"errors"
	"fmt"
	"github.com/c0depwn/stacklang/token"
)

// SymbolError is returned for unresolved and redeclared names.
type SymbolError struct {
	Pos token.Position
	msg string
}

func newSymbolError(msg string) *SymbolError {
	return &SymbolError{msg: msg}
}

func newSymbolErrorF(format string, args ...any) *SymbolError {
	return newSymbolError(fmt.Sprintf(format, args...))
}

func (se *SymbolError) at(p token.Position) *SymbolError {
	se.Pos = p
	return se
}

func (se *SymbolError) Error() string {
	if se.Pos.IsValid() {
		return fmt.Sprintf("%s: symbol error: %s", se.Pos, se.msg)
	}
	return fmt.Sprintf("symbol error: %s", se.msg)
}

func (se *SymbolError) Is(target error) bool {
	var other *SymbolError
	if !errors.As(target, &other) {
		return false
	}
	return other.msg == se.msg
}
