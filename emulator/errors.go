package emulator

import (
	"errors"
	"fmt"
)

// ErrStepLimit is returned once a program exceeds the configured
// number of instructions.
var ErrStepLimit = errors.New("step limit exceeded")

// SyntaxError is returned for source lines which can not be assembled.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

func syntaxErrorf(line int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Line: line, Msg: fmt.Sprintf(format, args...)}
}

// Fault is returned when execution fails, e.g. on an invalid memory
// access or a division by zero.
type Fault struct {
	Line int
	Msg  string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("fault at line %d: %s", f.Line, f.Msg)
}
