package amd64

import (
	"fmt"
	"strings"
)

// Word is the size of a stack slot in bytes.
const Word = 8

type procedure struct {
	label string
	lines []string
}

// emitter accumulates instructions per procedure and tracks the stack
// depth at compile time. Every operation changing rsp updates both
// counters, except calls of runtime primitives which leave the stack
// as found.
type emitter struct {
	procs   []*procedure
	current *procedure

	// local is the number of slots pushed since the prologue of the
	// current frame, global the slot index of the top of stack counted
	// from the start of the outermost frame. Addresses are computed from
	// global and the frame base only, local always equals global - base
	// and is kept for tracing the stack depth within a frame.
	local, global int

	labels int
}

func newEmitter() *emitter {
	return &emitter{}
}

// begin starts a new procedure and returns the interrupted one.
func (e *emitter) begin(label string) *procedure {
	prev := e.current
	e.current = &procedure{label: label}
	e.procs = append(e.procs, e.current)
	return prev
}

func (e *emitter) resume(p *procedure) {
	e.current = p
}

func (e *emitter) newLabel() string {
	l := fmt.Sprintf("L_%d", e.labels)
	e.labels++
	return l
}

func (e *emitter) insert(label string) {
	e.current.lines = append(e.current.lines, label+":")
}

func (e *emitter) comment(format string, args ...any) {
	e.current.lines = append(e.current.lines, "    ; "+fmt.Sprintf(format, args...))
}

func (e *emitter) instr(op string, operands ...string) {
	line := "    " + op
	if len(operands) > 0 {
		line += " " + strings.Join(operands, ", ")
	}
	e.current.lines = append(e.current.lines, line)
}

func (e *emitter) adjust(slots int) {
	e.local += slots
	e.global += slots
}

// stack related operations

func (e *emitter) push(src string) {
	e.instr("push", src)
	e.adjust(1)
}

func (e *emitter) pushImmediate(v int64) {
	e.instr("push", "qword "+imm(v))
	e.adjust(1)
}

func (e *emitter) pop(dst string) {
	e.instr("pop", dst)
	e.adjust(-1)
}

// reserve allocates n uninitialized slots.
func (e *emitter) reserve(n int) {
	if n == 0 {
		return
	}
	e.instr("sub", "rsp", imm(int64(n*Word)))
	e.adjust(n)
}

// drop releases n slots.
func (e *emitter) drop(n int) {
	if n == 0 {
		return
	}
	e.instr("add", "rsp", imm(int64(n*Word)))
	e.adjust(-n)
}

// control flow

func (e *emitter) jump(label string) {
	e.instr("jmp", label)
}

func (e *emitter) branch(cc, label string) {
	e.instr("j"+cc, label)
}

// callUser calls a user function and removes its argument slots.
func (e *emitter) callUser(label string, argSlots int) {
	e.instr("call", label)
	if argSlots > 0 {
		e.instr("add", "rsp", imm(int64(argSlots*Word)))
		e.adjust(-argSlots)
	}
}

// callRuntime calls a runtime primitive, the counters are not touched.
func (e *emitter) callRuntime(name string) {
	e.instr("call", name)
}

func (e *emitter) ret() {
	e.instr("ret")
}

// data movement

func (e *emitter) mov(dst, src string) {
	e.instr("mov", dst, src)
}

func (e *emitter) lea(dst, src string) {
	e.instr("lea", dst, src)
}

func (e *emitter) movImmediate(dst string, v int64) {
	if v == 0 {
		e.instr("xor", dst, dst)
		return
	}
	e.instr("mov", dst, imm(v))
}

// text returns all procedures in the order they were started.
func (e *emitter) text() string {
	sb := &strings.Builder{}
	for _, p := range e.procs {
		sb.WriteString(p.label)
		sb.WriteString(":\n")
		for _, l := range p.lines {
			sb.WriteString(l)
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// operands

func imm(v int64) string {
	return fmt.Sprintf("%d", v)
}

// mem returns the memory operand base+disp.
func mem(base string, disp int) string {
	switch {
	case disp > 0:
		return fmt.Sprintf("[%s + %d]", base, disp)
	case disp < 0:
		return fmt.Sprintf("[%s - %d]", base, -disp)
	default:
		return fmt.Sprintf("[%s]", base)
	}
}

// slot returns the memory operand of slot k counted downwards from base.
func slot(base string, k int) string {
	return mem(base, -k*Word)
}

func qword(operand string) string {
	return "qword " + operand
}

func rel(label string) string {
	return fmt.Sprintf("[rel %s]", label)
}
