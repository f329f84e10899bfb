package emulator

import (
	"fmt"
	"github.com/logrusorgru/aurora"
	"io"
)

// tracer prints executed instructions with the scratch registers.
type tracer struct {
	out io.Writer
	au  aurora.Aurora
}

var traced = []int{rax, rcx, rsp, rbp, r11}

func (t *tracer) instruction(m *Machine, instr instruction) {
	fmt.Fprintf(t.out, "%s %-32s", t.au.Blue(fmt.Sprintf("%5d", instr.line)), t.au.Cyan(instr.text))
	for _, r := range traced {
		fmt.Fprintf(t.out, " %s=%s", t.au.Yellow(registerNames[r]), fmt.Sprintf("%#x", m.regs[r]))
	}
	fmt.Fprintln(t.out)
}

func (t *tracer) builtin(m *Machine, name string) {
	fmt.Fprintf(t.out, "%s %s rdi=%#x rsi=%#x\n", t.au.Blue("   ->"), t.au.Magenta(name), m.regs[rdi], m.regs[rsi])
}
