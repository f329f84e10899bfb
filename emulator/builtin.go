package emulator

import (
	"fmt"
	"strconv"
)

// clobbered is written to the scratch registers a primitive may
// destroy, programs relying on them fail loudly.
const clobbered = 0xdeadbeefdeadbeef

var builtins = map[string]func(m *Machine) error{
	"print_uint":    func(m *Machine) error { return m.print(strconv.AppendUint(nil, m.regs[rdi], 10)) },
	"print_uint_ln": func(m *Machine) error { return m.println(strconv.AppendUint(nil, m.regs[rdi], 10)) },
	"print_int":     func(m *Machine) error { return m.print(strconv.AppendInt(nil, int64(m.regs[rdi]), 10)) },
	"print_int_ln":  func(m *Machine) error { return m.println(strconv.AppendInt(nil, int64(m.regs[rdi]), 10)) },
	"print_str":     func(m *Machine) error { return m.printString(false) },
	"print_str_ln":  func(m *Machine) error { return m.printString(true) },
	"print_newline": func(m *Machine) error { return m.print([]byte{'\n'}) },
	"exit":          (*Machine).exit,
	"reserve":       (*Machine).reserve,
	"str_concat":    (*Machine).concat,
}

func isBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

func (m *Machine) builtin(name string) error {
	fn, ok := builtins[name]
	if !ok {
		return fmt.Errorf("call to undefined label '%s'", name)
	}
	if m.tracer != nil {
		m.tracer.builtin(m, name)
	}
	return fn(m)
}

func (m *Machine) clobber(result bool) {
	for _, r := range []int{rcx, rdx, rsi, rdi, r11} {
		m.regs[r] = clobbered
	}
	if result {
		m.regs[rax] = clobbered
	}
}

func (m *Machine) print(b []byte) error {
	m.clobber(true)
	if _, err := m.out.Write(b); err != nil {
		return &Fault{Msg: fmt.Sprintf("write: %v", err)}
	}
	return nil
}

func (m *Machine) println(b []byte) error {
	return m.print(append(b, '\n'))
}

func (m *Machine) printString(newline bool) error {
	s, err := m.mem.readString(m.regs[rdi])
	if err != nil {
		return err
	}
	b := append([]byte(nil), s...)
	if newline {
		b = append(b, '\n')
	}
	return m.print(b)
}

func (m *Machine) exit() error {
	m.exited = true
	m.status = int(m.regs[rdi] & 0xff)
	return nil
}

// alloc bumps the heap and returns an 8 byte aligned block of n bytes.
func (m *Machine) alloc(n uint64) (uint64, bool) {
	next := m.heapTop + (n+7)&^7
	if n > heapSize || next > heapBase+heapSize {
		return 0, false
	}
	addr := m.heapTop
	m.heapTop = next
	return addr, true
}

func (m *Machine) reserve() error {
	addr, ok := m.alloc(m.regs[rdi])
	if !ok {
		m.regs[rdi] = 2
		return m.exit()
	}
	m.clobber(false)
	m.regs[rax] = addr
	return nil
}

func (m *Machine) concat() error {
	a, err := m.mem.readString(m.regs[rdi])
	if err != nil {
		return err
	}
	b, err := m.mem.readString(m.regs[rsi])
	if err != nil {
		return err
	}

	n := uint64(len(a) + len(b))
	addr, ok := m.alloc(n + 8)
	if !ok {
		m.regs[rdi] = 2
		return m.exit()
	}
	if err := m.mem.write64(addr, n); err != nil {
		return err
	}
	dst, err := m.mem.slice(addr+8, int(n))
	if err != nil {
		return err
	}
	copy(dst[copy(dst, a):], b)

	m.clobber(false)
	m.regs[rax] = addr
	return nil
}
