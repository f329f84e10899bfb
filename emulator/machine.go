package emulator

import (
	"fmt"
	"github.com/logrusorgru/aurora"
	"io"
	"math"
	"math/bits"
)

// DefaultMaxSteps bounds the number of executed instructions.
const DefaultMaxSteps = 10_000_000

// returnBase marks return addresses pushed by call, the instruction
// index is added to it.
const returnBase = 0x7fff00000000

type Option func(*Machine)

// WithMaxSteps limits the number of executed instructions, 0 removes the limit.
func WithMaxSteps(n int) Option {
	return func(m *Machine) { m.maxSteps = n }
}

// WithTrace writes every executed instruction and the scratch registers to out.
func WithTrace(out io.Writer, au aurora.Aurora) Option {
	return func(m *Machine) { m.tracer = &tracer{out: out, au: au} }
}

// Machine executes a Program. Runtime primitives are implemented by
// the machine itself.
type Machine struct {
	regs           [16]uint64
	zf, sf, cf, of bool

	mem     *memory
	heapTop uint64

	program  *Program
	pc       int
	steps    int
	maxSteps int

	out    io.Writer
	tracer *tracer

	exited bool
	status int
}

// New returns a machine ready to execute p from _start.
func New(p *Program, stdout io.Writer, opts ...Option) *Machine {
	m := &Machine{
		mem:      &memory{},
		heapTop:  heapBase,
		program:  p,
		pc:       p.labels["_start"],
		maxSteps: DefaultMaxSteps,
		out:      stdout,
	}

	static := make([]byte, align(len(p.data))+p.bssSize)
	copy(static, p.data)
	m.mem.add(staticBase, static)
	m.mem.add(heapBase, make([]byte, heapSize))
	m.mem.add(stackTop-stackSize, make([]byte, stackSize))
	m.regs[rsp] = stackTop

	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Run parses and executes src. The exit status of the program is returned.
func Run(src string, stdout io.Writer, opts ...Option) (int, error) {
	p, err := Parse(src)
	if err != nil {
		return 0, err
	}
	return New(p, stdout, opts...).Run()
}

// Run executes until the program exits.
func (m *Machine) Run() (int, error) {
	for !m.exited {
		if m.maxSteps > 0 && m.steps >= m.maxSteps {
			return 0, ErrStepLimit
		}
		if err := m.Step(); err != nil {
			return 0, err
		}
	}
	return m.status, nil
}

const (
	rax = 0
	rcx = 1
	rdx = 2
	rsp = 4
	rbp = 5
	rsi = 6
	rdi = 7
	r11 = 11
)

var mnemonics = map[string]bool{
	"mov": true, "movzx": true, "lea": true, "push": true, "pop": true,
	"add": true, "sub": true, "and": true, "or": true, "xor": true, "cmp": true, "test": true,
	"imul": true, "neg": true, "sar": true, "shl": true, "shr": true,
	"cqo": true, "div": true, "idiv": true, "cmovnz": true, "cmovz": true,
	"jmp": true, "call": true, "ret": true,
}

var conditions = map[string]func(m *Machine) bool{
	"e":  func(m *Machine) bool { return m.zf },
	"z":  func(m *Machine) bool { return m.zf },
	"ne": func(m *Machine) bool { return !m.zf },
	"nz": func(m *Machine) bool { return !m.zf },
	"l":  func(m *Machine) bool { return m.sf != m.of },
	"le": func(m *Machine) bool { return m.zf || m.sf != m.of },
	"g":  func(m *Machine) bool { return !m.zf && m.sf == m.of },
	"ge": func(m *Machine) bool { return m.sf == m.of },
	"b":  func(m *Machine) bool { return m.cf },
	"be": func(m *Machine) bool { return m.cf || m.zf },
	"a":  func(m *Machine) bool { return !m.cf && !m.zf },
	"ae": func(m *Machine) bool { return !m.cf },
	"s":  func(m *Machine) bool { return m.sf },
	"ns": func(m *Machine) bool { return !m.sf },
}

func isKnown(mnemonic string) bool {
	if mnemonics[mnemonic] {
		return true
	}
	if len(mnemonic) > 1 && mnemonic[0] == 'j' {
		_, ok := conditions[mnemonic[1:]]
		return ok
	}
	if len(mnemonic) > 3 && mnemonic[:3] == "set" {
		_, ok := conditions[mnemonic[3:]]
		return ok
	}
	return false
}

// Step executes a single instruction.
func (m *Machine) Step() error {
	if m.pc < 0 || m.pc >= len(m.program.instructions) {
		return &Fault{Msg: fmt.Sprintf("execution left the program at %d", m.pc)}
	}
	instr := m.program.instructions[m.pc]
	m.pc++
	m.steps++

	if m.tracer != nil {
		m.tracer.instruction(m, instr)
	}

	var err error
	switch {
	case instr.mnemonic[0] == 'j' && instr.mnemonic != "jmp":
		if conditions[instr.mnemonic[1:]](m) {
			err = m.jump(instr.operands)
		}
	case len(instr.mnemonic) > 3 && instr.mnemonic[:3] == "set":
		v := uint64(0)
		if conditions[instr.mnemonic[3:]](m) {
			v = 1
		}
		err = m.write(expect(instr.operands, 0), v)
	default:
		err = m.dispatch(instr)
	}

	if err != nil {
		if f, ok := err.(*Fault); ok {
			f.Line = instr.line
			return f
		}
		return &Fault{Line: instr.line, Msg: err.Error()}
	}
	return nil
}

func (m *Machine) dispatch(instr instruction) error {
	ops := instr.operands
	switch instr.mnemonic {
	case "mov":
		return m.move(ops, math.MaxUint64)
	case "movzx":
		return m.move(ops, 0xff)
	case "lea":
		return m.lea(ops)
	case "push":
		v, err := m.read(expect(ops, 0))
		if err != nil {
			return err
		}
		return m.push(v)
	case "pop":
		v, err := m.pop()
		if err != nil {
			return err
		}
		return m.write(expect(ops, 0), v)
	case "add", "sub", "and", "or", "xor", "cmp", "test":
		return m.arith(instr.mnemonic, ops)
	case "sar", "shl", "shr":
		return m.shift(instr.mnemonic, ops)
	case "imul":
		return m.imul(ops)
	case "neg":
		return m.neg(ops)
	case "cqo":
		if int64(m.regs[rax]) < 0 {
			m.regs[rdx] = math.MaxUint64
		} else {
			m.regs[rdx] = 0
		}
		return nil
	case "div":
		return m.div(ops)
	case "idiv":
		return m.idiv(ops)
	case "cmovnz", "cmovz":
		if m.zf == (instr.mnemonic == "cmovz") {
			return m.move(ops, math.MaxUint64)
		}
		return nil
	case "jmp":
		return m.jump(ops)
	case "call":
		return m.call(ops)
	case "ret":
		return m.ret()
	}
	return fmt.Errorf("unsupported instruction '%s'", instr.mnemonic)
}

func expect(ops []operand, i int) operand {
	if i < len(ops) {
		return ops[i]
	}
	return operand{kind: -1}
}

// operands

func (m *Machine) address(op operand) (uint64, error) {
	if op.kind != kindMemory {
		return 0, fmt.Errorf("expected memory operand")
	}
	var addr uint64
	if op.label != "" {
		addr = m.program.addresses[op.label]
	}
	if op.base >= 0 {
		addr += m.regs[op.base]
	}
	if op.index >= 0 {
		addr += m.regs[op.index] * uint64(op.scale)
	}
	return addr + uint64(op.disp), nil
}

func (m *Machine) read(op operand) (uint64, error) {
	switch op.kind {
	case kindRegister:
		return m.regs[op.reg], nil
	case kindByteRegister:
		return m.regs[op.reg] & 0xff, nil
	case kindImmediate:
		return uint64(op.imm), nil
	case kindMemory:
		addr, err := m.address(op)
		if err != nil {
			return 0, err
		}
		return m.mem.read64(addr)
	default:
		return 0, fmt.Errorf("invalid source operand")
	}
}

func (m *Machine) write(op operand, v uint64) error {
	switch op.kind {
	case kindRegister:
		m.regs[op.reg] = v
		return nil
	case kindByteRegister:
		m.regs[op.reg] = m.regs[op.reg]&^0xff | v&0xff
		return nil
	case kindMemory:
		addr, err := m.address(op)
		if err != nil {
			return err
		}
		return m.mem.write64(addr, v)
	default:
		return fmt.Errorf("invalid destination operand")
	}
}

func (m *Machine) push(v uint64) error {
	m.regs[rsp] -= 8
	return m.mem.write64(m.regs[rsp], v)
}

func (m *Machine) pop() (uint64, error) {
	v, err := m.mem.read64(m.regs[rsp])
	m.regs[rsp] += 8
	return v, err
}

func (m *Machine) setFlags(res uint64) {
	m.zf = res == 0
	m.sf = res>>63 == 1
}

// instructions

func (m *Machine) binary(ops []operand) (uint64, uint64, error) {
	if len(ops) != 2 {
		return 0, 0, fmt.Errorf("expected two operands")
	}
	a, err := m.read(ops[0])
	if err != nil {
		return 0, 0, err
	}
	b, err := m.read(ops[1])
	return a, b, err
}

func (m *Machine) move(ops []operand, mask uint64) error {
	if len(ops) != 2 {
		return fmt.Errorf("expected two operands")
	}
	v, err := m.read(ops[1])
	if err != nil {
		return err
	}
	return m.write(ops[0], v&mask)
}

func (m *Machine) lea(ops []operand) error {
	if len(ops) != 2 {
		return fmt.Errorf("expected two operands")
	}
	addr, err := m.address(ops[1])
	if err != nil {
		return err
	}
	return m.write(ops[0], addr)
}

func (m *Machine) arith(mnemonic string, ops []operand) error {
	a, b, err := m.binary(ops)
	if err != nil {
		return err
	}

	var res uint64
	switch mnemonic {
	case "add":
		res = a + b
		m.cf = res < a
		m.of = a>>63 == b>>63 && res>>63 != a>>63
	case "sub", "cmp":
		res = a - b
		m.cf = a < b
		m.of = a>>63 != b>>63 && res>>63 != a>>63
	case "and", "test":
		res = a & b
		m.cf, m.of = false, false
	case "or":
		res = a | b
		m.cf, m.of = false, false
	case "xor":
		res = a ^ b
		m.cf, m.of = false, false
	}
	m.setFlags(res)

	if mnemonic == "cmp" || mnemonic == "test" {
		return nil
	}
	return m.write(ops[0], res)
}

func (m *Machine) shift(mnemonic string, ops []operand) error {
	a, b, err := m.binary(ops)
	if err != nil {
		return err
	}
	var res uint64
	switch mnemonic {
	case "sar":
		res = uint64(int64(a) >> (b & 63))
	case "shl":
		res = a << (b & 63)
	default:
		res = a >> (b & 63)
	}
	m.setFlags(res)
	return m.write(ops[0], res)
}

func (m *Machine) imul(ops []operand) error {
	var a, b uint64
	var err error
	switch len(ops) {
	case 2:
		a, b, err = m.binary(ops)
	case 3:
		if a, err = m.read(ops[1]); err == nil {
			b, err = m.read(ops[2])
		}
	default:
		err = fmt.Errorf("expected two or three operands")
	}
	if err != nil {
		return err
	}
	res := uint64(int64(a) * int64(b))
	m.setFlags(res)
	return m.write(ops[0], res)
}

func (m *Machine) neg(ops []operand) error {
	a, err := m.read(expect(ops, 0))
	if err != nil {
		return err
	}
	res := -a
	m.cf = a != 0
	m.of = a == 1<<63
	m.setFlags(res)
	return m.write(ops[0], res)
}

func (m *Machine) div(ops []operand) error {
	d, err := m.read(expect(ops, 0))
	if err != nil {
		return err
	}
	if d == 0 {
		return &Fault{Msg: "division by zero"}
	}
	if m.regs[rdx] >= d {
		return &Fault{Msg: "division overflow"}
	}
	m.regs[rax], m.regs[rdx] = bits.Div64(m.regs[rdx], m.regs[rax], d)
	return nil
}

func (m *Machine) idiv(ops []operand) error {
	d, err := m.read(expect(ops, 0))
	if err != nil {
		return err
	}
	a, b := int64(m.regs[rax]), int64(d)
	if b == 0 {
		return &Fault{Msg: "division by zero"}
	}
	if high := int64(m.regs[rdx]); (a < 0 && high != -1) || (a >= 0 && high != 0) {
		return &Fault{Msg: "unsupported dividend in rdx:rax"}
	}
	if a == math.MinInt64 && b == -1 {
		return &Fault{Msg: "division overflow"}
	}
	m.regs[rax], m.regs[rdx] = uint64(a/b), uint64(a%b)
	return nil
}

func (m *Machine) jump(ops []operand) error {
	target := expect(ops, 0)
	idx, ok := m.program.labels[target.label]
	if target.kind != kindLabel || !ok {
		return fmt.Errorf("invalid jump target")
	}
	m.pc = idx
	return nil
}

func (m *Machine) call(ops []operand) error {
	target := expect(ops, 0)
	if target.kind != kindLabel {
		return fmt.Errorf("invalid call target")
	}
	if idx, ok := m.program.labels[target.label]; ok {
		if err := m.push(returnBase + uint64(m.pc)); err != nil {
			return err
		}
		m.pc = idx
		return nil
	}
	return m.builtin(target.label)
}

func (m *Machine) ret() error {
	addr, err := m.pop()
	if err != nil {
		return err
	}
	if addr < returnBase || addr-returnBase > uint64(len(m.program.instructions)) {
		return &Fault{Msg: fmt.Sprintf("return to invalid address %#x", addr)}
	}
	m.pc = int(addr - returnBase)
	return nil
}
