package emulator

import (
	"encoding/binary"
	"strconv"
	"strings"
	"unicode"
)

// memory layout of assembled programs
const (
	staticBase = 0x400000
	heapBase   = 0x10000000
	heapSize   = 1 << 20
	stackTop   = 0x7ff000000000
	stackSize  = 1 << 20
)

var registers = map[string]int{
	"rax": 0, "rcx": 1, "rdx": 2, "rbx": 3, "rsp": 4, "rbp": 5, "rsi": 6, "rdi": 7,
	"r8": 8, "r9": 9, "r10": 10, "r11": 11, "r12": 12, "r13": 13, "r14": 14, "r15": 15,
}

var registerNames = func() [16]string {
	var names [16]string
	for name, i := range registers {
		names[i] = name
	}
	return names
}()

type operandKind int

const (
	kindRegister operandKind = iota
	kindByteRegister
	kindImmediate
	kindMemory
	kindLabel
)

type operand struct {
	kind operandKind
	reg  int
	imm  int64

	// memory operands: [base + index*scale + disp] or [rel label + disp]
	base, index int
	scale       int
	disp        int64
	label       string
}

type instruction struct {
	line     int
	mnemonic string
	operands []operand
	text     string
}

type symbol struct {
	section string
	offset  int
}

// Program is an assembled NASM source.
type Program struct {
	instructions []instruction
	labels       map[string]int
	addresses    map[string]uint64

	data    []byte
	bssSize int
}

// Parse assembles src. The first pass collects labels and data, the
// second resolves the labels referenced by instructions.
func Parse(src string) (*Program, error) {
	p := &Program{
		labels:    make(map[string]int),
		addresses: make(map[string]uint64),
	}
	if err := p.pass1(strings.Split(src, "\n")); err != nil {
		return nil, err
	}
	if err := p.pass2(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Program) pass1(lines []string) error {
	section := ".text"
	symbols := make(map[string]symbol)

	for i, raw := range lines {
		lineNo := i + 1
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		switch strings.ToLower(fields[0]) {
		case "bits", "default", "global", "extern", "%include", "%define":
			continue
		case "section":
			if len(fields) != 2 {
				return syntaxErrorf(lineNo, "invalid section directive")
			}
			section = fields[1]
			continue
		}

		if label, rest, ok := cutLabel(line); ok {
			if _, exists := p.labels[label]; exists {
				return syntaxErrorf(lineNo, "duplicate label '%s'", label)
			}
			if _, exists := symbols[label]; exists {
				return syntaxErrorf(lineNo, "duplicate label '%s'", label)
			}
			switch section {
			case ".text":
				p.labels[label] = len(p.instructions)
			case ".data":
				symbols[label] = symbol{section: section, offset: len(p.data)}
			case ".bss":
				symbols[label] = symbol{section: section, offset: p.bssSize}
			}
			line = rest
			if line == "" {
				continue
			}
		}

		var err error
		switch section {
		case ".text":
			err = p.instruction(lineNo, line)
		case ".data":
			err = p.define(lineNo, line)
		case ".bss":
			err = p.reserve(lineNo, line)
		default:
			err = syntaxErrorf(lineNo, "unknown section '%s'", section)
		}
		if err != nil {
			return err
		}
	}

	bssBase := staticBase + uint64(align(len(p.data)))
	for name, s := range symbols {
		if s.section == ".data" {
			p.addresses[name] = staticBase + uint64(s.offset)
		} else {
			p.addresses[name] = bssBase + uint64(s.offset)
		}
	}
	return nil
}

func (p *Program) pass2() error {
	if _, ok := p.labels["_start"]; !ok {
		return syntaxErrorf(0, "missing entry point _start")
	}
	for _, instr := range p.instructions {
		for _, op := range instr.operands {
			if op.label == "" {
				continue
			}
			switch op.kind {
			case kindLabel:
				_, isText := p.labels[op.label]
				if !isText && !isBuiltin(op.label) {
					return syntaxErrorf(instr.line, "undefined label '%s'", op.label)
				}
			case kindMemory:
				if _, ok := p.addresses[op.label]; !ok {
					return syntaxErrorf(instr.line, "undefined data label '%s'", op.label)
				}
			}
		}
	}
	return nil
}

func (p *Program) instruction(lineNo int, line string) error {
	mnemonic, rest, _ := strings.Cut(line, " ")
	instr := instruction{line: lineNo, mnemonic: strings.ToLower(mnemonic), text: line}

	rest = strings.TrimSpace(rest)
	if rest != "" {
		for _, field := range strings.Split(rest, ",") {
			op, err := parseOperand(strings.TrimSpace(field))
			if err != nil {
				return syntaxErrorf(lineNo, "%v", err)
			}
			instr.operands = append(instr.operands, op)
		}
	}

	if !isKnown(instr.mnemonic) {
		return syntaxErrorf(lineNo, "unsupported instruction '%s'", instr.mnemonic)
	}
	p.instructions = append(p.instructions, instr)
	return nil
}

// define handles dq and db directives.
func (p *Program) define(lineNo int, line string) error {
	directive, rest, _ := strings.Cut(line, " ")
	items := splitItems(rest)

	switch strings.ToLower(directive) {
	case "dq":
		for _, item := range items {
			v, err := parseNumber(item)
			if err != nil {
				return syntaxErrorf(lineNo, "%v", err)
			}
			p.data = binary.LittleEndian.AppendUint64(p.data, uint64(v))
		}
	case "db":
		for _, item := range items {
			if len(item) >= 2 && item[0] == '"' && item[len(item)-1] == '"' {
				p.data = append(p.data, item[1:len(item)-1]...)
				continue
			}
			v, err := parseNumber(item)
			if err != nil || v < 0 || v > 255 {
				return syntaxErrorf(lineNo, "invalid byte '%s'", item)
			}
			p.data = append(p.data, byte(v))
		}
	default:
		return syntaxErrorf(lineNo, "unsupported data directive '%s'", directive)
	}
	return nil
}

func (p *Program) reserve(lineNo int, line string) error {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return syntaxErrorf(lineNo, "invalid reservation")
	}
	n, err := parseNumber(fields[1])
	if err != nil || n < 0 {
		return syntaxErrorf(lineNo, "invalid reservation size '%s'", fields[1])
	}
	switch strings.ToLower(fields[0]) {
	case "resq":
		p.bssSize += 8 * int(n)
	case "resb":
		p.bssSize += int(n)
	default:
		return syntaxErrorf(lineNo, "unsupported reservation '%s'", fields[0])
	}
	return nil
}

func parseOperand(s string) (operand, error) {
	for _, prefix := range []string{"qword ", "byte "} {
		s = strings.TrimSpace(strings.TrimPrefix(s, prefix))
	}

	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		return parseMemory(s[1 : len(s)-1])
	}
	if reg, ok := registers[s]; ok {
		return operand{kind: kindRegister, reg: reg}, nil
	}
	if s == "al" {
		return operand{kind: kindByteRegister, reg: 0}, nil
	}
	if v, err := parseNumber(s); err == nil {
		return operand{kind: kindImmediate, imm: v}, nil
	}
	if isIdentifier(s) {
		return operand{kind: kindLabel, label: s}, nil
	}
	return operand{}, strconvError("operand", s)
}

func parseMemory(s string) (operand, error) {
	op := operand{kind: kindMemory, base: -1, index: -1}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "rel ") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "rel "))
	}

	// split into signed terms
	s = strings.ReplaceAll(s, "-", "+-")
	for _, term := range strings.Split(s, "+") {
		term = strings.ReplaceAll(strings.TrimSpace(term), " ", "")
		if term == "" {
			continue
		}
		if reg, scale, ok := strings.Cut(term, "*"); ok {
			idx, known := registers[reg]
			n, err := strconv.Atoi(scale)
			if !known || err != nil {
				return op, strconvError("index", term)
			}
			op.index, op.scale = idx, n
			continue
		}
		if reg, ok := registers[term]; ok {
			if op.base < 0 {
				op.base = reg
			} else {
				op.index, op.scale = reg, 1
			}
			continue
		}
		if v, err := parseNumber(term); err == nil {
			op.disp += v
			continue
		}
		if isIdentifier(term) && op.label == "" {
			op.label = term
			continue
		}
		return op, strconvError("memory operand", s)
	}
	return op, nil
}

type parseError struct {
	what, value string
}

func (e *parseError) Error() string {
	return "invalid " + e.what + " '" + e.value + "'"
}

func strconvError(what, value string) error {
	return &parseError{what: what, value: value}
}

func parseNumber(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.ParseInt(s, 0, 64); err == nil {
		return v, nil
	}
	v, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, strconvError("number", s)
	}
	return int64(v), nil
}

// cutLabel splits "label: rest".
func cutLabel(line string) (string, string, bool) {
	label, rest, ok := strings.Cut(line, ":")
	if !ok || !isIdentifier(label) {
		return "", "", false
	}
	return label, strings.TrimSpace(rest), true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || r == '.' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// stripComment removes a trailing ';' comment outside of string literals.
func stripComment(line string) string {
	quoted := false
	for i, r := range line {
		switch r {
		case '"':
			quoted = !quoted
		case ';':
			if !quoted {
				return line[:i]
			}
		}
	}
	return line
}

// splitItems splits a comma separated list outside of string literals.
func splitItems(s string) []string {
	var (
		items  []string
		quoted bool
		start  int
	)
	for i, r := range s {
		switch r {
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				items = append(items, strings.TrimSpace(s[start:i]))
				start = i + 1
			}
		}
	}
	if rest := strings.TrimSpace(s[start:]); rest != "" {
		items = append(items, rest)
	}
	return items
}

func align(n int) int {
	return (n + 7) &^ 7
}
