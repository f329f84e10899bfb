package emulator

import (
	"bytes"
	"errors"
	"github.com/logrusorgru/aurora"
	"strings"
	"testing"
)

const header = "bits 64\ndefault rel\nglobal _start\n%include \"runtime.asm\"\n\nsection .text\n"

func run(t *testing.T, text string, data string) (string, int) {
	t.Helper()
	src := header + text + "\nsection .data\n" + data + "\nsection .bss\nstack_base: resq 1\n"
	out := &bytes.Buffer{}
	status, err := Run(src, out)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, src)
	}
	return out.String(), status
}

func TestPrint(t *testing.T) {
	out, status := run(t, `
_start:
    mov rbp, rsp
    mov [rel stack_base], rbp
    mov rdi, 42
    call print_uint_ln
    mov rdi, -7
    call print_int_ln
    lea rdi, [rel str_0]
    call print_str
    call print_newline
    xor rdi, rdi
    call exit
`, "str_0: dq 3\n    db \"a;b\"\n")

	if out != "42\n-7\na;b\n" {
		t.Errorf("unexpected output %q", out)
	}
	if status != 0 {
		t.Errorf("expected status 0, got %d", status)
	}
}

func TestArithmetic(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{code: "mov rax, 7\n mov rcx, 3\n sub rax, rcx", expected: "4"},
		{code: "mov rax, 7\n mov rcx, 3\n imul rax, rcx", expected: "21"},
		{code: "mov rax, 7\n imul rax, rax, 16", expected: "112"},
		{code: "mov rax, 7\n mov rcx, 3\n xor rdx, rdx\n div rcx", expected: "2"},
		{code: "mov rax, 7\n mov rcx, 3\n xor rdx, rdx\n div rcx\n mov rax, rdx", expected: "1"},
		{code: "mov rax, -7\n mov rcx, 2\n cqo\n idiv rcx", expected: "-3"},
		{code: "mov rax, -7\n mov rcx, 2\n cqo\n idiv rcx\n mov rax, rdx", expected: "-1"},
		{code: "mov rax, 5\n neg rax", expected: "-5"},
		{code: "mov rax, -16\n sar rax, 3", expected: "-2"},
		{code: "mov rax, 1\n xor rax, 1", expected: "0"},
		{code: "mov rax, 3\n mov rcx, 5\n cmp rax, rcx\n setl al\n movzx rax, al", expected: "1"},
		{code: "mov rax, -1\n mov rcx, 5\n cmp rax, rcx\n setb al\n movzx rax, al", expected: "0"},
		{code: "mov rax, -1\n mov rcx, 5\n cmp rax, rcx\n setg al\n movzx rax, al", expected: "0"},
		{code: "mov rax, 5\n mov rcx, 5\n cmp rax, rcx\n setge al\n movzx rax, al", expected: "1"},
	}

	for _, test := range tests {
		text := "_start:\n mov rbp, rsp\n" + test.code + "\n mov rdi, rax\n call print_int_ln\n xor rdi, rdi\n call exit\n"
		out, _ := run(t, text, "")
		if out != test.expected+"\n" {
			t.Errorf("%s: expected %s, got %q", test.code, test.expected, out)
		}
	}
}

func TestStackAndCalls(t *testing.T) {
	out, _ := run(t, `
_start:
    mov rbp, rsp
    push qword 2
    push qword 40
    call add
    add rsp, 16
    mov rdi, rax
    call print_uint_ln
    xor rdi, rdi
    call exit
add:
    push rbp
    mov rbp, rsp
    mov rax, [rbp + 16]
    mov rcx, [rbp + 24]
    add rax, rcx
    mov rsp, rbp
    pop rbp
    ret
`, "")

	if out != "42\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestBranches(t *testing.T) {
	out, _ := run(t, `
_start:
    mov rbp, rsp
    xor rax, rax
    push rax
L_0:
    mov rax, [rbp - 8]
    mov rcx, 3
    cmp rax, rcx
    jae L_1
    mov rdi, [rbp - 8]
    call print_uint_ln
    mov rax, [rbp - 8]
    add rax, 1
    mov [rbp - 8], rax
    jmp L_0
L_1:
    mov rax, 1
    lea rdi, [rel __false]
    lea rsi, [rel __true]
    test rax, rax
    cmovnz rdi, rsi
    call print_str_ln
    mov rdi, 3
    call exit
`, "__true: dq 4\n    db \"true\"\n__false: dq 5\n    db \"false\"\n")

	if out != "0\n1\n2\ntrue\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestIndexedAddressing(t *testing.T) {
	out, _ := run(t, `
_start:
    mov rbp, rsp
    push qword 10
    push qword 20
    push qword 30
    mov r9, 2
    lea r11, [rbp + r9*8 - 16]
    mov rdi, [r11 - 8]
    call print_uint_ln
    mov r10, 8
    mov r11, rbp
    sub r11, r10
    mov rdi, [r11 - 8]
    call print_uint_ln
    xor rdi, rdi
    call exit
`, "")

	if out != "10\n20\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestConcat(t *testing.T) {
	out, _ := run(t, `
_start:
    mov rbp, rsp
    lea rdi, [rel str_0]
    lea rsi, [rel str_1]
    call str_concat
    mov rdi, rax
    call print_str_ln
    xor rdi, rdi
    call exit
`, "str_0: dq 3\n    db \"foo\"\nstr_1: dq 4\n    db \"bar\", 10\n")

	if out != "foobar\n\n" {
		t.Errorf("unexpected output %q", out)
	}
}

func TestClobber(t *testing.T) {
	out, _ := run(t, `
_start:
    mov rbp, rsp
    mov rbx, 7
    mov rcx, 9
    mov rdi, 1
    call print_uint
    mov rdi, rbx
    call print_uint_ln
    mov rdi, rcx
    call print_uint_ln
    xor rdi, rdi
    call exit
`, "")

	if !strings.HasPrefix(out, "17\n") || out == "17\n9\n" {
		t.Errorf("expected preserved rbx and clobbered rcx, got %q", out)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		src   string
		check func(err error) bool
	}{
		{
			src:   "section .text\nmain:\n    ret\n",
			check: func(err error) bool { var e *SyntaxError; return errors.As(err, &e) },
		},
		{
			src:   "section .text\n_start:\n    frobnicate rax\n",
			check: func(err error) bool { var e *SyntaxError; return errors.As(err, &e) && e.Line == 3 },
		},
		{
			src:   "section .text\n_start:\n    jmp nowhere\n",
			check: func(err error) bool { var e *SyntaxError; return errors.As(err, &e) },
		},
		{
			src:   "section .text\n_start:\n    mov rax, [rel missing]\n",
			check: func(err error) bool { var e *SyntaxError; return errors.As(err, &e) },
		},
		{
			src:   "section .text\n_start:\n    xor rcx, rcx\n    mov rax, 1\n    xor rdx, rdx\n    div rcx\n",
			check: func(err error) bool { var f *Fault; return errors.As(err, &f) && f.Line == 6 },
		},
		{
			src:   "section .text\n_start:\n    xor rax, rax\n    mov rax, [rax]\n",
			check: func(err error) bool { var f *Fault; return errors.As(err, &f) },
		},
		{
			src:   "section .text\n_start:\n    ret\n",
			check: func(err error) bool { var f *Fault; return errors.As(err, &f) },
		},
		{
			src:   "section .text\n_start:\n    jmp _start\n",
			check: func(err error) bool { return errors.Is(err, ErrStepLimit) },
		},
	}

	for _, test := range tests {
		_, err := Run(test.src, &bytes.Buffer{}, WithMaxSteps(1000))
		if err == nil || !test.check(err) {
			t.Errorf("%q: unexpected error %v", test.src, err)
		}
	}
}

func TestExitStatus(t *testing.T) {
	_, status := run(t, "_start:\n    mov rdi, 3\n    call exit\n", "")
	if status != 3 {
		t.Errorf("expected status 3, got %d", status)
	}
}

func TestTrace(t *testing.T) {
	trace := &bytes.Buffer{}
	src := header + "_start:\n    mov rdi, 1\n    call exit\n"
	if _, err := Run(src, &bytes.Buffer{}, WithTrace(trace, aurora.NewAurora(false))); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(trace.String(), "mov rdi, 1") || !strings.Contains(trace.String(), "exit") {
		t.Errorf("unexpected trace %q", trace.String())
	}
}
