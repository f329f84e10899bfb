package amd64

import (
	_ "embed"
)

// Runtime is a NASM implementation of the runtime primitives for
// x86-64 Linux, see DefaultRuntimeInclude.
//
// Primitives take their arguments in rdi and rsi and return in rax.
// rbx, rbp, rsp, r8-r10 and r12-r15 are preserved.
//
//go:embed runtime.asm
var Runtime string

// names of the runtime primitives
const (
	PrintUint    = "print_uint"
	PrintUintLn  = "print_uint_ln"
	PrintInt     = "print_int"
	PrintIntLn   = "print_int_ln"
	PrintStr     = "print_str"
	PrintStrLn   = "print_str_ln"
	PrintNewline = "print_newline"
	Exit         = "exit"
	Reserve      = "reserve"
	StrConcat    = "str_concat"
)

// Primitives lists all runtime primitives.
var Primitives = []string{
	PrintUint, PrintUintLn, PrintInt, PrintIntLn, PrintStr, PrintStrLn,
	PrintNewline, Exit, Reserve, StrConcat,
}
