package amd64

import (
	"fmt"
	"io"
	"strings"
)

type trace interface {
	enter(format string, args ...any)
	leave()
	info(format string, args ...any)
}

type tracer struct {
	indent int
	out    io.Writer
}

func newTracer(out io.Writer) *tracer {
	return &tracer{out: out}
}

func (t *tracer) enter(format string, args ...any) {
	t.info("> "+format, args...)
	t.indent++
}

func (t *tracer) leave() {
	t.indent--
}

func (t *tracer) info(format string, args ...any) {
	_, _ = fmt.Fprintf(t.out, "%s%s\n", strings.Repeat("  ", t.indent), fmt.Sprintf(format, args...))
}

type dummyTracer struct{}

func (dummyTracer) enter(string, ...any) {}

func (dummyTracer) leave() {}

func (dummyTracer) info(string, ...any) {}
