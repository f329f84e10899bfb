package amd64

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/pkg/ext"
	"github.com/c0depwn/stacklang/semantics"
	"github.com/c0depwn/stacklang/simplify"
	"github.com/c0depwn/stacklang/symbols"
	"github.com/c0depwn/stacklang/types"
	"io"
	"strings"
)

type GeneratorOption func(*generator)

// WithInfo reuses the result of a previous symbol analysis of a checked file.
func WithInfo(info symbols.Info) GeneratorOption {
	return func(g *generator) {
		g.info = info
		g.hasInfo = true
	}
}

// WithTrace writes lowering events to out.
func WithTrace(out io.Writer) GeneratorOption {
	return func(g *generator) {
		g.trace = newTracer(out)
	}
}

// WithRuntimeInclude sets the file included for the runtime primitives.
// An empty name omits the include.
func WithRuntimeInclude(name string) GeneratorOption {
	return func(g *generator) {
		g.include = name
	}
}

// DefaultRuntimeInclude is the name of the runtime included by default.
const DefaultRuntimeInclude = "runtime.asm"

// Generate translates file into NASM assembly for x86-64 and writes it to out.
// Missing front end passes are executed first:
// simplify -> symbols -> types -> semantics.
//
// Nothing is written if an error occurs.
func Generate(file *ast.File, out io.Writer, opts ...GeneratorOption) error {
	g := newGenerator(opts...)

	if !file.Simplified {
		if _, err := simplify.File(file); err != nil {
			return err
		}
	}
	if !file.Checked || !g.hasInfo {
		info, err := symbols.Analyze(file)
		if err != nil {
			return err
		}
		if err := types.Analyze(file, info); err != nil {
			return err
		}
		if err := semantics.Analyze(file, info); err != nil {
			return err
		}
		g.info = info
	}
	g.ready = file.Simplified && file.Checked

	var asm string
	if err := ext.CatchPanic(func() {
		asm = g.program(file)
	}); err != nil {
		return err
	}

	_, err := io.WriteString(out, asm)
	return err
}

// generator holds the state of a single compilation.
type generator struct {
	info    symbols.Info
	hasInfo bool
	ready   bool

	e      *emitter
	pool   *pool
	layout *layout

	// offsets is the side table of definition offsets.
	offsets map[symbols.DefID]*Slot
	// funcs maps function definitions to their frame layout.
	funcs  map[symbols.DefID]*frame
	frames ext.Stack[*frame]

	trace   trace
	include string
}

func newGenerator(opts ...GeneratorOption) *generator {
	g := &generator{
		e:       newEmitter(),
		pool:    newPool(),
		layout:  newLayout(),
		offsets: make(map[symbols.DefID]*Slot),
		funcs:   make(map[symbols.DefID]*frame),
		trace:   dummyTracer{},
		include: DefaultRuntimeInclude,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *generator) program(file *ast.File) string {
	g.trace.enter("program %s", file.Name)
	defer g.trace.leave()

	main := programFrame()
	g.frames.Push(main)
	g.e.begin(main.label)
	g.e.mov("rbp", "rsp")
	g.e.mov(rel("stack_base"), "rbp")

	for _, stmt := range file.Statements {
		g.statement(stmt)
	}

	g.e.movImmediate("rdi", 0)
	g.e.callRuntime(Exit)
	g.frames.Pop()

	return g.assemble()
}

func (g *generator) assemble() string {
	sb := &strings.Builder{}

	// header
	sb.WriteString("bits 64\n")
	sb.WriteString("default rel\n")
	sb.WriteString("global _start\n")
	if g.include != "" {
		sb.WriteString("%include \"" + g.include + "\"\n")
	}

	sb.WriteString("\nsection .text\n")
	sb.WriteString(g.e.text())

	sb.WriteString("\nsection .data\n")
	sb.WriteString(record(trueLabel, "true"))
	sb.WriteString(record(falseLabel, "false"))
	sb.WriteString(g.pool.records())

	sb.WriteString("\nsection .bss\n")
	sb.WriteString("stack_base: resq 1\n")

	return sb.String()
}

const (
	trueLabel  = "__true"
	falseLabel = "__false"
)
