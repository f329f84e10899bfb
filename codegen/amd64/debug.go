package amd64

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/types"
	"strings"
)

const indentation = "    "

// debugStatement prints the value followed by a newline. Aggregates are
// read through rbx which points at their first slot.
func (g *generator) debugStatement(stmt *ast.DebugStatement) {
	t := stmt.Expression.Type()
	g.trace.enter("debug %s", t)
	defer g.trace.leave()

	v := g.one(g.lower(stmt.Expression), t)

	if !types.IsAggregate(t) {
		g.load(v)(g.e)
		switch t.(type) {
		case types.Uint:
			g.e.mov("rdi", "rax")
			g.e.callRuntime(PrintUintLn)
		case types.Int:
			g.e.mov("rdi", "rax")
			g.e.callRuntime(PrintIntLn)
		case types.Bool:
			selectBool(g.e)
			g.e.callRuntime(PrintStrLn)
		case types.String:
			g.e.mov("rdi", "rax")
			g.e.callRuntime(PrintStrLn)
		default:
			notImplemented(stmt, "printing %s", t)
		}
		return
	}

	var release Code
	switch loc := v.Loc.(type) {
	case Ref:
		run(g.e, v.Setup)
		base := loc.base(g.e, 0)
		g.e.lea("rbx", slot(base, loc.Slot))
	case Stack:
		run(g.e, v.Setup)
		g.e.lea("rbx", mem("rsp", (loc.Slots-1)*Word))
		release = func(e *emitter) { e.drop(loc.Slots) }
	default:
		compilerError(stmt, "printing value without storage")
	}

	p := &printer{g: g}
	if tuple, ok := t.(types.Tuple); ok {
		// the outermost tuple is printed without parentheses
		p.elements(tuple.Elements, 0, 0)
	} else {
		p.value(t, 0, 0)
	}
	p.text("\n")
	p.flush()

	run(g.e, release)
}

// selectBool loads the string for the boolean in rax into rdi.
func selectBool(e *emitter) {
	e.lea("rdi", rel(falseLabel))
	e.lea("rsi", rel(trueLabel))
	e.instr("test", "rax", "rax")
	e.instr("cmovnz", "rdi", "rsi")
}

// printer emits calls printing values relative to rbx. Constant text is
// buffered and printed as one interned string.
type printer struct {
	g       *generator
	pending strings.Builder
}

func (p *printer) text(s string) {
	p.pending.WriteString(s)
}

func (p *printer) flush() {
	if p.pending.Len() == 0 {
		return
	}
	label := p.g.pool.Add(p.pending.String())
	p.pending.Reset()
	p.g.e.lea("rdi", rel(label))
	p.g.e.callRuntime(PrintStr)
}

// value prints the value of type t at slot k of rbx.
func (p *printer) value(t ast.Type, k int, depth int) {
	e := p.g.e
	switch tt := t.(type) {
	case types.Uint:
		p.flush()
		e.mov("rdi", slot("rbx", k))
		e.callRuntime(PrintUint)
	case types.Int:
		p.flush()
		e.mov("rdi", slot("rbx", k))
		e.callRuntime(PrintInt)
	case types.String:
		p.flush()
		e.mov("rdi", slot("rbx", k))
		e.callRuntime(PrintStr)
	case types.Bool:
		p.flush()
		e.mov("rax", slot("rbx", k))
		selectBool(e)
		e.callRuntime(PrintStr)
	case types.Tuple:
		p.text("(")
		p.elements(tt.Elements, k, depth)
		p.text(")")
	case types.Array:
		p.text("[")
		size := p.g.layout.Size(tt.Element)
		for i := 0; i < int(tt.Length); i++ {
			if i > 0 {
				p.text(", ")
			}
			p.value(tt.Element, k+i*size, depth)
		}
		p.text("]")
	case *types.Struct:
		p.text(tt.Name + " {\n")
		inner := strings.Repeat(indentation, depth+1)
		for i, field := range tt.Fields {
			p.text(inner + field.Name + ": ")
			p.value(field.T, k+p.g.layout.FieldOffset(tt, i), depth+1)
			p.text(",\n")
		}
		p.text(strings.Repeat(indentation, depth) + "}")
	default:
		notImplemented(nil, "printing %s", t)
	}
}

func (p *printer) elements(elems []ast.Type, k int, depth int) {
	offset := 0
	for i, elem := range elems {
		if i > 0 {
			p.text(", ")
		}
		p.value(elem, k+offset, depth)
		offset += p.g.layout.Size(elem)
	}
}
