package amd64

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/types"
)

// Code emits instructions when run.
type Code func(e *emitter)

// Seq runs codes in order, nil entries are skipped.
func Seq(codes ...Code) Code {
	return func(e *emitter) {
		for _, c := range codes {
			if c != nil {
				c(e)
			}
		}
	}
}

func run(e *emitter, c Code) {
	if c != nil {
		c(e)
	}
}

// Location describes where a lowered value can be found once
// its setup code ran.
type Location interface {
	aLocation()
}

type location struct{}

func (location) aLocation() {}

// None is the location of unit values.
type None struct{ location }

// Acc is a scalar held in rax.
type Acc struct{ location }

// Immediate is a scalar known at compile time.
type Immediate struct {
	location
	V int64
}

// Data is the address of a data section record.
type Data struct {
	location
	Label string
}

// Stack is a value occupying the topmost Slots slots of the stack.
// Whoever consumes it releases the slots.
type Stack struct {
	location
	Slots int
}

// Ref is a value stored in a frame. The address of its first slot is
// base - Word*Slot, where base is rbp if Anchor is nil and r11 after
// running Anchor otherwise. A Dynamic ref additionally subtracts a byte
// offset which the setup code pushed.
type Ref struct {
	location
	Anchor  Code
	Slot    int
	Dynamic bool
}

// offset returns r shifted by n slots.
func (r Ref) offset(n int) Ref {
	r.Slot += n
	return r
}

// base emits the computation of the base register of r and returns it.
// pending is the number of slots pushed on top of the dynamic offset.
// The dynamic offset is only popped if nothing is pending.
func (r Ref) base(e *emitter, pending int) string {
	if !r.Dynamic {
		if r.Anchor == nil {
			return "rbp"
		}
		r.Anchor(e)
		return "r11"
	}

	if pending == 0 {
		e.pop("r10")
	} else {
		e.mov("r10", mem("rsp", pending*Word))
	}
	if r.Anchor == nil {
		e.mov("r11", "rbp")
	} else {
		r.Anchor(e)
	}
	e.instr("sub", "r11", "r10")
	return "r11"
}

// Value is the result of lowering an expression.
type Value struct {
	Setup Code
	Loc   Location
	T     ast.Type

	// Writeback stores a scalar held in rax, or the topmost slots of the
	// stack, into the location of the value. nil for values which can
	// not be assigned.
	Writeback Code
}

func unit() Value {
	return Value{Loc: None{}, T: types.NewUnit()}
}

// one collapses the components of a lowered expression of type t into
// a single value.
func (g *generator) one(values []Value, t ast.Type) Value {
	switch {
	case len(values) == 0:
		return unit()
	case len(values) == 1 && values[0].T != nil && values[0].T.Equals(t):
		return values[0]
	}

	codes := make([]Code, len(values))
	for i, v := range values {
		codes[i] = g.materialize(v)
	}
	return Value{Setup: Seq(codes...), Loc: Stack{Slots: g.layout.Size(t)}, T: t}
}

// load returns code which moves the scalar v into rax.
func (g *generator) load(v Value) Code {
	return func(e *emitter) {
		run(e, v.Setup)
		switch loc := v.Loc.(type) {
		case Acc:
		case Immediate:
			e.movImmediate("rax", loc.V)
		case Data:
			e.lea("rax", rel(loc.Label))
		case Stack:
			if loc.Slots != 1 {
				compilerError(nil, "loading %d slots into a register", loc.Slots)
			}
			e.pop("rax")
		case Ref:
			base := loc.base(e, 0)
			e.mov("rax", slot(base, loc.Slot))
		default:
			compilerError(nil, "loading value without location")
		}
	}
}

// materialize returns code which pushes all slots of v, first slot first.
func (g *generator) materialize(v Value) Code {
	return func(e *emitter) {
		switch loc := v.Loc.(type) {
		case None:
			run(e, v.Setup)
		case Acc, Immediate, Data:
			g.load(v)(e)
			e.push("rax")
		case Stack:
			run(e, v.Setup)
		case Ref:
			run(e, v.Setup)
			size := g.layout.Size(v.T)
			base := loc.base(e, 0)
			for k := 0; k < size; k++ {
				e.push(qword(slot(base, loc.Slot+k)))
			}
		default:
			compilerError(nil, "materializing value without location")
		}
	}
}

// storeTo returns the write-back code of r for values of type t.
func (g *generator) storeTo(r Ref, t ast.Type) Code {
	return func(e *emitter) {
		size := g.layout.Size(t)
		if !types.IsAggregate(t) {
			base := r.base(e, 0)
			e.mov(slot(base, r.Slot), "rax")
			return
		}

		base := r.base(e, size)
		for k := size - 1; k >= 0; k-- {
			e.pop("rcx")
			e.mov(slot(base, r.Slot+k), "rcx")
		}
		if r.Dynamic {
			e.drop(1)
		}
	}
}

// discard returns code evaluating v for its side effects only.
func (g *generator) discard(v Value) Code {
	return func(e *emitter) {
		run(e, v.Setup)
		switch loc := v.Loc.(type) {
		case Stack:
			e.drop(loc.Slots)
		case Ref:
			if loc.Dynamic {
				e.drop(1)
			}
		}
	}
}

// extract returns the part of the stack value v starting at offset
// and occupying the slots of t. The remaining slots are released.
func (g *generator) extract(v Value, offset int, t ast.Type) Value {
	n := v.Loc.(Stack).Slots
	m := g.layout.Size(t)
	setup := func(e *emitter) {
		run(e, v.Setup)
		if offset > 0 {
			for k := 0; k < m; k++ {
				e.mov("rcx", mem("rsp", (n-1-offset-k)*Word))
				e.mov(mem("rsp", (n-1-k)*Word), "rcx")
			}
		}
		e.drop(n - m)
	}
	return Value{Setup: setup, Loc: Stack{Slots: m}, T: t}
}

// extractDynamic is extract for an offset only known at runtime. index
// loads the element index into rax.
func (g *generator) extractDynamic(v Value, index Code, t ast.Type) Value {
	n := v.Loc.(Stack).Slots
	m := g.layout.Size(t)
	setup := func(e *emitter) {
		run(e, v.Setup)
		index(e)
		e.instr("imul", "rax", "rax", imm(int64(m*Word)))
		e.lea("r11", mem("rsp", (n-1)*Word))
		e.instr("sub", "r11", "rax")
		for k := 0; k < m; k++ {
			e.mov("rcx", slot("r11", k))
			e.mov(mem("rsp", (n-1-k)*Word), "rcx")
		}
		e.drop(n - m)
	}
	return Value{Setup: setup, Loc: Stack{Slots: m}, T: t}
}
