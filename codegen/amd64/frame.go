package amd64

import "github.com/c0depwn/stacklang/ast"

// frame is the stack region of the program or a function activation.
//
// A call lays out the frame of the callee as follows, from high to low
// addresses. The global counter of the saved rbp slot is the base P.
//
//	| return area | result slots, aggregate results only
//	| drift       | functions defined inside functions only
//	| arg N-1     |
//	| ...         |
//	| arg 0       |
//	| return addr |
//	| saved rbp   | <- rbp, slot P
//	| locals      | slot P+1 at rbp-8
//
// Frames are laid out as if the function was called where it is
// defined. The drift word holds the distance, in slots, between that
// assumed placement and the actual one, measured relative to the
// frame of the enclosing function.
type frame struct {
	fn     *ast.FuncDeclaration // nil for the program
	label  string
	parent *frame

	// depth is the number of enclosing functions including fn itself.
	depth int

	defined int // global counter at the definition
	result  int // return area slots
	drift   bool
	args    int // argument slots
	base    int

	ret string

	// state of the enclosing frame while fn is compiled
	savedProc          *procedure
	savedLocal, savedG int
}

func programFrame() *frame {
	return &frame{label: "_start"}
}

// newFrame returns the frame of a function defined at the global
// counter defined within parent.
func newFrame(fn *ast.FuncDeclaration, label string, parent *frame, defined, result, args int) *frame {
	f := &frame{
		fn:      fn,
		label:   label,
		parent:  parent,
		depth:   parent.depth + 1,
		defined: defined,
		result:  result,
		drift:   parent.fn != nil,
		args:    args,
		ret:     "ret_" + label,
	}
	f.base = defined + result + f.driftSlots() + args + 2
	return f
}

func (f *frame) driftSlots() int {
	if f.drift {
		return 1
	}
	return 0
}

// driftSlot is the slot of the drift word relative to rbp.
func (f *frame) driftSlot() int {
	return -(f.args + 2)
}

// resultSlot is the first slot of the return area relative to rbp.
func (f *frame) resultSlot() int {
	return -(f.result + f.driftSlots() + f.args + 1)
}

// Slot holds the offsets of a definition. The first slot of the
// definition sits at rbp - Word*Local within its frame.
type Slot struct {
	Global int
	Local  int
	Depth  int

	frame *frame
}

// define records the offsets of decl whose first slot has the global
// index global within f. Offsets are assigned exactly once.
func (g *generator) define(decl ast.Declaration, global int, f *frame) *Slot {
	id := g.info.ID(decl)
	if id == 0 {
		compilerError(decl, "unknown declaration '%s'", decl.Name())
	}
	if _, exists := g.offsets[id]; exists {
		compilerError(decl, "offsets of '%s' assigned twice", decl.Name())
	}
	s := &Slot{Global: global, Local: global - f.base, Depth: f.depth, frame: f}
	g.offsets[id] = s
	g.trace.info("define %s: global %d, local %d, depth %d", decl.Name(), s.Global, s.Local, s.Depth)
	return s
}

// SlotOf returns the offsets assigned to decl.
func (g *generator) SlotOf(decl ast.Declaration) (*Slot, bool) {
	s, ok := g.offsets[g.info.ID(decl)]
	return s, ok
}

// resolve returns the location of decl read from the current frame.
func (g *generator) resolve(decl ast.Declaration, at ast.Node) Ref {
	if !g.ready {
		compilerError(at, "addresses requested before analysis")
	}
	s, ok := g.SlotOf(decl)
	if !ok {
		compilerError(at, "'%s' has no offsets", decl.Name())
	}

	current := g.frames.Top()
	switch {
	case s.frame == current:
		return Ref{Slot: s.Local}
	case s.frame.fn == nil:
		// stack_base is the rbp of the program
		return Ref{Anchor: loadStackBase, Slot: s.Local}
	default:
		return Ref{Anchor: g.walk(current, s.frame, at), Slot: s.Local}
	}
}

func loadStackBase(e *emitter) {
	e.mov("r11", rel("stack_base"))
}

// walk returns code loading the rbp of the active frame of target into
// r11, following the drift words from the current frame outwards.
func (g *generator) walk(from, target *frame, at ast.Node) Code {
	var chain []*frame
	for f := from; f != target; f = f.parent {
		if f == nil || !f.drift {
			compilerError(at, "frame of '%s' does not enclose the reader", target.label)
		}
		chain = append(chain, f)
	}

	return func(e *emitter) {
		base := "rbp"
		for _, f := range chain {
			e.mov("r9", slot(base, f.driftSlot()))
			e.lea("r11", fmtIndexed(base, "r9", (f.base-f.parent.base)*Word))
			base = "r11"
		}
		if base == "rbp" {
			e.mov("r11", "rbp")
		}
	}
}

// drift returns code pushing the drift word for a call of callee issued
// at the global counter c of the current frame.
func (g *generator) drift(callee *frame, c int, at ast.Node) Code {
	current := g.frames.Top()
	parent := callee.parent
	delta := int64(c - callee.defined + parent.base - current.base)

	if current == parent {
		return func(e *emitter) { e.pushImmediate(delta) }
	}

	walk := g.walk(current, parent, at)
	return func(e *emitter) {
		walk(e)
		e.mov("rax", "r11")
		e.instr("sub", "rax", "rbp")
		e.instr("sar", "rax", "3")
		e.instr("add", "rax", imm(delta))
		e.push("rax")
	}
}

func fmtIndexed(base, index string, disp int) string {
	switch {
	case disp > 0:
		return "[" + base + " + " + index + "*8 + " + imm(int64(disp)) + "]"
	case disp < 0:
		return "[" + base + " + " + index + "*8 - " + imm(int64(-disp)) + "]"
	default:
		return "[" + base + " + " + index + "*8]"
	}
}
