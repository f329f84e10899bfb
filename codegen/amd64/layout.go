package amd64

import (
	"github.com/c0depwn/stacklang/ast"
	"github.com/c0depwn/stacklang/types"
)

// layout computes sizes and offsets in slots. Fields are laid out in
// declaration order without padding, the first field occupies the
// first slot of the region.
type layout struct {
	sizes   map[*types.Struct]int
	offsets map[*types.Struct][]int
	busy    map[*types.Struct]bool
}

func newLayout() *layout {
	return &layout{
		sizes:   make(map[*types.Struct]int),
		offsets: make(map[*types.Struct][]int),
		busy:    make(map[*types.Struct]bool),
	}
}

// Size returns the number of slots occupied by a value of type t.
func (l *layout) Size(t ast.Type) int {
	switch tt := t.(type) {
	case types.Uint, types.Int, types.Bool, types.String:
		return 1
	case types.Unit:
		return 0
	case types.Array:
		return int(tt.Length) * l.Size(tt.Element)
	case types.Tuple:
		size := 0
		for _, e := range tt.Elements {
			size += l.Size(e)
		}
		return size
	case *types.Struct:
		l.resolve(tt)
		return l.sizes[tt]
	case nil:
		compilerError(nil, "size of missing type requested")
	default:
		compilerError(nil, "type %s has no size", t)
	}
	return 0
}

func (l *layout) resolve(s *types.Struct) {
	if _, ok := l.sizes[s]; ok {
		return
	}
	if !s.Declared {
		compilerError(nil, "fields of struct '%s' are undeclared", s.Name)
	}
	if l.busy[s] {
		compilerError(nil, "struct '%s' contains itself", s.Name)
	}
	l.busy[s] = true
	defer delete(l.busy, s)

	offsets := make([]int, len(s.Fields))
	size := 0
	for i, f := range s.Fields {
		offsets[i] = size
		size += l.Size(f.T)
	}
	l.offsets[s] = offsets
	l.sizes[s] = size
}

// FieldOffset returns the offset of the i-th field of s.
func (l *layout) FieldOffset(s *types.Struct, i int) int {
	l.resolve(s)
	return l.offsets[s][i]
}

// Offset returns the offset of the field denoted by path, which
// descends into nested struct fields.
func (l *layout) Offset(s *types.Struct, path ...string) int {
	offset := 0
	var current ast.Type = s
	for _, name := range path {
		st, ok := current.(*types.Struct)
		if !ok {
			compilerError(nil, "type %s has no field '%s'", current, name)
		}
		field, idx := st.Field(name)
		if idx < 0 {
			compilerError(nil, "struct '%s' has no field '%s'", st.Name, name)
		}
		offset += l.FieldOffset(st, idx)
		current = field.T
	}
	return offset
}

// ElementOffset returns the offset of the i-th element of t.
func (l *layout) ElementOffset(t types.Tuple, i int) int {
	offset := 0
	for _, e := range t.Elements[:i] {
		offset += l.Size(e)
	}
	return offset
}
