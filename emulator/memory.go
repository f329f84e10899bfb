package emulator

import (
	"encoding/binary"
	"fmt"
)

type segment struct {
	base  uint64
	bytes []byte
}

func (s *segment) contains(addr uint64, n int) bool {
	return addr >= s.base && addr+uint64(n) <= s.base+uint64(len(s.bytes)) && addr+uint64(n) >= addr
}

// memory is a set of disjoint little endian segments.
type memory struct {
	segments []*segment
}

func (m *memory) add(base uint64, bytes []byte) *segment {
	s := &segment{base: base, bytes: bytes}
	m.segments = append(m.segments, s)
	return s
}

func (m *memory) slice(addr uint64, n int) ([]byte, error) {
	for _, s := range m.segments {
		if s.contains(addr, n) {
			off := addr - s.base
			return s.bytes[off : off+uint64(n)], nil
		}
	}
	return nil, fmt.Errorf("invalid access of %d bytes at %#x", n, addr)
}

func (m *memory) read64(addr uint64) (uint64, error) {
	b, err := m.slice(addr, 8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

func (m *memory) write64(addr, v uint64) error {
	b, err := m.slice(addr, 8)
	if err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(b, v)
	return nil
}

// readString reads a length-prefixed string.
func (m *memory) readString(addr uint64) ([]byte, error) {
	n, err := m.read64(addr)
	if err != nil {
		return nil, err
	}
	if n > 1<<30 {
		return nil, fmt.Errorf("string at %#x too long: %d", addr, n)
	}
	return m.slice(addr+8, int(n))
}
