package amd64

import (
	"fmt"
	"strings"
)

// pool interns string literals, each distinct text is stored once
// in the data section.
type pool struct {
	handles map[string]string
	texts   []string
}

func newPool() *pool {
	return &pool{handles: make(map[string]string)}
}

// Add returns the label of the record holding text.
func (p *pool) Add(text string) string {
	if label, ok := p.handles[text]; ok {
		return label
	}
	label := fmt.Sprintf("str_%d", len(p.texts))
	p.handles[text] = label
	p.texts = append(p.texts, text)
	return label
}

func (p *pool) Len() int {
	return len(p.texts)
}

// records returns the data section entries in allocation order.
func (p *pool) records() string {
	sb := &strings.Builder{}
	for i, text := range p.texts {
		sb.WriteString(record(fmt.Sprintf("str_%d", i), text))
	}
	return sb.String()
}

// record encodes a length-prefixed string. Printable runs are quoted,
// every other byte is written as a number.
func record(label, text string) string {
	sb := &strings.Builder{}
	sb.WriteString(fmt.Sprintf("%s: dq %d\n", label, len(text)))
	if len(text) == 0 {
		return sb.String()
	}

	var (
		parts []string
		run   []byte
	)
	flush := func() {
		if len(run) > 0 {
			parts = append(parts, `"`+string(run)+`"`)
			run = run[:0]
		}
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= ' ' && c <= '~' && c != '"' {
			run = append(run, c)
			continue
		}
		flush()
		parts = append(parts, fmt.Sprintf("%d", c))
	}
	flush()

	sb.WriteString("    db ")
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString("\n")
	return sb.String()
}
