package parser

import (
	"fmt"

	"go.creack.net/chip8/op"
)

// Program encodes parsed nodes into a ROM image loaded at op.ProgramStart.
type Program struct {
	p *Parser

	buf              []byte
	labels           map[string]int
	hasLabelIndex    bool
	hasMissingLabels bool
}

func NewProgram(p *Parser) *Program {
	return &Program{
		p:      p,
		labels: nil, // Keeping as nil to indicate that we don't have any labels yet.
	}
}

func (p *Program) Size() int { return len(p.buf) }

// Nodes returns the parsed statements in source order.
func (p *Program) Nodes() []Node { return p.p.Nodes }

// Labels returns the resolved label addresses.
func (p *Program) Labels() map[string]int { return p.labels }

// pc is the address of the next emitted byte.
func (p *Program) pc() int { return op.ProgramStart + len(p.buf) }

// resolve returns the numeric value of an operand.
func (p *Program) resolve(o Operand) (int, error) {
	if o.Typ != OpLabelRef {
		return o.Value, nil
	}
	if addr, ok := p.labels[o.Raw]; ok {
		return addr, nil
	}
	if p.hasLabelIndex {
		return 0, fmt.Errorf("unknown label %q", o.Raw)
	}
	p.hasMissingLabels = true
	return 0, nil
}

func (p *Program) encode() error {
	// If we have labels, it means we already encoded once and have the labels index.
	// Error out if we encounter a label that we don't know.
	p.hasLabelIndex = p.labels != nil
	if !p.hasLabelIndex {
		p.labels = map[string]int{}
	}
	p.buf = p.buf[:0]
	for _, n := range p.p.Nodes {
		if err := n.Encode(p); err != nil {
			if ins, ok := n.(*Instruction); ok {
				return fmt.Errorf("line %d: failed to encode %s: %w", ins.Line, n, err)
			}
			return fmt.Errorf("failed to encode %s: %w", n, err)
		}
	}
	if len(p.buf) > op.MemSize-op.ProgramStart {
		return fmt.Errorf("program too large: %d bytes, max %d", len(p.buf), op.MemSize-op.ProgramStart)
	}
	return nil
}

// Encode assembles the program, resolving forward label references.
func (p *Program) Encode() ([]byte, error) {
	if err := p.encode(); err != nil {
		return nil, fmt.Errorf("failed to first encode program: %w", err)
	}

	// Forward references need a second pass now that every label is known.
	if !p.hasMissingLabels {
		return p.buf, nil
	}
	if err := p.encode(); err != nil {
		return nil, fmt.Errorf("failed to re-encode program: %w", err)
	}

	return p.buf, nil
}
