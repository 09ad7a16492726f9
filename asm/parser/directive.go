package parser

import (
	"fmt"
	"strings"

	"go.creack.net/chip8/op"
)

// Data directives.
const (
	DirectiveByte = "byte"
	DirectiveWord = "word"
)

// Directive emits raw data.
type Directive struct {
	Name   string
	Values []Operand
}

func (d Directive) String() string {
	strs := make([]string, 0, len(d.Values))
	for _, v := range d.Values {
		strs = append(strs, v.String())
	}
	return string(DirectiveChar) + d.Name + " " + strings.Join(strs, string(SeparatorChar)+" ")
}

func (d Directive) Encode(p *Program) error {
	for _, operand := range d.Values {
		v, err := p.resolve(operand)
		if err != nil {
			return err
		}
		switch d.Name {
		case DirectiveByte:
			if v > 0xFF {
				return fmt.Errorf("byte %s out of range", operand)
			}
			p.buf = append(p.buf, byte(v))
		case DirectiveWord:
			p.buf = op.Endian.AppendUint16(p.buf, uint16(v))
		}
	}
	return nil
}
