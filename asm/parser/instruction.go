package parser

import (
	"fmt"
	"strings"

	"go.creack.net/chip8/op"
)

// shape of an operand slot in an instruction form.
type shape int

const (
	shReg  shape = iota // Vx.
	shV0                // V0 only.
	shAddr              // 12 bits number or label.
	shByte              // 8 bits number.
	shNib               // 4 bits number.
	shI
	shDT
	shST
	shK
	shF
	shB
	shIndI
)

type form struct {
	kind   op.Kind
	shapes []shape
}

// forms lists the accepted operand layouts per kind. Vy is optional for shifts.
var forms = []form{
	{op.Cls, nil},
	{op.Ret, nil},
	{op.Sys, []shape{shAddr}},
	{op.Jp, []shape{shAddr}},
	{op.JpV0, []shape{shV0, shAddr}},
	{op.Call, []shape{shAddr}},
	{op.SeByte, []shape{shReg, shByte}},
	{op.SneByte, []shape{shReg, shByte}},
	{op.SeReg, []shape{shReg, shReg}},
	{op.SneReg, []shape{shReg, shReg}},
	{op.LdByte, []shape{shReg, shByte}},
	{op.AddByte, []shape{shReg, shByte}},
	{op.LdReg, []shape{shReg, shReg}},
	{op.Or, []shape{shReg, shReg}},
	{op.And, []shape{shReg, shReg}},
	{op.Xor, []shape{shReg, shReg}},
	{op.AddReg, []shape{shReg, shReg}},
	{op.Sub, []shape{shReg, shReg}},
	{op.Subn, []shape{shReg, shReg}},
	{op.Shr, []shape{shReg, shReg}},
	{op.Shr, []shape{shReg}},
	{op.Shl, []shape{shReg, shReg}},
	{op.Shl, []shape{shReg}},
	{op.LdI, []shape{shI, shAddr}},
	{op.Rnd, []shape{shReg, shByte}},
	{op.Drw, []shape{shReg, shReg, shNib}},
	{op.Skp, []shape{shReg}},
	{op.Sknp, []shape{shReg}},
	{op.LdVxDT, []shape{shReg, shDT}},
	{op.LdKey, []shape{shReg, shK}},
	{op.LdDTVx, []shape{shDT, shReg}},
	{op.LdSTVx, []shape{shST, shReg}},
	{op.AddI, []shape{shI, shReg}},
	{op.LdF, []shape{shF, shReg}},
	{op.LdB, []shape{shB, shReg}},
	{op.LdStore, []shape{shIndI, shReg}},
	{op.LdLoad, []shape{shReg, shIndI}},
}

var keywordShapes = map[string]shape{
	"I":       shI,
	"DT":      shDT,
	"ST":      shST,
	"K":       shK,
	"F":       shF,
	"B":       shB,
	IndirectI: shIndI,
}

func (s shape) accepts(o Operand) bool {
	switch s {
	case shReg:
		return o.Typ == OpRegister
	case shV0:
		return o.Typ == OpRegister && o.Value == 0
	case shAddr:
		return o.Typ == OpNumber || o.Typ == OpLabelRef
	case shByte, shNib:
		return o.Typ == OpNumber
	default:
		return o.Typ == OpKeyword && keywordShapes[o.Raw] == s
	}
}

// limit returns the largest value a numeric slot holds.
func (s shape) limit() int {
	switch s {
	case shAddr:
		return op.AddrMask
	case shByte:
		return 0xFF
	case shNib:
		return 0xF
	default:
		return 0
	}
}

// Instruction is one assembly statement.
type Instruction struct {
	Mnemonic string
	Operands []Operand
	Line     int

	form *form
}

func (ins Instruction) String() string {
	if len(ins.Operands) == 0 {
		return ins.Mnemonic
	}
	strs := make([]string, 0, len(ins.Operands))
	for _, o := range ins.Operands {
		strs = append(strs, o.String())
	}
	return ins.Mnemonic + " " + strings.Join(strs, string(SeparatorChar)+" ")
}

// Kind returns the instruction kind, valid once parsed.
func (ins Instruction) Kind() op.Kind { return ins.form.kind }

// resolveKind picks the first form matching the mnemonic and operand shapes.
func (ins *Instruction) resolveKind() error {
	known := false
	for i := range forms {
		f := &forms[i]
		if f.kind.Mnemonic() != ins.Mnemonic {
			continue
		}
		known = true
		if len(f.shapes) != len(ins.Operands) {
			continue
		}
		match := true
		for j, s := range f.shapes {
			if !s.accepts(ins.Operands[j]) {
				match = false
				break
			}
		}
		if match {
			ins.form = f
			return nil
		}
	}
	if !known {
		return fmt.Errorf("unknown instruction %q", ins.Mnemonic)
	}
	return fmt.Errorf("invalid operands for %s", ins)
}

// Encode writes the instruction word. Label references unknown on the first
// pass encode as 0 and are fixed on the second one.
func (ins *Instruction) Encode(p *Program) error {
	o := op.Opcode{Kind: ins.form.kind}
	var regs []uint8
	for i, s := range ins.form.shapes {
		operand := ins.Operands[i]
		switch s {
		case shReg, shV0:
			regs = append(regs, uint8(operand.Value))
		case shAddr, shByte, shNib:
			v, err := p.resolve(operand)
			if err != nil {
				return err
			}
			if v > s.limit() {
				return fmt.Errorf("value %s (0x%X) out of range, max 0x%X", operand, v, s.limit())
			}
			switch s {
			case shAddr:
				o.NNN = uint16(v)
			case shByte:
				o.KK = uint8(v)
			case shNib:
				o.N = uint8(v)
			}
		}
	}
	if len(regs) > 0 {
		o.X = regs[0]
	}
	if len(regs) > 1 {
		o.Y = regs[1]
	}

	word, err := op.Encode(o)
	if err != nil {
		return err
	}
	p.buf = op.Endian.AppendUint16(p.buf, word)
	return nil
}
