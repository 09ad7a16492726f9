package op

import (
	"fmt"
)

// InvalidInstructionError is returned by Decode for words outside the instruction set.
type InvalidInstructionError struct {
	Instruction uint16
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("invalid instruction: 0x%04x", e.Instruction)
}

// fields splits an instruction into its operand fields.
func fields(instruction uint16) (nnn uint16, kk, x, y, n uint8) {
	return instruction & AddrMask,
		uint8(instruction),
		uint8(instruction>>8) & 0xF,
		uint8(instruction>>4) & 0xF,
		uint8(instruction) & 0xF
}

// Decode turns an instruction into an Opcode.
// Every instruction either decodes or returns an *InvalidInstructionError.
func Decode(instruction uint16) (Opcode, error) {
	nnn, kk, x, y, n := fields(instruction)

	addr := func(k Kind) (Opcode, error) { return Opcode{Kind: k, NNN: nnn}, nil }
	regByte := func(k Kind) (Opcode, error) { return Opcode{Kind: k, X: x, KK: kk}, nil }
	regReg := func(k Kind) (Opcode, error) { return Opcode{Kind: k, X: x, Y: y}, nil }
	reg := func(k Kind) (Opcode, error) { return Opcode{Kind: k, X: x}, nil }
	invalid := func() (Opcode, error) { return Opcode{}, &InvalidInstructionError{Instruction: instruction} }

	switch instruction >> 12 {
	case 0x0:
		switch instruction {
		case 0x00E0:
			return Opcode{Kind: Cls}, nil
		case 0x00EE:
			return Opcode{Kind: Ret}, nil
		default:
			return addr(Sys)
		}
	case 0x1:
		return addr(Jp)
	case 0x2:
		return addr(Call)
	case 0x3:
		return regByte(SeByte)
	case 0x4:
		return regByte(SneByte)
	case 0x5:
		return regReg(SeReg)
	case 0x6:
		return regByte(LdByte)
	case 0x7:
		return regByte(AddByte)
	case 0x8:
		switch n {
		case 0x0:
			return regReg(LdReg)
		case 0x1:
			return regReg(Or)
		case 0x2:
			return regReg(And)
		case 0x3:
			return regReg(Xor)
		case 0x4:
			return regReg(AddReg)
		case 0x5:
			return regReg(Sub)
		case 0x6:
			return regReg(Shr)
		case 0x7:
			return regReg(Subn)
		case 0xE:
			return regReg(Shl)
		}
	case 0x9:
		return regReg(SneReg)
	case 0xA:
		return addr(LdI)
	case 0xB:
		return addr(JpV0)
	case 0xC:
		return regByte(Rnd)
	case 0xD:
		return Opcode{Kind: Drw, X: x, Y: y, N: n}, nil
	case 0xE:
		switch kk {
		case 0x9E:
			return reg(Skp)
		case 0xA1:
			return reg(Sknp)
		}
	case 0xF:
		switch kk {
		case 0x07:
			return reg(LdVxDT)
		case 0x0A:
			return reg(LdKey)
		case 0x15:
			return reg(LdDTVx)
		case 0x18:
			return reg(LdSTVx)
		case 0x1E:
			return reg(AddI)
		case 0x29:
			return reg(LdF)
		case 0x33:
			return reg(LdB)
		case 0x55:
			return reg(LdStore)
		case 0x65:
			return reg(LdLoad)
		}
	}
	return invalid()
}

// Encode is the inverse of Decode.
// Operands are masked to their field width.
func Encode(o Opcode) (uint16, error) {
	if o.Kind < 0 || o.Kind >= KindCount {
		return 0, fmt.Errorf("unknown kind %d", int(o.Kind))
	}
	info := kindTable[o.Kind]
	x := uint16(o.X&0xF) << 8
	y := uint16(o.Y&0xF) << 4

	switch info.operands {
	case opAddr:
		return info.base | o.NNN&AddrMask, nil
	case opRegByte:
		return info.base | x | uint16(o.KK), nil
	case opRegReg:
		return info.base | x | y, nil
	case opReg:
		return info.base | x, nil
	case opRegRegN:
		return info.base | x | y | uint16(o.N&0xF), nil
	default:
		return info.base, nil
	}
}
