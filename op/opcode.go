package op

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Kind enum type.
type Kind int

// Kind values, one per instruction form.
const (
	Cls      Kind = iota // 00E0 clear the display.
	Ret                  // 00EE return from subroutine.
	Sys                  // 0nnn legacy machine code call, ignored.
	Jp                   // 1nnn jump.
	Call                 // 2nnn call subroutine.
	SeByte               // 3xkk skip if Vx == kk.
	SneByte              // 4xkk skip if Vx != kk.
	SeReg                // 5xy0 skip if Vx == Vy.
	LdByte               // 6xkk Vx = kk.
	AddByte              // 7xkk Vx += kk, no carry.
	LdReg                // 8xy0 Vx = Vy.
	Or                   // 8xy1 Vx |= Vy.
	And                  // 8xy2 Vx &= Vy.
	Xor                  // 8xy3 Vx ^= Vy.
	AddReg               // 8xy4 Vx += Vy, VF = carry.
	Sub                  // 8xy5 Vx -= Vy, VF = not borrow.
	Shr                  // 8xy6 Vx >>= 1, VF = evicted bit.
	Subn                 // 8xy7 Vx = Vy - Vx, VF = not borrow.
	Shl                  // 8xyE Vx <<= 1, VF = evicted bit.
	SneReg               // 9xy0 skip if Vx != Vy.
	LdI                  // Annn I = nnn.
	JpV0                 // Bnnn jump to nnn + V0.
	Rnd                  // Cxkk Vx = random & kk.
	Drw                  // Dxyn draw n rows at (Vx, Vy).
	Skp                  // Ex9E skip if key Vx is held.
	Sknp                 // ExA1 skip if key Vx is not held.
	LdVxDT               // Fx07 Vx = DT.
	LdKey                // Fx0A wait for a key, Vx = key.
	LdDTVx               // Fx15 DT = Vx.
	LdSTVx               // Fx18 ST = Vx.
	AddI                 // Fx1E I += Vx.
	LdF                  // Fx29 I = glyph address of Vx.
	LdB                  // Fx33 BCD of Vx at I, I+1, I+2.
	LdStore              // Fx55 store V0..Vx at I.
	LdLoad               // Fx65 load V0..Vx from I.

	KindCount // Number of kinds. Must stay last.
)

// operands describes which fields a kind uses, drives String and Encode.
type operands int

const (
	opNone operands = iota
	opAddr          // nnn
	opRegByte       // x, kk
	opRegReg        // x, y
	opReg           // x
	opRegRegN       // x, y, n
)

type kindInfo struct {
	name     string // Mnemonic.
	base     uint16 // Instruction bits with every operand cleared.
	operands operands
	format   string // Operand rendering, used with the operands in order.
}

var kindTable = [KindCount]kindInfo{
	Cls:     {chip8.ClsName, 0x00E0, opNone, ""},
	Ret:     {chip8.RetName, 0x00EE, opNone, ""},
	Sys:     {"sys", 0x0000, opAddr, "$%03X"},
	Jp:      {chip8.JpName, 0x1000, opAddr, "$%03X"},
	Call:    {chip8.CallName, 0x2000, opAddr, "$%03X"},
	SeByte:  {chip8.SeName, 0x3000, opRegByte, "V%X, $%02X"},
	SneByte: {chip8.SneName, 0x4000, opRegByte, "V%X, $%02X"},
	SeReg:   {chip8.SeName, 0x5000, opRegReg, "V%X, V%X"},
	LdByte:  {chip8.LdName, 0x6000, opRegByte, "V%X, $%02X"},
	AddByte: {chip8.AddName, 0x7000, opRegByte, "V%X, $%02X"},
	LdReg:   {chip8.LdName, 0x8000, opRegReg, "V%X, V%X"},
	Or:      {chip8.OrName, 0x8001, opRegReg, "V%X, V%X"},
	And:     {chip8.AndName, 0x8002, opRegReg, "V%X, V%X"},
	Xor:     {chip8.XorName, 0x8003, opRegReg, "V%X, V%X"},
	AddReg:  {chip8.AddName, 0x8004, opRegReg, "V%X, V%X"},
	Sub:     {chip8.SubName, 0x8005, opRegReg, "V%X, V%X"},
	Shr:     {chip8.ShrName, 0x8006, opRegReg, "V%X, V%X"},
	Subn:    {chip8.SubnName, 0x8007, opRegReg, "V%X, V%X"},
	Shl:     {chip8.ShlName, 0x800E, opRegReg, "V%X, V%X"},
	SneReg:  {chip8.SneName, 0x9000, opRegReg, "V%X, V%X"},
	LdI:     {chip8.LdName, 0xA000, opAddr, "I, $%03X"},
	JpV0:    {chip8.JpName, 0xB000, opAddr, "V0, $%03X"},
	Rnd:     {chip8.RndName, 0xC000, opRegByte, "V%X, $%02X"},
	Drw:     {chip8.DrwName, 0xD000, opRegRegN, "V%X, V%X, %d"},
	Skp:     {chip8.SkpName, 0xE09E, opReg, "V%X"},
	Sknp:    {chip8.SknpName, 0xE0A1, opReg, "V%X"},
	LdVxDT:  {chip8.LdName, 0xF007, opReg, "V%X, DT"},
	LdKey:   {chip8.LdName, 0xF00A, opReg, "V%X, K"},
	LdDTVx:  {chip8.LdName, 0xF015, opReg, "DT, V%X"},
	LdSTVx:  {chip8.LdName, 0xF018, opReg, "ST, V%X"},
	AddI:    {chip8.AddName, 0xF01E, opReg, "I, V%X"},
	LdF:     {chip8.LdName, 0xF029, opReg, "F, V%X"},
	LdB:     {chip8.LdName, 0xF033, opReg, "B, V%X"},
	LdStore: {chip8.LdName, 0xF055, opReg, "[I], V%X"},
	LdLoad:  {chip8.LdName, 0xF065, opReg, "V%X, [I]"},
}

// Mnemonic returns the assembler name of the kind.
func (k Kind) Mnemonic() string {
	if k < 0 || k >= KindCount {
		return "unknown"
	}
	return kindTable[k].name
}

func (k Kind) String() string {
	if k < 0 || k >= KindCount {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return fmt.Sprintf("%s/%04X", kindTable[k].name, kindTable[k].base)
}

// Opcode is a decoded instruction.
// Only the fields used by Kind are meaningful, the others are zero.
type Opcode struct {
	Kind Kind
	X    uint8  // Register index, bits 8-11.
	Y    uint8  // Register index, bits 4-7.
	N    uint8  // Nibble count, bits 0-3.
	KK   uint8  // Immediate, bits 0-7.
	NNN  uint16 // Address, bits 0-11.
}

// String renders the opcode as assembler text, e.g. "drw V0, V1, 2".
func (o Opcode) String() string {
	if o.Kind < 0 || o.Kind >= KindCount {
		return fmt.Sprintf("unknown kind %d", int(o.Kind))
	}
	info := kindTable[o.Kind]
	var params string
	switch info.operands {
	case opNone:
		return info.name
	case opAddr:
		params = fmt.Sprintf(info.format, o.NNN)
	case opRegByte:
		params = fmt.Sprintf(info.format, o.X, o.KK)
	case opRegReg:
		params = fmt.Sprintf(info.format, o.X, o.Y)
	case opReg:
		params = fmt.Sprintf(info.format, o.X)
	case opRegRegN:
		params = fmt.Sprintf(info.format, o.X, o.Y, o.N)
	}
	return info.name + " " + params
}
