package op

import (
	"encoding/binary"
)

// Endian is the byte order of instructions in memory.
var Endian = binary.BigEndian

// Machine layout.
const (
	MemSize      = 4 * 1024 // 4Kb.
	ProgramStart = 0x200    // Where ROMs are loaded and where execution begins.
	StackSize    = 12       // Maximum call depth.
	GlyphSize    = 5        // Bytes per font glyph, used by LD F,Vx.
)

const (
	RegisterCount = 16  // V0 <--> VF
	FlagRegister  = 0xF // VF doubles as carry/borrow/collision output.
)

// Display.
const (
	Width  = 64
	Height = 32
)

// Instruction fields.
const (
	InstructionSize = 2 // Bytes per instruction.
	AddrMask        = 0x0FFF
)

// Key is a logical keypad code in [0, 15].
type Key int8

// NoKey is the key sample when nothing is held.
const NoKey Key = -1

// Valid reports whether k is a real key code.
func (k Key) Valid() bool { return k >= 0 && k < 16 }
