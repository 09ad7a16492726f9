package vm

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"go.creack.net/chip8/op"
)

type fixedRand uint32

func (r fixedRand) Uint32() uint32 { return uint32(r) }

func program(words ...uint16) []byte {
	rom := make([]byte, 0, len(words)*op.InstructionSize)
	for _, w := range words {
		rom = op.Endian.AppendUint16(rom, w)
	}
	return rom
}

func newMachine(t *testing.T, words ...uint16) *Machine {
	t.Helper()
	m := New(WithRand(fixedRand(0xA5)))
	m.LoadROM(program(words...))
	return m
}

func step(t *testing.T, m *Machine, n int) {
	t.Helper()
	for range n {
		assert.NoError(t, m.Step())
	}
}

func TestEveryKindHasHandler(t *testing.T) {
	for k := range op.KindCount {
		assert.NotNil(t, ops[k], op.Kind(k).String())
	}
}

func TestAddWithCarry(t *testing.T) {
	m := newMachine(t,
		0x60FA, // ld V0, 250
		0x610A, // ld V1, 10
		0x8014, // add V0, V1
	)
	step(t, m, 3)
	assert.Equal(t, byte(4), m.Registers.V[0])
	assert.Equal(t, byte(1), m.Registers.Flag())

	m = newMachine(t, 0x6001, 0x6102, 0x8014)
	step(t, m, 3)
	assert.Equal(t, byte(3), m.Registers.V[0])
	assert.Equal(t, byte(0), m.Registers.Flag())
}

func TestSub(t *testing.T) {
	tests := []struct {
		name   string
		rom    []uint16
		result byte
		flag   byte
	}{
		{"borrow", []uint16{0x6005, 0x610A, 0x8015}, 251, 0},
		{"no borrow", []uint16{0x600A, 0x6105, 0x8015}, 5, 1},
		{"equal", []uint16{0x6007, 0x6107, 0x8015}, 0, 1},
		{"subn borrow", []uint16{0x600A, 0x6105, 0x8017}, 251, 0},
		{"subn no borrow", []uint16{0x6005, 0x610A, 0x8017}, 5, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, tt.rom...)
			step(t, m, len(tt.rom))
			assert.Equal(t, tt.result, m.Registers.V[0])
			assert.Equal(t, tt.flag, m.Registers.Flag())
		})
	}
}

func TestFlagRegisterAsTarget(t *testing.T) {
	// Result first, flag last: VF ends up holding the flag.
	m := newMachine(t, 0x6FFA, 0x610A, 0x8F14)
	step(t, m, 3)
	assert.Equal(t, byte(1), m.Registers.Flag())

	// Flag first, result last: VF ends up holding the result.
	m = newMachine(t, 0x6F03, 0x8F06)
	step(t, m, 2)
	assert.Equal(t, byte(1), m.Registers.Flag())
	m = newMachine(t, 0x6F81, 0x8F0E)
	step(t, m, 2)
	assert.Equal(t, byte(2), m.Registers.Flag())
}

func TestShift(t *testing.T) {
	m := newMachine(t, 0x6081, 0x61FF, 0x8016)
	step(t, m, 3)
	assert.Equal(t, byte(0x40), m.Registers.V[0])
	assert.Equal(t, byte(1), m.Registers.Flag())
	assert.Equal(t, byte(0xFF), m.Registers.V[1])

	m = newMachine(t, 0x6081, 0x801E)
	step(t, m, 2)
	assert.Equal(t, byte(0x02), m.Registers.V[0])
	assert.Equal(t, byte(1), m.Registers.Flag())

	m = newMachine(t, 0x6040, 0x801E)
	step(t, m, 2)
	assert.Equal(t, byte(0x80), m.Registers.V[0])
	assert.Equal(t, byte(0), m.Registers.Flag())
}

func TestLogic(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		expected byte
	}{
		{"ld", 0x8010, 0x0F},
		{"or", 0x8011, 0x3F},
		{"and", 0x8012, 0x0C},
		{"xor", 0x8013, 0x33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMachine(t, 0x603C, 0x610F, tt.opcode)
			step(t, m, 3)
			assert.Equal(t, tt.expected, m.Registers.V[0])
		})
	}
}

func TestAddByteWrapsWithoutFlag(t *testing.T) {
	m := newMachine(t, 0x6F05, 0x60FF, 0x7002)
	step(t, m, 3)
	assert.Equal(t, byte(1), m.Registers.V[0])
	assert.Equal(t, byte(5), m.Registers.Flag())
}

func TestAddIWraps(t *testing.T) {
	m := New()
	m.Registers.I = 0xFFFF
	m.Registers.V[2] = 3
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.AddI, X: 2}))
	assert.Equal(t, uint16(2), m.Registers.I)
}

func TestBCD(t *testing.T) {
	tests := []struct {
		value    byte
		expected []byte
	}{
		{255, []byte{2, 5, 5}},
		{0, []byte{0, 0, 0}},
		{42, []byte{0, 4, 2}},
		{100, []byte{1, 0, 0}},
	}
	for _, tt := range tests {
		m := New()
		m.Registers.I = 0x300
		m.Registers.V[4] = tt.value
		assert.NoError(t, Execute(m, op.Opcode{Kind: op.LdB, X: 4}))
		assert.Equal(t, tt.expected, m.Memory.Bytes(0x300, 3))
	}
}

func TestStoreLoad(t *testing.T) {
	m := New()
	for i := range op.RegisterCount {
		m.Registers.V[i] = byte(i + 1)
	}
	m.Registers.I = 0x400
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.LdStore, X: 3}))
	assert.Equal(t, []byte{1, 2, 3, 4, 0}, m.Memory.Bytes(0x400, 5))
	assert.Equal(t, uint16(0x400), m.Registers.I)

	m.Registers = Registers{I: 0x400}
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.LdLoad, X: 2}))
	assert.Equal(t, byte(1), m.Registers.V[0])
	assert.Equal(t, byte(2), m.Registers.V[1])
	assert.Equal(t, byte(3), m.Registers.V[2])
	assert.Equal(t, byte(0), m.Registers.V[3])
}

func TestTimers(t *testing.T) {
	m := newMachine(t,
		0x6003, // ld V0, 3
		0xF015, // ld DT, V0
		0xF018, // ld ST, V0
		0x00E0, // cls
		0xF107, // ld V1, DT
	)
	step(t, m, 3)
	// DT was set on the second instruction and ticked on the third.
	assert.Equal(t, byte(2), m.DT)
	assert.Equal(t, byte(3), m.ST)

	step(t, m, 2)
	assert.Equal(t, byte(0), m.DT)
	assert.Equal(t, byte(1), m.ST)
	assert.Equal(t, byte(0), m.Registers.V[1])

	step(t, m, 3)
	assert.Equal(t, byte(0), m.DT)
	assert.Equal(t, byte(0), m.ST)
}

func TestDraw(t *testing.T) {
	m := newMachine(t,
		0xA20A, // ld I, $20A
		0x6000, // ld V0, 0
		0x6100, // ld V1, 0
		0xD012, // drw V0, V1, 2
		0xD012, // drw V0, V1, 2
		0xC300, // sprite data: $C3 $00
	)
	step(t, m, 4)
	assert.True(t, m.Display.Lit(0, 0))
	assert.True(t, m.Display.Lit(1, 0))
	assert.False(t, m.Display.Lit(2, 0))
	assert.True(t, m.Display.Lit(6, 0))
	assert.True(t, m.Display.Lit(7, 0))
	assert.False(t, m.Display.Lit(0, 1))
	assert.Equal(t, byte(0), m.Registers.Flag())

	step(t, m, 1)
	assert.False(t, m.Display.Lit(0, 0))
	assert.Equal(t, byte(1), m.Registers.Flag())
}

func TestDrawWraps(t *testing.T) {
	m := New()
	m.Registers.I = 0x300
	m.Memory.Write(0x300, 0xFF)
	m.Registers.V[0] = 63
	m.Registers.V[1] = 31
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.Drw, X: 0, Y: 1, N: 1}))

	assert.True(t, m.Display.Lit(63, 31))
	for x := range 7 {
		assert.True(t, m.Display.Lit(x, 31))
	}
	assert.False(t, m.Display.Lit(7, 31))
	assert.Equal(t, byte(0), m.Registers.Flag())
}

func TestClear(t *testing.T) {
	m := New()
	m.Display.TogglePixel(5, 5)
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.Cls}))
	assert.False(t, m.Display.Lit(5, 5))
}

func TestSkips(t *testing.T) {
	tests := []struct {
		name   string
		opcode op.Opcode
		key    op.Key
		skip   bool
	}{
		{"se byte taken", op.Opcode{Kind: op.SeByte, X: 0, KK: 7}, op.NoKey, true},
		{"se byte not taken", op.Opcode{Kind: op.SeByte, X: 0, KK: 8}, op.NoKey, false},
		{"sne byte taken", op.Opcode{Kind: op.SneByte, X: 0, KK: 8}, op.NoKey, true},
		{"sne byte not taken", op.Opcode{Kind: op.SneByte, X: 0, KK: 7}, op.NoKey, false},
		{"se reg taken", op.Opcode{Kind: op.SeReg, X: 0, Y: 1}, op.NoKey, true},
		{"se reg not taken", op.Opcode{Kind: op.SeReg, X: 0, Y: 2}, op.NoKey, false},
		{"sne reg taken", op.Opcode{Kind: op.SneReg, X: 0, Y: 2}, op.NoKey, true},
		{"sne reg not taken", op.Opcode{Kind: op.SneReg, X: 0, Y: 1}, op.NoKey, false},
		{"skp held", op.Opcode{Kind: op.Skp, X: 0}, 7, true},
		{"skp other key", op.Opcode{Kind: op.Skp, X: 0}, 3, false},
		{"skp no key", op.Opcode{Kind: op.Skp, X: 0}, op.NoKey, false},
		{"sknp held", op.Opcode{Kind: op.Sknp, X: 0}, 7, false},
		{"sknp other key", op.Opcode{Kind: op.Sknp, X: 0}, 3, true},
		{"sknp no key", op.Opcode{Kind: op.Sknp, X: 0}, op.NoKey, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.Registers.V[0] = 7
			m.Registers.V[1] = 7
			m.Registers.V[2] = 9
			m.SetKey(tt.key)
			assert.NoError(t, Execute(m, tt.opcode))

			expected := uint16(op.ProgramStart + 2)
			if tt.skip {
				expected += 2
			}
			assert.Equal(t, expected, m.PC)
		})
	}
}

func TestWaitKey(t *testing.T) {
	m := newMachine(t, 0x6005, 0xF015, 0xF30A)
	step(t, m, 2)

	m.SetKey(op.NoKey)
	step(t, m, 2)
	assert.Equal(t, uint16(0x204), m.PC)
	assert.Equal(t, byte(3), m.DT)

	m.SetKey(0xB)
	step(t, m, 1)
	assert.Equal(t, uint16(0x206), m.PC)
	assert.Equal(t, byte(0xB), m.Registers.V[3])
	assert.Equal(t, byte(2), m.DT)
}

func TestSetKeyRejectsOutOfRange(t *testing.T) {
	m := New()
	m.SetKey(16)
	assert.Equal(t, op.NoKey, m.Key())
	m.SetKey(15)
	assert.Equal(t, op.Key(15), m.Key())
}

func TestJumps(t *testing.T) {
	m := New()
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.Jp, NNN: 0x345}))
	assert.Equal(t, uint16(0x345), m.PC)

	m.Registers.V[0] = 0x10
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.JpV0, NNN: 0x300}))
	assert.Equal(t, uint16(0x310), m.PC)

	assert.NoError(t, Execute(m, op.Opcode{Kind: op.Sys, NNN: 0x123}))
	assert.Equal(t, uint16(0x312), m.PC)
}

func TestProgramCounterWraps(t *testing.T) {
	m := New()
	m.Registers.V[0] = 0xFF
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.JpV0, NNN: 0xFFF}))
	assert.Equal(t, uint16((0xFFF+0xFF)%op.MemSize), m.PC)

	m.PC = op.MemSize - 2
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.Sys}))
	assert.Equal(t, uint16(0), m.PC)

	m.PC = op.MemSize - 2
	m.Registers.V[0] = 1
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.SeByte, X: 0, KK: 1}))
	assert.Equal(t, uint16(2), m.PC)
}

func TestCallRet(t *testing.T) {
	m := newMachine(t,
		0x2206, // call $206
		0x6101, // ld V1, 1
		0x1204, // jp $204
		0x6002, // ld V0, 2
		0x00EE, // ret
	)
	step(t, m, 1)
	assert.Equal(t, uint16(0x206), m.PC)
	assert.Equal(t, 1, m.Stack.Len())

	step(t, m, 3)
	assert.Equal(t, uint16(0x204), m.PC)
	assert.Equal(t, byte(2), m.Registers.V[0])
	assert.Equal(t, byte(1), m.Registers.V[1])
	assert.Equal(t, 0, m.Stack.Len())
}

func TestStackOverflowHalts(t *testing.T) {
	m := newMachine(t, 0x2200) // call $200, forever.
	step(t, m, op.StackSize)

	err := m.Step()
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, uint16(0x200), m.PC)

	cycles := m.Cycles
	assert.True(t, errors.Is(m.Step(), ErrStackOverflow))
	assert.Equal(t, err, m.Err())
	assert.Equal(t, cycles, m.Cycles)
}

func TestStackUnderflowHalts(t *testing.T) {
	m := newMachine(t, 0x00EE)
	err := m.Step()
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.ErrorContains(t, err, "0x200")
}

func TestExecuteRejectsBadRegister(t *testing.T) {
	m := newMachine(t)
	err := Execute(m, op.Opcode{Kind: op.LdByte, X: op.RegisterCount, KK: 1})
	assert.ErrorContains(t, err, "register out of range")
	assert.Equal(t, uint16(op.ProgramStart), m.PC)

	err = Execute(m, op.Opcode{Kind: op.LdReg, X: 0, Y: 0xFF})
	assert.ErrorContains(t, err, "register out of range")
	assert.Equal(t, uint64(0), m.Cycles)
}

func TestInvalidInstructionHalts(t *testing.T) {
	m := newMachine(t, 0x6001, 0xFFFF, 0x6002)
	step(t, m, 1)

	err := m.Step()
	var invalid *op.InvalidInstructionError
	assert.True(t, errors.As(err, &invalid))
	assert.Equal(t, uint16(0xFFFF), invalid.Instruction)
	assert.Equal(t, uint16(0x202), m.PC)

	assert.Equal(t, err, m.Step())
	assert.Equal(t, byte(1), m.Registers.V[0])
}

func TestRand(t *testing.T) {
	m := newMachine(t, 0xC50F)
	step(t, m, 1)
	assert.Equal(t, byte(0xA5&0x0F), m.Registers.V[5])

	m = New(WithSeed(42))
	m2 := New(WithSeed(42))
	for range 8 {
		assert.Equal(t, m.Rand(), m2.Rand())
	}
}

func TestLoadFont(t *testing.T) {
	m := New()
	m.Registers.V[0xA] = 0xA
	assert.NoError(t, Execute(m, op.Opcode{Kind: op.LdF, X: 0xA}))
	assert.Equal(t, uint16(0xA*op.GlyphSize), m.Registers.I)
}

func TestLoadROMAndReset(t *testing.T) {
	m := newMachine(t, 0x1234, 0x6001)
	assert.Equal(t, uint16(0x1234), m.Fetch())
	assert.Equal(t, uint16(op.ProgramStart), m.PC)

	m.PC = 0x202
	assert.NoError(t, m.Step())
	assert.Equal(t, byte(1), m.Registers.V[0])

	m.Reset()
	assert.Equal(t, uint16(op.ProgramStart), m.PC)
	assert.Equal(t, byte(0), m.Registers.V[0])
	assert.Equal(t, uint16(0x1234), m.Fetch())
	assert.Equal(t, uint64(0), m.Cycles)
}

func TestLoadROMOverflowWraps(t *testing.T) {
	m := New()
	rom := make([]byte, op.MemSize-op.ProgramStart+2)
	rom[len(rom)-2] = 0xAB
	rom[len(rom)-1] = 0xCD
	m.LoadROM(rom)
	assert.Equal(t, uint16(0xABCD), m.Memory.Value16(0))
}
