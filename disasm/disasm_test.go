package disasm

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"go.creack.net/chip8/asm"
	"go.creack.net/chip8/assets"
)

func TestDisassemble(t *testing.T) {
	rom := []byte{
		0x00, 0xE0, // cls
		0xD0, 0x12, // drw V0, V1, 2
		0xFF, 0xFF, // invalid
		0x51, 0x2F, // se V1, V2 with a non zero low nibble
		0x80, // odd trailing byte
	}
	lines := Disassemble(rom)
	assert.Len(t, lines, 5)

	assert.Equal(t, uint16(0x200), lines[0].Addr)
	assert.False(t, lines[0].Data)
	assert.Equal(t, "cls", lines[0].Text())

	assert.Equal(t, "drw V0, V1, 2", lines[1].Text())

	assert.True(t, lines[2].Data)
	assert.Equal(t, ".word $FFFF", lines[2].Text())

	assert.True(t, lines[3].Data)
	assert.Equal(t, ".word $512F", lines[3].Text())

	assert.True(t, lines[4].Data)
	assert.Equal(t, uint16(0x208), lines[4].Addr)
	assert.Equal(t, ".byte $80", lines[4].Text())

	assert.Equal(t, "0x202: d0 12\tdrw V0, V1, 2", lines[1].String())
}

// The listing assembles back to the same image.
func TestSourceRoundTrip(t *testing.T) {
	rom := []byte{
		0x00, 0xE0, 0x6A, 0x12, 0xA2, 0x0A, 0xF3, 0x55, 0xF2, 0x0A,
		0xFF, 0xFF, 0x51, 0x2F, 0xB1, 0x23, 0x8A, 0xBE, 0x01,
	}
	out, _, err := asm.Compile("roundtrip", Source(Disassemble(rom)))
	assert.NoError(t, err)
	assert.Equal(t, rom, out)
}

func TestDisamKnownSource(t *testing.T) {
	for _, name := range assets.Names() {
		src, err := assets.Source(name)
		assert.NoError(t, err)
		rom, _, err := asm.Compile(name, src)
		assert.NoError(t, err)

		out, err := Disam(name+".ch8", rom)
		assert.NoError(t, err)
		assert.True(t, strings.HasSuffix(out, src))
		assert.Contains(t, out, "matches bundled")
	}
}

func TestDisamUnknown(t *testing.T) {
	out, err := Disam("unknown.ch8", []byte{0x00, 0xE0, 0x12, 0x00})
	assert.NoError(t, err)
	assert.Contains(t, out, "cls")
	assert.Contains(t, out, "jp $200")
}
