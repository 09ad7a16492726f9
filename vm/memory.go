package vm

import "go.creack.net/chip8/op"

// Memory is the machine address space.
// Every access wraps modulo its length.
type Memory []byte

// NewMemory returns a zeroed address space of op.MemSize bytes.
func NewMemory() Memory { return make(Memory, op.MemSize) }

func (m Memory) index(addr int) int {
	i := addr % len(m)
	if i < 0 {
		i += len(m)
	}
	return i
}

// Read returns the byte at addr.
func (m Memory) Read(addr uint16) byte { return m[m.index(int(addr))] }

// Write sets the byte at addr.
func (m Memory) Write(addr uint16, value byte) { m[m.index(int(addr))] = value }

// Bytes copies size bytes starting at addr, wrapping past the end.
func (m Memory) Bytes(addr uint16, size int) []byte {
	out := make([]byte, size)
	for i := range size {
		out[i] = m[m.index(int(addr)+i)]
	}
	return out
}

// Value16 reads a big endian word at addr.
func (m Memory) Value16(addr uint16) uint16 {
	return op.Endian.Uint16(m.Bytes(addr, op.InstructionSize))
}

// Load copies data starting at addr. Bytes past the end wrap to address 0.
func (m Memory) Load(addr uint16, data []byte) {
	for i, b := range data {
		m[m.index(int(addr)+i)] = b
	}
}
