// Package vm implements the CHIP-8 machine state and executor.
package vm

import (
	"fmt"
	"math/rand/v2"

	"go.creack.net/chip8/op"
)

// RandSource provides the randomness used by RND.
// *rand.Rand from math/rand/v2 satisfies it.
type RandSource interface {
	Uint32() uint32
}

type globalRand struct{}

func (globalRand) Uint32() uint32 { return rand.Uint32() }

// Option configures a Machine.
type Option func(*Machine)

// WithRand sets the random source.
func WithRand(r RandSource) Option {
	return func(m *Machine) { m.rand = r }
}

// WithSeed uses a deterministic PCG source seeded with seed.
func WithSeed(seed uint64) Option {
	return WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

// Machine is the whole CHIP-8 state.
// It is owned by a single goroutine, nothing in it is locked.
type Machine struct {
	PC uint16
	DT byte // Delay timer.
	ST byte // Sound timer.

	Memory    Memory
	Registers Registers
	Stack     Stack
	Display   *FrameBuffer

	Cycles uint64 // Executed instructions.

	key  op.Key
	rand RandSource
	rom  []byte
	err  error
}

// New returns a powered-on machine with an empty program.
func New(opts ...Option) *Machine {
	m := &Machine{
		rand: globalRand{},
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Reset()
	return m
}

// Reset restores the power-on state and reloads the last ROM.
func (m *Machine) Reset() {
	m.PC = op.ProgramStart
	m.DT, m.ST = 0, 0
	m.Memory = NewMemory()
	m.Registers = Registers{}
	m.Stack = Stack{}
	m.Display = NewFrameBuffer()
	m.Cycles = 0
	m.key = op.NoKey
	m.err = nil
	m.Memory.Load(op.ProgramStart, m.rom)
}

// LoadROM copies rom verbatim at op.ProgramStart.
// There is no length check, bytes past the end of memory wrap to address 0.
func (m *Machine) LoadROM(rom []byte) {
	m.rom = append(m.rom[:0], rom...)
	m.Memory.Load(op.ProgramStart, m.rom)
}

// Fetch reads the instruction at PC without advancing it.
func (m *Machine) Fetch() uint16 { return m.Memory.Value16(m.PC) }

// Rand draws a uniform byte.
func (m *Machine) Rand() byte { return byte(m.rand.Uint32()) }

// SetKey stores the key sample for the next cycle. op.NoKey when nothing is held.
func (m *Machine) SetKey(k op.Key) {
	if !k.Valid() {
		k = op.NoKey
	}
	m.key = k
}

// Key returns the current key sample.
func (m *Machine) Key() op.Key { return m.key }

// Err returns the fatal error that halted the machine, if any.
func (m *Machine) Err() error { return m.err }

// Snapshot copies the display.
func (m *Machine) Snapshot() Frame { return m.Display.Snapshot() }

// Step runs one fetch/decode/execute cycle.
// After the first fatal error the machine is halted: Step keeps returning
// that error and no longer touches any state.
func (m *Machine) Step() error {
	if m.err != nil {
		return m.err
	}
	instruction := m.Fetch()
	o, err := op.Decode(instruction)
	if err != nil {
		m.err = fmt.Errorf("decode at 0x%03x: %w", m.PC, err)
		return m.err
	}
	if err := Execute(m, o); err != nil {
		m.err = err
		return err
	}
	return nil
}
