package vm

import (
	"fmt"

	"go.creack.net/chip8/op"
)

// handler applies one opcode and returns the next program counter.
// next is the default, the address of the following instruction.
type handler func(m *Machine, o op.Opcode, next uint16) (uint16, error)

// skipIf returns a handler skipping the next instruction when cond holds.
func skipIf(cond func(m *Machine, o op.Opcode) bool) handler {
	return func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		if cond(m, o) {
			next += op.InstructionSize
		}
		return next, nil
	}
}

// alu returns a handler for the register-register operations without flag.
func alu(operation func(a, b byte) byte) handler {
	return func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.Registers.V[o.X] = operation(m.Registers.V[o.X], m.Registers.V[o.Y])
		return next, nil
	}
}

var ops = func() [op.KindCount]handler {
	var ops [op.KindCount]handler

	// Control flow.
	ops[op.Sys] = func(_ *Machine, _ op.Opcode, next uint16) (uint16, error) { return next, nil }
	ops[op.Jp] = func(_ *Machine, o op.Opcode, _ uint16) (uint16, error) { return o.NNN, nil }
	ops[op.JpV0] = func(m *Machine, o op.Opcode, _ uint16) (uint16, error) {
		return o.NNN + uint16(m.Registers.V[0]), nil
	}
	ops[op.Call] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		if err := m.Stack.Push(next % op.MemSize); err != nil {
			return 0, err
		}
		return o.NNN, nil
	}
	ops[op.Ret] = func(m *Machine, _ op.Opcode, _ uint16) (uint16, error) {
		return m.Stack.Pop()
	}

	// Skips.
	ops[op.SeByte] = skipIf(func(m *Machine, o op.Opcode) bool { return m.Registers.V[o.X] == o.KK })
	ops[op.SneByte] = skipIf(func(m *Machine, o op.Opcode) bool { return m.Registers.V[o.X] != o.KK })
	ops[op.SeReg] = skipIf(func(m *Machine, o op.Opcode) bool { return m.Registers.V[o.X] == m.Registers.V[o.Y] })
	ops[op.SneReg] = skipIf(func(m *Machine, o op.Opcode) bool { return m.Registers.V[o.X] != m.Registers.V[o.Y] })
	ops[op.Skp] = skipIf(func(m *Machine, o op.Opcode) bool {
		return m.key.Valid() && byte(m.key) == m.Registers.V[o.X]
	})
	// No key held counts as "not pressed", so SKNP skips. Some interpreters only skip on a held key.
	ops[op.Sknp] = skipIf(func(m *Machine, o op.Opcode) bool {
		return !m.key.Valid() || byte(m.key) != m.Registers.V[o.X]
	})

	// Loads.
	ops[op.LdByte] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.Registers.V[o.X] = o.KK
		return next, nil
	}
	ops[op.LdReg] = alu(func(_, b byte) byte { return b })
	ops[op.LdI] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.Registers.I = o.NNN
		return next, nil
	}
	ops[op.LdB] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		v, i := m.Registers.V[o.X], m.Registers.I
		m.Memory.Write(i, v/100)
		m.Memory.Write(i+1, v/10%10)
		m.Memory.Write(i+2, v%10)
		return next, nil
	}
	ops[op.LdStore] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		for r := range uint16(o.X) + 1 {
			m.Memory.Write(m.Registers.I+r, m.Registers.V[r])
		}
		return next, nil
	}
	ops[op.LdLoad] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		for r := range uint16(o.X) + 1 {
			m.Registers.V[r] = m.Memory.Read(m.Registers.I + r)
		}
		return next, nil
	}
	ops[op.LdF] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.Registers.I = uint16(m.Registers.V[o.X]) * op.GlyphSize
		return next, nil
	}
	ops[op.LdVxDT] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.Registers.V[o.X] = m.DT
		return next, nil
	}
	ops[op.LdDTVx] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.DT = m.Registers.V[o.X]
		return next, nil
	}
	ops[op.LdSTVx] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.ST = m.Registers.V[o.X]
		return next, nil
	}
	// Without a key the same instruction runs again on the next cycle.
	ops[op.LdKey] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		if !m.key.Valid() {
			return m.PC, nil
		}
		m.Registers.V[o.X] = byte(m.key)
		return next, nil
	}
	ops[op.AddI] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.Registers.I += uint16(m.Registers.V[o.X])
		return next, nil
	}

	// Arithmetic. The flag is written after the result, so VF as a target
	// ends up holding the flag.
	ops[op.AddByte] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.Registers.V[o.X] += o.KK
		return next, nil
	}
	ops[op.AddReg] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		sum := uint16(m.Registers.V[o.X]) + uint16(m.Registers.V[o.Y])
		m.Registers.V[o.X] = byte(sum)
		m.Registers.setFlag(sum > 0xFF)
		return next, nil
	}
	ops[op.Sub] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		a, b := m.Registers.V[o.X], m.Registers.V[o.Y]
		m.Registers.V[o.X] = a - b
		m.Registers.setFlag(a >= b)
		return next, nil
	}
	ops[op.Subn] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		a, b := m.Registers.V[o.X], m.Registers.V[o.Y]
		m.Registers.V[o.X] = b - a
		m.Registers.setFlag(b >= a)
		return next, nil
	}
	ops[op.Or] = alu(func(a, b byte) byte { return a | b })
	ops[op.And] = alu(func(a, b byte) byte { return a & b })
	ops[op.Xor] = alu(func(a, b byte) byte { return a ^ b })

	// Shifts ignore Vy. The flag is written first.
	ops[op.Shr] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		v := m.Registers.V[o.X]
		m.Registers.setFlag(v&1 == 1)
		m.Registers.V[o.X] = v >> 1
		return next, nil
	}
	ops[op.Shl] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		v := m.Registers.V[o.X]
		m.Registers.setFlag(v>>7&1 == 1)
		m.Registers.V[o.X] = v << 1
		return next, nil
	}

	ops[op.Rnd] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		m.Registers.V[o.X] = m.Rand() & o.KK
		return next, nil
	}

	// Display.
	ops[op.Cls] = func(m *Machine, _ op.Opcode, next uint16) (uint16, error) {
		m.Display.Clear()
		return next, nil
	}
	ops[op.Drw] = func(m *Machine, o op.Opcode, next uint16) (uint16, error) {
		x0, y0 := int(m.Registers.V[o.X]), int(m.Registers.V[o.Y])
		collision := false
		for row := range int(o.N) {
			line := m.Memory.Read(m.Registers.I + uint16(row))
			for col := range 8 {
				if line&(0x80>>col) == 0 {
					continue
				}
				if m.Display.TogglePixel((x0+col)%op.Width, (y0+row)%op.Height) {
					collision = true
				}
			}
		}
		m.Registers.setFlag(collision)
		return next, nil
	}

	return ops
}()

func init() {
	for k, h := range ops {
		if h == nil {
			panic(fmt.Sprintf("vm: no handler for %s", op.Kind(k)))
		}
	}
}

// Execute applies o to m as one atomic step.
// Timers tick before the opcode takes effect. On error, PC is left on the
// failing instruction.
func Execute(m *Machine, o op.Opcode) error {
	if o.Kind < 0 || o.Kind >= op.KindCount {
		return fmt.Errorf("execute at 0x%03x: unknown kind %d", m.PC, int(o.Kind))
	}
	if o.X >= op.RegisterCount || o.Y >= op.RegisterCount {
		return fmt.Errorf("execute at 0x%03x: register out of range in %s", m.PC, o.Kind)
	}

	m.tickTimers()

	next, err := ops[o.Kind](m, o, m.PC+op.InstructionSize)
	if err != nil {
		return fmt.Errorf("%s at 0x%03x: %w", o.Kind.Mnemonic(), m.PC, err)
	}
	m.PC = next % op.MemSize
	m.Cycles++
	return nil
}

func (m *Machine) tickTimers() {
	if m.DT > 0 {
		m.DT--
	}
	if m.ST > 0 {
		m.ST--
	}
}
