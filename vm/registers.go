package vm

import "go.creack.net/chip8/op"

// Registers holds the general purpose registers and the index register.
type Registers struct {
	V [op.RegisterCount]byte
	I uint16
}

// Flag returns VF.
func (r *Registers) Flag() byte { return r.V[op.FlagRegister] }

func (r *Registers) setFlag(set bool) {
	if set {
		r.V[op.FlagRegister] = 1
	} else {
		r.V[op.FlagRegister] = 0
	}
}
