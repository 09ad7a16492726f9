package vm

import (
	"errors"

	"go.creack.net/chip8/op"
)

// Stack discipline errors. Both are fatal.
var (
	ErrStackOverflow  = errors.New("stack overflow")
	ErrStackUnderflow = errors.New("stack empty")
)

// Stack holds return addresses.
type Stack struct {
	entries [op.StackSize]uint16
	sp      int
}

// Push stores a return address.
func (s *Stack) Push(addr uint16) error {
	if s.sp == len(s.entries) {
		return ErrStackOverflow
	}
	s.entries[s.sp] = addr
	s.sp++
	return nil
}

// Pop returns the most recently pushed address.
func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}

// Len returns the current call depth.
func (s *Stack) Len() int { return s.sp }
