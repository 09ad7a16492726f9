// Package asm assembles CHIP-8 source into ROM images.
package asm

import (
	"fmt"

	"go.creack.net/chip8/asm/parser"
)

// Compile assembles inputData. The image is meant to be loaded at op.ProgramStart,
// label addresses account for it.
func Compile(inputName, inputData string) ([]byte, *parser.Program, error) {
	// Parse the input.
	p := parser.NewParser(inputName, inputData)
	if err := p.Parse(); err != nil {
		return nil, nil, fmt.Errorf("failed to parse: %w", err)
	}

	// Encode the program.
	pr := parser.NewProgram(p)
	program, err := pr.Encode()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode program: %w", err)
	}
	return program, pr, nil
}
