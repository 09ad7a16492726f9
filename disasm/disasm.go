// Package disasm turns ROM images back into assembler source.
package disasm

import (
	"crypto/md5"
	"fmt"
	"strings"

	"go.creack.net/chip8/asm"
	"go.creack.net/chip8/assets"
	"go.creack.net/chip8/op"
)

// Line is one listing entry: an instruction or raw data.
type Line struct {
	Addr   uint16
	Bytes  []byte
	Opcode op.Opcode
	Data   bool // Not a canonical instruction, emitted as a data directive.
}

// Text returns the assembler text of the line.
func (l Line) Text() string {
	if !l.Data {
		return l.Opcode.String()
	}
	if len(l.Bytes) == op.InstructionSize {
		return fmt.Sprintf(".word $%04X", op.Endian.Uint16(l.Bytes))
	}
	return fmt.Sprintf(".byte $%02X", l.Bytes[0])
}

func (l Line) String() string {
	return fmt.Sprintf("0x%03X: % x\t%s", l.Addr, l.Bytes, l.Text())
}

// Disassemble decodes rom as loaded at op.ProgramStart, one word at a time.
// Words that do not decode, or would not encode back to the same bits, are data.
func Disassemble(rom []byte) []Line {
	lines := make([]Line, 0, len(rom)/op.InstructionSize+1)
	for i := 0; i < len(rom); i += op.InstructionSize {
		addr := uint16(op.ProgramStart + i)
		if i+1 >= len(rom) {
			lines = append(lines, Line{Addr: addr, Bytes: rom[i:], Data: true})
			break
		}
		line := Line{Addr: addr, Bytes: rom[i : i+op.InstructionSize]}
		word := op.Endian.Uint16(line.Bytes)
		o, err := op.Decode(word)
		if err == nil {
			if back, err := op.Encode(o); err == nil && back == word {
				line.Opcode = o
				lines = append(lines, line)
				continue
			}
		}
		line.Data = true
		lines = append(lines, line)
	}
	return lines
}

// Source renders lines as assembler input, with addresses in comments.
func Source(lines []Line) string {
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "\t%-20s ; 0x%03X\n", l.Text(), l.Addr)
	}
	return sb.String()
}

func md5sum(data []byte) string {
	h := md5.New()
	h.Write(data)
	return fmt.Sprintf("%x", h.Sum(nil))
}

// searchExistingSrc returns the name and source of the bundled program
// assembling to the image with the given md5, if any.
func searchExistingSrc(search string) (string, string, error) {
	for _, name := range assets.Names() {
		src, err := assets.Source(name)
		if err != nil {
			return "", "", err
		}
		rom, _, err := asm.Compile(name, src)
		if err != nil {
			// Should not happen.
			return "", "", fmt.Errorf("failed to compile known source %q: %w", name, err)
		}
		if md5sum(rom) == search {
			return name, src, nil
		}
	}
	return "", "", nil
}

// Disam returns assembler source for rom. When rom was built from one of
// the bundled sources, that source is returned, labels and comments included.
func Disam(inputName string, rom []byte) (string, error) {
	name, src, err := searchExistingSrc(md5sum(rom))
	if err != nil {
		return "", fmt.Errorf("failed to search known sources: %w", err)
	}
	if src != "" {
		return fmt.Sprintf("; %s: matches bundled %q.\n%s", inputName, name, src), nil
	}
	return fmt.Sprintf("; %s\n%s", inputName, Source(Disassemble(rom))), nil
}
