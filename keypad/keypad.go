// Package keypad maps a physical 4x4 key block onto CHIP-8 key codes.
package keypad

import (
	"unicode"

	"go.creack.net/chip8/op"
)

// Size is the number of keys on the pad.
const Size = 16

// Layout lists the physical keys row-major:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var Layout = [Size]struct {
	Rune rune
	Key  op.Key
}{
	{'1', 0x1}, {'2', 0x2}, {'3', 0x3}, {'4', 0xC},
	{'q', 0x4}, {'w', 0x5}, {'e', 0x6}, {'r', 0xD},
	{'a', 0x7}, {'s', 0x8}, {'d', 0x9}, {'f', 0xE},
	{'z', 0xA}, {'x', 0x0}, {'c', 0xB}, {'v', 0xF},
}

// FromRune returns the key code for a physical key, case insensitive.
func FromRune(r rune) (op.Key, bool) {
	r = unicode.ToLower(r)
	for _, e := range Layout {
		if e.Rune == r {
			return e.Key, true
		}
	}
	return op.NoKey, false
}

// First scans the layout row-major and returns the key code of the first
// index held reports true for, or op.NoKey.
func First(held func(i int) bool) op.Key {
	for i, e := range Layout {
		if held(i) {
			return e.Key
		}
	}
	return op.NoKey
}
