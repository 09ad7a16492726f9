package vm

import (
	"image"
	"image/color"
	"strings"

	"go.creack.net/chip8/op"
)

// Pixel is an opaque 0xRRGGBB cell value.
type Pixel uint32

// Cell colors.
const (
	PixelOn  Pixel = 0x9a8c98
	PixelOff Pixel = 0x22223b
)

// RGBA implements color.Color.
func (p Pixel) RGBA() (r, g, b, a uint32) {
	return color.RGBA{R: uint8(p >> 16), G: uint8(p >> 8), B: uint8(p), A: 0xff}.RGBA()
}

// Frame is a copy of the display, safe to hand to another goroutine.
type Frame [op.Height][op.Width]Pixel

// Lit reports whether the cell at (x, y) is on.
func (f *Frame) Lit(x, y int) bool { return f[wrap(y, op.Height)][wrap(x, op.Width)] == PixelOn }

// RGBA renders the frame at one image pixel per cell.
func (f *Frame) RGBA() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, op.Width, op.Height))
	for y := range op.Height {
		for x := range op.Width {
			p := f[y][x]
			i := img.PixOffset(x, y)
			img.Pix[i+0] = uint8(p >> 16)
			img.Pix[i+1] = uint8(p >> 8)
			img.Pix[i+2] = uint8(p)
			img.Pix[i+3] = 0xff
		}
	}
	return img
}

// String renders the frame as text, '#' for on and '.' for off.
func (f *Frame) String() string {
	var sb strings.Builder
	sb.Grow((op.Width + 1) * op.Height)
	for y := range op.Height {
		for x := range op.Width {
			if f[y][x] == PixelOn {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FrameBuffer is the 64x32 display.
type FrameBuffer struct {
	frame Frame
}

// NewFrameBuffer returns a cleared display.
func NewFrameBuffer() *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Clear()
	return fb
}

// Width returns the number of columns.
func (fb *FrameBuffer) Width() int { return op.Width }

// Height returns the number of rows.
func (fb *FrameBuffer) Height() int { return op.Height }

// At returns the cell value. Coordinates wrap.
func (fb *FrameBuffer) At(x, y int) Pixel { return fb.frame[wrap(y, op.Height)][wrap(x, op.Width)] }

// Lit reports whether the cell is on.
func (fb *FrameBuffer) Lit(x, y int) bool { return fb.frame.Lit(x, y) }

// TogglePixel flips the cell at (x, y) and reports a collision,
// i.e. true when the cell went from on to off.
func (fb *FrameBuffer) TogglePixel(x, y int) bool {
	cell := &fb.frame[wrap(y, op.Height)][wrap(x, op.Width)]
	if *cell == PixelOn {
		*cell = PixelOff
		return true
	}
	*cell = PixelOn
	return false
}

// Clear turns every cell off.
func (fb *FrameBuffer) Clear() {
	for y := range fb.frame {
		for x := range fb.frame[y] {
			fb.frame[y][x] = PixelOff
		}
	}
}

// Snapshot returns a copy of the current display.
func (fb *FrameBuffer) Snapshot() Frame { return fb.frame }

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
