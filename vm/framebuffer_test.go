package vm

import (
	"strings"
	"testing"

	"github.com/retroenv/retrogolib/assert"
	"go.creack.net/chip8/op"
)

func TestFrameBufferToggle(t *testing.T) {
	fb := NewFrameBuffer()
	assert.Equal(t, op.Width, fb.Width())
	assert.Equal(t, op.Height, fb.Height())
	assert.Equal(t, PixelOff, fb.At(3, 4))

	assert.False(t, fb.TogglePixel(3, 4))
	assert.True(t, fb.Lit(3, 4))
	assert.Equal(t, PixelOn, fb.At(3, 4))

	assert.True(t, fb.TogglePixel(3, 4))
	assert.False(t, fb.Lit(3, 4))
}

func TestFrameBufferClear(t *testing.T) {
	fb := NewFrameBuffer()
	fb.TogglePixel(0, 0)
	fb.TogglePixel(63, 31)
	fb.TogglePixel(10, 10)
	fb.TogglePixel(10, 10)

	fb.Clear()
	for y := range op.Height {
		for x := range op.Width {
			assert.Equal(t, PixelOff, fb.At(x, y))
		}
	}
}

func TestFrameSnapshotIsCopy(t *testing.T) {
	fb := NewFrameBuffer()
	fb.TogglePixel(1, 1)
	f := fb.Snapshot()
	fb.TogglePixel(1, 1)

	assert.True(t, f.Lit(1, 1))
	assert.False(t, fb.Lit(1, 1))
}

func TestFrameRender(t *testing.T) {
	fb := NewFrameBuffer()
	fb.TogglePixel(0, 0)
	fb.TogglePixel(2, 1)
	f := fb.Snapshot()

	lines := strings.Split(strings.TrimSuffix(f.String(), "\n"), "\n")
	assert.Len(t, lines, op.Height)
	assert.Equal(t, "#"+strings.Repeat(".", op.Width-1), lines[0])
	assert.Equal(t, "..#"+strings.Repeat(".", op.Width-3), lines[1])

	img := f.RGBA()
	assert.Equal(t, op.Width, img.Bounds().Dx())
	assert.Equal(t, op.Height, img.Bounds().Dy())
	r, g, b, a := img.At(0, 0).RGBA()
	er, eg, eb, ea := PixelOn.RGBA()
	assert.Equal(t, []uint32{er, eg, eb, ea}, []uint32{r, g, b, a})
}
