// Package compositor paints a foreground image over a translucent backdrop.
//
// All buffers hold 4 bytes per pixel in blue, green, red, alpha order with
// straight (non-premultiplied) alpha. This is the byte layout of the
// ARGB8888 format used by shared-memory display buffers on little-endian
// machines.
package compositor

import (
	"fmt"

	"golang.org/x/image/colornames"
)

// BytesPerPixel is the size of one pixel in a Buffer.
const BytesPerPixel = 4

// Color is a straight-alpha color.
type Color struct {
	R, G, B, A uint8
}

// Backdrop is the translucent gray painted behind the foreground.
var Backdrop = Color{
	R: colornames.Gray.R,
	G: colornames.Gray.G,
	B: colornames.Gray.B,
	A: 196,
}

// Buffer is a width×height grid of BGRA pixels.
type Buffer struct {
	Pix    []byte
	Width  uint32
	Height uint32
}

// NewBuffer allocates a zeroed buffer of the given size.
func NewBuffer(width, height uint32) Buffer {
	return Buffer{
		Pix:    make([]byte, Size(width, height)),
		Width:  width,
		Height: height,
	}
}

// Size returns the number of bytes a width×height buffer occupies.
func Size(width, height uint32) int {
	return int(width) * int(height) * BytesPerPixel
}

// Validate checks that the pixel slice matches the dimensions.
func (b Buffer) Validate() error {
	if want := Size(b.Width, b.Height); len(b.Pix) != want {
		return fmt.Errorf("buffer %dx%d holds %d bytes, want %d", b.Width, b.Height, len(b.Pix), want)
	}
	return nil
}

// Offsets returns where the top-left corner of a fgW×fgH image lands when
// centered on a canvasW×canvasH canvas. Either value is negative when the
// image is larger than the canvas along that axis.
func Offsets(canvasW, canvasH, fgW, fgH uint32) (x, y int) {
	x = (int(canvasW) - int(fgW)) / 2
	y = (int(canvasH) - int(fgH)) / 2
	return x, y
}

// Fill sets every pixel of the canvas to c.
func Fill(canvas Buffer, c Color) {
	pix := canvas.Pix[:Size(canvas.Width, canvas.Height)]
	for i := 0; i < len(pix); i += BytesPerPixel {
		pix[i+0] = c.B
		pix[i+1] = c.G
		pix[i+2] = c.R
		pix[i+3] = c.A
	}
}

// Blend fills the canvas with backdrop and paints fg centered on top of it
// using source-over compositing. Foreground pixels that land outside the
// canvas are dropped and fully transparent ones are skipped. A foreground
// whose pixels do not match its size is not painted. The canvas is modified
// in place and nothing is allocated.
func Blend(canvas Buffer, backdrop Color, fg Buffer) {
	Fill(canvas, backdrop)
	if fg.Validate() != nil {
		return
	}

	offsetX, offsetY := Offsets(canvas.Width, canvas.Height, fg.Width, fg.Height)
	cw, ch := int(canvas.Width), int(canvas.Height)
	fw, fh := int(fg.Width), int(fg.Height)

	for y := 0; y < fh; y++ {
		dstY := offsetY + y
		if dstY < 0 || dstY >= ch {
			continue
		}

		for x := 0; x < fw; x++ {
			dstX := offsetX + x
			if dstX < 0 || dstX >= cw {
				continue
			}

			src := fg.Pix[(y*fw+x)*BytesPerPixel:]
			sa := float32(src[3]) / 255.0
			if sa == 0 {
				continue
			}

			dst := canvas.Pix[(dstY*cw+dstX)*BytesPerPixel:]
			da := float32(dst[3]) / 255.0

			outA := sa + da*(1.0-sa)
			for c := 0; c < 3; c++ {
				sc := float32(src[c])
				dc := float32(dst[c])
				dst[c] = truncate((sc*sa + dc*da*(1.0-sa)) / outA)
			}
			dst[3] = truncate(outA * 255.0)
		}
	}
}

// truncate drops the fractional part, saturating at the ends of the byte
// range.
func truncate(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	default:
		return uint8(v)
	}
}
